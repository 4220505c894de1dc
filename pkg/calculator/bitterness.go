package calculator

import (
	"math"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// UtilizationMethod selects the hop utilization model used by IBU.
type UtilizationMethod string

const (
	Tinseth UtilizationMethod = "tinseth"
	Rager   UtilizationMethod = "rager"
	Garetz  UtilizationMethod = "garetz"
)

// HopForm is the physical form of a hop addition.
type HopForm string

const (
	Pellet HopForm = "pellet"
	Whole  HopForm = "whole"
	Plug   HopForm = "plug"
)

// Factor is the utilization of the form relative to pellets.
func (f HopForm) Factor() (float64, error) {
	switch HopForm(strings.ToLower(string(f))) {
	case Pellet, "":
		return 1.0, nil
	case Whole:
		return 0.85, nil
	case Plug:
		return 0.90, nil
	}
	return 0, pkgerrors.Wrapf(ErrInvalidInput, "unknown hop form %q", string(f))
}

// HopAddition is one hop addition to the boil.
type HopAddition struct {
	Name        string  `json:"name,omitempty"`
	AlphaAcids  float64 `json:"alphaAcids"` // percent
	Grams       float64 `json:"grams"`
	BoilMinutes float64 `json:"boilMinutes"`
	Form        HopForm `json:"form,omitempty"`
}

// Utilization returns the fraction of alpha acids isomerized after
// boilMinutes in wort of the given boil gravity.
func Utilization(method UtilizationMethod, gravity, boilMinutes float64) (float64, error) {
	switch UtilizationMethod(strings.ToLower(string(method))) {
	case Tinseth, "":
		return tinseth(gravity, boilMinutes), nil
	case Rager:
		var gravityFactor float64
		if gravity > 1.050 {
			gravityFactor = (gravity - 1.050) / 0.2
		}
		u := (18.11 + 13.86*math.Tanh((boilMinutes-31.32)/18.27)) / 100
		return math.Max(0, u-gravityFactor), nil
	case Garetz:
		concentration := 1.0
		if gravity > 1.050 {
			concentration = 1 + (gravity-1.050)/0.2*0.2
		}
		return tinseth(gravity, boilMinutes) / concentration, nil
	}
	return 0, pkgerrors.Wrapf(ErrInvalidInput, "unknown utilization method %q", string(method))
}

func tinseth(gravity, boilMinutes float64) float64 {
	bigness := 1.65 * math.Pow(0.000125, gravity-1.0)
	boilTime := (1 - math.Exp(-0.04*boilMinutes)) / 4.15
	return bigness * boilTime
}

// IBU returns the bitterness of all additions in a batch of batchLiters at
// the given boil gravity. Each addition contributes
// alpha% * grams * utilization * form * 10 / liters, never less than zero.
func IBU(additions []HopAddition, batchLiters, gravity float64, method UtilizationMethod) (float64, error) {
	if batchLiters <= 0 {
		return 0, pkgerrors.Wrapf(ErrPreconditionViolation, "batch size must be positive, got %.2f L", batchLiters)
	}
	if gravity < 1.0 {
		return 0, pkgerrors.Wrapf(ErrPreconditionViolation, "boil gravity %.3f is below water", gravity)
	}

	var total float64
	for i, h := range additions {
		if h.AlphaAcids < 0 || h.Grams < 0 || h.BoilMinutes < 0 {
			return 0, pkgerrors.Wrapf(ErrPreconditionViolation, "hop addition %d has a negative value", i+1)
		}
		form, err := h.Form.Factor()
		if err != nil {
			return 0, err
		}
		u, err := Utilization(method, gravity, h.BoilMinutes)
		if err != nil {
			return 0, err
		}
		total += math.Max(0, h.AlphaAcids*h.Grams*u*form*10/batchLiters)
	}
	return total, nil
}
