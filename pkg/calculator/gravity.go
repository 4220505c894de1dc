package calculator

import (
	"math"
	"strconv"

	pkgerrors "github.com/pkg/errors"
)

const (
	// ABVFactor is the simplified (OG - FG) multiplier. Existing results
	// depend on this exact constant.
	ABVFactor = 131.25
	// EthanolDensity is the density of ethanol in g/mL.
	EthanolDensity = 0.789
)

// Result holds the metrics derived from one pair of gravity readings.
type Result struct {
	ABVPercent                float64 `json:"abvPercent"`
	AttenuationPercent        float64 `json:"attenuationPercent"`
	AlcoholYieldGramsPerLiter float64 `json:"alcoholYieldGramsPerLiter"`
}

// ABV returns the alcohol by volume in percent. og must be greater than fg.
func ABV(og, fg float64) (float64, error) {
	if og <= fg {
		return 0, pkgerrors.Wrapf(ErrPreconditionViolation,
			"original gravity %.3f must be greater than final gravity %.3f", og, fg)
	}
	return (og - fg) * ABVFactor, nil
}

// Attenuation returns the apparent attenuation in percent.
func Attenuation(og, fg float64) (float64, error) {
	if og == 1.0 {
		return 0, pkgerrors.Wrap(ErrDivisionByZero, "original gravity of 1.000 has no fermentable extract")
	}
	return ((og - fg) / (og - 1.0)) * 100, nil
}

// AlcoholYield returns the approximate alcohol yield in grams per liter.
func AlcoholYield(og, fg float64) float64 {
	return (og - fg) * 1000 * EthanolDensity
}

// Compute returns all gravity-derived metrics at once.
func Compute(og, fg float64) (Result, error) {
	abv, err := ABV(og, fg)
	if err != nil {
		return Result{}, err
	}
	att, err := Attenuation(og, fg)
	if err != nil {
		return Result{}, err
	}
	return Result{
		ABVPercent:                abv,
		AttenuationPercent:        att,
		AlcoholYieldGramsPerLiter: AlcoholYield(og, fg),
	}, nil
}

// CanCalculate reports whether both raw readings are non-empty decimal
// numbers. It never fails; unparsable input simply yields false.
func CanCalculate(rawOG, rawFG string) bool {
	_, _, err := ParseGravities(rawOG, rawFG)
	return err == nil
}

// ParseGravities parses the two raw readings typed by a user.
func ParseGravities(rawOG, rawFG string) (og, fg float64, err error) {
	og, err = parseDecimal("original gravity", rawOG)
	if err != nil {
		return 0, 0, err
	}
	fg, err = parseDecimal("final gravity", rawFG)
	if err != nil {
		return 0, 0, err
	}
	return og, fg, nil
}

func parseDecimal(name, raw string) (float64, error) {
	if raw == "" {
		return 0, pkgerrors.Wrapf(ErrInvalidInput, "%s is empty", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, pkgerrors.Wrapf(ErrInvalidInput, "%s %q is not a number", name, raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, pkgerrors.Wrapf(ErrInvalidInput, "%s %q is not a finite number", name, raw)
	}
	return v, nil
}
