package calculator

import (
	"math"

	pkgerrors "github.com/pkg/errors"
)

const (
	poundsPerKilogram = 2.2046
	gallonsPerLiter   = 0.264172
)

// GrainAddition is one fermentable in the grain bill.
type GrainAddition struct {
	Name     string  `json:"name,omitempty"`
	Kilogram float64 `json:"kilogram"`
	Lovibond float64 `json:"lovibond"`
}

// MCU returns the malt color units of the grain bill in a batch of
// batchLiters.
func MCU(grains []GrainAddition, batchLiters float64) (float64, error) {
	if batchLiters <= 0 {
		return 0, pkgerrors.Wrapf(ErrPreconditionViolation, "batch size must be positive, got %.2f L", batchLiters)
	}
	var total float64
	for i, g := range grains {
		if g.Kilogram < 0 || g.Lovibond < 0 {
			return 0, pkgerrors.Wrapf(ErrPreconditionViolation, "grain addition %d has a negative value", i+1)
		}
		total += g.Kilogram * poundsPerKilogram * g.Lovibond
	}
	return total / (batchLiters * gallonsPerLiter), nil
}

// SRM returns the beer color in SRM. Each grain contributes separately
// through the Morey equation 1.4922 * MCU^0.6859.
func SRM(grains []GrainAddition, batchLiters float64) (float64, error) {
	if batchLiters <= 0 {
		return 0, pkgerrors.Wrapf(ErrPreconditionViolation, "batch size must be positive, got %.2f L", batchLiters)
	}
	var total float64
	for _, g := range grains {
		mcu, err := MCU([]GrainAddition{g}, batchLiters)
		if err != nil {
			return 0, err
		}
		total += 1.4922 * math.Pow(mcu, 0.6859)
	}
	return total, nil
}

// ColorName returns a descriptive color band for an SRM value.
func ColorName(srm float64) string {
	switch {
	case srm < 2:
		return "light lager"
	case srm < 4:
		return "pale"
	case srm < 6:
		return "golden"
	case srm < 9:
		return "amber"
	case srm < 12:
		return "light brown"
	case srm < 18:
		return "brown"
	case srm < 25:
		return "dark brown"
	case srm < 35:
		return "black"
	}
	return "very dark"
}
