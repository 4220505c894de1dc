package calculator

import (
	"math"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// SugarType is a priming sugar.
type SugarType string

const (
	Dextrose SugarType = "dextrose"
	Sucrose  SugarType = "sucrose"
	DME      SugarType = "dme"
	Honey    SugarType = "honey"
)

// Factor converts a dextrose amount into an amount of this sugar.
func (s SugarType) Factor() (float64, error) {
	switch SugarType(strings.ToLower(string(s))) {
	case Dextrose, "":
		return 1.0, nil
	case Sucrose:
		return 0.90, nil
	case DME:
		return 1.33, nil
	case Honey:
		return 0.75, nil
	}
	return 0, pkgerrors.Wrapf(ErrInvalidInput, "unknown priming sugar %q", string(s))
}

// ResidualCO2 returns the volumes of CO2 still dissolved in beer at
// tempC after fermentation.
func ResidualCO2(tempC float64) float64 {
	return 3.0378 - 0.050062*tempC + 0.00026555*tempC*tempC
}

// PrimingSugar returns the grams of sugar needed to carbonate batchLiters
// of beer at tempC to targetVolumes of CO2. Beer already holding the target
// needs none.
func PrimingSugar(batchLiters, tempC, targetVolumes float64, sugar SugarType) (float64, error) {
	if batchLiters <= 0 {
		return 0, pkgerrors.Wrapf(ErrPreconditionViolation, "batch size must be positive, got %.2f L", batchLiters)
	}
	if targetVolumes < 0 {
		return 0, pkgerrors.Wrapf(ErrPreconditionViolation, "target CO2 must not be negative, got %.2f", targetVolumes)
	}
	factor, err := sugar.Factor()
	if err != nil {
		return 0, err
	}
	needed := math.Max(0, targetVolumes-ResidualCO2(tempC))
	return needed * 4.0 * batchLiters * factor, nil
}

// StyleCO2 holds the recommended CO2 volumes per beer style.
var StyleCO2 = map[string]float64{
	"lager":   2.6,
	"ale":     2.2,
	"wheat":   3.2,
	"belgian": 2.8,
	"stout":   1.8,
	"ipa":     2.4,
}
