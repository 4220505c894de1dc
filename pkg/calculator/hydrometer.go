package calculator

import (
	pkgerrors "github.com/pkg/errors"
)

// DefaultCalibrationTemperature is the temperature (°C) most hydrometers are
// calibrated at.
const DefaultCalibrationTemperature = 20.0

// TemperatureCorrectedGravity corrects a hydrometer reading taken at
// sampleTempC for an instrument calibrated at calibrationTempC. Temperatures
// are in degrees Celsius.
func TemperatureCorrectedGravity(observed, sampleTempC, calibrationTempC float64) (float64, error) {
	cal := waterDensityCoefficient(calibrationTempC)
	if cal == 0 {
		return 0, pkgerrors.Wrapf(ErrDivisionByZero, "calibration temperature %.1f°C", calibrationTempC)
	}
	return observed * (waterDensityCoefficient(sampleTempC) / cal), nil
}

// waterDensityCoefficient evaluates the density polynomial, which is defined
// over degrees Fahrenheit.
func waterDensityCoefficient(celsius float64) float64 {
	t := celsius*9/5 + 32
	return 1.00130346 - 0.000134722124*t + 0.00000204052596*t*t - 0.00000000232820948*t*t*t
}

// StrikeWaterTemperature returns the temperature (°C) the strike water must
// have so the mash settles at targetTempC, using the metric form of Palmer's
// infusion formula.
func StrikeWaterTemperature(grainKg, waterLiters, grainTempC, targetTempC float64) (float64, error) {
	if grainKg <= 0 {
		return 0, pkgerrors.Wrapf(ErrPreconditionViolation, "grain weight must be positive, got %.2f kg", grainKg)
	}
	if waterLiters <= 0 {
		return 0, pkgerrors.Wrapf(ErrPreconditionViolation, "water volume must be positive, got %.2f L", waterLiters)
	}
	ratio := waterLiters / grainKg
	return targetTempC + ((targetTempC-grainTempC)*0.4)/ratio, nil
}
