package calculator

import (
	"errors"
	"testing"
)

func TestTemperatureCorrectedGravity(t *testing.T) {
	// Reading at calibration temperature is unchanged.
	got, err := TemperatureCorrectedGravity(1.050, 20, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(got, 1.050, 1e-12) {
		t.Errorf("corrected gravity at calibration temperature = %v, want 1.050", got)
	}

	// Warm samples read low, so the correction must raise the value.
	warm, err := TemperatureCorrectedGravity(1.050, 30, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if warm <= 1.050 || warm > 1.060 {
		t.Errorf("corrected gravity at 30°C = %v, want slightly above 1.050", warm)
	}

	cold, err := TemperatureCorrectedGravity(1.050, 10, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cold >= 1.050 {
		t.Errorf("corrected gravity at 10°C = %v, want below 1.050", cold)
	}
}

func TestStrikeWaterTemperature(t *testing.T) {
	// 5 kg grain, 15 L water, grain at 20°C, mash at 66°C:
	// 66 + (46 * 0.4) / 3
	got, err := StrikeWaterTemperature(5, 15, 20, 66)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(got, 66+46*0.4/3, 1e-9) {
		t.Errorf("StrikeWaterTemperature = %v", got)
	}

	for _, in := range [][2]float64{{0, 15}, {5, 0}, {-1, 10}} {
		if _, err := StrikeWaterTemperature(in[0], in[1], 20, 66); !errors.Is(err, ErrPreconditionViolation) {
			t.Errorf("StrikeWaterTemperature(%v, %v) error = %v, want ErrPreconditionViolation", in[0], in[1], err)
		}
	}
}

func TestTemperatureCorrectedGravityValues(t *testing.T) {
	tests := []struct {
		observed, sample, calibration float64
		want                          float64
	}{
		{1.050, 30, 20, 1.0526044557208447},
		{1.050, 10, 20, 1.0484598588675151},
	}
	for _, tt := range tests {
		got, err := TemperatureCorrectedGravity(tt.observed, tt.sample, tt.calibration)
		if err != nil {
			t.Fatalf("TemperatureCorrectedGravity(%v, %v, %v): %v", tt.observed, tt.sample, tt.calibration, err)
		}
		if !almostEqual(got, tt.want, 1e-9) {
			t.Errorf("TemperatureCorrectedGravity(%v, %v, %v) = %.10f, want %.10f",
				tt.observed, tt.sample, tt.calibration, got, tt.want)
		}
	}
}
