package types

import "github.com/hbassist/hba/pkg/calculator"

// GravityRequest carries the raw text of two hydrometer readings.
type GravityRequest struct {
	OriginalGravity string `json:"originalGravity"`
	FinalGravity    string `json:"finalGravity"`
	RecipeID        string `json:"recipeId,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

type HydrometerRequest struct {
	Gravity    float64 `json:"gravity"`
	SampleTemp float64 `json:"sampleTemp"`
	// CalibrationTemp defaults to 20°C.
	CalibrationTemp *float64 `json:"calibrationTemp,omitempty"`
}

type HydrometerResponse struct {
	CorrectedGravity float64 `json:"correctedGravity"`
}

type StrikeWaterRequest struct {
	GrainKg     float64 `json:"grainKg"`
	WaterLiters float64 `json:"waterLiters"`
	GrainTemp   float64 `json:"grainTemp"`
	TargetTemp  float64 `json:"targetTemp"`
}

type StrikeWaterResponse struct {
	StrikeTemp float64 `json:"strikeTemp"`
}

type ReminderRequest struct {
	Schedule string `json:"schedule"`
	Message  string `json:"message"`
}

type IBURequest struct {
	BatchLiters float64                  `json:"batchLiters"`
	Gravity     float64                  `json:"gravity"`
	Method      string                   `json:"method,omitempty"`
	Hops        []calculator.HopAddition `json:"hops"`
}

type IBUResponse struct {
	IBU    float64 `json:"ibu"`
	Method string  `json:"method"`
}

type SRMRequest struct {
	BatchLiters float64                    `json:"batchLiters"`
	Grains      []calculator.GrainAddition `json:"grains"`
}

type SRMResponse struct {
	SRM   float64 `json:"srm"`
	MCU   float64 `json:"mcu"`
	Color string  `json:"color"`
}

// PrimingSugarRequest takes the target CO2 volumes directly or from a beer
// style when TargetVolumes is zero.
type PrimingSugarRequest struct {
	BatchLiters   float64 `json:"batchLiters"`
	TempC         float64 `json:"tempC"`
	TargetVolumes float64 `json:"targetVolumes,omitempty"`
	Style         string  `json:"style,omitempty"`
	Sugar         string  `json:"sugar,omitempty"`
}

type PrimingSugarResponse struct {
	Grams         float64 `json:"grams"`
	Sugar         string  `json:"sugar"`
	TargetVolumes float64 `json:"targetVolumes"`
	ResidualCO2   float64 `json:"residualCO2"`
}

// ScaleRequest resizes a recipe. FromLiters defaults to the configured
// batch size.
type ScaleRequest struct {
	FromLiters float64 `json:"fromLiters,omitempty"`
	ToLiters   float64 `json:"toLiters"`
}

// TimerRequest adds a brew timer. Duration is a Go duration string such as
// "1h" or "90m".
type TimerRequest struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Duration string `json:"duration"`
}
