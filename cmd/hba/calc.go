package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hbassist/hba/pkg/calculator"
	"github.com/hbassist/hba/pkg/client"
	"github.com/hbassist/hba/pkg/types"
)

func NewABVCommand() *cobra.Command {
	var record bool
	var notes string

	cmd := &cobra.Command{
		Use:     "abv [original-gravity] [final-gravity]",
		Short:   "Calculate alcohol content and attenuation",
		GroupID: gCalculators,
		Long: `Calculate alcohol by volume, apparent attenuation and alcohol yield
from the original and final gravity, e.g. "hba abv 1.050 1.010".

The original gravity must be higher than the final gravity.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !calculator.CanCalculate(args[0], args[1]) {
				return errors.New(T("CannotCalculate", nil))
			}

			var res *calculator.Result
			if record {
				s, err := apiClient.RecordBrewSession(types.GravityRequest{
					OriginalGravity: args[0],
					FinalGravity:    args[1],
					Notes:           notes,
				})
				if err != nil {
					return gravityError(err)
				}
				res = &calculator.Result{
					ABVPercent:                s.ABVPercent,
					AttenuationPercent:        s.AttenuationPercent,
					AlcoholYieldGramsPerLiter: calculator.AlcoholYield(s.OriginalGravity, s.FinalGravity),
				}
			} else {
				var err error
				res, err = apiClient.CalculateGravity(args[0], args[1])
				if err != nil {
					return gravityError(err)
				}
			}

			printGravity(cmd, *res)
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&record, "record", false, "record the reading as a brew session in the daemon")
	f.StringVar(&notes, "notes", "", "notes stored with the brew session")

	return cmd
}

// gravityError replaces the daemon's precondition error with a localized
// message.
func gravityError(err error) error {
	var se *client.StatusError
	if errors.As(err, &se) && se.Code == http.StatusBadRequest {
		if strings.Contains(se.Message(), calculator.ErrPreconditionViolation.Error()) {
			return errors.New(T("GravityOrder", nil))
		}
		return errors.New(se.Message())
	}
	return err
}

func printGravity(cmd *cobra.Command, res calculator.Result) {
	cmd.Printf("%s: %s\n", T("ABV", nil), bold("%.2f%%", res.ABVPercent))
	cmd.Printf("%s: %s\n", T("Attenuation", nil), bold("%.1f%%", res.AttenuationPercent))
	cmd.Printf("%s: %s\n", T("AlcoholYield", nil), bold("%.1f g/L", res.AlcoholYieldGramsPerLiter))
}

func NewHydrometerCommand() *cobra.Command {
	var calibration float64

	cmd := &cobra.Command{
		Use:     "hydrometer [gravity] [sample-temperature]",
		Short:   "Correct a hydrometer reading for temperature",
		GroupID: gCalculators,
		Long: `Correct a hydrometer reading taken at a sample temperature (°C) for a
hydrometer calibrated at another temperature (20°C by default).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := parseFloatArg(args[0], "gravity")
			if err != nil {
				return err
			}
			temp, err := parseFloatArg(args[1], "sample temperature")
			if err != nil {
				return err
			}

			corrected, err := apiClient.CorrectGravity(types.HydrometerRequest{
				Gravity:         g,
				SampleTemp:      temp,
				CalibrationTemp: &calibration,
			})
			if err != nil {
				return err
			}

			cmd.Printf("%s: %s\n", T("CorrectedGravity", nil), bold("%.3f", corrected))
			return nil
		},
	}

	cmd.Flags().Float64Var(&calibration, "calibration-temperature", calculator.DefaultCalibrationTemperature,
		"temperature (°C) the hydrometer is calibrated at")

	return cmd
}

func NewStrikeWaterCommand() *cobra.Command {
	var grainTemp float64

	cmd := &cobra.Command{
		Use:     "strike-water [grain-kg] [water-liters] [target-temperature]",
		Short:   "Calculate the strike water temperature",
		GroupID: gCalculators,
		Long: `Calculate how hot the strike water must be so the mash settles at the
target temperature (°C).`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			grain, err := parseFloatArg(args[0], "grain weight")
			if err != nil {
				return err
			}
			water, err := parseFloatArg(args[1], "water volume")
			if err != nil {
				return err
			}
			target, err := parseFloatArg(args[2], "target temperature")
			if err != nil {
				return err
			}

			t, err := apiClient.StrikeWater(types.StrikeWaterRequest{
				GrainKg:     grain,
				WaterLiters: water,
				GrainTemp:   grainTemp,
				TargetTemp:  target,
			})
			if err != nil {
				return err
			}

			cmd.Printf("%s: %s\n", T("StrikeWaterTemperature", nil), bold("%.1f°C", t))
			return nil
		},
	}

	cmd.Flags().Float64Var(&grainTemp, "grain-temperature", 20, "grain temperature (°C)")

	return cmd
}
