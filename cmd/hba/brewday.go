package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hbassist/hba/pkg/calculator"
	"github.com/hbassist/hba/pkg/client"
	"github.com/hbassist/hba/pkg/types"
)

// calcError shows the daemon's message for rejected input.
func calcError(err error) error {
	var se *client.StatusError
	if errors.As(err, &se) && se.Code == http.StatusBadRequest {
		return errors.New(se.Message())
	}
	return err
}

// parseHop parses alpha:grams:minutes[:form], e.g. "5.5:28:60:whole".
func parseHop(s string) (calculator.HopAddition, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return calculator.HopAddition{}, fmt.Errorf("invalid hop %q, want alpha:grams:minutes[:form]", s)
	}
	alpha, err := parseFloatArg(parts[0], "alpha acids")
	if err != nil {
		return calculator.HopAddition{}, err
	}
	grams, err := parseFloatArg(parts[1], "hop weight")
	if err != nil {
		return calculator.HopAddition{}, err
	}
	minutes, err := parseFloatArg(parts[2], "boil time")
	if err != nil {
		return calculator.HopAddition{}, err
	}
	h := calculator.HopAddition{AlphaAcids: alpha, Grams: grams, BoilMinutes: minutes}
	if len(parts) == 4 {
		h.Form = calculator.HopForm(parts[3])
	}
	return h, nil
}

// parseGrain parses kg:lovibond, e.g. "4.5:3".
func parseGrain(s string) (calculator.GrainAddition, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return calculator.GrainAddition{}, fmt.Errorf("invalid grain %q, want kg:lovibond", s)
	}
	kg, err := parseFloatArg(parts[0], "grain weight")
	if err != nil {
		return calculator.GrainAddition{}, err
	}
	lovibond, err := parseFloatArg(parts[1], "grain color")
	if err != nil {
		return calculator.GrainAddition{}, err
	}
	return calculator.GrainAddition{Kilogram: kg, Lovibond: lovibond}, nil
}

func NewIBUCommand() *cobra.Command {
	var (
		batch   float64
		gravity float64
		method  string
		hops    []string
	)

	cmd := &cobra.Command{
		Use:     "ibu",
		Short:   "Calculate bitterness from hop additions",
		GroupID: gCalculators,
		Long: `Calculate the bitterness (IBU) of a batch from its hop additions.

Each --hop is alpha:grams:minutes[:form], where form is pellet (default),
whole or plug. For example:

  hba ibu --batch 20 --gravity 1.050 --hop 5.5:28:60 --hop 8:15:10:whole`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(hops) == 0 {
				return fmt.Errorf("at least one --hop is required")
			}
			req := types.IBURequest{BatchLiters: batch, Gravity: gravity, Method: method}
			for _, s := range hops {
				h, err := parseHop(s)
				if err != nil {
					return err
				}
				req.Hops = append(req.Hops, h)
			}

			res, err := apiClient.CalculateIBU(req)
			if err != nil {
				return calcError(err)
			}

			cmd.Printf("%s: %s (%s)\n", T("IBU", nil), bold("%.1f", res.IBU), res.Method)
			return nil
		},
	}

	f := cmd.Flags()
	f.Float64Var(&batch, "batch", 20, "batch size in liters")
	f.Float64Var(&gravity, "gravity", 1.050, "boil gravity")
	f.StringVar(&method, "method", string(calculator.Tinseth), "utilization formula (tinseth, rager, garetz)")
	f.StringArrayVar(&hops, "hop", nil, "hop addition as alpha:grams:minutes[:form], repeatable")

	return cmd
}

func NewSRMCommand() *cobra.Command {
	var (
		batch  float64
		grains []string
	)

	cmd := &cobra.Command{
		Use:     "srm",
		Short:   "Estimate beer color from the grain bill",
		GroupID: gCalculators,
		Long: `Estimate the color of a batch in SRM with the Morey formula.

Each --grain is kg:lovibond, for example:

  hba srm --batch 20 --grain 4.5:3 --grain 0.3:40`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(grains) == 0 {
				return fmt.Errorf("at least one --grain is required")
			}
			req := types.SRMRequest{BatchLiters: batch}
			for _, s := range grains {
				g, err := parseGrain(s)
				if err != nil {
					return err
				}
				req.Grains = append(req.Grains, g)
			}

			res, err := apiClient.CalculateSRM(req)
			if err != nil {
				return calcError(err)
			}

			cmd.Printf("%s: %s (MCU %.1f)\n", T("SRM", nil), bold("%.1f", res.SRM), res.MCU)
			cmd.Printf("%s: %s\n", T("Color", nil), T("Color_"+strings.ReplaceAll(res.Color, " ", "_"), nil))
			return nil
		},
	}

	f := cmd.Flags()
	f.Float64Var(&batch, "batch", 20, "batch size in liters")
	f.StringArrayVar(&grains, "grain", nil, "grain as kg:lovibond, repeatable")

	return cmd
}

func NewPrimingSugarCommand() *cobra.Command {
	var (
		sugar string
		style string
	)

	cmd := &cobra.Command{
		Use:     "priming-sugar [batch-liters] [beer-temperature] [target-volumes]",
		Short:   "Calculate priming sugar for bottling",
		GroupID: gCalculators,
		Long: `Calculate how much sugar to add at bottling to reach the target CO2
volumes. The beer temperature (°C) is the highest temperature the beer
reached after fermentation. Leave out the target to use --style.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, err := parseFloatArg(args[0], "batch size")
			if err != nil {
				return err
			}
			temp, err := parseFloatArg(args[1], "beer temperature")
			if err != nil {
				return err
			}
			req := types.PrimingSugarRequest{BatchLiters: batch, TempC: temp, Sugar: sugar, Style: style}
			if len(args) == 3 {
				if req.TargetVolumes, err = parseFloatArg(args[2], "target volumes"); err != nil {
					return err
				}
			}

			res, err := apiClient.PrimingSugar(req)
			if err != nil {
				return calcError(err)
			}

			cmd.Printf("%s: %s %s\n", T("PrimingSugar", nil), bold("%.0f g", res.Grams), res.Sugar)
			cmd.Printf("  %s: %.2f, %s: %.2f\n",
				T("TargetCO2", nil), res.TargetVolumes, T("ResidualCO2", nil), res.ResidualCO2)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&sugar, "sugar", string(calculator.Dextrose), "sugar type (dextrose, sucrose, dme, honey)")
	f.StringVar(&style, "style", "ale", "beer style for the target CO2 (lager, ale, wheat, belgian, stout, ipa)")

	return cmd
}
