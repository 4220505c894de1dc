package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hbassist/hba/pkg/types"
)

func NewRecipesCommand() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:     "recipes",
		Short:   "List recipes",
		GroupID: gBasic,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := apiClient.GetRecipes()
			if err != nil {
				return fmt.Errorf("failed to get recipes: %w", err)
			}
			if len(list) == 0 {
				cmd.Println(T("NoRecipes", nil))
				return nil
			}

			for _, r := range list {
				printRecipe(cmd, r, verbose)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show ingredients and instructions")
	cmd.AddCommand(newRecipeScaleCommand())

	return cmd
}

func printRecipe(cmd *cobra.Command, r types.Recipe, verbose bool) {
	cmd.Printf("%s  %s, %s ABV, %d IBU, %d min (%s)\n",
		bold("%s", r.Name), r.Style, bold("%.1f%%", r.ABV), r.IBU, r.BrewTime, r.Difficulty)
	if !verbose {
		return
	}
	for _, i := range r.Ingredients {
		timing := ""
		if i.Timing != "" {
			timing = " @ " + i.Timing
		}
		cmd.Printf("    - %s %s%s\n", i.Amount, i.Name, timing)
	}
	for n, step := range r.Instructions {
		cmd.Printf("    %d. %s\n", n+1, step)
	}
	if r.Notes != "" {
		cmd.Printf("    %s\n", strings.ReplaceAll(r.Notes, "\n", "\n    "))
	}
	cmd.Println()
}

func newRecipeScaleCommand() *cobra.Command {
	var from float64

	cmd := &cobra.Command{
		Use:   "scale [recipe-id] [liters]",
		Short: "Scale a recipe to another batch size",
		Long: `Scale the ingredient amounts of a recipe, and the volumes and weights in
its instructions, to another batch size. The recipe is assumed to be written
for the configured default batch size unless --from is given.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, err := parseFloatArg(args[1], "batch size")
			if err != nil {
				return err
			}
			r, err := apiClient.ScaleRecipe(args[0], from, to)
			if err != nil {
				return calcError(err)
			}
			cmd.Println(T("RecipeScaled", map[string]any{"Liters": args[1]}))
			printRecipe(cmd, *r, true)
			return nil
		},
	}

	cmd.Flags().Float64Var(&from, "from", 0, "batch size in liters the recipe is written for")

	return cmd
}

func NewBrewSessionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sessions",
		Short:   "List recorded brew sessions",
		GroupID: gBasic,
		Long:    `List brew sessions recorded with "hba abv --record", newest first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := apiClient.GetBrewSessions()
			if err != nil {
				return fmt.Errorf("failed to get brew sessions: %w", err)
			}
			if len(list) == 0 {
				cmd.Println(T("NoSessions", nil))
				return nil
			}

			for _, s := range list {
				cmd.Printf("%s  OG %.3f  FG %.3f  %s ABV  %.0f%%  %s\n",
					s.CreatedAt.Local().Format("2006-01-02 15:04"),
					s.OriginalGravity, s.FinalGravity, bold("%.2f%%", s.ABVPercent), s.AttenuationPercent, s.Notes)
			}
			return nil
		},
	}

	return cmd
}

func NewVersionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "versions",
		Short:   "Show the version history",
		GroupID: gAdvanced,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := apiClient.GetVersions()
			if err != nil {
				return fmt.Errorf("failed to get version history: %w", err)
			}
			if len(list) == 0 {
				cmd.Println(T("NoVersions", nil))
				return nil
			}

			for _, v := range list {
				cmd.Printf("%s (%s)  %s  %s\n", bold("%s", v.Version), v.BuildNumber,
					v.ReleaseDate.Local().Format("2006-01-02"), v.Type)
				if len(v.Changes) > 0 {
					cmd.Printf("    %s\n", strings.Join(v.Changes, "\n    "))
				}
			}
			return nil
		},
	}
}
