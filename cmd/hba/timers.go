package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hbassist/hba/pkg/timer"
)

func timerStateText(s timer.State) string {
	switch s {
	case timer.StateRunning:
		return color.New(color.FgGreen).Sprint(s)
	case timer.StatePaused:
		return color.New(color.FgYellow).Sprint(s)
	case timer.StateCompleted:
		return color.New(color.Bold, color.FgCyan).Sprint(s)
	}
	return string(s)
}

func formatSeconds(sec float64) string {
	return time.Duration(sec * float64(time.Second)).Round(time.Second).String()
}

func printTimer(cmd *cobra.Command, t timer.Timer) {
	cmd.Printf("%s  %-24s %-12s %-10s %s / %s  %3.0f%%\n",
		t.ID, bold("%s", t.Name), t.Category, timerStateText(t.State),
		formatSeconds(t.RemainingSeconds), formatSeconds(t.DurationSeconds), t.Progress*100)
}

func newTimerActionCommand(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " [id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := apiClient.TimerAction(args[0], action)
			if err != nil {
				return fmt.Errorf("failed to %s timer: %w", action, err)
			}
			printTimer(cmd, *t)
			return nil
		},
	}
}

func NewTimerCommand() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:     "timer",
		Short:   "Manage brew day timers",
		GroupID: gBasic,
		Long: `Manage countdown timers for the mash, the boil and hop additions.

Categories: ` + strings.Join(categoryNames(), ", ") + `.`,
	}

	add := &cobra.Command{
		Use:   "add [duration] [name...]",
		Short: "Add a timer, e.g. \"hba timer add 60m Boil\"",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := time.ParseDuration(args[0])
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			name := strings.Join(args[1:], " ")
			t, err := apiClient.AddTimer(name, category, d)
			if err != nil {
				return fmt.Errorf("failed to add timer: %w", err)
			}
			cmd.Println(T("TimerAdded", map[string]any{"Name": t.Name, "ID": t.ID}))
			return nil
		},
	}
	add.Flags().StringVarP(&category, "category", "c", string(timer.CategoryOther), "timer category")

	cmd.AddCommand(
		add,
		&cobra.Command{
			Use:   "list",
			Short: "List timers",
			RunE: func(cmd *cobra.Command, _ []string) error {
				list, err := apiClient.GetTimers()
				if err != nil {
					return fmt.Errorf("failed to get timers: %w", err)
				}
				if len(list) == 0 {
					cmd.Println(T("NoTimers", nil))
					return nil
				}
				for _, t := range list {
					printTimer(cmd, t)
				}
				return nil
			},
		},
		newTimerActionCommand("start", "Start or resume a timer"),
		newTimerActionCommand("pause", "Pause a timer"),
		newTimerActionCommand("reset", "Reset a timer to its full duration"),
		&cobra.Command{
			Use:   "remove [id]",
			Short: "Remove a timer",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := apiClient.RemoveTimer(args[0]); err != nil {
					return err
				}
				cmd.Println(T("TimerRemoved", map[string]any{"ID": args[0]}))
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove all timers",
			RunE: func(cmd *cobra.Command, _ []string) error {
				n, err := apiClient.ClearTimers()
				if err != nil {
					return fmt.Errorf("failed to clear timers: %w", err)
				}
				cmd.Println(T("TimersCleared", map[string]any{"Count": n}))
				return nil
			},
		},
		&cobra.Command{
			Use:   "pause-all",
			Short: "Pause all running timers",
			RunE: func(cmd *cobra.Command, _ []string) error {
				n, err := apiClient.PauseAllTimers(false)
				if err != nil {
					return err
				}
				cmd.Println(T("TimersPaused", map[string]any{"Count": n}))
				return nil
			},
		},
		&cobra.Command{
			Use:   "resume-all",
			Short: "Resume all paused timers",
			RunE: func(cmd *cobra.Command, _ []string) error {
				n, err := apiClient.PauseAllTimers(true)
				if err != nil {
					return err
				}
				cmd.Println(T("TimersResumed", map[string]any{"Count": n}))
				return nil
			},
		},
	)

	return cmd
}

func categoryNames() []string {
	out := make([]string, 0, len(timer.Categories))
	for _, c := range timer.Categories {
		out = append(out, string(c))
	}
	return out
}
