package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hbassist/hba/pkg/client"
	"github.com/hbassist/hba/pkg/daemon"
	"github.com/hbassist/hba/pkg/reset"
)

var stepMessages = map[string]string{
	daemon.StepUserSettings:   "StepUserSettings",
	daemon.StepRecipes:        "StepRecipes",
	daemon.StepPhotos:         "StepPhotos",
	daemon.StepAnalytics:      "StepAnalytics",
	daemon.StepVersionHistory: "StepVersionHistory",
	daemon.StepReminders:      "StepReminders",
	daemon.StepOnboarding:     "StepOnboarding",
}

func stepText(step string) string {
	if id, ok := stepMessages[step]; ok {
		return T(id, nil)
	}
	return step
}

func phaseText(p reset.Phase) string {
	switch p {
	case reset.PhaseRunning:
		return color.New(color.Bold, color.FgYellow).Sprint(T("PhaseRunning", nil))
	case reset.PhaseCompleted:
		return color.New(color.Bold, color.FgGreen).Sprint(T("PhaseCompleted", nil))
	case reset.PhaseFailed:
		return color.New(color.Bold, color.FgRed).Sprint(T("PhaseFailed", nil))
	default:
		return bold("%s", T("PhaseIdle", nil))
	}
}

func progressLine(st reset.Status) string {
	pct := fmt.Sprintf("%3.0f", st.Progress*100)
	return T("ResetProgress", map[string]any{"Percent": pct, "Step": stepText(st.Step)})
}

// confirm asks a yes/no question on the terminal.
func confirm(question string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, errors.New("refusing to reset without a terminal, pass --yes to confirm")
	}
	fmt.Printf("%s [y/N] ", question)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "j", "ja":
		return true, nil
	}
	return false, nil
}

func NewFactoryResetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "factory-reset",
		Short:   "Restore factory settings",
		GroupID: gAdvanced,
		Long: `Restore factory settings.

A factory reset clears user settings, deletes all recipes, photos, brew
sessions, version history and reminders, and restarts onboarding. The display
language and storage settings are kept.`,
	}

	cmd.AddCommand(
		newFactoryResetStartCommand(),
		&cobra.Command{
			Use:   "status",
			Short: "Show the factory reset status",
			RunE: func(cmd *cobra.Command, _ []string) error {
				st, err := apiClient.GetReset()
				if err != nil {
					return fmt.Errorf("failed to get factory reset status: %w", err)
				}
				printResetStatus(cmd, st)
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Clear a finished factory reset",
			RunE: func(cmd *cobra.Command, _ []string) error {
				_, err := apiClient.ClearReset()
				if err != nil {
					if errors.Is(err, client.ErrConflict) {
						return fmt.Errorf("a factory reset is still running: %w", err)
					}
					return fmt.Errorf("failed to clear factory reset: %w", err)
				}
				cmd.Println(T("ResetCleared", nil))
				return nil
			},
		},
	)

	return cmd
}

func newFactoryResetStartCommand() *cobra.Command {
	var (
		noWait bool
		yes    bool
	)

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a factory reset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				ok, err := confirm(T("ResetConfirm", nil))
				if err != nil {
					return err
				}
				if !ok {
					cmd.Println(T("ResetAborted", nil))
					return nil
				}
			}

			st, err := apiClient.StartReset()
			if err != nil {
				if errors.Is(err, client.ErrConflict) {
					return fmt.Errorf("a factory reset is already running: %w", err)
				}
				return fmt.Errorf("failed to start factory reset: %w", err)
			}
			cmd.Println(T("ResetStarted", nil))

			if noWait {
				cmd.Printf("run: %s\n", st.RunID)
				return nil
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			final, err := apiClient.WaitReset(ctx, st.RunID, 200*time.Millisecond, func(s reset.Status) {
				if s.Phase == reset.PhaseRunning {
					cmd.Println(progressLine(s))
				}
			})
			if err != nil {
				return fmt.Errorf("failed to follow factory reset: %w", err)
			}

			if final.Phase == reset.PhaseFailed {
				return errors.New(T("ResetFailed", map[string]any{"Reason": final.Reason}))
			}
			cmd.Println(color.New(color.Bold, color.FgGreen).Sprint(T("ResetCompleted", nil)))
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&noWait, "no-wait", false, "return as soon as the reset has started")
	f.BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	return cmd
}

func printResetStatus(cmd *cobra.Command, st *reset.Status) {
	cmd.Printf("Phase: %s\n", phaseText(st.Phase))
	if st.Phase == reset.PhaseIdle {
		return
	}
	cmd.Printf("Run: %s\n", st.RunID)
	cmd.Printf("Progress: %s\n", bold("%.0f%%", st.Progress*100))
	if st.Step != "" {
		cmd.Printf("Step: %s (%d/%d)\n", stepText(st.Step), st.StepIndex+1, st.StepCount)
	}
	if !st.StartedAt.IsZero() {
		cmd.Printf("Started: %s\n", st.StartedAt.Local().Format(time.DateTime))
	}
	if !st.FinishedAt.IsZero() {
		cmd.Printf("Finished: %s\n", st.FinishedAt.Local().Format(time.DateTime))
	}
	if st.Reason != "" {
		cmd.Printf("Reason: %s\n", color.RedString(st.Reason))
	}
	if st.Message != "" {
		cmd.Println(st.Message)
	}
}
