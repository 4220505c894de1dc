package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hbassist/hba/pkg/config"
	"github.com/hbassist/hba/pkg/reminder"
	"github.com/hbassist/hba/pkg/reset"
	"github.com/hbassist/hba/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", version.Version, version.GitCommit)
		},
	}
}

type statusData struct {
	Config      *config.RawFileConfig `json:"config"`
	Reset       *reset.Status         `json:"reset"`
	Recipes     int                   `json:"recipes"`
	Sessions    int                   `json:"brewSessions"`
	Reminders   []reminder.Reminder   `json:"reminders"`
	DaemonBuild string                `json:"daemonVersion"`
}

// fetchStatusData gathers all data required for the status command from the daemon.
func fetchStatusData() (*statusData, error) {
	conf, err := apiClient.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get config: %w", err)
	}

	st, err := apiClient.GetReset()
	if err != nil {
		return nil, fmt.Errorf("failed to get factory reset status: %w", err)
	}

	recipes, err := apiClient.GetRecipes()
	if err != nil {
		return nil, fmt.Errorf("failed to get recipes: %w", err)
	}

	sessions, err := apiClient.GetBrewSessions()
	if err != nil {
		return nil, fmt.Errorf("failed to get brew sessions: %w", err)
	}

	reminders, err := apiClient.GetReminders()
	if err != nil {
		return nil, fmt.Errorf("failed to get reminders: %w", err)
	}

	v, err := apiClient.GetVersion()
	if err != nil {
		return nil, fmt.Errorf("failed to get daemon version: %w", err)
	}

	return &statusData{
		Config:      conf,
		Reset:       st,
		Recipes:     len(recipes),
		Sessions:    len(sessions),
		Reminders:   reminders,
		DaemonBuild: v,
	}, nil
}

func NewStatusCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "status",
		GroupID: gBasic,
		Short:   "Get the current status of hba",
		Long:    `Get settings, stored data and factory reset status.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := fetchStatusData()
			if err != nil {
				return err
			}

			if asJSON {
				b, err := json.MarshalIndent(data, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal status: %w", err)
				}
				cmd.Println(string(b))
				return nil
			}

			conf := config.NewFileFromConfig(data.Config, "")

			cmd.Println(bold("Settings:"))
			cmd.Printf("  Language: %s\n", bold("%s", conf.Language()))
			cmd.Println("  Metric units: " + bool2Text(conf.UseMetricSystem()))
			cmd.Println("  Dark mode: " + bool2Text(conf.DarkMode()))
			cmd.Println("  Notifications: " + bool2Text(conf.NotificationsEnabled()))
			cmd.Printf("  Default batch size: %s\n", bold("%.1f L", conf.DefaultBatchSize()))
			cmd.Printf("  Default efficiency: %s\n", bold("%.0f%%", conf.DefaultEfficiency()))
			cmd.Println("  Onboarding completed: " + bool2Text(conf.HasCompletedOnboarding()))
			cmd.Println()

			cmd.Println(bold("Data:"))
			cmd.Printf("  Recipes: %s\n", bold("%d", data.Recipes))
			cmd.Printf("  Brew sessions: %s\n", bold("%d", data.Sessions))
			cmd.Printf("  Reminders: %s\n", bold("%d", len(data.Reminders)))
			cmd.Printf("  Storage: %s\n", bold("%s", conf.Storage().Driver))
			cmd.Println()

			cmd.Println(bold("Factory reset:"))
			cmd.Printf("  Phase: %s\n", phaseText(data.Reset.Phase))
			if data.Reset.Phase != reset.PhaseIdle {
				cmd.Printf("  Progress: %s\n", bold("%.0f%%", data.Reset.Progress*100))
			}
			if data.Reset.Reason != "" {
				cmd.Printf("  Reason: %s\n", data.Reset.Reason)
			}
			cmd.Println()

			cmd.Printf("Daemon version: %s\n", data.DaemonBuild)

			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print status as JSON")

	return cmd
}
