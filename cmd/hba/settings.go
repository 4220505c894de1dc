package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hbassist/hba/pkg/i18n"
)

func NewLanguageCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "language [code]",
		Short:   "Set the display language",
		GroupID: gBasic,
		Long:    fmt.Sprintf("Set the display language. Supported: %s.", strings.Join(i18n.Supported(), ", ")),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := apiClient.SetLanguage(args[0])
			if err != nil {
				return fmt.Errorf("failed to set language: %w", err)
			}

			// Answer in the new language.
			langOverride = code
			loc = nil
			cmd.Println(T("LanguageSet", map[string]any{"Language": code}))
			return nil
		},
	}
}

func NewSetMetricCommand() *cobra.Command {
	return newEnableDisableCommand(
		"metric",
		"Use metric units",
		`Use metric units (liters, kilograms, °C) instead of imperial units.`,
		func() (string, error) { return apiClient.SetUseMetricSystem(true) },
		func() (string, error) { return apiClient.SetUseMetricSystem(false) },
	)
}

func NewSetDarkModeCommand() *cobra.Command {
	return newEnableDisableCommand(
		"dark-mode",
		"Use the dark color scheme",
		`Use the dark color scheme in clients that support it.`,
		func() (string, error) { return apiClient.SetDarkMode(true) },
		func() (string, error) { return apiClient.SetDarkMode(false) },
	)
}

func NewSetNotificationsCommand() *cobra.Command {
	return newEnableDisableCommand(
		"notifications",
		"Send brew reminder notifications",
		`Set whether brew reminders are delivered as notifications.`,
		func() (string, error) { return apiClient.SetNotificationsEnabled(true) },
		func() (string, error) { return apiClient.SetNotificationsEnabled(false) },
	)
}

func NewOnboardingCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "onboarding",
		Short:   "Manage onboarding",
		GroupID: gBasic,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "complete",
		Short: "Complete onboarding and install the default recipes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := apiClient.CompleteOnboarding()
			if err != nil {
				return fmt.Errorf("failed to complete onboarding: %w", err)
			}
			cmd.Println(T("OnboardingCompleted", nil))
			if n > 0 {
				cmd.Println(T("RecipesInstalled", map[string]any{"Count": n}))
			}
			return nil
		},
	})

	return cmd
}
