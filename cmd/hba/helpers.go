package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hbassist/hba/pkg/i18n"
)

// langOverride is set by --lang.
var langOverride string

var loc *i18n.Localizer

// localizer returns the output localizer, using --lang or else the language
// configured in the daemon.
func localizer() *i18n.Localizer {
	if loc != nil {
		return loc
	}

	lang := langOverride
	if lang == "" {
		if conf, err := apiClient.GetConfig(); err == nil && conf.Language != nil {
			lang = *conf.Language
		}
	}

	l, err := i18n.New(lang)
	if err != nil {
		// The bundled catalogs failed to load; T falls back to message IDs.
		logrus.Warnf("failed to load translations: %v", err)
		l = &i18n.Localizer{}
	}
	loc = l
	return loc
}

func T(id string, data map[string]any) string {
	return localizer().T(id, data)
}

func parseFloatArg(arg string, valueName string) (float64, error) {
	value, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", valueName, err)
	}

	return value, nil
}

func newEnableDisableCommand(
	use, short, long string,
	enableFunc func() (string, error),
	disableFunc func() (string, error),
) *cobra.Command {
	cmd := &cobra.Command{
		Use:     use,
		Short:   short,
		Long:    long,
		GroupID: gAdvanced,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "enable",
			Short: "Enable " + short,
			RunE: func(cmd *cobra.Command, _ []string) error {
				_, err := enableFunc()
				if err != nil {
					return fmt.Errorf("failed to enable %s: %w", use, err)
				}
				cmd.Println(T("SettingEnabled", map[string]any{"Setting": use}))
				return nil
			},
		},
		&cobra.Command{
			Use:   "disable",
			Short: "Disable " + short,
			RunE: func(cmd *cobra.Command, _ []string) error {
				_, err := disableFunc()
				if err != nil {
					return fmt.Errorf("failed to disable %s: %w", use, err)
				}
				cmd.Println(T("SettingDisabled", map[string]any{"Setting": use}))
				return nil
			},
		},
	)

	return cmd
}

func bool2Text(b bool) string {
	if b {
		return color.New(color.Bold, color.FgGreen).Sprint("✔")
	}
	return color.New(color.Bold, color.FgRed).Sprint("✘")
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}
