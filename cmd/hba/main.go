package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hbassist/hba/pkg/client"
	"github.com/hbassist/hba/pkg/version"
)

var (
	logLevel       = "info"
	unixSocketPath = "/var/run/hba.sock"
	configPath     = "/etc/hba.json"
)

var (
	gBasic        = "Basic:"
	gCalculators  = "Calculators:"
	gAdvanced     = "Advanced:"
	commandGroups = []string{
		gBasic,
		gCalculators,
		gAdvanced,
	}
)

var apiClient = client.NewClient(unixSocketPath)

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

func handleCmdError(err error) {
	if errors.Is(err, client.ErrDaemonNotRunning) {
		fmt.Fprintln(os.Stderr, "\nError: hba daemon is not running")
		fmt.Fprintln(os.Stderr, "Start it with 'hba daemon' or through your service manager.")
	} else if errors.Is(err, client.ErrPermissionDenied) {
		fmt.Fprintln(os.Stderr, "\nError: Permission Denied")
		fmt.Fprintln(os.Stderr, "  - Try running the command again with 'sudo'")
		fmt.Fprintln(os.Stderr, "  - Or start the daemon with '--always-allow-non-root-access' to grant permissions to your user")
	}
}

func getVersion() (string, string, error) {
	daemonVersion, err := apiClient.GetVersion()
	if err != nil {
		return version.Version, "", err
	}
	return version.Version, daemonVersion, nil
}

func main() {
	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		handleCmdError(err)
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hba",
		Short: "hba is a home brewing assistant",
		Long: `hba is a home brewing assistant.

It calculates alcohol content, attenuation and mash temperatures, keeps your
recipes and brew sessions, reminds you of brew day tasks and can restore
everything to factory settings.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			err := setupLogger()
			if err != nil {
				return err
			}

			apiClient = client.NewClient(unixSocketPath)

			// The daemon itself and pure client commands do not talk to a daemon.
			switch cmd.Name() {
			case "daemon", "version", "install", "uninstall":
				return nil
			}

			if clientVersion, daemonVersion, err := getVersion(); err == nil {
				if daemonVersion != clientVersion {
					logrus.WithFields(logrus.Fields{
						"clientVersion": clientVersion,
						"daemonVersion": daemonVersion,
					}).Warn("Version mismatch between client and daemon. hba may not work as expected.")
				}
			}

			return nil
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&configPath, "config", configPath, "config file path")
	globalFlags.StringVar(&unixSocketPath, "daemon-socket", unixSocketPath, "hba daemon unix socket path")
	globalFlags.StringVar(&langOverride, "lang", "", "output language (en, nl); defaults to the configured language")

	for _, i := range commandGroups {
		cmd.AddGroup(&cobra.Group{
			ID:    i,
			Title: i,
		})
	}

	cmd.AddCommand(
		NewDaemonCommand(),
		NewVersionCommand(),
		NewStatusCommand(),
		NewABVCommand(),
		NewHydrometerCommand(),
		NewStrikeWaterCommand(),
		NewIBUCommand(),
		NewSRMCommand(),
		NewPrimingSugarCommand(),
		NewRecipesCommand(),
		NewBrewSessionCommand(),
		NewVersionsCommand(),
		NewLanguageCommand(),
		NewSetMetricCommand(),
		NewSetDarkModeCommand(),
		NewSetNotificationsCommand(),
		NewOnboardingCommand(),
		NewReminderCommand(),
		NewTimerCommand(),
		NewFactoryResetCommand(),
		NewInstallCommand(),
		NewUninstallCommand(),
	)

	return cmd
}
