package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hbassist/hba/pkg/daemon"
	"github.com/hbassist/hba/pkg/version"
)

// NewDaemonCommand runs the HTTP API on the unix socket. The service unit
// written by "hba install" starts it.
func NewDaemonCommand() *cobra.Command {
	opts := daemon.Options{}

	cmd := &cobra.Command{
		Use:     "daemon",
		Hidden:  true,
		Short:   "Run hba daemon in the foreground",
		GroupID: gAdvanced,
		Long: `Run the hba daemon in the foreground.

--data-dir and --storage-driver override the config file, e.g. to try
PostgreSQL without editing it:

  hba daemon --storage-driver postgres --storage-dsn postgres://hba@localhost/hba`,
		RunE: func(_ *cobra.Command, _ []string) error {
			opts.ConfigPath = configPath
			opts.SocketPath = unixSocketPath

			logrus.WithFields(logrus.Fields{
				"version": version.Version,
				"commit":  version.GitCommit,
				"config":  configPath,
				"socket":  unixSocketPath,
			}).Info("hba daemon starting")
			if opts.DataDir != "" || opts.Storage.Driver != "" {
				logrus.WithFields(logrus.Fields{
					"dataDir":       opts.DataDir,
					"storageDriver": opts.Storage.Driver,
				}).Info("overriding config from flags")
			}

			return daemon.Run(opts)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.AllowNonRoot, "always-allow-non-root-access", false,
		"Always allow non-root users to access the daemon.")
	f.StringVar(&opts.DataDir, "data-dir", "", "directory for the database, photos and reset state")
	f.StringVar(&opts.Storage.Driver, "storage-driver", "", "database driver (sqlite, postgres)")
	f.StringVar(&opts.Storage.DSN, "storage-dsn", "", "database connection string, used with --storage-driver")

	return cmd
}
