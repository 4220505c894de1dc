package daemon

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	unitDir  = "/etc/systemd/system"
	unitName = "hba.service"
)

const unitTemplate = `[Unit]
Description=HomeBrew Assistant daemon
After=network.target

[Service]
ExecStart=/path/to/hba daemon --config=/path/to/config --daemon-socket=/path/to/socket
Restart=on-failure
RestartSec=5

[Install]
WantedBy=multi-user.target
`

func unitPath() string {
	return filepath.Join(unitDir, unitName)
}

// RenderUnit fills the systemd unit template for the given binary, config
// file and socket.
func RenderUnit(exePath, configPath, socketPath string) string {
	return strings.NewReplacer(
		"/path/to/hba", exePath,
		"/path/to/config", configPath,
		"/path/to/socket", socketPath,
	).Replace(unitTemplate)
}

func Install(configPath, socketPath string) error {
	// Get the path to the current executable
	exePath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get the path to the current executable: %w", err)
	}
	exePath, err = filepath.Abs(exePath)
	if err != nil {
		return fmt.Errorf("failed to get the absolute path to the current executable: %w", err)
	}

	err = os.Chmod(exePath, 0755)
	if err != nil {
		return fmt.Errorf("failed to chmod the current executable to 0755: %w", err)
	}

	logrus.Infof("current executable path: %s", exePath)

	logrus.Infof("writing systemd unit to %s", unitDir)

	err = os.MkdirAll(unitDir, 0755)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", unitDir, err)
	}

	// warn if the file already exists
	_, err = os.Stat(unitPath())
	if err == nil {
		logrus.Warnf("%s already exists, overwriting", unitPath())
	}

	err = os.WriteFile(unitPath(), []byte(RenderUnit(exePath, configPath, socketPath)), 0644)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", unitPath(), err)
	}

	logrus.Infof("starting hba")

	for _, args := range [][]string{
		{"daemon-reload"},
		{"enable", "--now", unitName},
	} {
		out, err := exec.Command("systemctl", args...).CombinedOutput()
		if err != nil {
			return fmt.Errorf("systemctl %s failed: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
		}
	}

	return nil
}
