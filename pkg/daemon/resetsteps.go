package daemon

import (
	"context"
	"os"
	"path/filepath"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/hbassist/hba/pkg/reset"
)

// Factory reset step names.
const (
	StepUserSettings   = "user-settings"
	StepRecipes        = "recipes"
	StepPhotos         = "photos"
	StepAnalytics      = "brew-analytics"
	StepVersionHistory = "version-history"
	StepReminders      = "reminders"
	StepOnboarding     = "onboarding"
)

// resetSteps lists the factory reset in execution order. Progress after each
// step is 0.1, 0.3, 0.5, 0.7, 0.8, 0.9 and 1.0.
func (d *Daemon) resetSteps() []reset.Step {
	return []reset.Step{
		reset.NewStep(StepUserSettings, 0.1, d.clearUserSettings),
		reset.NewStep(StepRecipes, 0.2, d.deleteRecipes),
		reset.NewStep(StepPhotos, 0.2, d.clearPhotos),
		reset.NewStep(StepAnalytics, 0.2, d.clearAnalytics),
		reset.NewStep(StepVersionHistory, 0.1, d.clearVersionHistory),
		reset.NewStep(StepReminders, 0.1, d.clearReminders),
		reset.NewStep(StepOnboarding, 0.1, d.resetOnboarding),
	}
}

// clearUserSettings restores the default preferences. The language goes
// back to the system locale, so the localizer follows it.
func (d *Daemon) clearUserSettings(_ context.Context) error {
	d.conf.ResetUserSettings()
	if err := d.conf.Save(); err != nil {
		return err
	}
	if err := d.lang.SetLanguage(d.conf.Language()); err != nil {
		return pkgerrors.Wrapf(err, "failed to switch back to language %s", d.conf.Language())
	}
	return nil
}

func (d *Daemon) deleteRecipes(ctx context.Context) error {
	n, err := d.store.DeleteAllRecipes(ctx)
	if err != nil {
		return err
	}
	logrus.WithField("count", n).Info("recipes deleted")
	return nil
}

// clearPhotos empties the photo and thumbnail directories under the data
// directory. Missing directories are fine.
func (d *Daemon) clearPhotos(_ context.Context) error {
	dataDir := d.conf.DataDir()
	if dataDir == "" {
		return nil
	}
	for _, name := range []string{photosDir, thumbnailsDir} {
		dir := filepath.Join(dataDir, name)
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return pkgerrors.Wrapf(err, "failed to read %s", dir)
		}
		for _, e := range entries {
			p := filepath.Join(dir, e.Name())
			if err := os.RemoveAll(p); err != nil {
				return pkgerrors.Wrapf(err, "failed to remove %s", p)
			}
		}
		logrus.WithFields(logrus.Fields{
			"dir":   dir,
			"count": len(entries),
		}).Info("directory cleared")
	}
	return nil
}

func (d *Daemon) clearAnalytics(ctx context.Context) error {
	n, err := d.store.ClearBrewSessions(ctx)
	if err != nil {
		return err
	}
	logrus.WithField("count", n).Info("brew sessions cleared")
	return nil
}

func (d *Daemon) clearVersionHistory(ctx context.Context) error {
	if _, err := d.store.ClearVersionHistory(ctx); err != nil {
		return err
	}
	d.versions.ClearCache()
	return nil
}

// clearReminders removes the scheduled reminders and the brew timers.
func (d *Daemon) clearReminders(_ context.Context) error {
	n := d.reminders.Clear()
	logrus.WithField("count", n).Info("reminders cleared")
	n = d.timers.Clear()
	logrus.WithField("count", n).Info("timers cleared")
	return nil
}

func (d *Daemon) resetOnboarding(_ context.Context) error {
	d.conf.SetHasCompletedOnboarding(false)
	return d.installer.ResetInstallationFlag()
}
