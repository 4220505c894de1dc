// Package recipes ships the default recipe catalog and installs it into the
// store on first use.
package recipes

import (
	"context"
	_ "embed"
	"math"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/hbassist/hba/pkg/calculator"
	"github.com/hbassist/hba/pkg/config"
	"github.com/hbassist/hba/pkg/store"
	"github.com/hbassist/hba/pkg/types"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Defaults returns the built-in recipe catalog. ABV is derived from the
// original and final gravity when both are present.
func Defaults() ([]types.Recipe, error) {
	return parse(defaultsYAML)
}

func parse(b []byte) ([]types.Recipe, error) {
	var list []types.Recipe
	if err := yaml.Unmarshal(b, &list); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to parse recipe catalog")
	}
	for i := range list {
		r := &list[i]
		if r.ID == "" {
			return nil, pkgerrors.Errorf("recipe %q has no id", r.Name)
		}
		if r.OG == 0 || r.FG == 0 {
			continue
		}
		abv, err := calculator.ABV(r.OG, r.FG)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "recipe %s", r.ID)
		}
		r.ABV = math.Round(abv*10) / 10
	}
	return list, nil
}

// Installer writes the default recipes into the store once, tracked by the
// defaultRecipesInstalled config flag.
type Installer struct {
	store store.Store
	conf  config.Config
}

func NewInstaller(s store.Store, c config.Config) *Installer {
	return &Installer{store: s, conf: c}
}

// Install saves the default recipes unless they were installed before. It
// returns the number of recipes written.
func (i *Installer) Install(ctx context.Context) (int, error) {
	if i.conf.DefaultRecipesInstalled() {
		logrus.Debug("default recipes already installed")
		return 0, nil
	}

	list, err := Defaults()
	if err != nil {
		return 0, err
	}
	for _, r := range list {
		if err := i.store.SaveRecipe(ctx, r); err != nil {
			return 0, err
		}
	}

	i.conf.SetDefaultRecipesInstalled(true)
	if err := i.conf.Save(); err != nil {
		return len(list), pkgerrors.Wrapf(err, "failed to save config")
	}
	logrus.WithField("count", len(list)).Info("installed default recipes")

	return len(list), nil
}

// ResetInstallationFlag makes the next Install write the defaults again.
func (i *Installer) ResetInstallationFlag() error {
	i.conf.SetDefaultRecipesInstalled(false)
	return i.conf.Save()
}
