package config

import "github.com/sirupsen/logrus"

type Config interface {
	Language() string
	UseMetricSystem() bool
	DarkMode() bool
	NotificationsEnabled() bool
	DefaultBatchSize() float64
	DefaultEfficiency() float64
	HasCompletedOnboarding() bool
	DefaultRecipesInstalled() bool
	AllowNonRootAccess() bool
	DataDir() string
	Storage() StorageConfig

	SetLanguage(string)
	SetUseMetricSystem(bool)
	SetDarkMode(bool)
	SetNotificationsEnabled(bool)
	SetDefaultBatchSize(float64)
	SetDefaultEfficiency(float64)
	SetHasCompletedOnboarding(bool)
	SetDefaultRecipesInstalled(bool)
	SetAllowNonRootAccess(bool)
	SetDataDir(string)
	SetStorage(StorageConfig)

	// ResetUserSettings restores every user preference to its default while
	// keeping the daemon and storage settings. The language falls back to
	// the system locale.
	ResetUserSettings()

	LogrusFields() logrus.Fields

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error
}

// StorageConfig selects the database backing recipes, brew sessions and
// version history.
type StorageConfig struct {
	Driver string `json:"driver,omitempty"`
	DSN    string `json:"dsn,omitempty"`
}
