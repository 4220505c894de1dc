package config

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/hbassist/hba/pkg/i18n"
	"github.com/hbassist/hba/pkg/utils/ptr"
)

var (
	defaultFileConfig = &RawFileConfig{
		UseMetricSystem:         ptr.To(true),
		DarkMode:                ptr.To(false),
		NotificationsEnabled:    ptr.To(true),
		DefaultBatchSize:        ptr.To(20.0),
		DefaultEfficiency:       ptr.To(75.0),
		HasCompletedOnboarding:  ptr.To(false),
		DefaultRecipesInstalled: ptr.To(false),
		AllowNonRootAccess:      ptr.To(false),
		DataDir:                 ptr.To("/var/lib/hba"),
		Storage: &StorageConfig{
			Driver: "sqlite",
		},
	}
)

var _ Config = &File{}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = &RawFileConfig{}
	}

	f := &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}

	return f
}

type RawFileConfig struct {
	Language                *string        `json:"language,omitempty"`
	UseMetricSystem         *bool          `json:"useMetricSystem,omitempty"`
	DarkMode                *bool          `json:"darkMode,omitempty"`
	NotificationsEnabled    *bool          `json:"notificationsEnabled,omitempty"`
	DefaultBatchSize        *float64       `json:"defaultBatchSize,omitempty"`
	DefaultEfficiency       *float64       `json:"defaultEfficiency,omitempty"`
	HasCompletedOnboarding  *bool          `json:"hasCompletedOnboarding,omitempty"`
	DefaultRecipesInstalled *bool          `json:"defaultRecipesInstalled,omitempty"`
	AllowNonRootAccess      *bool          `json:"allowNonRootAccess,omitempty"`
	DataDir                 *string        `json:"dataDir,omitempty"`
	Storage                 *StorageConfig `json:"storage,omitempty"`
}

func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}

	storage := c.Storage()
	rawConfig := &RawFileConfig{
		Language:                ptr.To(c.Language()),
		UseMetricSystem:         ptr.To(c.UseMetricSystem()),
		DarkMode:                ptr.To(c.DarkMode()),
		NotificationsEnabled:    ptr.To(c.NotificationsEnabled()),
		DefaultBatchSize:        ptr.To(c.DefaultBatchSize()),
		DefaultEfficiency:       ptr.To(c.DefaultEfficiency()),
		HasCompletedOnboarding:  ptr.To(c.HasCompletedOnboarding()),
		DefaultRecipesInstalled: ptr.To(c.DefaultRecipesInstalled()),
		AllowNonRootAccess:      ptr.To(c.AllowNonRootAccess()),
		DataDir:                 ptr.To(c.DataDir()),
		Storage:                 &storage,
	}

	return rawConfig, nil
}

// get reads one field under the read lock, falling back to the default.
func get[T any](f *File, field func(*RawFileConfig) *T) T {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return ptr.Deref(field(f.c), *field(defaultFileConfig))
}

func set[T any](f *File, field func(*RawFileConfig) **T, v T) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	*field(f.c) = &v
}

// Language returns the configured language, or the system language when
// none was chosen.
func (f *File) Language() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	lang := f.c.Language
	f.mu.RUnlock()

	if lang != nil {
		return *lang
	}
	return i18n.SystemLanguage()
}

func (f *File) UseMetricSystem() bool {
	return get(f, func(c *RawFileConfig) *bool { return c.UseMetricSystem })
}

func (f *File) DarkMode() bool {
	return get(f, func(c *RawFileConfig) *bool { return c.DarkMode })
}

func (f *File) NotificationsEnabled() bool {
	return get(f, func(c *RawFileConfig) *bool { return c.NotificationsEnabled })
}

func (f *File) DefaultBatchSize() float64 {
	return get(f, func(c *RawFileConfig) *float64 { return c.DefaultBatchSize })
}

func (f *File) DefaultEfficiency() float64 {
	return get(f, func(c *RawFileConfig) *float64 { return c.DefaultEfficiency })
}

func (f *File) HasCompletedOnboarding() bool {
	return get(f, func(c *RawFileConfig) *bool { return c.HasCompletedOnboarding })
}

func (f *File) DefaultRecipesInstalled() bool {
	return get(f, func(c *RawFileConfig) *bool { return c.DefaultRecipesInstalled })
}

func (f *File) AllowNonRootAccess() bool {
	return get(f, func(c *RawFileConfig) *bool { return c.AllowNonRootAccess })
}

func (f *File) DataDir() string {
	return get(f, func(c *RawFileConfig) *string { return c.DataDir })
}

func (f *File) Storage() StorageConfig {
	s := get(f, func(c *RawFileConfig) *StorageConfig { return c.Storage })
	if s.Driver == "" {
		s.Driver = defaultFileConfig.Storage.Driver
	}
	return s
}

func (f *File) SetLanguage(s string) {
	set(f, func(c *RawFileConfig) **string { return &c.Language }, s)
}

func (f *File) SetUseMetricSystem(b bool) {
	set(f, func(c *RawFileConfig) **bool { return &c.UseMetricSystem }, b)
}

func (f *File) SetDarkMode(b bool) {
	set(f, func(c *RawFileConfig) **bool { return &c.DarkMode }, b)
}

func (f *File) SetNotificationsEnabled(b bool) {
	set(f, func(c *RawFileConfig) **bool { return &c.NotificationsEnabled }, b)
}

func (f *File) SetDefaultBatchSize(v float64) {
	if v <= 0 {
		panic("default batch size must be positive")
	}
	set(f, func(c *RawFileConfig) **float64 { return &c.DefaultBatchSize }, v)
}

func (f *File) SetDefaultEfficiency(v float64) {
	if v <= 0 || v > 100 {
		panic("default efficiency must be between 0 and 100")
	}
	set(f, func(c *RawFileConfig) **float64 { return &c.DefaultEfficiency }, v)
}

func (f *File) SetHasCompletedOnboarding(b bool) {
	set(f, func(c *RawFileConfig) **bool { return &c.HasCompletedOnboarding }, b)
}

func (f *File) SetDefaultRecipesInstalled(b bool) {
	set(f, func(c *RawFileConfig) **bool { return &c.DefaultRecipesInstalled }, b)
}

func (f *File) SetAllowNonRootAccess(b bool) {
	set(f, func(c *RawFileConfig) **bool { return &c.AllowNonRootAccess }, b)
}

func (f *File) SetDataDir(dir string) {
	set(f, func(c *RawFileConfig) **string { return &c.DataDir }, dir)
}

func (f *File) SetStorage(s StorageConfig) {
	set(f, func(c *RawFileConfig) **StorageConfig { return &c.Storage }, s)
}

func (f *File) ResetUserSettings() {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.c = &RawFileConfig{
		AllowNonRootAccess: f.c.AllowNonRootAccess,
		DataDir:            f.c.DataDir,
		Storage:            f.c.Storage,
	}
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// If the file does not exist, return the empty config.
			// Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	// Since we want to tell if the file is empty, using json.Decoder will
	// not work.
	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	err = json.Unmarshal(b, &conf)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	err = enc.Encode(f.c)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

func (f *File) LogrusFields() logrus.Fields {
	if f.c == nil {
		panic("config is nil")
	}

	return logrus.Fields{
		"language":                f.Language(),
		"useMetricSystem":         f.UseMetricSystem(),
		"darkMode":                f.DarkMode(),
		"notificationsEnabled":    f.NotificationsEnabled(),
		"defaultBatchSize":        f.DefaultBatchSize(),
		"defaultEfficiency":       f.DefaultEfficiency(),
		"hasCompletedOnboarding":  f.HasCompletedOnboarding(),
		"defaultRecipesInstalled": f.DefaultRecipesInstalled(),
		"allowNonRootAccess":      f.AllowNonRootAccess(),
		"dataDir":                 f.DataDir(),
		"storageDriver":           f.Storage().Driver,
	}
}
