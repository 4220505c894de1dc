// Package versions records the application's version history.
package versions

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hbassist/hba/pkg/store"
	"github.com/hbassist/hba/pkg/types"
	"github.com/hbassist/hba/pkg/version"
)

// defaultChanges is recorded for a release without its own changelog.
var defaultChanges = []string{
	"Performance improvements",
	"Bug fixes and stability improvements",
}

// Manager keeps the version history in the store and caches it in memory.
type Manager struct {
	store   store.Store
	version string
	build   string
	now     func() time.Time

	mu     sync.RWMutex
	cache  []types.VersionEntry
	cached bool
}

type Option func(*Manager)

// WithRelease overrides the running version and build number.
func WithRelease(v, build string) Option {
	return func(m *Manager) {
		m.version = v
		m.build = build
	}
}

func NewManager(s store.Store, opts ...Option) *Manager {
	m := &Manager{
		store:   s,
		version: strings.TrimPrefix(version.Version, "v"),
		build:   version.GitCommit,
		now:     time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Current returns the running version and build number.
func (m *Manager) Current() (string, string) {
	return m.version, m.build
}

// FullVersion formats the running version as "1.2.3 (build)".
func (m *Manager) FullVersion() string {
	return fmt.Sprintf("%s (%s)", m.version, m.build)
}

// Components splits a semantic version. Missing or malformed parts default
// to 1.0.0.
func Components(v string) (major, minor, patch int) {
	major, minor, patch = 1, 0, 0
	v = strings.TrimPrefix(v, "v")
	// Drop pre-release and build metadata.
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	var nums []int
	for _, p := range strings.Split(v, ".") {
		n, err := strconv.Atoi(p)
		if err != nil {
			continue
		}
		nums = append(nums, n)
	}
	if len(nums) > 0 {
		major = nums[0]
	}
	if len(nums) > 1 {
		minor = nums[1]
	}
	if len(nums) > 2 {
		patch = nums[2]
	}
	return major, minor, patch
}

// ClassifyChange returns how large the step between two versions is.
// Anything that is not a well-formed major.minor.patch pair counts as a patch.
func ClassifyChange(from, to string) types.VersionType {
	if !wellFormed(from) || !wellFormed(to) {
		return types.VersionTypePatch
	}
	oMajor, oMinor, _ := Components(from)
	nMajor, nMinor, _ := Components(to)
	switch {
	case nMajor > oMajor:
		return types.VersionTypeMajor
	case nMinor > oMinor:
		return types.VersionTypeMinor
	default:
		return types.VersionTypePatch
	}
}

func wellFormed(v string) bool {
	v = strings.TrimPrefix(v, "v")
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	parts := strings.Split(v, ".")
	if len(parts) < 3 {
		return false
	}
	for _, p := range parts[:3] {
		if _, err := strconv.Atoi(p); err != nil {
			return false
		}
	}
	return true
}

// History returns the recorded versions, newest first.
func (m *Manager) History(ctx context.Context) ([]types.VersionEntry, error) {
	m.mu.RLock()
	if m.cached {
		out := append([]types.VersionEntry(nil), m.cache...)
		m.mu.RUnlock()
		return out, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	entries, err := m.store.ListVersionEntries(ctx)
	if err != nil {
		return nil, err
	}
	m.cache = entries
	m.cached = true
	return append([]types.VersionEntry(nil), entries...), nil
}

// RecordLaunch adds an entry for the running version when it differs from
// the newest recorded one. It reports whether an entry was added.
func (m *Manager) RecordLaunch(ctx context.Context) (bool, error) {
	history, err := m.History(ctx)
	if err != nil {
		return false, err
	}

	last := "0.0.0"
	if len(history) > 0 {
		last = history[0].Version
	}
	if last == m.version {
		return false, nil
	}

	entry := types.VersionEntry{
		ID:          uuid.NewString(),
		Version:     m.version,
		BuildNumber: m.build,
		ReleaseDate: m.now().UTC(),
		Changes:     append([]string(nil), defaultChanges...),
		Type:        ClassifyChange(last, m.version),
	}
	if err := m.store.AddVersionEntry(ctx, entry); err != nil {
		return false, err
	}

	m.mu.Lock()
	m.cache = append([]types.VersionEntry{entry}, m.cache...)
	m.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"version": m.version,
		"build":   m.build,
		"type":    entry.Type,
	}).Info("new version recorded")

	return true, nil
}

// ClearCache drops the in-memory history so the next read goes to the store.
func (m *Manager) ClearCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache = nil
	m.cached = false
}
