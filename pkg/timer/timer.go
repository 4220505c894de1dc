// Package timer keeps brew day countdown timers (mash, boil, hop additions)
// that can be started, paused and reset. A timer that runs out publishes
// timer.completed on the event hub.
package timer

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/hbassist/hba/pkg/events"
)

var (
	ErrNotFound        = pkgerrors.New("timer not found")
	ErrInvalidDuration = pkgerrors.New("invalid timer duration")
	ErrEmptyName       = pkgerrors.New("timer name is empty")
	ErrCompleted       = pkgerrors.New("timer already completed")
	ErrUnknownCategory = pkgerrors.New("unknown timer category")
)

// Category groups timers by brewing stage.
type Category string

const (
	CategoryMashing      Category = "mashing"
	CategoryBoiling      Category = "boiling"
	CategoryHopping      Category = "hopping"
	CategoryCooling      Category = "cooling"
	CategoryFermentation Category = "fermentation"
	CategoryConditioning Category = "conditioning"
	CategoryOther        Category = "other"
)

// Categories lists the valid categories.
var Categories = []Category{
	CategoryMashing,
	CategoryBoiling,
	CategoryHopping,
	CategoryCooling,
	CategoryFermentation,
	CategoryConditioning,
	CategoryOther,
}

// ParseCategory accepts a category name in any case. An empty name is
// CategoryOther.
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return CategoryOther, nil
	}
	c := Category(strings.ToLower(s))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", pkgerrors.Wrapf(ErrUnknownCategory, "%q", s)
}

// State of a timer.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StatePaused    State = "paused"
	StateCompleted State = "completed"
)

// Timer is a snapshot of one countdown.
type Timer struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Category         Category   `json:"category"`
	State            State      `json:"state"`
	DurationSeconds  float64    `json:"durationSeconds"`
	RemainingSeconds float64    `json:"remainingSeconds"`
	Progress         float64    `json:"progress"`
	CreatedAt        time.Time  `json:"createdAt"`
	EndsAt           *time.Time `json:"endsAt,omitempty"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
}

type entry struct {
	id        string
	seq       int
	name      string
	category  Category
	createdAt time.Time

	duration  time.Duration
	remaining time.Duration // as of startedAt while running
	state     State
	startedAt time.Time
	doneAt    time.Time

	timer *time.Timer
	gen   int
}

// Manager owns all timers. Timers are kept in memory.
type Manager struct {
	hub *events.EventHub
	now func() time.Time

	mu     sync.Mutex
	seq    int
	timers map[string]*entry
}

func NewManager(hub *events.EventHub) *Manager {
	return &Manager{
		hub:    hub,
		now:    time.Now,
		timers: make(map[string]*entry),
	}
}

// Add creates an idle timer.
func (m *Manager) Add(name string, category Category, d time.Duration) (Timer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Timer{}, ErrEmptyName
	}
	if d <= 0 {
		return Timer{}, pkgerrors.Wrapf(ErrInvalidDuration, "%s", d)
	}
	category, err := ParseCategory(string(category))
	if err != nil {
		return Timer{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	e := &entry{
		id:        uuid.NewString(),
		seq:       m.seq,
		name:      name,
		category:  category,
		createdAt: m.now(),
		duration:  d,
		remaining: d,
		state:     StateIdle,
	}
	m.timers[e.id] = e

	logrus.WithFields(logrus.Fields{
		"id":       e.id,
		"name":     name,
		"duration": d,
	}).Info("timer added")

	return m.snapshotLocked(e), nil
}

func (m *Manager) Get(id string) (Timer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.timers[id]
	if !ok {
		return Timer{}, pkgerrors.Wrapf(ErrNotFound, "%s", id)
	}
	return m.snapshotLocked(e), nil
}

// List returns all timers in the order they were added.
func (m *Manager) List() []Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := make([]*entry, 0, len(m.timers))
	for _, e := range m.timers {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	out := make([]Timer, 0, len(entries))
	for _, e := range entries {
		out = append(out, m.snapshotLocked(e))
	}
	return out
}

// ActiveCount returns the number of running timers.
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, e := range m.timers {
		if e.state == StateRunning {
			n++
		}
	}
	return n
}

// Start runs an idle or paused timer. Starting a running timer does
// nothing; a completed timer must be reset first.
func (m *Manager) Start(id string) (Timer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.timers[id]
	if !ok {
		return Timer{}, pkgerrors.Wrapf(ErrNotFound, "%s", id)
	}
	if e.state == StateCompleted {
		return Timer{}, pkgerrors.Wrapf(ErrCompleted, "%s", e.name)
	}
	m.startLocked(e)
	return m.snapshotLocked(e), nil
}

// Pause stops a running timer and keeps its remaining time. Pausing a
// timer that is not running does nothing.
func (m *Manager) Pause(id string) (Timer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.timers[id]
	if !ok {
		return Timer{}, pkgerrors.Wrapf(ErrNotFound, "%s", id)
	}
	m.pauseLocked(e)
	return m.snapshotLocked(e), nil
}

// Reset stops the timer and restores its full duration.
func (m *Manager) Reset(id string) (Timer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.timers[id]
	if !ok {
		return Timer{}, pkgerrors.Wrapf(ErrNotFound, "%s", id)
	}
	m.stopLocked(e)
	e.state = StateIdle
	e.remaining = e.duration
	e.startedAt = time.Time{}
	e.doneAt = time.Time{}
	return m.snapshotLocked(e), nil
}

func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.timers[id]
	if !ok {
		return pkgerrors.Wrapf(ErrNotFound, "%s", id)
	}
	m.stopLocked(e)
	delete(m.timers, id)
	return nil
}

// PauseAll pauses every running timer and returns how many were paused.
func (m *Manager) PauseAll() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, e := range m.timers {
		if e.state == StateRunning {
			m.pauseLocked(e)
			n++
		}
	}
	return n
}

// ResumeAll starts every paused timer and returns how many were resumed.
func (m *Manager) ResumeAll() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, e := range m.timers {
		if e.state == StatePaused {
			m.startLocked(e)
			n++
		}
	}
	return n
}

// Clear stops and removes every timer and returns how many there were.
func (m *Manager) Clear() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.timers)
	for id, e := range m.timers {
		m.stopLocked(e)
		delete(m.timers, id)
	}
	return n
}

func (m *Manager) startLocked(e *entry) {
	if e.state == StateRunning {
		return
	}
	e.state = StateRunning
	e.startedAt = m.now()
	e.gen++
	gen := e.gen
	id := e.id
	e.timer = time.AfterFunc(e.remaining, func() { m.complete(id, gen) })
}

func (m *Manager) pauseLocked(e *entry) {
	if e.state != StateRunning {
		return
	}
	e.remaining = m.remainingLocked(e)
	m.stopLocked(e)
	e.state = StatePaused
}

// stopLocked cancels a pending completion. A completion already waiting on
// the lock sees a newer generation and does nothing.
func (m *Manager) stopLocked(e *entry) {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.gen++
}

func (m *Manager) remainingLocked(e *entry) time.Duration {
	if e.state != StateRunning {
		return e.remaining
	}
	left := e.remaining - m.now().Sub(e.startedAt)
	if left < 0 {
		return 0
	}
	return left
}

func (m *Manager) complete(id string, gen int) {
	m.mu.Lock()
	e, ok := m.timers[id]
	if !ok || e.gen != gen || e.state != StateRunning {
		m.mu.Unlock()
		return
	}
	e.state = StateCompleted
	e.remaining = 0
	e.doneAt = m.now()
	e.timer = nil
	ev := events.TimerEvent{
		ID:       e.id,
		Name:     e.name,
		Category: string(e.category),
		Ts:       e.doneAt.Unix(),
	}
	m.mu.Unlock()

	logrus.WithField("id", ev.ID).Debug("timer completed")
	m.hub.Publish(events.TimerDone, ev)
}

func (m *Manager) snapshotLocked(e *entry) Timer {
	remaining := m.remainingLocked(e)
	t := Timer{
		ID:               e.id,
		Name:             e.name,
		Category:         e.category,
		State:            e.state,
		DurationSeconds:  e.duration.Seconds(),
		RemainingSeconds: remaining.Seconds(),
		Progress:         1 - float64(remaining)/float64(e.duration),
		CreatedAt:        e.createdAt,
	}
	if e.state == StateRunning {
		ends := e.startedAt.Add(e.remaining)
		t.EndsAt = &ends
	}
	if e.state == StateCompleted {
		done := e.doneAt
		t.CompletedAt = &done
	}
	return t
}
