// Package reminder schedules brew reminders (for example dry hopping or
// bottling) on cron expressions.
package reminder

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/hbassist/hba/pkg/events"
)

var (
	ErrInvalidSchedule = pkgerrors.New("invalid schedule")
	ErrEmptyMessage    = pkgerrors.New("reminder message is empty")
	ErrNotFound        = pkgerrors.New("reminder not found")
)

type Reminder struct {
	ID        string    `json:"id"`
	Schedule  string    `json:"schedule"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	NextRun   time.Time `json:"nextRun"`
}

type entry struct {
	reminder Reminder
	schedule cron.Schedule
	entryID  cron.EntryID
}

// Scheduler runs reminders and publishes reminder.fired on the hub when one
// is due. Reminders are kept in memory.
type Scheduler struct {
	hub    *events.EventHub
	parser cron.Parser
	cron   *cron.Cron

	mu      sync.Mutex
	entries map[string]*entry
}

func NewScheduler(hub *events.EventHub) *Scheduler {
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &Scheduler{
		hub:    hub,
		parser: parser,
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLogger(cron.PrintfLogger(logrus.StandardLogger())),
		),
		entries: make(map[string]*entry),
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Add schedules message on expr, a cron expression with optional seconds or
// a descriptor such as "@every 1h".
func (s *Scheduler) Add(expr, message string) (Reminder, error) {
	expr = strings.TrimSpace(expr)
	if strings.TrimSpace(message) == "" {
		return Reminder{}, ErrEmptyMessage
	}
	sched, err := s.parser.Parse(expr)
	if err != nil {
		return Reminder{}, pkgerrors.Wrapf(ErrInvalidSchedule, "%q: %v", expr, err)
	}

	now := time.Now()
	r := Reminder{
		ID:        uuid.NewString(),
		Schedule:  expr,
		Message:   message,
		CreatedAt: now,
		NextRun:   sched.Next(now),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := r.ID
	eid := s.cron.Schedule(sched, cron.FuncJob(func() { s.fire(id) }))
	s.entries[id] = &entry{reminder: r, schedule: sched, entryID: eid}

	logrus.WithFields(logrus.Fields{
		"id":       id,
		"schedule": expr,
		"next":     r.NextRun,
	}).Info("reminder added")

	return r, nil
}

// List returns all reminders ordered by their next run.
func (s *Scheduler) List() []Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	out := make([]Reminder, 0, len(s.entries))
	for _, e := range s.entries {
		r := e.reminder
		r.NextRun = e.schedule.Next(now)
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NextRun.Equal(out[j].NextRun) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].NextRun.Before(out[j].NextRun)
	})
	return out
}

func (s *Scheduler) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return pkgerrors.Wrapf(ErrNotFound, "%s", id)
	}
	s.cron.Remove(e.entryID)
	delete(s.entries, id)
	logrus.WithField("id", id).Info("reminder removed")
	return nil
}

// Clear removes every reminder and returns how many there were.
func (s *Scheduler) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.entries)
	for id, e := range s.entries {
		s.cron.Remove(e.entryID)
		delete(s.entries, id)
	}
	return n
}

func (s *Scheduler) fire(id string) {
	s.mu.Lock()
	e, ok := s.entries[id]
	var msg string
	if ok {
		msg = e.reminder.Message
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	logrus.WithFields(logrus.Fields{
		"id":      id,
		"message": msg,
	}).Info("reminder fired")
	s.hub.Publish(events.ReminderFired, events.ReminderEvent{
		ID:      id,
		Message: msg,
		Ts:      time.Now().Unix(),
	})
}
