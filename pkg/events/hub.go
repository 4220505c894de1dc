package events

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
)

// EventHub fans events out to subscribers. Every subscriber owns an
// unbounded queue drained by its own goroutine, so Publish never blocks and
// each subscriber sees every event in publish order.
type EventHub struct {
	mu   sync.RWMutex
	subs map[<-chan Event]*subscriber
}

type subscriber struct {
	out    chan Event
	mu     sync.Mutex
	queue  []Event
	wake   chan struct{}
	quit   chan struct{}
	closed bool
}

func NewEventHub() *EventHub { return &EventHub{subs: make(map[<-chan Event]*subscriber)} }

func (h *EventHub) Subscribe() <-chan Event {
	s := &subscriber{
		out:  make(chan Event, 16),
		wake: make(chan struct{}, 1),
		quit: make(chan struct{}),
	}
	go s.pump()

	h.mu.Lock()
	h.subs[s.out] = s
	h.mu.Unlock()
	return s.out
}

// Unsubscribe stops delivery to ch. Events still queued are discarded and ch
// is closed.
func (h *EventHub) Unsubscribe(ch <-chan Event) {
	h.mu.Lock()
	s, ok := h.subs[ch]
	if ok {
		delete(h.subs, ch)
	}
	h.mu.Unlock()
	if ok {
		s.stop()
	}
}

// Close unsubscribes everyone.
func (h *EventHub) Close() {
	h.mu.Lock()
	subs := h.subs
	h.subs = make(map[<-chan Event]*subscriber)
	h.mu.Unlock()
	for _, s := range subs {
		s.stop()
	}
}

func (h *EventHub) Publish(name string, payload any) {
	if h == nil {
		return
	}
	b, err := json.Marshal(payload)
	if err != nil {
		logrus.WithError(err).WithField("event", name).Error("failed to marshal event payload")
		return
	}
	msg := Event{Name: name, Data: b}
	h.mu.RLock()
	for _, s := range h.subs {
		s.enqueue(msg)
	}
	h.mu.RUnlock()
}

func (s *subscriber) enqueue(e Event) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, e)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscriber) stop() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.quit)
	}
	s.mu.Unlock()
}

func (s *subscriber) pump() {
	defer close(s.out)
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			select {
			case <-s.wake:
				continue
			case <-s.quit:
				return
			}
		}
		next := s.queue[0]
		s.queue[0] = Event{}
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- next:
		case <-s.quit:
			return
		}
	}
}
