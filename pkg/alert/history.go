package alert

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hgarcia-dev/riego/pkg/telemetry"
)

// DefaultHistoryCap is how many alert events the history keeps.
const DefaultHistoryCap = 50

// Event is one surfaced alert.
type Event struct {
	ID        string             `json:"id"`
	Message   string             `json:"message"`
	Severity  telemetry.Severity `json:"-"`
	Level     string             `json:"level"`
	Channel   telemetry.Channel  `json:"channel,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

// NewEvent builds an event stamped with a fresh ID.
func NewEvent(message string, severity telemetry.Severity, channel telemetry.Channel, now time.Time) Event {
	return Event{
		ID:        uuid.NewString(),
		Message:   message,
		Severity:  severity,
		Level:     severity.String(),
		Channel:   channel,
		Timestamp: now,
	}
}

// History is the bounded alert log plus the alert counter shown in the
// statistics block. Oldest events are dropped once the cap is reached.
type History struct {
	mu     sync.RWMutex
	cap    int
	events []Event
	count  int
}

// NewHistory creates a history keeping up to cap events.
func NewHistory(cap int) *History {
	if cap <= 0 {
		cap = DefaultHistoryCap
	}
	return &History{cap: cap}
}

// Add appends an event, dropping the oldest past the cap. Only warning and
// worse conditions count toward the alert counter.
func (h *History) Add(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.events = append(h.events, e)
	if len(h.events) > h.cap {
		h.events = h.events[1:]
	}
	if e.Severity >= telemetry.Warning {
		h.count++
	}
}

// Events returns a copy of the stored events, oldest first.
func (h *History) Events() []Event {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]Event(nil), h.events...)
}

// Count returns the number of warning-or-worse alerts recorded.
func (h *History) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Reset clears events and the counter.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = nil
	h.count = 0
}

// Restore replaces the history from an imported snapshot.
func (h *History) Restore(events []Event, count int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(events) > h.cap {
		events = events[len(events)-h.cap:]
	}
	h.events = append([]Event(nil), events...)
	h.count = count
}

// Notifier is the presentation hook for surfaced alerts. Transient notices
// auto-dismiss; critical safety conditions (worst gas band, tank overflow)
// go through Blocking, which requires explicit acknowledgment.
type Notifier interface {
	Transient(e Event)
	Blocking(e Event)
}

// LogNotifier is a Notifier for headless runs and tests.
type LogNotifier struct {
	mu     sync.Mutex
	logged []Event
}

// Transient records the event.
func (n *LogNotifier) Transient(e Event) { n.record(e) }

// Blocking records the event.
func (n *LogNotifier) Blocking(e Event) { n.record(e) }

// Logged returns all recorded events.
func (n *LogNotifier) Logged() []Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Event(nil), n.logged...)
}

func (n *LogNotifier) record(e Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.logged = append(n.logged, e)
}
