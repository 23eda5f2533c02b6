package artifact

import (
	"sync"
	"time"

	"github.com/pitchlab/tactics.report/internal/monitoring"
)

// DomainEvent is one pipeline fact published on the bus, e.g. a completed
// ingestion or a stored report.
type DomainEvent struct {
	Kind       string         `json:"kind"`
	MatchID    string         `json:"match_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Fields     map[string]any `json:"fields,omitempty"`
}

// Handler consumes one domain event. Handlers run synchronously on the
// publisher's goroutine and must not block.
type Handler func(DomainEvent)

// Bus is a minimal in-process publish/subscribe fan-out. Subscribing to
// the empty kind receives every event.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: map[string][]Handler{}}
}

// Subscribe registers a handler for one event kind, or all kinds when
// kind is empty.
func (b *Bus) Subscribe(kind string, h Handler) {
	b.mu.Lock()
	b.handlers[kind] = append(b.handlers[kind], h)
	b.mu.Unlock()
}

// Publish delivers the event to kind-matched handlers first, then to
// wildcard subscribers, in registration order. A panicking handler is
// logged and skipped; it never takes down the publisher.
func (b *Bus) Publish(ev DomainEvent) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	b.mu.RLock()
	matched := append(append([]Handler{}, b.handlers[ev.Kind]...), b.handlers[""]...)
	b.mu.RUnlock()

	for _, h := range matched {
		deliver(h, ev)
	}
}

func deliver(h Handler, ev DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			monitoring.Logf("bus handler for %q panicked: %v", ev.Kind, r)
		}
	}()
	h(ev)
}
