package events

import (
	"context"
	"sync"
	"time"
)

// Event types
const (
	CustomerRegistered = "customer.registered"
	CustomerDeleted    = "customer.deleted"
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"
	OrderDeleted       = "order.deleted"
	OrderAttached      = "order.attached"
)

// Types lists every event type the service emits
var Types = []string{
	CustomerRegistered,
	CustomerDeleted,
	OrderCreated,
	OrderStatusChanged,
	OrderDeleted,
	OrderAttached,
}

// Event доменное событие. Key is the entity id and decides partitioning.
type Event struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

// New builds an event stamped with the current time
func New(eventType, key string, payload any) Event {
	return Event{
		Type:       eventType,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Publisher отправляет доменные события во внешнюю шину
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Topic returns the destination name of an event type under prefix
func Topic(prefix, eventType string) string {
	if prefix == "" {
		return eventType
	}
	return prefix + "." + eventType
}

// NopPublisher discards every event
type NopPublisher struct{}

// Publish implements Publisher
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Close implements Publisher
func (NopPublisher) Close() error { return nil }

// Recorder keeps published events in memory. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	err    error
}

// NewRecorder creates a Recorder; a non-nil err is returned from every Publish
func NewRecorder(err error) *Recorder {
	return &Recorder{err: err}
}

// Publish implements Publisher
func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}

// Close implements Publisher
func (r *Recorder) Close() error { return nil }

// Events returns a copy of the recorded events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types returns the recorded event types in publish order
func (r *Recorder) Types() []string {
	evs := r.Events()
	out := make([]string, len(evs))
	for i, e := range evs {
		out[i] = e.Type
	}
	return out
}
