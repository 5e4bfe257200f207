package events

import (
	"encoding/json"
	"sync"
	"time"
)

// Operation names used in event types.
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpRemoved = "removed"
)

// Event types published by the resource stores after a confirmed mutation.
const (
	EventBookingCreated  = "bookings_created"
	EventBookingUpdated  = "bookings_updated"
	EventBookingRemoved  = "bookings_removed"
	EventScheduleCreated = "schedules_created"
	EventScheduleUpdated = "schedules_updated"
	EventScheduleRemoved = "schedules_removed"
	EventReviewCreated   = "reviews_created"

	// EventAny subscribes a handler to every event type.
	EventAny = "*"
)

// Type builds the event type for a resource mutation.
func Type(resource, operation string) string {
	return resource + "_" + operation
}

// ChangePayload describes one confirmed mutation of a resource collection.
// Record holds the server's returned entity, when there was one.
type ChangePayload struct {
	Resource  string          `json:"resource"`
	Operation string          `json:"operation"`
	ID        string          `json:"id"`
	Record    json.RawMessage `json:"record,omitempty"`
}

// Event represents a lightweight domain event.
type Event struct {
	ID        int64
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// Decode unmarshals the payload into out.
func (e *Event) Decode(out any) error {
	return json.Unmarshal(e.Payload, out)
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

type subscription struct {
	id      uint64
	handler EventHandler
}

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]subscription
	nextSubID   uint64
	nextEventID int64
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]subscription)}
}

// Subscribe registers a handler for a given event type and returns a func
// that removes it again.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextSubID++
	id := b.nextSubID
	b.subscribers[eventType] = append(b.subscribers[eventType], subscription{id: id, handler: handler})

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(eventType, id) })
	}
}

func (b *EventBus) unsubscribe(eventType string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subscribers[eventType]
	for i, s := range subs {
		if s.id == id {
			b.subscribers[eventType] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subscribers[eventType]) == 0 {
		delete(b.subscribers, eventType)
	}
}

// Publish notifies subscribers of the event type, then wildcard subscribers.
func (b *EventBus) Publish(event *Event) {
	b.mu.Lock()
	b.nextEventID++
	if event.ID == 0 {
		event.ID = b.nextEventID
	}
	subs := append([]subscription(nil), b.subscribers[event.Type]...)
	if event.Type != EventAny {
		subs = append(subs, b.subscribers[EventAny]...)
	}
	b.mu.Unlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, s := range subs {
		// Handlers run synchronously; caller decides concurrency model.
		_ = s.handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	event, err := NewJSONEvent(eventType, payload)
	if err != nil {
		return err
	}

	b.Publish(&event)
	return nil
}

// NewJSONEvent builds an Event with JSON payload for manual publishing.
func NewJSONEvent(eventType string, payload interface{}) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}

	return Event{Type: eventType, Payload: raw, CreatedAt: time.Now()}, nil
}
