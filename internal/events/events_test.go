package events

import (
	"encoding/json"
	"testing"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus()

	var received *Event
	var callCount int

	handler := func(event *Event) error {
		received = event
		callCount++
		return nil
	}

	bus.Subscribe("test_event", handler)

	payload := map[string]string{"foo": "bar"}
	err := bus.PublishJSON("test_event", payload)
	if err != nil {
		t.Fatalf("PublishJSON failed: %v", err)
	}

	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}

	if received.Type != "test_event" {
		t.Errorf("expected type test_event, got %s", received.Type)
	}
	if received.ID == 0 {
		t.Errorf("expected event id to be assigned")
	}

	var decoded map[string]string
	if err := received.Decode(&decoded); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}

	if decoded["foo"] != "bar" {
		t.Errorf("expected foo=bar, got %s", decoded["foo"])
	}
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()
	var count1, count2 int

	bus.Subscribe("event", func(_ *Event) error { count1++; return nil })
	bus.Subscribe("event", func(_ *Event) error { count2++; return nil })

	bus.Publish(&Event{Type: "event"})

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both handlers to be called once, got %d and %d", count1, count2)
	}
}

func TestEventBusWildcard(t *testing.T) {
	bus := NewEventBus()
	var seen []string

	bus.Subscribe(EventAny, func(e *Event) error { seen = append(seen, e.Type); return nil })

	bus.Publish(&Event{Type: EventBookingCreated})
	bus.Publish(&Event{Type: EventReviewCreated})

	if len(seen) != 2 || seen[0] != EventBookingCreated || seen[1] != EventReviewCreated {
		t.Errorf("unexpected wildcard deliveries: %v", seen)
	}
}

func TestEventBusUnsubscribe(t *testing.T) {
	bus := NewEventBus()
	var first, second int

	stop := bus.Subscribe("event", func(_ *Event) error { first++; return nil })
	bus.Subscribe("event", func(_ *Event) error { second++; return nil })

	bus.Publish(&Event{Type: "event"})
	stop()
	stop() // second call is a no-op
	bus.Publish(&Event{Type: "event"})

	if first != 1 {
		t.Errorf("expected unsubscribed handler to run once, got %d", first)
	}
	if second != 2 {
		t.Errorf("expected remaining handler to run twice, got %d", second)
	}
}

func TestEventBusNoSubscribers(t *testing.T) {
	bus := NewEventBus()
	// Should not panic
	bus.Publish(&Event{Type: "unknown"})
	err := bus.PublishJSON("unknown", nil)
	if err != nil {
		t.Errorf("PublishJSON failed: %v", err)
	}

	var nilBus *EventBus
	if err := nilBus.PublishJSON("unknown", nil); err != nil {
		t.Errorf("nil bus PublishJSON failed: %v", err)
	}
}

func TestType(t *testing.T) {
	if got := Type("bookings", OpCreated); got != EventBookingCreated {
		t.Errorf("expected %s, got %s", EventBookingCreated, got)
	}
	if got := Type("schedules", OpRemoved); got != EventScheduleRemoved {
		t.Errorf("expected %s, got %s", EventScheduleRemoved, got)
	}
}

func TestNewJSONEvent(t *testing.T) {
	payload := ChangePayload{Resource: "bookings", Operation: OpUpdated, ID: "B1", Record: json.RawMessage(`{"id":"B1"}`)}
	event, err := NewJSONEvent("type", payload)
	if err != nil {
		t.Fatalf("NewJSONEvent failed: %v", err)
	}

	if event.Type != "type" {
		t.Errorf("expected type, got %s", event.Type)
	}

	if event.CreatedAt.IsZero() {
		t.Errorf("expected CreatedAt to be set")
	}

	var decoded ChangePayload
	if err := json.Unmarshal(event.Payload, &decoded); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}

	if decoded.ID != "B1" || decoded.Operation != OpUpdated {
		t.Errorf("unexpected payload: %+v", decoded)
	}
	if string(decoded.Record) != `{"id":"B1"}` {
		t.Errorf("unexpected record: %s", decoded.Record)
	}
}
