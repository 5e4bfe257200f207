package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"ruangpulih/internal/api"
	"ruangpulih/internal/domain"
	"ruangpulih/internal/events"
	"ruangpulih/internal/metrics"
	"ruangpulih/internal/models"

	"github.com/rs/zerolog"
)

const unexpectedError = "An unexpected error occurred."

// ErrUnsupported is returned for operations the resource does not offer.
var ErrUnsupported = errors.New("operation not supported")

// Store owns the client-side copy of one REST collection. Every operation
// issues exactly one request and applies the server's answer to local
// state only after it arrives; nothing is applied once ctx is done.
type Store[T models.Entity] struct {
	ep        Endpoints
	transport domain.Transport
	events    domain.EventPublisher
	logger    *zerolog.Logger

	mu       sync.Mutex
	items    []T
	detail   *T
	inFlight int
	lastErr  string
	loaded   bool

	observers map[uint64]func(State[T])
	nextObsID uint64
}

// New creates a store for ep. publisher may be nil.
func New[T models.Entity](ep Endpoints, transport domain.Transport, publisher domain.EventPublisher, logger *zerolog.Logger) *Store[T] {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("resource", ep.Resource).Logger()
	return &Store[T]{
		ep:        ep,
		transport: transport,
		events:    publisher,
		logger:    &l,
		observers: make(map[uint64]func(State[T])),
	}
}

// Name returns the resource name, e.g. "bookings".
func (s *Store[T]) Name() string {
	return s.ep.Resource
}

// List replaces the collection with the server's list.
func (s *Store[T]) List(ctx context.Context) Result[T] {
	if r, ok := s.unsupported(OpList); !ok {
		return r
	}
	start := s.begin(nil)

	var items []T
	var err error
	if s.ep.Cacheable {
		err = s.transport.GetCached(ctx, s.ep.listPath(), &items)
	} else {
		err = s.transport.Do(ctx, http.MethodGet, s.ep.listPath(), nil, &items)
	}
	if err != nil {
		return s.fail(ctx, OpList, start, err)
	}
	if items == nil {
		items = []T{}
	}

	applied := s.finish(ctx, OpList, start, func() {
		s.items = items
		s.loaded = true
	})
	if !applied {
		return s.canceled(ctx, ctx.Err())
	}
	return Result[T]{Success: true, Items: cloneItems(items)}
}

// Detail fetches one record. The previous detail is cleared before the
// request goes out.
func (s *Store[T]) Detail(ctx context.Context, id string) Result[T] {
	if r, ok := s.unsupported(OpDetail); !ok {
		return r
	}
	start := s.begin(func() { s.detail = nil })

	var item T
	var err error
	if s.ep.Cacheable {
		err = s.transport.GetCached(ctx, s.ep.itemPath(id), &item)
	} else {
		err = s.transport.Do(ctx, http.MethodGet, s.ep.itemPath(id), nil, &item)
	}
	if err != nil {
		return s.fail(ctx, OpDetail, start, err)
	}

	applied := s.finish(ctx, OpDetail, start, func() {
		detail := item
		s.detail = &detail
	})
	if !applied {
		return s.canceled(ctx, ctx.Err())
	}
	return Result[T]{Success: true, Item: &item}
}

// Create posts payload and appends the returned record.
func (s *Store[T]) Create(ctx context.Context, payload any) Result[T] {
	if r, ok := s.unsupported(OpCreate); !ok {
		return r
	}
	start := s.begin(nil)

	var item T
	if err := s.transport.Do(ctx, http.MethodPost, s.ep.Collection, payload, &item); err != nil {
		return s.fail(ctx, OpCreate, start, err)
	}

	applied := s.finish(ctx, OpCreate, start, func() {
		s.items = append(cloneItems(s.items), item)
	})
	if !applied {
		return s.canceled(ctx, ctx.Err())
	}
	s.publish(events.OpCreated, item.Key(), item)
	return Result[T]{Success: true, Item: &item}
}

// Update sends payload for id and replaces the matching entry, and the
// detail when it shows the same id, with the returned record.
func (s *Store[T]) Update(ctx context.Context, id string, payload any) Result[T] {
	if r, ok := s.unsupported(OpUpdate); !ok {
		return r
	}
	start := s.begin(nil)

	var item T
	if err := s.transport.Do(ctx, s.ep.updateMethod(), s.ep.itemPath(id), payload, &item); err != nil {
		return s.fail(ctx, OpUpdate, start, err)
	}

	applied := s.finish(ctx, OpUpdate, start, func() {
		next := cloneItems(s.items)
		for i := range next {
			if next[i].Key() == id {
				next[i] = item
			}
		}
		s.items = next
		if s.detail != nil && (*s.detail).Key() == id {
			detail := item
			s.detail = &detail
		}
	})
	if !applied {
		return s.canceled(ctx, ctx.Err())
	}
	s.publish(events.OpUpdated, id, item)
	return Result[T]{Success: true, Item: &item}
}

type removeResponse struct {
	Message string `json:"message"`
}

// Remove deletes id on the server and drops every local entry with it.
func (s *Store[T]) Remove(ctx context.Context, id string) Result[T] {
	if r, ok := s.unsupported(OpRemove); !ok {
		return r
	}
	start := s.begin(nil)

	var resp removeResponse
	if err := s.transport.Do(ctx, http.MethodDelete, s.ep.itemPath(id), nil, &resp); err != nil {
		return s.fail(ctx, OpRemove, start, err)
	}

	applied := s.finish(ctx, OpRemove, start, func() {
		next := make([]T, 0, len(s.items))
		for _, it := range s.items {
			if it.Key() != id {
				next = append(next, it)
			}
		}
		s.items = next
		if s.detail != nil && (*s.detail).Key() == id {
			s.detail = nil
		}
	})
	if !applied {
		return s.canceled(ctx, ctx.Err())
	}
	s.publish(events.OpRemoved, id, nil)
	return Result[T]{Success: true, Message: resp.Message}
}

// Reload drops cached reads for the resource and lists it again.
func (s *Store[T]) Reload(ctx context.Context) error {
	if s.ep.Cacheable {
		if err := s.transport.InvalidateCache(ctx, s.ep.Collection); err != nil {
			s.logger.Warn().Err(err).Msg("cache invalidation failed")
		}
	}
	res := s.List(ctx)
	if !res.Success {
		return res.Err
	}
	return nil
}

// Snapshot returns a copy of the current state.
func (s *Store[T]) Snapshot() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Items returns a copy of the collection.
func (s *Store[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

// Selected returns a copy of the record loaded by the last Detail call.
func (s *Store[T]) Selected() *T {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detail == nil {
		return nil
	}
	d := *s.detail
	return &d
}

// Busy reports whether any operation is in flight.
func (s *Store[T]) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight > 0
}

// Err returns the last error message, empty when the latest operation
// has not failed.
func (s *Store[T]) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Loaded reports whether a List has ever succeeded.
func (s *Store[T]) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs on the goroutine that changed the state.
func (s *Store[T]) Subscribe(fn func(State[T])) func() {
	s.mu.Lock()
	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store[T]) unsupported(op Operation) (Result[T], bool) {
	if s.ep.Capabilities.Has(op.capability()) {
		return Result[T]{}, true
	}
	return Failure[T](ErrUnsupported), false
}

// begin marks the store busy, clears the last error and applies reset.
func (s *Store[T]) begin(reset func()) time.Time {
	s.mu.Lock()
	s.inFlight++
	s.lastErr = ""
	if reset != nil {
		reset()
	}
	state := s.snapshotLocked()
	observers := s.observerList()
	s.mu.Unlock()

	notify(observers, state)
	return time.Now()
}

// finish releases busy and applies the result unless ctx is done. It
// reports whether the result was applied.
func (s *Store[T]) finish(ctx context.Context, op Operation, start time.Time, apply func()) bool {
	outcome := "success"
	applied := ctx.Err() == nil

	s.mu.Lock()
	s.inFlight--
	if !applied {
		outcome = "canceled"
	} else if apply != nil {
		apply()
	}
	state := s.snapshotLocked()
	observers := s.observerList()
	s.mu.Unlock()

	metrics.ObserveStoreOp(s.ep.Resource, string(op), outcome, time.Since(start))
	notify(observers, state)
	return applied
}

func (s *Store[T]) fail(ctx context.Context, op Operation, start time.Time, err error) Result[T] {
	if ctx.Err() != nil {
		s.finish(ctx, op, start, nil)
		return s.canceled(ctx, err)
	}

	msg := s.ep.message(op)
	returned, recorded := unexpectedError, "An unexpected error occurred while "+msg.Activity+"."

	var apiErr *api.APIError
	if !errors.Is(err, api.ErrDecode) && errors.As(err, &apiErr) {
		returned = apiErr.Message
		if returned == "" {
			returned = msg.Failed
		}
		recorded = returned
	}

	s.logger.Warn().Err(err).Str("operation", string(op)).Msg("store operation failed")

	s.mu.Lock()
	s.inFlight--
	s.lastErr = recorded
	state := s.snapshotLocked()
	observers := s.observerList()
	s.mu.Unlock()

	metrics.ObserveStoreOp(s.ep.Resource, string(op), "error", time.Since(start))
	notify(observers, state)
	return Result[T]{Error: returned, Err: err}
}

func (s *Store[T]) canceled(ctx context.Context, err error) Result[T] {
	if !errors.Is(err, ctx.Err()) {
		err = ctx.Err()
	}
	s.logger.Debug().Err(err).Msg("store operation canceled")
	return Result[T]{Error: err.Error(), Err: err}
}

func (s *Store[T]) publish(operation, id string, record any) {
	if s.events == nil {
		return
	}
	payload := events.ChangePayload{
		Resource:  s.ep.Resource,
		Operation: operation,
		ID:        id,
	}
	if record != nil {
		raw, err := json.Marshal(record)
		if err == nil {
			payload.Record = raw
		}
	}
	if err := s.events.PublishJSON(events.Type(s.ep.Resource, operation), payload); err != nil {
		s.logger.Error().Err(err).Str("operation", operation).Msg("failed to publish change event")
	}
}

func (s *Store[T]) snapshotLocked() State[T] {
	state := State[T]{
		Items:  cloneItems(s.items),
		Busy:   s.inFlight > 0,
		Err:    s.lastErr,
		Loaded: s.loaded,
	}
	if s.detail != nil {
		d := *s.detail
		state.Detail = &d
	}
	return state
}

func (s *Store[T]) observerList() []func(State[T]) {
	if len(s.observers) == 0 {
		return nil
	}
	out := make([]func(State[T]), 0, len(s.observers))
	for _, fn := range s.observers {
		out = append(out, fn)
	}
	return out
}

func notify[T any](observers []func(State[T]), state State[T]) {
	for _, fn := range observers {
		fn(state)
	}
}

func cloneItems[T any](items []T) []T {
	if items == nil {
		return nil
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}
