package worker

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"
	"time"

	"ruangpulih/internal/api"
	"ruangpulih/internal/domain"
	"ruangpulih/internal/events"
	"ruangpulih/internal/metrics"

	"github.com/rs/zerolog"
)

// RefreshTask asks for one store to be reloaded.
type RefreshTask struct {
	Resource  string
	Reason    string
	CreatedAt time.Time
}

// Refresher reloads stores whose server-side data was changed by a
// mutation in another store. A resource is queued at most once at a time.
type Refresher struct {
	retryPolicy  RetryPolicy
	queue        chan RefreshTask
	pollInterval time.Duration
	logger       *zerolog.Logger

	mu          sync.Mutex
	stores      map[string]domain.Reloader
	pending     map[string]bool
	unsubscribe []func()
}

// NewRefresher builds a refresher with sane defaults.
func NewRefresher(retry RetryPolicy, queueSize int, logger *zerolog.Logger) *Refresher {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 3
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 500 * time.Millisecond
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 30 * time.Second
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Refresher{
		retryPolicy: retry,
		queue:       make(chan RefreshTask, queueSize),
		logger:      logger,
		stores:      make(map[string]domain.Reloader),
		pending:     make(map[string]bool),
	}
}

// SetPollInterval makes Start reload every loaded store periodically.
// Zero disables polling.
func (r *Refresher) SetPollInterval(d time.Duration) {
	r.pollInterval = d
}

func (r *Refresher) Register(stores ...domain.Reloader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range stores {
		r.stores[s.Name()] = s
	}
}

// Watch queues a reload of resources whenever eventType is published.
func (r *Refresher) Watch(bus *events.EventBus, eventType string, resources ...string) {
	unsubscribe := bus.Subscribe(eventType, func(e *events.Event) error {
		for _, resource := range resources {
			r.Enqueue(resource, e.Type)
		}
		return nil
	})

	r.mu.Lock()
	r.unsubscribe = append(r.unsubscribe, unsubscribe)
	r.mu.Unlock()
}

// Close detaches every Watch subscription.
func (r *Refresher) Close() {
	r.mu.Lock()
	subs := r.unsubscribe
	r.unsubscribe = nil
	r.mu.Unlock()

	for _, unsubscribe := range subs {
		unsubscribe()
	}
}

// Enqueue schedules a reload of resource. It reports false when the
// resource is already queued or the queue is full.
func (r *Refresher) Enqueue(resource, reason string) bool {
	r.mu.Lock()
	if r.pending[resource] {
		r.mu.Unlock()
		return false
	}
	r.pending[resource] = true
	r.mu.Unlock()

	task := RefreshTask{Resource: resource, Reason: reason, CreatedAt: time.Now()}
	select {
	case r.queue <- task:
		return true
	default:
		r.mu.Lock()
		delete(r.pending, resource)
		r.mu.Unlock()
		r.logger.Warn().Str("resource", resource).Str("reason", reason).Msg("refresh queue full, task dropped")
		metrics.IncRefresh(resource, "dropped")
		return false
	}
}

// Start processes queued reloads until ctx is done.
func (r *Refresher) Start(ctx context.Context) {
	r.logger.Info().Msg("refresher started")
	defer r.logger.Info().Msg("refresher stopped")

	var tick <-chan time.Time
	if r.pollInterval > 0 {
		ticker := time.NewTicker(r.pollInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case task := <-r.queue:
			r.processTask(ctx, task)
		case <-tick:
			for _, name := range r.names() {
				r.Enqueue(name, "poll")
			}
		}
	}
}

func (r *Refresher) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.stores))
	for name := range r.stores {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (r *Refresher) processTask(ctx context.Context, task RefreshTask) {
	r.mu.Lock()
	delete(r.pending, task.Resource)
	store := r.stores[task.Resource]
	r.mu.Unlock()

	logger := r.logger.With().Str("resource", task.Resource).Str("reason", task.Reason).Logger()

	if store == nil {
		logger.Warn().Msg("no store registered for refresh")
		metrics.IncRefresh(task.Resource, "unknown")
		return
	}
	if !store.Loaded() {
		logger.Debug().Msg("store never loaded, refresh skipped")
		metrics.IncRefresh(task.Resource, "skipped")
		return
	}

	for attempt := 1; ; attempt++ {
		err := store.Reload(ctx)
		if err == nil {
			logger.Debug().Int("attempt", attempt).Msg("store refreshed")
			metrics.IncRefresh(task.Resource, "success")
			return
		}
		if ctx.Err() != nil {
			return
		}
		if !retryable(err) || attempt >= r.retryPolicy.MaxRetries {
			logger.Error().Err(err).Int("attempt", attempt).Msg("refresh failed")
			metrics.IncRefresh(task.Resource, "failed")
			return
		}

		logger.Warn().Err(err).Int("attempt", attempt).Msg("refresh failed, retrying")
		if err := r.retryPolicy.Wait(ctx, attempt); err != nil {
			return
		}
	}
}

// retryable rejects client errors; repeating them cannot succeed.
func retryable(err error) bool {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError || apiErr.StatusCode == http.StatusTooManyRequests
	}
	return true
}
