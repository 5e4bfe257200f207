// Package app wires the transport, stores, services and refresher.
package app

import (
	"context"
	"time"

	"ruangpulih/internal/api"
	"ruangpulih/internal/config"
	"ruangpulih/internal/domain"
	"ruangpulih/internal/events"
	"ruangpulih/internal/export"
	"ruangpulih/internal/logging"
	"ruangpulih/internal/models"
	"ruangpulih/internal/service"
	"ruangpulih/internal/store"
	"ruangpulih/internal/worker"

	"github.com/rs/zerolog"
)

// Dependencies lists, per change event, the resources whose server-side
// state that change also affects.
var Dependencies = map[string][]string{
	events.EventBookingCreated:  {store.Schedules.Resource, store.Psychologists.Resource},
	events.EventBookingUpdated:  {store.Schedules.Resource, store.Psychologists.Resource},
	events.EventBookingRemoved:  {store.Schedules.Resource, store.Psychologists.Resource},
	events.EventScheduleCreated: {store.Psychologists.Resource},
	events.EventScheduleUpdated: {store.Psychologists.Resource, store.Bookings.Resource},
	events.EventScheduleRemoved: {store.Psychologists.Resource, store.Bookings.Resource},
	events.EventReviewCreated:   {store.Psychologists.Resource},
}

type App struct {
	Config *config.Config
	API    *api.Client
	Bus    *events.EventBus

	Bookings      *service.BookingService
	Schedules     *service.ScheduleService
	Reviews       *service.ReviewService
	Psychologists *service.PsychologistService

	Refresher *worker.Refresher
	Exporter  *export.Exporter

	logger      *zerolog.Logger
	unsubscribe func()
}

// cacheInvalidationTimeout bounds the cache delete run inside a change
// event handler.
const cacheInvalidationTimeout = 3 * time.Second

// New builds the client stack. cache may be nil; it is used for cacheable
// reads when cfg.Cache is enabled.
func New(cfg *config.Config, logger *zerolog.Logger, cache domain.Cache, opts ...api.Option) (*App, error) {
	client, err := api.NewClient(cfg.API, logging.Component(logger, "api"), opts...)
	if err != nil {
		return nil, err
	}
	if cache != nil && cfg.Cache.Enabled && cfg.Cache.TTLSeconds > 0 {
		client.UseCache(cache, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
	}

	bus := events.NewEventBus()
	storeLogger := logging.Component(logger, "store")
	serviceLogger := logging.Component(logger, "service")

	bookings := store.New[models.Booking](store.Bookings, client, bus, storeLogger)
	schedules := store.New[models.Schedule](store.Schedules, client, bus, storeLogger)
	reviews := store.New[models.Review](store.Reviews, client, bus, storeLogger)
	psychologists := store.New[models.Psychologist](store.Psychologists, client, bus, storeLogger)

	refresher := worker.NewRefresher(worker.PolicyFromConfig(cfg.Refresh), cfg.Refresh.QueueSize, logging.Component(logger, "refresher"))
	refresher.Register(bookings, schedules, reviews, psychologists)
	if cfg.Refresh.Enabled {
		for eventType, resources := range Dependencies {
			refresher.Watch(bus, eventType, resources...)
		}
		refresher.SetPollInterval(time.Duration(cfg.Refresh.PollIntervalSeconds) * time.Second)
	}

	a := &App{
		Config:        cfg,
		API:           client,
		Bus:           bus,
		Bookings:      service.NewBookingService(bookings, client, serviceLogger),
		Schedules:     service.NewScheduleService(schedules, serviceLogger),
		Reviews:       service.NewReviewService(reviews, serviceLogger),
		Psychologists: service.NewPsychologistService(psychologists),
		Refresher:     refresher,
		Exporter:      export.NewExporter(cfg.Exports, logging.Component(logger, "export")),
		logger:        logger,
	}
	a.unsubscribe = bus.Subscribe(events.EventAny, a.invalidateCached)
	return a, nil
}

// invalidateCached drops cached reads of every cacheable resource after a
// confirmed change, so the next read goes to the backend.
func (a *App) invalidateCached(event *events.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), cacheInvalidationTimeout)
	defer cancel()

	for _, ep := range store.All {
		if !ep.Cacheable {
			continue
		}
		if err := a.API.InvalidateCache(ctx, ep.Collection); err != nil {
			a.logger.Warn().Err(err).Str("event", event.Type).Msg("cache invalidation failed")
			return err
		}
	}
	return nil
}

// Login signs in with the configured credentials.
func (a *App) Login(ctx context.Context) (*models.User, error) {
	return a.API.Login(ctx, a.Config.Auth.Email, a.Config.Auth.Password)
}

// LoadAll fetches every collection the current user can see. It returns
// the first failed result's error after attempting all of them.
func (a *App) LoadAll(ctx context.Context) error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	keep(a.Psychologists.Fetch(ctx).Err)
	keep(a.Schedules.Fetch(ctx).Err)
	keep(a.Bookings.Fetch(ctx).Err)
	keep(a.Reviews.Fetch(ctx).Err)
	return firstErr
}

// Run processes refresh work until ctx is done, then detaches from the
// event bus.
func (a *App) Run(ctx context.Context) {
	defer a.Refresher.Close()
	a.Refresher.Start(ctx)
}

// Close detaches from the event bus and signs out if a session is open.
func (a *App) Close(ctx context.Context) {
	a.unsubscribe()
	a.Refresher.Close()
	if a.API.CurrentUser() == nil {
		return
	}
	if err := a.API.Logout(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("logout failed")
	}
}
