package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"ruangpulih/internal/app"
	"ruangpulih/internal/config"
	"ruangpulih/internal/dashboard"
	"ruangpulih/internal/domain"
	"ruangpulih/internal/models"
	"ruangpulih/internal/service"
	"ruangpulih/internal/store"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

type command struct {
	name    string
	summary string
	run     func(c *cli, ctx context.Context, a *app.App, args []string) error
}

var commands = []command{
	{"login", "sign in with the configured credentials and print the account", (*cli).login},
	{"psychologists", "list available psychologists, or show one with --id", (*cli).psychologists},
	{"schedules", "list|show ID|add|edit ID|delete ID|open", (*cli).schedules},
	{"bookings", "list|show ID|book SCHEDULE_ID|confirm ID|reject ID|cancel ID|status ID STATUS|delete ID", (*cli).bookings},
	{"reviews", "list|add --booking ID --rating N [--comment TEXT]", (*cli).reviews},
	{"dashboard", "print the dashboard for the signed-in account", (*cli).dashboard},
	{"export", "write the visible bookings to an xlsx workbook", (*cli).export},
	{"watch", "keep stores fresh and serve /metrics until interrupted", (*cli).watch},
}

var errNoCredentials = errors.New("auth.email and auth.password must be configured")

type cli struct {
	cfg    *config.Config
	logger *zerolog.Logger
	cache  domain.Cache
	out    io.Writer
	now    func() time.Time
}

func (c *cli) execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("command required")
	}
	for _, cmd := range commands {
		if cmd.name != args[0] {
			continue
		}
		a, err := app.New(c.cfg, c.logger, c.cache)
		if err != nil {
			return err
		}
		defer a.Close(context.WithoutCancel(ctx))
		return cmd.run(c, ctx, a, args[1:])
	}
	return fmt.Errorf("unknown command %q", args[0])
}

func (c *cli) signIn(ctx context.Context, a *app.App) (*models.User, error) {
	if c.cfg.Auth.Email == "" || c.cfg.Auth.Password == "" {
		return nil, errNoCredentials
	}
	user, err := a.Login(ctx)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return user, nil
}

func (c *cli) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

func (c *cli) login(ctx context.Context, a *app.App, _ []string) error {
	user, err := c.signIn(ctx, a)
	if err != nil {
		return err
	}
	return c.print(user)
}

func (c *cli) psychologists(ctx context.Context, a *app.App, args []string) error {
	var id string
	flagSet := newFlagSet("psychologists")
	flagSet.StringVar(&id, "id", "", "psychologist id")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if id != "" {
		return emit(c, a.Psychologists.Detail(ctx, id))
	}
	return emit(c, a.Psychologists.Fetch(ctx))
}

func (c *cli) schedules(ctx context.Context, a *app.App, args []string) error {
	var date, timeSlot string
	flagSet := newFlagSet("schedules")
	flagSet.StringVar(&date, "date", "", "slot date (YYYY-MM-DD)")
	flagSet.StringVar(&timeSlot, "time", "", "slot start (HH:MM)")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	action, rest := subcommand(flagSet.Args())

	if _, err := c.signIn(ctx, a); err != nil {
		return err
	}

	switch action {
	case "list":
		return emit(c, a.Schedules.Fetch(ctx))
	case "show":
		id, err := arg(rest, 0, "schedule id")
		if err != nil {
			return err
		}
		return emit(c, a.Schedules.Detail(ctx, id))
	case "add":
		return emit(c, a.Schedules.Add(ctx, date, timeSlot))
	case "edit":
		id, err := arg(rest, 0, "schedule id")
		if err != nil {
			return err
		}
		var patch service.SchedulePatch
		if flagSet.Changed("date") {
			patch.Date = &date
		}
		if flagSet.Changed("time") {
			patch.TimeSlot = &timeSlot
		}
		if res := a.Schedules.Fetch(ctx); !res.Success {
			return emit(c, res)
		}
		return emit(c, a.Schedules.Edit(ctx, id, patch))
	case "delete":
		id, err := arg(rest, 0, "schedule id")
		if err != nil {
			return err
		}
		if res := a.Schedules.Fetch(ctx); !res.Success {
			return emit(c, res)
		}
		return emit(c, a.Schedules.Delete(ctx, id))
	case "open":
		res := a.Schedules.Fetch(ctx)
		if !res.Success {
			return emit(c, res)
		}
		return c.print(service.OpenSlots(res.Items, c.clock()))
	default:
		return fmt.Errorf("unknown schedules action %q", action)
	}
}

func (c *cli) bookings(ctx context.Context, a *app.App, args []string) error {
	flagSet := newFlagSet("bookings")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	action, rest := subcommand(flagSet.Args())

	if _, err := c.signIn(ctx, a); err != nil {
		return err
	}

	if action == "list" {
		return emit(c, a.Bookings.Fetch(ctx))
	}

	id, err := arg(rest, 0, "id")
	if err != nil {
		return err
	}
	switch action {
	case "show":
		return emit(c, a.Bookings.Detail(ctx, id))
	case "book":
		return emit(c, a.Bookings.Book(ctx, id))
	case "delete":
		return emit(c, a.Bookings.Delete(ctx, id))
	}

	// Status changes are checked against the loaded booking first.
	if res := a.Bookings.Fetch(ctx); !res.Success {
		return emit(c, res)
	}
	switch action {
	case "confirm":
		return emit(c, a.Bookings.Confirm(ctx, id))
	case "reject":
		return emit(c, a.Bookings.Reject(ctx, id))
	case "cancel":
		return emit(c, a.Bookings.Cancel(ctx, id))
	case "status":
		status, err := arg(rest, 1, "status")
		if err != nil {
			return err
		}
		return emit(c, a.Bookings.UpdateStatus(ctx, id, status))
	default:
		return fmt.Errorf("unknown bookings action %q", action)
	}
}

func (c *cli) reviews(ctx context.Context, a *app.App, args []string) error {
	var bookingID, comment string
	var rating int
	flagSet := newFlagSet("reviews")
	flagSet.StringVar(&bookingID, "booking", "", "booking id")
	flagSet.IntVar(&rating, "rating", 0, "rating from 1 to 5")
	flagSet.StringVar(&comment, "comment", "", "review text")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	action, _ := subcommand(flagSet.Args())

	switch action {
	case "list":
		return emit(c, a.Reviews.Fetch(ctx))
	case "add":
		if _, err := c.signIn(ctx, a); err != nil {
			return err
		}
		if res := a.Reviews.Fetch(ctx); !res.Success {
			return emit(c, res)
		}
		return emit(c, a.Reviews.Create(ctx, bookingID, rating, comment))
	default:
		return fmt.Errorf("unknown reviews action %q", action)
	}
}

func (c *cli) dashboard(ctx context.Context, a *app.App, _ []string) error {
	user, err := c.signIn(ctx, a)
	if err != nil {
		return err
	}
	if err := a.LoadAll(ctx); err != nil {
		return err
	}

	schedules := a.Schedules.Store().Items()
	bookings := a.Bookings.Store().Items()
	reviews := a.Reviews.Store().Items()
	now := c.clock()

	if user.IsPsychologist() {
		return c.print(dashboard.ForPsychologist(*user, schedules, bookings, reviews, now))
	}
	return c.print(struct {
		dashboard.ClientSummary
		Reviews []models.Review `json:"reviews"`
	}{
		ClientSummary: dashboard.ForClient(bookings, schedules, now),
		Reviews:       dashboard.ClientReviews(*user, bookings, reviews),
	})
}

func (c *cli) export(ctx context.Context, a *app.App, _ []string) error {
	if _, err := c.signIn(ctx, a); err != nil {
		return err
	}
	if res := a.Bookings.Fetch(ctx); !res.Success {
		return emit(c, res)
	}
	if res := a.Schedules.Fetch(ctx); !res.Success {
		return emit(c, res)
	}

	path, err := a.Exporter.Bookings(ctx, a.Bookings.Store().Items(), a.Schedules.Store().Items())
	if err != nil {
		return err
	}
	return c.print(map[string]string{"path": path})
}

func (c *cli) watch(ctx context.Context, a *app.App, _ []string) error {
	if _, err := c.signIn(ctx, a); err != nil {
		return err
	}
	if !c.cfg.Refresh.Enabled {
		c.logger.Warn().Msg("refresh is disabled in config, stores will only change on local mutations")
	}
	if err := a.LoadAll(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("initial load incomplete")
	}

	logChanges(a.Bookings.Store(), c.logger)
	logChanges(a.Schedules.Store(), c.logger)
	logChanges(a.Reviews.Store(), c.logger)
	logChanges(a.Psychologists.Store(), c.logger)

	startMetrics(ctx, c.cfg, c.logger)

	c.logger.Info().Msg("watching, press Ctrl+C to stop")
	a.Run(ctx)
	return nil
}

func logChanges[T models.Entity](s *store.Store[T], logger *zerolog.Logger) {
	name := s.Name()
	s.Subscribe(func(state store.State[T]) {
		if state.Busy {
			return
		}
		evt := logger.Info()
		if state.Err != "" {
			evt = logger.Warn().Str("error", state.Err)
		}
		evt.Str("resource", name).Int("items", len(state.Items)).Msg("store updated")
	})
}

type resultOutput[T any] struct {
	Success bool   `json:"success"`
	Items   []T    `json:"items,omitempty"`
	Item    *T     `json:"item,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// emit prints r and turns a failed result into an error so the process
// exits non-zero.
func emit[T any](c *cli, r store.Result[T]) error {
	if err := c.print(resultOutput[T]{
		Success: r.Success,
		Items:   r.Items,
		Item:    r.Item,
		Message: r.Message,
		Error:   r.Error,
	}); err != nil {
		return err
	}
	if !r.Success {
		return errors.New(r.Error)
	}
	return nil
}

func (c *cli) print(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newFlagSet(name string) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	return flagSet
}

func subcommand(args []string) (string, []string) {
	if len(args) == 0 {
		return "list", nil
	}
	return args[0], args[1:]
}

func arg(args []string, i int, name string) (string, error) {
	if i >= len(args) || args[i] == "" {
		return "", fmt.Errorf("missing %s", name)
	}
	return args[i], nil
}
