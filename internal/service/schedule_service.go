package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"ruangpulih/internal/models"
	"ruangpulih/internal/store"

	"github.com/rs/zerolog"
)

// SchedulePatch carries the fields to change; nil fields are left alone.
type SchedulePatch struct {
	Date     *string `json:"date,omitempty"`
	TimeSlot *string `json:"time_slot,omitempty"`
}

type ScheduleService struct {
	store  *store.Store[models.Schedule]
	logger *zerolog.Logger
	now    func() time.Time
}

// NewScheduleService builds a service over s. A nil logger is replaced
// with a no-op one.
func NewScheduleService(s *store.Store[models.Schedule], logger *zerolog.Logger) *ScheduleService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &ScheduleService{store: s, logger: logger, now: time.Now}
}

// Store exposes the underlying schedules store.
func (s *ScheduleService) Store() *store.Store[models.Schedule] {
	return s.store
}

// Fetch loads the schedules visible to the current user.
func (s *ScheduleService) Fetch(ctx context.Context) store.Result[models.Schedule] {
	return s.store.List(ctx)
}

// Detail loads one schedule into the store's detail slot.
func (s *ScheduleService) Detail(ctx context.Context, id string) store.Result[models.Schedule] {
	if strings.TrimSpace(id) == "" {
		return s.reject(invalid("id", "Schedule id is required."))
	}
	return s.store.Detail(ctx, id)
}

// Add publishes a new slot for the current psychologist.
func (s *ScheduleService) Add(ctx context.Context, date, timeSlot string) store.Result[models.Schedule] {
	date, timeSlot = strings.TrimSpace(date), strings.TrimSpace(timeSlot)
	if date == "" || timeSlot == "" {
		return s.reject(invalid("date", "Date and time slot are required."))
	}
	if err := validateSlot(date, timeSlot); err != nil {
		return s.reject(err)
	}
	return s.store.Create(ctx, SchedulePatch{Date: &date, TimeSlot: &timeSlot})
}

// Edit changes the date or time of a slot. Only the fields set in patch
// are sent.
func (s *ScheduleService) Edit(ctx context.Context, id string, patch SchedulePatch) store.Result[models.Schedule] {
	if strings.TrimSpace(id) == "" {
		return s.reject(invalid("id", "Schedule id is required."))
	}
	if patch.Date == nil && patch.TimeSlot == nil {
		return s.reject(invalid("date", "Nothing to update."))
	}
	if patch.Date != nil {
		if _, err := time.Parse(models.DateLayout, *patch.Date); err != nil {
			return s.reject(invalid("date", "Date must use the YYYY-MM-DD format."))
		}
	}
	if patch.TimeSlot != nil {
		if _, err := time.Parse(models.TimeSlotLayout, *patch.TimeSlot); err != nil {
			return s.reject(invalid("time_slot", "Time slot must use the HH:MM format."))
		}
	}
	return s.store.Update(ctx, id, patch)
}

// Delete removes a slot. Slots known to be booked are refused locally.
func (s *ScheduleService) Delete(ctx context.Context, id string) store.Result[models.Schedule] {
	if strings.TrimSpace(id) == "" {
		return s.reject(invalid("id", "Schedule id is required."))
	}
	for _, sc := range s.store.Items() {
		if sc.ID == id && sc.IsBooked {
			return s.reject(invalid("id", "Cannot delete schedule that has been booked"))
		}
	}
	return s.store.Remove(ctx, id)
}

// Available lists loaded slots that are unbooked and still in the
// future, earliest first.
func (s *ScheduleService) Available() []models.Schedule {
	return OpenSlots(s.store.Items(), s.now())
}

// OpenSlots filters schedules to unbooked ones starting after now,
// earliest first. Slots with unparseable dates are dropped.
func OpenSlots(schedules []models.Schedule, now time.Time) []models.Schedule {
	type slot struct {
		schedule models.Schedule
		start    time.Time
	}
	var open []slot
	for _, sc := range schedules {
		if sc.IsBooked {
			continue
		}
		start, err := sc.StartsAt(now.Location())
		if err != nil || !start.After(now) {
			continue
		}
		open = append(open, slot{schedule: sc, start: start})
	}
	sort.SliceStable(open, func(i, j int) bool { return open[i].start.Before(open[j].start) })

	out := make([]models.Schedule, 0, len(open))
	for _, o := range open {
		out = append(out, o.schedule)
	}
	return out
}

func validateSlot(date, timeSlot string) *ValidationError {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return invalid("date", "Date must use the YYYY-MM-DD format.")
	}
	if _, err := time.Parse(models.TimeSlotLayout, timeSlot); err != nil {
		return invalid("time_slot", "Time slot must use the HH:MM format.")
	}
	return nil
}

func (s *ScheduleService) reject(err *ValidationError) store.Result[models.Schedule] {
	s.logger.Debug().Str("field", err.Field).Msg(err.Message)
	return store.Failure[models.Schedule](err)
}
