package service

import (
	"context"
	"strings"

	"ruangpulih/internal/models"
	"ruangpulih/internal/store"

	"github.com/rs/zerolog"
)

// BookingService validates booking requests before they reach the store.
type BookingService struct {
	store   *store.Store[models.Booking]
	session Session
	logger  *zerolog.Logger
}

func NewBookingService(s *store.Store[models.Booking], session Session, logger *zerolog.Logger) *BookingService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &BookingService{store: s, session: session, logger: logger}
}

// Store exposes the underlying bookings store for reads and subscriptions.
func (s *BookingService) Store() *store.Store[models.Booking] {
	return s.store
}

// Fetch loads the current user's bookings.
func (s *BookingService) Fetch(ctx context.Context) store.Result[models.Booking] {
	return s.store.List(ctx)
}

// Detail loads one booking into the store's detail slot.
func (s *BookingService) Detail(ctx context.Context, id string) store.Result[models.Booking] {
	if strings.TrimSpace(id) == "" {
		return s.reject(invalid("id", "Booking id is required."))
	}
	return s.store.Detail(ctx, id)
}

// Book reserves a schedule for the current client.
func (s *BookingService) Book(ctx context.Context, scheduleID string) store.Result[models.Booking] {
	scheduleID = strings.TrimSpace(scheduleID)
	if scheduleID == "" {
		return s.reject(invalid("schedule_id", "Please select a schedule."))
	}
	return s.store.Create(ctx, map[string]string{"schedule_id": scheduleID})
}

// UpdateStatus changes a booking's status. Transitions the backend is
// known to refuse for the current role are rejected locally.
func (s *BookingService) UpdateStatus(ctx context.Context, id, status string) store.Result[models.Booking] {
	if strings.TrimSpace(id) == "" {
		return s.reject(invalid("id", "Booking id is required."))
	}
	if !models.IsValidStatus(status) {
		return s.reject(invalid("status", "Invalid status provided."))
	}
	if user := s.currentUser(); user != nil {
		if current, ok := s.find(id); ok && !models.CanTransition(user.Role, current.Status, status) {
			return s.reject(invalid("status", "Cannot change booking from "+current.Status+" to "+status+"."))
		}
	}
	return s.store.Update(ctx, id, map[string]string{"status": status})
}

// Confirm accepts a pending booking.
func (s *BookingService) Confirm(ctx context.Context, id string) store.Result[models.Booking] {
	return s.UpdateStatus(ctx, id, models.StatusConfirmed)
}

// Reject declines a pending booking.
func (s *BookingService) Reject(ctx context.Context, id string) store.Result[models.Booking] {
	return s.UpdateStatus(ctx, id, models.StatusRejected)
}

// Cancel withdraws a client's pending booking.
func (s *BookingService) Cancel(ctx context.Context, id string) store.Result[models.Booking] {
	if current, ok := s.find(id); ok && current.Status != models.StatusPending {
		return s.reject(invalid("status", "Only pending bookings can be cancelled."))
	}
	return s.UpdateStatus(ctx, id, models.StatusRejected)
}

// Delete removes a booking on the server and from the collection.
func (s *BookingService) Delete(ctx context.Context, id string) store.Result[models.Booking] {
	if strings.TrimSpace(id) == "" {
		return s.reject(invalid("id", "Booking id is required."))
	}
	return s.store.Remove(ctx, id)
}

func (s *BookingService) find(id string) (models.Booking, bool) {
	for _, b := range s.store.Items() {
		if b.ID == id {
			return b, true
		}
	}
	return models.Booking{}, false
}

func (s *BookingService) currentUser() *models.User {
	if s.session == nil {
		return nil
	}
	return s.session.CurrentUser()
}

func (s *BookingService) reject(err *ValidationError) store.Result[models.Booking] {
	s.logger.Debug().Str("field", err.Field).Msg(err.Message)
	return store.Failure[models.Booking](err)
}
