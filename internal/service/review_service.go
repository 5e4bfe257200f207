package service

import (
	"context"
	"strings"

	"ruangpulih/internal/models"
	"ruangpulih/internal/store"

	"github.com/rs/zerolog"
)

type ReviewService struct {
	store  *store.Store[models.Review]
	logger *zerolog.Logger
}

func NewReviewService(s *store.Store[models.Review], logger *zerolog.Logger) *ReviewService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &ReviewService{store: s, logger: logger}
}

// Store exposes the underlying reviews store.
func (s *ReviewService) Store() *store.Store[models.Review] {
	return s.store
}

// Fetch loads the reviews visible to the current user.
func (s *ReviewService) Fetch(ctx context.Context) store.Result[models.Review] {
	return s.store.List(ctx)
}

// Create submits a review for a booking. A booking already reviewed in
// the loaded collection is refused; the backend does not check this.
func (s *ReviewService) Create(ctx context.Context, bookingID string, rating int, comment string) store.Result[models.Review] {
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return s.reject(invalid("booking_id", "Booking is required."))
	}
	if rating < models.MinRating || rating > models.MaxRating {
		return s.reject(invalid("rating", "Please give a rating between 1 and 5."))
	}
	if s.Reviewed(bookingID) {
		return s.reject(invalid("booking_id", "This booking has already been reviewed."))
	}
	return s.store.Create(ctx, map[string]any{
		"booking_id": bookingID,
		"rating":     rating,
		"comment":    strings.TrimSpace(comment),
	})
}

// Reviewed reports whether the loaded collection has a review for
// bookingID.
func (s *ReviewService) Reviewed(bookingID string) bool {
	for _, r := range s.store.Items() {
		if r.BookingID == bookingID {
			return true
		}
	}
	return false
}

func (s *ReviewService) reject(err *ValidationError) store.Result[models.Review] {
	s.logger.Debug().Str("field", err.Field).Msg(err.Message)
	return store.Failure[models.Review](err)
}
