// Package dashboard derives the dashboard panels from store snapshots.
package dashboard

import (
	"sort"
	"time"

	"ruangpulih/internal/models"
)

type PsychologistSummary struct {
	UpcomingSchedules []models.Schedule `json:"upcoming_schedules"`
	LatestBookings    []models.Booking  `json:"latest_bookings"`
	LatestReviews     []models.Review   `json:"latest_reviews"`
	TotalSchedules    int               `json:"total_schedules"`
	TotalBookings     int               `json:"total_bookings"`
	ConfirmedBookings int               `json:"confirmed_bookings"`
	PendingBookings   int               `json:"pending_bookings"`
	TotalReviews      int               `json:"total_reviews"`
	AverageRating     *float64          `json:"average_rating"`
}

// ForPsychologist summarizes the schedules, bookings and reviews that
// belong to psychologist.
func ForPsychologist(psychologist models.User, schedules []models.Schedule, bookings []models.Booking, reviews []models.Review, now time.Time) PsychologistSummary {
	var summary PsychologistSummary

	own := make(map[string]bool)
	type upcoming struct {
		schedule models.Schedule
		start    time.Time
	}
	var future []upcoming
	for _, s := range schedules {
		if s.PsychologistID != psychologist.ID {
			continue
		}
		own[s.ID] = true
		summary.TotalSchedules++
		start, err := s.StartsAt(now.Location())
		if err == nil && start.After(now) {
			future = append(future, upcoming{schedule: s, start: start})
		}
	}
	sort.SliceStable(future, func(i, j int) bool { return future[i].start.Before(future[j].start) })
	for _, u := range limit(future) {
		summary.UpcomingSchedules = append(summary.UpcomingSchedules, u.schedule)
	}

	ownBookings := make(map[string]bool)
	var related []models.Booking
	for _, b := range bookings {
		if !own[b.ScheduleID] {
			continue
		}
		ownBookings[b.ID] = true
		related = append(related, b)
		switch b.Status {
		case models.StatusConfirmed:
			summary.ConfirmedBookings++
		case models.StatusPending:
			summary.PendingBookings++
		}
	}
	summary.TotalBookings = len(related)
	sortNewestBookings(related)
	summary.LatestBookings = limit(related)

	var relevant []models.Review
	sum := 0
	for _, r := range reviews {
		if ownBookings[r.BookingID] {
			relevant = append(relevant, r)
			sum += r.Rating
		}
	}
	summary.TotalReviews = len(relevant)
	if len(relevant) > 0 {
		avg := float64(sum) / float64(len(relevant))
		summary.AverageRating = &avg
	}
	sortNewestReviews(relevant)
	summary.LatestReviews = limit(relevant)

	return summary
}

type ClientSummary struct {
	Upcoming          []models.Booking `json:"upcoming"`
	TotalBookings     int              `json:"total_bookings"`
	PendingBookings   int              `json:"pending_bookings"`
	ConfirmedBookings int              `json:"confirmed_bookings"`
	RejectedBookings  int              `json:"rejected_bookings"`
}

// ForClient summarizes a client's bookings. A booking is upcoming while it
// is pending or confirmed and its slot has not started. Slot times come
// from schedules, then from the booking's embedded schedule; bookings
// with neither count as upcoming when created today or later.
func ForClient(bookings []models.Booking, schedules []models.Schedule, now time.Time) ClientSummary {
	summary := ClientSummary{TotalBookings: len(bookings)}

	byID := make(map[string]models.Schedule, len(schedules))
	for _, s := range schedules {
		byID[s.ID] = s
	}
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	type upcoming struct {
		booking models.Booking
		at      time.Time
	}
	var list []upcoming
	for _, b := range bookings {
		switch b.Status {
		case models.StatusPending:
			summary.PendingBookings++
		case models.StatusConfirmed:
			summary.ConfirmedBookings++
		case models.StatusRejected:
			summary.RejectedBookings++
		}
		if !b.IsActive() {
			continue
		}

		if start, ok := slotStart(b, byID, now.Location()); ok {
			if start.After(now) {
				list = append(list, upcoming{booking: b, at: start})
			}
			continue
		}
		if b.CreatedAt != nil && !b.CreatedAt.Before(startOfDay) {
			list = append(list, upcoming{booking: b, at: b.CreatedAt.Time})
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].at.Before(list[j].at) })
	for _, u := range limit(list) {
		summary.Upcoming = append(summary.Upcoming, u.booking)
	}
	return summary
}

// ClientReviews returns the reviews written on client's bookings, newest
// first.
func ClientReviews(client models.User, bookings []models.Booking, reviews []models.Review) []models.Review {
	mine := make(map[string]bool)
	for _, b := range bookings {
		if b.ClientID == client.ID {
			mine[b.ID] = true
		}
	}
	var out []models.Review
	for _, r := range reviews {
		if mine[r.BookingID] {
			out = append(out, r)
		}
	}
	sortNewestReviews(out)
	return out
}

func slotStart(b models.Booking, schedules map[string]models.Schedule, loc *time.Location) (time.Time, bool) {
	s, ok := schedules[b.ScheduleID]
	if !ok {
		snapshot := b.ScheduleSnapshot()
		if snapshot == nil {
			return time.Time{}, false
		}
		s = *snapshot
	}
	start, err := s.StartsAt(loc)
	if err != nil {
		return time.Time{}, false
	}
	return start, true
}

func sortNewestBookings(bookings []models.Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		return models.TimestampBefore(bookings[j].CreatedAt, bookings[i].CreatedAt)
	})
}

func sortNewestReviews(reviews []models.Review) {
	sort.SliceStable(reviews, func(i, j int) bool {
		return models.TimestampBefore(reviews[j].CreatedAt, reviews[i].CreatedAt)
	})
}

func limit[T any](items []T) []T {
	if len(items) > models.DashboardListSize {
		return items[:models.DashboardListSize]
	}
	return items
}
