package models

import (
	"fmt"
	"time"
)

type Schedule struct {
	ID             string   `json:"id"`
	PsychologistID string   `json:"psychologist_id,omitempty"`
	Date           string   `json:"date"`      // YYYY-MM-DD
	TimeSlot       string   `json:"time_slot"` // HH:MM
	IsBooked       bool     `json:"is_booked"`
	CurrentBooking *Booking `json:"current_booking,omitempty"`
}

func (s Schedule) Key() string { return s.ID }

// StartsAt combines Date and TimeSlot in loc.
func (s Schedule) StartsAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout+" "+TimeSlotLayout, s.Date+" "+s.TimeSlot, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("schedule %s: %w", s.ID, err)
	}
	return t, nil
}
