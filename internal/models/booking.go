package models

type Booking struct {
	ID              string     `json:"id"`
	ScheduleID      string     `json:"schedule_id"`
	ClientID        string     `json:"client_id"`
	Status          string     `json:"status"` // pending, confirmed, rejected
	CreatedAt       *Timestamp `json:"created_at,omitempty"`
	ClientDetails   *User      `json:"client_details,omitempty"`
	ScheduleDetails *Schedule  `json:"schedule_details,omitempty"`
	Schedule        *Schedule  `json:"schedule,omitempty"`
}

func (b Booking) Key() string { return b.ID }

// ScheduleSnapshot returns whichever embedded schedule the server sent.
func (b Booking) ScheduleSnapshot() *Schedule {
	if b.ScheduleDetails != nil {
		return b.ScheduleDetails
	}
	return b.Schedule
}

// IsActive reports whether the booking still holds its slot.
func (b Booking) IsActive() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// CanTransition mirrors the backend's status rules so obviously invalid
// updates can be refused before they are sent.
func CanTransition(role, from, to string) bool {
	if !IsValidStatus(to) {
		return false
	}

	switch role {
	case RoleClient:
		return from == StatusPending && to == StatusRejected
	case RolePsychologist:
		if from == StatusConfirmed && to == StatusPending {
			return false
		}
		if from == StatusRejected && to != StatusRejected {
			return false
		}
		return true
	default:
		return false
	}
}
