package models

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusRejected  = "rejected"
)

const (
	RoleClient       = "client"
	RolePsychologist = "psychologist"
)

const (
	// DateLayout is the wire format of Schedule.Date.
	DateLayout = "2006-01-02"

	// TimeSlotLayout is the wire format of Schedule.TimeSlot.
	TimeSlotLayout = "15:04"

	// MinRating and MaxRating bound Review.Rating.
	MinRating = 1
	MaxRating = 5

	// DashboardListSize is how many rows each dashboard panel shows.
	DashboardListSize = 5
)

// IsValidStatus reports whether status is a known booking status.
func IsValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusConfirmed, StatusRejected:
		return true
	default:
		return false
	}
}

// IsValidRole reports whether role is a known account role.
func IsValidRole(role string) bool {
	return role == RoleClient || role == RolePsychologist
}
