package models

// Psychologist is the backend's aggregation of a psychologist account with
// its open schedules and, on the detail endpoint, its reviews. The list
// endpoint leaves AverageRating and TotalReviews null.
type Psychologist struct {
	ID                 string     `json:"id"`
	Username           string     `json:"username"`
	Email              string     `json:"email"`
	Role               string     `json:"role,omitempty"`
	Specialization     string     `json:"specialization,omitempty"`
	AverageRating      *float64   `json:"average_rating"`
	TotalReviews       *int       `json:"total_reviews"`
	AvailableSchedules []Schedule `json:"available_schedules,omitempty"`
	Reviews            []Review   `json:"reviews,omitempty"`
}

func (p Psychologist) Key() string { return p.ID }
