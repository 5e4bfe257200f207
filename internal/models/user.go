package models

// User is the account record returned by the auth endpoints and embedded
// in bookings as client_details.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func (u User) Key() string { return u.ID }

func (u User) IsClient() bool { return u.Role == RoleClient }

func (u User) IsPsychologist() bool { return u.Role == RolePsychologist }
