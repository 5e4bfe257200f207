package models

type Review struct {
	ID        string     `json:"id"`
	BookingID string     `json:"booking_id"`
	Rating    int        `json:"rating"`
	Comment   string     `json:"comment"`
	CreatedAt *Timestamp `json:"created_at,omitempty"`
}

func (r Review) Key() string { return r.ID }
