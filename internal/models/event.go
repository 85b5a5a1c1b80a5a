package models

import "time"

// Event мероприятие, для которого открыт приём заявок.
type Event struct {
	ID           string     `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Open         bool       `db:"open" json:"open"`
	Deadline     *time.Time `db:"deadline" json:"deadline,omitempty"`
	ContactEmail string     `db:"contact_email" json:"contactEmail"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
}

// IsCFPOpen: приём открыт и дедлайн не наступил.
func (e *Event) IsCFPOpen(now time.Time) bool {
	if e == nil || !e.Open {
		return false
	}
	return e.Deadline == nil || now.Before(*e.Deadline)
}
