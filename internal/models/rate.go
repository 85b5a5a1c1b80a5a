package models

import "time"

const (
	RateMin = 0
	RateMax = 5
)

// Rate оценка заявки ревьюером.
type Rate struct {
	ID         int       `db:"id" json:"id"`
	EventID    string    `db:"event_id" json:"-"`
	ProposalID int       `db:"proposal_id" json:"talkId"`
	UserID     int       `db:"user_id" json:"-"`
	Rate       int       `db:"rate" json:"rate"`
	Love       bool      `db:"love" json:"love"`
	Hate       bool      `db:"hate" json:"hate"`
	Added      time.Time `db:"added" json:"added"`
}

// RateAdmin оценка вместе с автором, для списка оценок заявки.
type RateAdmin struct {
	ID     int         `json:"id"`
	Rate   int         `json:"rate"`
	Love   bool        `json:"love"`
	Hate   bool        `json:"hate"`
	Added  time.Time   `json:"added"`
	TalkID int         `json:"talkId"`
	User   UserSummary `json:"user"`
}
