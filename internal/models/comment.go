package models

import "time"

// Comment комментарий к заявке. Внутренние видят только ревьюеры.
type Comment struct {
	ID         int       `db:"id" json:"id"`
	EventID    string    `db:"event_id" json:"-"`
	ProposalID int       `db:"proposal_id" json:"proposalId"`
	UserID     int       `db:"user_id" json:"-"`
	Comment    string    `db:"comment" json:"comment"`
	Internal   bool      `db:"internal" json:"internal"`
	Added      time.Time `db:"added" json:"added"`

	User *UserSummary `db:"-" json:"user,omitempty"`
}
