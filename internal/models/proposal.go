package models

import (
	"strings"
	"time"
)

// ProposalState константы состояний заявки
const (
	ProposalStateDraft     = "DRAFT"
	ProposalStateConfirmed = "CONFIRMED"
	ProposalStateAccepted  = "ACCEPTED"
	ProposalStateRefused   = "REFUSED"
	ProposalStateBackup    = "BACKUP"
	ProposalStatePresent   = "PRESENT"
)

// ValidProposalStates список валидных состояний
var ValidProposalStates = map[string]struct{}{
	ProposalStateDraft:     {},
	ProposalStateConfirmed: {},
	ProposalStateAccepted:  {},
	ProposalStateRefused:   {},
	ProposalStateBackup:    {},
	ProposalStatePresent:   {},
}

// ParseProposalState принимает состояние в любом регистре.
func ParseProposalState(raw string) (string, bool) {
	state := strings.ToUpper(strings.TrimSpace(raw))
	_, ok := ValidProposalStates[state]
	return state, ok
}

// Proposal заявка на доклад. После принятия она же является докладом программы.
type Proposal struct {
	ID            int        `db:"id" json:"id"`
	EventID       string     `db:"event_id" json:"eventId"`
	State         string     `db:"state" json:"state"`
	Name          string     `db:"name" json:"name"`
	Description   string     `db:"description" json:"description"`
	References    string     `db:"refs" json:"references"`
	Difficulty    int        `db:"difficulty" json:"difficulty"`
	Language      string     `db:"language" json:"language"`
	Track         string     `db:"track" json:"track"`
	FormatID      *int       `db:"format_id" json:"formatId,omitempty"`
	SpeakerID     int        `db:"speaker_id" json:"speakerId"`
	Room          string     `db:"room" json:"room"`
	ScheduleStart *time.Time `db:"schedule_start" json:"scheduleStart,omitempty"`
	ScheduleEnd   *time.Time `db:"schedule_end" json:"scheduleEnd,omitempty"`
	Added         time.Time  `db:"added" json:"added"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updatedAt"`

	Speaker    *User   `db:"-" json:"speaker,omitempty"`
	Cospeakers []*User `db:"-" json:"cospeakers"`
	Format     *Format `db:"-" json:"format,omitempty"`
}

// IsSpeaker: основной спикер или один из соспикеров.
func (p *Proposal) IsSpeaker(userID int) bool {
	if p.SpeakerID == userID {
		return true
	}
	for _, c := range p.Cospeakers {
		if c != nil && c.ID == userID {
			return true
		}
	}
	return false
}

// IsEditable: спикер может править только черновик или поданную заявку.
func (p *Proposal) IsEditable() bool {
	return p.State == ProposalStateDraft || p.State == ProposalStateConfirmed
}

// SpeakerNames перечисляет спикера и соспикеров через запятую.
func (p *Proposal) SpeakerNames() string {
	names := make([]string, 0, len(p.Cospeakers)+1)
	if p.Speaker != nil {
		names = append(names, p.Speaker.FullName())
	}
	for _, c := range p.Cospeakers {
		if c != nil {
			names = append(names, c.FullName())
		}
	}
	return strings.Join(names, ", ")
}

// AddedMillis ключ строки в таблице сессий.
func (p *Proposal) AddedMillis() int64 {
	return p.Added.UnixMilli()
}

// ProposalStats агрегаты оценок по заявке.
type ProposalStats struct {
	ProposalID int     `db:"proposal_id" json:"proposalId"`
	Name       string  `db:"name" json:"name"`
	State      string  `db:"state" json:"state"`
	Mean       float64 `db:"mean" json:"mean"`
	Count      int     `db:"rate_count" json:"count"`
	Loves      int     `db:"loves" json:"loves"`
	Hates      int     `db:"hates" json:"hates"`
}
