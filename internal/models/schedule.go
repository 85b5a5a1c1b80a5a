package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// LocalDateTimeLayout формат дат программы: локальное время без зоны.
const LocalDateTimeLayout = "2006-01-02T15:04:05.000"

const localDateTimeParseLayout = "2006-01-02T15:04:05"

// LocalDateTime время без часового пояса, как его отдаёт и принимает программа.
type LocalDateTime struct {
	time.Time
}

// NewLocalDateTime обрезает зону, оставляя показания часов.
func NewLocalDateTime(t time.Time) *LocalDateTime {
	return &LocalDateTime{Time: time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)}
}

// ParseLocalDateTime принимает секунды с дробной частью и без.
func ParseLocalDateTime(raw string) (LocalDateTime, error) {
	raw = strings.TrimSpace(raw)
	t, err := time.Parse(localDateTimeParseLayout, raw)
	if err != nil {
		// допускаем значения без секунд: 2024-06-01T09:30
		t2, err2 := time.Parse("2006-01-02T15:04", raw)
		if err2 != nil {
			return LocalDateTime{}, fmt.Errorf("некорректная дата %q: %w", raw, err)
		}
		t = t2
	}
	return LocalDateTime{Time: t}, nil
}

func (l LocalDateTime) String() string {
	return l.Time.Format(LocalDateTimeLayout)
}

func (l LocalDateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *LocalDateTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseLocalDateTime(raw)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Schedule доклад программы в представлении для админки и экспорта.
type Schedule struct {
	ID          int            `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Speakers    string         `json:"speakers"`
	EventType   string         `json:"eventType"`
	Track       string         `json:"track"`
	Language    string         `json:"language"`
	EventStart  *LocalDateTime `json:"eventStart,omitempty"`
	EventEnd    *LocalDateTime `json:"eventEnd,omitempty"`
	Venue       string         `json:"venue"`
}

// NewSchedule собирает представление из заявки с подгруженными спикерами и форматом.
func NewSchedule(p *Proposal) Schedule {
	s := Schedule{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Speakers:    p.SpeakerNames(),
		Track:       p.Track,
		Language:    p.Language,
		Venue:       p.Room,
	}
	if p.Format != nil {
		s.EventType = p.Format.Name
	}
	if p.ScheduleStart != nil {
		s.EventStart = NewLocalDateTime(*p.ScheduleStart)
	}
	if p.ScheduleEnd != nil {
		s.EventEnd = NewLocalDateTime(*p.ScheduleEnd)
	}
	return s
}
