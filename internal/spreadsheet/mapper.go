package spreadsheet

import (
	"strconv"
	"strings"

	"github.com/ignatzorin/cfp-backend/internal/models"
)

// Колонки листа сессий.
const (
	ColAdded       = "added"
	ColEmail       = "email"
	ColFirstname   = "firstname"
	ColLastname    = "lastname"
	ColCompany     = "company"
	ColBio         = "bio"
	ColTwitter     = "twitter"
	ColSessionName = "sessionName"
	ColDescription = "description"
	ColReferences  = "references"
	ColDifficulty  = "difficulty"
	ColTrack       = "track"
	ColFormat      = "format"
	ColCoSpeaker   = "coSpeaker"
	ColDraft       = "draft"
)

// DefaultHeader порядок колонок для пустого листа.
var DefaultHeader = []string{
	ColAdded, ColEmail, ColFirstname, ColLastname, ColCompany, ColBio, ColTwitter,
	ColSessionName, ColDescription, ColReferences, ColDifficulty, ColTrack, ColFormat,
	ColCoSpeaker, ColDraft,
}

// RowMapper сопоставляет значения строки с полями по названиям колонок заголовка.
type RowMapper struct {
	header []string
	index  map[string]int
}

// NewRowMapper строит индекс колонок. Названия сравниваются без учёта регистра и пробелов.
func NewRowMapper(header []string) *RowMapper {
	if len(header) == 0 {
		header = DefaultHeader
	}
	m := &RowMapper{header: header, index: make(map[string]int, len(header))}
	for i, name := range header {
		key := normalize(name)
		if _, dup := m.index[key]; !dup {
			m.index[key] = i
		}
	}
	return m
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Header текущий заголовок.
func (m *RowMapper) Header() []string {
	return m.header
}

func (m *RowMapper) get(values []string, col string) string {
	i, ok := m.index[normalize(col)]
	if !ok || i >= len(values) {
		return ""
	}
	return strings.TrimSpace(values[i])
}

// FromValues превращает значения строки в Row. Строка без корректного added отбрасывается.
func (m *RowMapper) FromValues(values []string) (models.Row, bool) {
	added, ok := parseAdded(m.get(values, ColAdded))
	if !ok {
		return models.Row{}, false
	}

	return models.Row{
		Added:       added,
		Email:       m.get(values, ColEmail),
		Firstname:   m.get(values, ColFirstname),
		Lastname:    m.get(values, ColLastname),
		Company:     m.get(values, ColCompany),
		Bio:         m.get(values, ColBio),
		Twitter:     m.get(values, ColTwitter),
		SessionName: m.get(values, ColSessionName),
		Description: m.get(values, ColDescription),
		References:  m.get(values, ColReferences),
		Difficulty:  m.get(values, ColDifficulty),
		Track:       m.get(values, ColTrack),
		Format:      m.get(values, ColFormat),
		CoSpeaker:   m.get(values, ColCoSpeaker),
		Draft:       parseBool(m.get(values, ColDraft)),
	}, true
}

// ToValues раскладывает Row по колонкам заголовка; неизвестные колонки остаются пустыми.
func (m *RowMapper) ToValues(row models.Row) []string {
	byCol := map[string]string{
		ColAdded:       strconv.FormatInt(row.Added, 10),
		ColEmail:       row.Email,
		ColFirstname:   row.Firstname,
		ColLastname:    row.Lastname,
		ColCompany:     row.Company,
		ColBio:         row.Bio,
		ColTwitter:     row.Twitter,
		ColSessionName: row.SessionName,
		ColDescription: row.Description,
		ColReferences:  row.References,
		ColDifficulty:  row.Difficulty,
		ColTrack:       row.Track,
		ColFormat:      row.Format,
		ColCoSpeaker:   row.CoSpeaker,
		ColDraft:       strconv.FormatBool(row.Draft),
	}

	lookup := make(map[string]string, len(byCol))
	for k, v := range byCol {
		lookup[normalize(k)] = v
	}

	out := make([]string, len(m.header))
	for i, name := range m.header {
		out[i] = lookup[normalize(name)]
	}
	return out
}

func parseAdded(raw string) (int64, bool) {
	if raw == "" {
		return 0, false
	}
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return v, v > 0
	}
	// таблица могла сохранить число как 1.7E12
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f > 0 {
		return int64(f), true
	}
	return 0, false
}

func parseBool(raw string) bool {
	switch strings.ToLower(raw) {
	case "true", "1", "yes", "oui", "x":
		return true
	default:
		return false
	}
}

// RowFromProposal строка листа из заявки базы.
func RowFromProposal(p *models.Proposal) models.Row {
	row := models.Row{
		Added:       p.AddedMillis(),
		SessionName: p.Name,
		Description: p.Description,
		References:  p.References,
		Difficulty:  strconv.Itoa(p.Difficulty),
		Track:       p.Track,
		Draft:       p.State == models.ProposalStateDraft,
	}
	if p.Speaker != nil {
		row.Email = p.Speaker.Email
		row.Firstname = p.Speaker.Firstname
		row.Lastname = p.Speaker.Lastname
		row.Company = p.Speaker.Company
		row.Bio = p.Speaker.Bio
		row.Twitter = p.Speaker.Twitter
	}
	if p.Format != nil {
		row.Format = p.Format.Name
	}
	cos := make([]string, 0, len(p.Cospeakers))
	for _, c := range p.Cospeakers {
		if c != nil {
			cos = append(cos, c.Email)
		}
	}
	row.CoSpeaker = strings.Join(cos, ", ")
	return row
}
