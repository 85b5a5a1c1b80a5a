package models

import "time"

// Row строка листа с сессиями из Google Spreadsheet. Added (мс) служит ключом.
type Row struct {
	Added       int64  `json:"added"`
	Email       string `json:"email"`
	Firstname   string `json:"firstname"`
	Lastname    string `json:"lastname"`
	Company     string `json:"company"`
	Bio         string `json:"bio"`
	Twitter     string `json:"twitter"`
	SessionName string `json:"sessionName"`
	Description string `json:"description"`
	References  string `json:"references"`
	Difficulty  string `json:"difficulty"`
	Track       string `json:"track"`
	Format      string `json:"format"`
	CoSpeaker   string `json:"coSpeaker"`
	Draft       bool   `json:"draft"`
}

// RowResponse строка с отметкой просмотра текущим администратором.
type RowResponse struct {
	Row
	Viewed bool `json:"viewed"`
}

// AdminViewedSession отметка "администратор открыл сессию".
type AdminViewedSession struct {
	ID           int       `db:"id" json:"id"`
	SessionAdded int64     `db:"session_added" json:"added"`
	UserID       int       `db:"user_id" json:"userId"`
	ViewedAt     time.Time `db:"viewed_at" json:"viewedAt"`
}
