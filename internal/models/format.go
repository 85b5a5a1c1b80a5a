package models

// Format формат выступления (доклад, мастер-класс, квики).
type Format struct {
	ID          int    `db:"id" json:"id" yaml:"-"`
	EventID     string `db:"event_id" json:"-" yaml:"-"`
	Name        string `db:"name" json:"name" yaml:"name"`
	Duration    int    `db:"duration" json:"duration" yaml:"duration"`
	Description string `db:"description" json:"description" yaml:"description"`
	Icon        string `db:"icon" json:"icon" yaml:"icon"`
}
