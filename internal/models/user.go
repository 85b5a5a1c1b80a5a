package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Роли упорядочены: старшая роль включает все младшие.
const (
	RoleAuthenticated = "AUTHENTICATED"
	RoleReviewer      = "REVIEWER"
	RoleAdmin         = "ADMIN"
	RoleOwner         = "OWNER"
)

var roleRank = map[string]int{
	RoleAuthenticated: 1,
	RoleReviewer:      2,
	RoleAdmin:         3,
	RoleOwner:         4,
}

// IsValidRole проверяет, что роль известна.
func IsValidRole(role string) bool {
	_, ok := roleRank[role]
	return ok
}

// RoleAtLeast сообщает, что набор ролей покрывает required.
func RoleAtLeast(roles []string, required string) bool {
	need, ok := roleRank[required]
	if !ok {
		return false
	}
	for _, r := range roles {
		if roleRank[r] >= need {
			return true
		}
	}
	return false
}

// User описывает спикера, ревьюера или администратора.
type User struct {
	ID           int            `db:"id" json:"id"`
	Email        string         `db:"email" json:"email"`
	PasswordHash string         `db:"password_hash" json:"-"`
	Firstname    string         `db:"firstname" json:"firstname"`
	Lastname     string         `db:"lastname" json:"lastname"`
	Company      string         `db:"company" json:"company"`
	Bio          string         `db:"bio" json:"bio"`
	Twitter      string         `db:"twitter" json:"twitter"`
	Language     string         `db:"language" json:"language"`
	ImagePath    *string        `db:"image_path" json:"-"`
	Roles        pq.StringArray `db:"roles" json:"roles"`
	LastLoginAt  *time.Time     `db:"last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updatedAt"`
}

// HasRole учитывает иерархию ролей.
func (u *User) HasRole(role string) bool {
	if u == nil {
		return false
	}
	return RoleAtLeast(u.Roles, role)
}

func (u *User) IsReviewer() bool { return u.HasRole(RoleReviewer) }

func (u *User) IsAdmin() bool { return u.HasRole(RoleAdmin) }

// FullName возвращает "Имя Фамилия" без лишних пробелов.
func (u *User) FullName() string {
	return strings.TrimSpace(u.Firstname + " " + u.Lastname)
}

// Summary возвращает короткое представление автора.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Email:     u.Email,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
	}
}

// Profile возвращает публичный профиль спикера.
func (u *User) Profile(mediaBaseURL string) UserProfile {
	p := UserProfile{
		ID:        u.ID,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Email:     u.Email,
		Company:   u.Company,
		Bio:       u.Bio,
		Twitter:   u.Twitter,
	}
	if u.ImagePath != nil && *u.ImagePath != "" {
		p.ImageURL = mediaBaseURL + "/" + *u.ImagePath
	}
	return p
}

// UserSummary минимальная информация об авторе комментария или оценки.
type UserSummary struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

// UserProfile публичный профиль спикера.
type UserProfile struct {
	ID        int    `json:"id"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
	Company   string `json:"company"`
	Bio       string `json:"bio"`
	Twitter   string `json:"twitter"`
	ImageURL  string `json:"imageUrl,omitempty"`
}

// Session представляет сохранённую сессию пользователя.
type Session struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       int       `db:"user_id" json:"userId"`
	RefreshToken string    `db:"refresh_token" json:"-"`
	UserAgent    *string   `db:"user_agent" json:"userAgent,omitempty"`
	IPAddress    *string   `db:"ip_address" json:"ipAddress,omitempty"`
	ExpiresAt    time.Time `db:"expires_at" json:"expiresAt"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}
