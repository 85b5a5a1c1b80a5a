package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/cfp-backend/internal/models"
	"github.com/ignatzorin/cfp-backend/internal/repository/common"
)

const userColumns = `id, email, password_hash, firstname, lastname, company, bio, twitter, language, image_path, roles, last_login_at, created_at, updated_at`

// UserRepository отвечает за работу с таблицами users и user_sessions.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository создаёт экземпляр репозитория.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create создаёт нового пользователя. Занятый email даёт common.ErrAlreadyExists.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if len(user.Roles) == 0 {
		user.Roles = pq.StringArray{models.RoleAuthenticated}
	}

	query := `
		INSERT INTO users (email, password_hash, firstname, lastname, company, bio, twitter, language, roles)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		user.Email, user.PasswordHash, user.Firstname, user.Lastname,
		user.Company, user.Bio, user.Twitter, user.Language, user.Roles,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if common.IsUniqueViolation(err) {
			return common.ErrAlreadyExists
		}
		return fmt.Errorf("user repository: create %w", err)
	}

	return nil
}

// GetByEmail возвращает пользователя по email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := common.GetOne[models.User](ctx, r.db, ErrUserNotFound,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	if err != nil && err != ErrUserNotFound {
		return nil, fmt.Errorf("user repository: get by email %w", err)
	}
	return user, err
}

// GetByID возвращает пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	user, err := common.GetOne[models.User](ctx, r.db, ErrUserNotFound,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil && err != ErrUserNotFound {
		return nil, fmt.Errorf("user repository: get by id %w", err)
	}
	return user, err
}

// GetByEmails возвращает найденных пользователей; отсутствующие email просто пропускаются.
func (r *UserRepository) GetByEmails(ctx context.Context, emails []string) ([]*models.User, error) {
	if len(emails) == 0 {
		return nil, nil
	}

	var users []*models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = ANY(SELECT lower(e) FROM unnest($1::text[]) AS e)`
	if err := r.db.SelectContext(ctx, &users, query, pq.Array(emails)); err != nil {
		return nil, fmt.Errorf("user repository: get by emails %w", err)
	}
	return users, nil
}

// GetByIDs загружает пользователей пачкой.
func (r *UserRepository) GetByIDs(ctx context.Context, ids []int) (map[int]*models.User, error) {
	return getUsersByIDs(ctx, r.db, ids)
}

func getUsersByIDs(ctx context.Context, q sqlx.QueryerContext, ids []int) (map[int]*models.User, error) {
	out := make(map[int]*models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var users []*models.User
	if err := sqlx.SelectContext(ctx, q, &users, `SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("user repository: get by ids %w", err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// UpdateProfile обновляет поля профиля.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET firstname = $2, lastname = $3, company = $4, bio = $5, twitter = $6, language = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		user.ID, user.Firstname, user.Lastname, user.Company, user.Bio, user.Twitter, user.Language,
	).Scan(&user.UpdatedAt); err != nil {
		return fmt.Errorf("user repository: update profile %w", err)
	}
	return nil
}

// UpdateImagePath сохраняет путь к фотографии.
func (r *UserRepository) UpdateImagePath(ctx context.Context, userID int, path string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET image_path = $2, updated_at = NOW() WHERE id = $1`, userID, path)
	if err != nil {
		return fmt.Errorf("user repository: update image path %w", err)
	}
	return common.AffectedOrNotFound(res, ErrUserNotFound)
}

// UpdateRoles заменяет набор ролей.
func (r *UserRepository) UpdateRoles(ctx context.Context, userID int, roles []string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET roles = $2, updated_at = NOW() WHERE id = $1`, userID, pq.Array(roles))
	if err != nil {
		return fmt.Errorf("user repository: update roles %w", err)
	}
	return common.AffectedOrNotFound(res, ErrUserNotFound)
}

// List возвращает пользователей постранично.
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	var users []*models.User
	query := `SELECT ` + userColumns + ` FROM users ORDER BY lastname, firstname, id LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &users, query, limit, offset); err != nil {
		return nil, fmt.Errorf("user repository: list %w", err)
	}
	return users, nil
}

// Count возвращает общее количество пользователей.
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("user repository: count %w", err)
	}
	return count, nil
}

// ListByRoles возвращает пользователей, у которых есть хотя бы одна из ролей.
func (r *UserRepository) ListByRoles(ctx context.Context, roles ...string) ([]*models.User, error) {
	var users []*models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE roles && $1 ORDER BY id`
	if err := r.db.SelectContext(ctx, &users, query, pq.Array(roles)); err != nil {
		return nil, fmt.Errorf("user repository: list by roles %w", err)
	}
	return users, nil
}

// UpdateLastLoginAt обновляет время последнего входа пользователя.
func (r *UserRepository) UpdateLastLoginAt(ctx context.Context, userID int) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, userID); err != nil {
		return fmt.Errorf("user repository: update last login at %w", err)
	}
	return nil
}

// CreateSession сохраняет новую сессию пользователя.
func (r *UserRepository) CreateSession(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO user_sessions (user_id, refresh_token, user_agent, ip_address, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx,
		query,
		session.UserID,
		session.RefreshToken,
		session.UserAgent,
		session.IPAddress,
		session.ExpiresAt,
	).Scan(&session.ID, &session.CreatedAt); err != nil {
		return fmt.Errorf("user repository: create session %w", err)
	}

	return nil
}

// DeleteSession удаляет сессию по refresh токену. Неизвестный токен даёт ErrSessionNotFound.
func (r *UserRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE refresh_token = $1`, refreshToken)
	if err != nil {
		return fmt.Errorf("user repository: delete session %w", err)
	}
	return common.AffectedOrNotFound(res, ErrSessionNotFound)
}

// ListSessions возвращает список всех активных сессий пользователя.
func (r *UserRepository) ListSessions(ctx context.Context, userID int) ([]models.Session, error) {
	query := `
		SELECT id, user_id, refresh_token, user_agent, ip_address, expires_at, created_at
		FROM user_sessions
		WHERE user_id = $1 AND expires_at > NOW()
		ORDER BY created_at DESC
	`

	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, userID); err != nil {
		return nil, fmt.Errorf("user repository: list sessions %w", err)
	}

	return sessions, nil
}
