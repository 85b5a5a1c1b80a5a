package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/cfp-backend/internal/models"
)

// ViewedSessionRepository хранит отметки просмотра строк таблицы администраторами.
type ViewedSessionRepository struct {
	db *sqlx.DB
}

func NewViewedSessionRepository(db *sqlx.DB) *ViewedSessionRepository {
	return &ViewedSessionRepository{db: db}
}

// MarkViewed создаёт или освежает отметку.
func (r *ViewedSessionRepository) MarkViewed(ctx context.Context, added int64, userID int) (*models.AdminViewedSession, error) {
	query := `
		INSERT INTO admin_viewed_sessions (session_added, user_id)
		VALUES ($1, $2)
		ON CONFLICT (session_added, user_id) DO UPDATE SET viewed_at = NOW()
		RETURNING id, session_added, user_id, viewed_at
	`
	var v models.AdminViewedSession
	if err := r.db.GetContext(ctx, &v, query, added, userID); err != nil {
		return nil, fmt.Errorf("viewed session repository: mark %w", err)
	}
	return &v, nil
}

// ViewedBy возвращает множество просмотренных пользователем строк.
func (r *ViewedSessionRepository) ViewedBy(ctx context.Context, userID int) (map[int64]struct{}, error) {
	var added []int64
	if err := r.db.SelectContext(ctx, &added, `SELECT session_added FROM admin_viewed_sessions WHERE user_id = $1`, userID); err != nil {
		return nil, fmt.Errorf("viewed session repository: list %w", err)
	}
	out := make(map[int64]struct{}, len(added))
	for _, a := range added {
		out[a] = struct{}{}
	}
	return out, nil
}
