package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/cfp-backend/internal/models"
	"github.com/ignatzorin/cfp-backend/internal/repository/common"
)

// EventRepository доступ к таблице events.
type EventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// GetByID возвращает мероприятие по slug.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	event, err := common.GetOne[models.Event](ctx, r.db, ErrEventNotFound,
		`SELECT id, name, open, deadline, contact_email, created_at FROM events WHERE id = $1`, id)
	if err != nil && err != ErrEventNotFound {
		return nil, fmt.Errorf("event repository: get by id %w", err)
	}
	return event, err
}
