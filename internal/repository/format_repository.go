package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/cfp-backend/internal/models"
	"github.com/ignatzorin/cfp-backend/internal/repository/common"
)

const formatColumns = `id, event_id, name, duration, description, icon`

// FormatRepository управляет форматами выступлений.
type FormatRepository struct {
	db *sqlx.DB
}

func NewFormatRepository(db *sqlx.DB) *FormatRepository {
	return &FormatRepository{db: db}
}

// ListByEvent возвращает форматы мероприятия.
func (r *FormatRepository) ListByEvent(ctx context.Context, eventID string) ([]models.Format, error) {
	formats := []models.Format{}
	query := `SELECT ` + formatColumns + ` FROM formats WHERE event_id = $1 ORDER BY duration, name`
	if err := r.db.SelectContext(ctx, &formats, query, eventID); err != nil {
		return nil, fmt.Errorf("format repository: list %w", err)
	}
	return formats, nil
}

// GetByID ищет формат в рамках мероприятия.
func (r *FormatRepository) GetByID(ctx context.Context, eventID string, id int) (*models.Format, error) {
	f, err := common.GetOne[models.Format](ctx, r.db, ErrFormatNotFound,
		`SELECT `+formatColumns+` FROM formats WHERE id = $1 AND event_id = $2`, id, eventID)
	if err != nil && err != ErrFormatNotFound {
		return nil, fmt.Errorf("format repository: get by id %w", err)
	}
	return f, err
}

// Create добавляет формат.
func (r *FormatRepository) Create(ctx context.Context, f *models.Format) error {
	query := `
		INSERT INTO formats (event_id, name, duration, description, icon)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	if err := r.db.QueryRowxContext(ctx, query, f.EventID, f.Name, f.Duration, f.Description, f.Icon).Scan(&f.ID); err != nil {
		return fmt.Errorf("format repository: create %w", err)
	}
	return nil
}

// Update изменяет формат.
func (r *FormatRepository) Update(ctx context.Context, f *models.Format) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE formats SET name = $3, duration = $4, description = $5, icon = $6 WHERE id = $1 AND event_id = $2`,
		f.ID, f.EventID, f.Name, f.Duration, f.Description, f.Icon)
	if err != nil {
		return fmt.Errorf("format repository: update %w", err)
	}
	return common.AffectedOrNotFound(res, ErrFormatNotFound)
}

// Delete удаляет формат; заявки с ним остаются без формата.
func (r *FormatRepository) Delete(ctx context.Context, eventID string, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM formats WHERE id = $1 AND event_id = $2`, id, eventID)
	if err != nil {
		return fmt.Errorf("format repository: delete %w", err)
	}
	return common.AffectedOrNotFound(res, ErrFormatNotFound)
}

// CountByEvent нужен сидеру.
func (r *FormatRepository) CountByEvent(ctx context.Context, eventID string) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM formats WHERE event_id = $1`, eventID); err != nil {
		return 0, fmt.Errorf("format repository: count %w", err)
	}
	return n, nil
}
