package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/cfp-backend/internal/models"
	"github.com/ignatzorin/cfp-backend/internal/repository/common"
)

const rateColumns = `id, event_id, proposal_id, user_id, rate, love, hate, added`

// RateRepository работает с оценками ревьюеров.
type RateRepository struct {
	db *sqlx.DB
}

func NewRateRepository(db *sqlx.DB) *RateRepository {
	return &RateRepository{db: db}
}

// Create сохраняет оценку. Повторная оценка того же ревьюера даёт common.ErrAlreadyExists.
func (r *RateRepository) Create(ctx context.Context, rate *models.Rate) error {
	query := `
		INSERT INTO rates (event_id, proposal_id, user_id, rate, love, hate)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, added
	`
	if err := r.db.QueryRowxContext(ctx, query,
		rate.EventID, rate.ProposalID, rate.UserID, rate.Rate, rate.Love, rate.Hate,
	).Scan(&rate.ID, &rate.Added); err != nil {
		if common.IsUniqueViolation(err) {
			return common.ErrAlreadyExists
		}
		return fmt.Errorf("rate repository: create %w", err)
	}
	return nil
}

// Update меняет значение оценки.
func (r *RateRepository) Update(ctx context.Context, rate *models.Rate) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE rates SET rate = $3, love = $4, hate = $5, added = NOW() WHERE id = $1 AND event_id = $2`,
		rate.ID, rate.EventID, rate.Rate, rate.Love, rate.Hate)
	if err != nil {
		return fmt.Errorf("rate repository: update %w", err)
	}
	return common.AffectedOrNotFound(res, ErrRateNotFound)
}

// GetByID возвращает оценку.
func (r *RateRepository) GetByID(ctx context.Context, eventID string, id int) (*models.Rate, error) {
	rate, err := common.GetOne[models.Rate](ctx, r.db, ErrRateNotFound,
		`SELECT `+rateColumns+` FROM rates WHERE id = $1 AND event_id = $2`, id, eventID)
	if err != nil && err != ErrRateNotFound {
		return nil, fmt.Errorf("rate repository: get by id %w", err)
	}
	return rate, err
}

// GetByProposalAndUser возвращает оценку ревьюера для заявки.
func (r *RateRepository) GetByProposalAndUser(ctx context.Context, eventID string, proposalID, userID int) (*models.Rate, error) {
	rate, err := common.GetOne[models.Rate](ctx, r.db, ErrRateNotFound,
		`SELECT `+rateColumns+` FROM rates WHERE proposal_id = $1 AND user_id = $2 AND event_id = $3`,
		proposalID, userID, eventID)
	if err != nil && err != ErrRateNotFound {
		return nil, fmt.Errorf("rate repository: get by proposal and user %w", err)
	}
	return rate, err
}

type rateAdminRow struct {
	models.Rate
	AuthorEmail     string `db:"author_email"`
	AuthorFirstname string `db:"author_firstname"`
	AuthorLastname  string `db:"author_lastname"`
}

// ListByProposal возвращает оценки заявки вместе с ревьюерами.
func (r *RateRepository) ListByProposal(ctx context.Context, eventID string, proposalID int) ([]models.RateAdmin, error) {
	query := `
		SELECT r.id, r.event_id, r.proposal_id, r.user_id, r.rate, r.love, r.hate, r.added,
			u.email AS author_email, u.firstname AS author_firstname, u.lastname AS author_lastname
		FROM rates r
		JOIN users u ON u.id = r.user_id
		WHERE r.proposal_id = $1 AND r.event_id = $2
		ORDER BY r.added, r.id
	`
	var rows []rateAdminRow
	if err := r.db.SelectContext(ctx, &rows, query, proposalID, eventID); err != nil {
		return nil, fmt.Errorf("rate repository: list %w", err)
	}

	out := make([]models.RateAdmin, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.RateAdmin{
			ID:     row.ID,
			Rate:   row.Rate.Rate,
			Love:   row.Love,
			Hate:   row.Hate,
			Added:  row.Added,
			TalkID: row.ProposalID,
			User: models.UserSummary{
				ID:        row.UserID,
				Email:     row.AuthorEmail,
				Firstname: row.AuthorFirstname,
				Lastname:  row.AuthorLastname,
			},
		})
	}
	return out, nil
}

// Delete удаляет оценку.
func (r *RateRepository) Delete(ctx context.Context, eventID string, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rates WHERE id = $1 AND event_id = $2`, id, eventID)
	if err != nil {
		return fmt.Errorf("rate repository: delete %w", err)
	}
	return common.AffectedOrNotFound(res, ErrRateNotFound)
}
