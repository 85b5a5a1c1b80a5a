package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/cfp-backend/internal/models"
	"github.com/ignatzorin/cfp-backend/internal/repository/common"
)

const proposalColumns = `p.id, p.event_id, p.state, p.name, p.description, p.refs, p.difficulty, p.language, p.track,
	p.format_id, p.speaker_id, p.room, p.schedule_start, p.schedule_end, p.added, p.updated_at`

// ProposalRepository управляет заявками и их соспикерами.
type ProposalRepository struct {
	db *sqlx.DB
}

func NewProposalRepository(db *sqlx.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

// Create сохраняет заявку и соспикеров в одной транзакции.
func (r *ProposalRepository) Create(ctx context.Context, p *models.Proposal, cospeakerIDs []int) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO proposals (event_id, state, name, description, refs, difficulty, language, track, format_id, speaker_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id, added, updated_at
		`
		if err := tx.QueryRowxContext(ctx, query,
			p.EventID, p.State, p.Name, p.Description, p.References, p.Difficulty,
			p.Language, p.Track, p.FormatID, p.SpeakerID,
		).Scan(&p.ID, &p.Added, &p.UpdatedAt); err != nil {
			return fmt.Errorf("proposal repository: create %w", err)
		}

		return insertCospeakers(ctx, tx, p.ID, cospeakerIDs)
	})
}

// Update меняет поля, которые правит спикер, и переписывает список соспикеров.
func (r *ProposalRepository) Update(ctx context.Context, p *models.Proposal, cospeakerIDs []int) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			UPDATE proposals
			SET state = $3, name = $4, description = $5, refs = $6, difficulty = $7,
				language = $8, track = $9, format_id = $10, updated_at = NOW()
			WHERE id = $1 AND event_id = $2
			RETURNING updated_at
		`
		if err := tx.QueryRowxContext(ctx, query,
			p.ID, p.EventID, p.State, p.Name, p.Description, p.References, p.Difficulty,
			p.Language, p.Track, p.FormatID,
		).Scan(&p.UpdatedAt); err != nil {
			return fmt.Errorf("proposal repository: update %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM proposal_cospeakers WHERE proposal_id = $1`, p.ID); err != nil {
			return fmt.Errorf("proposal repository: clear cospeakers %w", err)
		}

		return insertCospeakers(ctx, tx, p.ID, cospeakerIDs)
	})
}

func insertCospeakers(ctx context.Context, tx *sqlx.Tx, proposalID int, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	inserter := common.NewBatchInserter(tx, `INSERT INTO proposal_cospeakers (proposal_id, user_id, position)`, 3, 50)
	for i, id := range ids {
		if err := inserter.Add(ctx, proposalID, id, i); err != nil {
			return fmt.Errorf("proposal repository: cospeakers %w", err)
		}
	}
	return inserter.Flush(ctx)
}

// GetByID загружает заявку со спикером, соспикерами и форматом.
func (r *ProposalRepository) GetByID(ctx context.Context, eventID string, id int) (*models.Proposal, error) {
	p, err := common.GetOne[models.Proposal](ctx, r.db, ErrProposalNotFound,
		`SELECT `+proposalColumns+` FROM proposals p WHERE p.id = $1 AND p.event_id = $2`, id, eventID)
	if err != nil {
		if err == ErrProposalNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("proposal repository: get by id %w", err)
	}

	if err := r.loadRelations(ctx, []*models.Proposal{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// ListByEvent возвращает заявки мероприятия; пустой states означает все состояния.
func (r *ProposalRepository) ListByEvent(ctx context.Context, eventID string, states []string) ([]*models.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposals p WHERE p.event_id = $1`
	args := []interface{}{eventID}
	if len(states) > 0 {
		query += ` AND p.state = ANY($2)`
		args = append(args, pq.Array(states))
	}
	query += ` ORDER BY p.added, p.id`

	return r.list(ctx, query, args...)
}

// ListBySpeaker возвращает заявки, где пользователь спикер или соспикер.
func (r *ProposalRepository) ListBySpeaker(ctx context.Context, eventID string, userID int) ([]*models.Proposal, error) {
	query := `
		SELECT ` + proposalColumns + `
		FROM proposals p
		WHERE p.event_id = $1
			AND (p.speaker_id = $2 OR EXISTS (
				SELECT 1 FROM proposal_cospeakers pc WHERE pc.proposal_id = p.id AND pc.user_id = $2
			))
		ORDER BY p.added DESC, p.id DESC
	`
	return r.list(ctx, query, eventID, userID)
}

func (r *ProposalRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Proposal, error) {
	proposals := []*models.Proposal{}
	if err := r.db.SelectContext(ctx, &proposals, query, args...); err != nil {
		return nil, fmt.Errorf("proposal repository: list %w", err)
	}
	if err := r.loadRelations(ctx, proposals); err != nil {
		return nil, err
	}
	return proposals, nil
}

// UpdateState меняет состояние заявки.
func (r *ProposalRepository) UpdateState(ctx context.Context, eventID string, id int, state string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE proposals SET state = $3, updated_at = NOW() WHERE id = $1 AND event_id = $2`, id, eventID, state)
	if err != nil {
		return fmt.Errorf("proposal repository: update state %w", err)
	}
	return common.AffectedOrNotFound(res, ErrProposalNotFound)
}

// UpdateSchedules сохраняет время, зал и состояние сразу для нескольких докладов.
func (r *ProposalRepository) UpdateSchedules(ctx context.Context, proposals []*models.Proposal) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, p := range proposals {
			res, err := tx.ExecContext(ctx, `
				UPDATE proposals
				SET state = $3, schedule_start = $4, schedule_end = $5, room = $6, updated_at = NOW()
				WHERE id = $1 AND event_id = $2
			`, p.ID, p.EventID, p.State, p.ScheduleStart, p.ScheduleEnd, p.Room)
			if err != nil {
				return fmt.Errorf("proposal repository: update schedule %d %w", p.ID, err)
			}
			if err := common.AffectedOrNotFound(res, ErrProposalNotFound); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete удаляет заявку вместе с комментариями и оценками (каскадом).
func (r *ProposalRepository) Delete(ctx context.Context, eventID string, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM proposals WHERE id = $1 AND event_id = $2`, id, eventID)
	if err != nil {
		return fmt.Errorf("proposal repository: delete %w", err)
	}
	return common.AffectedOrNotFound(res, ErrProposalNotFound)
}

// Stats считает средний балл и love/hate по каждой заявке мероприятия.
func (r *ProposalRepository) Stats(ctx context.Context, eventID string) ([]models.ProposalStats, error) {
	query := `
		SELECT p.id AS proposal_id, p.name, p.state,
			COALESCE(AVG(r.rate), 0)::float8 AS mean,
			COUNT(r.id) AS rate_count,
			COUNT(r.id) FILTER (WHERE r.love) AS loves,
			COUNT(r.id) FILTER (WHERE r.hate) AS hates
		FROM proposals p
		LEFT JOIN rates r ON r.proposal_id = p.id
		WHERE p.event_id = $1 AND p.state <> 'DRAFT'
		GROUP BY p.id
		ORDER BY mean DESC, loves DESC, p.id
	`
	stats := []models.ProposalStats{}
	if err := r.db.SelectContext(ctx, &stats, query, eventID); err != nil {
		return nil, fmt.Errorf("proposal repository: stats %w", err)
	}
	return stats, nil
}

type cospeakerRow struct {
	ProposalID int `db:"proposal_id"`
	models.User
}

// loadRelations подгружает связи тремя запросами на всю выборку.
func (r *ProposalRepository) loadRelations(ctx context.Context, proposals []*models.Proposal) error {
	if len(proposals) == 0 {
		return nil
	}

	ids := make([]int, 0, len(proposals))
	speakerIDs := make([]int, 0, len(proposals))
	formatIDs := make([]int, 0)
	byID := make(map[int]*models.Proposal, len(proposals))
	for _, p := range proposals {
		ids = append(ids, p.ID)
		speakerIDs = append(speakerIDs, p.SpeakerID)
		if p.FormatID != nil {
			formatIDs = append(formatIDs, *p.FormatID)
		}
		p.Cospeakers = []*models.User{}
		byID[p.ID] = p
	}

	speakers, err := getUsersByIDs(ctx, r.db, speakerIDs)
	if err != nil {
		return err
	}

	var rows []cospeakerRow
	cols := strings.ReplaceAll("u."+userColumns, ", ", ", u.")
	query := `
		SELECT pc.proposal_id, ` + cols + `
		FROM proposal_cospeakers pc
		JOIN users u ON u.id = pc.user_id
		WHERE pc.proposal_id = ANY($1)
		ORDER BY pc.proposal_id, pc.position
	`
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("proposal repository: load cospeakers %w", err)
	}

	formats := make(map[int]*models.Format)
	if len(formatIDs) > 0 {
		var list []models.Format
		if err := r.db.SelectContext(ctx, &list, `SELECT `+formatColumns+` FROM formats WHERE id = ANY($1)`, pq.Array(formatIDs)); err != nil {
			return fmt.Errorf("proposal repository: load formats %w", err)
		}
		for i := range list {
			formats[list[i].ID] = &list[i]
		}
	}

	for i := range rows {
		u := rows[i].User
		if p, ok := byID[rows[i].ProposalID]; ok {
			p.Cospeakers = append(p.Cospeakers, &u)
		}
	}
	for _, p := range proposals {
		p.Speaker = speakers[p.SpeakerID]
		if p.FormatID != nil {
			p.Format = formats[*p.FormatID]
		}
	}
	return nil
}
