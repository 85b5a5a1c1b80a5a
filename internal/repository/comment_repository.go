package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/cfp-backend/internal/models"
	"github.com/ignatzorin/cfp-backend/internal/repository/common"
)

// CommentRepository работает с комментариями к заявкам.
type CommentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

type commentRow struct {
	models.Comment
	AuthorEmail     string `db:"author_email"`
	AuthorFirstname string `db:"author_firstname"`
	AuthorLastname  string `db:"author_lastname"`
}

func (row *commentRow) toModel() models.Comment {
	c := row.Comment
	c.User = &models.UserSummary{
		ID:        row.UserID,
		Email:     row.AuthorEmail,
		Firstname: row.AuthorFirstname,
		Lastname:  row.AuthorLastname,
	}
	return c
}

const commentSelect = `
	SELECT c.id, c.event_id, c.proposal_id, c.user_id, c.comment, c.internal, c.added,
		u.email AS author_email, u.firstname AS author_firstname, u.lastname AS author_lastname
	FROM comments c
	JOIN users u ON u.id = c.user_id
`

// Create сохраняет комментарий.
func (r *CommentRepository) Create(ctx context.Context, c *models.Comment) error {
	query := `
		INSERT INTO comments (event_id, proposal_id, user_id, comment, internal)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, added
	`
	if err := r.db.QueryRowxContext(ctx, query, c.EventID, c.ProposalID, c.UserID, c.Comment, c.Internal).
		Scan(&c.ID, &c.Added); err != nil {
		return fmt.Errorf("comment repository: create %w", err)
	}
	return nil
}

// Update меняет текст и флаг internal.
func (r *CommentRepository) Update(ctx context.Context, c *models.Comment) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE comments SET comment = $3, internal = $4 WHERE id = $1 AND event_id = $2`,
		c.ID, c.EventID, c.Comment, c.Internal)
	if err != nil {
		return fmt.Errorf("comment repository: update %w", err)
	}
	return common.AffectedOrNotFound(res, ErrCommentNotFound)
}

// GetByID возвращает комментарий с автором.
func (r *CommentRepository) GetByID(ctx context.Context, eventID string, id int) (*models.Comment, error) {
	row, err := common.GetOne[commentRow](ctx, r.db, ErrCommentNotFound,
		commentSelect+` WHERE c.id = $1 AND c.event_id = $2`, id, eventID)
	if err != nil {
		if err == ErrCommentNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("comment repository: get by id %w", err)
	}
	c := row.toModel()
	return &c, nil
}

// ListByProposal возвращает комментарии по времени; internal отдаются только при includeInternal.
func (r *CommentRepository) ListByProposal(ctx context.Context, eventID string, proposalID int, includeInternal bool) ([]models.Comment, error) {
	query := commentSelect + ` WHERE c.proposal_id = $1 AND c.event_id = $2`
	if !includeInternal {
		query += ` AND c.internal = FALSE`
	}
	query += ` ORDER BY c.added, c.id`

	var rows []commentRow
	if err := r.db.SelectContext(ctx, &rows, query, proposalID, eventID); err != nil {
		return nil, fmt.Errorf("comment repository: list %w", err)
	}

	comments := make([]models.Comment, 0, len(rows))
	for i := range rows {
		comments = append(comments, rows[i].toModel())
	}
	return comments, nil
}

// Delete удаляет комментарий.
func (r *CommentRepository) Delete(ctx context.Context, eventID string, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1 AND event_id = $2`, id, eventID)
	if err != nil {
		return fmt.Errorf("comment repository: delete %w", err)
	}
	return common.AffectedOrNotFound(res, ErrCommentNotFound)
}
