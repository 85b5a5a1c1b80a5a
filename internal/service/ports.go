package service

import (
	"context"
	"errors"

	"github.com/ignatzorin/cfp-backend/internal/models"
	"github.com/ignatzorin/cfp-backend/internal/pkg/apperror"
	"github.com/ignatzorin/cfp-backend/internal/repository"
	"github.com/ignatzorin/cfp-backend/internal/repository/common"
)

// UserRepository описывает зависимости сервисов от таблицы пользователей.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmails(ctx context.Context, emails []string) ([]*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdateImagePath(ctx context.Context, userID int, path string) error
	UpdateRoles(ctx context.Context, userID int, roles []string) error
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	Count(ctx context.Context) (int, error)
	UpdateLastLoginAt(ctx context.Context, userID int) error
	CreateSession(ctx context.Context, session *models.Session) error
	DeleteSession(ctx context.Context, refreshToken string) error
	ListSessions(ctx context.Context, userID int) ([]models.Session, error)
}

type EventRepository interface {
	GetByID(ctx context.Context, id string) (*models.Event, error)
}

type FormatRepository interface {
	ListByEvent(ctx context.Context, eventID string) ([]models.Format, error)
	GetByID(ctx context.Context, eventID string, id int) (*models.Format, error)
	Create(ctx context.Context, f *models.Format) error
	Update(ctx context.Context, f *models.Format) error
	Delete(ctx context.Context, eventID string, id int) error
	CountByEvent(ctx context.Context, eventID string) (int, error)
}

type ProposalRepository interface {
	Create(ctx context.Context, p *models.Proposal, cospeakerIDs []int) error
	Update(ctx context.Context, p *models.Proposal, cospeakerIDs []int) error
	GetByID(ctx context.Context, eventID string, id int) (*models.Proposal, error)
	ListByEvent(ctx context.Context, eventID string, states []string) ([]*models.Proposal, error)
	ListBySpeaker(ctx context.Context, eventID string, userID int) ([]*models.Proposal, error)
	UpdateState(ctx context.Context, eventID string, id int, state string) error
	UpdateSchedules(ctx context.Context, proposals []*models.Proposal) error
	Delete(ctx context.Context, eventID string, id int) error
	Stats(ctx context.Context, eventID string) ([]models.ProposalStats, error)
}

type CommentRepository interface {
	Create(ctx context.Context, c *models.Comment) error
	Update(ctx context.Context, c *models.Comment) error
	GetByID(ctx context.Context, eventID string, id int) (*models.Comment, error)
	ListByProposal(ctx context.Context, eventID string, proposalID int, includeInternal bool) ([]models.Comment, error)
	Delete(ctx context.Context, eventID string, id int) error
}

type RateRepository interface {
	Create(ctx context.Context, rate *models.Rate) error
	Update(ctx context.Context, rate *models.Rate) error
	GetByID(ctx context.Context, eventID string, id int) (*models.Rate, error)
	GetByProposalAndUser(ctx context.Context, eventID string, proposalID, userID int) (*models.Rate, error)
	ListByProposal(ctx context.Context, eventID string, proposalID int) ([]models.RateAdmin, error)
	Delete(ctx context.Context, eventID string, id int) error
}

type ViewedSessionRepository interface {
	MarkViewed(ctx context.Context, added int64, userID int) (*models.AdminViewedSession, error)
	ViewedBy(ctx context.Context, userID int) (map[int64]struct{}, error)
}

// Mailer уведомления по почте. Ошибки логируются и не прерывают запрос.
type Mailer interface {
	SendNewCommentToAdmins(ctx context.Context, author *models.User, talk *models.Proposal, comment string, internal bool) error
	SendNewCommentToSpeaker(ctx context.Context, speaker *models.User, talk *models.Proposal, comment string) error
	SendSelected(ctx context.Context, talk *models.Proposal, locale string) error
	SendNotSelected(ctx context.Context, talk *models.Proposal, locale string) error
	SendProposalSubmitted(ctx context.Context, talk *models.Proposal, locale string) error
}

// ActivityPublisher лента событий для подключённых ревьюеров.
type ActivityPublisher interface {
	BroadcastToReviewers(event string, data interface{})
}

// ConnectionCloser закрывает realtime соединения пользователя.
type ConnectionCloser interface {
	DisconnectUser(userID int)
}

// SessionSheet лист с сессиями, поданными через форму.
type SessionSheet interface {
	Rows(ctx context.Context) ([]models.Row, error)
	Append(ctx context.Context, rows []models.Row) error
	Delete(ctx context.Context, added int64) error
}

type noopPublisher struct{}

func (noopPublisher) BroadcastToReviewers(string, interface{}) {}

// mapRepoErr переводит ошибки хранилища в AppError.
func mapRepoErr(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, repository.ErrProposalNotFound):
		return apperror.ErrProposalNotFound
	case errors.Is(err, repository.ErrCommentNotFound):
		return apperror.ErrCommentNotFound
	case errors.Is(err, repository.ErrRateNotFound):
		return apperror.ErrRateNotFound
	case errors.Is(err, repository.ErrFormatNotFound):
		return apperror.ErrFormatNotFound
	case errors.Is(err, repository.ErrUserNotFound):
		return apperror.ErrUserNotFound
	case errors.Is(err, repository.ErrEventNotFound):
		return apperror.ErrEventNotFound
	case errors.Is(err, repository.ErrSessionNotFound):
		return apperror.ErrSessionNotFound
	case errors.Is(err, common.ErrAlreadyExists):
		return apperror.Wrap(err, apperror.ErrCodeConflict, "запись уже существует")
	default:
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "ошибка базы данных")
	}
}

func validationErr(err error) error {
	return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
}
