package handlers

import (
	"context"
	"io"

	"github.com/ignatzorin/cfp-backend/internal/models"
	"github.com/ignatzorin/cfp-backend/internal/service"
)

// Интерфейсы сервисов, с которыми работают хэндлеры.

type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput, meta service.SessionMeta) (*service.AuthResult, error)
	Login(ctx context.Context, in service.LoginInput, meta service.SessionMeta) (*service.AuthResult, error)
	Refresh(ctx context.Context, oldToken string, meta service.SessionMeta) (*service.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	ListSessions(ctx context.Context, userID int) ([]models.Session, error)
}

type UserService interface {
	Resolve(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User, in service.UpdateProfileInput) (*models.User, error)
	UploadPhoto(ctx context.Context, user *models.User, r io.Reader) (string, error)
	List(ctx context.Context, limit, offset int) (*service.UserPage, error)
	SetRoles(ctx context.Context, actor *models.User, targetID int, roles []string) (*models.User, error)
}

type FormatService interface {
	List(ctx context.Context, eventID string) ([]models.Format, error)
	Create(ctx context.Context, eventID string, in service.FormatInput) (*models.Format, error)
	Update(ctx context.Context, eventID string, id int, in service.FormatInput) (*models.Format, error)
	Delete(ctx context.Context, eventID string, id int) error
}

type ProposalService interface {
	List(ctx context.Context, actor *models.User, eventID, state string) ([]*models.Proposal, error)
	Get(ctx context.Context, actor *models.User, eventID string, id int) (*models.Proposal, error)
	Create(ctx context.Context, actor *models.User, eventID string, in service.ProposalInput, locale string) (*models.Proposal, error)
	Update(ctx context.Context, actor *models.User, eventID string, id int, in service.ProposalInput, locale string) (*models.Proposal, error)
	Delete(ctx context.Context, actor *models.User, eventID string, id int) error
	SetState(ctx context.Context, actor *models.User, eventID string, id int, rawState string) (*models.Proposal, error)
	Stats(ctx context.Context, actor *models.User, eventID string) ([]models.ProposalStats, error)
}

type CommentService interface {
	List(ctx context.Context, actor *models.User, eventID string, proposalID int) ([]models.Comment, error)
	Create(ctx context.Context, actor *models.User, eventID string, proposalID int, in service.CommentInput) (*models.Comment, error)
	Update(ctx context.Context, actor *models.User, eventID string, proposalID, id int, in service.CommentInput) (*models.Comment, error)
	Delete(ctx context.Context, actor *models.User, eventID string, proposalID, id int) error
}

type RateService interface {
	List(ctx context.Context, actor *models.User, eventID string, proposalID int) ([]models.RateAdmin, error)
	Mine(ctx context.Context, actor *models.User, eventID string, proposalID int) (*models.Rate, error)
	Create(ctx context.Context, actor *models.User, eventID string, proposalID int, in service.RateInput) (*models.Rate, error)
	Update(ctx context.Context, actor *models.User, eventID string, id int, in service.RateInput) (*models.Rate, error)
	Delete(ctx context.Context, actor *models.User, eventID string, id int) error
}

type ScheduleService interface {
	List(ctx context.Context, eventID, rawState string) ([]models.Schedule, error)
	Speakers(ctx context.Context, eventID, rawState string) ([]models.UserProfile, error)
	Update(ctx context.Context, eventID string, items []models.Schedule, sendMail bool, locale string) ([]models.Schedule, error)
	Notify(ctx context.Context, eventID, locale string) (int, error)
}

type AdminSessionService interface {
	Sessions(ctx context.Context, actor *models.User) ([]models.RowResponse, error)
	Drafts(ctx context.Context, actor *models.User) ([]models.RowResponse, error)
	Ordered(ctx context.Context) ([]int64, error)
	Get(ctx context.Context, actor *models.User, added int64) (*models.RowResponse, error)
	Delete(ctx context.Context, added int64) error
	MarkViewed(ctx context.Context, actor *models.User, added int64) (*models.AdminViewedSession, error)
	Sync(ctx context.Context, eventID string) (int, error)
}
