package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/ignatzorin/cfp-backend/internal/logger"
	"github.com/ignatzorin/cfp-backend/internal/mail"
	"github.com/ignatzorin/cfp-backend/internal/models"
	"github.com/ignatzorin/cfp-backend/internal/pkg/apperror"
	"github.com/ignatzorin/cfp-backend/internal/storage"
	"github.com/ignatzorin/cfp-backend/internal/validation"
)

// PhotoStore файловое хранилище фотографий.
type PhotoStore interface {
	Save(ctx context.Context, userID int, r io.Reader) (string, int64, error)
	Delete(ctx context.Context, relativePath string) error
}

// UpdateProfileInput поля профиля, которые правит сам пользователь.
type UpdateProfileInput struct {
	Firstname string
	Lastname  string
	Company   string
	Bio       string
	Twitter   string
	Language  string
}

// UserPage страница списка пользователей.
type UserPage struct {
	Users []*models.User `json:"users"`
	Total int            `json:"total"`
}

// UserService профиль текущего пользователя и управление ролями.
type UserService struct {
	repo   UserRepository
	photos PhotoStore
	conns  ConnectionCloser
}

func NewUserService(repo UserRepository, photos PhotoStore) *UserService {
	return &UserService{repo: repo, photos: photos}
}

// WithConnections отключает ленту ревьюеров у пользователей, потерявших роль.
func (s *UserService) WithConnections(conns ConnectionCloser) *UserService {
	s.conns = conns
	return s
}

// Resolve перечитывает пользователя по email из токена, чтобы смена ролей действовала сразу.
func (s *UserService) Resolve(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return user, nil
}

// UpdateProfile проверяет и сохраняет профиль.
func (s *UserService) UpdateProfile(ctx context.Context, user *models.User, in UpdateProfileInput) (*models.User, error) {
	if err := validation.ValidatePersonName("имя", in.Firstname); err != nil {
		return nil, validationErr(err)
	}
	if err := validation.ValidatePersonName("фамилия", in.Lastname); err != nil {
		return nil, validationErr(err)
	}
	if err := validation.ValidateProfile(in.Company, in.Bio, in.Twitter); err != nil {
		return nil, validationErr(err)
	}
	if err := validation.ValidateLanguage(in.Language, mail.Locales); err != nil {
		return nil, validationErr(err)
	}

	updated := *user
	updated.Firstname = strings.TrimSpace(in.Firstname)
	updated.Lastname = strings.TrimSpace(in.Lastname)
	updated.Company = strings.TrimSpace(in.Company)
	updated.Bio = in.Bio
	updated.Twitter = strings.TrimSpace(in.Twitter)
	updated.Language = in.Language

	if err := s.repo.UpdateProfile(ctx, &updated); err != nil {
		return nil, mapRepoErr(err)
	}
	return &updated, nil
}

// UploadPhoto сохраняет новую фотографию и удаляет предыдущую.
func (s *UserService) UploadPhoto(ctx context.Context, user *models.User, r io.Reader) (string, error) {
	path, _, err := s.photos.Save(ctx, user.ID, r)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrTooLarge):
			return "", apperror.Wrap(err, apperror.ErrCodeValidation, "файл слишком большой")
		case errors.Is(err, storage.ErrUnsupportedType), errors.Is(err, storage.ErrEmpty):
			return "", apperror.Wrap(err, apperror.ErrCodeValidation, "допустимы только изображения jpeg, png, gif, webp")
		default:
			return "", apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сохранить файл")
		}
	}

	if err := s.repo.UpdateImagePath(ctx, user.ID, path); err != nil {
		_ = s.photos.Delete(ctx, path)
		return "", mapRepoErr(err)
	}

	if user.ImagePath != nil && *user.ImagePath != "" && *user.ImagePath != path {
		if err := s.photos.Delete(ctx, *user.ImagePath); err != nil {
			logger.Log.WithError(err).WithField("user_id", user.ID).Warn("не удалось удалить старую фотографию")
		}
	}
	return path, nil
}

// List возвращает пользователей постранично.
func (s *UserService) List(ctx context.Context, limit, offset int) (*UserPage, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	users, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if users == nil {
		users = []*models.User{}
	}
	return &UserPage{Users: users, Total: total}, nil
}

// SetRoles заменяет роли пользователя. ADMIN и OWNER выдаёт только OWNER,
// и только OWNER может менять роли администраторов.
func (s *UserService) SetRoles(ctx context.Context, actor *models.User, targetID int, roles []string) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, apperror.ErrForbidden
	}

	normalized := []string{models.RoleAuthenticated}
	seen := map[string]struct{}{models.RoleAuthenticated: {}}
	for _, r := range roles {
		r = strings.ToUpper(strings.TrimSpace(r))
		if !models.IsValidRole(r) {
			return nil, apperror.New(apperror.ErrCodeValidation, "неизвестная роль "+r)
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		normalized = append(normalized, r)
	}

	isOwner := actor.HasRole(models.RoleOwner)
	if !isOwner && models.RoleAtLeast(normalized, models.RoleAdmin) {
		return nil, apperror.ErrForbidden
	}

	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if !isOwner && target.IsAdmin() {
		return nil, apperror.ErrForbidden
	}

	if err := s.repo.UpdateRoles(ctx, targetID, normalized); err != nil {
		return nil, mapRepoErr(err)
	}
	target.Roles = normalized
	if !target.IsReviewer() && s.conns != nil {
		s.conns.DisconnectUser(targetID)
	}
	return target, nil
}
