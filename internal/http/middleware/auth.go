package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/cfp-backend/internal/dto"
	"github.com/ignatzorin/cfp-backend/internal/logger"
	"github.com/ignatzorin/cfp-backend/internal/models"
	"github.com/ignatzorin/cfp-backend/internal/pkg/apperror"
	"github.com/ignatzorin/cfp-backend/internal/service"
)

// Context ключи для gin.Context.
const (
	ContextUserIDKey = "userID"
	ContextEmailKey  = "email"
	ContextRolesKey  = "roles"
	ContextUserKey   = "user"
)

// AccessParser разбирает access токен.
type AccessParser interface {
	ParseAccess(token string) (*service.AccessClaims, error)
}

// UserResolver загружает пользователя по email из токена.
type UserResolver interface {
	Resolve(ctx context.Context, email string) (*models.User, error)
}

// AuthMiddleware проверяет JWT access токен и загружает пользователя из базы,
// поэтому изменения ролей применяются без перевыпуска токена.
func AuthMiddleware(tokens AccessParser, users UserResolver) gin.HandlerFunc {
	log := logger.For("auth_middleware")
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			abort(c, apperror.ErrUnauthorized)
			return
		}

		claims, err := tokens.ParseAccess(strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			abort(c, apperror.New(apperror.ErrCodeUnauthorized, "токен невалиден"))
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			abort(c, apperror.New(apperror.ErrCodeUnauthorized, "токен невалиден"))
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Set(ContextEmailKey, claims.Email)
		c.Set(ContextRolesKey, claims.Roles)

		user, err := users.Resolve(c.Request.Context(), claims.Email)
		if err != nil {
			if !errors.Is(err, apperror.ErrUserNotFound) {
				log.WithError(err).WithField("email", claims.Email).Error("не удалось загрузить пользователя")
			}
			abort(c, err)
			return
		}
		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// RequireRole пропускает только пользователей с ролью не ниже role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := c.Get(ContextUserKey)
		if !ok {
			abort(c, apperror.ErrUnauthorized)
			return
		}
		user, _ := raw.(*models.User)
		if !user.HasRole(role) {
			abort(c, apperror.ErrForbidden)
			return
		}
		c.Next()
	}
}

// abort отвечает ошибкой приложения; неизвестные ошибки маскируются.
func abort(c *gin.Context, err error) {
	status := apperror.StatusOf(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: "внутренняя ошибка сервера"})
		return
	}
	appErr, _ := apperror.As(err)
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: appErr.Message, Code: string(appErr.Code)})
}
