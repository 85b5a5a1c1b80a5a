package common

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/cfp-backend/internal/dto"
	"github.com/ignatzorin/cfp-backend/internal/http/middleware"
	"github.com/ignatzorin/cfp-backend/internal/models"
	"github.com/ignatzorin/cfp-backend/internal/pkg/apperror"
)

// CurrentUser возвращает пользователя, загруженного AuthMiddleware, или nil.
func CurrentUser(c *gin.Context) *models.User {
	raw, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	user, _ := raw.(*models.User)
	return user
}

// EventID возвращает текущее мероприятие, выбранное EventResolver.
func EventID(c *gin.Context) string {
	return c.GetString(middleware.ContextEventKey)
}

// Locale возвращает язык писем, выбранный LocaleResolver.
func Locale(c *gin.Context) string {
	return c.GetString(middleware.ContextLocaleKey)
}

// ParseIntParam читает целочисленный параметр пути.
func ParseIntParam(c *gin.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, apperror.New(apperror.ErrCodeBadRequest, "параметр "+name+" должен быть положительным целым числом")
	}
	return id, nil
}

// ParseInt64Param читает параметр пути типа int64 (ключи строк таблицы).
func ParseInt64Param(c *gin.Context, name string) (int64, error) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, apperror.New(apperror.ErrCodeBadRequest, "параметр "+name+" должен быть целым числом")
	}
	return v, nil
}

// BindJSON читает тело запроса; ошибка уже в формате AppError.
func BindJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeBadRequest, "ошибка валидации запроса: "+err.Error())
	}
	return nil
}

// RespondError отвечает статусом AppError. Прочие ошибки уходят в ErrorHandler,
// который логирует их и возвращает замаскированный 500.
func RespondError(c *gin.Context, err error) {
	appErr, ok := apperror.As(err)
	if !ok || appErr.HTTPStatus >= http.StatusInternalServerError {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(appErr.HTTPStatus, dto.ErrorResponse{Error: appErr.Message, Code: string(appErr.Code)})
}

// ParseIntQuery читает целочисленный query параметр со значением по умолчанию.
func ParseIntQuery(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

// GetPagination извлекает limit и offset из query параметров.
func GetPagination(c *gin.Context) (limit, offset int) {
	limit = ParseIntQuery(c, "limit", 20)
	offset = ParseIntQuery(c, "offset", 0)
	if limit > 100 {
		limit = 100
	}
	if limit < 1 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return
}
