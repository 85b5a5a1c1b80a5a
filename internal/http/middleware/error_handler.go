package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/cfp-backend/internal/dto"
	"github.com/ignatzorin/cfp-backend/internal/logger"
	"github.com/ignatzorin/cfp-backend/internal/pkg/apperror"
)

// ErrorHandler обрабатывает ошибки централизованно.
// Хэндлеры кладут внутренние ошибки в c.Errors; клиент получает замаскированный ответ.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last()
		logger.Log.WithFields(logrus.Fields{
			"error":  err.Error(),
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		}).Error("Request error")

		if c.Writer.Written() {
			return
		}

		status := apperror.StatusOf(err.Err)
		if status >= http.StatusInternalServerError {
			c.JSON(status, dto.ErrorResponse{Error: "внутренняя ошибка сервера"})
			return
		}
		appErr, _ := apperror.As(err.Err)
		c.JSON(status, dto.ErrorResponse{Error: appErr.Message, Code: string(appErr.Code)})
	}
}
