package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/cfp-backend/internal/dto"
)

// IDValidator проверяет, что параметры пути являются положительными целыми числами.
// Использование: router.GET("/proposals/:id", IDValidator("id"), handler.Get)
func IDValidator(params ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, name := range params {
			raw := c.Param(name)
			if raw == "" {
				c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{
					Error: "параметр " + name + " обязателен",
					Code:  "BAD_REQUEST",
				})
				return
			}
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{
					Error: "параметр " + name + " должен быть положительным целым числом",
					Code:  "BAD_REQUEST",
				})
				return
			}
		}
		c.Next()
	}
}
