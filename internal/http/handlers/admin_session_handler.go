package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/cfp-backend/internal/dto"
	"github.com/ignatzorin/cfp-backend/internal/http/handlers/common"
)

// AdminSessionHandler сессии из Google таблицы.
type AdminSessionHandler struct {
	sessions AdminSessionService
}

func NewAdminSessionHandler(sessions AdminSessionService) *AdminSessionHandler {
	return &AdminSessionHandler{sessions: sessions}
}

// Sessions обрабатывает GET /api/admin/sessions.
func (h *AdminSessionHandler) Sessions(c *gin.Context) {
	rows, err := h.sessions.Sessions(c.Request.Context(), common.CurrentUser(c))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Drafts обрабатывает GET /api/admin/drafts.
func (h *AdminSessionHandler) Drafts(c *gin.Context) {
	rows, err := h.sessions.Drafts(c.Request.Context(), common.CurrentUser(c))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Ordered обрабатывает GET /api/admin/sessions/ordered.
func (h *AdminSessionHandler) Ordered(c *gin.Context) {
	added, err := h.sessions.Ordered(c.Request.Context())
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, added)
}

// Get обрабатывает GET /api/admin/sessions/:added.
func (h *AdminSessionHandler) Get(c *gin.Context) {
	added, err := common.ParseInt64Param(c, "added")
	if err != nil {
		common.RespondError(c, err)
		return
	}
	row, err := h.sessions.Get(c.Request.Context(), common.CurrentUser(c), added)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

// Delete обрабатывает DELETE /api/admin/sessions/:added.
func (h *AdminSessionHandler) Delete(c *gin.Context) {
	added, err := common.ParseInt64Param(c, "added")
	if err != nil {
		common.RespondError(c, err)
		return
	}
	if err := h.sessions.Delete(c.Request.Context(), added); err != nil {
		common.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkViewed обрабатывает POST /api/admin/sessions/viewed/:added.
func (h *AdminSessionHandler) MarkViewed(c *gin.Context) {
	added, err := common.ParseInt64Param(c, "added")
	if err != nil {
		common.RespondError(c, err)
		return
	}
	viewed, err := h.sessions.MarkViewed(c.Request.Context(), common.CurrentUser(c), added)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewed)
}

// Sync обрабатывает POST /api/admin/sessions/sync.
func (h *AdminSessionHandler) Sync(c *gin.Context) {
	n, err := h.sessions.Sync(c.Request.Context(), common.EventID(c))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CountResponse{Count: n})
}
