package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/cfp-backend/internal/dto"
	"github.com/ignatzorin/cfp-backend/internal/http/handlers/common"
	"github.com/ignatzorin/cfp-backend/internal/service"
)

// FormatHandler форматы выступлений текущего мероприятия.
type FormatHandler struct {
	formats FormatService
}

func NewFormatHandler(formats FormatService) *FormatHandler {
	return &FormatHandler{formats: formats}
}

// List обрабатывает GET /api/formats.
func (h *FormatHandler) List(c *gin.Context) {
	formats, err := h.formats.List(c.Request.Context(), common.EventID(c))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, formats)
}

// Create обрабатывает POST /api/admin/formats.
func (h *FormatHandler) Create(c *gin.Context) {
	var req dto.FormatRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.RespondError(c, err)
		return
	}

	f, err := h.formats.Create(c.Request.Context(), common.EventID(c), formatInput(req))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

// Update обрабатывает PUT /api/admin/formats/:id.
func (h *FormatHandler) Update(c *gin.Context) {
	id, err := common.ParseIntParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}
	var req dto.FormatRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.RespondError(c, err)
		return
	}

	f, err := h.formats.Update(c.Request.Context(), common.EventID(c), id, formatInput(req))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// Delete обрабатывает DELETE /api/admin/formats/:id.
func (h *FormatHandler) Delete(c *gin.Context) {
	id, err := common.ParseIntParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}
	if err := h.formats.Delete(c.Request.Context(), common.EventID(c), id); err != nil {
		common.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func formatInput(req dto.FormatRequest) service.FormatInput {
	return service.FormatInput{
		Name:        req.Name,
		Duration:    req.Duration,
		Description: req.Description,
		Icon:        req.Icon,
	}
}
