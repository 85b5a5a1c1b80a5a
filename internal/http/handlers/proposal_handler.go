package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/cfp-backend/internal/dto"
	"github.com/ignatzorin/cfp-backend/internal/http/handlers/common"
	"github.com/ignatzorin/cfp-backend/internal/service"
)

// ProposalHandler заявки на доклады.
type ProposalHandler struct {
	proposals ProposalService
}

func NewProposalHandler(proposals ProposalService) *ProposalHandler {
	return &ProposalHandler{proposals: proposals}
}

// List обрабатывает GET /api/proposals?state=.
func (h *ProposalHandler) List(c *gin.Context) {
	list, err := h.proposals.List(c.Request.Context(), common.CurrentUser(c), common.EventID(c), c.Query("state"))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Get обрабатывает GET /api/proposals/:id.
func (h *ProposalHandler) Get(c *gin.Context) {
	id, err := common.ParseIntParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}
	p, err := h.proposals.Get(c.Request.Context(), common.CurrentUser(c), common.EventID(c), id)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Create обрабатывает POST /api/proposals.
func (h *ProposalHandler) Create(c *gin.Context) {
	var req dto.ProposalRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.RespondError(c, err)
		return
	}

	p, err := h.proposals.Create(c.Request.Context(), common.CurrentUser(c), common.EventID(c), proposalInput(req), common.Locale(c))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// Update обрабатывает PUT /api/proposals/:id.
func (h *ProposalHandler) Update(c *gin.Context) {
	id, err := common.ParseIntParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}
	var req dto.ProposalRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.RespondError(c, err)
		return
	}

	p, err := h.proposals.Update(c.Request.Context(), common.CurrentUser(c), common.EventID(c), id, proposalInput(req), common.Locale(c))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Delete обрабатывает DELETE /api/proposals/:id.
func (h *ProposalHandler) Delete(c *gin.Context) {
	id, err := common.ParseIntParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}
	if err := h.proposals.Delete(c.Request.Context(), common.CurrentUser(c), common.EventID(c), id); err != nil {
		common.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetState обрабатывает PUT /api/admin/proposals/:id/state.
func (h *ProposalHandler) SetState(c *gin.Context) {
	id, err := common.ParseIntParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}
	var req dto.ProposalStateRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.RespondError(c, err)
		return
	}

	p, err := h.proposals.SetState(c.Request.Context(), common.CurrentUser(c), common.EventID(c), id, req.State)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Stats обрабатывает GET /api/admin/proposals/stats.
func (h *ProposalHandler) Stats(c *gin.Context) {
	stats, err := h.proposals.Stats(c.Request.Context(), common.CurrentUser(c), common.EventID(c))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func proposalInput(req dto.ProposalRequest) service.ProposalInput {
	return service.ProposalInput{
		State:       req.State,
		Name:        req.Name,
		Description: req.Description,
		References:  req.References,
		Difficulty:  req.Difficulty,
		Language:    req.Language,
		Track:       req.Track,
		FormatID:    req.FormatID,
		Cospeakers:  req.Cospeakers,
	}
}
