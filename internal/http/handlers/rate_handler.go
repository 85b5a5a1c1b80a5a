package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/cfp-backend/internal/dto"
	"github.com/ignatzorin/cfp-backend/internal/http/handlers/common"
	"github.com/ignatzorin/cfp-backend/internal/service"
)

// RateHandler оценки ревьюеров.
type RateHandler struct {
	rates RateService
}

func NewRateHandler(rates RateService) *RateHandler {
	return &RateHandler{rates: rates}
}

// List обрабатывает GET /api/proposals/:id/rates.
func (h *RateHandler) List(c *gin.Context) {
	proposalID, err := common.ParseIntParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}
	rates, err := h.rates.List(c.Request.Context(), common.CurrentUser(c), common.EventID(c), proposalID)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rates)
}

// Mine обрабатывает GET /api/proposals/:id/rates/me.
func (h *RateHandler) Mine(c *gin.Context) {
	proposalID, err := common.ParseIntParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}
	rate, err := h.rates.Mine(c.Request.Context(), common.CurrentUser(c), common.EventID(c), proposalID)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rate)
}

// Create обрабатывает POST /api/proposals/:id/rates.
func (h *RateHandler) Create(c *gin.Context) {
	proposalID, err := common.ParseIntParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}
	var req dto.RateRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.RespondError(c, err)
		return
	}

	rate, err := h.rates.Create(c.Request.Context(), common.CurrentUser(c), common.EventID(c), proposalID, rateInput(req))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rate)
}

// Update обрабатывает PUT /api/rates/:id.
func (h *RateHandler) Update(c *gin.Context) {
	id, err := common.ParseIntParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}
	var req dto.RateRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.RespondError(c, err)
		return
	}

	if _, err := h.rates.Update(c.Request.Context(), common.CurrentUser(c), common.EventID(c), id, rateInput(req)); err != nil {
		common.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete обрабатывает DELETE /api/rates/:id.
func (h *RateHandler) Delete(c *gin.Context) {
	id, err := common.ParseIntParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}
	if err := h.rates.Delete(c.Request.Context(), common.CurrentUser(c), common.EventID(c), id); err != nil {
		common.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func rateInput(req dto.RateRequest) service.RateInput {
	return service.RateInput{Rate: *req.Rate, Love: req.Love, Hate: req.Hate}
}
