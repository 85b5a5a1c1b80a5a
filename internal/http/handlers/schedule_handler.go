package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/cfp-backend/internal/dto"
	"github.com/ignatzorin/cfp-backend/internal/http/handlers/common"
	"github.com/ignatzorin/cfp-backend/internal/models"
	"github.com/ignatzorin/cfp-backend/internal/pkg/apperror"
)

// ScheduleHandler программа мероприятия.
type ScheduleHandler struct {
	schedule ScheduleService
}

func NewScheduleHandler(schedule ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{schedule: schedule}
}

// List обрабатывает GET /api/admin/scheduledtalks/:state.
func (h *ScheduleHandler) List(c *gin.Context) {
	talks, err := h.schedule.List(c.Request.Context(), common.EventID(c), c.Param("state"))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, talks)
}

// Speakers обрабатывает GET /api/admin/scheduledtalks/:state/speakers.
func (h *ScheduleHandler) Speakers(c *gin.Context) {
	speakers, err := h.schedule.Speakers(c.Request.Context(), common.EventID(c), c.Param("state"))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, speakers)
}

// Update обрабатывает PUT /api/admin/scheduledtalks?sendMail=bool.
func (h *ScheduleHandler) Update(c *gin.Context) {
	sendMail := false
	if raw := c.Query("sendMail"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			common.RespondError(c, apperror.New(apperror.ErrCodeBadRequest, "sendMail должен быть true или false"))
			return
		}
		sendMail = v
	}

	var items []models.Schedule
	if err := common.BindJSON(c, &items); err != nil {
		common.RespondError(c, err)
		return
	}

	updated, err := h.schedule.Update(c.Request.Context(), common.EventID(c), items, sendMail, common.Locale(c))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Notify обрабатывает POST /api/admin/scheduledtalks/notification.
func (h *ScheduleHandler) Notify(c *gin.Context) {
	n, err := h.schedule.Notify(c.Request.Context(), common.EventID(c), common.Locale(c))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CountResponse{Count: n})
}
