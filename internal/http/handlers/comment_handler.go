package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/cfp-backend/internal/dto"
	"github.com/ignatzorin/cfp-backend/internal/http/handlers/common"
	"github.com/ignatzorin/cfp-backend/internal/service"
)

// CommentHandler комментарии к заявке.
type CommentHandler struct {
	comments CommentService
}

func NewCommentHandler(comments CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// List обрабатывает GET /api/proposals/:id/comments.
func (h *CommentHandler) List(c *gin.Context) {
	proposalID, err := common.ParseIntParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}
	comments, err := h.comments.List(c.Request.Context(), common.CurrentUser(c), common.EventID(c), proposalID)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// Create обрабатывает POST /api/proposals/:id/comments.
func (h *CommentHandler) Create(c *gin.Context) {
	proposalID, err := common.ParseIntParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}
	var req dto.CommentRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.RespondError(c, err)
		return
	}

	comment, err := h.comments.Create(c.Request.Context(), common.CurrentUser(c), common.EventID(c), proposalID,
		service.CommentInput{Comment: req.Comment, Internal: req.Internal})
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// Update обрабатывает PUT /api/proposals/:id/comments/:commentId.
func (h *CommentHandler) Update(c *gin.Context) {
	proposalID, err := common.ParseIntParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}
	commentID, err := common.ParseIntParam(c, "commentId")
	if err != nil {
		common.RespondError(c, err)
		return
	}
	var req dto.CommentRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.RespondError(c, err)
		return
	}

	_, err = h.comments.Update(c.Request.Context(), common.CurrentUser(c), common.EventID(c), proposalID, commentID,
		service.CommentInput{Comment: req.Comment, Internal: req.Internal})
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete обрабатывает DELETE /api/proposals/:id/comments/:commentId.
func (h *CommentHandler) Delete(c *gin.Context) {
	proposalID, err := common.ParseIntParam(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}
	commentID, err := common.ParseIntParam(c, "commentId")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	if err := h.comments.Delete(c.Request.Context(), common.CurrentUser(c), common.EventID(c), proposalID, commentID); err != nil {
		common.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
