package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/cfp-backend/internal/dto"
	"github.com/ignatzorin/cfp-backend/internal/models"
	"github.com/ignatzorin/cfp-backend/internal/pkg/apperror"
	"github.com/ignatzorin/cfp-backend/internal/service"
)

func commentRoutes(user *models.User, svc *mockCommentService) http.Handler {
	r := newTestEngine(user)
	h := NewCommentHandler(svc)
	r.GET("/proposals/:id/comments", h.List)
	r.POST("/proposals/:id/comments", h.Create)
	r.PUT("/proposals/:id/comments/:commentId", h.Update)
	r.DELETE("/proposals/:id/comments/:commentId", h.Delete)
	return r
}

func TestCommentHandler_CreateAnonymous(t *testing.T) {
	svc := new(mockCommentService)
	svc.On("Create", mock.Anything, (*models.User)(nil), testEvent, 7, mock.Anything).Return(nil, apperror.ErrUnauthorized)

	w := doRequest(commentRoutes(nil, svc), http.MethodPost, "/proposals/7/comments", `{"comment":"hello"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCommentHandler_Create(t *testing.T) {
	svc := new(mockCommentService)
	in := service.CommentInput{Comment: "Great talk", Internal: true}
	svc.On("Create", mock.Anything, reviewer, testEvent, 7, in).
		Return(&models.Comment{ID: 11, ProposalID: 7, Comment: "Great talk", Internal: true}, nil)

	w := doRequest(commentRoutes(reviewer, svc), http.MethodPost, "/proposals/7/comments", `{"comment":"Great talk","internal":true}`)

	require.Equal(t, http.StatusCreated, w.Code)
	var got models.Comment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 11, got.ID)
	assert.True(t, got.Internal)
}

func TestCommentHandler_Forbidden(t *testing.T) {
	svc := new(mockCommentService)
	svc.On("List", mock.Anything, speaker, testEvent, 9).Return(nil, apperror.ErrForbidden)

	w := doRequest(commentRoutes(speaker, svc), http.MethodGet, "/proposals/9/comments", "")

	assert.Equal(t, http.StatusForbidden, w.Code)
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "FORBIDDEN", body.Code)
}

func TestCommentHandler_UpdateReturnsNoContent(t *testing.T) {
	svc := new(mockCommentService)
	svc.On("Update", mock.Anything, speaker, testEvent, 7, 11, service.CommentInput{Comment: "edited"}).
		Return(&models.Comment{ID: 11}, nil)

	w := doRequest(commentRoutes(speaker, svc), http.MethodPut, "/proposals/7/comments/11", `{"comment":"edited"}`)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCommentHandler_InvalidCommentID(t *testing.T) {
	svc := new(mockCommentService)

	w := doRequest(commentRoutes(speaker, svc), http.MethodDelete, "/proposals/7/comments/abc", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCommentHandler_InternalErrorIsMasked(t *testing.T) {
	svc := new(mockCommentService)
	svc.On("Delete", mock.Anything, speaker, testEvent, 7, 11).Return(errors.New("pq: connection refused"))

	w := doRequest(commentRoutes(speaker, svc), http.MethodDelete, "/proposals/7/comments/11", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "pq:")
}
