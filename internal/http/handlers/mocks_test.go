package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/cfp-backend/internal/http/middleware"
	"github.com/ignatzorin/cfp-backend/internal/models"
	"github.com/ignatzorin/cfp-backend/internal/service"
)

const testEvent = "devfest"

var (
	speaker  = &models.User{ID: 1, Email: "speaker@cfp.io", Firstname: "John", Lastname: "Doe", Roles: []string{models.RoleAuthenticated}}
	reviewer = &models.User{ID: 3, Email: "reviewer@cfp.io", Roles: []string{models.RoleReviewer}}
	admin    = &models.User{ID: 4, Email: "admin@cfp.io", Roles: []string{models.RoleAdmin}}
)

// newTestEngine собирает gin с теми же middleware, что и роутер, но с готовым пользователем.
func newTestEngine(user *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.EventResolver(testEvent), middleware.LocaleResolver("fr"))
	r.Use(func(c *gin.Context) {
		if user != nil {
			c.Set(middleware.ContextUserKey, user)
		}
		c.Next()
	})
	return r
}

func doRequest(r http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type mockCommentService struct{ mock.Mock }

func (m *mockCommentService) List(ctx context.Context, actor *models.User, eventID string, proposalID int) ([]models.Comment, error) {
	args := m.Called(ctx, actor, eventID, proposalID)
	list, _ := args.Get(0).([]models.Comment)
	return list, args.Error(1)
}

func (m *mockCommentService) Create(ctx context.Context, actor *models.User, eventID string, proposalID int, in service.CommentInput) (*models.Comment, error) {
	args := m.Called(ctx, actor, eventID, proposalID, in)
	c, _ := args.Get(0).(*models.Comment)
	return c, args.Error(1)
}

func (m *mockCommentService) Update(ctx context.Context, actor *models.User, eventID string, proposalID, id int, in service.CommentInput) (*models.Comment, error) {
	args := m.Called(ctx, actor, eventID, proposalID, id, in)
	c, _ := args.Get(0).(*models.Comment)
	return c, args.Error(1)
}

func (m *mockCommentService) Delete(ctx context.Context, actor *models.User, eventID string, proposalID, id int) error {
	return m.Called(ctx, actor, eventID, proposalID, id).Error(0)
}

type mockRateService struct{ mock.Mock }

func (m *mockRateService) List(ctx context.Context, actor *models.User, eventID string, proposalID int) ([]models.RateAdmin, error) {
	args := m.Called(ctx, actor, eventID, proposalID)
	list, _ := args.Get(0).([]models.RateAdmin)
	return list, args.Error(1)
}

func (m *mockRateService) Mine(ctx context.Context, actor *models.User, eventID string, proposalID int) (*models.Rate, error) {
	args := m.Called(ctx, actor, eventID, proposalID)
	r, _ := args.Get(0).(*models.Rate)
	return r, args.Error(1)
}

func (m *mockRateService) Create(ctx context.Context, actor *models.User, eventID string, proposalID int, in service.RateInput) (*models.Rate, error) {
	args := m.Called(ctx, actor, eventID, proposalID, in)
	r, _ := args.Get(0).(*models.Rate)
	return r, args.Error(1)
}

func (m *mockRateService) Update(ctx context.Context, actor *models.User, eventID string, id int, in service.RateInput) (*models.Rate, error) {
	args := m.Called(ctx, actor, eventID, id, in)
	r, _ := args.Get(0).(*models.Rate)
	return r, args.Error(1)
}

func (m *mockRateService) Delete(ctx context.Context, actor *models.User, eventID string, id int) error {
	return m.Called(ctx, actor, eventID, id).Error(0)
}

type mockScheduleService struct{ mock.Mock }

func (m *mockScheduleService) List(ctx context.Context, eventID, rawState string) ([]models.Schedule, error) {
	args := m.Called(ctx, eventID, rawState)
	list, _ := args.Get(0).([]models.Schedule)
	return list, args.Error(1)
}

func (m *mockScheduleService) Speakers(ctx context.Context, eventID, rawState string) ([]models.UserProfile, error) {
	args := m.Called(ctx, eventID, rawState)
	list, _ := args.Get(0).([]models.UserProfile)
	return list, args.Error(1)
}

func (m *mockScheduleService) Update(ctx context.Context, eventID string, items []models.Schedule, sendMail bool, locale string) ([]models.Schedule, error) {
	args := m.Called(ctx, eventID, items, sendMail, locale)
	list, _ := args.Get(0).([]models.Schedule)
	return list, args.Error(1)
}

func (m *mockScheduleService) Notify(ctx context.Context, eventID, locale string) (int, error) {
	args := m.Called(ctx, eventID, locale)
	return args.Int(0), args.Error(1)
}

type mockSessionService struct{ mock.Mock }

func (m *mockSessionService) Sessions(ctx context.Context, actor *models.User) ([]models.RowResponse, error) {
	args := m.Called(ctx, actor)
	list, _ := args.Get(0).([]models.RowResponse)
	return list, args.Error(1)
}

func (m *mockSessionService) Drafts(ctx context.Context, actor *models.User) ([]models.RowResponse, error) {
	args := m.Called(ctx, actor)
	list, _ := args.Get(0).([]models.RowResponse)
	return list, args.Error(1)
}

func (m *mockSessionService) Ordered(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]int64)
	return list, args.Error(1)
}

func (m *mockSessionService) Get(ctx context.Context, actor *models.User, added int64) (*models.RowResponse, error) {
	args := m.Called(ctx, actor, added)
	row, _ := args.Get(0).(*models.RowResponse)
	return row, args.Error(1)
}

func (m *mockSessionService) Delete(ctx context.Context, added int64) error {
	return m.Called(ctx, added).Error(0)
}

func (m *mockSessionService) MarkViewed(ctx context.Context, actor *models.User, added int64) (*models.AdminViewedSession, error) {
	args := m.Called(ctx, actor, added)
	v, _ := args.Get(0).(*models.AdminViewedSession)
	return v, args.Error(1)
}

func (m *mockSessionService) Sync(ctx context.Context, eventID string) (int, error) {
	args := m.Called(ctx, eventID)
	return args.Int(0), args.Error(1)
}

type mockProposalService struct{ mock.Mock }

func (m *mockProposalService) List(ctx context.Context, actor *models.User, eventID, state string) ([]*models.Proposal, error) {
	args := m.Called(ctx, actor, eventID, state)
	list, _ := args.Get(0).([]*models.Proposal)
	return list, args.Error(1)
}

func (m *mockProposalService) Get(ctx context.Context, actor *models.User, eventID string, id int) (*models.Proposal, error) {
	args := m.Called(ctx, actor, eventID, id)
	p, _ := args.Get(0).(*models.Proposal)
	return p, args.Error(1)
}

func (m *mockProposalService) Create(ctx context.Context, actor *models.User, eventID string, in service.ProposalInput, locale string) (*models.Proposal, error) {
	args := m.Called(ctx, actor, eventID, in, locale)
	p, _ := args.Get(0).(*models.Proposal)
	return p, args.Error(1)
}

func (m *mockProposalService) Update(ctx context.Context, actor *models.User, eventID string, id int, in service.ProposalInput, locale string) (*models.Proposal, error) {
	args := m.Called(ctx, actor, eventID, id, in, locale)
	p, _ := args.Get(0).(*models.Proposal)
	return p, args.Error(1)
}

func (m *mockProposalService) Delete(ctx context.Context, actor *models.User, eventID string, id int) error {
	return m.Called(ctx, actor, eventID, id).Error(0)
}

func (m *mockProposalService) SetState(ctx context.Context, actor *models.User, eventID string, id int, rawState string) (*models.Proposal, error) {
	args := m.Called(ctx, actor, eventID, id, rawState)
	p, _ := args.Get(0).(*models.Proposal)
	return p, args.Error(1)
}

func (m *mockProposalService) Stats(ctx context.Context, actor *models.User, eventID string) ([]models.ProposalStats, error) {
	args := m.Called(ctx, actor, eventID)
	list, _ := args.Get(0).([]models.ProposalStats)
	return list, args.Error(1)
}
