package service

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/cfp-backend/internal/models"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		user.ID = 42
	}
	return args.Error(0)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmails(ctx context.Context, emails []string) ([]*models.User, error) {
	args := m.Called(ctx, emails)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) UpdateImagePath(ctx context.Context, userID int, path string) error {
	return m.Called(ctx, userID, path).Error(0)
}

func (m *mockUserRepo) UpdateRoles(ctx context.Context, userID int, roles []string) error {
	return m.Called(ctx, userID, roles).Error(0)
}

func (m *mockUserRepo) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *mockUserRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockUserRepo) UpdateLastLoginAt(ctx context.Context, userID int) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockUserRepo) CreateSession(ctx context.Context, session *models.Session) error {
	return m.Called(ctx, session).Error(0)
}

func (m *mockUserRepo) DeleteSession(ctx context.Context, refreshToken string) error {
	return m.Called(ctx, refreshToken).Error(0)
}

func (m *mockUserRepo) ListSessions(ctx context.Context, userID int) ([]models.Session, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Session), args.Error(1)
}

type mockEventRepo struct {
	mock.Mock
}

func (m *mockEventRepo) GetByID(ctx context.Context, id string) (*models.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

type mockFormatRepo struct {
	mock.Mock
}

func (m *mockFormatRepo) ListByEvent(ctx context.Context, eventID string) ([]models.Format, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Format), args.Error(1)
}

func (m *mockFormatRepo) GetByID(ctx context.Context, eventID string, id int) (*models.Format, error) {
	args := m.Called(ctx, eventID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Format), args.Error(1)
}

func (m *mockFormatRepo) Create(ctx context.Context, f *models.Format) error {
	return m.Called(ctx, f).Error(0)
}

func (m *mockFormatRepo) Update(ctx context.Context, f *models.Format) error {
	return m.Called(ctx, f).Error(0)
}

func (m *mockFormatRepo) Delete(ctx context.Context, eventID string, id int) error {
	return m.Called(ctx, eventID, id).Error(0)
}

func (m *mockFormatRepo) CountByEvent(ctx context.Context, eventID string) (int, error) {
	args := m.Called(ctx, eventID)
	return args.Int(0), args.Error(1)
}

type mockProposalRepo struct {
	mock.Mock
}

func (m *mockProposalRepo) Create(ctx context.Context, p *models.Proposal, cospeakerIDs []int) error {
	args := m.Called(ctx, p, cospeakerIDs)
	if args.Error(0) == nil {
		p.ID = 7
	}
	return args.Error(0)
}

func (m *mockProposalRepo) Update(ctx context.Context, p *models.Proposal, cospeakerIDs []int) error {
	return m.Called(ctx, p, cospeakerIDs).Error(0)
}

func (m *mockProposalRepo) GetByID(ctx context.Context, eventID string, id int) (*models.Proposal, error) {
	args := m.Called(ctx, eventID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Proposal), args.Error(1)
}

func (m *mockProposalRepo) ListByEvent(ctx context.Context, eventID string, states []string) ([]*models.Proposal, error) {
	args := m.Called(ctx, eventID, states)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Proposal), args.Error(1)
}

func (m *mockProposalRepo) ListBySpeaker(ctx context.Context, eventID string, userID int) ([]*models.Proposal, error) {
	args := m.Called(ctx, eventID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Proposal), args.Error(1)
}

func (m *mockProposalRepo) UpdateState(ctx context.Context, eventID string, id int, state string) error {
	return m.Called(ctx, eventID, id, state).Error(0)
}

func (m *mockProposalRepo) UpdateSchedules(ctx context.Context, proposals []*models.Proposal) error {
	return m.Called(ctx, proposals).Error(0)
}

func (m *mockProposalRepo) Delete(ctx context.Context, eventID string, id int) error {
	return m.Called(ctx, eventID, id).Error(0)
}

func (m *mockProposalRepo) Stats(ctx context.Context, eventID string) ([]models.ProposalStats, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProposalStats), args.Error(1)
}

type mockCommentRepo struct {
	mock.Mock
}

func (m *mockCommentRepo) Create(ctx context.Context, c *models.Comment) error {
	args := m.Called(ctx, c)
	if args.Error(0) == nil {
		c.ID = 11
	}
	return args.Error(0)
}

func (m *mockCommentRepo) Update(ctx context.Context, c *models.Comment) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCommentRepo) GetByID(ctx context.Context, eventID string, id int) (*models.Comment, error) {
	args := m.Called(ctx, eventID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *mockCommentRepo) ListByProposal(ctx context.Context, eventID string, proposalID int, includeInternal bool) ([]models.Comment, error) {
	args := m.Called(ctx, eventID, proposalID, includeInternal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Comment), args.Error(1)
}

func (m *mockCommentRepo) Delete(ctx context.Context, eventID string, id int) error {
	return m.Called(ctx, eventID, id).Error(0)
}

type mockRateRepo struct {
	mock.Mock
}

func (m *mockRateRepo) Create(ctx context.Context, rate *models.Rate) error {
	args := m.Called(ctx, rate)
	if args.Error(0) == nil {
		rate.ID = 5
	}
	return args.Error(0)
}

func (m *mockRateRepo) Update(ctx context.Context, rate *models.Rate) error {
	return m.Called(ctx, rate).Error(0)
}

func (m *mockRateRepo) GetByID(ctx context.Context, eventID string, id int) (*models.Rate, error) {
	args := m.Called(ctx, eventID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Rate), args.Error(1)
}

func (m *mockRateRepo) GetByProposalAndUser(ctx context.Context, eventID string, proposalID, userID int) (*models.Rate, error) {
	args := m.Called(ctx, eventID, proposalID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Rate), args.Error(1)
}

func (m *mockRateRepo) ListByProposal(ctx context.Context, eventID string, proposalID int) ([]models.RateAdmin, error) {
	args := m.Called(ctx, eventID, proposalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RateAdmin), args.Error(1)
}

func (m *mockRateRepo) Delete(ctx context.Context, eventID string, id int) error {
	return m.Called(ctx, eventID, id).Error(0)
}

type mockViewedRepo struct {
	mock.Mock
}

func (m *mockViewedRepo) MarkViewed(ctx context.Context, added int64, userID int) (*models.AdminViewedSession, error) {
	args := m.Called(ctx, added, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdminViewedSession), args.Error(1)
}

func (m *mockViewedRepo) ViewedBy(ctx context.Context, userID int) (map[int64]struct{}, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]struct{}), args.Error(1)
}

// mockMailer потокобезопасен: письма программы уходят из нескольких горутин.
type mockMailer struct {
	mu sync.Mutex
	mock.Mock
}

func (m *mockMailer) SendNewCommentToAdmins(ctx context.Context, author *models.User, talk *models.Proposal, comment string, internal bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Called(ctx, author, talk, comment, internal).Error(0)
}

func (m *mockMailer) SendNewCommentToSpeaker(ctx context.Context, speaker *models.User, talk *models.Proposal, comment string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Called(ctx, speaker, talk, comment).Error(0)
}

func (m *mockMailer) SendSelected(ctx context.Context, talk *models.Proposal, locale string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Called(ctx, talk, locale).Error(0)
}

func (m *mockMailer) SendNotSelected(ctx context.Context, talk *models.Proposal, locale string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Called(ctx, talk, locale).Error(0)
}

func (m *mockMailer) SendProposalSubmitted(ctx context.Context, talk *models.Proposal, locale string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Called(ctx, talk, locale).Error(0)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) BroadcastToReviewers(event string, _ interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

type mockSheet struct {
	mock.Mock
}

func (m *mockSheet) Rows(ctx context.Context) ([]models.Row, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Row), args.Error(1)
}

func (m *mockSheet) Append(ctx context.Context, rows []models.Row) error {
	return m.Called(ctx, rows).Error(0)
}

func (m *mockSheet) Delete(ctx context.Context, added int64) error {
	return m.Called(ctx, added).Error(0)
}

// Пользователи для тестов.
var (
	speakerUser = &models.User{ID: 1, Email: "john.doe@gmail.com", Firstname: "John", Lastname: "Doe", Roles: []string{models.RoleAuthenticated}}
	cospeaker   = &models.User{ID: 2, Email: "johnny.deep@gmail.com", Firstname: "Johnny", Lastname: "Deep", Roles: []string{models.RoleAuthenticated}}
	reviewer    = &models.User{ID: 3, Email: "reviewer@cfp.io", Firstname: "Rev", Lastname: "Iewer", Roles: []string{models.RoleAuthenticated, models.RoleReviewer}}
	admin       = &models.User{ID: 4, Email: "admin@cfp.io", Firstname: "Ad", Lastname: "Min", Roles: []string{models.RoleAdmin}}
	owner       = &models.User{ID: 5, Email: "owner@cfp.io", Firstname: "Ow", Lastname: "Ner", Roles: []string{models.RoleOwner}}
	stranger    = &models.User{ID: 6, Email: "other@gmail.com", Firstname: "Other", Lastname: "Person", Roles: []string{models.RoleAuthenticated}}
)

const testEvent = "devfest"

func newTalk(state string) *models.Proposal {
	return &models.Proposal{
		ID:         7,
		EventID:    testEvent,
		State:      state,
		Name:       "A talk",
		SpeakerID:  speakerUser.ID,
		Speaker:    speakerUser,
		Cospeakers: []*models.User{cospeaker},
	}
}
