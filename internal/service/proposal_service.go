package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/cfp-backend/internal/logger"
	"github.com/ignatzorin/cfp-backend/internal/metrics"
	"github.com/ignatzorin/cfp-backend/internal/models"
	"github.com/ignatzorin/cfp-backend/internal/pkg/apperror"
	"github.com/ignatzorin/cfp-backend/internal/repository"
	"github.com/ignatzorin/cfp-backend/internal/validation"
)

// ProposalInput поля заявки от спикера.
type ProposalInput struct {
	State       string
	Name        string
	Description string
	References  string
	Difficulty  int
	Language    string
	Track       string
	FormatID    *int
	Cospeakers  []string
}

// ProposalService заявки на доклады.
type ProposalService struct {
	proposals ProposalRepository
	events    EventRepository
	formats   FormatRepository
	users     UserRepository
	mailer    Mailer
	activity  ActivityPublisher
	now       func() time.Time
	log       *logrus.Entry
}

func NewProposalService(proposals ProposalRepository, events EventRepository, formats FormatRepository, users UserRepository, mailer Mailer, activity ActivityPublisher) *ProposalService {
	if activity == nil {
		activity = noopPublisher{}
	}
	return &ProposalService{
		proposals: proposals,
		events:    events,
		formats:   formats,
		users:     users,
		mailer:    mailer,
		activity:  activity,
		now:       time.Now,
		log:       logger.For("proposals"),
	}
}

// loadProposal возвращает заявку мероприятия или 404.
func loadProposal(ctx context.Context, repo ProposalRepository, eventID string, id int) (*models.Proposal, error) {
	p, err := repo.GetByID(ctx, eventID, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return p, nil
}

// canAccess: спикер, соспикер или ревьюер.
func canAccess(user *models.User, p *models.Proposal) bool {
	return user != nil && (p.IsSpeaker(user.ID) || user.IsReviewer())
}

// List: ревьюеры видят все заявки мероприятия, остальные только свои.
func (s *ProposalService) List(ctx context.Context, actor *models.User, eventID, state string) ([]*models.Proposal, error) {
	var states []string
	if state != "" {
		parsed, ok := models.ParseProposalState(state)
		if !ok {
			return nil, apperror.New(apperror.ErrCodeValidation, "неизвестное состояние "+state)
		}
		states = []string{parsed}
	}

	var (
		list []*models.Proposal
		err  error
	)
	if actor.IsReviewer() {
		list, err = s.proposals.ListByEvent(ctx, eventID, states)
	} else {
		list, err = s.proposals.ListBySpeaker(ctx, eventID, actor.ID)
		if err == nil && len(states) > 0 {
			list = filterByState(list, states[0])
		}
	}
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if list == nil {
		list = []*models.Proposal{}
	}
	return list, nil
}

func filterByState(list []*models.Proposal, state string) []*models.Proposal {
	out := list[:0]
	for _, p := range list {
		if p.State == state {
			out = append(out, p)
		}
	}
	return out
}

func (s *ProposalService) Get(ctx context.Context, actor *models.User, eventID string, id int) (*models.Proposal, error) {
	p, err := loadProposal(ctx, s.proposals, eventID, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(actor, p) {
		return nil, apperror.ErrForbidden
	}
	return p, nil
}

// Create подаёт заявку. Закрытый CFP даёт 410.
func (s *ProposalService) Create(ctx context.Context, actor *models.User, eventID string, in ProposalInput, locale string) (*models.Proposal, error) {
	if err := s.ensureOpen(ctx, eventID); err != nil {
		return nil, err
	}

	state, err := speakerState(in.State)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, eventID, in); err != nil {
		return nil, err
	}
	cospeakerIDs, err := s.resolveCospeakers(ctx, actor, in.Cospeakers)
	if err != nil {
		return nil, err
	}

	p := &models.Proposal{
		EventID:     eventID,
		State:       state,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		References:  in.References,
		Difficulty:  in.Difficulty,
		Language:    in.Language,
		Track:       in.Track,
		FormatID:    in.FormatID,
		SpeakerID:   actor.ID,
	}
	if err := s.proposals.Create(ctx, p, cospeakerIDs); err != nil {
		return nil, mapRepoErr(err)
	}

	created, err := loadProposal(ctx, s.proposals, eventID, p.ID)
	if err != nil {
		return nil, err
	}

	metrics.ProposalsSubmitted.WithLabelValues(eventID, state).Inc()
	if state == models.ProposalStateConfirmed {
		s.notifySubmitted(ctx, created, locale)
	}
	return created, nil
}

// Update правит заявку спикера или соспикера, пока она черновик или подана.
func (s *ProposalService) Update(ctx context.Context, actor *models.User, eventID string, id int, in ProposalInput, locale string) (*models.Proposal, error) {
	current, err := loadProposal(ctx, s.proposals, eventID, id)
	if err != nil {
		return nil, err
	}
	if !current.IsSpeaker(actor.ID) {
		return nil, apperror.ErrForbidden
	}
	if err := s.ensureOpen(ctx, eventID); err != nil {
		return nil, err
	}
	if !current.IsEditable() {
		return nil, apperror.New(apperror.ErrCodeForbidden, "заявка уже рассмотрена и не может быть изменена")
	}

	state, err := speakerState(in.State)
	if err != nil {
		return nil, err
	}
	if current.State == models.ProposalStateConfirmed && state == models.ProposalStateDraft {
		return nil, apperror.New(apperror.ErrCodeForbidden, "поданную заявку нельзя вернуть в черновик")
	}
	if err := s.validate(ctx, eventID, in); err != nil {
		return nil, err
	}
	// соспикеров считаем относительно основного спикера, а не автора правки
	owner := &models.User{ID: current.SpeakerID}
	if current.Speaker != nil {
		owner = current.Speaker
	}
	cospeakerIDs, err := s.resolveCospeakers(ctx, owner, in.Cospeakers)
	if err != nil {
		return nil, err
	}

	p := *current
	p.State = state
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.References = in.References
	p.Difficulty = in.Difficulty
	p.Language = in.Language
	p.Track = in.Track
	p.FormatID = in.FormatID
	if err := s.proposals.Update(ctx, &p, cospeakerIDs); err != nil {
		return nil, mapRepoErr(err)
	}

	updated, err := loadProposal(ctx, s.proposals, eventID, id)
	if err != nil {
		return nil, err
	}
	if current.State == models.ProposalStateDraft && state == models.ProposalStateConfirmed {
		metrics.ProposalsSubmitted.WithLabelValues(eventID, state).Inc()
		s.notifySubmitted(ctx, updated, locale)
	}
	return updated, nil
}

// Delete удаляет заявку; доступно только основному спикеру.
func (s *ProposalService) Delete(ctx context.Context, actor *models.User, eventID string, id int) error {
	p, err := loadProposal(ctx, s.proposals, eventID, id)
	if err != nil {
		return err
	}
	if p.SpeakerID != actor.ID {
		return apperror.ErrForbidden
	}
	return mapRepoErr(s.proposals.Delete(ctx, eventID, id))
}

// SetState решение комитета по заявке.
func (s *ProposalService) SetState(ctx context.Context, actor *models.User, eventID string, id int, rawState string) (*models.Proposal, error) {
	if !actor.IsAdmin() {
		return nil, apperror.ErrForbidden
	}
	state, ok := models.ParseProposalState(rawState)
	if !ok || state == models.ProposalStateDraft {
		return nil, apperror.New(apperror.ErrCodeValidation, "недопустимое состояние "+rawState)
	}

	p, err := loadProposal(ctx, s.proposals, eventID, id)
	if err != nil {
		return nil, err
	}
	if p.State == models.ProposalStateDraft {
		return nil, apperror.New(apperror.ErrCodeValidation, "черновик ещё не подан")
	}
	if err := s.proposals.UpdateState(ctx, eventID, id, state); err != nil {
		return nil, mapRepoErr(err)
	}
	p.State = state

	metrics.ProposalStateChanges.WithLabelValues(eventID, state).Inc()
	s.activity.BroadcastToReviewers("proposal.state", map[string]interface{}{"id": p.ID, "state": state})
	return p, nil
}

// Stats агрегаты оценок для ревьюеров.
func (s *ProposalService) Stats(ctx context.Context, actor *models.User, eventID string) ([]models.ProposalStats, error) {
	if !actor.IsReviewer() {
		return nil, apperror.ErrForbidden
	}
	stats, err := s.proposals.Stats(ctx, eventID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if stats == nil {
		stats = []models.ProposalStats{}
	}
	return stats, nil
}

func (s *ProposalService) ensureOpen(ctx context.Context, eventID string) error {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return mapRepoErr(err)
	}
	if !event.IsCFPOpen(s.now()) {
		return apperror.ErrCFPClosed
	}
	return nil
}

func speakerState(raw string) (string, error) {
	if raw == "" {
		return models.ProposalStateDraft, nil
	}
	state, ok := models.ParseProposalState(raw)
	if !ok || (state != models.ProposalStateDraft && state != models.ProposalStateConfirmed) {
		return "", apperror.New(apperror.ErrCodeValidation, "спикер может сохранить черновик или подать заявку")
	}
	return state, nil
}

func (s *ProposalService) validate(ctx context.Context, eventID string, in ProposalInput) error {
	if err := validation.ValidateProposal(in.Name, in.Description, in.References, in.Difficulty, in.Track); err != nil {
		return validationErr(err)
	}
	if in.FormatID != nil {
		if _, err := s.formats.GetByID(ctx, eventID, *in.FormatID); err != nil {
			return mapRepoErr(err)
		}
	}
	return nil
}

// resolveCospeakers находит соспикеров по email. Неизвестный email даёт 404.
func (s *ProposalService) resolveCospeakers(ctx context.Context, speaker *models.User, emails []string) ([]int, error) {
	wanted := make([]string, 0, len(emails))
	seen := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" || strings.EqualFold(e, speaker.Email) {
			continue
		}
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		wanted = append(wanted, e)
	}
	if len(wanted) == 0 {
		return nil, nil
	}

	users, err := s.users.GetByEmails(ctx, wanted)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	byEmail := make(map[string]int, len(users))
	for _, u := range users {
		byEmail[strings.ToLower(u.Email)] = u.ID
	}

	ids := make([]int, 0, len(wanted))
	for _, e := range wanted {
		id, ok := byEmail[e]
		if !ok {
			return nil, apperror.Wrap(repository.ErrUserNotFound, apperror.ErrCodeNotFound, "соспикер "+e+" не найден")
		}
		if id == speaker.ID {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *ProposalService) notifySubmitted(ctx context.Context, p *models.Proposal, locale string) {
	if err := s.mailer.SendProposalSubmitted(ctx, p, locale); err != nil && !errors.Is(err, context.Canceled) {
		s.log.WithError(err).WithField("proposal_id", p.ID).Warn("не удалось отправить подтверждение подачи")
	}
	s.activity.BroadcastToReviewers("proposal.submitted", map[string]interface{}{"id": p.ID, "name": p.Name})
}
