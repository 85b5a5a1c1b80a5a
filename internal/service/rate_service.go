package service

import (
	"context"
	"errors"

	"github.com/ignatzorin/cfp-backend/internal/metrics"
	"github.com/ignatzorin/cfp-backend/internal/models"
	"github.com/ignatzorin/cfp-backend/internal/pkg/apperror"
	"github.com/ignatzorin/cfp-backend/internal/repository/common"
	"github.com/ignatzorin/cfp-backend/internal/validation"
)

// RateInput оценка ревьюера.
type RateInput struct {
	Rate int
	Love bool
	Hate bool
}

// RateService оценки заявок. Доступен только ревьюерам.
type RateService struct {
	rates     RateRepository
	proposals ProposalRepository
	activity  ActivityPublisher
}

func NewRateService(rates RateRepository, proposals ProposalRepository, activity ActivityPublisher) *RateService {
	if activity == nil {
		activity = noopPublisher{}
	}
	return &RateService{rates: rates, proposals: proposals, activity: activity}
}

// List оценки заявки вместе с авторами.
func (s *RateService) List(ctx context.Context, actor *models.User, eventID string, proposalID int) ([]models.RateAdmin, error) {
	if !actor.IsReviewer() {
		return nil, apperror.ErrForbidden
	}
	if _, err := loadProposal(ctx, s.proposals, eventID, proposalID); err != nil {
		return nil, err
	}
	list, err := s.rates.ListByProposal(ctx, eventID, proposalID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if list == nil {
		list = []models.RateAdmin{}
	}
	return list, nil
}

// Mine оценка текущего ревьюера или 404.
func (s *RateService) Mine(ctx context.Context, actor *models.User, eventID string, proposalID int) (*models.Rate, error) {
	if !actor.IsReviewer() {
		return nil, apperror.ErrForbidden
	}
	rate, err := s.rates.GetByProposalAndUser(ctx, eventID, proposalID, actor.ID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return rate, nil
}

// Create ставит оценку. Свою заявку оценить нельзя, повторная оценка даёт 409.
func (s *RateService) Create(ctx context.Context, actor *models.User, eventID string, proposalID int, in RateInput) (*models.Rate, error) {
	if !actor.IsReviewer() {
		return nil, apperror.ErrForbidden
	}
	talk, err := loadProposal(ctx, s.proposals, eventID, proposalID)
	if err != nil {
		return nil, err
	}
	if talk.IsSpeaker(actor.ID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "нельзя оценивать собственную заявку")
	}
	if err := validation.ValidateRate(in.Rate, models.RateMin, models.RateMax, in.Love, in.Hate); err != nil {
		return nil, validationErr(err)
	}

	rate := &models.Rate{
		EventID:    eventID,
		ProposalID: proposalID,
		UserID:     actor.ID,
		Rate:       in.Rate,
		Love:       in.Love,
		Hate:       in.Hate,
	}
	if err := s.rates.Create(ctx, rate); err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, apperror.ErrRateExists
		}
		return nil, mapRepoErr(err)
	}

	metrics.RatesRecorded.WithLabelValues(eventID).Inc()
	s.activity.BroadcastToReviewers("rate.created", map[string]interface{}{
		"proposalId": proposalID,
		"userId":     actor.ID,
	})
	return rate, nil
}

// Update меняет оценку; доступно только автору.
func (s *RateService) Update(ctx context.Context, actor *models.User, eventID string, id int, in RateInput) (*models.Rate, error) {
	rate, err := s.ownRate(ctx, actor, eventID, id)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateRate(in.Rate, models.RateMin, models.RateMax, in.Love, in.Hate); err != nil {
		return nil, validationErr(err)
	}
	rate.Rate = in.Rate
	rate.Love = in.Love
	rate.Hate = in.Hate
	if err := s.rates.Update(ctx, rate); err != nil {
		return nil, mapRepoErr(err)
	}
	return rate, nil
}

// Delete удаляет оценку; доступно только автору.
func (s *RateService) Delete(ctx context.Context, actor *models.User, eventID string, id int) error {
	if _, err := s.ownRate(ctx, actor, eventID, id); err != nil {
		return err
	}
	return mapRepoErr(s.rates.Delete(ctx, eventID, id))
}

func (s *RateService) ownRate(ctx context.Context, actor *models.User, eventID string, id int) (*models.Rate, error) {
	if !actor.IsReviewer() {
		return nil, apperror.ErrForbidden
	}
	rate, err := s.rates.GetByID(ctx, eventID, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if rate.UserID != actor.ID {
		return nil, apperror.ErrForbidden
	}
	return rate, nil
}
