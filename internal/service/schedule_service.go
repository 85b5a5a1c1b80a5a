package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ignatzorin/cfp-backend/internal/logger"
	"github.com/ignatzorin/cfp-backend/internal/metrics"
	"github.com/ignatzorin/cfp-backend/internal/models"
	"github.com/ignatzorin/cfp-backend/internal/pkg/apperror"
	"github.com/ignatzorin/cfp-backend/internal/validation"
)

// mailFanOut сколько писем ставится в очередь параллельно.
const mailFanOut = 4

// schedulableStates доклады, которые можно поставить в программу.
var schedulableStates = []string{
	models.ProposalStateAccepted,
	models.ProposalStateConfirmed,
	models.ProposalStateRefused,
}

// ScheduleService программа конференции.
type ScheduleService struct {
	proposals    ProposalRepository
	mailer       Mailer
	mediaBaseURL string
	log          *logrus.Entry
}

func NewScheduleService(proposals ProposalRepository, mailer Mailer, mediaBaseURL string) *ScheduleService {
	return &ScheduleService{
		proposals:    proposals,
		mailer:       mailer,
		mediaBaseURL: mediaBaseURL,
		log:          logger.For("schedule"),
	}
}

func parseScheduleState(raw string) (string, error) {
	state, ok := models.ParseProposalState(raw)
	if !ok {
		return "", apperror.New(apperror.ErrCodeValidation, "неизвестное состояние "+raw)
	}
	return state, nil
}

// List доклады в состоянии state в виде программы.
func (s *ScheduleService) List(ctx context.Context, eventID, rawState string) ([]models.Schedule, error) {
	state, err := parseScheduleState(rawState)
	if err != nil {
		return nil, err
	}
	talks, err := s.proposals.ListByEvent(ctx, eventID, []string{state})
	if err != nil {
		return nil, mapRepoErr(err)
	}
	out := make([]models.Schedule, 0, len(talks))
	for _, t := range talks {
		out = append(out, models.NewSchedule(t))
	}
	return out, nil
}

// Speakers основные спикеры докладов в состоянии state, без повторов.
func (s *ScheduleService) Speakers(ctx context.Context, eventID, rawState string) ([]models.UserProfile, error) {
	state, err := parseScheduleState(rawState)
	if err != nil {
		return nil, err
	}
	talks, err := s.proposals.ListByEvent(ctx, eventID, []string{state})
	if err != nil {
		return nil, mapRepoErr(err)
	}

	seen := make(map[int]struct{}, len(talks))
	out := make([]models.UserProfile, 0, len(talks))
	for _, t := range talks {
		if t.Speaker == nil {
			continue
		}
		if _, dup := seen[t.Speaker.ID]; dup {
			continue
		}
		seen[t.Speaker.ID] = struct{}{}
		out = append(out, t.Speaker.Profile(s.mediaBaseURL))
	}
	return out, nil
}

// Update ставит доклады в программу. Каждый id должен быть среди принятых,
// подтверждённых или отклонённых докладов мероприятия.
func (s *ScheduleService) Update(ctx context.Context, eventID string, items []models.Schedule, sendMail bool, locale string) ([]models.Schedule, error) {
	talks, err := s.proposals.ListByEvent(ctx, eventID, schedulableStates)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	byID := make(map[int]*models.Proposal, len(talks))
	for _, t := range talks {
		byID[t.ID] = t
	}

	updated := make([]*models.Proposal, 0, len(items))
	scheduled := make(map[int]struct{}, len(items))
	for _, item := range items {
		talk, ok := byID[item.ID]
		if !ok {
			return nil, apperror.New(apperror.ErrCodeNotFound, fmt.Sprintf("доклад %d не найден среди отобранных", item.ID))
		}
		if item.EventStart == nil {
			return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("доклад %d: не указано время начала", item.ID))
		}
		if err := validation.ValidateVenue(item.Venue); err != nil {
			return nil, validationErr(err)
		}

		start := item.EventStart.Time
		end := scheduleEnd(talk, start, item.EventEnd)
		if end != nil && end.Before(start) {
			return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("доклад %d: окончание раньше начала", item.ID))
		}

		talk.ScheduleStart = &start
		talk.ScheduleEnd = end
		talk.Room = item.Venue
		talk.State = models.ProposalStateConfirmed
		updated = append(updated, talk)
		scheduled[talk.ID] = struct{}{}
	}

	if len(updated) > 0 {
		if err := s.proposals.UpdateSchedules(ctx, updated); err != nil {
			return nil, mapRepoErr(err)
		}
		metrics.TalksScheduled.WithLabelValues(eventID).Add(float64(len(updated)))
	}

	if sendMail {
		var refused []*models.Proposal
		for _, t := range talks {
			if _, ok := scheduled[t.ID]; !ok && t.State == models.ProposalStateRefused {
				refused = append(refused, t)
			}
		}
		s.fanOut(ctx, updated, locale, s.mailer.SendSelected)
		s.fanOut(ctx, refused, locale, s.mailer.SendNotSelected)
	}

	out := make([]models.Schedule, 0, len(updated))
	for _, t := range updated {
		out = append(out, models.NewSchedule(t))
	}
	return out, nil
}

// Notify рассылает письмо об отборе всем принятым докладам. Возвращает число докладов.
func (s *ScheduleService) Notify(ctx context.Context, eventID, locale string) (int, error) {
	talks, err := s.proposals.ListByEvent(ctx, eventID, []string{models.ProposalStateAccepted})
	if err != nil {
		return 0, mapRepoErr(err)
	}
	s.fanOut(ctx, talks, locale, s.mailer.SendSelected)
	return len(talks), nil
}

// scheduleEnd: явное окончание, иначе начало плюс длительность формата.
func scheduleEnd(talk *models.Proposal, start time.Time, explicit *models.LocalDateTime) *time.Time {
	if explicit != nil {
		end := explicit.Time
		return &end
	}
	if talk.Format != nil && talk.Format.Duration > 0 {
		end := start.Add(time.Duration(talk.Format.Duration) * time.Minute)
		return &end
	}
	return nil
}

// fanOut ставит письма в очередь параллельно. Ошибки отправки только логируются.
func (s *ScheduleService) fanOut(ctx context.Context, talks []*models.Proposal, locale string, send func(context.Context, *models.Proposal, string) error) {
	if len(talks) == 0 {
		return
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(mailFanOut)
	for _, talk := range talks {
		talk := talk
		g.Go(func() error {
			if err := send(gctx, talk, locale); err != nil {
				s.log.WithError(err).WithField("proposal_id", talk.ID).Warn("не удалось отправить письмо по программе")
			}
			return nil
		})
	}
	_ = g.Wait()
}
