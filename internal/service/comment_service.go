package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/cfp-backend/internal/logger"
	"github.com/ignatzorin/cfp-backend/internal/metrics"
	"github.com/ignatzorin/cfp-backend/internal/models"
	"github.com/ignatzorin/cfp-backend/internal/pkg/apperror"
	"github.com/ignatzorin/cfp-backend/internal/validation"
)

// CommentInput текст комментария и флаг внутреннего обсуждения.
type CommentInput struct {
	Comment  string
	Internal bool
}

// CommentService переписка спикеров и ревьюеров по заявке.
type CommentService struct {
	comments  CommentRepository
	proposals ProposalRepository
	mailer    Mailer
	activity  ActivityPublisher
	log       *logrus.Entry
}

func NewCommentService(comments CommentRepository, proposals ProposalRepository, mailer Mailer, activity ActivityPublisher) *CommentService {
	if activity == nil {
		activity = noopPublisher{}
	}
	return &CommentService{
		comments:  comments,
		proposals: proposals,
		mailer:    mailer,
		activity:  activity,
		log:       logger.For("comments"),
	}
}

// List: спикеры видят только публичные комментарии, ревьюеры все.
func (s *CommentService) List(ctx context.Context, actor *models.User, eventID string, proposalID int) ([]models.Comment, error) {
	if actor == nil {
		return nil, apperror.ErrUnauthorized
	}
	talk, err := loadProposal(ctx, s.proposals, eventID, proposalID)
	if err != nil {
		return nil, err
	}

	var includeInternal bool
	switch {
	case actor.IsReviewer():
		includeInternal = true
	case talk.IsSpeaker(actor.ID):
		includeInternal = false
	default:
		return nil, apperror.ErrForbidden
	}

	list, err := s.comments.ListByProposal(ctx, eventID, proposalID, includeInternal)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if list == nil {
		list = []models.Comment{}
	}
	return list, nil
}

// Create добавляет комментарий. Внутренние комментарии доступны только ревьюерам.
func (s *CommentService) Create(ctx context.Context, actor *models.User, eventID string, proposalID int, in CommentInput) (*models.Comment, error) {
	if actor == nil {
		return nil, apperror.ErrUnauthorized
	}
	talk, err := loadProposal(ctx, s.proposals, eventID, proposalID)
	if err != nil {
		return nil, err
	}
	if !canAccess(actor, talk) {
		return nil, apperror.ErrForbidden
	}
	if err := validation.ValidateComment(in.Comment); err != nil {
		return nil, validationErr(err)
	}

	c := &models.Comment{
		EventID:    eventID,
		ProposalID: proposalID,
		UserID:     actor.ID,
		Comment:    strings.TrimSpace(in.Comment),
		Internal:   in.Internal && actor.IsReviewer(),
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, mapRepoErr(err)
	}
	summary := actor.Summary()
	c.User = &summary

	metrics.CommentsCreated.WithLabelValues(eventID, strconv.FormatBool(c.Internal)).Inc()
	s.notify(ctx, actor, talk, c)
	s.activity.BroadcastToReviewers("comment.created", map[string]interface{}{
		"id":         c.ID,
		"proposalId": proposalID,
		"internal":   c.Internal,
	})
	return c, nil
}

// Update правит комментарий; доступно только автору.
func (s *CommentService) Update(ctx context.Context, actor *models.User, eventID string, proposalID, id int, in CommentInput) (*models.Comment, error) {
	if actor == nil {
		return nil, apperror.ErrUnauthorized
	}
	talk, err := loadProposal(ctx, s.proposals, eventID, proposalID)
	if err != nil {
		return nil, err
	}
	if !canAccess(actor, talk) {
		return nil, apperror.ErrForbidden
	}
	current, err := s.ownComment(ctx, actor, eventID, proposalID, id)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateComment(in.Comment); err != nil {
		return nil, validationErr(err)
	}

	current.Comment = strings.TrimSpace(in.Comment)
	current.Internal = in.Internal && actor.IsReviewer()
	if err := s.comments.Update(ctx, current); err != nil {
		return nil, mapRepoErr(err)
	}

	s.notify(ctx, actor, talk, current)
	return current, nil
}

// Delete удаляет комментарий; доступно только автору.
func (s *CommentService) Delete(ctx context.Context, actor *models.User, eventID string, proposalID, id int) error {
	if actor == nil {
		return apperror.ErrUnauthorized
	}
	talk, err := loadProposal(ctx, s.proposals, eventID, proposalID)
	if err != nil {
		return err
	}
	if !canAccess(actor, talk) {
		return apperror.ErrForbidden
	}
	if _, err := s.ownComment(ctx, actor, eventID, proposalID, id); err != nil {
		return err
	}
	return mapRepoErr(s.comments.Delete(ctx, eventID, id))
}

func (s *CommentService) ownComment(ctx context.Context, actor *models.User, eventID string, proposalID, id int) (*models.Comment, error) {
	c, err := s.comments.GetByID(ctx, eventID, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if c.ProposalID != proposalID {
		return nil, apperror.ErrCommentNotFound
	}
	if c.UserID != actor.ID {
		return nil, apperror.ErrForbidden
	}
	return c, nil
}

// notify: внутренний комментарий и сообщение спикера уходят администраторам,
// публичный ответ ревьюера уходит спикеру.
func (s *CommentService) notify(ctx context.Context, author *models.User, talk *models.Proposal, c *models.Comment) {
	var err error
	switch {
	case c.Internal:
		err = s.mailer.SendNewCommentToAdmins(ctx, author, talk, c.Comment, true)
	case talk.IsSpeaker(author.ID):
		err = s.mailer.SendNewCommentToAdmins(ctx, author, talk, c.Comment, false)
	case author.IsReviewer() && talk.Speaker != nil:
		err = s.mailer.SendNewCommentToSpeaker(ctx, talk.Speaker, talk, c.Comment)
	}
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"proposal_id": talk.ID,
			"comment_id":  c.ID,
		}).Warn("не удалось отправить уведомление о комментарии")
	}
}
