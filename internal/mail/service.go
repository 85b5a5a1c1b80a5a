package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/cfp-backend/internal/logger"
	"github.com/ignatzorin/cfp-backend/internal/metrics"
	"github.com/ignatzorin/cfp-backend/internal/models"
)

const mailDateLayout = "02/01/2006 15:04"

// Enqueuer принимает готовое письмо на отправку.
type Enqueuer interface {
	Enqueue(receivers []string, subject, body string) (string, error)
}

// AdminDirectory отдаёт получателей писем администраторам.
type AdminDirectory interface {
	ListByRoles(ctx context.Context, roles ...string) ([]*models.User, error)
}

// EmailingService собирает письма из шаблонов и кладёт их в очередь.
type EmailingService struct {
	templates *Templates
	queue     Enqueuer
	admins    AdminDirectory
	appURL    string
	enabled   bool
	log       *logrus.Entry
}

// NewEmailingService создаёт сервис. При enabled=false письма только логируются.
func NewEmailingService(templates *Templates, queue Enqueuer, admins AdminDirectory, appURL string, enabled bool) *EmailingService {
	return &EmailingService{
		templates: templates,
		queue:     queue,
		admins:    admins,
		appURL:    strings.TrimRight(appURL, "/"),
		enabled:   enabled,
		log:       logger.For("emailing"),
	}
}

// SendNewCommentToAdmins уведомляет администраторов, кроме самого автора.
func (s *EmailingService) SendNewCommentToAdmins(ctx context.Context, author *models.User, talk *models.Proposal, comment string, internal bool) error {
	admins, err := s.admins.ListByRoles(ctx, models.RoleAdmin, models.RoleOwner)
	if err != nil {
		return fmt.Errorf("emailing: список администраторов: %w", err)
	}

	receivers := make([]string, 0, len(admins))
	for _, a := range admins {
		if author != nil && a.ID == author.ID {
			continue
		}
		receivers = append(receivers, a.Email)
	}

	return s.send(ctx, "", TemplateCommentAdmins, receivers, MailData{
		Talk:     talk,
		Author:   author,
		Comment:  comment,
		Internal: internal,
	})
}

// SendNewCommentToSpeaker уведомляет спикера о публичном комментарии комитета.
func (s *EmailingService) SendNewCommentToSpeaker(ctx context.Context, speaker *models.User, talk *models.Proposal, comment string) error {
	if speaker == nil {
		return fmt.Errorf("emailing: у заявки %d нет спикера", talk.ID)
	}
	return s.send(ctx, speaker.Language, TemplateCommentSpeaker, []string{speaker.Email}, MailData{
		Talk:      talk,
		Recipient: speaker,
		Comment:   comment,
	})
}

// SendSelected сообщает спикерам, что доклад принят.
func (s *EmailingService) SendSelected(ctx context.Context, talk *models.Proposal, locale string) error {
	return s.send(ctx, locale, TemplateSelected, speakerEmails(talk), s.talkData(talk))
}

// SendNotSelected сообщает спикерам об отказе.
func (s *EmailingService) SendNotSelected(ctx context.Context, talk *models.Proposal, locale string) error {
	return s.send(ctx, locale, TemplateNotSelected, speakerEmails(talk), s.talkData(talk))
}

// SendProposalSubmitted подтверждает получение заявки.
func (s *EmailingService) SendProposalSubmitted(ctx context.Context, talk *models.Proposal, locale string) error {
	return s.send(ctx, locale, TemplateSubmitted, speakerEmails(talk), s.talkData(talk))
}

func (s *EmailingService) talkData(talk *models.Proposal) MailData {
	data := MailData{
		Talk:     talk,
		Speakers: talk.SpeakerNames(),
	}
	if talk.ScheduleStart != nil {
		data.Start = talk.ScheduleStart.Format(mailDateLayout)
	}
	if talk.ScheduleEnd != nil {
		data.End = talk.ScheduleEnd.Format(mailDateLayout)
	}
	return data
}

func (s *EmailingService) send(ctx context.Context, locale, template string, receivers []string, data MailData) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(receivers) == 0 {
		s.log.WithField("template", template).Debug("нет получателей, письмо пропущено")
		return nil
	}
	if data.Talk != nil {
		data.ProposalURL = fmt.Sprintf("%s/proposals/%d", s.appURL, data.Talk.ID)
	}

	rendered, err := s.templates.Render(locale, template, data)
	if err != nil {
		return err
	}

	if !s.enabled {
		metrics.MailDropped.WithLabelValues("disabled").Inc()
		s.log.WithFields(logrus.Fields{
			"template":  template,
			"receivers": receivers,
			"subject":   rendered.Subject,
		}).Info("отправка писем выключена, письмо не отправлено")
		return nil
	}

	id, err := s.queue.Enqueue(receivers, rendered.Subject, rendered.Body)
	if err != nil {
		return fmt.Errorf("emailing: %s: %w", template, err)
	}
	s.log.WithFields(logrus.Fields{"template": template, "id": id, "receivers": len(receivers)}).Debug("письмо поставлено в очередь")
	return nil
}

// speakerEmails адреса спикера и соспикеров без повторов.
func speakerEmails(talk *models.Proposal) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(talk.Cospeakers)+1)
	add := func(u *models.User) {
		if u == nil || u.Email == "" {
			return
		}
		key := strings.ToLower(u.Email)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, u.Email)
	}
	add(talk.Speaker)
	for _, c := range talk.Cospeakers {
		add(c)
	}
	return out
}
