package mail

import (
	"crypto/tls"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/ignatzorin/cfp-backend/internal/config"
	"github.com/ignatzorin/cfp-backend/internal/logger"
	"github.com/ignatzorin/cfp-backend/internal/metrics"
)

const maxSendBackoff = 30 * time.Second

// Sender отправляет одно письмо списку получателей.
type Sender interface {
	Send(receivers []string, subject, body string) error
	GetHost() string
}

type smtpSender struct {
	dialer        *gomail.Dialer
	senderAddress string
	senderName    string
	retryCount    int
	retryBackoff  time.Duration
}

// NewSender создаёт SMTP отправителя с повторами.
func NewSender(cfg config.MailConfig) Sender {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	if cfg.InsecureSkipVerify {
		logger.Log.Warn("mail: проверка TLS сертификата SMTP отключена")
		d.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}

	retryCount := cfg.RetryCount
	if retryCount < 0 {
		retryCount = 0
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = 100 * time.Millisecond
	}

	logger.Log.WithFields(map[string]interface{}{
		"host":        cfg.Host,
		"port":        cfg.Port,
		"retry_count": retryCount,
	}).Info("mail: SMTP отправитель инициализирован")

	return &smtpSender{
		dialer:        d,
		senderAddress: cfg.SenderAddress,
		senderName:    cfg.SenderName,
		retryCount:    retryCount,
		retryBackoff:  backoff,
	}
}

func (s *smtpSender) Send(receivers []string, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", s.senderAddress, s.senderName)
	msg.SetHeader("Bcc", receivers...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	var lastErr error
	backoff := s.retryBackoff

	for attempt := 0; attempt <= s.retryCount; attempt++ {
		err := s.dialer.DialAndSend(msg)
		if err == nil {
			metrics.MailSendSuccess.WithLabelValues(s.GetHost()).Inc()
			return nil
		}

		lastErr = err
		if attempt < s.retryCount {
			logger.Log.WithFields(map[string]interface{}{
				"attempt": attempt + 1,
				"error":   err.Error(),
				"retry":   backoff.String(),
			}).Warn("mail: не удалось отправить письмо, повторяем")
			time.Sleep(backoff)
			backoff *= 2
			if backoff > maxSendBackoff {
				backoff = maxSendBackoff
			}
		}
	}

	metrics.MailSendFailure.WithLabelValues(s.GetHost()).Inc()
	return lastErr
}

func (s *smtpSender) GetHost() string {
	return s.dialer.Host
}
