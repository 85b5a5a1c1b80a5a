package mail

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/ignatzorin/cfp-backend/internal/goroutine"
	"github.com/ignatzorin/cfp-backend/internal/logger"
	"github.com/ignatzorin/cfp-backend/internal/metrics"
)

// ErrQueueFull очередь переполнена, письмо отброшено.
var ErrQueueFull = errors.New("mail queue is full")

// ErrQueueStopped очередь остановлена.
var ErrQueueStopped = errors.New("mail queue is shutting down")

const maxQueueBackoff = 30 * time.Minute

type queueItem struct {
	id        string
	receivers []string
	subject   string
	body      string
	attempt   int
	nextRetry time.Time
}

// Queue асинхронная отправка писем с повторами и ограничением скорости.
type Queue struct {
	sender         Sender
	items          chan *queueItem
	limiter        *rate.Limiter
	maxRetries     int
	initialBackoff time.Duration
	log            *logrus.Entry

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewQueue создаёт очередь. ratePerSecond <= 0 снимает ограничение.
func NewQueue(sender Sender, size, maxRetries int, initialBackoff time.Duration, ratePerSecond float64) *Queue {
	if size <= 0 {
		size = 500
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if initialBackoff <= 0 {
		initialBackoff = 10 * time.Second
	}

	limit := rate.Inf
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Queue{
		sender:         sender,
		items:          make(chan *queueItem, size),
		limiter:        rate.NewLimiter(limit, 1),
		maxRetries:     maxRetries,
		initialBackoff: initialBackoff,
		log:            logger.For("mail_queue"),
		ctx:            ctx,
		cancel:         cancel,
	}
}

// Start запускает фоновый обработчик.
func (q *Queue) Start() {
	q.wg.Add(1)
	goroutine.SafeGo("mail_queue", func() {
		defer q.wg.Done()
		q.worker()
	})
	q.log.Info("обработчик очереди писем запущен")
}

// Enqueue ставит письмо в очередь и возвращает его идентификатор.
func (q *Queue) Enqueue(receivers []string, subject, body string) (string, error) {
	if len(receivers) == 0 {
		metrics.MailDropped.WithLabelValues("no_receivers").Inc()
		return "", fmt.Errorf("mail queue: пустой список получателей")
	}

	select {
	case <-q.ctx.Done():
		metrics.MailDropped.WithLabelValues("stopped").Inc()
		return "", ErrQueueStopped
	default:
	}

	item := &queueItem{
		id:        uuid.NewString(),
		receivers: receivers,
		subject:   subject,
		body:      body,
		nextRetry: time.Now(),
	}

	select {
	case q.items <- item:
		metrics.MailQueueDepth.Set(float64(len(q.items)))
		q.log.WithFields(logrus.Fields{"id": item.id, "receivers": len(receivers), "subject": subject}).Debug("письмо поставлено в очередь")
		return item.id, nil
	default:
		metrics.MailDropped.WithLabelValues("queue_full").Inc()
		q.log.WithField("subject", subject).Error("очередь писем переполнена, письмо отброшено")
		return "", ErrQueueFull
	}
}

func (q *Queue) worker() {
	pending := make([]*queueItem, 0)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-q.ctx.Done():
			q.drain(pending)
			return

		case item := <-q.items:
			metrics.MailQueueDepth.Set(float64(len(q.items)))
			if !q.process(item) {
				pending = append(pending, item)
			}

		case <-ticker.C:
			now := time.Now()
			remaining := pending[:0]
			for _, item := range pending {
				if now.Before(item.nextRetry) || !q.process(item) {
					remaining = append(remaining, item)
				}
			}
			pending = remaining
		}
	}
}

// process возвращает true, если письмо отправлено или попытки исчерпаны.
func (q *Queue) process(item *queueItem) bool {
	if err := q.limiter.Wait(q.ctx); err != nil {
		return false
	}

	item.attempt++
	err := q.sender.Send(item.receivers, item.subject, item.body)
	if err == nil {
		q.log.WithFields(logrus.Fields{"id": item.id, "attempt": item.attempt}).Info("письмо отправлено")
		return true
	}

	if item.attempt >= q.maxRetries {
		metrics.MailDropped.WithLabelValues("retries_exhausted").Inc()
		q.log.WithFields(logrus.Fields{
			"id":       item.id,
			"attempts": item.attempt,
			"subject":  item.subject,
			"error":    err.Error(),
		}).Error("письмо не отправлено после всех попыток")
		return true
	}

	backoff := q.backoff(item.attempt)
	item.nextRetry = time.Now().Add(backoff)
	q.log.WithFields(logrus.Fields{
		"id":      item.id,
		"attempt": item.attempt,
		"retry":   backoff.String(),
		"error":   err.Error(),
	}).Warn("ошибка отправки письма, повтор запланирован")
	return false
}

// backoff растёт вдвое с каждой попыткой, но не дольше maxQueueBackoff.
func (q *Queue) backoff(attempt int) time.Duration {
	d := q.initialBackoff
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= maxQueueBackoff {
			return maxQueueBackoff
		}
	}
	return d
}

// drain при остановке делает последнюю попытку для всего, что осталось.
func (q *Queue) drain(pending []*queueItem) {
	for {
		select {
		case item := <-q.items:
			pending = append(pending, item)
			continue
		default:
		}
		break
	}

	for _, item := range pending {
		item.attempt++
		if err := q.sender.Send(item.receivers, item.subject, item.body); err != nil {
			metrics.MailDropped.WithLabelValues("shutdown").Inc()
			q.log.WithFields(logrus.Fields{"id": item.id, "error": err.Error()}).Error("письмо потеряно при остановке")
		}
	}
	metrics.MailQueueDepth.Set(0)
}

// Stop останавливает очередь и ждёт обработчик не дольше ctx.
func (q *Queue) Stop(ctx context.Context) error {
	q.cancel()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.log.Info("очередь писем остановлена")
		return nil
	case <-ctx.Done():
		q.log.Warn("очередь писем не успела остановиться")
		return ctx.Err()
	}
}

// Length количество писем, ожидающих обработки.
func (q *Queue) Length() int {
	return len(q.items)
}
