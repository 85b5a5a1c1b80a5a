package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ProposalsSubmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cfp_proposals_submitted_total",
		Help: "Total number of proposals created or updated, by resulting state",
	}, []string{"event", "state"})
	ProposalStateChanges = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cfp_proposal_state_changes_total",
		Help: "Total number of proposal state changes made by admins",
	}, []string{"event", "state"})
	CommentsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cfp_comments_created_total",
		Help: "Total number of comments posted",
	}, []string{"event", "internal"})
	RatesRecorded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cfp_rates_recorded_total",
		Help: "Total number of reviewer rates recorded",
	}, []string{"event"})
	TalksScheduled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cfp_talks_scheduled_total",
		Help: "Total number of talks given a slot in the schedule",
	}, []string{"event"})

	// Mail metrics
	MailSendSuccess = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cfp_mail_send_success_total",
		Help: "Total number of successful mail sends",
	}, []string{"host"})
	MailSendFailure = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cfp_mail_send_failure_total",
		Help: "Total number of failed mail sends",
	}, []string{"host"})
	MailDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cfp_mail_dropped_total",
		Help: "Total number of mails dropped (queue full, disabled or retries exhausted)",
	}, []string{"reason"})
	MailQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cfp_mail_queue_depth",
		Help: "Number of mails waiting in the queue",
	})

	// Spreadsheet metrics
	SheetRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cfp_sheet_requests_total",
		Help: "Total number of Google Sheets API calls",
	}, []string{"operation", "result"})
	SheetCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cfp_sheet_cache_hits_total",
		Help: "Total number of session rows served from cache",
	})
)

func init() {
	prometheus.MustRegister(ProposalsSubmitted)
	prometheus.MustRegister(ProposalStateChanges)
	prometheus.MustRegister(CommentsCreated)
	prometheus.MustRegister(RatesRecorded)
	prometheus.MustRegister(TalksScheduled)
	prometheus.MustRegister(MailSendSuccess)
	prometheus.MustRegister(MailSendFailure)
	prometheus.MustRegister(MailDropped)
	prometheus.MustRegister(MailQueueDepth)
	prometheus.MustRegister(SheetRequests)
	prometheus.MustRegister(SheetCacheHits)
}

// Handler возвращает http.Handler с метриками Prometheus.
func Handler() http.Handler {
	return promhttp.Handler()
}
