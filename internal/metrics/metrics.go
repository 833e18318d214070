package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitcoach_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fitcoach_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	EventRegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitcoach_event_registrations_total",
			Help: "Event registrations by resulting status",
		},
		[]string{"status"},
	)

	WaitlistPromotionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fitcoach_waitlist_promotions_total",
			Help: "Waitlisted registrations promoted to registered",
		},
	)

	ProgramAssignmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitcoach_program_assignments_total",
			Help: "Programs assigned to clients by source",
		},
		[]string{"source"},
	)

	CustomizationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitcoach_program_customizations_total",
			Help: "Per-client program customizations by kind",
		},
		[]string{"kind"},
	)

	ScheduledOccurrencesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitcoach_scheduled_occurrences_total",
			Help: "Scheduled program occurrences created by mode",
		},
		[]string{"mode"},
	)

	SessionsCompletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fitcoach_sessions_completed_total",
			Help: "Training sessions completed",
		},
	)

	KudosTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fitcoach_kudos_total",
			Help: "Kudos given on sessions",
		},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitcoach_notifications_total",
			Help: "Notifications created by type",
		},
		[]string{"type"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitcoach_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fitcoach_email_queue_length",
			Help: "Current length of email queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordRegistration(status string) {
	EventRegistrationsTotal.WithLabelValues(status).Inc()
}

func RecordWaitlistPromotion() {
	WaitlistPromotionsTotal.Inc()
}

func RecordAssignment(source string) {
	ProgramAssignmentsTotal.WithLabelValues(source).Inc()
}

func RecordCustomization(kind string) {
	CustomizationsTotal.WithLabelValues(kind).Inc()
}

func RecordScheduled(mode string, n int) {
	ScheduledOccurrencesTotal.WithLabelValues(mode).Add(float64(n))
}

func RecordSessionCompleted() {
	SessionsCompletedTotal.Inc()
}

func RecordKudos() {
	KudosTotal.Inc()
}

func RecordNotification(notificationType string) {
	NotificationsTotal.WithLabelValues(notificationType).Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}

func SetEmailQueueLength(n int64) {
	EmailQueueLength.Set(float64(n))
}
