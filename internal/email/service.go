package email

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"fitcoach/internal/logger"
	"fitcoach/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	queueKey   = "emails"
	failedKey  = "emails:failed"
	maxTries   = 3
	popTimeout = 2 * time.Second
	timeLayout = "Mon Jan 2, 2006 at 15:04"
)

type Job struct {
	Type    string    `json:"type"`
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

type Service struct {
	redis    *redis.Client
	from     string
	fromName string
	smtpHost string
	smtpPort string
	smtpUser string
	smtpPass string

	deliver    func(Job) error
	retryDelay time.Duration
}

func New(fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass, redisAddr string) *Service {
	s := &Service{
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
		}),
		from:       fromEmail,
		fromName:   fromName,
		smtpHost:   smtpHost,
		smtpPort:   smtpPort,
		smtpUser:   smtpUser,
		smtpPass:   smtpPass,
		retryDelay: 5 * time.Second,
	}
	s.deliver = s.sendSMTP
	return s
}

// Send queues a plain message.
func (s *Service) Send(ctx context.Context, to, name, subject, body string) error {
	return s.enqueue(ctx, Job{Type: "generic", To: to, Name: name, Subject: subject, Body: body})
}

func (s *Service) enqueue(ctx context.Context, job Job) error {
	job.Created = time.Now()

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal email job: %w", err)
	}

	if err := s.redis.LPush(ctx, queueKey, string(data)).Err(); err != nil {
		metrics.RecordEmail(job.Type, "queue_failed")
		logger.Error("failed to queue email", "to", job.To, "type", job.Type, "error", err)
		return err
	}

	metrics.RecordEmail(job.Type, "queued")
	logger.Info("email queued", "to", job.To, "type", job.Type)
	return nil
}

// Start consumes the queue until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	logger.Info("email worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("email worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, popTimeout, queueKey).Result()
	if err != nil {
		return
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Error("dropping malformed email job", "error", err)
		return
	}

	job.Tries++
	if err := s.deliver(job); err != nil {
		logger.Error("email delivery failed", "to", job.To, "attempt", job.Tries, "error", err)

		if job.Tries < maxTries {
			s.requeue(ctx, job)
		} else {
			s.saveFailed(ctx, job, err)
		}
		return
	}

	metrics.RecordEmail(job.Type, "sent")
	logger.Info("email sent", "to", job.To, "type", job.Type)
}

func (s *Service) requeue(ctx context.Context, job Job) {
	if s.retryDelay > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(s.retryDelay):
		}
	}
	data, _ := json.Marshal(job)
	s.redis.LPush(context.WithoutCancel(ctx), queueKey, string(data))
}

func (s *Service) sendSMTP(job Job) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.fromName, s.from)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.smtpUser != "" && s.smtpPass != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPass, s.smtpHost)
	}

	return smtp.SendMail(s.smtpHost+":"+s.smtpPort, auth, s.from, []string{job.To}, []byte(message))
}

func (s *Service) saveFailed(ctx context.Context, job Job, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.WithoutCancel(ctx), failedKey, string(data))
	metrics.RecordEmail(job.Type, "failed")
	logger.Error("email moved to failed queue", "to", job.To, "type", job.Type)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	metrics.SetEmailQueueLength(length)
	return length
}

func (s *Service) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}

func (s *Service) Close() error {
	return s.redis.Close()
}

func (s *Service) SendRegistrationConfirmation(ctx context.Context, to, name, eventTitle string, start time.Time) error {
	body := fmt.Sprintf(`Hi %s,

You are registered for %s.

Starts: %s

See you there!

- FitCoach`, name, eventTitle, start.Format(timeLayout))

	return s.enqueue(ctx, Job{
		Type:    "event_registered",
		To:      to,
		Name:    name,
		Subject: "You're in: " + eventTitle,
		Body:    body,
	})
}

func (s *Service) SendWaitlisted(ctx context.Context, to, name, eventTitle string, position int) error {
	body := fmt.Sprintf(`Hi %s,

%s is full, so you have been placed on the waitlist (position %d).
We will let you know as soon as a spot opens up.

- FitCoach`, name, eventTitle, position)

	return s.enqueue(ctx, Job{
		Type:    "event_waitlisted",
		To:      to,
		Name:    name,
		Subject: "Waitlisted: " + eventTitle,
		Body:    body,
	})
}

func (s *Service) SendWaitlistPromotion(ctx context.Context, to, name, eventTitle string, start time.Time) error {
	body := fmt.Sprintf(`Hi %s,

Good news: a spot opened up and you are now registered for %s.

Starts: %s

- FitCoach`, name, eventTitle, start.Format(timeLayout))

	return s.enqueue(ctx, Job{
		Type:    "waitlist_promotion",
		To:      to,
		Name:    name,
		Subject: "A spot opened up: " + eventTitle,
		Body:    body,
	})
}
