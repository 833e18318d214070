package notification

import (
	"context"
	"errors"

	"fitcoach/internal/auth"
	"fitcoach/internal/logger"
	"fitcoach/internal/metrics"
	"fitcoach/internal/user"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Notifier is what other modules depend on to raise in-app notifications.
type Notifier interface {
	Notify(ctx context.Context, userID int, notificationType, title, message string) (*Notification, error)
}

type Service interface {
	Notifier
	List(ctx context.Context, userID int, unreadOnly bool, limit, offset int) ([]Notification, int, error)
	UnreadCount(ctx context.Context, userID int) (int, error)
	MarkRead(ctx context.Context, userID, id int) (*Notification, error)
	MarkAllRead(ctx context.Context, userID int) (int64, error)
	Nudge(ctx context.Context, p auth.Principal, clientID int, message string) (*Notification, error)
}

type service struct {
	repo  Repository
	users user.Finder
}

func NewService(repo Repository, users user.Finder) Service {
	return &service{repo: repo, users: users}
}

func (s *service) Notify(ctx context.Context, userID int, notificationType, title, message string) (*Notification, error) {
	n, err := s.repo.Create(ctx, &Notification{
		UserID:  userID,
		Type:    notificationType,
		Title:   title,
		Message: message,
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordNotification(notificationType)
	return n, nil
}

func (s *service) List(ctx context.Context, userID int, unreadOnly bool, limit, offset int) ([]Notification, int, error) {
	return s.repo.List(ctx, userID, unreadOnly, limit, offset)
}

func (s *service) UnreadCount(ctx context.Context, userID int) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}

func (s *service) MarkRead(ctx context.Context, userID, id int) (*Notification, error) {
	return s.repo.MarkRead(ctx, userID, id)
}

func (s *service) MarkAllRead(ctx context.Context, userID int) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

// Nudge lets an instructor remind one of their own clients.
func (s *service) Nudge(ctx context.Context, p auth.Principal, clientID int, message string) (*Notification, error) {
	if _, err := user.EnsureClientOf(ctx, s.users, p.UserID, clientID); err != nil {
		return nil, err
	}

	n, err := s.Notify(ctx, clientID, TypeNudge, "Your coach sent you a nudge", message)
	if err != nil {
		return nil, err
	}
	logger.Info("client nudged", "instructor_id", p.UserID, "client_id", clientID)
	return n, nil
}
