package notification

import (
	"context"
	"fmt"

	"fitcoach/internal/db"

	"github.com/jmoiron/sqlx"
)

const notificationColumns = `id, user_id, type, title, message, read_at, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, n *Notification) (*Notification, error) {
	query := `
		INSERT INTO notifications (user_id, type, title, message)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + notificationColumns

	var out Notification
	if err := r.db.GetContext(ctx, &out, query, n.UserID, n.Type, n.Title, n.Message); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	return &out, nil
}

func (r *repository) List(ctx context.Context, userID int, unreadOnly bool, limit, offset int) ([]Notification, int, error) {
	filter := `WHERE user_id = $1`
	if unreadOnly {
		filter += ` AND read_at IS NULL`
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM notifications `+filter, userID); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	out := []Notification{}
	query := `SELECT ` + notificationColumns + ` FROM notifications ` + filter +
		` ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &out, query, userID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	return out, total, nil
}

func (r *repository) UnreadCount(ctx context.Context, userID int) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read_at IS NULL`, userID)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return n, nil
}

// MarkRead keeps the first read timestamp when called twice.
func (r *repository) MarkRead(ctx context.Context, userID, id int) (*Notification, error) {
	query := `
		UPDATE notifications SET read_at = COALESCE(read_at, NOW())
		WHERE id = $1 AND user_id = $2
		RETURNING ` + notificationColumns

	var out Notification
	if err := r.db.GetContext(ctx, &out, query, id, userID); err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	return &out, nil
}

func (r *repository) MarkAllRead(ctx context.Context, userID int) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read_at = NOW() WHERE user_id = $1 AND read_at IS NULL`, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return result.RowsAffected()
}
