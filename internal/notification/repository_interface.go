package notification

import "context"

type Repository interface {
	Create(ctx context.Context, n *Notification) (*Notification, error)
	List(ctx context.Context, userID int, unreadOnly bool, limit, offset int) ([]Notification, int, error)
	UnreadCount(ctx context.Context, userID int) (int, error)
	MarkRead(ctx context.Context, userID, id int) (*Notification, error)
	MarkAllRead(ctx context.Context, userID int) (int64, error)
}
