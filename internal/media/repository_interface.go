package media

import "context"

type Repository interface {
	Create(ctx context.Context, m *Media) (*Media, error)
	GetByID(ctx context.Context, id int) (*Media, error)
	List(ctx context.Context, f ListFilter) ([]Media, int, error)
	Delete(ctx context.Context, id int) error
}
