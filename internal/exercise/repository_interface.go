package exercise

import "context"

type Repository interface {
	Create(ctx context.Context, e *Exercise) (*Exercise, error)
	GetByID(ctx context.Context, id int) (*Exercise, error)
	GetByIDs(ctx context.Context, ids []int) ([]Exercise, error)
	Update(ctx context.Context, e *Exercise) (*Exercise, error)
	List(ctx context.Context, f ListFilter) ([]Exercise, int, error)
	IsReferenced(ctx context.Context, id int) (bool, error)
	Archive(ctx context.Context, id int) error
	Delete(ctx context.Context, id int) error
}
