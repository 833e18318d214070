package program

import "context"

type Repository interface {
	Create(ctx context.Context, p *Program) (*Program, error)
	GetByID(ctx context.Context, id int) (*Program, error)
	Update(ctx context.Context, p *Program) (*Program, error)
	List(ctx context.Context, f ListFilter) ([]Program, int, error)
	IsAssigned(ctx context.Context, id int) (bool, error)
	Archive(ctx context.Context, id int) error
	Delete(ctx context.Context, id int) error
	Duplicate(ctx context.Context, id, instructorID int, name string) (*Program, error)

	ListItems(ctx context.Context, programID int) ([]Item, error)
	GetItem(ctx context.Context, programID, itemID int) (*Item, error)
	AddItems(ctx context.Context, programID int, items []Item) ([]Item, error)
	UpdateItem(ctx context.Context, item *Item) (*Item, error)
	DeleteItem(ctx context.Context, programID, itemID int) error
	ReorderItems(ctx context.Context, programID int, entries []ReorderEntry) error
}
