package clientprogram

import "context"

type Repository interface {
	Create(ctx context.Context, cp *ClientProgram) (*ClientProgram, error)
	GetByID(ctx context.Context, id int) (*ClientProgram, error)
	ListByClient(ctx context.Context, clientID int) ([]ClientProgram, error)
	Update(ctx context.Context, cp *ClientProgram) (*ClientProgram, error)
	Delete(ctx context.Context, id int) error
	Reorder(ctx context.Context, clientID int, ids []int) error

	ListItems(ctx context.Context, clientProgramID int) ([]Item, error)
	UpsertItem(ctx context.Context, item *Item) (*Item, error)
	DeleteItem(ctx context.Context, clientProgramID, exerciseID int) error
	SetItemOrder(ctx context.Context, clientProgramID int, exerciseIDs []int) error
}
