package schedule

import (
	"context"
	"time"
)

type Repository interface {
	CreateMany(ctx context.Context, clientProgramID int, dates []time.Time) ([]ScheduledProgram, error)
	GetByID(ctx context.Context, id int) (*ScheduledProgram, error)
	List(ctx context.Context, f ListFilter) ([]ScheduledProgram, error)
	SetCompleted(ctx context.Context, id int, completed bool) (*ScheduledProgram, error)
	UpdateNotes(ctx context.Context, id int, notes *string) (*ScheduledProgram, error)
	Delete(ctx context.Context, id int) error
	CompleteOn(ctx context.Context, clientProgramID int, date time.Time) (int64, error)
}
