package session

import "context"

type Repository interface {
	Create(ctx context.Context, s *Session, exerciseIDs []int) (*Session, error)
	GetByID(ctx context.Context, id int) (*Session, error)
	List(ctx context.Context, clientID, limit, offset int) ([]Session, int, error)
	ListExercises(ctx context.Context, sessionID int) ([]Exercise, error)
	RecordExercise(ctx context.Context, sessionID, exerciseID int, req RecordExerciseRequest) (*Exercise, error)
	Finish(ctx context.Context, id int, notes *string) error
	CreateKudos(ctx context.Context, k *Kudos) (*Kudos, error)
	ListKudos(ctx context.Context, sessionID int) ([]Kudos, error)
}
