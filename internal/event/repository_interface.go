package event

import "context"

type Repository interface {
	Create(ctx context.Context, e *Event) (*Event, error)
	GetByID(ctx context.Context, id int) (*Event, error)
	List(ctx context.Context, f ListFilter) ([]Event, int, error)
	Cancel(ctx context.Context, id int) error
	GetRegistration(ctx context.Context, eventID, userID int) (*Registration, error)
	ListAttendees(ctx context.Context, eventID int) ([]Attendee, error)
	// InEventTx runs fn in a transaction holding a row lock on the event.
	InEventTx(ctx context.Context, eventID int, fn func(ctx context.Context, tx Tx, e *Event) error) error
}

// Tx is the set of queries available while an event row is locked.
type Tx interface {
	Registration(ctx context.Context, eventID, userID int) (*Registration, error)
	CountRegistered(ctx context.Context, eventID int) (int, error)
	NextWaitPosition(ctx context.Context, eventID int) (int, error)
	SaveRegistration(ctx context.Context, r *Registration) (*Registration, error)
	FirstWaitlisted(ctx context.Context, eventID int) (*Registration, error)
	CancelRegistration(ctx context.Context, id int) error
	Promote(ctx context.Context, id int) (*Registration, error)
	UpdateEvent(ctx context.Context, e *Event) (*Event, error)
}
