package event

import (
	"context"
	"fmt"

	"fitcoach/internal/db"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

const eventColumns = `id, instructor_id, title, description, location, start_date, end_date,
	max_attendees, allow_waitlist, registration_deadline_hours, cancelled_at, created_at`

const registrationColumns = `id, event_id, user_id, status, waitlist_position, registered_at, promoted_at, cancelled_at`

var listColumns = []string{
	"e.id", "e.instructor_id", "e.title", "e.description", "e.location", "e.start_date", "e.end_date",
	"e.max_attendees", "e.allow_waitlist", "e.registration_deadline_hours", "e.cancelled_at", "e.created_at",
	"(SELECT COUNT(*) FROM event_registrations r WHERE r.event_id = e.id AND r.status = 'REGISTERED') AS registered_count",
	"(SELECT COUNT(*) FROM event_registrations r WHERE r.event_id = e.id AND r.status = 'WAITLISTED') AS waitlist_count",
}

type repository struct {
	db *sqlx.DB
	sb squirrel.StatementBuilderType
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *repository) Create(ctx context.Context, e *Event) (*Event, error) {
	var out Event
	err := r.db.GetContext(ctx, &out, `
		INSERT INTO events (instructor_id, title, description, location, start_date, end_date,
		                    max_attendees, allow_waitlist, registration_deadline_hours)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+eventColumns,
		e.InstructorID, e.Title, e.Description, e.Location, e.StartDate, e.EndDate,
		e.MaxAttendees, e.AllowWaitlist, e.RegistrationDeadlineHours)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return &out, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Event, error) {
	query, args, err := r.sb.Select(listColumns...).From("events e").Where(squirrel.Eq{"e.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build event query: %w", err)
	}
	var e Event
	if err := r.db.GetContext(ctx, &e, query, args...); err != nil {
		if db.IsNotFound(err) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &e, nil
}

// List returns one page of events; From restricts it to live events starting at or after that time.
func (r *repository) List(ctx context.Context, f ListFilter) ([]Event, int, error) {
	where := squirrel.And{}
	if f.InstructorID > 0 {
		where = append(where, squirrel.Eq{"e.instructor_id": f.InstructorID})
	}
	if f.From != nil {
		where = append(where, squirrel.GtOrEq{"e.start_date": *f.From}, squirrel.Expr("e.cancelled_at IS NULL"))
	}

	var total int
	countQuery, countArgs, err := r.sb.Select("COUNT(*)").From("events e").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count events query: %w", err)
	}
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	query, args, err := r.sb.Select(listColumns...).From("events e").Where(where).
		OrderBy("e.start_date ASC", "e.id ASC").
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list events query: %w", err)
	}
	events := []Event{}
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	return events, total, nil
}

func (r *repository) Cancel(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE events SET cancelled_at = COALESCE(cancelled_at, NOW()) WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("cancel event: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *repository) GetRegistration(ctx context.Context, eventID, userID int) (*Registration, error) {
	return (&txRepository{q: r.db}).Registration(ctx, eventID, userID)
}

func (r *repository) ListAttendees(ctx context.Context, eventID int) ([]Attendee, error) {
	out := []Attendee{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT r.id, r.event_id, r.user_id, r.status, r.waitlist_position, r.registered_at,
		       r.promoted_at, r.cancelled_at, u.name AS user_name, u.email AS user_email
		FROM event_registrations r
		JOIN users u ON u.id = r.user_id
		WHERE r.event_id = $1 AND r.status <> 'CANCELLED'
		ORDER BY r.status, r.waitlist_position NULLS FIRST, r.registered_at, r.id`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list event registrations: %w", err)
	}
	return out, nil
}

func (r *repository) InEventTx(ctx context.Context, eventID int, fn func(ctx context.Context, tx Tx, e *Event) error) error {
	return db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var e Event
		err := tx.GetContext(ctx, &e, `SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, eventID)
		if err != nil {
			if db.IsNotFound(err) {
				return ErrEventNotFound
			}
			return fmt.Errorf("lock event: %w", err)
		}
		return fn(ctx, &txRepository{q: tx}, &e)
	})
}

type querier interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

type txRepository struct {
	q querier
}

// Registration returns nil without error when the user never registered.
func (t *txRepository) Registration(ctx context.Context, eventID, userID int) (*Registration, error) {
	var reg Registration
	err := t.q.GetContext(ctx, &reg,
		`SELECT `+registrationColumns+` FROM event_registrations WHERE event_id = $1 AND user_id = $2`,
		eventID, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return &reg, nil
}

func (t *txRepository) CountRegistered(ctx context.Context, eventID int) (int, error) {
	var n int
	err := t.q.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM event_registrations WHERE event_id = $1 AND status = $2`,
		eventID, StatusRegistered)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return n, nil
}

// NextWaitPosition is computed over every row of the event so positions never repeat.
func (t *txRepository) NextWaitPosition(ctx context.Context, eventID int) (int, error) {
	var n int
	err := t.q.GetContext(ctx, &n,
		`SELECT COALESCE(MAX(waitlist_position), 0) + 1 FROM event_registrations WHERE event_id = $1`,
		eventID)
	if err != nil {
		return 0, fmt.Errorf("next waitlist position: %w", err)
	}
	return n, nil
}

// SaveRegistration inserts a registration or revives the user's cancelled row.
func (t *txRepository) SaveRegistration(ctx context.Context, reg *Registration) (*Registration, error) {
	var out Registration
	err := t.q.GetContext(ctx, &out, `
		INSERT INTO event_registrations (event_id, user_id, status, waitlist_position)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id, user_id) DO UPDATE
		SET status = EXCLUDED.status,
		    waitlist_position = EXCLUDED.waitlist_position,
		    registered_at = NOW(),
		    promoted_at = NULL,
		    cancelled_at = NULL
		RETURNING `+registrationColumns,
		reg.EventID, reg.UserID, reg.Status, reg.WaitlistPosition)
	if err != nil {
		return nil, fmt.Errorf("save registration: %w", err)
	}
	return &out, nil
}

func (t *txRepository) FirstWaitlisted(ctx context.Context, eventID int) (*Registration, error) {
	var reg Registration
	err := t.q.GetContext(ctx, &reg, `
		SELECT `+registrationColumns+` FROM event_registrations
		WHERE event_id = $1 AND status = $2
		ORDER BY waitlist_position, id
		LIMIT 1`, eventID, StatusWaitlisted)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("first waitlisted: %w", err)
	}
	return &reg, nil
}

func (t *txRepository) CancelRegistration(ctx context.Context, id int) error {
	_, err := t.q.ExecContext(ctx,
		`UPDATE event_registrations SET status = $2, cancelled_at = NOW() WHERE id = $1`,
		id, StatusCancelled)
	if err != nil {
		return fmt.Errorf("cancel registration: %w", err)
	}
	return nil
}

func (t *txRepository) Promote(ctx context.Context, id int) (*Registration, error) {
	var reg Registration
	err := t.q.GetContext(ctx, &reg, `
		UPDATE event_registrations SET status = $2, promoted_at = NOW()
		WHERE id = $1
		RETURNING `+registrationColumns, id, StatusRegistered)
	if err != nil {
		return nil, fmt.Errorf("promote registration: %w", err)
	}
	return &reg, nil
}

func (t *txRepository) UpdateEvent(ctx context.Context, e *Event) (*Event, error) {
	var out Event
	err := t.q.GetContext(ctx, &out, `
		UPDATE events
		SET title = $2, description = $3, location = $4, start_date = $5, end_date = $6,
		    max_attendees = $7, allow_waitlist = $8, registration_deadline_hours = $9
		WHERE id = $1
		RETURNING `+eventColumns,
		e.ID, e.Title, e.Description, e.Location, e.StartDate, e.EndDate,
		e.MaxAttendees, e.AllowWaitlist, e.RegistrationDeadlineHours)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return &out, nil
}
