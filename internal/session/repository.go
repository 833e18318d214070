package session

import (
	"context"
	"fmt"

	"fitcoach/internal/db"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

var sessionColumns = []string{
	"s.id", "s.client_program_id", "s.client_id", "p.name AS program_name",
	"s.status", "s.notes", "s.started_at", "s.finished_at",
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

func (r *repository) base() squirrel.SelectBuilder {
	return r.sb.Select(sessionColumns...).
		From("sessions s").
		Join("client_programs cp ON cp.id = s.client_program_id").
		Join("programs p ON p.id = cp.program_id")
}

// Create inserts the session and one row per seeded exercise in list order.
func (r *repository) Create(ctx context.Context, s *Session, exerciseIDs []int) (*Session, error) {
	var id int
	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &id, `
			INSERT INTO sessions (client_program_id, client_id, status)
			VALUES ($1, $2, $3)
			RETURNING id`,
			s.ClientProgramID, s.ClientID, StatusInProgress)
		if err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		for i, exerciseID := range exerciseIDs {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO session_exercises (session_id, exercise_id, position)
				VALUES ($1, $2, $3)`, id, exerciseID, i); err != nil {
				return fmt.Errorf("seed session exercise: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *repository) GetByID(ctx context.Context, id int) (*Session, error) {
	query, args, err := r.base().Where(squirrel.Eq{"s.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build session query: %w", err)
	}
	var s Session
	if err := r.db.GetContext(ctx, &s, query, args...); err != nil {
		if db.IsNotFound(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

func (r *repository) List(ctx context.Context, clientID, limit, offset int) ([]Session, int, error) {
	var total int
	countQuery, countArgs, err := r.sb.Select("COUNT(*)").From("sessions").Where(squirrel.Eq{"client_id": clientID}).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count sessions query: %w", err)
	}
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}

	query, args, err := r.base().
		Where(squirrel.Eq{"s.client_id": clientID}).
		OrderBy("s.started_at DESC", "s.id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list sessions query: %w", err)
	}
	sessions := []Session{}
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, total, nil
}

func (r *repository) ListExercises(ctx context.Context, sessionID int) ([]Exercise, error) {
	out := []Exercise{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT se.id, se.session_id, se.exercise_id, e.name AS exercise_name, se.position,
		       se.completed, se.sets_completed, se.reps_completed, se.notes
		FROM session_exercises se
		JOIN exercises e ON e.id = se.exercise_id
		WHERE se.session_id = $1
		ORDER BY se.position, se.id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list session exercises: %w", err)
	}
	return out, nil
}

// RecordExercise applies the non-nil fields of req to the session's exercise row.
func (r *repository) RecordExercise(ctx context.Context, sessionID, exerciseID int, req RecordExerciseRequest) (*Exercise, error) {
	var e Exercise
	err := r.db.GetContext(ctx, &e, `
		UPDATE session_exercises se
		SET completed = COALESCE($3, se.completed),
		    sets_completed = COALESCE($4, se.sets_completed),
		    reps_completed = COALESCE($5, se.reps_completed),
		    notes = COALESCE($6, se.notes)
		FROM exercises e
		WHERE se.session_id = $1 AND se.exercise_id = $2 AND e.id = se.exercise_id
		RETURNING se.id, se.session_id, se.exercise_id, e.name AS exercise_name, se.position,
		          se.completed, se.sets_completed, se.reps_completed, se.notes`,
		sessionID, exerciseID, req.Completed, req.SetsCompleted, req.RepsCompleted, req.Notes)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrExerciseNotInSession
		}
		return nil, fmt.Errorf("record session exercise: %w", err)
	}
	return &e, nil
}

// Finish completes an in-progress session; ErrSessionFinished covers a concurrent finish.
func (r *repository) Finish(ctx context.Context, id int, notes *string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE sessions
		SET status = $2, finished_at = NOW(), notes = COALESCE($3, notes)
		WHERE id = $1 AND status = $4`,
		id, StatusCompleted, notes, StatusInProgress)
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrSessionFinished
	}
	return nil
}

func (r *repository) CreateKudos(ctx context.Context, k *Kudos) (*Kudos, error) {
	var out Kudos
	err := r.db.GetContext(ctx, &out, `
		INSERT INTO kudos (session_id, instructor_id, message)
		VALUES ($1, $2, $3)
		RETURNING id, session_id, instructor_id, message, created_at`,
		k.SessionID, k.InstructorID, k.Message)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrKudosExists
		}
		return nil, fmt.Errorf("create kudos: %w", err)
	}
	return &out, nil
}

func (r *repository) ListKudos(ctx context.Context, sessionID int) ([]Kudos, error) {
	out := []Kudos{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT id, session_id, instructor_id, message, created_at
		FROM kudos WHERE session_id = $1 ORDER BY created_at, id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list kudos: %w", err)
	}
	return out, nil
}
