package schedule

import (
	"context"
	"fmt"
	"time"

	"fitcoach/internal/db"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

var listColumns = []string{
	"sp.id", "sp.client_program_id", "cp.client_id", "p.name AS program_name", "sp.scheduled_date",
	"sp.completed", "sp.completed_at", "sp.notes", "sp.created_at",
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
	return r.sb.Select(listColumns...).
		From("scheduled_programs sp").
		Join("client_programs cp ON cp.id = sp.client_program_id").
		Join("programs p ON p.id = cp.program_id")
}

// CreateMany inserts one row per date. Occurrences are independent, so a date that is
// already on the calendar gets a second row.
func (r *repository) CreateMany(ctx context.Context, clientProgramID int, dates []time.Time) ([]ScheduledProgram, error) {
	ids := make([]int, 0, len(dates))
	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO scheduled_programs (client_program_id, scheduled_date)
			VALUES ($1, $2::date)
			RETURNING id`
		for _, d := range dates {
			var id int
			if err := tx.GetContext(ctx, &id, query, clientProgramID, d); err != nil {
				return fmt.Errorf("schedule program: %w", err)
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []ScheduledProgram{}, nil
	}

	query, args, err := r.base().Where(squirrel.Eq{"sp.id": ids}).OrderBy("sp.scheduled_date ASC", "sp.id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build scheduled programs query: %w", err)
	}
	out := []ScheduledProgram{}
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("load scheduled programs: %w", err)
	}
	return out, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*ScheduledProgram, error) {
	query, args, err := r.base().Where(squirrel.Eq{"sp.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build scheduled program query: %w", err)
	}
	var sp ScheduledProgram
	if err := r.db.GetContext(ctx, &sp, query, args...); err != nil {
		if db.IsNotFound(err) {
			return nil, ErrScheduledNotFound
		}
		return nil, fmt.Errorf("get scheduled program: %w", err)
	}
	return &sp, nil
}

func (r *repository) List(ctx context.Context, f ListFilter) ([]ScheduledProgram, error) {
	q := r.base()
	if f.ClientProgramID > 0 {
		q = q.Where(squirrel.Eq{"sp.client_program_id": f.ClientProgramID})
	}
	if f.ClientID > 0 {
		q = q.Where(squirrel.Eq{"cp.client_id": f.ClientID})
	}
	if f.InstructorID > 0 {
		q = q.Join("users u ON u.id = cp.client_id").Where(squirrel.Eq{"u.instructor_id": f.InstructorID})
	}
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"sp.scheduled_date": *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.LtOrEq{"sp.scheduled_date": *f.To})
	}

	query, args, err := q.OrderBy("sp.scheduled_date ASC", "sp.id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list scheduled programs query: %w", err)
	}
	out := []ScheduledProgram{}
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list scheduled programs: %w", err)
	}
	return out, nil
}

func (r *repository) SetCompleted(ctx context.Context, id int, completed bool) (*ScheduledProgram, error) {
	query := `
		UPDATE scheduled_programs
		SET completed = $2, completed_at = CASE WHEN $2 THEN COALESCE(completed_at, NOW()) ELSE NULL END
		WHERE id = $1`
	return r.exec(ctx, id, query, id, completed)
}

func (r *repository) UpdateNotes(ctx context.Context, id int, notes *string) (*ScheduledProgram, error) {
	return r.exec(ctx, id, `UPDATE scheduled_programs SET notes = $2 WHERE id = $1`, id, notes)
}

func (r *repository) exec(ctx context.Context, id int, query string, args ...interface{}) (*ScheduledProgram, error) {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update scheduled program: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, ErrScheduledNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *repository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM scheduled_programs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete scheduled program: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrScheduledNotFound
	}
	return nil
}

// CompleteOn marks the client program's open occurrences on date as completed.
func (r *repository) CompleteOn(ctx context.Context, clientProgramID int, date time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE scheduled_programs SET completed = TRUE, completed_at = NOW()
		WHERE client_program_id = $1 AND scheduled_date = $2::date AND NOT completed`,
		clientProgramID, date)
	if err != nil {
		return 0, fmt.Errorf("complete scheduled program: %w", err)
	}
	return result.RowsAffected()
}
