package clientprogram

import (
	"context"
	"fmt"

	"fitcoach/internal/db"

	"github.com/jmoiron/sqlx"
)

const selectClientProgram = `
	SELECT cp.id, cp.client_id, cp.program_id, p.name AS program_name, cp.assigned_by, cp.source,
		cp.is_active, cp.start_date, cp.end_date, cp.sort_order, cp.created_at, cp.updated_at
	FROM client_programs cp
	JOIN programs p ON p.id = cp.program_id`

const itemColumns = `id, client_program_id, exercise_id, sort_order, section, sets, reps, hold_seconds,
	duration_minutes, rest_seconds, weights_per_set, intensity, notes, is_removed, is_added, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Create appends the assignment at the end of the client's program order.
func (r *repository) Create(ctx context.Context, cp *ClientProgram) (*ClientProgram, error) {
	query := `
		INSERT INTO client_programs (client_id, program_id, assigned_by, source, is_active, start_date, end_date, sort_order)
		VALUES ($1, $2, $3, $4, TRUE, $5, $6,
			(SELECT COALESCE(MAX(sort_order), -1) + 1 FROM client_programs WHERE client_id = $1))
		RETURNING id`

	var id int
	err := r.db.GetContext(ctx, &id, query,
		cp.ClientID, cp.ProgramID, cp.AssignedBy, cp.Source, cp.StartDate, cp.EndDate)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrAlreadyAssigned
		}
		return nil, fmt.Errorf("assign program: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *repository) GetByID(ctx context.Context, id int) (*ClientProgram, error) {
	var cp ClientProgram
	if err := r.db.GetContext(ctx, &cp, selectClientProgram+` WHERE cp.id = $1`, id); err != nil {
		if db.IsNotFound(err) {
			return nil, ErrClientProgramNotFound
		}
		return nil, fmt.Errorf("get client program: %w", err)
	}
	return &cp, nil
}

func (r *repository) ListByClient(ctx context.Context, clientID int) ([]ClientProgram, error) {
	out := []ClientProgram{}
	query := selectClientProgram + ` WHERE cp.client_id = $1 ORDER BY cp.sort_order ASC, cp.id ASC`
	if err := r.db.SelectContext(ctx, &out, query, clientID); err != nil {
		return nil, fmt.Errorf("list client programs: %w", err)
	}
	return out, nil
}

func (r *repository) Update(ctx context.Context, cp *ClientProgram) (*ClientProgram, error) {
	query := `
		UPDATE client_programs
		SET is_active = $2, start_date = $3, end_date = $4, sort_order = $5, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, cp.ID, cp.IsActive, cp.StartDate, cp.EndDate, cp.SortOrder)
	if err != nil {
		return nil, fmt.Errorf("update client program: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, ErrClientProgramNotFound
	}
	return r.GetByID(ctx, cp.ID)
}

// Delete removes the assignment; customizations, schedule and sessions cascade.
func (r *repository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM client_programs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("unassign program: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrClientProgramNotFound
	}
	return nil
}

func (r *repository) Reorder(ctx context.Context, clientID int, ids []int) error {
	return db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for i, id := range ids {
			_, err := tx.ExecContext(ctx,
				`UPDATE client_programs SET sort_order = $1, updated_at = NOW() WHERE id = $2 AND client_id = $3`,
				i, id, clientID)
			if err != nil {
				return fmt.Errorf("reorder client programs: %w", err)
			}
		}
		return nil
	})
}

func (r *repository) ListItems(ctx context.Context, clientProgramID int) ([]Item, error) {
	out := []Item{}
	query := `SELECT ` + itemColumns + ` FROM client_program_items WHERE client_program_id = $1 ORDER BY id ASC`
	if err := r.db.SelectContext(ctx, &out, query, clientProgramID); err != nil {
		return nil, fmt.Errorf("list client program items: %w", err)
	}
	return out, nil
}

// UpsertItem writes the full customization record for (client program, exercise).
func (r *repository) UpsertItem(ctx context.Context, item *Item) (*Item, error) {
	query := `
		INSERT INTO client_program_items (client_program_id, exercise_id, sort_order, section, sets, reps,
			hold_seconds, duration_minutes, rest_seconds, weights_per_set, intensity, notes, is_removed, is_added)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (client_program_id, exercise_id) DO UPDATE SET
			sort_order = EXCLUDED.sort_order, section = EXCLUDED.section, sets = EXCLUDED.sets,
			reps = EXCLUDED.reps, hold_seconds = EXCLUDED.hold_seconds,
			duration_minutes = EXCLUDED.duration_minutes, rest_seconds = EXCLUDED.rest_seconds,
			weights_per_set = EXCLUDED.weights_per_set, intensity = EXCLUDED.intensity, notes = EXCLUDED.notes,
			is_removed = EXCLUDED.is_removed, is_added = EXCLUDED.is_added, updated_at = NOW()
		RETURNING ` + itemColumns

	var out Item
	err := r.db.GetContext(ctx, &out, query,
		item.ClientProgramID, item.ExerciseID, item.SortOrder, item.Section, item.Sets, item.Reps,
		item.HoldSeconds, item.DurationMinutes, item.RestSeconds, item.WeightsPerSet, item.Intensity,
		item.Notes, item.IsRemoved, item.IsAdded)
	if err != nil {
		return nil, fmt.Errorf("upsert client program item: %w", err)
	}
	return &out, nil
}

func (r *repository) DeleteItem(ctx context.Context, clientProgramID, exerciseID int) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM client_program_items WHERE client_program_id = $1 AND exercise_id = $2`,
		clientProgramID, exerciseID)
	if err != nil {
		return fmt.Errorf("delete client program item: %w", err)
	}
	return nil
}

// SetItemOrder stores an explicit sort order for every listed exercise, creating records as needed.
func (r *repository) SetItemOrder(ctx context.Context, clientProgramID int, exerciseIDs []int) error {
	return db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO client_program_items (client_program_id, exercise_id, sort_order)
			VALUES ($1, $2, $3)
			ON CONFLICT (client_program_id, exercise_id) DO UPDATE SET sort_order = EXCLUDED.sort_order, updated_at = NOW()`
		for i, exerciseID := range exerciseIDs {
			if _, err := tx.ExecContext(ctx, query, clientProgramID, exerciseID, i); err != nil {
				return fmt.Errorf("set client program item order: %w", err)
			}
		}
		return nil
	})
}
