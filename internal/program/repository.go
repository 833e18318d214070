package program

import (
	"context"
	"fmt"
	"strings"

	"fitcoach/internal/db"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

var programColumns = []string{
	"id", "instructor_id", "name", "description", "difficulty", "default_location",
	"is_public", "archived_at", "created_at", "updated_at",
}

var itemColumns = []string{
	"id", "program_id", "exercise_id", "position", "section",
	"sets", "reps", "hold_seconds", "duration_minutes", "rest_seconds",
	"weights_per_set", "intensity", "notes",
}

var (
	selectProgram = strings.Join(programColumns, ", ")
	selectItem    = strings.Join(itemColumns, ", ")
)

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

func (r *repository) Create(ctx context.Context, p *Program) (*Program, error) {
	query := `
		INSERT INTO programs (instructor_id, name, description, difficulty, default_location, is_public)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + selectProgram

	var out Program
	err := r.db.GetContext(ctx, &out, query,
		p.InstructorID, p.Name, p.Description, p.Difficulty, p.DefaultLocation, p.IsPublic)
	if err != nil {
		return nil, fmt.Errorf("create program: %w", err)
	}
	return &out, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Program, error) {
	var p Program
	err := r.db.GetContext(ctx, &p, `SELECT `+selectProgram+` FROM programs WHERE id = $1`, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrProgramNotFound
		}
		return nil, fmt.Errorf("get program: %w", err)
	}
	return &p, nil
}

func (r *repository) Update(ctx context.Context, p *Program) (*Program, error) {
	query := `
		UPDATE programs
		SET name = $2, description = $3, difficulty = $4, default_location = $5, is_public = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + selectProgram

	var out Program
	err := r.db.GetContext(ctx, &out, query,
		p.ID, p.Name, p.Description, p.Difficulty, p.DefaultLocation, p.IsPublic)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrProgramNotFound
		}
		return nil, fmt.Errorf("update program: %w", err)
	}
	return &out, nil
}

func (r *repository) List(ctx context.Context, f ListFilter) ([]Program, int, error) {
	where := squirrel.And{}
	switch f.Scope {
	case ScopeMine:
		where = append(where, squirrel.Eq{"instructor_id": f.InstructorID})
	case ScopePublic:
		where = append(where, squirrel.Eq{"is_public": true})
	default:
		if f.InstructorID > 0 {
			where = append(where, squirrel.Or{
				squirrel.Eq{"instructor_id": f.InstructorID},
				squirrel.Eq{"is_public": true},
			})
		}
	}
	if !f.IncludeArchived {
		where = append(where, squirrel.Eq{"archived_at": nil})
	}
	if f.Difficulty != "" {
		where = append(where, squirrel.Eq{"difficulty": f.Difficulty})
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		where = append(where, squirrel.ILike{"name": "%" + q + "%"})
	}

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("programs").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count programs query: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count programs: %w", err)
	}

	programs := []Program{}
	if total == 0 {
		return programs, 0, nil
	}

	listSQL, listArgs, err := r.sb.Select(programColumns...).From("programs").Where(where).
		OrderBy("name ASC", "id ASC").
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list programs query: %w", err)
	}

	if err := r.db.SelectContext(ctx, &programs, listSQL, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("list programs: %w", err)
	}
	return programs, total, nil
}

func (r *repository) IsAssigned(ctx context.Context, id int) (bool, error) {
	return db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM client_programs WHERE program_id = $1)`, id)
}

func (r *repository) Archive(ctx context.Context, id int) error {
	query := `UPDATE programs SET archived_at = NOW(), updated_at = NOW() WHERE id = $1 AND archived_at IS NULL`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("archive program: %w", err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM programs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete program: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrProgramNotFound
	}
	return nil
}

// Duplicate copies the program and all of its items under a new owner in one transaction.
func (r *repository) Duplicate(ctx context.Context, id, instructorID int, name string) (*Program, error) {
	var out Program
	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO programs (instructor_id, name, description, difficulty, default_location, is_public)
			SELECT $2, $3, description, difficulty, default_location, FALSE
			FROM programs WHERE id = $1
			RETURNING ` + selectProgram
		if err := tx.GetContext(ctx, &out, query, id, instructorID, name); err != nil {
			if db.IsNotFound(err) {
				return ErrProgramNotFound
			}
			return fmt.Errorf("copy program: %w", err)
		}

		itemsQuery := `
			INSERT INTO program_items (program_id, exercise_id, position, section, sets, reps, hold_seconds,
				duration_minutes, rest_seconds, weights_per_set, intensity, notes)
			SELECT $1, exercise_id, position, section, sets, reps, hold_seconds,
				duration_minutes, rest_seconds, weights_per_set, intensity, notes
			FROM program_items WHERE program_id = $2`
		if _, err := tx.ExecContext(ctx, itemsQuery, out.ID, id); err != nil {
			return fmt.Errorf("copy program items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *repository) ListItems(ctx context.Context, programID int) ([]Item, error) {
	items := []Item{}
	query := `SELECT ` + selectItem + ` FROM program_items WHERE program_id = $1 ORDER BY position ASC, id ASC`
	if err := r.db.SelectContext(ctx, &items, query, programID); err != nil {
		return nil, fmt.Errorf("list program items: %w", err)
	}
	return items, nil
}

func (r *repository) GetItem(ctx context.Context, programID, itemID int) (*Item, error) {
	var item Item
	query := `SELECT ` + selectItem + ` FROM program_items WHERE id = $1 AND program_id = $2`
	if err := r.db.GetContext(ctx, &item, query, itemID, programID); err != nil {
		if db.IsNotFound(err) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("get program item: %w", err)
	}
	return &item, nil
}

// AddItems appends items after the current last position. Either all items are stored or none.
func (r *repository) AddItems(ctx context.Context, programID int, items []Item) ([]Item, error) {
	out := make([]Item, 0, len(items))
	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var next int
		err := tx.GetContext(ctx, &next,
			`SELECT COALESCE(MAX(position), -1) + 1 FROM program_items WHERE program_id = $1`, programID)
		if err != nil {
			return fmt.Errorf("next item position: %w", err)
		}

		query := `
			INSERT INTO program_items (program_id, exercise_id, position, section, sets, reps, hold_seconds,
				duration_minutes, rest_seconds, weights_per_set, intensity, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING ` + selectItem

		for i, it := range items {
			var created Item
			err := tx.GetContext(ctx, &created, query,
				programID, it.ExerciseID, next+i, it.Section, it.Sets, it.Reps, it.HoldSeconds,
				it.DurationMinutes, it.RestSeconds, it.WeightsPerSet, it.Intensity, it.Notes)
			if err != nil {
				if db.IsUniqueViolation(err) {
					return ErrDuplicateExercise
				}
				return fmt.Errorf("insert program item: %w", err)
			}
			out = append(out, created)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) UpdateItem(ctx context.Context, item *Item) (*Item, error) {
	query := `
		UPDATE program_items
		SET section = $3, sets = $4, reps = $5, hold_seconds = $6, duration_minutes = $7,
			rest_seconds = $8, weights_per_set = $9, intensity = $10, notes = $11
		WHERE id = $1 AND program_id = $2
		RETURNING ` + selectItem

	var out Item
	err := r.db.GetContext(ctx, &out, query,
		item.ID, item.ProgramID, item.Section, item.Sets, item.Reps, item.HoldSeconds,
		item.DurationMinutes, item.RestSeconds, item.WeightsPerSet, item.Intensity, item.Notes)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("update program item: %w", err)
	}
	return &out, nil
}

func (r *repository) DeleteItem(ctx context.Context, programID, itemID int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM program_items WHERE id = $1 AND program_id = $2`, itemID, programID)
	if err != nil {
		return fmt.Errorf("delete program item: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrItemNotFound
	}
	return nil
}

// ReorderItems rewrites positions to 0..n-1 following entries; an entry with a section also moves the item.
func (r *repository) ReorderItems(ctx context.Context, programID int, entries []ReorderEntry) error {
	return db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			UPDATE program_items
			SET position = $3, section = COALESCE($4, section)
			WHERE id = $1 AND program_id = $2`
		for i, e := range entries {
			var section *string
			if e.Section != "" {
				section = &e.Section
			}
			result, err := tx.ExecContext(ctx, query, e.ID, programID, i, section)
			if err != nil {
				return fmt.Errorf("reorder program item: %w", err)
			}
			if rows, _ := result.RowsAffected(); rows == 0 {
				return ErrItemNotFound
			}
		}
		return nil
	})
}
