package exercise

import (
	"context"
	"fmt"
	"strings"

	"fitcoach/internal/db"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var exerciseColumns = []string{
	"id", "instructor_id", "name", "description", "instructions",
	"default_sets", "default_reps", "hold_seconds", "rest_seconds", "duration_minutes",
	"requires_equipment", "equipment", "locations", "video_url",
	"archived_at", "created_at", "updated_at",
}

var selectColumns = strings.Join(exerciseColumns, ", ")

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

func (r *repository) Create(ctx context.Context, e *Exercise) (*Exercise, error) {
	query := `
		INSERT INTO exercises (instructor_id, name, description, instructions, default_sets, default_reps,
			hold_seconds, rest_seconds, duration_minutes, requires_equipment, equipment, locations, video_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + selectColumns

	var out Exercise
	err := r.db.GetContext(ctx, &out, query,
		e.InstructorID, e.Name, e.Description, e.Instructions, e.DefaultSets, e.DefaultReps,
		e.HoldSeconds, e.RestSeconds, e.DurationMinutes, e.RequiresEquipment,
		e.Equipment, e.Locations, e.VideoURL,
	)
	if err != nil {
		return nil, fmt.Errorf("create exercise: %w", err)
	}
	return &out, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Exercise, error) {
	query := `SELECT ` + selectColumns + ` FROM exercises WHERE id = $1`

	var e Exercise
	if err := r.db.GetContext(ctx, &e, query, id); err != nil {
		if db.IsNotFound(err) {
			return nil, ErrExerciseNotFound
		}
		return nil, fmt.Errorf("get exercise: %w", err)
	}
	return &e, nil
}

func (r *repository) GetByIDs(ctx context.Context, ids []int) ([]Exercise, error) {
	out := []Exercise{}
	if len(ids) == 0 {
		return out, nil
	}

	query := `SELECT ` + selectColumns + ` FROM exercises WHERE id = ANY($1)`
	if err := r.db.SelectContext(ctx, &out, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("get exercises: %w", err)
	}
	return out, nil
}

func (r *repository) Update(ctx context.Context, e *Exercise) (*Exercise, error) {
	query := `
		UPDATE exercises
		SET name = $2, description = $3, instructions = $4, default_sets = $5, default_reps = $6,
			hold_seconds = $7, rest_seconds = $8, duration_minutes = $9, requires_equipment = $10,
			equipment = $11, locations = $12, video_url = $13, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + selectColumns

	var out Exercise
	err := r.db.GetContext(ctx, &out, query,
		e.ID, e.Name, e.Description, e.Instructions, e.DefaultSets, e.DefaultReps,
		e.HoldSeconds, e.RestSeconds, e.DurationMinutes, e.RequiresEquipment,
		e.Equipment, e.Locations, e.VideoURL,
	)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrExerciseNotFound
		}
		return nil, fmt.Errorf("update exercise: %w", err)
	}
	return &out, nil
}

func (r *repository) List(ctx context.Context, f ListFilter) ([]Exercise, int, error) {
	where := squirrel.And{}
	if f.InstructorID > 0 {
		where = append(where, squirrel.Eq{"instructor_id": f.InstructorID})
	}
	if !f.IncludeArchived {
		where = append(where, squirrel.Eq{"archived_at": nil})
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		where = append(where, squirrel.ILike{"name": "%" + q + "%"})
	}
	if f.Location != "" {
		where = append(where, squirrel.Expr("? = ANY(locations)", f.Location))
	}

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("exercises").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count exercises query: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count exercises: %w", err)
	}

	items := []Exercise{}
	if total == 0 {
		return items, 0, nil
	}

	listSQL, listArgs, err := r.sb.Select(exerciseColumns...).From("exercises").Where(where).
		OrderBy("name ASC", "id ASC").
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list exercises query: %w", err)
	}

	if err := r.db.SelectContext(ctx, &items, listSQL, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("list exercises: %w", err)
	}
	return items, total, nil
}

// IsReferenced reports whether any template, client customization or session points at the exercise.
func (r *repository) IsReferenced(ctx context.Context, id int) (bool, error) {
	query := `
		SELECT EXISTS(SELECT 1 FROM program_items WHERE exercise_id = $1)
			OR EXISTS(SELECT 1 FROM client_program_items WHERE exercise_id = $1)
			OR EXISTS(SELECT 1 FROM session_exercises WHERE exercise_id = $1)`
	return db.Exists(ctx, r.db, query, id)
}

func (r *repository) Archive(ctx context.Context, id int) error {
	query := `UPDATE exercises SET archived_at = NOW(), updated_at = NOW() WHERE id = $1 AND archived_at IS NULL`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("archive exercise: %w", err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM exercises WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete exercise: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrExerciseNotFound
	}
	return nil
}
