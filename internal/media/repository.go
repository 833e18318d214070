package media

import (
	"context"
	"fmt"
	"strings"

	"fitcoach/internal/db"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

var mediaColumns = []string{
	"id", "instructor_id", "title", "kind", "content_type", "size_bytes", "object_key", "created_at",
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

func (r *repository) Create(ctx context.Context, m *Media) (*Media, error) {
	var out Media
	err := r.db.GetContext(ctx, &out, `
		INSERT INTO media (instructor_id, title, kind, content_type, size_bytes, object_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+strings.Join(mediaColumns, ", "),
		m.InstructorID, m.Title, m.Kind, m.ContentType, m.SizeBytes, m.ObjectKey)
	if err != nil {
		return nil, fmt.Errorf("create media: %w", err)
	}
	return &out, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Media, error) {
	var m Media
	query := `SELECT ` + strings.Join(mediaColumns, ", ") + ` FROM media WHERE id = $1`
	if err := r.db.GetContext(ctx, &m, query, id); err != nil {
		if db.IsNotFound(err) {
			return nil, ErrMediaNotFound
		}
		return nil, fmt.Errorf("get media: %w", err)
	}
	return &m, nil
}

func (r *repository) List(ctx context.Context, f ListFilter) ([]Media, int, error) {
	where := squirrel.And{}
	if f.InstructorID != 0 {
		where = append(where, squirrel.Eq{"instructor_id": f.InstructorID})
	}
	if f.Kind != "" {
		where = append(where, squirrel.Eq{"kind": f.Kind})
	}

	var total int
	countQuery, countArgs, err := r.sb.Select("COUNT(*)").From("media").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count media query: %w", err)
	}
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count media: %w", err)
	}

	query, args, err := r.sb.Select(mediaColumns...).
		From("media").
		Where(where).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list media query: %w", err)
	}
	items := []Media{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list media: %w", err)
	}
	return items, total, nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM media WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrMediaNotFound
	}
	return nil
}
