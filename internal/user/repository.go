package user

import (
	"context"
	"fmt"

	"fitcoach/internal/db"

	"github.com/jmoiron/sqlx"
)

const userColumns = `id, name, email, password_hash, role, instructor_id, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, name, email, passwordHash, role string, instructorID *int) (*User, error) {
	query := `
		INSERT INTO users (name, email, password_hash, role, instructor_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	var u User
	if err := r.db.GetContext(ctx, &u, query, name, email, passwordHash, role, instructorID); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var u User
	if err := r.db.GetContext(ctx, &u, query, email); err != nil {
		if db.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &u, nil
}

func (r *repository) FindByID(ctx context.Context, id int) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var u User
	if err := r.db.GetContext(ctx, &u, query, id); err != nil {
		if db.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &u, nil
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	return db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *repository) ListClients(ctx context.Context, instructorID int) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE instructor_id = $1 AND role = 'client' ORDER BY name`

	clients := []User{}
	if err := r.db.SelectContext(ctx, &clients, query, instructorID); err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}
