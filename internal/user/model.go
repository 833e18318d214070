package user

import "time"

type User struct {
	ID           int       `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	InstructorID *int      `db:"instructor_id" json:"instructor_id,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,notblank,max=255" example:"Sanne de Vries"`
	Email    string `json:"email" binding:"required,email" example:"sanne@example.com"`
	Password string `json:"password" binding:"required,min=8" example:"secret123"`
	Role     string `json:"role" binding:"omitempty,oneof=instructor client" example:"instructor"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type CreateClientRequest struct {
	Name     string `json:"name" binding:"required,notblank,max=255"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}
