package clientprogram

import (
	"time"

	"fitcoach/internal/exercise"
	"fitcoach/internal/program"
)

const (
	SourceInstructor = "INSTRUCTOR"
	SourceLibrary    = "LIBRARY"
)

type ClientProgram struct {
	ID          int        `db:"id" json:"id"`
	ClientID    int        `db:"client_id" json:"client_id"`
	ProgramID   int        `db:"program_id" json:"program_id"`
	ProgramName string     `db:"program_name" json:"program_name"`
	AssignedBy  *int       `db:"assigned_by" json:"assigned_by,omitempty"`
	Source      string     `db:"source" json:"source"`
	IsActive    bool       `db:"is_active" json:"is_active"`
	StartDate   *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate     *time.Time `db:"end_date" json:"end_date,omitempty"`
	SortOrder   int        `db:"sort_order" json:"sort_order"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// Item is a sparse per-client customization of one exercise of an assigned program.
type Item struct {
	ID              int     `db:"id" json:"id"`
	ClientProgramID int     `db:"client_program_id" json:"client_program_id"`
	ExerciseID      int     `db:"exercise_id" json:"exercise_id"`
	SortOrder       *int    `db:"sort_order" json:"sort_order,omitempty"`
	Section         *string `db:"section" json:"section,omitempty"`
	program.Overrides
	IsRemoved bool      `db:"is_removed" json:"is_removed"`
	IsAdded   bool      `db:"is_added" json:"is_added"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// IsEmpty reports whether the record carries no customization at all and can be dropped.
func (it *Item) IsEmpty() bool {
	return !it.IsRemoved && !it.IsAdded && it.SortOrder == nil && it.Section == nil && it.Overrides.IsZero()
}

// EffectiveItem is one resolved exercise of a client's program.
type EffectiveItem struct {
	ExerciseID    int    `json:"exercise_id"`
	ProgramItemID *int   `json:"program_item_id,omitempty"`
	Section       string `json:"section"`
	Order         int    `json:"order"`
	program.Overrides
	IsAdded      bool               `json:"is_added"`
	IsCustomized bool               `json:"is_customized"`
	Exercise     *exercise.Exercise `json:"exercise,omitempty"`
}

type Effective struct {
	ClientProgramID int             `json:"client_program_id"`
	ProgramID       int             `json:"program_id"`
	Items           []EffectiveItem `json:"items"`
	Removed         []EffectiveItem `json:"removed"`
}

// Contains reports whether exerciseID is part of the effective list.
func (e *Effective) Contains(exerciseID int) bool {
	for _, it := range e.Items {
		if it.ExerciseID == exerciseID {
			return true
		}
	}
	return false
}

type AssignRequest struct {
	ClientID  int     `json:"client_id" binding:"omitempty,gt=0" example:"12"`
	ProgramID int     `json:"program_id" binding:"required,gt=0" example:"3"`
	StartDate *string `json:"start_date" binding:"omitempty,isodate" example:"2026-01-05"`
	EndDate   *string `json:"end_date" binding:"omitempty,isodate" example:"2026-03-01"`
}

type UpdateRequest struct {
	IsActive  *bool   `json:"is_active"`
	StartDate *string `json:"start_date" binding:"omitempty,isodate"`
	EndDate   *string `json:"end_date" binding:"omitempty,isodate"`
	SortOrder *int    `json:"sort_order" binding:"omitempty,gte=0"`
}

type ReorderProgramsRequest struct {
	IDs []int `json:"ids" binding:"required,min=1,dive,gt=0"`
}

type CustomizeRequest struct {
	Section *string `json:"section" binding:"omitempty,oneof=WARMUP CORE COOLDOWN"`
	program.Overrides
}

type AddItemRequest struct {
	ExerciseID int     `json:"exercise_id" binding:"required,gt=0"`
	Section    *string `json:"section" binding:"omitempty,oneof=WARMUP CORE COOLDOWN"`
	program.Overrides
}

type ReorderItemsRequest struct {
	ExerciseIDs []int `json:"exercise_ids" binding:"required,min=1,dive,gt=0"`
}
