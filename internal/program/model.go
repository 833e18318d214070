package program

import (
	"time"

	"fitcoach/internal/exercise"

	"github.com/lib/pq"
)

const (
	DifficultyBeginner     = "BEGINNER"
	DifficultyIntermediate = "INTERMEDIATE"
	DifficultyAdvanced     = "ADVANCED"
)

const (
	SectionWarmup   = "WARMUP"
	SectionCore     = "CORE"
	SectionCooldown = "COOLDOWN"
)

const (
	ScopeAll    = "all"
	ScopeMine   = "mine"
	ScopePublic = "public"
)

// SectionRank orders sections within a workout; unknown sections sort with CORE.
func SectionRank(section string) int {
	switch section {
	case SectionWarmup:
		return 0
	case SectionCooldown:
		return 2
	default:
		return 1
	}
}

type Program struct {
	ID              int        `db:"id" json:"id"`
	InstructorID    int        `db:"instructor_id" json:"instructor_id"`
	Name            string     `db:"name" json:"name"`
	Description     string     `db:"description" json:"description"`
	Difficulty      string     `db:"difficulty" json:"difficulty"`
	DefaultLocation *string    `db:"default_location" json:"default_location,omitempty"`
	IsPublic        bool       `db:"is_public" json:"is_public"`
	ArchivedAt      *time.Time `db:"archived_at" json:"archived_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
	Items           []Item     `db:"-" json:"items,omitempty"`
}

func (p *Program) IsArchived() bool {
	return p.ArchivedAt != nil
}

// Overrides are the nullable per-item prescription fields. A nil field inherits the next level down.
type Overrides struct {
	Sets            *int            `db:"sets" json:"sets" binding:"omitempty,gte=0,lte=100"`
	Reps            *int            `db:"reps" json:"reps" binding:"omitempty,gte=0,lte=1000"`
	HoldSeconds     *int            `db:"hold_seconds" json:"hold_seconds" binding:"omitempty,gte=0"`
	DurationMinutes *int            `db:"duration_minutes" json:"duration_minutes" binding:"omitempty,gte=0"`
	RestSeconds     *int            `db:"rest_seconds" json:"rest_seconds" binding:"omitempty,gte=0"`
	WeightsPerSet   pq.Float64Array `db:"weights_per_set" json:"weights_per_set" binding:"omitempty,dive,gte=0" swaggertype:"array,number"`
	Intensity       *string         `db:"intensity" json:"intensity" binding:"omitempty,max=50"`
	Notes           *string         `db:"notes" json:"notes"`
}

// IsZero reports whether no field is set.
func (o Overrides) IsZero() bool {
	return o.Sets == nil && o.Reps == nil && o.HoldSeconds == nil && o.DurationMinutes == nil &&
		o.RestSeconds == nil && o.WeightsPerSet == nil && o.Intensity == nil && o.Notes == nil
}

type Item struct {
	ID         int    `db:"id" json:"id"`
	ProgramID  int    `db:"program_id" json:"program_id"`
	ExerciseID int    `db:"exercise_id" json:"exercise_id"`
	Position   int    `db:"position" json:"position"`
	Section    string `db:"section" json:"section"`
	Overrides
	Exercise *exercise.Exercise `db:"-" json:"exercise,omitempty"`
}

type ProgramRequest struct {
	Name            string  `json:"name" binding:"required,notblank,max=255" example:"Beginners Full Body Thuis"`
	Description     string  `json:"description"`
	Difficulty      string  `json:"difficulty" binding:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED" example:"BEGINNER"`
	DefaultLocation *string `json:"default_location" binding:"omitempty,oneof=GYM HOME OUTDOOR" example:"HOME"`
	IsPublic        bool    `json:"is_public"`
}

type ItemRequest struct {
	ExerciseID int    `json:"exercise_id" binding:"required,gt=0" example:"1"`
	Section    string `json:"section" binding:"omitempty,oneof=WARMUP CORE COOLDOWN" example:"CORE"`
	Overrides
}

type AddItemsRequest struct {
	Items []ItemRequest `json:"items" binding:"required,min=1,dive"`
}

type UpdateItemRequest struct {
	Section string `json:"section" binding:"omitempty,oneof=WARMUP CORE COOLDOWN"`
	Overrides
}

type ReorderEntry struct {
	ID      int    `json:"id" binding:"required,gt=0"`
	Section string `json:"section" binding:"omitempty,oneof=WARMUP CORE COOLDOWN"`
}

// ReorderRequest lists every item of the program in its new order.
type ReorderRequest struct {
	Items []ReorderEntry `json:"items" binding:"required,min=1,dive"`
}

type ListFilter struct {
	InstructorID    int
	Scope           string
	Difficulty      string
	Query           string
	IncludeArchived bool
	Limit           int
	Offset          int
}

type DeleteResponse struct {
	ID       int  `json:"id"`
	Archived bool `json:"archived"`
}
