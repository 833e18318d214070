package exercise

import (
	"time"

	"github.com/lib/pq"
)

const (
	LocationGym     = "GYM"
	LocationHome    = "HOME"
	LocationOutdoor = "OUTDOOR"
)

type Exercise struct {
	ID                int            `db:"id" json:"id"`
	InstructorID      int            `db:"instructor_id" json:"instructor_id"`
	Name              string         `db:"name" json:"name"`
	Description       string         `db:"description" json:"description"`
	Instructions      string         `db:"instructions" json:"instructions"`
	DefaultSets       int            `db:"default_sets" json:"default_sets"`
	DefaultReps       *int           `db:"default_reps" json:"default_reps,omitempty"`
	HoldSeconds       *int           `db:"hold_seconds" json:"hold_seconds,omitempty"`
	RestSeconds       int            `db:"rest_seconds" json:"rest_seconds"`
	DurationMinutes   *int           `db:"duration_minutes" json:"duration_minutes,omitempty"`
	RequiresEquipment bool           `db:"requires_equipment" json:"requires_equipment"`
	Equipment         pq.StringArray `db:"equipment" json:"equipment" swaggertype:"array,string"`
	Locations         pq.StringArray `db:"locations" json:"locations" swaggertype:"array,string"`
	VideoURL          *string        `db:"video_url" json:"video_url,omitempty"`
	ArchivedAt        *time.Time     `db:"archived_at" json:"archived_at,omitempty"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}

func (e *Exercise) IsArchived() bool {
	return e.ArchivedAt != nil
}

type ExerciseRequest struct {
	Name              string   `json:"name" binding:"required,notblank,max=255" example:"Push-ups"`
	Description       string   `json:"description"`
	Instructions      string   `json:"instructions"`
	DefaultSets       *int     `json:"default_sets" binding:"omitempty,gte=0,lte=100" example:"3"`
	DefaultReps       *int     `json:"default_reps" binding:"omitempty,gte=0,lte=1000" example:"12"`
	HoldSeconds       *int     `json:"hold_seconds" binding:"omitempty,gte=0"`
	RestSeconds       *int     `json:"rest_seconds" binding:"omitempty,gte=0" example:"60"`
	DurationMinutes   *int     `json:"duration_minutes" binding:"omitempty,gte=0"`
	RequiresEquipment bool     `json:"requires_equipment"`
	Equipment         []string `json:"equipment" binding:"omitempty,dive,notblank"`
	Locations         []string `json:"locations" binding:"omitempty,dive,oneof=GYM HOME OUTDOOR" example:"HOME,GYM"`
	VideoURL          *string  `json:"video_url" binding:"omitempty,url"`
}

type ListFilter struct {
	InstructorID    int
	Query           string
	Location        string
	IncludeArchived bool
	Limit           int
	Offset          int
}

type DeleteResponse struct {
	ID       int  `json:"id"`
	Archived bool `json:"archived"`
}
