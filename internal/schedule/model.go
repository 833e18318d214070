package schedule

import "time"

const (
	StatusCompleted = "COMPLETED"
	StatusMissed    = "MISSED"
	StatusToday     = "TODAY"
	StatusUpcoming  = "UPCOMING"
)

const MaxWeeks = 52

type ScheduledProgram struct {
	ID              int        `db:"id" json:"id"`
	ClientProgramID int        `db:"client_program_id" json:"client_program_id"`
	ClientID        int        `db:"client_id" json:"client_id"`
	ProgramName     string     `db:"program_name" json:"program_name"`
	ScheduledDate   time.Time  `db:"scheduled_date" json:"scheduled_date"`
	Completed       bool       `db:"completed" json:"completed"`
	CompletedAt     *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	Notes           *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	Status          string     `db:"-" json:"status"`
}

type DatesRequest struct {
	Dates []string `json:"dates" binding:"required,min=1,max=366,dive,isodate" example:"2026-01-05,2026-01-07"`
}

type WeeklyRequest struct {
	Weekday *int `json:"weekday" binding:"required,gte=0,lte=6" example:"1"`
	Weeks   int  `json:"weeks" binding:"required,gte=1,lte=52" example:"8"`
}

type NotesRequest struct {
	Notes *string `json:"notes" binding:"omitempty,max=2000"`
}

// ListFilter selects occurrences. InstructorID limits results to that instructor's clients.
type ListFilter struct {
	ClientID        int
	InstructorID    int
	ClientProgramID int
	From            *time.Time
	To              *time.Time
}
