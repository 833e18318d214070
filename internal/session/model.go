package session

import "time"

const (
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
)

type Session struct {
	ID              int        `db:"id" json:"id"`
	ClientProgramID int        `db:"client_program_id" json:"client_program_id"`
	ClientID        int        `db:"client_id" json:"client_id"`
	ProgramName     string     `db:"program_name" json:"program_name"`
	Status          string     `db:"status" json:"status" example:"IN_PROGRESS"`
	Notes           *string    `db:"notes" json:"notes,omitempty"`
	StartedAt       time.Time  `db:"started_at" json:"started_at"`
	FinishedAt      *time.Time `db:"finished_at" json:"finished_at,omitempty"`
	Exercises       []Exercise `db:"-" json:"exercises,omitempty"`
	Kudos           []Kudos    `db:"-" json:"kudos,omitempty"`
}

func (s *Session) IsFinished() bool {
	return s.Status == StatusCompleted
}

// Exercise is one exercise performed within a session.
type Exercise struct {
	ID            int     `db:"id" json:"id"`
	SessionID     int     `db:"session_id" json:"session_id"`
	ExerciseID    int     `db:"exercise_id" json:"exercise_id"`
	ExerciseName  string  `db:"exercise_name" json:"exercise_name"`
	Position      int     `db:"position" json:"position"`
	Completed     bool    `db:"completed" json:"completed"`
	SetsCompleted *int    `db:"sets_completed" json:"sets_completed,omitempty"`
	RepsCompleted *int    `db:"reps_completed" json:"reps_completed,omitempty"`
	Notes         *string `db:"notes" json:"notes,omitempty"`
}

type Kudos struct {
	ID           int       `db:"id" json:"id"`
	SessionID    int       `db:"session_id" json:"session_id"`
	InstructorID int       `db:"instructor_id" json:"instructor_id"`
	Message      string    `db:"message" json:"message"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type RecordExerciseRequest struct {
	Completed     *bool   `json:"completed" example:"true"`
	SetsCompleted *int    `json:"sets_completed" binding:"omitempty,gte=0,lte=100" example:"3"`
	RepsCompleted *int    `json:"reps_completed" binding:"omitempty,gte=0,lte=1000" example:"12"`
	Notes         *string `json:"notes" binding:"omitempty,max=2000"`
}

type FinishRequest struct {
	Notes *string `json:"notes" binding:"omitempty,max=2000"`
}

type KudosRequest struct {
	Message string `json:"message" binding:"max=500" example:"Great work this week!"`
}
