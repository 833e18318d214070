package notification

import "time"

const (
	TypeNudge           = "NUDGE"
	TypeKudos           = "KUDOS"
	TypeEventPromoted   = "EVENT_PROMOTED"
	TypeProgramAssigned = "PROGRAM_ASSIGNED"
)

type Notification struct {
	ID        int        `db:"id" json:"id"`
	UserID    int        `db:"user_id" json:"user_id"`
	Type      string     `db:"type" json:"type"`
	Title     string     `db:"title" json:"title"`
	Message   string     `db:"message" json:"message"`
	ReadAt    *time.Time `db:"read_at" json:"read_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

type NudgeRequest struct {
	Message string `json:"message" binding:"required,notblank,max=1000" example:"Time for today's workout!"`
}

type MarkAllResponse struct {
	Updated int64 `json:"updated"`
}
