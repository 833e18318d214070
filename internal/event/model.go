package event

import "time"

const (
	StatusRegistered = "REGISTERED"
	StatusWaitlisted = "WAITLISTED"
	StatusCancelled  = "CANCELLED"
)

type Event struct {
	ID                        int        `db:"id" json:"id"`
	InstructorID              int        `db:"instructor_id" json:"instructor_id"`
	Title                     string     `db:"title" json:"title"`
	Description               string     `db:"description" json:"description"`
	Location                  string     `db:"location" json:"location"`
	StartDate                 time.Time  `db:"start_date" json:"start_date"`
	EndDate                   time.Time  `db:"end_date" json:"end_date"`
	MaxAttendees              *int       `db:"max_attendees" json:"max_attendees,omitempty"`
	AllowWaitlist             bool       `db:"allow_waitlist" json:"allow_waitlist"`
	RegistrationDeadlineHours int        `db:"registration_deadline_hours" json:"registration_deadline_hours"`
	CancelledAt               *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt                 time.Time  `db:"created_at" json:"created_at"`

	RegisteredCount int           `db:"registered_count" json:"registered_count"`
	WaitlistCount   int           `db:"waitlist_count" json:"waitlist_count"`
	MyRegistration  *Registration `db:"-" json:"my_registration,omitempty"`
}

func (e *Event) IsCancelled() bool {
	return e.CancelledAt != nil
}

// RegistrationClosesAt is the last instant at which new registrations are accepted.
func (e *Event) RegistrationClosesAt() time.Time {
	return e.StartDate.Add(-time.Duration(e.RegistrationDeadlineHours) * time.Hour)
}

type Registration struct {
	ID               int        `db:"id" json:"id"`
	EventID          int        `db:"event_id" json:"event_id"`
	UserID           int        `db:"user_id" json:"user_id"`
	Status           string     `db:"status" json:"status" example:"REGISTERED"`
	WaitlistPosition *int       `db:"waitlist_position" json:"waitlist_position,omitempty"`
	RegisteredAt     time.Time  `db:"registered_at" json:"registered_at"`
	PromotedAt       *time.Time `db:"promoted_at" json:"promoted_at,omitempty"`
	CancelledAt      *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
}

func (r *Registration) IsActive() bool {
	return r != nil && r.Status != StatusCancelled
}

// Attendee is a registration with the registrant's contact details.
type Attendee struct {
	Registration
	UserName  string `db:"user_name" json:"user_name"`
	UserEmail string `db:"user_email" json:"user_email"`
}

type EventRequest struct {
	Title                     string    `json:"title" binding:"required,notblank,max=255" example:"Bootcamp in het park"`
	Description               string    `json:"description" binding:"max=5000"`
	Location                  string    `json:"location" binding:"max=255" example:"Vondelpark"`
	StartDate                 time.Time `json:"start_date" binding:"required" example:"2026-06-01T09:00:00Z"`
	EndDate                   time.Time `json:"end_date" binding:"required,gtefield=StartDate" example:"2026-06-01T10:30:00Z"`
	MaxAttendees              *int      `json:"max_attendees" binding:"omitempty,gt=0,lte=10000" example:"20"`
	AllowWaitlist             bool      `json:"allow_waitlist" example:"true"`
	RegistrationDeadlineHours int       `json:"registration_deadline_hours" binding:"gte=0,lte=720" example:"24"`
}

type ListFilter struct {
	InstructorID int
	From         *time.Time
	Limit        int
	Offset       int
}
