package event

import "time"

// Capacity is the snapshot of an event that decides where a new registrant lands.
type Capacity struct {
	Registered    int
	MaxAttendees  *int
	AllowWaitlist bool
}

func (c Capacity) HasRoom() bool {
	return c.MaxAttendees == nil || c.Registered < *c.MaxAttendees
}

// Decide returns the status a new registration gets, or ErrEventFull.
func Decide(c Capacity) (string, error) {
	switch {
	case c.HasRoom():
		return StatusRegistered, nil
	case c.AllowWaitlist:
		return StatusWaitlisted, nil
	default:
		return "", ErrEventFull
	}
}

func RegistrationClosed(e *Event, now time.Time) bool {
	return now.After(e.RegistrationClosesAt())
}
