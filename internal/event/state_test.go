package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	two := 2

	tests := []struct {
		name     string
		capacity Capacity
		status   string
		err      error
	}{
		{"unlimited", Capacity{Registered: 500}, StatusRegistered, nil},
		{"room left", Capacity{Registered: 1, MaxAttendees: &two}, StatusRegistered, nil},
		{"full with waitlist", Capacity{Registered: 2, MaxAttendees: &two, AllowWaitlist: true}, StatusWaitlisted, nil},
		{"full without waitlist", Capacity{Registered: 2, MaxAttendees: &two}, "", ErrEventFull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, err := Decide(tt.capacity)
			assert.Equal(t, tt.status, status)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestRegistrationClosed(t *testing.T) {
	start := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	e := &Event{StartDate: start, RegistrationDeadlineHours: 24}

	assert.False(t, RegistrationClosed(e, start.Add(-25*time.Hour)))
	assert.False(t, RegistrationClosed(e, start.Add(-24*time.Hour)))
	assert.True(t, RegistrationClosed(e, start.Add(-23*time.Hour)))

	e.RegistrationDeadlineHours = 0
	assert.False(t, RegistrationClosed(e, start))
	assert.True(t, RegistrationClosed(e, start.Add(time.Second)))
}
