package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fitcoach/internal/api"
	"fitcoach/internal/auth"
	"fitcoach/internal/clientprogram"
	"fitcoach/internal/metrics"
	"fitcoach/internal/user"
)

var ErrScheduledNotFound = errors.New("scheduled program not found")

// ClientPrograms is the slice of the client program service that scheduling relies on.
type ClientPrograms interface {
	Get(ctx context.Context, p auth.Principal, id int) (*clientprogram.ClientProgram, error)
	Manageable(ctx context.Context, p auth.Principal, id int) (*clientprogram.ClientProgram, error)
}

type Service interface {
	ScheduleDates(ctx context.Context, p auth.Principal, clientProgramID int, dates []string) ([]ScheduledProgram, error)
	ScheduleWeekly(ctx context.Context, p auth.Principal, clientProgramID int, req WeeklyRequest) ([]ScheduledProgram, error)
	List(ctx context.Context, p auth.Principal, f ListFilter) ([]ScheduledProgram, error)
	Complete(ctx context.Context, p auth.Principal, id int) (*ScheduledProgram, error)
	Uncomplete(ctx context.Context, p auth.Principal, id int) (*ScheduledProgram, error)
	UpdateNotes(ctx context.Context, p auth.Principal, id int, notes *string) (*ScheduledProgram, error)
	Delete(ctx context.Context, p auth.Principal, id int) error
	// CompleteToday marks today's occurrences of a client program done and reports how many changed.
	CompleteToday(ctx context.Context, clientProgramID int) (int64, error)
}

type service struct {
	repo     Repository
	programs ClientPrograms
	users    user.Finder
	now      func() time.Time
}

func NewService(repo Repository, programs ClientPrograms, users user.Finder) Service {
	return &service{repo: repo, programs: programs, users: users, now: time.Now}
}

func (s *service) today() time.Time {
	return Day(s.now())
}

func (s *service) withStatus(list []ScheduledProgram) []ScheduledProgram {
	today := s.today()
	for i := range list {
		list[i].Status = StatusOf(&list[i], today)
	}
	return list
}

func (s *service) ScheduleDates(ctx context.Context, p auth.Principal, clientProgramID int, raw []string) ([]ScheduledProgram, error) {
	if _, err := s.programs.Manageable(ctx, p, clientProgramID); err != nil {
		return nil, err
	}
	dates, err := DistinctDates(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", api.ErrInvalidInput, err)
	}
	return s.create(ctx, clientProgramID, dates, "dates")
}

func (s *service) ScheduleWeekly(ctx context.Context, p auth.Principal, clientProgramID int, req WeeklyRequest) ([]ScheduledProgram, error) {
	if req.Weekday == nil || *req.Weekday < 0 || *req.Weekday > 6 {
		return nil, fmt.Errorf("%w: weekday must be between 0 and 6", api.ErrInvalidInput)
	}
	if req.Weeks < 1 || req.Weeks > MaxWeeks {
		return nil, fmt.Errorf("%w: weeks must be between 1 and %d", api.ErrInvalidInput, MaxWeeks)
	}
	if _, err := s.programs.Manageable(ctx, p, clientProgramID); err != nil {
		return nil, err
	}
	dates := WeeklyOccurrences(s.today(), time.Weekday(*req.Weekday), req.Weeks)
	return s.create(ctx, clientProgramID, dates, "weekly")
}

func (s *service) create(ctx context.Context, clientProgramID int, dates []time.Time, mode string) ([]ScheduledProgram, error) {
	created, err := s.repo.CreateMany(ctx, clientProgramID, dates)
	if err != nil {
		return nil, err
	}
	metrics.RecordScheduled(mode, len(created))
	return s.withStatus(created), nil
}

// List scopes the filter to what the caller may see before querying.
func (s *service) List(ctx context.Context, p auth.Principal, f ListFilter) ([]ScheduledProgram, error) {
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, fmt.Errorf("%w: to is before from", api.ErrInvalidInput)
	}

	switch {
	case f.ClientProgramID > 0:
		cp, err := s.programs.Get(ctx, p, f.ClientProgramID)
		if err != nil {
			return nil, err
		}
		if f.ClientID > 0 && f.ClientID != cp.ClientID {
			return []ScheduledProgram{}, nil
		}
	case f.ClientID > 0:
		if _, err := user.AccessClient(ctx, s.users, p, f.ClientID); err != nil {
			return nil, err
		}
	case p.IsClient():
		f.ClientID = p.UserID
	case p.IsInstructor():
		f.InstructorID = p.UserID
	}

	list, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.withStatus(list), nil
}

// visible loads an occurrence the caller can see through its client program.
func (s *service) visible(ctx context.Context, p auth.Principal, id int) (*ScheduledProgram, error) {
	sp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.programs.Get(ctx, p, sp.ClientProgramID); err != nil {
		return nil, err
	}
	return sp, nil
}

func (s *service) Complete(ctx context.Context, p auth.Principal, id int) (*ScheduledProgram, error) {
	return s.setCompleted(ctx, p, id, true)
}

func (s *service) Uncomplete(ctx context.Context, p auth.Principal, id int) (*ScheduledProgram, error) {
	return s.setCompleted(ctx, p, id, false)
}

func (s *service) setCompleted(ctx context.Context, p auth.Principal, id int, completed bool) (*ScheduledProgram, error) {
	if _, err := s.visible(ctx, p, id); err != nil {
		return nil, err
	}
	sp, err := s.repo.SetCompleted(ctx, id, completed)
	if err != nil {
		return nil, err
	}
	sp.Status = StatusOf(sp, s.today())
	return sp, nil
}

func (s *service) UpdateNotes(ctx context.Context, p auth.Principal, id int, notes *string) (*ScheduledProgram, error) {
	if _, err := s.visible(ctx, p, id); err != nil {
		return nil, err
	}
	sp, err := s.repo.UpdateNotes(ctx, id, notes)
	if err != nil {
		return nil, err
	}
	sp.Status = StatusOf(sp, s.today())
	return sp, nil
}

func (s *service) Delete(ctx context.Context, p auth.Principal, id int) error {
	sp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.programs.Manageable(ctx, p, sp.ClientProgramID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) CompleteToday(ctx context.Context, clientProgramID int) (int64, error) {
	return s.repo.CompleteOn(ctx, clientProgramID, s.today())
}
