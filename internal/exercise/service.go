package exercise

import (
	"context"
	"errors"

	"fitcoach/internal/api"
	"fitcoach/internal/auth"
	"fitcoach/internal/logger"

	"github.com/lib/pq"
)

var (
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrExerciseArchived = errors.New("exercise is archived")
)

const defaultSets = 3
const defaultRestSeconds = 60

type Service interface {
	Create(ctx context.Context, p auth.Principal, req ExerciseRequest) (*Exercise, error)
	Get(ctx context.Context, id int) (*Exercise, error)
	Update(ctx context.Context, p auth.Principal, id int, req ExerciseRequest) (*Exercise, error)
	List(ctx context.Context, p auth.Principal, f ListFilter) ([]Exercise, int, error)
	Delete(ctx context.Context, p auth.Principal, id int) (archived bool, err error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, p auth.Principal, req ExerciseRequest) (*Exercise, error) {
	e := &Exercise{InstructorID: p.UserID}
	apply(e, req)
	return s.repo.Create(ctx, e)
}

func (s *service) Get(ctx context.Context, id int) (*Exercise, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Update(ctx context.Context, p auth.Principal, id int, req ExerciseRequest) (*Exercise, error) {
	e, err := s.owned(ctx, p, id)
	if err != nil {
		return nil, err
	}
	apply(e, req)
	return s.repo.Update(ctx, e)
}

func (s *service) List(ctx context.Context, p auth.Principal, f ListFilter) ([]Exercise, int, error) {
	if !p.IsAdmin() {
		f.InstructorID = p.UserID
	}
	return s.repo.List(ctx, f)
}

// Delete hard-deletes unreferenced exercises and archives the rest so history stays intact.
func (s *service) Delete(ctx context.Context, p auth.Principal, id int) (bool, error) {
	if _, err := s.owned(ctx, p, id); err != nil {
		return false, err
	}

	referenced, err := s.repo.IsReferenced(ctx, id)
	if err != nil {
		return false, err
	}

	if referenced {
		if err := s.repo.Archive(ctx, id); err != nil {
			return false, err
		}
		logger.Info("exercise archived", "exercise_id", id)
		return true, nil
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

func (s *service) owned(ctx context.Context, p auth.Principal, id int) (*Exercise, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.InstructorID != p.UserID && !p.IsAdmin() {
		return nil, api.ErrForbidden
	}
	return e, nil
}

func apply(e *Exercise, req ExerciseRequest) {
	e.Name = req.Name
	e.Description = req.Description
	e.Instructions = req.Instructions
	e.DefaultSets = defaultSets
	if req.DefaultSets != nil {
		e.DefaultSets = *req.DefaultSets
	}
	e.DefaultReps = req.DefaultReps
	e.HoldSeconds = req.HoldSeconds
	e.RestSeconds = defaultRestSeconds
	if req.RestSeconds != nil {
		e.RestSeconds = *req.RestSeconds
	}
	e.DurationMinutes = req.DurationMinutes
	e.RequiresEquipment = req.RequiresEquipment || len(req.Equipment) > 0
	e.Equipment = pq.StringArray(nonNil(req.Equipment))
	e.Locations = pq.StringArray(dedupe(req.Locations))
	e.VideoURL = req.VideoURL
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
