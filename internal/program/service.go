package program

import (
	"context"
	"errors"
	"fmt"

	"fitcoach/internal/api"
	"fitcoach/internal/auth"
	"fitcoach/internal/exercise"
	"fitcoach/internal/logger"
)

var (
	ErrProgramNotFound   = errors.New("program not found")
	ErrProgramArchived   = errors.New("program is archived")
	ErrItemNotFound      = errors.New("program item not found")
	ErrDuplicateExercise = errors.New("exercise already in program")
)

// ExerciseLookup is the slice of the exercise catalog the program module needs.
type ExerciseLookup interface {
	GetByIDs(ctx context.Context, ids []int) ([]exercise.Exercise, error)
}

type Service interface {
	Create(ctx context.Context, p auth.Principal, req ProgramRequest) (*Program, error)
	Get(ctx context.Context, p auth.Principal, id int) (*Program, error)
	Update(ctx context.Context, p auth.Principal, id int, req ProgramRequest) (*Program, error)
	List(ctx context.Context, p auth.Principal, f ListFilter) ([]Program, int, error)
	Delete(ctx context.Context, p auth.Principal, id int) (archived bool, err error)
	Duplicate(ctx context.Context, p auth.Principal, id int) (*Program, error)

	AddItems(ctx context.Context, p auth.Principal, programID int, req AddItemsRequest) ([]Item, error)
	UpdateItem(ctx context.Context, p auth.Principal, programID, itemID int, req UpdateItemRequest) (*Item, error)
	RemoveItem(ctx context.Context, p auth.Principal, programID, itemID int) error
	ReorderItems(ctx context.Context, p auth.Principal, programID int, req ReorderRequest) ([]Item, error)
}

type service struct {
	repo      Repository
	exercises ExerciseLookup
}

func NewService(repo Repository, exercises ExerciseLookup) Service {
	return &service{repo: repo, exercises: exercises}
}

func (s *service) Create(ctx context.Context, p auth.Principal, req ProgramRequest) (*Program, error) {
	prog := &Program{InstructorID: p.UserID}
	apply(prog, req)
	return s.repo.Create(ctx, prog)
}

// Get returns the program with its items and their exercises. Public programs are readable by anyone.
func (s *service) Get(ctx context.Context, p auth.Principal, id int) (*Program, error) {
	prog, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !prog.IsPublic && prog.InstructorID != p.UserID && !p.IsAdmin() {
		return nil, api.ErrForbidden
	}

	items, err := s.itemsWithExercises(ctx, id)
	if err != nil {
		return nil, err
	}
	prog.Items = items
	return prog, nil
}

// itemsWithExercises loads the program items in stored order with their exercise attached.
func (s *service) itemsWithExercises(ctx context.Context, programID int) ([]Item, error) {
	items, err := s.repo.ListItems(ctx, programID)
	if err != nil {
		return nil, err
	}

	ids := make([]int, len(items))
	for i, it := range items {
		ids[i] = it.ExerciseID
	}
	exercises, err := s.exercises.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int]*exercise.Exercise, len(exercises))
	for i := range exercises {
		byID[exercises[i].ID] = &exercises[i]
	}
	for i := range items {
		items[i].Exercise = byID[items[i].ExerciseID]
	}
	return items, nil
}

func (s *service) Update(ctx context.Context, p auth.Principal, id int, req ProgramRequest) (*Program, error) {
	prog, err := s.owned(ctx, p, id)
	if err != nil {
		return nil, err
	}
	apply(prog, req)
	return s.repo.Update(ctx, prog)
}

func (s *service) List(ctx context.Context, p auth.Principal, f ListFilter) ([]Program, int, error) {
	f.InstructorID = p.UserID
	switch {
	case p.IsClient():
		f.Scope = ScopePublic
	case p.IsAdmin() && f.Scope != ScopeMine:
		f.InstructorID = 0
	}
	return s.repo.List(ctx, f)
}

// Delete archives a program that any client has been assigned, otherwise removes it with its items.
func (s *service) Delete(ctx context.Context, p auth.Principal, id int) (bool, error) {
	if _, err := s.owned(ctx, p, id); err != nil {
		return false, err
	}

	assigned, err := s.repo.IsAssigned(ctx, id)
	if err != nil {
		return false, err
	}
	if assigned {
		if err := s.repo.Archive(ctx, id); err != nil {
			return false, err
		}
		logger.Info("program archived", "program_id", id)
		return true, nil
	}
	return false, s.repo.Delete(ctx, id)
}

// Duplicate copies an owned or public program into a private program of the caller.
func (s *service) Duplicate(ctx context.Context, p auth.Principal, id int) (*Program, error) {
	src, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !src.IsPublic && src.InstructorID != p.UserID && !p.IsAdmin() {
		return nil, api.ErrForbidden
	}

	copied, err := s.repo.Duplicate(ctx, id, p.UserID, fmt.Sprintf("%s (copy)", src.Name))
	if err != nil {
		return nil, err
	}
	logger.Info("program duplicated", "source_id", id, "program_id", copied.ID, "instructor_id", p.UserID)
	return copied, nil
}

func (s *service) AddItems(ctx context.Context, p auth.Principal, programID int, req AddItemsRequest) ([]Item, error) {
	prog, err := s.owned(ctx, p, programID)
	if err != nil {
		return nil, err
	}
	if prog.IsArchived() {
		return nil, ErrProgramArchived
	}

	ids := make([]int, 0, len(req.Items))
	seen := make(map[int]bool, len(req.Items))
	for _, it := range req.Items {
		if seen[it.ExerciseID] {
			return nil, ErrDuplicateExercise
		}
		seen[it.ExerciseID] = true
		ids = append(ids, it.ExerciseID)
	}

	exercises, err := s.exercises.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if err := checkUsable(exercises, ids, prog.InstructorID); err != nil {
		return nil, err
	}

	items := make([]Item, len(req.Items))
	for i, it := range req.Items {
		items[i] = Item{
			ProgramID:  programID,
			ExerciseID: it.ExerciseID,
			Section:    sectionOrDefault(it.Section),
			Overrides:  it.Overrides,
		}
	}
	return s.repo.AddItems(ctx, programID, items)
}

func (s *service) UpdateItem(ctx context.Context, p auth.Principal, programID, itemID int, req UpdateItemRequest) (*Item, error) {
	if _, err := s.owned(ctx, p, programID); err != nil {
		return nil, err
	}
	item, err := s.repo.GetItem(ctx, programID, itemID)
	if err != nil {
		return nil, err
	}
	if req.Section != "" {
		item.Section = req.Section
	}
	item.Overrides = req.Overrides
	return s.repo.UpdateItem(ctx, item)
}

func (s *service) RemoveItem(ctx context.Context, p auth.Principal, programID, itemID int) error {
	if _, err := s.owned(ctx, p, programID); err != nil {
		return err
	}
	return s.repo.DeleteItem(ctx, programID, itemID)
}

// ReorderItems requires the full list of the program's item ids, each exactly once.
func (s *service) ReorderItems(ctx context.Context, p auth.Principal, programID int, req ReorderRequest) ([]Item, error) {
	if _, err := s.owned(ctx, p, programID); err != nil {
		return nil, err
	}

	current, err := s.repo.ListItems(ctx, programID)
	if err != nil {
		return nil, err
	}
	if len(current) != len(req.Items) {
		return nil, fmt.Errorf("%w: expected %d items, got %d", api.ErrInvalidInput, len(current), len(req.Items))
	}
	known := make(map[int]bool, len(current))
	for _, it := range current {
		known[it.ID] = true
	}
	for _, e := range req.Items {
		if !known[e.ID] {
			return nil, fmt.Errorf("%w: item %d listed twice or not in program", api.ErrInvalidInput, e.ID)
		}
		delete(known, e.ID)
	}

	if err := s.repo.ReorderItems(ctx, programID, req.Items); err != nil {
		return nil, err
	}
	return s.repo.ListItems(ctx, programID)
}

func (s *service) owned(ctx context.Context, p auth.Principal, id int) (*Program, error) {
	prog, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if prog.InstructorID != p.UserID && !p.IsAdmin() {
		return nil, api.ErrForbidden
	}
	return prog, nil
}

// checkUsable verifies every id resolves to an active exercise of the program owner.
func checkUsable(found []exercise.Exercise, ids []int, ownerID int) error {
	byID := make(map[int]exercise.Exercise, len(found))
	for _, e := range found {
		byID[e.ID] = e
	}
	for _, id := range ids {
		e, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: %d", exercise.ErrExerciseNotFound, id)
		}
		if e.IsArchived() {
			return fmt.Errorf("%w: %d", exercise.ErrExerciseArchived, id)
		}
		if e.InstructorID != ownerID {
			return api.ErrForbidden
		}
	}
	return nil
}

func apply(prog *Program, req ProgramRequest) {
	prog.Name = req.Name
	prog.Description = req.Description
	prog.Difficulty = req.Difficulty
	if prog.Difficulty == "" {
		prog.Difficulty = DifficultyBeginner
	}
	prog.DefaultLocation = req.DefaultLocation
	prog.IsPublic = req.IsPublic
}

func sectionOrDefault(section string) string {
	if section == "" {
		return SectionCore
	}
	return section
}
