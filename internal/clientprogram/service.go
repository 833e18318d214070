package clientprogram

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fitcoach/internal/api"
	"fitcoach/internal/auth"
	"fitcoach/internal/exercise"
	"fitcoach/internal/logger"
	"fitcoach/internal/metrics"
	"fitcoach/internal/notification"
	"fitcoach/internal/program"
	"fitcoach/internal/user"
)

var (
	ErrClientProgramNotFound = errors.New("client program not found")
	ErrAlreadyAssigned       = errors.New("program already assigned to client")
	ErrItemNotFound          = errors.New("exercise not in client program")
	ErrAlreadyEffective      = errors.New("exercise already in client program")
)

// ProgramSource reads program templates.
type ProgramSource interface {
	GetByID(ctx context.Context, id int) (*program.Program, error)
	ListItems(ctx context.Context, programID int) ([]program.Item, error)
}

type ExerciseLookup interface {
	GetByID(ctx context.Context, id int) (*exercise.Exercise, error)
	GetByIDs(ctx context.Context, ids []int) ([]exercise.Exercise, error)
}

type Service interface {
	Assign(ctx context.Context, p auth.Principal, req AssignRequest) (*ClientProgram, error)
	ListForClient(ctx context.Context, p auth.Principal, clientID int) ([]ClientProgram, error)
	Get(ctx context.Context, p auth.Principal, id int) (*ClientProgram, error)
	Manageable(ctx context.Context, p auth.Principal, id int) (*ClientProgram, error)
	Update(ctx context.Context, p auth.Principal, id int, req UpdateRequest) (*ClientProgram, error)
	ReorderPrograms(ctx context.Context, p auth.Principal, clientID int, ids []int) ([]ClientProgram, error)
	Unassign(ctx context.Context, p auth.Principal, id int) error

	Effective(ctx context.Context, p auth.Principal, id int) (*Effective, error)
	CustomizeItem(ctx context.Context, p auth.Principal, id, exerciseID int, req CustomizeRequest) (*Effective, error)
	RemoveItem(ctx context.Context, p auth.Principal, id, exerciseID int) (*Effective, error)
	RestoreItem(ctx context.Context, p auth.Principal, id, exerciseID int) (*Effective, error)
	AddItem(ctx context.Context, p auth.Principal, id int, req AddItemRequest) (*Effective, error)
	ResetItem(ctx context.Context, p auth.Principal, id, exerciseID int) (*Effective, error)
	ReorderItems(ctx context.Context, p auth.Principal, id int, exerciseIDs []int) (*Effective, error)
}

type service struct {
	repo      Repository
	programs  ProgramSource
	exercises ExerciseLookup
	users     user.Finder
	notifier  notification.Notifier
}

func NewService(repo Repository, programs ProgramSource, exercises ExerciseLookup, users user.Finder, notifier notification.Notifier) Service {
	return &service{
		repo:      repo,
		programs:  programs,
		exercises: exercises,
		users:     users,
		notifier:  notifier,
	}
}

// Assign gives a program to a client. Instructors assign their own or public programs to their
// clients; a client may pick a public program from the library for themselves.
func (s *service) Assign(ctx context.Context, p auth.Principal, req AssignRequest) (*ClientProgram, error) {
	prog, err := s.programs.GetByID(ctx, req.ProgramID)
	if err != nil {
		return nil, err
	}
	if prog.IsArchived() {
		return nil, program.ErrProgramArchived
	}

	cp := &ClientProgram{ProgramID: prog.ID, Source: SourceInstructor}
	assignedBy := p.UserID
	cp.AssignedBy = &assignedBy

	switch {
	case p.IsClient():
		if !prog.IsPublic {
			return nil, api.ErrForbidden
		}
		cp.ClientID = p.UserID
		cp.Source = SourceLibrary
	default:
		if req.ClientID == 0 {
			return nil, fmt.Errorf("%w: client_id is required", api.ErrInvalidInput)
		}
		if !p.IsAdmin() {
			if _, err := user.EnsureClientOf(ctx, s.users, p.UserID, req.ClientID); err != nil {
				return nil, err
			}
			if !prog.IsPublic && prog.InstructorID != p.UserID {
				return nil, api.ErrForbidden
			}
		}
		cp.ClientID = req.ClientID
	}

	if cp.StartDate, cp.EndDate, err = parseWindow(req.StartDate, req.EndDate, nil, nil); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, cp)
	if err != nil {
		return nil, err
	}
	metrics.RecordAssignment(cp.Source)
	logger.Info("program assigned",
		"client_program_id", created.ID, "client_id", created.ClientID, "program_id", prog.ID, "source", cp.Source)

	if cp.Source == SourceInstructor {
		if _, err := s.notifier.Notify(ctx, cp.ClientID, notification.TypeProgramAssigned,
			"New program assigned", fmt.Sprintf("You have a new program: %s", prog.Name)); err != nil {
			logger.Warn("program assigned notification failed", "client_program_id", created.ID, "error", err)
		}
	}
	return created, nil
}

func (s *service) ListForClient(ctx context.Context, p auth.Principal, clientID int) ([]ClientProgram, error) {
	if _, err := user.AccessClient(ctx, s.users, p, clientID); err != nil {
		return nil, err
	}
	return s.repo.ListByClient(ctx, clientID)
}

// Get returns the assignment when the caller is the client, the client's instructor or an admin.
func (s *service) Get(ctx context.Context, p auth.Principal, id int) (*ClientProgram, error) {
	cp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := user.AccessClient(ctx, s.users, p, cp.ClientID); err != nil {
		return nil, err
	}
	return cp, nil
}

// Manageable is Get restricted to callers allowed to change the program: the client's instructor,
// an admin, or the client for programs they picked from the library.
func (s *service) Manageable(ctx context.Context, p auth.Principal, id int) (*ClientProgram, error) {
	cp, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if p.IsClient() && cp.Source != SourceLibrary {
		return nil, api.ErrForbidden
	}
	return cp, nil
}

func (s *service) Update(ctx context.Context, p auth.Principal, id int, req UpdateRequest) (*ClientProgram, error) {
	cp, err := s.Manageable(ctx, p, id)
	if err != nil {
		return nil, err
	}

	if req.IsActive != nil {
		cp.IsActive = *req.IsActive
	}
	if req.SortOrder != nil {
		cp.SortOrder = *req.SortOrder
	}
	if cp.StartDate, cp.EndDate, err = parseWindow(req.StartDate, req.EndDate, cp.StartDate, cp.EndDate); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, cp)
}

// ReorderPrograms takes every program id of the client in the desired order.
func (s *service) ReorderPrograms(ctx context.Context, p auth.Principal, clientID int, ids []int) ([]ClientProgram, error) {
	if _, err := user.AccessClient(ctx, s.users, p, clientID); err != nil {
		return nil, err
	}

	current, err := s.repo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	currentIDs := make([]int, len(current))
	for i, cp := range current {
		currentIDs[i] = cp.ID
	}
	if err := samePermutation(currentIDs, ids); err != nil {
		return nil, err
	}

	if err := s.repo.Reorder(ctx, clientID, ids); err != nil {
		return nil, err
	}
	return s.repo.ListByClient(ctx, clientID)
}

func (s *service) Unassign(ctx context.Context, p auth.Principal, id int) error {
	if _, err := s.Manageable(ctx, p, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info("program unassigned", "client_program_id", id, "by", p.UserID)
	return nil
}

func (s *service) Effective(ctx context.Context, p auth.Principal, id int) (*Effective, error) {
	cp, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, cp)
}

// CustomizeItem replaces the client's overrides for one effective exercise. A record left with
// nothing customized is deleted.
func (s *service) CustomizeItem(ctx context.Context, p auth.Principal, id, exerciseID int, req CustomizeRequest) (*Effective, error) {
	st, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if !st.effective.Contains(exerciseID) {
		return nil, ErrItemNotFound
	}

	rec := st.record(exerciseID)
	rec.Overrides = req.Overrides
	rec.Section = req.Section
	if err := s.save(ctx, rec); err != nil {
		return nil, err
	}
	metrics.RecordCustomization("customize")
	return s.resolve(ctx, st.cp)
}

// RemoveItem hides a template exercise for this client, or drops an exercise the client had added.
func (s *service) RemoveItem(ctx context.Context, p auth.Principal, id, exerciseID int) (*Effective, error) {
	st, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}

	rec := st.record(exerciseID)
	switch {
	case st.inTemplate[exerciseID]:
		rec.IsRemoved = true
		if err := s.save(ctx, rec); err != nil {
			return nil, err
		}
	case rec.IsAdded:
		if err := s.repo.DeleteItem(ctx, st.cp.ID, exerciseID); err != nil {
			return nil, err
		}
	default:
		return nil, ErrItemNotFound
	}
	metrics.RecordCustomization("remove")
	return s.resolve(ctx, st.cp)
}

func (s *service) RestoreItem(ctx context.Context, p auth.Principal, id, exerciseID int) (*Effective, error) {
	st, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if !st.inTemplate[exerciseID] {
		return nil, ErrItemNotFound
	}

	rec := st.record(exerciseID)
	if rec.IsRemoved {
		rec.IsRemoved = false
		if err := s.save(ctx, rec); err != nil {
			return nil, err
		}
		metrics.RecordCustomization("restore")
	}
	return s.resolve(ctx, st.cp)
}

// AddItem puts an extra exercise into the client's program. Adding a removed template exercise
// restores it instead.
func (s *service) AddItem(ctx context.Context, p auth.Principal, id int, req AddItemRequest) (*Effective, error) {
	st, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if st.effective.Contains(req.ExerciseID) {
		return nil, ErrAlreadyEffective
	}

	rec := st.record(req.ExerciseID)
	if st.inTemplate[req.ExerciseID] {
		rec.IsRemoved = false
	} else {
		e, err := s.exercises.GetByID(ctx, req.ExerciseID)
		if err != nil {
			return nil, err
		}
		if e.IsArchived() {
			return nil, exercise.ErrExerciseArchived
		}
		if !p.IsAdmin() && e.InstructorID != p.UserID && e.InstructorID != st.ownerID {
			return nil, api.ErrForbidden
		}
		rec.IsAdded = true
	}
	if req.Section != nil {
		rec.Section = req.Section
	}
	if !req.Overrides.IsZero() {
		rec.Overrides = req.Overrides
	}
	if err := s.save(ctx, rec); err != nil {
		return nil, err
	}
	metrics.RecordCustomization("add")
	return s.resolve(ctx, st.cp)
}

// ResetItem discards the client's record for the exercise, reverting to the template.
func (s *service) ResetItem(ctx context.Context, p auth.Principal, id, exerciseID int) (*Effective, error) {
	st, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteItem(ctx, st.cp.ID, exerciseID); err != nil {
		return nil, err
	}
	metrics.RecordCustomization("reset")
	return s.resolve(ctx, st.cp)
}

// ReorderItems takes every effective exercise id in the desired order.
func (s *service) ReorderItems(ctx context.Context, p auth.Principal, id int, exerciseIDs []int) (*Effective, error) {
	st, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}

	current := make([]int, len(st.effective.Items))
	for i, it := range st.effective.Items {
		current[i] = it.ExerciseID
	}
	if err := samePermutation(current, exerciseIDs); err != nil {
		return nil, err
	}

	if err := s.repo.SetItemOrder(ctx, st.cp.ID, exerciseIDs); err != nil {
		return nil, err
	}
	metrics.RecordCustomization("reorder")
	return s.resolve(ctx, st.cp)
}

// state is a client program loaded for mutation.
type state struct {
	cp         *ClientProgram
	ownerID    int
	inTemplate map[int]bool
	records    map[int]*Item
	effective  *Effective
}

// record returns the existing customization for exerciseID or a fresh one.
func (st *state) record(exerciseID int) *Item {
	if rec, ok := st.records[exerciseID]; ok {
		return rec
	}
	return &Item{ClientProgramID: st.cp.ID, ExerciseID: exerciseID}
}

func (s *service) load(ctx context.Context, p auth.Principal, id int) (*state, error) {
	cp, err := s.Manageable(ctx, p, id)
	if err != nil {
		return nil, err
	}
	prog, err := s.programs.GetByID(ctx, cp.ProgramID)
	if err != nil {
		return nil, err
	}
	templ, err := s.programs.ListItems(ctx, cp.ProgramID)
	if err != nil {
		return nil, err
	}
	custom, err := s.repo.ListItems(ctx, cp.ID)
	if err != nil {
		return nil, err
	}

	st := &state{
		cp:         cp,
		ownerID:    prog.InstructorID,
		inTemplate: make(map[int]bool, len(templ)),
		records:    make(map[int]*Item, len(custom)),
	}
	for _, it := range templ {
		st.inTemplate[it.ExerciseID] = true
	}
	for i := range custom {
		st.records[custom[i].ExerciseID] = &custom[i]
	}
	items, removed := Resolve(templ, custom, nil)
	st.effective = &Effective{ClientProgramID: cp.ID, ProgramID: cp.ProgramID, Items: items, Removed: removed}
	return st, nil
}

// save upserts rec, or deletes it once it no longer customizes anything.
func (s *service) save(ctx context.Context, rec *Item) error {
	if rec.IsEmpty() {
		return s.repo.DeleteItem(ctx, rec.ClientProgramID, rec.ExerciseID)
	}
	_, err := s.repo.UpsertItem(ctx, rec)
	return err
}

func (s *service) resolve(ctx context.Context, cp *ClientProgram) (*Effective, error) {
	templ, err := s.programs.ListItems(ctx, cp.ProgramID)
	if err != nil {
		return nil, err
	}
	custom, err := s.repo.ListItems(ctx, cp.ID)
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(templ)+len(custom))
	for _, it := range templ {
		ids = append(ids, it.ExerciseID)
	}
	for _, it := range custom {
		if it.IsAdded {
			ids = append(ids, it.ExerciseID)
		}
	}
	found, err := s.exercises.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int]*exercise.Exercise, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}

	items, removed := Resolve(templ, custom, byID)
	return &Effective{ClientProgramID: cp.ID, ProgramID: cp.ProgramID, Items: items, Removed: removed}, nil
}

// parseWindow applies optional YYYY-MM-DD updates over the current window and checks end >= start.
func parseWindow(start, end *string, curStart, curEnd *time.Time) (*time.Time, *time.Time, error) {
	var err error
	if start != nil {
		if curStart, err = parseDate(*start); err != nil {
			return nil, nil, err
		}
	}
	if end != nil {
		if curEnd, err = parseDate(*end); err != nil {
			return nil, nil, err
		}
	}
	if curStart != nil && curEnd != nil && curEnd.Before(*curStart) {
		return nil, nil, fmt.Errorf("%w: end_date before start_date", api.ErrInvalidInput)
	}
	return curStart, curEnd, nil
}

// parseDate treats an empty string as clearing the date.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(api.DateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", api.ErrInvalidInput, s)
	}
	return &t, nil
}

func samePermutation(current, proposed []int) error {
	if len(current) != len(proposed) {
		return fmt.Errorf("%w: expected %d ids, got %d", api.ErrInvalidInput, len(current), len(proposed))
	}
	remaining := make(map[int]bool, len(current))
	for _, id := range current {
		remaining[id] = true
	}
	for _, id := range proposed {
		if !remaining[id] {
			return fmt.Errorf("%w: id %d listed twice or unknown", api.ErrInvalidInput, id)
		}
		delete(remaining, id)
	}
	return nil
}
