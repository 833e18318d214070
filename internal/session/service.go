package session

import (
	"context"
	"errors"
	"fmt"

	"fitcoach/internal/api"
	"fitcoach/internal/auth"
	"fitcoach/internal/clientprogram"
	"fitcoach/internal/logger"
	"fitcoach/internal/metrics"
	"fitcoach/internal/notification"
	"fitcoach/internal/user"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrExerciseNotInSession = errors.New("exercise not in session")
	ErrSessionFinished      = errors.New("session already finished")
	ErrSessionNotFinished   = errors.New("session not finished yet")
	ErrProgramInactive      = errors.New("client program is not active")
	ErrKudosExists          = errors.New("kudos already given for this session")
)

type ClientPrograms interface {
	Get(ctx context.Context, p auth.Principal, id int) (*clientprogram.ClientProgram, error)
	Effective(ctx context.Context, p auth.Principal, id int) (*clientprogram.Effective, error)
}

// Scheduler marks scheduled occurrences done when a session finishes.
type Scheduler interface {
	CompleteToday(ctx context.Context, clientProgramID int) (int64, error)
}

type Service interface {
	Start(ctx context.Context, p auth.Principal, clientProgramID int) (*Session, error)
	RecordExercise(ctx context.Context, p auth.Principal, id, exerciseID int, req RecordExerciseRequest) (*Exercise, error)
	Finish(ctx context.Context, p auth.Principal, id int, notes *string) (*Session, error)
	List(ctx context.Context, p auth.Principal, clientID, limit, offset int) ([]Session, int, error)
	Get(ctx context.Context, p auth.Principal, id int) (*Session, error)
	GiveKudos(ctx context.Context, p auth.Principal, id int, message string) (*Kudos, error)
}

type service struct {
	repo      Repository
	programs  ClientPrograms
	scheduler Scheduler
	users     user.Finder
	notifier  notification.Notifier
}

func NewService(repo Repository, programs ClientPrograms, scheduler Scheduler, users user.Finder, notifier notification.Notifier) Service {
	return &service{repo: repo, programs: programs, scheduler: scheduler, users: users, notifier: notifier}
}

func (s *service) Start(ctx context.Context, p auth.Principal, clientProgramID int) (*Session, error) {
	if !p.IsClient() {
		return nil, api.ErrForbidden
	}
	cp, err := s.programs.Get(ctx, p, clientProgramID)
	if err != nil {
		return nil, err
	}
	if cp.ClientID != p.UserID {
		return nil, api.ErrForbidden
	}
	if !cp.IsActive {
		return nil, ErrProgramInactive
	}

	eff, err := s.programs.Effective(ctx, p, clientProgramID)
	if err != nil {
		return nil, err
	}
	exerciseIDs := make([]int, len(eff.Items))
	for i, item := range eff.Items {
		exerciseIDs[i] = item.ExerciseID
	}

	created, err := s.repo.Create(ctx, &Session{ClientProgramID: cp.ID, ClientID: cp.ClientID}, exerciseIDs)
	if err != nil {
		return nil, err
	}
	logger.Info("session started", "session_id", created.ID, "client_program_id", cp.ID, "exercises", len(exerciseIDs))
	return s.attach(ctx, created)
}

// active loads a session the caller owns and can still change.
func (s *service) active(ctx context.Context, p auth.Principal, id int) (*Session, error) {
	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsClient() || sess.ClientID != p.UserID {
		return nil, api.ErrForbidden
	}
	if sess.IsFinished() {
		return nil, ErrSessionFinished
	}
	return sess, nil
}

func (s *service) RecordExercise(ctx context.Context, p auth.Principal, id, exerciseID int, req RecordExerciseRequest) (*Exercise, error) {
	if _, err := s.active(ctx, p, id); err != nil {
		return nil, err
	}
	return s.repo.RecordExercise(ctx, id, exerciseID, req)
}

func (s *service) Finish(ctx context.Context, p auth.Principal, id int, notes *string) (*Session, error) {
	sess, err := s.active(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Finish(ctx, id, notes); err != nil {
		return nil, err
	}
	metrics.RecordSessionCompleted()

	marked, err := s.scheduler.CompleteToday(ctx, sess.ClientProgramID)
	if err != nil {
		logger.Warn("marking scheduled program completed failed", "session_id", id, "error", err)
	}
	logger.Info("session finished", "session_id", id, "client_id", sess.ClientID, "scheduled_marked", marked)

	finished, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.attach(ctx, finished)
}

func (s *service) List(ctx context.Context, p auth.Principal, clientID, limit, offset int) ([]Session, int, error) {
	if clientID == 0 {
		if !p.IsClient() {
			return nil, 0, fmt.Errorf("%w: client_id is required", api.ErrInvalidInput)
		}
		clientID = p.UserID
	}
	if _, err := user.AccessClient(ctx, s.users, p, clientID); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, clientID, limit, offset)
}

func (s *service) Get(ctx context.Context, p auth.Principal, id int) (*Session, error) {
	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := user.AccessClient(ctx, s.users, p, sess.ClientID); err != nil {
		return nil, err
	}
	return s.attach(ctx, sess)
}

func (s *service) attach(ctx context.Context, sess *Session) (*Session, error) {
	exercises, err := s.repo.ListExercises(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	kudos, err := s.repo.ListKudos(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	sess.Exercises = exercises
	sess.Kudos = kudos
	return sess, nil
}

func (s *service) GiveKudos(ctx context.Context, p auth.Principal, id int, message string) (*Kudos, error) {
	if !p.IsInstructor() {
		return nil, api.ErrForbidden
	}
	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := user.EnsureClientOf(ctx, s.users, p.UserID, sess.ClientID); err != nil {
		return nil, err
	}
	if !sess.IsFinished() {
		return nil, ErrSessionNotFinished
	}

	k, err := s.repo.CreateKudos(ctx, &Kudos{SessionID: id, InstructorID: p.UserID, Message: message})
	if err != nil {
		return nil, err
	}
	metrics.RecordKudos()

	body := message
	if body == "" {
		body = fmt.Sprintf("Your coach liked your %s session", sess.ProgramName)
	}
	if _, err := s.notifier.Notify(ctx, sess.ClientID, notification.TypeKudos, "You received kudos", body); err != nil {
		logger.Warn("kudos notification failed", "session_id", id, "error", err)
	}
	return k, nil
}
