package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fitcoach/internal/api"
	"fitcoach/internal/auth"
	"fitcoach/internal/logger"
	"fitcoach/internal/metrics"
	"fitcoach/internal/notification"
	"fitcoach/internal/user"
)

var (
	ErrEventNotFound      = errors.New("event not found")
	ErrEventCancelled     = errors.New("event has been cancelled")
	ErrEventFull          = errors.New("event is full")
	ErrRegistrationClosed = errors.New("registration deadline has passed")
	ErrAlreadyRegistered  = errors.New("already registered for this event")
	ErrNotRegistered      = errors.New("not registered for this event")
)

// Mailer queues the registration emails; *email.Service satisfies it.
type Mailer interface {
	SendRegistrationConfirmation(ctx context.Context, to, name, eventTitle string, start time.Time) error
	SendWaitlisted(ctx context.Context, to, name, eventTitle string, position int) error
	SendWaitlistPromotion(ctx context.Context, to, name, eventTitle string, start time.Time) error
}

type Service interface {
	Create(ctx context.Context, p auth.Principal, req EventRequest) (*Event, error)
	Update(ctx context.Context, p auth.Principal, id int, req EventRequest) (*Event, error)
	Cancel(ctx context.Context, p auth.Principal, id int) error
	List(ctx context.Context, p auth.Principal, mine bool, limit, offset int) ([]Event, int, error)
	Get(ctx context.Context, p auth.Principal, id int) (*Event, error)
	Register(ctx context.Context, p auth.Principal, id int) (*Registration, error)
	Unregister(ctx context.Context, p auth.Principal, id int) error
	ListAttendees(ctx context.Context, p auth.Principal, id int) ([]Attendee, error)
}

type service struct {
	repo     Repository
	users    user.Finder
	notifier notification.Notifier
	mailer   Mailer
	now      func() time.Time
}

func NewService(repo Repository, users user.Finder, notifier notification.Notifier, mailer Mailer) Service {
	return &service{repo: repo, users: users, notifier: notifier, mailer: mailer, now: time.Now}
}

func canManage(p auth.Principal, e *Event) bool {
	return p.IsAdmin() || (p.IsInstructor() && e.InstructorID == p.UserID)
}

func (s *service) Create(ctx context.Context, p auth.Principal, req EventRequest) (*Event, error) {
	if !p.IsInstructor() && !p.IsAdmin() {
		return nil, api.ErrForbidden
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, fmt.Errorf("%w: end_date is before start_date", api.ErrInvalidInput)
	}

	e := apply(&Event{InstructorID: p.UserID}, req)
	created, err := s.repo.Create(ctx, e)
	if err != nil {
		return nil, err
	}
	logger.Info("event created", "event_id", created.ID, "instructor_id", p.UserID, "start", created.StartDate)
	return created, nil
}

func apply(e *Event, req EventRequest) *Event {
	e.Title = req.Title
	e.Description = req.Description
	e.Location = req.Location
	e.StartDate = req.StartDate
	e.EndDate = req.EndDate
	e.MaxAttendees = req.MaxAttendees
	e.AllowWaitlist = req.AllowWaitlist
	e.RegistrationDeadlineHours = req.RegistrationDeadlineHours
	return e
}

// Update edits the event and, when capacity grew, promotes waitlisted registrants into the free seats.
// Turning the waitlist off cancels whoever is still waiting after those promotions.
func (s *service) Update(ctx context.Context, p auth.Principal, id int, req EventRequest) (*Event, error) {
	if req.EndDate.Before(req.StartDate) {
		return nil, fmt.Errorf("%w: end_date is before start_date", api.ErrInvalidInput)
	}

	var updated *Event
	var promoted, dropped []Registration
	err := s.repo.InEventTx(ctx, id, func(ctx context.Context, tx Tx, e *Event) error {
		if !canManage(p, e) {
			return api.ErrForbidden
		}
		if e.IsCancelled() {
			return ErrEventCancelled
		}
		var err error
		if updated, err = tx.UpdateEvent(ctx, apply(e, req)); err != nil {
			return err
		}
		if promoted, err = fillSeats(ctx, tx, updated); err != nil {
			return err
		}
		if !updated.AllowWaitlist {
			dropped, err = dropWaitlist(ctx, tx, id)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(dropped) > 0 {
		logger.Info("event waitlist closed", "event_id", id, "cancelled", len(dropped))
	}

	for i := range promoted {
		s.announcePromotion(ctx, updated, &promoted[i])
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) Cancel(ctx context.Context, p auth.Principal, id int) error {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !canManage(p, e) {
		return api.ErrForbidden
	}
	if err := s.repo.Cancel(ctx, id); err != nil {
		return err
	}
	logger.Info("event cancelled", "event_id", id, "registered", e.RegisteredCount, "waitlisted", e.WaitlistCount)
	return nil
}

// List returns the caller's own events when mine is set, otherwise upcoming live events.
func (s *service) List(ctx context.Context, p auth.Principal, mine bool, limit, offset int) ([]Event, int, error) {
	f := ListFilter{Limit: limit, Offset: offset}
	if mine {
		if !p.IsInstructor() {
			return nil, 0, api.ErrForbidden
		}
		f.InstructorID = p.UserID
	} else {
		now := s.now()
		f.From = &now
	}
	return s.repo.List(ctx, f)
}

func (s *service) Get(ctx context.Context, p auth.Principal, id int) (*Event, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	reg, err := s.repo.GetRegistration(ctx, id, p.UserID)
	if err != nil {
		return nil, err
	}
	if reg.IsActive() {
		e.MyRegistration = reg
	}
	return e, nil
}

func (s *service) Register(ctx context.Context, p auth.Principal, id int) (*Registration, error) {
	var ev *Event
	var reg *Registration
	err := s.repo.InEventTx(ctx, id, func(ctx context.Context, tx Tx, e *Event) error {
		ev = e
		if e.IsCancelled() {
			return ErrEventCancelled
		}
		if RegistrationClosed(e, s.now()) {
			return ErrRegistrationClosed
		}
		existing, err := tx.Registration(ctx, id, p.UserID)
		if err != nil {
			return err
		}
		if existing.IsActive() {
			return ErrAlreadyRegistered
		}

		registered, err := tx.CountRegistered(ctx, id)
		if err != nil {
			return err
		}
		status, err := Decide(Capacity{Registered: registered, MaxAttendees: e.MaxAttendees, AllowWaitlist: e.AllowWaitlist})
		if err != nil {
			return err
		}

		next := &Registration{EventID: id, UserID: p.UserID, Status: status}
		if status == StatusWaitlisted {
			pos, err := tx.NextWaitPosition(ctx, id)
			if err != nil {
				return err
			}
			next.WaitlistPosition = &pos
		}
		reg, err = tx.SaveRegistration(ctx, next)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrEventFull) {
			metrics.RecordRegistration("rejected")
		}
		return nil, err
	}

	metrics.RecordRegistration(reg.Status)
	logger.Info("event registration", "event_id", id, "user_id", p.UserID, "status", reg.Status)
	s.mailRegistration(ctx, ev, reg)
	return reg, nil
}

func (s *service) Unregister(ctx context.Context, p auth.Principal, id int) error {
	var ev *Event
	var promoted []Registration
	err := s.repo.InEventTx(ctx, id, func(ctx context.Context, tx Tx, e *Event) error {
		ev = e
		reg, err := tx.Registration(ctx, id, p.UserID)
		if err != nil {
			return err
		}
		if !reg.IsActive() {
			return ErrNotRegistered
		}
		if err := tx.CancelRegistration(ctx, reg.ID); err != nil {
			return err
		}
		if reg.Status != StatusRegistered {
			return nil
		}
		promoted, err = fillSeats(ctx, tx, e)
		return err
	})
	if err != nil {
		return err
	}

	logger.Info("event unregistration", "event_id", id, "user_id", p.UserID, "promoted", len(promoted))
	for i := range promoted {
		s.announcePromotion(ctx, ev, &promoted[i])
	}
	return nil
}

// fillSeats promotes waitlisted registrants in position order while the event has room.
// fillSeats promotes waitlisted registrants in position order while the event has room.
func fillSeats(ctx context.Context, tx Tx, e *Event) ([]Registration, error) {
	registered, err := tx.CountRegistered(ctx, e.ID)
	if err != nil {
		return nil, err
	}

	var promoted []Registration
	for (Capacity{Registered: registered, MaxAttendees: e.MaxAttendees}).HasRoom() {
		next, err := tx.FirstWaitlisted(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		if next == nil {
			break
		}
		reg, err := tx.Promote(ctx, next.ID)
		if err != nil {
			return nil, err
		}
		promoted = append(promoted, *reg)
		registered++
	}
	return promoted, nil
}

func dropWaitlist(ctx context.Context, tx Tx, eventID int) ([]Registration, error) {
	var dropped []Registration
	for {
		next, err := tx.FirstWaitlisted(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return dropped, nil
		}
		if err := tx.CancelRegistration(ctx, next.ID); err != nil {
			return nil, err
		}
		dropped = append(dropped, *next)
	}
}

func (s *service) ListAttendees(ctx context.Context, p auth.Principal, id int) ([]Attendee, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(p, e) {
		return nil, api.ErrForbidden
	}
	return s.repo.ListAttendees(ctx, id)
}

func (s *service) mailRegistration(ctx context.Context, e *Event, reg *Registration) {
	u, err := s.users.FindByID(ctx, reg.UserID)
	if err != nil {
		logger.Warn("registration mail skipped", "event_id", e.ID, "user_id", reg.UserID, "error", err)
		return
	}
	if reg.Status == StatusWaitlisted && reg.WaitlistPosition != nil {
		err = s.mailer.SendWaitlisted(ctx, u.Email, u.Name, e.Title, *reg.WaitlistPosition)
	} else {
		err = s.mailer.SendRegistrationConfirmation(ctx, u.Email, u.Name, e.Title, e.StartDate)
	}
	if err != nil {
		logger.Warn("registration mail failed", "event_id", e.ID, "user_id", reg.UserID, "error", err)
	}
}

func (s *service) announcePromotion(ctx context.Context, e *Event, reg *Registration) {
	metrics.RecordWaitlistPromotion()
	logger.Info("waitlist promotion", "event_id", e.ID, "user_id", reg.UserID)

	if _, err := s.notifier.Notify(ctx, reg.UserID, notification.TypeEventPromoted,
		"You're in!", fmt.Sprintf("A spot opened up for %s", e.Title)); err != nil {
		logger.Warn("promotion notification failed", "event_id", e.ID, "user_id", reg.UserID, "error", err)
	}
	u, err := s.users.FindByID(ctx, reg.UserID)
	if err != nil {
		logger.Warn("promotion mail skipped", "event_id", e.ID, "user_id", reg.UserID, "error", err)
		return
	}
	if err := s.mailer.SendWaitlistPromotion(ctx, u.Email, u.Name, e.Title, e.StartDate); err != nil {
		logger.Warn("promotion mail failed", "event_id", e.ID, "user_id", reg.UserID, "error", err)
	}
}
