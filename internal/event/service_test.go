package event

import (
	"context"
	"sort"
	"testing"
	"time"

	"fitcoach/internal/api"
	"fitcoach/internal/auth"
	"fitcoach/internal/notification"
	"fitcoach/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memTx keeps registrations in memory so the registration state machine can be driven end to end.
type memTx struct {
	regs   []*Registration
	nextID int
	events map[int]*Event
}

func newMemTx() *memTx {
	return &memTx{nextID: 1, events: map[int]*Event{}}
}

func (m *memTx) Registration(_ context.Context, eventID, userID int) (*Registration, error) {
	for _, r := range m.regs {
		if r.EventID == eventID && r.UserID == userID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memTx) CountRegistered(_ context.Context, eventID int) (int, error) {
	n := 0
	for _, r := range m.regs {
		if r.EventID == eventID && r.Status == StatusRegistered {
			n++
		}
	}
	return n, nil
}

func (m *memTx) NextWaitPosition(_ context.Context, eventID int) (int, error) {
	highest := 0
	for _, r := range m.regs {
		if r.EventID == eventID && r.WaitlistPosition != nil && *r.WaitlistPosition > highest {
			highest = *r.WaitlistPosition
		}
	}
	return highest + 1, nil
}

func (m *memTx) SaveRegistration(_ context.Context, reg *Registration) (*Registration, error) {
	for _, r := range m.regs {
		if r.EventID == reg.EventID && r.UserID == reg.UserID {
			r.Status, r.WaitlistPosition, r.CancelledAt, r.PromotedAt = reg.Status, reg.WaitlistPosition, nil, nil
			cp := *r
			return &cp, nil
		}
	}
	stored := *reg
	stored.ID = m.nextID
	m.nextID++
	m.regs = append(m.regs, &stored)
	cp := stored
	return &cp, nil
}

func (m *memTx) FirstWaitlisted(_ context.Context, eventID int) (*Registration, error) {
	var waiting []*Registration
	for _, r := range m.regs {
		if r.EventID == eventID && r.Status == StatusWaitlisted {
			waiting = append(waiting, r)
		}
	}
	if len(waiting) == 0 {
		return nil, nil
	}
	sort.Slice(waiting, func(i, j int) bool { return *waiting[i].WaitlistPosition < *waiting[j].WaitlistPosition })
	cp := *waiting[0]
	return &cp, nil
}

func (m *memTx) find(id int) *Registration {
	for _, r := range m.regs {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (m *memTx) CancelRegistration(_ context.Context, id int) error {
	now := time.Now()
	r := m.find(id)
	r.Status, r.CancelledAt = StatusCancelled, &now
	return nil
}

func (m *memTx) Promote(_ context.Context, id int) (*Registration, error) {
	now := time.Now()
	r := m.find(id)
	r.Status, r.PromotedAt = StatusRegistered, &now
	cp := *r
	return &cp, nil
}

func (m *memTx) UpdateEvent(_ context.Context, e *Event) (*Event, error) {
	cp := *e
	m.events[e.ID] = &cp
	return &cp, nil
}

func (m *memTx) statusOf(userID int) string {
	for _, r := range m.regs {
		if r.UserID == userID {
			return r.Status
		}
	}
	return ""
}

type MockRepository struct {
	mock.Mock
	tx *memTx
}

func (m *MockRepository) Create(ctx context.Context, e *Event) (*Event, error) {
	args := m.Called(ctx, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Event), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id int) (*Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Event), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, f ListFilter) ([]Event, int, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]Event), args.Int(1), args.Error(2)
}

func (m *MockRepository) Cancel(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) GetRegistration(ctx context.Context, eventID, userID int) (*Registration, error) {
	args := m.Called(ctx, eventID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Registration), args.Error(1)
}

func (m *MockRepository) ListAttendees(ctx context.Context, eventID int) ([]Attendee, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Attendee), args.Error(1)
}

// InEventTx hands fn a copy of the configured event and the in-memory transaction.
func (m *MockRepository) InEventTx(ctx context.Context, eventID int, fn func(ctx context.Context, tx Tx, e *Event) error) error {
	args := m.Called(ctx, eventID)
	if err := args.Error(1); err != nil {
		return err
	}
	e := *args.Get(0).(*Event)
	if stored, ok := m.tx.events[eventID]; ok {
		e = *stored
	}
	return fn(ctx, m.tx, &e)
}

type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) FindByID(ctx context.Context, id int) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, userID int, notificationType, title, message string) (*notification.Notification, error) {
	args := m.Called(ctx, userID, notificationType, title, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.Notification), args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendRegistrationConfirmation(ctx context.Context, to, name, eventTitle string, start time.Time) error {
	return m.Called(ctx, to, name, eventTitle, start).Error(0)
}

func (m *MockMailer) SendWaitlisted(ctx context.Context, to, name, eventTitle string, position int) error {
	return m.Called(ctx, to, name, eventTitle, position).Error(0)
}

func (m *MockMailer) SendWaitlistPromotion(ctx context.Context, to, name, eventTitle string, start time.Time) error {
	return m.Called(ctx, to, name, eventTitle, start).Error(0)
}

var (
	coach    = auth.Principal{UserID: 1, Role: auth.RoleInstructor}
	fixedNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	start    = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
)

func member(id int) auth.Principal {
	return auth.Principal{UserID: id, Role: auth.RoleClient}
}

func intPtr(v int) *int { return &v }

type fixture struct {
	svc      Service
	repo     *MockRepository
	users    *MockUsers
	notifier *MockNotifier
	mailer   *MockMailer
}

func newFixture(e *Event) *fixture {
	f := &fixture{
		repo:     &MockRepository{tx: newMemTx()},
		users:    new(MockUsers),
		notifier: new(MockNotifier),
		mailer:   new(MockMailer),
	}
	svc := NewService(f.repo, f.users, f.notifier, f.mailer).(*service)
	svc.now = func() time.Time { return fixedNow }
	f.svc = svc

	if e != nil {
		f.repo.On("InEventTx", mock.Anything, e.ID).Return(e, nil).Maybe()
	}
	f.users.On("FindByID", mock.Anything, mock.Anything).Return(&user.User{Email: "m@example.com", Name: "Member"}, nil).Maybe()
	f.mailer.On("SendRegistrationConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.mailer.On("SendWaitlisted", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.mailer.On("SendWaitlistPromotion", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.notifier.On("Notify", mock.Anything, mock.Anything, notification.TypeEventPromoted, mock.Anything, mock.Anything).
		Return(&notification.Notification{}, nil).Maybe()
	return f
}

func bootcamp(capacity int, waitlist bool) *Event {
	return &Event{ID: 9, InstructorID: 1, Title: "Bootcamp", StartDate: start, EndDate: start.Add(time.Hour),
		MaxAttendees: intPtr(capacity), AllowWaitlist: waitlist}
}

func TestRegister_FillsThenRejects(t *testing.T) {
	f := newFixture(bootcamp(2, false))

	for _, id := range []int{10, 11} {
		reg, err := f.svc.Register(context.Background(), member(id), 9)
		require.NoError(t, err)
		assert.Equal(t, StatusRegistered, reg.Status)
	}

	_, err := f.svc.Register(context.Background(), member(12), 9)
	assert.ErrorIs(t, err, ErrEventFull)
	assert.Equal(t, "", f.repo.tx.statusOf(12))
}

func TestRegister_WaitlistPositionsIncrease(t *testing.T) {
	f := newFixture(bootcamp(1, true))

	_, err := f.svc.Register(context.Background(), member(10), 9)
	require.NoError(t, err)

	var last int
	for _, id := range []int{11, 12, 13} {
		reg, err := f.svc.Register(context.Background(), member(id), 9)
		require.NoError(t, err)
		assert.Equal(t, StatusWaitlisted, reg.Status)
		require.NotNil(t, reg.WaitlistPosition)
		assert.Greater(t, *reg.WaitlistPosition, last)
		last = *reg.WaitlistPosition
	}
	f.mailer.AssertCalled(t, "SendWaitlisted", mock.Anything, "m@example.com", "Member", "Bootcamp", 3)
}

func TestRegister_Twice(t *testing.T) {
	f := newFixture(bootcamp(5, false))

	_, err := f.svc.Register(context.Background(), member(10), 9)
	require.NoError(t, err)
	_, err = f.svc.Register(context.Background(), member(10), 9)

	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestRegister_DeadlinePassed(t *testing.T) {
	e := bootcamp(5, false)
	e.StartDate = fixedNow.Add(12 * time.Hour)
	e.RegistrationDeadlineHours = 24
	f := newFixture(e)

	_, err := f.svc.Register(context.Background(), member(10), 9)

	assert.ErrorIs(t, err, ErrRegistrationClosed)
}

func TestRegister_CancelledEvent(t *testing.T) {
	e := bootcamp(5, false)
	e.CancelledAt = &fixedNow
	f := newFixture(e)

	_, err := f.svc.Register(context.Background(), member(10), 9)

	assert.ErrorIs(t, err, ErrEventCancelled)
}

func TestUnregister_PromotesEarliestWaitlisted(t *testing.T) {
	f := newFixture(bootcamp(2, true))
	ctx := context.Background()
	for _, id := range []int{10, 11, 12, 13} {
		_, err := f.svc.Register(ctx, member(id), 9)
		require.NoError(t, err)
	}
	before, _ := f.repo.tx.CountRegistered(ctx, 9)

	require.NoError(t, f.svc.Unregister(ctx, member(10), 9))

	after, _ := f.repo.tx.CountRegistered(ctx, 9)
	assert.Equal(t, before, after)
	assert.Equal(t, StatusCancelled, f.repo.tx.statusOf(10))
	assert.Equal(t, StatusRegistered, f.repo.tx.statusOf(12))
	assert.Equal(t, StatusWaitlisted, f.repo.tx.statusOf(13))
	f.notifier.AssertNumberOfCalls(t, "Notify", 1)
	f.notifier.AssertCalled(t, "Notify", mock.Anything, 12, notification.TypeEventPromoted, mock.Anything, mock.Anything)
	f.mailer.AssertNumberOfCalls(t, "SendWaitlistPromotion", 1)
}

func TestUnregister_FromWaitlistPromotesNobody(t *testing.T) {
	f := newFixture(bootcamp(1, true))
	ctx := context.Background()
	for _, id := range []int{10, 11, 12} {
		_, err := f.svc.Register(ctx, member(id), 9)
		require.NoError(t, err)
	}

	require.NoError(t, f.svc.Unregister(ctx, member(11), 9))

	assert.Equal(t, StatusCancelled, f.repo.tx.statusOf(11))
	assert.Equal(t, StatusWaitlisted, f.repo.tx.statusOf(12))
	f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUnregister_NotRegistered(t *testing.T) {
	f := newFixture(bootcamp(1, true))

	err := f.svc.Unregister(context.Background(), member(10), 9)

	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestRegister_ReusesCancelledRow(t *testing.T) {
	f := newFixture(bootcamp(3, false))
	ctx := context.Background()

	first, err := f.svc.Register(ctx, member(10), 9)
	require.NoError(t, err)
	require.NoError(t, f.svc.Unregister(ctx, member(10), 9))
	again, err := f.svc.Register(ctx, member(10), 9)

	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, StatusRegistered, again.Status)
	assert.Len(t, f.repo.tx.regs, 1)
}

func TestUpdate_RaisedCapacityPromotes(t *testing.T) {
	f := newFixture(bootcamp(1, true))
	ctx := context.Background()
	for _, id := range []int{10, 11, 12} {
		_, err := f.svc.Register(ctx, member(id), 9)
		require.NoError(t, err)
	}
	f.repo.On("GetByID", mock.Anything, 9).Return(&Event{ID: 9}, nil)

	req := EventRequest{Title: "Bootcamp", StartDate: start, EndDate: start.Add(time.Hour), MaxAttendees: intPtr(2), AllowWaitlist: true}
	_, err := f.svc.Update(ctx, coach, 9, req)

	require.NoError(t, err)
	assert.Equal(t, StatusRegistered, f.repo.tx.statusOf(11))
	assert.Equal(t, StatusWaitlisted, f.repo.tx.statusOf(12))
}

func TestUpdate_DisablingWaitlistFillsSeatsThenCancelsTheRest(t *testing.T) {
	f := newFixture(bootcamp(1, true))
	ctx := context.Background()
	for _, id := range []int{10, 11, 12} {
		_, err := f.svc.Register(ctx, member(id), 9)
		require.NoError(t, err)
	}
	f.repo.On("GetByID", mock.Anything, 9).Return(&Event{ID: 9}, nil)

	req := EventRequest{Title: "Bootcamp", StartDate: start, EndDate: start.Add(time.Hour), MaxAttendees: intPtr(2)}
	_, err := f.svc.Update(ctx, coach, 9, req)

	require.NoError(t, err)
	assert.Equal(t, StatusRegistered, f.repo.tx.statusOf(11))
	assert.Equal(t, StatusCancelled, f.repo.tx.statusOf(12))

	_, err = f.svc.Register(ctx, member(13), 9)
	assert.ErrorIs(t, err, ErrEventFull)
}

func TestUpdate_NotOwner(t *testing.T) {
	f := newFixture(bootcamp(1, true))
	other := auth.Principal{UserID: 2, Role: auth.RoleInstructor}

	_, err := f.svc.Update(context.Background(), other, 9, EventRequest{StartDate: start, EndDate: start})

	assert.ErrorIs(t, err, api.ErrForbidden)
}

func TestCreate(t *testing.T) {
	t.Run("client forbidden", func(t *testing.T) {
		f := newFixture(nil)
		_, err := f.svc.Create(context.Background(), member(10), EventRequest{})
		assert.ErrorIs(t, err, api.ErrForbidden)
	})

	t.Run("end before start", func(t *testing.T) {
		f := newFixture(nil)
		_, err := f.svc.Create(context.Background(), coach, EventRequest{StartDate: start, EndDate: start.Add(-time.Hour)})
		assert.ErrorIs(t, err, api.ErrInvalidInput)
	})

	t.Run("created", func(t *testing.T) {
		f := newFixture(nil)
		f.repo.On("Create", mock.Anything, mock.MatchedBy(func(e *Event) bool {
			return e.InstructorID == 1 && e.Title == "Bootcamp"
		})).Return(&Event{ID: 9}, nil)

		e, err := f.svc.Create(context.Background(), coach, EventRequest{Title: "Bootcamp", StartDate: start, EndDate: start})

		require.NoError(t, err)
		assert.Equal(t, 9, e.ID)
	})
}

func TestList(t *testing.T) {
	t.Run("upcoming", func(t *testing.T) {
		f := newFixture(nil)
		f.repo.On("List", mock.Anything, ListFilter{From: &fixedNow, Limit: 20}).Return([]Event{{ID: 9}}, 1, nil)

		items, total, err := f.svc.List(context.Background(), member(10), false, 20, 0)

		require.NoError(t, err)
		assert.Len(t, items, 1)
		assert.Equal(t, 1, total)
	})

	t.Run("mine", func(t *testing.T) {
		f := newFixture(nil)
		f.repo.On("List", mock.Anything, ListFilter{InstructorID: 1, Limit: 20}).Return([]Event{}, 0, nil)

		_, _, err := f.svc.List(context.Background(), coach, true, 20, 0)

		require.NoError(t, err)
	})
}

func TestGet_AttachesActiveRegistration(t *testing.T) {
	f := newFixture(nil)
	f.repo.On("GetByID", mock.Anything, 9).Return(&Event{ID: 9, RegisteredCount: 3}, nil)
	f.repo.On("GetRegistration", mock.Anything, 9, 10).Return(&Registration{ID: 1, Status: StatusWaitlisted}, nil)

	e, err := f.svc.Get(context.Background(), member(10), 9)

	require.NoError(t, err)
	require.NotNil(t, e.MyRegistration)
	assert.Equal(t, StatusWaitlisted, e.MyRegistration.Status)
}

func TestListAttendees_OwnerOnly(t *testing.T) {
	f := newFixture(nil)
	f.repo.On("GetByID", mock.Anything, 9).Return(&Event{ID: 9, InstructorID: 1}, nil)

	_, err := f.svc.ListAttendees(context.Background(), member(10), 9)

	assert.ErrorIs(t, err, api.ErrForbidden)
}
