package event

import (
	"context"
	"net/http"
	"testing"
	"time"

	"fitcoach/internal/auth"
	"fitcoach/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) event(args mock.Arguments) (*Event, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Event), args.Error(1)
}

func (m *MockService) Create(ctx context.Context, p auth.Principal, req EventRequest) (*Event, error) {
	return m.event(m.Called(ctx, p, req))
}

func (m *MockService) Update(ctx context.Context, p auth.Principal, id int, req EventRequest) (*Event, error) {
	return m.event(m.Called(ctx, p, id, req))
}

func (m *MockService) Cancel(ctx context.Context, p auth.Principal, id int) error {
	return m.Called(ctx, p, id).Error(0)
}

func (m *MockService) List(ctx context.Context, p auth.Principal, mine bool, limit, offset int) ([]Event, int, error) {
	args := m.Called(ctx, p, mine, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]Event), args.Int(1), args.Error(2)
}

func (m *MockService) Get(ctx context.Context, p auth.Principal, id int) (*Event, error) {
	return m.event(m.Called(ctx, p, id))
}

func (m *MockService) Register(ctx context.Context, p auth.Principal, id int) (*Registration, error) {
	args := m.Called(ctx, p, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Registration), args.Error(1)
}

func (m *MockService) Unregister(ctx context.Context, p auth.Principal, id int) error {
	return m.Called(ctx, p, id).Error(0)
}

func (m *MockService) ListAttendees(ctx context.Context, p auth.Principal, id int) ([]Attendee, error) {
	args := m.Called(ctx, p, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Attendee), args.Error(1)
}

func setupRouter(svc Service) *gin.Engine {
	r, g := testutil.Router()
	h := NewHandler(svc)
	g.GET("/events", h.List)
	g.POST("/events", h.Create)
	g.GET("/events/:id", h.Get)
	g.PUT("/events/:id", h.Update)
	g.DELETE("/events/:id", h.Cancel)
	g.POST("/events/:id/register", h.Register)
	g.DELETE("/events/:id/register", h.Unregister)
	g.GET("/events/:id/registrations", h.ListAttendees)
	return r
}

func TestHandler_Create(t *testing.T) {
	valid := map[string]interface{}{
		"title":         "Bootcamp",
		"start_date":    "2026-06-01T09:00:00Z",
		"end_date":      "2026-06-01T10:00:00Z",
		"max_attendees": 10,
	}
	backwards := map[string]interface{}{
		"title":      "Bootcamp",
		"start_date": "2026-06-01T09:00:00Z",
		"end_date":   "2026-06-01T08:00:00Z",
	}

	tests := []struct {
		name           string
		body           interface{}
		setupMock      func(*MockService)
		expectedStatus int
	}{
		{
			name: "created",
			body: valid,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, coach, mock.MatchedBy(func(req EventRequest) bool {
					return req.Title == "Bootcamp" && *req.MaxAttendees == 10 && req.EndDate.Sub(req.StartDate) == time.Hour
				})).Return(&Event{ID: 9}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "end before start",
			body:           backwards,
			setupMock:      func(m *MockService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "zero capacity",
			body:           map[string]interface{}{"title": "x", "start_date": "2026-06-01T09:00:00Z", "end_date": "2026-06-01T09:00:00Z", "max_attendees": 0},
			setupMock:      func(m *MockService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			w := testutil.DoJSON(setupRouter(svc), http.MethodPost, "/api/events",
				testutil.Bearer(t, 1, auth.RoleInstructor), tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_Register(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"registered", nil, http.StatusCreated},
		{"full", ErrEventFull, http.StatusConflict},
		{"duplicate", ErrAlreadyRegistered, http.StatusConflict},
		{"deadline", ErrRegistrationClosed, http.StatusUnprocessableEntity},
		{"missing", ErrEventNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			if tt.err != nil {
				svc.On("Register", mock.Anything, member(10), 9).Return(nil, tt.err)
			} else {
				svc.On("Register", mock.Anything, member(10), 9).Return(&Registration{ID: 1, Status: StatusRegistered}, nil)
			}

			w := testutil.DoJSON(setupRouter(svc), http.MethodPost, "/api/events/9/register",
				testutil.Bearer(t, 10, auth.RoleClient), nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestHandler_Unregister(t *testing.T) {
	svc := new(MockService)
	svc.On("Unregister", mock.Anything, member(10), 9).Return(nil)

	w := testutil.DoJSON(setupRouter(svc), http.MethodDelete, "/api/events/9/register",
		testutil.Bearer(t, 10, auth.RoleClient), nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHandler_List_Mine(t *testing.T) {
	svc := new(MockService)
	svc.On("List", mock.Anything, coach, true, 20, 0).Return([]Event{{ID: 9}}, 1, nil)

	w := testutil.DoJSON(setupRouter(svc), http.MethodGet, "/api/events?mine=true",
		testutil.Bearer(t, 1, auth.RoleInstructor), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
}

func TestHandler_ListAttendees_Forbidden(t *testing.T) {
	svc := new(MockService)
	svc.On("ListAttendees", mock.Anything, member(10), 9).Return(nil, ErrEventNotFound)

	w := testutil.DoJSON(setupRouter(svc), http.MethodGet, "/api/events/9/registrations",
		testutil.Bearer(t, 10, auth.RoleClient), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
