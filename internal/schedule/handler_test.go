package schedule

import (
	"context"
	"net/http"
	"testing"

	"fitcoach/internal/api"
	"fitcoach/internal/auth"
	"fitcoach/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) list(args mock.Arguments) ([]ScheduledProgram, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ScheduledProgram), args.Error(1)
}

func (m *MockService) one(args mock.Arguments) (*ScheduledProgram, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ScheduledProgram), args.Error(1)
}

func (m *MockService) ScheduleDates(ctx context.Context, p auth.Principal, id int, dates []string) ([]ScheduledProgram, error) {
	return m.list(m.Called(ctx, p, id, dates))
}

func (m *MockService) ScheduleWeekly(ctx context.Context, p auth.Principal, id int, req WeeklyRequest) ([]ScheduledProgram, error) {
	return m.list(m.Called(ctx, p, id, req))
}

func (m *MockService) List(ctx context.Context, p auth.Principal, f ListFilter) ([]ScheduledProgram, error) {
	return m.list(m.Called(ctx, p, f))
}

func (m *MockService) Complete(ctx context.Context, p auth.Principal, id int) (*ScheduledProgram, error) {
	return m.one(m.Called(ctx, p, id))
}

func (m *MockService) Uncomplete(ctx context.Context, p auth.Principal, id int) (*ScheduledProgram, error) {
	return m.one(m.Called(ctx, p, id))
}

func (m *MockService) UpdateNotes(ctx context.Context, p auth.Principal, id int, notes *string) (*ScheduledProgram, error) {
	return m.one(m.Called(ctx, p, id, notes))
}

func (m *MockService) Delete(ctx context.Context, p auth.Principal, id int) error {
	return m.Called(ctx, p, id).Error(0)
}

func (m *MockService) CompleteToday(ctx context.Context, id int) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func setupRouter(svc Service) *gin.Engine {
	r, g := testutil.Router()
	h := NewHandler(svc)
	g.POST("/client-programs/:id/schedule", h.ScheduleDates)
	g.POST("/client-programs/:id/schedule/weekly", h.ScheduleWeekly)
	g.GET("/scheduled-programs", h.List)
	g.PUT("/scheduled-programs/:id", h.UpdateNotes)
	g.DELETE("/scheduled-programs/:id", h.Delete)
	g.POST("/scheduled-programs/:id/complete", h.Complete)
	g.POST("/scheduled-programs/:id/uncomplete", h.Uncomplete)
	return r
}

func TestHandler_ScheduleDates(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		setupMock      func(*MockService)
		expectedStatus int
	}{
		{
			name: "created",
			body: DatesRequest{Dates: []string{"2026-01-05"}},
			setupMock: func(m *MockService) {
				m.On("ScheduleDates", mock.Anything, coach, 20, []string{"2026-01-05"}).
					Return([]ScheduledProgram{{ID: 1}}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "empty dates",
			body:           DatesRequest{Dates: []string{}},
			setupMock:      func(m *MockService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed date",
			body:           DatesRequest{Dates: []string{"5 jan"}},
			setupMock:      func(m *MockService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "forbidden",
			body: DatesRequest{Dates: []string{"2026-01-05"}},
			setupMock: func(m *MockService) {
				m.On("ScheduleDates", mock.Anything, coach, 20, mock.Anything).Return(nil, api.ErrForbidden)
			},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			w := testutil.DoJSON(setupRouter(svc), http.MethodPost, "/api/client-programs/20/schedule",
				testutil.Bearer(t, 1, auth.RoleInstructor), tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_ScheduleWeekly_MissingWeekday(t *testing.T) {
	svc := new(MockService)

	w := testutil.DoJSON(setupRouter(svc), http.MethodPost, "/api/client-programs/20/schedule/weekly",
		testutil.Bearer(t, 1, auth.RoleInstructor), map[string]interface{}{"weeks": 4})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "ScheduleWeekly", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_ScheduleWeekly_Sunday(t *testing.T) {
	svc := new(MockService)
	svc.On("ScheduleWeekly", mock.Anything, coach, 20, WeeklyRequest{Weekday: intPtr(0), Weeks: 2}).
		Return([]ScheduledProgram{{ID: 1}, {ID: 2}}, nil)

	w := testutil.DoJSON(setupRouter(svc), http.MethodPost, "/api/client-programs/20/schedule/weekly",
		testutil.Bearer(t, 1, auth.RoleInstructor), map[string]interface{}{"weekday": 0, "weeks": 2})

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestHandler_List(t *testing.T) {
	from := date("2026-01-01")
	svc := new(MockService)
	svc.On("List", mock.Anything, clientCaller, ListFilter{ClientProgramID: 20, From: &from}).
		Return([]ScheduledProgram{}, nil)

	w := testutil.DoJSON(setupRouter(svc), http.MethodGet, "/api/scheduled-programs?client_program_id=20&from=2026-01-01",
		testutil.Bearer(t, 5, auth.RoleClient), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestHandler_List_BadQuery(t *testing.T) {
	for _, q := range []string{"client_id=abc", "to=01-01-2026"} {
		w := testutil.DoJSON(setupRouter(new(MockService)), http.MethodGet, "/api/scheduled-programs?"+q,
			testutil.Bearer(t, 5, auth.RoleClient), nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestHandler_Complete_NotFound(t *testing.T) {
	svc := new(MockService)
	svc.On("Complete", mock.Anything, clientCaller, 100).Return(nil, ErrScheduledNotFound)

	w := testutil.DoJSON(setupRouter(svc), http.MethodPost, "/api/scheduled-programs/100/complete",
		testutil.Bearer(t, 5, auth.RoleClient), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_UpdateNotes(t *testing.T) {
	notes := "felt strong"
	svc := new(MockService)
	svc.On("UpdateNotes", mock.Anything, clientCaller, 100, &notes).Return(&ScheduledProgram{ID: 100, Notes: &notes}, nil)

	w := testutil.DoJSON(setupRouter(svc), http.MethodPut, "/api/scheduled-programs/100",
		testutil.Bearer(t, 5, auth.RoleClient), NotesRequest{Notes: &notes})

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestHandler_Delete(t *testing.T) {
	svc := new(MockService)
	svc.On("Delete", mock.Anything, coach, 100).Return(nil)

	w := testutil.DoJSON(setupRouter(svc), http.MethodDelete, "/api/scheduled-programs/100",
		testutil.Bearer(t, 1, auth.RoleInstructor), nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
}
