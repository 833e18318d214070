package notification

import (
	"context"
	"net/http"
	"testing"

	"fitcoach/internal/auth"
	"fitcoach/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Notify(ctx context.Context, userID int, notificationType, title, message string) (*Notification, error) {
	args := m.Called(ctx, userID, notificationType, title, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Notification), args.Error(1)
}

func (m *MockService) List(ctx context.Context, userID int, unreadOnly bool, limit, offset int) ([]Notification, int, error) {
	args := m.Called(ctx, userID, unreadOnly, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]Notification), args.Int(1), args.Error(2)
}

func (m *MockService) UnreadCount(ctx context.Context, userID int) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockService) MarkRead(ctx context.Context, userID, id int) (*Notification, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Notification), args.Error(1)
}

func (m *MockService) MarkAllRead(ctx context.Context, userID int) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockService) Nudge(ctx context.Context, p auth.Principal, clientID int, message string) (*Notification, error) {
	args := m.Called(ctx, p, clientID, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Notification), args.Error(1)
}

func setupRouter(svc Service) *gin.Engine {
	r, g := testutil.Router()
	h := NewHandler(svc)
	g.GET("/notifications", h.List)
	g.GET("/notifications/unread-count", h.UnreadCount)
	g.POST("/notifications/read-all", h.MarkAllRead)
	g.POST("/notifications/:id/read", h.MarkRead)
	g.POST("/clients/:clientID/nudge", h.Nudge)
	return r
}

func TestHandler_UnreadCount(t *testing.T) {
	svc := new(MockService)
	svc.On("UnreadCount", mock.Anything, 5).Return(3, nil)

	w := testutil.DoJSON(setupRouter(svc), http.MethodGet, "/api/notifications/unread-count",
		testutil.Bearer(t, 5, auth.RoleClient), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":3}`, w.Body.String())
}

func TestHandler_List_UnreadFilter(t *testing.T) {
	svc := new(MockService)
	svc.On("List", mock.Anything, 5, true, 20, 0).Return([]Notification{}, 0, nil)

	w := testutil.DoJSON(setupRouter(svc), http.MethodGet, "/api/notifications?unread=true",
		testutil.Bearer(t, 5, auth.RoleClient), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestHandler_MarkRead_NotFound(t *testing.T) {
	svc := new(MockService)
	svc.On("MarkRead", mock.Anything, 5, 9).Return(nil, ErrNotificationNotFound)

	w := testutil.DoJSON(setupRouter(svc), http.MethodPost, "/api/notifications/9/read",
		testutil.Bearer(t, 5, auth.RoleClient), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_Nudge(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		setupMock      func(*MockService)
		expectedStatus int
	}{
		{
			name: "sent",
			body: NudgeRequest{Message: "Go!"},
			setupMock: func(m *MockService) {
				m.On("Nudge", mock.Anything, coach, 8, "Go!").Return(&Notification{ID: 1}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "empty message",
			body:           NudgeRequest{Message: " "},
			setupMock:      func(m *MockService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			w := testutil.DoJSON(setupRouter(svc), http.MethodPost, "/api/clients/8/nudge",
				testutil.Bearer(t, 1, auth.RoleInstructor), tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}
