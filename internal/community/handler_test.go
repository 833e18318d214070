package community

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

func (m *MockService) Create(ctx context.Context, p auth.Principal, req CommunityRequest) (*Community, error) {
	args := m.Called(ctx, p, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Community), args.Error(1)
}

func (m *MockService) ListMine(ctx context.Context, p auth.Principal) ([]Community, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Community), args.Error(1)
}

func (m *MockService) AddMember(ctx context.Context, p auth.Principal, communityID, userID int) error {
	return m.Called(ctx, p, communityID, userID).Error(0)
}

func (m *MockService) RemoveMember(ctx context.Context, p auth.Principal, communityID, userID int) error {
	return m.Called(ctx, p, communityID, userID).Error(0)
}

func (m *MockService) ListMembers(ctx context.Context, p auth.Principal, communityID int) ([]Member, error) {
	args := m.Called(ctx, p, communityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Member), args.Error(1)
}

func (m *MockService) CreatePost(ctx context.Context, p auth.Principal, communityID int, content string) (*Post, error) {
	args := m.Called(ctx, p, communityID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Post), args.Error(1)
}

func (m *MockService) ListPosts(ctx context.Context, p auth.Principal, communityID, limit, offset int) ([]Post, int, error) {
	args := m.Called(ctx, p, communityID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]Post), args.Int(1), args.Error(2)
}

func (m *MockService) DeletePost(ctx context.Context, p auth.Principal, postID int) error {
	return m.Called(ctx, p, postID).Error(0)
}

func (m *MockService) CreateComment(ctx context.Context, p auth.Principal, postID int, req CommentRequest) (*Comment, error) {
	args := m.Called(ctx, p, postID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Comment), args.Error(1)
}

func (m *MockService) ListComments(ctx context.Context, p auth.Principal, postID int) ([]Comment, error) {
	args := m.Called(ctx, p, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Comment), args.Error(1)
}

func (m *MockService) DeleteComment(ctx context.Context, p auth.Principal, commentID int) error {
	return m.Called(ctx, p, commentID).Error(0)
}

func (m *MockService) Like(ctx context.Context, p auth.Principal, postID int) (*LikeResponse, error) {
	args := m.Called(ctx, p, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*LikeResponse), args.Error(1)
}

func (m *MockService) Unlike(ctx context.Context, p auth.Principal, postID int) (*LikeResponse, error) {
	args := m.Called(ctx, p, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*LikeResponse), args.Error(1)
}

func setupRouter(svc Service) *gin.Engine {
	r, g := testutil.Router()
	h := NewHandler(svc)
	g.GET("/communities", h.ListMine)
	g.POST("/communities", h.Create)
	g.GET("/communities/:id/members", h.ListMembers)
	g.POST("/communities/:id/members", h.AddMember)
	g.DELETE("/communities/:id/members/:userID", h.RemoveMember)
	g.GET("/communities/:id/posts", h.ListPosts)
	g.POST("/communities/:id/posts", h.CreatePost)
	g.DELETE("/posts/:postID", h.DeletePost)
	g.GET("/posts/:postID/comments", h.ListComments)
	g.POST("/posts/:postID/comments", h.CreateComment)
	g.DELETE("/comments/:commentID", h.DeleteComment)
	g.POST("/posts/:postID/like", h.Like)
	g.DELETE("/posts/:postID/like", h.Unlike)
	return r
}

func TestHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		setupMock      func(*MockService)
		expectedStatus int
	}{
		{
			name: "created",
			body: map[string]string{"name": "Morning crew"},
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, coach, CommunityRequest{Name: "Morning crew"}).Return(crew(), nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "blank name",
			body:           map[string]string{"name": "   "},
			setupMock:      func(m *MockService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			w := testutil.DoJSON(setupRouter(svc), http.MethodPost, "/api/communities",
				testutil.Bearer(t, 1, auth.RoleInstructor), tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_AddMember(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"added", nil, http.StatusNoContent},
		{"not own client", api.ErrForbidden, http.StatusForbidden},
		{"missing community", ErrCommunityNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("AddMember", mock.Anything, coach, 5, 10).Return(tt.err)

			w := testutil.DoJSON(setupRouter(svc), http.MethodPost, "/api/communities/5/members",
				testutil.Bearer(t, 1, auth.RoleInstructor), map[string]int{"user_id": 10})

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestHandler_RemoveMember_Self(t *testing.T) {
	svc := new(MockService)
	svc.On("RemoveMember", mock.Anything, member(10), 5, 10).Return(nil)

	w := testutil.DoJSON(setupRouter(svc), http.MethodDelete, "/api/communities/5/members/10",
		testutil.Bearer(t, 10, auth.RoleClient), nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHandler_ListPosts(t *testing.T) {
	svc := new(MockService)
	svc.On("ListPosts", mock.Anything, member(10), 5, 10, 20).Return([]Post{{ID: 3, LikeCount: 2}}, 21, nil)

	w := testutil.DoJSON(setupRouter(svc), http.MethodGet, "/api/communities/5/posts?limit=10&offset=20",
		testutil.Bearer(t, 10, auth.RoleClient), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":21`)
	assert.Contains(t, w.Body.String(), `"like_count":2`)
}

func TestHandler_CreateComment(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		setupMock      func(*MockService)
		expectedStatus int
	}{
		{
			name: "reply",
			body: map[string]interface{}{"content": "Count me in", "parent_id": 7},
			setupMock: func(m *MockService) {
				m.On("CreateComment", mock.Anything, member(10), 3, mock.MatchedBy(func(req CommentRequest) bool {
					return req.Content == "Count me in" && req.ParentID != nil && *req.ParentID == 7
				})).Return(&Comment{ID: 9}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "bad parent",
			body: map[string]interface{}{"content": "x", "parent_id": 8},
			setupMock: func(m *MockService) {
				m.On("CreateComment", mock.Anything, member(10), 3, mock.Anything).Return(nil, api.ErrInvalidInput)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "missing post",
			body: map[string]interface{}{"content": "x"},
			setupMock: func(m *MockService) {
				m.On("CreateComment", mock.Anything, member(10), 3, mock.Anything).Return(nil, ErrPostNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "empty content",
			body:           map[string]interface{}{"content": ""},
			setupMock:      func(m *MockService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			w := testutil.DoJSON(setupRouter(svc), http.MethodPost, "/api/posts/3/comments",
				testutil.Bearer(t, 10, auth.RoleClient), tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_ListComments(t *testing.T) {
	svc := new(MockService)
	parent := 1
	svc.On("ListComments", mock.Anything, member(10), 3).Return([]Comment{
		{ID: 1, Content: "first", Replies: []Comment{{ID: 2, ParentID: &parent, Content: "reply"}}},
	}, nil)

	w := testutil.DoJSON(setupRouter(svc), http.MethodGet, "/api/posts/3/comments",
		testutil.Bearer(t, 10, auth.RoleClient), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"replies":[{"id":2`)
}

func TestHandler_DeleteComment_Forbidden(t *testing.T) {
	svc := new(MockService)
	svc.On("DeleteComment", mock.Anything, member(11), 8).Return(api.ErrForbidden)

	w := testutil.DoJSON(setupRouter(svc), http.MethodDelete, "/api/comments/8",
		testutil.Bearer(t, 11, auth.RoleClient), nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandler_LikeUnlike(t *testing.T) {
	svc := new(MockService)
	svc.On("Like", mock.Anything, member(10), 3).Return(&LikeResponse{Liked: true, LikeCount: 1}, nil)
	svc.On("Unlike", mock.Anything, member(10), 3).Return(&LikeResponse{Liked: false, LikeCount: 0}, nil)
	r := setupRouter(svc)
	token := testutil.Bearer(t, 10, auth.RoleClient)

	w := testutil.DoJSON(r, http.MethodPost, "/api/posts/3/like", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"liked":true,"like_count":1}`, w.Body.String())

	w = testutil.DoJSON(r, http.MethodDelete, "/api/posts/3/like", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"liked":false,"like_count":0}`, w.Body.String())
}

func TestHandler_InvalidID(t *testing.T) {
	w := testutil.DoJSON(setupRouter(new(MockService)), http.MethodDelete, "/api/posts/abc",
		testutil.Bearer(t, 10, auth.RoleClient), nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
