package user

import (
	"context"
	"testing"

	"fitcoach/internal/api"
	"fitcoach/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRepository is a mock implementation of Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, name, email, passwordHash, role string, instructorID *int) (*User, error) {
	args := m.Called(ctx, name, email, passwordHash, role, instructorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id int) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) ListClients(ctx context.Context, instructorID int) ([]User, error) {
	args := m.Called(ctx, instructorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]User), args.Error(1)
}

func intPtr(v int) *int { return &v }

func TestService_Register(t *testing.T) {
	tests := []struct {
		name          string
		req           RegisterRequest
		setupMock     func(*MockRepository)
		expectedError error
		expectedRole  string
	}{
		{
			name: "defaults to instructor",
			req:  RegisterRequest{Name: "Coach", Email: "coach@example.com", Password: "password123"},
			setupMock: func(m *MockRepository) {
				m.On("EmailExists", mock.Anything, "coach@example.com").Return(false, nil)
				m.On("Create", mock.Anything, "Coach", "coach@example.com", mock.Anything, auth.RoleInstructor, (*int)(nil)).
					Return(&User{ID: 1, Email: "coach@example.com", Role: auth.RoleInstructor}, nil)
			},
			expectedRole: auth.RoleInstructor,
		},
		{
			name: "self-registered client",
			req:  RegisterRequest{Name: "Client", Email: "client@example.com", Password: "password123", Role: auth.RoleClient},
			setupMock: func(m *MockRepository) {
				m.On("EmailExists", mock.Anything, "client@example.com").Return(false, nil)
				m.On("Create", mock.Anything, "Client", "client@example.com", mock.Anything, auth.RoleClient, (*int)(nil)).
					Return(&User{ID: 2, Email: "client@example.com", Role: auth.RoleClient}, nil)
			},
			expectedRole: auth.RoleClient,
		},
		{
			name: "email already exists",
			req:  RegisterRequest{Name: "Dup", Email: "dup@example.com", Password: "password123"},
			setupMock: func(m *MockRepository) {
				m.On("EmailExists", mock.Anything, "dup@example.com").Return(true, nil)
			},
			expectedError: ErrEmailExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRepository)
			tt.setupMock(mockRepo)

			svc := NewService(mockRepo, "access-secret", "refresh-secret")
			user, access, refresh, err := svc.Register(context.Background(), tt.req)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
				assert.Empty(t, access)
				assert.Empty(t, refresh)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedRole, user.Role)
				assert.NotEmpty(t, access)
				assert.NotEmpty(t, refresh)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestService_Login(t *testing.T) {
	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)

	tests := []struct {
		name          string
		req           LoginRequest
		setupMock     func(*MockRepository)
		expectedError error
	}{
		{
			name: "success",
			req:  LoginRequest{Email: "coach@example.com", Password: "password123"},
			setupMock: func(m *MockRepository) {
				m.On("FindByEmail", mock.Anything, "coach@example.com").
					Return(&User{ID: 1, Email: "coach@example.com", PasswordHash: hash, Role: auth.RoleInstructor}, nil)
			},
		},
		{
			name: "wrong password",
			req:  LoginRequest{Email: "coach@example.com", Password: "nope"},
			setupMock: func(m *MockRepository) {
				m.On("FindByEmail", mock.Anything, "coach@example.com").
					Return(&User{ID: 1, Email: "coach@example.com", PasswordHash: hash}, nil)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name: "unknown email",
			req:  LoginRequest{Email: "ghost@example.com", Password: "password123"},
			setupMock: func(m *MockRepository) {
				m.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, ErrUserNotFound)
			},
			expectedError: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRepository)
			tt.setupMock(mockRepo)

			svc := NewService(mockRepo, "access-secret", "refresh-secret")
			user, access, _, err := svc.Login(context.Background(), tt.req)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, access)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestService_RefreshToken(t *testing.T) {
	mockRepo := new(MockRepository)
	mockRepo.On("FindByID", mock.Anything, 1).Return(&User{ID: 1, Email: "coach@example.com", Role: auth.RoleInstructor}, nil)

	svc := NewService(mockRepo, "access-secret", "refresh-secret")
	_, refresh, err := auth.GenerateTokens(1, "coach@example.com", auth.RoleInstructor, "access-secret", "refresh-secret")
	require.NoError(t, err)

	access, user, err := svc.RefreshToken(context.Background(), refresh)
	require.NoError(t, err)
	assert.Equal(t, 1, user.ID)

	claims, err := auth.ValidateToken(access, "access-secret")
	require.NoError(t, err)
	assert.Equal(t, 1, claims.UserID)
}

func TestService_CreateClient(t *testing.T) {
	mockRepo := new(MockRepository)
	mockRepo.On("EmailExists", mock.Anything, "client@example.com").Return(false, nil)
	mockRepo.On("Create", mock.Anything, "Client", "client@example.com", mock.Anything, auth.RoleClient, intPtr(7)).
		Return(&User{ID: 9, Role: auth.RoleClient, InstructorID: intPtr(7)}, nil)

	svc := NewService(mockRepo, "a", "r")
	client, err := svc.CreateClient(context.Background(), 7, CreateClientRequest{Name: "Client", Email: "client@example.com", Password: "password123"})

	require.NoError(t, err)
	assert.Equal(t, 9, client.ID)
	mockRepo.AssertExpectations(t)
}

func TestEnsureClientOf(t *testing.T) {
	tests := []struct {
		name    string
		found   *User
		findErr error
		wantErr error
	}{
		{"own client", &User{ID: 3, Role: auth.RoleClient, InstructorID: intPtr(1)}, nil, nil},
		{"other instructor's client", &User{ID: 3, Role: auth.RoleClient, InstructorID: intPtr(2)}, nil, api.ErrForbidden},
		{"unassigned client", &User{ID: 3, Role: auth.RoleClient}, nil, api.ErrForbidden},
		{"not a client", &User{ID: 3, Role: auth.RoleInstructor}, nil, ErrNotAClient},
		{"missing", nil, ErrUserNotFound, ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRepository)
			if tt.found != nil {
				mockRepo.On("FindByID", mock.Anything, 3).Return(tt.found, nil)
			} else {
				mockRepo.On("FindByID", mock.Anything, 3).Return(nil, tt.findErr)
			}

			_, err := EnsureClientOf(context.Background(), mockRepo, 1, 3)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestService_GetClient_SelfAccess(t *testing.T) {
	mockRepo := new(MockRepository)
	mockRepo.On("FindByID", mock.Anything, 3).Return(&User{ID: 3, Role: auth.RoleClient}, nil)

	svc := NewService(mockRepo, "a", "r")
	u, err := svc.GetClient(context.Background(), auth.Principal{UserID: 3, Role: auth.RoleClient}, 3)

	require.NoError(t, err)
	assert.Equal(t, 3, u.ID)
}

func TestAccessClient_OtherClientForbidden(t *testing.T) {
	mockRepo := new(MockRepository)

	_, err := AccessClient(context.Background(), mockRepo, auth.Principal{UserID: 4, Role: auth.RoleClient}, 3)

	assert.ErrorIs(t, err, api.ErrForbidden)
	mockRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}
