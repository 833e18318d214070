package user

import (
	"context"
	"errors"

	"fitcoach/internal/api"
	"fitcoach/internal/auth"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAClient         = errors.New("user is not a client")
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, string, string, error)
	Login(ctx context.Context, req LoginRequest) (*User, string, string, error)
	GetByID(ctx context.Context, userID int) (*User, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, *User, error)
	CreateClient(ctx context.Context, instructorID int, req CreateClientRequest) (*User, error)
	ListClients(ctx context.Context, instructorID int) ([]User, error)
	GetClient(ctx context.Context, p auth.Principal, clientID int) (*User, error)
}

type service struct {
	repo          Repository
	accessSecret  string
	refreshSecret string
}

func NewService(repo Repository, accessSecret, refreshSecret string) Service {
	return &service{
		repo:          repo,
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, string, string, error) {
	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, "", "", err
	}
	if exists {
		return nil, "", "", ErrEmailExists
	}

	role := req.Role
	if role == "" {
		role = auth.RoleInstructor
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", "", err
	}

	user, err := s.repo.Create(ctx, req.Name, req.Email, passwordHash, role, nil)
	if err != nil {
		return nil, "", "", err
	}

	access, refresh, err := auth.GenerateTokens(user.ID, user.Email, user.Role, s.accessSecret, s.refreshSecret)
	if err != nil {
		return nil, "", "", err
	}

	return user, access, refresh, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*User, string, string, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", "", ErrInvalidCredentials
		}
		return nil, "", "", err
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, "", "", ErrInvalidCredentials
	}

	access, refresh, err := auth.GenerateTokens(user.ID, user.Email, user.Role, s.accessSecret, s.refreshSecret)
	if err != nil {
		return nil, "", "", err
	}

	return user, access, refresh, nil
}

func (s *service) GetByID(ctx context.Context, userID int) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, *User, error) {
	claims, err := auth.ValidateRefreshToken(refreshToken, s.refreshSecret)
	if err != nil {
		return "", nil, err
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return "", nil, err
	}

	access, err := auth.GenerateAccessToken(user.ID, user.Email, user.Role, s.accessSecret)
	if err != nil {
		return "", nil, err
	}

	return access, user, nil
}

func (s *service) CreateClient(ctx context.Context, instructorID int, req CreateClientRequest) (*User, error) {
	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, req.Name, req.Email, passwordHash, auth.RoleClient, &instructorID)
}

func (s *service) ListClients(ctx context.Context, instructorID int) ([]User, error) {
	return s.repo.ListClients(ctx, instructorID)
}

func (s *service) GetClient(ctx context.Context, p auth.Principal, clientID int) (*User, error) {
	return AccessClient(ctx, s.repo, p, clientID)
}

// Finder is the lookup other modules need to resolve users.
type Finder interface {
	FindByID(ctx context.Context, id int) (*User, error)
}

// EnsureClientOf loads clientID and checks that it is a client coached by instructorID.
func EnsureClientOf(ctx context.Context, users Finder, instructorID, clientID int) (*User, error) {
	client, err := users.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if client.Role != auth.RoleClient {
		return nil, ErrNotAClient
	}
	if client.InstructorID == nil || *client.InstructorID != instructorID {
		return nil, api.ErrForbidden
	}
	return client, nil
}

// AccessClient resolves clientID when the caller is that client, their instructor or an admin.
func AccessClient(ctx context.Context, users Finder, p auth.Principal, clientID int) (*User, error) {
	switch {
	case p.IsAdmin():
		return users.FindByID(ctx, clientID)
	case p.IsClient():
		if p.UserID != clientID {
			return nil, api.ErrForbidden
		}
		return users.FindByID(ctx, clientID)
	default:
		return EnsureClientOf(ctx, users, p.UserID, clientID)
	}
}
