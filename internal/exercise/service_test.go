package exercise

import (
	"context"
	"testing"

	"fitcoach/internal/api"
	"fitcoach/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, e *Exercise) (*Exercise, error) {
	args := m.Called(ctx, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Exercise), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id int) (*Exercise, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Exercise), args.Error(1)
}

func (m *MockRepository) GetByIDs(ctx context.Context, ids []int) ([]Exercise, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Exercise), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, e *Exercise) (*Exercise, error) {
	args := m.Called(ctx, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Exercise), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, f ListFilter) ([]Exercise, int, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]Exercise), args.Int(1), args.Error(2)
}

func (m *MockRepository) IsReferenced(ctx context.Context, id int) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) Archive(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

var coach = auth.Principal{UserID: 1, Role: auth.RoleInstructor}

func intPtr(v int) *int { return &v }

func TestService_Create_AppliesDefaults(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(e *Exercise) bool {
		return e.InstructorID == 1 &&
			e.DefaultSets == defaultSets &&
			e.RestSeconds == defaultRestSeconds &&
			e.Equipment != nil &&
			e.RequiresEquipment &&
			assert.ObjectsAreEqual([]string{"HOME", "GYM"}, []string(e.Locations))
	})).Return(&Exercise{ID: 10}, nil)

	svc := NewService(repo)
	e, err := svc.Create(context.Background(), coach, ExerciseRequest{
		Name:      "Goblet squat",
		Equipment: []string{"kettlebell"},
		Locations: []string{"HOME", "GYM", "HOME"},
	})

	require.NoError(t, err)
	assert.Equal(t, 10, e.ID)
	repo.AssertExpectations(t)
}

func TestService_Update_Ownership(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetByID", mock.Anything, 5).Return(&Exercise{ID: 5, InstructorID: 2}, nil)

	svc := NewService(repo)
	_, err := svc.Update(context.Background(), coach, 5, ExerciseRequest{Name: "x"})

	assert.ErrorIs(t, err, api.ErrForbidden)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestService_Update_KeepsExplicitValues(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetByID", mock.Anything, 5).Return(&Exercise{ID: 5, InstructorID: 1}, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(e *Exercise) bool {
		return e.ID == 5 && e.DefaultSets == 0 && *e.DefaultReps == 15 && e.RestSeconds == 30
	})).Return(&Exercise{ID: 5}, nil)

	svc := NewService(repo)
	_, err := svc.Update(context.Background(), coach, 5, ExerciseRequest{
		Name:        "Plank",
		DefaultSets: intPtr(0),
		DefaultReps: intPtr(15),
		RestSeconds: intPtr(30),
	})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestService_Delete(t *testing.T) {
	tests := []struct {
		name         string
		referenced   bool
		wantArchived bool
		setup        func(*MockRepository)
	}{
		{
			name:         "referenced exercise is archived",
			referenced:   true,
			wantArchived: true,
			setup:        func(m *MockRepository) { m.On("Archive", mock.Anything, 5).Return(nil) },
		},
		{
			name:         "unreferenced exercise is deleted",
			referenced:   false,
			wantArchived: false,
			setup:        func(m *MockRepository) { m.On("Delete", mock.Anything, 5).Return(nil) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			repo.On("GetByID", mock.Anything, 5).Return(&Exercise{ID: 5, InstructorID: 1}, nil)
			repo.On("IsReferenced", mock.Anything, 5).Return(tt.referenced, nil)
			tt.setup(repo)

			archived, err := NewService(repo).Delete(context.Background(), coach, 5)

			require.NoError(t, err)
			assert.Equal(t, tt.wantArchived, archived)
			repo.AssertExpectations(t)
		})
	}
}

func TestService_List_ScopesToInstructor(t *testing.T) {
	repo := new(MockRepository)
	repo.On("List", mock.Anything, ListFilter{InstructorID: 1, Limit: 20}).Return([]Exercise{{ID: 1}}, 1, nil)

	items, total, err := NewService(repo).List(context.Background(), coach, ListFilter{InstructorID: 99, Limit: 20})

	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, total)
	repo.AssertExpectations(t)
}
