package program

import (
	"context"
	"testing"
	"time"

	"fitcoach/internal/api"
	"fitcoach/internal/auth"
	"fitcoach/internal/exercise"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, p *Program) (*Program, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Program), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id int) (*Program, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Program), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, p *Program) (*Program, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Program), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, f ListFilter) ([]Program, int, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]Program), args.Int(1), args.Error(2)
}

func (m *MockRepository) IsAssigned(ctx context.Context, id int) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) Archive(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) Duplicate(ctx context.Context, id, instructorID int, name string) (*Program, error) {
	args := m.Called(ctx, id, instructorID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Program), args.Error(1)
}

func (m *MockRepository) ListItems(ctx context.Context, programID int) ([]Item, error) {
	args := m.Called(ctx, programID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Item), args.Error(1)
}

func (m *MockRepository) GetItem(ctx context.Context, programID, itemID int) (*Item, error) {
	args := m.Called(ctx, programID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Item), args.Error(1)
}

func (m *MockRepository) AddItems(ctx context.Context, programID int, items []Item) ([]Item, error) {
	args := m.Called(ctx, programID, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Item), args.Error(1)
}

func (m *MockRepository) UpdateItem(ctx context.Context, item *Item) (*Item, error) {
	args := m.Called(ctx, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Item), args.Error(1)
}

func (m *MockRepository) DeleteItem(ctx context.Context, programID, itemID int) error {
	return m.Called(ctx, programID, itemID).Error(0)
}

func (m *MockRepository) ReorderItems(ctx context.Context, programID int, entries []ReorderEntry) error {
	return m.Called(ctx, programID, entries).Error(0)
}

type MockExercises struct {
	mock.Mock
}

func (m *MockExercises) GetByIDs(ctx context.Context, ids []int) ([]exercise.Exercise, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]exercise.Exercise), args.Error(1)
}

var (
	coach  = auth.Principal{UserID: 1, Role: auth.RoleInstructor}
	client = auth.Principal{UserID: 50, Role: auth.RoleClient}
)

func intPtr(v int) *int { return &v }

func TestService_Get(t *testing.T) {
	t.Run("owner sees items with exercises", func(t *testing.T) {
		repo, ex := new(MockRepository), new(MockExercises)
		repo.On("GetByID", mock.Anything, 7).Return(&Program{ID: 7, InstructorID: 1}, nil)
		repo.On("ListItems", mock.Anything, 7).Return([]Item{{ID: 1, ExerciseID: 10}, {ID: 2, ExerciseID: 11}}, nil)
		ex.On("GetByIDs", mock.Anything, []int{10, 11}).Return([]exercise.Exercise{{ID: 11, Name: "Plank"}, {ID: 10, Name: "Squat"}}, nil)

		prog, err := NewService(repo, ex).Get(context.Background(), coach, 7)

		require.NoError(t, err)
		require.Len(t, prog.Items, 2)
		assert.Equal(t, "Squat", prog.Items[0].Exercise.Name)
		assert.Equal(t, "Plank", prog.Items[1].Exercise.Name)
	})

	t.Run("private program of someone else", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", mock.Anything, 7).Return(&Program{ID: 7, InstructorID: 2}, nil)

		_, err := NewService(repo, new(MockExercises)).Get(context.Background(), coach, 7)

		assert.ErrorIs(t, err, api.ErrForbidden)
	})
}

func TestService_List_Scopes(t *testing.T) {
	tests := []struct {
		name     string
		caller   auth.Principal
		in       ListFilter
		expected ListFilter
	}{
		{"instructor all", coach, ListFilter{Scope: ScopeAll}, ListFilter{Scope: ScopeAll, InstructorID: 1}},
		{"instructor mine", coach, ListFilter{Scope: ScopeMine}, ListFilter{Scope: ScopeMine, InstructorID: 1}},
		{"client forced public", client, ListFilter{Scope: ScopeMine}, ListFilter{Scope: ScopePublic, InstructorID: 50}},
		{"admin all", auth.Principal{UserID: 9, Role: auth.RoleAdmin}, ListFilter{Scope: ScopeAll}, ListFilter{Scope: ScopeAll}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			repo.On("List", mock.Anything, tt.expected).Return([]Program{}, 0, nil)

			_, _, err := NewService(repo, new(MockExercises)).List(context.Background(), tt.caller, tt.in)

			require.NoError(t, err)
			repo.AssertExpectations(t)
		})
	}
}

func TestService_Delete_ArchivesAssigned(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetByID", mock.Anything, 7).Return(&Program{ID: 7, InstructorID: 1}, nil)
	repo.On("IsAssigned", mock.Anything, 7).Return(true, nil)
	repo.On("Archive", mock.Anything, 7).Return(nil)

	archived, err := NewService(repo, new(MockExercises)).Delete(context.Background(), coach, 7)

	require.NoError(t, err)
	assert.True(t, archived)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestService_Duplicate(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetByID", mock.Anything, 7).Return(&Program{ID: 7, InstructorID: 2, Name: "Full Body", IsPublic: true}, nil)
	repo.On("Duplicate", mock.Anything, 7, 1, "Full Body (copy)").Return(&Program{ID: 8, InstructorID: 1}, nil)

	prog, err := NewService(repo, new(MockExercises)).Duplicate(context.Background(), coach, 7)

	require.NoError(t, err)
	assert.Equal(t, 8, prog.ID)
}

func TestService_AddItems(t *testing.T) {
	archivedAt := time.Now()

	tests := []struct {
		name      string
		req       AddItemsRequest
		exercises []exercise.Exercise
		wantErr   error
	}{
		{
			name:      "duplicate within request",
			req:       AddItemsRequest{Items: []ItemRequest{{ExerciseID: 10}, {ExerciseID: 10}}},
			exercises: nil,
			wantErr:   ErrDuplicateExercise,
		},
		{
			name:      "unknown exercise",
			req:       AddItemsRequest{Items: []ItemRequest{{ExerciseID: 10}, {ExerciseID: 11}}},
			exercises: []exercise.Exercise{{ID: 10, InstructorID: 1}},
			wantErr:   exercise.ErrExerciseNotFound,
		},
		{
			name:      "archived exercise",
			req:       AddItemsRequest{Items: []ItemRequest{{ExerciseID: 10}}},
			exercises: []exercise.Exercise{{ID: 10, InstructorID: 1, ArchivedAt: &archivedAt}},
			wantErr:   exercise.ErrExerciseArchived,
		},
		{
			name:      "foreign exercise",
			req:       AddItemsRequest{Items: []ItemRequest{{ExerciseID: 10}}},
			exercises: []exercise.Exercise{{ID: 10, InstructorID: 2}},
			wantErr:   api.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, ex := new(MockRepository), new(MockExercises)
			repo.On("GetByID", mock.Anything, 7).Return(&Program{ID: 7, InstructorID: 1}, nil)
			ex.On("GetByIDs", mock.Anything, mock.Anything).Return(tt.exercises, nil)

			_, err := NewService(repo, ex).AddItems(context.Background(), coach, 7, tt.req)

			assert.ErrorIs(t, err, tt.wantErr)
			repo.AssertNotCalled(t, "AddItems", mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("defaults section to CORE", func(t *testing.T) {
		repo, ex := new(MockRepository), new(MockExercises)
		repo.On("GetByID", mock.Anything, 7).Return(&Program{ID: 7, InstructorID: 1}, nil)
		ex.On("GetByIDs", mock.Anything, []int{10, 11}).
			Return([]exercise.Exercise{{ID: 10, InstructorID: 1}, {ID: 11, InstructorID: 1}}, nil)
		repo.On("AddItems", mock.Anything, 7, []Item{
			{ProgramID: 7, ExerciseID: 10, Section: SectionWarmup},
			{ProgramID: 7, ExerciseID: 11, Section: SectionCore, Overrides: Overrides{Sets: intPtr(4)}},
		}).Return([]Item{{ID: 1}, {ID: 2}}, nil)

		items, err := NewService(repo, ex).AddItems(context.Background(), coach, 7, AddItemsRequest{Items: []ItemRequest{
			{ExerciseID: 10, Section: SectionWarmup},
			{ExerciseID: 11, Overrides: Overrides{Sets: intPtr(4)}},
		}})

		require.NoError(t, err)
		assert.Len(t, items, 2)
		repo.AssertExpectations(t)
	})
}

func TestService_AddItems_ArchivedProgram(t *testing.T) {
	archivedAt := time.Now()
	repo := new(MockRepository)
	repo.On("GetByID", mock.Anything, 7).Return(&Program{ID: 7, InstructorID: 1, ArchivedAt: &archivedAt}, nil)

	_, err := NewService(repo, new(MockExercises)).AddItems(context.Background(), coach, 7,
		AddItemsRequest{Items: []ItemRequest{{ExerciseID: 10}}})

	assert.ErrorIs(t, err, ErrProgramArchived)
}

func TestService_ReorderItems(t *testing.T) {
	current := []Item{{ID: 1}, {ID: 2}, {ID: 3}}

	t.Run("rejects partial list", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", mock.Anything, 7).Return(&Program{ID: 7, InstructorID: 1}, nil)
		repo.On("ListItems", mock.Anything, 7).Return(current, nil)

		_, err := NewService(repo, new(MockExercises)).ReorderItems(context.Background(), coach, 7,
			ReorderRequest{Items: []ReorderEntry{{ID: 3}, {ID: 1}}})

		assert.ErrorIs(t, err, api.ErrInvalidInput)
	})

	t.Run("rejects repeated id", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", mock.Anything, 7).Return(&Program{ID: 7, InstructorID: 1}, nil)
		repo.On("ListItems", mock.Anything, 7).Return(current, nil)

		_, err := NewService(repo, new(MockExercises)).ReorderItems(context.Background(), coach, 7,
			ReorderRequest{Items: []ReorderEntry{{ID: 3}, {ID: 3}, {ID: 1}}})

		assert.ErrorIs(t, err, api.ErrInvalidInput)
	})

	t.Run("applies permutation", func(t *testing.T) {
		entries := []ReorderEntry{{ID: 3, Section: SectionWarmup}, {ID: 1}, {ID: 2}}
		repo := new(MockRepository)
		repo.On("GetByID", mock.Anything, 7).Return(&Program{ID: 7, InstructorID: 1}, nil)
		repo.On("ListItems", mock.Anything, 7).Return(current, nil)
		repo.On("ReorderItems", mock.Anything, 7, entries).Return(nil)

		_, err := NewService(repo, new(MockExercises)).ReorderItems(context.Background(), coach, 7,
			ReorderRequest{Items: entries})

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}

func TestService_UpdateItem_ReplacesOverrides(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetByID", mock.Anything, 7).Return(&Program{ID: 7, InstructorID: 1}, nil)
	repo.On("GetItem", mock.Anything, 7, 3).Return(&Item{ID: 3, ProgramID: 7, Section: SectionCore,
		Overrides: Overrides{Sets: intPtr(5), Reps: intPtr(5)}}, nil)
	repo.On("UpdateItem", mock.Anything, mock.MatchedBy(func(it *Item) bool {
		return it.Section == SectionCooldown && it.Sets == nil && *it.Reps == 20
	})).Return(&Item{ID: 3}, nil)

	_, err := NewService(repo, new(MockExercises)).UpdateItem(context.Background(), coach, 7, 3,
		UpdateItemRequest{Section: SectionCooldown, Overrides: Overrides{Reps: intPtr(20)}})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestSectionRank(t *testing.T) {
	assert.Less(t, SectionRank(SectionWarmup), SectionRank(SectionCore))
	assert.Less(t, SectionRank(SectionCore), SectionRank(SectionCooldown))
}
