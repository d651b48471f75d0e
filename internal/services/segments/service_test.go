package segments

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/killallgit/segments-api/internal/models"
	apperrors "github.com/killallgit/segments-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateSegment(ctx context.Context, segment *models.Segment) error {
	args := m.Called(ctx, segment)
	return args.Error(0)
}

func (m *MockRepository) GetSegmentByID(ctx context.Context, id string) (*models.Segment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// A factory hands every attempt its own copy
	if fn, ok := args.Get(0).(func(context.Context, string) *models.Segment); ok {
		return fn(ctx, id), args.Error(1)
	}
	return args.Get(0).(*models.Segment), args.Error(1)
}

func (m *MockRepository) ListSegments(ctx context.Context) ([]models.Segment, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Segment), args.Error(1)
}

func (m *MockRepository) ListSegmentsByProject(ctx context.Context, projectID string) ([]models.Segment, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]models.Segment), args.Error(1)
}

func (m *MockRepository) UpdateSegmentIfRevision(ctx context.Context, segment *models.Segment, expectedRevision int64) (bool, error) {
	args := m.Called(ctx, segment, expectedRevision)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) IncrementCounter(ctx context.Context, id string, column string) (int64, error) {
	args := m.Called(ctx, id, column)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) DeleteSegment(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockProjects is a mock implementation of ProjectLookup
type MockProjects struct {
	mock.Mock
}

func (m *MockProjects) ProjectExists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type countingRecorder struct {
	mu        sync.Mutex
	merges    map[string]int
	conflicts map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{merges: map[string]int{}, conflicts: map[string]int{}}
}

func (r *countingRecorder) RecordMerge(action string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.merges[action]++
}

func (r *countingRecorder) RecordConflict(operation string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conflicts[operation]++
}

func float(v float64) *float64 { return &v }
func str(v string) *string     { return &v }

func TestServiceImpl_CreateSegment(t *testing.T) {
	ctx := context.Background()

	t.Run("creates segment for existing project", func(t *testing.T) {
		repo := new(MockRepository)
		projects := new(MockProjects)
		service := NewService(repo, projects)

		repo.On("CreateSegment", ctx, mock.AnythingOfType("*models.Segment")).
			Run(func(args mock.Arguments) {
				seg := args.Get(1).(*models.Segment)
				assert.Equal(t, 4.0, seg.Duration)
				assert.Equal(t, "p1", seg.ProjectID)
			}).
			Return(nil)

		seg, err := service.CreateSegment(ctx, CreateInput{ProjectID: " p1 ", StartTime: float(1), EndTime: float(5)})
		require.NoError(t, err)
		assert.Equal(t, 4.0, seg.Duration)

		repo.AssertExpectations(t)
		projects.AssertNotCalled(t, "ProjectExists", mock.Anything, mock.Anything)
	})

	t.Run("validation errors never touch the store", func(t *testing.T) {
		tests := []struct {
			name     string
			in       CreateInput
			wantCode apperrors.ErrorCode
		}{
			{name: "missing everything", in: CreateInput{}, wantCode: apperrors.ErrCodeMissingField},
			{name: "missing end", in: CreateInput{ProjectID: "p1", StartTime: float(1)}, wantCode: apperrors.ErrCodeMissingField},
			{name: "negative start", in: CreateInput{ProjectID: "p1", StartTime: float(-1), EndTime: float(5)}, wantCode: apperrors.ErrCodeValidation},
			{name: "start equals end", in: CreateInput{ProjectID: "p1", StartTime: float(5), EndTime: float(5)}, wantCode: apperrors.ErrCodeValidation},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				repo := new(MockRepository)
				projects := new(MockProjects)
				service := NewService(repo, projects)

				_, err := service.CreateSegment(ctx, tt.in)
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, apperrors.GetCode(err))
				repo.AssertNotCalled(t, "CreateSegment", mock.Anything, mock.Anything)
				projects.AssertNotCalled(t, "ProjectExists", mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("unknown project", func(t *testing.T) {
		repo := new(MockRepository)
		projects := new(MockProjects)
		service := NewService(repo, projects)

		repo.On("CreateSegment", ctx, mock.AnythingOfType("*models.Segment")).
			Return(apperrors.NotFound("project", "nope"))

		_, err := service.CreateSegment(ctx, CreateInput{ProjectID: "nope", StartTime: float(0), EndTime: float(1)})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
		repo.AssertExpectations(t)
	})
}

func TestServiceImpl_ListSegmentsByProject(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	projects := new(MockProjects)
	service := NewService(repo, projects)

	projects.On("ProjectExists", ctx, "p1").Return(true, nil)
	projects.On("ProjectExists", ctx, "p2").Return(false, nil)
	repo.On("ListSegmentsByProject", ctx, "p1").Return([]models.Segment{{ID: "s1"}}, nil)

	segs, err := service.ListSegmentsByProject(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, segs, 1)

	_, err = service.ListSegmentsByProject(ctx, "p2")
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
}

func TestServiceImpl_MergeRetriesOnConflict(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds after a lost race", func(t *testing.T) {
		repo := new(MockRepository)
		recorder := newCountingRecorder()
		service := NewService(repo, new(MockProjects), WithRecorder(recorder))

		repo.On("GetSegmentByID", ctx, "s1").Return(func(context.Context, string) *models.Segment {
			return &models.Segment{ID: "s1", StartTime: 0, EndTime: 10, Revision: 3}
		}, nil)
		repo.On("UpdateSegmentIfRevision", ctx, mock.AnythingOfType("*models.Segment"), int64(3)).Return(false, nil).Once()
		repo.On("UpdateSegmentIfRevision", ctx, mock.AnythingOfType("*models.Segment"), int64(3)).Return(true, nil).Once()

		out, err := service.MergeDescriptionsProsody(ctx, "s1", MergeInput{UserID: "u1", FieldName: "tone", FieldValue: "happy", Timestamp: 1})
		require.NoError(t, err)
		assert.Equal(t, MergeInsert, out.Action)
		assert.Equal(t, 1, out.TotalEntries)
		assert.Equal(t, 1, recorder.conflicts["merge"])
		assert.Equal(t, 1, recorder.merges["insert"])
		repo.AssertNumberOfCalls(t, "GetSegmentByID", 2)
	})

	t.Run("gives up with conflict after max retries", func(t *testing.T) {
		repo := new(MockRepository)
		service := NewService(repo, new(MockProjects), WithMaxRetries(3))

		repo.On("GetSegmentByID", ctx, "s1").Return(func(context.Context, string) *models.Segment {
			return &models.Segment{ID: "s1", StartTime: 0, EndTime: 10}
		}, nil)
		repo.On("UpdateSegmentIfRevision", ctx, mock.Anything, int64(0)).Return(false, nil)

		_, err := service.MergeDescriptionsProsody(ctx, "s1", MergeInput{UserID: "u1", FieldName: "tone", FieldValue: "happy", Timestamp: 1})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeConflict, apperrors.GetCode(err))
		repo.AssertNumberOfCalls(t, "UpdateSegmentIfRevision", 3)
	})

	t.Run("invalid input is rejected before loading", func(t *testing.T) {
		repo := new(MockRepository)
		service := NewService(repo, new(MockProjects))

		_, err := service.MergeDescriptionsProsody(ctx, "s1", MergeInput{UserID: "u1"})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeMissingField, apperrors.GetCode(err))
		repo.AssertNotCalled(t, "GetSegmentByID", mock.Anything, mock.Anything)
	})

	t.Run("missing segment", func(t *testing.T) {
		repo := new(MockRepository)
		service := NewService(repo, new(MockProjects))

		repo.On("GetSegmentByID", ctx, "gone").Return(nil, apperrors.NotFound("segment", "gone"))

		_, err := service.MergeDescriptionsProsody(ctx, "gone", MergeInput{UserID: "u1", FieldName: "f", FieldValue: "v", Timestamp: 1})
		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
	})
}

// gormProjects resolves project existence straight from the test database
type gormProjects struct{ db *gorm.DB }

func (g gormProjects) ProjectExists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func TestServiceImpl_Integration(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	service := NewService(repo, gormProjects{db}, WithMaxRetries(100))
	ctx := context.Background()
	project := createProject(t, db)

	seg, err := service.CreateSegment(ctx, CreateInput{ProjectID: project.ID, StartTime: float(0), EndTime: float(10)})
	require.NoError(t, err)

	t.Run("S1 scenario persists", func(t *testing.T) {
		out, err := service.MergeDescriptionsProsody(ctx, seg.ID, MergeInput{UserID: "alice", FieldName: "note", FieldValue: "nice", Timestamp: float64(100)})
		require.NoError(t, err)
		assert.Equal(t, MergeInsert, out.Action)
		assert.Equal(t, 1, out.TotalEntries)

		out, err = service.MergeDescriptionsProsody(ctx, seg.ID, MergeInput{UserID: "alice", FieldName: "note", FieldValue: "great", Timestamp: float64(200)})
		require.NoError(t, err)
		assert.Equal(t, MergeUpdate, out.Action)
		assert.Equal(t, 1, out.TotalEntries)

		stored, err := service.GetSegment(ctx, seg.ID)
		require.NoError(t, err)
		require.Len(t, stored.DescriptionsProsody, 1)
		assert.Equal(t, "great", stored.DescriptionsProsody[0].Values["note"])
		assert.Equal(t, json.Number("200"), stored.DescriptionsProsody[0].Timestamps["note"])
		assert.Equal(t, 10.0, stored.Duration)
	})

	t.Run("partial update keeps other fields and recomputes duration", func(t *testing.T) {
		updated, err := service.UpdateSegment(ctx, seg.ID, UpdateInput{EndTime: float(12), Prosody: str(" rising ")})
		require.NoError(t, err)
		assert.Equal(t, 12.0, updated.Duration)
		assert.Equal(t, "rising", updated.Prosody)

		stored, err := service.GetSegment(ctx, seg.ID)
		require.NoError(t, err)
		assert.Equal(t, 0.0, stored.StartTime)
		assert.Len(t, stored.DescriptionsProsody, 1)
	})

	t.Run("rejected update leaves segment unchanged", func(t *testing.T) {
		before, err := service.GetSegment(ctx, seg.ID)
		require.NoError(t, err)

		_, err = service.UpdateSegment(ctx, seg.ID, UpdateInput{StartTime: float(30)})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeValidation, apperrors.GetCode(err))

		_, err = service.UpdateSegment(ctx, seg.ID, UpdateInput{EndTime: float(-2)})
		assert.Equal(t, apperrors.ErrCodeValidation, apperrors.GetCode(err))

		after, err := service.GetSegment(ctx, seg.ID)
		require.NoError(t, err)
		assert.Equal(t, before.StartTime, after.StartTime)
		assert.Equal(t, before.EndTime, after.EndTime)
		assert.Equal(t, before.Duration, after.Duration)
		assert.Equal(t, before.Revision, after.Revision)
	})

	t.Run("concurrent merges from many users are all kept", func(t *testing.T) {
		const users = 10
		var wg sync.WaitGroup
		for i := 0; i < users; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := service.MergeDescriptionsProsody(ctx, seg.ID, MergeInput{
					UserID:     fmt.Sprintf("user-%d", i),
					FieldName:  "tone",
					FieldValue: "calm",
					Timestamp:  float64(i),
				})
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		stored, err := service.GetSegment(ctx, seg.ID)
		require.NoError(t, err)
		assert.Len(t, stored.DescriptionsProsody, users+1)
	})

	t.Run("counters", func(t *testing.T) {
		views, err := service.IncrementViews(ctx, seg.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), views)

		likes, err := service.IncrementLikes(ctx, seg.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), likes)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, service.DeleteSegment(ctx, seg.ID))
		_, err := service.GetSegment(ctx, seg.ID)
		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
	})
}
