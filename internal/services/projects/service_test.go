package projects

import (
	"context"
	"testing"

	"github.com/killallgit/segments-api/internal/database"
	"github.com/killallgit/segments-api/internal/models"
	"github.com/killallgit/segments-api/pkg/config"
	apperrors "github.com/killallgit/segments-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	db, err := database.Initialize(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })
	return NewService(NewRepository(db.DB), nil), db.DB
}

func addSegment(t *testing.T, db *gorm.DB, projectID string, start, end float64) {
	t.Helper()
	require.NoError(t, db.Create(&models.Segment{ProjectID: projectID, StartTime: start, EndTime: end}).Error)
}

func strPtr(s string) *string { return &s }

func TestServiceImpl_CreateProject(t *testing.T) {
	service, _ := setupService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		in       Input
		wantCode apperrors.ErrorCode
	}{
		{name: "video only", in: Input{Video: "a.mp4"}},
		{name: "all fields", in: Input{Video: "b.mp4", Audio: strPtr("b.wav"), AudioFinal: strPtr("b-final.wav")}},
		{name: "missing video", in: Input{Audio: strPtr("x.wav")}, wantCode: apperrors.ErrCodeMissingField},
		{name: "blank video", in: Input{Video: "   "}, wantCode: apperrors.ErrCodeMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			project, err := service.CreateProject(ctx, tt.in)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, apperrors.GetCode(err))
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, project.ID)
			assert.Equal(t, tt.in.Video, project.Video)
		})
	}
}

func TestServiceImpl_GetAndListEmbedSegments(t *testing.T) {
	service, db := setupService(t)
	ctx := context.Background()

	withSegments, err := service.CreateProject(ctx, Input{Video: "one.mp4"})
	require.NoError(t, err)
	empty, err := service.CreateProject(ctx, Input{Video: "two.mp4"})
	require.NoError(t, err)

	addSegment(t, db, withSegments.ID, 20, 30)
	addSegment(t, db, withSegments.ID, 0, 10)

	detail, err := service.GetProject(ctx, withSegments.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, detail.SegmentsCount)
	assert.Equal(t, 0.0, detail.Segments[0].StartTime)
	assert.Equal(t, 20.0, detail.Segments[1].StartTime)

	emptyDetail, err := service.GetProject(ctx, empty.ID)
	require.NoError(t, err)
	assert.NotNil(t, emptyDetail.Segments)
	assert.Equal(t, 0, emptyDetail.SegmentsCount)

	all, err := service.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	counts := map[string]int{}
	for _, d := range all {
		counts[d.ID] = d.SegmentsCount
	}
	assert.Equal(t, map[string]int{withSegments.ID: 2, empty.ID: 0}, counts)

	_, err = service.GetProject(ctx, "missing")
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
}

func TestServiceImpl_UpdateProject(t *testing.T) {
	service, _ := setupService(t)
	ctx := context.Background()

	project, err := service.CreateProject(ctx, Input{Video: "a.mp4", Audio: strPtr("a.wav")})
	require.NoError(t, err)

	updated, err := service.UpdateProject(ctx, project.ID, Input{Video: "b.mp4"})
	require.NoError(t, err)
	assert.Equal(t, "b.mp4", updated.Video)
	assert.Equal(t, "a.wav", updated.Audio)

	_, err = service.UpdateProject(ctx, project.ID, Input{})
	assert.Equal(t, apperrors.ErrCodeMissingField, apperrors.GetCode(err))

	_, err = service.UpdateProject(ctx, "missing", Input{Video: "c.mp4"})
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
}

func TestServiceImpl_DeleteProjectCascades(t *testing.T) {
	service, db := setupService(t)
	ctx := context.Background()

	doomed, err := service.CreateProject(ctx, Input{Video: "a.mp4"})
	require.NoError(t, err)
	kept, err := service.CreateProject(ctx, Input{Video: "b.mp4"})
	require.NoError(t, err)

	addSegment(t, db, doomed.ID, 0, 1)
	addSegment(t, db, doomed.ID, 1, 2)
	addSegment(t, db, kept.ID, 0, 1)

	require.NoError(t, service.DeleteProject(ctx, doomed.ID))

	var remaining []models.Segment
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, kept.ID, remaining[0].ProjectID)

	err = service.DeleteProject(ctx, doomed.ID)
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
}

func TestRepository_ProjectExists(t *testing.T) {
	_, db := setupService(t)
	repo := NewRepository(db)
	ctx := context.Background()

	project := &models.Project{Video: "a.mp4"}
	require.NoError(t, repo.CreateProject(ctx, project))

	exists, err := repo.ProjectExists(ctx, project.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ProjectExists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, exists)
}
