package segments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/killallgit/segments-api/internal/database"
	"github.com/killallgit/segments-api/internal/models"
	apperrors "github.com/killallgit/segments-api/pkg/errors"
	"gorm.io/gorm"
)

// RepositoryImpl implements the Repository interface
type RepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new segment repository
func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

// CreateSegment inserts a new segment; the model hooks assign its ID and duration.
// The owning project is locked while the row is written so a concurrent project
// delete cannot leave the segment behind.
func (r *RepositoryImpl) CreateSegment(ctx context.Context, segment *models.Segment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := database.ForUpdate(tx).Select("id").Where("id = ?", segment.ProjectID).First(&project).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("project", segment.ProjectID)
			}
			return apperrors.DatabaseError("lock project", err)
		}

		if err := tx.Create(segment).Error; err != nil {
			if _, ok := apperrors.As(err); ok {
				return err
			}
			return apperrors.DatabaseError("create segment", err)
		}
		return nil
	})
}

// GetSegmentByID retrieves a segment by its ID
func (r *RepositoryImpl) GetSegmentByID(ctx context.Context, id string) (*models.Segment, error) {
	var segment models.Segment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&segment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("segment", id)
		}
		return nil, apperrors.DatabaseError("get segment", err)
	}
	return &segment, nil
}

// ListSegments returns every segment, newest first
func (r *RepositoryImpl) ListSegments(ctx context.Context) ([]models.Segment, error) {
	var segments []models.Segment
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&segments).Error; err != nil {
		return nil, apperrors.DatabaseError("list segments", err)
	}
	return segments, nil
}

// ListSegmentsByProject returns a project's segments ordered by start time
func (r *RepositoryImpl) ListSegmentsByProject(ctx context.Context, projectID string) ([]models.Segment, error) {
	var segments []models.Segment
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("start_time ASC").
		Find(&segments).Error; err != nil {
		return nil, apperrors.DatabaseError("list project segments", err)
	}
	return segments, nil
}

// UpdateSegmentIfRevision performs a compare-and-swap write keyed on the revision column
func (r *RepositoryImpl) UpdateSegmentIfRevision(ctx context.Context, segment *models.Segment, expectedRevision int64) (bool, error) {
	// Hooks are skipped below, so the invariants are enforced here
	if err := segment.Prepare(); err != nil {
		return false, err
	}

	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Session(&gorm.Session{SkipHooks: true}).
		Model(&models.Segment{}).
		Where("id = ? AND revision = ?", segment.ID, expectedRevision).
		Updates(map[string]any{
			"start_time":           segment.StartTime,
			"end_time":             segment.EndTime,
			"duration":             segment.Duration,
			"prosody":              segment.Prosody,
			"prosody2":             segment.Prosody2,
			"description":          segment.Description,
			"descriptions_prosody": segment.DescriptionsProsody,
			"revision":             gorm.Expr("revision + 1"),
			"updated_at":           now,
		})
	if result.Error != nil {
		return false, apperrors.DatabaseError("update segment", result.Error)
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	segment.Revision = expectedRevision + 1
	segment.UpdatedAt = now
	return true, nil
}

// IncrementCounter adds one to a counter column in a single statement and returns the new value
func (r *RepositoryImpl) IncrementCounter(ctx context.Context, id string, column string) (int64, error) {
	if column != CounterViews && column != CounterLikes {
		return 0, fmt.Errorf("unknown counter column %q", column)
	}

	var values []int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Segment{}).
			Where("id = ?", id).
			UpdateColumns(map[string]any{
				column:     gorm.Expr(column + " + 1"),
				"revision": gorm.Expr("revision + 1"),
			})
		if result.Error != nil {
			return apperrors.DatabaseError("increment "+column, result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.NotFound("segment", id)
		}

		if err := tx.Model(&models.Segment{}).
			Where("id = ?", id).
			Pluck(column, &values).Error; err != nil {
			return apperrors.DatabaseError("read "+column, err)
		}
		if len(values) == 0 {
			return apperrors.NotFound("segment", id)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return values[0], nil
}

// DeleteSegment deletes a segment by its ID
func (r *RepositoryImpl) DeleteSegment(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Segment{})
	if result.Error != nil {
		return apperrors.DatabaseError("delete segment", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("segment", id)
	}
	return nil
}
