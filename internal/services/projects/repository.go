package projects

import (
	"context"
	"errors"

	"github.com/killallgit/segments-api/internal/database"
	"github.com/killallgit/segments-api/internal/models"
	apperrors "github.com/killallgit/segments-api/pkg/errors"
	"gorm.io/gorm"
)

// RepositoryImpl implements the Repository interface
type RepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new project repository
func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

// CreateProject inserts a new project
func (r *RepositoryImpl) CreateProject(ctx context.Context, project *models.Project) error {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		if _, ok := apperrors.As(err); ok {
			return err
		}
		return apperrors.DatabaseError("create project", err)
	}
	return nil
}

// GetProjectByID retrieves a project by its ID
func (r *RepositoryImpl) GetProjectByID(ctx context.Context, id string) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("project", id)
		}
		return nil, apperrors.DatabaseError("get project", err)
	}
	return &project, nil
}

// ListProjects returns all projects, newest first
func (r *RepositoryImpl) ListProjects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, apperrors.DatabaseError("list projects", err)
	}
	return projects, nil
}

// ProjectExists reports whether a project with the given ID exists
func (r *RepositoryImpl) ProjectExists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, apperrors.DatabaseError("check project", err)
	}
	return count > 0, nil
}

// SegmentsByProject loads the segments of several projects in one query
func (r *RepositoryImpl) SegmentsByProject(ctx context.Context, projectIDs []string) (map[string][]models.Segment, error) {
	grouped := make(map[string][]models.Segment, len(projectIDs))
	if len(projectIDs) == 0 {
		return grouped, nil
	}

	var segments []models.Segment
	if err := r.db.WithContext(ctx).
		Where("project_id IN ?", projectIDs).
		Order("start_time ASC").
		Find(&segments).Error; err != nil {
		return nil, apperrors.DatabaseError("list project segments", err)
	}

	for _, seg := range segments {
		grouped[seg.ProjectID] = append(grouped[seg.ProjectID], seg)
	}
	return grouped, nil
}

// UpdateProject saves all project fields
func (r *RepositoryImpl) UpdateProject(ctx context.Context, project *models.Project) error {
	result := r.db.WithContext(ctx).Save(project)
	if result.Error != nil {
		if _, ok := apperrors.As(result.Error); ok {
			return result.Error
		}
		return apperrors.DatabaseError("update project", result.Error)
	}
	return nil
}

// DeleteProject deletes the project and its segments in one transaction
func (r *RepositoryImpl) DeleteProject(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Segment inserts lock the same row, so none can slip in between the two deletes
		var project models.Project
		if err := database.ForUpdate(tx).Select("id").Where("id = ?", id).First(&project).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("project", id)
			}
			return apperrors.DatabaseError("lock project", err)
		}

		if err := tx.Where("project_id = ?", id).Delete(&models.Segment{}).Error; err != nil {
			return apperrors.DatabaseError("delete project segments", err)
		}

		result := tx.Where("id = ?", id).Delete(&models.Project{})
		if result.Error != nil {
			return apperrors.DatabaseError("delete project", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.NotFound("project", id)
		}
		return nil
	})
}
