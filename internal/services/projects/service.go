package projects

import (
	"context"
	"strings"

	"github.com/killallgit/segments-api/internal/models"
	apperrors "github.com/killallgit/segments-api/pkg/errors"
	"github.com/killallgit/segments-api/pkg/logger"
)

// ServiceImpl implements the Service interface
type ServiceImpl struct {
	repository Repository
	logger     *logger.Logger
}

// NewService creates a new project service
func NewService(repository Repository, log *logger.Logger) Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &ServiceImpl{repository: repository, logger: log}
}

// ListProjects returns every project with its segments
func (s *ServiceImpl) ListProjects(ctx context.Context) ([]ProjectDetail, error) {
	projects, err := s.repository.ListProjects(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}
	grouped, err := s.repository.SegmentsByProject(ctx, ids)
	if err != nil {
		return nil, err
	}

	details := make([]ProjectDetail, len(projects))
	for i, p := range projects {
		details[i] = newDetail(p, grouped[p.ID])
	}
	return details, nil
}

// GetProject returns a project with its segments
func (s *ServiceImpl) GetProject(ctx context.Context, id string) (*ProjectDetail, error) {
	project, err := s.repository.GetProjectByID(ctx, id)
	if err != nil {
		return nil, err
	}

	grouped, err := s.repository.SegmentsByProject(ctx, []string{id})
	if err != nil {
		return nil, err
	}

	detail := newDetail(*project, grouped[id])
	return &detail, nil
}

// CreateProject stores a new project; video is required
func (s *ServiceImpl) CreateProject(ctx context.Context, in Input) (*models.Project, error) {
	if strings.TrimSpace(in.Video) == "" {
		return nil, apperrors.MissingFieldError("video")
	}

	project := &models.Project{Video: in.Video}
	if in.Audio != nil {
		project.Audio = *in.Audio
	}
	if in.AudioFinal != nil {
		project.AudioFinal = *in.AudioFinal
	}

	if err := s.repository.CreateProject(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project created", "project_id", project.ID)
	return project, nil
}

// UpdateProject replaces the video and any supplied audio fields
func (s *ServiceImpl) UpdateProject(ctx context.Context, id string, in Input) (*models.Project, error) {
	if strings.TrimSpace(in.Video) == "" {
		return nil, apperrors.MissingFieldError("video")
	}

	project, err := s.repository.GetProjectByID(ctx, id)
	if err != nil {
		return nil, err
	}

	project.Video = in.Video
	if in.Audio != nil {
		project.Audio = *in.Audio
	}
	if in.AudioFinal != nil {
		project.AudioFinal = *in.AudioFinal
	}

	if err := s.repository.UpdateProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// DeleteProject deletes a project and every segment that belongs to it
func (s *ServiceImpl) DeleteProject(ctx context.Context, id string) error {
	if err := s.repository.DeleteProject(ctx, id); err != nil {
		return err
	}
	s.logger.Info("project deleted", "project_id", id)
	return nil
}

func newDetail(project models.Project, segments []models.Segment) ProjectDetail {
	if segments == nil {
		segments = []models.Segment{}
	}
	return ProjectDetail{
		Project:       project,
		Segments:      segments,
		SegmentsCount: len(segments),
	}
}
