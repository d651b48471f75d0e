package projects

import (
	"context"

	"github.com/killallgit/segments-api/internal/models"
)

// Repository defines the interface for project data access
type Repository interface {
	CreateProject(ctx context.Context, project *models.Project) error
	GetProjectByID(ctx context.Context, id string) (*models.Project, error)
	ListProjects(ctx context.Context) ([]models.Project, error)
	ProjectExists(ctx context.Context, id string) (bool, error)
	// SegmentsByProject groups the segments of the given projects by project ID, each ordered by start time
	SegmentsByProject(ctx context.Context, projectIDs []string) (map[string][]models.Segment, error)
	UpdateProject(ctx context.Context, project *models.Project) error
	// DeleteProject removes the project together with all of its segments
	DeleteProject(ctx context.Context, id string) error
}

// Service defines the interface for project business logic
type Service interface {
	ListProjects(ctx context.Context) ([]ProjectDetail, error)
	GetProject(ctx context.Context, id string) (*ProjectDetail, error)
	CreateProject(ctx context.Context, in Input) (*models.Project, error)
	UpdateProject(ctx context.Context, id string, in Input) (*models.Project, error)
	DeleteProject(ctx context.Context, id string) error
}

// Input carries project fields from a request; nil optional fields are left unchanged on update
type Input struct {
	Video      string
	Audio      *string
	AudioFinal *string
}

// ProjectDetail is a project with its segments embedded
type ProjectDetail struct {
	models.Project
	Segments      []models.Segment `json:"segments"`
	SegmentsCount int              `json:"segments_count"`
}
