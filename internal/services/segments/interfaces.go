package segments

import (
	"context"

	"github.com/killallgit/segments-api/internal/models"
)

// Counter columns that can be incremented atomically
const (
	CounterViews = "views"
	CounterLikes = "likes"
)

// Repository defines the interface for segment data access
type Repository interface {
	// Create operations
	CreateSegment(ctx context.Context, segment *models.Segment) error

	// Read operations
	GetSegmentByID(ctx context.Context, id string) (*models.Segment, error)
	ListSegments(ctx context.Context) ([]models.Segment, error)
	ListSegmentsByProject(ctx context.Context, projectID string) ([]models.Segment, error)

	// Update operations
	// UpdateSegmentIfRevision writes segment only if the stored revision still equals
	// expectedRevision. It reports false when another writer got there first.
	UpdateSegmentIfRevision(ctx context.Context, segment *models.Segment, expectedRevision int64) (bool, error)
	IncrementCounter(ctx context.Context, id string, column string) (int64, error)

	// Delete operations
	DeleteSegment(ctx context.Context, id string) error
}

// ProjectLookup reports whether a project exists
type ProjectLookup interface {
	ProjectExists(ctx context.Context, id string) (bool, error)
}

// MergeRecorder observes merge outcomes
type MergeRecorder interface {
	RecordMerge(action string)
	RecordConflict(operation string)
}

// Service defines the interface for segment business logic
type Service interface {
	// Create operations
	CreateSegment(ctx context.Context, in CreateInput) (*models.Segment, error)

	// Read operations
	GetSegment(ctx context.Context, id string) (*models.Segment, error)
	ListSegments(ctx context.Context) ([]models.Segment, error)
	ListSegmentsByProject(ctx context.Context, projectID string) ([]models.Segment, error)

	// Update operations
	UpdateSegment(ctx context.Context, id string, in UpdateInput) (*models.Segment, error)
	IncrementViews(ctx context.Context, id string) (int64, error)
	IncrementLikes(ctx context.Context, id string) (int64, error)
	MergeDescriptionsProsody(ctx context.Context, id string, in MergeInput) (*MergeOutcome, error)

	// Delete operations
	DeleteSegment(ctx context.Context, id string) error
}

// CreateInput carries the fields accepted when creating a segment
type CreateInput struct {
	ProjectID   string
	StartTime   *float64
	EndTime     *float64
	Prosody     string
	Prosody2    string
	Description string
}

// UpdateInput carries a partial update; nil fields are left unchanged
type UpdateInput struct {
	StartTime   *float64
	EndTime     *float64
	Prosody     *string
	Prosody2    *string
	Description *string
}

// MergeOutcome is the persisted result of a merge
type MergeOutcome struct {
	Segment      *models.Segment
	Action       MergeAction
	FieldName    string
	UserID       string
	TotalEntries int
}
