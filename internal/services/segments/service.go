package segments

import (
	"context"
	"strings"

	"github.com/killallgit/segments-api/internal/models"
	apperrors "github.com/killallgit/segments-api/pkg/errors"
	"github.com/killallgit/segments-api/pkg/logger"
)

// DefaultMaxRetries bounds compare-and-swap attempts when no option overrides it
const DefaultMaxRetries = 5

// ServiceImpl implements the Service interface
type ServiceImpl struct {
	repository Repository
	projects   ProjectLookup
	logger     *logger.Logger
	recorder   MergeRecorder
	maxRetries int
}

// Option configures a ServiceImpl
type Option func(*ServiceImpl)

// WithLogger sets the service logger
func WithLogger(l *logger.Logger) Option {
	return func(s *ServiceImpl) { s.logger = l }
}

// WithMaxRetries sets how many times a conflicting write is retried
func WithMaxRetries(n int) Option {
	return func(s *ServiceImpl) {
		if n > 0 {
			s.maxRetries = n
		}
	}
}

// WithRecorder reports merge outcomes and conflicts to r
func WithRecorder(r MergeRecorder) Option {
	return func(s *ServiceImpl) { s.recorder = r }
}

// NewService creates a new segment service
func NewService(repository Repository, projects ProjectLookup, opts ...Option) Service {
	s := &ServiceImpl{
		repository: repository,
		projects:   projects,
		logger:     logger.NewNop(),
		maxRetries: DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSegment validates the input and stores a new segment in its project
func (s *ServiceImpl) CreateSegment(ctx context.Context, in CreateInput) (*models.Segment, error) {
	var missing []string
	if in.StartTime == nil {
		missing = append(missing, "startTime")
	}
	if in.EndTime == nil {
		missing = append(missing, "endTime")
	}
	projectID := strings.TrimSpace(in.ProjectID)
	if projectID == "" {
		missing = append(missing, "projectid")
	}
	if len(missing) > 0 {
		return nil, apperrors.MissingFieldError(missing...)
	}

	segment := &models.Segment{
		ProjectID:   projectID,
		StartTime:   *in.StartTime,
		EndTime:     *in.EndTime,
		Prosody:     in.Prosody,
		Prosody2:    in.Prosody2,
		Description: in.Description,
	}
	if err := segment.Prepare(); err != nil {
		return nil, err
	}

	// The repository checks the project in the same transaction as the insert
	if err := s.repository.CreateSegment(ctx, segment); err != nil {
		return nil, err
	}

	s.logger.Info("segment created", "segment_id", segment.ID, "project_id", projectID)
	return segment, nil
}

// GetSegment retrieves a segment by its ID
func (s *ServiceImpl) GetSegment(ctx context.Context, id string) (*models.Segment, error) {
	return s.repository.GetSegmentByID(ctx, id)
}

// ListSegments returns all segments, newest first
func (s *ServiceImpl) ListSegments(ctx context.Context) ([]models.Segment, error) {
	return s.repository.ListSegments(ctx)
}

// ListSegmentsByProject returns a project's segments by start time
func (s *ServiceImpl) ListSegmentsByProject(ctx context.Context, projectID string) ([]models.Segment, error) {
	if err := s.requireProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.repository.ListSegmentsByProject(ctx, projectID)
}

// UpdateSegment applies a partial update, retrying when a concurrent write wins
func (s *ServiceImpl) UpdateSegment(ctx context.Context, id string, in UpdateInput) (*models.Segment, error) {
	if in.StartTime != nil && *in.StartTime < 0 {
		return nil, apperrors.ValidationError("start_time", "must be greater than or equal to 0")
	}
	if in.EndTime != nil && *in.EndTime < 0 {
		return nil, apperrors.ValidationError("end_time", "must be greater than or equal to 0")
	}

	return s.writeWithRetry(ctx, id, "update", func(segment *models.Segment) error {
		if in.StartTime != nil {
			segment.StartTime = *in.StartTime
		}
		if in.EndTime != nil {
			segment.EndTime = *in.EndTime
		}
		if in.Prosody != nil {
			segment.Prosody = *in.Prosody
		}
		if in.Prosody2 != nil {
			segment.Prosody2 = *in.Prosody2
		}
		if in.Description != nil {
			segment.Description = *in.Description
		}
		return nil
	})
}

// IncrementViews adds one view and returns the new total
func (s *ServiceImpl) IncrementViews(ctx context.Context, id string) (int64, error) {
	return s.repository.IncrementCounter(ctx, id, CounterViews)
}

// IncrementLikes adds one like and returns the new total
func (s *ServiceImpl) IncrementLikes(ctx context.Context, id string) (int64, error) {
	return s.repository.IncrementCounter(ctx, id, CounterLikes)
}

// MergeDescriptionsProsody loads the segment, merges one annotation field and stores it
func (s *ServiceImpl) MergeDescriptionsProsody(ctx context.Context, id string, in MergeInput) (*MergeOutcome, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var result MergeResult
	segment, err := s.writeWithRetry(ctx, id, "merge", func(segment *models.Segment) error {
		var err error
		result, err = MergeAnnotationField(segment, in)
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.recorder != nil {
		s.recorder.RecordMerge(string(result.Action))
	}
	s.logger.Debug("annotation merged",
		"segment_id", id,
		"user_id", in.UserID,
		"field", in.FieldName,
		"action", result.Action,
		"total_entries", result.TotalEntries)

	return &MergeOutcome{
		Segment:      segment,
		Action:       result.Action,
		FieldName:    in.FieldName,
		UserID:       in.UserID,
		TotalEntries: result.TotalEntries,
	}, nil
}

// DeleteSegment deletes a segment by its ID
func (s *ServiceImpl) DeleteSegment(ctx context.Context, id string) error {
	if err := s.repository.DeleteSegment(ctx, id); err != nil {
		return err
	}
	s.logger.Info("segment deleted", "segment_id", id)
	return nil
}

// writeWithRetry reloads the segment, applies mutate and writes it back only if
// nobody else wrote in between. Each attempt starts from fresh state.
func (s *ServiceImpl) writeWithRetry(ctx context.Context, id, operation string, mutate func(*models.Segment) error) (*models.Segment, error) {
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		segment, err := s.repository.GetSegmentByID(ctx, id)
		if err != nil {
			return nil, err
		}

		expected := segment.Revision
		if err := mutate(segment); err != nil {
			return nil, err
		}

		ok, err := s.repository.UpdateSegmentIfRevision(ctx, segment, expected)
		if err != nil {
			return nil, err
		}
		if ok {
			return segment, nil
		}

		if s.recorder != nil {
			s.recorder.RecordConflict(operation)
		}
		s.logger.Debug("segment revision changed, retrying",
			"segment_id", id,
			"operation", operation,
			"attempt", attempt)
	}

	s.logger.Warn("segment write gave up after conflicts",
		"segment_id", id,
		"operation", operation,
		"attempts", s.maxRetries)
	return nil, apperrors.Conflict("segment", id)
}

func (s *ServiceImpl) requireProject(ctx context.Context, projectID string) error {
	exists, err := s.projects.ProjectExists(ctx, projectID)
	if err != nil {
		return err
	}
	if !exists {
		return apperrors.NotFound("project", projectID)
	}
	return nil
}
