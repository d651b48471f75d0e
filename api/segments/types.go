package segments

import (
	"strings"

	"github.com/killallgit/segments-api/internal/models"
	segmentsvc "github.com/killallgit/segments-api/internal/services/segments"
)

// CreateSegmentRequest is the body of POST /api/segments
type CreateSegmentRequest struct {
	StartTime   *float64 `json:"startTime" example:"1.5"`
	EndTime     *float64 `json:"endTime" example:"4.25"`
	ProjectID   string   `json:"projectid" example:"7c9e6679-7425-40de-944b-e07fc1f90ae7"`
	ProjectIDV2 string   `json:"project_id,omitempty" swaggerignore:"true"`
	Prosody     string   `json:"prosody,omitempty"`
	Prosody2    string   `json:"prosody2,omitempty"`
	Description string   `json:"description,omitempty"`
}

func (r CreateSegmentRequest) toInput() segmentsvc.CreateInput {
	projectID := r.ProjectID
	if strings.TrimSpace(projectID) == "" {
		projectID = r.ProjectIDV2
	}
	return segmentsvc.CreateInput{
		ProjectID:   projectID,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		Prosody:     r.Prosody,
		Prosody2:    r.Prosody2,
		Description: r.Description,
	}
}

// UpdateSegmentRequest is the body of PUT /api/segments/{segmentId}; omitted fields are unchanged
type UpdateSegmentRequest struct {
	StartTime   *float64 `json:"startTime,omitempty" example:"2"`
	EndTime     *float64 `json:"endTime,omitempty" example:"6.5"`
	Prosody     *string  `json:"prosody,omitempty"`
	Prosody2    *string  `json:"prosody2,omitempty"`
	Description *string  `json:"description,omitempty"`
}

func (r UpdateSegmentRequest) toInput() segmentsvc.UpdateInput {
	return segmentsvc.UpdateInput{
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		Prosody:     r.Prosody,
		Prosody2:    r.Prosody2,
		Description: r.Description,
	}
}

// MergeRequest is the body of POST /api/segments/{segmentId}/descriptions_prosody
type MergeRequest struct {
	SegmentID  string      `json:"segmentId,omitempty"`
	UserID     string      `json:"userId" example:"alice"`
	FieldName  string      `json:"fieldName" example:"tone"`
	FieldValue interface{} `json:"fieldValue" swaggertype:"string" example:"happy"`
	Timestamp  interface{} `json:"timestamp" swaggertype:"integer" example:"1700000000000"`
}

func (r MergeRequest) toInput() segmentsvc.MergeInput {
	return segmentsvc.MergeInput{
		UserID:     r.UserID,
		FieldName:  r.FieldName,
		FieldValue: r.FieldValue,
		Timestamp:  r.Timestamp,
	}
}

// SegmentData wraps a single segment
type SegmentData struct {
	Segment *models.Segment `json:"segment"`
}

// SegmentListData is a list of segments with its length
type SegmentListData struct {
	Segments []models.Segment `json:"segments"`
	Count    int              `json:"count"`
}

// ProjectSegmentsData is the segments of one project
type ProjectSegmentsData struct {
	Segments  []models.Segment `json:"segments"`
	Count     int              `json:"count"`
	ProjectID string           `json:"project_id"`
}

// DeletedData identifies a deleted segment
type DeletedData struct {
	SegmentID string `json:"segment_id"`
}

// ViewsData is the view count after an increment
type ViewsData struct {
	SegmentID string `json:"segment_id"`
	Views     int64  `json:"views"`
}

// LikesData is the like count after an increment
type LikesData struct {
	SegmentID string `json:"segment_id"`
	Likes     int64  `json:"likes"`
}

// MergeData describes a merged annotation field
type MergeData struct {
	Segment      *models.Segment `json:"segment"`
	FieldUpdated string          `json:"field_updated"`
	UserID       string          `json:"user_id"`
	Action       string          `json:"action"`
	TotalEntries int             `json:"total_entries"`
}

func listData(segments []models.Segment) SegmentListData {
	if segments == nil {
		segments = []models.Segment{}
	}
	return SegmentListData{Segments: segments, Count: len(segments)}
}
