package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/killallgit/segments-api/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Segment is a time-bounded section of a project's video with per-user annotations
type Segment struct {
	ID                  string                               `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	ProjectID           string                               `json:"project_id" gorm:"type:varchar(36);not null;index"`
	StartTime           float64                              `json:"start_time" gorm:"not null;index"` // seconds
	EndTime             float64                              `json:"end_time" gorm:"not null"`         // seconds
	Duration            float64                              `json:"duration" gorm:"not null;default:0"`
	Views               int64                                `json:"views" gorm:"not null;default:0"`
	Likes               int64                                `json:"likes" gorm:"not null;default:0"`
	Prosody             string                               `json:"prosody"`
	Prosody2            string                               `json:"prosody2"`
	Description         string                               `json:"description" gorm:"type:text"`
	DescriptionsProsody datatypes.JSONSlice[AnnotationEntry] `json:"descriptions_prosody"`
	Revision            int64                                `json:"revision" gorm:"not null;default:0"`
	CreatedAt           time.Time                            `json:"created_at" gorm:"index"`
	UpdatedAt           time.Time                            `json:"updated_at"`
}

// TableName returns the table name for the Segment model
func (Segment) TableName() string {
	return "segments"
}

// Prepare normalizes the segment and enforces its time invariants.
// It must run before every write.
func (s *Segment) Prepare() error {
	if s.StartTime < 0 {
		return apperrors.ValidationError("start_time", "must be greater than or equal to 0")
	}
	if s.EndTime < 0 {
		return apperrors.ValidationError("end_time", "must be greater than or equal to 0")
	}
	if s.StartTime >= s.EndTime {
		return apperrors.ValidationError("start_time", "must be less than end_time")
	}

	s.Duration = s.EndTime - s.StartTime
	s.Prosody = strings.TrimSpace(s.Prosody)
	s.Prosody2 = strings.TrimSpace(s.Prosody2)
	s.Description = strings.TrimSpace(s.Description)
	if s.DescriptionsProsody == nil {
		s.DescriptionsProsody = datatypes.JSONSlice[AnnotationEntry]{}
	}
	return nil
}

// BeforeCreate assigns an ID to new segments
func (s *Segment) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// BeforeSave runs Prepare on Create and Save
func (s *Segment) BeforeSave(tx *gorm.DB) error {
	return s.Prepare()
}

// AfterFind replaces a stored null annotation list with an empty one
func (s *Segment) AfterFind(tx *gorm.DB) error {
	if s.DescriptionsProsody == nil {
		s.DescriptionsProsody = datatypes.JSONSlice[AnnotationEntry]{}
	}
	return nil
}

// FindEntry returns the index of userID's entry, or -1
func (s *Segment) FindEntry(userID string) int {
	for i := range s.DescriptionsProsody {
		if s.DescriptionsProsody[i].UserID == userID {
			return i
		}
	}
	return -1
}
