package segments

import (
	"encoding/json"
	"strings"

	"github.com/killallgit/segments-api/internal/models"
	apperrors "github.com/killallgit/segments-api/pkg/errors"
	"gorm.io/datatypes"
)

// MergeAction tells whether a merge created a user's entry or changed an existing one
type MergeAction string

const (
	MergeInsert MergeAction = "insert"
	MergeUpdate MergeAction = "update"
)

// MergeInput is one user's value for one annotation field
type MergeInput struct {
	UserID     string
	FieldName  string
	FieldValue any
	Timestamp  any
}

// MergeResult describes what MergeAnnotationField did to the segment
type MergeResult struct {
	Action       MergeAction
	TotalEntries int
}

// Validate checks that every part of the input is present and usable as a field.
// Missing, null and empty-string values count as absent; 0 and false do not.
func (in MergeInput) Validate() error {
	var missing []string
	if isAbsent(in.UserID) {
		missing = append(missing, "userId")
	}
	if isAbsent(in.FieldName) {
		missing = append(missing, "fieldName")
	}
	if isAbsent(in.FieldValue) {
		missing = append(missing, "fieldValue")
	}
	if isAbsent(in.Timestamp) {
		missing = append(missing, "timestamp")
	}
	if len(missing) > 0 {
		return apperrors.MissingFieldError(missing...)
	}

	if models.IsReservedField(in.FieldName) {
		return apperrors.ValidationError("fieldName", "is reserved")
	}
	if !isScalar(in.FieldValue) {
		return apperrors.ValidationError("fieldValue", "must be a string, number or boolean")
	}
	if !isScalar(in.Timestamp) {
		return apperrors.ValidationError("timestamp", "must be a string, number or boolean")
	}
	return nil
}

// MergeAnnotationField sets in.FieldName on in.UserID's entry, appending a new
// entry when the user has none. The segment is untouched when validation fails.
// Repeating the same input leaves the segment as it was after the first call.
func MergeAnnotationField(seg *models.Segment, in MergeInput) (MergeResult, error) {
	if err := in.Validate(); err != nil {
		return MergeResult{}, err
	}

	if seg.DescriptionsProsody == nil {
		seg.DescriptionsProsody = datatypes.JSONSlice[models.AnnotationEntry]{}
	}

	action := MergeInsert
	if idx := seg.FindEntry(in.UserID); idx >= 0 {
		seg.DescriptionsProsody[idx].Set(in.FieldName, in.FieldValue, in.Timestamp)
		action = MergeUpdate
	} else {
		entry := models.AnnotationEntry{UserID: in.UserID}
		entry.Set(in.FieldName, in.FieldValue, in.Timestamp)
		seg.DescriptionsProsody = append(seg.DescriptionsProsody, entry)
	}

	return MergeResult{
		Action:       action,
		TotalEntries: len(seg.DescriptionsProsody),
	}, nil
}

func isAbsent(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	default:
		return false
	}
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, bool, json.Number,
		float32, float64,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	default:
		return false
	}
}
