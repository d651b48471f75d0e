package segments

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/killallgit/segments-api/api/types"
	segmentsvc "github.com/killallgit/segments-api/internal/services/segments"
)

// MergeDescriptionsProsody sets one annotation field for one user on a segment
// @Summary      Merge annotation field
// @Description  Set fieldName to fieldValue in userId's descriptions_prosody entry, recording timestamp for it.
// @Description  The entry is appended when the user has none yet. Repeating a request changes nothing.
// @Description  The segment in the path wins; a segmentId in the body must match it when present.
// @Tags         segments
// @Accept       json
// @Produce      json
// @Param        segmentId path string true "Segment ID"
// @Param        annotation body MergeRequest true "Annotation field"
// @Success      200 {object} types.Response{data=MergeData}
// @Failure      400 {object} types.Response "Missing required fields"
// @Failure      404 {object} types.Response "Segment not found"
// @Failure      409 {object} types.Response "Segment kept changing, retry"
// @Failure      500 {object} types.Response "Error updating descriptions_prosody"
// @Security     BearerAuth
// @Router       /api/segments/{segmentId}/descriptions_prosody [post]
func MergeDescriptionsProsody(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		segmentID := c.Param("segmentId")

		var req MergeRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}
		if body := strings.TrimSpace(req.SegmentID); body != "" && body != segmentID {
			types.SendBadRequest(c, "segmentId in body does not match the URL")
			return
		}

		outcome, err := deps.SegmentService.MergeDescriptionsProsody(c.Request.Context(), segmentID, req.toInput())
		if err != nil {
			types.SendError(c, deps.Logger, err, "Error updating descriptions_prosody")
			return
		}

		verb := "updated"
		if outcome.Action == segmentsvc.MergeInsert {
			verb = "added"
		}
		types.SendSuccess(c, fmt.Sprintf("Field '%s' %s successfully", outcome.FieldName, verb), MergeData{
			Segment:      outcome.Segment,
			FieldUpdated: outcome.FieldName,
			UserID:       outcome.UserID,
			Action:       string(outcome.Action),
			TotalEntries: outcome.TotalEntries,
		})
	}
}
