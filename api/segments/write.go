package segments

import (
	"github.com/gin-gonic/gin"

	"github.com/killallgit/segments-api/api/types"
)

// CreateSegment creates a segment inside an existing project
// @Summary      Create segment
// @Description  Create a time-bounded segment. startTime must be less than endTime and both non-negative.
// @Description  The duration is computed by the server and descriptions_prosody starts empty.
// @Tags         segments
// @Accept       json
// @Produce      json
// @Param        segment body CreateSegmentRequest true "Segment data"
// @Success      201 {object} types.Response{data=SegmentData}
// @Failure      400 {object} types.Response "Missing or invalid fields"
// @Failure      404 {object} types.Response "Project not found"
// @Failure      500 {object} types.Response "Error creating segment"
// @Security     BearerAuth
// @Router       /api/segments [post]
func CreateSegment(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateSegmentRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		segment, err := deps.SegmentService.CreateSegment(c.Request.Context(), req.toInput())
		if err != nil {
			types.SendError(c, deps.Logger, err, "Error creating segment")
			return
		}
		types.SendCreated(c, "Segment created successfully", SegmentData{Segment: segment})
	}
}

// UpdateSegment applies a partial update to a segment
// @Summary      Update segment
// @Description  Update the times or text fields of a segment. Omitted fields keep their values.
// @Description  descriptions_prosody cannot be changed here, use the descriptions_prosody endpoint.
// @Tags         segments
// @Accept       json
// @Produce      json
// @Param        segmentId path string true "Segment ID"
// @Param        segment body UpdateSegmentRequest true "Fields to change"
// @Success      200 {object} types.Response{data=SegmentData}
// @Failure      400 {object} types.Response "Invalid times"
// @Failure      404 {object} types.Response "Segment not found"
// @Failure      409 {object} types.Response "Segment kept changing, retry"
// @Failure      500 {object} types.Response "Error updating segment"
// @Security     BearerAuth
// @Router       /api/segments/{segmentId} [put]
func UpdateSegment(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateSegmentRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		segment, err := deps.SegmentService.UpdateSegment(c.Request.Context(), c.Param("segmentId"), req.toInput())
		if err != nil {
			types.SendError(c, deps.Logger, err, "Error updating segment")
			return
		}
		types.SendSuccess(c, "Segment updated successfully", SegmentData{Segment: segment})
	}
}

// DeleteSegment deletes a segment
// @Summary      Delete segment
// @Tags         segments
// @Produce      json
// @Param        segmentId path string true "Segment ID"
// @Success      200 {object} types.Response{data=DeletedData}
// @Failure      404 {object} types.Response "Segment not found"
// @Failure      500 {object} types.Response "Error deleting segment"
// @Security     BearerAuth
// @Router       /api/segments/{segmentId} [delete]
func DeleteSegment(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("segmentId")
		if err := deps.SegmentService.DeleteSegment(c.Request.Context(), id); err != nil {
			types.SendError(c, deps.Logger, err, "Error deleting segment")
			return
		}
		types.SendSuccess(c, "Segment deleted successfully", DeletedData{SegmentID: id})
	}
}

// IncrementViews adds one view to a segment
// @Summary      Increment views
// @Tags         segments
// @Produce      json
// @Param        segmentId path string true "Segment ID"
// @Success      200 {object} types.Response{data=ViewsData}
// @Failure      404 {object} types.Response "Segment not found"
// @Failure      500 {object} types.Response "Error incrementing views"
// @Router       /api/segments/{segmentId}/views [post]
func IncrementViews(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("segmentId")
		views, err := deps.SegmentService.IncrementViews(c.Request.Context(), id)
		if err != nil {
			types.SendError(c, deps.Logger, err, "Error incrementing views")
			return
		}
		types.SendSuccess(c, "Views incremented successfully", ViewsData{SegmentID: id, Views: views})
	}
}

// IncrementLikes adds one like to a segment
// @Summary      Increment likes
// @Tags         segments
// @Produce      json
// @Param        segmentId path string true "Segment ID"
// @Success      200 {object} types.Response{data=LikesData}
// @Failure      404 {object} types.Response "Segment not found"
// @Failure      500 {object} types.Response "Error incrementing likes"
// @Router       /api/segments/{segmentId}/likes [post]
func IncrementLikes(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("segmentId")
		likes, err := deps.SegmentService.IncrementLikes(c.Request.Context(), id)
		if err != nil {
			types.SendError(c, deps.Logger, err, "Error incrementing likes")
			return
		}
		types.SendSuccess(c, "Likes incremented successfully", LikesData{SegmentID: id, Likes: likes})
	}
}
