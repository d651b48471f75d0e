package segments

import (
	"github.com/gin-gonic/gin"

	"github.com/killallgit/segments-api/api/types"
)

// ListSegments returns every segment, newest first
// @Summary      List segments
// @Description  Retrieve all segments ordered by creation time, newest first
// @Tags         segments
// @Produce      json
// @Success      200 {object} types.Response{data=SegmentListData}
// @Failure      500 {object} types.Response "Error fetching segments"
// @Router       /api/segments [get]
func ListSegments(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		segments, err := deps.SegmentService.ListSegments(c.Request.Context())
		if err != nil {
			types.SendError(c, deps.Logger, err, "Error fetching segments")
			return
		}
		types.SendSuccess(c, "Segments retrieved successfully", listData(segments))
	}
}

// GetSegment returns a single segment
// @Summary      Get segment
// @Description  Retrieve one segment including its descriptions_prosody annotations
// @Tags         segments
// @Produce      json
// @Param        segmentId path string true "Segment ID"
// @Success      200 {object} types.Response{data=SegmentData}
// @Failure      404 {object} types.Response "Segment not found"
// @Failure      500 {object} types.Response "Error fetching segment"
// @Router       /api/segments/{segmentId} [get]
func GetSegment(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		segment, err := deps.SegmentService.GetSegment(c.Request.Context(), c.Param("segmentId"))
		if err != nil {
			types.SendError(c, deps.Logger, err, "Error fetching segment")
			return
		}
		types.SendSuccess(c, "Segment retrieved successfully", SegmentData{Segment: segment})
	}
}

// ListSegmentsByProject returns the segments of a project by start time
// @Summary      List project segments
// @Description  Retrieve the segments of one project ordered by start time
// @Tags         segments
// @Produce      json
// @Param        projectId path string true "Project ID"
// @Success      200 {object} types.Response{data=ProjectSegmentsData}
// @Failure      404 {object} types.Response "Project not found"
// @Failure      500 {object} types.Response "Error fetching project segments"
// @Router       /api/segments/project/{projectId} [get]
func ListSegmentsByProject(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID := c.Param("projectId")

		segments, err := deps.SegmentService.ListSegmentsByProject(c.Request.Context(), projectID)
		if err != nil {
			types.SendError(c, deps.Logger, err, "Error fetching project segments")
			return
		}

		data := listData(segments)
		types.SendSuccess(c, "Segments retrieved successfully", ProjectSegmentsData{
			Segments:  data.Segments,
			Count:     data.Count,
			ProjectID: projectID,
		})
	}
}
