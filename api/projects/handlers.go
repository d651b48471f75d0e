package projects

import (
	"github.com/gin-gonic/gin"

	"github.com/killallgit/segments-api/api/types"
	"github.com/killallgit/segments-api/internal/models"
	projectsvc "github.com/killallgit/segments-api/internal/services/projects"
)

// ProjectRequest is the body of project create and update requests
type ProjectRequest struct {
	Video      string  `json:"video" example:"https://cdn.example.com/clip.mp4"`
	Audio      *string `json:"audio,omitempty" example:"https://cdn.example.com/clip.wav"`
	AudioFinal *string `json:"audiofinal,omitempty"`
}

func (r ProjectRequest) toInput() projectsvc.Input {
	return projectsvc.Input{Video: r.Video, Audio: r.Audio, AudioFinal: r.AudioFinal}
}

// ProjectListData is a list of projects with their segments
type ProjectListData struct {
	Projects []projectsvc.ProjectDetail `json:"projects"`
	Count    int                        `json:"count"`
}

// ProjectDetailData wraps a project with its segments
type ProjectDetailData struct {
	Project *projectsvc.ProjectDetail `json:"project"`
}

// ProjectData wraps a project
type ProjectData struct {
	Project *models.Project `json:"project"`
}

// DeletedData identifies a deleted project
type DeletedData struct {
	ProjectID string `json:"project_id"`
}

// ListProjects returns every project with its segments
// @Summary      List projects
// @Description  Retrieve all projects, newest first, each with its segments ordered by start time
// @Tags         projects
// @Produce      json
// @Success      200 {object} types.Response{data=ProjectListData}
// @Failure      500 {object} types.Response "Error fetching projects"
// @Router       /api/projects [get]
func ListProjects(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := deps.ProjectService.ListProjects(c.Request.Context())
		if err != nil {
			types.SendError(c, deps.Logger, err, "Error fetching projects")
			return
		}
		if list == nil {
			list = []projectsvc.ProjectDetail{}
		}
		types.SendSuccess(c, "Projects retrieved successfully", ProjectListData{Projects: list, Count: len(list)})
	}
}

// GetProject returns one project with its segments
// @Summary      Get project
// @Tags         projects
// @Produce      json
// @Param        projectId path string true "Project ID"
// @Success      200 {object} types.Response{data=ProjectDetailData}
// @Failure      404 {object} types.Response "Project not found"
// @Failure      500 {object} types.Response "Error fetching project"
// @Router       /api/projects/{projectId} [get]
func GetProject(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		detail, err := deps.ProjectService.GetProject(c.Request.Context(), c.Param("projectId"))
		if err != nil {
			types.SendError(c, deps.Logger, err, "Error fetching project")
			return
		}
		types.SendSuccess(c, "Project retrieved successfully", ProjectDetailData{Project: detail})
	}
}

// CreateProject creates a project
// @Summary      Create project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        project body ProjectRequest true "Project data"
// @Success      201 {object} types.Response{data=ProjectData}
// @Failure      400 {object} types.Response "Video is required"
// @Failure      500 {object} types.Response "Error creating project"
// @Security     BearerAuth
// @Router       /api/projects [post]
func CreateProject(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ProjectRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		project, err := deps.ProjectService.CreateProject(c.Request.Context(), req.toInput())
		if err != nil {
			types.SendError(c, deps.Logger, err, "Error creating project")
			return
		}
		types.SendCreated(c, "Project created successfully", ProjectData{Project: project})
	}
}

// UpdateProject replaces a project's media references
// @Summary      Update project
// @Description  video is required; audio and audiofinal are only changed when present
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        projectId path string true "Project ID"
// @Param        project body ProjectRequest true "Project data"
// @Success      200 {object} types.Response{data=ProjectData}
// @Failure      400 {object} types.Response "Video is required"
// @Failure      404 {object} types.Response "Project not found"
// @Failure      500 {object} types.Response "Error updating project"
// @Security     BearerAuth
// @Router       /api/projects/{projectId} [put]
func UpdateProject(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ProjectRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		project, err := deps.ProjectService.UpdateProject(c.Request.Context(), c.Param("projectId"), req.toInput())
		if err != nil {
			types.SendError(c, deps.Logger, err, "Error updating project")
			return
		}
		types.SendSuccess(c, "Project updated successfully", ProjectData{Project: project})
	}
}

// DeleteProject deletes a project and its segments
// @Summary      Delete project
// @Tags         projects
// @Produce      json
// @Param        projectId path string true "Project ID"
// @Success      200 {object} types.Response{data=DeletedData}
// @Failure      404 {object} types.Response "Project not found"
// @Failure      500 {object} types.Response "Error deleting project"
// @Security     BearerAuth
// @Router       /api/projects/{projectId} [delete]
func DeleteProject(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("projectId")
		if err := deps.ProjectService.DeleteProject(c.Request.Context(), id); err != nil {
			types.SendError(c, deps.Logger, err, "Error deleting project")
			return
		}
		types.SendSuccess(c, "Project deleted successfully", DeletedData{ProjectID: id})
	}
}
