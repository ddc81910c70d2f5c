package server

import (
	"net/http"

	"projectmanager/internal/domain/models"

	"github.com/gin-gonic/gin"
)

func (api *ProjectAPI) createProject(ctx *gin.Context) {
	var req models.CreateProjectRequest
	if _, err := api.bindObject(ctx, &req, "name"); err != nil {
		abortWithError(ctx, err)
		return
	}
	if err := optionalNonEmpty("name", &req.Name); err != nil {
		abortWithError(ctx, err)
		return
	}

	project := &models.Project{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := api.projects.CreateProject(ctx.Request.Context(), project); err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, project)
}

func (api *ProjectAPI) listProjects(ctx *gin.Context) {
	page := pageRequest(ctx, api.cfg.Pagination.MaxPerPage)

	projects, total, err := api.projects.ListProjects(ctx.Request.Context(), page)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, models.NewPage(projects, total, page))
}

func (api *ProjectAPI) getProject(ctx *gin.Context) {
	project, ok := api.loadProject(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, project)
}

func (api *ProjectAPI) updateProject(ctx *gin.Context) {
	project, ok := api.loadProject(ctx)
	if !ok {
		return
	}

	var req models.UpdateProjectRequest
	payload, err := api.bindObject(ctx, &req)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	if err := optionalNonEmpty("name", req.Name); err != nil {
		abortWithError(ctx, err)
		return
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if _, ok := payload["description"]; ok {
		project.Description = req.Description
	}

	if err := api.projects.UpdateProject(ctx.Request.Context(), project); err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, project)
}

func (api *ProjectAPI) deleteProject(ctx *gin.Context) {
	project, ok := api.loadProject(ctx)
	if !ok {
		return
	}

	if err := api.projects.DeleteProject(ctx.Request.Context(), project.ID); err != nil {
		abortWithError(ctx, err)
		return
	}

	api.log.Info().Int64("project_id", project.ID).Msg("project deleted")
	ctx.JSON(http.StatusOK, messageResponse{Message: "Project deleted successfully"})
}

func (api *ProjectAPI) createTask(ctx *gin.Context) {
	project, ok := api.loadProject(ctx)
	if !ok {
		return
	}

	var req models.CreateTaskRequest
	if _, err := api.bindObject(ctx, &req, "title"); err != nil {
		abortWithError(ctx, err)
		return
	}
	if err := optionalNonEmpty("title", &req.Title); err != nil {
		abortWithError(ctx, err)
		return
	}

	task := &models.Task{
		Title:       req.Title,
		Description: req.Description,
		ProjectID:   project.ID,
	}
	if err := api.projects.CreateTask(ctx.Request.Context(), task); err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, task)
}

func (api *ProjectAPI) listTasks(ctx *gin.Context) {
	project, ok := api.loadProject(ctx)
	if !ok {
		return
	}
	page := pageRequest(ctx, api.cfg.Pagination.MaxPerPage)

	tasks, total, err := api.projects.ListTasksByProject(ctx.Request.Context(), project.ID, page)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, models.NewPage(tasks, total, page))
}

func (api *ProjectAPI) loadProject(ctx *gin.Context) (*models.Project, bool) {
	id, err := ParseID(ctx.Param("id"))
	if err != nil {
		abortWithError(ctx, err)
		return nil, false
	}

	project, err := api.projects.GetProjectByID(ctx.Request.Context(), id)
	if err != nil {
		abortWithError(ctx, err)
		return nil, false
	}
	return project, true
}
