package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Joseda-hg/tasktracker/internal/model"
	"github.com/Joseda-hg/tasktracker/internal/service"
	"github.com/gin-gonic/gin"
)

type projectResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type taskResponse struct {
	ID          int64      `json:"id"`
	ProjectID   int64      `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Deadline    *string    `json:"deadline"`
	CreatedAt   time.Time  `json:"created_at"`
	ClosedAt    *time.Time `json:"closed_at"`
}

type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Deadline    string `json:"deadline"`
}

type updateTaskRequest struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	Status        *string `json:"status"`
	Deadline      *string `json:"deadline"`
	ClearDeadline bool    `json:"clear_deadline"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func toProjectResponse(project model.Project) projectResponse {
	return projectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		CreatedAt:   project.CreatedAt,
	}
}

func toTaskResponse(task model.Task) taskResponse {
	resp := taskResponse{
		ID:          task.ID,
		ProjectID:   task.ProjectID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		CreatedAt:   task.CreatedAt,
		ClosedAt:    task.ClosedAt,
	}
	if task.Deadline != nil {
		deadline := model.FormatDate(task.Deadline)
		resp.Deadline = &deadline
	}
	return resp
}

func (s *Server) handleIndex(c *gin.Context) {
	listing, err := s.projects.ListProjectsWithTasks(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.HTML(http.StatusOK, "index.tmpl", gin.H{
		"Projects": listing,
		"Today":    s.now(),
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if s.health != nil {
		if err := s.health.Ping(ctx); err != nil {
			s.logger.Warn("health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "ok"})
}

func (s *Server) handleAutoClose(c *gin.Context) {
	result, err := s.job.Run(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleListProjects(c *gin.Context) {
	projects, err := s.projects.ListProjects(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}

	resp := make([]projectResponse, 0, len(projects))
	for _, project := range projects {
		resp = append(resp, toProjectResponse(project))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleCreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	project, err := s.projects.CreateProject(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProjectResponse(project))
}

func (s *Server) handleGetProject(c *gin.Context) {
	id, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	project, err := s.projects.GetProject(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProjectResponse(project))
}

func (s *Server) handleUpdateProject(c *gin.Context) {
	id, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	ctx := c.Request.Context()
	current, err := s.projects.GetProject(ctx, id)
	if err != nil {
		s.writeError(c, err)
		return
	}

	name, description := current.Name, current.Description
	if req.Name != nil {
		name = *req.Name
	}
	if req.Description != nil {
		description = *req.Description
	}

	project, err := s.projects.EditProject(ctx, id, name, description)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProjectResponse(project))
}

func (s *Server) handleDeleteProject(c *gin.Context) {
	id, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	if err := s.projects.DeleteProject(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleListTasks(c *gin.Context) {
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if _, err := s.projects.GetProject(ctx, projectID); err != nil {
		s.writeError(c, err)
		return
	}

	tasks, err := s.tasks.ListTasks(ctx, projectID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	resp := make([]taskResponse, 0, len(tasks))
	for _, task := range tasks {
		resp = append(resp, toTaskResponse(task))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleCreateTask(c *gin.Context) {
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	ctx := c.Request.Context()
	if _, err := s.projects.GetProject(ctx, projectID); err != nil {
		s.writeError(c, err)
		return
	}

	task, err := s.tasks.CreateTask(ctx, service.TaskInput{
		ProjectID:   projectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Deadline:    req.Deadline,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTaskResponse(task))
}

func (s *Server) handleGetTask(c *gin.Context) {
	task, ok := s.loadProjectTask(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(task))
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	current, ok := s.loadProjectTask(c)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	update := service.TaskUpdate{
		Title:         current.Title,
		Description:   current.Description,
		Status:        string(current.Status),
		ClearDeadline: req.ClearDeadline,
	}
	if req.Title != nil {
		update.Title = *req.Title
	}
	if req.Description != nil {
		update.Description = *req.Description
	}
	if req.Status != nil {
		update.Status = *req.Status
	}
	if req.Deadline != nil {
		update.Deadline = *req.Deadline
	}

	task, err := s.tasks.UpdateTask(c.Request.Context(), current.ID, update)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(task))
}

func (s *Server) handleChangeStatus(c *gin.Context) {
	current, ok := s.loadProjectTask(c)
	if !ok {
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	task, err := s.tasks.ChangeStatus(c.Request.Context(), current.ID, req.Status)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(task))
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	current, ok := s.loadProjectTask(c)
	if !ok {
		return
	}

	if err := s.tasks.DeleteTask(c.Request.Context(), current.ID); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// loadProjectTask resolves both path ids and writes the error response when the task
// is missing or owned by another project.
func (s *Server) loadProjectTask(c *gin.Context) (model.Task, bool) {
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return model.Task{}, false
	}
	taskID, ok := pathID(c, "task_id")
	if !ok {
		return model.Task{}, false
	}

	ctx := c.Request.Context()
	if _, err := s.projects.GetProject(ctx, projectID); err != nil {
		s.writeError(c, err)
		return model.Task{}, false
	}

	task, err := s.tasks.GetProjectTask(ctx, projectID, taskID)
	if err != nil {
		s.writeError(c, err)
		return model.Task{}, false
	}
	return task, true
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// writeError maps the domain error kinds to status codes. Anything else is logged and
// hidden behind a generic 500.
func (s *Server) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err, "request_id", c.GetString("request_id"))
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, model.ErrLimit):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
