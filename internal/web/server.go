package web

import (
	"context"
	"embed"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Joseda-hg/tasktracker/internal/autoclose"
	"github.com/Joseda-hg/tasktracker/internal/model"
	"github.com/Joseda-hg/tasktracker/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var indexTemplate = template.Must(template.New("index.tmpl").
	Funcs(template.FuncMap{"formatDate": model.FormatDate}).
	ParseFS(templateFS, "templates/index.tmpl"))

const requestIDHeader = "X-Request-ID"

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	projects *service.ProjectService
	tasks    *service.TaskService
	job      *autoclose.Job
	health   Pinger
	logger   *slog.Logger
	now      func() time.Time
	router   *gin.Engine
}

func NewServer(projects *service.ProjectService, tasks *service.TaskService, job *autoclose.Job, health Pinger, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	router := gin.New()
	s := &Server{
		projects: projects,
		tasks:    tasks,
		job:      job,
		health:   health,
		logger:   logger,
		now:      time.Now,
		router:   router,
	}

	router.Use(requestID(), s.accessLog(), gin.CustomRecovery(s.recover))
	router.SetHTMLTemplate(indexTemplate)

	router.GET("/", s.handleIndex)

	api := router.Group("/api")
	{
		api.GET("/health", s.handleHealth)
		api.POST("/autoclose", s.handleAutoClose)

		api.GET("/projects", s.handleListProjects)
		api.POST("/projects", s.handleCreateProject)
		api.GET("/projects/:project_id", s.handleGetProject)
		api.PUT("/projects/:project_id", s.handleUpdateProject)
		api.DELETE("/projects/:project_id", s.handleDeleteProject)

		api.GET("/projects/:project_id/tasks", s.handleListTasks)
		api.POST("/projects/:project_id/tasks", s.handleCreateTask)
		api.GET("/projects/:project_id/tasks/:task_id", s.handleGetTask)
		api.PUT("/projects/:project_id/tasks/:task_id", s.handleUpdateTask)
		api.PATCH("/projects/:project_id/tasks/:task_id/status", s.handleChangeStatus)
		api.DELETE("/projects/:project_id/tasks/:task_id", s.handleDeleteTask)
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", c.GetString("request_id"),
		)
	}
}

func (s *Server) recover(c *gin.Context, recovered any) {
	s.logger.Error("panic in handler", "panic", recovered, "request_id", c.GetString("request_id"))
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
