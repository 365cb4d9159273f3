package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"go.uber.org/zap"

	"proja/internal/board"
	"proja/internal/locale"
	"proja/internal/models"
)

const healthTimeout = 2 * time.Second

// Board is the task board the API exposes.
type Board interface {
	MoveTask(taskID string, status models.Status) (models.Task, error)
	AddComment(taskID, author, text string) (models.Task, error)
	TasksByStatus(status models.Status, projectID string) []models.Task
	Board(projectID string) []board.Column
	Task(id string) (models.Task, error)
	Tasks() []models.Task
	Projects() []models.Project
	ActiveProject(selectedID string) (models.Project, bool)
}

// Feed lists recent notifications for toasts.
type Feed interface {
	Recent(limit int) []models.Notification
}

// ActivityLister reads the notification journal.
type ActivityLister interface {
	ListNotifications(ctx context.Context, limit int) ([]models.Notification, error)
}

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators of the HTTP server. Activity and Catalog may be nil.
type Deps struct {
	Board     Board
	Feed      Feed
	Activity  ActivityLister
	Catalog   Pinger
	Bundle    *i18n.Bundle
	Logger    *zap.Logger
	Lang      string
	StaticDir string
}

// Server provides HTTP handlers for the task board.
type Server struct {
	engine    *gin.Engine
	board     Board
	feed      Feed
	activity  ActivityLister
	catalog   Pinger
	bundle    *i18n.Bundle
	logger    *zap.Logger
	staticDir string
}

// New constructs the HTTP server with routes and middleware configured.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.L()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(zapMiddleware(logger))
	router.Use(languageMiddleware(deps.Lang))

	srv := &Server{
		engine:    router,
		board:     deps.Board,
		feed:      deps.Feed,
		activity:  deps.Activity,
		catalog:   deps.Catalog,
		bundle:    deps.Bundle,
		logger:    logger,
		staticDir: deps.StaticDir,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API and static handlers together.
func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)
		api.POST("/login", s.handleLogin)

		projects := api.Group("/projects")
		{
			projects.GET("", s.handleListProjects)
			projects.GET("/active", s.handleActiveProject)
		}

		api.GET("/board", s.handleBoard)

		tasks := api.Group("/tasks")
		{
			tasks.GET("", s.handleListTasks)
			tasks.GET("/:id", s.handleGetTask)
			tasks.PUT("/:id/status", s.handleMoveTask)
			tasks.POST("/:id/comments", s.handleAddComment)
		}

		api.GET("/notifications", s.handleNotifications)
		api.GET("/activity", s.handleActivity)
	}

	s.mountStatic()
}

// handleHealth reports readiness, including the catalog when one is configured.
func (s *Server) handleHealth(c *gin.Context) {
	catalog := "disabled"
	if s.catalog != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()
		if err := s.catalog.Ping(ctx); err != nil {
			s.logger.Warn("catalog ping failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "catalog": "down"})
			return
		}
		catalog = "ok"
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "catalog": catalog})
}

// catalogFor returns the message catalog for the request language.
func (s *Server) catalogFor(c *gin.Context) *locale.Catalog {
	return locale.New(s.bundle, getLang(c))
}

// parseLimit reads an optional positive "limit" query parameter.
func parseLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// respondError logs unexpected failures and returns a localized JSON error.
func (s *Server) respondError(c *gin.Context, status int, msgKey string, err error) {
	if err != nil && status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, newAPIError(status, s.catalogFor(c).Message(msgKey, nil)))
}

// respondBoardError maps store errors onto HTTP responses.
func (s *Server) respondBoardError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, board.ErrTaskNotFound):
		s.respondError(c, http.StatusNotFound, msgTaskNotFound, err)
	case errors.Is(err, board.ErrEmptyComment):
		s.respondError(c, http.StatusBadRequest, msgEmptyComment, err)
	default:
		s.respondError(c, http.StatusInternalServerError, msgInternal, err)
	}
}

// respondSuccess wraps a payload in a JSON envelope for consistency.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}
