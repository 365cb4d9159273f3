package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"proja/internal/models"
)

type moveRequest struct {
	Status string `json:"status" binding:"required"`
}

type commentRequest struct {
	Author string `json:"author" binding:"max=120"`
	Text   string `json:"text"`
}

// handleBoard returns all status columns, optionally for one project.
func (s *Server) handleBoard(c *gin.Context) {
	cat := s.catalogFor(c)
	cols := s.board.Board(c.Query("project"))
	respondSuccess(c, http.StatusOK, gin.H{"columns": toColumnViews(cat, cols)})
}

// handleListTasks lists tasks of one column, or every task when no status is given.
func (s *Server) handleListTasks(c *gin.Context) {
	cat := s.catalogFor(c)
	raw := c.Query("status")
	if raw == "" {
		respondSuccess(c, http.StatusOK, gin.H{"tasks": toTaskViews(cat, filterProject(s.board.Tasks(), c.Query("project")))})
		return
	}

	status, err := models.ParseStatus(raw)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, msgInvalidStatus, err)
		return
	}
	tasks := s.board.TasksByStatus(status, c.Query("project"))
	respondSuccess(c, http.StatusOK, gin.H{"tasks": toTaskViews(cat, tasks)})
}

// handleGetTask returns the task detail shown in the task dialog.
func (s *Server) handleGetTask(c *gin.Context) {
	task, err := s.board.Task(c.Param("id"))
	if err != nil {
		s.respondBoardError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"task": toTaskView(s.catalogFor(c), task)})
}

// handleMoveTask moves a card into another column.
func (s *Server) handleMoveTask(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, msgInvalidPayload, err)
		return
	}
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, msgInvalidStatus, err)
		return
	}

	task, err := s.board.MoveTask(c.Param("id"), status)
	if err != nil {
		s.respondBoardError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"task": toTaskView(s.catalogFor(c), task)})
}

// handleAddComment appends a comment to a task.
func (s *Server) handleAddComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, msgInvalidPayload, err)
		return
	}

	task, err := s.board.AddComment(c.Param("id"), req.Author, req.Text)
	if err != nil {
		s.respondBoardError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"task": toTaskView(s.catalogFor(c), task)})
}

func filterProject(tasks []models.Task, projectID string) []models.Task {
	if projectID == "" {
		return tasks
	}
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out
}
