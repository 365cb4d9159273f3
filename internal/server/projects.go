package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// handleListProjects returns all available projects.
func (s *Server) handleListProjects(c *gin.Context) {
	respondSuccess(c, http.StatusOK, gin.H{"projects": s.board.Projects()})
}

// handleActiveProject resolves the project switcher selection, defaulting to the first project.
func (s *Server) handleActiveProject(c *gin.Context) {
	project, ok := s.board.ActiveProject(c.Query("id"))
	if !ok {
		s.respondError(c, http.StatusNotFound, msgProjectNotFound, nil)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"project": project})
}
