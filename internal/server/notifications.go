package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"proja/internal/models"
)

// handleNotifications returns the recent toasts, oldest first.
func (s *Server) handleNotifications(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		s.respondError(c, http.StatusBadRequest, msgInvalidPayload, nil)
		return
	}
	notes := []models.Notification{}
	if s.feed != nil {
		notes = s.feed.Recent(limit)
	}
	respondSuccess(c, http.StatusOK, gin.H{"notifications": notes})
}

// handleActivity returns journaled notifications from the catalog.
func (s *Server) handleActivity(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		s.respondError(c, http.StatusBadRequest, msgInvalidPayload, nil)
		return
	}
	if s.activity == nil {
		respondSuccess(c, http.StatusOK, gin.H{"notifications": []models.Notification{}})
		return
	}
	notes, err := s.activity.ListNotifications(c.Request.Context(), limit)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, msgInternal, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"notifications": notes})
}
