package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleLogin is the demo gate in front of the board. It accepts any
// non-empty email and password pair and checks nothing else.
func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, msgInvalidPayload, err)
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		s.respondError(c, http.StatusBadRequest, msgLoginRequired, nil)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"redirect": "/dashboard"})
}
