package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// mountStatic serves the compiled board UI and answers unknown API paths.
func (s *Server) mountStatic() {
	notFound := func(c *gin.Context) {
		s.respondError(c, http.StatusNotFound, msgEndpointNotFound, nil)
	}

	if s.staticDir == "" {
		s.logger.Info("static directory not configured; API only mode")
		s.engine.NoRoute(notFound)
		return
	}

	info, err := os.Stat(s.staticDir)
	if err != nil || !info.IsDir() {
		s.logger.Warn("static directory missing", zap.String("path", s.staticDir), zap.Error(err))
		s.engine.NoRoute(notFound)
		return
	}

	indexPath := filepath.Join(s.staticDir, "index.html")
	if _, err := os.Stat(indexPath); err != nil {
		s.logger.Warn("index.html not found", zap.String("path", indexPath), zap.Error(err))
		s.engine.NoRoute(notFound)
	} else {
		s.engine.GET("/", func(c *gin.Context) {
			c.File(indexPath)
		})
		// Client-side routes such as /login and /dashboard fall through to the SPA.
		s.engine.NoRoute(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/api/") {
				notFound(c)
				return
			}
			c.File(indexPath)
		})
	}

	assetsDir := filepath.Join(s.staticDir, "assets")
	if _, err := os.Stat(assetsDir); err == nil {
		s.engine.StaticFS("/assets", gin.Dir(assetsDir, false))
	}

	favicon := filepath.Join(s.staticDir, "favicon.ico")
	if _, err := os.Stat(favicon); err == nil {
		s.engine.StaticFile("/favicon.ico", favicon)
	}
}
