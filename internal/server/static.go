package server

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// mountStatic serves the dashboard build from the configured directory. API
// paths that match no route always get a JSON 404.
func (s *Server) mountStatic() {
	indexPath := ""
	switch info, err := os.Stat(s.staticDir); {
	case s.staticDir == "":
		s.logger.Debug("static directory not configured; API only mode")
	case err != nil || !info.IsDir():
		s.logger.Warn("static directory missing", slog.String("path", s.staticDir))
	case !exists(filepath.Join(s.staticDir, "index.html")):
		s.logger.Warn("index.html not found", slog.String("path", s.staticDir))
	default:
		indexPath = filepath.Join(s.staticDir, "index.html")
	}

	s.engine.NoRoute(func(c *gin.Context) {
		if indexPath == "" || strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
			return
		}
		c.File(indexPath)
	})
	if indexPath == "" {
		return
	}

	s.engine.GET("/", func(c *gin.Context) {
		c.File(indexPath)
	})
	if assetsDir := filepath.Join(s.staticDir, "assets"); exists(assetsDir) {
		s.engine.StaticFS("/assets", gin.Dir(assetsDir, false))
	}
	if favicon := filepath.Join(s.staticDir, "favicon.ico"); exists(favicon) {
		s.engine.StaticFile("/favicon.ico", favicon)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
