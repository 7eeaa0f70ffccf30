package ui

import (
	"io/fs"
	"net/http"

	"spikereview/internal"

	"github.com/gin-gonic/gin"
)

// setupMiddleware configures Gin middleware and static assets
func (s *Server) setupMiddleware() error {
	s.router.Use(gin.Recovery())
	if s.logger.GetLevel() >= internal.LogLevelDebug {
		s.router.Use(gin.Logger())
	}

	staticFS, err := fs.Sub(s.files, "ui/static")
	if err != nil {
		return err
	}
	s.logger.Debug("[Static] Serving static files from embedded FS at /static")
	s.router.StaticFS("/static", http.FS(staticFS))
	return nil
}
