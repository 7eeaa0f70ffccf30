package ui

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"spikereview/internal"
	"spikereview/internal/api"
	"spikereview/internal/grid"

	"github.com/gin-gonic/gin"
)

// Server is the browser-facing review surface
type Server struct {
	router      *gin.Engine
	files       fs.FS
	templates   *template.Template
	grid        *grid.ReviewGrid
	hub         *api.SSEHub
	broadcaster *api.GridBroadcaster
	guide       template.HTML
	logger      *internal.Logger
}

// NewServer parses templates from files (which must contain ui/templates and
// ui/static) and registers every route
func NewServer(files fs.FS, reviewGrid *grid.ReviewGrid, hub *api.SSEHub, guide template.HTML, logger *internal.Logger) (*Server, error) {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	templates, err := parseTemplates(files)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:      gin.New(),
		files:       files,
		templates:   templates,
		grid:        reviewGrid,
		hub:         hub,
		broadcaster: api.NewGridBroadcaster(hub),
		guide:       guide,
		logger:      logger,
	}
	if err := s.setupMiddleware(); err != nil {
		return nil, fmt.Errorf("failed to create static filesystem: %w", err)
	}
	s.setupRoutes()
	return s, nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/grid", s.handleGrid)
	s.router.POST("/cards/toggle", s.handleToggle)
	s.router.POST("/reload", s.handleReload)
	s.router.GET("/events", s.hub.HandleSSE)
	s.router.GET("/export.xlsx", s.handleExport)
	s.router.GET("/healthz", s.handleHealth)
}

// Handler exposes the router for tests and custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting review UI on http://%s", addr)
	return s.router.Run(addr)
}
