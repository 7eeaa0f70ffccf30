package ui

import (
	"net/http"

	"spikereview/domain/neuron"
	"spikereview/internal/errors"
	"spikereview/internal/grid"
	"spikereview/ui/templates/fragments"

	"github.com/gin-gonic/gin"
)

type toggleRequest struct {
	Filename  string `json:"filename" binding:"required"`
	ClusterID *int   `json:"cluster_id" binding:"required"`
	Tab       string `json:"tab"`
}

type toggleResponse struct {
	Cards    []grid.CardState `json:"cards"`
	Excluded [][2]interface{} `json:"excluded"`
	// Reload asks the page to fetch the rebuilt grid
	Reload bool `json:"reload,omitempty"`
}

func (s *Server) handleIndex(c *gin.Context) {
	view := newGridView(s.grid.Snapshot(), s.guide)
	s.renderTemplate(c, http.StatusOK, fragments.IndexPage, view)
}

// handleGrid returns the grid fragment; X-Grid-Phase tells the page whether
// to keep polling
func (s *Server) handleGrid(c *gin.Context) {
	snap := s.grid.Snapshot()
	c.Header("X-Grid-Phase", string(snap.Phase))
	s.renderTemplate(c, http.StatusOK, fragments.GridView, newGridView(snap, s.guide))
}

func (s *Server) handleToggle(c *gin.Context) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filename and cluster_id are required"})
		return
	}
	key := neuron.NewUnitKey(req.Filename, *req.ClusterID)

	result, err := s.grid.Toggle(c.Request.Context(), key)
	if err != nil {
		s.logger.Warn("[UI] Toggle %s failed: %v", key, err)
		c.JSON(errors.StatusFor(err), gin.H{"error": err.Error(), "code": errors.GetCode(err)})
		return
	}

	resp := toggleResponse{Cards: result.Cards, Excluded: result.Excluded.Tuples()}
	if s.grid.Strategy() == grid.StrategyReload {
		resp.Reload = true
		s.broadcaster.Reloaded(req.Tab)
	} else {
		s.broadcaster.Toggled(req.Tab, result)
	}
	c.JSON(http.StatusOK, resp)
}

// handleReload re-runs the load cycle and returns the resulting fragment
func (s *Server) handleReload(c *gin.Context) {
	status := http.StatusOK
	if err := s.grid.Load(c.Request.Context()); err != nil {
		status = errors.StatusFor(err)
	} else {
		s.broadcaster.Reloaded(c.Query("tab"))
	}

	snap := s.grid.Snapshot()
	c.Header("X-Grid-Phase", string(snap.Phase))
	s.renderTemplate(c, status, fragments.GridView, newGridView(snap, s.guide))
}

func (s *Server) handleHealth(c *gin.Context) {
	snap := s.grid.Snapshot()
	body := gin.H{
		"status": "ok",
		"phase":  snap.Phase,
		"cards":  len(snap.Cards),
	}
	if snap.Err != nil {
		body["last_error"] = snap.Err.Error()
	}
	if !snap.LoadedAt.IsZero() {
		body["loaded_at"] = snap.LoadedAt
		body["render"] = snap.Render
	}
	c.JSON(http.StatusOK, body)
}
