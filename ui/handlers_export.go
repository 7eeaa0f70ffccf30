package ui

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"spikereview/adapters/excel"
	"spikereview/internal/errors"
	"spikereview/internal/grid"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// handleExport downloads the current review as a workbook
func (s *Server) handleExport(c *gin.Context) {
	snap := s.grid.Snapshot()
	if snap.Phase != grid.PhaseReady {
		err := errors.NotReady("grid is still loading")
		c.JSON(errors.StatusFor(err), gin.H{"error": err.Error()})
		return
	}

	rows := make([]excel.UnitRow, len(snap.Cards))
	for i, card := range snap.Cards {
		rows[i] = excel.UnitRow{Key: card.Key, FiringRate: card.FiringRate, Excluded: card.Excluded}
	}

	var buf bytes.Buffer
	if err := excel.WriteWorkbook(&buf, rows, snap.Excluded); err != nil {
		s.logger.Error("[UI] Export failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	filename := fmt.Sprintf("review_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
