package api

import (
	"time"

	"spikereview/internal/grid"
)

// ReconcileEvent carries the card states produced by one toggle, or a
// request to reload when the grid was rebuilt
type ReconcileEvent struct {
	Type      string           `json:"type"`
	RequestID string           `json:"request_id,omitempty"`
	SourceTab string           `json:"source_tab,omitempty"`
	Cards     []grid.CardState `json:"cards,omitempty"`
	Excluded  [][2]interface{} `json:"excluded"`
	Timestamp time.Time        `json:"timestamp"`
}

// GridBroadcaster publishes grid changes through the hub
type GridBroadcaster struct {
	hub *SSEHub
}

// NewGridBroadcaster creates a broadcaster over hub
func NewGridBroadcaster(hub *SSEHub) *GridBroadcaster {
	return &GridBroadcaster{hub: hub}
}

// Toggled tells every other tab about a toggle result
func (b *GridBroadcaster) Toggled(sourceTab string, result grid.ToggleResult) {
	b.hub.Broadcast(ReconcileEvent{
		Type:      EventReconcile,
		RequestID: result.RequestID,
		SourceTab: sourceTab,
		Cards:     result.Cards,
		Excluded:  result.Excluded.Tuples(),
		Timestamp: time.Now(),
	})
}

// Reloaded tells every other tab to fetch the grid again
func (b *GridBroadcaster) Reloaded(sourceTab string) {
	b.hub.Broadcast(ReconcileEvent{
		Type:      EventReload,
		SourceTab: sourceTab,
		Excluded:  [][2]interface{}{},
		Timestamp: time.Now(),
	})
}
