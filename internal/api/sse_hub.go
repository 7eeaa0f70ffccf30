package api

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"spikereview/internal"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	EventReconcile = "reconcile"
	EventReload    = "reload"
	EventHello     = "hello"
	EventPing      = "ping"

	pingInterval = 30 * time.Second
)

// SSEHub fans reconcile events out to every open review tab
type SSEHub struct {
	logger *internal.Logger

	clients   map[string]map[chan ReconcileEvent]bool
	clientsMu sync.RWMutex
	broadcast chan ReconcileEvent
	done      chan struct{}
	closeOnce sync.Once
}

// NewSSEHub creates a hub and starts its dispatch loop
func NewSSEHub(logger *internal.Logger) *SSEHub {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	hub := &SSEHub{
		logger:    logger,
		clients:   make(map[string]map[chan ReconcileEvent]bool),
		broadcast: make(chan ReconcileEvent, 100),
		done:      make(chan struct{}),
	}

	go hub.run()
	return hub
}

func (h *SSEHub) run() {
	for {
		select {
		case event := <-h.broadcast:
			h.dispatch(event)
		case <-h.done:
			return
		}
	}
}

func (h *SSEHub) dispatch(event ReconcileEvent) {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()

	for tab, clients := range h.clients {
		if tab == event.SourceTab {
			continue
		}
		for clientChan := range clients {
			select {
			case clientChan <- event:
			default:
				h.logger.Warn("[SSE] Client channel full for tab %s, skipping event", tab)
			}
		}
	}
}

// Subscribe registers a listener for a tab. The returned func unregisters it.
func (h *SSEHub) Subscribe(tab string) (<-chan ReconcileEvent, func()) {
	clientChan := make(chan ReconcileEvent, 10)

	h.clientsMu.Lock()
	if h.clients[tab] == nil {
		h.clients[tab] = make(map[chan ReconcileEvent]bool)
	}
	h.clients[tab][clientChan] = true
	h.logger.Debug("[SSE] Client registered for tab %s (total tabs: %d)", tab, len(h.clients))
	h.clientsMu.Unlock()

	var once sync.Once
	return clientChan, func() {
		once.Do(func() {
			h.clientsMu.Lock()
			defer h.clientsMu.Unlock()
			if clients, exists := h.clients[tab]; exists {
				delete(clients, clientChan)
				if len(clients) == 0 {
					delete(h.clients, tab)
				}
			}
			h.logger.Debug("[SSE] Client unregistered from tab %s (remaining tabs: %d)", tab, len(h.clients))
		})
	}
}

// Broadcast queues an event for every tab except its source
func (h *SSEHub) Broadcast(event ReconcileEvent) {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("[SSE] Broadcast channel full, dropping %s event", event.Type)
	}
}

// Close stops the dispatch loop
func (h *SSEHub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// HandleSSE streams events to one tab. A tab without an id gets one
// assigned in the initial hello event.
func (h *SSEHub) HandleSSE(c *gin.Context) {
	tab := c.Query("tab")
	if tab == "" {
		tab = uuid.NewString()
	} else if _, err := uuid.Parse(tab); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tab must be a UUID"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	events, unsubscribe := h.Subscribe(tab)
	defer unsubscribe()

	c.SSEvent(EventHello, gin.H{"tab": tab})
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case event := <-events:
			eventJSON, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("[SSE] Failed to marshal event: %v", err)
				return true
			}
			c.SSEvent(event.Type, string(eventJSON))
			return true

		case <-time.After(pingInterval):
			c.SSEvent(EventPing, gin.H{"timestamp": time.Now().Format(time.RFC3339)})
			return true

		case <-ctx.Done():
			return false
		case <-h.done:
			return false
		}
	})
}

// ClientCount returns the number of tabs with an open stream
func (h *SSEHub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}
