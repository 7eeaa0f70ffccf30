package api

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"spikereview/domain/neuron"
	"spikereview/internal/grid"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan ReconcileEvent) ReconcileEvent {
	t.Helper()
	select {
	case event := <-ch:
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return ReconcileEvent{}
	}
}

func TestBroadcastSkipsSourceTab(t *testing.T) {
	hub := NewSSEHub(nil)
	defer hub.Close()

	source, unsubSource := hub.Subscribe("tab-a")
	defer unsubSource()
	other, unsubOther := hub.Subscribe("tab-b")
	defer unsubOther()
	assert.Equal(t, 2, hub.ClientCount())

	key := neuron.NewUnitKey("rec1.dat", 3)
	NewGridBroadcaster(hub).Toggled("tab-a", grid.ToggleResult{
		RequestID: "req-1",
		Key:       key,
		Excluded:  neuron.NewExclusionSet(key),
		Cards:     []grid.CardState{{ID: "rec1.dat_3", Excluded: true}},
	})

	event := receive(t, other)
	assert.Equal(t, EventReconcile, event.Type)
	assert.Equal(t, "req-1", event.RequestID)
	assert.Equal(t, []grid.CardState{{ID: "rec1.dat_3", Excluded: true}}, event.Cards)
	require.Len(t, event.Excluded, 1)

	select {
	case event := <-source:
		t.Fatalf("source tab received its own event: %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribeRemovesTab(t *testing.T) {
	hub := NewSSEHub(nil)
	defer hub.Close()

	_, unsubscribe := hub.Subscribe("tab-a")
	assert.Equal(t, 1, hub.ClientCount())
	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHandleSSEStreamsEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewSSEHub(nil)
	defer hub.Close()

	router := gin.New()
	router.GET("/events", hub.HandleSSE)
	server := httptest.NewServer(router)
	defer server.Close()

	tab := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/events?tab="+tab, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream"), resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	NewGridBroadcaster(hub).Reloaded("another-tab")

	reader := bufio.NewReader(resp.Body)
	var events []string
	for len(events) < 2 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "event:") {
			events = append(events, strings.TrimSpace(strings.TrimPrefix(line, "event:")))
		}
	}
	assert.Equal(t, []string{EventHello, EventReload}, events)
}

func TestHandleSSERejectsBadTab(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewSSEHub(nil)
	defer hub.Close()

	router := gin.New()
	router.GET("/events", hub.HandleSSE)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events?tab=not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
