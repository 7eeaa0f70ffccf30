package container

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"spikereview/internal/config"
	"spikereview/internal/errors"
	"spikereview/internal/grid"
	"spikereview/internal/plotdata"
	"spikereview/internal/testkit"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func testConfig(upstream string) *config.Config {
	return &config.Config{
		Upstream: config.UpstreamConfig{URL: upstream},
		Server:   config.ServerConfig{Port: "0", GinMode: gin.TestMode},
		Review: config.ReviewConfig{
			WaveformMode:   plotdata.ModeQuantileFan,
			AxisDetail:     true,
			SampleCount:    64,
			Strategy:       grid.StrategyReconcile,
			ShowFiringRate: true,
		},
		Render:   config.RenderConfig{Workers: 2, Width: 320, Height: 180},
		LogLevel: "ERROR",
	}
}

func TestNewWiresAndLoads(t *testing.T) {
	gin.SetMode(gin.TestMode)
	records := testkit.SyntheticRecords(testkit.DefaultSyntheticConfig())
	_, upstream := testkit.StartFixture(records)
	defer upstream.Close()

	c, err := New(testConfig(upstream.URL), os.DirFS("../.."), nil)
	require.NoError(t, err)
	defer c.Shutdown(context.Background())

	require.NoError(t, <-c.LoadInBackground(context.Background()))
	assert.Equal(t, grid.PhaseReady, c.Grid.Phase())

	rec := httptest.NewRecorder()
	c.Server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", gjson.Get(rec.Body.String(), "phase").String())
	assert.Equal(t, int64(len(records)), gjson.Get(rec.Body.String(), "cards").Int())
	assert.Equal(t, int64(len(records)), gjson.Get(rec.Body.String(), "render.cards").Int())
}

func TestNewFailsOnMissingGuide(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:5000")
	cfg.Review.GuidePath = "does-not-exist.md"

	c, err := New(cfg, os.DirFS("../.."), nil)
	require.Error(t, err)
	assert.Nil(t, c)
	assert.True(t, errors.Is(err, errors.CodeConfigInvalid), err.Error())
}

func TestNewRejectsNilConfig(t *testing.T) {
	_, err := New(nil, os.DirFS("../.."), nil)
	assert.Error(t, err)
}

func TestLoadInBackgroundReportsFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_, upstream := testkit.StartFixture(testkit.SyntheticRecords(testkit.DefaultSyntheticConfig()))
	url := upstream.URL
	upstream.Close()

	c, err := New(testConfig(url), os.DirFS("../.."), nil)
	require.NoError(t, err)
	defer c.Shutdown(context.Background())

	assert.Error(t, <-c.LoadInBackground(context.Background()))
	assert.Equal(t, grid.PhaseLoading, c.Grid.Phase())
	assert.Error(t, c.Grid.LastError())
}
