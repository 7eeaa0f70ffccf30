package container

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"

	"spikereview/adapters/api"
	"spikereview/internal"
	sse "spikereview/internal/api"
	"spikereview/internal/chart"
	"spikereview/internal/config"
	"spikereview/internal/grid"
	"spikereview/internal/guide"
	"spikereview/internal/plotdata"
	"spikereview/ui"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Upstream and rendering
	Client   *api.Client
	Deriver  *plotdata.Deriver
	Renderer *chart.SVGRenderer

	// Review state and browser surface
	Grid   *grid.ReviewGrid
	SSEHub *sse.SSEHub
	Guide  template.HTML
	Server *ui.Server
}

// New wires every component from cfg. files must contain ui/templates and
// ui/static.
func New(cfg *config.Config, files fs.FS, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	if err := c.initReview(); err != nil {
		return nil, fmt.Errorf("failed to initialize review components: %w", err)
	}
	if err := c.initUI(files); err != nil {
		if c.SSEHub != nil {
			c.SSEHub.Close()
		}
		return nil, fmt.Errorf("failed to initialize UI: %w", err)
	}

	logger.Info("Container initialized: upstream=%s strategy=%s waveform=%s",
		cfg.Upstream.URL, cfg.Review.Strategy, cfg.Review.WaveformMode)
	return c, nil
}

// initReview creates the upstream client and the grid it feeds
func (c *Container) initReview() error {
	client, err := api.NewClient(c.Config.ClientConfig(), c.Logger)
	if err != nil {
		return err
	}
	c.Client = client
	c.Deriver = plotdata.NewDeriver(c.Config.DeriverOptions())
	c.Renderer = chart.NewSVGRenderer(c.Config.Render.Width, c.Config.Render.Height)
	c.Grid = grid.New(c.Client, c.Deriver, c.Renderer, c.Config.GridOptions(), c.Logger)
	return nil
}

// initUI loads the guide and builds the web server
func (c *Container) initUI(files fs.FS) error {
	guideHTML, err := guide.Load(c.Config.Review.GuidePath)
	if err != nil {
		return err
	}
	c.Guide = guideHTML
	c.SSEHub = sse.NewSSEHub(c.Logger)

	server, err := ui.NewServer(files, c.Grid, c.SSEHub, c.Guide, c.Logger)
	if err != nil {
		return err
	}
	c.Server = server
	return nil
}

// LoadInBackground runs the first load cycle without blocking startup. The
// grid reports Loading until it succeeds.
func (c *Container) LoadInBackground(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		err := c.Grid.Load(ctx)
		if err != nil {
			c.Logger.Warn("Initial load failed, waiting for a reload: %v", err)
		}
		done <- err
		close(done)
	}()
	return done
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.SSEHub != nil {
		c.SSEHub.Close()
	}
	c.Logger.Sync()
	return ctx.Err()
}
