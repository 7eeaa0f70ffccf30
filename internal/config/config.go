package config

import (
	"os"
	"strconv"
	"time"

	"spikereview/adapters/api"
	"spikereview/domain/neuron"
	"spikereview/internal/errors"
	"spikereview/internal/grid"
	"spikereview/internal/plotdata"
)

// Config represents the complete application configuration
type Config struct {
	Upstream UpstreamConfig
	Server   ServerConfig
	Review   ReviewConfig
	Render   RenderConfig
	LogLevel string
}

// UpstreamConfig holds the spike-sorting server connection settings
type UpstreamConfig struct {
	URL     string
	Timeout time.Duration
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// ReviewConfig holds what the reviewer sees and how toggles are handled
type ReviewConfig struct {
	WaveformMode   plotdata.WaveformMode
	AxisDetail     bool
	SampleCount    int
	QuantileCount  int
	Strategy       grid.Strategy
	ShowFiringRate bool
	GuidePath      string
}

// RenderConfig holds chart rendering settings
type RenderConfig struct {
	Workers int
	Width   int
	Height  int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Upstream: UpstreamConfig{
			URL:     getEnvOrDefault("UPSTREAM_URL", api.DefaultClientConfig().BaseURL),
			Timeout: getEnvDurationOrDefault("UPSTREAM_TIMEOUT", 0),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		Render: RenderConfig{
			Workers: getEnvIntOrDefault("RENDER_WORKERS", grid.DefaultWorkers),
			Width:   getEnvIntOrDefault("CHART_WIDTH", 320),
			Height:  getEnvIntOrDefault("CHART_HEIGHT", 180),
		},
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	review, err := loadReviewConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load review configuration")
	}
	config.Review = *review

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadReviewConfig() (*ReviewConfig, error) {
	mode, err := plotdata.ParseWaveformMode(getEnvOrDefault("WAVEFORM_MODE", string(plotdata.ModeQuantileFan)))
	if err != nil {
		return nil, err
	}
	strategy, err := grid.ParseStrategy(getEnvOrDefault("TOGGLE_STRATEGY", string(grid.StrategyReconcile)))
	if err != nil {
		return nil, err
	}

	return &ReviewConfig{
		WaveformMode:   mode,
		AxisDetail:     getEnvBoolOrDefault("WAVEFORM_AXIS_DETAIL", true),
		SampleCount:    getEnvIntOrDefault("WAVEFORM_SAMPLES", neuron.DefaultSampleCount),
		QuantileCount:  getEnvIntOrDefault("WAVEFORM_QUANTILES", 0),
		Strategy:       strategy,
		ShowFiringRate: getEnvBoolOrDefault("SHOW_FIRING_RATE", true),
		GuidePath:      os.Getenv("REVIEW_GUIDE"),
	}, nil
}

func validateConfig(config *Config) error {
	if err := config.ClientConfig().Validate(); err != nil {
		return err
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if config.Review.SampleCount <= 0 {
		return errors.ConfigInvalid("WAVEFORM_SAMPLES must be positive")
	}
	if config.Review.QuantileCount < 0 {
		return errors.ConfigInvalid("WAVEFORM_QUANTILES must not be negative")
	}
	if config.Render.Workers <= 0 {
		return errors.ConfigInvalid("RENDER_WORKERS must be positive")
	}
	if config.Render.Width <= 0 || config.Render.Height <= 0 {
		return errors.ConfigInvalid("CHART_WIDTH and CHART_HEIGHT must be positive")
	}
	return nil
}

// ClientConfig returns the upstream client settings
func (c *Config) ClientConfig() api.ClientConfig {
	return api.ClientConfig{
		BaseURL: c.Upstream.URL,
		Timeout: c.Upstream.Timeout,
	}
}

// DeriverOptions returns the plot derivation settings
func (c *Config) DeriverOptions() plotdata.Options {
	return plotdata.Options{
		WaveformMode: c.Review.WaveformMode,
		AxisDetail:   c.Review.AxisDetail,
		Shape: neuron.Shape{
			SampleCount:   c.Review.SampleCount,
			QuantileCount: c.Review.QuantileCount,
		},
	}
}

// GridOptions returns the review grid settings
func (c *Config) GridOptions() grid.Options {
	return grid.Options{
		Strategy:       c.Review.Strategy,
		Workers:        c.Render.Workers,
		ShowFiringRate: c.Review.ShowFiringRate,
	}
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDurationOrDefault accepts Go durations ("30s") or bare seconds
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
