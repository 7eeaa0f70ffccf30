package api

import (
	"net/url"
	"strings"
	"time"

	"spikereview/internal/errors"
)

const (
	NeuronsPath = "/api/neurons"
	TogglePath  = "/api/toggle"
)

// ClientConfig holds settings for talking to the spike-sorting server
type ClientConfig struct {
	// BaseURL is the server root, e.g. http://127.0.0.1:5000
	BaseURL string
	// Timeout of zero means requests wait as long as the caller's context allows
	Timeout time.Duration
	Headers map[string]string
}

// DefaultClientConfig returns the local development server settings
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL: "http://127.0.0.1:5000",
	}
}

// Validate checks the base URL is an absolute http(s) URL
func (c ClientConfig) Validate() error {
	if c.BaseURL == "" {
		return errors.ConfigInvalid("upstream base URL is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.ConfigInvalid("upstream base URL must be http or https, got " + c.BaseURL)
	}
	if c.Timeout < 0 {
		return errors.ConfigInvalid("upstream timeout must not be negative")
	}
	return nil
}

func (c ClientConfig) endpoint(path string) string {
	return strings.TrimRight(c.BaseURL, "/") + path
}
