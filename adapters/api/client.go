package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"spikereview/domain/neuron"
	"spikereview/internal"
	"spikereview/internal/errors"

	"github.com/tidwall/gjson"
)

// Client talks to the spike-sorting server: it fetches the statistics
// snapshot and toggles exclusion. It never retries.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	logger     *internal.Logger
}

// NewClient creates a client for the configured server
func NewClient(config ClientConfig, logger *internal.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger,
	}, nil
}

// ListNeurons fetches every statistics record in the order the server sends them
func (c *Client) ListNeurons(ctx context.Context) ([]neuron.StatisticsRecord, error) {
	startTime := time.Now()

	req, err := c.buildRequest(ctx, http.MethodGet, NeuronsPath, nil)
	if err != nil {
		return nil, err
	}
	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var records []neuron.StatisticsRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, errors.ExternalServiceError("neurons", fmt.Errorf("malformed payload: %w", err))
	}

	c.logger.Info("[API] Loaded %d neuron records in %v", len(records), time.Since(startTime))
	return records, nil
}

type toggleRequest struct {
	Filename  string `json:"filename"`
	ClusterID int    `json:"cluster_id"`
}

// Toggle flips the unit's exclusion upstream and returns the full excluded set
func (c *Client) Toggle(ctx context.Context, key neuron.UnitKey) (neuron.ExclusionSet, error) {
	payload, err := json.Marshal(toggleRequest{Filename: key.Filename, ClusterID: key.ClusterID})
	if err != nil {
		return neuron.ExclusionSet{}, errors.Wrap(err, "encode toggle request")
	}

	req, err := c.buildRequest(ctx, http.MethodPost, TogglePath, bytes.NewReader(payload))
	if err != nil {
		return neuron.ExclusionSet{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return neuron.ExclusionSet{}, err
	}

	set, err := ParseExclusionSet(body)
	if err != nil {
		return neuron.ExclusionSet{}, err
	}
	c.logger.Debug("[API] Toggled %s, server reports %d excluded units", key, set.Len())
	return set, nil
}

// ParseExclusionSet reads {"excluded": [[filename, clusterId], ...]}
func ParseExclusionSet(body []byte) (neuron.ExclusionSet, error) {
	if !gjson.ValidBytes(body) {
		return neuron.ExclusionSet{}, errors.ExternalServiceError("toggle", fmt.Errorf("response is not valid JSON"))
	}
	excluded := gjson.GetBytes(body, "excluded")
	if !excluded.Exists() || !excluded.IsArray() {
		return neuron.ExclusionSet{}, errors.ExternalServiceError("toggle", fmt.Errorf("response has no excluded array"))
	}

	tuples := excluded.Array()
	keys := make([]neuron.UnitKey, 0, len(tuples))
	for i, tuple := range tuples {
		parts := tuple.Array()
		if !tuple.IsArray() || len(parts) != 2 || parts[0].Type != gjson.String || parts[1].Type != gjson.Number {
			return neuron.ExclusionSet{}, errors.ExternalServiceError("toggle",
				fmt.Errorf("excluded entry %d is not a [filename, clusterId] pair: %s", i, tuple.Raw))
		}
		keys = append(keys, neuron.NewUnitKey(parts[0].String(), int(parts[1].Int())))
	}
	return neuron.NewExclusionSet(keys...), nil
}

func (c *Client) buildRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.config.endpoint(path), body)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.config.Headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	service := req.URL.Path
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.ExternalServiceError(service, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.ExternalServiceError(service, fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.ExternalServiceError(service, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body, 200)))
	}
	return body, nil
}

func truncate(body []byte, n int) string {
	if len(body) <= n {
		return string(body)
	}
	return string(body[:n]) + "..."
}
