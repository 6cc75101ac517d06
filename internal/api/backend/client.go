// Package backend is the client for the anomaly detection service's REST API.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	httpClient "github.com/Alias1177/StockDashboard/internal/platform/http"
	"github.com/Alias1177/StockDashboard/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const DefaultBaseURL = "http://localhost:8000/api"

// Client is the backend API client
type Client struct {
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new backend client
type ClientOptions struct {
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
}

// dataEnvelope is the {"data": [...]} wrapper every list endpoint uses
type dataEnvelope[T any] struct {
	Data []T `json:"data"`
}

// NewClient creates a new backend API client
func NewClient(options ClientOptions) *Client {
	httpOpts := httpClient.ClientOptions{
		Timeout:         options.RequestTimeout,
		RequestsPerSec:  options.RequestsPerSec,
		MaxRetries:      options.MaxRetries,
		MaxRetryTimeout: options.MaxRetryTimeout,
	}

	baseURL := strings.TrimRight(options.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient.NewClient(httpOpts),
		logger:     log.With().Str("component", "backend_client").Logger(),
	}
}

// GetStocks fetches the list of available stocks
func (c *Client) GetStocks(ctx context.Context) ([]models.Stock, error) {
	var env dataEnvelope[models.Stock]
	if err := c.getJSON(ctx, "/stocks", nil, &env); err != nil {
		return nil, err
	}
	return nonNil(env.Data), nil
}

// GetStockData fetches raw OHLCV records for symbol within r
func (c *Client) GetStockData(ctx context.Context, symbol string, r models.DateRange) ([]models.RawRecord, error) {
	var env dataEnvelope[models.RawRecord]
	if err := c.getJSON(ctx, "/stock-data", rangeQuery(symbol, r), &env); err != nil {
		return nil, err
	}
	c.logger.Debug().Str("symbol", symbol).Int("count", len(env.Data)).Msg("Fetched stock data")
	return nonNil(env.Data), nil
}

// GetAnomalies fetches anomalies flagged for symbol within r
func (c *Client) GetAnomalies(ctx context.Context, symbol string, r models.DateRange) ([]models.Anomaly, error) {
	var env dataEnvelope[models.Anomaly]
	if err := c.getJSON(ctx, "/anomalies", rangeQuery(symbol, r), &env); err != nil {
		return nil, err
	}
	c.logger.Debug().Str("symbol", symbol).Int("count", len(env.Data)).Msg("Fetched anomalies")
	return nonNil(env.Data), nil
}

// GetSettings fetches the detection settings
func (c *Client) GetSettings(ctx context.Context) (models.Settings, error) {
	var s models.Settings
	if err := c.getJSON(ctx, "/settings", nil, &s); err != nil {
		return models.Settings{}, err
	}
	return s, nil
}

// SaveSettings posts the settings. The response body is not used.
func (c *Client) SaveSettings(ctx context.Context, s models.Settings) error {
	body, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	header := http.Header{"Content-Type": []string{"application/json"}}
	resp, err := c.httpClient.Do(ctx, http.MethodPost, c.baseURL+"/settings", body, header)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	c.logger.Debug().Interface("settings", s).Msg("Saved settings")
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	c.logger.Debug().Str("url", endpoint).Msg("Fetching")

	resp, err := c.httpClient.Do(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.logger.Error().Err(err).Str("path", path).Str("response", string(body)).Msg("Error parsing JSON")
		return fmt.Errorf("parsing JSON: %w", err)
	}
	return nil
}

func rangeQuery(symbol string, r models.DateRange) url.Values {
	q := url.Values{}
	q.Set("symbol", symbol)
	if !r.Start.IsZero() {
		q.Set("start", models.FormatQueryTime(r.Start))
	}
	if !r.End.IsZero() {
		q.Set("end", models.FormatQueryTime(r.End))
	}
	return q
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
