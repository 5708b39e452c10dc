package agr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Service identifies which Alliance API family a request targets.
type Service int

const (
	// ServiceAPI is the general search/gene REST API.
	ServiceAPI Service = iota
	// ServiceBLAST is the sequence similarity search service.
	ServiceBLAST
	// ServiceFMS is the file management system (download metadata).
	ServiceFMS
	// ServiceJBrowse is the genome browser track service.
	ServiceJBrowse
	// ServiceTextpresso is the full-text literature search service.
	ServiceTextpresso
	// ServiceMine is the AllianceMine data mining service.
	ServiceMine
)

// API is the upstream fetch contract consumed by the dispatcher. Every
// failure mode (timeout, network error, non-200 status, malformed JSON
// body) is normalized into the returned error; implementations never
// return a payload alongside an error.
type API interface {
	Get(ctx context.Context, svc Service, endpoint string, params url.Values) (json.RawMessage, error)
	Post(ctx context.Context, svc Service, endpoint string, body interface{}) (json.RawMessage, error)
}

// Client performs HTTP requests against the Alliance of Genome Resources
// services. It makes a single attempt per call; failed requests surface
// directly to the caller without retry.
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new Alliance API client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30
	}
	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
	}
}

// BaseURL returns the configured base URL for a service.
func (c *Client) BaseURL(svc Service) string {
	switch svc {
	case ServiceBLAST:
		return c.config.BlastURL
	case ServiceFMS:
		return c.config.FMSURL
	case ServiceJBrowse:
		return c.config.JBrowseURL
	case ServiceTextpresso:
		return c.config.TextpressoURL
	case ServiceMine:
		return c.config.MineURL
	default:
		return c.config.BaseURL
	}
}

// Get makes a GET request and returns the raw JSON payload.
func (c *Client) Get(ctx context.Context, svc Service, endpoint string, params url.Values) (json.RawMessage, error) {
	fullURL := c.BaseURL(svc) + "/" + strings.TrimPrefix(endpoint, "/")
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("Network error: %s", err)
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req)
}

// Post makes a POST request with a JSON body and returns the raw JSON
// payload.
func (c *Client) Post(ctx context.Context, svc Service, endpoint string, body interface{}) (json.RawMessage, error) {
	fullURL := c.BaseURL(svc) + "/" + strings.TrimPrefix(endpoint, "/")

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("Network error: %s", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("Network error: %s", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	logger := log.With().
		Str("component", "agr_client").
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Logger()

	logger.Debug().Msg("Sending upstream request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			logger.Error().Err(err).Msg("Upstream request timed out")
			return nil, errors.New("Request timeout")
		}
		logger.Error().Err(err).Msg("Upstream request failed")
		return nil, fmt.Errorf("Network error: %s", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			logger.Error().Err(err).Msg("Upstream response read timed out")
			return nil, errors.New("Request timeout")
		}
		logger.Error().Err(err).Msg("Failed to read upstream response")
		return nil, fmt.Errorf("Network error: %s", err)
	}

	logger.Debug().Int("status_code", resp.StatusCode).Int("bytes", len(body)).Msg("Received upstream response")

	if resp.StatusCode != http.StatusOK {
		snippet := string(body)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		logger.Warn().Int("status_code", resp.StatusCode).Str("body", snippet).Msg("Upstream returned non-200 status")
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, snippet)
	}

	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		logger.Error().Err(err).Msg("Upstream returned invalid JSON")
		return nil, fmt.Errorf("Invalid JSON response: %s", err)
	}

	return raw, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
