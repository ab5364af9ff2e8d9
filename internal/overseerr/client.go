// Package overseerr is a client for the Overseerr/Jellyseerr REST API and
// the webhook payloads it sends.
package overseerr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/overfiltrr/overfiltrr/internal/config"
	"github.com/overfiltrr/overfiltrr/internal/media"
)

var (
	ErrAPIKeyMissing = errors.New("overseerr API key is not configured")
	ErrNotFound      = errors.New("overseerr resource not found")
	ErrUnauthorized  = errors.New("overseerr rejected the API key")
	ErrAPIError      = errors.New("overseerr API error")
)

// APIError describes a non-2xx response.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s returned status %d", e.Method, e.Path, e.StatusCode)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	default:
		return ErrAPIError
	}
}

// Client is an Overseerr API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     zerolog.Logger
}

// NewClient creates a new Overseerr client.
func NewClient(cfg config.OverseerrConfig, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.TimeoutDuration(),
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/") + "/api/v1",
		apiKey:  cfg.APIKey,
		logger:  logger.With().Str("component", "overseerr").Logger(),
	}
}

// IsConfigured returns true if the API key is set.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// GetMovie fetches movie details.
func (c *Client) GetMovie(ctx context.Context, tmdbID int) (*MovieDetails, error) {
	var out MovieDetails
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/movie/%d", tmdbID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTV fetches series details.
func (c *Client) GetTV(ctx context.Context, tmdbID int) (*TVDetails, error) {
	var out TVDetails
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/tv/%d", tmdbID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchDetails fetches and normalizes metadata for either media type.
func (c *Client) FetchDetails(ctx context.Context, mt media.Type, tmdbID int) (*media.Details, error) {
	switch mt {
	case media.TypeMovie:
		m, err := c.GetMovie(ctx, tmdbID)
		if err != nil {
			return nil, err
		}
		d := m.ToDetails()
		c.logDetails(d)
		return d, nil
	case media.TypeTV:
		t, err := c.GetTV(ctx, tmdbID)
		if err != nil {
			return nil, err
		}
		d := t.ToDetails()
		c.logDetails(d)
		return d, nil
	}
	return nil, fmt.Errorf("unsupported media type %q", mt)
}

func (c *Client) logDetails(d *media.Details) {
	c.logger.Debug().
		Int("tmdbId", d.TMDbID).
		Str("title", d.Title).
		Strs("genres", d.Attributes.Genres).
		Strs("keywords", d.Attributes.Keywords).
		Int("releaseYear", d.Attributes.ReleaseYear).
		Strs("providers", d.Attributes.Providers).
		Strs("ratings", d.Ratings).
		Str("rating", d.Attributes.Rating).
		Msg("Fetched media details")
}

// UpdateRequest rewrites the destination of a pending request.
func (c *Client) UpdateRequest(ctx context.Context, requestID int, update RequestUpdate) error {
	var out MediaRequest
	return c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/request/%d", requestID), update, &out)
}

// ApproveRequest approves a pending request.
func (c *Client) ApproveRequest(ctx context.Context, requestID int) error {
	var out MediaRequest
	return c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/request/%d/approve", requestID), nil, &out)
}

// GetRequest fetches a request's current status.
func (c *Client) GetRequest(ctx context.Context, requestID int) (*MediaRequest, error) {
	var out MediaRequest
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/request/%d", requestID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Status returns server version information. It doubles as a connectivity check.
func (c *Client) Status(ctx context.Context) (*ServerStatus, error) {
	var out ServerStatus
	if err := c.doRequest(ctx, http.MethodGet, "/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	if !c.IsConfigured() {
		return ErrAPIKeyMissing
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("method", method).Str("path", path).Msg("HTTP request failed")
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Trace().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("Overseerr request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Method: method, Path: path, StatusCode: resp.StatusCode}
		var errResp struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&errResp); err == nil {
			apiErr.Message = errResp.Message
		}
		c.logger.Error().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("message", apiErr.Message).
			Msg("Overseerr API error")
		return apiErr
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
