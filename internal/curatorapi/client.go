package curatorapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/curator/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "curator-dashboard/1.0"

	// maxBodySize caps how much of a response is read
	maxBodySize = 16 << 20
)

// Client implements domain.TorrentRepository for the curator REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new curator API client. A non-positive timeout uses
// the default.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// doRequest performs an HTTP request and returns the body of a 2xx response
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL = reqURL + "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("curator request", "method", method, "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Error("curator request failed", "method", method, "url", reqURL, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &domain.APIError{StatusCode: resp.StatusCode}
		var errBody errorResponse
		if json.Unmarshal(respBody, &errBody) == nil && errBody.Error != "" {
			apiErr.Message = errBody.Error
		} else if text := http.StatusText(resp.StatusCode); text != "" {
			apiErr.Message = text
		}
		c.logger.Error("curator request error", "method", method, "url", reqURL, "status", resp.StatusCode, "error", apiErr.Message)
		return nil, apiErr
	}

	return respBody, nil
}

// ListTorrents returns staged torrents for a status. Entries with an
// unknown status or no id are skipped.
func (c *Client) ListTorrents(ctx context.Context, status domain.Status) ([]domain.Torrent, error) {
	var query url.Values
	if status != "" {
		query = url.Values{"status": []string{string(status)}}
	}

	body, err := c.doRequest(ctx, http.MethodGet, "/api/torrents", query, nil)
	if err != nil {
		return nil, err
	}

	var resp listResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("JSON parse error", "error", err, "bodyLen", len(body))
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if len(resp.Torrents) == 0 {
		return nil, fmt.Errorf("%w: missing torrents list", domain.ErrMalformedResponse)
	}

	// A null list means no torrents
	var dtos []torrentDTO
	if err := json.Unmarshal(resp.Torrents, &dtos); err != nil {
		c.logger.Error("JSON parse error", "error", err, "bodyLen", len(body))
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}

	torrents := make([]domain.Torrent, 0, len(dtos))
	for _, dto := range dtos {
		t, err := dto.toDomain()
		if err != nil {
			c.logger.Warn("skipping torrent", "id", string(dto.ID), "error", err)
			continue
		}
		torrents = append(torrents, t)
	}
	return torrents, nil
}

// Approve moves a pending torrent to approved
func (c *Client) Approve(ctx context.Context, id string) error {
	return c.transition(ctx, id, domain.ActionApprove)
}

// Reject moves a pending torrent to rejected
func (c *Client) Reject(ctx context.Context, id string) error {
	return c.transition(ctx, id, domain.ActionReject)
}

func (c *Client) transition(ctx context.Context, id string, action domain.Action) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("torrent id is required")
	}
	path := fmt.Sprintf("/api/torrents/%s/%s", url.PathEscape(id), action)
	_, err := c.doRequest(ctx, http.MethodPost, path, nil, struct{}{})
	return err
}

// Health returns the status string reported by /api/health
func (c *Client) Health(ctx context.Context) (string, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/api/health", nil, nil)
	if err != nil {
		return "", err
	}

	var resp healthResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return resp.Status, nil
}
