// Package helpdesk is a read-only Freshdesk REST client. It fetches a
// ticket, its conversation thread and its requester, and normalizes them
// into the models used by the triage pipeline.
package helpdesk

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ShayCichocki/ticketpilot/internal/logging"
)

// DefaultTimeout bounds every Freshdesk request.
const DefaultTimeout = 15 * time.Second

// Config configures a Client.
type Config struct {
	// Domain is the Freshdesk account domain, e.g. "acme.freshdesk.com".
	Domain string
	// APIKey is sent as the basic auth username with password "X".
	APIKey string
	// BaseURL overrides the https://<Domain>/api/v2 endpoint.
	BaseURL string
	// Timeout bounds every request. Defaults to DefaultTimeout.
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client is a Freshdesk API v2 client.
type Client struct {
	baseURL    string
	authHeader string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new Freshdesk client.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s/api/v2", cfg.Domain)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logging.OrNop(cfg.Logger),
	}
	if cfg.APIKey != "" {
		c.authHeader = "Basic " + base64.StdEncoding.EncodeToString([]byte(cfg.APIKey+":X"))
	}
	return c
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	if c.authHeader != "" {
		req.Header.Set("Authorization", c.authHeader)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return newAPIError(resp.StatusCode, path, string(body))
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Ping checks connectivity and credentials by listing a single ticket.
func (c *Client) Ping(ctx context.Context) error {
	return c.get(ctx, "/tickets?per_page=1", nil)
}
