package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/ShayCichocki/ticketpilot/internal/logging"
	"github.com/ShayCichocki/ticketpilot/internal/version"
	"github.com/ShayCichocki/ticketpilot/pkg/models"
)

// DefaultBackendTimeout bounds one analysis request to the HTTP API.
const DefaultBackendTimeout = 30 * time.Second

// BackendConfig configures the HTTP API client.
type BackendConfig struct {
	URL        string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// BackendError is a non-2xx reply from the HTTP API.
type BackendError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *BackendError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("backend returned %d: %s (%s)", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// Backend calls the ticketpilot HTTP API.
type Backend struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// NewBackend creates an HTTP API client.
func NewBackend(cfg BackendConfig) *Backend {
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultBackendTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Backend{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		client:  client,
		logger:  logging.OrNop(cfg.Logger),
	}
}

type analyzeRequest struct {
	TicketID         int64          `json:"ticketId"`
	DiscordUserID    string         `json:"discordUserId"`
	DiscordChannelID string         `json:"discordChannelId"`
	Options          models.Options `json:"options"`
}

// Analyze asks the API to analyze a ticket on behalf of a chat user.
func (b *Backend) Analyze(ctx context.Context, ticketID int64, userID, channelID string) (*models.AnalysisResult, error) {
	b.logger.Info("requesting ticket analysis", zap.Int64("ticket_id", ticketID))

	body, err := json.Marshal(analyzeRequest{
		TicketID:         ticketID,
		DiscordUserID:    userID,
		DiscordChannelID: channelID,
		Options: models.Options{
			IncludeKB:      models.Bool(true),
			IncludePrice:   models.Bool(true),
			IncludeArtwork: models.Bool(false),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encode analyze request: %w", err)
	}

	data, err := b.do(ctx, http.MethodPost, "/api/ticket/analyze", body)
	if err != nil {
		b.logger.Error("failed to analyze ticket", zap.Int64("ticket_id", ticketID), zap.Error(err))
		return nil, err
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode analysis result: %w", err)
	}
	return &result, nil
}

// Health fetches the API's health report.
func (b *Backend) Health(ctx context.Context) (map[string]any, error) {
	data, err := b.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}
	var health map[string]any
	if err := json.Unmarshal(data, &health); err != nil {
		return nil, fmt.Errorf("decode health: %w", err)
	}
	return health, nil
}

func (b *Backend) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if b.apiKey != "" {
		req.Header.Set("x-api-key", b.apiKey)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read backend reply: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := gjson.GetBytes(data, "error").String()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &BackendError{
			StatusCode: resp.StatusCode,
			Message:    msg,
			Details:    gjson.GetBytes(data, "details").String(),
		}
	}
	return data, nil
}
