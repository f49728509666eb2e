// Package agents contains HTTP clients for the downstream lookup agents:
// the knowledge base bot, the product availability agent (which also
// resolves product synonyms) and the pricelist agent.
//
// Transport failures and non-2xx replies are returned as errors. A reply
// in which the agent itself reports failure is returned as a response
// with Success=false.
package agents

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
)

// Config configures an agent client.
type Config struct {
	// BaseURL is the agent's root URL, e.g. "http://localhost:4000".
	BaseURL string
	APIKey  string
	// Timeout bounds each request.
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

func (c Config) httpClient(fallback time.Duration) *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = fallback
	}
	return &http.Client{Timeout: timeout}
}

// StatusError is a non-2xx reply from an agent.
type StatusError struct {
	Agent      string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s agent returned %d: %s", e.Agent, e.StatusCode, e.Body)
}

// endpoint is a single authenticated agent route.
type endpoint struct {
	agent   string
	baseURL string
	headers map[string]string
	client  *http.Client
	logger  *zap.Logger
}

func newEndpoint(agent string, cfg Config, fallback time.Duration, headers map[string]string) endpoint {
	return endpoint{
		agent:   agent,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		headers: headers,
		client:  cfg.httpClient(fallback),
		logger:  logging.OrNop(cfg.Logger),
	}
}

// post sends body as JSON and returns the parsed reply.
func (e endpoint) post(ctx context.Context, path string, body any) (gjson.Result, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("encode %s request: %w", e.agent, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return gjson.Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range e.headers {
		req.Header.Set(k, v)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%s agent %s: %w", e.agent, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("read %s reply: %w", e.agent, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e.logger.Error("agent error response",
			zap.String("agent", e.agent),
			zap.Int("status", resp.StatusCode),
			zap.String("body", logging.Preview(string(data), 500)),
		)
		return gjson.Result{}, &StatusError{Agent: e.agent, StatusCode: resp.StatusCode, Body: string(data)}
	}

	if !gjson.ValidBytes(data) {
		return gjson.Result{}, fmt.Errorf("%s agent returned invalid JSON", e.agent)
	}
	return gjson.ParseBytes(data), nil
}

// get issues a GET and discards the body. It is used for health probes.
func (e endpoint) get(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Agent: e.agent, StatusCode: resp.StatusCode}
	}
	return nil
}

// stringsOf returns the string values of a JSON array.
func stringsOf(r gjson.Result) []string {
	arr := r.Array()
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		out = append(out, v.String())
	}
	return out
}

// firstString returns the first non-empty string among paths.
func firstString(r gjson.Result, paths ...string) string {
	for _, p := range paths {
		if s := r.Get(p).String(); s != "" {
			return s
		}
	}
	return ""
}

// errorOr returns the reply's error message or fallback.
func errorOr(r gjson.Result, fallback string) string {
	if msg := r.Get("error").String(); msg != "" {
		return msg
	}
	return fallback
}
