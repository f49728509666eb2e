package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ShayCichocki/ticketpilot/internal/helpdesk"
	"github.com/ShayCichocki/ticketpilot/internal/triage"
	"github.com/ShayCichocki/ticketpilot/internal/version"
	"github.com/ShayCichocki/ticketpilot/pkg/models"
)

const (
	maxBodyBytes       = 1 << 20
	healthProbeTimeout = 5 * time.Second
)

// Dependency states reported by the health endpoint.
const (
	depConnected     = "connected"
	depDisconnected  = "disconnected"
	depConfigured    = "configured"
	depNotConfigured = "not configured"
)

var errMissingTicketID = errors.New("ticketId is required")

// AnalyzeRequest is the body of POST /api/ticket/analyze. ticketId may be
// sent as a number or a numeric string.
type AnalyzeRequest struct {
	TicketID         json.RawMessage `json:"ticketId"`
	DiscordUserID    string          `json:"discordUserId,omitempty"`
	DiscordChannelID string          `json:"discordChannelId,omitempty"`
	Options          models.Options  `json:"options"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status       string            `json:"status"`
	Service      string            `json:"service"`
	Version      string            `json:"version"`
	Timestamp    time.Time         `json:"timestamp"`
	Dependencies map[string]string `json:"dependencies"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON body", Details: err.Error()})
		return
	}

	ticketID, err := parseTicketID(req.TicketID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	s.logger.Info("received ticket analysis request",
		zap.Int64("ticket_id", ticketID),
		zap.String("discord_user_id", req.DiscordUserID),
		zap.String("discord_channel_id", req.DiscordChannelID),
	)

	result, err := s.analyzer.AnalyzeTicket(r.Context(), ticketID, req.Options)
	if err != nil {
		status, body := errorStatus(err)
		s.logger.Error("ticket analysis failed",
			zap.Int64("ticket_id", ticketID),
			zap.Int("status", status),
			zap.Error(err),
		)
		writeJSON(w, status, body)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// parseTicketID accepts a positive JSON number or a string of digits.
func parseTicketID(raw json.RawMessage) (int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, errMissingTicketID
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, errors.New("ticketId must be numeric")
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return 0, errMissingTicketID
		}
	}

	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("ticketId must be a positive integer")
	}
	return id, nil
}

// errorStatus maps an analysis failure to an HTTP status and body.
func errorStatus(err error) (int, errorResponse) {
	switch triage.StatusClass(err) {
	case triage.ClassNotFound:
		return http.StatusNotFound, errorResponse{Error: "Resource not found", Details: err.Error()}
	case triage.ClassAuth:
		return http.StatusUnauthorized, errorResponse{Error: "Authentication failed", Details: "Invalid API credentials"}
	case triage.ClassUnavailable:
		return http.StatusServiceUnavailable, errorResponse{Error: "Service unavailable", Details: "Could not connect to external service"}
	case triage.ClassTimeout:
		return http.StatusGatewayTimeout, errorResponse{Error: "Request timeout", Details: "The request took too long to complete"}
	}

	var apiErr *helpdesk.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= http.StatusBadRequest {
		return apiErr.StatusCode, errorResponse{Error: "External service error", Details: err.Error()}
	}
	return http.StatusInternalServerError, errorResponse{Error: "Internal server error", Details: err.Error()}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthResponse{
		Status:    "healthy",
		Service:   version.Service,
		Version:   version.Get(),
		Timestamp: s.now().UTC(),
	}

	var freshdesk, kbAgent string
	var g errgroup.Group
	g.Go(func() error {
		freshdesk = s.probe(r.Context(), "freshdesk", s.cfg.Helpdesk)
		return nil
	})
	g.Go(func() error {
		kbAgent = s.probe(r.Context(), "kbAgent", s.cfg.Knowledge)
		return nil
	})
	_ = g.Wait()

	claude := depNotConfigured
	if s.cfg.LLMConfigured {
		claude = depConfigured
	}
	health.Dependencies = map[string]string{
		"freshdesk": freshdesk,
		"claude":    claude,
		"kbAgent":   kbAgent,
	}

	status := http.StatusOK
	for _, state := range health.Dependencies {
		if state != depConnected && state != depConfigured {
			health.Status = "degraded"
			status = http.StatusServiceUnavailable
			break
		}
	}
	writeJSON(w, status, health)
}

func (s *Server) probe(ctx context.Context, name string, p Pinger) string {
	if p == nil {
		return depNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, healthProbeTimeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		s.logger.Warn("health probe failed", zap.String("dependency", name), zap.Error(err))
		return depDisconnected
	}
	return depConnected
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: "Not found"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
