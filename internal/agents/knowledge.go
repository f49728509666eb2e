package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ShayCichocki/ticketpilot/internal/logging"
	"github.com/ShayCichocki/ticketpilot/pkg/models"
)

// DefaultKnowledgeTimeout bounds knowledge base requests.
const DefaultKnowledgeTimeout = 20 * time.Second

// The knowledge base bot expects a chat user and channel; these identify
// calls made by the orchestrator.
const (
	knowledgeUserID    = "ticket-manager-orchestrator"
	knowledgeChannelID = "internal-agent-call"
)

// KnowledgeContext carries request details for a knowledge base query.
type KnowledgeContext struct {
	// TicketID scopes the chat session. Zero means unknown.
	TicketID int64
}

// KnowledgeClient queries the knowledge base bot.
type KnowledgeClient struct {
	ep endpoint
}

// NewKnowledgeClient creates a knowledge base client.
func NewKnowledgeClient(cfg Config) *KnowledgeClient {
	return &KnowledgeClient{
		ep: newEndpoint("knowledge", cfg, DefaultKnowledgeTimeout, map[string]string{
			"x-bot-api-key": cfg.APIKey,
		}),
	}
}

type chatRequest struct {
	Message          string `json:"message"`
	DiscordUserID    string `json:"discordUserId"`
	DiscordChannelID string `json:"discordChannelId"`
	SessionID        string `json:"sessionId"`
}

// Query asks the knowledge base a question.
func (c *KnowledgeClient) Query(ctx context.Context, text string, kctx KnowledgeContext) (*models.KnowledgeResponse, error) {
	c.ep.logger.Info("querying knowledge agent", zap.String("query", logging.Preview(text, 100)))

	reply, err := c.ep.post(ctx, "/api/bot/chat", chatRequest{
		Message:          text,
		DiscordUserID:    knowledgeUserID,
		DiscordChannelID: knowledgeChannelID,
		SessionID:        sessionID(kctx.TicketID),
	})
	if err != nil {
		return nil, err
	}

	answer := reply.Get("response").String()
	articles := int(reply.Get("articlesFound").Int())

	sources := []models.KnowledgeSource{}
	for _, s := range reply.Get("sources").Array() {
		sources = append(sources, models.KnowledgeSource{
			ID:    s.Get("id").String(),
			Title: s.Get("title").String(),
			URL:   s.Get("url").String(),
		})
	}

	c.ep.logger.Info("knowledge agent answered", zap.Int("articles", articles))
	return &models.KnowledgeResponse{
		Success:       true,
		Answer:        answer,
		Sources:       sources,
		SearchTerms:   stringsOf(reply.Get("searchTerms")),
		ArticlesFound: articles,
		Confidence:    KnowledgeConfidence(answer, articles),
	}, nil
}

// Ping probes the knowledge base health endpoint.
func (c *KnowledgeClient) Ping(ctx context.Context) error {
	return c.ep.get(ctx, "/health")
}

// KnowledgeConfidence scores an answer: short answers score 0.3, and
// otherwise three or more supporting articles score 0.95, one or two
// score 0.8 and none score 0.5.
func KnowledgeConfidence(answer string, articles int) float64 {
	switch {
	case len(answer) < 50:
		return 0.3
	case articles >= 3:
		return 0.95
	case articles >= 1:
		return 0.8
	default:
		return 0.5
	}
}

func sessionID(ticketID int64) string {
	id := "unknown"
	if ticketID != 0 {
		id = fmt.Sprint(ticketID)
	}
	return fmt.Sprintf("ticket-mgr-%s-%s", id, uuid.NewString())
}
