package triage

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ShayCichocki/ticketpilot/internal/logging"
	"github.com/ShayCichocki/ticketpilot/internal/prompt"
	"github.com/ShayCichocki/ticketpilot/pkg/models"
)

// Synthesizer drafts a sales reply from the gathered agent data.
type Synthesizer struct {
	llm     Completer
	prompts prompt.Renderer
	logger  *zap.Logger
}

// NewSynthesizer creates a synthesizer.
func NewSynthesizer(llm Completer, prompts prompt.Renderer, logger *zap.Logger) *Synthesizer {
	return &Synthesizer{llm: llm, prompts: prompts, logger: logging.OrNop(logger)}
}

// SynthesisPrompt is the data the synthesis template renders.
type SynthesisPrompt struct {
	CustomerEmail string
	Subject       string
	LatestMessage string
	Intents       string
	AgentData     string
	// IsReply is set when the thread already has more than one message.
	IsReply       bool
	HasPricing    bool
	MOQDisclosure bool
	MOQ           int
	BelowMOQ      bool
	Artwork       bool
}

// BuildSynthesisPrompt assembles the template data. Every conditional
// clause of the reply is decided here, not by the LLM.
func BuildSynthesisPrompt(data *models.TicketData, cls *models.Classification, syn models.SynonymResolution, responses models.AgentResponses) SynthesisPrompt {
	latest := cls.LatestCustomerMessage
	if latest == "" {
		latest = "N/A"
	}
	moq := DecideMOQ(customerMessage(data, cls), cls.Entities.Quantity, responses)

	return SynthesisPrompt{
		CustomerEmail: data.Customer.Email,
		Subject:       data.Ticket.Subject,
		LatestMessage: latest,
		Intents:       cls.Intents.Join(", "),
		AgentData:     BuildAgentDataSummary(responses, cls.Entities, syn),
		IsReply:       len(data.Thread) > 1,
		HasPricing:    hasPricing(responses),
		MOQDisclosure: moq.Disclose,
		MOQ:           moq.MOQ,
		BelowMOQ:      moq.BelowMOQ,
		Artwork:       cls.Intents.Has(models.IntentArtwork),
	}
}

// customerMessage is the latest customer request, falling back to the
// most recent inbound message in the thread.
func customerMessage(data *models.TicketData, cls *models.Classification) string {
	if cls.LatestCustomerMessage != "" {
		return cls.LatestCustomerMessage
	}
	for i := len(data.Thread) - 1; i >= 0; i-- {
		if data.Thread[i].Inbound() {
			return data.Thread[i].Body
		}
	}
	return ""
}

// Synthesize drafts the reply. A failure is reported in the returned
// value and never as an error.
func (s *Synthesizer) Synthesize(ctx context.Context, data *models.TicketData, cls *models.Classification, syn models.SynonymResolution, responses models.AgentResponses) *models.SynthesizedReply {
	p := BuildSynthesisPrompt(data, cls, syn, responses)

	text, err := s.prompts.Render(prompt.Synthesis, p)
	if err != nil {
		return s.failed(data.Ticket.ID, fmt.Errorf("render synthesis prompt: %w", err))
	}

	s.logger.Info("synthesizing response",
		zap.Int64("ticket_id", data.Ticket.ID),
		zap.Bool("moq_disclosure", p.MOQDisclosure),
		zap.Bool("has_pricing", p.HasPricing),
	)
	reply, err := s.llm.Complete(ctx, text)
	if err != nil {
		return s.failed(data.Ticket.ID, err)
	}

	draft := strings.TrimSpace(reply)
	s.logger.Info("synthesized response", zap.Int64("ticket_id", data.Ticket.ID), zap.Int("chars", len(draft)))
	return &models.SynthesizedReply{
		Success:           true,
		SuggestedResponse: &draft,
		HasArtworkIntent:  p.Artwork,
		IntentsUsed:       cls.Intents,
	}
}

func (s *Synthesizer) failed(ticketID int64, err error) *models.SynthesizedReply {
	s.logger.Error("failed to synthesize response", zap.Int64("ticket_id", ticketID), zap.Error(err))
	return &models.SynthesizedReply{Success: false, Error: err.Error()}
}
