package triage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/ShayCichocki/ticketpilot/internal/logging"
	"github.com/ShayCichocki/ticketpilot/internal/prompt"
	"github.com/ShayCichocki/ticketpilot/pkg/models"
)

// threadSeparator separates messages in the rendered conversation.
const threadSeparator = "\n\n---\n\n"

// Classifier reads a ticket thread with the LLM and extracts intents and
// order details.
type Classifier struct {
	llm     Completer
	prompts prompt.Renderer
	logger  *zap.Logger
}

// NewClassifier creates a classifier.
func NewClassifier(llm Completer, prompts prompt.Renderer, logger *zap.Logger) *Classifier {
	return &Classifier{llm: llm, prompts: prompts, logger: logging.OrNop(logger)}
}

type classificationPrompt struct {
	Subject       string
	CustomerEmail string
	Conversation  string
}

// Classify sends the thread to the LLM and parses its reply. It does not
// retry. An unparseable reply yields a *ClassificationError.
func (c *Classifier) Classify(ctx context.Context, data *models.TicketData) (*models.Classification, error) {
	text, err := c.prompts.Render(prompt.Classification, classificationPrompt{
		Subject:       data.Ticket.Subject,
		CustomerEmail: data.Customer.Email,
		Conversation:  RenderThread(data.Thread),
	})
	if err != nil {
		return nil, fmt.Errorf("render classification prompt: %w", err)
	}

	c.logger.Info("classifying ticket", zap.Int64("ticket_id", data.Ticket.ID))
	reply, err := c.llm.Complete(ctx, text)
	if err != nil {
		return nil, &ClassificationError{TicketID: data.Ticket.ID, Err: err}
	}

	cls, err := ParseClassification(reply)
	if err != nil {
		c.logger.Error("unparseable classification",
			zap.Int64("ticket_id", data.Ticket.ID),
			zap.String("response", logging.Preview(reply, 500)),
		)
		return nil, &ClassificationError{TicketID: data.Ticket.ID, Response: reply, Err: err}
	}

	c.logger.Info("ticket classified",
		zap.Int64("ticket_id", data.Ticket.ID),
		zap.Strings("intents", cls.Intents.Strings()),
		zap.Float64("confidence", cls.Confidence),
	)
	return cls, nil
}

// RenderThread formats the thread for the classification prompt.
func RenderThread(thread models.Thread) string {
	parts := make([]string, len(thread))
	for i, msg := range thread {
		sender := "AGENT"
		if msg.Inbound() {
			sender = "CUSTOMER"
		}
		parts[i] = fmt.Sprintf("[%d] %s (%s):\n%s", i+1, sender, msg.CreatedAt.Format("2006-01-02"), msg.Body)
	}
	return strings.Join(parts, threadSeparator)
}

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// ParseClassification decodes the LLM's classification reply. It accepts
// bare JSON, JSON inside a fenced code block, and JSON surrounded by
// prose, in that order. The object must carry an intents list.
func ParseClassification(text string) (*models.Classification, error) {
	candidates := []string{text}
	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		candidates = append(candidates, text[start:end+1])
	}

	var lastErr error
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if !strings.HasPrefix(candidate, "{") {
			lastErr = errors.New("reply is not a JSON object")
			continue
		}
		var cls models.Classification
		if err := json.Unmarshal([]byte(candidate), &cls); err != nil {
			lastErr = err
			continue
		}
		if !gjson.Get(candidate, "intents").IsArray() {
			lastErr = errors.New("classification has no intents list")
			continue
		}
		normalizeClassification(&cls)
		return &cls, nil
	}
	if lastErr == nil {
		lastErr = errors.New("no JSON object found")
	}
	return nil, lastErr
}

func normalizeClassification(cls *models.Classification) {
	seen := make(map[models.Intent]bool, len(cls.Intents))
	intents := make(models.Intents, 0, len(cls.Intents))
	for _, raw := range cls.Intents {
		intent := models.ParseIntent(string(raw))
		if seen[intent] {
			continue
		}
		seen[intent] = true
		intents = append(intents, intent)
	}
	if len(intents) == 0 {
		intents = models.Intents{models.IntentOther}
	}
	cls.Intents = intents

	switch {
	case cls.Confidence < 0:
		cls.Confidence = 0
	case cls.Confidence > 1:
		cls.Confidence = 1
	}

	e := &cls.Entities
	if e.Products == nil {
		e.Products = []string{}
	}
	if e.Customization == nil {
		e.Customization = []string{}
	}
	if e.Other == nil {
		e.Other = []string{}
	}
}

// RenderClassification encodes a classification in the JSON shape the
// LLM is asked to produce.
func RenderClassification(cls *models.Classification) (string, error) {
	data, err := json.MarshalIndent(cls, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
