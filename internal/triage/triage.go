// Package triage is the ticket analysis pipeline: it fetches a ticket,
// classifies it with the LLM, resolves product synonyms, fans out to the
// lookup agents and drafts a reply.
package triage

import (
	"context"

	"github.com/ShayCichocki/ticketpilot/internal/agents"
	"github.com/ShayCichocki/ticketpilot/pkg/models"
)

// TicketFetcher loads a ticket with its thread and requester.
type TicketFetcher interface {
	GetFullTicketData(ctx context.Context, ticketID int64) (*models.TicketData, error)
}

// Completer sends a single prompt to the LLM and returns its text reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// KnowledgeAgent answers knowledge base questions.
type KnowledgeAgent interface {
	Query(ctx context.Context, text string, kctx agents.KnowledgeContext) (*models.KnowledgeResponse, error)
}

// ProductAgent looks up product availability and sourcing.
type ProductAgent interface {
	Query(ctx context.Context, text string, pctx agents.ProductContext) (*models.ProductResponse, error)
}

// PriceAgent looks up pricelist entries.
type PriceAgent interface {
	Query(ctx context.Context, text string) (*models.PriceResponse, error)
}

// SynonymAgent maps customer product terms to catalog names.
type SynonymAgent interface {
	Resolve(ctx context.Context, terms []string) (*agents.ResolveReply, error)
}
