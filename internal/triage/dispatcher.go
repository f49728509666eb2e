package triage

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ShayCichocki/ticketpilot/internal/agents"
	"github.com/ShayCichocki/ticketpilot/internal/logging"
	"github.com/ShayCichocki/ticketpilot/pkg/models"
)

// ArtworkMessage is returned for artwork requests until an artwork agent
// exists.
const ArtworkMessage = "Artwork Agent not yet implemented"

var errNotConfigured = errors.New("agent not configured")

// Dispatcher decides which agents a ticket needs and calls them. Agent
// failures are recorded in the response and never returned.
type Dispatcher struct {
	knowledge KnowledgeAgent
	product   ProductAgent
	price     PriceAgent
	logger    *zap.Logger
}

// NewDispatcher creates a dispatcher. A nil agent is reported as a failed
// call whenever it would be used.
func NewDispatcher(knowledge KnowledgeAgent, product ProductAgent, price PriceAgent, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{knowledge: knowledge, product: product, price: price, logger: logging.OrNop(logger)}
}

// DispatchInput is everything the dispatcher reads.
type DispatchInput struct {
	Ticket         *models.TicketData
	Classification *models.Classification
	Synonyms       models.SynonymResolution
	Options        models.Options
}

// Plan lists the agents a ticket needs.
type Plan struct {
	Knowledge bool
	Product   bool
	Price     bool
	Artwork   bool
}

// PlanAgents selects agents from the enabled options and the intents.
func PlanAgents(intents models.Intents, opts models.Options) Plan {
	return Plan{
		Knowledge: opts.KnowledgeEnabled() && (intents.Has(models.IntentKnowledge) || intents.Has(models.IntentOther)),
		Product:   opts.ProductEnabled() && intents.Has(models.IntentAvailability),
		Price:     opts.PriceEnabled() && intents.Has(models.IntentPrice),
		Artwork:   opts.ArtworkEnabled() && intents.Has(models.IntentArtwork),
	}
}

// Dispatch calls the planned agents. Product runs first, since the price
// query uses the catalog names it confirms. Knowledge and Price then run
// together.
func (d *Dispatcher) Dispatch(ctx context.Context, in DispatchInput) models.AgentResponses {
	cls := in.Classification
	subject := in.Ticket.Ticket.Subject
	plan := PlanAgents(cls.Intents, in.Options)

	var resp models.AgentResponses
	var names []string
	if plan.Product {
		resp.Product = d.callProduct(ctx, BuildProductQuery(cls, subject, in.Synonyms), BuildProductContext(cls))
		names = ProductCanonicalNames(resp.Product)
	}

	var g errgroup.Group
	if plan.Knowledge {
		query := BuildKnowledgeQuery(cls, subject, in.Synonyms)
		kctx := agents.KnowledgeContext{TicketID: in.Ticket.Ticket.ID}
		g.Go(func() error {
			resp.Knowledge = d.callKnowledge(ctx, query, kctx)
			return nil
		})
	}
	if plan.Price {
		query := BuildPriceQuery(cls, subject, in.Synonyms, names)
		g.Go(func() error {
			resp.Price = d.callPrice(ctx, query)
			return nil
		})
	}

	if plan.Artwork {
		resp.Artwork = &models.ArtworkResponse{Success: false, NotImplemented: true, Message: ArtworkMessage}
	}

	_ = g.Wait()

	d.logger.Info("agents dispatched",
		zap.Int64("ticket_id", in.Ticket.Ticket.ID),
		zap.Any("queried", resp.Queried()),
	)
	return resp
}

func (d *Dispatcher) callKnowledge(ctx context.Context, query string, kctx agents.KnowledgeContext) *models.KnowledgeResponse {
	out, err := invoke(func() (*models.KnowledgeResponse, error) {
		if d.knowledge == nil {
			return nil, errNotConfigured
		}
		return d.knowledge.Query(ctx, query, kctx)
	})
	if err != nil {
		d.logger.Error("knowledge agent failed", zap.Error(err))
		return &models.KnowledgeResponse{Success: false, Error: err.Error(), Sources: []models.KnowledgeSource{}}
	}
	return out
}

func (d *Dispatcher) callProduct(ctx context.Context, query string, pctx agents.ProductContext) *models.ProductResponse {
	out, err := invoke(func() (*models.ProductResponse, error) {
		if d.product == nil {
			return nil, errNotConfigured
		}
		return d.product.Query(ctx, query, pctx)
	})
	if err != nil {
		d.logger.Error("product agent failed", zap.Error(err))
		return &models.ProductResponse{Success: false, Error: err.Error(), Products: []models.ProductMatch{}}
	}
	return out
}

func (d *Dispatcher) callPrice(ctx context.Context, query string) *models.PriceResponse {
	out, err := invoke(func() (*models.PriceResponse, error) {
		if d.price == nil {
			return nil, errNotConfigured
		}
		return d.price.Query(ctx, query)
	})
	if err != nil {
		d.logger.Error("price agent failed", zap.Error(err))
		return &models.PriceResponse{
			Success:      false,
			Error:        err.Error(),
			Results:      []models.PriceResult{},
			Alternatives: []models.PriceResult{},
		}
	}
	return out
}

// invoke runs an agent call, turning a panic or a nil reply into an error.
func invoke[T any](call func() (*T, error)) (out *T, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("agent panicked: %v", r)
		}
	}()
	out, err = call()
	if err == nil && out == nil {
		err = errors.New("agent returned no response")
	}
	return out, err
}

// ProductCanonicalNames returns the catalog names the product agent
// matched: the top match of a single lookup, or the top match of each
// successful lookup in a multi-product reply. It returns nil when the
// agent failed or found nothing.
func ProductCanonicalNames(resp *models.ProductResponse) []string {
	if resp == nil || !resp.Success || !resp.Found {
		return nil
	}

	var names []string
	if resp.MultiProduct {
		for _, r := range resp.Results {
			if r.Found {
				names = append(names, topMatch(r.Products))
			}
		}
	} else {
		names = append(names, topMatch(resp.Products))
	}

	names = DedupeTerms(names)
	if len(names) == 0 {
		return nil
	}
	return names
}

func topMatch(products []models.ProductMatch) string {
	if len(products) == 0 || products[0].Name == agents.UnknownProductName {
		return ""
	}
	return products[0].Name
}
