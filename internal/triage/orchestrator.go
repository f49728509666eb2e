package triage

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ShayCichocki/ticketpilot/internal/logging"
	"github.com/ShayCichocki/ticketpilot/internal/prompt"
	"github.com/ShayCichocki/ticketpilot/pkg/models"
)

// Deps are the collaborators of an Orchestrator. Agents may be nil; a nil
// agent is reported as failed whenever a ticket needs it.
type Deps struct {
	Fetcher   TicketFetcher
	LLM       Completer
	Prompts   prompt.Renderer
	Knowledge KnowledgeAgent
	Product   ProductAgent
	Price     PriceAgent
	Synonyms  SynonymAgent
	// TicketURL builds the helpdesk link for a ticket.
	TicketURL func(ticketID int64) string
	// Now defaults to time.Now.
	Now    func() time.Time
	Logger *zap.Logger
}

// Orchestrator runs the full ticket analysis pipeline.
type Orchestrator struct {
	fetcher     TicketFetcher
	classifier  *Classifier
	synonyms    *SynonymResolver
	dispatcher  *Dispatcher
	synthesizer *Synthesizer
	ticketURL   func(int64) string
	now         func() time.Time
	logger      *zap.Logger
}

// New creates an orchestrator from its dependencies.
func New(deps Deps) *Orchestrator {
	logger := logging.OrNop(deps.Logger)
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	ticketURL := deps.TicketURL
	if ticketURL == nil {
		ticketURL = func(int64) string { return "" }
	}

	return &Orchestrator{
		fetcher:     deps.Fetcher,
		classifier:  NewClassifier(deps.LLM, deps.Prompts, logger),
		synonyms:    NewSynonymResolver(deps.Synonyms, logger),
		dispatcher:  NewDispatcher(deps.Knowledge, deps.Product, deps.Price, logger),
		synthesizer: NewSynthesizer(deps.LLM, deps.Prompts, logger),
		ticketURL:   ticketURL,
		now:         now,
		logger:      logger,
	}
}

// AnalyzeTicket fetches, classifies and answers one ticket. Only fetch and
// classification failures are returned as errors; every later stage
// degrades into the result.
func (o *Orchestrator) AnalyzeTicket(ctx context.Context, ticketID int64, opts models.Options) (*models.AnalysisResult, error) {
	start := o.now()
	o.logger.Info("starting ticket analysis", zap.Int64("ticket_id", ticketID))

	data, err := o.fetcher.GetFullTicketData(ctx, ticketID)
	if err != nil {
		return nil, &FetchError{TicketID: ticketID, Err: err}
	}
	o.logger.Info("fetched ticket",
		zap.Int64("ticket_id", ticketID),
		zap.String("subject", data.Ticket.Subject),
		zap.Int("messages", data.MessageCount),
	)

	cls, err := o.classifier.Classify(ctx, data)
	if err != nil {
		return nil, err
	}

	synonyms := models.SynonymResolution{}
	if len(cls.Entities.Products) > 0 {
		synonyms = o.synonyms.Resolve(ctx, cls.Entities.Products)
	}

	responses := o.dispatcher.Dispatch(ctx, DispatchInput{
		Ticket:         data,
		Classification: cls,
		Synonyms:       synonyms,
		Options:        opts,
	})

	var synthesis *models.SynthesizedReply
	if opts.SynthesisEnabled() {
		synthesis = o.synthesizer.Synthesize(ctx, data, cls, synonyms, responses)
	}

	end := o.now()
	elapsed := end.Sub(start)
	o.logger.Info("ticket analysis completed", zap.Int64("ticket_id", ticketID), zap.Duration("elapsed", elapsed))

	return &models.AnalysisResult{
		Success:  true,
		Ticket:   data.Ticket,
		Customer: data.Customer,
		Analysis: models.Analysis{
			Classification: *cls,
			EmailCount:     data.MessageCount,
		},
		Synonyms:       synonyms,
		AgentResponses: responses,
		Synthesis:      synthesis,
		HelpdeskURL:    o.ticketURL(ticketID),
		ProcessingTime: elapsed.Milliseconds(),
		Timestamp:      end.UTC(),
	}, nil
}
