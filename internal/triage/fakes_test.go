package triage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ShayCichocki/ticketpilot/internal/agents"
	"github.com/ShayCichocki/ticketpilot/pkg/models"
)

// callLog records agent calls in the order they started and finished.
type callLog struct {
	mu     sync.Mutex
	events []string
}

func (l *callLog) add(event string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *callLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

func (l *callLog) index(event string) int {
	for i, e := range l.list() {
		if e == event {
			return i
		}
	}
	return -1
}

type fakeFetcher struct {
	data *models.TicketData
	err  error
}

func (f *fakeFetcher) GetFullTicketData(ctx context.Context, id int64) (*models.TicketData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

// fakeLLM answers calls from a script, one reply per call.
type fakeLLM struct {
	mu      sync.Mutex
	replies []string
	errs    []error
	prompts []string
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := len(f.prompts)
	f.prompts = append(f.prompts, prompt)
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.replies) {
		return f.replies[i], nil
	}
	return "", errors.New("unexpected LLM call")
}

type fakeKnowledge struct {
	log     *callLog
	delay   time.Duration
	resp    *models.KnowledgeResponse
	err     error
	queries []string
}

func (f *fakeKnowledge) Query(ctx context.Context, text string, kctx agents.KnowledgeContext) (*models.KnowledgeResponse, error) {
	f.log.add("knowledge:start")
	defer f.log.add("knowledge:end")
	f.queries = append(f.queries, text)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.resp != nil {
		return f.resp, nil
	}
	return &models.KnowledgeResponse{Success: true, Answer: "kb answer"}, nil
}

type fakeProduct struct {
	log     *callLog
	delay   time.Duration
	resp    *models.ProductResponse
	err     error
	panics  bool
	queries []string
	ctxs    []agents.ProductContext
}

func (f *fakeProduct) Query(ctx context.Context, text string, pctx agents.ProductContext) (*models.ProductResponse, error) {
	f.log.add("product:start")
	defer f.log.add("product:end")
	f.queries = append(f.queries, text)
	f.ctxs = append(f.ctxs, pctx)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.panics {
		panic("product agent exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type fakePrice struct {
	log     *callLog
	resp    *models.PriceResponse
	err     error
	queries []string
}

func (f *fakePrice) Query(ctx context.Context, text string) (*models.PriceResponse, error) {
	f.log.add("price:start")
	defer f.log.add("price:end")
	f.queries = append(f.queries, text)
	if f.err != nil {
		return nil, f.err
	}
	if f.resp != nil {
		return f.resp, nil
	}
	return &models.PriceResponse{Success: true, Results: []models.PriceResult{}, ProductsFound: 0}, nil
}

type fakeSynonyms struct {
	reply *agents.ResolveReply
	err   error
	calls [][]string
}

func (f *fakeSynonyms) Resolve(ctx context.Context, terms []string) (*agents.ResolveReply, error) {
	f.calls = append(f.calls, terms)
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func ticketData(messages ...models.Message) *models.TicketData {
	return &models.TicketData{
		Ticket: models.Ticket{
			ID:       123,
			Subject:  "Quote request",
			Status:   models.TicketStatusOpen,
			Priority: models.TicketPriorityMedium,
		},
		Customer:     models.Customer{ID: 7, Email: "buyer@example.com", Name: "Buyer"},
		Thread:       messages,
		MessageCount: len(messages),
	}
}

func inbound(body string, at time.Time) models.Message {
	return models.Message{ID: "m-" + body, Body: body, Direction: models.DirectionInbound, CreatedAt: at}
}

func outbound(body string, at time.Time) models.Message {
	return models.Message{ID: "m-" + body, Body: body, Direction: models.DirectionOutbound, CreatedAt: at}
}
