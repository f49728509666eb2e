package triage

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/ShayCichocki/ticketpilot/internal/agents"
	"github.com/ShayCichocki/ticketpilot/internal/helpdesk"
	"github.com/ShayCichocki/ticketpilot/pkg/models"
)

// steppingClock advances by step on every call.
func steppingClock(start time.Time, step time.Duration) func() time.Time {
	now := start
	return func() time.Time {
		t := now
		now = now.Add(step)
		return t
	}
}

const priceOnlyClassification = `{
  "threadSummary": "Customer wants a quote for tote bags.",
  "latestCustomerMessage": "How much for 500 tote bags?",
  "intents": ["PRICE"],
  "extractedEntities": {"products": ["tote bags"], "quantity": 500, "customization": [], "other": []},
  "confidence": 0.93
}`

func TestAnalyzeTicket_PriceOnly(t *testing.T) {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	llm := &fakeLLM{replies: []string{priceOnlyClassification, "500 tote bags come to SGD 1250.00."}}
	product := &fakeProduct{resp: foundProduct("Should Not Be Used")}
	price := &fakePrice{resp: priceWithMOQ(100)}
	kb := &fakeKnowledge{}
	syn := &fakeSynonyms{reply: &agents.ResolveReply{
		Success:     true,
		Resolutions: []agents.Resolution{{Input: "tote bags", CanonicalName: "Canvas Tote Bag", Confidence: "fuzzy"}},
	}}

	o := New(Deps{
		Fetcher:   &fakeFetcher{data: ticketData(inbound("How much for 500 tote bags?", start))},
		LLM:       llm,
		Prompts:   mustPrompts(t),
		Knowledge: kb,
		Product:   product,
		Price:     price,
		Synonyms:  syn,
		TicketURL: func(id int64) string { return fmt.Sprintf("https://acme.freshdesk.com/a/tickets/%d", id) },
		Now:       steppingClock(start, 1500*time.Millisecond),
	})

	result, err := o.AnalyzeTicket(context.Background(), 123, models.Options{})
	if err != nil {
		t.Fatalf("AnalyzeTicket failed: %v", err)
	}

	if len(product.queries) != 0 {
		t.Errorf("product agent called %d times, want 0", len(product.queries))
	}
	if len(kb.queries) != 0 {
		t.Error("knowledge agent should not be called for PRICE only")
	}
	if len(price.queries) != 1 || price.queries[0] != "Canvas Tote Bag 500 pcs" {
		t.Errorf("price queries = %v, want synonym-mapped query", price.queries)
	}

	if !result.Success || result.Ticket.ID != 123 || result.Customer.Email != "buyer@example.com" {
		t.Errorf("result = %+v", result)
	}
	if result.Analysis.EmailCount != 1 || !result.Analysis.Intents.Has(models.IntentPrice) {
		t.Errorf("analysis = %+v", result.Analysis)
	}
	if result.Synonyms["tote bags"].Canonical != "Canvas Tote Bag" {
		t.Errorf("synonyms = %+v", result.Synonyms)
	}
	if result.AgentResponses.Product != nil || result.AgentResponses.Knowledge != nil || result.AgentResponses.Price == nil {
		t.Errorf("agent responses = %+v", result.AgentResponses)
	}
	if result.Synthesis == nil || !result.Synthesis.Success || *result.Synthesis.SuggestedResponse != "500 tote bags come to SGD 1250.00." {
		t.Errorf("synthesis = %+v", result.Synthesis)
	}
	if result.HelpdeskURL != "https://acme.freshdesk.com/a/tickets/123" {
		t.Errorf("HelpdeskURL = %q", result.HelpdeskURL)
	}
	if result.ProcessingTime != 1500 {
		t.Errorf("ProcessingTime = %d, want 1500", result.ProcessingTime)
	}
	if !result.Timestamp.Equal(start.Add(1500 * time.Millisecond)) {
		t.Errorf("Timestamp = %v", result.Timestamp)
	}

	synthesisPrompt := llm.prompts[1]
	if !strings.Contains(synthesisPrompt, "exactly as they appear") || !strings.Contains(synthesisPrompt, "Do NOT mention minimum order") {
		t.Errorf("synthesis prompt clauses wrong:\n%s", synthesisPrompt)
	}
}

func TestAnalyzeTicket_SkipsOptionalStages(t *testing.T) {
	llm := &fakeLLM{replies: []string{`{"intents": ["KNOWLEDGE"], "extractedEntities": {"products": []}}`}}
	syn := &fakeSynonyms{}

	o := New(Deps{
		Fetcher:  &fakeFetcher{data: ticketData(inbound("What are your hours?", time.Now()))},
		LLM:      llm,
		Prompts:  mustPrompts(t),
		Synonyms: syn,
	})

	result, err := o.AnalyzeTicket(context.Background(), 123, models.Options{
		IncludeKB:        models.Bool(false),
		IncludeSynthesis: models.Bool(false),
	})
	if err != nil {
		t.Fatalf("AnalyzeTicket failed: %v", err)
	}
	if len(syn.calls) != 0 {
		t.Error("synonyms should not be resolved without products")
	}
	if result.Synonyms == nil || len(result.Synonyms) != 0 {
		t.Errorf("Synonyms = %v, want empty map", result.Synonyms)
	}
	if len(result.AgentResponses.Queried()) != 0 {
		t.Errorf("queried = %v", result.AgentResponses.Queried())
	}
	if result.Synthesis != nil {
		t.Error("synthesis disabled but present")
	}
	if len(llm.prompts) != 1 {
		t.Errorf("LLM calls = %d, want 1", len(llm.prompts))
	}
}

func TestAnalyzeTicket_SynthesisFailureIsNotFatal(t *testing.T) {
	llm := &fakeLLM{
		replies: []string{`{"intents": ["OTHER"]}`},
		errs:    []error{nil, errors.New("overloaded")},
	}
	o := New(Deps{
		Fetcher:   &fakeFetcher{data: ticketData(inbound("hi", time.Now()))},
		LLM:       llm,
		Prompts:   mustPrompts(t),
		Knowledge: &fakeKnowledge{err: errors.New("kb down")},
	})

	result, err := o.AnalyzeTicket(context.Background(), 123, models.Options{})
	if err != nil {
		t.Fatalf("AnalyzeTicket failed: %v", err)
	}
	if result.Synthesis == nil || result.Synthesis.Success || result.Synthesis.SuggestedResponse != nil {
		t.Errorf("synthesis = %+v", result.Synthesis)
	}
	if result.AgentResponses.Knowledge == nil || result.AgentResponses.Knowledge.Success {
		t.Errorf("knowledge = %+v", result.AgentResponses.Knowledge)
	}
}

func TestAnalyzeTicket_FatalErrors(t *testing.T) {
	t.Run("fetch", func(t *testing.T) {
		o := New(Deps{Fetcher: &fakeFetcher{err: fmt.Errorf("get: %w", helpdesk.ErrNotFound)}, LLM: &fakeLLM{}, Prompts: mustPrompts(t)})
		_, err := o.AnalyzeTicket(context.Background(), 9, models.Options{})

		var fetchErr *FetchError
		if !errors.As(err, &fetchErr) || fetchErr.TicketID != 9 {
			t.Fatalf("err = %v, want FetchError", err)
		}
		if StatusClass(err) != ClassNotFound {
			t.Errorf("StatusClass = %q, want not_found", StatusClass(err))
		}
	})

	t.Run("classification", func(t *testing.T) {
		o := New(Deps{
			Fetcher: &fakeFetcher{data: ticketData(inbound("hi", time.Now()))},
			LLM:     &fakeLLM{replies: []string{"I am not JSON"}},
			Prompts: mustPrompts(t),
		})
		_, err := o.AnalyzeTicket(context.Background(), 123, models.Options{})

		var clsErr *ClassificationError
		if !errors.As(err, &clsErr) {
			t.Fatalf("err = %v, want ClassificationError", err)
		}
		if StatusClass(err) != ClassInternal {
			t.Errorf("StatusClass = %q, want internal", StatusClass(err))
		}
	})
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestStatusClass(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Class
	}{
		{"nil", nil, ""},
		{"not found", &FetchError{Err: &helpdesk.APIError{StatusCode: 404}}, ClassNotFound},
		{"forbidden", &FetchError{Err: &helpdesk.APIError{StatusCode: 403}}, ClassAuth},
		{"upstream 502", &FetchError{Err: &helpdesk.APIError{StatusCode: 502}}, ClassUnavailable},
		{"upstream 429", &FetchError{Err: &helpdesk.APIError{StatusCode: 429}}, ClassInternal},
		{"deadline", &FetchError{Err: context.DeadlineExceeded}, ClassTimeout},
		{"net timeout", &FetchError{Err: timeoutErr{}}, ClassTimeout},
		{"refused", &FetchError{Err: &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}}, ClassUnavailable},
		{"dns", &FetchError{Err: &net.DNSError{Err: "no such host", Name: "acme.freshdesk.com"}}, ClassUnavailable},
		{"other", errors.New("boom"), ClassInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusClass(tt.err); got != tt.want {
				t.Errorf("StatusClass = %q, want %q", got, tt.want)
			}
		})
	}
}
