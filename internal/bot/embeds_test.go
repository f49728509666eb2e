package bot

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"github.com/ShayCichocki/ticketpilot/pkg/models"
)

func fieldNames(e *discordgo.MessageEmbed) []string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Name
	}
	return names
}

func findField(e *discordgo.MessageEmbed, name string) *discordgo.MessageEmbedField {
	for _, f := range e.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func TestTruncate(t *testing.T) {
	if got := truncate("", 10); got != "N/A" {
		t.Errorf("truncate empty = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("abcdefghijkl", 10); got != "abcdefg..." {
		t.Errorf("truncate long = %q", got)
	}
	if got := truncate(strings.Repeat("é", 20), 10); utf8.RuneCountInString(got) != 10 || !utf8.ValidString(got) {
		t.Errorf("truncate multibyte = %q", got)
	}
}

func TestSplitIntoChunks(t *testing.T) {
	if got := splitIntoChunks("", 10); len(got) != 1 || got[0] != "N/A" {
		t.Errorf("empty = %q", got)
	}

	text := strings.Repeat("word ", 500)
	chunks := splitIntoChunks(text, 1000)
	if len(chunks) < 3 {
		t.Fatalf("got %d chunks", len(chunks))
	}
	for i, c := range chunks {
		if utf8.RuneCountInString(c) > 1000 {
			t.Errorf("chunk %d has %d chars", i, utf8.RuneCountInString(c))
		}
		if strings.HasSuffix(c, "wor") {
			t.Errorf("chunk %d split inside a word", i)
		}
	}

	lines := strings.Repeat("a", 700) + "\n" + strings.Repeat("b", 700)
	chunks = splitIntoChunks(lines, 1000)
	if len(chunks) != 2 || chunks[0] != strings.Repeat("a", 700) || chunks[1] != strings.Repeat("b", 700) {
		t.Errorf("newline split wrong: %d chunks", len(chunks))
	}

	solid := strings.Repeat("x", 2500)
	chunks = splitIntoChunks(solid, 1000)
	if len(chunks) != 3 || len(chunks[0]) != 1000 || len(chunks[2]) != 500 {
		t.Errorf("hard split wrong: %d chunks", len(chunks))
	}
}

func sampleResult() *models.AnalysisResult {
	reply := "Hi, 500 Canvas Tote Bags are SGD 2.50/pc."
	return &models.AnalysisResult{
		Success:     true,
		HelpdeskURL: "https://acme.freshdesk.com/a/tickets/123",
		Ticket: models.Ticket{
			ID:       123,
			Subject:  "Quote for tote bags",
			Status:   models.TicketStatusPending,
			Priority: models.TicketPriorityHigh,
		},
		Customer: models.Customer{Email: "buyer@example.com"},
		Analysis: models.Analysis{
			Classification: models.Classification{
				ThreadSummary:         "Customer wants tote bags.",
				LatestCustomerMessage: "500 totes please",
				Intents:               models.Intents{models.IntentPrice, models.IntentAvailability},
			},
			EmailCount: 2,
		},
		AgentResponses: models.AgentResponses{
			Knowledge: &models.KnowledgeResponse{
				Success: true,
				Answer:  "Totes are printed in 5 days.",
				Sources: []models.KnowledgeSource{
					{ID: "1", Title: "Printing", URL: "https://kb/1"},
					{ID: "2", URL: "https://kb/2"},
					{ID: "3", Title: "C", URL: "https://kb/3"},
					{ID: "4", Title: "D", URL: "https://kb/4"},
				},
			},
			Product: &models.ProductResponse{
				Success: true,
				Found:   true,
				Products: []models.ProductMatch{{
					Name:     "Canvas Tote Bag",
					Sourcing: models.Sourcing{Origin: models.SourcingChina, MOQ: 1000, Air: true, Sea: true, Reason: "Cheaper at volume"},
				}},
			},
			Price: &models.PriceResponse{
				Success:       true,
				ProductsFound: 1,
				Results: []models.PriceResult{{
					ProductName: "Canvas Tote Bag",
					Pricing:     &models.PriceQuote{RequestedQuantity: 500, UnitPrice: 2.5, TotalPrice: 1250, Currency: "SGD"},
					MOQ:         &models.PriceMOQ{Quantity: 100, UnitPrice: 3},
					LeadTime:    &models.LeadTime{DaysMin: 7, DaysMax: 10, Type: "standard"},
					Tiers:       []models.PriceTier{{Quantity: 100, UnitPrice: 3}, {Quantity: 500, UnitPrice: 2.5}},
				}},
				Alternatives: []models.PriceResult{{ProductName: "Jute Bag"}, {ProductName: "Cotton Bag"}},
			},
		},
		Synthesis: &models.SynthesizedReply{Success: true, SuggestedResponse: &reply},
	}
}

func TestBuildTicketEmbed(t *testing.T) {
	e := BuildTicketEmbed(sampleResult())

	if e.Title != "Ticket #123" || e.URL != "https://acme.freshdesk.com/a/tickets/123" || e.Color != ColorInfo {
		t.Errorf("header = %q %q %x", e.Title, e.URL, e.Color)
	}
	if e.Footer == nil || e.Footer.Text != "AI Ticket Manager" {
		t.Error("missing footer")
	}

	want := []string{
		"Customer", "Status", "Priority", "Subject",
		"Conversation Summary (2 emails)", "Latest Customer Message", "Detected Intent",
		"Knowledge Base Answer", "Sources", "Product Availability",
		"Pricing (1 products found)", "Similar Products", "Suggested Reply",
	}
	if got := fieldNames(e); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("fields = %q", got)
	}

	checks := map[string]string{
		"Status":           "Pending",
		"Priority":         "High",
		"Detected Intent":  "PRICE + AVAILABILITY",
		"Sources":          "[Printing](https://kb/1)\n[Article #2](https://kb/2)\n[C](https://kb/3)",
		"Similar Products": "Jute Bag, Cotton Bag",
	}
	for name, want := range checks {
		if got := findField(e, name).Value; got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}

	product := findField(e, "Product Availability").Value
	for _, part := range []string{"**Available:** Yes", "**Source: CHINA**", "MOQ: 1000 pcs", "Shipping: Air / Sea", "Cheaper at volume"} {
		if !strings.Contains(product, part) {
			t.Errorf("product field missing %q:\n%s", part, product)
		}
	}

	pricing := findField(e, "Pricing (1 products found)").Value
	for _, part := range []string{"500 pcs @ SGD 2.50/pc = SGD 1250.00", "MOQ: 100 pcs @ $3.00/pc", "7-10 working days (standard)", "100+ @ $3.00 | 500+ @ $2.50"} {
		if !strings.Contains(pricing, part) {
			t.Errorf("pricing field missing %q:\n%s", part, pricing)
		}
	}
}

func TestBuildTicketEmbed_DegradedAgents(t *testing.T) {
	r := sampleResult()
	r.Customer.Email = ""
	r.Ticket.Status = models.TicketStatusUnknown
	r.AgentResponses = models.AgentResponses{
		Knowledge: &models.KnowledgeResponse{Success: false, Error: "kb down"},
		Product:   &models.ProductResponse{Success: false},
		Price:     &models.PriceResponse{Success: true, ProductsFound: 0},
	}
	r.Synthesis = &models.SynthesizedReply{Success: false, Error: "overloaded"}

	e := BuildTicketEmbed(r)

	if findField(e, "Customer").Value != "Unknown" || findField(e, "Status").Value != "Unknown" {
		t.Error("missing values should render as Unknown")
	}
	if findField(e, "Knowledge Base Answer") != nil || findField(e, "Suggested Reply") != nil {
		t.Error("failed knowledge and synthesis should be omitted")
	}
	if got := findField(e, "Product Availability").Value; got != "Product lookup failed." {
		t.Errorf("product = %q", got)
	}
	if got := findField(e, "Pricing").Value; !strings.Contains(got, "No pricing found") {
		t.Errorf("pricing = %q", got)
	}

	r.AgentResponses.Price = &models.PriceResponse{Success: false, Error: "price agent returned 500"}
	e = BuildTicketEmbed(r)
	if got := findField(e, "Pricing").Value; got != "price agent returned 500" {
		t.Errorf("pricing error = %q", got)
	}
}

func TestBuildTicketEmbed_LongAnswerIsChunked(t *testing.T) {
	r := sampleResult()
	r.AgentResponses.Knowledge.Answer = strings.Repeat("Long answer sentence. ", 120)

	e := BuildTicketEmbed(r)

	var kb []*discordgo.MessageEmbedField
	inKB := false
	for _, f := range e.Fields {
		switch {
		case f.Name == "Knowledge Base Answer":
			inKB = true
			kb = append(kb, f)
		case inKB && f.Name == continuation:
			kb = append(kb, f)
		default:
			inKB = false
		}
	}
	if len(kb) < 3 {
		t.Fatalf("knowledge answer spread over %d fields", len(kb))
	}
	total := 0
	for _, f := range e.Fields {
		if utf8.RuneCountInString(f.Value) > maxFieldValue {
			t.Errorf("field %q exceeds limit", f.Name)
		}
		total += utf8.RuneCountInString(f.Name) + utf8.RuneCountInString(f.Value)
	}
	if total > maxEmbedChars || len(e.Fields) > maxFields {
		t.Errorf("embed too large: %d chars, %d fields", total, len(e.Fields))
	}
}

func TestFormatProduct_LocalAndOther(t *testing.T) {
	p := &models.ProductResponse{
		Success:         true,
		SynonymResolved: "Canvas Tote Bag",
		Products: []models.ProductMatch{
			{Name: "A", URL: "/products/a", Sourcing: models.Sourcing{Origin: models.SourcingLocal, Supplier: "ACME", MOQ: 50, LeadTime: "5 days"}},
			{Name: "B", Sourcing: models.Sourcing{Origin: models.SourcingOther, Label: "vietnam", MOQ: 200}},
			{Name: "C"},
			{Name: "D"},
		},
		Summary: "Two options in stock.",
	}

	got := FormatProduct(p)

	for _, part := range []string{
		`**Matched:** "Canvas Tote Bag"`,
		"No matching products found",
		"Products found (4)",
		"/products/a",
		"**Source: LOCAL** (ACME)",
		"Lead time: 5 days",
		"Source: VIETNAM",
		"MOQ: 200 pcs",
		"Two options in stock.",
	} {
		if !strings.Contains(got, part) {
			t.Errorf("missing %q in:\n%s", part, got)
		}
	}
	if strings.Contains(got, "**D**") {
		t.Error("only the first three products should be listed")
	}
}

func TestFormatPrices_LimitsResults(t *testing.T) {
	var results []models.PriceResult
	for _, n := range []string{"P1", "P2", "P3", "P4", "P5", "P6"} {
		results = append(results, models.PriceResult{ProductName: n, Tiers: []models.PriceTier{{Quantity: 1, UnitPrice: 1}}})
	}

	got := FormatPrices(results)

	if !strings.Contains(got, "**P5**") || strings.Contains(got, "**P6**") {
		t.Errorf("expected five results:\n%s", got)
	}
	if strings.Contains(got, "📊") {
		t.Error("single tier should not be listed")
	}
	if FormatPrices(nil) != "No products found matching your query." {
		t.Error("empty results message wrong")
	}
}

func TestBuildErrorAndLoadingEmbeds(t *testing.T) {
	e := BuildErrorEmbed("boom", "")
	if e.Title != "Error" || e.Color != ColorError || e.Description != "boom" {
		t.Errorf("error embed = %+v", e)
	}
	l := BuildLoadingEmbed("55")
	if l.Title != "Analyzing Ticket #55..." || l.Color != ColorLoading {
		t.Errorf("loading embed = %+v", l)
	}
}
