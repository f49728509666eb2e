package triage

import (
	"fmt"
	"strings"

	"github.com/ShayCichocki/ticketpilot/pkg/models"
)

// noAgentData replaces the summary when no agent contributed anything.
const noAgentData = "No specific product, pricing, or knowledge base information available.\n" +
	"Provide a helpful response and offer to get more details."

// moqKeywords make the customer's message ask about minimum quantities.
var moqKeywords = []string{"moq", "minimum order", "minimum qty", "minimum quantity"}

// maxSummaryItems caps the matches and price results passed to the LLM.
const maxSummaryItems = 3

// BuildAgentDataSummary renders the agent responses and the extracted
// request details as plain-text sections for the synthesis prompt.
// Mentioned products are listed by their catalog names.
func BuildAgentDataSummary(responses models.AgentResponses, entities models.Entities, syn models.SynonymResolution) string {
	var sections []string

	if p := responses.Product; p != nil && p.Success {
		sections = append(sections, productSection(p))
	}

	if p := responses.Price; p != nil && p.Success {
		switch {
		case len(p.Results) > 0:
			sections = append(sections, pricingSection(p))
		case p.ProductsFound == 0:
			sections = append(sections, "PRICING INFORMATION:\n- No standard pricing found in pricelist\n- Offer to provide a custom quote")
		}
	}

	if k := responses.Knowledge; k != nil && k.Success && k.Answer != "" {
		sections = append(sections, "KNOWLEDGE BASE INFORMATION:\n"+k.Answer)
	}

	if s := requestSection(entities, syn); s != "" {
		sections = append(sections, s)
	}

	if len(sections) == 0 {
		return noAgentData
	}
	return strings.Join(sections, threadSeparator)
}

func productSection(p *models.ProductResponse) string {
	lines := []string{"PRODUCT AVAILABILITY:"}
	if !p.Found {
		lines = append(lines, "- Products found: No matching products")
		return strings.Join(lines, "\n")
	}

	lines = append(lines, "- Products found: Yes")
	if p.SynonymResolved != "" {
		lines = append(lines, fmt.Sprintf("- Matched term: %q", p.SynonymResolved))
	}
	if p.ColorAvailable {
		lines = append(lines, "- Color available: Yes")
	} else {
		lines = append(lines, "- Color available: No (check alternatives)")
	}

	if len(p.Products) > 0 {
		lines = append(lines, "\nMatching products:")
		for i, m := range firstN(p.Products, maxSummaryItems) {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, m.Name))
			lines = append(lines, sourcingLines(m.Sourcing)...)
		}
	}
	return strings.Join(lines, "\n")
}

func sourcingLines(s models.Sourcing) []string {
	var lines []string
	switch s.Origin {
	case models.SourcingChina:
		lines = append(lines, "   - Source: China")
		if s.MOQ > 0 {
			lines = append(lines, fmt.Sprintf("   - MOQ: %d pcs", s.MOQ))
		}
		if s.Air {
			lines = append(lines, "   - Shipping: Air available (10-15 days)")
		}
		if s.Sea {
			lines = append(lines, "   - Shipping: Sea available (20-35 days)")
		}
		if s.Reason != "" {
			lines = append(lines, "   - Note: "+s.Reason)
		}
	case models.SourcingLocal:
		source := "   - Source: Local"
		if s.Supplier != "" {
			source += " (" + s.Supplier + ")"
		}
		lines = append(lines, source)
		if s.MOQ > 0 {
			lines = append(lines, fmt.Sprintf("   - MOQ: %d pcs", s.MOQ))
		}
		if s.LeadTime != "" {
			lines = append(lines, "   - Lead time: "+s.LeadTime)
		}
	case models.SourcingOther:
		lines = append(lines, "   - Source: "+s.Label)
		if s.MOQ > 0 {
			lines = append(lines, fmt.Sprintf("   - MOQ: %d pcs", s.MOQ))
		}
	}
	return lines
}

func pricingSection(p *models.PriceResponse) string {
	lines := []string{"PRICING INFORMATION:"}
	for i, r := range firstN(p.Results, maxSummaryItems) {
		lines = append(lines, fmt.Sprintf("\n%d. %s", i+1, r.ProductName))
		if r.Dimensions != "" {
			lines = append(lines, "   Size: "+r.Dimensions)
		}
		if r.PrintOption != "" {
			lines = append(lines, "   Print: "+r.PrintOption)
		}
		if q := r.Pricing; q != nil {
			lines = append(lines, fmt.Sprintf("   Price for %d pcs: %s %.2f/pc (Total: %s %.2f)",
				q.RequestedQuantity, q.Currency, q.UnitPrice, q.Currency, q.TotalPrice))
		}
		if r.MOQ != nil {
			lines = append(lines, fmt.Sprintf("   MOQ: %d pcs @ $%.2f/pc", r.MOQ.Quantity, r.MOQ.UnitPrice))
		}
		if lt := r.LeadTime; lt != nil {
			lines = append(lines, fmt.Sprintf("   Lead time: %d-%d working days", lt.DaysMin, lt.DaysMax))
		}
		if len(r.Tiers) > 1 {
			tiers := make([]string, 0, 4)
			for _, t := range firstN(r.Tiers, 4) {
				tiers = append(tiers, fmt.Sprintf("%d+ @ $%.2f", t.Quantity, t.UnitPrice))
			}
			lines = append(lines, "   Quantity tiers: "+strings.Join(tiers, ", "))
		}
	}
	return strings.Join(lines, "\n")
}

func requestSection(e models.Entities, syn models.SynonymResolution) string {
	lines := []string{"CUSTOMER REQUEST DETAILS:"}
	if names := CanonicalNames(e.Products, syn); len(names) > 0 {
		lines = append(lines, "- Products mentioned: "+strings.Join(names, ", "))
	}
	if !e.Quantity.IsZero() {
		lines = append(lines, "- Quantity requested: "+e.Quantity.String())
	}
	if len(e.Colors) > 0 {
		lines = append(lines, "- Colors mentioned: "+strings.Join(e.Colors, ", "))
	}
	if len(e.Customization) > 0 {
		lines = append(lines, "- Customization: "+strings.Join(e.Customization, ", "))
	}
	if len(lines) == 1 {
		return ""
	}
	return strings.Join(lines, "\n")
}

// FirstMOQ returns the first minimum order quantity found, scanning
// product matches before price results.
func FirstMOQ(responses models.AgentResponses) (int, bool) {
	if p := responses.Product; p != nil && p.Success {
		for _, m := range p.Products {
			if m.Sourcing.MOQ > 0 {
				return m.Sourcing.MOQ, true
			}
		}
	}
	if p := responses.Price; p != nil && p.Success {
		for _, r := range p.Results {
			if r.MOQ != nil && r.MOQ.Quantity > 0 {
				return r.MOQ.Quantity, true
			}
		}
	}
	return 0, false
}

// MOQDecision tells the synthesis prompt whether to mention the minimum
// order quantity.
type MOQDecision struct {
	Disclose bool
	// MOQ is the first MOQ found in agent data, 0 when none.
	MOQ int
	// BelowMOQ is set when the requested quantity is under MOQ.
	BelowMOQ bool
}

// DecideMOQ discloses the MOQ when the customer asked about it or when the
// requested quantity is below the first MOQ found.
func DecideMOQ(message string, quantity models.Quantity, responses models.AgentResponses) MOQDecision {
	var d MOQDecision
	d.MOQ, _ = FirstMOQ(responses)

	if requested, ok := quantity.Number(); ok && d.MOQ > 0 && requested < d.MOQ {
		d.BelowMOQ = true
	}

	lower := strings.ToLower(message)
	for _, kw := range moqKeywords {
		if strings.Contains(lower, kw) {
			d.Disclose = true
			break
		}
	}
	d.Disclose = d.Disclose || d.BelowMOQ
	return d
}

// hasPricing reports whether the price agent returned results to quote.
func hasPricing(responses models.AgentResponses) bool {
	p := responses.Price
	return p != nil && p.Success && len(p.Results) > 0
}

func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
