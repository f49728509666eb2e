// Package render draws analysis results in the terminal.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/ticketpilot/pkg/models"
)

const defaultWidth = 88

// Card renders an analysis result as a bordered terminal card.
type Card struct {
	width int

	// Styles
	borderStyle  lipgloss.Style
	titleStyle   lipgloss.Style
	sectionStyle lipgloss.Style
	labelStyle   lipgloss.Style
	valueStyle   lipgloss.Style
	okStyle      lipgloss.Style
	failStyle    lipgloss.Style
	mutedStyle   lipgloss.Style
	replyStyle   lipgloss.Style
}

// NewCard creates a new Card instance.
func NewCard() *Card {
	return &Card{
		width: defaultWidth,

		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),

		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")),

		sectionStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginTop(1),

		labelStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(14),

		valueStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),

		okStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")), // Green

		failStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")), // Red

		mutedStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")),

		replyStyle: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("34")).
			Padding(0, 1),
	}
}

// SetWidth updates the card width.
func (c *Card) SetWidth(width int) {
	if width > 20 {
		c.width = width
	}
}

// Render draws the result.
func (c *Card) Render(r *models.AnalysisResult) string {
	inner := c.width - 4
	var b strings.Builder

	b.WriteString(c.titleStyle.Render(fmt.Sprintf("Ticket #%d  %s", r.Ticket.ID, r.Ticket.Subject)))
	b.WriteString("\n")
	if r.HelpdeskURL != "" {
		b.WriteString(c.mutedStyle.Render(r.HelpdeskURL))
		b.WriteString("\n")
	}

	a := r.Analysis
	c.row(&b, "Customer", orUnknown(r.Customer.Email))
	c.row(&b, "Status", orUnknown(string(r.Ticket.Status)))
	c.row(&b, "Priority", orUnknown(string(r.Ticket.Priority)))
	c.row(&b, "Intents", a.Intents.Join(" + "))
	c.row(&b, "Confidence", fmt.Sprintf("%.2f", a.Confidence))
	c.row(&b, "Emails", fmt.Sprintf("%d", a.EmailCount))

	if a.ThreadSummary != "" {
		c.section(&b, "Summary")
		b.WriteString(c.wrap(a.ThreadSummary, inner))
		b.WriteString("\n")
	}
	if a.LatestCustomerMessage != "" {
		c.section(&b, "Latest customer message")
		b.WriteString(c.wrap(a.LatestCustomerMessage, inner))
		b.WriteString("\n")
	}
	if len(r.Synonyms) > 0 {
		c.section(&b, "Synonyms")
		for _, term := range sortedTerms(r.Synonyms) {
			entry := r.Synonyms[term]
			b.WriteString(fmt.Sprintf("%s → %s %s\n", term, entry.Canonical, c.mutedStyle.Render("("+entry.Confidence+")")))
		}
	}

	c.agents(&b, r.AgentResponses, inner)

	if s := r.Synthesis; s != nil {
		c.section(&b, "Suggested reply")
		if s.Success && s.SuggestedResponse != nil {
			b.WriteString(c.replyStyle.Width(inner - 2).Render(*s.SuggestedResponse))
		} else {
			b.WriteString(c.failStyle.Render("✗ " + s.Error))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(c.mutedStyle.Render(fmt.Sprintf("Processed in %dms", r.ProcessingTime)))

	return c.borderStyle.Width(c.width - 2).Render(b.String())
}

func (c *Card) agents(b *strings.Builder, resp models.AgentResponses, width int) {
	if kb := resp.Knowledge; kb != nil {
		c.section(b, "Knowledge base")
		if kb.Success {
			b.WriteString(c.wrap(kb.Answer, width))
			b.WriteString("\n")
			for _, s := range firstN(kb.Sources, 3) {
				b.WriteString(c.mutedStyle.Render("  • "+s.Title+" "+s.URL) + "\n")
			}
		} else {
			c.failed(b, kb.Error)
		}
	}

	if p := resp.Product; p != nil {
		c.section(b, "Product availability")
		switch {
		case !p.Success:
			c.failed(b, p.Error)
		case !p.Found:
			b.WriteString(c.mutedStyle.Render("No matching products found") + "\n")
		default:
			for _, m := range firstN(p.Products, 3) {
				b.WriteString(c.okStyle.Render("✓ ") + m.Name + c.mutedStyle.Render(sourcingNote(m.Sourcing)) + "\n")
			}
		}
		if p.Summary != "" {
			b.WriteString(c.wrap(p.Summary, width))
			b.WriteString("\n")
		}
	}

	if p := resp.Price; p != nil {
		c.section(b, "Pricing")
		switch {
		case !p.Success:
			c.failed(b, p.Error)
		case len(p.Results) == 0:
			b.WriteString(c.mutedStyle.Render("No pricing found in pricelist") + "\n")
		default:
			for _, res := range firstN(p.Results, 5) {
				b.WriteString(res.ProductName)
				if q := res.Pricing; q != nil {
					b.WriteString(fmt.Sprintf("  %d pcs @ %s %.2f/pc = %s %.2f", q.RequestedQuantity, q.Currency, q.UnitPrice, q.Currency, q.TotalPrice))
				}
				if res.MOQ != nil {
					b.WriteString(c.mutedStyle.Render(fmt.Sprintf("  (MOQ %d)", res.MOQ.Quantity)))
				}
				b.WriteString("\n")
			}
		}
	}

	if art := resp.Artwork; art != nil {
		c.section(b, "Artwork")
		b.WriteString(c.mutedStyle.Render(art.Message) + "\n")
	}
}

func (c *Card) section(b *strings.Builder, title string) {
	b.WriteString(c.sectionStyle.Render(title))
	b.WriteString("\n")
}

func (c *Card) row(b *strings.Builder, label, value string) {
	b.WriteString(c.labelStyle.Render(label))
	b.WriteString(c.valueStyle.Render(value))
	b.WriteString("\n")
}

func (c *Card) failed(b *strings.Builder, msg string) {
	if msg == "" {
		msg = "lookup failed"
	}
	b.WriteString(c.failStyle.Render("✗ " + msg))
	b.WriteString("\n")
}

func (c *Card) wrap(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}

func sourcingNote(s models.Sourcing) string {
	switch s.Origin {
	case models.SourcingChina:
		return fmt.Sprintf("  china, MOQ %d", s.MOQ)
	case models.SourcingLocal:
		if s.LeadTime != "" {
			return fmt.Sprintf("  local, MOQ %d, %s", s.MOQ, s.LeadTime)
		}
		return fmt.Sprintf("  local, MOQ %d", s.MOQ)
	case models.SourcingOther:
		return "  " + s.Label
	}
	return ""
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func sortedTerms(res models.SynonymResolution) []string {
	terms := make([]string, 0, len(res))
	for t := range res {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}
