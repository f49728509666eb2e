package bot

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"github.com/ShayCichocki/ticketpilot/pkg/models"
)

// Embed colors.
const (
	ColorInfo    = 0x0099ff
	ColorError   = 0xff0000
	ColorLoading = 0xffff00
)

const (
	footerText = "AI Ticket Manager"

	// Discord rejects fields over 1024 characters, embeds over 6000 and
	// more than 25 fields per embed.
	maxFieldValue = 1024
	maxEmbedChars = 6000
	maxFields     = 25

	chunkSize = 1000

	// continuation names the follow-up fields of a split value.
	continuation = "\u200b"

	maxSources        = 3
	maxProducts       = 3
	maxPriceResults   = 5
	maxPriceTiers     = 4
	maxAlternatives   = 3
	alternativesBelow = 3
)

var statusNames = map[models.TicketStatus]string{
	models.TicketStatusOpen:     "Open",
	models.TicketStatusPending:  "Pending",
	models.TicketStatusResolved: "Resolved",
	models.TicketStatusClosed:   "Closed",
}

var priorityNames = map[models.TicketPriority]string{
	models.TicketPriorityLow:    "Low",
	models.TicketPriorityMedium: "Medium",
	models.TicketPriorityHigh:   "High",
	models.TicketPriorityUrgent: "Urgent",
}

// embedBuilder appends fields until Discord's size limits are reached.
type embedBuilder struct {
	embed *discordgo.MessageEmbed
	size  int
}

func newEmbed(color int, title, description string) *embedBuilder {
	e := &discordgo.MessageEmbed{
		Color:       color,
		Title:       title,
		Description: description,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Footer:      &discordgo.MessageEmbedFooter{Text: footerText},
	}
	return &embedBuilder{embed: e, size: utf8.RuneCountInString(title + description + footerText)}
}

func (b *embedBuilder) field(name, value string, inline bool) bool {
	value = truncate(value, maxFieldValue)
	size := utf8.RuneCountInString(name) + utf8.RuneCountInString(value)
	if len(b.embed.Fields) >= maxFields || b.size+size > maxEmbedChars {
		return false
	}
	b.embed.Fields = append(b.embed.Fields, &discordgo.MessageEmbedField{Name: name, Value: value, Inline: inline})
	b.size += size
	return true
}

// chunked adds value split across as many fields as needed.
func (b *embedBuilder) chunked(name, value string) {
	for i, chunk := range splitIntoChunks(value, chunkSize) {
		n := name
		if i > 0 {
			n = continuation
		}
		if !b.field(n, chunk, false) {
			return
		}
	}
}

// BuildTicketEmbed renders an analysis result.
func BuildTicketEmbed(result *models.AnalysisResult) *discordgo.MessageEmbed {
	b := newEmbed(ColorInfo, fmt.Sprintf("Ticket #%d", result.Ticket.ID), "")
	b.embed.URL = result.HelpdeskURL

	email := result.Customer.Email
	if email == "" {
		email = "Unknown"
	}
	b.field("Customer", email, true)
	b.field("Status", nameOr(statusNames[result.Ticket.Status]), true)
	b.field("Priority", nameOr(priorityNames[result.Ticket.Priority]), true)
	b.field("Subject", result.Ticket.Subject, false)

	a := result.Analysis
	if a.ThreadSummary != "" {
		b.field(fmt.Sprintf("Conversation Summary (%d emails)", a.EmailCount), a.ThreadSummary, false)
	}
	if a.LatestCustomerMessage != "" {
		b.field("Latest Customer Message", a.LatestCustomerMessage, false)
	}
	if len(a.Intents) > 0 {
		b.field("Detected Intent", a.Intents.Join(" + "), false)
	}

	responses := result.AgentResponses
	if kb := responses.Knowledge; kb != nil && kb.Success {
		b.chunked("Knowledge Base Answer", kb.Answer)
		if len(kb.Sources) > 0 {
			b.field("Sources", formatSources(kb.Sources), false)
		}
	}

	if p := responses.Product; p != nil {
		if p.Success {
			b.chunked("Product Availability", FormatProduct(p))
		} else {
			b.field("Product Availability", errorOr(p.Error, "Product lookup failed."), false)
		}
	}

	if p := responses.Price; p != nil {
		switch {
		case p.Success && len(p.Results) > 0:
			b.chunked(fmt.Sprintf("Pricing (%d products found)", p.ProductsFound), FormatPrices(p.Results))
			if len(p.Alternatives) > 0 && len(p.Results) < alternativesBelow {
				b.field("Similar Products", alternativeNames(p.Alternatives), false)
			}
		case p.Success && p.ProductsFound == 0:
			b.field("Pricing", "No pricing found in pricelist for this product. Contact sales for a custom quote.", false)
		case !p.Success:
			b.field("Pricing", errorOr(p.Error, "Price lookup failed. Contact sales for a quote."), false)
		}
	}

	if s := result.Synthesis; s != nil && s.Success && s.SuggestedResponse != nil {
		b.chunked("Suggested Reply", *s.SuggestedResponse)
	}

	return b.embed
}

// BuildErrorEmbed renders a failure. ticketID may be empty.
func BuildErrorEmbed(message, ticketID string) *discordgo.MessageEmbed {
	title := "Error"
	if ticketID != "" {
		title = "Error: Ticket #" + ticketID
	}
	return newEmbed(ColorError, title, message).embed
}

// BuildLoadingEmbed is shown while an analysis runs.
func BuildLoadingEmbed(ticketID string) *discordgo.MessageEmbed {
	return newEmbed(ColorLoading,
		fmt.Sprintf("Analyzing Ticket #%s...", ticketID),
		"Fetching ticket data and consulting agents. This may take a few seconds.",
	).embed
}

// BuildHelpEmbed lists the bot's commands.
func BuildHelpEmbed(prefix string) *discordgo.MessageEmbed {
	b := newEmbed(ColorInfo, "AI Ticket Manager - Help", "Available commands for analyzing Freshdesk tickets.")
	b.field(prefix+"ticket <ticket_id>",
		"Analyze a Freshdesk ticket. Fetches ticket details, summarizes the conversation, and provides relevant knowledge base answers.",
		false)
	b.field(prefix+"help", "Show this help message.", false)
	return b.embed
}

func formatSources(sources []models.KnowledgeSource) string {
	lines := make([]string, 0, maxSources)
	for _, s := range firstN(sources, maxSources) {
		title := s.Title
		if title == "" {
			title = "Article #" + s.ID
		}
		lines = append(lines, fmt.Sprintf("[%s](%s)", title, s.URL))
	}
	return strings.Join(lines, "\n")
}

// FormatProduct renders an availability answer as Discord markdown.
func FormatProduct(p *models.ProductResponse) string {
	var lines []string

	if p.SynonymResolved != "" {
		lines = append(lines, fmt.Sprintf("🔍 **Matched:** %q", p.SynonymResolved))
	}
	if p.Found {
		lines = append(lines, "✅ **Available:** Yes")
		if p.ColorAvailable {
			lines = append(lines, "🎨 Requested color: Available")
		} else {
			lines = append(lines, "⚠️ Requested color: Not available (check alternatives)")
		}
	} else {
		lines = append(lines, "❌ **Available:** No matching products found")
	}

	if len(p.Products) > 0 {
		lines = append(lines, "", fmt.Sprintf("📦 **Products found (%d):**", len(p.Products)))
		for i, m := range firstN(p.Products, maxProducts) {
			lines = append(lines, fmt.Sprintf("%d. **%s**", i+1, m.Name))
			if m.URL != "" {
				lines = append(lines, "   🔗 "+m.URL)
			}
			lines = append(lines, sourcingLines(m.Sourcing)...)
		}
	}

	if p.Summary != "" {
		lines = append(lines, "", "💬 "+p.Summary)
	}

	if len(lines) == 0 {
		return "No availability information found."
	}
	return strings.Join(lines, "\n")
}

func sourcingLines(s models.Sourcing) []string {
	var lines []string
	switch s.Origin {
	case models.SourcingChina:
		lines = append(lines, "   🏭 **Source: CHINA**")
		if s.MOQ > 0 {
			lines = append(lines, fmt.Sprintf("   📦 MOQ: %d pcs", s.MOQ))
		}
		var shipping []string
		if s.Air {
			shipping = append(shipping, "Air")
		}
		if s.Sea {
			shipping = append(shipping, "Sea")
		}
		if len(shipping) > 0 {
			lines = append(lines, "   ✈️ Shipping: "+strings.Join(shipping, " / "))
		}
		if s.Reason != "" {
			lines = append(lines, "   💡 "+s.Reason)
		}
	case models.SourcingLocal:
		header := "   🏭 **Source: LOCAL**"
		if s.Supplier != "" {
			header += " (" + s.Supplier + ")"
		}
		lines = append(lines, header)
		if s.MOQ > 0 {
			lines = append(lines, fmt.Sprintf("   📦 MOQ: %d pcs", s.MOQ))
		}
		if s.LeadTime != "" {
			lines = append(lines, "   ⏱️ Lead time: "+s.LeadTime)
		}
	case models.SourcingOther:
		lines = append(lines, "   🏭 Source: "+strings.ToUpper(s.Label))
		if s.MOQ > 0 {
			lines = append(lines, fmt.Sprintf("   📦 MOQ: %d pcs", s.MOQ))
		}
	}
	return lines
}

// FormatPrices renders up to five pricelist matches as Discord markdown.
func FormatPrices(results []models.PriceResult) string {
	if len(results) == 0 {
		return "No products found matching your query."
	}

	blocks := make([]string, 0, maxPriceResults)
	for _, r := range firstN(results, maxPriceResults) {
		lines := []string{"**" + r.ProductName + "**"}
		if r.Dimensions != "" {
			lines = append(lines, "📐 "+r.Dimensions)
		}
		if r.PrintOption != "" {
			lines = append(lines, "🖨️ "+r.PrintOption)
		}
		if q := r.Pricing; q != nil {
			lines = append(lines, fmt.Sprintf("💰 **%d pcs @ %s %.2f/pc = %s %.2f**",
				q.RequestedQuantity, q.Currency, q.UnitPrice, q.Currency, q.TotalPrice))
		}
		if r.MOQ != nil {
			lines = append(lines, fmt.Sprintf("📦 MOQ: %d pcs @ $%.2f/pc", r.MOQ.Quantity, r.MOQ.UnitPrice))
		}
		if lt := r.LeadTime; lt != nil {
			lines = append(lines, fmt.Sprintf("⏱️ %d-%d working days (%s)", lt.DaysMin, lt.DaysMax, lt.Type))
		}
		if len(r.Tiers) > 1 {
			tiers := make([]string, 0, maxPriceTiers)
			for _, t := range firstN(r.Tiers, maxPriceTiers) {
				tiers = append(tiers, fmt.Sprintf("%d+ @ $%.2f", t.Quantity, t.UnitPrice))
			}
			lines = append(lines, "📊 "+strings.Join(tiers, " | "))
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

func alternativeNames(alts []models.PriceResult) string {
	names := make([]string, 0, maxAlternatives)
	for _, a := range firstN(alts, maxAlternatives) {
		names = append(names, a.ProductName)
	}
	return strings.Join(names, ", ")
}

// truncate cuts s to max characters, ending with "..." when cut. Empty
// values render as "N/A" since Discord rejects empty fields.
func truncate(s string, max int) string {
	if s == "" {
		return "N/A"
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

// splitIntoChunks splits s into pieces of at most max characters,
// preferring to break at a newline, then at a space, when that keeps the
// piece at least half full.
func splitIntoChunks(s string, max int) []string {
	if s == "" {
		return []string{"N/A"}
	}

	var chunks []string
	remaining := []rune(s)
	for len(remaining) > max {
		split := lastIndex(remaining[:max], '\n')
		if split < max/2 {
			split = lastIndex(remaining[:max], ' ')
		}
		if split < max/2 {
			split = max
		}
		chunks = append(chunks, string(remaining[:split]))
		remaining = []rune(strings.TrimSpace(string(remaining[split:])))
	}
	if len(remaining) > 0 {
		chunks = append(chunks, string(remaining))
	}
	return chunks
}

func lastIndex(runes []rune, r rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == r {
			return i
		}
	}
	return -1
}

func nameOr(name string) string {
	if name == "" {
		return "Unknown"
	}
	return name
}

func errorOr(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}

func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
