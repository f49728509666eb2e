package triage

import (
	"strings"

	"github.com/ShayCichocki/ticketpilot/internal/agents"
	"github.com/ShayCichocki/ticketpilot/pkg/models"
)

// urgentKeywords mark a rush order in the customer's message.
var urgentKeywords = []string{"urgent", "rush", "asap", "immediately", "quickly", "fast", "express"}

// baseQuery is the customer's latest message, or the subject when the
// classifier found none.
func baseQuery(cls *models.Classification, subject string) string {
	if cls.LatestCustomerMessage != "" {
		return cls.LatestCustomerMessage
	}
	return subject
}

// BuildKnowledgeQuery prefixes the customer's question with the catalog
// names of the products it mentions.
func BuildKnowledgeQuery(cls *models.Classification, subject string, syn models.SynonymResolution) string {
	query := baseQuery(cls, subject)
	if products := CanonicalNames(cls.Entities.Products, syn); len(products) > 0 {
		query = strings.Join(products, ", ") + ": " + query
	}
	return query
}

// BuildProductQuery reconstructs an availability query from the
// extracted products, customization and quantity.
func BuildProductQuery(cls *models.Classification, subject string, syn models.SynonymResolution) string {
	e := cls.Entities

	var parts []string
	if products := CanonicalNames(e.Products, syn); len(products) > 0 {
		parts = append(parts, strings.Join(products, " "))
	}
	if len(e.Customization) > 0 {
		parts = append(parts, strings.Join(e.Customization, " "))
	}
	if qty := e.Quantity.Token(); qty != "" {
		parts = append(parts, qty)
	}

	if len(parts) == 0 {
		return baseQuery(cls, subject)
	}
	return strings.Join(parts, " ")
}

// BuildPriceQuery reconstructs a pricelist query. productNames, when
// given, are catalog names confirmed by the product agent and take
// precedence over the synonym map.
func BuildPriceQuery(cls *models.Classification, subject string, syn models.SynonymResolution, productNames []string) string {
	e := cls.Entities

	names := DedupeTerms(productNames)
	if len(names) == 0 {
		names = CanonicalNames(e.Products, syn)
	}

	var parts []string
	if len(names) > 0 {
		parts = append(parts, strings.Join(names, " "))
	}
	if qty := e.Quantity.Token(); qty != "" {
		parts = append(parts, qty)
	}
	if len(e.Customization) > 0 {
		parts = append(parts, strings.Join(e.Customization, " "))
	}

	if len(parts) == 0 {
		return baseQuery(cls, subject)
	}
	return strings.Join(parts, " ")
}

// BuildProductContext extracts the numeric quantity and urgency for the
// product agent. Free-text quantities are left for the agent to parse.
func BuildProductContext(cls *models.Classification) agents.ProductContext {
	var pctx agents.ProductContext
	if cls.Entities.Quantity.IsNumeric() {
		if n, ok := cls.Entities.Quantity.Number(); ok {
			pctx.Quantity = &n
		}
	}

	msg := strings.ToLower(cls.LatestCustomerMessage)
	for _, kw := range urgentKeywords {
		if strings.Contains(msg, kw) {
			pctx.Urgent = true
			break
		}
	}
	return pctx
}
