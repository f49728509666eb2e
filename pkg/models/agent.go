package models

import "encoding/json"

// AgentKind names one of the downstream lookup agents.
type AgentKind string

const (
	// AgentKnowledge is the knowledge base agent.
	AgentKnowledge AgentKind = "knowledge"
	// AgentProduct is the product availability agent.
	AgentProduct AgentKind = "product"
	// AgentPrice is the pricelist agent.
	AgentPrice AgentKind = "price"
	// AgentArtwork is the artwork agent. It has no backend yet.
	AgentArtwork AgentKind = "artwork"
)

// Valid returns true if the kind is a known value.
func (k AgentKind) Valid() bool {
	switch k {
	case AgentKnowledge, AgentProduct, AgentPrice, AgentArtwork:
		return true
	default:
		return false
	}
}

// KnowledgeSource is an article the knowledge agent based its answer on.
type KnowledgeSource struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// KnowledgeResponse is the knowledge base agent's answer.
type KnowledgeResponse struct {
	Success       bool              `json:"success"`
	Error         string            `json:"error,omitempty"`
	Answer        string            `json:"answer"`
	Sources       []KnowledgeSource `json:"sources"`
	SearchTerms   []string          `json:"searchTerms,omitempty"`
	ArticlesFound int               `json:"articlesFound"`
	Confidence    float64           `json:"confidence"`
}

// SourcingOrigin tells where a product is sourced from.
type SourcingOrigin string

const (
	// SourcingChina is overseas production with air or sea freight.
	SourcingChina SourcingOrigin = "china"
	// SourcingLocal is a local supplier.
	SourcingLocal SourcingOrigin = "local"
	// SourcingOther is any other source the agent reports.
	SourcingOther SourcingOrigin = "other"
)

// Sourcing is the normalized sourcing recommendation for a product match.
// A zero Origin means the agent gave no sourcing data.
type Sourcing struct {
	Origin SourcingOrigin `json:"origin,omitempty"`
	// Label is the agent's own source name, kept for SourcingOther.
	Label    string `json:"label,omitempty"`
	MOQ      int    `json:"moq,omitempty"`
	LeadTime string `json:"leadTime,omitempty"`
	Supplier string `json:"supplier,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Air      bool   `json:"air,omitempty"`
	Sea      bool   `json:"sea,omitempty"`
}

// ProductMatch is a catalog product the product agent matched.
type ProductMatch struct {
	Name     string   `json:"name"`
	URL      string   `json:"url,omitempty"`
	Sourcing Sourcing `json:"sourcing"`
	// Raw is the match exactly as the agent returned it.
	Raw json.RawMessage `json:"raw,omitempty"`
}

// ProductSubResult is the per-product part of a multi-product lookup.
type ProductSubResult struct {
	Query    string         `json:"query,omitempty"`
	Found    bool           `json:"found"`
	Products []ProductMatch `json:"products"`
	Summary  string         `json:"summary,omitempty"`
}

// ProductResponse is the product agent's availability answer. Single
// lookups fill Products directly; multi lookups fill Results and
// aggregate every sub-result's matches into Products.
type ProductResponse struct {
	Success         bool               `json:"success"`
	Error           string             `json:"error,omitempty"`
	MultiProduct    bool               `json:"multiProduct"`
	Query           string             `json:"query,omitempty"`
	SynonymResolved string             `json:"synonymResolved,omitempty"`
	Found           bool               `json:"found"`
	ColorAvailable  bool               `json:"colorAvailable"`
	Products        []ProductMatch     `json:"products"`
	Results         []ProductSubResult `json:"results,omitempty"`
	Summary         string             `json:"summary,omitempty"`
	TotalRequested  int                `json:"totalProductsRequested,omitempty"`
	TotalFound      int                `json:"totalProductsFound,omitempty"`
}

// PriceQuote is the price for the requested quantity.
type PriceQuote struct {
	RequestedQuantity int     `json:"requestedQuantity"`
	UnitPrice         float64 `json:"unitPrice"`
	TotalPrice        float64 `json:"totalPrice"`
	Currency          string  `json:"currency"`
}

// PriceMOQ is the minimum order quantity and its unit price.
type PriceMOQ struct {
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// LeadTime is a production lead time range in working days.
type LeadTime struct {
	DaysMin int    `json:"daysMin"`
	DaysMax int    `json:"daysMax"`
	Type    string `json:"type,omitempty"`
}

// PriceTier is one quantity break in a pricelist.
type PriceTier struct {
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// PriceResult is one pricelist product matching the query.
type PriceResult struct {
	ProductName string      `json:"productName"`
	Dimensions  string      `json:"dimensions,omitempty"`
	PrintOption string      `json:"printOption,omitempty"`
	Pricing     *PriceQuote `json:"pricing,omitempty"`
	MOQ         *PriceMOQ   `json:"moq,omitempty"`
	LeadTime    *LeadTime   `json:"leadTime,omitempty"`
	Tiers       []PriceTier `json:"tiers,omitempty"`
}

// PriceResponse is the price agent's answer.
type PriceResponse struct {
	Success       bool          `json:"success"`
	Error         string        `json:"error,omitempty"`
	Results       []PriceResult `json:"results"`
	Alternatives  []PriceResult `json:"alternatives"`
	ProductsFound int           `json:"productsFound"`
}

// ArtworkResponse is the placeholder returned for artwork requests.
type ArtworkResponse struct {
	Success        bool   `json:"success"`
	NotImplemented bool   `json:"notImplemented"`
	Message        string `json:"message"`
}

// AgentResponses collects the answers of every agent queried for a ticket.
// A nil entry means the agent was not queried.
type AgentResponses struct {
	Knowledge *KnowledgeResponse `json:"knowledge"`
	Product   *ProductResponse   `json:"product"`
	Price     *PriceResponse     `json:"price"`
	Artwork   *ArtworkResponse   `json:"artwork"`
}

// Queried returns the kinds of the agents that have an entry.
func (r AgentResponses) Queried() []AgentKind {
	var kinds []AgentKind
	if r.Knowledge != nil {
		kinds = append(kinds, AgentKnowledge)
	}
	if r.Product != nil {
		kinds = append(kinds, AgentProduct)
	}
	if r.Price != nil {
		kinds = append(kinds, AgentPrice)
	}
	if r.Artwork != nil {
		kinds = append(kinds, AgentArtwork)
	}
	return kinds
}
