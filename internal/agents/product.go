package agents

import (
	"context"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/ShayCichocki/ticketpilot/internal/logging"
	"github.com/ShayCichocki/ticketpilot/pkg/models"
)

// Default timeouts for the product agent.
const (
	DefaultProductTimeout = 30 * time.Second
	DefaultResolveTimeout = 10 * time.Second
)

// ProductContext carries order details for an availability lookup.
type ProductContext struct {
	// Quantity is the requested quantity when the customer gave a plain
	// number. nil lets the agent parse it from the query text.
	Quantity *int
	// Urgent is set when the customer asked for a rush order.
	Urgent bool
}

// ProductConfig configures a ProductClient.
type ProductConfig struct {
	Config
	// ResolveTimeout bounds synonym resolution requests.
	ResolveTimeout time.Duration
}

// ProductClient queries the product availability agent.
type ProductClient struct {
	ep      endpoint
	resolve endpoint
}

// NewProductClient creates a product agent client.
func NewProductClient(cfg ProductConfig) *ProductClient {
	headers := map[string]string{"X-API-Key": cfg.APIKey}

	resolveCfg := cfg.Config
	resolveCfg.Timeout = cfg.ResolveTimeout

	return &ProductClient{
		ep:      newEndpoint("product", cfg.Config, DefaultProductTimeout, headers),
		resolve: newEndpoint("product", resolveCfg, DefaultResolveTimeout, headers),
	}
}

type availabilityRequest struct {
	Query    string `json:"query"`
	Quantity *int   `json:"quantity"`
	Urgent   bool   `json:"urgent"`
}

type multiAvailabilityRequest struct {
	Query  string `json:"query"`
	Urgent bool   `json:"urgent"`
}

// Query looks up availability and sourcing. Queries naming several
// products go to the multi-product endpoint.
func (c *ProductClient) Query(ctx context.Context, text string, pctx ProductContext) (*models.ProductResponse, error) {
	c.ep.logger.Info("querying product agent", zap.String("query", logging.Preview(text, 100)))

	if IsMultiProductQuery(text) {
		c.ep.logger.Info("detected multi-product query, using multi endpoint")
		return c.queryMulti(ctx, text, pctx)
	}
	return c.querySingle(ctx, text, pctx)
}

func (c *ProductClient) querySingle(ctx context.Context, text string, pctx ProductContext) (*models.ProductResponse, error) {
	reply, err := c.ep.post(ctx, "/api/product/availability", availabilityRequest{
		Query:    text,
		Quantity: pctx.Quantity,
		Urgent:   pctx.Urgent,
	})
	if err != nil {
		return nil, err
	}

	if !reply.Get("success").Bool() {
		c.ep.logger.Warn("product agent returned unsuccessful response", zap.String("reply", logging.Preview(reply.Raw, 500)))
		return &models.ProductResponse{
			Success:  false,
			Error:    errorOr(reply, "Product lookup failed"),
			Products: []models.ProductMatch{},
		}, nil
	}

	data := reply.Get("data")
	availability := data.Get("availability")
	products := parseMatches(availability.Get("matchingProducts"))

	c.ep.logger.Info("product agent answered",
		zap.Bool("found", availability.Get("found").Bool()),
		zap.Int("products", len(products)),
	)
	return &models.ProductResponse{
		Success:         true,
		Query:           data.Get("query").String(),
		SynonymResolved: data.Get("synonymResolved").String(),
		Found:           availability.Get("found").Bool(),
		ColorAvailable:  availability.Get("colorAvailable").Bool(),
		Products:        products,
		Summary:         data.Get("summary").String(),
	}, nil
}

func (c *ProductClient) queryMulti(ctx context.Context, text string, pctx ProductContext) (*models.ProductResponse, error) {
	reply, err := c.ep.post(ctx, "/api/product/availability-multi", multiAvailabilityRequest{
		Query:  text,
		Urgent: pctx.Urgent,
	})
	if err != nil {
		return nil, err
	}

	if !reply.Get("success").Bool() {
		c.ep.logger.Warn("product agent multi returned unsuccessful response", zap.String("reply", logging.Preview(reply.Raw, 500)))
		return &models.ProductResponse{
			Success:      false,
			Error:        errorOr(reply, "Product lookup failed"),
			MultiProduct: true,
			Products:     []models.ProductMatch{},
			Results:      []models.ProductSubResult{},
		}, nil
	}

	data := reply.Get("data")
	var (
		results  = []models.ProductSubResult{}
		all      = []models.ProductMatch{}
		anyFound bool
	)
	for _, r := range data.Get("results").Array() {
		availability := r.Get("availability")
		matches := parseMatches(availability.Get("matchingProducts"))
		found := availability.Get("found").Bool()
		if found {
			anyFound = true
		}
		all = append(all, matches...)
		results = append(results, models.ProductSubResult{
			Query:    firstString(r, "query", "parsed.product"),
			Found:    found,
			Products: matches,
			Summary:  r.Get("summary").String(),
		})
	}

	requested := int(data.Get("totalProductsRequested").Int())
	if requested == 0 {
		requested = len(results)
	}
	totalFound := int(data.Get("totalProductsFound").Int())
	if totalFound == 0 && anyFound {
		totalFound = len(all)
	}

	c.ep.logger.Info("product agent (multi) answered",
		zap.Bool("found", anyFound),
		zap.Int("products", len(all)),
		zap.Int("queries", len(results)),
	)
	return &models.ProductResponse{
		Success:        true,
		MultiProduct:   true,
		Query:          data.Get("query").String(),
		Found:          anyFound,
		Products:       all,
		Results:        results,
		Summary:        data.Get("combinedSummary").String(),
		TotalRequested: requested,
		TotalFound:     totalFound,
	}, nil
}

func parseMatches(list gjson.Result) []models.ProductMatch {
	matches := []models.ProductMatch{}
	for _, item := range list.Array() {
		matches = append(matches, parseMatch(item))
	}
	return matches
}

// Resolution is one term resolved by the product agent.
type Resolution struct {
	Input         string
	CanonicalName string
	Confidence    string
	Alternates    []string
	Category      *string
}

// ResolveReply is the product agent's answer to a synonym lookup.
type ResolveReply struct {
	Success     bool
	Error       string
	Resolutions []Resolution
}

// Resolve maps customer product terms to catalog names.
func (c *ProductClient) Resolve(ctx context.Context, terms []string) (*ResolveReply, error) {
	c.resolve.logger.Info("resolving synonyms", zap.Strings("terms", terms))

	reply, err := c.resolve.post(ctx, "/api/product/resolve", map[string][]string{"terms": terms})
	if err != nil {
		return nil, err
	}

	if !reply.Get("success").Bool() {
		return &ResolveReply{Success: false, Error: errorOr(reply, "synonym resolution failed")}, nil
	}

	out := &ResolveReply{Success: true}
	for _, r := range reply.Get("resolutions").Array() {
		res := Resolution{
			Input:         r.Get("input").String(),
			CanonicalName: r.Get("canonicalName").String(),
			Confidence:    r.Get("confidence").String(),
			Alternates:    stringsOf(r.Get("alternates")),
		}
		if cat := r.Get("category"); cat.Type == gjson.String && cat.Str != "" {
			category := cat.Str
			res.Category = &category
		}
		out.Resolutions = append(out.Resolutions, res)
	}
	return out, nil
}
