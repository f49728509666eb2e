package agents

import (
	"context"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/ShayCichocki/ticketpilot/internal/logging"
	"github.com/ShayCichocki/ticketpilot/pkg/models"
)

// DefaultPriceTimeout bounds pricelist requests.
const DefaultPriceTimeout = 30 * time.Second

// PriceClient queries the pricelist agent.
type PriceClient struct {
	ep endpoint
}

// NewPriceClient creates a price agent client.
func NewPriceClient(cfg Config) *PriceClient {
	return &PriceClient{
		ep: newEndpoint("price", cfg, DefaultPriceTimeout, map[string]string{
			"Authorization": "Bearer " + cfg.APIKey,
		}),
	}
}

// Query looks up pricing for a free-text product query.
func (c *PriceClient) Query(ctx context.Context, text string) (*models.PriceResponse, error) {
	c.ep.logger.Info("querying price agent", zap.String("query", logging.Preview(text, 100)))

	reply, err := c.ep.post(ctx, "/api/price/query", map[string]string{"query": text})
	if err != nil {
		return nil, err
	}

	if !reply.Get("success").Bool() {
		c.ep.logger.Warn("price agent returned unsuccessful response", zap.String("reply", logging.Preview(reply.Raw, 500)))
		return &models.PriceResponse{
			Success:      false,
			Error:        errorOr(reply, "Price lookup failed"),
			Results:      []models.PriceResult{},
			Alternatives: []models.PriceResult{},
		}, nil
	}

	data := reply.Get("data")
	resp := &models.PriceResponse{
		Success:       true,
		Results:       parsePriceResults(data.Get("results")),
		Alternatives:  parsePriceResults(data.Get("alternatives")),
		ProductsFound: int(data.Get("products_found").Int()),
	}
	c.ep.logger.Info("price agent answered", zap.Int("products_found", resp.ProductsFound))
	return resp, nil
}

func parsePriceResults(list gjson.Result) []models.PriceResult {
	results := []models.PriceResult{}
	for _, r := range list.Array() {
		results = append(results, parsePriceResult(r))
	}
	return results
}

func parsePriceResult(r gjson.Result) models.PriceResult {
	res := models.PriceResult{
		ProductName: r.Get("product_name").String(),
		Dimensions:  r.Get("dimensions").String(),
		PrintOption: r.Get("print_option").String(),
	}

	if p := r.Get("pricing"); p.IsObject() {
		res.Pricing = &models.PriceQuote{
			RequestedQuantity: int(p.Get("requested_quantity").Int()),
			UnitPrice:         p.Get("unit_price").Float(),
			TotalPrice:        p.Get("total_price").Float(),
			Currency:          p.Get("currency").String(),
		}
	}
	if m := r.Get("moq"); m.IsObject() {
		res.MOQ = &models.PriceMOQ{
			Quantity:  int(m.Get("quantity").Int()),
			UnitPrice: m.Get("unit_price").Float(),
		}
	}
	if lt := r.Get("lead_time"); lt.IsObject() {
		res.LeadTime = &models.LeadTime{
			DaysMin: int(lt.Get("days_min").Int()),
			DaysMax: int(lt.Get("days_max").Int()),
			Type:    lt.Get("type").String(),
		}
	}
	for _, t := range r.Get("all_tiers").Array() {
		res.Tiers = append(res.Tiers, models.PriceTier{
			Quantity:  int(t.Get("quantity").Int()),
			UnitPrice: t.Get("unit_price").Float(),
		})
	}
	return res
}
