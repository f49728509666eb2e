package agents

import (
	"encoding/json"

	"github.com/tidwall/gjson"

	"github.com/ShayCichocki/ticketpilot/pkg/models"
)

// UnknownProductName names a match the agent returned without a name.
const UnknownProductName = "Unknown"

// parseMatch turns one entry of an agent's matchingProducts list into a
// ProductMatch. Entries come either flat or wrapped as
// {product: {...}, recommendation: {...}}.
func parseMatch(item gjson.Result) models.ProductMatch {
	product := item
	if p := item.Get("product"); p.IsObject() {
		product = p
	}

	name := firstString(product, "name", "product_name")
	if name == "" {
		name = firstString(item, "name", "product_name")
	}
	if name == "" {
		name = UnknownProductName
	}

	url := product.Get("url").String()
	if url == "" {
		url = item.Get("url").String()
	}

	return models.ProductMatch{
		Name:     name,
		URL:      url,
		Sourcing: normalizeSourcing(item.Get("recommendation"), product.Get("sourcing")),
		Raw:      json.RawMessage(item.Raw),
	}
}

// normalizeSourcing merges the agent's recommendation with the product's
// sourcing table. Recommendation values win over the table.
func normalizeSourcing(rec, sourcing gjson.Result) models.Sourcing {
	source := rec.Get("source").String()
	china := sourcing.Get("china")
	local := sourcing.Get("local")

	switch {
	case source == string(models.SourcingChina):
		return models.Sourcing{
			Origin: models.SourcingChina,
			MOQ:    firstInt(rec.Get("moq"), china.Get("moq")),
			Air:    china.Get("air").Bool(),
			Sea:    china.Get("sea").Bool(),
			Reason: rec.Get("reason").String(),
		}
	case source == string(models.SourcingLocal) || local.Exists():
		return models.Sourcing{
			Origin:   models.SourcingLocal,
			Supplier: firstNonEmpty(rec.Get("supplier"), local.Get("supplier")),
			MOQ:      firstInt(rec.Get("moq"), local.Get("moq")),
			LeadTime: firstNonEmpty(rec.Get("leadTime"), local.Get("leadTime")),
			Reason:   rec.Get("reason").String(),
		}
	case source != "":
		return models.Sourcing{
			Origin: models.SourcingOther,
			Label:  source,
			MOQ:    int(rec.Get("moq").Int()),
			Reason: rec.Get("reason").String(),
		}
	}
	return models.Sourcing{}
}

func firstInt(values ...gjson.Result) int {
	for _, v := range values {
		if n := v.Int(); n > 0 {
			return int(n)
		}
	}
	return 0
}

func firstNonEmpty(values ...gjson.Result) string {
	for _, v := range values {
		if s := v.String(); s != "" {
			return s
		}
	}
	return ""
}
