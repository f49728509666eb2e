package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Intent is a classification label describing what the customer wants.
// A ticket may carry several intents at once.
type Intent string

const (
	// IntentKnowledge covers product information, specifications, processes and policies.
	IntentKnowledge Intent = "KNOWLEDGE"
	// IntentPrice covers pricing, quotes, costs and discounts.
	IntentPrice Intent = "PRICE"
	// IntentAvailability covers stock, sourcing and lead times.
	IntentAvailability Intent = "AVAILABILITY"
	// IntentArtwork covers design work, artwork files and mockups.
	IntentArtwork Intent = "ARTWORK"
	// IntentOther is used when nothing else applies.
	IntentOther Intent = "OTHER"
)

// AllIntents lists every known intent in display order.
var AllIntents = []Intent{IntentKnowledge, IntentPrice, IntentAvailability, IntentArtwork, IntentOther}

// Valid returns true if the intent is a known value.
func (i Intent) Valid() bool {
	switch i {
	case IntentKnowledge, IntentPrice, IntentAvailability, IntentArtwork, IntentOther:
		return true
	default:
		return false
	}
}

// ParseIntent normalizes a label produced by the LLM. Unknown labels map
// to IntentOther.
func ParseIntent(s string) Intent {
	intent := Intent(strings.ToUpper(strings.TrimSpace(s)))
	if !intent.Valid() {
		return IntentOther
	}
	return intent
}

// Intents is an ordered set of intents.
type Intents []Intent

// Has reports whether the set contains the given intent.
func (is Intents) Has(intent Intent) bool {
	for _, i := range is {
		if i == intent {
			return true
		}
	}
	return false
}

// Strings returns the intents as plain strings.
func (is Intents) Strings() []string {
	out := make([]string, len(is))
	for i, intent := range is {
		out[i] = string(intent)
	}
	return out
}

// Join renders the intents separated by sep.
func (is Intents) Join(sep string) string {
	return strings.Join(is.Strings(), sep)
}

// Quantity is the requested order quantity as extracted by the LLM. It may
// arrive as a JSON number (500) or as free text ("5000pcs", "1,500 pieces").
type Quantity struct {
	raw     string
	numeric bool
}

// NewQuantity returns a numeric quantity.
func NewQuantity(n int) Quantity {
	return Quantity{raw: strconv.Itoa(n), numeric: true}
}

// QuantityText returns a free-text quantity.
func QuantityText(s string) Quantity {
	return Quantity{raw: strings.TrimSpace(s)}
}

// IsZero reports whether no quantity was extracted.
func (q Quantity) IsZero() bool {
	return q.raw == ""
}

// IsNumeric reports whether the quantity arrived as a JSON number.
func (q Quantity) IsNumeric() bool {
	return q.numeric
}

// String returns the quantity as extracted.
func (q Quantity) String() string {
	return q.raw
}

// Number returns the leading numeric value of the quantity, ignoring
// thousands separators. ok is false when no digits lead the value.
func (q Quantity) Number() (n int, ok bool) {
	var digits strings.Builder
scan:
	for _, r := range strings.TrimSpace(q.raw) {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case r == ',' && digits.Len() > 0:
			continue
		default:
			break scan
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0, false
	}
	return n, true
}

// Token returns the quantity with a "pcs" unit suffix appended when the
// value does not already carry a unit.
func (q Quantity) Token() string {
	if q.IsZero() {
		return ""
	}
	lower := strings.ToLower(q.raw)
	if strings.Contains(lower, "pcs") || strings.Contains(lower, "piece") {
		return q.raw
	}
	return q.raw + " pcs"
}

// MarshalJSON encodes numeric quantities as numbers, text as strings and
// an empty quantity as null.
func (q Quantity) MarshalJSON() ([]byte, error) {
	if q.IsZero() {
		return []byte("null"), nil
	}
	if q.numeric {
		return []byte(q.raw), nil
	}
	return json.Marshal(q.raw)
}

// UnmarshalJSON accepts a number, a string or null.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*q = Quantity{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*q = QuantityText(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("quantity must be a number or string: %w", err)
	}
	*q = Quantity{raw: strconv.FormatFloat(f, 'f', -1, 64), numeric: true}
	return nil
}

// Entities holds the structured details the LLM extracted from the thread.
type Entities struct {
	// Products lists product terms as the customer wrote them.
	Products []string `json:"products"`
	// Quantity is the requested quantity, if any.
	Quantity Quantity `json:"quantity"`
	// Customization lists print methods, finishes and similar details.
	Customization []string `json:"customization"`
	// Colors lists colors the customer mentioned.
	Colors []string `json:"colors,omitempty"`
	// Other lists anything else worth keeping.
	Other []string `json:"other"`
}

// Empty reports whether nothing was extracted.
func (e Entities) Empty() bool {
	return len(e.Products) == 0 && e.Quantity.IsZero() &&
		len(e.Customization) == 0 && len(e.Colors) == 0 && len(e.Other) == 0
}

// Classification is the LLM's structured reading of a ticket thread.
type Classification struct {
	// ThreadSummary is a short summary of the whole conversation.
	ThreadSummary string `json:"threadSummary"`
	// LatestCustomerMessage is the customer's most recent request.
	LatestCustomerMessage string `json:"latestCustomerMessage"`
	// Intents lists what the customer wants.
	Intents Intents `json:"intents"`
	// Entities holds extracted products, quantity and details.
	Entities Entities `json:"extractedEntities"`
	// Confidence is the classifier's confidence in [0,1].
	Confidence float64 `json:"confidence"`
}
