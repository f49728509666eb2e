package models

import (
	"encoding/json"
	"testing"
)

func TestParseIntent(t *testing.T) {
	tests := []struct {
		in   string
		want Intent
	}{
		{"PRICE", IntentPrice},
		{" availability ", IntentAvailability},
		{"Knowledge", IntentKnowledge},
		{"artwork", IntentArtwork},
		{"SHIPPING", IntentOther},
		{"", IntentOther},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseIntent(tt.in); got != tt.want {
				t.Errorf("ParseIntent(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIntents_HasAndJoin(t *testing.T) {
	is := Intents{IntentPrice, IntentAvailability}

	if !is.Has(IntentPrice) || is.Has(IntentArtwork) {
		t.Errorf("Has gave wrong answer for %v", is)
	}
	if got := is.Join(", "); got != "PRICE, AVAILABILITY" {
		t.Errorf("Join = %q", got)
	}
}

func TestQuantity_Number(t *testing.T) {
	tests := []struct {
		name   string
		q      Quantity
		want   int
		wantOK bool
	}{
		{"numeric", NewQuantity(500), 500, true},
		{"unit suffix", QuantityText("5000pcs"), 5000, true},
		{"thousands separator", QuantityText("1,500 pieces"), 1500, true},
		{"leading text", QuantityText("about 200"), 0, false},
		{"empty", Quantity{}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.q.Number()
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Number() = (%d, %v), want (%d, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestQuantity_Token(t *testing.T) {
	tests := []struct {
		q    Quantity
		want string
	}{
		{NewQuantity(500), "500 pcs"},
		{QuantityText("5000pcs"), "5000pcs"},
		{QuantityText("200 pieces"), "200 pieces"},
		{QuantityText("a few"), "a few pcs"},
		{Quantity{}, ""},
	}

	for _, tt := range tests {
		if got := tt.q.Token(); got != tt.want {
			t.Errorf("Token(%q) = %q, want %q", tt.q, got, tt.want)
		}
	}
}

func TestQuantity_JSON(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantString  string
		wantNumeric bool
		wantOut     string
	}{
		{"number", `500`, "500", true, `500`},
		{"string", `"5000pcs"`, "5000pcs", false, `"5000pcs"`},
		{"null", `null`, "", false, `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q Quantity
			if err := json.Unmarshal([]byte(tt.input), &q); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if q.String() != tt.wantString || q.IsNumeric() != tt.wantNumeric {
				t.Errorf("got (%q, numeric=%v), want (%q, numeric=%v)", q.String(), q.IsNumeric(), tt.wantString, tt.wantNumeric)
			}
			out, err := json.Marshal(q)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			if string(out) != tt.wantOut {
				t.Errorf("Marshal = %s, want %s", out, tt.wantOut)
			}
		})
	}

	var q Quantity
	if err := json.Unmarshal([]byte(`true`), &q); err == nil {
		t.Error("expected error for boolean quantity")
	}
}

func TestClassification_DecodesLLMShape(t *testing.T) {
	raw := `{
		"threadSummary": "Wants mugs",
		"latestCustomerMessage": "Need 100 mugs",
		"intents": ["PRICE"],
		"extractedEntities": {"products": ["mugs"], "quantity": "100 pcs", "customization": ["logo"], "other": []},
		"confidence": 0.8
	}`

	var c Classification
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if c.Entities.Quantity.String() != "100 pcs" || c.Entities.Products[0] != "mugs" {
		t.Errorf("entities = %+v", c.Entities)
	}
	if c.Entities.Empty() {
		t.Error("entities should not be empty")
	}
	if !(Entities{}).Empty() {
		t.Error("zero entities should be empty")
	}
}
