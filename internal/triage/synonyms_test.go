package triage

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/ShayCichocki/ticketpilot/internal/agents"
	"github.com/ShayCichocki/ticketpilot/pkg/models"
)

func keys(res models.SynonymResolution) []string {
	out := make([]string, 0, len(res))
	for k := range res {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func TestSynonymResolver_KeySetMatchesInput(t *testing.T) {
	agent := &fakeSynonyms{reply: &agents.ResolveReply{
		Success: true,
		Resolutions: []agents.Resolution{
			{Input: "tote", CanonicalName: "Canvas Tote Bag", Confidence: "exact"},
			{Input: "thingamajig", CanonicalName: ""},
			{Input: "never asked", CanonicalName: "Ghost Product"},
		},
	}}
	r := NewSynonymResolver(agent, nil)

	res := r.Resolve(context.Background(), []string{"tote", " thingamajig ", "tote", "", "mug"})

	if got, want := keys(res), []string{"mug", "thingamajig", "tote"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	if len(agent.calls) != 1 {
		t.Errorf("agent calls = %d, want 1", len(agent.calls))
	}
	if !reflect.DeepEqual(agent.calls[0], []string{"tote", "thingamajig", "mug"}) {
		t.Errorf("terms sent = %v", agent.calls[0])
	}

	if e := res["tote"]; e.Canonical != "Canvas Tote Bag" || e.Confidence != "exact" {
		t.Errorf("tote = %+v", e)
	}
	if e := res["thingamajig"]; e.Canonical != "thingamajig" || e.Confidence != models.SynonymNotFound {
		t.Errorf("thingamajig = %+v", e)
	}
	if e := res["mug"]; e.Canonical != "mug" || e.Confidence != models.SynonymNotFound {
		t.Errorf("mug = %+v", e)
	}
}

func TestSynonymResolver_Fallbacks(t *testing.T) {
	tests := []struct {
		name  string
		agent *fakeSynonyms
		want  string
	}{
		{"transport error", &fakeSynonyms{err: errors.New("connection refused")}, models.SynonymError},
		{"unsuccessful reply", &fakeSynonyms{reply: &agents.ResolveReply{Success: false}}, models.SynonymAPIError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewSynonymResolver(tt.agent, nil).Resolve(context.Background(), []string{"tote", "mug"})
			if len(res) != 2 {
				t.Fatalf("len = %d, want 2", len(res))
			}
			for term, entry := range res {
				if entry.Canonical != term || entry.Confidence != tt.want {
					t.Errorf("%s = %+v, want identity with %q", term, entry, tt.want)
				}
			}
		})
	}
}

func TestSynonymResolver_EmptyInput(t *testing.T) {
	agent := &fakeSynonyms{}
	res := NewSynonymResolver(agent, nil).Resolve(context.Background(), []string{" ", ""})
	if len(res) != 0 {
		t.Errorf("res = %v, want empty", res)
	}
	if len(agent.calls) != 0 {
		t.Error("agent should not be called for empty input")
	}
}

func TestCanonicalNames(t *testing.T) {
	res := models.SynonymResolution{
		"tote":     {Canonical: "Canvas Tote Bag"},
		"tote bag": {Canonical: "Canvas Tote Bag"},
	}
	got := CanonicalNames([]string{"tote", "mug", "tote bag", "mug"}, res)
	want := []string{"Canvas Tote Bag", "mug"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CanonicalNames = %v, want %v", got, want)
	}
}

func TestReplaceWithCanonical(t *testing.T) {
	res := models.SynonymResolution{
		"bag":      {Canonical: "Jute Bag"},
		"tote bag": {Canonical: "Canvas Tote Bag"},
		"mug":      {Canonical: "mug"},
		"c++":      {Canonical: "C Plus Plus Pen"},
	}

	tests := []struct {
		in   string
		want string
	}{
		{"500 Tote Bag with print", "500 Canvas Tote Bag with print"},
		{"a bag and a mug", "a Jute Bag and a mug"},
		{"c++ pens", "C Plus Plus Pen pens"},
		{"nothing here", "nothing here"},
	}
	for _, tt := range tests {
		if got := ReplaceWithCanonical(tt.in, res); got != tt.want {
			t.Errorf("ReplaceWithCanonical(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReplaceWithCanonical_CaseVariants(t *testing.T) {
	res := models.SynonymResolution{
		"Tote": {Canonical: "Canvas Tote Bag"},
		"tote": {Canonical: "Jute Tote"},
	}

	for i := 0; i < 20; i++ {
		got := ReplaceWithCanonical("a tote and a TOTE", res)
		if got != "a Canvas Tote Bag and a Canvas Tote Bag" {
			t.Fatalf("run %d: ReplaceWithCanonical = %q", i, got)
		}
	}
}
