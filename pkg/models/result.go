package models

import "time"

// SynthesizedReply is the LLM-drafted response for human review.
type SynthesizedReply struct {
	Success           bool    `json:"success"`
	SuggestedResponse *string `json:"suggestedResponse"`
	HasArtworkIntent  bool    `json:"hasArtworkIntent"`
	IntentsUsed       Intents `json:"intentsUsed,omitempty"`
	Error             string  `json:"error,omitempty"`
}

// Analysis is the classification part of an analysis result.
type Analysis struct {
	Classification
	EmailCount int `json:"emailCount"`
}

// AnalysisResult is the complete outcome of analyzing one ticket.
type AnalysisResult struct {
	Success        bool              `json:"success"`
	Ticket         Ticket            `json:"ticket"`
	Customer       Customer          `json:"customer"`
	Analysis       Analysis          `json:"analysis"`
	Synonyms       SynonymResolution `json:"synonyms"`
	AgentResponses AgentResponses    `json:"agentResponses"`
	Synthesis      *SynthesizedReply `json:"synthesis"`
	HelpdeskURL    string            `json:"freshdeskUrl"`
	// ProcessingTime is the wall-clock duration of the analysis in milliseconds.
	ProcessingTime int64     `json:"processingTime"`
	Timestamp      time.Time `json:"timestamp"`
}

// Options selects which stages of the analysis run. Nil flags take their
// default: every stage is enabled except the artwork placeholder.
type Options struct {
	IncludeKB        *bool `json:"includeKB,omitempty"`
	IncludeProduct   *bool `json:"includeProduct,omitempty"`
	IncludePrice     *bool `json:"includePrice,omitempty"`
	IncludeArtwork   *bool `json:"includeArtwork,omitempty"`
	IncludeSynthesis *bool `json:"includeSynthesis,omitempty"`
}

// KnowledgeEnabled reports whether the knowledge agent may be queried.
func (o Options) KnowledgeEnabled() bool { return enabledUnlessFalse(o.IncludeKB) }

// ProductEnabled reports whether the product agent may be queried.
func (o Options) ProductEnabled() bool { return enabledUnlessFalse(o.IncludeProduct) }

// PriceEnabled reports whether the price agent may be queried.
func (o Options) PriceEnabled() bool { return enabledUnlessFalse(o.IncludePrice) }

// ArtworkEnabled reports whether the artwork placeholder is returned.
// Unlike the other flags it must be set explicitly.
func (o Options) ArtworkEnabled() bool { return o.IncludeArtwork != nil && *o.IncludeArtwork }

// SynthesisEnabled reports whether a reply draft is generated.
func (o Options) SynthesisEnabled() bool { return enabledUnlessFalse(o.IncludeSynthesis) }

func enabledUnlessFalse(flag *bool) bool {
	return flag == nil || *flag
}

// Bool returns a pointer to b, for building Options literals.
func Bool(b bool) *bool {
	return &b
}
