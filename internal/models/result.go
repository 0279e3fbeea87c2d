package models

import (
	"encoding/json"
	"fmt"
)

// CitationKind discriminates the Citation variants.
type CitationKind string

const (
	CitationWeb   CitationKind = "web"
	CitationPlace CitationKind = "place"
)

// Citation is a grounding reference returned alongside generated text.
// It is implemented only by WebCitation and PlaceCitation.
type Citation interface {
	Kind() CitationKind
	Link() string
	Label() string
	citation()
}

// WebCitation points to a web page.
type WebCitation struct {
	URI   string
	Title string
}

func (WebCitation) Kind() CitationKind { return CitationWeb }
func (c WebCitation) Link() string    { return c.URI }
func (c WebCitation) Label() string   { return c.Title }
func (WebCitation) citation()         {}

// PlaceCitation points to a real-world place, optionally with review excerpts.
type PlaceCitation struct {
	URI     string
	Title   string
	Reviews []string
}

func (PlaceCitation) Kind() CitationKind { return CitationPlace }
func (c PlaceCitation) Link() string    { return c.URI }
func (c PlaceCitation) Label() string   { return c.Title }
func (PlaceCitation) citation()         {}

// FirstReview returns the first non-empty review excerpt, if any.
func (c PlaceCitation) FirstReview() (string, bool) {
	for _, r := range c.Reviews {
		if r != "" {
			return r, true
		}
	}
	return "", false
}

// GenerationResult is the uniform shape of a generation response.
type GenerationResult struct {
	Narrative string
	Citations []Citation
}

// Places returns the place citations in response order.
func (r *GenerationResult) Places() []PlaceCitation {
	if r == nil {
		return nil
	}
	var places []PlaceCitation
	for _, c := range r.Citations {
		if p, ok := c.(PlaceCitation); ok {
			places = append(places, p)
		}
	}
	return places
}

type citationJSON struct {
	Kind    CitationKind `json:"kind"`
	URI     string       `json:"uri"`
	Title   string       `json:"title"`
	Reviews []string     `json:"reviews,omitempty"`
}

type resultJSON struct {
	Narrative string         `json:"narrative"`
	Citations []citationJSON `json:"citations"`
}

// MarshalJSON encodes citations with an explicit kind tag.
func (r GenerationResult) MarshalJSON() ([]byte, error) {
	out := resultJSON{Narrative: r.Narrative, Citations: make([]citationJSON, 0, len(r.Citations))}
	for _, c := range r.Citations {
		cj := citationJSON{Kind: c.Kind(), URI: c.Link(), Title: c.Label()}
		if p, ok := c.(PlaceCitation); ok {
			cj.Reviews = p.Reviews
		}
		out.Citations = append(out.Citations, cj)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the tagged citation encoding produced by MarshalJSON.
func (r *GenerationResult) UnmarshalJSON(data []byte) error {
	var in resultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	r.Narrative = in.Narrative
	r.Citations = make([]Citation, 0, len(in.Citations))
	for _, cj := range in.Citations {
		switch cj.Kind {
		case CitationWeb:
			r.Citations = append(r.Citations, WebCitation{URI: cj.URI, Title: cj.Title})
		case CitationPlace:
			r.Citations = append(r.Citations, PlaceCitation{URI: cj.URI, Title: cj.Title, Reviews: cj.Reviews})
		default:
			return fmt.Errorf("unknown citation kind %q", cj.Kind)
		}
	}
	return nil
}
