// Package render turns a GenerationResult into template-ready values.
package render

import (
	"bytes"
	"html/template"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"smartroute/internal/models"
	"smartroute/internal/validation"
)

// ExcerptLimit is the maximum number of runes of a review shown on a card.
const ExcerptLimit = 140

// Placeholder is shown instead of an empty citation panel.
const Placeholder = "No specific Maps location was returned in the metadata. Check the text."

// Renderer converts Markdown to sanitized HTML.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// New returns a renderer supporting GitHub-flavored Markdown. Every
// absolute link opens in a new browsing context.
func New() *Renderer {
	policy := bluemonday.UGCPolicy()
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	policy.RequireNoReferrerOnLinks(true)
	policy.RequireNoFollowOnLinks(false)
	policy.RequireParseableURLs(true)
	policy.AllowURLSchemes("http", "https", "mailto", "tel")

	return &Renderer{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: policy,
	}
}

// Markdown renders text as HTML safe to embed in a page.
func (r *Renderer) Markdown(text string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes())), nil
}

// Card is one verified place in the side panel.
type Card struct {
	Index   int
	Title   string
	Excerpt string
	URL     string
}

// Panel is the side panel of verified places.
type Panel struct {
	Cards       []Card
	Placeholder string
}

// Empty reports whether the placeholder is shown instead of cards.
func (p Panel) Empty() bool { return len(p.Cards) == 0 }

// NewPanel builds one card per place citation with a usable http(s) link.
// Web citations are never shown.
func NewPanel(citations []models.Citation) Panel {
	panel := Panel{Placeholder: Placeholder}
	for _, c := range citations {
		place, ok := c.(models.PlaceCitation)
		if !ok {
			continue
		}
		if valid, _ := validation.ValidateURL(place.URI); !valid {
			continue
		}
		card := Card{
			Index: len(panel.Cards) + 1,
			Title: place.Title,
			URL:   place.URI,
		}
		if card.Title == "" {
			card.Title = place.URI
		}
		if review, ok := place.FirstReview(); ok {
			card.Excerpt = Truncate(review, ExcerptLimit)
		}
		panel.Cards = append(panel.Cards, card)
	}
	return panel
}

// Truncate shortens s to at most limit runes, ending with an ellipsis when cut.
func Truncate(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	cut := strings.TrimRight(string(runes[:limit-1]), " ")
	return cut + "…"
}

// View is everything the result template needs.
type View struct {
	Narrative template.HTML
	Panel     Panel
}

// Result renders a GenerationResult.
func (r *Renderer) Result(res *models.GenerationResult) (View, error) {
	if res == nil {
		return View{Panel: NewPanel(nil)}, nil
	}
	narrative, err := r.Markdown(res.Narrative)
	if err != nil {
		return View{}, err
	}
	return View{Narrative: narrative, Panel: NewPanel(res.Citations)}, nil
}
