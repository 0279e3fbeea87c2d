// Package prompt renders the natural-language requests sent to the
// generative model. Everything here is pure and deterministic.
package prompt

import (
	"fmt"
	"strings"

	"smartroute/internal/models"
)

// Request is a fully built generation request.
type Request struct {
	Mode              models.Mode
	Prompt            string
	SystemInstruction string
	UseLocationTool   bool
	// Fallback replaces an empty model answer.
	Fallback string
}

// Instructions holds the fixed per-mode texts that accompany a prompt.
type Instructions struct {
	System   string
	Fallback string
}

// Default instructions. They may be replaced through the YAML config.
var (
	DefaultProspect = Instructions{
		System:   "You are a helpful, professional sales assistant. Favor accuracy by relying on Google Maps data.",
		Fallback: "No details found.",
	}
	DefaultRoute = Instructions{
		System:   "You are a strictly objective route planner. Return only the formatted list that was requested.",
		Fallback: "Could not compute the route.",
	}
)

// Builder renders prompts with a fixed set of instructions.
type Builder struct {
	prospect Instructions
	route    Instructions
}

// NewBuilder returns a builder. Empty fields fall back to the defaults.
func NewBuilder(prospect, route Instructions) *Builder {
	return &Builder{
		prospect: merge(prospect, DefaultProspect),
		route:    merge(route, DefaultRoute),
	}
}

func merge(in, def Instructions) Instructions {
	if strings.TrimSpace(in.System) == "" {
		in.System = def.System
	}
	if strings.TrimSpace(in.Fallback) == "" {
		in.Fallback = def.Fallback
	}
	return in
}

// Prospect renders the lead-generation request.
func (b *Builder) Prospect(q models.ProspectQuery) Request {
	var sb strings.Builder
	sb.WriteString("Act as an expert in commercial intelligence and field sales logistics.\n\n")
	sb.WriteString("Task:\n")
	fmt.Fprintf(&sb, "1. Search for about %d highly rated businesses of type \"%s\" in or near \"%s\".\n", q.Count, q.BusinessType, q.Location)
	sb.WriteString("2. Provide a detailed list of these prospects. For each one include:\n")
	sb.WriteString("   - **Business name**\n")
	sb.WriteString("   - **Full address** (if available)\n")
	sb.WriteString("   - **Phone** (if available)\n")
	sb.WriteString("   - **Sales hook:** one short sentence tailored to approach this specific customer (mention their kind of service, popularity, etc.)\n\n")
	sb.WriteString("Format the output clearly with Markdown and use a heading for each item.\n")
	sb.WriteString("Prefer real Google Maps data.\n")

	return Request{
		Mode:              models.ModeProspect,
		Prompt:            sb.String(),
		SystemInstruction: b.prospect.System,
		UseLocationTool:   true,
		Fallback:          b.prospect.Fallback,
	}
}

// Route renders the stop-ordering request. Stops are listed in input order.
func (b *Builder) Route(q models.RouteQuery) Request {
	var sb strings.Builder
	sb.WriteString("Act as a logistics routing engine.\n\n")
	sb.WriteString("Input (addresses in no particular order):\n")
	for i, stop := range q.Stops {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, stop)
	}
	sb.WriteString("\nTask:\n")
	sb.WriteString("1. Identify and normalize the exact location of every address above.\n")
	sb.WriteString("2. Arrange the addresses in the most efficient visiting order.\n")
	sb.WriteString("3. Output ONLY the final numbered list, with no introduction, explanation or conclusion.\n\n")
	sb.WriteString("Required output format (Markdown):\n")
	sb.WriteString("N. **Normalized address (or place name)** - [Open in Maps](https://www.google.com/maps/search/?api=1&query=URL_ENCODED_ADDRESS)\n\n")
	sb.WriteString("Example:\n")
	sb.WriteString("1. **1000 Market St, San Francisco** - [Open in Maps](https://www.google.com/maps/search/?api=1&query=1000+Market+St%2C+San+Francisco)\n\n")
	sb.WriteString("Strict rules:\n")
	sb.WriteString("- Do NOT include step-by-step directions.\n")
	sb.WriteString("- Do NOT include distance analysis.\n")
	sb.WriteString("- Do NOT include any text other than the numbered list.\n")
	sb.WriteString("- The 'query' parameter of each URL must be URL encoded so the link works when clicked.\n")

	return Request{
		Mode:              models.ModeRoute,
		Prompt:            sb.String(),
		SystemInstruction: b.route.System,
		UseLocationTool:   true,
		Fallback:          b.route.Fallback,
	}
}
