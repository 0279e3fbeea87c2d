package generation

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	genai "google.golang.org/genai"

	"smartroute/internal/models"
	"smartroute/internal/prompt"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// GeminiConfig configures the Gemini client.
type GeminiConfig struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint (tests, proxies).
	BaseURL    string
	HTTPClient *http.Client
}

// GeminiClient is a thin wrapper around the official genai client.
type GeminiClient struct {
	cli   *genai.Client
	model string
}

// NewGeminiClient creates a client bound to one model.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	cli, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiClient{cli: cli, model: cfg.Model}, nil
}

// Name identifies the backing model.
func (g *GeminiClient) Name() string { return "gemini:" + g.model }

// Generate sends one GenerateContent request. Every failure is reported as
// ErrGenerationFailed.
func (g *GeminiClient) Generate(ctx context.Context, req prompt.Request) (*models.GenerationResult, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, failed(ErrEmptyPrompt)
	}

	cfg := &genai.GenerateContentConfig{}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	if req.UseLocationTool {
		cfg.Tools = []*genai.Tool{{GoogleMaps: &genai.GoogleMaps{}}}
	}

	resp, err := g.cli.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return nil, failed(err)
	}

	result, err := resultFromResponse(resp, req.Fallback)
	if err != nil {
		return nil, failed(err)
	}
	return result, nil
}

// resultFromResponse reads the first candidate's text and grounding chunks.
func resultFromResponse(resp *genai.GenerateContentResponse, fallback string) (*models.GenerationResult, error) {
	if resp == nil {
		return nil, fmt.Errorf("nil response")
	}

	result := &models.GenerationResult{}
	if len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
		cand := resp.Candidates[0]
		result.Narrative = candidateText(cand)
		result.Citations = citationsFromMetadata(cand.GroundingMetadata)
	}

	if strings.TrimSpace(result.Narrative) == "" {
		result.Narrative = fallback
	}
	return result, nil
}

func candidateText(cand *genai.Candidate) string {
	if cand.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}
