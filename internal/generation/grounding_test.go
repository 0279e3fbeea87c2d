package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	genai "google.golang.org/genai"

	"smartroute/internal/models"
)

func TestCitationsFromMetadata(t *testing.T) {
	tests := []struct {
		name string
		md   *genai.GroundingMetadata
		want []models.Citation
	}{
		{
			name: "absent metadata",
			md:   nil,
			want: nil,
		},
		{
			name: "no chunks",
			md:   &genai.GroundingMetadata{WebSearchQueries: []string{"bakery downtown"}},
			want: nil,
		},
		{
			name: "web and maps chunks keep order",
			md: &genai.GroundingMetadata{GroundingChunks: []*genai.GroundingChunk{
				{Web: &genai.GroundingChunkWeb{URI: "https://example.com", Title: "Example"}},
				{Maps: &genai.GroundingChunkMaps{URI: "https://maps.google.com/?cid=1", Title: "Padaria Real"}},
			}},
			want: []models.Citation{
				models.WebCitation{URI: "https://example.com", Title: "Example"},
				models.PlaceCitation{URI: "https://maps.google.com/?cid=1", Title: "Padaria Real"},
			},
		},
		{
			name: "review snippets are trimmed and blanks dropped",
			md: &genai.GroundingMetadata{GroundingChunks: []*genai.GroundingChunk{
				{Maps: &genai.GroundingChunkMaps{
					URI:   "https://maps.google.com/?cid=2",
					Title: "Pão Quente",
					PlaceAnswerSources: &genai.GroundingChunkMapsPlaceAnswerSources{
						ReviewSnippets: []*genai.GroundingChunkMapsPlaceAnswerSourcesReviewSnippet{
							{Review: " Best sourdough in town "},
							{Review: "  "},
							nil,
							{Review: "Friendly staff"},
						},
					},
				}},
			}},
			want: []models.Citation{
				models.PlaceCitation{
					URI:     "https://maps.google.com/?cid=2",
					Title:   "Pão Quente",
					Reviews: []string{"Best sourdough in town", "Friendly staff"},
				},
			},
		},
		{
			name: "maps chunk without link is still mapped",
			md: &genai.GroundingMetadata{GroundingChunks: []*genai.GroundingChunk{
				{Maps: &genai.GroundingChunkMaps{Title: "Unnamed"}},
			}},
			want: []models.Citation{
				models.PlaceCitation{Title: "Unnamed"},
			},
		},
		{
			name: "empty and nil chunks are skipped",
			md: &genai.GroundingMetadata{GroundingChunks: []*genai.GroundingChunk{
				{},
				nil,
				{RetrievedContext: &genai.GroundingChunkRetrievedContext{Title: "doc"}},
			}},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, citationsFromMetadata(tt.md))
		})
	}
}
