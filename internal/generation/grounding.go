package generation

import (
	"strings"

	genai "google.golang.org/genai"

	"smartroute/internal/models"
)

// citationsFromMetadata converts grounding chunks into citations, preserving
// chunk order. Absent metadata yields no citations.
func citationsFromMetadata(md *genai.GroundingMetadata) []models.Citation {
	if md == nil {
		return nil
	}

	var citations []models.Citation
	for _, chunk := range md.GroundingChunks {
		if chunk == nil {
			continue
		}
		switch {
		case chunk.Maps != nil:
			citations = append(citations, models.PlaceCitation{
				URI:     chunk.Maps.URI,
				Title:   chunk.Maps.Title,
				Reviews: reviewExcerpts(chunk.Maps.PlaceAnswerSources),
			})
		case chunk.Web != nil:
			citations = append(citations, models.WebCitation{
				URI:   chunk.Web.URI,
				Title: chunk.Web.Title,
			})
		}
	}
	return citations
}

func reviewExcerpts(src *genai.GroundingChunkMapsPlaceAnswerSources) []string {
	if src == nil {
		return nil
	}
	var reviews []string
	for _, snip := range src.ReviewSnippets {
		if snip == nil {
			continue
		}
		if r := strings.TrimSpace(snip.Review); r != "" {
			reviews = append(reviews, r)
		}
	}
	return reviews
}
