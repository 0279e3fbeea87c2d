package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationResult_Places(t *testing.T) {
	r := &GenerationResult{
		Narrative: "text",
		Citations: []Citation{
			WebCitation{URI: "https://example.com", Title: "Example"},
			PlaceCitation{URI: "https://maps.google.com/?cid=1", Title: "Padaria Real"},
			PlaceCitation{URI: "https://maps.google.com/?cid=2", Title: "Pão Quente"},
		},
	}

	places := r.Places()
	require.Len(t, places, 2)
	assert.Equal(t, "Padaria Real", places[0].Title)
	assert.Equal(t, "Pão Quente", places[1].Title)

	var nilResult *GenerationResult
	assert.Nil(t, nilResult.Places())
}

func TestPlaceCitation_FirstReview(t *testing.T) {
	p := PlaceCitation{Reviews: []string{"", "Great bread", "Too busy"}}
	review, ok := p.FirstReview()
	assert.True(t, ok)
	assert.Equal(t, "Great bread", review)

	_, ok = PlaceCitation{}.FirstReview()
	assert.False(t, ok)
}

func TestCitationKinds(t *testing.T) {
	var c Citation = WebCitation{URI: "https://a", Title: "A"}
	assert.Equal(t, CitationWeb, c.Kind())
	assert.Equal(t, "https://a", c.Link())

	c = PlaceCitation{URI: "https://b", Title: "B"}
	assert.Equal(t, CitationPlace, c.Kind())
	assert.Equal(t, "B", c.Label())
}

func TestGenerationResult_JSONKeepsVariants(t *testing.T) {
	in := GenerationResult{
		Narrative: "1. **City Hall**",
		Citations: []Citation{
			WebCitation{URI: "https://example.com", Title: "Example"},
			PlaceCitation{URI: "https://maps.google.com/?cid=1", Title: "City Hall", Reviews: []string{"Nice"}},
		},
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out GenerationResult
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestGenerationResult_UnmarshalRejectsUnknownKind(t *testing.T) {
	var out GenerationResult
	err := json.Unmarshal([]byte(`{"narrative":"x","citations":[{"kind":"video","uri":"u"}]}`), &out)
	assert.Error(t, err)
}
