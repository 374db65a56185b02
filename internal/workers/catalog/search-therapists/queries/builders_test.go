package queries

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody(t *testing.T, sq SearchQuery) map[string]interface{} {
	t.Helper()

	req, err := BuildQuery(nil, sq)
	require.NoError(t, err)

	raw, err := io.ReadAll(req.Body)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func boolClause(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	query := body["query"].(map[string]interface{})
	return query["bool"].(map[string]interface{})
}

func TestBuildQuery_MissingIndex(t *testing.T) {
	_, err := BuildQuery(nil, SearchQuery{QueryType: "therapist_search"})
	assert.ErrorIs(t, err, ErrMissingIndex)
}

func TestBuildQuery_UnknownQueryType(t *testing.T) {
	_, err := BuildQuery(nil, SearchQuery{Index: "therapists", QueryType: "nonsense"})
	assert.ErrorIs(t, err, ErrUnknownQueryType)
}

func TestBuildQuery_SearchAlwaysFiltersVisibility(t *testing.T) {
	body := decodeBody(t, SearchQuery{
		Index:     "therapists",
		QueryType: "therapist_search",
		Filters:   map[string]interface{}{},
	})

	bq := boolClause(t, body)
	filters := bq["filter"].([]interface{})
	require.GreaterOrEqual(t, len(filters), 2)

	verified := filters[0].(map[string]interface{})["term"].(map[string]interface{})
	active := filters[1].(map[string]interface{})["term"].(map[string]interface{})
	assert.Equal(t, true, verified["is_verified"])
	assert.Equal(t, true, active["is_active"])

	// No keyword means match_all
	must := bq["must"].([]interface{})
	require.Len(t, must, 1)
	assert.Contains(t, must[0].(map[string]interface{}), "match_all")
}

func TestBuildQuery_KeywordSearch(t *testing.T) {
	body := decodeBody(t, SearchQuery{
		Index:     "therapists",
		QueryType: "therapist_search",
		Filters: map[string]interface{}{
			"keywords": "trauma anxiety",
		},
	})

	must := boolClause(t, body)["must"].([]interface{})
	require.Len(t, must, 1)

	multiMatch := must[0].(map[string]interface{})["multi_match"].(map[string]interface{})
	assert.Equal(t, "trauma anxiety", multiMatch["query"])
}

func TestBuildQuery_TagFilters(t *testing.T) {
	body := decodeBody(t, SearchQuery{
		Index:     "therapists",
		QueryType: "therapist_search",
		Filters: map[string]interface{}{
			"specialties": []interface{}{"anxiety", "trauma"},
			"languages":   "spanish",
		},
	})

	filters := boolClause(t, body)["filter"].([]interface{})

	var specialtyTerms, languageTerms []interface{}
	for _, f := range filters {
		terms, ok := f.(map[string]interface{})["terms"].(map[string]interface{})
		if !ok {
			continue
		}
		if v, ok := terms["specialties"]; ok {
			specialtyTerms = v.([]interface{})
		}
		if v, ok := terms["languages"]; ok {
			languageTerms = v.([]interface{})
		}
	}

	assert.Equal(t, []interface{}{"anxiety", "trauma"}, specialtyTerms)
	assert.Equal(t, []interface{}{"spanish"}, languageTerms)
}

func TestBuildQuery_RateRange(t *testing.T) {
	tests := []struct {
		name      string
		rateRange map[string]interface{}
		expectGte interface{}
		expectLte interface{}
	}{
		{
			name:      "both bounds",
			rateRange: map[string]interface{}{"min": float64(80), "max": float64(150)},
			expectGte: float64(80),
			expectLte: float64(150),
		},
		{
			name:      "max only",
			rateRange: map[string]interface{}{"max": float64(120)},
			expectLte: float64(120),
		},
		{
			name:      "min only",
			rateRange: map[string]interface{}{"min": float64(60)},
			expectGte: float64(60),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := decodeBody(t, SearchQuery{
				Index:     "therapists",
				QueryType: "therapist_search",
				Filters:   map[string]interface{}{"rateRange": tt.rateRange},
			})

			filters := boolClause(t, body)["filter"].([]interface{})

			var rangeClause map[string]interface{}
			for _, f := range filters {
				if r, ok := f.(map[string]interface{})["range"].(map[string]interface{}); ok {
					rangeClause = r["session_rate"].(map[string]interface{})
				}
			}
			require.NotNil(t, rangeClause)

			assert.Equal(t, tt.expectGte, rangeClause["gte"])
			assert.Equal(t, tt.expectLte, rangeClause["lte"])
		})
	}
}

func TestBuildQuery_SimilarTherapists(t *testing.T) {
	body := decodeBody(t, SearchQuery{
		Index:       "therapists",
		QueryType:   "similar_therapists",
		TherapistID: "th-1",
	})

	must := boolClause(t, body)["must"].([]interface{})
	require.Len(t, must, 1)

	mlt := must[0].(map[string]interface{})["more_like_this"].(map[string]interface{})
	like := mlt["like"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "th-1", like["_id"])
	assert.Equal(t, "therapists", like["_index"])
}

func TestBuildQuery_SimilarTherapistsWithoutID(t *testing.T) {
	body := decodeBody(t, SearchQuery{
		Index:     "therapists",
		QueryType: "similar_therapists",
	})

	query := body["query"].(map[string]interface{})
	assert.Contains(t, query, "match_none")
}
