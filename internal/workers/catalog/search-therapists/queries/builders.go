package queries

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrUnknownQueryType = errors.New("unknown query type")
	ErrMissingIndex     = errors.New("index name is required")
)

// SearchQuery defines the structure of a therapist search request
type SearchQuery struct {
	Index       string
	QueryType   string
	Filters     map[string]interface{}
	TherapistID string
	Pagination  struct {
		From int
		Size int
	}
}

// BuildQuery builds an Elasticsearch search request based on query type and filters
func BuildQuery(esClient *elasticsearch.Client, sq SearchQuery) (*esapi.SearchRequest, error) {
	if sq.Index == "" {
		return nil, ErrMissingIndex
	}

	var queryBody map[string]interface{}

	switch sq.QueryType {
	case "therapist_search":
		queryBody = buildTherapistSearchQuery(sq)
	case "similar_therapists":
		queryBody = buildSimilarTherapistsQuery(sq)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownQueryType, sq.QueryType)
	}

	body, _ := json.Marshal(queryBody)

	req := esapi.SearchRequest{
		Index: []string{sq.Index},
		Body:  strings.NewReader(string(body)),
		From:  &sq.Pagination.From,
		Size:  &sq.Pagination.Size,
	}

	return &req, nil
}

// tagFilterFields maps filter keys to the indexed keyword fields they match.
var tagFilterFields = map[string]string{
	"specialties":        "specialties",
	"modalities":         "modalities",
	"languages":          "languages",
	"identityTags":       "identity_tags",
	"personalityTags":    "personality_tags",
	"culturalBackground": "cultural_background",
}

// buildTherapistSearchQuery builds the main discovery search query. Only
// verified, active profiles are ever searchable.
func buildTherapistSearchQuery(sq SearchQuery) map[string]interface{} {
	boolQuery := make(map[string]interface{})
	mustClauses := []interface{}{}
	filterClauses := []interface{}{
		map[string]interface{}{
			"term": map[string]interface{}{"is_verified": true},
		},
		map[string]interface{}{
			"term": map[string]interface{}{"is_active": true},
		},
	}

	// Free-text search over name and bio
	if keywords, ok := sq.Filters["keywords"].(string); ok && keywords != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  keywords,
				"fields": []string{"name^3", "bio^2", "specialties"},
				"type":   "best_fields",
			},
		})
	}

	for key, field := range tagFilterFields {
		terms := stringTerms(sq.Filters[key])
		if len(terms) > 0 {
			filterClauses = append(filterClauses, map[string]interface{}{
				"terms": map[string]interface{}{field: terms},
			})
		}
	}

	if format, ok := sq.Filters["sessionFormat"].(string); ok && format != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"session_format": format},
		})
	}

	if gender, ok := sq.Filters["genderIdentity"].(string); ok && gender != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"gender_identity": gender},
		})
	}

	// Rate range filter over the indexed individual-session rate
	if rateRange, ok := sq.Filters["rateRange"].(map[string]interface{}); ok {
		rangeClause := map[string]interface{}{}
		if min, exists := numericValue(rateRange["min"]); exists && min > 0 {
			rangeClause["gte"] = min
		}
		if max, exists := numericValue(rateRange["max"]); exists && max > 0 {
			rangeClause["lte"] = max
		}
		if len(rangeClause) > 0 {
			filterClauses = append(filterClauses, map[string]interface{}{
				"range": map[string]interface{}{"session_rate": rangeClause},
			})
		}
	}

	if len(mustClauses) == 0 {
		mustClauses = append(mustClauses, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	boolQuery["must"] = mustClauses
	boolQuery["filter"] = filterClauses

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": boolQuery,
		},
	}

	if sortBy, ok := sq.Filters["sortBy"].(string); ok {
		switch sortBy {
		case "session_rate":
			query["sort"] = []map[string]interface{}{{"session_rate": "asc"}}
		case "name":
			query["sort"] = []map[string]interface{}{{"name.keyword": "asc"}}
		}
	}

	return query
}

// buildSimilarTherapistsQuery builds a "therapists like this one" query
func buildSimilarTherapistsQuery(sq SearchQuery) map[string]interface{} {
	if sq.TherapistID == "" {
		return map[string]interface{}{
			"query": map[string]interface{}{
				"match_none": map[string]interface{}{},
			},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []interface{}{
					map[string]interface{}{
						"more_like_this": map[string]interface{}{
							"fields": []string{"bio", "specialties", "modalities"},
							"like": []map[string]interface{}{
								{"_index": sq.Index, "_id": sq.TherapistID},
							},
							"min_term_freq":   1,
							"max_query_terms": 12,
							"min_doc_freq":    1,
						},
					},
				},
				"filter": []interface{}{
					map[string]interface{}{
						"term": map[string]interface{}{"is_verified": true},
					},
					map[string]interface{}{
						"term": map[string]interface{}{"is_active": true},
					},
				},
			},
		},
	}
}

func stringTerms(raw interface{}) []string {
	switch v := raw.(type) {
	case []interface{}:
		terms := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				terms = append(terms, s)
			}
		}
		return terms
	case []string:
		return v
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	}
	return nil
}

func numericValue(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
