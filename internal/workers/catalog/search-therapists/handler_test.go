package searchtherapists

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchmaking-workers/internal/common/logger"
)

func createTestConfig() *Config {
	return &Config{
		Timeout:      5 * time.Second,
		DefaultIndex: "therapists",
	}
}

// newStubElasticsearch serves a canned search response and records the last
// request body so tests can assert on the query that was sent.
func newStubElasticsearch(t *testing.T, response map[string]interface{}) (*elasticsearch.Client, *[]byte) {
	t.Helper()

	var lastBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		lastBody = body

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	}))
	t.Cleanup(server.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{server.URL},
	})
	require.NoError(t, err)
	return client, &lastBody
}

func searchResponse(hits []map[string]interface{}, maxScore float64) map[string]interface{} {
	hitObjs := make([]map[string]interface{}, 0, len(hits))
	for i, source := range hits {
		hitObjs = append(hitObjs, map[string]interface{}{
			"_index":  "therapists",
			"_id":     source["id"],
			"_score":  maxScore - float64(i),
			"_source": source,
		})
	}
	return map[string]interface{}{
		"took": 3,
		"hits": map[string]interface{}{
			"total":     map[string]interface{}{"value": len(hits)},
			"max_score": maxScore,
			"hits":      hitObjs,
		},
	}
}

func TestHandler_Execute_Search(t *testing.T) {
	client, lastBody := newStubElasticsearch(t, searchResponse([]map[string]interface{}{
		{"id": "th-1", "name": "Dr. Amara Okafor", "specialties": []interface{}{"anxiety"}},
		{"id": "th-2", "name": "Dr. Brook Chen", "specialties": []interface{}{"trauma"}},
	}, 2.5))

	handler := NewHandler(createTestConfig(), client, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		QueryType: "therapist_search",
		Filters: map[string]interface{}{
			"keywords":    "anxiety",
			"specialties": []interface{}{"anxiety", "trauma"},
		},
		Pagination: Pagination{From: 0, Size: 10},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(2), output.TotalHits)
	assert.Equal(t, 2.5, output.MaxScore)
	require.Len(t, output.Data, 2)
	assert.Equal(t, "Dr. Amara Okafor", output.Data[0]["name"])

	// The visibility filter must always be part of the sent query
	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal(*lastBody, &sent))
	raw, _ := json.Marshal(sent)
	assert.Contains(t, string(raw), "is_verified")
	assert.Contains(t, string(raw), "is_active")
}

func TestHandler_Execute_DefaultIndex(t *testing.T) {
	client, _ := newStubElasticsearch(t, searchResponse(nil, 0))

	handler := NewHandler(createTestConfig(), client, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		QueryType: "therapist_search",
		Filters:   map[string]interface{}{},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(0), output.TotalHits)
	assert.Empty(t, output.Data)
}

func TestHandler_Execute_SimilarTherapists(t *testing.T) {
	client, lastBody := newStubElasticsearch(t, searchResponse([]map[string]interface{}{
		{"id": "th-2", "name": "Dr. Brook Chen"},
	}, 1.2))

	handler := NewHandler(createTestConfig(), client, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		QueryType:   "similar_therapists",
		TherapistID: "th-1",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), output.TotalHits)

	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal(*lastBody, &sent))
	raw, _ := json.Marshal(sent)
	assert.Contains(t, string(raw), "more_like_this")
}

func TestHandler_Execute_MissingIndex(t *testing.T) {
	client, _ := newStubElasticsearch(t, searchResponse(nil, 0))

	config := createTestConfig()
	config.DefaultIndex = ""

	handler := NewHandler(config, client, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		QueryType: "therapist_search",
		Filters:   map[string]interface{}{},
	})

	assert.Nil(t, output)
	assert.ErrorIs(t, err, ErrIndexNotFound)
}

func TestHandler_Execute_UnknownQueryType(t *testing.T) {
	client, _ := newStubElasticsearch(t, searchResponse(nil, 0))

	handler := NewHandler(createTestConfig(), client, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		QueryType: "nonsense",
		Filters:   map[string]interface{}{},
	})

	assert.Nil(t, output)
	assert.ErrorIs(t, err, ErrSearchQueryFailed)
}

func TestHandler_Execute_NilInput(t *testing.T) {
	client, _ := newStubElasticsearch(t, searchResponse(nil, 0))

	handler := NewHandler(createTestConfig(), client, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), nil)

	assert.Nil(t, output)
	assert.Error(t, err)
}
