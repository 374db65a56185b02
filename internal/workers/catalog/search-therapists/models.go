// internal/workers/catalog/search-therapists/models.go
package searchtherapists

type Input struct {
	IndexName   string                 `json:"indexName,omitempty"`
	QueryType   string                 `json:"queryType"`
	Filters     map[string]interface{} `json:"filters"`
	TherapistID string                 `json:"therapistId,omitempty"`
	Pagination  Pagination             `json:"pagination"`
}

type Pagination struct {
	From int `json:"from"`
	Size int `json:"size"`
}

type Output struct {
	Data      []map[string]interface{} `json:"data"`
	TotalHits int64                    `json:"totalHits"`
	MaxScore  float64                  `json:"maxScore"`
	Took      int64                    `json:"took"` // milliseconds
}
