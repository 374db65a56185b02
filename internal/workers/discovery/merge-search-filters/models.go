// internal/workers/discovery/merge-search-filters/models.go
package mergesearchfilters

import "matchmaking-workers/internal/models"

type Input struct {
	Assessment *models.ClientAssessment `json:"assessment"`
	RawFilters map[string]interface{}   `json:"rawFilters"`
}

type Output struct {
	Assessment *models.ClientAssessment `json:"assessment"`
	MaxResults int                      `json:"maxResults"`
}
