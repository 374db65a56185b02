// internal/workers/discovery/find-matches/models.go
package findmatches

import "matchmaking-workers/internal/models"

type Input struct {
	ClientID   string                    `json:"clientId"`
	Assessment *models.ClientAssessment  `json:"assessment,omitempty"`
	Candidates []models.TherapistProfile `json:"candidates,omitempty"`
	MaxResults int                       `json:"maxResults,omitempty"`
}

type Output struct {
	Matches         []models.MatchResult `json:"matches"`
	TotalCandidates int                  `json:"totalCandidates"`
	ReturnedCount   int                  `json:"returnedCount"`
}
