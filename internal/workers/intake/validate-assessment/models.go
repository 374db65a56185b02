// internal/workers/intake/validate-assessment/models.go
package validateassessment

import (
	"encoding/json"

	"matchmaking-workers/internal/models"
)

type Input struct {
	Assessment json.RawMessage `json:"assessment"`
}

type Output struct {
	Valid      bool                     `json:"valid"`
	Assessment *models.ClientAssessment `json:"assessment"`
	Warnings   []string                 `json:"warnings,omitempty"`
}
