// internal/matching/config.go
package matching

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Weights defines the relative contribution of each breakdown dimension to
// the overall compatibility score. The defaults weigh all five equally;
// deployments may tune them but the total must stay 1.0.
type Weights struct {
	Personality  float64 `json:"personality"`
	Identity     float64 `json:"identity"`
	Specialty    float64 `json:"specialty"`
	Modality     float64 `json:"modality"`
	Availability float64 `json:"availability"`
}

func DefaultWeights() Weights {
	return Weights{
		Personality:  0.20,
		Identity:     0.20,
		Specialty:    0.20,
		Modality:     0.20,
		Availability: 0.20,
	}
}

// Validate rejects weight sets that would break the [0,100] score bound.
func (w Weights) Validate() error {
	if w.Personality < 0 || w.Identity < 0 || w.Specialty < 0 || w.Modality < 0 || w.Availability < 0 {
		return fmt.Errorf("weights must be non-negative")
	}
	sum := w.Personality + w.Identity + w.Specialty + w.Modality + w.Availability
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("weights must sum to 1.0, got %.4f", sum)
	}
	return nil
}

// LoadWeightsFromFile loads weights from a JSON file, falling back to
// defaults when the file cannot be read.
func LoadWeightsFromFile(path string) (Weights, error) {
	w := DefaultWeights()
	b, err := os.ReadFile(path)
	if err != nil {
		return w, fmt.Errorf("read weights file: %w", err)
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return DefaultWeights(), fmt.Errorf("unmarshal weights: %w", err)
	}
	if err := w.Validate(); err != nil {
		return DefaultWeights(), err
	}
	return w, nil
}
