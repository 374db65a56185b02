// internal/models/match.go
package models

// ScoreBreakdown carries the five independently normalized sub-scores, each
// in [0,100], that combine into the overall compatibility score.
type ScoreBreakdown struct {
	PersonalityCompatibility float64 `json:"personalityCompatibility"`
	IdentityAffirming        float64 `json:"identityAffirming"`
	SpecialtyMatch           float64 `json:"specialtyMatch"`
	ModalityPreferences      float64 `json:"modalityPreferences"`
	AvailabilityFit          float64 `json:"availabilityFit"`
}

// MatchResult is the ranked output of the matching engine for one therapist.
// Results are recomputed on every invocation and never persisted.
type MatchResult struct {
	TherapistID              string         `json:"therapistId"`
	CompatibilityScore       int            `json:"compatibilityScore"`
	Breakdown                ScoreBreakdown `json:"breakdown"`
	HardFilterPassed         bool           `json:"hardFilterPassed"`
	ConditionalFiltersPassed bool           `json:"conditionalFiltersPassed"`
	BudgetCompatible         bool           `json:"budgetCompatible"`
	GenderCompatible         bool           `json:"genderCompatible"`
}
