// internal/models/assessment.go
package models

import "fmt"

// GenderNoPreference is the sentinel value a client selects when they have no
// preference for the therapist's gender identity.
const GenderNoPreference = "no preference"

// ClientAssessment is the structured intake record a client submits before
// discovery. It is immutable once submitted; discovery-time filter overlays
// produce a derived copy rather than mutating the stored record.
type ClientAssessment struct {
	ClientID                       string   `json:"clientId"`
	CommunicationPreferences       []string `json:"communicationPreferences"`
	LanguagePreferences            []string `json:"languagePreferences"`
	IdentityPreferences            []string `json:"identityPreferences"`
	TherapyGoals                   []string `json:"therapyGoals"`
	TherapyModalities              []string `json:"therapyModalities"`
	BudgetMin                      float64  `json:"budgetMin"`
	BudgetMax                      float64  `json:"budgetMax"`
	AgeGroup                       string   `json:"ageGroup"`
	PreferredTimes                 []string `json:"preferredTimes"`
	ExperiencePreference           string   `json:"experiencePreference"`
	CulturalIdentity               []string `json:"culturalIdentity"`
	TherapistGenderPreference      string   `json:"therapistGenderPreference"`
	PrefersSimilarAge              bool     `json:"prefersSimilarAge"`
	PrefersCulturalBackgroundMatch bool     `json:"prefersCulturalBackgroundMatch"`
}

// Validate checks the structural invariants of a submitted assessment.
// Empty preference sets are legitimate; only contradictory fields fail.
func (a *ClientAssessment) Validate() error {
	if a.ClientID == "" {
		return fmt.Errorf("clientId is required")
	}
	if a.BudgetMin < 0 || a.BudgetMax < 0 {
		return fmt.Errorf("budget range must be non-negative")
	}
	if a.BudgetMax > 0 && a.BudgetMin > a.BudgetMax {
		return fmt.Errorf("budget min (%.2f) exceeds budget max (%.2f)", a.BudgetMin, a.BudgetMax)
	}
	return nil
}

// HasBudget reports whether the client actually constrained their budget.
func (a *ClientAssessment) HasBudget() bool {
	return a.BudgetMin > 0 || a.BudgetMax > 0
}

// HasGenderPreference reports whether the client expressed a hard gender
// preference (unset and "no preference" both count as no preference).
func (a *ClientAssessment) HasGenderPreference() bool {
	return a.TherapistGenderPreference != "" && a.TherapistGenderPreference != GenderNoPreference
}
