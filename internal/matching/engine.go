// internal/matching/engine.go
package matching

import (
	"errors"
	"math"
	"sort"

	"matchmaking-workers/internal/models"
)

// ErrNilAssessment is returned when the caller passes no assessment at all.
// A sparse assessment is fine; a missing one is a programmer error.
var ErrNilAssessment = errors.New("assessment cannot be nil")

// Neutral score when the client expressed no preference on a dimension.
// Absence of a preference must never penalize a candidate.
const neutralScore = 100.0

// identityAdjustment is the fixed bonus/penalty applied per requested boolean
// identity preference (similar age, cultural background match).
const identityAdjustment = 15.0

// Engine computes ranked client-therapist compatibility. It is a pure
// computation over its inputs: no I/O, no mutation, no clock, safe for
// concurrent use.
type Engine struct {
	weights Weights
}

func NewEngine(w Weights) *Engine {
	return &Engine{weights: w}
}

// FindMatches scores every candidate that survives the hard filter and
// returns the results sorted by descending compatibility score. Ties keep
// input order so repeated invocations are bit-identical.
func (e *Engine) FindMatches(assessment *models.ClientAssessment, candidates []models.TherapistProfile) ([]models.MatchResult, error) {
	if assessment == nil {
		return nil, ErrNilAssessment
	}

	results := make([]models.MatchResult, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		if !c.VisibleInDiscovery() {
			continue
		}
		results = append(results, e.scoreOne(assessment, c))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CompatibilityScore > results[j].CompatibilityScore
	})

	return results, nil
}

func (e *Engine) scoreOne(a *models.ClientAssessment, c *models.TherapistProfile) models.MatchResult {
	breakdown := models.ScoreBreakdown{
		PersonalityCompatibility: personalityScore(a, c),
		IdentityAffirming:        identityScore(a, c),
		SpecialtyMatch:           overlapScore(a.TherapyGoals, c.Specialties),
		ModalityPreferences:      overlapScore(a.TherapyModalities, c.Modalities),
		AvailabilityFit:          overlapScore(a.PreferredTimes, c.AvailableSlots()),
	}

	total := breakdown.PersonalityCompatibility*e.weights.Personality +
		breakdown.IdentityAffirming*e.weights.Identity +
		breakdown.SpecialtyMatch*e.weights.Specialty +
		breakdown.ModalityPreferences*e.weights.Modality +
		breakdown.AvailabilityFit*e.weights.Availability

	budgetOK := budgetCompatible(a, c)
	genderOK := genderCompatible(a, c)

	return models.MatchResult{
		TherapistID:              c.ID,
		CompatibilityScore:       int(math.Round(clamp(total, 0, 100))),
		Breakdown:                breakdown,
		HardFilterPassed:         true,
		ConditionalFiltersPassed: budgetOK && genderOK,
		BudgetCompatible:         budgetOK,
		GenderCompatible:         genderOK,
	}
}

// overlapScore is the shared sub-score method: the fraction of the client's
// stated preferences the therapist covers, scaled to 100. An empty preference
// set contributes the neutral score rather than dividing by zero.
func overlapScore(prefs, offered []string) float64 {
	if len(prefs) == 0 {
		return neutralScore
	}
	offeredSet := make(map[string]struct{}, len(offered))
	for _, tag := range offered {
		offeredSet[tag] = struct{}{}
	}
	matched := 0
	counted := make(map[string]struct{}, len(prefs))
	for _, tag := range prefs {
		if _, dup := counted[tag]; dup {
			continue
		}
		counted[tag] = struct{}{}
		if _, ok := offeredSet[tag]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(counted)) * 100.0
}

// personalityScore compares communication preferences against the
// therapist's personality tags plus their declared communication style.
func personalityScore(a *models.ClientAssessment, c *models.TherapistProfile) float64 {
	offered := c.PersonalityTags
	if c.CommunicationStyle != "" {
		offered = append(append([]string(nil), offered...), c.CommunicationStyle)
	}
	return overlapScore(a.CommunicationPreferences, offered)
}

// identityScore starts from the identity-tag overlap, then applies a fixed
// bonus or penalty for each boolean preference the client actually requested.
func identityScore(a *models.ClientAssessment, c *models.TherapistProfile) float64 {
	score := overlapScore(a.IdentityPreferences, c.IdentityTags)

	if a.PrefersSimilarAge {
		if a.AgeGroup != "" && a.AgeGroup == c.AgeGroup {
			score += identityAdjustment
		} else {
			score -= identityAdjustment
		}
	}
	if a.PrefersCulturalBackgroundMatch {
		if tagsIntersect(a.CulturalIdentity, c.CulturalBackground) {
			score += identityAdjustment
		} else {
			score -= identityAdjustment
		}
	}

	return clamp(score, 0, 100)
}

func tagsIntersect(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(b))
	for _, tag := range b {
		set[tag] = struct{}{}
	}
	for _, tag := range a {
		if _, ok := set[tag]; ok {
			return true
		}
	}
	return false
}

// budgetCompatible reports the budget conditional filter: at least one
// session rate inside the client's range. Clients without a budget
// constraint always pass.
func budgetCompatible(a *models.ClientAssessment, c *models.TherapistProfile) bool {
	if !a.HasBudget() {
		return true
	}
	return c.HasRateWithin(a.BudgetMin, a.BudgetMax)
}

// genderCompatible reports the gender-preference conditional filter.
// Mismatches are flagged to the caller, never hard-excluded here.
func genderCompatible(a *models.ClientAssessment, c *models.TherapistProfile) bool {
	if !a.HasGenderPreference() {
		return true
	}
	return a.TherapistGenderPreference == c.GenderIdentity
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
