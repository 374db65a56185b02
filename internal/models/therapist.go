// internal/models/therapist.go
package models

// TherapistProfile is the catalog record for a practicing therapist as seen
// by discovery. Tag fields share the canonical vocabulary with
// ClientAssessment so set intersection is meaningful.
type TherapistProfile struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	PersonalityTags    []string           `json:"personalityTags"`
	Languages          []string           `json:"languages"`
	IdentityTags       []string           `json:"identityTags"`
	Specialties        []string           `json:"specialties"`
	Modalities         []string           `json:"modalities"`
	CommunicationStyle string             `json:"communicationStyle"`
	SessionFormat      string             `json:"sessionFormat"`
	GenderIdentity     string             `json:"genderIdentity"`
	AgeGroup           string             `json:"ageGroup"`
	SessionRates       map[string]float64 `json:"sessionRates"`
	YearsExperience    string             `json:"yearsExperience"`
	Availability       map[string]bool    `json:"availability"`
	CulturalBackground []string           `json:"culturalBackground"`
	IsVerified         bool               `json:"isVerified"`
	IsActive           bool               `json:"isActive"`
}

// VisibleInDiscovery reports whether the profile may be surfaced at all.
// Unverified or inactive therapists are structurally unreachable through
// discovery, not merely deprioritized.
func (p *TherapistProfile) VisibleInDiscovery() bool {
	return p.IsVerified && p.IsActive
}

// AvailableSlots returns the time-slot tags currently marked available.
func (p *TherapistProfile) AvailableSlots() []string {
	if len(p.Availability) == 0 {
		return nil
	}
	slots := make([]string, 0, len(p.Availability))
	for slot, open := range p.Availability {
		if open {
			slots = append(slots, slot)
		}
	}
	return slots
}

// HasRateWithin reports whether any session rate falls inside [min, max].
// A zero max means the client set no upper bound.
func (p *TherapistProfile) HasRateWithin(min, max float64) bool {
	for _, rate := range p.SessionRates {
		if rate < min {
			continue
		}
		if max > 0 && rate > max {
			continue
		}
		return true
	}
	return false
}
