// pkg/vocabulary/schema.go
package vocabulary

// Vocabulary is the closed tag vocabulary shared by the intake UI, the
// therapist profile editor, and the matching engine. Matching relies on exact
// tag equality, so both sides must draw from the same canonical set.
type Vocabulary struct {
	Version     string               `json:"version"`
	LastUpdated string               `json:"lastUpdated"`
	Dimensions  map[string]Dimension `json:"dimensions"`
}

type Dimension struct {
	DisplayName string   `json:"displayName"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags"`
}

// Dimension names used across the service.
const (
	DimSpecialties         = "specialties"
	DimModalities          = "modalities"
	DimCommunicationStyles = "communication_styles"
	DimIdentityTags        = "identity_tags"
	DimLanguages           = "languages"
	DimTimeSlots           = "time_slots"
	DimAgeGroups           = "age_groups"
	DimGenderIdentities    = "gender_identities"
)

// Default returns the built-in vocabulary. A deployment can publish an
// extended copy with SaveVocabulary and load it back on other services.
func Default() *Vocabulary {
	return &Vocabulary{
		Version: "1.0",
		Dimensions: map[string]Dimension{
			DimSpecialties: {
				DisplayName: "Specialties",
				Tags: []string{
					"anxiety", "depression", "trauma", "relationships", "grief",
					"stress", "self-esteem", "addiction", "adhd", "eating disorders",
					"life transitions", "burnout", "family conflict", "ocd",
				},
			},
			DimModalities: {
				DisplayName: "Therapy modalities",
				Tags: []string{
					"cbt", "dbt", "emdr", "psychodynamic", "humanistic",
					"acceptance and commitment", "solution-focused", "narrative",
					"somatic", "mindfulness-based",
				},
			},
			DimCommunicationStyles: {
				DisplayName: "Communication styles",
				Tags: []string{
					"empathetic", "structured", "direct", "gentle", "motivational",
					"exploratory", "practical", "humorous",
				},
			},
			DimIdentityTags: {
				DisplayName: "Identity-affirming tags",
				Tags: []string{
					"lgbtq+ affirming", "bipoc affirming", "faith-based",
					"neurodivergent affirming", "veteran friendly",
					"disability affirming", "immigrant experience",
				},
			},
			DimLanguages: {
				DisplayName: "Languages",
				Tags: []string{
					"english", "spanish", "french", "mandarin", "hindi",
					"arabic", "portuguese", "german", "korean", "vietnamese",
				},
			},
			DimTimeSlots: {
				DisplayName: "Time-of-day slots",
				Tags: []string{
					"weekday mornings", "weekday afternoons", "weekday evenings",
					"weekend mornings", "weekend afternoons", "weekend evenings",
				},
			},
			DimAgeGroups: {
				DisplayName: "Age groups",
				Tags: []string{
					"18-24", "25-34", "35-44", "45-54", "55-64", "65+",
				},
			},
			DimGenderIdentities: {
				DisplayName: "Gender identities",
				Tags: []string{
					"woman", "man", "non-binary", "no preference",
				},
			},
		},
	}
}
