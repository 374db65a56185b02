// internal/workers/intake/validate-assessment/schema.go
package validateassessment

// assessmentSchema is the structural contract for a submitted assessment.
// Tag content is checked against the shared vocabulary separately.
var assessmentSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"clientId"},
	"properties": map[string]interface{}{
		"clientId": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
		},
		"communicationPreferences": tagArraySchema,
		"languagePreferences":      tagArraySchema,
		"identityPreferences":      tagArraySchema,
		"therapyGoals":             tagArraySchema,
		"therapyModalities":        tagArraySchema,
		"preferredTimes":           tagArraySchema,
		"culturalIdentity":         tagArraySchema,
		"budgetMin": map[string]interface{}{
			"type":    "number",
			"minimum": 0,
		},
		"budgetMax": map[string]interface{}{
			"type":    "number",
			"minimum": 0,
		},
		"ageGroup": map[string]interface{}{
			"type": "string",
		},
		"experiencePreference": map[string]interface{}{
			"type": "string",
		},
		"therapistGenderPreference": map[string]interface{}{
			"type": "string",
		},
		"prefersSimilarAge": map[string]interface{}{
			"type": "boolean",
		},
		"prefersCulturalBackgroundMatch": map[string]interface{}{
			"type": "boolean",
		},
	},
}

var tagArraySchema = map[string]interface{}{
	"type": "array",
	"items": map[string]interface{}{
		"type": "string",
	},
}
