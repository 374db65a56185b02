// internal/workers/catalog/query-therapists/queries/therapist.go
package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

const therapistColumns = `id, name, personality_tags, languages, identity_tags, specialties,
	       modalities, communication_style, session_format, gender_identity,
	       age_group, session_rates, years_experience, availability,
	       cultural_background, is_verified, is_active`

func VisibleCatalog(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT `+therapistColumns+`
		FROM therapists
		WHERE is_verified = true AND is_active = true
		ORDER BY name`)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	results, err := collectTherapists(rows)
	if err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}

func TherapistProfile(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	therapistID, ok := params["therapistId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT `+therapistColumns+`
		FROM therapists
		WHERE id = $1`, therapistID)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	results, err := collectTherapists(rows)
	if err != nil {
		return nil, 0, 0, err
	}
	if len(results) == 0 {
		return nil, 0, 0, sql.ErrNoRows
	}

	execTime := time.Since(start).Milliseconds()
	return results[0], 1, execTime, nil
}

func TherapistsByIDs(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	ids, ok := params["therapistIds"].([]string)
	if !ok || len(ids) == 0 {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT `+therapistColumns+`
		FROM therapists
		WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	results, err := collectTherapists(rows)
	if err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}

func TherapistAvailability(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	therapistID, ok := params["therapistId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	var availabilityRaw []byte
	var sessionFormat string
	err := db.QueryRowContext(ctx, `
		SELECT availability, session_format
		FROM therapists
		WHERE id = $1`, therapistID).Scan(&availabilityRaw, &sessionFormat)
	if err != nil {
		return nil, 0, 0, err
	}

	availability := map[string]bool{}
	if len(availabilityRaw) > 0 {
		if err := json.Unmarshal(availabilityRaw, &availability); err != nil {
			return nil, 0, 0, err
		}
	}

	result := map[string]interface{}{
		"therapistId":   therapistID,
		"availability":  availability,
		"sessionFormat": sessionFormat,
	}

	execTime := time.Since(start).Milliseconds()
	return result, 1, execTime, nil
}

func collectTherapists(rows *sql.Rows) ([]map[string]interface{}, error) {
	var results []map[string]interface{}
	for rows.Next() {
		var id, name, communicationStyle, sessionFormat, genderIdentity string
		var ageGroup, yearsExperience string
		var personalityTags, languages, identityTags, specialties []byte
		var modalities, sessionRates, availability, culturalBackground []byte
		var isVerified, isActive bool

		err := rows.Scan(
			&id, &name, &personalityTags, &languages, &identityTags, &specialties,
			&modalities, &communicationStyle, &sessionFormat, &genderIdentity,
			&ageGroup, &sessionRates, &yearsExperience, &availability,
			&culturalBackground, &isVerified, &isActive,
		)
		if err != nil {
			return nil, err
		}

		results = append(results, map[string]interface{}{
			"id":                 id,
			"name":               name,
			"personalityTags":    decodeJSON(personalityTags, []string{}),
			"languages":          decodeJSON(languages, []string{}),
			"identityTags":       decodeJSON(identityTags, []string{}),
			"specialties":        decodeJSON(specialties, []string{}),
			"modalities":         decodeJSON(modalities, []string{}),
			"communicationStyle": communicationStyle,
			"sessionFormat":      sessionFormat,
			"genderIdentity":     genderIdentity,
			"ageGroup":           ageGroup,
			"sessionRates":       decodeJSON(sessionRates, map[string]float64{}),
			"yearsExperience":    yearsExperience,
			"availability":       decodeJSON(availability, map[string]bool{}),
			"culturalBackground": decodeJSON(culturalBackground, []string{}),
			"isVerified":         isVerified,
			"isActive":           isActive,
		})
	}
	return results, rows.Err()
}

// decodeJSON returns fallback when the column is empty or malformed so a
// single bad row does not sink a whole catalog read.
func decodeJSON[T any](raw []byte, fallback T) T {
	if len(raw) == 0 {
		return fallback
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return fallback
	}
	return out
}
