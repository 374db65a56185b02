// internal/workers/catalog/query-therapists/queries/assessment.go
package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

func ClientAssessment(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	clientID, ok := params["clientId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	var data []byte
	var updatedAt string
	err := db.QueryRowContext(ctx, `
		SELECT data, updated_at
		FROM client_assessments
		WHERE client_id = $1`, clientID).Scan(&data, &updatedAt)
	if err != nil {
		return nil, 0, 0, err
	}

	assessment := map[string]interface{}{}
	if err := json.Unmarshal(data, &assessment); err != nil {
		return nil, 0, 0, err
	}

	result := map[string]interface{}{
		"clientId":   clientID,
		"assessment": assessment,
		"updatedAt":  updatedAt,
	}

	execTime := time.Since(start).Milliseconds()
	return result, 1, execTime, nil
}
