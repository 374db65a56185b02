// internal/workers/catalog/query-therapists/models.go
package querytherapists

import "matchmaking-workers/internal/models"

type Input struct {
	QueryType    string   `json:"queryType"`
	TherapistID  string   `json:"therapistId,omitempty"`
	TherapistIDs []string `json:"therapistIds,omitempty"`
	ClientID     string   `json:"clientId,omitempty"`
}

type Output struct {
	Data               interface{} `json:"data"`
	RowCount           int         `json:"rowCount"`
	QueryExecutionTime int64       `json:"queryExecutionTime"` // milliseconds
}

type QueryType = models.QueryType

var (
	QueryTypeVisibleCatalog        = models.QueryTypeVisibleCatalog
	QueryTypeTherapistProfile      = models.QueryTypeTherapistProfile
	QueryTypeTherapistsByIDs       = models.QueryTypeTherapistsByIDs
	QueryTypeTherapistAvailability = models.QueryTypeTherapistAvailability
	QueryTypeClientAssessment      = models.QueryTypeClientAssessment
)
