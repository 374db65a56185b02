// internal/models/query_types.go
package models

type QueryType string

const (
	QueryTypeVisibleCatalog        QueryType = "visible_catalog"
	QueryTypeTherapistProfile      QueryType = "therapist_profile"
	QueryTypeTherapistsByIDs       QueryType = "therapists_by_ids"
	QueryTypeTherapistAvailability QueryType = "therapist_availability"
	QueryTypeClientAssessment      QueryType = "client_assessment"
)
