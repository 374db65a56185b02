// internal/workers/notification/send-match-notification/models.go
package sendmatchnotification

type Input struct {
	RecipientID      string                 `json:"recipientId"`
	RecipientType    string                 `json:"recipientType"` // "client" or "therapist"
	NotificationType string                 `json:"notificationType"`
	MatchCount       int                    `json:"matchCount,omitempty"`
	TopMatchName     string                 `json:"topMatchName,omitempty"`
	Priority         string                 `json:"priority,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"` // "sent", "failed", "disabled"
	SentAt         string `json:"sentAt"` // ISO 8601
}

// Notification types
const (
	TypeMatchesReady       = "matches_ready"
	TypeNewClientMatch     = "new_client_match"
	TypeAssessmentReceived = "assessment_received"
)

// Statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

// Recipient types
const (
	RecipientTypeClient    = "client"
	RecipientTypeTherapist = "therapist"
)
