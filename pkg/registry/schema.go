// pkg/registry/schema.go
package registry

// ActivityRegistry is the machine-readable catalog of BPMN service tasks the
// matchmaking worker manager can serve. Process designers read it to know
// which task types exist and what variables each expects; tooling reads it to
// scaffold and validate workers.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

type Activity struct {
	ID                   string                 `json:"id"`
	DisplayName          string                 `json:"displayName"`
	Description          string                 `json:"description"`
	Category             string                 `json:"category"`
	Version              string                 `json:"version"`
	TaskType             string                 `json:"taskType"`
	ImplementationStatus string                 `json:"implementationStatus"`
	InputSchema          map[string]interface{} `json:"inputSchema"`
	OutputSchema         map[string]interface{} `json:"outputSchema"`
	ErrorCodes           []string               `json:"errorCodes"`
	Timeout              string                 `json:"timeout"`
	Retries              int                    `json:"retries"`
	Workflows            []string               `json:"workflows"`
	Tags                 []string               `json:"tags"`
}

// Worker categories. Each maps to a directory under internal/workers.
const (
	CategoryIntake       = "intake"
	CategoryDiscovery    = "discovery"
	CategoryCatalog      = "catalog"
	CategoryNotification = "notification"
)

// KnownCategories lists the categories a registry entry may use.
var KnownCategories = []string{
	CategoryIntake,
	CategoryDiscovery,
	CategoryCatalog,
	CategoryNotification,
}

// ValidCategory reports whether category names a worker group.
func ValidCategory(category string) bool {
	for _, c := range KnownCategories {
		if c == category {
			return true
		}
	}
	return false
}

// FindByTaskType returns the activity registered for a Zeebe task type, or
// nil when no entry matches.
func (r *ActivityRegistry) FindByTaskType(taskType string) *Activity {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i]
		}
	}
	return nil
}

// FindByID returns the activity with the given ID, or nil.
func (r *ActivityRegistry) FindByID(id string) *Activity {
	for i := range r.Activities {
		if r.Activities[i].ID == id {
			return &r.Activities[i]
		}
	}
	return nil
}
