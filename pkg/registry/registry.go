// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// SaveRegistry writes the registry back with a refreshed lastUpdated stamp.
func SaveRegistry(path string, reg *ActivityRegistry) error {
	reg.LastUpdated = time.Now().Format("2006-01-02")
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks structural invariants: required fields present, categories
// known, and IDs and task types unique across the registry.
func (r *ActivityRegistry) Validate() []error {
	var errs []error
	seenIDs := make(map[string]bool)
	seenTaskTypes := make(map[string]bool)

	for _, a := range r.Activities {
		if a.ID == "" {
			errs = append(errs, fmt.Errorf("activity with task type %q has no id", a.TaskType))
			continue
		}
		if seenIDs[a.ID] {
			errs = append(errs, fmt.Errorf("duplicate activity id: %s", a.ID))
		}
		seenIDs[a.ID] = true

		if a.TaskType == "" {
			errs = append(errs, fmt.Errorf("activity %s has no taskType", a.ID))
		} else if seenTaskTypes[a.TaskType] {
			errs = append(errs, fmt.Errorf("duplicate task type: %s", a.TaskType))
		}
		seenTaskTypes[a.TaskType] = true

		if a.DisplayName == "" {
			errs = append(errs, fmt.Errorf("activity %s has no displayName", a.ID))
		}
		if !ValidCategory(a.Category) {
			errs = append(errs, fmt.Errorf("activity %s has unknown category %q", a.ID, a.Category))
		}
	}
	return errs
}
