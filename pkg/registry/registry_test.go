// pkg/registry/registry_test.go
package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry() *ActivityRegistry {
	return &ActivityRegistry{
		Version: "1.0",
		Activities: []Activity{
			{
				ID:          "find-matches",
				DisplayName: "Find Matches",
				Category:    CategoryDiscovery,
				TaskType:    "find-matches",
			},
			{
				ID:          "validate-assessment",
				DisplayName: "Validate Assessment",
				Category:    CategoryIntake,
				TaskType:    "validate-assessment",
			},
		},
	}
}

func TestSaveAndLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity-registry.json")

	require.NoError(t, SaveRegistry(path, testRegistry()))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, "1.0", loaded.Version)
	assert.NotEmpty(t, loaded.LastUpdated)
	assert.Len(t, loaded.Activities, 2)
}

func TestFindByTaskType(t *testing.T) {
	reg := testRegistry()

	found := reg.FindByTaskType("find-matches")
	require.NotNil(t, found)
	assert.Equal(t, CategoryDiscovery, found.Category)

	assert.Nil(t, reg.FindByTaskType("does-not-exist"))
}

func TestValidate(t *testing.T) {
	reg := testRegistry()
	assert.Empty(t, reg.Validate())

	reg.Activities = append(reg.Activities, Activity{
		ID:          "find-matches",
		DisplayName: "Duplicate",
		Category:    "billing",
		TaskType:    "find-matches",
	})

	errs := reg.Validate()
	require.Len(t, errs, 3)
	assert.Contains(t, errs[0].Error(), "duplicate activity id")
	assert.Contains(t, errs[1].Error(), "duplicate task type")
	assert.Contains(t, errs[2].Error(), "unknown category")
}
