// internal/matching/config_test.go
package matching

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWeightsFromFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(dir, "weights.json")
		content := `{
			"personality": 0.30,
			"identity": 0.10,
			"specialty": 0.30,
			"modality": 0.15,
			"availability": 0.15
		}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		weights, err := LoadWeightsFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, 0.30, weights.Personality)
		assert.Equal(t, 0.15, weights.Availability)
	})

	t.Run("invalid weights rejected", func(t *testing.T) {
		path := filepath.Join(dir, "bad-weights.json")
		content := `{"personality": 0.9, "identity": 0.9, "specialty": 0.9, "modality": 0.9, "availability": 0.9}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		_, err := LoadWeightsFromFile(path)
		assert.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		path := filepath.Join(dir, "garbage.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

		_, err := LoadWeightsFromFile(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadWeightsFromFile(filepath.Join(dir, "does-not-exist.json"))
		assert.Error(t, err)
	})
}
