// pkg/vocabulary/vocabulary_test.go
package vocabulary

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Anxiety", "anxiety"},
		{"  CBT  ", "cbt"},
		{"LGBTQ+ Affirming", "lgbtq+ affirming"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Normalize(tt.input))
	}
}

func TestNormalizeAll(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{"nil input", nil, nil},
		{"dedupes after normalization", []string{"Anxiety", "anxiety ", "CBT"}, []string{"anxiety", "cbt"}},
		{"drops empties", []string{" ", "", "grief"}, []string{"grief"}},
		{"preserves first-seen order", []string{"Trauma", "grief", "TRAUMA"}, []string{"trauma", "grief"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeAll(tt.input))
		})
	}
}

func TestVocabulary_IsKnown(t *testing.T) {
	v := Default()

	assert.True(t, v.IsKnown(DimSpecialties, "anxiety"))
	assert.True(t, v.IsKnown(DimSpecialties, "  Anxiety "))
	assert.False(t, v.IsKnown(DimSpecialties, "underwater basket weaving"))
	assert.False(t, v.IsKnown("no-such-dimension", "anxiety"))
}

func TestVocabulary_UnknownTags(t *testing.T) {
	v := Default()

	unknown := v.UnknownTags(DimModalities, []string{"CBT", "emdr", "hypnosis", "Reiki"})
	assert.Equal(t, []string{"hypnosis", "reiki"}, unknown)

	assert.Nil(t, v.UnknownTags(DimModalities, []string{"cbt"}))
	assert.Nil(t, v.UnknownTags(DimModalities, nil))
}

func TestSaveAndLoadVocabulary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocabulary.json")

	original := Default()
	require.NoError(t, SaveVocabulary(path, original))

	loaded, err := LoadVocabulary(path)
	require.NoError(t, err)
	assert.Equal(t, original.Version, loaded.Version)
	assert.Equal(t, original.Dimensions[DimSpecialties].Tags, loaded.Dimensions[DimSpecialties].Tags)

	_, err = LoadVocabulary(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
