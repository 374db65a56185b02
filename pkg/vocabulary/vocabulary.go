// pkg/vocabulary/vocabulary.go
package vocabulary

import (
	"encoding/json"
	"os"
	"strings"
)

// Normalize lowercases and trims a tag so client intake and therapist
// profile editing always produce the same canonical form.
func Normalize(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// NormalizeAll normalizes a tag list, dropping empties and duplicates while
// preserving first-seen order.
func NormalizeAll(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		n := Normalize(t)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// LoadVocabulary reads a vocabulary file published for other services.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var v Vocabulary
	err = json.Unmarshal(data, &v)
	return &v, err
}

// SaveVocabulary writes the vocabulary for publication to other services.
func SaveVocabulary(path string, v *Vocabulary) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// IsKnown reports whether a tag belongs to the named dimension. Unknown
// dimensions reject everything.
func (v *Vocabulary) IsKnown(dimension, tag string) bool {
	dim, ok := v.Dimensions[dimension]
	if !ok {
		return false
	}
	n := Normalize(tag)
	for _, t := range dim.Tags {
		if t == n {
			return true
		}
	}
	return false
}

// UnknownTags returns the members of tags not present in the dimension.
func (v *Vocabulary) UnknownTags(dimension string, tags []string) []string {
	var unknown []string
	for _, t := range tags {
		if !v.IsKnown(dimension, t) {
			unknown = append(unknown, Normalize(t))
		}
	}
	return unknown
}
