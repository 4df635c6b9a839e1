package tools

import "encoding/json"

// MarshalTags serializes a tag list for storage in a JSON text column.
// nil normalizes to an empty array so readers never deal with NULL-ish text.
func MarshalTags(tags []string) string {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// ParseTags reads a stored tag column back into a list. Values that predate
// JSON storage come back as a single-tag list instead of an error.
func ParseTags(raw string) []string {
	if raw == "" || raw == "[]" {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return []string{raw}
	}
	return tags
}
