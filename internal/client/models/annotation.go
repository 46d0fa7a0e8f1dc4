package models

import "strings"

// Annotation is a user research note attached to an archive record.
type Annotation struct {
	ID          string   `json:"id"`
	UserID      string   `json:"user_id,omitempty"`
	DatasetID   string   `json:"dataset_id"`
	DatasetType string   `json:"dataset_type"`
	Notes       string   `json:"notes"`
	Tags        []string `json:"tags"`
}

// AnnotationInput is the create/update payload.
type AnnotationInput struct {
	DatasetID   string   `json:"dataset_id"`
	DatasetType string   `json:"dataset_type"`
	Notes       string   `json:"notes"`
	Tags        []string `json:"tags"`
}

// ParseTags splits comma-separated user input into trimmed, non-empty tags.
// The result is never nil so it encodes as [] rather than null.
func ParseTags(s string) []string {
	tags := make([]string, 0)
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
