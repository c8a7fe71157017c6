package model

import "time"

// Bookmark is a catalog entry flattened from a parsed bookmark file.
type Bookmark struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	URL        string            `json:"url"`
	FolderID   *string           `json:"folderId"` // nil = root level
	Tags       []string          `json:"tags"`
	CreatedAt  time.Time         `json:"createdAt"` // zero when the file had no usable ADD_DATE
	Attributes map[string]string `json:"attributes,omitempty"`
}
