package model

// Folder is a catalog folder. Parents always precede their children in Store.Folders.
type Folder struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	ParentID   *string           `json:"parentId"` // nil = root level
	Attributes map[string]string `json:"attributes,omitempty"`
}
