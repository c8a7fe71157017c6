package netscape

import (
	"encoding/json"
	"slices"
	"time"
)

// Value is a single attribute value. Date is set when the raw value was a
// Unix timestamp converted under Options.UseDateObjects.
type Value struct {
	Raw  string
	Date *time.Time
}

// IsDate reports whether the value was converted to a date.
func (v Value) IsDate() bool {
	return v.Date != nil
}

func (v Value) String() string {
	if v.Date != nil {
		return v.Date.Format(time.RFC3339)
	}
	return v.Raw
}

// MarshalJSON encodes dates as RFC 3339 strings and everything else as the raw string.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Date != nil {
		return json.Marshal(v.Date)
	}
	return json.Marshal(v.Raw)
}

// Attributes maps lowercased markup attribute names to their values.
type Attributes map[string]Value

// Has reports whether the attribute is present, regardless of its value.
func (a Attributes) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// Get returns the raw value of an attribute, or "" when absent.
func (a Attributes) Get(name string) string {
	return a[name].Raw
}

// Date returns the converted date of an attribute.
func (a Attributes) Date(name string) (time.Time, bool) {
	v, ok := a[name]
	if !ok || v.Date == nil {
		return time.Time{}, false
	}
	return *v.Date, true
}

// Names returns the attribute names in sorted order.
func (a Attributes) Names() []string {
	names := make([]string, 0, len(a))
	for name := range a {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Folder is a bookmark folder introduced by an H3 heading.
type Folder struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Attributes Attributes `json:"attributes"`
	Parent     *Folder    `json:"parent,omitempty"` // nil = root level
}

// Path returns the folder names from the outermost ancestor down to f.
func (f *Folder) Path() []string {
	return folderTags(f)
}

// IsPersonalToolbar reports whether the folder carries the toolbar marker.
func (f *Folder) IsPersonalToolbar() bool {
	return f.Attributes.Has(attrPersonalToolbarFolder)
}

// Bookmark is a single link.
type Bookmark struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Attributes Attributes `json:"attributes"`
	Folder     *Folder    `json:"folder,omitempty"` // nil = no open folder
	Tags       []string   `json:"tags,omitempty"`   // nil = absent
}

// URL returns the HREF attribute.
func (b Bookmark) URL() string {
	return b.Attributes.Get(attrHref)
}

// Result holds everything a traversal produced.
type Result struct {
	Bookmarks []Bookmark
	// Folders lists every folder pushed on the stack, in document order,
	// including folders that hold no bookmarks.
	Folders []*Folder
}
