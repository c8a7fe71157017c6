package model

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/nikbrunner/bmparse/internal/netscape"
)

// Store holds all bookmarks and folders.
type Store struct {
	Folders   []Folder   `json:"folders"`
	Bookmarks []Bookmark `json:"bookmarks"`
}

// NewStore creates an empty Store with initialized slices.
func NewStore() *Store {
	return &Store{
		Folders:   []Folder{},
		Bookmarks: []Bookmark{},
	}
}

// FromResult flattens a parse result into a Store, keeping document order.
func FromResult(result *netscape.Result) *Store {
	store := NewStore()

	for _, f := range result.Folders {
		store.Folders = append(store.Folders, Folder{
			ID:         f.ID,
			Name:       f.Name,
			ParentID:   folderID(f.Parent),
			Attributes: rawAttributes(f.Attributes),
		})
	}

	for _, b := range result.Bookmarks {
		bookmark := Bookmark{
			ID:         b.ID,
			Title:      b.Title,
			URL:        b.URL(),
			FolderID:   folderID(b.Folder),
			Tags:       slices.Clone(b.Tags),
			Attributes: rawAttributes(b.Attributes),
		}
		if bookmark.Tags == nil {
			bookmark.Tags = []string{}
		}
		bookmark.CreatedAt = addedAt(b.Attributes)
		store.Bookmarks = append(store.Bookmarks, bookmark)
	}

	return store
}

func folderID(f *netscape.Folder) *string {
	if f == nil {
		return nil
	}
	id := f.ID
	return &id
}

// addedAt returns the add_date of attrs, converted or raw. Unparseable or
// missing values yield the zero time.
func addedAt(attrs netscape.Attributes) time.Time {
	if added, ok := attrs.Date("add_date"); ok {
		return added
	}
	sec, err := strconv.ParseInt(strings.TrimSpace(attrs.Get("add_date")), 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

// rawAttributes keeps the markup strings of every attribute except href,
// which is stored as Bookmark.URL.
func rawAttributes(attrs netscape.Attributes) map[string]string {
	raw := make(map[string]string, len(attrs))
	for name, v := range attrs {
		if name == "href" {
			continue
		}
		raw[name] = v.Raw
	}
	if len(raw) == 0 {
		return nil
	}
	return raw
}

// GetFoldersInFolder returns folders with the given parent ID.
// Pass nil for root level folders.
func (s *Store) GetFoldersInFolder(parentID *string) []Folder {
	var result []Folder
	for _, f := range s.Folders {
		if ptrEqual(f.ParentID, parentID) {
			result = append(result, f)
		}
	}
	return result
}

// GetBookmarksInFolder returns bookmarks in the given folder.
// Pass nil for root level bookmarks.
func (s *Store) GetBookmarksInFolder(folderID *string) []Bookmark {
	var result []Bookmark
	for _, b := range s.Bookmarks {
		if ptrEqual(b.FolderID, folderID) {
			result = append(result, b)
		}
	}
	return result
}

// GetFolderByID finds a folder by ID, returns nil if not found.
func (s *Store) GetFolderByID(id string) *Folder {
	for i := range s.Folders {
		if s.Folders[i].ID == id {
			return &s.Folders[i]
		}
	}
	return nil
}

// GetBookmarkByID finds a bookmark by ID, returns nil if not found.
func (s *Store) GetBookmarkByID(id string) *Bookmark {
	for i := range s.Bookmarks {
		if s.Bookmarks[i].ID == id {
			return &s.Bookmarks[i]
		}
	}
	return nil
}

// HasBookmarkURL reports whether any bookmark already points at url.
func (s *Store) HasBookmarkURL(url string) bool {
	for _, b := range s.Bookmarks {
		if b.URL == url {
			return true
		}
	}
	return false
}

// FolderPath returns folder names from the root down to the folder with the
// given ID. Unknown IDs yield nil.
func (s *Store) FolderPath(id *string) []string {
	var path []string
	seen := make(map[string]bool)
	for id != nil && !seen[*id] {
		seen[*id] = true
		f := s.GetFolderByID(*id)
		if f == nil {
			break
		}
		path = append(path, f.Name)
		id = f.ParentID
	}
	slices.Reverse(path)
	return path
}

// ImportMerge adds imported folders and bookmarks to the store.
// Bookmarks whose URL is already present are skipped; bookmarks without a URL
// are always added. An imported folder is
// merged into an existing folder with the same name under the same parent,
// and references to it are remapped. Folders must be ordered parents first.
func (s *Store) ImportMerge(folders []Folder, bookmarks []Bookmark) (added, skipped int) {
	remap := make(map[string]string, len(folders))

	for _, f := range folders {
		if f.ParentID != nil {
			if id, ok := remap[*f.ParentID]; ok {
				f.ParentID = &id
			}
		}

		if existing := s.findFolder(f.Name, f.ParentID); existing != nil {
			remap[f.ID] = existing.ID
			continue
		}

		newID := f.ID
		if s.GetFolderByID(newID) != nil {
			newID = generateUUID()
		}
		remap[f.ID] = newID
		f.ID = newID
		s.Folders = append(s.Folders, f)
	}

	for _, b := range bookmarks {
		if b.URL != "" && s.HasBookmarkURL(b.URL) {
			skipped++
			continue
		}

		if b.FolderID != nil {
			if id, ok := remap[*b.FolderID]; ok {
				b.FolderID = &id
			}
		}
		if s.GetBookmarkByID(b.ID) != nil {
			b.ID = generateUUID()
		}

		s.Bookmarks = append(s.Bookmarks, b)
		added++
	}

	return added, skipped
}

func (s *Store) findFolder(name string, parentID *string) *Folder {
	for i := range s.Folders {
		if s.Folders[i].Name == name && ptrEqual(s.Folders[i].ParentID, parentID) {
			return &s.Folders[i]
		}
	}
	return nil
}

// ptrEqual compares two string pointers for equality.
func ptrEqual(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
