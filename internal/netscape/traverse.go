package netscape

import (
	"log/slog"

	"golang.org/x/net/html"
)

// traversal is the state of one walk over a document. A fresh value is used
// for every parse.
type traversal struct {
	opts   Options
	logger *slog.Logger

	// stack holds the open folders, outermost first.
	stack []*Folder
	// current is attached to new bookmarks. It usually equals the top of
	// stack but can diverge after a top-level close with the toolbar kept.
	current *Folder
	// snapshot is the top of stack recorded on the latest folder open.
	snapshot *Folder

	folders   []*Folder
	bookmarks []Bookmark
}

func newTraversal(opts Options) *traversal {
	return &traversal{
		opts:   opts,
		logger: opts.logger(),
	}
}

// walk visits the element children of n. A DL belongs to the H3 sibling
// that precedes it, so folders open on H3 and close once their DL is done.
func (t *traversal) walk(n *html.Node) {
	for _, child := range children(n) {
		switch child.Data {
		case "dl":
			t.walk(child)
			t.closeFolder()
		case "a":
			t.addBookmark(child)
		case "h3":
			t.addFolder(child)
		default:
			if child.FirstChild != nil {
				t.walk(child)
			}
		}
	}
}

func (t *traversal) top() *Folder {
	if len(t.stack) == 0 {
		return nil
	}
	return t.stack[len(t.stack)-1]
}

func (t *traversal) addFolder(n *html.Node) {
	attrs := extractAttributes(n, t.opts.UseDateObjects, t.logger)
	if t.opts.IgnorePersonalToolbarFolder && attrs.Has(attrPersonalToolbarFolder) {
		return
	}

	name := nodeText(n)
	folder := &Folder{
		ID:         newID(kindFolder, len(t.folders), name),
		Name:       name,
		Attributes: attrs,
		Parent:     t.current,
	}

	t.snapshot = t.top()
	t.stack = append(t.stack, folder)
	t.folders = append(t.folders, folder)
	t.current = folder
}

// closeFolder ends the folder whose DL was just walked. Closing at depth one
// (or with nothing open) clears the whole stack; deeper closes pop one level.
func (t *traversal) closeFolder() {
	if len(t.stack) <= 1 {
		t.stack = nil
		if t.opts.IgnorePersonalToolbarFolder {
			t.current = nil
		} else {
			t.current = t.snapshot
		}
		return
	}

	t.stack[len(t.stack)-1] = nil
	t.stack = t.stack[:len(t.stack)-1]
	t.current = t.top()
}

func (t *traversal) addBookmark(n *html.Node) {
	attrs := extractAttributes(n, t.opts.UseDateObjects, t.logger)

	bookmark := Bookmark{
		ID:         newID(kindBookmark, len(t.bookmarks), attrs.Get(attrHref)),
		Title:      nodeText(n),
		Attributes: attrs,
		Folder:     t.current,
	}
	if t.current != nil && t.opts.IncludeFolderTags {
		bookmark.Tags = folderTags(t.current)
	}

	t.bookmarks = append(t.bookmarks, bookmark)
}
