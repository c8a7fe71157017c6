// Package netscape reads the Netscape Bookmark File Format, the HTML dialect
// browsers use to export bookmarks, into a flat list of bookmarks annotated
// with their folder and folder-derived tags.
package netscape

import (
	"fmt"
	"io"
	"log/slog"
)

// Doctype is the document type every bookmark file must declare.
const Doctype = "NETSCAPE-Bookmark-file-1"

// IsValid reports whether doctype names the Netscape bookmark dialect.
// The comparison is exact.
func IsValid(doctype string) bool {
	return doctype == Doctype
}

// Options controls how a document is turned into bookmarks.
type Options struct {
	// IgnorePersonalToolbarFolder keeps the toolbar folder out of folder
	// references and tags.
	IgnorePersonalToolbarFolder bool
	// IncludeFolderTags fills Bookmark.Tags from the folder ancestry.
	IncludeFolderTags bool
	// UseDateObjects converts add_date and last_modified to dates.
	UseDateObjects bool
	// Logger receives debug records about lenient decisions. Nil discards them.
	Logger *slog.Logger
}

// DefaultOptions returns options with every flag enabled.
func DefaultOptions() Options {
	return Options{
		IgnorePersonalToolbarFolder: true,
		IncludeFolderTags:           true,
		UseDateObjects:              true,
	}
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// Parse converts a bookmark file into bookmarks in document order.
// It returns nil, nil when the file holds no bookmarks, and a *ParseError
// when the input is not a Netscape bookmark file.
func Parse(input string, opts Options) ([]Bookmark, error) {
	result, err := ParseDocument(input, opts)
	if err != nil {
		return nil, err
	}
	if len(result.Bookmarks) == 0 {
		return nil, nil
	}
	return result.Bookmarks, nil
}

// ParseReader is Parse over the full contents of r.
func ParseReader(r io.Reader, opts Options) ([]Bookmark, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Err: fmt.Errorf("%w: %w", ErrInvalidMarkup, err)}
	}
	return Parse(string(data), opts)
}

// ParseDocument is like Parse but also returns every folder that was opened.
func ParseDocument(input string, opts Options) (*Result, error) {
	doc, err := loadDocument(input)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	if !IsValid(doc.doctype) {
		return nil, &ParseError{Doctype: doc.doctype, Err: ErrInvalidDoctype}
	}

	t := newTraversal(opts)
	t.walk(doc.root)

	t.logger.Debug("parsed bookmark file",
		slog.Int("bookmarks", len(t.bookmarks)),
		slog.Int("folders", len(t.folders)),
	)

	return &Result{
		Bookmarks: t.bookmarks,
		Folders:   t.folders,
	}, nil
}
