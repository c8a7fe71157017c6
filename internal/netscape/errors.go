package netscape

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMarkup is wrapped by a ParseError when no node tree could be built.
	ErrInvalidMarkup = errors.New("value does not appear to be valid Netscape Bookmark File Format HTML")

	// ErrInvalidDoctype is wrapped by a ParseError when the declared doctype does not match Doctype.
	ErrInvalidDoctype = errors.New("doctype does not appear to be a valid Netscape Bookmark File Format doctype")
)

// ParseError is the only error returned by the parse functions.
// No bookmarks are returned alongside it.
type ParseError struct {
	Doctype string // as declared in the input, empty when missing
	Err     error
}

func (e *ParseError) Error() string {
	if errors.Is(e.Err, ErrInvalidDoctype) {
		return fmt.Sprintf("netscape: %v (got %q)", e.Err, e.Doctype)
	}
	return "netscape: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
