package search

import (
	"strings"

	"github.com/nikbrunner/bmparse/internal/model"
	"github.com/sahilm/fuzzy"
)

// SearchResult represents a fuzzy search match.
type SearchResult struct {
	Bookmark *model.Bookmark
	// MatchedIndexes index into the title followed by " " and the space
	// separated tags. Use TitleIndexes for highlighting.
	MatchedIndexes []int
	Score          int
}

// TitleIndexes returns the matched indexes that fall within the title.
func (r SearchResult) TitleIndexes() []int {
	var idx []int
	for _, i := range r.MatchedIndexes {
		if i < len(r.Bookmark.Title) {
			idx = append(idx, i)
		}
	}
	return idx
}

// bookmarkSource implements fuzzy.Source for a bookmark slice.
type bookmarkSource []*model.Bookmark

func (bs bookmarkSource) String(i int) string {
	return haystack(bs[i])
}

func (bs bookmarkSource) Len() int {
	return len(bs)
}

func haystack(b *model.Bookmark) string {
	if len(b.Tags) == 0 {
		return b.Title
	}
	return b.Title + " " + strings.Join(b.Tags, " ")
}

// FuzzySearchBookmarks searches all bookmarks by title and folder tags.
// Returns results sorted by match score (best first).
func FuzzySearchBookmarks(store *model.Store, query string) []SearchResult {
	if query == "" {
		return nil
	}

	bookmarks := make(bookmarkSource, len(store.Bookmarks))
	for i := range store.Bookmarks {
		bookmarks[i] = &store.Bookmarks[i]
	}

	matches := fuzzy.FindFrom(query, bookmarks)

	results := make([]SearchResult, len(matches))
	for i, m := range matches {
		results[i] = SearchResult{
			Bookmark:       bookmarks[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}

	return results
}
