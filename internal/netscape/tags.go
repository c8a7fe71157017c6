package netscape

import "slices"

// folderTags collects the name of f and of every ancestor, outermost first.
// Duplicate names are kept. Returns nil when f is nil.
func folderTags(f *Folder) []string {
	var tags []string
	for ; f != nil; f = f.Parent {
		tags = append(tags, f.Name)
	}
	slices.Reverse(tags)
	return tags
}
