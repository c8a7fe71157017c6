package netscape

import (
	"strconv"

	"github.com/google/uuid"
)

var idNamespace = uuid.MustParse("6f1d2c1e-4b1a-5d7e-9a43-2f0e8c6b5a10")

const (
	kindFolder   = "folder"
	kindBookmark = "bookmark"
)

// newID derives a stable UUID from the entry kind, its position among entries
// of that kind, and its name or URL. Parsing the same input twice yields the same IDs.
func newID(kind string, ordinal int, key string) string {
	name := kind + ":" + strconv.Itoa(ordinal) + ":" + key
	return uuid.NewSHA1(idNamespace, []byte(name)).String()
}
