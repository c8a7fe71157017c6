package netscape_test

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"
	"testing"
	"testing/iotest"
	"time"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
	"gotest.tools/v3/golden"

	"github.com/nikbrunner/bmparse/internal/netscape"
)

const header = "<!DOCTYPE NETSCAPE-Bookmark-file-1>\n<TITLE>Bookmarks</TITLE>\n<H1>Bookmarks</H1>\n"

func parse(t *testing.T, body string, opts netscape.Options) []netscape.Bookmark {
	t.Helper()
	bookmarks, err := netscape.Parse(header+body, opts)
	assert.NilError(t, err)
	return bookmarks
}

func folderName(b netscape.Bookmark) string {
	if b.Folder == nil {
		return ""
	}
	return b.Folder.Name
}

func TestParse_NestedFolders(t *testing.T) {
	bookmarks := parse(t, `
<DL><p>
    <DT><H3>A</H3>
    <DL><p>
        <DT><A HREF="https://x.example/">X</A>
        <DT><H3>B</H3>
        <DL><p>
            <DT><A HREF="https://y.example/">Y</A>
        </DL><p>
    </DL><p>
</DL><p>`, netscape.DefaultOptions())

	assert.Assert(t, is.Len(bookmarks, 2))

	x, y := bookmarks[0], bookmarks[1]
	assert.Equal(t, x.Title, "X")
	assert.Equal(t, x.URL(), "https://x.example/")
	assert.Equal(t, folderName(x), "A")
	assert.DeepEqual(t, x.Tags, []string{"A"})

	assert.Equal(t, y.Title, "Y")
	assert.Equal(t, folderName(y), "B")
	assert.DeepEqual(t, y.Tags, []string{"A", "B"})
	assert.Assert(t, y.Folder.Parent == x.Folder, "B should point back to A")
	assert.Assert(t, x.Folder.Parent == nil)
}

func TestParse_ClosingTopLevelFolderClearsStack(t *testing.T) {
	bookmarks := parse(t, `
<DL><p>
    <DT><H3>A</H3>
    <DL><p>
        <DT><A HREF="https://x.example/">X</A>
    </DL><p>
    <DT><A HREF="https://y.example/">Y</A>
</DL><p>`, netscape.DefaultOptions())

	assert.Assert(t, is.Len(bookmarks, 2))
	assert.Equal(t, folderName(bookmarks[0]), "A")
	assert.Assert(t, bookmarks[1].Folder == nil)
	assert.Assert(t, bookmarks[1].Tags == nil)
}

func TestParse_ClosingNestedFolderPopsOneLevel(t *testing.T) {
	bookmarks := parse(t, `
<DL><p>
    <DT><H3>A</H3>
    <DL><p>
        <DT><H3>B</H3>
        <DL><p>
            <DT><A HREF="https://b.example/">InB</A>
        </DL><p>
        <DT><A HREF="https://a.example/">InA</A>
    </DL><p>
</DL><p>`, netscape.DefaultOptions())

	assert.Assert(t, is.Len(bookmarks, 2))
	assert.DeepEqual(t, bookmarks[0].Tags, []string{"A", "B"})
	assert.Equal(t, folderName(bookmarks[1]), "A")
	assert.DeepEqual(t, bookmarks[1].Tags, []string{"A"})
}

const toolbarBody = `
<DL><p>
    <DT><H3 ADD_DATE="1" PERSONAL_TOOLBAR_FOLDER="true">Bookmarks bar</H3>
    <DL><p>
        <DT><A HREF="https://t.example/">T</A>
        <DT><H3>Sub</H3>
        <DL><p>
            <DT><A HREF="https://s.example/">S</A>
        </DL><p>
    </DL><p>
</DL><p>`

func TestParse_IgnoresPersonalToolbarFolder(t *testing.T) {
	bookmarks := parse(t, toolbarBody, netscape.DefaultOptions())

	assert.Assert(t, is.Len(bookmarks, 2))
	for _, b := range bookmarks {
		for f := b.Folder; f != nil; f = f.Parent {
			assert.Assert(t, f.Name != "Bookmarks bar", "toolbar folder leaked into %q", b.Title)
		}
		assert.Assert(t, !slices.Contains(b.Tags, "Bookmarks bar"))
	}

	assert.Assert(t, bookmarks[0].Folder == nil)
	assert.Equal(t, folderName(bookmarks[1]), "Sub")
	assert.DeepEqual(t, bookmarks[1].Tags, []string{"Sub"})
}

func TestParse_KeepsPersonalToolbarFolder(t *testing.T) {
	opts := netscape.DefaultOptions()
	opts.IgnorePersonalToolbarFolder = false

	bookmarks := parse(t, toolbarBody, opts)

	assert.Assert(t, is.Len(bookmarks, 2))
	assert.Equal(t, folderName(bookmarks[0]), "Bookmarks bar")
	assert.Assert(t, bookmarks[0].Folder.IsPersonalToolbar())
	assert.DeepEqual(t, bookmarks[1].Tags, []string{"Bookmarks bar", "Sub"})
}

// A toolbar folder nested one level deep is not pushed, but its DL still
// closes a folder: the enclosing one.
func TestParse_IgnoredToolbarClosesEnclosingFolder(t *testing.T) {
	bookmarks := parse(t, `
<DL><p>
    <DT><H3>A</H3>
    <DL><p>
        <DT><H3 PERSONAL_TOOLBAR_FOLDER="true">Toolbar</H3>
        <DL><p>
            <DT><A HREF="https://t.example/">T</A>
        </DL><p>
        <DT><A HREF="https://a.example/">After</A>
    </DL><p>
</DL><p>`, netscape.DefaultOptions())

	assert.Assert(t, is.Len(bookmarks, 2))
	assert.Equal(t, folderName(bookmarks[0]), "A")
	assert.DeepEqual(t, bookmarks[0].Tags, []string{"A"})
	assert.Assert(t, bookmarks[1].Folder == nil)
	assert.Assert(t, bookmarks[1].Tags == nil)
}

// With the toolbar kept, a top-level close restores the folder that was on
// top of the stack when the last folder was opened.
func TestParse_TopLevelCloseRestoresSnapshot(t *testing.T) {
	body := `
<DL><p>
    <DT><H3>A</H3>
    <DL><p>
        <DT><H3>B</H3>
        <DL><p>
            <DT><A HREF="https://b.example/">InB</A>
        </DL><p>
    </DL><p>
    <DT><A HREF="https://top.example/">Top</A>
</DL><p>`

	opts := netscape.DefaultOptions()
	opts.IgnorePersonalToolbarFolder = false
	kept := parse(t, body, opts)
	assert.Assert(t, is.Len(kept, 2))
	assert.Equal(t, folderName(kept[1]), "A")
	assert.DeepEqual(t, kept[1].Tags, []string{"A"})

	ignored := parse(t, body, netscape.DefaultOptions())
	assert.Assert(t, is.Len(ignored, 2))
	assert.Assert(t, ignored[1].Folder == nil)
}

func TestParse_FolderTagsDisabled(t *testing.T) {
	opts := netscape.DefaultOptions()
	opts.IncludeFolderTags = false

	bookmarks := parse(t, `
<DL><p>
    <DT><H3>A</H3>
    <DL><p>
        <DT><A HREF="https://x.example/">X</A>
    </DL><p>
</DL><p>`, opts)

	assert.Assert(t, is.Len(bookmarks, 1))
	assert.Equal(t, folderName(bookmarks[0]), "A")
	assert.Assert(t, bookmarks[0].Tags == nil)
}

func TestParse_DuplicateFolderNamesKept(t *testing.T) {
	bookmarks := parse(t, `
<DL><p>
    <DT><H3>Docs</H3>
    <DL><p>
        <DT><H3>Docs</H3>
        <DL><p>
            <DT><A HREF="https://x.example/">X</A>
        </DL><p>
    </DL><p>
</DL><p>`, netscape.DefaultOptions())

	assert.Assert(t, is.Len(bookmarks, 1))
	assert.DeepEqual(t, bookmarks[0].Tags, []string{"Docs", "Docs"})
}

func TestParse_RawDates(t *testing.T) {
	opts := netscape.DefaultOptions()
	opts.UseDateObjects = false

	bookmarks := parse(t, `
<DL><p>
    <DT><A HREF="https://x.example/" ADD_DATE="1466009059" LAST_MODIFIED="1466009179">X</A>
</DL><p>`, opts)

	assert.Assert(t, is.Len(bookmarks, 1))
	attrs := bookmarks[0].Attributes
	assert.Equal(t, attrs.Get("add_date"), "1466009059")
	assert.Equal(t, attrs.Get("last_modified"), "1466009179")
	assert.Assert(t, !attrs["add_date"].IsDate())
	assert.Assert(t, !attrs["last_modified"].IsDate())
}

func TestParse_EpochDate(t *testing.T) {
	bookmarks := parse(t, `
<DL><p>
    <DT><A HREF="https://x.example/" ADD_DATE="0">X</A>
</DL><p>`, netscape.DefaultOptions())

	assert.Assert(t, is.Len(bookmarks, 1))
	added, ok := bookmarks[0].Attributes.Date("add_date")
	assert.Assert(t, ok)
	assert.Assert(t, added.Equal(time.Unix(0, 0)), "got %v", added)
}

func TestParse_FolderDates(t *testing.T) {
	bookmarks := parse(t, `
<DL><p>
    <DT><H3 ADD_DATE="1466009059" LAST_MODIFIED="1466009300">Dev</H3>
    <DL><p>
        <DT><A HREF="https://x.example/">X</A>
    </DL><p>
</DL><p>`, netscape.DefaultOptions())

	assert.Assert(t, is.Len(bookmarks, 1))
	modified, ok := bookmarks[0].Folder.Attributes.Date("last_modified")
	assert.Assert(t, ok)
	assert.Assert(t, modified.Equal(time.Unix(1466009300, 0)))
}

func TestParse_NonNumericDateStaysRaw(t *testing.T) {
	bookmarks := parse(t, `
<DL><p>
    <DT><A HREF="https://x.example/" ADD_DATE="yesterday" LAST_MODIFIED="12">X</A>
</DL><p>`, netscape.DefaultOptions())

	assert.Assert(t, is.Len(bookmarks, 1))
	attrs := bookmarks[0].Attributes
	assert.Equal(t, attrs.Get("add_date"), "yesterday")
	assert.Assert(t, !attrs["add_date"].IsDate())
	assert.Assert(t, attrs["last_modified"].IsDate())
}

func TestParse_AttributesPassThrough(t *testing.T) {
	bookmarks := parse(t, `
<DL><p>
    <DT><A HREF="https://x.example/" ICON="data:image/png;base64,AAAA" SHORTCUTURL="x" PRIVATE>Example &amp; Co</A>
</DL><p>`, netscape.DefaultOptions())

	assert.Assert(t, is.Len(bookmarks, 1))
	b := bookmarks[0]
	assert.Equal(t, b.Title, "Example & Co")
	assert.Equal(t, b.Attributes.Get("icon"), "data:image/png;base64,AAAA")
	assert.Equal(t, b.Attributes.Get("shortcuturl"), "x")
	assert.Assert(t, b.Attributes.Has("private"))
	assert.DeepEqual(t, b.Attributes.Names(), []string{"href", "icon", "private", "shortcuturl"})
}

func TestParse_SubListWithoutHeading(t *testing.T) {
	bookmarks := parse(t, `
<DL><p>
    <DL><p>
        <DT><A HREF="https://x.example/">X</A>
    </DL><p>
    <DT><A HREF="https://y.example/">Y</A>
</DL><p>`, netscape.DefaultOptions())

	assert.Assert(t, is.Len(bookmarks, 2))
	assert.Assert(t, bookmarks[0].Folder == nil)
	assert.Assert(t, bookmarks[1].Folder == nil)
}

func TestParse_NoBookmarks(t *testing.T) {
	bookmarks, err := netscape.Parse(header+`
<DL><p>
    <DT><H3>Empty</H3>
    <DL><p>
    </DL><p>
</DL><p>`, netscape.DefaultOptions())

	assert.NilError(t, err)
	assert.Assert(t, bookmarks == nil)
}

func TestParse_InvalidDoctype(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "unknown format", input: "<!DOCTYPE X-Unknown-Format>\n<DL><p><DT><A HREF=\"https://x.example/\">X</A></DL>"},
		{name: "html5", input: "<!DOCTYPE html>\n<DL><p><DT><A HREF=\"https://x.example/\">X</A></DL>"},
		{name: "wrong case", input: "<!DOCTYPE netscape-bookmark-file-1>\n<DL><p><DT><A HREF=\"https://x.example/\">X</A></DL>"},
		{name: "missing", input: "<DL><p><DT><A HREF=\"https://x.example/\">X</A></DL>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookmarks, err := netscape.Parse(tt.input, netscape.DefaultOptions())

			assert.Assert(t, bookmarks == nil)
			var parseErr *netscape.ParseError
			assert.Assert(t, errors.As(err, &parseErr), "got %v", err)
			assert.ErrorIs(t, err, netscape.ErrInvalidDoctype)
		})
	}
}

func TestParse_InvalidDoctypeReportsName(t *testing.T) {
	_, err := netscape.Parse("<!DOCTYPE X-Unknown-Format>", netscape.DefaultOptions())

	var parseErr *netscape.ParseError
	assert.Assert(t, errors.As(err, &parseErr))
	assert.Equal(t, parseErr.Doctype, "X-Unknown-Format")
	assert.ErrorContains(t, err, "X-Unknown-Format")
}

func TestParse_EmptyInput(t *testing.T) {
	for _, input := range []string{"", "  \n\t"} {
		bookmarks, err := netscape.Parse(input, netscape.DefaultOptions())

		assert.Assert(t, bookmarks == nil)
		assert.ErrorIs(t, err, netscape.ErrInvalidMarkup)
	}
}

func TestParseReader_ReadFailure(t *testing.T) {
	r := iotest.ErrReader(errors.New("disk on fire"))

	bookmarks, err := netscape.ParseReader(r, netscape.DefaultOptions())

	assert.Assert(t, bookmarks == nil)
	var parseErr *netscape.ParseError
	assert.Assert(t, errors.As(err, &parseErr))
	assert.ErrorIs(t, err, netscape.ErrInvalidMarkup)
	assert.ErrorContains(t, err, "disk on fire")
}

func TestParseReader_File(t *testing.T) {
	f, err := os.Open("testdata/firefox.html")
	assert.NilError(t, err)
	defer f.Close()

	bookmarks, err := netscape.ParseReader(f, netscape.DefaultOptions())
	assert.NilError(t, err)
	assert.Assert(t, is.Len(bookmarks, 6))
}

func TestParseDocument_ListsFolders(t *testing.T) {
	input, err := os.ReadFile("testdata/firefox.html")
	assert.NilError(t, err)

	result, err := netscape.ParseDocument(string(input), netscape.DefaultOptions())
	assert.NilError(t, err)

	var names []string
	for _, f := range result.Folders {
		names = append(names, f.Name)
	}
	assert.DeepEqual(t, names, []string{"Development", "Go"})
	assert.Assert(t, result.Folders[1].Parent == result.Folders[0])
}

func TestParse_Idempotent(t *testing.T) {
	input, err := os.ReadFile("testdata/firefox.html")
	assert.NilError(t, err)

	first, err := netscape.Parse(string(input), netscape.DefaultOptions())
	assert.NilError(t, err)
	second, err := netscape.Parse(string(input), netscape.DefaultOptions())
	assert.NilError(t, err)

	assert.DeepEqual(t, first, second)
	assert.Equal(t, first[2].ID, second[2].ID)
	assert.Equal(t, first[2].Folder.ID, second[2].Folder.ID)
}

func TestParse_ConcurrentCallsAreIndependent(t *testing.T) {
	input, err := os.ReadFile("testdata/firefox.html")
	assert.NilError(t, err)

	want, err := netscape.Parse(string(input), netscape.DefaultOptions())
	assert.NilError(t, err)

	const workers = 8
	results := make([][]netscape.Bookmark, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = netscape.Parse(string(input), netscape.DefaultOptions())
		}()
	}
	wg.Wait()

	for _, got := range results {
		assert.DeepEqual(t, got, want)
	}
}

func TestParse_Golden(t *testing.T) {
	input, err := os.ReadFile("testdata/firefox.html")
	assert.NilError(t, err)

	keepToolbar := netscape.DefaultOptions()
	keepToolbar.IgnorePersonalToolbarFolder = false
	keepToolbar.UseDateObjects = false

	tests := []struct {
		name   string
		opts   netscape.Options
		golden string
	}{
		{name: "default", opts: netscape.DefaultOptions(), golden: "firefox_default.golden"},
		{name: "keep toolbar raw dates", opts: keepToolbar, golden: "firefox_keep_toolbar.golden"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookmarks, err := netscape.Parse(string(input), tt.opts)
			assert.NilError(t, err)
			golden.Assert(t, outline(bookmarks), tt.golden)
		})
	}
}

func outline(bookmarks []netscape.Bookmark) string {
	var b strings.Builder
	for _, bm := range bookmarks {
		folder := "-"
		if bm.Folder != nil {
			folder = bm.Folder.Name
		}
		tags := "-"
		if bm.Tags != nil {
			tags = strings.Join(bm.Tags, "/")
		}
		fmt.Fprintf(&b, "%s | %s | folder=%s | tags=%s | added=%s\n",
			bm.Title, bm.URL(), folder, tags, bm.Attributes["add_date"])
	}
	return b.String()
}
