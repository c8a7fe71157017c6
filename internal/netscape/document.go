package netscape

import (
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
)

// childElements selects the immediate element children of the context node.
var childElements = xpath.MustCompile("./*")

// document is a parsed node tree plus the doctype name it declared.
type document struct {
	root    *html.Node
	doctype string
}

func loadDocument(input string) (*document, error) {
	if strings.TrimSpace(input) == "" {
		return nil, ErrInvalidMarkup
	}

	root, err := htmlquery.Parse(strings.NewReader(input))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMarkup, err)
	}

	return &document{
		root:    root,
		doctype: doctypeName(input),
	}, nil
}

// doctypeName returns the name of the leading doctype declaration exactly as
// written. The tree builder lowercases it, so the raw token is read instead.
func doctypeName(input string) string {
	z := html.NewTokenizer(strings.NewReader(input))
	for {
		switch z.Next() {
		case html.ErrorToken, html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			return ""
		case html.DoctypeToken:
			fields := strings.Fields(string(z.Text()))
			if len(fields) == 0 {
				return ""
			}
			return fields[0]
		}
	}
}

func children(n *html.Node) []*html.Node {
	return htmlquery.QuerySelectorAll(n, childElements)
}

// nodeText returns the concatenated text of n and its descendants, untrimmed.
func nodeText(n *html.Node) string {
	return htmlquery.InnerText(n)
}
