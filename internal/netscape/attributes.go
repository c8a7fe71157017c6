package netscape

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	attrHref                  = "href"
	attrAddDate               = "add_date"
	attrLastModified          = "last_modified"
	attrPersonalToolbarFolder = "personal_toolbar_folder"
)

// dateAttributes are converted to dates when date objects are enabled.
var dateAttributes = []string{attrAddDate, attrLastModified}

// extractAttributes copies every attribute of n into Attributes. The first
// occurrence of a duplicated name wins. Timestamps that fail to parse stay raw.
func extractAttributes(n *html.Node, useDates bool, logger *slog.Logger) Attributes {
	attrs := make(Attributes, len(n.Attr))
	for _, attr := range n.Attr {
		if _, seen := attrs[attr.Key]; seen {
			continue
		}
		attrs[attr.Key] = Value{Raw: attr.Val}
	}

	if !useDates {
		return attrs
	}

	for _, name := range dateAttributes {
		v, ok := attrs[name]
		if !ok {
			continue
		}
		date, err := parseTimestamp(v.Raw)
		if err != nil {
			logger.Debug("keeping raw timestamp",
				slog.String("element", n.Data),
				slog.String("attribute", name),
				slog.String("value", v.Raw),
				slog.Any("err", err),
			)
			continue
		}
		v.Date = &date
		attrs[name] = v
	}

	return attrs
}

// parseTimestamp reads integer seconds since the Unix epoch.
func parseTimestamp(raw string) (time.Time, error) {
	sec, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(sec, 0).UTC(), nil
}
