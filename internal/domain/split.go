package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// headerTimeRe matches the synoptic time inside an observation header,
// e.g. "... Observations at 00Z 15 Jan 2021" -> 00, 15, Jan, 2021.
var headerTimeRe = regexp.MustCompile(`(\d{2})Z\s+(\d{1,2})\s+([A-Za-z]{3})\s+(\d{4})`)

var monthAbbrevs = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// SplitReport isolates each sounding's raw table text and observation time
// from a report page. Headers live in <h2> tags, tables in <pre> tags.
//
// Pages that repeat every <pre> block (table plus station metadata) carry
// exactly twice as many <pre> as <h2> tags; every other block is taken. Any
// other count mismatch returns ErrStructureMismatch and no soundings. A page
// with no headers or no tables yields an empty result without error. Headers
// whose time cannot be extracted are skipped along with their table.
func SplitReport(page string) ([]RawSounding, error) {
	headers, tables, err := collectReportBlocks(page)
	if err != nil {
		return nil, fmt.Errorf("parse report page: %w", err)
	}

	if len(headers) == 0 || len(tables) == 0 {
		return nil, nil
	}

	if len(tables) == 2*len(headers) {
		deduped := make([]string, 0, len(headers))
		for i := 0; i < len(tables); i += 2 {
			deduped = append(deduped, tables[i])
		}
		tables = deduped
	} else if len(headers) != len(tables) {
		return nil, fmt.Errorf("%w: %d headers vs %d tables", ErrStructureMismatch, len(headers), len(tables))
	}

	soundings := make([]RawSounding, 0, len(headers))
	for i, h := range headers {
		observed, ok := parseHeaderTime(h)
		if !ok {
			continue
		}
		soundings = append(soundings, RawSounding{Text: tables[i], Observed: observed})
	}
	return soundings, nil
}

// collectReportBlocks walks the HTML tree and returns the text content of
// every <h2> and <pre> element in document order.
func collectReportBlocks(page string) (headers, tables []string, err error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, nil, err
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "h2":
				headers = append(headers, nodeText(n))
			case "pre":
				tables = append(tables, nodeText(n))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return headers, tables, nil
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// parseHeaderTime extracts the synoptic observation time from a header
// string. Minute and second are always zero in this archive.
func parseHeaderTime(header string) (time.Time, bool) {
	m := headerTimeRe.FindStringSubmatch(header)
	if m == nil {
		return time.Time{}, false
	}

	hour, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[4])

	month, ok := monthAbbrevs[strings.ToLower(m[3])]
	if !ok {
		return time.Time{}, false
	}
	if hour > 23 || day < 1 || day > 31 {
		return time.Time{}, false
	}

	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC), true
}
