// Package pagerange parses page selections such as "1-3, 5, 7-9" against a
// document's page count.
package pagerange

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrEmpty = errors.New("no page ranges given")

// Range is an inclusive, 1-based page interval.
type Range struct {
	Start int
	End   int
}

// Single reports whether r covers exactly one page.
func (r Range) Single() bool {
	return r.Start == r.End
}

// Parse splits expr on commas and validates every token against numPages.
// Empty tokens are skipped; the first invalid token aborts parsing.
func Parse(expr string, numPages int) ([]Range, error) {
	var out []Range
	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if strings.Count(part, "-") == 1 {
			startStr, endStr, _ := strings.Cut(part, "-")
			startStr, endStr = strings.TrimSpace(startStr), strings.TrimSpace(endStr)
			if startStr == "" || endStr == "" {
				return nil, fmt.Errorf("Invalid range format: '%s'", part)
			}
			start, err := atoi(startStr)
			if err != nil {
				return nil, err
			}
			end, err := atoi(endStr)
			if err != nil {
				return nil, err
			}
			if start > end {
				return nil, fmt.Errorf("Start page %d cannot be greater than end page %d", start, end)
			}
			if start < 1 || end > numPages {
				return nil, fmt.Errorf("Page range %d-%d is out of bounds. PDF has %d pages.", start, end, numPages)
			}
			out = append(out, Range{Start: start, End: end})
			continue
		}

		page, err := atoi(part)
		if err != nil {
			return nil, err
		}
		if page < 1 || page > numPages {
			return nil, fmt.Errorf("Page %d is out of bounds. PDF has %d pages.", page, numPages)
		}
		out = append(out, Range{Start: page, End: page})
	}

	if len(out) == 0 {
		return nil, ErrEmpty
	}
	return out, nil
}

func atoi(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("Invalid page number: '%s'", s)
	}
	return n, nil
}
