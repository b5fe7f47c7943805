package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var readingRe = regexp.MustCompile(`[-+]?\d+`)

// Reading extracts the meter value from the text returned by the reading
// service. The service is asked for a bare integer, but answers such as
// "135.", "Reading: 135" or "135\n" are tolerated by taking the first
// integer token.
func Reading(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("empty reading")
	}

	token := readingRe.FindString(s)
	if token == "" {
		return 0, fmt.Errorf("no integer in reading %q", raw)
	}

	n, err := strconv.Atoi(token)
	if err != nil {
		return 0, fmt.Errorf("invalid reading %q: %w", raw, err)
	}
	return n, nil
}
