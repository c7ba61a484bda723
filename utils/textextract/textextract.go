// Package textextract holds the shared regex heuristics used by every row
// parser, so date and episode parsing behaves identically across
// broadcasters.
package textextract

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	yearRe      = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	yearRangeRe = regexp.MustCompile(`\b(19\d{2}|20\d{2})\s*[-–—]\s*(19\d{2}|20\d{2})\b`)
	// Episode counts: "209 capítulos", "150 cap.", "60 episódios", "24 ep"
	episodesRe  = regexp.MustCompile(`(?i)\b(\d{1,4})\s*(?:cap(?:ítulos|itulos|s)?\.?|ep(?:isódios|isodios|isodes|s)?\.?)`)
	titleYearRe = regexp.MustCompile(`\s*\((\d{4})\)\s*$`)
	footnoteRe  = regexp.MustCompile(`\[\d+\]`)
	wsRe        = regexp.MustCompile(`\s+`)
)

// Clean collapses whitespace, strips footnote markers like [1], and trims.
func Clean(s string) string {
	s = footnoteRe.ReplaceAllString(s, "")
	s = wsRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Year extracts the first plausible 4-digit year from s, or 0.
func Year(s string) int {
	m := yearRe.FindString(s)
	if m == "" {
		return 0
	}
	y, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return y
}

// YearRange extracts a "start–end" year pair. When only a single year is
// present it is returned as the start with end 0.
func YearRange(s string) (start, end int) {
	if m := yearRangeRe.FindStringSubmatch(s); m != nil {
		start, _ = strconv.Atoi(m[1])
		end, _ = strconv.Atoi(m[2])
		if end < start {
			end = 0
		}
		return start, end
	}
	return Year(s), 0
}

// Episodes extracts an episode/chapter count such as "209 capítulos" or
// "24 ep", or 0 when none is present.
func Episodes(s string) int {
	m := episodesRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// SplitTitleYear strips a trailing "(YYYY)" suffix from a title, returning
// the cleaned title and the parsed year (0 when absent).
func SplitTitleYear(title string) (string, int) {
	m := titleYearRe.FindStringSubmatch(title)
	if m == nil {
		return strings.TrimSpace(title), 0
	}
	y, err := strconv.Atoi(m[1])
	if err != nil {
		return strings.TrimSpace(title), 0
	}
	return strings.TrimSpace(titleYearRe.ReplaceAllString(title, "")), y
}
