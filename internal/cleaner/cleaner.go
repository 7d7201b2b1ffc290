// Package cleaner turns raw caption segments into a single readable transcript.
package cleaner

import (
	"regexp"
	"strings"

	"github.com/mgpai22/shortscribe/internal/caption"
)

var (
	// M:SS, MM:SS and H:MM:SS, optionally bracketed, in any script's digits
	timestampRegex = regexp.MustCompile(`\[?\p{Nd}{1,2}:\p{Nd}{2}(?::\p{Nd}{2})?\]?`)
	markupRegex    = regexp.MustCompile(`<[^>]+>`)
	// literal set only, not a case-insensitive match
	noiseRegex = regexp.MustCompile(`\[(?:music|Music|applause|Applause|__)\]`)
	// every Unicode space, not just the ASCII ones \s covers
	whitespaceRegex = regexp.MustCompile(`[\s\v\x{1c}-\x{1f}\x{85}\p{Z}]+`)
)

// Join trims every segment, drops empty lines and lines identical to the
// previous kept line, and joins the rest with single spaces.
func Join(segments []caption.Segment) string {
	lines := make([]string, 0, len(segments))
	last := ""
	for _, seg := range segments {
		line := strings.TrimSpace(seg.Text)
		if line == "" || line == last {
			continue
		}
		last = line
		lines = append(lines, line)
	}
	return strings.Join(lines, " ")
}

// Clean strips timestamps, markup and noise tokens and collapses whitespace.
// An all-noise input yields "".
func Clean(raw string) string {
	text := timestampRegex.ReplaceAllString(raw, " ")
	text = markupRegex.ReplaceAllString(text, " ")
	text = noiseRegex.ReplaceAllString(text, " ")
	text = whitespaceRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Normalize never fails; the worst case is an empty string.
func Normalize(segments []caption.Segment) string {
	return Clean(Join(segments))
}
