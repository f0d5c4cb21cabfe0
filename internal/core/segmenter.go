package core

import (
	"regexp"
	"strings"
)

var (
	blockMarker = regexp.MustCompile(`Block\s+\d+:`)
	block2Start = regexp.MustCompile(`Block\s*2:`)
	block3Start = regexp.MustCompile(`Block\s*3:`)
	block4Start = regexp.MustCompile(`Block\s*4:`)
	boldPattern = regexp.MustCompile(`\*\*(.+?)\*\*`)
)

// SegmentWodResponse splits a model reply into its "Block N:" sections in order.
// Text before the first marker is dropped. A reply with no markers comes back whole.
// The last segment stops short of one final newline.
func SegmentWodResponse(text string) []string {
	locs := blockMarker.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []string{text}
	}

	segments := make([]string, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		} else if strings.HasSuffix(text, "\n") && end-1 >= loc[1] {
			end--
		}
		segments = append(segments, text[loc[0]:end])
	}
	return segments
}

// sectionBetween returns text from the first start match up to the first end
// match after it, or to the end of text.
func sectionBetween(text string, start, end *regexp.Regexp) (string, bool) {
	loc := start.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	rest := text[loc[0]:]
	if stop := end.FindStringIndex(rest[loc[1]-loc[0]:]); stop != nil {
		rest = rest[:loc[1]-loc[0]+stop[0]]
	}
	return rest, true
}

// ExtractBlocks pulls blocks 2 and 3 out of a WOD for the compact display.
func ExtractBlocks(text string) string {
	var blocks []string
	if b, ok := sectionBetween(text, block2Start, block3Start); ok {
		blocks = append(blocks, strings.TrimSpace(b))
	}
	if b, ok := sectionBetween(text, block3Start, block4Start); ok {
		blocks = append(blocks, strings.TrimSpace(b))
	}
	return strings.Join(blocks, "<br>")
}

func MarkdownBold(text string) string {
	return boldPattern.ReplaceAllString(text, "<strong>$1</strong>")
}
