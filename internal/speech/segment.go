package speech

import (
	"regexp"
	"strings"
)

// sentenceBreak matches terminal punctuation followed by whitespace. The
// split point is just after the punctuation, which stays with its sentence.
var sentenceBreak = regexp.MustCompile(`[.!?]\s+`)

// Segment splits text into trimmed, non-empty sentences. Zero or one result
// means the text should be treated as a single unit.
func Segment(text string) []string {
	var segments []string
	start := 0
	for _, m := range sentenceBreak.FindAllStringIndex(text, -1) {
		// punctuation is ASCII, so m[0]+1 is the byte after it
		segments = appendTrimmed(segments, text[start:m[0]+1])
		start = m[1]
	}
	return appendTrimmed(segments, text[start:])
}

func appendTrimmed(segments []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		segments = append(segments, s)
	}
	return segments
}
