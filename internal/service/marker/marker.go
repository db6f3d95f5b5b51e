// Package marker finds and removes sentinel blocks such as
// "[WISH_DETECTED] ... [/WISH_DETECTED]" in model replies.
//
// Matching is a two-phase scan: locate the open tag, then the first close tag
// after it. Nested or repeated blocks of the same tag are not paired; the first
// open tag always pairs with the nearest close tag.
package marker

import (
	"strings"

	"github.com/samber/lo"
)

type Tag string

const (
	Wish      Tag = "WISH_DETECTED"
	Superwish Tag = "SUPERWISH_DETECTED"
)

// Known lists every tag a reply may carry, in stripping order.
var Known = []Tag{Wish, Superwish}

func (t Tag) Open() string  { return "[" + string(t) + "]" }
func (t Tag) Close() string { return "[/" + string(t) + "]" }

// span locates the first complete block of tag in text at or after from.
// start is the index of the open tag, inner the inner content bounds and end the
// index just past the close tag.
func span(text string, tag Tag, from int) (start, innerStart, innerEnd, end int, ok bool) {
	open, closing := tag.Open(), tag.Close()

	i := strings.Index(text[from:], open)
	if i < 0 {
		return 0, 0, 0, 0, false
	}
	start = from + i
	innerStart = start + len(open)

	j := strings.Index(text[innerStart:], closing)
	if j < 0 {
		return 0, 0, 0, 0, false
	}
	innerEnd = innerStart + j
	end = innerEnd + len(closing)
	return start, innerStart, innerEnd, end, true
}

// Extract returns the inner content of the first tag block, untrimmed.
func Extract(text string, tag Tag) (string, bool) {
	_, innerStart, innerEnd, _, ok := span(text, tag, 0)
	if !ok {
		return "", false
	}
	return text[innerStart:innerEnd], true
}

// Has reports whether text contains a complete block of tag.
func Has(text string, tag Tag) bool {
	_, ok := Extract(text, tag)
	return ok
}

// Strip removes every complete block of the given tags, together with one
// newline directly after each close tag, and trims the result.
func Strip(text string, tags ...Tag) string {
	for _, tag := range lo.Uniq(tags) {
		text = stripTag(text, tag)
	}
	return strings.TrimSpace(text)
}

func stripTag(text string, tag Tag) string {
	var sb strings.Builder
	pos := 0
	for {
		start, _, _, end, ok := span(text, tag, pos)
		if !ok {
			break
		}
		sb.WriteString(text[pos:start])
		if end < len(text) && text[end] == '\n' {
			end++
		}
		pos = end
	}
	if pos == 0 {
		return text
	}
	sb.WriteString(text[pos:])
	return sb.String()
}
