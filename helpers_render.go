// complete/helpers_render.go
// Documentation rendering: converts the restricted markup subset used in
// server documentation strings to plain, line-wrapped text.
package complete

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"
)

// RenderDoc converts documentation markup to plain text in a single forward
// pass. Paragraph tags ("<p>", "</p>") emit a line break, "<br/>" emits a
// space, "<li>" emits a literal " * " marker, and any other well-formed tag
// is dropped while the text around it is kept verbatim. A "<" that does not
// begin a well-formed tag is ordinary text, so rendering is idempotent on
// already-plain input. width > 0 re-flows the result to that many columns.
func RenderDoc(raw string, width int) string {
	var b strings.Builder
	b.Grow(len(raw))

	i := 0
	for i < len(raw) {
		j := strings.IndexByte(raw[i:], '<')
		if j < 0 {
			b.WriteString(raw[i:])
			break
		}
		j += i
		end, ok := tagEnd(raw, j)
		if !ok {
			// Malformed tag, treat the "<" as ordinary text.
			b.WriteString(raw[i : j+1])
			i = j + 1
			continue
		}
		b.WriteString(raw[i:j])
		switch raw[j:end] {
		case "<p>", "</p>":
			b.WriteByte('\n')
		case "<br/>":
			b.WriteByte(' ')
		case "<li>":
			b.WriteString(" * ")
		default:
			// Unrecognized tag produces no output.
		}
		i = end
	}

	out := b.String()
	if width > 0 {
		out = wordwrap.String(out, width)
	}
	return out
}

// tagEnd scans a candidate tag starting at the "<" at raw[start] and returns
// the offset just past its ">". A tag is "<", an optional "/", one or more
// ASCII letters or digits, an optional trailing "/", then ">". Anything else
// fails the match.
func tagEnd(raw string, start int) (int, bool) {
	i := start + 1
	if i < len(raw) && raw[i] == '/' {
		i++
	}
	nameStart := i
	for i < len(raw) && isTagNameByte(raw[i]) {
		i++
	}
	if i == nameStart {
		return 0, false
	}
	if i < len(raw) && raw[i] == '/' {
		i++
	}
	if i < len(raw) && raw[i] == '>' {
		return i + 1, true
	}
	return 0, false
}

func isTagNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
