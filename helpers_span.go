// complete/helpers_span.go
// Span resolution: determines the buffer span a completion replaces based on
// the syntactic category of the document being edited.
package complete

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// ResolveSpan computes the span of text the completion replaces. The end
// offset is always the cursor position at the time of invocation; the start
// offset is recomputed per syntactic category:
//
//   - Code categories: step one character back if the character immediately
//     before the cursor is "(" (or "<" for categories with angle-bracket
//     generics), then move back to the start of the current identifier
//     token, then skip forward over a leading annotation sigil "@"
//     (annotation completions are reported by the server without it).
//   - Markup categories: move back while the preceding character is not
//     whitespace, newline, or "<", i.e. to the nearest tag or attribute
//     boundary.
//
// An unregistered category yields ErrUnknownCategory; a cursor outside the
// content bounds yields ErrInvalidCursor.
func ResolveSpan(content string, cursor int, category Category) (Span, error) {
	prof, ok := ProfileFor(category)
	if !ok {
		return Span{}, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	if cursor < 0 || cursor > len(content) {
		return Span{}, fmt.Errorf("%w: offset %d, content length %d", ErrInvalidCursor, cursor, len(content))
	}

	var start int
	switch prof.Span {
	case SpanRuleMarkup:
		start = markupSpanStart(content, cursor)
	default:
		start = codeSpanStart(content, cursor, prof.Generics)
	}
	return Span{Start: start, End: cursor}, nil
}

func codeSpanStart(content string, cursor int, generics bool) int {
	start := cursor
	if start > 0 {
		r, size := utf8.DecodeLastRuneInString(content[:start])
		if r == '(' || (generics && r == '<') {
			start -= size
		}
	}
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(content[:start])
		if !isSymbolRune(r) {
			break
		}
		start -= size
	}
	if start < cursor {
		if r, size := utf8.DecodeRuneInString(content[start:]); r == '@' {
			start += size
		}
	}
	return start
}

func markupSpanStart(content string, cursor int) int {
	start := cursor
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(content[:start])
		if r == '<' || r == '\n' || unicode.IsSpace(r) {
			break
		}
		start -= size
	}
	return start
}

// isSymbolRune reports whether r can appear in an identifier/symbol token.
// The annotation sigil is included so the backward scan crosses it; the
// resolver then steps forward over it again.
func isSymbolRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$' || r == '@'
}
