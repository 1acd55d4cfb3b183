// complete/helpers_template.go
// Template synthesis: converts a flat completion-insertion string into a
// nested placeholder template using bracket-depth tracking.
package complete

import (
	"fmt"
	"strings"
)

// SynthesizeTemplate converts a flat insertion string such as
// "foo(int a, List<String> b)" into a placeholder template:
//
//	foo(${1:int a}, ${2:List<String> b})
//
// Each top-level comma-separated argument becomes one numbered placeholder
// whose default text is the original argument token. Placeholder nesting
// mirrors bracket nesting exactly: only depth-1 brackets and the commas
// between them are substituted, deeper brackets are copied into the
// enclosing placeholder body untouched. The literal production "()" is
// preserved as-is and never yields a placeholder pair.
//
// Single forward pass, integer depth counter starting at 0. Openers are "("
// and "<", closers ")" and ">". An opener increments depth before the
// substitution decision; a closer decides before decrementing. Unbalanced
// input stays well-formed: pending placeholders are closed at end of input,
// and a stray comma or closer with no open placeholder is emitted literally.
func SynthesizeTemplate(insertion string) string {
	var b strings.Builder
	b.Grow(len(insertion) + 16)

	depth := 0
	open := 0 // placeholders currently open
	stop := 0 // placeholder numbering, by traversal order
	i := 0
	for i < len(insertion) {
		c := insertion[i]
		switch {
		case c == '(' && i+1 < len(insertion) && insertion[i+1] == ')':
			// Empty argument list stays literal.
			b.WriteString("()")
			i += 2
		case c == '(' || c == '<':
			j := i + 1
			for j < len(insertion) && insertion[j] == ' ' {
				j++
			}
			depth++
			if depth <= 1 {
				stop++
				b.WriteByte(c)
				fmt.Fprintf(&b, "${%d:", stop)
				open++
			} else {
				b.WriteString(insertion[i:j])
			}
			i = j
		case c == ',':
			j := i + 1
			for j < len(insertion) && insertion[j] == ' ' {
				j++
			}
			if depth <= 1 && open > 0 {
				stop++
				fmt.Fprintf(&b, "}, ${%d:", stop)
			} else {
				b.WriteString(insertion[i:j])
			}
			i = j
		case c == ')' || c == '>':
			if depth <= 1 && open > 0 {
				b.WriteByte('}')
				open--
			}
			b.WriteByte(c)
			if depth > 0 {
				depth--
			}
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
	for open > 0 {
		b.WriteByte('}')
		open--
	}
	return b.String()
}
