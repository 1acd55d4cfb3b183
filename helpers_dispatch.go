// complete/helpers_dispatch.go
// Insertion dispatch: given a chosen candidate and its resolved span,
// decides and executes the post-insertion behavior.
package complete

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync/atomic"
)

var (
	// overrideLabelRe matches labels of override-method candidates, e.g.
	// "equals(Object obj) - Override method in 'java.lang.Object'".
	overrideLabelRe = regexp.MustCompile(`^\s*([A-Za-z_$][A-Za-z0-9_$]*)\s*\(.*-\s*Override method`)

	// packageHintRe splits a label into insertion text and a trailing
	// package hint, e.g. "foo(int) - com.example".
	packageHintRe = regexp.MustCompile(`^(.*?)\s+-\s+([A-Za-z_][A-Za-z0-9_.]*)\s*$`)
)

// Dispatcher executes the buffer mutation and any secondary action for a
// chosen candidate. Each invocation is terminal: one branch runs, no
// retries. Side effects are confined to the TextBuffer and the CodeActions
// collaborators.
type Dispatcher struct {
	actions  CodeActions
	custom   []InsertionFunc // ordered strategies, first success wins
	snippets atomic.Bool
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher. The custom insertion chain is explicit
// and injectable; it is tried in order before the built-in behavior.
func NewDispatcher(actions CodeActions, custom []InsertionFunc, snippets bool, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		actions: actions,
		custom:  custom,
		logger:  logger.With("component", "Dispatcher"),
	}
	d.snippets.Store(snippets)
	return d
}

// SetSnippetsEnabled toggles template expansion at runtime.
func (d *Dispatcher) SetSnippetsEnabled(on bool) { d.snippets.Store(on) }

// Dispatch routes the candidate to the action variant selected by its kind
// and the document category.
func (d *Dispatcher) Dispatch(buf TextBuffer, c Candidate, span Span, category Category) error {
	prof, ok := ProfileFor(category)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	switch {
	case overrideLabelRe.MatchString(c.Label):
		return d.dispatchOverride(buf, c, span)
	case prof.Action == ActionMarkup:
		return d.dispatchMarkup(buf, c, span)
	default:
		return d.dispatchCode(buf, c, span)
	}
}

// dispatchOverride parses the method name from the label, deletes the span,
// and delegates stub generation to the code-generation collaborator.
func (d *Dispatcher) dispatchOverride(buf TextBuffer, c Candidate, span Span) error {
	m := overrideLabelRe.FindStringSubmatch(c.Label)
	method := m[1]
	buf.Delete(span)
	d.logger.Debug("Generating override stub", "method", method)
	return d.actions.GenerateOverrideStub(method)
}

// dispatchCode handles general code candidates: parse the label into
// insertion text plus an optional package hint, delete the span, run the
// custom insertion chain, fall back to template expansion or raw insertion,
// and finally request the import when a hint was present.
func (d *Dispatcher) dispatchCode(buf TextBuffer, c Candidate, span Span) error {
	chosen := c.Label
	if chosen == "" {
		chosen = c.InsertionText
	}
	insertion, pkg := splitPackageHint(chosen)
	if insertion == "" {
		insertion = c.InsertionText
	}

	buf.Delete(span)
	handled := false
	for _, fn := range d.custom {
		if fn(buf, c, span) {
			handled = true
			break
		}
	}
	if !handled {
		switch {
		case strings.HasSuffix(insertion, "("):
			// Bare opener, the auto-close path owns the closer.
			buf.Insert(span.Start, insertion)
			d.autoClose(buf, span.Start+len(insertion))
		case d.snippets.Load() && strings.ContainsAny(insertion, "(<"):
			buf.ExpandTemplate(span.Start, SynthesizeTemplate(insertion))
		default:
			buf.Insert(span.Start, insertion)
			d.autoClose(buf, span.Start+len(insertion))
		}
	}

	if pkg != "" {
		fq := pkg + "." + baseName(insertion)
		d.logger.Debug("Requesting import", "name", fq)
		return d.actions.AddImport(fq)
	}
	return nil
}

// dispatchMarkup handles markup categories. When the character before the
// span start is whitespace or newline the completion is an attribute: the
// chosen text is normalized to end with `=""` and a two-field template is
// expanded with the value placeholder inside the quotes and the final cursor
// after it. Inside a tag-name position the text is inserted plainly.
func (d *Dispatcher) dispatchMarkup(buf TextBuffer, c Candidate, span Span) error {
	chosen := c.InsertionText
	if chosen == "" {
		chosen = c.Label
	}

	if !beforeIsSpace(buf.Text(), span.Start) {
		buf.Delete(span)
		buf.Insert(span.Start, chosen)
		return nil
	}

	if !strings.ContainsRune(chosen, '"') {
		chosen += `=""`
	}
	name := chosen
	if idx := strings.Index(chosen, `="`); idx >= 0 {
		name = chosen[:idx]
	}
	buf.Delete(span)
	buf.ExpandTemplate(span.Start, name+`="${1}"$0`)
	return nil
}

// autoClose inserts a matching ")" when the character just inserted at
// end-1 is "(" and the next character is not already ")". With snippets
// enabled an empty placeholder is expanded instead, leaving the cursor
// before the closer.
func (d *Dispatcher) autoClose(buf TextBuffer, end int) {
	text := buf.Text()
	if end <= 0 || end > len(text) || text[end-1] != '(' {
		return
	}
	if end < len(text) && text[end] == ')' {
		return
	}
	if d.snippets.Load() {
		buf.ExpandTemplate(end, "${1})$0")
		return
	}
	buf.Insert(end, ")")
	buf.SetCursor(end)
}

// splitPackageHint parses "<insertion> ... - <package>" labels. A label
// without the trailing hint yields the label itself and an empty package;
// pattern no-match is expected branching, not an error.
func splitPackageHint(label string) (insertion, pkg string) {
	m := packageHintRe.FindStringSubmatch(label)
	if m == nil {
		return label, ""
	}
	return m[1], m[2]
}

// beforeIsSpace reports whether the character immediately before pos is
// whitespace or a newline, or pos is at the start of the document.
func beforeIsSpace(text string, pos int) bool {
	if pos <= 0 {
		return true
	}
	c := text[pos-1]
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
