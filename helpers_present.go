// complete/helpers_present.go
// Candidate list presentation: filters the candidate set against the partial
// token and drives the "complete or show list or scroll" loop.
package complete

import (
	"log/slog"
	"sort"

	"github.com/tchap/go-patricia/v2/patricia"
)

// PresentOutcome classifies the result of one presentation step. These are
// user-facing states, not errors.
type PresentOutcome int

const (
	// OutcomeNoMatch means no candidate starts with the partial token.
	OutcomeNoMatch PresentOutcome = iota
	// OutcomeSole means the partial token is the only possible completion.
	OutcomeSole
	// OutcomeExpanded means the partial token was replaced by a longer
	// common prefix shared by all matches.
	OutcomeExpanded
	// OutcomeShown means the match set was ambiguous and the full sorted
	// list was displayed.
	OutcomeShown
	// OutcomeScrolled means the list surface was already showing and was
	// scrolled instead of recomputed.
	OutcomeScrolled
)

// PresentResult carries the outcome of one presentation step.
type PresentResult struct {
	Outcome   PresentOutcome
	Expansion string   // Replacement for the partial token, set for OutcomeExpanded.
	Matches   []string // Sorted matches, set for OutcomeShown.
}

// ListSurface is the host's dedicated read-only surface for the candidate
// list. Show replaces its contents, Scroll advances it one page.
type ListSurface interface {
	Show(entries []string)
	Scroll()
	Close()
	Visible() bool
}

// Presenter filters and sorts the candidate labels of one session and
// decides between completing in place, showing the choice list, or
// scrolling it. The label set is indexed once, in a patricia trie, and is
// read-only afterwards.
type Presenter struct {
	trie    *patricia.Trie
	surface ListSurface
	logger  *slog.Logger
}

// NewPresenter indexes the given labels. surface may be nil when the host
// has no list surface; the ambiguous branch then just reports the matches.
func NewPresenter(labels []string, surface ListSurface, logger *slog.Logger) *Presenter {
	if logger == nil {
		logger = slog.Default()
	}
	trie := patricia.NewTrie()
	for _, l := range labels {
		trie.Insert(patricia.Prefix(l), struct{}{})
	}
	return &Presenter{
		trie:    trie,
		surface: surface,
		logger:  logger.With("component", "Presenter"),
	}
}

// Present runs one step of the completion loop for the given partial token:
//
//  1. no candidate starts with the token: OutcomeNoMatch, no mutation;
//  2. the token itself is the sole candidate: OutcomeSole, no mutation;
//  3. the longest common prefix of the matches equals the token: ambiguous,
//     the sorted list is shown, or scrolled when already showing;
//  4. the longest common prefix is longer: OutcomeExpanded with the prefix,
//     and any open list surface is closed.
func (p *Presenter) Present(partial string) PresentResult {
	var matches []string
	_ = p.trie.VisitSubtree(patricia.Prefix(partial), func(prefix patricia.Prefix, item patricia.Item) error {
		matches = append(matches, string(prefix))
		return nil
	})
	sort.Strings(matches)

	if len(matches) == 0 {
		p.logger.Debug("No completions", "partial", partial)
		return PresentResult{Outcome: OutcomeNoMatch}
	}
	if len(matches) == 1 && matches[0] == partial {
		return PresentResult{Outcome: OutcomeSole}
	}

	lcp := longestCommonPrefix(matches)
	if lcp == partial {
		if p.surface != nil && p.surface.Visible() {
			p.surface.Scroll()
			return PresentResult{Outcome: OutcomeScrolled, Matches: matches}
		}
		if p.surface != nil {
			p.surface.Show(matches)
		}
		p.logger.Debug("Ambiguous completion, showing list", "partial", partial, "matches", len(matches))
		return PresentResult{Outcome: OutcomeShown, Matches: matches}
	}

	if p.surface != nil && p.surface.Visible() {
		p.surface.Close()
	}
	return PresentResult{Outcome: OutcomeExpanded, Expansion: lcp}
}

// longestCommonPrefix returns the longest prefix shared by all entries.
// The slice must be sorted; comparing first and last suffices.
func longestCommonPrefix(sorted []string) string {
	if len(sorted) == 0 {
		return ""
	}
	first, last := sorted[0], sorted[len(sorted)-1]
	max := len(first)
	if len(last) < max {
		max = len(last)
	}
	i := 0
	for i < max && first[i] == last[i] {
		i++
	}
	return first[:i]
}
