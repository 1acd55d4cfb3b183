// complete.go
// Package complete renders completion candidates from an external
// code-intelligence server into editable text. It normalizes heterogeneous
// per-language candidate records into a uniform model, computes the exact
// buffer span a completion replaces, converts flat signature strings into
// nested placeholder templates, and dispatches per-candidate post-insertion
// behavior (import injection, override-method stubs, bracket auto-closing,
// attribute-value templates).
package complete

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// Core type definitions are in complete_types.go.
// Exported error variables are in complete_errors.go.

// =============================================================================
// Interfaces for Collaborators
// =============================================================================

// Completer defines the interface to the code-intelligence server. The call
// blocks until the server replies; the transport behind it is opaque to the
// core. Failures propagate as-is, the core does not retry them.
type Completer interface {
	Complete(ctx context.Context, category Category, q Query) ([]Candidate, error)
}

// Query carries the cursor context sent to the code-intelligence server.
type Query struct {
	Path    string // Path of the document being edited.
	Offset  int    // 0-based byte offset of the cursor.
	Prefix  string // Partial token under the cursor, may be empty.
	Content string // Full document text, for servers without a file view.
}

// TextBuffer is the host editor's buffer API. Offsets are 0-based byte
// offsets into Text. Mutations shift subsequent offsets; the dispatcher
// performs at most one delete followed by one insert or expansion.
type TextBuffer interface {
	Text() string
	Cursor() int
	SetCursor(pos int)
	Insert(pos int, text string)
	Delete(span Span)
	// ExpandTemplate hands a placeholder template ("${1:default}" markers,
	// "$0" final stop) to the host's template-expansion engine at pos.
	ExpandTemplate(pos int, template string)
}

// CodeActions groups the delegated post-insertion collaborators: the
// override-stub generator and the import manager.
type CodeActions interface {
	GenerateOverrideStub(methodName string) error
	AddImport(fullyQualifiedName string) error
}

// InsertionFunc is one custom insertion strategy. It reports whether it
// handled the candidate; the dispatcher tries the registered chain in order
// and takes the first success.
type InsertionFunc func(buf TextBuffer, c Candidate, span Span) bool

// =============================================================================
// Session
// =============================================================================

// Session scopes one completion interaction, from query to insertion or
// abort. It holds the label-to-candidate index used for documentation
// lookups while the choice list is up, and is discarded at session end.
// Sessions are never shared between queries and never package-level state.
type Session struct {
	category Category
	profile  Profile
	byLabel  map[string]Candidate
	labels   []string
	closed   bool
	logger   *slog.Logger
}

// NewSession wraps the candidates returned by one completion query.
func NewSession(category Category, candidates []Candidate, logger *slog.Logger) (*Session, error) {
	prof, ok := ProfileFor(category)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		category: category,
		profile:  prof,
		byLabel:  make(map[string]Candidate, len(candidates)),
		labels:   make([]string, 0, len(candidates)),
		logger:   logger.With("component", "Session", "category", category),
	}
	for _, c := range candidates {
		label := c.Label
		if label == "" {
			label = c.InsertionText
		}
		if _, dup := s.byLabel[label]; dup {
			continue
		}
		s.byLabel[label] = c
		s.labels = append(s.labels, label)
	}
	sort.Strings(s.labels)
	return s, nil
}

// Category returns the syntactic category the session was opened for.
func (s *Session) Category() Category { return s.category }

// Labels returns the display labels in lexicographic order.
func (s *Session) Labels() []string {
	out := make([]string, len(s.labels))
	copy(out, s.labels)
	return out
}

// Lookup resolves a displayed label back to its full candidate.
func (s *Session) Lookup(label string) (Candidate, bool) {
	if s.closed {
		return Candidate{}, false
	}
	c, ok := s.byLabel[label]
	return c, ok
}

// Documentation renders the documentation of the candidate behind label,
// wrapped at width (0 disables wrapping). Absent documentation yields an
// empty string, not an error.
func (s *Session) Documentation(label string, width int) (string, error) {
	if s.closed {
		return "", ErrSessionClosed
	}
	c, ok := s.byLabel[label]
	if !ok {
		return "", nil
	}
	return RenderDoc(c.Doc(), width), nil
}

// Close discards the session's candidate index. Further lookups miss.
func (s *Session) Close() {
	s.closed = true
	s.byLabel = nil
	s.labels = nil
}

// =============================================================================
// Frontend
// =============================================================================

// Frontend ties the pipeline together: span resolution, the server query,
// session construction, presentation, and insertion dispatch. One Frontend
// serves the whole editor; sessions are per query.
type Frontend struct {
	client     Completer
	dispatcher *Dispatcher
	logger     *slog.Logger

	configMu sync.RWMutex
	config   Config
}

// NewFrontend creates the frontend with the given collaborators, loading
// configuration from the standard locations. A non-nil Frontend is returned
// alongside ErrConfig when the config was recoverably bad.
func NewFrontend(client Completer, actions CodeActions, custom []InsertionFunc, logger *slog.Logger) (*Frontend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg, cfgErr := LoadConfig(logger)
	if cfgErr != nil && !errors.Is(cfgErr, ErrConfig) {
		return nil, cfgErr
	}
	f := &Frontend{
		client:     client,
		dispatcher: NewDispatcher(actions, custom, cfg.EnableSnippets, logger),
		logger:     logger.With("component", "Frontend"),
		config:     cfg,
	}
	return f, cfgErr
}

// GetCurrentConfig returns a copy of the effective configuration.
func (f *Frontend) GetCurrentConfig() Config {
	f.configMu.RLock()
	defer f.configMu.RUnlock()
	return f.config
}

// UpdateConfig swaps in a validated configuration.
func (f *Frontend) UpdateConfig(cfg Config) error {
	if err := cfg.Validate(f.logger); err != nil {
		return err
	}
	f.configMu.Lock()
	f.config = cfg
	f.configMu.Unlock()
	f.dispatcher.SetSnippetsEnabled(cfg.EnableSnippets)
	f.logger.Info("Configuration updated", "server_addr", cfg.ServerAddr, "transport", cfg.Transport)
	return nil
}

// CompleteAt resolves the replace span at the buffer cursor, queries the
// server, and opens a session over the results. The span is returned so the
// caller can feed it back into Choose.
func (f *Frontend) CompleteAt(ctx context.Context, buf TextBuffer, path string, category Category) (*Session, Span, error) {
	text := buf.Text()
	span, err := ResolveSpan(text, buf.Cursor(), category)
	if err != nil {
		return nil, Span{}, err
	}
	q := Query{
		Path:    path,
		Offset:  span.End,
		Prefix:  text[span.Start:span.End],
		Content: text,
	}
	candidates, err := f.client.Complete(ctx, category, q)
	if err != nil {
		return nil, Span{}, err
	}
	f.logger.Debug("Completion query returned", "category", category, "count", len(candidates), "prefix", q.Prefix)
	session, err := NewSession(category, candidates, f.logger)
	if err != nil {
		return nil, Span{}, err
	}
	return session, span, nil
}

// Choose dispatches the insertion for the candidate behind label and closes
// the session. A label with no candidate behind it falls back to literal
// insertion of the label text.
func (f *Frontend) Choose(buf TextBuffer, session *Session, span Span, label string) error {
	defer session.Close()
	c, ok := session.Lookup(label)
	if !ok {
		f.logger.Debug("Chosen label not in session index, inserting literally", "label", label)
		c = Candidate{InsertionText: label, Label: label}
	}
	return f.dispatcher.Dispatch(buf, c, span, session.Category())
}

// RenderDocumentation renders candidate documentation markup to plain text
// at the configured wrap width.
func (f *Frontend) RenderDocumentation(raw string) string {
	return RenderDoc(raw, f.GetCurrentConfig().DocWrapWidth)
}

// baseName truncates an insertion string at its first "(" or "<", yielding
// the bare symbol used for import targets.
func baseName(insertion string) string {
	if idx := strings.IndexAny(insertion, "(<"); idx >= 0 {
		return insertion[:idx]
	}
	return insertion
}
