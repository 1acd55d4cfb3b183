// complete/types.go
// Contains core type definitions used throughout the complete package.
package complete

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
)

// =============================================================================
// Configuration Types & Constants
// =============================================================================

const (
	defaultServerAddr      = "127.0.0.1:9091"
	defaultTransport       = "tcp"
	defaultDocWrapWidth    = 78
	defaultLogLevel        = "info"
	defaultDialTimeoutSecs = 5
	defaultConfigFileName  = "config.json" // Default config file name.
	configDirName          = "complete"    // Subdirectory name for config/data.
)

// Config holds the active configuration for the completion frontend.
type Config struct {
	ServerAddr         string        `json:"server_addr"`          // Address of the code-intelligence server.
	Transport          string        `json:"transport"`            // "tcp" or "websocket".
	EnableSnippets     bool          `json:"enable_snippets"`      // Expand synthesized templates on insertion.
	DocWrapWidth       int           `json:"doc_wrap_width"`       // Wrap width for rendered documentation, 0 disables.
	LogLevel           string        `json:"log_level"`            // Log level (debug, info, warn, error).
	DialTimeoutSeconds int           `json:"dial_timeout_seconds"` // Timeout for dialing the server.
	DialTimeout        time.Duration `json:"-"`                    // Derived duration, not from file.
}

// FileConfig represents the structure of the JSON config file for unmarshalling.
// Uses pointers to distinguish between unset fields and zero-value fields.
type FileConfig struct {
	ServerAddr         *string `json:"server_addr"`
	Transport          *string `json:"transport"`
	EnableSnippets     *bool   `json:"enable_snippets"`
	DocWrapWidth       *int    `json:"doc_wrap_width"`
	LogLevel           *string `json:"log_level"`
	DialTimeoutSeconds *int    `json:"dial_timeout_seconds"`
}

// getDefaultConfig returns a new instance of the default configuration.
func getDefaultConfig() Config {
	return Config{
		ServerAddr:         defaultServerAddr,
		Transport:          defaultTransport,
		EnableSnippets:     true,
		DocWrapWidth:       defaultDocWrapWidth,
		LogLevel:           defaultLogLevel,
		DialTimeoutSeconds: defaultDialTimeoutSecs,
		DialTimeout:        defaultDialTimeoutSecs * time.Second,
	}
}

// Validate checks if configuration values are valid, applying defaults for some fields.
func (c *Config) Validate(logger *slog.Logger) error {
	var validationErrors []error
	if logger == nil {
		logger = slog.Default()
	}
	tempDefault := getDefaultConfig()

	if strings.TrimSpace(c.ServerAddr) == "" {
		validationErrors = append(validationErrors, errors.New("server_addr cannot be empty"))
	}
	switch c.Transport {
	case "tcp":
		// host:port, nothing further to check here; dialing reports bad addresses.
	case "websocket":
		parsedURL, err := url.Parse(c.ServerAddr)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Errorf("invalid server_addr for websocket transport: %w", err))
		} else if parsedURL.Scheme != "ws" && parsedURL.Scheme != "wss" {
			validationErrors = append(validationErrors, fmt.Errorf("invalid server_addr scheme '%s' for websocket transport, must be ws or wss", parsedURL.Scheme))
		}
	case "":
		logger.Warn("Config validation: transport is empty, applying default.", "default", tempDefault.Transport)
		c.Transport = tempDefault.Transport
	default:
		validationErrors = append(validationErrors, fmt.Errorf("invalid transport '%s', must be tcp or websocket", c.Transport))
	}
	if c.DocWrapWidth < 0 {
		logger.Warn("Config validation: doc_wrap_width is negative, applying default.", "configured_value", c.DocWrapWidth, "default", tempDefault.DocWrapWidth)
		c.DocWrapWidth = tempDefault.DocWrapWidth
	}
	if c.DialTimeoutSeconds <= 0 {
		logger.Warn("Config validation: dial_timeout_seconds is not positive, applying default.", "configured_value", c.DialTimeoutSeconds, "default", tempDefault.DialTimeoutSeconds)
		c.DialTimeoutSeconds = tempDefault.DialTimeoutSeconds
	}
	// Derive the time.Duration from the seconds value after validation/defaulting.
	c.DialTimeout = time.Duration(c.DialTimeoutSeconds) * time.Second

	if c.LogLevel == "" {
		logger.Warn("Config validation: log_level is empty, applying default.", "default", defaultLogLevel)
		c.LogLevel = defaultLogLevel
	} else {
		_, err := ParseLogLevel(c.LogLevel)
		if err != nil {
			logger.Warn("Config validation: Invalid log_level found, applying default.", "configured_value", c.LogLevel, "default", defaultLogLevel, "error", err)
			validationErrors = append(validationErrors, fmt.Errorf("invalid log_level '%s': %w", c.LogLevel, err))
			c.LogLevel = defaultLogLevel
		}
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(validationErrors...))
	}
	return nil
}

// =============================================================================
// Candidate & Span Types
// =============================================================================

// Candidate is one suggested completion returned by the code-intelligence
// server for the current cursor context, normalized from the per-language
// wire record. Candidates are immutable once received; their lifetime is a
// single completion session.
type Candidate struct {
	Kind          string // Opaque per-language discriminator ("f", "v", "override", ...).
	InsertionText string // Text to insert, may carry syntax like "foo(int, String)".
	Label         string // Short display string, used as the menu entry key.
	Detail        string // Secondary description, e.g. a type name or "doc - package".
	Documentation string // Raw markup documentation, empty if absent.
}

// Doc returns the raw documentation markup, or the empty string if the
// server supplied none. Field absent means empty result, never an error.
func (c Candidate) Doc() string { return c.Documentation }

// PackageOf parses Detail with the pattern "<description> - <package>" and
// returns the package segment. The second result reports whether a package
// segment was present.
func (c Candidate) PackageOf() (string, bool) {
	idx := strings.LastIndex(c.Detail, " - ")
	if idx < 0 {
		return "", false
	}
	pkg := strings.TrimSpace(c.Detail[idx+len(" - "):])
	if pkg == "" {
		return "", false
	}
	return pkg, true
}

// Span delimits the document text region a chosen candidate will replace.
// Invariant at computation time: Start <= cursor <= End.
type Span struct {
	Start int // 0-based byte offset, inclusive.
	End   int // 0-based byte offset, exclusive; the cursor position at resolution time.
}

// Len returns the byte length of the spanned text.
func (s Span) Len() int { return s.End - s.Start }

// =============================================================================
// Language Profiles
// =============================================================================

// Category identifies the kind of document being edited. It determines which
// span-resolution and insertion-action rules apply.
type Category string

const (
	CategoryJava   Category = "java"
	CategoryGroovy Category = "groovy"
	CategoryScala  Category = "scala"
	CategoryPHP    Category = "php"
	CategoryRuby   Category = "ruby"
	CategoryXML    Category = "xml"
	CategoryHTML   Category = "html"
)

// SpanRule selects how the replace-span start is computed for a category.
type SpanRule int

const (
	// SpanRuleCode backs over an opening bracket, then the current
	// identifier token, then skips a leading annotation sigil.
	SpanRuleCode SpanRule = iota
	// SpanRuleMarkup backs up to the nearest tag or attribute boundary.
	SpanRuleMarkup
)

// ActionKind selects the insertion-action variant for a category.
type ActionKind int

const (
	ActionCode ActionKind = iota
	ActionMarkup
)

// LabelField selects which wire-record field becomes the displayed label.
type LabelField int

const (
	LabelFieldMenu LabelField = iota
	LabelFieldInfo
)

// Profile is the static per-category configuration row: the external command
// name, the span-resolution rule, the candidate label field, and the
// insertion-action variant. Profiles are read-only; adding a language means
// adding a table row.
type Profile struct {
	Command  string     // Method name on the code-intelligence server.
	Span     SpanRule   // How the replace span start is computed.
	Label    LabelField // Which record field supplies the menu label.
	Action   ActionKind // Which insertion-action variant applies.
	Generics bool       // Category uses angle-bracket generics.
}

var profiles = map[Category]Profile{
	CategoryJava:   {Command: "java_complete", Span: SpanRuleCode, Label: LabelFieldInfo, Action: ActionCode, Generics: true},
	CategoryGroovy: {Command: "groovy_complete", Span: SpanRuleCode, Label: LabelFieldInfo, Action: ActionCode, Generics: true},
	CategoryScala:  {Command: "scala_complete", Span: SpanRuleCode, Label: LabelFieldInfo, Action: ActionCode, Generics: true},
	CategoryPHP:    {Command: "php_complete", Span: SpanRuleCode, Label: LabelFieldMenu, Action: ActionCode},
	CategoryRuby:   {Command: "ruby_complete", Span: SpanRuleCode, Label: LabelFieldMenu, Action: ActionCode},
	CategoryXML:    {Command: "xml_complete", Span: SpanRuleMarkup, Label: LabelFieldMenu, Action: ActionMarkup},
	CategoryHTML:   {Command: "html_complete", Span: SpanRuleMarkup, Label: LabelFieldMenu, Action: ActionMarkup},
}

// ProfileFor returns the language profile registered for category.
func ProfileFor(category Category) (Profile, bool) {
	p, ok := profiles[category]
	return p, ok
}

// Categories returns all categories with a registered profile.
func Categories() []Category {
	out := make([]Category, 0, len(profiles))
	for c := range profiles {
		out = append(out, c)
	}
	return out
}
