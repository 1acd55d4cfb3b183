// complete/complete_test.go
package complete

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

// ============================================================================
// Candidate Tests
// ============================================================================

func TestCandidatePackageOf(t *testing.T) {
	tests := []struct {
		name     string
		detail   string
		wantPkg  string
		wantOk   bool
	}{
		{"Detail with package segment", "foo(int) - com.example", "com.example", true},
		{"Detail without separator", "just a description", "", false},
		{"Empty detail", "", "", false},
		{"Separator with empty package", "desc - ", "", false},
		{"Multiple separators take last", "a - b - com.other", "com.other", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Candidate{Detail: tt.detail}
			pkg, ok := c.PackageOf()
			if pkg != tt.wantPkg || ok != tt.wantOk {
				t.Errorf("PackageOf() = (%q, %v), want (%q, %v)", pkg, ok, tt.wantPkg, tt.wantOk)
			}
		})
	}
}

func TestCandidateDoc(t *testing.T) {
	if got := (Candidate{Documentation: "text"}).Doc(); got != "text" {
		t.Errorf("Doc() = %q, want %q", got, "text")
	}
	if got := (Candidate{}).Doc(); got != "" {
		t.Errorf("Doc() on empty candidate = %q, want empty", got)
	}
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		insertion string
		want      string
	}{
		{"foo(int)", "foo"},
		{"singletonList<T>", "singletonList"},
		{"plain", "plain"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := baseName(tt.insertion); got != tt.want {
			t.Errorf("baseName(%q) = %q, want %q", tt.insertion, got, tt.want)
		}
	}
}

// ============================================================================
// Config Tests
// ============================================================================

func TestConfigValidate(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	t.Run("Default config is valid", func(t *testing.T) {
		cfg := getDefaultConfig()
		if err := cfg.Validate(logger); err != nil {
			t.Errorf("Validate() on defaults: %v", err)
		}
	})

	t.Run("Empty server addr rejected", func(t *testing.T) {
		cfg := getDefaultConfig()
		cfg.ServerAddr = "  "
		if err := cfg.Validate(logger); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
		}
	})

	t.Run("Websocket transport requires ws scheme", func(t *testing.T) {
		cfg := getDefaultConfig()
		cfg.Transport = "websocket"
		cfg.ServerAddr = "http://127.0.0.1:9091"
		if err := cfg.Validate(logger); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
		}
		cfg.ServerAddr = "ws://127.0.0.1:9091"
		if err := cfg.Validate(logger); err != nil {
			t.Errorf("Validate() with ws scheme: %v", err)
		}
	})

	t.Run("Unknown transport rejected", func(t *testing.T) {
		cfg := getDefaultConfig()
		cfg.Transport = "carrier-pigeon"
		if err := cfg.Validate(logger); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
		}
	})

	t.Run("Empty transport repaired to default", func(t *testing.T) {
		cfg := getDefaultConfig()
		cfg.Transport = ""
		if err := cfg.Validate(logger); err != nil {
			t.Errorf("Validate() error = %v, want repair without error", err)
		}
		if cfg.Transport != defaultTransport {
			t.Errorf("Transport = %q, want %q", cfg.Transport, defaultTransport)
		}
	})

	t.Run("Negative wrap width repaired", func(t *testing.T) {
		cfg := getDefaultConfig()
		cfg.DocWrapWidth = -1
		if err := cfg.Validate(logger); err != nil {
			t.Errorf("Validate() error = %v, want repair without error", err)
		}
		if cfg.DocWrapWidth != defaultDocWrapWidth {
			t.Errorf("DocWrapWidth = %d, want %d", cfg.DocWrapWidth, defaultDocWrapWidth)
		}
	})

	t.Run("Dial timeout derived from seconds", func(t *testing.T) {
		cfg := getDefaultConfig()
		cfg.DialTimeoutSeconds = 11
		if err := cfg.Validate(logger); err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		if cfg.DialTimeout != 11*time.Second {
			t.Errorf("DialTimeout = %v, want 11s", cfg.DialTimeout)
		}
	})

	t.Run("Invalid log level rejected and repaired", func(t *testing.T) {
		cfg := getDefaultConfig()
		cfg.LogLevel = "loud"
		if err := cfg.Validate(logger); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
		}
		if cfg.LogLevel != defaultLogLevel {
			t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, defaultLogLevel)
		}
	})
}

func TestLoadAndMergeConfig(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	t.Run("Missing file is not an error", func(t *testing.T) {
		cfg := getDefaultConfig()
		loaded, err := LoadAndMergeConfig(filepath.Join(t.TempDir(), "nope.json"), &cfg, logger)
		if err != nil {
			t.Fatalf("LoadAndMergeConfig() error = %v", err)
		}
		if loaded {
			t.Error("loaded = true for a missing file")
		}
	})

	t.Run("Set fields override, unset fields keep defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		content := `{"server_addr": "10.0.0.1:7000", "enable_snippets": false}`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		cfg := getDefaultConfig()
		loaded, err := LoadAndMergeConfig(path, &cfg, logger)
		if err != nil || !loaded {
			t.Fatalf("LoadAndMergeConfig() = (%v, %v)", loaded, err)
		}
		if cfg.ServerAddr != "10.0.0.1:7000" {
			t.Errorf("ServerAddr = %q, want overridden value", cfg.ServerAddr)
		}
		if cfg.EnableSnippets {
			t.Error("EnableSnippets = true, want overridden false")
		}
		if cfg.DocWrapWidth != defaultDocWrapWidth {
			t.Errorf("DocWrapWidth = %d, want untouched default %d", cfg.DocWrapWidth, defaultDocWrapWidth)
		}
	})

	t.Run("Malformed JSON reports a parse error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
			t.Fatal(err)
		}
		cfg := getDefaultConfig()
		loaded, err := LoadAndMergeConfig(path, &cfg, logger)
		if err == nil {
			t.Fatal("expected parse error")
		}
		if !loaded {
			t.Error("loaded = false, want true for an existing but bad file")
		}
	})
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{" warn ", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLogLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// ============================================================================
// Profile Tests
// ============================================================================

func TestProfileFor(t *testing.T) {
	prof, ok := ProfileFor(CategoryJava)
	if !ok {
		t.Fatal("ProfileFor(java) not found")
	}
	if prof.Command != "java_complete" || !prof.Generics || prof.Label != LabelFieldInfo {
		t.Errorf("unexpected java profile: %+v", prof)
	}
	if _, ok := ProfileFor(Category("cobol")); ok {
		t.Error("ProfileFor(cobol) = ok, want miss")
	}
	if len(Categories()) != 7 {
		t.Errorf("Categories() count = %d, want 7", len(Categories()))
	}
}

// ============================================================================
// Record Normalization Tests
// ============================================================================

func TestNewCandidate(t *testing.T) {
	javaProf, _ := ProfileFor(CategoryJava)
	rubyProf, _ := ProfileFor(CategoryRuby)

	tests := []struct {
		name      string
		rec       completionRecord
		prof      Profile
		wantLabel string
		wantDoc   string
	}{
		{
			"Info-labelled profile uses info",
			completionRecord{Completion: "foo(", Menu: "void", Info: "foo(int) - com.example", Doc: "docs"},
			javaProf,
			"foo(int) - com.example",
			"docs",
		},
		{
			"Menu-labelled profile uses menu",
			completionRecord{Completion: "each", Menu: "each { }", Info: "iterates"},
			rubyProf,
			"each { }",
			"iterates",
		},
		{
			"Empty label falls back to completion",
			completionRecord{Completion: "bare"},
			rubyProf,
			"bare",
			"",
		},
		{
			"Explicit doc wins over info",
			completionRecord{Completion: "x", Menu: "m", Info: "short", Doc: "long form"},
			rubyProf,
			"m",
			"long form",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCandidate(tt.rec, tt.prof)
			if c.Label != tt.wantLabel {
				t.Errorf("label = %q, want %q", c.Label, tt.wantLabel)
			}
			if c.Documentation != tt.wantDoc {
				t.Errorf("doc = %q, want %q", c.Documentation, tt.wantDoc)
			}
			if c.InsertionText != tt.rec.Completion {
				t.Errorf("insertion = %q, want %q", c.InsertionText, tt.rec.Completion)
			}
		})
	}
}

// ============================================================================
// Session Tests
// ============================================================================

func TestSession(t *testing.T) {
	candidates := []Candidate{
		{Label: "getValue", InsertionText: "getValue(", Documentation: "<p>Gets it.</p>"},
		{Label: "get", InsertionText: "get("},
		{InsertionText: "unlabelled"},
		{Label: "get", InsertionText: "duplicate, dropped"},
	}
	s, err := NewSession(CategoryJava, candidates, nil)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}

	want := []string{"get", "getValue", "unlabelled"}
	if got := s.Labels(); !reflect.DeepEqual(got, want) {
		t.Errorf("Labels() = %v, want %v", got, want)
	}

	c, ok := s.Lookup("get")
	if !ok || c.InsertionText != "get(" {
		t.Errorf("Lookup(get) = (%+v, %v), want first occurrence kept", c, ok)
	}
	if _, ok := s.Lookup("absent"); ok {
		t.Error("Lookup(absent) = ok, want miss")
	}

	doc, err := s.Documentation("getValue", 0)
	if err != nil || doc != "\nGets it.\n" {
		t.Errorf("Documentation(getValue) = (%q, %v)", doc, err)
	}
	doc, err = s.Documentation("get", 0)
	if err != nil || doc != "" {
		t.Errorf("Documentation(get) = (%q, %v), want empty without error", doc, err)
	}

	s.Close()
	if _, ok := s.Lookup("get"); ok {
		t.Error("Lookup after Close = ok, want miss")
	}
	if _, err := s.Documentation("get", 0); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Documentation after Close: error = %v, want ErrSessionClosed", err)
	}
}

func TestNewSessionUnknownCategory(t *testing.T) {
	if _, err := NewSession(Category("cobol"), nil, nil); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("NewSession() error = %v, want ErrUnknownCategory", err)
	}
}

// ============================================================================
// Frontend Tests
// ============================================================================

// fakeCompleter returns canned candidates and records the query it received.
type fakeCompleter struct {
	candidates []Candidate
	err        error
	gotQuery   Query
	gotCat     Category
}

func (f *fakeCompleter) Complete(ctx context.Context, category Category, q Query) ([]Candidate, error) {
	f.gotQuery = q
	f.gotCat = category
	return f.candidates, f.err
}

func newTestFrontend(client Completer, actions CodeActions) *Frontend {
	cfg := getDefaultConfig()
	return &Frontend{
		client:     client,
		dispatcher: NewDispatcher(actions, nil, cfg.EnableSnippets, nil),
		logger:     slog.Default(),
		config:     cfg,
	}
}

func TestFrontendCompleteAtAndChoose(t *testing.T) {
	client := &fakeCompleter{candidates: []Candidate{
		{Label: "getValue(int idx)", InsertionText: "getValue(int idx)"},
	}}
	actions := &fakeActions{}
	f := newTestFrontend(client, actions)

	buf := newFakeBuffer("x = obj.getV", 12)
	session, span, err := f.CompleteAt(context.Background(), buf, "Main.java", CategoryJava)
	if err != nil {
		t.Fatalf("CompleteAt() error = %v", err)
	}
	if span.Start != 8 || span.End != 12 {
		t.Errorf("span = %+v, want {8 12}", span)
	}
	if client.gotQuery.Prefix != "getV" || client.gotQuery.Offset != 12 {
		t.Errorf("query = %+v, want prefix getV at offset 12", client.gotQuery)
	}
	if client.gotCat != CategoryJava {
		t.Errorf("category = %v, want java", client.gotCat)
	}

	if err := f.Choose(buf, session, span, "getValue(int idx)"); err != nil {
		t.Fatalf("Choose() error = %v", err)
	}
	if len(buf.templates) != 1 || buf.templates[0].template != "getValue(${1:int idx})" {
		t.Errorf("expansions = %+v, want getValue(${1:int idx}) template", buf.templates)
	}
	if _, ok := session.Lookup("getValue(int idx)"); ok {
		t.Error("session still open after Choose")
	}
}

func TestFrontendChooseUnknownLabelInsertsLiterally(t *testing.T) {
	f := newTestFrontend(&fakeCompleter{}, &fakeActions{})
	session, err := NewSession(CategoryRuby, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	buf := newFakeBuffer("pre", 3)
	if err := f.Choose(buf, session, Span{Start: 0, End: 3}, "typed"); err != nil {
		t.Fatalf("Choose() error = %v", err)
	}
	if buf.text != "typed" {
		t.Errorf("buffer text = %q, want literal insertion", buf.text)
	}
}

func TestFrontendCompleteAtPropagatesClientError(t *testing.T) {
	wantErr := errors.New("connection reset")
	f := newTestFrontend(&fakeCompleter{err: wantErr}, &fakeActions{})
	buf := newFakeBuffer("foo", 3)
	if _, _, err := f.CompleteAt(context.Background(), buf, "a.rb", CategoryRuby); !errors.Is(err, wantErr) {
		t.Errorf("CompleteAt() error = %v, want wrapped %v", err, wantErr)
	}
}

func TestFrontendUpdateConfig(t *testing.T) {
	f := newTestFrontend(&fakeCompleter{}, &fakeActions{})

	bad := getDefaultConfig()
	bad.Transport = "smoke-signals"
	if err := f.UpdateConfig(bad); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("UpdateConfig() error = %v, want ErrInvalidConfig", err)
	}

	good := getDefaultConfig()
	good.DocWrapWidth = 40
	good.EnableSnippets = false
	if err := f.UpdateConfig(good); err != nil {
		t.Fatalf("UpdateConfig() error = %v", err)
	}
	if got := f.GetCurrentConfig().DocWrapWidth; got != 40 {
		t.Errorf("DocWrapWidth = %d, want 40", got)
	}

	// Snippets toggle must reach the dispatcher.
	buf := newFakeBuffer("ba", 2)
	session, _ := NewSession(CategoryJava, []Candidate{{Label: "bar(int a)", InsertionText: "bar(int a)"}}, nil)
	if err := f.Choose(buf, session, Span{Start: 0, End: 2}, "bar(int a)"); err != nil {
		t.Fatalf("Choose() error = %v", err)
	}
	if len(buf.templates) != 0 {
		t.Errorf("expansions = %+v, want raw insertion with snippets off", buf.templates)
	}
	if buf.text != "bar(int a)" {
		t.Errorf("buffer text = %q, want %q", buf.text, "bar(int a)")
	}
}
