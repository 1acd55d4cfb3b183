package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/editkit/complete"
)

// Set at build time
var version = "dev"

func main() {
	// --- Flag Definitions ---
	filePath := flag.String("file", "", "Path to the document being completed (required)")
	offset := flag.Int("offset", -1, "Cursor byte offset, 0-based (required)")
	categoryFlag := flag.String("category", "", "Syntactic category: java, groovy, scala, php, ruby, xml, html (required)")
	templateFor := flag.String("template", "", "Print the synthesized template for this insertion string and exit")
	logLevelFlag := flag.String("log-level", "", "Log level (debug, info, warn, error) - overrides config")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	// --- Setup Temporary Logger for Initialization ---
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Template synthesis needs no server, handle it before dialing.
	if *templateFor != "" {
		fmt.Println(complete.SynthesizeTemplate(*templateFor))
		return
	}

	// --- Load Config, Setup Final Logger ---
	cfg, cfgErr := complete.LoadConfig(tempLogger)
	if cfgErr != nil && !errors.Is(cfgErr, complete.ErrConfig) {
		tempLogger.Error("Fatal error loading configuration", "error", cfgErr)
		os.Exit(1)
	}

	chosenLogLevelStr := cfg.LogLevel
	if *logLevelFlag != "" {
		chosenLogLevelStr = *logLevelFlag
	}
	logLevel, parseLevelErr := complete.ParseLogLevel(chosenLogLevelStr)
	if parseLevelErr != nil {
		tempLogger.Warn("Invalid log level specified, using default 'info'", "specified_level", chosenLogLevelStr, "error", parseLevelErr)
		logLevel = slog.LevelInfo
	}
	finalLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(finalLogger)

	if cfgErr != nil {
		slog.Warn("Configuration loaded with warnings", "error", cfgErr)
	}

	// --- Input Validation ---
	if *filePath == "" {
		slog.Error("Missing required flag: -file")
		flag.Usage()
		os.Exit(1)
	}
	if *offset < 0 {
		slog.Error("Invalid value for -offset: must be >= 0", "value", *offset)
		flag.Usage()
		os.Exit(1)
	}
	category := complete.Category(*categoryFlag)
	if _, ok := complete.ProfileFor(category); !ok {
		slog.Error("Unknown category", "value", *categoryFlag)
		flag.Usage()
		os.Exit(1)
	}

	contentBytes, readErr := os.ReadFile(*filePath)
	if readErr != nil {
		slog.Error("Cannot read file", "path", *filePath, "error", readErr)
		os.Exit(1)
	}
	content := string(contentBytes)
	if *offset > len(content) {
		slog.Error("Offset beyond end of file", "offset", *offset, "file_size", len(content))
		os.Exit(1)
	}

	// --- Execute ---
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	span, spanErr := complete.ResolveSpan(content, *offset, category)
	if spanErr != nil {
		slog.Error("Span resolution failed", "error", spanErr)
		os.Exit(1)
	}

	client, dialErr := complete.DialIntel(ctx, cfg, finalLogger)
	if dialErr != nil {
		slog.Error("Cannot reach code-intelligence server", "error", dialErr)
		os.Exit(1)
	}
	defer func() {
		if err := client.Close(); err != nil {
			slog.Warn("Error closing client connection", "error", err)
		}
	}()

	candidates, completeErr := client.Complete(ctx, category, complete.Query{
		Path:    *filePath,
		Offset:  span.End,
		Prefix:  content[span.Start:span.End],
		Content: content,
	})
	if completeErr != nil {
		if errors.Is(completeErr, context.DeadlineExceeded) {
			slog.Error("Completion request timed out")
		} else {
			slog.Error("Completion request failed", "error", completeErr)
		}
		os.Exit(1)
	}

	session, sessionErr := complete.NewSession(category, candidates, finalLogger)
	if sessionErr != nil {
		slog.Error("Failed to open completion session", "error", sessionErr)
		os.Exit(1)
	}
	defer session.Close()

	labels := session.Labels()
	if len(labels) == 0 {
		fmt.Println("No completions.")
		return
	}
	for _, label := range labels {
		fmt.Println(label)
		if doc, err := session.Documentation(label, cfg.DocWrapWidth); err == nil && doc != "" {
			fmt.Printf("    %s\n", doc)
		}
	}
}
