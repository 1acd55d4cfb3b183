// complete/errors.go
// Contains exported error definitions for the complete package.
package complete

import "errors"

// =============================================================================
// Exported Errors
// =============================================================================

var (
	// ErrConfig indicates non-fatal errors during config loading or processing.
	ErrConfig = errors.New("configuration error")

	// ErrInvalidConfig indicates a configuration value is invalid after validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnknownCategory indicates a document category with no registered
	// language profile. Span resolution and dispatch require a known category.
	ErrUnknownCategory = errors.New("unknown syntactic category")

	// ErrIntelUnavailable indicates failure communicating with the
	// code-intelligence server.
	ErrIntelUnavailable = errors.New("code intelligence server unavailable")

	// ErrInvalidCursor indicates a cursor offset outside the document bounds.
	ErrInvalidCursor = errors.New("cursor offset out of range")

	// ErrSessionClosed indicates a lookup against a completion session that
	// has already been discarded.
	ErrSessionClosed = errors.New("completion session closed")
)
