// Package apperr defines the typed error kinds surfaced across the
// search console's boundaries: fatal errors that abort startup, and
// non-fatal errors that the event loop downgrades in place.
package apperr

import "fmt"

// IndexUnavailable means the on-disk index is missing or could not be
// opened. Fatal.
type IndexUnavailable struct {
	Path string
	Err  error
}

func (e *IndexUnavailable) Error() string {
	return fmt.Sprintf("index unavailable at %q: %v (run the indexer first)", e.Path, e.Err)
}

func (e *IndexUnavailable) Unwrap() error { return e.Err }

// SchemaMismatch means a mandatory field is missing from the index's
// stored schema. Fatal.
type SchemaMismatch struct {
	Field string
}

func (e *SchemaMismatch) Error() string {
	return fmt.Sprintf("index schema is missing mandatory field %q", e.Field)
}

// ReadFailure means the index opened but a read against it failed.
// Fatal.
type ReadFailure struct {
	Err error
}

func (e *ReadFailure) Error() string { return fmt.Sprintf("index read failed: %v", e.Err) }

func (e *ReadFailure) Unwrap() error { return e.Err }

// QueryExecutionFailure means a search could not be executed. Non-fatal;
// callers downgrade to "no matches".
type QueryExecutionFailure struct {
	Query string
	Err   error
}

func (e *QueryExecutionFailure) Error() string {
	return fmt.Sprintf("query %q failed: %v", e.Query, e.Err)
}

func (e *QueryExecutionFailure) Unwrap() error { return e.Err }

// TranscriptReadFailure means the full-view transcript file could not be
// read or parsed. Non-fatal; the viewer shows a placeholder line.
type TranscriptReadFailure struct {
	Path string
	Err  error
}

func (e *TranscriptReadFailure) Error() string {
	return fmt.Sprintf("failed to read transcript %q: %v", e.Path, e.Err)
}

func (e *TranscriptReadFailure) Unwrap() error { return e.Err }

// DateParseFailure means a user-entered date filter could not be parsed
// under any recognized format. Non-fatal; the filter is left unchanged.
type DateParseFailure struct {
	Input string
}

func (e *DateParseFailure) Error() string {
	return fmt.Sprintf("could not parse date %q", e.Input)
}

// TerminalSetupFailure means the terminal could not be placed into the
// state the TUI requires (e.g. not a TTY). Fatal, before any drawing.
type TerminalSetupFailure struct {
	Err error
}

func (e *TerminalSetupFailure) Error() string {
	return fmt.Sprintf("terminal setup failed: %v", e.Err)
}

func (e *TerminalSetupFailure) Unwrap() error { return e.Err }

// UsageError means the CLI was invoked with bad arguments. Maps to exit
// code 2.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }
