package beatmap

import (
	"fmt"

	"github.com/go-stack/stack"
)

// ErrorKind classifies a ParseError per the error taxonomy: malformed
// sections are fatal, a missing required section is fatal, an unsupported
// game mode is recoverable (surfaced to the caller, not swallowed), and a
// numeric field that could not be coerced on a strict section is fatal.
type ErrorKind string

const (
	ErrUnknownSection ErrorKind = "unknown_section"
	ErrMalformedLine  ErrorKind = "malformed_line"
	ErrMissingSection ErrorKind = "missing_section"
	ErrUnsupportedMode ErrorKind = "unsupported_mode"
	ErrBadNumeric     ErrorKind = "bad_numeric"
)

// ParseError is the one typed error the parser surfaces. Section and Line
// give the caller enough context to find the offending text; Site is a
// call-site capture used only for debug logging, never rendered into
// Error()'s message, so errors.Is/errors.As comparisons stay cheap and
// deterministic.
type ParseError struct {
	Kind    ErrorKind
	Section string
	Line    int
	Message string
	Site    stack.Call
}

func newParseError(kind ErrorKind, section string, line int, format string, args ...any) *ParseError {
	return &ParseError{
		Kind:    kind,
		Section: section,
		Line:    line,
		Message: fmt.Sprintf(format, args...),
		Site:    stack.Caller(1),
	}
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: [%s] line %d: %s", e.Kind, e.Section, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: [%s]: %s", e.Kind, e.Section, e.Message)
}

// DebugLocation renders the captured call site, for attaching to a structured
// log line without obligating every caller to depend on go-stack directly.
func (e *ParseError) DebugLocation() string {
	return fmt.Sprintf("%+v", e.Site)
}
