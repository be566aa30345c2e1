// Package errors defines the diagnostic kinds reported across the bsc
// pipeline, per spec.md §7: LexError, ParseError, SemanticError, and
// MalformedIR. Parse/Semantic errors are user-facing and terminate
// compilation; MalformedIR indicates a compiler bug.
package errors

import (
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// Kind identifies which of spec.md §7's four error categories a diagnostic
// belongs to.
type Kind string

const (
	LexError      Kind = "LexError"
	ParseError    Kind = "ParseError"
	SemanticError Kind = "SemanticError"
	MalformedIR   Kind = "MalformedIR"
)

// SourceLocation pinpoints a token for the caret-diagram error format.
type SourceLocation struct {
	File   string
	Line   int
	Column int // 1-based column of the token's first byte within LineText
	// LineText is the full source line the token appears on, with leading
	// whitespace stripped (matching original_source/error.c's
	// report_error_token, which skips isspace() before measuring the line).
	LineText string
}

// BSError is the single error type surfaced by the lexer, parser, and
// semantic checks. Its Error() string reproduces spec.md §6's required
// format exactly: `path(line): error: <line text>\n<caret padding>^ <message>`.
type BSError struct {
	Kind     Kind
	Message  string
	Location SourceLocation
}

func (e *BSError) Error() string {
	var b strings.Builder
	prefix := fmt.Sprintf("%s(%d): error: ", e.Location.File, e.Location.Line)
	b.WriteString(prefix)
	b.WriteString(e.Location.LineText)
	b.WriteByte('\n')

	offset := len(prefix) + (e.Location.Column - 1)
	if offset > 0 {
		b.WriteString(strings.Repeat(" ", offset))
	}
	b.WriteString("^ ")
	b.WriteString(e.Message)
	return b.String()
}

// New builds a BSError of the given kind at loc with a formatted message.
func New(kind Kind, loc SourceLocation, format string, args ...any) *BSError {
	return &BSError{Kind: kind, Message: fmt.Sprintf(format, args...), Location: loc}
}

// Malformed wraps an internal IR-invariant violation with a stack trace via
// github.com/pkg/errors, since MalformedIR indicates a compiler bug (not a
// user mistake) and is the one diagnostic kind worth a trace for (§7 of
// SPEC_FULL.md's expansion).
func Malformed(format string, args ...any) error {
	return pkgerrors.WithStack(&BSError{
		Kind:    MalformedIR,
		Message: fmt.Sprintf(format, args...),
	})
}
