// errors.go: error taxonomy and caret-snippet rendering
//
// What this file does
// -------------------
// This module defines the tracer's full error taxonomy and turns low-level
// lexer/parser/runtime diagnostics into readable, Python-style error
// snippets with a caret pointing at the offending column. The primary
// entry point is `WrapErrorWithSource`, which recognizes the typed errors
// below, formats them, and returns a new `error` containing a multi-line
// snippet:
//
//	PARSE ERROR at 3:12: expected ';' after statement
//
//	   2 | int a = 5
//	   3 |         x
//	       |        ^
//	   4 | a += 1;
//
// Taxonomy
// --------
//   - *LexError    — the scanner rejected a character sequence.
//   - *ParseError  — the source cannot be tree-parsed at all. On the
//     instrumenter path the caller falls back to running the unmodified
//     source uninstrumented.
//   - *RuntimeError — interpreter execution failure (UnknownVariable,
//     TypeMismatch, DivisionByZero). Halts the state machine in Failed
//     and is surfaced verbatim with the offending line.
//   - *ProbeDecodeError — one malformed probe log line. Always recovered
//     locally: the line is skipped and parsing continues. Exposed so the
//     parser can report skipped lines to interested callers.
//   - *IneligibleError — the interpreter was handed source the
//     eligibility classifier would have rejected; it fails immediately
//     rather than guess.
//
// Nothing in this package is fatal to the host process: every entry point
// returns a result/error value rather than aborting the session.
//
// Behavior guarantees
// -------------------
//   - If `err` is one of the location-carrying types above, the returned
//     error's message is a fully formatted, plain-text snippet (no ANSI).
//   - If `err` is anything else, it is returned unchanged.
//   - Line/column are treated as 1-based and clamped so the caret can be
//     rendered safely. Empty/short source strings are handled.
package stepscope

import (
	"fmt"
	"strings"
)

/* ===========================
   PUBLIC API
   =========================== */

// LexError is produced by the scanner. Line is 1-based, Col 0-based.
type LexError struct {
	Line int
	Col  int
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("LEXICAL ERROR at %d:%d: %s", e.Line, e.Col+1, e.Msg)
}

// ParseError is produced by the statement/expression parser.
// Line is 1-based, Col 0-based.
type ParseError struct {
	Line int
	Col  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("PARSE ERROR at %d:%d: %s", e.Line, e.Col+1, e.Msg)
}

// RuntimeCode discriminates interpreter runtime failures.
type RuntimeCode string

const (
	UnknownVariable   RuntimeCode = "UnknownVariable"
	TypeMismatch      RuntimeCode = "TypeMismatch"
	DivisionByZero    RuntimeCode = "DivisionByZero"
	StepLimitExceeded RuntimeCode = "StepLimitExceeded"
)

// RuntimeError represents an execution-time failure with a source
// location. Line/Col are 1-based. The interpreter's Step/ContinueToEnd
// return this as a Go error; the state machine is left in Failed.
type RuntimeError struct {
	Code RuntimeCode
	Line int
	Col  int
	Msg  string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("RUNTIME ERROR (%s) at %d:%d: %s", e.Code, e.Line, e.Col, e.Msg)
}

// ProbeDecodeError describes one unusable probe log line. The parser
// recovers from it locally; it never aborts a parse.
type ProbeDecodeError struct {
	LineNo int    // 1-based position in the log text
	Raw    string // the offending line, verbatim
	Msg    string
}

func (e *ProbeDecodeError) Error() string {
	return fmt.Sprintf("probe decode error on log line %d: %s", e.LineNo, e.Msg)
}

// IneligibleError reports the first construct that disqualifies source
// from the restricted interpreter path.
type IneligibleError struct {
	Construct string
}

func (e *IneligibleError) Error() string {
	return fmt.Sprintf("source is not eligible for direct interpretation: %s", e.Construct)
}

// WrapErrorWithSource returns an error augmented with a caret-annotated
// snippet of the provided source. It recognizes the location-carrying
// error types and leaves other errors untouched.
func WrapErrorWithSource(err error, src string) error {
	return WrapErrorWithName(err, "", src)
}

// WrapErrorWithName is WrapErrorWithSource with a source label rendered
// into the header ("PARSE ERROR in <name> at ...").
func WrapErrorWithName(err error, srcName string, src string) error {
	switch e := err.(type) {
	case *LexError:
		// Lex/parse Col are 0-based; render as 1-based.
		return fmt.Errorf("%s", prettyErrorStringLabeled(src, "LEXICAL ERROR", srcName, e.Line, e.Col+1, e.Msg))
	case *ParseError:
		return fmt.Errorf("%s", prettyErrorStringLabeled(src, "PARSE ERROR", srcName, e.Line, e.Col+1, e.Msg))
	case *RuntimeError:
		// RuntimeError is already 1-based.
		header := fmt.Sprintf("RUNTIME ERROR (%s)", e.Code)
		return fmt.Errorf("%s", prettyErrorStringLabeled(src, header, srcName, e.Line, e.Col, e.Msg))
	default:
		return err
	}
}

//// END_OF_PUBLIC

/* ===========================
   PRIVATE: rendering
   =========================== */

// prettyErrorStringLabeled builds a Python-like snippet with a header and
// a caret. It shows at most one previous and one next line when available.
// Coordinates are treated as 1-based and clamped to the source bounds.
func prettyErrorStringLabeled(src, header, name string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	if line > len(lines) {
		line = len(lines)
	}
	lineTxt := lines[line-1]

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", header, name, line, col, msg)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lineTxt)
	caretPad := col - 1
	if caretPad < 0 {
		caretPad = 0
	}
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", caretPad))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
