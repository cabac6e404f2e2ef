package caaml

import (
	"errors"
	"fmt"
)

// Fatal parse errors. Anything else found in a document is recorded as a
// Diagnostic on the result instead of aborting the parse.
var (
	// ErrMalformedDocument means the input is not well-formed XML or lacks
	// the mandatory root/measurement container.
	ErrMalformedDocument = errors.New("malformed caaml document")

	// ErrUnknownNamespace means the document declares a namespace URI for a
	// role this package knows, but in a version it does not support.
	ErrUnknownNamespace = errors.New("unknown schema namespace")
)

// DiagCode classifies a non-fatal, field-level parse problem.
type DiagCode string

const (
	DiagInvalidBoolean   DiagCode = "InvalidBooleanLiteral"
	DiagInvalidNumeric   DiagCode = "InvalidNumericLiteral"
	DiagInvalidTimestamp DiagCode = "InvalidTimestamp"
	DiagUnrecognizedCode DiagCode = "UnrecognizedCode"
	DiagDepthCoverage    DiagCode = "DepthCoverageExceeded"
	DiagDepthOrder       DiagCode = "DepthOrderViolation"
)

// Diagnostic records a localized problem found while parsing. The offending
// field is left absent; the rest of the document still parses.
type Diagnostic struct {
	// Path locates the field, e.g. "stbTests/ExtColumnTest[1]/testScore".
	Path   string   `json:"path"`
	Code   DiagCode `json:"code"`
	Detail string   `json:"detail"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Path, d.Code, d.Detail)
}
