// Package taxonomy defines the mismatch kinds, result structures and
// stable ID generation for typesafe runs.
package taxonomy

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"
)

// Kind enumerates every way a checker run can disagree with a
// file's annotations, including conditions that prevent comparison.
type Kind string

// Assertion mismatches: the user's annotations and the checker
// disagree.
const (
	UnexpectedError      Kind = "UnexpectedError"
	ErrorMessageMismatch Kind = "ErrorMessageMismatch"
	MissingTypeComment   Kind = "MissingTypeComment"
	TypeMismatch         Kind = "TypeMismatch"
	NotRaised            Kind = "NotRaised"
)

// Internal failures: the checker output cannot be interpreted or
// the checker was invoked incorrectly.
const (
	UnparseableTypeInfo     Kind = "UnparseableTypeInfo"
	UnknownSeverity         Kind = "UnknownSeverity"
	ForeignFileDiagnostic   Kind = "ForeignFileDiagnostic"
	CheckerInvocationFailed Kind = "CheckerInvocationFailed"
)

// Class separates ordinary assertion failures from internal ones.
type Class string

// Class constants.
const (
	ClassAssertion Class = "assertion"
	ClassInternal  Class = "internal"
)

// Mismatch is one discrepancy found while reconciling a file.
type Mismatch struct {
	// ID is a stable identifier for diffing across runs.
	// Generated from sha256(file+kind+line+detail).
	ID string `json:"id"`

	// Line is the 1-based source line the mismatch refers to.
	// Zero means the mismatch is not tied to a line.
	Line int `json:"line"`

	// Kind is the mismatch category.
	Kind Kind `json:"kind"`

	// Class is derived from Kind.
	Class Class `json:"class"`

	// Detail is the human-readable message shown in reports.
	Detail string `json:"detail"`

	// Expected is the annotated text, when one was compared.
	Expected string `json:"expected,omitempty"`

	// Actual is the text reported by the checker, when available.
	Actual string `json:"actual,omitempty"`

	// Output holds captured checker output for internal failures.
	Output string `json:"output,omitempty"`
}

// New builds a Mismatch of the given kind with its class filled in.
// The ID is assigned later by Stamp, once the file is known.
func New(kind Kind, line int, detail string) Mismatch {
	return Mismatch{
		Line:   line,
		Kind:   kind,
		Class:  ClassOf(kind),
		Detail: detail,
	}
}

// Internal reports whether the mismatch indicates a problem with the
// checker or its environment rather than with the annotations.
func (m Mismatch) Internal() bool {
	return m.Class == ClassInternal
}

// Summary counts what a run saw and found.
type Summary struct {
	ExpectedErrors  int `json:"expected_errors"`
	ExpectedReveals int `json:"expected_reveals"`
	Diagnostics     int `json:"diagnostics"`
	Mismatches      int `json:"mismatches"`
	Internal        int `json:"internal"`
}

// Metadata holds run metadata.
type Metadata struct {
	CheckerVersion string        `json:"checker_version,omitempty"`
	Timestamp      time.Time     `json:"-"`
	Duration       time.Duration `json:"-"`
}

// MarshalJSON customizes JSON encoding to use duration_ms and
// ISO 8601 timestamp.
func (m Metadata) MarshalJSON() ([]byte, error) {
	type Alias Metadata
	ts := ""
	if !m.Timestamp.IsZero() {
		ts = m.Timestamp.UTC().Format(time.RFC3339)
	}
	return json.Marshal(&struct {
		Alias
		DurationMS int64  `json:"duration_ms"`
		Timestamp  string `json:"timestamp,omitempty"`
	}{
		Alias:      Alias(m),
		DurationMS: m.Duration.Milliseconds(),
		Timestamp:  ts,
	})
}

// FileResult is the complete outcome for one typesafety file.
type FileResult struct {
	// File is the absolute path of the checked file.
	File string `json:"file"`

	// Name is the path relative to the project root, used as the
	// test name.
	Name string `json:"name"`

	// Content is the source text the result was computed from.
	Content string `json:"-"`

	// Mismatches lists every discrepancy found, in discovery order.
	Mismatches []Mismatch `json:"mismatches"`

	// Summary holds aggregate counts.
	Summary Summary `json:"summary"`

	// Metadata contains run information.
	Metadata Metadata `json:"metadata"`
}

// Passed reports whether the file produced no mismatches.
func (r *FileResult) Passed() bool {
	return len(r.Mismatches) == 0
}

// Stamp assigns stable IDs and recomputes the summary mismatch
// counts.
func (r *FileResult) Stamp() {
	r.Summary.Mismatches = len(r.Mismatches)
	r.Summary.Internal = 0
	for i := range r.Mismatches {
		m := &r.Mismatches[i]
		m.Class = ClassOf(m.Kind)
		m.ID = GenerateID(r.File, string(m.Kind), m.Line, m.Detail)
		if m.Internal() {
			r.Summary.Internal++
		}
	}
}

// GenerateID produces a stable, deterministic ID for a mismatch
// based on its context. The ID is a sha256 hash truncated to 8 hex
// characters, prefixed with "mm-".
func GenerateID(file, kind string, line int, detail string) string {
	input := fmt.Sprintf("%s:%s:%d:%s", file, kind, line, detail)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("mm-%x", hash[:4])
}
