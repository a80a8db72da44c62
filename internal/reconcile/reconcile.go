// Package reconcile compares a file's expected-diagnostic
// annotations with the diagnostics the checker reported and
// classifies every discrepancy.
package reconcile

import (
	"fmt"

	"github.com/unbound-force/typesafe/internal/annotation"
	"github.com/unbound-force/typesafe/internal/diagnostic"
	"github.com/unbound-force/typesafe/internal/taxonomy"
)

// Reconcile processes diags in order against exp for the checked
// file and returns every mismatch found. It never stops early.
//
// Records are appended in diagnostic order, followed by one
// NotRaised record per unconsumed error annotation in ascending
// line order. Unconsumed reveal annotations are not reported.
//
// Lookups mark expectations in exp as accessed.
func Reconcile(diags []diagnostic.Diagnostic, exp *annotation.Expectations, file string) []taxonomy.Mismatch {
	var out []taxonomy.Mismatch

	for _, d := range diags {
		if m, ok := check(d, exp, file); ok {
			out = append(out, m)
		}
	}

	for _, line := range exp.Unaccessed() {
		out = append(out, taxonomy.New(taxonomy.NotRaised, line, "Did not raise an error"))
	}

	return out
}

// check compares a single diagnostic. ok is false when the
// diagnostic matches its annotation.
func check(d diagnostic.Diagnostic, exp *annotation.Expectations, file string) (taxonomy.Mismatch, bool) {
	if d.File != file {
		m := taxonomy.New(taxonomy.ForeignFileDiagnostic, 0,
			fmt.Sprintf("Received diagnostic for unknown file: %s; Expected %s", d.File, file))
		m.Actual = d.File
		return m, true
	}

	switch d.Severity {
	case diagnostic.SeverityError:
		return checkError(d, exp)
	case diagnostic.SeverityInformation:
		return checkInformation(d, exp)
	default:
		m := taxonomy.New(taxonomy.UnknownSeverity, d.Line,
			fmt.Sprintf("Unknown diagnostic type: %s", d.RawSeverity))
		m.Actual = d.Message
		return m, true
	}
}

func checkError(d diagnostic.Diagnostic, exp *annotation.Expectations) (taxonomy.Mismatch, bool) {
	actual := diagnostic.FirstLine(d.Message)

	expected, ok := exp.Error(d.Line)
	if !ok {
		m := taxonomy.New(taxonomy.UnexpectedError, d.Line,
			fmt.Sprintf("Unexpected error: %s", actual))
		m.Actual = actual
		return m, true
	}
	if expected != actual {
		m := taxonomy.New(taxonomy.ErrorMessageMismatch, d.Line,
			fmt.Sprintf("Expected type error to be '%s' but got '%s' instead", expected, actual))
		m.Expected = expected
		m.Actual = actual
		return m, true
	}
	return taxonomy.Mismatch{}, false
}

func checkInformation(d diagnostic.Diagnostic, exp *annotation.Expectations) (taxonomy.Mismatch, bool) {
	if d.RevealedType == nil {
		m := taxonomy.New(taxonomy.UnparseableTypeInfo, d.Line,
			fmt.Sprintf("Could not extract type from message: \"%s\"", d.Message))
		m.Actual = d.Message
		return m, true
	}
	actual := *d.RevealedType

	expected, ok := exp.Reveal(d.Line)
	if !ok {
		m := taxonomy.New(taxonomy.MissingTypeComment, d.Line,
			fmt.Sprintf("Missing type comment, revealed type: %s", actual))
		m.Actual = actual
		return m, true
	}
	if expected != actual {
		m := taxonomy.New(taxonomy.TypeMismatch, d.Line,
			fmt.Sprintf("Expected revealed type to be \"%s\" but got \"%s\" instead", expected, actual))
		m.Expected = expected
		m.Actual = actual
		return m, true
	}
	return taxonomy.Mismatch{}, false
}
