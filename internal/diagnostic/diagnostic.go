// Package diagnostic decodes pyright's JSON output and normalizes
// its diagnostics for reconciliation.
package diagnostic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Severity is the normalized diagnostic severity.
type Severity string

// Severity constants. Anything pyright reports other than "error"
// and "information" normalizes to SeverityOther.
const (
	SeverityError       Severity = "error"
	SeverityInformation Severity = "information"
	SeverityOther       Severity = "other"
)

// revealedTypeRe extracts the type from reveal_type's informational
// message, e.g. `Type of "a" is "str"`.
var revealedTypeRe = regexp.MustCompile(`^Type of "(.*)" is "(.*)"`)

// Output is pyright's --outputjson document.
type Output struct {
	Version     string          `json:"version"`
	Summary     Summary         `json:"summary"`
	Diagnostics []RawDiagnostic `json:"generalDiagnostics"`
}

// Summary is pyright's run summary.
type Summary struct {
	FilesAnalyzed    int     `json:"filesAnalyzed"`
	ErrorCount       int     `json:"errorCount"`
	WarningCount     int     `json:"warningCount"`
	InformationCount int     `json:"informationCount"`
	TimeInSec        float64 `json:"timeInSec"`
}

// RawDiagnostic is one diagnostic as pyright reports it. Lines and
// characters are 0-based.
type RawDiagnostic struct {
	File     string `json:"file"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Range    Range  `json:"range"`
	Rule     string `json:"rule,omitempty"`
}

// Range is a 0-based source span.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Position is a 0-based line and character offset.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Diagnostic is a normalized diagnostic.
type Diagnostic struct {
	// File is the absolute path pyright reported.
	File string

	// Line is 1-based.
	Line int

	Severity Severity

	// RawSeverity is the severity string as reported.
	RawSeverity string

	Message string

	// Rule is the pyright rule identifier, if any.
	Rule string

	// RevealedType is the type named by an information diagnostic
	// of the form `Type of "X" is "Y"`. Nil when the diagnostic is
	// not informational or the message does not match.
	RevealedType *string
}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(OutputSchema))
		if err != nil {
			schemaErr = fmt.Errorf("parsing output schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("pyright-output.json", doc); err != nil {
			schemaErr = fmt.Errorf("adding output schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile("pyright-output.json")
	})
	return schema, schemaErr
}

// Decode validates raw against OutputSchema and decodes it.
func Decode(raw []byte) (*Output, error) {
	sch, err := compiledSchema()
	if err != nil {
		return nil, err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("checker output is not valid JSON: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		return nil, fmt.Errorf("checker output does not match the expected shape: %w", err)
	}

	var out Output
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decoding checker output: %w", err)
	}
	return &out, nil
}

// Normalize converts raw diagnostics into their normalized form, in
// the order pyright reported them.
func Normalize(out *Output) []Diagnostic {
	diags := make([]Diagnostic, 0, len(out.Diagnostics))
	for _, raw := range out.Diagnostics {
		diags = append(diags, normalizeOne(raw))
	}
	return diags
}

func normalizeOne(raw RawDiagnostic) Diagnostic {
	d := Diagnostic{
		File:        raw.File,
		Line:        raw.Range.Start.Line + 1,
		Severity:    severityOf(raw.Severity),
		RawSeverity: raw.Severity,
		Message:     raw.Message,
		Rule:        raw.Rule,
	}
	if d.Severity == SeverityInformation {
		if typ, ok := RevealedType(raw.Message); ok {
			d.RevealedType = &typ
		}
	}
	return d
}

func severityOf(s string) Severity {
	switch s {
	case "error":
		return SeverityError
	case "information":
		return SeverityInformation
	default:
		return SeverityOther
	}
}

// RevealedType extracts Y from a message of the form
// `Type of "X" is "Y"`.
func RevealedType(message string) (string, bool) {
	m := revealedTypeRe.FindStringSubmatch(message)
	if m == nil {
		return "", false
	}
	return m[2], true
}

// FirstLine returns message up to its first line break. Multi-line
// error bodies are compared on their first line only.
func FirstLine(message string) string {
	if i := strings.IndexAny(message, "\r\n"); i >= 0 {
		return message[:i]
	}
	return message
}
