package diagnostic

import (
	"os"
	"strings"
	"testing"
)

func loadOutput(t *testing.T) *Output {
	t.Helper()
	raw, err := os.ReadFile("testdata/output.json")
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}
	out, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	return out
}

func TestDecode_Summary(t *testing.T) {
	out := loadOutput(t)

	if out.Version != "1.1.400" {
		t.Errorf("Version = %q", out.Version)
	}
	s := out.Summary
	if s.FilesAnalyzed != 1 || s.ErrorCount != 1 || s.WarningCount != 1 || s.InformationCount != 2 {
		t.Errorf("unexpected summary counts: %+v", s)
	}
	if s.TimeInSec != 0.42 {
		t.Errorf("TimeInSec = %v, want 0.42", s.TimeInSec)
	}
	if len(out.Diagnostics) != 4 {
		t.Fatalf("expected 4 diagnostics, got %d", len(out.Diagnostics))
	}
	if out.Diagnostics[0].Rule != "reportOptionalMemberAccess" {
		t.Errorf("Rule = %q", out.Diagnostics[0].Rule)
	}
	if out.Diagnostics[1].Rule != "" {
		t.Errorf("missing rule should decode as empty, got %q", out.Diagnostics[1].Rule)
	}
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "not_json", raw: "pyright crashed", want: "not valid JSON"},
		{name: "missing_diagnostics", raw: `{"summary": {"filesAnalyzed": 1, "errorCount": 0, "warningCount": 0, "informationCount": 0, "timeInSec": 0}}`, want: "expected shape"},
		{name: "negative_line", raw: `{"summary": {"filesAnalyzed": 1, "errorCount": 0, "warningCount": 0, "informationCount": 0, "timeInSec": 0},
			"generalDiagnostics": [{"file": "a.py", "severity": "error", "message": "m",
			"range": {"start": {"line": -1, "character": 0}, "end": {"line": 0, "character": 0}}}]}`, want: "expected shape"},
		{name: "severity_not_string", raw: `{"summary": {"filesAnalyzed": 1, "errorCount": 0, "warningCount": 0, "informationCount": 0, "timeInSec": 0},
			"generalDiagnostics": [{"file": "a.py", "severity": 1, "message": "m",
			"range": {"start": {"line": 0, "character": 0}, "end": {"line": 0, "character": 0}}}]}`, want: "expected shape"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.raw))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	diags := Normalize(loadOutput(t))
	if len(diags) != 4 {
		t.Fatalf("expected 4 diagnostics, got %d", len(diags))
	}

	errDiag := diags[0]
	if errDiag.Line != 4 {
		t.Errorf("error line = %d, want 4 (0-based 3 plus one)", errDiag.Line)
	}
	if errDiag.Severity != SeverityError {
		t.Errorf("severity = %s, want error", errDiag.Severity)
	}
	if errDiag.RevealedType != nil {
		t.Error("error diagnostics never carry a revealed type")
	}

	reveal := diags[1]
	if reveal.Severity != SeverityInformation {
		t.Errorf("severity = %s, want information", reveal.Severity)
	}
	if reveal.RevealedType == nil || *reveal.RevealedType != "str" {
		t.Errorf("RevealedType = %v, want str", reveal.RevealedType)
	}
	if reveal.Line != 7 {
		t.Errorf("reveal line = %d, want 7", reveal.Line)
	}

	unparseable := diags[2]
	if unparseable.RevealedType != nil {
		t.Errorf("non-matching information message should have no type, got %q", *unparseable.RevealedType)
	}

	warning := diags[3]
	if warning.Severity != SeverityOther {
		t.Errorf("severity = %s, want other", warning.Severity)
	}
	if warning.RawSeverity != "warning" {
		t.Errorf("RawSeverity = %q, want warning", warning.RawSeverity)
	}
}

func TestRevealedType(t *testing.T) {
	tests := []struct {
		msg    string
		want   string
		wantOK bool
	}{
		{`Type of "a" is "str"`, "str", true},
		{`Type of "foo(1)" is "dict[str, int]"`, "dict[str, int]", true},
		// The greedy name group makes the last `" is "` the separator.
		{`Type of "x" is "Literal['a" is "b']"`, "b']", true},
		{`type of "a" is "str"`, "", false},
		{`Import cycles detected`, "", false},
	}
	for _, tt := range tests {
		got, ok := RevealedType(tt.msg)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("RevealedType(%q) = %q, %v; want %q, %v", tt.msg, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestFirstLine(t *testing.T) {
	tests := []struct{ in, want string }{
		{"single", "single"},
		{"first\nsecond", "first"},
		{"first\r\nsecond", "first"},
		{"", ""},
		{"\nstarts with newline", ""},
	}
	for _, tt := range tests {
		if got := FirstLine(tt.in); got != tt.want {
			t.Errorf("FirstLine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
