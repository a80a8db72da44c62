package annotation

import (
	"reflect"
	"testing"
)

const sample = `from typing import Optional, Union

def foo(a: Optional[str]) -> None:
    print(a.split('.'))  # E: "split" is not a known member of "None"

def bar(a: Union[int, str]) -> None:
    if isinstance(a, str):
        reveal_type(a)  # T: str
    else:
        reveal_type(a)  # T: int
`

func TestParse_ErrorsAndReveals(t *testing.T) {
	exp := Parse(sample)

	if len(exp.Errors) != 1 {
		t.Fatalf("expected 1 error annotation, got %d", len(exp.Errors))
	}
	if got := exp.Errors[4]; got == nil || got.Message != `"split" is not a known member of "None"` {
		t.Errorf("Errors[4] = %+v", got)
	}

	if len(exp.Reveals) != 2 {
		t.Fatalf("expected 2 reveal annotations, got %d", len(exp.Reveals))
	}
	if got := exp.Reveals[8]; got == nil || got.Message != "str" {
		t.Errorf("Reveals[8] = %+v", got)
	}
	if got := exp.Reveals[10]; got == nil || got.Message != "int" {
		t.Errorf("Reveals[10] = %+v", got)
	}

	for line, e := range exp.Errors {
		if e.Accessed {
			t.Errorf("error on line %d starts accessed", line)
		}
	}
}

func TestParse_Table(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantErrors  map[int]string
		wantReveals map[int]string
	}{
		{
			name:    "empty",
			content: "",
		},
		{
			name:    "no_annotations",
			content: "x = 1\nprint(x)\n",
		},
		{
			name:        "reveal_takes_precedence_over_error",
			content:     "def f(a: int) -> None:\n    reveal_type(a)  # T: int  # E: oops\n",
			wantReveals: map[int]string{2: "int  # E: oops"},
		},
		{
			name:    "unindented_reveal_is_ignored",
			content: "reveal_type(a)  # T: int\n",
		},
		{
			name:       "last_error_marker_wins",
			content:    "x  # E: first # E: second\n",
			wantErrors: map[int]string{1: "second"},
		},
		{
			name:       "error_without_code",
			content:    "# E: standalone\n",
			wantErrors: map[int]string{1: "standalone"},
		},
		{
			name:    "marker_needs_space",
			content: "x  #E: nope\ny  # E:nope\n",
		},
		{
			name:       "crlf_line_endings",
			content:    "a = 1\r\nb: int = ''  # E: bad\r\n",
			wantErrors: map[int]string{2: "bad"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := Parse(tt.content)
			if got := messages(exp.Errors); !equalMessages(got, tt.wantErrors) {
				t.Errorf("errors = %v, want %v", got, tt.wantErrors)
			}
			if got := messages(exp.Reveals); !equalMessages(got, tt.wantReveals) {
				t.Errorf("reveals = %v, want %v", got, tt.wantReveals)
			}
		})
	}
}

func TestParse_Idempotent(t *testing.T) {
	first := Parse(sample)
	second := Parse(sample)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("parsing twice gave different results:\n%+v\n%+v", first, second)
	}
}

func TestExpectations_LookupMarksAccessed(t *testing.T) {
	exp := Parse(sample)

	msg, ok := exp.Error(4)
	if !ok {
		t.Fatal("expected error annotation on line 4")
	}
	if msg != `"split" is not a known member of "None"` {
		t.Errorf("unexpected message %q", msg)
	}
	if !exp.Errors[4].Accessed {
		t.Error("line 4 should be accessed after lookup")
	}

	if _, ok := exp.Error(5); ok {
		t.Error("line 5 has no annotation")
	}
	if _, ok := exp.Errors[5]; ok {
		t.Error("a missed lookup must not create an entry")
	}

	if _, ok := exp.Reveal(8); !ok {
		t.Fatal("expected reveal annotation on line 8")
	}
	if !exp.Reveals[8].Accessed {
		t.Error("reveal on line 8 should be accessed after lookup")
	}
}

func TestExpectations_Unaccessed(t *testing.T) {
	exp := Parse("a  # E: one\nb\nc  # E: three\nd  # E: four\n")
	exp.Error(3)

	got := exp.Unaccessed()
	want := []int{1, 4}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Unaccessed() = %v, want %v", got, want)
	}
	if exp.Len() != 3 {
		t.Errorf("Len() = %d, want 3", exp.Len())
	}
}

func messages(m map[int]*Expectation) map[int]string {
	out := make(map[int]string, len(m))
	for line, e := range m {
		out[line] = e.Message
	}
	return out
}

func equalMessages(got, want map[int]string) bool {
	if len(got) == 0 && len(want) == 0 {
		return true
	}
	return reflect.DeepEqual(got, want)
}
