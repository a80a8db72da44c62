// Package annotation extracts expected-diagnostic comments from
// typesafety source files.
//
// Two trailing comment forms are recognized:
//
//	print(a.split('.'))  # E: "split" is not a known member of "None"
//	    reveal_type(a)  # T: str
//
// A line is tested against the reveal form first; a line that
// matches it is never recorded as an expected error.
package annotation

import (
	"regexp"
	"sort"

	"github.com/unbound-force/typesafe/internal/source"
)

var (
	// revealRe matches an indented reveal_type probe followed by a
	// "# T:" comment.
	revealRe = regexp.MustCompile(`^\s+reveal_type\(.*\)\s+# T: (.*)`)

	// errorRe matches any line carrying a "# E:" comment. The
	// greedy prefix makes the last marker on the line win.
	errorRe = regexp.MustCompile(`^.*# E: (.*)`)
)

// Expectation is one parsed, line-anchored assertion.
type Expectation struct {
	// Message is the exact expected error text or revealed type.
	Message string `json:"message" yaml:"message"`

	// Accessed is set once a diagnostic on the same line has been
	// compared against this expectation.
	Accessed bool `json:"accessed" yaml:"accessed,omitempty"`
}

// Expectations holds the parsed annotations of one file, keyed by
// 1-based line number.
type Expectations struct {
	Errors  map[int]*Expectation `json:"errors" yaml:"errors"`
	Reveals map[int]*Expectation `json:"reveals" yaml:"reveals"`
}

// Parse scans content line by line and returns its expectations.
// Parsing has no side effects; parsing the same content twice
// yields equal results.
func Parse(content string) *Expectations {
	exp := &Expectations{
		Errors:  make(map[int]*Expectation),
		Reveals: make(map[int]*Expectation),
	}

	for i, line := range source.Lines(content) {
		lineno := i + 1

		if m := revealRe.FindStringSubmatch(line); m != nil {
			exp.Reveals[lineno] = &Expectation{Message: m[1]}
			continue
		}
		if m := errorRe.FindStringSubmatch(line); m != nil {
			exp.Errors[lineno] = &Expectation{Message: m[1]}
		}
	}

	return exp
}

// Error returns the expected error on line and marks it accessed.
// ok is false when the line has no "# E:" annotation, in which case
// nothing is marked.
func (e *Expectations) Error(line int) (msg string, ok bool) {
	return lookup(e.Errors, line)
}

// Reveal returns the expected revealed type on line and marks it
// accessed.
func (e *Expectations) Reveal(line int) (msg string, ok bool) {
	return lookup(e.Reveals, line)
}

func lookup(m map[int]*Expectation, line int) (string, bool) {
	exp, ok := m[line]
	if !ok {
		return "", false
	}
	exp.Accessed = true
	return exp.Message, true
}

// Unaccessed returns the lines of expected errors that no
// diagnostic consumed, in ascending order.
func (e *Expectations) Unaccessed() []int {
	var lines []int
	for line, exp := range e.Errors {
		if !exp.Accessed {
			lines = append(lines, line)
		}
	}
	sort.Ints(lines)
	return lines
}

// Len returns the total number of annotations.
func (e *Expectations) Len() int {
	return len(e.Errors) + len(e.Reveals)
}
