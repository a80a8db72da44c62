package suite

import (
	"context"
	"errors"
	"fmt"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/unbound-force/typesafe/internal/annotation"
	"github.com/unbound-force/typesafe/internal/checker"
	"github.com/unbound-force/typesafe/internal/diagnostic"
	"github.com/unbound-force/typesafe/internal/reconcile"
	"github.com/unbound-force/typesafe/internal/source"
	"github.com/unbound-force/typesafe/internal/taxonomy"
)

// Details shown for CheckerInvocationFailed mismatches; the
// specifics live in the captured output.
const (
	invocationDetail = "An unknown error occurred while running pyright, see the captured output for more details."
	decodeDetail     = "Could not decode pyright output, see the captured output for more details."
)

// Runnable is one test item.
type Runnable interface {
	// Name identifies the item, usually the path relative to the
	// suite root.
	Name() string

	// Run checks the item and returns its result. Failures are
	// reported as mismatches, never as errors.
	Run(ctx context.Context) *taxonomy.FileResult
}

// Item checks a single typesafety file.
type Item struct {
	file     *source.File
	name     string
	runner   checker.Runner
	failFast bool
	logger   *charmlog.Logger
}

var _ Runnable = (*Item)(nil)

// NewItem returns an Item for file using runner. Most callers get
// items from Suite.Collect instead.
func NewItem(file *source.File, name string, runner checker.Runner, failFast bool) *Item {
	return &Item{
		file:     file,
		name:     name,
		runner:   runner,
		failFast: failFast,
		logger:   discard,
	}
}

// Name returns the item name.
func (it *Item) Name() string { return it.name }

// Path returns the absolute path of the checked file.
func (it *Item) Path() string { return it.file.Path }

// Run parses the file's annotations, runs the checker on it and
// reconciles the two. Every run invokes the checker afresh.
func (it *Item) Run(ctx context.Context) *taxonomy.FileResult {
	start := time.Now()
	r := &taxonomy.FileResult{
		File: it.file.Path,
		Name: it.name,
	}
	defer func() {
		r.Metadata.Timestamp = start
		r.Metadata.Duration = time.Since(start)
		if it.failFast && len(r.Mismatches) > 1 {
			r.Mismatches = firstByLine(r.Mismatches)
		}
		r.Stamp()
		it.logger.Debug("item finished",
			"mismatches", len(r.Mismatches),
			"duration", r.Metadata.Duration)
	}()

	content, err := it.file.Content()
	if err != nil {
		r.Mismatches = []taxonomy.Mismatch{
			taxonomy.New(taxonomy.CheckerInvocationFailed, 0, err.Error()),
		}
		return r
	}
	r.Content = content

	exp := annotation.Parse(content)
	r.Summary.ExpectedErrors = len(exp.Errors)
	r.Summary.ExpectedReveals = len(exp.Reveals)

	raw, err := it.runner.Run(ctx, it.file.Path)
	if err != nil {
		it.logger.Warn("checker invocation failed", "err", err)
		r.Mismatches = []taxonomy.Mismatch{invocationFailure(err)}
		return r
	}

	out, err := diagnostic.Decode(raw.Stdout)
	if err != nil {
		it.logger.Warn("checker output rejected", "err", err)
		m := taxonomy.New(taxonomy.CheckerInvocationFailed, 0, decodeDetail)
		m.Actual = err.Error()
		m.Output = (&checker.InvocationError{
			ExitCode: raw.ExitCode,
			Stdout:   raw.Stdout,
			Stderr:   raw.Stderr,
		}).Output()
		r.Mismatches = []taxonomy.Mismatch{m}
		return r
	}
	r.Metadata.CheckerVersion = out.Version

	diags := diagnostic.Normalize(out)
	r.Summary.Diagnostics = len(diags)
	r.Mismatches = reconcile.Reconcile(diags, exp, it.file.Path)
	return r
}

func invocationFailure(err error) taxonomy.Mismatch {
	m := taxonomy.New(taxonomy.CheckerInvocationFailed, 0, invocationDetail)
	m.Actual = err.Error()

	var ie *checker.InvocationError
	if errors.As(err, &ie) {
		m.Output = ie.Output()
	} else {
		m.Output = fmt.Sprintf("%v\n", err)
	}
	return m
}

// firstByLine keeps the mismatch with the lowest line number. Ties
// go to the earliest one found.
func firstByLine(ms []taxonomy.Mismatch) []taxonomy.Mismatch {
	first := 0
	for i := 1; i < len(ms); i++ {
		if ms[i].Line < ms[first].Line {
			first = i
		}
	}
	return ms[first : first+1]
}
