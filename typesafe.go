// Package typesafe runs a typesafety suite from go test, one subtest
// per file:
//
//	func TestTypesafety(t *testing.T) {
//		typesafe.Run(t, typesafe.Options{Root: ".."})
//	}
//
// Each subtest runs pyright on its file and fails with the annotated
// listing when pyright's diagnostics disagree with the file's
// "# E:" and "# T:" annotations.
package typesafe

import (
	"bytes"
	"context"
	"testing"

	"github.com/unbound-force/typesafe/internal/config"
	"github.com/unbound-force/typesafe/internal/report"
	"github.com/unbound-force/typesafe/internal/suite"
)

// Options configures Run. Zero values fall back to the project's
// .typesafe.yaml and then to the built-in defaults.
type Options struct {
	// Root is the project root, where .typesafe.yaml lives and
	// against which Dir is resolved. Defaults to ".".
	Root string

	// Dir is the collection prefix below Root.
	Dir string

	// Pyright is the checker executable.
	Pyright string

	// FailFast reports only the first mismatch of each file.
	FailFast bool

	// Parallel runs the subtests in parallel, bounded by go test's
	// -parallel flag.
	Parallel bool
}

// Run collects the suite below opts.Root and checks each file in its
// own subtest. It skips t when the suite is empty.
func Run(t *testing.T, opts Options) {
	t.Helper()

	items := collect(t, opts)
	if len(items) == 0 {
		t.Skip("no typesafety files found")
	}

	for _, it := range items {
		t.Run(it.Name(), func(t *testing.T) {
			if opts.Parallel {
				t.Parallel()
			}
			checkItem(t, t.Context(), it)
		})
	}
}

func collect(t testing.TB, opts Options) []suite.Runnable {
	t.Helper()

	if opts.Root == "" {
		opts.Root = "."
	}
	cfg, err := config.Load(opts.Root)
	if err != nil {
		t.Fatalf("loading typesafe config: %v", err)
	}
	if opts.Dir != "" {
		cfg.Dir = opts.Dir
	}
	if opts.Pyright != "" {
		cfg.Pyright = opts.Pyright
	}
	if opts.FailFast {
		cfg.FailFast = true
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("typesafe config: %v", err)
	}

	s, err := suite.New(opts.Root, suite.OptionsFromConfig(cfg))
	if err != nil {
		t.Fatalf("typesafe suite: %v", err)
	}
	items, err := s.Collect()
	if err != nil {
		t.Fatalf("collecting typesafety files: %v", err)
	}
	return items
}

// checkItem runs one item and fails t with its report.
func checkItem(t testing.TB, ctx context.Context, it suite.Runnable) {
	t.Helper()

	r := it.Run(ctx)
	if r.Passed() {
		return
	}
	var buf bytes.Buffer
	report.WriteResult(&buf, r, report.DefaultStyles())
	t.Error("\n" + buf.String())
}
