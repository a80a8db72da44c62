// Package suite discovers typesafety files and runs each one as an
// independent item: parse annotations, invoke the checker, decode
// its output and reconcile the two.
package suite

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	charmlog "github.com/charmbracelet/log"
	"github.com/unbound-force/typesafe/internal/checker"
	"github.com/unbound-force/typesafe/internal/config"
	"github.com/unbound-force/typesafe/internal/source"
)

// Collector decides which files belong to the suite and builds a
// runnable item for each of them.
type Collector interface {
	IsTypesafetyFile(path string) bool
	NewItem(path string) (Runnable, error)
}

// Options configures a Suite.
type Options struct {
	// Dir is the collection prefix, relative to the suite root.
	// Defaults to config.DefaultDir.
	Dir string

	// Exclude holds doublestar patterns matched against the
	// slash-separated path relative to the suite root.
	Exclude []string

	// FailFast reports only the first mismatch of each file.
	FailFast bool

	// Runner invokes the checker. Defaults to a Pyright runner
	// using config.DefaultPyright.
	Runner checker.Runner

	// Logger receives debug output. Defaults to a discarding logger.
	Logger *charmlog.Logger
}

// OptionsFromConfig maps a loaded configuration onto suite options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Dir:      cfg.Dir,
		Exclude:  cfg.Exclude,
		FailFast: cfg.FailFast,
		Runner:   &checker.Pyright{Binary: cfg.Pyright},
	}
}

// Suite is the default Collector.
type Suite struct {
	root string
	opts Options
}

var _ Collector = (*Suite)(nil)

// New returns a Suite rooted at root, which plays the role of the
// working directory for membership checks.
func New(root string, opts Options) (*Suite, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}
	if opts.Dir == "" {
		opts.Dir = config.DefaultDir
	}
	if opts.Runner == nil {
		opts.Runner = &checker.Pyright{Binary: config.DefaultPyright}
	}
	if opts.Logger == nil {
		opts.Logger = discard
	}
	for _, p := range opts.Exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	return &Suite{root: abs, opts: opts}, nil
}

// Root returns the absolute suite root.
func (s *Suite) Root() string { return s.root }

// IsTypesafetyFile reports whether path is a Python file under the
// suite's collection prefix that no exclude pattern matches.
func (s *Suite) IsTypesafetyFile(path string) bool {
	if !IsTypesafetyFile(path, s.opts.Dir, s.root) {
		return false
	}
	return !s.excluded(s.rel(path))
}

// NewItem builds the item for one file. It does not check
// membership.
func (s *Suite) NewItem(path string) (Runnable, error) {
	f, err := source.Open(s.abs(path))
	if err != nil {
		return nil, err
	}
	return &Item{
		file:     f,
		name:     s.rel(f.Path),
		runner:   s.opts.Runner,
		failFast: s.opts.FailFast,
		logger:   s.opts.Logger.With("file", s.rel(f.Path)),
	}, nil
}

// Collect walks each of paths (the suite root when none are given)
// and returns one item per qualifying file, sorted by name. Hidden
// directories are skipped. A path naming a single file is collected
// if it qualifies.
func (s *Suite) Collect(paths ...string) ([]Runnable, error) {
	if len(paths) == 0 {
		paths = []string{s.root}
	}

	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] && s.IsTypesafetyFile(path) {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, p := range paths {
		p = s.abs(p)
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("collecting %s: %w", p, err)
		}
		if !info.IsDir() {
			add(p)
			continue
		}

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			// Skip hidden directories (like .git or .venv) early.
			if d.IsDir() {
				base := d.Name()
				if path != p && strings.HasPrefix(base, ".") {
					return filepath.SkipDir
				}
				return nil
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("collecting %s: %w", p, err)
		}
	}

	sort.Strings(files)
	s.opts.Logger.Debug("collected typesafety files", "count", len(files), "dir", s.opts.Dir)

	items := make([]Runnable, 0, len(files))
	for _, f := range files {
		it, err := s.NewItem(f)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

// Collect is shorthand for New followed by Suite.Collect over root.
func Collect(root string, opts Options) ([]Runnable, error) {
	s, err := New(root, opts)
	if err != nil {
		return nil, err
	}
	return s.Collect()
}

// IsTypesafetyFile reports whether path ends in ".py" and its
// slash-separated form relative to cwd starts with dir. The check
// is a plain string prefix, so dir may span several segments.
func IsTypesafetyFile(path, dir, cwd string) bool {
	if filepath.Ext(path) != ".py" {
		return false
	}
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(cwd, abs)
	}
	rel, err := filepath.Rel(cwd, abs)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if strings.HasPrefix(rel, "../") {
		return false
	}
	return strings.HasPrefix(rel, dir)
}

func (s *Suite) excluded(rel string) bool {
	for _, p := range s.opts.Exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

func (s *Suite) abs(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(s.root, path)
}

func (s *Suite) rel(path string) string {
	rel, err := filepath.Rel(s.root, s.abs(path))
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
