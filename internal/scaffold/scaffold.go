// Package scaffold embeds a starter typesafety suite and writes it
// to a target project directory.
package scaffold

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"

	"github.com/unbound-force/typesafe/internal/config"
)

//go:embed all:assets
var assets embed.FS

// Options configures the scaffold operation.
type Options struct {
	// TargetDir is the root directory to scaffold into.
	// Defaults to the current working directory.
	TargetDir string

	// Dir is the collection directory the example suite is written
	// to, relative to TargetDir. Defaults to config.DefaultDir.
	Dir string

	// Force overwrites existing files when true.
	// When false, existing files are skipped.
	Force bool

	// Version is the typesafe version string to embed in the
	// version marker comment. Set by ldflags at build time.
	// Defaults to "dev" for development builds.
	Version string

	// Pyright is the checker executable looked up on PATH to warn
	// early when it is missing. Defaults to config.DefaultPyright.
	Pyright string

	// Stdout is the writer for summary output.
	// Defaults to os.Stdout.
	Stdout io.Writer
}

// Result reports what the scaffold operation did. Paths are
// slash-separated and relative to the target directory.
type Result struct {
	// Created lists files that were written for the first time.
	Created []string

	// Skipped lists files that already existed and were not
	// overwritten (Force was false).
	Skipped []string

	// Overwritten lists files that existed and were replaced
	// (Force was true).
	Overwritten []string
}

// versionMarker returns the marker comment prepended to a
// scaffolded file, or "" for formats without a safe comment syntax.
func versionMarker(name, version string) string {
	if version == "" {
		version = "dev"
	}
	switch path.Ext(name) {
	case ".py", ".yaml", ".yml":
		return fmt.Sprintf("# scaffolded by typesafe %s\n", version)
	default:
		return ""
	}
}

// Run writes the starter suite into the target directory: an
// example typesafety file with its pyright project configuration,
// and a .typesafe.yaml in the target root.
//
// Python and YAML files are prepended with a version marker:
//
//	# scaffolded by typesafe vX.Y.Z
//
// If a file already exists and opts.Force is false, the file is
// skipped. If opts.Force is true, the file is overwritten.
func Run(opts Options) (*Result, error) {
	if opts.TargetDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		opts.TargetDir = cwd
	}
	if opts.Dir == "" {
		opts.Dir = config.DefaultDir
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.Pyright == "" {
		opts.Pyright = config.DefaultPyright
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	// Warn early when the checker cannot be found.
	if _, err := exec.LookPath(opts.Pyright); err != nil {
		fmt.Fprintf(opts.Stdout, "Warning: %s not found on PATH.\n", opts.Pyright)
		fmt.Fprintln(opts.Stdout, "Install it with: npm install -g pyright")
		fmt.Fprintln(opts.Stdout)
	}

	result := &Result{}

	err := fs.WalkDir(assets, "assets", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		relPath := targetPath(strings.TrimPrefix(p, "assets/"), opts.Dir)
		outPath := filepath.Join(opts.TargetDir, filepath.FromSlash(relPath))

		_, statErr := os.Stat(outPath)
		exists := statErr == nil

		if exists && !opts.Force {
			result.Skipped = append(result.Skipped, relPath)
			return nil
		}

		content, err := assets.ReadFile(p)
		if err != nil {
			return fmt.Errorf("reading embedded asset %s: %w", p, err)
		}
		if relPath == config.FileName {
			content = withDir(content, opts.Dir)
		}

		dir := filepath.Dir(outPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}

		out := append([]byte(versionMarker(relPath, opts.Version)), content...)
		if err := os.WriteFile(outPath, out, 0o644); err != nil {
			return fmt.Errorf("creating %s: %w", relPath, err)
		}

		if exists {
			result.Overwritten = append(result.Overwritten, relPath)
		} else {
			result.Created = append(result.Created, relPath)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	printSummary(opts.Stdout, result, opts.Dir)

	return result, nil
}

// targetPath maps an asset path onto the target tree, moving files
// under the default collection directory to dir.
func targetPath(rel, dir string) string {
	prefix := config.DefaultDir + "/"
	if strings.HasPrefix(rel, prefix) {
		return path.Join(filepath.ToSlash(dir), strings.TrimPrefix(rel, prefix))
	}
	return rel
}

// withDir rewrites the "dir:" setting of the embedded configuration.
func withDir(content []byte, dir string) []byte {
	if dir == config.DefaultDir {
		return content
	}
	return []byte(strings.Replace(string(content),
		"dir: "+config.DefaultDir+"\n",
		"dir: "+filepath.ToSlash(dir)+"\n", 1))
}

// printSummary writes a human-readable summary of the scaffold
// operation to w.
func printSummary(w io.Writer, r *Result, dir string) {
	fmt.Fprintln(w, "Typesafety suite initialized:")

	for _, f := range r.Created {
		fmt.Fprintf(w, "  created: %s\n", f)
	}
	for _, f := range r.Skipped {
		fmt.Fprintf(w, "  skipped: %s (already exists)\n", f)
	}
	for _, f := range r.Overwritten {
		fmt.Fprintf(w, "  overwritten: %s\n", f)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Add files under %s/ and run: typesafe run\n", dir)

	if len(r.Skipped) > 0 {
		fmt.Fprintf(w, "%d file(s) skipped (use --force to overwrite).\n", len(r.Skipped))
	}
}

// AssetPaths returns the relative paths of all embedded assets.
func AssetPaths() ([]string, error) {
	var paths []string
	err := fs.WalkDir(assets, "assets", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		paths = append(paths, strings.TrimPrefix(p, "assets/"))
		return nil
	})
	return paths, err
}

// AssetContent returns the raw content of an embedded asset by
// its relative path (e.g., "typesafety/example.py").
func AssetContent(relPath string) ([]byte, error) {
	return assets.ReadFile("assets/" + relPath)
}
