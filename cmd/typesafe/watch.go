package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// defaultSettle is how long the watcher waits for a burst of file
// events to end before rerunning.
const defaultSettle = 300 * time.Millisecond

// watcher reruns a check whenever a Python file below dir changes.
type watcher struct {
	dir    string
	settle time.Duration
	run    func(ctx context.Context) error
	out    io.Writer
}

// Run checks once, then again after every settled burst of changes,
// until ctx is done.
func (w *watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := addTree(fw, w.dir); err != nil {
		return err
	}
	logger.Info("watching for changes", "dir", w.dir)

	w.trigger(ctx)

	timer := time.NewTimer(w.settle)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) && isDir(ev.Name) {
				if err := addTree(fw, ev.Name); err != nil {
					logger.Warn("cannot watch new directory", "dir", ev.Name, "err", err)
				}
			}
			if !relevant(ev) {
				continue
			}
			logger.Debug("change detected", "file", ev.Name, "op", ev.Op.String())
			timer.Reset(w.settle)

		case <-timer.C:
			w.trigger(ctx)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "err", err)
		}
	}
}

func (w *watcher) trigger(ctx context.Context) {
	fmt.Fprintf(w.out, "\n--- %s ---\n", time.Now().Format(time.TimeOnly))
	if err := w.run(ctx); err != nil {
		logger.Warn("check failed", "err", err)
	}
}

// relevant reports whether ev changes the content of a Python file.
func relevant(ev fsnotify.Event) bool {
	if filepath.Ext(ev.Name) != ".py" {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) ||
		ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}

// addTree watches dir and every non-hidden directory below it.
// fsnotify watches are not recursive.
func addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// runWatch resolves the collection directory and watches it.
func runWatch(ctx context.Context, p runParams, settle time.Duration) error {
	cfg, err := loadConfig(p)
	if err != nil {
		return err
	}
	p.format = "text"
	p.interactive = false

	w := &watcher{
		dir:    filepath.Join(p.root, filepath.FromSlash(cfg.Dir)),
		settle: settle,
		run: func(ctx context.Context) error {
			return runRun(ctx, p)
		},
		out: p.stdout,
	}
	return w.Run(ctx)
}

func newWatchCmd() *cobra.Command {
	var (
		dir      string
		jobs     int
		failFast bool
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rerun the suite whenever a typesafety file changes",
		Long: `Run the suite once, then watch the typesafety directory and run it
again whenever a .py file below it is written, created, renamed or
removed. Stop with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting working directory: %w", err)
			}
			return runWatch(cmd.Context(), runParams{
				root:     root,
				dir:      dir,
				jobs:     jobs,
				failFast: failFast,
				verbose:  verbose,
				stdout:   os.Stdout,
				stderr:   os.Stderr,
			}, defaultSettle)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "",
		"directory to watch and collect from (default from .typesafe.yaml or \"typesafety\")")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0,
		"files checked in parallel (default from .typesafe.yaml or 1)")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false,
		"show only the first mismatch of each failing file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"list passing files too")

	return cmd
}
