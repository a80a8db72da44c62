package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestRelevant(t *testing.T) {
	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"write py", fsnotify.Event{Name: "t/a.py", Op: fsnotify.Write}, true},
		{"create py", fsnotify.Event{Name: "t/a.py", Op: fsnotify.Create}, true},
		{"remove py", fsnotify.Event{Name: "t/a.py", Op: fsnotify.Remove}, true},
		{"rename py", fsnotify.Event{Name: "t/a.py", Op: fsnotify.Rename}, true},
		{"chmod py", fsnotify.Event{Name: "t/a.py", Op: fsnotify.Chmod}, false},
		{"write txt", fsnotify.Event{Name: "t/a.txt", Op: fsnotify.Write}, false},
		{"editor swap", fsnotify.Event{Name: "t/.a.py.swp", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := relevant(tt.ev); got != tt.want {
				t.Errorf("relevant(%v) = %v, want %v", tt.ev, got, tt.want)
			}
		})
	}
}

func TestAddTree_SkipsHiddenDirs(t *testing.T) {
	root := t.TempDir()
	for _, d := range []string{"sub/deeper", ".cache/x"} {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		t.Fatal(err)
	}
	defer fw.Close()

	if err := addTree(fw, root); err != nil {
		t.Fatalf("addTree() error: %v", err)
	}

	watched := make(map[string]bool)
	for _, p := range fw.WatchList() {
		watched[p] = true
	}
	for _, want := range []string{root, filepath.Join(root, "sub"), filepath.Join(root, "sub", "deeper")} {
		if !watched[want] {
			t.Errorf("expected %s to be watched, got %v", want, fw.WatchList())
		}
	}
	if watched[filepath.Join(root, ".cache")] {
		t.Error("hidden directories should not be watched")
	}
}

func TestAddTree_MissingDir(t *testing.T) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		t.Fatal(err)
	}
	defer fw.Close()

	if err := addTree(fw, filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for a missing directory")
	}
}

func TestWatcher_RerunsOnChange(t *testing.T) {
	dir := t.TempDir()
	runs := make(chan struct{}, 10)

	w := &watcher{
		dir:    dir,
		settle: 20 * time.Millisecond,
		run: func(ctx context.Context) error {
			runs <- struct{}{}
			return nil
		},
		out: &bytes.Buffer{},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	wait := func(what string) {
		t.Helper()
		select {
		case <-runs:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for %s", what)
		}
	}

	wait("the initial run")

	if err := os.WriteFile(filepath.Join(dir, "a.py"), []byte("x = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	wait("a rerun after the change")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}
