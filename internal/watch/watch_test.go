package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewValidation(t *testing.T) {
	if _, err := New(Config{OnChange: func(context.Context, string) {}}); err == nil {
		t.Error("expected error without path")
	}
	if _, err := New(Config{Path: "x.yaml"}); err == nil {
		t.Error("expected error without callback")
	}
	missing := filepath.Join(t.TempDir(), "nope", "x.yaml")
	if _, err := New(Config{Path: missing, OnChange: func(context.Context, string) {}}); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestWatcherDebounces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	other := filepath.Join(dir, "other.yaml")
	if err := os.WriteFile(path, []byte("orientation: \"100\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	changes := make(chan string, 10)
	w, err := New(Config{
		Path:     path,
		Debounce: 100 * time.Millisecond,
		OnChange: func(_ context.Context, p string) { changes <- p },
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// a burst of writes to the file and an unrelated one
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("orientation: \"110\"\n"), 0644); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(other, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case p := <-changes:
		if p != path {
			t.Errorf("callback got %s, want %s", p, path)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no change callback")
	}

	select {
	case p := <-changes:
		t.Errorf("burst produced a second callback for %s", p)
	case <-time.After(400 * time.Millisecond):
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
