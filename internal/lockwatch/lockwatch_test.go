package lockwatch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherRecordsLockfileWrites(t *testing.T) {
	dir := t.TempDir()
	w := New(dir)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	// Give the watcher a moment to register before writing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "package-lock.json"), []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(2 * time.Second)
	for {
		touched := w.Touched()
		if len(touched) == 1 && touched[0] == "package-lock.json" {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("touched = %v, want [package-lock.json]", touched)
		case <-time.After(50 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

func TestWatcherMissingDirIsSilent(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "does-not-exist"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// Must return without error or panic.
	w.Run(ctx)
	if len(w.Touched()) != 0 {
		t.Error("expected no observations")
	}
}
