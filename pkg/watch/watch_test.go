package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
)

func startWatcher(t *testing.T, file string, fn func(string)) {
	t.Helper()
	log, _ := test.NewNullLogger()
	w, err := New(50*time.Millisecond, log)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := w.Add(file, fn); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestChangeTriggersCallback(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "part.csg")
	if err := os.WriteFile(script, []byte("(cube)"), 0o644); err != nil {
		t.Fatal(err)
	}

	changed := make(chan string, 4)
	startWatcher(t, script, func(p string) { changed <- p })

	if err := os.WriteFile(script, []byte("(sphere)"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case p := <-changed:
		if filepath.Base(p) != "part.csg" {
			t.Errorf("callback path = %q, want part.csg", p)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no callback after writing the script")
	}
}

func TestBurstIsDebounced(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "part.csg")
	if err := os.WriteFile(script, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	startWatcher(t, script, func(string) { calls.Add(1) })

	for i := range 5 {
		if err := os.WriteFile(script, []byte{byte('0' + i)}, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	time.Sleep(500 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("callbacks = %d, want 1 for a burst of writes", n)
	}
}

func TestOtherFilesIgnored(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "part.csg")
	if err := os.WriteFile(script, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	startWatcher(t, script, func(string) { calls.Add(1) })

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)
	if n := calls.Load(); n != 0 {
		t.Errorf("callbacks = %d for an unrelated file, want 0", n)
	}
}

func TestAddMissingDirectory(t *testing.T) {
	log, _ := test.NewNullLogger()
	w, err := New(0, log)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.close()
	if w.debounce != DefaultDebounce {
		t.Errorf("debounce = %s, want %s", w.debounce, DefaultDebounce)
	}
	if err := w.Add(filepath.Join(t.TempDir(), "missing", "part.csg"), func(string) {}); err == nil {
		t.Error("expected an error for a file in a missing directory")
	}
}
