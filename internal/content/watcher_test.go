package content

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherDeliversReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte(`{"tags": ["a"]}`), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(path, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte(`{"tags": ["a", "b"]}`), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case cat := <-w.Reloads:
		if len(cat.Tags) != 2 {
			t.Errorf("expected reloaded catalog with 2 tags, got %v", cat.Tags)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}
