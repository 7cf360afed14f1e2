package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckpointSaveLoad(t *testing.T) {
	dir := t.TempDir()
	ckptPath := filepath.Join(dir, "state.json")

	// Offsets are only kept for files that still exist at save time.
	logA := filepath.Join(dir, "a.log")
	logB := filepath.Join(dir, "b.log")
	writeFile(t, logA, "content\n")
	writeFile(t, logB, "content\n")

	c1 := LoadCheckpoint(ckptPath)
	c1.Record(logA, 42)
	c1.Record(logB, 1024)
	if err := c1.Save(); err != nil {
		t.Fatal(err)
	}

	c2 := LoadCheckpoint(ckptPath)

	v, ok := c2.Offset(logA)
	if !ok || v != 42 {
		t.Errorf("expected 42, got %d (found=%v)", v, ok)
	}
	v, ok = c2.Offset(logB)
	if !ok || v != 1024 {
		t.Errorf("expected 1024, got %d (found=%v)", v, ok)
	}
	if _, ok := c2.Offset("/nonexistent"); ok {
		t.Error("expected missing key to return false")
	}
}

func TestCheckpointDropsVanishedFiles(t *testing.T) {
	dir := t.TempDir()
	ckptPath := filepath.Join(dir, "state.json")

	logPath := filepath.Join(dir, "rotated.log")
	writeFile(t, logPath, "content\n")

	c1 := LoadCheckpoint(ckptPath)
	c1.Record(logPath, 99)
	if err := c1.Save(); err != nil {
		t.Fatal(err)
	}

	// The file disappears; the next save prunes its entry.
	if err := os.Remove(logPath); err != nil {
		t.Fatal(err)
	}
	if err := c1.Save(); err != nil {
		t.Fatal(err)
	}

	c2 := LoadCheckpoint(ckptPath)
	if _, ok := c2.Offset(logPath); ok {
		t.Error("expected the vanished file's offset to be pruned")
	}
}

func TestCheckpointMissingFileStartsEmpty(t *testing.T) {
	c := LoadCheckpoint(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if _, ok := c.Offset("/anything"); ok {
		t.Error("expected an empty checkpoint")
	}
}
