package source

import (
	"encoding/json"
	"os"
	"sync"
)

// Checkpoint persists per-file read offsets so follow mode can resume where
// a previous run stopped. Only byte offsets are stored, never record
// content.
type Checkpoint struct {
	mu      sync.RWMutex
	path    string
	offsets map[string]int64
}

// LoadCheckpoint reads the checkpoint file at path, or starts an empty one
// when the file does not exist or cannot be parsed.
func LoadCheckpoint(path string) *Checkpoint {
	c := &Checkpoint{
		path:    path,
		offsets: make(map[string]int64),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return c
	}

	var saved struct {
		Offsets map[string]int64 `json:"offsets"`
	}
	if json.Unmarshal(raw, &saved) == nil && saved.Offsets != nil {
		c.offsets = saved.Offsets
	}
	return c
}

// Offset returns the saved offset for a file path.
func (c *Checkpoint) Offset(path string) (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.offsets[path]
	return v, ok
}

// Record stores the current offset for a file path.
func (c *Checkpoint) Record(path string, offset int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offsets[path] = offset
}

// Save writes the offsets to disk, dropping entries whose file no longer
// exists. The write goes through a temp file and rename so a crash never
// leaves a half-written checkpoint.
func (c *Checkpoint) Save() error {
	c.mu.Lock()
	for path := range c.offsets {
		if _, err := os.Stat(path); err != nil {
			delete(c.offsets, path)
		}
	}
	saved := struct {
		Offsets map[string]int64 `json:"offsets"`
	}{Offsets: c.offsets}
	raw, err := json.MarshalIndent(saved, "", "  ")
	c.mu.Unlock()
	if err != nil {
		return err
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}
