package source

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// FromEnd tells TailFile to start reading at the current end of the file,
// ignoring existing content. Any offset >= 0 resumes from that position.
const FromEnd int64 = -1

// Tail follows a single growing log file. It drains complete lines that are
// already on disk, then waits for filesystem events; a wait that exceeds the
// configured bound returns ErrTimeout so the caller can flush in-progress
// work. Rotation (remove/rename + recreate) and truncation are handled by
// reopening or rewinding the file.
//
// Tail watches the file's parent directory rather than the file itself, so
// a rotated-away file's replacement shows up as a Create event instead of
// requiring a retry poll.
type Tail struct {
	path    string // absolute
	timeout time.Duration

	file    *os.File
	rd      *bufio.Reader
	partial string // trailing data not yet terminated by a newline
	pending int    // bytes of partial already read but not yet emitted
	offset  atomic.Int64

	fsw       *fsnotify.Watcher
	reopen    bool // current handle was rotated away; reopen once drained
	done      chan struct{}
	closeOnce sync.Once
}

// TailFile opens path for following. offset is the byte position to resume
// from: FromEnd to skip existing content, 0 to read from the top, or a
// saved checkpoint offset. An offset beyond the current file size (the file
// was truncated or replaced since the offset was saved) falls back to the
// top. timeout <= 0 disables the bounded wait.
func TailFile(path string, offset int64, timeout time.Duration) (*Tail, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, err
	}

	t := &Tail{
		path:    abs,
		timeout: timeout,
		fsw:     fsw,
		done:    make(chan struct{}),
	}

	if err := t.open(offset); err != nil {
		fsw.Close()
		return nil, err
	}
	return t, nil
}

// Path returns the absolute path of the followed file.
func (t *Tail) Path() string { return t.path }

// Offset returns the current read position, suitable for checkpointing.
// Safe to call while another goroutine is in ReadLine.
func (t *Tail) Offset() int64 { return t.offset.Load() }

// Close releases the file handle and the filesystem watcher. A concurrent
// or subsequent ReadLine returns io.EOF.
func (t *Tail) Close() error {
	t.closeOnce.Do(func() {
		close(t.done)
		t.fsw.Close()
		if t.file != nil {
			t.file.Close()
		}
	})
	return nil
}

func (t *Tail) ReadLine() (string, error) {
	select {
	case <-t.done:
		return "", io.EOF
	default:
	}

	var timeoutC <-chan time.Time
	if t.timeout > 0 {
		timer := time.NewTimer(t.timeout)
		defer timer.Stop()
		timeoutC = timer.C
	}

	for {
		if t.file == nil {
			// Waiting out a rotation gap; the file may already be back.
			if err := t.open(0); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return "", err
			}
		}

		if t.file != nil {
			line, err := t.nextBuffered()
			switch {
			case err == nil:
				return line, nil
			case errors.Is(err, io.EOF):
				if t.reopen {
					// Old handle fully drained; pick up the replacement.
					t.closeCurrent()
					continue
				}
				t.checkTruncated()
			case errors.Is(err, fs.ErrClosed):
				return "", io.EOF
			default:
				return "", err
			}
		}

		select {
		case <-t.done:
			return "", io.EOF
		case ev, ok := <-t.fsw.Events:
			if !ok {
				return "", io.EOF
			}
			t.handleEvent(ev)
		case err, ok := <-t.fsw.Errors:
			if !ok {
				return "", io.EOF
			}
			return "", err
		case <-timeoutC:
			return "", ErrTimeout
		}
	}
}

// nextBuffered returns the next complete line already on disk. Incomplete
// trailing data is stashed in t.partial until its newline arrives; the
// checkpoint offset only advances past fully emitted lines.
func (t *Tail) nextBuffered() (string, error) {
	chunk, err := t.rd.ReadString('\n')
	if err == nil {
		t.offset.Add(int64(t.pending + len(chunk)))
		line := t.partial + strings.TrimSuffix(strings.TrimSuffix(chunk, "\n"), "\r")
		t.partial = ""
		t.pending = 0
		return line, nil
	}

	t.partial += chunk
	t.pending += len(chunk)
	return "", err
}

func (t *Tail) handleEvent(ev fsnotify.Event) {
	if ev.Name != t.path {
		return
	}
	switch {
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		t.reopen = true
	case ev.Op&fsnotify.Create != 0:
		if t.file != nil {
			// Replaced underneath us without a visible remove.
			t.reopen = true
		}
	}
	// Write events just cause the read loop to retry.
}

// checkTruncated rewinds when the file shrank below the read offset, e.g.
// after copytruncate-style rotation.
func (t *Tail) checkTruncated() {
	fi, err := t.file.Stat()
	if err != nil || fi.Size() >= t.offset.Load() {
		return
	}
	log.Warn().Str("path", t.path).Msg("file truncated, rewinding to start")
	if _, err := t.file.Seek(0, io.SeekStart); err == nil {
		t.rd.Reset(t.file)
		t.offset.Store(0)
		t.partial = ""
		t.pending = 0
	}
}

func (t *Tail) closeCurrent() {
	t.file.Close()
	t.file = nil
	t.rd = nil
	t.partial = ""
	t.pending = 0
	t.reopen = false
	log.Info().Str("path", t.path).Msg("file rotated, reopening")
}

func (t *Tail) open(offset int64) error {
	f, err := os.Open(t.path)
	if err != nil {
		return err
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}

	pos := offset
	switch {
	case pos == FromEnd:
		pos = fi.Size()
	case pos > fi.Size():
		pos = 0
	}
	if _, err := f.Seek(pos, io.SeekStart); err != nil {
		f.Close()
		return err
	}

	t.file = f
	t.rd = bufio.NewReaderSize(f, 64*1024)
	t.offset.Store(pos)
	return nil
}
