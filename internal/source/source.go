// Package source abstracts the byte streams log records are read from: a
// static file, standard input, a subprocess pipe, or a live growing file.
// Every backend yields physical lines one at a time through the same small
// interface, so the segmenter never cares where its input comes from.
package source

import (
	"bufio"
	"errors"
	"io"
)

// ErrTimeout reports that a bounded-wait read expired with no data
// available. It is a flow-control signal, not a failure: the caller may
// flush buffered work and read again.
var ErrTimeout = errors.New("source: read timed out")

// maxLineSize caps a single physical line. Stack traces in NSO logs can get
// long, but a line this size is pathological.
const maxLineSize = 1024 * 1024

// A Source yields one text line per call, line terminator stripped.
//
// ReadLine returns io.EOF when the stream is permanently exhausted and
// ErrTimeout when a configured bounded wait expired with no line available.
// Any other error is fatal to the stream. Closing the underlying file or
// pipe is the owning caller's responsibility.
type Source interface {
	ReadLine() (string, error)
}

// Reader adapts any io.Reader into a Source. Reads block until a line is
// available or the stream ends, so it suits batch operation: static files,
// redirected stdin, or a finished subprocess's output.
type Reader struct {
	sc   *bufio.Scanner
	done bool
}

// NewReader returns a Source reading lines from r.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	return &Reader{sc: sc}
}

func (r *Reader) ReadLine() (string, error) {
	if r.done {
		return "", io.EOF
	}
	if r.sc.Scan() {
		return r.sc.Text(), nil
	}
	r.done = true
	if err := r.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
