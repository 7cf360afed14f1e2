package source

import (
	"bufio"
	"io"
	"time"
)

// readResult carries one line (or the terminal error) from the reader
// goroutine to ReadLine.
type readResult struct {
	text string
	err  error
}

// Bounded wraps a blocking reader — typically a live pipe such as stdin or
// a subprocess's stdout — so that a read waits at most the configured bound
// before reporting ErrTimeout. A zero or negative timeout disables the
// bound entirely.
//
// Lines are pulled by a single background goroutine; the goroutine exits
// when the underlying reader is exhausted or fails. Closing the underlying
// reader is the caller's job and is what unblocks an abandoned Bounded.
type Bounded struct {
	lines   chan readResult
	timeout time.Duration
	err     error
	done    bool
}

// NewBounded returns a Source reading lines from r with a bounded wait.
func NewBounded(r io.Reader, timeout time.Duration) *Bounded {
	b := &Bounded{
		lines:   make(chan readResult),
		timeout: timeout,
	}

	go func() {
		defer close(b.lines)

		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 64*1024), maxLineSize)
		for sc.Scan() {
			b.lines <- readResult{text: sc.Text()}
		}
		if err := sc.Err(); err != nil {
			b.lines <- readResult{err: err}
		}
	}()

	return b
}

func (b *Bounded) ReadLine() (string, error) {
	if b.done {
		if b.err != nil {
			return "", b.err
		}
		return "", io.EOF
	}

	if b.timeout <= 0 {
		res, ok := <-b.lines
		return b.consume(res, ok)
	}

	timer := time.NewTimer(b.timeout)
	defer timer.Stop()

	select {
	case res, ok := <-b.lines:
		return b.consume(res, ok)
	case <-timer.C:
		return "", ErrTimeout
	}
}

func (b *Bounded) consume(res readResult, ok bool) (string, error) {
	if !ok {
		b.done = true
		return "", io.EOF
	}
	if res.err != nil {
		b.done = true
		b.err = res.err
		return "", res.err
	}
	return res.text, nil
}
