package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

var errWriterClosed = errors.New("logger: writer closed")

// lineWriter fans formatted lines out to the sinks on a single goroutine so
// callers never block on slow outputs. Flush requests travel through the same
// queue as lines, so a flush covers every line written before it.
type lineWriter struct {
	mu      sync.RWMutex
	closed  bool
	entries chan lineEntry
	done    chan struct{}

	sinks []*bufio.Writer
	errMu sync.Mutex
	err   error
}

type lineEntry struct {
	line []byte
	ack  chan error
}

func newLineWriter(outputs []io.Writer, queue int) *lineWriter {
	if queue <= 0 {
		queue = 512
	}
	w := &lineWriter{
		entries: make(chan lineEntry, queue),
		done:    make(chan struct{}),
	}
	for _, out := range outputs {
		if out != nil {
			w.sinks = append(w.sinks, bufio.NewWriterSize(out, 32*1024))
		}
	}
	go w.run()
	return w
}

func (w *lineWriter) run() {
	defer close(w.done)
	for e := range w.entries {
		if e.ack != nil {
			e.ack <- w.flushSinks()
			continue
		}
		for _, s := range w.sinks {
			if _, err := s.Write(e.line); err != nil {
				w.fail(err)
			}
		}
		// Batch consecutive lines and flush once the queue drains.
		if len(w.entries) == 0 {
			if err := w.flushSinks(); err != nil {
				w.fail(err)
			}
		}
	}
	if err := w.flushSinks(); err != nil {
		w.fail(err)
	}
}

// Write queues one line. The slice is copied.
func (w *lineWriter) Write(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	line := append([]byte(nil), p...)
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return errWriterClosed
	}
	w.entries <- lineEntry{line: line}
	return nil
}

// Flush blocks until every line queued before the call reached the sinks.
func (w *lineWriter) Flush() error {
	ack := make(chan error, 1)
	w.mu.RLock()
	if w.closed {
		w.mu.RUnlock()
		return w.firstErr()
	}
	w.entries <- lineEntry{ack: ack}
	w.mu.RUnlock()
	if err := <-ack; err != nil {
		return err
	}
	return w.firstErr()
}

// Close drains the queue and reports the first write error.
func (w *lineWriter) Close() error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.entries)
	}
	w.mu.Unlock()
	<-w.done
	return w.firstErr()
}

func (w *lineWriter) flushSinks() error {
	var errs []error
	for _, s := range w.sinks {
		if err := s.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (w *lineWriter) fail(err error) {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	if w.err == nil {
		w.err = err
	}
}

func (w *lineWriter) firstErr() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	return w.err
}
