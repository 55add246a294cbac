package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

// asyncWriter fans log lines out to several sinks from one goroutine. Lines are
// buffered while the queue is busy and flushed as soon as it drains.
type asyncWriter struct {
	queue    chan []byte
	flushReq chan chan error
	done     chan struct{}
	once     sync.Once
	sinks    []*bufio.Writer

	errMu    sync.Mutex
	writeErr error
}

func newAsyncWriter(writers []io.Writer, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	w := &asyncWriter{
		queue:    make(chan []byte, 256),
		flushReq: make(chan chan error),
		done:     make(chan struct{}),
	}
	for _, out := range writers {
		if out != nil {
			w.sinks = append(w.sinks, bufio.NewWriterSize(out, bufSize))
		}
	}
	go w.loop()
	return w
}

func (w *asyncWriter) loop() {
	defer close(w.done)
	for {
		select {
		case data, ok := <-w.queue:
			if !ok {
				w.setErr(w.flushAll())
				return
			}
			w.setErr(w.writeAll(data))
			if len(w.queue) == 0 {
				w.setErr(w.flushAll())
			}
		case ack := <-w.flushReq:
			ack <- w.flushAll()
		}
	}
}

// Write queues a copy of p. It blocks when the queue is full rather than
// dropping lines.
func (w *asyncWriter) Write(p []byte) error {
	if err := w.getErr(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	w.queue <- append([]byte(nil), p...)
	return nil
}

// Flush waits until everything queued so far reaches the sinks.
func (w *asyncWriter) Flush() error {
	select {
	case <-w.done:
		return w.getErr()
	default:
	}
	// Drain pending lines before the flush request is served.
	for len(w.queue) > 0 {
		ack := make(chan error, 1)
		w.flushReq <- ack
		<-ack
	}
	ack := make(chan error, 1)
	w.flushReq <- ack
	if err := <-ack; err != nil {
		return err
	}
	return w.getErr()
}

// Close drains the queue and reports the first write error.
func (w *asyncWriter) Close() error {
	w.once.Do(func() { close(w.queue) })
	<-w.done
	return w.getErr()
}

func (w *asyncWriter) writeAll(p []byte) error {
	for _, sink := range w.sinks {
		if _, err := sink.Write(p); err != nil {
			return err
		}
	}
	return nil
}

func (w *asyncWriter) flushAll() error {
	var errs []error
	for _, sink := range w.sinks {
		errs = append(errs, sink.Flush())
	}
	return errors.Join(errs...)
}

func (w *asyncWriter) getErr() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	return w.writeErr
}

func (w *asyncWriter) setErr(err error) {
	if err == nil {
		return
	}
	w.errMu.Lock()
	defer w.errMu.Unlock()
	if w.writeErr == nil {
		w.writeErr = err
	}
}
