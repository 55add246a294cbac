// Package sender runs outbound Bot API calls on a small worker pool so
// update handlers return without waiting on the network.
package sender

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/regbot/core/logger"
	"github.com/m3rciful/regbot/core/telegram/netutil"

	tele "gopkg.in/telebot.v4"
)

const component = "tg.sender"

var (
	// ErrQueueClosed is returned when enqueue is attempted after dispatcher stop.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull indicates the queue is saturated and the job was not accepted.
	ErrQueueFull = errors.New("telegram sender: queue full")

	tokenRe = regexp.MustCompile(`bot[0-9]+:[A-Za-z0-9_-]+`)
)

// Options controls the behaviour of the outbound dispatcher.
type Options struct {
	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds the time spent retrying a single job.
	MaxDuration time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = 12 * time.Second
	}
	return o
}

type job struct {
	ctx      context.Context
	action   string
	endpoint string
	run      func() error
}

// Dispatcher executes outbound Telegram calls asynchronously with retries.
type Dispatcher struct {
	opts Options
	jobs chan job

	mu     sync.RWMutex
	closed bool

	wg   sync.WaitGroup
	errs atomic.Uint64
}

// NewDispatcher starts the workers; zero options fall back to defaults.
func NewDispatcher(opts Options) *Dispatcher {
	opts = opts.withDefaults()
	d := &Dispatcher{
		opts: opts,
		jobs: make(chan job, opts.QueueSize),
	}
	d.wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go d.worker()
	}
	return d
}

// Enqueue schedules run for asynchronous execution. run is called again on
// transient failures, so it must be safe to repeat.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, run func() error) error {
	if run == nil {
		return errors.New("telegram sender: nil run function")
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	select {
	case d.jobs <- job{ctx: ctx, action: action, endpoint: endpoint, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

// ErrorCount returns the number of jobs that failed after all attempts.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.errs.Load()
}

// Close stops accepting jobs and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for j := range d.jobs {
		d.handleJob(j)
	}
}

func (d *Dispatcher) handleJob(j job) {
	ctx := j.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	deadline, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	attempts := d.opts.MaxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = j.run()
		if lastErr == nil {
			attrs := append(jobAttrs(j), slog.String("status", "ok"), slog.Duration("duration", time.Since(start)))
			if attempt > 1 {
				attrs = append(attrs, slog.Int("attempt", attempt))
			}
			logger.Debug(ctx, component, "send", attrs...)
			return
		}
		if !netutil.ShouldRetry(lastErr) || attempt == attempts {
			break
		}

		delay := d.backoff(lastErr, attempt)
		logger.Debug(ctx, component, "send.retry",
			append(jobAttrs(j),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay),
				slog.String("reason", classifyError(lastErr)),
			)...,
		)
		timer := time.NewTimer(delay)
		select {
		case <-deadline.Done():
			timer.Stop()
			lastErr = errors.Join(lastErr, deadline.Err())
			attempt = attempts
		case <-timer.C:
		}
	}

	d.errs.Add(1)
	logger.Error(ctx, component, "send",
		append(jobAttrs(j),
			slog.String("status", "fail"),
			slog.String("err", sanitizeErrorMessage(lastErr)),
			slog.String("reason", classifyError(lastErr)),
			slog.Duration("duration", time.Since(start)),
		)...,
	)
}

// backoff grows linearly with the attempt number unless flood control asked
// for a specific wait.
func (d *Dispatcher) backoff(err error, attempt int) time.Duration {
	if wait := netutil.RetryAfter(err); wait > 0 {
		return wait
	}
	return d.opts.RetryBackoff * time.Duration(attempt)
}

func jobAttrs(j job) []slog.Attr {
	attrs := []slog.Attr{slog.String("action", j.action)}
	if j.endpoint != "" {
		attrs = append(attrs, slog.String("endpoint", j.endpoint))
	}
	return attrs
}

func classifyError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	var flood tele.FloodError
	if errors.As(err, &flood) {
		return "flood"
	}
	var apiErr *tele.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code >= 500:
			return "http_5xx"
		case apiErr.Code >= 400:
			return "http_4xx"
		}
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "dns"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return "dial"
	}
	return "unknown"
}

// sanitizeErrorMessage keeps bot tokens embedded in request URLs out of logs.
func sanitizeErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	return tokenRe.ReplaceAllString(err.Error(), "bot<redacted>")
}
