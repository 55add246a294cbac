package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/regbot/core/logger"
	"github.com/m3rciful/regbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

// Enqueue hands run to the shared dispatcher. Without a dispatcher, or when
// its queue cannot take the job, run is executed inline.
func Enqueue(c tele.Context, action, endpoint string, run func() error) error {
	disp := globalDispatcher.Load()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	if err := disp.Enqueue(ctx, action, endpoint, run); err != nil {
		if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
			logger.Warn(ctx, "tg.sender", "queue.fallback",
				slog.String("action", action),
				slog.String("endpoint", endpoint),
				slog.String("err", err.Error()),
			)
			return run()
		}
		return err
	}
	return nil
}

// Batch delivers steps in order as a single dispatcher job. A retried job
// resumes at the first step that has not succeeded yet.
func Batch(c tele.Context, action string, steps ...func() error) error {
	if len(steps) == 0 {
		return nil
	}
	next := 0
	return Enqueue(c, action, "", func() error {
		for next < len(steps) {
			if err := steps[next](); err != nil {
				return err
			}
			next++
		}
		return nil
	})
}
