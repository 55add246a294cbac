// Package notify delivers best-effort announcements to the admin set.
package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/m3rciful/regbot/core/logger"
	"github.com/m3rciful/regbot/internal/chat"
)

const component = "service.notify"

// Report summarises one broadcast.
type Report struct {
	Delivered int
	// Failed maps each unreachable recipient to its first delivery error.
	Failed map[int64]error
}

// OK reports whether every recipient received every message.
func (r Report) OK() bool { return len(r.Failed) == 0 }

// Broadcaster sends messages to a fixed set of recipients.
type Broadcaster struct {
	Recipients []int64
	Sender     chat.Sender
}

// Broadcast delivers msgs, in order, to each recipient independently. The To
// field of every message is replaced with the recipient. A failure to reach
// one recipient is logged and recorded but never stops the others, and
// Broadcast never fails the caller.
func (b *Broadcaster) Broadcast(ctx context.Context, msgs ...chat.Message) Report {
	rep := Report{Failed: map[int64]error{}}
	if b == nil || b.Sender == nil || len(msgs) == 0 {
		return rep
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, to := range b.Recipients {
		wg.Add(1)
		go func(to int64) {
			defer wg.Done()
			err := b.deliver(ctx, to, msgs)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				rep.Failed[to] = err
				return
			}
			rep.Delivered++
		}(to)
	}
	wg.Wait()

	status := "ok"
	for to, err := range rep.Failed {
		status = "fail"
		logger.Warn(ctx, component, "notify.deliver",
			slog.String("status", "fail"),
			slog.Int64("user_id", to),
			slog.String("err", err.Error()),
		)
	}
	logger.Debug(ctx, component, "notify.broadcast",
		slog.String("status", status),
		slog.Int("delivered", rep.Delivered),
		slog.Int("failed", len(rep.Failed)),
	)
	return rep
}

// deliver stops at the first failing message so a recipient never gets a
// receipt without the text that introduces it.
func (b *Broadcaster) deliver(ctx context.Context, to int64, msgs []chat.Message) error {
	for _, m := range msgs {
		m.To = to
		if err := b.Sender.Send(ctx, m); err != nil {
			return err
		}
	}
	return nil
}
