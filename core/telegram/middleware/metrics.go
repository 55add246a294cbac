package middleware

import (
	tele "gopkg.in/telebot.v4"
)

const (
	keyMessages = "messages"
	keyKeyboard = "kb"
)

// metricsContext wraps tele.Context to count sent messages and detect keyboard usage.
type metricsContext struct{ tele.Context }

func (m metricsContext) incMessages(hasKB bool) {
	n, _ := m.Get(keyMessages).(int)
	m.Set(keyMessages, n+1)
	if hasKB {
		m.Set(keyKeyboard, true)
	}
}

func hasKeyboard(opts []any) bool {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return true
			}
		case *tele.ReplyMarkup:
			if v != nil {
				return true
			}
		}
	}
	return false
}

func (m metricsContext) count(err error, opts []any) error {
	if err == nil {
		m.incMessages(hasKeyboard(opts))
	}
	return err
}

// Send proxies tele.Context.Send while updating message counters.
func (m metricsContext) Send(what any, opts ...any) error {
	return m.count(m.Context.Send(what, opts...), opts)
}

// Edit proxies tele.Context.Edit while updating message counters.
func (m metricsContext) Edit(what any, opts ...any) error {
	return m.count(m.Context.Edit(what, opts...), opts)
}

// EditOrSend proxies tele.Context.EditOrSend while updating message counters.
func (m metricsContext) EditOrSend(what any, opts ...any) error {
	return m.count(m.Context.EditOrSend(what, opts...), opts)
}

// MessageMetricsMiddleware instruments context to track messages count and keyboard usage.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if _, wrapped := c.(metricsContext); wrapped {
			return next(c)
		}
		c.Set(keyMessages, 0)
		c.Set(keyKeyboard, false)
		return next(metricsContext{Context: c})
	}
}

// GetCounters reads message count and keyboard presence flags from context.
func GetCounters(c tele.Context) (int, bool) {
	msgs, _ := c.Get(keyMessages).(int)
	kb, _ := c.Get(keyKeyboard).(bool)
	return msgs, kb
}
