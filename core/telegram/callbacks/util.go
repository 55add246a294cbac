// Package callbacks decodes inline button presses.
package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// ParseData splits Telebot's "\f<unique>|<payload>" callback encoding.
// Data without the leading form feed is treated as a bare key.
func ParseData(data string) (unique, payload string) {
	data = strings.TrimPrefix(data, "\f")
	unique, payload, _ = strings.Cut(data, "|")
	return strings.TrimSpace(unique), payload
}

// Parse returns the key and payload of cb. When Telebot already matched a
// registered endpoint, Unique is set and Data holds only the payload.
func Parse(cb *tele.Callback) (unique, payload string) {
	if cb == nil {
		return "", ""
	}
	if cb.Unique != "" {
		return cb.Unique, cb.Data
	}
	return ParseData(cb.Data)
}

// CallbackKey returns the key of the current callback.
func CallbackKey(c tele.Context) string {
	k, _ := Parse(c.Callback())
	return k
}

// CallbackPayload returns the payload of the current callback.
func CallbackPayload(c tele.Context) string {
	_, p := Parse(c.Callback())
	return p
}
