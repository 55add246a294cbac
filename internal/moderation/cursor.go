package moderation

import (
	"math"
	"strconv"
	"strings"
)

// Clamp maps a requested position onto a snapshot of n records. ok is false
// for the empty snapshot, which has no valid position.
func Clamp(p, n int) (pos int, ok bool) {
	if n <= 0 {
		return 0, false
	}
	switch {
	case p < 0:
		return 0, true
	case p >= n:
		return n - 1, true
	}
	return p, true
}

// Cursor is a position carried in a control payload. It is never stored and
// is always clamped against a freshly fetched snapshot before use.
type Cursor struct {
	Pos int
}

// Next moves one record towards older entries.
func (c Cursor) Next() Cursor {
	if c.Pos == math.MaxInt {
		return c
	}
	return Cursor{Pos: c.Pos + 1}
}

// Prev moves one record towards newer entries.
func (c Cursor) Prev() Cursor {
	if c.Pos == math.MinInt {
		return c
	}
	return Cursor{Pos: c.Pos - 1}
}

// Encode renders the cursor as a control payload.
func (c Cursor) Encode() string { return strconv.Itoa(c.Pos) }

// DecodeCursor parses a payload; anything malformed decodes to position 0.
func DecodeCursor(payload string) Cursor {
	p, err := strconv.Atoi(strings.TrimSpace(payload))
	if err != nil {
		return Cursor{}
	}
	return Cursor{Pos: p}
}

// EncodeTarget renders the payload of delete controls: the record id and the
// position the admin was looking at.
func EncodeTarget(id int64, pos int) string {
	return strconv.FormatInt(id, 10) + "|" + strconv.Itoa(pos)
}

// DecodeTarget parses an EncodeTarget payload. A missing or malformed position
// decodes to 0; ok is false only when the id is unusable.
func DecodeTarget(payload string) (id int64, c Cursor, ok bool) {
	head, tail, _ := strings.Cut(payload, "|")
	id, err := strconv.ParseInt(strings.TrimSpace(head), 10, 64)
	if err != nil || id == 0 {
		return 0, Cursor{}, false
	}
	return id, DecodeCursor(tail), true
}
