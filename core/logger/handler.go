package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

type logFormat string

const (
	formatJSON logFormat = "json"
	formatKV   logFormat = "kv"

	timeFormatMillis = "2006-01-02T15:04:05.000Z07:00"
)

type handlerConfig struct {
	level    slog.Leveler
	writer   *asyncWriter
	format   logFormat
	keyOrder []string
}

// structuredHandler renders every record as one line with a stable key order:
// keyOrder first, then the remaining keys sorted.
type structuredHandler struct {
	cfg    handlerConfig
	attrs  []slog.Attr
	groups []string
}

func newStructuredHandler(cfg handlerConfig) *structuredHandler {
	if cfg.level == nil {
		cfg.level = slog.LevelInfo
	}
	if cfg.keyOrder == nil {
		cfg.keyOrder = append([]string(nil), defaultKeyOrder...)
	}
	return &structuredHandler{cfg: cfg}
}

func (h *structuredHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.cfg.level.Level()
}

func (h *structuredHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.cfg.writer == nil {
		return fmt.Errorf("logger: writer not initialized")
	}
	isJSON := h.cfg.format == formatJSON

	fields := make(map[string]any, 16)
	ts := r.Time.UTC()
	fields["ts"] = ts.Truncate(time.Millisecond).Format(timeFormatMillis)
	fields["level"] = normalizeLevel(r.Level.String())
	if isJSON {
		fields["ts_unix_nano"] = ts.UnixNano()
	}

	prefix := strings.Join(h.groups, ".")
	for _, a := range h.attrs {
		collect(fields, prefix, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		collect(fields, prefix, a)
		return true
	})
	addContextFields(ctx, fields)

	if rid, _ := fields["rid"].(string); rid != "" {
		if compact := CompactRID(rid); compact != rid {
			if _, seen := fields["rid_full"]; isJSON && !seen {
				fields["rid_full"] = rid
			}
			fields["rid"] = compact
		}
	}
	if ev, _ := fields["event"].(string); ev == "" {
		fields["event"] = "unknown"
		if r.Message != "" {
			fields["event"] = r.Message
		}
	}
	if comp, _ := fields["component"].(string); comp == "" {
		fields["component"] = "app"
	}
	normalizeEnums(fields)

	var line []byte
	if isJSON {
		var err error
		if line, err = formatJSONLine(fields, h.cfg.keyOrder); err != nil {
			return err
		}
	} else {
		line = formatKVLine(fields, h.cfg.keyOrder)
	}
	return h.cfg.writer.Write(append(line, '\n'))
}

func (h *structuredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(slices.Clip(h.attrs), attrs...)
	return &clone
}

func (h *structuredHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(slices.Clip(h.groups), name)
	return &clone
}

// collect flattens groups into dotted keys and stores normalized values.
// Empty strings and nils are dropped.
func collect(fields map[string]any, prefix string, a slog.Attr) {
	key := a.Key
	if prefix != "" && key != "" {
		key = prefix + "." + key
	} else if key == "" {
		key = prefix
	}
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		for _, child := range v.Group() {
			collect(fields, key, child)
		}
		return
	}
	if key == "" {
		return
	}
	key, val := normalizeValue(key, v)
	switch x := val.(type) {
	case nil:
		return
	case string:
		if x == "" {
			return
		}
	}
	fields[key] = val
}

// normalizeValue renders durations as integer milliseconds under a _ms key.
func normalizeValue(key string, v slog.Value) (string, any) {
	switch v.Kind() {
	case slog.KindString:
		return key, strings.TrimSpace(v.String())
	case slog.KindBool:
		return key, v.Bool()
	case slog.KindInt64:
		return key, v.Int64()
	case slog.KindUint64:
		if u := v.Uint64(); u <= math.MaxInt64 {
			return key, int64(u)
		}
		return key, v.Uint64()
	case slog.KindFloat64:
		return key, v.Float64()
	case slog.KindDuration:
		return msKey(key), RoundMS(v.Duration()).Milliseconds()
	case slog.KindTime:
		return key, v.Time().UTC().Format(time.RFC3339Nano)
	}
	switch x := v.Any().(type) {
	case nil:
		return key, nil
	case error:
		return key, x.Error()
	case string:
		return key, strings.TrimSpace(x)
	case time.Duration:
		return msKey(key), RoundMS(x).Milliseconds()
	case fmt.Stringer:
		return key, x.String()
	default:
		return key, fmt.Sprint(x)
	}
}

func msKey(key string) string {
	switch {
	case key == "duration":
		return "duration_ms"
	case strings.HasSuffix(key, "_ms"):
		return key
	}
	return key + "_ms"
}

func normalizeEnums(fields map[string]any) {
	if s, ok := fields["status"].(string); ok {
		fields["status"] = strings.ToLower(strings.TrimSpace(s))
	}
	if o, ok := fields["outcome"].(string); ok {
		o = strings.ToLower(strings.TrimSpace(o))
		if _, known := knownOutcome[o]; !known {
			delete(fields, "outcome")
		} else {
			fields["outcome"] = o
		}
	}
}

func orderedKeys(fields map[string]any, order []string) []string {
	keys := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(order))
	for _, k := range order {
		if _, ok := fields[k]; ok {
			if _, dup := seen[k]; !dup {
				keys = append(keys, k)
				seen[k] = struct{}{}
			}
		}
	}
	head := len(keys)
	for k := range fields {
		if _, ok := seen[k]; !ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys[head:])
	return keys
}

func formatJSONLine(fields map[string]any, order []string) ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range orderedKeys(fields, order) {
		data, err := json.Marshal(fields[k])
		if err != nil {
			return nil, err
		}
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(k))
		b.WriteByte(':')
		b.Write(data)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

func formatKVLine(fields map[string]any, order []string) []byte {
	var b strings.Builder
	for i, k := range orderedKeys(fields, order) {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteByte('=')
		s := fmt.Sprint(fields[k])
		if strings.IndexFunc(s, needsQuote) >= 0 {
			s = strconv.Quote(s)
		}
		b.WriteString(s)
	}
	return []byte(b.String())
}

func needsQuote(r rune) bool {
	return r <= ' ' || r == '=' || r == '"'
}

func addContextFields(ctx context.Context, fields map[string]any) {
	if ctx == nil {
		return
	}
	setDefault := func(key string, v any, ok bool) {
		if _, exists := fields[key]; ok && !exists {
			fields[key] = v
		}
	}
	rid := RIDFrom(ctx)
	setDefault("rid", rid, rid != "")
	uid := UserIDFrom(ctx)
	setDefault("user_id", uid, uid != 0)
	upd := UpdateIDFrom(ctx)
	setDefault("update_id", upd, upd != 0)
	cid := ChatIDFrom(ctx)
	setDefault("chat_id", cid, cid != 0)
	hnd := HandlerFrom(ctx)
	setDefault("handler", hnd, hnd != "")
}
