package logger

import "strings"

var levelNames = map[string]string{
	"debug":   "DEBUG",
	"info":    "INFO",
	"warn":    "WARN",
	"warning": "WARN",
	"error":   "ERROR",
}

// knownOutcome lists the accepted outcome values; others are dropped.
var knownOutcome = set("ok", "fail", "cancelled", "rate_limited")

func set(values ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return m
}

func normalizeLevel(level string) string {
	if level == "" {
		return "INFO"
	}
	if name, ok := levelNames[strings.ToLower(level)]; ok {
		return name
	}
	return strings.ToUpper(level)
}

// defaultKeyOrder puts correlation first, then the registration domain keys.
var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"rid_full",
	"ts_unix_nano",
	"update_id",
	"user_id",
	"chat_id",
	"chat_type",
	"handler",
	"op",
	"cb_key",
	"outcome",
	"duration_ms",
	"participant_id",
	"from",
	"state",
	"position",
	"total",
	"delivered",
	"failed",
	"messages",
	"kb",
	"count",
	"payload",
	"lang",
	"username",
	"mode",
	"listen",
	"public_url",
	"driver",
	"db",
	"host",
	"port",
	"from_ver",
	"to_ver",
	"err",
	"err_code",
	"cause",
	"attempts",
	"backoff_ms",
}
