package logger

import "strings"

// Level names written to the "level" field.
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

var levelNames = map[string]string{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
}

// status describes how an operation ended; outcome describes what the user
// saw. Unknown statuses pass through lowercased, unknown outcomes are dropped.
var (
	statusValues = enumSet("ok", "fail", "skip", "retry", "rate_limited", "cancelled")

	outcomeValues = enumSet("ok", "fail", "skip", "cancelled", "rate_limited",
		"denied", "invalid", "not_found")
)

func enumSet(values ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func normalizeLevel(level string) string {
	if name, ok := levelNames[strings.ToLower(level)]; ok {
		return name
	}
	if level == "" {
		return LevelInfo
	}
	return strings.ToUpper(level)
}

// normalizeEnum lowercases v and reports whether it belongs to set.
func normalizeEnum(set map[string]struct{}, v string) (string, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	_, ok := set[v]
	return v, ok && v != ""
}

// defaultKeyOrder puts identity and outcome fields first; the rest follow
// alphabetically.
var defaultKeyOrder = []string{
	"ts", "level", "component", "event", "status",
	"rid", "rid_full", "trace_id", "span_id", "ts_unix_nano",
	"update_id", "user_id", "chat_id", "handler", "kind", "cb_key",
	"outcome", "duration_ms", "messages", "kb",
	"stage", "next_stage", "field", "game_id", "event_id",
	"genre", "query", "results", "count",
	"broadcast_id", "recipients", "delivered",
	"mode", "listen", "public_url", "db", "target",
	"err", "err_code", "cause", "retryable", "attempts", "backoff_ms",
}
