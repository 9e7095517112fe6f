package logger

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
)

type logFormat string

const (
	formatJSON logFormat = "json"
	formatKV   logFormat = "kv"

	timeLayout = "2006-01-02T15:04:05.000Z07:00"
	// maxValueRunes caps single string fields such as message text or errors.
	maxValueRunes = 1024
)

// Bot API URLs embed the token as "bot<id>:<secret>".
var botTokenRe = regexp.MustCompile(`bot[0-9]+:[A-Za-z0-9_-]+`)

// RedactSecrets masks Telegram bot tokens in s.
func RedactSecrets(s string) string {
	if !strings.Contains(s, "bot") {
		return s
	}
	return botTokenRe.ReplaceAllString(s, "bot<redacted>")
}

type handlerConfig struct {
	level    slog.Leveler
	writer   *lineWriter
	format   logFormat
	keyOrder []string
}

// structuredHandler renders records as flat kv or JSON lines with a stable
// leading key order.
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
		cfg.keyOrder = slices.Clone(defaultKeyOrder)
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
	rec := newRecord(16)
	ts := r.Time.UTC()
	rec.set("ts", ts.Truncate(time.Millisecond).Format(timeLayout))
	rec.set("level", normalizeLevel(r.Level.String()))
	if h.cfg.format == formatJSON {
		rec.set("ts_unix_nano", ts.UnixNano())
	}

	prefix := strings.Join(h.groups, ".")
	for _, a := range h.attrs {
		rec.addAttr(prefix, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		rec.addAttr(prefix, a)
		return true
	})
	rec.addContext(ctx)

	if rid := rec.str("rid"); rid != "" {
		if compact := CompactRID(rid); compact != rid {
			if h.cfg.format == formatJSON {
				rec.setDefault("rid_full", rid)
			}
			rec.set("rid", compact)
		}
	}
	if rec.str("event") == "" {
		rec.set("event", cmp.Or(r.Message, "unknown"))
	}
	if rec.str("component") == "" {
		rec.set("component", "app")
	}
	rec.normalizeEnums()

	var line []byte
	if h.cfg.format == formatJSON {
		var err error
		if line, err = rec.json(h.cfg.keyOrder); err != nil {
			return err
		}
	} else {
		line = rec.kv(h.cfg.keyOrder)
	}
	return h.cfg.writer.Write(append(line, '\n'))
}

func (h *structuredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(slices.Clone(h.attrs), attrs...)
	return &clone
}

func (h *structuredHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(slices.Clone(h.groups), name)
	return &clone
}

// record is an insertion-ordered field set. Later writes replace values but
// keep the original position.
type record struct {
	keys   []string
	values map[string]any
}

func newRecord(n int) *record {
	return &record{keys: make([]string, 0, n), values: make(map[string]any, n)}
}

func (r *record) set(key string, v any) {
	if v == nil || v == "" {
		r.del(key)
		return
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

func (r *record) setDefault(key string, v any) {
	if _, ok := r.values[key]; !ok {
		r.set(key, v)
	}
}

func (r *record) del(key string) {
	if _, ok := r.values[key]; !ok {
		return
	}
	delete(r.values, key)
	r.keys = slices.DeleteFunc(r.keys, func(k string) bool { return k == key })
}

func (r *record) str(key string) string {
	switch v := r.values[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func (r *record) addAttr(prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	key := a.Key
	if prefix != "" && key != "" {
		key = prefix + "." + key
	} else if key == "" {
		key = prefix
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, child := range a.Value.Group() {
			r.addAttr(key, child)
		}
		return
	}
	if key == "" {
		return
	}
	if a.Value.Kind() == slog.KindDuration {
		r.set(durationKey(key), RoundMS(a.Value.Duration()).Milliseconds())
		return
	}
	r.set(key, plainValue(a.Value))
}

// plainValue converts a slog value to something both encoders print well.
func plainValue(v slog.Value) any {
	switch v.Kind() {
	case slog.KindString:
		return cleanString(v.String())
	case slog.KindBool:
		return v.Bool()
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		if u := v.Uint64(); u <= math.MaxInt64 {
			return int64(u)
		}
		return v.Uint64()
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339Nano)
	}
	switch x := v.Any().(type) {
	case nil:
		return nil
	case error:
		return cleanString(x.Error())
	case fmt.Stringer:
		return cleanString(x.String())
	case string:
		return cleanString(x)
	default:
		return cleanString(fmt.Sprint(x))
	}
}

func cleanString(s string) string {
	return SanitizeLimit(RedactSecrets(strings.TrimSpace(s)), maxValueRunes)
}

// durationKey renames duration attributes so the unit is part of the key.
func durationKey(key string) string {
	switch {
	case key == "duration":
		return "duration_ms"
	case strings.HasSuffix(key, "_ms"):
		return key
	}
	return key + "_ms"
}

// addContext fills request metadata carried by ctx without overriding
// explicit attributes. Trace ids fall back to the active span.
func (r *record) addContext(ctx context.Context) {
	if ctx == nil {
		return
	}
	r.setDefault("rid", RIDFrom(ctx))
	traceID, spanID := TraceIDFrom(ctx), SpanIDFrom(ctx)
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		traceID = cmp.Or(traceID, sc.TraceID().String())
		spanID = cmp.Or(spanID, sc.SpanID().String())
	}
	r.setDefault("trace_id", traceID)
	r.setDefault("span_id", spanID)
	for key, id := range map[string]int64{
		"update_id": int64(UpdateIDFrom(ctx)),
		"user_id":   UserIDFrom(ctx),
		"chat_id":   ChatIDFrom(ctx),
	} {
		if id != 0 {
			r.setDefault(key, id)
		}
	}
	r.setDefault("handler", HandlerFrom(ctx))
}

func (r *record) normalizeEnums() {
	if lvl := r.str("level"); lvl != "" {
		r.set("level", normalizeLevel(lvl))
	}
	if s := r.str("status"); s != "" {
		v, _ := normalizeEnum(statusValues, s)
		r.set("status", v)
	}
	if o := r.str("outcome"); o != "" {
		if v, ok := normalizeEnum(outcomeValues, o); ok {
			r.set("outcome", v)
		} else {
			r.del("outcome")
		}
	}
}

// ordered lists keys from order first, then the rest sorted.
func (r *record) ordered(order []string) []string {
	out := make([]string, 0, len(r.keys))
	for _, k := range order {
		if _, ok := r.values[k]; ok && !slices.Contains(out, k) {
			out = append(out, k)
		}
	}
	head := len(out)
	for _, k := range r.keys {
		if !slices.Contains(out[:head], k) {
			out = append(out, k)
		}
	}
	slices.Sort(out[head:])
	return out
}

func (r *record) json(order []string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.ordered(order) {
		data, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, fmt.Errorf("logger: encode %s: %w", k, err)
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(k))
		buf.WriteByte(':')
		buf.Write(data)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r *record) kv(order []string) []byte {
	var buf bytes.Buffer
	for i, k := range r.ordered(order) {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(k)
		buf.WriteByte('=')
		buf.WriteString(kvValue(r.values[k]))
	}
	return buf.Bytes()
}

func kvValue(v any) string {
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		s = fmt.Sprint(x)
	}
	if strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
		return strconv.Quote(s)
	}
	return s
}
