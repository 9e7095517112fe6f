package router

import (
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/m3rciful/gameclub/core/logger"
	tghelpers "github.com/m3rciful/gameclub/core/telegram/helpers"
	"github.com/m3rciful/gameclub/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// logHandlerSummary writes the single handler.handled line for an update.
// A "skip" outcome is demoted to debug.
func logHandlerSummary(c tele.Context, handlerName string, start time.Time, outcome string, err error) {
	ctx := tghelpers.WithHandler(c, handlerName)
	msgs, kb := middleware.GetCounters(c)

	status, level := "ok", slog.LevelInfo
	if err != nil {
		status = "fail"
	}
	switch outcome {
	case "":
		outcome = status
	case "skip":
		level = slog.LevelDebug
	}

	attrs := make([]slog.Attr, 0, 9)
	attrs = append(attrs,
		slog.String("status", status),
		slog.String("handler", handlerName),
		slog.String("outcome", outcome),
		slog.Int("messages", msgs),
		slog.Bool("kb", kb),
		slog.Duration("duration", logger.Took(start)),
	)
	if err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", deriveErrorCode(err)),
			slog.String("cause", handlerName),
		)
	}
	logger.LogEvent(ctx, logger.Component(logger.CompTelegram), level, "handler.handled", attrs...)
}

// normalizeHandlerName turns "/Add Event" into "add_event".
func normalizeHandlerName(name string) string {
	name = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "/"))
	if name == "" {
		return "unknown"
	}
	return strings.Join(strings.Fields(name), "_")
}

type errorCoder interface{ Code() string }

// deriveErrorCode prefers a Code() found anywhere in the wrap chain and
// falls back to the outermost concrete type name.
func deriveErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var coded errorCoder
	if errors.As(err, &coded) {
		if code := strings.TrimSpace(coded.Code()); code != "" {
			return strings.ToUpper(strings.Join(strings.Fields(code), "_"))
		}
	}
	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if name := t.Name(); name != "" {
		return strings.ToUpper(name)
	}
	return "UNKNOWN_ERROR"
}
