package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/m3rciful/gameclub/core/logger"
	tghelpers "github.com/m3rciful/gameclub/core/telegram/helpers"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tele "gopkg.in/telebot.v4"
)

// RecoverMiddleware turns a handler panic into an error so one bad update
// never stops the poller. The panic is logged with its stack and marked on
// the update span.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) (err error) {
		defer func() {
			p := recover()
			if p == nil {
				return
			}
			err = fmt.Errorf("telegram: handler panic: %v", p)
			ctx := tghelpers.BuildContext(c)
			if span := trace.SpanFromContext(ctx); span.IsRecording() {
				span.RecordError(err, trace.WithStackTrace(true))
				span.SetStatus(codes.Error, "panic")
			}
			logger.TG.LogAttrs(ctx, slog.LevelError, "panic recovered",
				slog.String("event", "tg.panic"),
				slog.String("err", err.Error()),
				slog.String("stack", string(debug.Stack())),
			)
		}()
		return next(c)
	}
}
