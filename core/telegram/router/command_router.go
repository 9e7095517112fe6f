package router

import (
	"log/slog"
	"time"

	"github.com/m3rciful/gameclub/core/logger"
	tg "github.com/m3rciful/gameclub/core/telegram"
	"github.com/m3rciful/gameclub/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// Outcome is what a Dispatcher reports about one handled update.
type Outcome struct {
	// Handler names the matched handler, e.g. "command.start" or "stage.game.photo".
	Handler string
	// Status is one of ok, fail, skip, denied, invalid or not_found.
	Status string
}

// Dispatcher resolves a Telegram update to the bot's own handlers.
type Dispatcher interface {
	Dispatch(c tele.Context) (Outcome, error)
}

// CommandRoutes binds every registered command and alias to d.
func CommandRoutes(reg *tg.Registry, d Dispatcher) []tg.Route {
	if reg == nil || d == nil {
		return nil
	}
	endpoints := reg.Endpoints()
	routes := make([]tg.Route, 0, len(endpoints))
	for _, endpoint := range endpoints {
		routes = append(routes, tg.Route{
			Endpoint: endpoint,
			Handler:  wrap(dispatchHandler(d)),
		})
	}

	logger.TWire.Info("tg.wire",
		slog.String("event", "commands"),
		slog.Int("commands", len(reg.Commands())),
		slog.Int("endpoints", len(endpoints)),
	)
	return routes
}

// UpdateRoutes binds free text, photos and inline button presses to d.
func UpdateRoutes(d Dispatcher) []tg.Route {
	if d == nil {
		return nil
	}
	h := dispatchHandler(d)
	routes := []tg.Route{
		{Endpoint: tele.OnText, Handler: wrap(h)},
		{Endpoint: tele.OnPhoto, Handler: wrap(h)},
		{Endpoint: tele.OnCallback, Handler: wrap(func(c tele.Context) error {
			// Stop the client-side spinner before doing any work.
			_ = c.Respond()
			return h(c)
		})},
	}
	logger.TWire.Info("tg.wire",
		slog.String("event", "updates"),
		slog.Int("routes", len(routes)),
	)
	return routes
}

func wrap(h tele.HandlerFunc) tele.HandlerFunc {
	h = middleware.RecoverMiddleware(h)
	return middleware.LoggerMiddleware(h)
}

func dispatchHandler(d Dispatcher) tele.HandlerFunc {
	return func(c tele.Context) error {
		start := time.Now()
		if v, ok := c.Get("update_start").(time.Time); ok {
			start = v
		}
		out, err := d.Dispatch(c)
		logHandlerSummary(c, normalizeHandlerName(out.Handler), start, out.Status, err)
		return err
	}
}
