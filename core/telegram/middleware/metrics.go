package middleware

import (
	tghelpers "github.com/m3rciful/gameclub/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// ReplyStatsMiddleware attaches a reply counter to every update. The counter
// feeds the handler summary line.
func ReplyStatsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		tghelpers.AttachReplyStats(c)
		return next(c)
	}
}

// GetCounters reads the reply count and keyboard flag recorded for c.
func GetCounters(c tele.Context) (int, bool) {
	return tghelpers.ReplyStatsFrom(c).Snapshot()
}
