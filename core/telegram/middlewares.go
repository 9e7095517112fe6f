package telegram

import (
	"strings"
	"time"

	coreconfig "github.com/m3rciful/gameclub/core/config"
	"github.com/m3rciful/gameclub/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// DefaultMiddlewares builds the global chain in order: panic recovery,
// per-user rate limiting when configured, then reply counters for the
// handler summary.
func DefaultMiddlewares(cfg *coreconfig.Config, onLimited func(tele.Context) error) []Middleware {
	chain := []Middleware{{Name: "recover", Use: middleware.RecoverMiddleware}}
	if cfg != nil {
		if mw, ok := rateLimit(cfg.RateLimit, onLimited); ok {
			chain = append(chain, mw)
		}
	}
	return append(chain, Middleware{Name: "reply_stats", Use: middleware.ReplyStatsMiddleware})
}

func rateLimit(rl coreconfig.RateLimitConfig, onLimited tele.HandlerFunc) (Middleware, bool) {
	if rl.IntervalMS <= 0 {
		return Middleware{}, false
	}
	exclude := make(map[string]struct{}, len(rl.ExcludeUpdates))
	for _, kind := range rl.ExcludeUpdates {
		exclude[strings.ToLower(kind)] = struct{}{}
	}
	return Middleware{
		Name: "rate_limit",
		Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
			Interval:  time.Duration(rl.IntervalMS) * time.Millisecond,
			Exclude:   exclude,
			OnLimited: onLimited,
		}),
	}, true
}
