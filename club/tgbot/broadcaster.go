package tgbot

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/m3rciful/gameclub/club/bot"
	"github.com/m3rciful/gameclub/core/logger"
	tg "github.com/m3rciful/gameclub/core/telegram"
	"github.com/m3rciful/gameclub/core/telegram/helpers"
	"github.com/m3rciful/gameclub/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// ErrNotBound is returned by SendTo before the bot has started.
var ErrNotBound = errors.New("tgbot: broadcaster is not bound to a running bot")

// Broadcaster sends replies to arbitrary chats. It is created before the
// bot exists and bound in the OnStart hook.
type Broadcaster struct {
	bot  atomic.Pointer[tele.Bot]
	disp atomic.Pointer[sender.Dispatcher]
}

// Bind attaches the running bot and its send dispatcher.
func (b *Broadcaster) Bind(rt tg.Runtime) {
	b.bot.Store(rt.Bot)
	b.disp.Store(rt.Dispatcher)
}

// Unbind detaches the bot; later sends fail with ErrNotBound.
func (b *Broadcaster) Unbind() {
	b.bot.Store(nil)
	b.disp.Store(nil)
}

// SendTo delivers reply to chatID synchronously, retrying transient failures
// through the dispatcher.
func (b *Broadcaster) SendTo(ctx context.Context, chatID int64, reply bot.Reply) error {
	tb := b.bot.Load()
	if tb == nil {
		return ErrNotBound
	}
	var (
		what     any = reply.Text
		endpoint     = "sendMessage"
	)
	if reply.Photo != "" {
		what = helpers.Photo(reply.Photo, reply.Text)
		endpoint = "sendPhoto"
	}
	opts := helpers.SendOptions(reply.Markdown, reply.Keyboard)
	send := func() error {
		_, err := tb.Send(tele.ChatID(chatID), what, opts)
		return err
	}

	ctx = logger.WithChat(ctx, chatID)
	if d := b.disp.Load(); d != nil {
		return d.Do(ctx, "broadcast.send", endpoint, send)
	}
	return send()
}
