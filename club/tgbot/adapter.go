// Package tgbot connects the dialogue router to telebot.
package tgbot

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/m3rciful/gameclub/club/bot"
	tg "github.com/m3rciful/gameclub/core/telegram"
	"github.com/m3rciful/gameclub/core/telegram/callbacks"
	"github.com/m3rciful/gameclub/core/telegram/commands"
	"github.com/m3rciful/gameclub/core/telegram/helpers"
	"github.com/m3rciful/gameclub/core/telegram/router"

	tele "gopkg.in/telebot.v4"
)

// captionLimit is Telegram's maximum photo caption length.
const captionLimit = 1024

// Adapter turns telebot contexts into bot updates and replies back.
type Adapter struct {
	router *bot.Router
}

// NewAdapter wraps r.
func NewAdapter(r *bot.Router) *Adapter {
	return &Adapter{router: r}
}

// Dispatch implements router.Dispatcher.
func (a *Adapter) Dispatch(c tele.Context) (router.Outcome, error) {
	u, ok := ToUpdate(c)
	if !ok {
		return router.Outcome{Handler: "unsupported", Status: bot.OutcomeSkip}, nil
	}
	ctx := helpers.BuildContext(c)
	res, err := a.router.Dispatch(ctx, u, responder{c: c})
	return router.Outcome{Handler: res.Handler, Status: res.Outcome}, err
}

// Registry builds the command registry from the router's command table.
func (a *Adapter) Registry() *tg.Registry {
	reg := tg.NewRegistry()
	for _, info := range a.router.Commands() {
		reg.RegisterCommand("/"+info.Name, commands.Command{
			Description: info.Description,
			AdminOnly:   info.AdminOnly,
		})
	}
	return reg
}

// ToUpdate extracts the transport-neutral update from c. Updates without a
// sender or message, such as channel posts, are not supported.
func ToUpdate(c tele.Context) (bot.Update, bool) {
	sender := c.Sender()
	if sender == nil {
		return bot.Update{}, false
	}
	u := bot.Update{UserID: sender.ID, ChatID: sender.ID}
	if chat := c.Chat(); chat != nil {
		u.ChatID = chat.ID
	}

	if c.Callback() != nil {
		u.Kind = bot.KindCallback
		u.Payload = callbacks.Data(c)
		return u, true
	}

	msg := c.Message()
	if msg == nil {
		return bot.Update{}, false
	}
	switch {
	case msg.Photo != nil:
		u.Kind = bot.KindPhoto
		u.PhotoRef = helpers.LargestPhoto(c)
		u.Text = msg.Caption
	case strings.HasPrefix(msg.Text, "/"):
		u.Kind = bot.KindCommand
		u.Command, u.Args = parseCommand(msg.Text)
	default:
		u.Kind = bot.KindText
		u.Text = msg.Text
	}
	return u, true
}

// parseCommand splits "/search@club_bot catan" into "search" and "catan".
func parseCommand(text string) (string, string) {
	head, args, _ := strings.Cut(strings.TrimSpace(text), " ")
	name := strings.TrimPrefix(head, "/")
	name, _, _ = strings.Cut(name, "@")
	return strings.ToLower(name), strings.TrimSpace(args)
}

type responder struct {
	c tele.Context
}

func (r responder) Send(_ context.Context, reply bot.Reply) error {
	if reply.Photo == "" {
		return helpers.SendText(r.c, reply.Text, reply.Markdown, reply.Keyboard)
	}
	if utf8.RuneCountInString(reply.Text) <= captionLimit {
		return helpers.SendPhoto(r.c, reply.Photo, reply.Text, reply.Markdown, reply.Keyboard)
	}
	if err := helpers.SendPhoto(r.c, reply.Photo, "", false, nil); err != nil {
		return err
	}
	return helpers.SendText(r.c, reply.Text, reply.Markdown, reply.Keyboard)
}
