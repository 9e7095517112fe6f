package helpers

import (
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/m3rciful/gameclub/core/logger"
	"github.com/m3rciful/gameclub/core/telegram/keyboard"
	"github.com/m3rciful/gameclub/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func currentDispatcher() *sender.Dispatcher {
	return globalDispatcher.Load()
}

func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	disp := currentDispatcher()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	if err := disp.Enqueue(ctx, action, endpoint, run); err != nil {
		if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
			logger.Warn(ctx, logger.CompSender, "queue.fallback",
				slog.String("action", action),
				slog.String("endpoint", endpoint),
				slog.String("err", err.Error()),
			)
			return run()
		}
		return err
	}
	return nil
}

// SendOptions builds send options for an optional Markdown reply with a keyboard.
func SendOptions(markdown bool, kb *keyboard.Layout) *tele.SendOptions {
	opts := &tele.SendOptions{ReplyMarkup: keyboard.Markup(kb)}
	if markdown {
		opts.ParseMode = tele.ModeMarkdown
	}
	return opts
}

// SendText sends text with an optional keyboard to the current chat.
func SendText(c tele.Context, text string, markdown bool, kb *keyboard.Layout) error {
	opts := SendOptions(markdown, kb)
	ReplyStatsFrom(c).record(opts.ReplyMarkup != nil)
	return sendAsync(c, "send.text", "sendMessage", func() error {
		return c.Send(text, opts)
	})
}

// SendPhoto sends a photo with caption to the current chat.
func SendPhoto(c tele.Context, ref, caption string, markdown bool, kb *keyboard.Layout) error {
	photo := Photo(ref, caption)
	opts := SendOptions(markdown, kb)
	ReplyStatsFrom(c).record(opts.ReplyMarkup != nil)
	return sendAsync(c, "send.photo", "sendPhoto", func() error {
		return c.Send(photo, opts)
	})
}

// Photo wraps a stored reference: URLs are fetched by Telegram, anything else
// is treated as a file id.
func Photo(ref, caption string) *tele.Photo {
	file := tele.File{FileID: ref}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		file = tele.FromURL(ref)
	}
	return &tele.Photo{File: file, Caption: caption}
}

// LargestPhoto returns the file id of the highest resolution variant of the message photo.
func LargestPhoto(c tele.Context) string {
	msg := c.Message()
	if msg == nil || msg.Photo == nil {
		return ""
	}
	// telebot keeps the last (largest) PhotoSize.
	return msg.Photo.FileID
}
