// Package keyboard describes reply and inline keyboards independently of the
// transport and renders them into telebot markup.
package keyboard

import tele "gopkg.in/telebot.v4"

// InlineBtn is an inline button carrying raw callback data.
type InlineBtn struct {
	Text string
	Data string
}

// Layout is a transport-neutral keyboard descriptor. At most one of Reply,
// Inline or Remove is expected to be set.
type Layout struct {
	Reply  [][]string
	Inline [][]InlineBtn
	Remove bool
}

// Reply builds a reply keyboard layout from rows of labels.
func Reply(rows ...[]string) *Layout {
	return &Layout{Reply: rows}
}

// Inline builds an inline layout from rows of buttons.
func Inline(rows ...[]InlineBtn) *Layout {
	return &Layout{Inline: rows}
}

// InlineNPerRow splits a flat list of buttons into rows with up to n buttons per row.
// If n <= 1, every button gets its own row.
func InlineNPerRow(buttons []InlineBtn, n int) *Layout {
	if n <= 1 {
		n = 1
	}
	var rows [][]InlineBtn
	for i := 0; i < len(buttons); i += n {
		end := i + n
		if end > len(buttons) {
			end = len(buttons)
		}
		rows = append(rows, buttons[i:end])
	}
	return Inline(rows...)
}

// Remove returns a layout that hides the reply keyboard.
func Remove() *Layout {
	return &Layout{Remove: true}
}

// Markup renders l for telebot; nil yields nil.
func Markup(l *Layout) *tele.ReplyMarkup {
	switch {
	case l == nil:
		return nil
	case l.Remove:
		return RemoveKeyboard()
	case len(l.Inline) > 0:
		return InlineButtonsRows(l.Inline...)
	case len(l.Reply) > 0:
		return ReplyButtons(l.Reply...)
	}
	return nil
}

// RemoveKeyboard returns a markup that hides the keyboard.
func RemoveKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}

// ReplyButtons builds a reply keyboard from rows of text.
func ReplyButtons(rows ...[]string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	var keyboard []tele.Row
	for _, row := range rows {
		var buttons []tele.Btn
		for _, label := range row {
			buttons = append(buttons, markup.Text(label))
		}
		keyboard = append(keyboard, markup.Row(buttons...))
	}
	markup.Reply(keyboard...)
	return markup
}

// InlineButtonsRows builds an inline keyboard from rows of InlineBtn.
// Data is sent verbatim, so presses arrive on tele.OnCallback.
func InlineButtonsRows(rows ...[]InlineBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	inline := make([][]tele.InlineButton, len(rows))
	for i, row := range rows {
		r := make([]tele.InlineButton, len(row))
		for j, btn := range row {
			r[j] = tele.InlineButton{Text: btn.Text, Data: btn.Data}
		}
		inline[i] = r
	}
	markup.InlineKeyboard = inline
	return markup
}
