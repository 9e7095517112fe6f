package bot

import (
	"fmt"

	"github.com/m3rciful/gameclub/club/domain"
	"github.com/m3rciful/gameclub/core/telegram/format"
	"github.com/m3rciful/gameclub/core/telegram/helpers"
	"github.com/m3rciful/gameclub/core/telegram/keyboard"
)

// eventCard renders an event in Markdown. The preview variant lists every
// collected field, including the author.
func (r *Router) eventCard(ev domain.Event, preview bool) string {
	var c format.Card
	c.Title(ev.Name).Italic(ev.Description).Break()
	if !ev.StartsAt.IsZero() {
		c.Line("🕒 " + helpers.FormatEventRange(ev.StartsAt, ev.EndsAt(), r.club.Location))
	}
	if preview {
		c.Line(fmt.Sprintf("⏱ %d min", ev.DurationMinutes))
	}
	c.Field("📍", ev.Location).Field("👤 Organizer:", ev.Organizer)
	if preview {
		c.Field("✍️ Added by:", ev.Author)
	}
	return c.String()
}

// gameCard renders a game as a photo with caption when it has a photo.
func gameCard(g domain.Game, kb *keyboard.Layout) Reply {
	var c format.Card
	c.Title(g.Name).Italic(g.Genre).Break().Text(g.Description).Break().Field("Added by:", g.Author)
	return Reply{
		Text:     c.String(),
		Markdown: true,
		Photo:    format.Deref(g.Photo, ""),
		Keyboard: kb,
	}
}

func fieldLabel(f domain.EditableField) string {
	switch f {
	case domain.FieldName:
		return "Name"
	case domain.FieldDescription:
		return "Description"
	case domain.FieldGenre:
		return "Genre"
	case domain.FieldPhoto:
		return "Photo"
	case domain.FieldAuthor:
		return "Author"
	}
	return string(f)
}
