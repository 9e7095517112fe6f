package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/m3rciful/gameclub/club/domain"
	"github.com/m3rciful/gameclub/core/logger"
	"github.com/m3rciful/gameclub/core/telegram/helpers"
	"github.com/m3rciful/gameclub/core/telegram/state"
)

func (r *Router) registerEvents() {
	r.addCommand(CommandInfo{Name: "add", Description: "Propose an event"}, r.startEvent)

	r.addStage(StageEventName, false, textOnly, r.eventText(fieldName, StageEventDescription, "Enter the event description:"))
	r.addStage(StageEventDescription, false, textOnly, r.eventText(fieldDescription, StageEventStart,
		"Enter the start date and time as DD/MM/YYYY HH:MM:SS, e.g. "+helpers.EventDateExample+":"))
	r.addStage(StageEventStart, false, textOnly, r.eventStart)
	r.addStage(StageEventDuration, false, textOnly, r.eventDuration)
	r.addStage(StageEventLocation, false, textOnly, r.eventText(fieldLocation, StageEventOrganizer, "Who is organizing?"))
	r.addStage(StageEventOrganizer, false, textOnly, r.eventText(fieldOrganizer, StageEventAuthor, "Who is adding the event?"))
	r.addStage(StageEventAuthor, false, textOnly, r.eventAuthor)
	r.addStage(StageEventConfirm, false, labelIn(LabelConfirm, LabelCancel, LabelEdit), r.eventConfirm)
}

func (r *Router) startEvent(ctx context.Context, req *request) error {
	r.sessions.Reset(req.UserID, StageEventName)
	return r.say(ctx, req, "📅 Enter the event name:", nil)
}

func (r *Router) eventText(field string, next state.State, prompt string) handlerFunc {
	return func(ctx context.Context, req *request) error {
		value := req.Text
		if field == fieldName && strings.TrimSpace(value) == "" {
			return domain.Invalid(field, "The event name must not be empty.")
		}
		return r.advance(ctx, req, field, value, next, prompt, nil)
	}
}

func (r *Router) eventStart(ctx context.Context, req *request) error {
	start, ok := helpers.ParseEventDateTime(req.Text, r.club.Location)
	if !ok {
		return domain.Invalid(fieldStartsAt, "Invalid format. Example: "+helpers.EventDateExample)
	}
	return r.advance(ctx, req, fieldStartsAt, start.Unix(), StageEventDuration,
		"Enter the duration in minutes:", nil)
}

func (r *Router) eventDuration(ctx context.Context, req *request) error {
	minutes, err := strconv.Atoi(strings.TrimSpace(req.Text))
	if err != nil || minutes <= 0 {
		return domain.Invalid(fieldDuration, "Enter the duration as a positive whole number of minutes.")
	}
	return r.advance(ctx, req, fieldDuration, minutes, StageEventLocation, "Where will it take place?", nil)
}

func (r *Router) eventAuthor(ctx context.Context, req *request) error {
	r.sessions.SetField(req.UserID, fieldAuthor, req.Text)
	r.sessions.SetState(req.UserID, StageEventConfirm)
	ev := r.draftEvent(r.sessions.Get(req.UserID))
	preview := "*Check the event:*\n\n" + r.eventCard(ev, true)
	return r.sayMarkdown(ctx, req, preview, confirmKeyboard())
}

func (r *Router) eventConfirm(ctx context.Context, req *request) error {
	switch strings.TrimSpace(req.Text) {
	case LabelCancel:
		r.sessions.Clear(req.UserID)
		return r.say(ctx, req, "❌ Event creation cancelled.", mainKeyboard())
	case LabelEdit:
		r.sessions.Reset(req.UserID, StageEventName)
		return r.say(ctx, req, "Let's start over. Enter the event name:", nil)
	}

	ev, err := r.catalog.CreateEvent(ctx, r.draftEvent(req.session))
	if err != nil {
		return fmt.Errorf("confirm event: %w", err)
	}
	r.sessions.Clear(req.UserID)
	logger.Info(ctx, logger.CompDialogue, "event.created",
		slog.Int64("event_id", ev.ID),
		slog.Time("starts_at", ev.StartsAt),
	)
	if err := r.say(ctx, req, "✅ Event added!", mainKeyboard()); err != nil {
		return err
	}
	if r.club.AnnounceEvents {
		r.deliver(ctx, "event.announce", Reply{Text: "📣 *New event!*\n\n" + r.eventCard(ev, false), Markdown: true})
	}
	return nil
}

// draftEvent assembles an event from collected session fields.
func (r *Router) draftEvent(s state.Session) domain.Event {
	ev := domain.Event{}
	ev.Name, _ = s.String(fieldName)
	if unix, ok := s.Int64(fieldStartsAt); ok {
		ev.StartsAt = time.Unix(unix, 0).In(r.club.Location)
	}
	ev.DurationMinutes, _ = s.Int(fieldDuration)
	ev.Description = optionalField(s, fieldDescription)
	ev.Location = optionalField(s, fieldLocation)
	ev.Organizer = optionalField(s, fieldOrganizer)
	ev.Author = optionalField(s, fieldAuthor)
	return ev
}

func optionalField(s state.Session, name string) *string {
	v, _ := s.String(name)
	return domain.Optional(v)
}
