package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m3rciful/gameclub/club/domain"
	"github.com/m3rciful/gameclub/core/logger"
	"github.com/m3rciful/gameclub/core/telegram/callbacks"
	"github.com/m3rciful/gameclub/core/telegram/format"
	"github.com/m3rciful/gameclub/core/telegram/keyboard"
)

func (r *Router) registerAdmin() {
	r.addCommand(CommandInfo{Name: "admin_games", Description: "Edit or delete games", AdminOnly: true}, r.adminGames)

	r.addPrefix(PayloadEditGame, "admin_edit_game", true, r.adminGameDetail)
	r.addPrefix(PayloadDeleteGame, "admin_delete_game", true, r.adminDelete)
	r.addPrefix(PayloadEditField, "admin_edit_field", true, r.adminEditField)
	r.addCallback(PayloadCancelEdit, "admin_cancel_edit", true, r.adminCancel)

	r.addStage(StageAdminNewValue, true, textOrPhoto, r.adminNewValue)
}

func (r *Router) adminGames(ctx context.Context, req *request) error {
	games, err := r.catalog.ListGames(ctx)
	if err != nil {
		return fmt.Errorf("admin games: %w", err)
	}
	if len(games) == 0 {
		return r.say(ctx, req, msgEmptyCatalog, nil)
	}
	buttons := make([]keyboard.InlineBtn, 0, len(games))
	for _, g := range games {
		buttons = append(buttons, keyboard.InlineBtn{Text: g.Name, Data: callbacks.Build(PayloadEditGame, g.ID)})
	}
	return r.say(ctx, req, "🛠 Select a game to edit:", keyboard.InlineNPerRow(buttons, 1))
}

func gameActions(id int64) *keyboard.Layout {
	var fields []keyboard.InlineBtn
	for _, f := range domain.EditableFields {
		fields = append(fields, keyboard.InlineBtn{
			Text: "✏️ " + fieldLabel(f),
			Data: callbacks.Build(PayloadEditField, f.Token()+"_"+fmt.Sprint(id)),
		})
	}
	l := keyboard.InlineNPerRow(fields, 2)
	l.Inline = append(l.Inline, []keyboard.InlineBtn{
		{Text: "🗑 Delete", Data: callbacks.Build(PayloadDeleteGame, id)},
		{Text: "❌ Cancel", Data: PayloadCancelEdit},
	})
	return l
}

func (r *Router) adminGameDetail(ctx context.Context, req *request) error {
	id, err := callbacks.SuffixInt64(req.Payload, PayloadEditGame)
	if err != nil {
		return domain.Invalid(fieldGameID, "Malformed selection.")
	}
	g, err := r.catalog.GetGame(ctx, id)
	if err != nil {
		return fmt.Errorf("game detail: %w", err)
	}
	return req.out.Send(ctx, gameCard(g, gameActions(id)))
}

func (r *Router) adminEditField(ctx context.Context, req *request) error {
	token, id, err := callbacks.SplitLast(req.Payload, PayloadEditField)
	if err != nil {
		return domain.Invalid(fieldGameID, "Malformed selection.")
	}
	field, ok := domain.ParseEditableField(token)
	if !ok {
		return domain.Invalid(fieldEditField, "Unknown field.")
	}
	g, err := r.catalog.GetGame(ctx, id)
	if err != nil {
		return fmt.Errorf("edit field: %w", err)
	}

	r.sessions.Reset(req.UserID, StageAdminNewValue)
	r.sessions.SetField(req.UserID, fieldGameID, id)
	r.sessions.SetField(req.UserID, fieldEditField, string(field))

	prompt := fmt.Sprintf("Enter a new %s for %s:", fieldLabel(field), format.Bold(g.Name))
	if field == domain.FieldPhoto {
		prompt = fmt.Sprintf("📷 Send a new photo or a photo URL for %s:", format.Bold(g.Name))
	}
	cancel := keyboard.Inline([]keyboard.InlineBtn{{Text: "❌ Cancel", Data: PayloadCancelEdit}})
	return r.sayMarkdown(ctx, req, prompt, cancel)
}

func (r *Router) adminNewValue(ctx context.Context, req *request) error {
	id, ok := req.session.Int64(fieldGameID)
	raw, _ := req.session.String(fieldEditField)
	field, valid := domain.ParseEditableField(raw)
	if !ok || !valid {
		r.sessions.Clear(req.UserID)
		return fmt.Errorf("admin edit: session lost game or field")
	}

	var value string
	switch {
	case req.Kind == KindText:
		value = req.Text
	case field == domain.FieldPhoto:
		value = req.PhotoRef
	default:
		return domain.Invalid(string(field), "✏️ Send text for this field.")
	}

	patch, err := field.Patch(value)
	if err != nil {
		return err
	}
	if err := r.catalog.UpdateGame(ctx, id, patch); err != nil {
		return fmt.Errorf("admin edit: %w", err)
	}
	g, err := r.catalog.GetGame(ctx, id)
	if err != nil {
		return fmt.Errorf("admin edit: %w", err)
	}
	r.sessions.Clear(req.UserID)
	logger.Info(ctx, logger.CompDialogue, "game.updated",
		slog.Int64("game_id", id),
		slog.String("field", string(field)),
	)
	return r.sayMarkdown(ctx, req,
		fmt.Sprintf("✅ %s of %s updated.", fieldLabel(field), format.Bold(g.Name)), nil)
}

func (r *Router) adminDelete(ctx context.Context, req *request) error {
	id, err := callbacks.SuffixInt64(req.Payload, PayloadDeleteGame)
	if err != nil {
		return domain.Invalid(fieldGameID, "Malformed selection.")
	}
	g, err := r.catalog.GetGame(ctx, id)
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	if err := r.catalog.DeleteGame(ctx, id); err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	r.sessions.Clear(req.UserID)
	logger.Info(ctx, logger.CompDialogue, "game.deleted",
		slog.Int64("game_id", id),
	)
	return r.sayMarkdown(ctx, req, fmt.Sprintf("🗑 Game %s deleted.", format.Bold(g.Name)), nil)
}

func (r *Router) adminCancel(ctx context.Context, req *request) error {
	r.sessions.Clear(req.UserID)
	return r.say(ctx, req, "Editing cancelled.", nil)
}
