package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/gameclub/club/domain"
	"github.com/m3rciful/gameclub/core/logger"
	"github.com/m3rciful/gameclub/core/telegram/state"
)

func (r *Router) registerGames() {
	r.addCommand(CommandInfo{Name: "addgame", Description: "Add a game to the catalog"}, r.startGame)

	r.addStage(StageGameName, false, textOnly, r.gameText(fieldName, StageGameDescription, "Enter the game description:"))
	r.addStage(StageGameDescription, false, textOnly, r.gameText(fieldDescription, StageGameGenre,
		"Enter the genre, several may be separated by commas (e.g. Strategy, Family):"))
	r.addStage(StageGameGenre, false, textOnly, r.gameText(fieldGenre, StageGamePhoto, "📷 Send a photo of the game:"))
	r.addStage(StageGamePhoto, false, textOrPhoto, r.gamePhoto)
	r.addStage(StageGameAuthor, false, textOnly, r.gameAuthor)
}

func (r *Router) startGame(ctx context.Context, req *request) error {
	r.sessions.Reset(req.UserID, StageGameName)
	return r.say(ctx, req, "🎲 Enter the game name:", nil)
}

func (r *Router) gameText(field string, next state.State, prompt string) handlerFunc {
	return func(ctx context.Context, req *request) error {
		if field == fieldName && strings.TrimSpace(req.Text) == "" {
			return domain.Invalid(field, "The game name must not be empty.")
		}
		return r.advance(ctx, req, field, req.Text, next, prompt, nil)
	}
}

func (r *Router) gamePhoto(ctx context.Context, req *request) error {
	if req.Kind != KindPhoto || req.PhotoRef == "" {
		return domain.Invalid(fieldPhoto, "📷 Please send a photo, not text.")
	}
	return r.advance(ctx, req, fieldPhoto, req.PhotoRef, StageGameAuthor, "Who is adding the game?", nil)
}

func (r *Router) gameAuthor(ctx context.Context, req *request) error {
	s := req.session
	g := domain.Game{
		Description: optionalField(s, fieldDescription),
		Genre:       optionalField(s, fieldGenre),
		Photo:       optionalField(s, fieldPhoto),
		Author:      domain.Optional(req.Text),
	}
	g.Name, _ = s.String(fieldName)

	created, err := r.catalog.CreateGame(ctx, g)
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}
	r.sessions.Clear(req.UserID)
	logger.Info(ctx, logger.CompDialogue, "game.created",
		slog.Int64("game_id", created.ID),
	)
	return r.say(ctx, req, "✅ Game added to the catalog!", mainKeyboard())
}
