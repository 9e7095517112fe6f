package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/gameclub/club/domain"
	"github.com/m3rciful/gameclub/core/logger"
	"github.com/m3rciful/gameclub/core/telegram/callbacks"
	"github.com/m3rciful/gameclub/core/telegram/format"
	"github.com/m3rciful/gameclub/core/telegram/keyboard"
)

func (r *Router) registerBrowse() {
	r.addButton(BtnAnnouncements, "announcements", r.handleAnnouncements)
	r.addButton(BtnCatalog, "catalog", r.handleCatalog)
	r.addCommand(CommandInfo{Name: "search", Description: "Find a game by name"}, r.startSearch)
	r.addStage(StageSearchQuery, false, textOnly, r.searchQuery)
	r.addPrefix(PayloadGenre, "genre", false, r.handleGenre)
}

func (r *Router) handleAnnouncements(ctx context.Context, req *request) error {
	events, err := r.catalog.ListUpcomingEvents(ctx, r.now())
	if err != nil {
		return fmt.Errorf("announcements: %w", err)
	}
	if len(events) == 0 {
		return r.say(ctx, req, msgNoEvents, nil)
	}
	for _, ev := range events {
		if err := r.sayMarkdown(ctx, req, r.eventCard(ev, false), nil); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) genreKeyboard() *keyboard.Layout {
	if len(r.club.Genres) == 0 {
		return nil
	}
	buttons := make([]keyboard.InlineBtn, 0, len(r.club.Genres))
	for _, g := range r.club.Genres {
		buttons = append(buttons, keyboard.InlineBtn{Text: g, Data: callbacks.Build(PayloadGenre, g)})
	}
	return keyboard.InlineNPerRow(buttons, 2)
}

func (r *Router) handleCatalog(ctx context.Context, req *request) error {
	games, err := r.catalog.ListGames(ctx)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	if len(games) == 0 {
		return r.say(ctx, req, msgEmptyCatalog, nil)
	}
	if err := r.say(ctx, req, "🎲 Board game catalog. Filter by genre:", r.genreKeyboard()); err != nil {
		return err
	}
	return r.sendGames(ctx, req, games)
}

func (r *Router) handleGenre(ctx context.Context, req *request) error {
	genre, _ := callbacks.Suffix(req.Payload, PayloadGenre)
	genre = strings.TrimSpace(genre)
	if genre == "" {
		return domain.Invalid(fieldGenre, "Unknown genre.")
	}
	games, err := r.catalog.FindGamesByGenre(ctx, genre)
	if err != nil {
		return fmt.Errorf("genre filter: %w", err)
	}
	logger.Debug(ctx, logger.CompDialogue, "catalog.genre",
		slog.String("genre", genre),
		slog.Int("results", len(games)),
	)
	if len(games) == 0 {
		return r.sayMarkdown(ctx, req, fmt.Sprintf("No games in genre %s 😔", format.Bold(genre)), nil)
	}
	return r.sendGames(ctx, req, games)
}

func (r *Router) startSearch(ctx context.Context, req *request) error {
	if q := strings.TrimSpace(req.Args); q != "" {
		r.sessions.Clear(req.UserID)
		return r.search(ctx, req, q)
	}
	r.sessions.Reset(req.UserID, StageSearchQuery)
	return r.say(ctx, req, "🔍 Enter a game name or part of it:", nil)
}

func (r *Router) searchQuery(ctx context.Context, req *request) error {
	r.sessions.Clear(req.UserID)
	return r.search(ctx, req, strings.TrimSpace(req.Text))
}

func (r *Router) search(ctx context.Context, req *request, query string) error {
	games, err := r.catalog.FindGamesByName(ctx, query)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	logger.Debug(ctx, logger.CompDialogue, "catalog.search",
		slog.String("query", logger.SanitizeLimit(query, 64)),
		slog.Int("results", len(games)),
	)
	if len(games) == 0 {
		return r.say(ctx, req, msgNothingFound, nil)
	}
	return r.sendGames(ctx, req, games)
}

func (r *Router) sendGames(ctx context.Context, req *request, games []domain.Game) error {
	for _, g := range games {
		if err := req.out.Send(ctx, gameCard(g, nil)); err != nil {
			return err
		}
	}
	return nil
}
