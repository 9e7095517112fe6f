package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/m3rciful/gameclub/core/telegram/format"
)

const welcomeText = "👋 Welcome to the game club!\n\n" +
	"Use the buttons below to see upcoming events and our game catalog.\n" +
	"/add proposes an event, /addgame adds a game, /search finds one."

func (r *Router) registerGeneral() {
	r.addCommand(CommandInfo{Name: "start", Description: "Main menu"}, r.handleStart)
	r.addCommand(CommandInfo{Name: "cancel", Description: "Cancel the current dialogue"}, r.handleCancel)
	r.addCommand(CommandInfo{Name: "help", Description: "Commands and dialogues", AdminOnly: true}, r.handleHelp)
	r.addButton(BtnAbout, "about", r.handleAbout)
	r.addButton(BtnContacts, "contacts", r.handleContacts)
}

func (r *Router) handleStart(ctx context.Context, req *request) error {
	if err := r.catalog.EnsureUser(ctx, req.UserID); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	r.sessions.Clear(req.UserID)
	return r.say(ctx, req, welcomeText, mainKeyboard())
}

func (r *Router) handleCancel(ctx context.Context, req *request) error {
	if req.session.Idle() {
		return r.say(ctx, req, msgNothingToDo, mainKeyboard())
	}
	r.sessions.Clear(req.UserID)
	return r.say(ctx, req, msgCancelled, mainKeyboard())
}

func (r *Router) handleHelp(ctx context.Context, req *request) error {
	var b strings.Builder
	b.WriteString("*Commands*\n")
	for _, c := range r.Commands() {
		suffix := ""
		if c.AdminOnly {
			suffix = " (admin)"
		}
		fmt.Fprintf(&b, "/%s - %s%s\n", format.MD(c.Name), c.Description, suffix)
	}
	b.WriteString("\n*Dialogues*\n")
	b.WriteString("Event: name → description → start → duration → location → organizer → author → confirm\n")
	b.WriteString("Game: name → description → genre → photo → author\n")
	b.WriteString("Edit: /admin\\_games → game → field → new value\n")
	b.WriteString("\nDates use DD/MM/YYYY HH:MM:SS, e.g. 25/12/2025 18:00:00.")
	return r.sayMarkdown(ctx, req, b.String(), nil)
}

func (r *Router) handleAbout(ctx context.Context, req *request) error {
	return r.say(ctx, req, orPlaceholder(r.club.About), nil)
}

func (r *Router) handleContacts(ctx context.Context, req *request) error {
	return r.say(ctx, req, orPlaceholder(r.club.Contacts), nil)
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Nothing here yet."
	}
	return s
}
