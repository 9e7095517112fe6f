// Package bot is the transport-neutral dialogue layer of the club bot: it
// routes inbound updates by session stage and shape, runs the event, game,
// admin-edit and broadcast dialogues, and talks to the catalog.
package bot

import (
	"context"
	"time"

	"github.com/m3rciful/gameclub/club/domain"
	"github.com/m3rciful/gameclub/core/telegram/keyboard"
)

// Kind is the shape of an inbound update.
type Kind int

const (
	KindCommand Kind = iota + 1
	KindText
	KindPhoto
	KindCallback
)

func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindText:
		return "text"
	case KindPhoto:
		return "photo"
	case KindCallback:
		return "callback"
	}
	return "unknown"
}

// Update is one inbound event from a user.
type Update struct {
	UserID int64
	ChatID int64
	Kind   Kind
	// Command is the lower-case command name without the slash.
	Command string
	// Args is the text after the command.
	Args string
	// Text holds message text or a photo caption.
	Text string
	// PhotoRef is the largest photo variant's file id.
	PhotoRef string
	// Payload is the raw selection data of an inline button.
	Payload string
}

// Reply is one outbound message. A non-empty Photo sends a photo with Text
// as its caption.
type Reply struct {
	Text     string
	Markdown bool
	Photo    string
	Keyboard *keyboard.Layout
}

// Responder delivers replies to the chat the update came from.
type Responder interface {
	Send(ctx context.Context, r Reply) error
}

// ResponderFunc adapts a function to Responder.
type ResponderFunc func(ctx context.Context, r Reply) error

// Send calls f.
func (f ResponderFunc) Send(ctx context.Context, r Reply) error { return f(ctx, r) }

// Broadcaster delivers a reply to an arbitrary chat.
type Broadcaster interface {
	SendTo(ctx context.Context, chatID int64, r Reply) error
}

// Catalog is the persistence the dialogues need.
type Catalog interface {
	EnsureUser(ctx context.Context, tgID int64) error
	ListUserIDs(ctx context.Context) ([]int64, error)
	ListUpcomingEvents(ctx context.Context, now time.Time) ([]domain.Event, error)
	CreateEvent(ctx context.Context, e domain.Event) (domain.Event, error)
	CreateGame(ctx context.Context, g domain.Game) (domain.Game, error)
	ListGames(ctx context.Context) ([]domain.Game, error)
	FindGamesByName(ctx context.Context, query string) ([]domain.Game, error)
	FindGamesByGenre(ctx context.Context, query string) ([]domain.Game, error)
	GetGame(ctx context.Context, id int64) (domain.Game, error)
	UpdateGame(ctx context.Context, id int64, p domain.GamePatch) error
	DeleteGame(ctx context.Context, id int64) error
}
