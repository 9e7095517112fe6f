package tgbot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m3rciful/gameclub/club/bot"
	"github.com/m3rciful/gameclub/club/domain"

	tele "gopkg.in/telebot.v4"
)

func newContext(t *testing.T, upd tele.Update) tele.Context {
	t.Helper()
	b, err := tele.NewBot(tele.Settings{Offline: true})
	if err != nil {
		t.Fatalf("offline bot: %v", err)
	}
	return b.NewContext(upd)
}

func TestToUpdate(t *testing.T) {
	user := &tele.User{ID: 42}
	chat := &tele.Chat{ID: 42}

	cases := []struct {
		name string
		upd  tele.Update
		want bot.Update
	}{
		{
			name: "command with bot name and args",
			upd:  tele.Update{Message: &tele.Message{Sender: user, Chat: chat, Text: "/Search@club_bot  catan "}},
			want: bot.Update{UserID: 42, ChatID: 42, Kind: bot.KindCommand, Command: "search", Args: "catan"},
		},
		{
			name: "text",
			upd:  tele.Update{Message: &tele.Message{Sender: user, Chat: chat, Text: "Game Catalog"}},
			want: bot.Update{UserID: 42, ChatID: 42, Kind: bot.KindText, Text: "Game Catalog"},
		},
		{
			name: "photo",
			upd: tele.Update{Message: &tele.Message{Sender: user, Chat: chat, Caption: "box art",
				Photo: &tele.Photo{File: tele.File{FileID: "large"}}}},
			want: bot.Update{UserID: 42, ChatID: 42, Kind: bot.KindPhoto, PhotoRef: "large", Text: "box art"},
		},
		{
			name: "callback",
			upd: tele.Update{Callback: &tele.Callback{Sender: user, Data: "admin_edit_game_7",
				Message: &tele.Message{Chat: chat}}},
			want: bot.Update{UserID: 42, ChatID: 42, Kind: bot.KindCallback, Payload: "admin_edit_game_7"},
		},
	}
	for _, tc := range cases {
		got, ok := ToUpdate(newContext(t, tc.upd))
		if !ok {
			t.Fatalf("%s: not converted", tc.name)
		}
		if got != tc.want {
			t.Fatalf("%s: got %+v, want %+v", tc.name, got, tc.want)
		}
	}

	if _, ok := ToUpdate(newContext(t, tele.Update{ID: 1})); ok {
		t.Fatal("updates without a sender must not convert")
	}
}

type emptyCatalog struct{}

func (emptyCatalog) EnsureUser(context.Context, int64) error { return nil }
func (emptyCatalog) ListUserIDs(context.Context) ([]int64, error) { return nil, nil }
func (emptyCatalog) ListGames(context.Context) ([]domain.Game, error) { return nil, nil }
func (emptyCatalog) ListUpcomingEvents(context.Context, time.Time) ([]domain.Event, error) {
	return nil, nil
}
func (emptyCatalog) CreateEvent(_ context.Context, e domain.Event) (domain.Event, error) {
	return e, nil
}
func (emptyCatalog) CreateGame(_ context.Context, g domain.Game) (domain.Game, error) { return g, nil }
func (emptyCatalog) FindGamesByName(context.Context, string) ([]domain.Game, error) {
	return nil, nil
}
func (emptyCatalog) FindGamesByGenre(context.Context, string) ([]domain.Game, error) {
	return nil, nil
}
func (emptyCatalog) GetGame(context.Context, int64) (domain.Game, error) {
	return domain.Game{}, domain.ErrNotFound
}
func (emptyCatalog) UpdateGame(context.Context, int64, domain.GamePatch) error { return nil }
func (emptyCatalog) DeleteGame(context.Context, int64) error { return nil }

func TestRegistryMirrorsRouterCommands(t *testing.T) {
	r, err := bot.New(bot.Options{Catalog: emptyCatalog{}})
	if err != nil {
		t.Fatalf("router: %v", err)
	}
	reg := NewAdapter(r).Registry()

	if len(reg.Commands()) != len(r.Commands()) {
		t.Fatalf("registry has %d commands, router %d", len(reg.Commands()), len(r.Commands()))
	}
	for _, c := range reg.ListCommands(true) {
		if c.Text == "broadcast" || c.Text == "admin_games" || c.Text == "help" {
			t.Fatalf("admin command %q in public menu", c.Text)
		}
	}
}

func TestBroadcasterRequiresBinding(t *testing.T) {
	var b Broadcaster
	err := b.SendTo(context.Background(), 1, bot.Reply{Text: "hi"})
	if !errors.Is(err, ErrNotBound) {
		t.Fatalf("err = %v", err)
	}
}
