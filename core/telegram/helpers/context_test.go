package helpers

import (
	"testing"

	"github.com/m3rciful/gameclub/core/logger"
	"github.com/m3rciful/gameclub/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

func offlineContext(t *testing.T, upd tele.Update) tele.Context {
	t.Helper()
	b, err := tele.NewBot(tele.Settings{Offline: true})
	if err != nil {
		t.Fatalf("offline bot: %v", err)
	}
	return b.NewContext(upd)
}

func TestBuildContextCarriesUpdateMeta(t *testing.T) {
	c := offlineContext(t, tele.Update{ID: 5, Message: &tele.Message{
		Sender: &tele.User{ID: 42},
		Chat:   &tele.Chat{ID: 43},
	}})

	ctx := BuildContext(c)
	if got := logger.UserIDFrom(ctx); got != 42 {
		t.Fatalf("user id = %d", got)
	}
	if got := logger.ChatIDFrom(ctx); got != 43 {
		t.Fatalf("chat id = %d", got)
	}
	if logger.RIDFrom(ctx) == "" {
		t.Fatal("expected rid")
	}
	if again := BuildContext(c); logger.RIDFrom(again) != logger.RIDFrom(ctx) {
		t.Fatal("expected the stored context to be reused")
	}

	WithHandler(c, "catalog")
	if got := logger.HandlerFrom(BuildContext(c)); got != "catalog" {
		t.Fatalf("handler = %q", got)
	}
}

func TestIdentityFromCallback(t *testing.T) {
	c := offlineContext(t, tele.Update{Callback: &tele.Callback{
		Sender:  &tele.User{ID: 7},
		Message: &tele.Message{Chat: &tele.Chat{ID: 70}},
	}})
	user, chat := Identity(c)
	if user != 7 || chat != 70 {
		t.Fatalf("identity = %d/%d", user, chat)
	}
}

func TestReplyStatsCountQueuedReplies(t *testing.T) {
	c := offlineContext(t, tele.Update{ID: 1})
	if n, _ := ReplyStatsFrom(c).Snapshot(); n != 0 {
		t.Fatalf("unattached snapshot = %d", n)
	}

	stats := AttachReplyStats(c)
	stats.record(false)
	if n, kb := stats.Snapshot(); n != 1 || kb {
		t.Fatalf("after plain reply = %d/%v", n, kb)
	}
	stats.record(SendOptions(false, keyboard.Reply([]string{"Yes"})).ReplyMarkup != nil)
	if n, kb := ReplyStatsFrom(c).Snapshot(); n != 2 || !kb {
		t.Fatalf("after keyboard reply = %d/%v", n, kb)
	}
}
