package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/m3rciful/gameclub/club/bot"
	coredatabase "github.com/m3rciful/gameclub/core/database"
	"github.com/m3rciful/gameclub/migrations"
)

type closingPublisher struct {
	closed bool
}

func (p *closingPublisher) Publish(context.Context, string, any) error { return nil }

func (p *closingPublisher) Close() error {
	p.closed = true
	return nil
}

func newTestApp(t *testing.T, listen string) (*App, *closingPublisher) {
	t.Helper()
	cfg := &Config{}
	cfg.Telegram.Token = "t"
	cfg.Telegram.AdminIDs = []int64{7}
	cfg.Health.Listen = listen
	cfg.Database = coredatabase.Config{Path: filepath.Join(t.TempDir(), "club.db")}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}

	db, err := coredatabase.Connect(cfg.Database)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := coredatabase.RunMigrations(db, cfg.Database, migrations.FS); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	pub := &closingPublisher{}
	a, err := Assemble(cfg, Infra{DB: db, Publisher: pub})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	return a, pub
}

func TestAssembleBuildsRunOptions(t *testing.T) {
	a, pub := newTestApp(t, "")

	opts, err := a.TelegramRunOptions()
	if err != nil {
		t.Fatalf("run options: %v", err)
	}
	if opts.Config == nil || opts.Registry == nil {
		t.Fatal("expected config and registry")
	}
	if _, _, ok := opts.Registry.LookupCommand("/addgame"); !ok {
		t.Fatal("expected /addgame in registry")
	}
	// One route per command endpoint plus text, photo and callback.
	if want := len(opts.Registry.Endpoints()) + 3; len(opts.Routes) != want {
		t.Fatalf("routes = %d, want %d", len(opts.Routes), want)
	}
	if len(opts.Middlewares) == 0 || opts.OnStart == nil || opts.OnStop == nil {
		t.Fatal("expected middlewares and lifecycle hooks")
	}
	if a.Health() != nil {
		t.Fatal("health server must be disabled without a listen address")
	}

	if err := a.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !pub.closed {
		t.Fatal("expected publisher to be closed")
	}
}

func TestAssembledRouterUsesStore(t *testing.T) {
	a, _ := newTestApp(t, "")
	t.Cleanup(func() { _ = a.Close(context.Background()) })

	var sent []bot.Reply
	resp := bot.ResponderFunc(func(_ context.Context, r bot.Reply) error {
		sent = append(sent, r)
		return nil
	})
	res, err := a.Router().Dispatch(context.Background(), bot.Update{
		UserID: 7, ChatID: 7, Kind: bot.KindCommand, Command: "/start",
	}, resp)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if res.Outcome != bot.OutcomeOK || len(sent) != 1 {
		t.Fatalf("result = %+v, replies = %d", res, len(sent))
	}
	ids, err := a.store.ListUserIDs(context.Background())
	if err != nil || len(ids) != 1 || ids[0] != 7 {
		t.Fatalf("users = %v, err = %v", ids, err)
	}
}

func TestHealthReadyReflectsDatabase(t *testing.T) {
	a, _ := newTestApp(t, "127.0.0.1:0")
	if a.Health() == nil {
		t.Fatal("expected health server")
	}

	rec := httptest.NewRecorder()
	a.Health().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("ready status = %d, body = %s", rec.Code, rec.Body.String())
	}

	_ = a.db.Close()
	rec = httptest.NewRecorder()
	a.Health().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("ready status after close = %d", rec.Code)
	}
}
