package catalog

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/gameclub/club/domain"
	coredatabase "github.com/m3rciful/gameclub/core/database"
	"github.com/m3rciful/gameclub/core/logger"
	"github.com/m3rciful/gameclub/migrations"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	cfg := coredatabase.Config{Path: filepath.Join(t.TempDir(), "club.db")}
	db, err := coredatabase.Connect(cfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := coredatabase.RunMigrations(db, cfg, migrations.FS); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) Publish(_ context.Context, key string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return nil
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, string, any) error {
	return errors.New("broker down")
}

func mustCreateGame(t *testing.T, s *Store, g domain.Game) domain.Game {
	t.Helper()
	created, err := s.CreateGame(context.Background(), g)
	if err != nil {
		t.Fatalf("create game %q: %v", g.Name, err)
	}
	return created
}

func TestEnsureUserIsIdempotent(t *testing.T) {
	s := New(openTestDB(t))
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := s.EnsureUser(ctx, 42); err != nil {
			t.Fatalf("ensure user: %v", err)
		}
	}
	if err := s.EnsureUser(ctx, 7); err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	ids, err := s.ListUserIDs(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(ids) != 2 || ids[0] != 42 || ids[1] != 7 {
		t.Fatalf("ids = %v", ids)
	}
}

func TestListUpcomingEventsFiltersAndOrders(t *testing.T) {
	s := New(openTestDB(t))
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	starts := []time.Time{
		now.Add(48 * time.Hour),
		now.Add(-time.Hour),
		now,
		now.Add(time.Hour),
		now.Add(24 * time.Hour),
	}
	for i, st := range starts {
		_, err := s.CreateEvent(ctx, domain.Event{Name: "e", StartsAt: st, DurationMinutes: 30 + i})
		if err != nil {
			t.Fatalf("create event: %v", err)
		}
	}

	events, err := s.ListUpcomingEvents(ctx, now)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("events = %d, want 3", len(events))
	}
	for i, e := range events {
		if !e.StartsAt.After(now) {
			t.Fatalf("event %d starts at %v, not after %v", i, e.StartsAt, now)
		}
		if i > 0 && e.StartsAt.Before(events[i-1].StartsAt) {
			t.Fatalf("events out of order at %d", i)
		}
	}

	empty, err := s.ListUpcomingEvents(ctx, now.Add(72*time.Hour))
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected no events, got %v, %v", empty, err)
	}
}

func TestCreateEventRoundTrip(t *testing.T) {
	s := New(openTestDB(t))
	ctx := context.Background()
	start := time.Date(2025, 12, 25, 18, 0, 0, 0, time.UTC)
	in := domain.Event{
		Name:            "Winter party",
		Description:     domain.Optional("Games and tea"),
		StartsAt:        start,
		DurationMinutes: 180,
		Location:        domain.Optional("Library"),
		Organizer:       domain.Optional("Ann"),
	}
	created, err := s.CreateEvent(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected id")
	}
	events, err := s.ListUpcomingEvents(ctx, start.Add(-time.Minute))
	if err != nil || len(events) != 1 {
		t.Fatalf("list: %v, %v", events, err)
	}
	got := events[0]
	if got.Name != in.Name || *got.Description != "Games and tea" || !got.StartsAt.Equal(start) ||
		got.DurationMinutes != 180 || *got.Location != "Library" || got.Author != nil {
		t.Fatalf("unexpected event: %+v", got)
	}
}

func TestCreateRejectsMissingRequiredFields(t *testing.T) {
	s := New(openTestDB(t))
	ctx := context.Background()
	if _, err := s.CreateEvent(ctx, domain.Event{Name: "no start", DurationMinutes: 10}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := s.CreateGame(ctx, domain.Game{}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFindGames(t *testing.T) {
	s := New(openTestDB(t))
	ctx := context.Background()
	mustCreateGame(t, s, domain.Game{Name: "Ticket to Ride", Genre: domain.Optional("Семейная, Стратегия")})
	mustCreateGame(t, s, domain.Game{Name: "Catan", Genre: domain.Optional("Стратегия")})
	mustCreateGame(t, s, domain.Game{Name: "Codenames", Genre: domain.Optional("Пати")})
	mustCreateGame(t, s, domain.Game{Name: "Azul"})

	all, err := s.FindGamesByName(ctx, "")
	if err != nil {
		t.Fatalf("find all: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("all = %d, want 4", len(all))
	}
	listed, _ := s.ListGames(ctx)
	want := []string{"Azul", "Catan", "Codenames", "Ticket to Ride"}
	for i, g := range listed {
		if g.Name != want[i] {
			t.Fatalf("ListGames[%d] = %q, want %q", i, g.Name, want[i])
		}
	}

	cat, err := s.FindGamesByName(ctx, "cat")
	if err != nil {
		t.Fatalf("find cat: %v", err)
	}
	if len(cat) != 1 || cat[0].Name != "Catan" {
		t.Fatalf("cat = %+v", cat)
	}

	strategy, err := s.FindGamesByGenre(ctx, "стратегия")
	if err != nil {
		t.Fatalf("find genre: %v", err)
	}
	if len(strategy) != 2 {
		t.Fatalf("strategy = %d, want 2", len(strategy))
	}

	none, err := s.FindGamesByGenre(ctx, "Детектив")
	if err != nil || len(none) != 0 {
		t.Fatalf("expected empty result, got %v, %v", none, err)
	}
}

func TestUpdateGameTouchesOnlyPatchedField(t *testing.T) {
	pub := &recordingPublisher{}
	s := New(openTestDB(t), WithPublisher(pub))
	ctx := context.Background()
	g := mustCreateGame(t, s, domain.Game{
		Name:        "Catan",
		Description: domain.Optional("Trade and build"),
		Genre:       domain.Optional("Стратегия"),
		Author:      domain.Optional("Ann"),
	})

	patch, _ := domain.FieldGenre.Patch("Семейная")
	if err := s.UpdateGame(ctx, g.ID, patch); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := s.GetGame(ctx, g.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if *got.Genre != "Семейная" || got.Name != "Catan" || *got.Description != "Trade and build" ||
		*got.Author != "Ann" || got.Photo != nil {
		t.Fatalf("unexpected game after update: %+v", got)
	}

	if err := s.UpdateGame(ctx, 9999, patch); err != nil {
		t.Fatalf("update unknown id should be a no-op, got %v", err)
	}
	if len(pub.keys) != 2 || pub.keys[0] != TopicGameCreated || pub.keys[1] != TopicGameUpdated {
		t.Fatalf("published = %v", pub.keys)
	}
}

func TestUpdateGameClearsOptionalField(t *testing.T) {
	s := New(openTestDB(t))
	ctx := context.Background()
	g := mustCreateGame(t, s, domain.Game{
		Name:        "Catan",
		Description: domain.Optional("Trade and build"),
		Author:      domain.Optional("Ann"),
	})

	patch, err := domain.FieldDescription.Patch("")
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if err := s.UpdateGame(ctx, g.ID, patch); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := s.GetGame(ctx, g.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Description != nil || *got.Author != "Ann" || got.Name != "Catan" {
		t.Fatalf("unexpected game after clear: %+v", got)
	}

	// Name cannot be cleared; such a patch changes nothing.
	if err := s.UpdateGame(ctx, g.ID, domain.GamePatch{Clear: []domain.EditableField{domain.FieldName}}); err != nil {
		t.Fatalf("clear name: %v", err)
	}
	if got, _ := s.GetGame(ctx, g.ID); got.Name != "Catan" {
		t.Fatalf("name = %q", got.Name)
	}
}

func TestDeleteGame(t *testing.T) {
	s := New(openTestDB(t))
	ctx := context.Background()
	g := mustCreateGame(t, s, domain.Game{Name: "Azul"})

	if err := s.DeleteGame(ctx, g.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetGame(ctx, g.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := s.DeleteGame(ctx, g.ID); err != nil {
		t.Fatalf("repeated delete should be a no-op, got %v", err)
	}
}

func TestPublishFailureLogsRecordID(t *testing.T) {
	var buf bytes.Buffer
	prev := logger.L
	logger.L = slog.New(slog.NewJSONHandler(&buf, nil))
	t.Cleanup(func() { logger.L = prev })

	s := New(openTestDB(t), WithPublisher(failingPublisher{}))
	ev, err := s.CreateEvent(context.Background(), domain.Event{
		Name:            "Catan night",
		StartsAt:        time.Date(2030, 1, 1, 18, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
	})
	if err != nil {
		t.Fatalf("publish failure must not fail the write: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"op":"event.created"`) || !strings.Contains(out, `"id":`+strconv.FormatInt(ev.ID, 10)) {
		t.Fatalf("log = %s", out)
	}
	if strings.Contains(out, "game_id") {
		t.Fatalf("event failure logged with a game key: %s", out)
	}
}
