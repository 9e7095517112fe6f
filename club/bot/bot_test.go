package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m3rciful/gameclub/club/domain"
	"github.com/m3rciful/gameclub/core/telegram/state"
)

const (
	adminID  int64 = 1
	memberID int64 = 2
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeCatalog struct {
	mu        sync.Mutex
	users     []int64
	events    []domain.Event
	games     map[int64]domain.Game
	nextID    int64
	mutations int
	panicOn   string
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{games: make(map[int64]domain.Game)}
}

func (f *fakeCatalog) maybePanic(op string) {
	if f.panicOn == op {
		panic("boom in " + op)
	}
}

func (f *fakeCatalog) EnsureUser(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u == id {
			return nil
		}
	}
	f.users = append(f.users, id)
	return nil
}

func (f *fakeCatalog) ListUserIDs(context.Context) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.users...), nil
}

func (f *fakeCatalog) ListUpcomingEvents(_ context.Context, now time.Time) ([]domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Event
	for _, e := range f.events {
		if e.StartsAt.After(now) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (f *fakeCatalog) CreateEvent(_ context.Context, e domain.Event) (domain.Event, error) {
	if err := e.Validate(); err != nil {
		return domain.Event{}, fmt.Errorf("create event: %w", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.mutations++
	e.ID = f.nextID
	f.events = append(f.events, e)
	return e, nil
}

func (f *fakeCatalog) CreateGame(_ context.Context, g domain.Game) (domain.Game, error) {
	if err := g.Validate(); err != nil {
		return domain.Game{}, fmt.Errorf("create game: %w", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.mutations++
	g.ID = f.nextID
	f.games[g.ID] = g
	return g, nil
}

func (f *fakeCatalog) sorted() []domain.Game {
	out := make([]domain.Game, 0, len(f.games))
	for _, g := range f.games {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out
}

func (f *fakeCatalog) ListGames(context.Context) ([]domain.Game, error) {
	f.maybePanic("ListGames")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted(), nil
}

func (f *fakeCatalog) filter(query string, field func(domain.Game) string) []domain.Game {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Game
	for _, g := range f.sorted() {
		if strings.Contains(strings.ToLower(field(g)), strings.ToLower(query)) {
			out = append(out, g)
		}
	}
	return out
}

func (f *fakeCatalog) FindGamesByName(_ context.Context, q string) ([]domain.Game, error) {
	return f.filter(q, func(g domain.Game) string { return g.Name }), nil
}

func (f *fakeCatalog) FindGamesByGenre(_ context.Context, q string) ([]domain.Game, error) {
	return f.filter(q, func(g domain.Game) string {
		if g.Genre == nil {
			return ""
		}
		return *g.Genre
	}), nil
}

func (f *fakeCatalog) GetGame(_ context.Context, id int64) (domain.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.games[id]
	if !ok {
		return domain.Game{}, fmt.Errorf("game %d: %w", id, domain.ErrNotFound)
	}
	return g, nil
}

func (f *fakeCatalog) UpdateGame(_ context.Context, id int64, p domain.GamePatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.games[id]
	if !ok {
		return nil
	}
	f.mutations++
	f.games[id] = p.Apply(g)
	return nil
}

func (f *fakeCatalog) DeleteGame(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.games[id]; ok {
		f.mutations++
		delete(f.games, id)
	}
	return nil
}

func (f *fakeCatalog) addGame(g domain.Game) domain.Game {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	g.ID = f.nextID
	f.games[g.ID] = g
	return g
}

type recorder struct {
	replies []Reply
}

func (r *recorder) Send(_ context.Context, reply Reply) error {
	r.replies = append(r.replies, reply)
	return nil
}

func (r *recorder) last(t *testing.T) Reply {
	t.Helper()
	if len(r.replies) == 0 {
		t.Fatal("no replies recorded")
	}
	return r.replies[len(r.replies)-1]
}

type delivery struct {
	chatID int64
	reply  Reply
}

type fakeBroadcaster struct {
	sent   []delivery
	failTo map[int64]bool
}

func (b *fakeBroadcaster) SendTo(_ context.Context, chatID int64, r Reply) error {
	if b.failTo[chatID] {
		return errors.New("bot was blocked by the user")
	}
	b.sent = append(b.sent, delivery{chatID: chatID, reply: r})
	return nil
}

type harness struct {
	t        *testing.T
	router   *Router
	catalog  *fakeCatalog
	sessions *state.Store
	bc       *fakeBroadcaster
}

func newHarness(t *testing.T, club Club) *harness {
	t.Helper()
	h := &harness{
		t:        t,
		catalog:  newFakeCatalog(),
		sessions: state.NewStore(),
		bc:       &fakeBroadcaster{failTo: map[int64]bool{}},
	}
	r, err := New(Options{
		Catalog:     h.catalog,
		Sessions:    h.sessions,
		Gate:        NewGate([]int64{adminID}),
		Broadcaster: h.bc,
		Club:        club,
		Now:         func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("new router: %v", err)
	}
	h.router = r
	return h
}

func (h *harness) dispatch(u Update) (Result, *recorder) {
	h.t.Helper()
	rec := &recorder{}
	res, err := h.router.Dispatch(context.Background(), u, rec)
	if err != nil {
		h.t.Fatalf("dispatch %+v: %v", u, err)
	}
	return res, rec
}

func (h *harness) text(user int64, text string) (Result, *recorder) {
	h.t.Helper()
	return h.dispatch(Update{UserID: user, ChatID: user, Kind: KindText, Text: text})
}

func (h *harness) command(user int64, name, args string) (Result, *recorder) {
	h.t.Helper()
	return h.dispatch(Update{UserID: user, ChatID: user, Kind: KindCommand, Command: name, Args: args})
}

func (h *harness) callback(user int64, payload string) (Result, *recorder) {
	h.t.Helper()
	return h.dispatch(Update{UserID: user, ChatID: user, Kind: KindCallback, Payload: payload})
}

func (h *harness) photo(user int64, ref string) (Result, *recorder) {
	h.t.Helper()
	return h.dispatch(Update{UserID: user, ChatID: user, Kind: KindPhoto, PhotoRef: ref})
}

func (h *harness) stateOf(user int64) state.State {
	return h.sessions.Get(user).State
}

func expectOutcome(t *testing.T, res Result, want string) {
	t.Helper()
	if res.Outcome != want {
		t.Fatalf("%s outcome = %q, want %q", res.Handler, res.Outcome, want)
	}
}
