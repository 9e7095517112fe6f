// Package catalog persists users, events and games with sqlx.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/m3rciful/gameclub/club/domain"
	"github.com/m3rciful/gameclub/core/logger"
)

// Routing keys published after successful mutations.
const (
	TopicEventCreated = "event.created"
	TopicGameCreated  = "game.created"
	TopicGameUpdated  = "game.updated"
	TopicGameDeleted  = "game.deleted"
)

var tracer = otel.Tracer("github.com/m3rciful/gameclub/club/catalog")

// Publisher receives catalog change notifications.
type Publisher interface {
	Publish(ctx context.Context, key string, payload any) error
}

// Option customises a Store.
type Option func(*Store)

// WithPublisher makes the store announce mutations. Publish failures are
// logged and never fail the mutation.
func WithPublisher(p Publisher) Option {
	return func(s *Store) { s.pub = p }
}

// WithClock overrides the clock used for user registration timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store implements the club catalog on top of sqlx.
type Store struct {
	db  *sqlx.DB
	pub Publisher
	now func() time.Time
}

// New wraps an open, migrated database.
func New(db *sqlx.DB, opts ...Option) *Store {
	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type eventRow struct {
	ID              int64          `db:"id"`
	Name            string         `db:"name"`
	Description     sql.NullString `db:"description"`
	StartsAt        int64          `db:"starts_at"`
	DurationMinutes int            `db:"duration_minutes"`
	Location        sql.NullString `db:"location"`
	Organizer       sql.NullString `db:"organizer"`
	Author          sql.NullString `db:"author"`
}

func (r eventRow) toDomain() domain.Event {
	return domain.Event{
		ID:              r.ID,
		Name:            r.Name,
		Description:     nullable(r.Description),
		StartsAt:        time.Unix(r.StartsAt, 0).UTC(),
		DurationMinutes: r.DurationMinutes,
		Location:        nullable(r.Location),
		Organizer:       nullable(r.Organizer),
		Author:          nullable(r.Author),
	}
}

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func (s *Store) span(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs,
		attribute.String("db.system", s.db.DriverName()),
		attribute.String("db.operation", op),
	)
	return tracer.Start(ctx, "catalog."+op, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))
}

func finish(span trace.Span, err error) {
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// EnsureUser records the Telegram user once; repeated calls are no-ops.
func (s *Store) EnsureUser(ctx context.Context, tgID int64) (err error) {
	ctx, span := s.span(ctx, "ensure_user", attribute.Int64("user.id", tgID))
	defer func() { finish(span, err) }()

	_, err = s.db.ExecContext(ctx, s.db.Rebind(
		`INSERT INTO users (tg_id, registered_at) VALUES (?, ?) ON CONFLICT (tg_id) DO NOTHING`),
		tgID, s.now().Unix())
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

// ListUserIDs returns every registered Telegram id in registration order.
func (s *Store) ListUserIDs(ctx context.Context) (ids []int64, err error) {
	ctx, span := s.span(ctx, "list_users")
	defer func() { finish(span, err) }()

	if err = s.db.SelectContext(ctx, &ids, `SELECT tg_id FROM users ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return ids, nil
}

// ListUpcomingEvents returns events starting strictly after now, earliest first.
func (s *Store) ListUpcomingEvents(ctx context.Context, now time.Time) (events []domain.Event, err error) {
	ctx, span := s.span(ctx, "list_upcoming_events")
	defer func() { finish(span, err) }()

	var rows []eventRow
	err = s.db.SelectContext(ctx, &rows, s.db.Rebind(
		`SELECT id, name, description, starts_at, duration_minutes, location, organizer, author
		FROM events WHERE starts_at > ? ORDER BY starts_at, id`), now.Unix())
	if err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	events = make([]domain.Event, 0, len(rows))
	for _, r := range rows {
		events = append(events, r.toDomain())
	}
	return events, nil
}

// CreateEvent validates and inserts e, returning it with its id.
func (s *Store) CreateEvent(ctx context.Context, e domain.Event) (_ domain.Event, err error) {
	if err := e.Validate(); err != nil {
		return domain.Event{}, fmt.Errorf("create event: %w", err)
	}
	ctx, span := s.span(ctx, "create_event")
	defer func() { finish(span, err) }()

	err = s.db.QueryRowxContext(ctx, s.db.Rebind(
		`INSERT INTO events (name, description, starts_at, duration_minutes, location, organizer, author)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		e.Name, e.Description, e.StartsAt.Unix(), e.DurationMinutes, e.Location, e.Organizer, e.Author,
	).Scan(&e.ID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("create event: %w", err)
	}
	// Stored with second precision.
	e.StartsAt = time.Unix(e.StartsAt.Unix(), 0).UTC()
	span.SetAttributes(attribute.Int64("event.id", e.ID))
	s.publish(ctx, TopicEventCreated, e.ID, e)
	return e, nil
}

// CreateGame validates and inserts g, returning it with its id.
func (s *Store) CreateGame(ctx context.Context, g domain.Game) (_ domain.Game, err error) {
	if err := g.Validate(); err != nil {
		return domain.Game{}, fmt.Errorf("create game: %w", err)
	}
	ctx, span := s.span(ctx, "create_game")
	defer func() { finish(span, err) }()

	err = s.db.QueryRowxContext(ctx, s.db.Rebind(
		`INSERT INTO games (name, description, genre, photo, author) VALUES (?, ?, ?, ?, ?) RETURNING id`),
		g.Name, g.Description, g.Genre, g.Photo, g.Author,
	).Scan(&g.ID)
	if err != nil {
		return domain.Game{}, fmt.Errorf("create game: %w", err)
	}
	span.SetAttributes(attribute.Int64("game.id", g.ID))
	s.publish(ctx, TopicGameCreated, g.ID, g)
	return g, nil
}

// ListGames returns the whole catalog ordered by name.
func (s *Store) ListGames(ctx context.Context) (games []domain.Game, err error) {
	ctx, span := s.span(ctx, "list_games")
	defer func() { finish(span, err) }()
	return s.listGames(ctx)
}

func (s *Store) listGames(ctx context.Context) ([]domain.Game, error) {
	var games []domain.Game
	if err := s.db.SelectContext(ctx, &games,
		`SELECT id, name, description, genre, photo, author FROM games`); err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	// Sorted here so ordering does not depend on the database collation.
	sort.SliceStable(games, func(i, j int) bool {
		a, b := strings.ToLower(games[i].Name), strings.ToLower(games[j].Name)
		if a != b {
			return a < b
		}
		return games[i].ID < games[j].ID
	})
	return games, nil
}

// FindGamesByName matches a case-insensitive substring of the name; "" matches all.
func (s *Store) FindGamesByName(ctx context.Context, query string) (games []domain.Game, err error) {
	ctx, span := s.span(ctx, "find_games_by_name")
	defer func() { finish(span, err) }()
	return s.filterGames(ctx, query, func(g domain.Game) string { return g.Name })
}

// FindGamesByGenre matches a case-insensitive substring of the genre tags.
func (s *Store) FindGamesByGenre(ctx context.Context, query string) (games []domain.Game, err error) {
	ctx, span := s.span(ctx, "find_games_by_genre")
	defer func() { finish(span, err) }()
	return s.filterGames(ctx, query, func(g domain.Game) string {
		if g.Genre == nil {
			return ""
		}
		return *g.Genre
	})
}

// filterGames folds case in Go; SQLite LOWER/LIKE only fold ASCII and genres
// are often Cyrillic.
func (s *Store) filterGames(ctx context.Context, query string, field func(domain.Game) string) ([]domain.Game, error) {
	all, err := s.listGames(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	out := make([]domain.Game, 0, len(all))
	for _, g := range all {
		if strings.Contains(strings.ToLower(field(g)), needle) {
			out = append(out, g)
		}
	}
	return out, nil
}

// GetGame returns the game or domain.ErrNotFound.
func (s *Store) GetGame(ctx context.Context, id int64) (g domain.Game, err error) {
	ctx, span := s.span(ctx, "get_game", attribute.Int64("game.id", id))
	defer func() { finish(span, err) }()

	err = s.db.GetContext(ctx, &g, s.db.Rebind(
		`SELECT id, name, description, genre, photo, author FROM games WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Game{}, fmt.Errorf("game %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Game{}, fmt.Errorf("get game: %w", err)
	}
	return g, nil
}

// UpdateGame applies only the fields present in p. An unknown id is a no-op.
func (s *Store) UpdateGame(ctx context.Context, id int64, p domain.GamePatch) (err error) {
	if p.Empty() {
		return nil
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return fmt.Errorf("update game: %w", domain.Invalid("name", "The name must not be empty."))
	}
	ctx, span := s.span(ctx, "update_game", attribute.Int64("game.id", id))
	defer func() { finish(span, err) }()

	var (
		sets []string
		args []any
	)
	cleared := make(map[domain.EditableField]bool, len(p.Clear))
	for _, f := range p.Clear {
		if f != domain.FieldName {
			cleared[f] = true
		}
	}
	add := func(f domain.EditableField, v *string) {
		switch {
		case cleared[f]:
			sets = append(sets, string(f)+" = NULL")
		case v != nil:
			sets = append(sets, string(f)+" = ?")
			args = append(args, *v)
		}
	}
	add(domain.FieldName, p.Name)
	add(domain.FieldDescription, p.Description)
	add(domain.FieldGenre, p.Genre)
	add(domain.FieldPhoto, p.Photo)
	add(domain.FieldAuthor, p.Author)
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, s.db.Rebind(
		`UPDATE games SET `+strings.Join(sets, ", ")+` WHERE id = ?`), args...)
	if err != nil {
		return fmt.Errorf("update game: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.publish(ctx, TopicGameUpdated, id, p)
	}
	return nil
}

// DeleteGame removes the game. An unknown id is a no-op.
func (s *Store) DeleteGame(ctx context.Context, id int64) (err error) {
	ctx, span := s.span(ctx, "delete_game", attribute.Int64("game.id", id))
	defer func() { finish(span, err) }()

	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM games WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.publish(ctx, TopicGameDeleted, id, nil)
	}
	return nil
}

// CountGames returns the catalog size.
func (s *Store) CountGames(ctx context.Context) (n int, err error) {
	ctx, span := s.span(ctx, "count_games")
	defer func() { finish(span, err) }()
	if err = s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM games`); err != nil {
		return 0, fmt.Errorf("count games: %w", err)
	}
	return n, nil
}

// PingContext reports database reachability for readiness probes.
func (s *Store) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type changeMessage struct {
	ID   int64 `json:"id"`
	Data any   `json:"data,omitempty"`
}

func (s *Store) publish(ctx context.Context, key string, id int64, data any) {
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(ctx, key, changeMessage{ID: id, Data: data}); err != nil {
		logger.Warn(ctx, logger.CompCatalog, "catalog.publish_failed",
			slog.String("op", key),
			slog.Int64("id", id),
			slog.String("err", err.Error()),
		)
	}
}
