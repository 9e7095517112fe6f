package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/m3rciful/gameclub/club/domain"
	"github.com/m3rciful/gameclub/core/logger"
	"github.com/m3rciful/gameclub/core/telegram/keyboard"
	"github.com/m3rciful/gameclub/core/telegram/state"
)

// Dispatch outcomes reported in Result.
const (
	OutcomeOK       = "ok"
	OutcomeFail     = "fail"
	OutcomeSkip     = "skip"
	OutcomeDenied   = "denied"
	OutcomeInvalid  = "invalid"
	OutcomeNotFound = "not_found"
)

// Club holds the presentation settings of the club.
type Club struct {
	// Location is used to read and render event times. Nil means UTC.
	Location *time.Location
	About    string
	Contacts string
	// Genres are offered as filter buttons under the catalog.
	Genres []string
	// AnnounceEvents broadcasts every confirmed event to all users.
	AnnounceEvents bool
}

// Options configures a Router.
type Options struct {
	Catalog     Catalog
	Sessions    *state.Store
	Gate        Gate
	Broadcaster Broadcaster
	Club        Club
	Now         func() time.Time
}

// Result describes how one update was handled.
type Result struct {
	Handler string
	Outcome string
}

// CommandInfo describes a slash command for menus and help.
type CommandInfo struct {
	Name        string
	Description string
	AdminOnly   bool
}

type handlerFunc func(ctx context.Context, req *request) error

type route struct {
	name   string
	admin  bool
	handle handlerFunc
}

type stage struct {
	route
	accepts func(Update) bool
}

type prefixRoute struct {
	prefix string
	route
}

type command struct {
	info CommandInfo
	route
}

// request is the per-update view handed to handlers.
type request struct {
	Update
	session state.Session
	out     Responder
}

// Router dispatches updates to stage handlers first, then to standalone
// commands, buttons and selection payloads. Unmatched updates are dropped.
type Router struct {
	catalog     Catalog
	sessions    *state.Store
	gate        Gate
	broadcaster Broadcaster
	club        Club
	now         func() time.Time

	stages    map[state.State]stage
	commands  []command
	buttons   map[string]route
	callbacks map[string]route
	prefixes  []prefixRoute
}

// New builds a Router. A nil session store gets a fresh in-memory one.
func New(opts Options) (*Router, error) {
	if opts.Catalog == nil {
		return nil, errors.New("bot: catalog is required")
	}
	r := &Router{
		catalog:     opts.Catalog,
		sessions:    opts.Sessions,
		gate:        opts.Gate,
		broadcaster: opts.Broadcaster,
		club:        opts.Club,
		now:         opts.Now,
	}
	if r.sessions == nil {
		r.sessions = state.NewStore()
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.club.Location == nil {
		r.club.Location = time.UTC
	}
	r.register()
	return r, nil
}

func (r *Router) register() {
	r.stages = make(map[state.State]stage)
	r.buttons = make(map[string]route)
	r.callbacks = make(map[string]route)

	r.registerGeneral()
	r.registerEvents()
	r.registerGames()
	r.registerBrowse()
	r.registerAdmin()
	r.registerBroadcast()
}

func (r *Router) addStage(st state.State, admin bool, accepts func(Update) bool, h handlerFunc) {
	r.stages[st] = stage{
		route:   route{name: "stage." + string(st), admin: admin, handle: h},
		accepts: accepts,
	}
}

func (r *Router) addCommand(info CommandInfo, h handlerFunc) {
	r.commands = append(r.commands, command{
		info:  info,
		route: route{name: "command." + info.Name, admin: info.AdminOnly, handle: h},
	})
}

func (r *Router) addButton(label, name string, h handlerFunc) {
	r.buttons[label] = route{name: "button." + name, handle: h}
}

func (r *Router) addCallback(payload, name string, admin bool, h handlerFunc) {
	r.callbacks[payload] = route{name: "callback." + name, admin: admin, handle: h}
}

// addPrefix routes are tried in registration order, so longer prefixes that
// share a head with shorter ones must be added first.
func (r *Router) addPrefix(prefix, name string, admin bool, h handlerFunc) {
	r.prefixes = append(r.prefixes, prefixRoute{
		prefix: prefix,
		route:  route{name: "callback." + name, admin: admin, handle: h},
	})
}

// Commands lists the registered slash commands in registration order.
func (r *Router) Commands() []CommandInfo {
	out := make([]CommandInfo, 0, len(r.commands))
	for _, c := range r.commands {
		out = append(out, c.info)
	}
	return out
}

// Sessions exposes the session store, mainly for diagnostics.
func (r *Router) Sessions() *state.Store {
	return r.sessions
}

// Dispatch handles one update. Handler failures are answered and mapped to
// an outcome; only unexpected errors are returned.
func (r *Router) Dispatch(ctx context.Context, u Update, out Responder) (res Result, err error) {
	sess := r.sessions.Get(u.UserID)
	rt, ok := r.match(u, sess)
	if !ok {
		logger.Debug(ctx, logger.CompDialogue, "dispatch.dropped",
			slog.String("kind", u.Kind.String()),
			slog.String("stage", string(sess.State)),
		)
		return Result{Handler: "unmatched", Outcome: OutcomeSkip}, nil
	}
	res.Handler = rt.name
	ctx = logger.WithHandler(ctx, rt.name)

	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, logger.CompDialogue, "dispatch.panic",
				slog.Any("panic", p),
				slog.String("stack", string(debug.Stack())),
			)
			res.Outcome = OutcomeFail
			err = fmt.Errorf("%s: panic: %v", rt.name, p)
		}
	}()

	req := &request{Update: u, session: sess, out: out}
	herr := r.run(ctx, rt, req)
	res.Outcome, err = r.settle(ctx, req, herr)
	return res, err
}

func (r *Router) run(ctx context.Context, rt route, req *request) error {
	if rt.admin && !r.gate.IsAdmin(req.UserID) {
		logger.Warn(ctx, logger.CompDialogue, "access.denied",
			slog.String("handler", rt.name),
		)
		return domain.ErrPermissionDenied
	}
	return rt.handle(ctx, req)
}

func (r *Router) match(u Update, sess state.Session) (route, bool) {
	if st, ok := r.stages[sess.State]; ok && st.accepts(u) {
		return st.route, true
	}
	switch u.Kind {
	case KindCommand:
		name := strings.ToLower(u.Command)
		for _, c := range r.commands {
			if c.info.Name == name {
				return c.route, true
			}
		}
	case KindText:
		if rt, ok := r.buttons[strings.TrimSpace(u.Text)]; ok {
			return rt, true
		}
	case KindCallback:
		if rt, ok := r.callbacks[u.Payload]; ok {
			return rt, true
		}
		for _, p := range r.prefixes {
			if strings.HasPrefix(u.Payload, p.prefix) {
				return p.route, true
			}
		}
	}
	return route{}, false
}

// settle maps handler errors onto user replies and session effects.
func (r *Router) settle(ctx context.Context, req *request, err error) (string, error) {
	var verr *domain.ValidationError
	switch {
	case err == nil:
		return OutcomeOK, nil
	case errors.Is(err, domain.ErrPermissionDenied):
		return OutcomeDenied, r.say(ctx, req, msgDenied, nil)
	case errors.As(err, &verr):
		logger.Debug(ctx, logger.CompDialogue, "input.rejected",
			slog.String("field", verr.Field),
			slog.String("stage", string(req.session.State)),
		)
		return OutcomeInvalid, r.say(ctx, req, "⚠️ "+verr.Reason, nil)
	case errors.Is(err, domain.ErrNotFound):
		r.sessions.Clear(req.UserID)
		return OutcomeNotFound, r.say(ctx, req, msgNotFound, nil)
	}
	if serr := r.say(ctx, req, msgFailure, nil); serr != nil {
		err = errors.Join(err, serr)
	}
	return OutcomeFail, err
}

func (r *Router) say(ctx context.Context, req *request, text string, kb *keyboard.Layout) error {
	return req.out.Send(ctx, Reply{Text: text, Keyboard: kb})
}

func (r *Router) sayMarkdown(ctx context.Context, req *request, text string, kb *keyboard.Layout) error {
	return req.out.Send(ctx, Reply{Text: text, Markdown: true, Keyboard: kb})
}

// advance stores value under field and moves the session to next with a prompt.
func (r *Router) advance(ctx context.Context, req *request, field string, value any, next state.State, prompt string, kb *keyboard.Layout) error {
	r.sessions.SetField(req.UserID, field, value)
	r.sessions.SetState(req.UserID, next)
	logger.Debug(ctx, logger.CompDialogue, "stage.advanced",
		slog.String("stage", string(req.session.State)),
		slog.String("next_stage", string(next)),
		slog.String("field", field),
	)
	return r.say(ctx, req, prompt, kb)
}

func textOnly(u Update) bool { return u.Kind == KindText }

func textOrPhoto(u Update) bool { return u.Kind == KindText || u.Kind == KindPhoto }

func labelIn(labels ...string) func(Update) bool {
	return func(u Update) bool {
		if u.Kind != KindText {
			return false
		}
		text := strings.TrimSpace(u.Text)
		for _, l := range labels {
			if text == l {
				return true
			}
		}
		return false
	}
}
