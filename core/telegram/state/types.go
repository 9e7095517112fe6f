package state

// State identifies a dialogue stage.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
)

// Session is a snapshot of one user's dialogue: the current stage and the
// values collected so far.
type Session struct {
	State  State
	Fields map[string]any
}

// Idle reports whether no dialogue is active.
func (s Session) Idle() bool {
	return s.State == "" || s.State == StateIdle
}

// String returns a collected string field.
func (s Session) String(name string) (string, bool) {
	v, ok := s.Fields[name].(string)
	return v, ok
}

// Int returns a collected int field.
func (s Session) Int(name string) (int, bool) {
	v, ok := s.Fields[name].(int)
	return v, ok
}

// Int64 returns a collected int64 field.
func (s Session) Int64(name string) (int64, bool) {
	v, ok := s.Fields[name].(int64)
	return v, ok
}
