package bot

// Gate is the static administrator allow-list.
type Gate struct {
	admins map[int64]struct{}
}

// NewGate builds a gate from configured ids.
func NewGate(ids []int64) Gate {
	g := Gate{admins: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		g.admins[id] = struct{}{}
	}
	return g
}

// IsAdmin reports whether id is an administrator.
func (g Gate) IsAdmin(id int64) bool {
	_, ok := g.admins[id]
	return ok
}

// Len returns the number of administrators.
func (g Gate) Len() int {
	return len(g.admins)
}
