package format

// Deref returns *p, or def when p is nil or points at the zero value.
func Deref[T comparable](p *T, def T) T {
	var zero T
	if p == nil || *p == zero {
		return def
	}
	return *p
}
