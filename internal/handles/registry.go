// Package handles maps opaque int64 tokens to Go objects for callers on
// the far side of the C boundary. Go pointers may not cross that boundary,
// so every handle handed out is a token into a registry.
//
// Tokens sharing one refcount group keep the group's resource alive until
// the last of them is released, regardless of which token came first. A
// released token is never resolvable again and its value is never reused.
package handles

import "sync"

// Registry maps tokens to refcounted entries. The zero token is never
// issued, so callers can use 0 as their null handle.
type Registry struct {
	mu      sync.Mutex
	next    int64
	entries map[int64]*entry
}

type entry struct {
	value any
	group *group
}

type group struct {
	refs    int
	cleanup func()
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[int64]*entry)}
}

// Register adds value under a fresh token with its own refcount group.
// cleanup, if non-nil, runs exactly once when the group's last token is
// released.
func (r *Registry) Register(value any, cleanup func()) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.register(value, &group{refs: 0, cleanup: cleanup})
}

// Get resolves a live token. Released and never-issued tokens both report
// false.
func (r *Registry) Get(token int64) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[token]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Retain issues a new token resolving to value and sharing the refcount
// group of token. It fails if token is not live. The new token must be
// released independently; releasing it does not invalidate token.
func (r *Registry) Retain(token int64, value any) (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[token]
	if !ok {
		return 0, false
	}
	return r.register(value, e.group), true
}

// Release invalidates a token. It reports whether the token was live and
// whether its release was the group's last, in which case the group's
// cleanup has run.
func (r *Registry) Release(token int64) (last, ok bool) {
	r.mu.Lock()
	e, present := r.entries[token]
	if !present {
		r.mu.Unlock()
		return false, false
	}
	delete(r.entries, token)
	e.group.refs--
	isLast := e.group.refs == 0
	cleanup := e.group.cleanup
	r.mu.Unlock()

	if isLast && cleanup != nil {
		cleanup()
	}
	return isLast, true
}

// Len reports the number of live tokens.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) register(value any, g *group) int64 {
	r.next++
	g.refs++
	r.entries[r.next] = &entry{value: value, group: g}
	return r.next
}
