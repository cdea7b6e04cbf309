// Package toodle bundles one store connection with the login and list
// sub-managers that share it. A Toodle is the unit the bridge's session
// table and the native boundary's handles refer to.
package toodle

import (
	"pkt.systems/pslog"

	"pkt.systems/toodle/store"
)

// Toodle is one session: a store handle plus sub-managers aliasing the
// same connection. The sub-managers never operate on a different
// connection than the session's own store.
type Toodle struct {
	store  *store.Store
	logins *LoginManager
	list   *ListManager
}

// New opens the store at uri and builds the session around it. Fails only
// if the store open fails.
func New(uri string) (*Toodle, error) {
	return NewWithLogger(uri, nil)
}

// NewWithLogger opens the session with a logger for store diagnostics.
func NewWithLogger(uri string, logger pslog.Logger) (*Toodle, error) {
	st, err := store.OpenWithLogger(uri, logger)
	if err != nil {
		return nil, err
	}
	return &Toodle{
		store:  st,
		logins: &LoginManager{store: st},
		list:   &ListManager{store: st},
	}, nil
}

// Store returns the session's store handle.
func (t *Toodle) Store() *store.Store {
	return t.store
}

// Logins returns the live login sub-manager, not a copy. Mutations made
// through it are visible to every other holder.
func (t *Toodle) Logins() *LoginManager {
	return t.logins
}

// List returns the live list sub-manager, not a copy.
func (t *Toodle) List() *ListManager {
	return t.list
}

// Close releases the underlying store connection. The bridge calls this
// when a session leaves the table; handles handed across the native
// boundary release through their registry instead, which calls Close
// exactly once when the last token is released.
func (t *Toodle) Close() error {
	return t.store.Close()
}
