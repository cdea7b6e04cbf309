// Package mobile is the mobile-runtime view of the session boundary,
// shaped for gomobile bind: handles are int64, strings cross as plain
// text, failures as errors. Semantics are identical to the C surface;
// only the marshaling differs.
package mobile

import (
	"errors"

	"pkt.systems/toodle/internal/handles"
	"pkt.systems/toodle/toodle"
)

// ErrBadHandle indicates a handle that is not live.
var ErrBadHandle = errors.New("handle is not live")

var registry = handles.NewRegistry()

// NewToodle opens a session against the store at dbPath and returns its
// handle. The caller owns the handle and must Destroy it exactly once.
func NewToodle(dbPath string) (int64, error) {
	session, err := toodle.New(dbPath)
	if err != nil {
		return 0, err
	}
	return registry.Register(session, func() { _ = session.Close() }), nil
}

// Destroy releases any handle obtained from this package. Destroying the
// null handle 0 is a no-op. Sub-manager handles survive their parent's
// destroy; the store closes when the last handle is released.
func Destroy(handle int64) {
	if handle == 0 {
		return
	}
	registry.Release(handle)
}

// LoginManager returns a new, independently destroyable handle to the
// session's login manager.
func LoginManager(handle int64) (int64, error) {
	session, err := resolveSession(handle)
	if err != nil {
		return 0, err
	}
	token, ok := registry.Retain(handle, session.Logins())
	if !ok {
		return 0, ErrBadHandle
	}
	return token, nil
}

// ListManager returns a new, independently destroyable handle to the
// session's list manager.
func ListManager(handle int64) (int64, error) {
	session, err := resolveSession(handle)
	if err != nil {
		return 0, err
	}
	token, ok := registry.Retain(handle, session.List())
	if !ok {
		return 0, ErrBadHandle
	}
	return token, nil
}

// NewCategory creates a category label through the session's list
// manager.
func NewCategory(handle int64, name string) error {
	session, err := resolveSession(handle)
	if err != nil {
		return err
	}
	_, err = session.List().CreateCategory(name)
	return err
}

func resolveSession(handle int64) (*toodle.Toodle, error) {
	value, ok := registry.Get(handle)
	if !ok {
		return nil, ErrBadHandle
	}
	session, ok := value.(*toodle.Toodle)
	if !ok {
		return nil, ErrBadHandle
	}
	return session, nil
}
