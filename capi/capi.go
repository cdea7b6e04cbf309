// Package main exports the C-compatible boundary over sessions. Build
// with -buildmode=c-shared or -buildmode=c-archive.
//
// Contract: every handle returned here is owned by the caller and must be
// destroyed exactly once through its matching destroy entry point.
// Destroying a handle twice, or using it after destroy, violates the
// contract; the registry fails such calls fast instead of corrupting
// memory, but callers must not rely on that. Handle 0 is the null handle:
// operations on it fail fast, destroy on it is a no-op.
package main

/*
#include <stdint.h>
*/
import "C"

import (
	"pkt.systems/toodle/internal/handles"
	"pkt.systems/toodle/toodle"
)

var registry = handles.NewRegistry()

// new_toodle opens a session against the store at uri and returns its
// handle, or 0 if the store could not be opened.
//
//export new_toodle
func new_toodle(uri *C.char) C.int64_t {
	session, err := toodle.New(C.GoString(uri))
	if err != nil {
		return 0
	}
	token := registry.Register(session, func() { _ = session.Close() })
	return C.int64_t(token)
}

// toodle_destroy releases a session handle. Sub-manager handles obtained
// from it stay valid; the store closes when the last handle is released.
//
//export toodle_destroy
func toodle_destroy(handle C.int64_t) {
	if handle == 0 {
		return
	}
	registry.Release(int64(handle))
}

// toodle_logins returns a new, independently destroyable handle to the
// session's login manager, or 0 if the session handle is not live.
//
//export toodle_logins
func toodle_logins(handle C.int64_t) C.int64_t {
	session, ok := resolveSession(int64(handle))
	if !ok {
		return 0
	}
	token, ok := registry.Retain(int64(handle), session.Logins())
	if !ok {
		return 0
	}
	return C.int64_t(token)
}

// toodle_list returns a new, independently destroyable handle to the
// session's list manager, or 0 if the session handle is not live.
//
//export toodle_list
func toodle_list(handle C.int64_t) C.int64_t {
	session, ok := resolveSession(int64(handle))
	if !ok {
		return 0
	}
	token, ok := registry.Retain(int64(handle), session.List())
	if !ok {
		return 0
	}
	return C.int64_t(token)
}

// toodle_logins_destroy releases a login manager handle.
//
//export toodle_logins_destroy
func toodle_logins_destroy(handle C.int64_t) {
	if handle == 0 {
		return
	}
	registry.Release(int64(handle))
}

// toodle_list_destroy releases a list manager handle.
//
//export toodle_list_destroy
func toodle_list_destroy(handle C.int64_t) {
	if handle == 0 {
		return
	}
	registry.Release(int64(handle))
}

func resolveSession(token int64) (*toodle.Toodle, bool) {
	value, ok := registry.Get(token)
	if !ok {
		return nil, false
	}
	session, ok := value.(*toodle.Toodle)
	return session, ok
}

func main() {}
