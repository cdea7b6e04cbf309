package schema

import "errors"

var (
	// ErrBadRequest indicates a frame or JSON decode failure.
	ErrBadRequest = errors.New("malformed request")
	// ErrBadToodle indicates an operation addressed a toodle id absent
	// from the session table.
	ErrBadToodle = errors.New("unknown toodle")
	// ErrBadLabel indicates a store-level label operation failed.
	ErrBadLabel = errors.New("bad label")
	// ErrBadItem indicates a referenced item uuid was not found.
	ErrBadItem = errors.New("item not found")
)

// ErrorKind is the wire representation of a failure class.
type ErrorKind string

// Wire error kinds.
const (
	KindBadRequest ErrorKind = "BadRequest"
	KindBadToodle  ErrorKind = "BadToodle"
	KindBadLabel   ErrorKind = "BadLabel"
	KindBadItem    ErrorKind = "BadItem"
)

// KindOf classifies an error into its wire kind. Errors outside the
// taxonomy fall back to BadRequest so a response can always be written.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrBadToodle):
		return KindBadToodle
	case errors.Is(err, ErrBadLabel):
		return KindBadLabel
	case errors.Is(err, ErrBadItem):
		return KindBadItem
	default:
		return KindBadRequest
	}
}
