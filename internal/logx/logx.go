// Package logx annotates context loggers with protocol identifiers.
package logx

import (
	"context"

	"pkt.systems/pslog"

	"pkt.systems/toodle/schema"
)

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}

// WithToodle annotates the logger with a session id when one is set.
func WithToodle(ctx context.Context, id schema.ToodleID) pslog.Logger {
	log := pslog.Ctx(ctx)
	if id != 0 {
		log = log.With("toodle", int64(id))
	}
	return log
}

// WithItem annotates the logger with an item uuid when available.
func WithItem(log pslog.Logger, itemUUID string) pslog.Logger {
	if itemUUID != "" {
		log = log.With("item", itemUUID)
	}
	return log
}

// WithLabel annotates the logger with a label name when available.
func WithLabel(log pslog.Logger, name string) pslog.Logger {
	if name != "" {
		log = log.With("label", name)
	}
	return log
}
