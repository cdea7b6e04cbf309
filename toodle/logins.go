package toodle

import (
	"pkt.systems/toodle/schema"
	"pkt.systems/toodle/store"
)

// LoginManager exposes the store's login records. It shares the parent
// session's connection.
type LoginManager struct {
	store *store.Store
}

// Create adds a login record for username.
func (m *LoginManager) Create(username string) (schema.Login, error) {
	return m.store.CreateLogin(username)
}

// All lists every stored login.
func (m *LoginManager) All() ([]schema.Login, error) {
	return m.store.AllLogins()
}
