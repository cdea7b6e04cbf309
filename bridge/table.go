package bridge

import (
	"sync"

	"pkt.systems/toodle/schema"
	"pkt.systems/toodle/toodle"
)

// Table maps session ids to live sessions for the lifetime of one bridge
// loop. Ids are handed out strictly increasing from 1 and never reused;
// looking up an absent id is an expected outcome, not a fault.
type Table struct {
	mu      sync.Mutex
	next    schema.ToodleID
	toodles map[schema.ToodleID]*toodle.Toodle
}

// NewTable builds an empty table whose first id will be 1.
func NewTable() *Table {
	return &Table{next: 1, toodles: make(map[schema.ToodleID]*toodle.Toodle)}
}

// Add inserts a session at the next id and returns that id.
func (t *Table) Add(session *toodle.Toodle) schema.ToodleID {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.next
	t.next++
	t.toodles[id] = session
	return id
}

// Get looks up a session by id.
func (t *Table) Get(id schema.ToodleID) (*toodle.Toodle, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	session, ok := t.toodles[id]
	return session, ok
}

// Remove drops a session from the table, closing its store, and reports
// whether the id was present. A removed or never-created id behaves
// identically on every later operation.
func (t *Table) Remove(id schema.ToodleID) bool {
	t.mu.Lock()
	session, ok := t.toodles[id]
	delete(t.toodles, id)
	t.mu.Unlock()
	if ok {
		_ = session.Close()
	}
	return ok
}

// Len reports the number of live sessions.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.toodles)
}
