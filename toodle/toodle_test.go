package toodle

import (
	"errors"
	"path/filepath"
	"testing"

	"pkt.systems/toodle/schema"
)

func newTestToodle(t *testing.T) *Toodle {
	t.Helper()
	session, err := New(filepath.Join(t.TempDir(), "toodle.db"))
	if err != nil {
		t.Fatalf("new toodle: %v", err)
	}
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func TestSubManagersShareTheStore(t *testing.T) {
	session := newTestToodle(t)

	// A mutation through one accessor is visible through the others.
	if _, err := session.List().CreateCategory("home"); err != nil {
		t.Fatalf("create category: %v", err)
	}
	labels, err := session.Store().AllLabels()
	if err != nil {
		t.Fatalf("all labels: %v", err)
	}
	if len(labels) != 1 || labels[0].Name != "home" {
		t.Fatalf("expected category visible via store, got %#v", labels)
	}

	if _, err := session.Logins().Create("alice"); err != nil {
		t.Fatalf("create login: %v", err)
	}
	logins, err := session.Store().AllLogins()
	if err != nil {
		t.Fatalf("all logins: %v", err)
	}
	if len(logins) != 1 {
		t.Fatalf("expected login visible via store, got %#v", logins)
	}
}

func TestAccessorsReturnLiveManagers(t *testing.T) {
	session := newTestToodle(t)
	if session.Logins() != session.Logins() {
		t.Fatalf("expected stable login manager")
	}
	if session.List() != session.List() {
		t.Fatalf("expected stable list manager")
	}
}

func TestCreateTodoResolvesLabelNames(t *testing.T) {
	session := newTestToodle(t)
	if _, err := session.Store().CreateLabel("home", "#00ff00"); err != nil {
		t.Fatalf("create label: %v", err)
	}

	item, err := session.List().CreateTodo("mow lawn", 1700000000, []string{"home"})
	if err != nil {
		t.Fatalf("create todo: %v", err)
	}
	if len(item.Labels) != 1 || item.Labels[0].Color != "#00ff00" {
		t.Fatalf("expected label resolved with color, got %#v", item.Labels)
	}

	_, err = session.List().CreateTodo("bad", 0, []string{"nope"})
	if !errors.Is(err, schema.ErrBadLabel) {
		t.Fatalf("expected ErrBadLabel for unknown label name, got %v", err)
	}
}

func TestMarkCompletedAndSetDue(t *testing.T) {
	session := newTestToodle(t)
	item, err := session.List().CreateTodo("mow lawn", 1700000000, nil)
	if err != nil {
		t.Fatalf("create todo: %v", err)
	}

	completed, err := session.List().MarkCompleted(item.UUID)
	if err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	if completed.CompletionDate == nil {
		t.Fatalf("expected completion date set")
	}

	rescheduled, err := session.List().SetDue(item.UUID, 1800000000)
	if err != nil {
		t.Fatalf("set due: %v", err)
	}
	if rescheduled.DueDate == nil || *rescheduled.DueDate != 1800000000 {
		t.Fatalf("expected due date updated, got %#v", rescheduled.DueDate)
	}

	if _, err := session.List().MarkCompleted("missing"); !errors.Is(err, schema.ErrBadItem) {
		t.Fatalf("expected ErrBadItem, got %v", err)
	}
}

func TestDeleteTodo(t *testing.T) {
	session := newTestToodle(t)
	item, err := session.List().CreateTodo("temp", 0, nil)
	if err != nil {
		t.Fatalf("create todo: %v", err)
	}
	if err := session.List().DeleteTodo(item.UUID); err != nil {
		t.Fatalf("delete todo: %v", err)
	}
	items, err := session.List().AllItems()
	if err != nil {
		t.Fatalf("all items: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items, got %#v", items)
	}
}

func TestNewFailsOnUnopenableStore(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatalf("expected error for empty uri")
	}
}
