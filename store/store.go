// Package store persists items, labels, and logins in a sqlite database.
// One Store wraps one connection; a session opens its own Store and shares
// it with its sub-managers.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"pkt.systems/pslog"

	"pkt.systems/toodle/schema"

	_ "modernc.org/sqlite"
)

// Store holds one sqlite connection and the CRUD surface the bridge and
// session sub-managers delegate to.
type Store struct {
	db  *sql.DB
	uri string
	log pslog.Logger
}

// Open opens (creating if needed) the sqlite database at uri.
func Open(uri string) (*Store, error) {
	return OpenWithLogger(uri, nil)
}

// OpenWithLogger opens the store with a logger for diagnostics.
func OpenWithLogger(uri string, logger pslog.Logger) (*Store, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, errors.New("store uri is required")
	}
	if !strings.HasPrefix(uri, "file:") && uri != ":memory:" {
		if dir := filepath.Dir(uri); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create store directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", uri)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("exec %q: %w", pragma, err)
		}
	}

	if logger != nil {
		logger = logger.With("store_uri", uri)
	}
	s := &Store{db: db, uri: uri, log: logger}
	if err := s.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

func (s *Store) ensureSchema() error {
	ddl := `
	CREATE TABLE IF NOT EXISTS labels (
		name  TEXT PRIMARY KEY,
		color TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS items (
		uuid            TEXT PRIMARY KEY,
		name            TEXT NOT NULL,
		due_date        INTEGER,
		completion_date INTEGER,
		created_at      INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS item_labels (
		item_uuid TEXT NOT NULL REFERENCES items(uuid) ON DELETE CASCADE,
		name      TEXT NOT NULL,
		color     TEXT NOT NULL DEFAULT '',
		position  INTEGER NOT NULL,
		PRIMARY KEY(item_uuid, name, color)
	);

	CREATE TABLE IF NOT EXISTS logins (
		uuid     TEXT PRIMARY KEY,
		username TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_item_labels_name ON item_labels(name);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// URI reports the uri the store was opened with.
func (s *Store) URI() string {
	return s.uri
}

// Close closes the underlying connection. Safe to call more than once.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	db := s.db
	s.db = nil
	if s.log != nil {
		s.log.Debug("store close")
	}
	return db.Close()
}

// CreateLabel creates a label. A label whose name already exists fails
// with schema.ErrBadLabel.
func (s *Store) CreateLabel(name, color string) (schema.Label, error) {
	if strings.TrimSpace(name) == "" {
		return schema.Label{}, fmt.Errorf("empty label name: %w", schema.ErrBadLabel)
	}
	_, err := s.db.Exec(`INSERT INTO labels (name, color) VALUES (?, ?)`, name, color)
	if err != nil {
		return schema.Label{}, fmt.Errorf("insert label %q: %w", name, schema.ErrBadLabel)
	}
	return schema.Label{Name: name, Color: color}, nil
}

// LabelByName fetches a label. An absent name fails with schema.ErrBadLabel.
func (s *Store) LabelByName(name string) (schema.Label, error) {
	var label schema.Label
	err := s.db.QueryRow(`SELECT name, color FROM labels WHERE name = ?`, name).
		Scan(&label.Name, &label.Color)
	if errors.Is(err, sql.ErrNoRows) {
		return schema.Label{}, fmt.Errorf("label %q: %w", name, schema.ErrBadLabel)
	}
	if err != nil {
		return schema.Label{}, fmt.Errorf("fetch label %q: %w", name, err)
	}
	return label, nil
}

// AllLabels lists every label, ordered by name.
func (s *Store) AllLabels() ([]schema.Label, error) {
	rows, err := s.db.Query(`SELECT name, color FROM labels ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query labels: %w", err)
	}
	defer rows.Close()
	labels := []schema.Label{}
	for rows.Next() {
		var label schema.Label
		if err := rows.Scan(&label.Name, &label.Color); err != nil {
			return nil, fmt.Errorf("scan label: %w", err)
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

// CreateItem inserts an item. A missing uuid is assigned; the item's
// label sequence is stored as-is.
func (s *Store) CreateItem(item schema.Item) (schema.Item, error) {
	if strings.TrimSpace(item.UUID) == "" {
		item.UUID = uuid.NewString()
	}
	if item.Labels == nil {
		item.Labels = []schema.Label{}
	}
	tx, err := s.db.Begin()
	if err != nil {
		return schema.Item{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(
		`INSERT INTO items (uuid, name, due_date, completion_date, created_at) VALUES (?, ?, ?, ?, ?)`,
		item.UUID, item.Name, item.DueDate, item.CompletionDate, time.Now().Unix(),
	)
	if err != nil {
		return schema.Item{}, fmt.Errorf("insert item %q: %w", item.UUID, err)
	}
	if err := insertItemLabels(tx, item.UUID, item.Labels); err != nil {
		return schema.Item{}, err
	}
	if err := tx.Commit(); err != nil {
		return schema.Item{}, fmt.Errorf("commit item %q: %w", item.UUID, err)
	}
	if s.log != nil {
		s.log.Debug("item created", "item", item.UUID)
	}
	return item, nil
}

// FetchItem loads an item by uuid. An absent uuid fails with
// schema.ErrBadItem.
func (s *Store) FetchItem(itemUUID string) (schema.Item, error) {
	var item schema.Item
	err := s.db.QueryRow(
		`SELECT uuid, name, due_date, completion_date FROM items WHERE uuid = ?`, itemUUID,
	).Scan(&item.UUID, &item.Name, &item.DueDate, &item.CompletionDate)
	if errors.Is(err, sql.ErrNoRows) {
		return schema.Item{}, fmt.Errorf("item %q: %w", itemUUID, schema.ErrBadItem)
	}
	if err != nil {
		return schema.Item{}, fmt.Errorf("fetch item %q: %w", itemUUID, err)
	}
	labels, err := s.itemLabels(itemUUID)
	if err != nil {
		return schema.Item{}, err
	}
	item.Labels = labels
	return item, nil
}

// UpdateItem rewrites an item's fields and label sequence. The item must
// exist.
func (s *Store) UpdateItem(item schema.Item) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(
		`UPDATE items SET name = ?, due_date = ?, completion_date = ? WHERE uuid = ?`,
		item.Name, item.DueDate, item.CompletionDate, item.UUID,
	)
	if err != nil {
		return fmt.Errorf("update item %q: %w", item.UUID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update item %q: %w", item.UUID, err)
	}
	if affected == 0 {
		return fmt.Errorf("item %q: %w", item.UUID, schema.ErrBadItem)
	}
	if _, err := tx.Exec(`DELETE FROM item_labels WHERE item_uuid = ?`, item.UUID); err != nil {
		return fmt.Errorf("clear item labels %q: %w", item.UUID, err)
	}
	if err := insertItemLabels(tx, item.UUID, item.Labels); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit item %q: %w", item.UUID, err)
	}
	return nil
}

// DeleteItem removes an item by uuid. Deleting an absent uuid fails with
// schema.ErrBadItem.
func (s *Store) DeleteItem(itemUUID string) error {
	res, err := s.db.Exec(`DELETE FROM items WHERE uuid = ?`, itemUUID)
	if err != nil {
		return fmt.Errorf("delete item %q: %w", itemUUID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete item %q: %w", itemUUID, err)
	}
	if affected == 0 {
		return fmt.Errorf("item %q: %w", itemUUID, schema.ErrBadItem)
	}
	return nil
}

// ItemsWithLabels lists items carrying at least one of the named labels,
// in creation order. An empty filter lists every item.
func (s *Store) ItemsWithLabels(names []string) ([]schema.Item, error) {
	query := `SELECT uuid FROM items ORDER BY created_at, rowid`
	args := []any{}
	if len(names) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(names)), ",")
		query = `SELECT DISTINCT i.uuid FROM items i
			JOIN item_labels il ON il.item_uuid = i.uuid
			WHERE il.name IN (` + placeholders + `)
			ORDER BY i.created_at, i.rowid`
		for _, name := range names {
			args = append(args, name)
		}
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	uuids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan item uuid: %w", err)
		}
		uuids = append(uuids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	items := []schema.Item{}
	for _, id := range uuids {
		item, err := s.FetchItem(id)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// CreateLogin creates a login record with a fresh uuid.
func (s *Store) CreateLogin(username string) (schema.Login, error) {
	login := schema.Login{UUID: uuid.NewString(), Username: username}
	_, err := s.db.Exec(`INSERT INTO logins (uuid, username) VALUES (?, ?)`, login.UUID, login.Username)
	if err != nil {
		return schema.Login{}, fmt.Errorf("insert login: %w", err)
	}
	return login, nil
}

// AllLogins lists every login record.
func (s *Store) AllLogins() ([]schema.Login, error) {
	rows, err := s.db.Query(`SELECT uuid, username FROM logins ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query logins: %w", err)
	}
	defer rows.Close()
	logins := []schema.Login{}
	for rows.Next() {
		var login schema.Login
		if err := rows.Scan(&login.UUID, &login.Username); err != nil {
			return nil, fmt.Errorf("scan login: %w", err)
		}
		logins = append(logins, login)
	}
	return logins, rows.Err()
}

// Ping verifies the connection is still usable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) itemLabels(itemUUID string) ([]schema.Label, error) {
	rows, err := s.db.Query(
		`SELECT name, color FROM item_labels WHERE item_uuid = ? ORDER BY position`, itemUUID,
	)
	if err != nil {
		return nil, fmt.Errorf("query item labels %q: %w", itemUUID, err)
	}
	defer rows.Close()
	labels := []schema.Label{}
	for rows.Next() {
		var label schema.Label
		if err := rows.Scan(&label.Name, &label.Color); err != nil {
			return nil, fmt.Errorf("scan item label: %w", err)
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

func insertItemLabels(tx *sql.Tx, itemUUID string, labels []schema.Label) error {
	for pos, label := range labels {
		if _, err := tx.Exec(
			`INSERT INTO item_labels (item_uuid, name, color, position) VALUES (?, ?, ?, ?)`,
			itemUUID, label.Name, label.Color, pos,
		); err != nil {
			return fmt.Errorf("attach label %q to %q: %w", label.Name, itemUUID, schema.ErrBadLabel)
		}
	}
	return nil
}
