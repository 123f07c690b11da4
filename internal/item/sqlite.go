package item

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// ─── Config ──────────────────────────────────────────────────────────────────

// Config holds item store configuration.
type Config struct {
	DataDir          string
	MaxContentLength int
	MaxSearchResults int
}

// DefaultConfig returns the default configuration for the item store.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:          filepath.Join(home, ".weft"),
		MaxContentLength: 4000,
		MaxSearchResults: 20,
	}
}

// ─── SQLiteStore ─────────────────────────────────────────────────────────────

// SQLiteStore is the persistent item store backed by SQLite + FTS5.
// It implements the Store interface consumed by the reference engine
// and a few extra methods used by the MCP item tools.
type SQLiteStore struct {
	db  *sql.DB
	cfg Config
}

var _ Store = (*SQLiteStore)(nil)

// Open creates a SQLiteStore with the given configuration. It creates
// the data directory if needed, opens SQLite with WAL mode, and runs
// migrations.
func Open(cfg Config) (*SQLiteStore, error) {
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("item: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "items.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("item: open database: %w", err)
	}

	// SQLite performance pragmas
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("item: pragma %q: %w", p, err)
		}
	}

	s := &SQLiteStore{db: db, cfg: cfg}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("item: migration: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ─── Migrations ──────────────────────────────────────────────────────────────

func (s *SQLiteStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS items (
			id         TEXT PRIMARY KEY,
			type       TEXT NOT NULL DEFAULT 'todo',
			content    TEXT NOT NULL,
			status     TEXT NOT NULL DEFAULT 'open',
			metadata   TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE INDEX IF NOT EXISTS idx_items_status  ON items(status);
		CREATE INDEX IF NOT EXISTS idx_items_type    ON items(type);
		CREATE INDEX IF NOT EXISTS idx_items_created ON items(created_at DESC);

		CREATE VIRTUAL TABLE IF NOT EXISTS items_fts USING fts5(
			content,
			type,
			status,
			content='items',
			content_rowid='rowid'
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// FTS triggers (idempotent)
	var name string
	err := s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='trigger' AND name='items_fts_insert'",
	).Scan(&name)

	if err == sql.ErrNoRows {
		triggers := `
			CREATE TRIGGER items_fts_insert AFTER INSERT ON items BEGIN
				INSERT INTO items_fts(rowid, content, type, status)
				VALUES (new.rowid, new.content, new.type, new.status);
			END;

			CREATE TRIGGER items_fts_delete AFTER DELETE ON items BEGIN
				INSERT INTO items_fts(items_fts, rowid, content, type, status)
				VALUES ('delete', old.rowid, old.content, old.type, old.status);
			END;

			CREATE TRIGGER items_fts_update AFTER UPDATE ON items BEGIN
				INSERT INTO items_fts(items_fts, rowid, content, type, status)
				VALUES ('delete', old.rowid, old.content, old.type, old.status);
				INSERT INTO items_fts(rowid, content, type, status)
				VALUES (new.rowid, new.content, new.type, new.status);
			END;
		`
		if _, err := s.db.Exec(triggers); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	return nil
}

// ─── Store interface ─────────────────────────────────────────────────────────

// LoadActiveItems returns every item in an active status, oldest first.
func (s *SQLiteStore) LoadActiveItems() ([]WorkItem, error) {
	return s.queryItems(
		`SELECT id, type, content, status, metadata, created_at, updated_at
		 FROM items
		 WHERE status IN (?, ?, ?)
		 ORDER BY created_at ASC`,
		StatusOpen, StatusInProgress, StatusBlocked,
	)
}

// GetHistoricalItem returns a historical item by id, or nil if the id
// is unknown or the item is still active.
func (s *SQLiteStore) GetHistoricalItem(id string) (*WorkItem, error) {
	items, err := s.queryItems(
		`SELECT id, type, content, status, metadata, created_at, updated_at
		 FROM items
		 WHERE id = ? AND status IN (?, ?)`,
		id, StatusDone, StatusDropped,
	)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// QueryHistory returns historical items whose content contains the
// keyword, case-insensitive. Substring match, not FTS: callers pass
// derived keywords and domain tags that may not be whole words.
func (s *SQLiteStore) QueryHistory(keyword string) ([]WorkItem, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, nil
	}
	pattern := "%" + escapeLike(strings.ToLower(keyword)) + "%"
	return s.queryItems(
		`SELECT id, type, content, status, metadata, created_at, updated_at
		 FROM items
		 WHERE status IN (?, ?) AND lower(content) LIKE ? ESCAPE '\'
		 ORDER BY created_at DESC
		 LIMIT ?`,
		StatusDone, StatusDropped, pattern, s.cfg.MaxSearchResults,
	)
}

// SaveWorkItem inserts or overwrites an item, metadata included.
func (s *SQLiteStore) SaveWorkItem(it *WorkItem) error {
	if it == nil || it.ID == "" {
		return fmt.Errorf("item: save: missing id")
	}
	if it.Status == "" {
		it.Status = StatusOpen
	}
	if it.Type == "" {
		it.Type = "todo"
	}
	if s.cfg.MaxContentLength > 0 && len(it.Content) > s.cfg.MaxContentLength {
		it.Content = it.Content[:s.cfg.MaxContentLength]
	}

	meta, err := json.Marshal(it.Metadata)
	if err != nil {
		return fmt.Errorf("item: marshal metadata: %w", err)
	}

	now := Now()
	if it.CreatedAt == "" {
		it.CreatedAt = now
	}
	it.UpdatedAt = now

	_, err = s.db.Exec(
		`INSERT INTO items (id, type, content, status, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			type       = excluded.type,
			content    = excluded.content,
			status     = excluded.status,
			metadata   = excluded.metadata,
			updated_at = excluded.updated_at`,
		it.ID, it.Type, it.Content, it.Status, string(meta), it.CreatedAt, it.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("item: save %s: %w", it.ID, err)
	}
	return nil
}

// ─── Extra queries (MCP item tools) ──────────────────────────────────────────

// GetItem returns any item by id regardless of status, or nil if absent.
func (s *SQLiteStore) GetItem(id string) (*WorkItem, error) {
	items, err := s.queryItems(
		`SELECT id, type, content, status, metadata, created_at, updated_at
		 FROM items WHERE id = ?`, id,
	)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// ListItems returns items filtered by status ("" for all), newest first.
func (s *SQLiteStore) ListItems(status string, limit int) ([]WorkItem, error) {
	if limit <= 0 || limit > s.cfg.MaxSearchResults {
		limit = s.cfg.MaxSearchResults
	}
	if status == "" {
		return s.queryItems(
			`SELECT id, type, content, status, metadata, created_at, updated_at
			 FROM items ORDER BY created_at DESC LIMIT ?`, limit,
		)
	}
	return s.queryItems(
		`SELECT id, type, content, status, metadata, created_at, updated_at
		 FROM items WHERE status = ? ORDER BY created_at DESC LIMIT ?`,
		status, limit,
	)
}

// Search runs an FTS5 query over item content, best match first.
func (s *SQLiteStore) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 || limit > s.cfg.MaxSearchResults {
		limit = s.cfg.MaxSearchResults
	}

	ftsQuery := sanitizeFTS(query)
	if ftsQuery == "" {
		items, err := s.ListItems("", limit)
		if err != nil {
			return nil, err
		}
		results := make([]SearchResult, len(items))
		for i, it := range items {
			results[i] = SearchResult{WorkItem: it}
		}
		return results, nil
	}

	rows, err := s.db.Query(
		`SELECT i.id, i.type, i.content, i.status, i.metadata, i.created_at, i.updated_at, fts.rank
		 FROM items_fts fts
		 JOIN items i ON i.rowid = fts.rowid
		 WHERE items_fts MATCH ?
		 ORDER BY fts.rank
		 LIMIT ?`,
		ftsQuery, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("item: search: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var sr SearchResult
		var meta string
		if err := rows.Scan(&sr.ID, &sr.Type, &sr.Content, &sr.Status, &meta, &sr.CreatedAt, &sr.UpdatedAt, &sr.Rank); err != nil {
			return nil, fmt.Errorf("item: scan search result: %w", err)
		}
		if err := unmarshalMetadata(meta, &sr.Metadata); err != nil {
			return nil, err
		}
		results = append(results, sr)
	}
	return results, rows.Err()
}

// DeleteItem removes an item permanently.
func (s *SQLiteStore) DeleteItem(id string) error {
	res, err := s.db.Exec(`DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("item: delete %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("item: %s not found", id)
	}
	return nil
}

// Stats returns aggregate item statistics.
func (s *SQLiteStore) Stats() (*Stats, error) {
	st := &Stats{ByType: map[string]int{}}

	rows, err := s.db.Query(`SELECT type, status, metadata FROM items`)
	if err != nil {
		return nil, fmt.Errorf("item: stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var typ, status, meta string
		if err := rows.Scan(&typ, &status, &meta); err != nil {
			return nil, fmt.Errorf("item: scan stats row: %w", err)
		}
		st.TotalItems++
		st.ByType[typ]++
		if IsActiveStatus(status) {
			st.ActiveItems++
		} else {
			st.HistoricalItems++
		}
		var m Metadata
		if err := unmarshalMetadata(meta, &m); err == nil {
			st.TotalReferences += len(m.SmartReferences)
		}
	}
	return st, rows.Err()
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func (s *SQLiteStore) queryItems(query string, args ...any) ([]WorkItem, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("item: query: %w", err)
	}
	defer rows.Close()

	var items []WorkItem
	for rows.Next() {
		var it WorkItem
		var meta string
		if err := rows.Scan(&it.ID, &it.Type, &it.Content, &it.Status, &meta, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("item: scan item: %w", err)
		}
		if err := unmarshalMetadata(meta, &it.Metadata); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func unmarshalMetadata(raw string, m *Metadata) error {
	if raw == "" || raw == "{}" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), m); err != nil {
		return fmt.Errorf("item: unmarshal metadata: %w", err)
	}
	return nil
}

// sanitizeFTS quotes every word so user input can't inject FTS5 syntax.
func sanitizeFTS(query string) string {
	words := strings.Fields(query)
	for i, w := range words {
		w = strings.Trim(w, `"`)
		words[i] = `"` + w + `"`
	}
	return strings.Join(words, " ")
}

// escapeLike escapes LIKE wildcards in user-supplied keywords.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
