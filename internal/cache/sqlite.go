package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cascadelog/internal/cache/migrations"
	"cascadelog/internal/cascade"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteCache implements cascade.Cache on a local SQLite file.
// Reads never fail the reconciler: a corrupt or mismatched row is treated
// as absent.
type SQLiteCache struct {
	db   *sql.DB
	path string
}

var _ cascade.Cache = (*SQLiteCache)(nil)

// NewSQLiteCache opens (or creates) the cache database at path and brings
// its schema up to date. path can be ":memory:" for tests.
func NewSQLiteCache(path string) (*SQLiteCache, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating cache database: %w", err)
	}

	return &SQLiteCache{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite connection with appropriate
// PRAGMAs. Exported for tests that need a raw configured connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Wait for locks instead of failing when a playground server and a
	// second command touch the cache at once.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

func (c *SQLiteCache) Get(userID, date string) (*cascade.CacheEntry, error) {
	row := c.db.QueryRow(`
		SELECT id, day, state, description,
		       html_name, html_url, css_name, css_url, js_name, js_url
		FROM cache_entries
		WHERE user_id = ? AND day = ?`, userID, date)

	var (
		id, day, state, description    string
		htmlName, htmlURL              sql.NullString
		cssName, cssURL, jsName, jsURL sql.NullString
	)
	err := row.Scan(&id, &day, &state, &description,
		&htmlName, &htmlURL, &cssName, &cssURL, &jsName, &jsURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		// Fail open: an unreadable entry means "not submitted".
		return nil, nil
	}

	// Defense in depth: a row whose stored day disagrees with its key, or
	// that carries an unknown state, must never be visible.
	if day != date {
		return nil, nil
	}
	es := cascade.EntryState(state)
	if es != cascade.EntryStarted && es != cascade.EntrySubmitted {
		return nil, nil
	}

	entry := &cascade.CacheEntry{
		ID:          id,
		UserID:      userID,
		Date:        day,
		State:       es,
		Description: description,
	}
	entry.Files.HTML = fileRef(htmlName, htmlURL)
	entry.Files.CSS = fileRef(cssName, cssURL)
	entry.Files.JS = fileRef(jsName, jsURL)
	return entry, nil
}

func (c *SQLiteCache) Put(entry *cascade.CacheEntry) error {
	htmlName, htmlURL := fileCols(entry.Files.HTML)
	cssName, cssURL := fileCols(entry.Files.CSS)
	jsName, jsURL := fileCols(entry.Files.JS)

	// Callers stamp entry IDs; a direct write without one still gets a row ID.
	id := entry.ID
	if id == "" {
		id = uuid.New().String()
	}

	_, err := c.db.Exec(`
		INSERT INTO cache_entries
			(id, user_id, day, state, description,
			 html_name, html_url, css_name, css_url, js_name, js_url,
			 updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, day) DO UPDATE SET
			state = excluded.state,
			description = excluded.description,
			html_name = excluded.html_name,
			html_url = excluded.html_url,
			css_name = excluded.css_name,
			css_url = excluded.css_url,
			js_name = excluded.js_name,
			js_url = excluded.js_url,
			updated_at = excluded.updated_at`,
		id, entry.UserID, entry.Date, string(entry.State),
		entry.Description, htmlName, htmlURL, cssName, cssURL, jsName, jsURL,
		time.Now().UTC())
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

func (c *SQLiteCache) EvictStale(userID, currentDate string) error {
	_, err := c.db.Exec(`DELETE FROM cache_entries WHERE user_id = ? AND day != ?`,
		userID, currentDate)
	if err != nil {
		return fmt.Errorf("evicting stale cache entries: %w", err)
	}
	return nil
}

func (c *SQLiteCache) Clear(userID, date string) error {
	_, err := c.db.Exec(`DELETE FROM cache_entries WHERE user_id = ? AND day = ?`,
		userID, date)
	if err != nil {
		return fmt.Errorf("clearing cache entry: %w", err)
	}
	return nil
}

func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

func fileRef(name, url sql.NullString) *cascade.FileRef {
	if !name.Valid || name.String == "" {
		return nil
	}
	return &cascade.FileRef{Name: name.String, URL: url.String}
}

func fileCols(ref *cascade.FileRef) (sql.NullString, sql.NullString) {
	if ref == nil {
		return sql.NullString{}, sql.NullString{}
	}
	return sql.NullString{String: ref.Name, Valid: true},
		sql.NullString{String: ref.URL, Valid: ref.URL != ""}
}
