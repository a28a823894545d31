// Package store owns the durable catalog: channels, favorites, playback
// history, guide entries, and custom playlists, on SQLite.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/tvforge/tvcatalog/internal/network"
)

// Options tunes a Store. Zero values get defaults in Open.
type Options struct {
	// RetentionDays is how long guide rows are kept; swept on each
	// SaveEPGData call. Default 7.
	RetentionDays int
	// Classifier infers a network label from (name, tvgName). Default:
	// network.Classify. Overridable in tests.
	Classifier func(name, tvgName string) string
}

// Store is the catalog database handle. Construct with Open and pass it
// explicitly to whatever needs it; there is no package-level instance.
type Store struct {
	db            *sql.DB
	retentionDays int
	classify      func(name, tvgName string) string
}

// Open opens (creating if needed) the SQLite database at path and ensures
// the schema. The parent directory is created if missing.
func Open(path string, opts Options) (*Store, error) {
	if dir := filepath.Dir(filepath.Clean(path)); dir != "." && dir != "/" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store open: create dir: %w", err)
		}
	}
	// foreign_keys must be enabled per connection for the cascade deletes;
	// busy_timeout keeps concurrent imports from failing fast on SQLITE_BUSY.
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store open: %w", err)
	}
	s := &Store{
		db:            db,
		retentionDays: opts.RetentionDays,
		classify:      opts.Classifier,
	}
	if s.retentionDays <= 0 {
		s.retentionDays = 7
	}
	if s.classify == nil {
		s.classify = network.Classify
	}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS channels (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			url TEXT NOT NULL,
			logo TEXT,
			category TEXT,
			country TEXT,
			language TEXT,
			network TEXT,
			tvg_id TEXT,
			tvg_name TEXT,
			group_title TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(url)
		)`,
		`CREATE TABLE IF NOT EXISTS favorites (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			channel_id INTEGER NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (channel_id) REFERENCES channels(id) ON DELETE CASCADE,
			UNIQUE(channel_id)
		)`,
		`CREATE TABLE IF NOT EXISTS custom_playlists (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			channels_json TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS epg_data (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			channel_id INTEGER,
			tvg_id TEXT,
			title TEXT NOT NULL,
			start_time TIMESTAMP NOT NULL,
			end_time TIMESTAMP NOT NULL,
			description TEXT,
			category TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (channel_id) REFERENCES channels(id) ON DELETE CASCADE,
			UNIQUE(tvg_id, title, start_time)
		)`,
		`CREATE TABLE IF NOT EXISTS playback_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			channel_id INTEGER NOT NULL,
			played_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (channel_id) REFERENCES channels(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_channels_category ON channels(category)`,
		`CREATE INDEX IF NOT EXISTS idx_channels_country ON channels(country)`,
		`CREATE INDEX IF NOT EXISTS idx_channels_language ON channels(language)`,
		`CREATE INDEX IF NOT EXISTS idx_channels_network ON channels(network)`,
		`CREATE INDEX IF NOT EXISTS idx_channels_tvg_id ON channels(tvg_id)`,
		`CREATE INDEX IF NOT EXISTS idx_favorites_channel ON favorites(channel_id)`,
		`CREATE INDEX IF NOT EXISTS idx_epg_tvg_id ON epg_data(tvg_id)`,
		`CREATE INDEX IF NOT EXISTS idx_epg_start_time ON epg_data(start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_playback_history_played_at ON playback_history(played_at DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("store schema: %w", err)
		}
	}
	return nil
}

// nullable maps "" to NULL so absent metadata stays distinguishable from
// empty strings in filters and DISTINCT listings.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func stringOf(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}
