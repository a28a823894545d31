package store

import (
	"encoding/json"
	"fmt"

	"github.com/tvforge/tvcatalog/internal/catalog"
)

// SaveCustomPlaylist stores a named, ordered channel snapshot as an
// opaque JSON blob and returns the playlist id. The snapshot is not
// validated against the channels table and does not track later edits.
func (s *Store) SaveCustomPlaylist(name string, channels []catalog.Channel) (int64, error) {
	if channels == nil {
		channels = []catalog.Channel{}
	}
	blob, err := json.Marshal(channels)
	if err != nil {
		return 0, fmt.Errorf("store save playlist: %w", err)
	}
	res, err := s.db.Exec(`INSERT INTO custom_playlists (name, channels_json) VALUES (?, ?)`, name, string(blob))
	if err != nil {
		return 0, fmt.Errorf("store save playlist: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store save playlist: %w", err)
	}
	return id, nil
}

// CustomPlaylists lists stored playlists, newest first. A playlist whose
// blob no longer parses is returned with a nil channel list.
func (s *Store) CustomPlaylists() ([]catalog.CustomPlaylist, error) {
	rows, err := s.db.Query(`SELECT id, name, channels_json, created_at, updated_at
		FROM custom_playlists ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("store playlists: %w", err)
	}
	defer rows.Close()

	var out []catalog.CustomPlaylist
	for rows.Next() {
		var p catalog.CustomPlaylist
		var blob string
		if err := rows.Scan(&p.ID, &p.Name, &blob, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("store playlists: %w", err)
		}
		if err := json.Unmarshal([]byte(blob), &p.Channels); err != nil {
			p.Channels = nil
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store playlists: %w", err)
	}
	return out, nil
}
