package store

import (
	"fmt"

	"github.com/tvforge/tvcatalog/internal/catalog"
)

// AddFavorite marks a channel as a favorite. Adding one that is already a
// favorite succeeds and changes nothing.
func (s *Store) AddFavorite(channelID int64) error {
	_, err := s.db.Exec(`INSERT OR IGNORE INTO favorites (channel_id) VALUES (?)`, channelID)
	if err != nil {
		return fmt.Errorf("store add favorite: %w", err)
	}
	return nil
}

// RemoveFavorite unmarks a channel and reports whether a row was removed.
func (s *Store) RemoveFavorite(channelID int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM favorites WHERE channel_id = ?`, channelID)
	if err != nil {
		return false, fmt.Errorf("store remove favorite: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("store remove favorite: %w", err)
	}
	return n > 0, nil
}

// IsFavorite reports whether a channel is currently a favorite.
func (s *Store) IsFavorite(channelID int64) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM favorites WHERE channel_id = ?`, channelID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("store is favorite: %w", err)
	}
	return n > 0, nil
}

// Favorites lists favorite channels, most recently added first.
func (s *Store) Favorites() ([]catalog.Channel, error) {
	rows, err := s.db.Query(`SELECT ` + channelColumns + ` FROM channels c
		JOIN favorites f ON f.channel_id = c.id
		ORDER BY f.created_at DESC, c.name COLLATE NOCASE ASC`)
	if err != nil {
		return nil, fmt.Errorf("store favorites: %w", err)
	}
	defer rows.Close()

	var out []catalog.Channel
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, fmt.Errorf("store favorites: %w", err)
		}
		ch.IsFavorite = true
		out = append(out, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store favorites: %w", err)
	}
	return out, nil
}
