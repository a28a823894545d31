package store

import (
	"database/sql"
	"fmt"

	"github.com/tvforge/tvcatalog/internal/catalog"
)

// RecordPlayback appends a playback event for the channel. The referenced
// channel must exist.
func (s *Store) RecordPlayback(channelID int64) error {
	_, err := s.db.Exec(`INSERT INTO playback_history (channel_id) VALUES (?)`, channelID)
	if err != nil {
		return fmt.Errorf("store record playback: %w", err)
	}
	return nil
}

// GetPlaybackHistory returns the raw playback log, newest first.
func (s *Store) GetPlaybackHistory(limit int) ([]catalog.PlaybackEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`SELECT h.id, h.channel_id, h.played_at, c.name, c.logo, c.category, c.country
		FROM playback_history h
		JOIN channels c ON c.id = h.channel_id
		ORDER BY h.played_at DESC, h.id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store playback history: %w", err)
	}
	defer rows.Close()

	var out []catalog.PlaybackEntry
	for rows.Next() {
		var e catalog.PlaybackEntry
		var logo, category, country sql.NullString
		if err := rows.Scan(&e.ID, &e.ChannelID, &e.PlayedAt, &e.Name, &logo, &category, &country); err != nil {
			return nil, fmt.Errorf("store playback history: %w", err)
		}
		e.Logo = stringOf(logo)
		e.Category = stringOf(category)
		e.Country = stringOf(country)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store playback history: %w", err)
	}
	return out, nil
}

// GetRecentlyWatched returns distinct channels ordered by their latest
// playback, newest first.
func (s *Store) GetRecentlyWatched(limit int) ([]catalog.Channel, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`SELECT `+channelColumns+`, MAX(h.played_at) AS last_played
		FROM channels c
		JOIN playback_history h ON h.channel_id = c.id
		GROUP BY c.id
		ORDER BY last_played DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store recently watched: %w", err)
	}
	defer rows.Close()

	var out []catalog.Channel
	for rows.Next() {
		ch, err := scanChannelRecent(rows)
		if err != nil {
			return nil, fmt.Errorf("store recently watched: %w", err)
		}
		out = append(out, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store recently watched: %w", err)
	}
	return out, nil
}
