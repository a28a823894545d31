package store

import (
	"database/sql"
	"fmt"

	"github.com/tvforge/tvcatalog/internal/catalog"
)

// ResolveChannelIDs fills ChannelID on each entry whose tvg_id matches a
// known channel and reports how many matched. Entries with no match keep
// a zero ChannelID and are still stored.
func (s *Store) ResolveChannelIDs(entries []catalog.Programme) (int, error) {
	rows, err := s.db.Query(`SELECT id, tvg_id FROM channels WHERE tvg_id IS NOT NULL AND tvg_id != ''`)
	if err != nil {
		return 0, fmt.Errorf("store resolve channel ids: %w", err)
	}
	defer rows.Close()

	byTVGID := make(map[string]int64)
	for rows.Next() {
		var id int64
		var tvgID string
		if err := rows.Scan(&id, &tvgID); err != nil {
			return 0, fmt.Errorf("store resolve channel ids: %w", err)
		}
		byTVGID[tvgID] = id
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("store resolve channel ids: %w", err)
	}

	matched := 0
	for i := range entries {
		if id, ok := byTVGID[entries[i].TVGID]; ok {
			entries[i].ChannelID = id
			matched++
		}
	}
	return matched, nil
}

// SaveEPGData sweeps guide rows older than the retention window and then
// upserts every entry keyed by (tvg_id, title, start_time). Re-saving the
// same feed leaves one row per programme. Returns how many entries were
// written.
func (s *Store) SaveEPGData(entries []catalog.Programme) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("store save epg: %w", err)
	}
	defer tx.Rollback()

	cutoff := fmt.Sprintf("-%d days", s.retentionDays)
	if _, err := tx.Exec(`DELETE FROM epg_data WHERE start_time < datetime('now', ?)`, cutoff); err != nil {
		return 0, fmt.Errorf("store save epg: sweep: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO epg_data (channel_id, tvg_id, title, start_time, end_time, description, category)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(tvg_id, title, start_time) DO UPDATE SET
			channel_id = excluded.channel_id,
			end_time = excluded.end_time,
			description = excluded.description,
			category = excluded.category`)
	if err != nil {
		return 0, fmt.Errorf("store save epg: %w", err)
	}
	defer stmt.Close()

	saved := 0
	for _, e := range entries {
		var channelID any
		if e.ChannelID != 0 {
			channelID = e.ChannelID
		}
		_, err := stmt.Exec(channelID, e.TVGID, e.Title, e.StartTime, e.EndTime,
			nullable(e.Description), nullable(e.Category))
		if err != nil {
			return 0, fmt.Errorf("store save epg: %w", err)
		}
		saved++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("store save epg: %w", err)
	}
	return saved, nil
}

// GetEPGForChannel returns guide entries for a channel, matched by row id
// or tvg_id, from roughly an hour ago onward in start order. With neither
// key set it returns nothing.
func (s *Store) GetEPGForChannel(channelID int64, tvgID string) ([]catalog.Programme, error) {
	var (
		rows *sql.Rows
		err  error
	)
	const cols = `id, channel_id, tvg_id, title, start_time, end_time, description, category`
	switch {
	case channelID != 0:
		rows, err = s.db.Query(`SELECT `+cols+` FROM epg_data
			WHERE channel_id = ? AND start_time >= datetime('now', '-1 hour')
			ORDER BY start_time ASC`, channelID)
	case tvgID != "":
		rows, err = s.db.Query(`SELECT `+cols+` FROM epg_data
			WHERE tvg_id = ? AND start_time >= datetime('now', '-1 hour')
			ORDER BY start_time ASC`, tvgID)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store get epg: %w", err)
	}
	defer rows.Close()

	var out []catalog.Programme
	for rows.Next() {
		var p catalog.Programme
		var channelID sql.NullInt64
		var desc, category sql.NullString
		err := rows.Scan(&p.ID, &channelID, &p.TVGID, &p.Title, &p.StartTime, &p.EndTime, &desc, &category)
		if err != nil {
			return nil, fmt.Errorf("store get epg: %w", err)
		}
		p.ChannelID = channelID.Int64
		p.Description = stringOf(desc)
		p.Category = stringOf(category)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store get epg: %w", err)
	}
	return out, nil
}
