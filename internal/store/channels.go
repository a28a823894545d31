package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/tvforge/tvcatalog/internal/catalog"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("store: not found")

// Query filters and orders a channel listing. Zero-value fields are
// ignored; all set filters must match (AND).
type Query struct {
	Category string
	Country  string
	Language string
	Network  string
	// Search matches case-insensitive substrings of name, tvg_name,
	// category, or country.
	Search string
	// Sort is one of "name" (default), "country", "category", "recent".
	// "recent" orders by most recent playback, never-played channels last.
	Sort   string
	Limit  int
	Offset int
}

// AddChannel upserts ch keyed by stream URL and returns the row id. A
// conflicting URL has all metadata overwritten; the id and created_at are
// preserved so favorites and history survive re-imports. When ch.Network
// is empty the classifier fills it.
func (s *Store) AddChannel(ch catalog.Channel) (int64, error) {
	if ch.Network == "" {
		ch.Network = s.classify(ch.Name, ch.TVGName)
	}
	_, err := s.db.Exec(`
		INSERT INTO channels (name, url, logo, category, country, language, network, tvg_id, tvg_name, group_title)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			name = excluded.name,
			logo = excluded.logo,
			category = excluded.category,
			country = excluded.country,
			language = excluded.language,
			network = excluded.network,
			tvg_id = excluded.tvg_id,
			tvg_name = excluded.tvg_name,
			group_title = excluded.group_title,
			updated_at = CURRENT_TIMESTAMP`,
		ch.Name, ch.URL, nullable(ch.Logo), nullable(ch.Category), nullable(ch.Country),
		nullable(ch.Language), nullable(ch.Network), nullable(ch.TVGID), nullable(ch.TVGName),
		nullable(ch.GroupTitle))
	if err != nil {
		return 0, fmt.Errorf("store add channel: %w", err)
	}
	var id int64
	if err := s.db.QueryRow(`SELECT id FROM channels WHERE url = ?`, ch.URL).Scan(&id); err != nil {
		return 0, fmt.Errorf("store add channel: %w", err)
	}
	return id, nil
}

// AddChannels upserts every channel and returns how many rows were
// written. Individual failures abort the batch.
func (s *Store) AddChannels(chs []catalog.Channel) (int, error) {
	for i, ch := range chs {
		if _, err := s.AddChannel(ch); err != nil {
			return i, err
		}
	}
	return len(chs), nil
}

const channelColumns = `c.id, c.name, c.url, c.logo, c.category, c.country, c.language, c.network, c.tvg_id, c.tvg_name, c.group_title, c.created_at, c.updated_at`

func scanChannel(row interface{ Scan(...any) error }) (catalog.Channel, error) {
	var ch catalog.Channel
	var logo, category, country, language, netw, tvgID, tvgName, groupTitle sql.NullString
	err := row.Scan(&ch.ID, &ch.Name, &ch.URL, &logo, &category, &country, &language,
		&netw, &tvgID, &tvgName, &groupTitle, &ch.CreatedAt, &ch.UpdatedAt)
	if err != nil {
		return ch, err
	}
	ch.Logo = stringOf(logo)
	ch.Category = stringOf(category)
	ch.Country = stringOf(country)
	ch.Language = stringOf(language)
	ch.Network = stringOf(netw)
	ch.TVGID = stringOf(tvgID)
	ch.TVGName = stringOf(tvgName)
	ch.GroupTitle = stringOf(groupTitle)
	return ch, nil
}

// scanChannelRecent scans a row of channelColumns plus a trailing
// last_played aggregate.
func scanChannelRecent(rows *sql.Rows) (catalog.Channel, error) {
	var ch catalog.Channel
	var logo, category, country, language, netw, tvgID, tvgName, groupTitle, lastPlayed sql.NullString
	err := rows.Scan(&ch.ID, &ch.Name, &ch.URL, &logo, &category, &country, &language,
		&netw, &tvgID, &tvgName, &groupTitle, &ch.CreatedAt, &ch.UpdatedAt, &lastPlayed)
	if err != nil {
		return ch, err
	}
	ch.Logo = stringOf(logo)
	ch.Category = stringOf(category)
	ch.Country = stringOf(country)
	ch.Language = stringOf(language)
	ch.Network = stringOf(netw)
	ch.TVGID = stringOf(tvgID)
	ch.TVGName = stringOf(tvgName)
	ch.GroupTitle = stringOf(groupTitle)
	ch.LastPlayed = stringOf(lastPlayed)
	return ch, nil
}

func (q Query) whereClause() (string, []any) {
	var conds []string
	var args []any
	if q.Category != "" {
		conds = append(conds, "c.category = ?")
		args = append(args, q.Category)
	}
	if q.Country != "" {
		conds = append(conds, "c.country = ?")
		args = append(args, q.Country)
	}
	if q.Language != "" {
		conds = append(conds, "c.language = ?")
		args = append(args, q.Language)
	}
	if q.Network != "" {
		conds = append(conds, "c.network = ?")
		args = append(args, q.Network)
	}
	if q.Search != "" {
		needle := "%" + q.Search + "%"
		conds = append(conds, "(c.name LIKE ? OR c.tvg_name LIKE ? OR c.category LIKE ? OR c.country LIKE ?)")
		args = append(args, needle, needle, needle, needle)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// GetChannels lists channels matching q.
func (s *Store) GetChannels(q Query) ([]catalog.Channel, error) {
	where, args := q.whereClause()

	var sb strings.Builder
	if q.Sort == "recent" {
		sb.WriteString("SELECT " + channelColumns + ", MAX(h.played_at) AS last_played")
		sb.WriteString(" FROM channels c LEFT JOIN playback_history h ON h.channel_id = c.id")
		sb.WriteString(where)
		sb.WriteString(" GROUP BY c.id ORDER BY last_played IS NULL, last_played DESC, c.name COLLATE NOCASE ASC")
	} else {
		sb.WriteString("SELECT " + channelColumns + " FROM channels c")
		sb.WriteString(where)
		switch q.Sort {
		case "country":
			sb.WriteString(" ORDER BY c.country IS NULL, c.country ASC, c.name COLLATE NOCASE ASC")
		case "category":
			sb.WriteString(" ORDER BY c.category IS NULL, c.category ASC, c.name COLLATE NOCASE ASC")
		default:
			sb.WriteString(" ORDER BY c.name COLLATE NOCASE ASC")
		}
	}
	if q.Limit > 0 {
		sb.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, q.Limit, q.Offset)
	}

	rows, err := s.db.Query(sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("store get channels: %w", err)
	}
	defer rows.Close()

	var out []catalog.Channel
	for rows.Next() {
		var ch catalog.Channel
		if q.Sort == "recent" {
			ch, err = scanChannelRecent(rows)
		} else {
			ch, err = scanChannel(rows)
		}
		if err != nil {
			return nil, fmt.Errorf("store get channels: %w", err)
		}
		out = append(out, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store get channels: %w", err)
	}
	return out, nil
}

// GetChannelByID fetches a single channel by row id.
func (s *Store) GetChannelByID(id int64) (catalog.Channel, error) {
	ch, err := scanChannel(s.db.QueryRow(`SELECT `+channelColumns+` FROM channels c WHERE c.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return ch, ErrNotFound
	}
	if err != nil {
		return ch, fmt.Errorf("store get channel %d: %w", id, err)
	}
	return ch, nil
}

// CountChannels returns the total number of channels.
func (s *Store) CountChannels() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM channels`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store count channels: %w", err)
	}
	return n, nil
}

func (s *Store) distinct(column string) ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT ` + column + ` FROM channels WHERE ` + column + ` IS NOT NULL AND ` + column + ` != '' ORDER BY ` + column)
	if err != nil {
		return nil, fmt.Errorf("store distinct %s: %w", column, err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("store distinct %s: %w", column, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Categories lists distinct non-empty categories, sorted.
func (s *Store) Categories() ([]string, error) { return s.distinct("category") }

// Countries lists distinct non-empty countries, sorted.
func (s *Store) Countries() ([]string, error) { return s.distinct("country") }

// Networks lists distinct non-empty network labels, sorted.
func (s *Store) Networks() ([]string, error) { return s.distinct("network") }

// BackfillNetworks classifies every channel that has no network label yet
// and returns how many rows were updated.
func (s *Store) BackfillNetworks() (int, error) {
	rows, err := s.db.Query(`SELECT id, name, tvg_name FROM channels WHERE network IS NULL OR network = ''`)
	if err != nil {
		return 0, fmt.Errorf("store backfill networks: %w", err)
	}
	type cand struct {
		id      int64
		name    string
		tvgName string
	}
	var cands []cand
	for rows.Next() {
		var c cand
		var tvgName sql.NullString
		if err := rows.Scan(&c.id, &c.name, &tvgName); err != nil {
			rows.Close()
			return 0, fmt.Errorf("store backfill networks: %w", err)
		}
		c.tvgName = stringOf(tvgName)
		cands = append(cands, c)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, fmt.Errorf("store backfill networks: %w", err)
	}
	rows.Close()

	updated := 0
	for _, c := range cands {
		netw := s.classify(c.name, c.tvgName)
		if netw == "" {
			continue
		}
		if _, err := s.db.Exec(`UPDATE channels SET network = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, netw, c.id); err != nil {
			return updated, fmt.Errorf("store backfill networks: %w", err)
		}
		updated++
	}
	return updated, nil
}
