// Package catalog defines the records flowing through the ingestion
// pipeline: parsed playlist channels, stored channel rows, and guide
// programme entries. The playlist and epg packages produce these; the
// store persists and queries them.
package catalog

// Channel is one broadcast channel. When produced by the playlist parser,
// ID and timestamps are zero; the store assigns them on upsert.
type Channel struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
	// URL is the stream URL and the sole uniqueness key: re-importing the
	// same URL overwrites the prior row rather than duplicating it.
	URL      string `json:"url"`
	Logo     string `json:"logo,omitempty"`
	Category string `json:"category,omitempty"`
	Country  string `json:"country,omitempty"`
	Language string `json:"language,omitempty"`
	// Network is the classified broadcast network; empty until the store
	// runs the classifier at write time (or the source supplied one).
	Network string `json:"network,omitempty"`
	// TVGID joins the channel with guide programme entries.
	TVGID      string `json:"tvg_id,omitempty"`
	TVGName    string `json:"tvg_name,omitempty"`
	GroupTitle string `json:"group_title,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
	UpdatedAt  string `json:"updated_at,omitempty"`

	// IsFavorite is populated on read paths that join against favorites.
	IsFavorite bool `json:"is_favorite,omitempty"`
	// LastPlayed is populated by recently-watched queries ("YYYY-MM-DD HH:MM:SS").
	LastPlayed string `json:"last_played,omitempty"`
}

// Programme is one guide entry. ChannelID is zero until the store resolves
// the TVGID against known channels at save time. Times are naive local
// "YYYY-MM-DD HH:MM:SS" strings exactly as sliced from the source document.
type Programme struct {
	ID          int64  `json:"id,omitempty"`
	ChannelID   int64  `json:"channel_id,omitempty"`
	TVGID       string `json:"tvg_id"`
	Title       string `json:"title"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
}

// PlaybackEntry is one playback-history row joined with channel identity,
// as returned by flat history listings.
type PlaybackEntry struct {
	ID        int64  `json:"id"`
	ChannelID int64  `json:"channel_id"`
	PlayedAt  string `json:"played_at"`
	Name      string `json:"channel_name"`
	Logo      string `json:"logo,omitempty"`
	Category  string `json:"category,omitempty"`
	Country   string `json:"country,omitempty"`
}

// CustomPlaylist is a named, denormalized snapshot of channels. Channels is
// stored as an opaque JSON blob, so deleting a channel later does not mutate
// saved playlists.
type CustomPlaylist struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Channels  []Channel `json:"channels"`
	CreatedAt string    `json:"created_at"`
	UpdatedAt string    `json:"updated_at"`
}
