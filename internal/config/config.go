package config

import (
	"os"
	"strconv"
	"time"
)

// Defaults for the public iptv-org index and a commonly used gzipped US
// guide. Both are operator-overridable; the import commands also accept
// explicit URLs.
const (
	DefaultPlaylistURL = "https://iptv-org.github.io/iptv/index.m3u"
	DefaultGuideURL    = "https://epg.iris.digital/epg/us.xml.gz"
)

// Config holds catalog, fetch, and metrics settings.
type Config struct {
	// DBPath is the SQLite database file. The parent directory is created
	// on open if missing.
	DBPath string

	// Source documents.
	PlaylistURL string // channel-list (M3U) document
	GuideURL    string // XMLTV guide document (may be .xml.gz)

	// Fetch behavior. Guide documents can be very large, hence the
	// much longer guide timeout.
	PlaylistTimeout time.Duration
	GuideTimeout    time.Duration
	UserAgent       string

	// EPGRetentionDays is how long stored guide rows are kept; rows whose
	// start time is older are swept on each guide import.
	EPGRetentionDays int

	// MetricsAddr is the listen address for the Prometheus /metrics
	// endpoint served by the serve subcommand (e.g. ":9105").
	MetricsAddr string
}

// Load reads config from environment. Call LoadEnvFile(".env") before Load()
// to use a .env file.
func Load() *Config {
	c := &Config{
		DBPath:           getEnv("TVCATALOG_DB", "./tvcatalog.db"),
		PlaylistURL:      getEnv("TVCATALOG_PLAYLIST_URL", DefaultPlaylistURL),
		GuideURL:         getEnv("TVCATALOG_EPG_URL", DefaultGuideURL),
		PlaylistTimeout:  getEnvDuration("TVCATALOG_PLAYLIST_TIMEOUT", 30*time.Second),
		GuideTimeout:     getEnvDuration("TVCATALOG_EPG_TIMEOUT", 120*time.Second),
		UserAgent:        getEnv("TVCATALOG_USER_AGENT", "tvcatalog/1.0"),
		EPGRetentionDays: getEnvInt("TVCATALOG_EPG_RETENTION_DAYS", 7),
		MetricsAddr:      getEnv("TVCATALOG_METRICS_ADDR", ":9105"),
	}
	if c.PlaylistTimeout <= 0 {
		c.PlaylistTimeout = 30 * time.Second
	}
	if c.GuideTimeout <= 0 {
		c.GuideTimeout = 120 * time.Second
	}
	if c.EPGRetentionDays <= 0 {
		c.EPGRetentionDays = 7
	}
	return c
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
