package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_defaults(t *testing.T) {
	for _, k := range []string{
		"TVCATALOG_DB", "TVCATALOG_PLAYLIST_URL", "TVCATALOG_EPG_URL",
		"TVCATALOG_PLAYLIST_TIMEOUT", "TVCATALOG_EPG_TIMEOUT",
		"TVCATALOG_EPG_RETENTION_DAYS",
	} {
		os.Unsetenv(k)
	}
	c := Load()
	if c.PlaylistURL != DefaultPlaylistURL {
		t.Errorf("PlaylistURL = %q", c.PlaylistURL)
	}
	if c.GuideURL != DefaultGuideURL {
		t.Errorf("GuideURL = %q", c.GuideURL)
	}
	if c.PlaylistTimeout != 30*time.Second || c.GuideTimeout != 120*time.Second {
		t.Errorf("timeouts = %v / %v", c.PlaylistTimeout, c.GuideTimeout)
	}
	if c.EPGRetentionDays != 7 {
		t.Errorf("EPGRetentionDays = %d", c.EPGRetentionDays)
	}
}

func TestLoad_envOverrides(t *testing.T) {
	t.Setenv("TVCATALOG_DB", "/tmp/cat.db")
	t.Setenv("TVCATALOG_EPG_TIMEOUT", "3m")
	t.Setenv("TVCATALOG_EPG_RETENTION_DAYS", "14")
	c := Load()
	if c.DBPath != "/tmp/cat.db" {
		t.Errorf("DBPath = %q", c.DBPath)
	}
	if c.GuideTimeout != 3*time.Minute {
		t.Errorf("GuideTimeout = %v", c.GuideTimeout)
	}
	if c.EPGRetentionDays != 14 {
		t.Errorf("EPGRetentionDays = %d", c.EPGRetentionDays)
	}
}

func TestLoad_badValuesFallBack(t *testing.T) {
	t.Setenv("TVCATALOG_EPG_RETENTION_DAYS", "not-a-number")
	t.Setenv("TVCATALOG_PLAYLIST_TIMEOUT", "soon")
	c := Load()
	if c.EPGRetentionDays != 7 {
		t.Errorf("EPGRetentionDays = %d; want default 7", c.EPGRetentionDays)
	}
	if c.PlaylistTimeout != 30*time.Second {
		t.Errorf("PlaylistTimeout = %v; want default", c.PlaylistTimeout)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\nTVCATALOG_TEST_A=plain\nexport TVCATALOG_TEST_B=\"quoted value\"\nbroken line\n=nokey\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TVCATALOG_TEST_A", "")
	t.Setenv("TVCATALOG_TEST_B", "")
	if err := LoadEnvFile(path); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("TVCATALOG_TEST_A"); got != "plain" {
		t.Errorf("TVCATALOG_TEST_A = %q", got)
	}
	if got := os.Getenv("TVCATALOG_TEST_B"); got != "quoted value" {
		t.Errorf("TVCATALOG_TEST_B = %q", got)
	}
}

func TestLoadEnvFile_missingIsNotError(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Errorf("missing file: %v", err)
	}
}
