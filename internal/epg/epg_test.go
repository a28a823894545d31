package epg

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tvforge/tvcatalog/internal/catalog"
)

const sampleXMLTV = `<?xml version="1.0" encoding="UTF-8"?>
<tv source-info-name="test">
  <channel id="US.ABC">
    <display-name>ABC</display-name>
  </channel>
  <programme start="20240115180000 +0000" stop="20240115190000 +0000" channel="US.ABC">
    <title lang="en">Evening News</title>
    <desc>Headlines.</desc>
    <category>News</category>
  </programme>
  <programme start="20240115190000" stop="20240115200000" channel="US.ABC">
    <title>Late Show</title>
  </programme>
  <programme start="20240115200000" stop="20240115210000" channel="US.NBC">
  </programme>
  <programme start="20240115210000" stop="20240115220000" channel="">
    <title>Orphan</title>
  </programme>
</tv>
`

func TestParse_keepsOnlyCompleteEntries(t *testing.T) {
	entries := Parse(sampleXMLTV)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries; got %d", len(entries))
	}
	first := entries[0]
	if first.TVGID != "US.ABC" || first.Title != "Evening News" {
		t.Errorf("first = %+v", first)
	}
	if first.StartTime != "2024-01-15 18:00:00" || first.EndTime != "2024-01-15 19:00:00" {
		t.Errorf("times = %q / %q", first.StartTime, first.EndTime)
	}
	if first.Description != "Headlines." || first.Category != "News" {
		t.Errorf("desc/category = %q / %q", first.Description, first.Category)
	}
}

func TestParse_malformedYieldsEmpty(t *testing.T) {
	if got := Parse("<tv><programme></tv>"); len(got) != 0 {
		t.Errorf("malformed XML: got %d entries", len(got))
	}
	if got := Parse("   "); got != nil {
		t.Errorf("blank content: got %v", got)
	}
	if got := Parse("this is not xml at all"); len(got) != 0 {
		t.Errorf("non-XML: got %d entries", len(got))
	}
}

func TestParse_truncatedDocumentDiscardsDecodedEntries(t *testing.T) {
	// First programme is complete and would decode on its own; the
	// document then cuts off mid-element. The whole parse must yield
	// nothing, not the entries decoded before the truncation point.
	truncated := `<?xml version="1.0" encoding="UTF-8"?>
<tv>
  <programme start="20240115180000 +0000" stop="20240115190000 +0000" channel="US.ABC">
    <title>Evening News</title>
  </programme>
  <programme start="20240115190000" stop="20240115200000" channel="US.ABC">
    <title>Late`
	if got := Parse(truncated); len(got) != 0 {
		t.Errorf("truncated document: got %d entries; want 0", len(got))
	}
}

func TestParseTime(t *testing.T) {
	cases := []struct{ in, want string }{
		{"20240115180000 +0000", "2024-01-15 18:00:00"},
		{"20240115180000", "2024-01-15 18:00:00"},
		{"20240115180000 -0500", "2024-01-15 18:00:00"}, // offset discarded, not applied
		{"2024", "2024"}, // too short: returned unchanged
		{"", ""},
	}
	for _, c := range cases {
		if got := ParseTime(c.in); got != c.want {
			t.Errorf("ParseTime(%q) = %q; want %q", c.in, got, c.want)
		}
	}
}

func stamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

func TestCurrentAndUpcoming(t *testing.T) {
	now := time.Now()
	entries := []catalog.Programme{
		{TVGID: "a", Title: "On Now", StartTime: stamp(now.Add(-30 * time.Minute)), EndTime: stamp(now.Add(30 * time.Minute))},
		{TVGID: "a", Title: "Soon", StartTime: stamp(now.Add(2 * time.Hour)), EndTime: stamp(now.Add(3 * time.Hour))},
		{TVGID: "b", Title: "Other Channel", StartTime: stamp(now.Add(-10 * time.Minute)), EndTime: stamp(now.Add(10 * time.Minute))},
		{TVGID: "a", Title: "Far Future", StartTime: stamp(now.Add(48 * time.Hour)), EndTime: stamp(now.Add(49 * time.Hour))},
		{TVGID: "a", Title: "Broken", StartTime: "garbage", EndTime: "garbage"},
	}

	cur := Current(entries, "a")
	if len(cur) != 1 || cur[0].Title != "On Now" {
		t.Errorf("Current = %+v", cur)
	}
	if all := Current(entries, ""); len(all) != 2 {
		t.Errorf("Current unfiltered: got %d; want 2", len(all))
	}

	up := Upcoming(entries, "a", 24)
	if len(up) != 1 || up[0].Title != "Soon" {
		t.Errorf("Upcoming = %+v", up)
	}
	if wide := Upcoming(entries, "a", 72); len(wide) != 2 {
		t.Errorf("Upcoming 72h: got %d; want 2", len(wide))
	}
}

func TestFetchAndParse_gzipBySuffix(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write([]byte(sampleXMLTV))
	zw.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	entries := FetchAndParse(context.Background(), srv.URL+"/guide.xml.gz", srv.Client())
	if len(entries) != 2 {
		t.Errorf("gzipped fetch: got %d entries; want 2", len(entries))
	}
}

func TestFetchAndParse_gzNameButPlainBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleXMLTV))
	}))
	defer srv.Close()

	// The .gz suffix lies; fetch must fall back to the raw payload.
	entries := FetchAndParse(context.Background(), srv.URL+"/guide.xml.gz", srv.Client())
	if len(entries) != 2 {
		t.Errorf("fallback fetch: got %d entries; want 2", len(entries))
	}
}

func TestFetchAndParse_transportFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	if got := FetchAndParse(context.Background(), srv.URL, srv.Client()); len(got) != 0 {
		t.Errorf("404: got %d entries", len(got))
	}
	if got := FetchAndParse(context.Background(), "http://127.0.0.1:1/guide.xml", nil); len(got) != 0 {
		t.Errorf("refused connection: got %d entries", len(got))
	}
}
