package playlist

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParse_empty(t *testing.T) {
	if got := Parse(""); len(got) != 0 {
		t.Errorf("expected no channels; got %d", len(got))
	}
}

func TestParse_fullEXTINF(t *testing.T) {
	doc := `#EXTM3U
#EXTINF:-1 tvg-id="US.ABC" tvg-name="ABC HD" tvg-logo="http://logo/abc.png" group-title="News|US",ABC News
http://x/abc.m3u8
`
	got := Parse(doc)
	if len(got) != 1 {
		t.Fatalf("expected 1 channel; got %d", len(got))
	}
	ch := got[0]
	if ch.Name != "ABC News" {
		t.Errorf("Name = %q", ch.Name)
	}
	if ch.URL != "http://x/abc.m3u8" {
		t.Errorf("URL = %q", ch.URL)
	}
	if ch.TVGID != "US.ABC" || ch.TVGName != "ABC HD" {
		t.Errorf("tvg fields = %q / %q", ch.TVGID, ch.TVGName)
	}
	if ch.Logo != "http://logo/abc.png" {
		t.Errorf("Logo = %q", ch.Logo)
	}
	if ch.Category != "News" || ch.Country != "US" {
		t.Errorf("Category/Country = %q / %q", ch.Category, ch.Country)
	}
	if ch.GroupTitle != "News|US" {
		t.Errorf("GroupTitle = %q", ch.GroupTitle)
	}
}

func TestParse_documentOrderAndTrailingDrop(t *testing.T) {
	doc := `#EXTM3U
#EXTINF:-1,Channel A
http://x/a
#EXTINF:-1,Channel B

http://x/b
#EXTINF:-1,Dangling
`
	got := Parse(doc)
	if len(got) != 2 {
		t.Fatalf("expected 2 channels; got %d", len(got))
	}
	if got[0].Name != "Channel A" || got[0].URL != "http://x/a" {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[1].Name != "Channel B" || got[1].URL != "http://x/b" {
		t.Errorf("got[1] = %+v", got[1])
	}
}

// tvg-id country wins over group-title country when the two disagree.
// This precedence is sequential-assignment behavior and is pinned here.
func TestParse_countryPrecedence(t *testing.T) {
	doc := `#EXTINF:-1 tvg-id="ca.CBC" group-title="News|US",CBC News
http://x/cbc
`
	got := Parse(doc)
	if len(got) != 1 {
		t.Fatalf("expected 1 channel; got %d", len(got))
	}
	if got[0].Country != "CA" {
		t.Errorf("Country = %q; want CA (tvg-id prefix upper-cased)", got[0].Country)
	}
	if got[0].Category != "News" {
		t.Errorf("Category = %q", got[0].Category)
	}
}

func TestParse_groupTitleWithoutPipe(t *testing.T) {
	doc := `#EXTINF:-1 group-title="Movies",Film Channel
http://x/film
`
	got := Parse(doc)
	if len(got) != 1 {
		t.Fatalf("expected 1 channel; got %d", len(got))
	}
	if got[0].Category != "Movies" || got[0].Country != "" {
		t.Errorf("Category/Country = %q / %q", got[0].Category, got[0].Country)
	}
}

func TestParse_nameFallsBackToTVGName(t *testing.T) {
	doc := "#EXTINF:-1 tvg-name=\"Fallback Name\"\nhttp://x/s\n"
	got := Parse(doc)
	if len(got) != 1 {
		t.Fatalf("expected 1 channel; got %d", len(got))
	}
	if got[0].Name != "Fallback Name" {
		t.Errorf("Name = %q", got[0].Name)
	}
}

func TestValidateURL(t *testing.T) {
	for _, u := range []string{"rtsp://host/stream", "https://host/a.m3u8", "udp://239.1.1.1:5000"} {
		if !ValidateURL(u) {
			t.Errorf("ValidateURL(%q) = false; want true", u)
		}
	}
	for _, u := range []string{"ftp://host/x", "not-a-url", ""} {
		if ValidateURL(u) {
			t.Errorf("ValidateURL(%q) = true; want false", u)
		}
	}
}

func TestFetchAndParse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("#EXTM3U\n#EXTINF:-1 tvg-id=\"US.X\",X News\nhttp://x/live\n"))
	}))
	defer srv.Close()

	got := FetchAndParse(context.Background(), srv.URL, srv.Client())
	if len(got) != 1 || got[0].Name != "X News" {
		t.Errorf("got %+v", got)
	}
}

func TestFetchAndParse_errorsYieldEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	if got := FetchAndParse(context.Background(), srv.URL, srv.Client()); len(got) != 0 {
		t.Errorf("expected empty on 404; got %d", len(got))
	}
	if got := FetchAndParse(context.Background(), "http://127.0.0.1:1/none", nil); len(got) != 0 {
		t.Errorf("expected empty on connection error; got %d", len(got))
	}
}
