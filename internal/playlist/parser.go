// Package playlist parses channel-list (M3U) documents into catalog
// channel records.
package playlist

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tvforge/tvcatalog/internal/catalog"
	"github.com/tvforge/tvcatalog/internal/httpclient"
	"github.com/tvforge/tvcatalog/internal/safeurl"
)

const maxLineSize = 1 << 20 // 1 MiB per line

// UserAgent is sent on playlist fetches.
var UserAgent = "tvcatalog/1.0"

// Parse scans the full document text and returns one channel per
// EXTINF+URL pair, in document order. Blank lines and stray comments
// between the metadata line and its URL are ignored; a trailing metadata
// line with no URL is dropped.
func Parse(content string) []catalog.Channel {
	var channels []catalog.Channel
	var pending *catalog.Channel
	sc := bufio.NewScanner(strings.NewReader(content))
	sc.Buffer(nil, maxLineSize)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#EXTINF:") {
			ch := parseEXTINF(line)
			pending = &ch
			continue
		}
		if strings.HasPrefix(line, "#") {
			// Header or stray tag; does not cancel a pending entry.
			continue
		}
		if pending != nil {
			pending.URL = line
			channels = append(channels, *pending)
			pending = nil
		}
	}
	return channels
}

// parseEXTINF extracts metadata from one #EXTINF line:
//
//	#EXTINF:-1 tvg-id="US.ABC" tvg-name="ABC HD" tvg-logo="..." group-title="News|US",ABC News
//
// Each attribute is looked up independently; absence is not an error.
func parseEXTINF(line string) catalog.Channel {
	ch := catalog.Channel{
		TVGID:      attr(line, "tvg-id"),
		TVGName:    attr(line, "tvg-name"),
		Logo:       attr(line, "tvg-logo"),
		GroupTitle: attr(line, "group-title"),
	}

	// group-title carries "Category|Country" in the common iptv-org layout;
	// without the pipe the whole label is the category.
	if g := ch.GroupTitle; g != "" {
		if i := strings.Index(g, "|"); i >= 0 {
			ch.Category = strings.TrimSpace(g[:i])
			rest := g[i+1:]
			if j := strings.Index(rest, "|"); j >= 0 {
				rest = rest[:j]
			}
			ch.Country = strings.TrimSpace(rest)
		} else {
			ch.Category = g
		}
	}

	// tvg-id prefixes like "US.ABC" are the more reliable country signal
	// and overwrite the group-title-derived value. Last write wins.
	if ch.TVGID != "" {
		if parts := strings.SplitN(ch.TVGID, ".", 2); len(parts) >= 2 {
			ch.Country = strings.ToUpper(parts[0])
		}
	}

	if i := strings.Index(line, ","); i >= 0 {
		ch.Name = strings.TrimSpace(line[i+1:])
	}
	if ch.Name == "" {
		ch.Name = ch.TVGName
	}
	return ch
}

// attr returns the value of key="value" in line, or "".
func attr(line, key string) string {
	prefix := key + `="`
	i := strings.Index(line, prefix)
	if i < 0 {
		return ""
	}
	i += len(prefix)
	j := strings.Index(line[i:], `"`)
	if j < 0 {
		return ""
	}
	return line[i : i+j]
}

// ValidateURL reports whether u is an acceptable stream URL
// (http, https, rtmp, rtsp, or udp).
func ValidateURL(u string) bool {
	return safeurl.IsStreamURL(u)
}

// FetchAndParse retrieves the playlist document at m3uURL and parses it.
// Any retrieval failure is logged and yields an empty slice; malformed
// real-world playlists are routine and must not abort an import. If client
// is nil, a client with the playlist timeout is used.
func FetchAndParse(ctx context.Context, m3uURL string, client *http.Client) []catalog.Channel {
	if client == nil {
		client = httpclient.WithTimeout(httpclient.PlaylistTimeout)
	}
	release, err := httpclient.GlobalHostLimiter.Acquire(ctx, m3uURL)
	if err != nil {
		slog.Warn("playlist fetch canceled", "url", safeurl.Redact(m3uURL), "err", err)
		return nil
	}
	defer release()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m3uURL, nil)
	if err != nil {
		slog.Warn("playlist request build failed", "url", safeurl.Redact(m3uURL), "err", err)
		return nil
	}
	req.Header.Set("User-Agent", UserAgent)
	resp, err := httpclient.DoWithRetry(ctx, client, req, httpclient.DefaultRetryPolicy)
	if err != nil {
		slog.Warn("playlist fetch failed", "url", safeurl.Redact(m3uURL), "err", err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		slog.Warn("playlist fetch returned non-OK status", "url", safeurl.Redact(m3uURL), "status", resp.StatusCode)
		return nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Warn("playlist body read failed", "url", safeurl.Redact(m3uURL), "err", err)
		return nil
	}
	return Parse(string(body))
}
