// Package epg retrieves and parses XMLTV guide documents into programme
// entries, and answers time-window questions over a parsed sequence.
package epg

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"

	"github.com/tvforge/tvcatalog/internal/catalog"
	"github.com/tvforge/tvcatalog/internal/httpclient"
	"github.com/tvforge/tvcatalog/internal/safeurl"
)

// UserAgent is sent on guide fetches. Some guide hosts reject the default
// Go user agent outright.
var UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

// FetchDocument retrieves the XMLTV document at sourceURL, decompressing
// when the URL suffix or the response headers say so. Every failure mode
// degrades to "" with a log line; guide sources disappear and rot all the
// time and an import must not hard-fail on one.
func FetchDocument(ctx context.Context, sourceURL string, client *http.Client) string {
	if client == nil {
		client = httpclient.WithTimeout(httpclient.GuideTimeout)
	}
	release, err := httpclient.GlobalHostLimiter.Acquire(ctx, sourceURL)
	if err != nil {
		slog.Warn("guide fetch canceled", "url", safeurl.Redact(sourceURL), "err", err)
		return ""
	}
	defer release()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		slog.Warn("guide request build failed", "url", safeurl.Redact(sourceURL), "err", err)
		return ""
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept-Encoding", "gzip, br")

	resp, err := httpclient.DoWithRetry(ctx, client, req, httpclient.DefaultRetryPolicy)
	if err != nil {
		slog.Warn("guide fetch failed", "url", safeurl.Redact(sourceURL), "err", err)
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusNotFound {
			slog.Warn("guide URL not found; the source may have moved or the URL is incorrect",
				"url", safeurl.Redact(sourceURL))
		} else {
			slog.Warn("guide fetch returned non-OK status", "url", safeurl.Redact(sourceURL), "status", resp.StatusCode)
		}
		return ""
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Warn("guide body read failed", "url", safeurl.Redact(sourceURL), "err", err)
		return ""
	}

	text := decodePayload(sourceURL, resp.Header.Get("Content-Encoding"), raw)
	if text == "" {
		return ""
	}

	// Advisory sanity check only: wrong content types with valid XML inside
	// happen in the wild, so parsing is attempted regardless.
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "<?xml") && !strings.HasPrefix(trimmed, "<tv") {
		slog.Warn("guide response does not look like XMLTV; attempting parse anyway",
			"url", safeurl.Redact(sourceURL), "content_type", resp.Header.Get("Content-Type"))
	}
	return text
}

// decodePayload turns the raw response bytes into document text.
// Compression is decided by the union of URL suffix and Content-Encoding; a
// .gz name over uncompressed bytes falls back to the raw payload rather
// than failing the whole import.
func decodePayload(sourceURL, contentEncoding string, raw []byte) string {
	ce := strings.ToLower(contentEncoding)
	if strings.Contains(ce, "br") && !strings.Contains(ce, "gzip") {
		out, err := io.ReadAll(brotli.NewReader(bytes.NewReader(raw)))
		if err != nil {
			slog.Warn("brotli decompression failed; using raw payload", "err", err)
			return string(raw)
		}
		return string(out)
	}

	gzipped := strings.HasSuffix(sourceURL, ".gz") || strings.Contains(ce, "gzip")
	if !gzipped {
		return string(raw)
	}
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		slog.Warn("payload named .gz is not gzipped; using raw payload", "err", err)
		return string(raw)
	}
	out, err := io.ReadAll(zr)
	if err != nil {
		slog.Warn("gzip decompression failed mid-stream", "err", err)
		return ""
	}
	slog.Info("decompressed guide document", "compressed_bytes", len(raw), "bytes", len(out))
	return string(out)
}

// FetchAndParse retrieves and parses the guide at sourceURL. On any fetch
// or parse failure the result is an empty slice.
func FetchAndParse(ctx context.Context, sourceURL string, client *http.Client) []catalog.Programme {
	text := FetchDocument(ctx, sourceURL, client)
	if text == "" {
		return nil
	}
	return Parse(text)
}
