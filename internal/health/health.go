// Package health probes the configured remote sources without ingesting
// anything.
package health

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tvforge/tvcatalog/internal/safeurl"
)

// CheckSource fetches sourceURL and discards the body. Returns nil if the
// source answered 200, an error describing the failure otherwise.
func CheckSource(ctx context.Context, sourceURL string) error {
	if sourceURL == "" {
		return fmt.Errorf("no source URL configured")
	}
	if !safeurl.IsHTTPOrHTTPS(sourceURL) {
		return fmt.Errorf("unsupported source URL %s", safeurl.Redact(sourceURL))
	}
	// Some hosts reject HEAD; use GET and drain the body so the
	// connection can be reused.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("source unreachable: %w", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("source returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// CheckAll probes the playlist and guide sources and returns a map of
// source name to result. A nil map value means the probe passed.
func CheckAll(ctx context.Context, playlistURL, guideURL string) map[string]error {
	return map[string]error{
		"playlist": CheckSource(ctx, playlistURL),
		"guide":    CheckSource(ctx, guideURL),
	}
}
