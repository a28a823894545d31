// Package httpclient provides the shared tuned HTTP client used for all
// document fetches (playlists, XMLTV guides) plus per-host throttling and
// a small once-retry policy for flaky upstreams.
package httpclient

import (
	"net/http"
	"time"
)

const (
	// PlaylistTimeout covers channel-list documents, which are small.
	PlaylistTimeout = 30 * time.Second
	// GuideTimeout covers XMLTV documents, which can run to hundreds of MB.
	GuideTimeout = 120 * time.Second

	DefaultIdleConnTimeout = 90 * time.Second
	MaxIdleConnsPerHost    = 16
)

var defaultClient *http.Client

func init() {
	defaultClient = &http.Client{
		Timeout: PlaylistTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: MaxIdleConnsPerHost,
			IdleConnTimeout:     DefaultIdleConnTimeout,
			// Bodies are decompressed explicitly so gzip-vs-plain detection
			// can inspect the Content-Encoding header; see internal/epg.
			DisableCompression: true,
		},
	}
}

// Default returns the shared tuned HTTP client.
func Default() *http.Client {
	return defaultClient
}

// WithTimeout returns a client with the given timeout and the same transport
// as Default (or a copy).
func WithTimeout(timeout time.Duration) *http.Client {
	t, ok := defaultClient.Transport.(*http.Transport)
	if !ok {
		return &http.Client{Timeout: timeout}
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: t.Clone(),
	}
}
