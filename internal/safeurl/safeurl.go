package safeurl

import (
	"net/url"
	"strings"
)

// streamSchemes are the only schemes accepted for channel stream URLs.
// Everything else (file://, ftp://, data:, bare text) is rejected so a
// hostile playlist can't smuggle local-file or odd-protocol references
// into the catalog.
var streamSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"rtmp":  true,
	"rtsp":  true,
	"udp":   true,
}

// IsStreamURL returns true if u parses and its scheme is one of
// http, https, rtmp, rtsp, udp.
func IsStreamURL(u string) bool {
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	return streamSchemes[parsed.Scheme]
}

// IsHTTPOrHTTPS returns true if u is a valid URL with scheme http or https.
// Used for document sources (playlists, guides), which must be fetchable.
func IsHTTPOrHTTPS(u string) bool {
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	s := parsed.Scheme
	return s == "http" || s == "https"
}

// Redact returns u with any userinfo and query values stripped, safe for
// logging. Provider playlist URLs commonly carry credentials in the query
// string (username=/password=), so query values are dropped wholesale and
// only the key names survive.
func Redact(u string) string {
	parsed, err := url.Parse(u)
	if err != nil {
		return "<unparsable url>"
	}
	if parsed.User != nil {
		parsed.User = url.User("redacted")
	}
	if parsed.RawQuery != "" {
		var keys []string
		for _, pair := range strings.Split(parsed.RawQuery, "&") {
			if i := strings.Index(pair, "="); i > 0 {
				keys = append(keys, pair[:i]+"=***")
			} else if pair != "" {
				keys = append(keys, pair)
			}
		}
		parsed.RawQuery = strings.Join(keys, "&")
	}
	return parsed.String()
}
