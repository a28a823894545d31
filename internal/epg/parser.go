package epg

import (
	"encoding/xml"
	"errors"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/tvforge/tvcatalog/internal/catalog"
)

// xmlProgramme mirrors one <programme> element. Repeated children (multiple
// <title lang="..."> variants) decode into slices; only the first occurrence
// of each is kept.
type xmlProgramme struct {
	Channel    string    `xml:"channel,attr"`
	Start      string    `xml:"start,attr"`
	Stop       string    `xml:"stop,attr"`
	Titles     []xmlText `xml:"title"`
	Descs      []xmlText `xml:"desc"`
	Categories []xmlText `xml:"category"`
}

type xmlText struct {
	Value string `xml:",chardata"`
}

// Parse walks the document's <programme> elements (nested in a <tv> root)
// and returns one entry per programme that has both a guide identifier and
// a title. Malformed XML yields an empty sequence with the error logged;
// entries decoded before the error are discarded, so a truncated document
// never produces a partial guide. Non-UTF-8 declared encodings are handled
// by the charset reader.
func Parse(xmlContent string) []catalog.Programme {
	if strings.TrimSpace(xmlContent) == "" {
		slog.Warn("empty guide document")
		return nil
	}

	dec := xml.NewDecoder(strings.NewReader(xmlContent))
	dec.CharsetReader = charset.NewReaderLabel

	var entries []catalog.Programme
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			slog.Warn("guide document parse error", "err", err, "discarded", len(entries))
			return nil
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "programme" {
			continue
		}
		var node xmlProgramme
		if err := dec.DecodeElement(&node, &se); err != nil {
			slog.Warn("programme element decode error", "err", err, "discarded", len(entries))
			return nil
		}
		entry := catalog.Programme{
			TVGID:       node.Channel,
			Title:       firstText(node.Titles),
			StartTime:   ParseTime(node.Start),
			EndTime:     ParseTime(node.Stop),
			Description: firstText(node.Descs),
			Category:    firstText(node.Categories),
		}
		if entry.TVGID == "" || entry.Title == "" {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

func firstText(nodes []xmlText) string {
	if len(nodes) == 0 {
		return ""
	}
	return strings.TrimSpace(nodes[0].Value)
}

// ParseTime converts an XMLTV timestamp ("20240115180000 +0000") to
// "2024-01-15 18:00:00" by literal slicing of the first 14 characters.
// Any timezone offset is discarded: stored times are naive, matching the
// feed's own clock, not normalized to UTC or the server zone. Inputs
// shorter than 14 characters are returned unchanged.
func ParseTime(s string) string {
	if len(s) < 14 {
		return s
	}
	return s[0:4] + "-" + s[4:6] + "-" + s[6:8] + " " + s[8:10] + ":" + s[10:12] + ":" + s[12:14]
}
