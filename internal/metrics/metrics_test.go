package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.ChannelsImported.Add(3)
	m.FetchFailures.WithLabelValues("playlist").Inc()
	m.CatalogSize.Set(42)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("GET metrics: %v", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	body := string(raw)

	for _, want := range []string{
		"tvcatalog_channels_imported_total 3",
		`tvcatalog_fetch_failures_total{source="playlist"} 1`,
		"tvcatalog_channels 42",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestIndependentRegistries(t *testing.T) {
	a := New()
	b := New()
	a.EPGParsed.Inc()
	// Registering b must not have panicked on duplicate collectors, and
	// b's counter starts at zero independent of a.
	b.EPGParsed.Add(0)
}
