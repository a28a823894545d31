// Command tvcatalog: import IPTV channel lists and XMLTV guides into a
// SQLite catalog, then query it.
//
//	import             Fetch the channel-list document, classify, save channels
//	epg                Fetch the XMLTV guide, link to channels, save entries
//	guide              Show saved guide entries for one channel
//	channels           List channels with filters, search, and sorting
//	recent             List recently watched channels
//	favorites          List, add, or remove favorite channels
//	backfill-networks  Classify channels that have no network label yet
//	health             Probe the configured playlist and guide sources
//	serve              Serve Prometheus metrics and refresh on an interval
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/tvforge/tvcatalog/internal/catalog"
	"github.com/tvforge/tvcatalog/internal/config"
	"github.com/tvforge/tvcatalog/internal/epg"
	"github.com/tvforge/tvcatalog/internal/health"
	"github.com/tvforge/tvcatalog/internal/httpclient"
	"github.com/tvforge/tvcatalog/internal/metrics"
	"github.com/tvforge/tvcatalog/internal/playlist"
	"github.com/tvforge/tvcatalog/internal/store"
)

func openStore(cfg *config.Config, override string) (*store.Store, error) {
	path := override
	if path == "" {
		path = cfg.DBPath
	}
	return store.Open(path, store.Options{RetentionDays: cfg.EPGRetentionDays})
}

// importPlaylist fetches and parses the channel list, drops entries whose
// stream URL fails validation, and upserts the rest. Returns how many were
// saved along with how many the document contained.
func importPlaylist(ctx context.Context, cfg *config.Config, s *store.Store, sourceURL string) (saved, total int, err error) {
	if sourceURL == "" {
		sourceURL = cfg.PlaylistURL
	}
	chs := playlist.FetchAndParse(ctx, sourceURL, httpclient.WithTimeout(cfg.PlaylistTimeout))
	total = len(chs)
	valid := chs[:0]
	for _, ch := range chs {
		if playlist.ValidateURL(ch.URL) {
			valid = append(valid, ch)
		}
	}
	if len(valid) == 0 {
		return 0, total, nil
	}
	saved, err = s.AddChannels(valid)
	return saved, total, err
}

// refreshGuide fetches and parses the XMLTV guide, resolves channel ids,
// and saves the entries.
func refreshGuide(ctx context.Context, cfg *config.Config, s *store.Store, sourceURL string) (parsed, matched, saved int, err error) {
	if sourceURL == "" {
		sourceURL = cfg.GuideURL
	}
	entries := epg.FetchAndParse(ctx, sourceURL, httpclient.WithTimeout(cfg.GuideTimeout))
	parsed = len(entries)
	if parsed == 0 {
		return 0, 0, 0, nil
	}
	matched, err = s.ResolveChannelIDs(entries)
	if err != nil {
		return parsed, 0, 0, err
	}
	saved, err = s.SaveEPGData(entries)
	return parsed, matched, saved, err
}

func printChannels(chs []catalog.Channel) {
	for _, ch := range chs {
		line := fmt.Sprintf("%6d  %-40s", ch.ID, ch.Name)
		var tags []string
		if ch.Network != "" {
			tags = append(tags, ch.Network)
		}
		if ch.Country != "" {
			tags = append(tags, ch.Country)
		}
		if ch.Category != "" {
			tags = append(tags, ch.Category)
		}
		if len(tags) > 0 {
			line += "  [" + strings.Join(tags, " / ") + "]"
		}
		if ch.LastPlayed != "" {
			line += "  last played " + ch.LastPlayed
		}
		fmt.Println(line)
	}
}

func main() {
	_ = config.LoadEnvFile(".env")
	log.SetFlags(log.LstdFlags)
	log.SetPrefix("[tvcatalog] ")

	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	importURL := importCmd.String("playlist", "", "Channel-list URL (default: TVCATALOG_PLAYLIST_URL)")
	importDB := importCmd.String("db", "", "Database path (default: TVCATALOG_DB)")

	epgCmd := flag.NewFlagSet("epg", flag.ExitOnError)
	epgURL := epgCmd.String("guide", "", "XMLTV guide URL, may be .xml.gz (default: TVCATALOG_EPG_URL)")
	epgDB := epgCmd.String("db", "", "Database path (default: TVCATALOG_DB)")

	guideCmd := flag.NewFlagSet("guide", flag.ExitOnError)
	guideChannel := guideCmd.Int64("channel", 0, "Channel row id")
	guideTVGID := guideCmd.String("tvg-id", "", "Guide identifier (alternative to -channel)")
	guideNow := guideCmd.Bool("now", false, "Only the programme airing right now")
	guideNext := guideCmd.Int("next", 0, "Only programmes starting within N hours")
	guideDB := guideCmd.String("db", "", "Database path (default: TVCATALOG_DB)")

	channelsCmd := flag.NewFlagSet("channels", flag.ExitOnError)
	chCategory := channelsCmd.String("category", "", "Exact category filter")
	chCountry := channelsCmd.String("country", "", "Exact country filter")
	chLanguage := channelsCmd.String("language", "", "Exact language filter")
	chNetwork := channelsCmd.String("network", "", "Exact network filter")
	chSearch := channelsCmd.String("search", "", "Substring search over name, tvg-name, category, country")
	chSort := channelsCmd.String("sort", "name", "Sort: name, country, category, recent")
	chLimit := channelsCmd.Int("limit", 100, "Max rows (0 = all)")
	chOffset := channelsCmd.Int("offset", 0, "Rows to skip")
	chDB := channelsCmd.String("db", "", "Database path (default: TVCATALOG_DB)")

	recentCmd := flag.NewFlagSet("recent", flag.ExitOnError)
	recentLimit := recentCmd.Int("limit", 20, "Max rows")
	recentDB := recentCmd.String("db", "", "Database path (default: TVCATALOG_DB)")

	favCmd := flag.NewFlagSet("favorites", flag.ExitOnError)
	favAdd := favCmd.Int64("add", 0, "Channel id to mark as favorite")
	favRemove := favCmd.Int64("remove", 0, "Channel id to unmark")
	favDB := favCmd.String("db", "", "Database path (default: TVCATALOG_DB)")

	backfillCmd := flag.NewFlagSet("backfill-networks", flag.ExitOnError)
	backfillDB := backfillCmd.String("db", "", "Database path (default: TVCATALOG_DB)")

	healthCmd := flag.NewFlagSet("health", flag.ExitOnError)
	healthPlaylist := healthCmd.String("playlist", "", "Channel-list URL to probe (default: TVCATALOG_PLAYLIST_URL)")
	healthGuide := healthCmd.String("guide", "", "Guide URL to probe (default: TVCATALOG_EPG_URL)")

	serveCmd := flag.NewFlagSet("serve", flag.ExitOnError)
	serveAddr := serveCmd.String("addr", "", "Metrics listen address (default: TVCATALOG_METRICS_ADDR)")
	serveRefresh := serveCmd.Duration("refresh", 6*time.Hour, "Catalog + guide refresh interval (0 = never refresh)")
	serveSkipInitial := serveCmd.Bool("skip-initial", false, "Skip the refresh at startup")
	serveDB := serveCmd.String("db", "", "Database path (default: TVCATALOG_DB)")

	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <import|epg|guide|channels|recent|favorites|backfill-networks|health|serve> [flags]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  import             Fetch channel list, classify, save channels\n")
		fmt.Fprintf(os.Stderr, "  epg                Fetch XMLTV guide, link to channels, save entries\n")
		fmt.Fprintf(os.Stderr, "  guide              Show saved guide entries (-channel id or -tvg-id, -now, -next N)\n")
		fmt.Fprintf(os.Stderr, "  channels           List channels (-category -country -language -network -search -sort)\n")
		fmt.Fprintf(os.Stderr, "  recent             List recently watched channels\n")
		fmt.Fprintf(os.Stderr, "  favorites          List favorites, or -add/-remove a channel id\n")
		fmt.Fprintf(os.Stderr, "  backfill-networks  Classify channels with no network label\n")
		fmt.Fprintf(os.Stderr, "  health             Probe the playlist and guide sources\n")
		fmt.Fprintf(os.Stderr, "  serve              Serve /metrics and refresh on an interval\n")
		os.Exit(1)
	}

	cfg := config.Load()
	playlist.UserAgent = cfg.UserAgent

	switch os.Args[1] {
	case "import":
		_ = importCmd.Parse(os.Args[2:])
		s, err := openStore(cfg, *importDB)
		if err != nil {
			log.Printf("Open store: %v", err)
			os.Exit(1)
		}
		defer s.Close()
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		saved, total, err := importPlaylist(ctx, cfg, s, *importURL)
		if err != nil {
			log.Printf("Import failed after %d channels: %v", saved, err)
			os.Exit(1)
		}
		log.Printf("Imported %d/%d channels", saved, total)

	case "epg":
		_ = epgCmd.Parse(os.Args[2:])
		s, err := openStore(cfg, *epgDB)
		if err != nil {
			log.Printf("Open store: %v", err)
			os.Exit(1)
		}
		defer s.Close()
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		parsed, matched, saved, err := refreshGuide(ctx, cfg, s, *epgURL)
		if err != nil {
			log.Printf("Guide import failed: %v", err)
			os.Exit(1)
		}
		log.Printf("Guide: %d entries parsed, %d linked to channels, %d saved", parsed, matched, saved)

	case "guide":
		_ = guideCmd.Parse(os.Args[2:])
		if *guideChannel == 0 && *guideTVGID == "" {
			log.Print("Set -channel or -tvg-id")
			os.Exit(1)
		}
		s, err := openStore(cfg, *guideDB)
		if err != nil {
			log.Printf("Open store: %v", err)
			os.Exit(1)
		}
		defer s.Close()
		entries, err := s.GetEPGForChannel(*guideChannel, *guideTVGID)
		if err != nil {
			log.Printf("Guide lookup: %v", err)
			os.Exit(1)
		}
		switch {
		case *guideNow:
			entries = epg.Current(entries, "")
		case *guideNext > 0:
			entries = epg.Upcoming(entries, "", *guideNext)
		}
		for _, e := range entries {
			line := fmt.Sprintf("%s  %s  %s", e.StartTime, e.EndTime, e.Title)
			if e.Category != "" {
				line += "  [" + e.Category + "]"
			}
			fmt.Println(line)
		}
		log.Printf("%d guide entries", len(entries))

	case "channels":
		_ = channelsCmd.Parse(os.Args[2:])
		s, err := openStore(cfg, *chDB)
		if err != nil {
			log.Printf("Open store: %v", err)
			os.Exit(1)
		}
		defer s.Close()
		chs, err := s.GetChannels(store.Query{
			Category: *chCategory,
			Country:  *chCountry,
			Language: *chLanguage,
			Network:  *chNetwork,
			Search:   *chSearch,
			Sort:     *chSort,
			Limit:    *chLimit,
			Offset:   *chOffset,
		})
		if err != nil {
			log.Printf("List channels: %v", err)
			os.Exit(1)
		}
		printChannels(chs)
		log.Printf("%d channels", len(chs))

	case "recent":
		_ = recentCmd.Parse(os.Args[2:])
		s, err := openStore(cfg, *recentDB)
		if err != nil {
			log.Printf("Open store: %v", err)
			os.Exit(1)
		}
		defer s.Close()
		chs, err := s.GetRecentlyWatched(*recentLimit)
		if err != nil {
			log.Printf("Recently watched: %v", err)
			os.Exit(1)
		}
		printChannels(chs)

	case "favorites":
		_ = favCmd.Parse(os.Args[2:])
		s, err := openStore(cfg, *favDB)
		if err != nil {
			log.Printf("Open store: %v", err)
			os.Exit(1)
		}
		defer s.Close()
		switch {
		case *favAdd != 0:
			if _, err := s.GetChannelByID(*favAdd); err != nil {
				log.Printf("Channel %d: %v", *favAdd, err)
				os.Exit(1)
			}
			if err := s.AddFavorite(*favAdd); err != nil {
				log.Printf("Add favorite: %v", err)
				os.Exit(1)
			}
			log.Printf("Channel %d marked as favorite", *favAdd)
		case *favRemove != 0:
			removed, err := s.RemoveFavorite(*favRemove)
			if err != nil {
				log.Printf("Remove favorite: %v", err)
				os.Exit(1)
			}
			if removed {
				log.Printf("Channel %d unmarked", *favRemove)
			} else {
				log.Printf("Channel %d was not a favorite", *favRemove)
			}
		default:
			favs, err := s.Favorites()
			if err != nil {
				log.Printf("Favorites: %v", err)
				os.Exit(1)
			}
			printChannels(favs)
		}

	case "backfill-networks":
		_ = backfillCmd.Parse(os.Args[2:])
		s, err := openStore(cfg, *backfillDB)
		if err != nil {
			log.Printf("Open store: %v", err)
			os.Exit(1)
		}
		defer s.Close()
		n, err := s.BackfillNetworks()
		if err != nil {
			log.Printf("Backfill failed after %d updates: %v", n, err)
			os.Exit(1)
		}
		log.Printf("Classified %d channels", n)

	case "health":
		_ = healthCmd.Parse(os.Args[2:])
		pURL := *healthPlaylist
		if pURL == "" {
			pURL = cfg.PlaylistURL
		}
		gURL := *healthGuide
		if gURL == "" {
			gURL = cfg.GuideURL
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		failed := false
		for name, err := range health.CheckAll(ctx, pURL, gURL) {
			if err != nil {
				log.Printf("%s: FAIL: %v", name, err)
				failed = true
			} else {
				log.Printf("%s: OK", name)
			}
		}
		if failed {
			os.Exit(1)
		}

	case "serve":
		_ = serveCmd.Parse(os.Args[2:])
		addr := *serveAddr
		if addr == "" {
			addr = cfg.MetricsAddr
		}
		s, err := openStore(cfg, *serveDB)
		if err != nil {
			log.Printf("Open store: %v", err)
			os.Exit(1)
		}
		defer s.Close()
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		m := metrics.New()
		refresh := func() {
			saved, total, err := importPlaylist(ctx, cfg, s, "")
			if err != nil {
				log.Printf("Refresh: import failed: %v", err)
			} else if total == 0 {
				m.FetchFailures.WithLabelValues("playlist").Inc()
			} else {
				m.ChannelsImported.Add(float64(saved))
				log.Printf("Refresh: %d/%d channels imported", saved, total)
			}
			parsed, matched, saved, err := refreshGuide(ctx, cfg, s, "")
			if err != nil {
				log.Printf("Refresh: guide failed: %v", err)
			} else if parsed == 0 {
				m.FetchFailures.WithLabelValues("guide").Inc()
			} else {
				m.EPGParsed.Add(float64(parsed))
				m.EPGSaved.Add(float64(saved))
				log.Printf("Refresh: guide %d parsed, %d linked, %d saved", parsed, matched, saved)
			}
			if n, err := s.CountChannels(); err == nil {
				m.CatalogSize.Set(float64(n))
			}
		}
		if !*serveSkipInitial {
			refresh()
		}
		if *serveRefresh > 0 {
			go func() {
				ticker := time.NewTicker(*serveRefresh)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						refresh()
					}
				}
			}()
		}

		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("ok\n"))
		})
		srv := &http.Server{Addr: addr, Handler: mux}
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		log.Printf("Serving metrics on %s (refresh every %v)", addr, *serveRefresh)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Serve failed: %v", err)
			os.Exit(1)
		}

	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n", os.Args[1])
		os.Exit(1)
	}
}
