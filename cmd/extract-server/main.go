package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"

	"socialpulse-backend/lib/configutil"
	"socialpulse-backend/lib/metrics"
	"socialpulse-backend/lib/rodutil"
	"socialpulse-backend/lib/scrapers/instagram"
	"socialpulse-backend/lib/scrapers/linkedin"
	"socialpulse-backend/lib/scrapers/stockbit"
	"socialpulse-backend/lib/scrapers/tiktok"
	"socialpulse-backend/lib/scrapers/x"
	"socialpulse-backend/lib/scrapers/youtube"
	"socialpulse-backend/lib/serviceutil"
	"socialpulse-backend/lib/sqliteutil"
	"socialpulse-backend/services/extractor"
	"socialpulse-backend/services/extractor/db"
)

type BrowserConfig struct {
	Bin      string `json:"bin"`
	Headless *bool  `json:"headless"`
}

type Config struct {
	Port               int           `json:"port"`
	Database           string        `json:"database"`
	Browser            BrowserConfig `json:"browser"`
	YoutubeApiKey      string        `json:"youtube_api_key"`
	TiktokCookie       string        `json:"tiktok_cookie"`
	InstagramSessionId string        `json:"instagram_session_id"`
}

func notConfigured(reason string) extractor.Fetcher {
	return extractor.FetcherFunc(func(ctx context.Context, url string) (metrics.MetricRecord, error) {
		return metrics.MetricRecord{}, fmt.Errorf("%s", reason)
	})
}

func initFetchers(ctx context.Context, cfg Config) map[metrics.Platform]extractor.Fetcher {
	fetchers := map[metrics.Platform]extractor.Fetcher{}

	fetchers[metrics.PlatformX] = x.NewScraper()

	if cfg.YoutubeApiKey != "" {
		fetchers[metrics.PlatformYouTube] = youtube.NewScraper(cfg.YoutubeApiKey)
	} else {
		fetchers[metrics.PlatformYouTube] = notConfigured("YouTube not configured")
	}

	tiktokScraper := tiktok.NewScraper()
	tiktokScraper.Cookie = cfg.TiktokCookie
	fetchers[metrics.PlatformTikTok] = tiktokScraper

	instagramScraper := instagram.NewScraper()
	instagramScraper.SessionId = cfg.InstagramSessionId
	fetchers[metrics.PlatformInstagram] = instagramScraper

	headless := true
	if cfg.Browser.Headless != nil {
		headless = *cfg.Browser.Headless
	}
	browser, err := rodutil.NewBrowser(rodutil.BrowserOptions{
		Bin:      cfg.Browser.Bin,
		Headless: headless,
	})
	if err != nil {
		slog.WarnContext(ctx, "browser launch failed, browser-backed scrapers disabled", "err", err)
		fetchers[metrics.PlatformStockbit] = notConfigured("Stockbit not configured")
		fetchers[metrics.PlatformLinkedIn] = notConfigured("LinkedIn not configured")
	} else {
		go func() {
			<-ctx.Done()
			browser.Close()
		}()
		fetchers[metrics.PlatformStockbit] = stockbit.NewScraper(browser)
		fetchers[metrics.PlatformLinkedIn] = linkedin.NewScraper(browser)
	}

	return fetchers
}

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	InitTelemetry(ctx, *verbose)

	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("read config", err)
	}
	if cfg.Port == 0 {
		cfg.Port = 8000
	}

	var history *extractor.History
	if cfg.Database != "" {
		sqldb, err := sqliteutil.OpenDB(db.Schema, cfg.Database)
		if err != nil {
			serviceutil.Fatal("init history db", err)
		}
		history = extractor.NewHistory(sqldb)
	}

	service := extractor.NewService(extractor.Options{
		Fetchers: initFetchers(ctx, cfg),
		History:  history,
		OnProgress: func(done, total int) {
			slog.InfoContext(ctx, "batch progress", "done", done, "total", total)
		},
	})

	mux := http.NewServeMux()
	RegisterApi(mux, service, history)

	go serviceutil.StartHttpServer(cfg.Port, mux)
	<-ctx.Done()
}
