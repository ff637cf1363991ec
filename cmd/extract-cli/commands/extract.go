package commands

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

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

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type Config struct {
	BrowserBin         string `json:"browser_bin"`
	YoutubeApiKey      string `json:"youtube_api_key"`
	TiktokCookie       string `json:"tiktok_cookie"`
	InstagramSessionId string `json:"instagram_session_id"`
}

var extractFile *string
var extractJson *bool
var extractDb *string

func init() {
	extractFile = extractCmd.Flags().StringP("file", "f", "", "Read links from a file, one per line.")
	extractJson = extractCmd.Flags().Bool("json", false, "Print the raw JSON result instead of a table.")
	extractDb = extractCmd.Flags().String("db", "", "Archive the batch to this sqlite database.")
	rootCmd.AddCommand(extractCmd)
}

func readLinks(args []string) ([]string, error) {
	links := append([]string{}, args...)
	if *extractFile == "" {
		return links, nil
	}

	f, err := os.Open(*extractFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		links = append(links, line)
	}
	return links, scanner.Err()
}

func newService(history *extractor.History) *extractor.Service {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil && !os.IsNotExist(err) {
		serviceutil.Fatal("read config", err)
	}

	fetchers := map[metrics.Platform]extractor.Fetcher{
		metrics.PlatformX: x.NewScraper(),
	}
	if cfg.YoutubeApiKey != "" {
		fetchers[metrics.PlatformYouTube] = youtube.NewScraper(cfg.YoutubeApiKey)
	}
	tiktokScraper := tiktok.NewScraper()
	tiktokScraper.Cookie = cfg.TiktokCookie
	fetchers[metrics.PlatformTikTok] = tiktokScraper

	instagramScraper := instagram.NewScraper()
	instagramScraper.SessionId = cfg.InstagramSessionId
	fetchers[metrics.PlatformInstagram] = instagramScraper

	browser, err := rodutil.NewBrowser(rodutil.BrowserOptions{
		Bin:      cfg.BrowserBin,
		Headless: true,
	})
	if err != nil {
		slog.Warn("browser launch failed, stockbit/linkedin disabled", "err", err)
	} else {
		fetchers[metrics.PlatformStockbit] = stockbit.NewScraper(browser)
		fetchers[metrics.PlatformLinkedIn] = linkedin.NewScraper(browser)
	}

	return extractor.NewService(extractor.Options{
		Fetchers: fetchers,
		History:  history,
		OnProgress: func(done, total int) {
			fmt.Fprintf(os.Stderr, "\rprocessed %d/%d", done, total)
			if done == total {
				fmt.Fprintln(os.Stderr)
			}
		},
	})
}

func formatCount(v *int64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(*v)
}

var extractCmd = &cobra.Command{
	Use:   "extract [links...] [--file <path/to/links.txt>]",
	Short: "Extracts engagement metrics for the given post links.",
	Run: func(cmd *cobra.Command, args []string) {
		links, err := readLinks(args)
		if err != nil {
			serviceutil.Fatal("read links", err)
		}

		var history *extractor.History
		if *extractDb != "" {
			sqldb, err := sqliteutil.OpenDB(db.Schema, *extractDb)
			if err != nil {
				serviceutil.Fatal("open archive db", err)
			}
			defer sqldb.Close()
			history = extractor.NewHistory(sqldb)
		}

		service := newService(history)

		t1 := time.Now()
		result, err := service.ProcessBatch(cmd.Context(), links)
		if err != nil {
			serviceutil.Fatal("process batch", err)
		}
		slog.Info("batch time", "seconds", time.Since(t1).Seconds())

		if *extractJson {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(result); err != nil {
				serviceutil.Fatal("encode result", err)
			}
			return
		}

		t := newTable()
		t.AppendHeader(table.Row{"#", "Platform", "Url", "Likes", "Comments", "Views", "Followers", "Error"})
		for i, rec := range result.Results {
			errText := ""
			if rec.Error != nil {
				errText = *rec.Error
			}
			t.AppendRow(table.Row{
				i + 1,
				rec.Platform,
				rec.Url,
				formatCount(rec.Likes),
				formatCount(rec.Comments),
				formatCount(rec.Views),
				formatCount(rec.Followers),
				errText,
			})
		}
		t.Render()

		printSummary(result.Summary)
	},
}

func printSummary(summary extractor.Summary) {
	t := newTable()
	t.AppendHeader(table.Row{"Platform", "Total", "Success", "Errors"})
	for _, platform := range append(metrics.Platforms, metrics.PlatformUnknown) {
		stats, ok := summary.PlatformStats[platform]
		if !ok {
			continue
		}
		t.AppendRow(table.Row{platform, stats.Total, stats.Success, stats.Errors})
	}
	t.AppendFooter(table.Row{"total", summary.TotalProcessed, "", ""})
	t.Render()
}
