// Package tiktok scrapes video stats out of the hydration JSON that
// TikTok embeds in its HTML. No API key involved, but the page layout
// changes over time, so three generations of embed script are supported:
// __UNIVERSAL_DATA_FOR_REHYDRATION__, SIGI_STATE, and __NEXT_DATA__.
package tiktok

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"socialpulse-backend/lib/metrics"
	"socialpulse-backend/lib/restyutil"
	"socialpulse-backend/lib/telemetry"
	"socialpulse-backend/lib/textutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	browser "github.com/EDDYCJY/fake-useragent"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Scraper struct {
	http *resty.Client
	// Cookie is optional; geo-blocked or age-gated videos may need one.
	Cookie string
}

func NewScraper() *Scraper {
	client := resty.New()
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", browser.Chrome())
	client.SetHeader("accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	client.SetHeader("accept-language", "en-US,en;q=0.9")
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "scrapers/tiktok/http")
	if restyDebugOutput != nil {
		restyutil.DumpToFilesystem(client, *restyDebugOutput)
	}

	return &Scraper{http: client}
}

// NormalizeUrl rewrites mobile links to the www host and photo posts to
// their video equivalent, which serves the same hydration payload.
func NormalizeUrl(link string) string {
	link = strings.Replace(link, "m.tiktok.com/", "www.tiktok.com/", 1)
	if strings.Contains(link, "/photo/") && !strings.Contains(link, "/video/") {
		link = strings.Replace(link, "/photo/", "/video/", 1)
	}
	return link
}

func (s *Scraper) Fetch(ctx context.Context, link string) (metrics.MetricRecord, error) {
	ctx, span := tracer.Start(ctx, "scraper:Fetch")
	defer span.End()

	req := s.http.R().SetContext(ctx)
	if s.Cookie != "" {
		req.SetHeader("cookie", s.Cookie)
	}
	res, err := req.Get(NormalizeUrl(link))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch video page")
		return metrics.MetricRecord{}, err
	}
	if res.StatusCode() == http.StatusTooManyRequests {
		return metrics.MetricRecord{}, metrics.Quotaf("rate limit: tiktok returned 429")
	}
	if res.StatusCode() != http.StatusOK {
		return metrics.MetricRecord{}, fmt.Errorf("tiktok returned status %d", res.StatusCode())
	}

	stats, err := ParsePage(res.Body())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse video page")
		return metrics.MetricRecord{}, err
	}
	if len(stats.Hashtags) > 0 {
		span.SetAttributes(attribute.StringSlice("hashtags", stats.Hashtags))
		slog.DebugContext(ctx, "caption hashtags", "hashtags", stats.Hashtags)
	}

	return stats.record(link), nil
}

// videoStats is the parse result before normalization into a record.
type videoStats struct {
	Caption   string
	Hashtags  []string
	Views     *int64
	Likes     *int64
	Shares    *int64
	Comments  *int64
	Saves     *int64
	CreatedAt *int64
	Author    string
	Followers *int64
}

var jakarta = mustLoadLocation("Asia/Jakarta")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (v videoStats) record(link string) metrics.MetricRecord {
	rec := metrics.MetricRecord{
		Url:       link,
		Platform:  metrics.PlatformTikTok,
		Views:     v.Views,
		Likes:     v.Likes,
		Comments:  v.Comments,
		Saves:     v.Saves,
		Shares:    v.Shares,
		Followers: v.Followers,
	}
	if v.Author != "" {
		rec.Author = metrics.String(v.Author)
	}
	if v.Caption != "" {
		rec.Content = metrics.String(textutil.CollapseWhitespace(v.Caption))
	}
	if v.CreatedAt != nil {
		rec.Date = metrics.String(time.Unix(*v.CreatedAt, 0).In(jakarta).Format("Jan 02, 2006"))
	}
	return rec
}

// ParsePage tries each hydration script generation in order, newest
// first.
func ParsePage(html []byte) (videoStats, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(html))
	if err != nil {
		return videoStats{}, err
	}

	parsers := []struct {
		selector string
		parse    func(string) (videoStats, bool)
	}{
		{`script#__UNIVERSAL_DATA_FOR_REHYDRATION__`, parseUniversalData},
		{`script#SIGI_STATE`, parseSigiState},
		{`script#__NEXT_DATA__`, parseNextData},
	}
	for _, p := range parsers {
		text := doc.Find(p.selector).Text()
		if text == "" {
			continue
		}
		if stats, ok := p.parse(text); ok {
			return stats, nil
		}
	}

	return videoStats{}, fmt.Errorf("no hydration data found, the page may be geo-blocked, private, or require a cookie")
}
