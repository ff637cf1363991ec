// Package instagram fetches post engagement through the web JSON
// endpoint (?__a=1&__d=dis). Instagram throttles anonymous access hard;
// a logged-in sessionid cookie raises the ceiling considerably.
package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"socialpulse-backend/lib/metrics"
	"socialpulse-backend/lib/restyutil"
	"socialpulse-backend/lib/telemetry"
	"socialpulse-backend/lib/textutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

var shortcodeRegex = regexp.MustCompile(`instagram\.com/(?:p|reel|tv)/([A-Za-z0-9_-]+)`)

// ExtractShortcode pulls the post shortcode out of /p/, /reel/, and /tv/
// URLs.
func ExtractShortcode(url string) (string, error) {
	groups := shortcodeRegex.FindStringSubmatch(url)
	if len(groups) < 2 {
		return "", fmt.Errorf("Not a valid Instagram post URL: %s", url)
	}
	return groups[1], nil
}

type Scraper struct {
	http *resty.Client
	// SessionId is optional; anonymous requests work but get throttled
	// much sooner.
	SessionId string
}

func NewScraper() *Scraper {
	client := resty.New()
	client.SetBaseURL("https://www.instagram.com")
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36")
	client.SetHeader("x-ig-app-id", "936619743392459")
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "scrapers/instagram/http")
	if restyDebugOutput != nil {
		restyutil.DumpToFilesystem(client, *restyDebugOutput)
	}

	return &Scraper{http: client}
}

type mediaResponse struct {
	Items []struct {
		TakenAt int64 `json:"taken_at"`
		Caption *struct {
			Text string `json:"text"`
		} `json:"caption"`
		LikeCount    *int64 `json:"like_count"`
		CommentCount *int64 `json:"comment_count"`
		PlayCount    *int64 `json:"play_count"`
		MediaType    int    `json:"media_type"`
		User         struct {
			Username      string `json:"username"`
			FollowerCount *int64 `json:"follower_count"`
		} `json:"user"`
	} `json:"items"`
}

func (s *Scraper) Fetch(ctx context.Context, url string) (metrics.MetricRecord, error) {
	ctx, span := tracer.Start(ctx, "scraper:Fetch")
	defer span.End()

	shortcode, err := ExtractShortcode(url)
	if err != nil {
		return metrics.MetricRecord{}, err
	}

	req := s.http.R().
		SetContext(ctx).
		SetQueryParam("__a", "1").
		SetQueryParam("__d", "dis")
	if s.SessionId != "" {
		req.SetCookie(&http.Cookie{Name: "sessionid", Value: s.SessionId})
	}
	res, err := req.Get("/p/" + shortcode + "/")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch post")
		return metrics.MetricRecord{}, err
	}
	switch res.StatusCode() {
	case http.StatusOK:
	case http.StatusTooManyRequests, http.StatusUnauthorized:
		// anonymous throttling surfaces as 429 or a login redirect
		return metrics.MetricRecord{}, metrics.Quotaf("rate limit: instagram returned %d", res.StatusCode())
	case http.StatusNotFound:
		return metrics.MetricRecord{}, fmt.Errorf("Post not found")
	default:
		return metrics.MetricRecord{}, fmt.Errorf("instagram returned status %d", res.StatusCode())
	}

	var media mediaResponse
	if err := json.Unmarshal(res.Body(), &media); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to unmarshal post json")
		return metrics.MetricRecord{}, err
	}
	if len(media.Items) == 0 {
		return metrics.MetricRecord{}, fmt.Errorf("Post not found")
	}
	return normalizePost(url, media), nil
}

func normalizePost(url string, media mediaResponse) metrics.MetricRecord {
	item := media.Items[0]

	rec := metrics.MetricRecord{
		Url:       url,
		Platform:  metrics.PlatformInstagram,
		Likes:     item.LikeCount,
		Comments:  item.CommentCount,
		Followers: item.User.FollowerCount,
	}
	// view counts only exist for video posts
	if item.MediaType == 2 {
		rec.Views = item.PlayCount
	}
	if item.User.Username != "" {
		rec.Author = metrics.String(item.User.Username)
	}
	if item.Caption != nil && item.Caption.Text != "" {
		rec.Content = metrics.String(textutil.CollapseWhitespace(item.Caption.Text))
	}
	if item.TakenAt > 0 {
		rec.Date = metrics.String(time.Unix(item.TakenAt, 0).UTC().Format("Jan 02, 2006"))
	}
	return rec
}
