// Package youtube fetches video engagement through the YouTube Data API
// v3. It needs an API key; subscriber counts cost a second API call
// against the channels endpoint.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"socialpulse-backend/lib/metrics"
	"socialpulse-backend/lib/restyutil"
	"socialpulse-backend/lib/telemetry"
	"socialpulse-backend/lib/textutil"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

const apiBaseUrl = "https://www.googleapis.com/youtube/v3"

var videoIdRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ExtractVideoId handles every common YouTube URL shape: youtu.be short
// links, /watch?v=, /shorts/, /embed/, and bare 11-character ids as the
// last path segment.
func ExtractVideoId(link string) (string, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", fmt.Errorf("Empty URL")
	}

	parsed, err := url.Parse(link)
	if err != nil {
		return "", err
	}

	if parsed.Host == "youtu.be" {
		if id := strings.Trim(parsed.Path, "/"); id != "" {
			return id, nil
		}
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(segments) >= 2 && (segments[0] == "shorts" || segments[0] == "embed") {
		return segments[1], nil
	}
	if parsed.Path == "/watch" {
		if id := parsed.Query().Get("v"); id != "" {
			return id, nil
		}
	}
	if last := segments[len(segments)-1]; videoIdRegex.MatchString(last) {
		return last, nil
	}

	return "", fmt.Errorf("Could not extract video ID from: %s", link)
}

type Scraper struct {
	http   *resty.Client
	apiKey string
}

func NewScraper(apiKey string) *Scraper {
	client := resty.New()
	client.SetBaseURL(apiBaseUrl)
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "scrapers/youtube/http")
	if restyDebugOutput != nil {
		restyutil.DumpToFilesystem(client, *restyDebugOutput)
	}

	return &Scraper{http: client, apiKey: apiKey}
}

type listResponse struct {
	Items []struct {
		Snippet struct {
			PublishedAt  string `json:"publishedAt"`
			ChannelId    string `json:"channelId"`
			ChannelTitle string `json:"channelTitle"`
			Description  string `json:"description"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount       string `json:"viewCount"`
			LikeCount       string `json:"likeCount"`
			CommentCount    string `json:"commentCount"`
			SubscriberCount string `json:"subscriberCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// the API reports counts as decimal strings
func parseCount(s string) *int64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

func (s *Scraper) list(ctx context.Context, resource string, part string, id string) (listResponse, error) {
	var out listResponse

	res, err := s.http.R().
		SetContext(ctx).
		SetQueryParam("part", part).
		SetQueryParam("id", id).
		SetQueryParam("key", s.apiKey).
		Get("/" + resource)
	if err != nil {
		return out, err
	}
	switch res.StatusCode() {
	case http.StatusOK:
	case http.StatusForbidden, http.StatusTooManyRequests:
		// the data API signals an exhausted daily quota with 403
		return out, metrics.Quotaf("youtube api quota exceeded (status %d)", res.StatusCode())
	default:
		return out, fmt.Errorf("youtube api returned status %d", res.StatusCode())
	}

	if err := json.Unmarshal(res.Body(), &out); err != nil {
		return out, err
	}
	return out, nil
}

func (s *Scraper) Fetch(ctx context.Context, link string) (metrics.MetricRecord, error) {
	ctx, span := tracer.Start(ctx, "scraper:Fetch")
	defer span.End()

	videoId, err := ExtractVideoId(link)
	if err != nil {
		return metrics.MetricRecord{}, err
	}

	videos, err := s.list(ctx, "videos", "snippet,statistics", videoId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list video")
		return metrics.MetricRecord{}, err
	}
	if len(videos.Items) == 0 {
		return metrics.MetricRecord{}, fmt.Errorf("Video not found")
	}
	video := videos.Items[0]

	rec := metrics.MetricRecord{
		Url:      link,
		Platform: metrics.PlatformYouTube,
		Views:    parseCount(video.Statistics.ViewCount),
		Likes:    parseCount(video.Statistics.LikeCount),
		Comments: parseCount(video.Statistics.CommentCount),
	}
	if video.Snippet.ChannelTitle != "" {
		rec.Author = metrics.String(video.Snippet.ChannelTitle)
	}
	if video.Snippet.Description != "" {
		rec.Content = metrics.String(textutil.CollapseWhitespace(video.Snippet.Description))
	}
	if video.Snippet.PublishedAt != "" {
		if parsed, err := time.Parse(time.RFC3339, video.Snippet.PublishedAt); err == nil {
			rec.Date = metrics.String(parsed.Format("Jan 02, 2006"))
		} else {
			rec.Date = metrics.String(video.Snippet.PublishedAt)
		}
	}

	if video.Snippet.ChannelId != "" {
		channels, err := s.list(ctx, "channels", "statistics", video.Snippet.ChannelId)
		if err != nil {
			// subscriber count is best effort, the video metrics stand
			// on their own
			span.RecordError(err)
		} else if len(channels.Items) > 0 {
			rec.Followers = parseCount(channels.Items[0].Statistics.SubscriberCount)
		}
	}

	return rec, nil
}
