// Package x fetches engagement numbers for X (formerly Twitter) posts
// through the public syndication endpoint, which serves tweet embeds
// without authentication.
package x

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
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

const syndicationUrl = "https://cdn.syndication.twimg.com/tweet-result"

var tweetUrlRegex = regexp.MustCompile(`(?:twitter|x)\.com/\w+/status(?:es)?/(\d+)`)

// ExtractTweetId pulls the numeric status id out of a post URL.
func ExtractTweetId(url string) (string, error) {
	groups := tweetUrlRegex.FindStringSubmatch(url)
	if len(groups) < 2 {
		return "", fmt.Errorf("Not a valid X/Twitter post URL: %s", url)
	}
	return groups[1], nil
}

type Scraper struct {
	http *resty.Client
}

func NewScraper() *Scraper {
	client := resty.New()
	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36")
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "scrapers/x/http")
	if restyDebugOutput != nil {
		restyutil.DumpToFilesystem(client, *restyDebugOutput)
	}

	return &Scraper{http: client}
}

type tweetResult struct {
	CreatedAt string `json:"created_at"`
	Text      string `json:"text"`
	User      struct {
		ScreenName string `json:"screen_name"`
		Followers  *int64 `json:"followers_count"`
	} `json:"user"`
	FavoriteCount *int64 `json:"favorite_count"`
	ReplyCount    *int64 `json:"conversation_count"`
	RetweetCount  *int64 `json:"retweet_count"`
	QuoteCount    *int64 `json:"quote_count"`
	BookmarkCount *int64 `json:"bookmark_count"`
	ViewCount     *int64 `json:"view_count"`
}

const base36Digits = "0123456789abcdefghijklmnopqrstuvwxyz"

// syndicationToken derives the access token the embed widget computes
// client side: (id / 1e15 * pi) rendered in base 36 with zeros and the
// radix point stripped.
func syndicationToken(id string) string {
	n, err := strconv.ParseFloat(id, 64)
	if err != nil {
		return ""
	}
	v := n / 1e15 * math.Pi

	intPart := int64(v)
	frac := v - float64(intPart)
	out := []byte(strconv.FormatInt(intPart, 36))
	for i := 0; i < 12 && frac > 0; i++ {
		frac *= 36
		digit := int(frac)
		out = append(out, base36Digits[digit])
		frac -= float64(digit)
	}
	return strings.ReplaceAll(string(out), "0", "")
}

func (s *Scraper) Fetch(ctx context.Context, url string) (metrics.MetricRecord, error) {
	ctx, span := tracer.Start(ctx, "scraper:Fetch")
	defer span.End()

	id, err := ExtractTweetId(url)
	if err != nil {
		return metrics.MetricRecord{}, err
	}

	res, err := s.http.R().
		SetContext(ctx).
		SetQueryParam("id", id).
		SetQueryParam("token", syndicationToken(id)).
		SetQueryParam("lang", "en").
		Get(syndicationUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch tweet")
		return metrics.MetricRecord{}, err
	}
	if res.StatusCode() == http.StatusTooManyRequests {
		return metrics.MetricRecord{}, metrics.Quotaf("rate limit: syndication returned 429")
	}
	if res.StatusCode() != http.StatusOK {
		return metrics.MetricRecord{}, fmt.Errorf("syndication returned status %d", res.StatusCode())
	}
	if len(res.Body()) == 0 {
		return metrics.MetricRecord{}, fmt.Errorf("Tweet not returned")
	}

	var tweet tweetResult
	if err := json.Unmarshal(res.Body(), &tweet); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to unmarshal tweet")
		return metrics.MetricRecord{}, err
	}

	return normalizeTweet(url, tweet), nil
}

func normalizeTweet(url string, tweet tweetResult) metrics.MetricRecord {
	rec := metrics.MetricRecord{
		Url:       url,
		Platform:  metrics.PlatformX,
		Likes:     tweet.FavoriteCount,
		Comments:  tweet.ReplyCount,
		Saves:     tweet.BookmarkCount,
		Views:     tweet.ViewCount,
		Followers: tweet.User.Followers,
	}
	if tweet.User.ScreenName != "" {
		rec.Author = metrics.String(tweet.User.ScreenName)
	}
	if tweet.Text != "" {
		rec.Content = metrics.String(textutil.CollapseWhitespace(tweet.Text))
	}
	if tweet.CreatedAt != "" {
		if parsed, err := time.Parse(time.RFC3339, tweet.CreatedAt); err == nil {
			rec.Date = metrics.String(parsed.Format("Jan 02, 2006"))
		} else {
			rec.Date = metrics.String(tweet.CreatedAt)
		}
	}
	// reposts combine retweets and quote tweets; null only when the
	// endpoint reported neither
	if tweet.RetweetCount != nil || tweet.QuoteCount != nil {
		var combined int64
		if tweet.RetweetCount != nil {
			combined += *tweet.RetweetCount
		}
		if tweet.QuoteCount != nil {
			combined += *tweet.QuoteCount
		}
		rec.Reposts = metrics.Int64(combined)
	}
	return rec
}
