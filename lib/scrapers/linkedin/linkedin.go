// Package linkedin scrapes public post pages. LinkedIn serves a
// logged-out "activity card" view whose reaction and comment counts sit
// in data attributes; follower counts sometimes require a hop to the
// author's profile.
package linkedin

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"socialpulse-backend/lib/metrics"
	"socialpulse-backend/lib/rodutil"
	"socialpulse-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"go.opentelemetry.io/otel/codes"
)

type Scraper struct {
	browser *rod.Browser
}

func NewScraper(browser *rod.Browser) *Scraper {
	return &Scraper{browser: browser}
}

func (s *Scraper) Fetch(ctx context.Context, url string) (metrics.MetricRecord, error) {
	ctx, span := tracer.Start(ctx, "scraper:Fetch")
	defer span.End()

	html, err := s.renderPage(ctx, url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to render post page")
		return metrics.MetricRecord{}, err
	}

	post, err := ParsePost(html)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse post page")
		return metrics.MetricRecord{}, err
	}

	rec := post.record(url)

	// the post page doesn't always carry the author's follower count;
	// fall back to their profile when we know where it is
	if rec.Followers == nil && post.AuthorProfileUrl != "" {
		profileHtml, err := s.renderPage(ctx, post.AuthorProfileUrl)
		if err == nil {
			if followers, ok := ParseProfileFollowers(profileHtml); ok {
				rec.Followers = metrics.Int64(followers)
			}
		} else {
			span.RecordError(err)
		}
	}

	return rec, nil
}

func (s *Scraper) renderPage(ctx context.Context, url string) ([]byte, error) {
	page, err := rodutil.NewPage(s.browser)
	if err != nil {
		return nil, err
	}
	defer page.Close()
	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return nil, err
	}
	if err := page.WaitLoad(); err != nil {
		return nil, err
	}
	page.Timeout(time.Second * 5).WaitRequestIdle(time.Second, nil, nil, nil)()

	html, err := page.HTML()
	if err != nil {
		return nil, err
	}
	return []byte(html), nil
}

// Post is the parse result for a public post page.
type Post struct {
	Author           string
	AuthorProfileUrl string
	Content          string
	Likes            *int64
	Comments         *int64
	Followers        *int64
}

func (p Post) record(url string) metrics.MetricRecord {
	rec := metrics.MetricRecord{
		Url:       url,
		Platform:  metrics.PlatformLinkedIn,
		Likes:     p.Likes,
		Comments:  p.Comments,
		Followers: p.Followers,
	}
	if p.Author != "" {
		rec.Author = metrics.String(p.Author)
	}
	if p.Content != "" {
		rec.Content = metrics.String(p.Content)
	}
	return rec
}

// ParsePost extracts engagement from the logged-out activity card
// markup.
func ParsePost(html []byte) (Post, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(html))
	if err != nil {
		return Post{}, err
	}

	var post Post

	nameTag := doc.Find("a.text-sm.link-styled").First()
	post.Author = strings.TrimSpace(nameTag.Text())
	if href, ok := nameTag.Attr("href"); ok && href != "" {
		if !strings.HasPrefix(href, "http") {
			href = "https://www.linkedin.com" + href
		}
		post.AuthorProfileUrl = href
	}

	if attr, ok := doc.Find(`a[data-test-id="social-actions__reactions"]`).Attr("data-num-reactions"); ok {
		if v, err := strconv.ParseInt(attr, 10, 64); err == nil {
			post.Likes = &v
		}
	}
	if attr, ok := doc.Find(`a[data-test-id="social-actions__comments"]`).Attr("data-num-comments"); ok {
		if v, err := strconv.ParseInt(attr, 10, 64); err == nil {
			post.Comments = &v
		}
	}

	content := doc.Find(`p[data-test-id="main-feed-activity-card__commentary"]`).Text()
	post.Content = textutil.CollapseWhitespace(content)

	doc.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := p.Text()
		if !strings.Contains(strings.ToLower(text), "followers") {
			return true
		}
		if count, ok := parseFollowerText(text); ok {
			post.Followers = &count
			return false
		}
		return true
	})

	// a page with none of the activity card markup is usually a login
	// wall or a removed post, not a post with empty fields
	if post.Author == "" && post.Content == "" &&
		post.Likes == nil && post.Comments == nil && post.Followers == nil {
		return Post{}, fmt.Errorf("page carried no recognizable post markup")
	}

	return post, nil
}

// ParseProfileFollowers reads the follower count off a profile page.
func ParseProfileFollowers(html []byte) (int64, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(html))
	if err != nil {
		return 0, false
	}

	var followers int64
	found := false
	doc.Find("span").EachWithBreak(func(_ int, span *goquery.Selection) bool {
		text := span.Text()
		if !strings.Contains(strings.ToLower(text), "followers") {
			return true
		}
		if count, ok := parseFollowerText(text); ok {
			followers = count
			found = true
			return false
		}
		return true
	})
	return followers, found
}

// parseFollowerText turns "2,799 followers" or "Acme Corp - 22K
// followers" into a count.
func parseFollowerText(text string) (int64, bool) {
	text = strings.ReplaceAll(strings.ToLower(text), "followers", "")
	return textutil.FirstApproxCount(text)
}
