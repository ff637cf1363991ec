// Package stockbit scrapes Stockbit stream posts. The guest view is
// rendered entirely client side, so this one goes through a headless
// browser instead of plain HTTP.
package stockbit

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
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

	// followers live on the author's profile page, a separate render
	if post.Author != "" {
		profileHtml, err := s.renderPage(ctx, "https://stockbit.com/"+post.Author)
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
	// give the client side app a beat to paint the footer counts
	page.Timeout(time.Second * 5).WaitRequestIdle(time.Second, nil, nil, nil)()

	html, err := page.HTML()
	if err != nil {
		return nil, err
	}
	return []byte(html), nil
}

// Post is the parse result for a single stream post page.
type Post struct {
	Author   string
	Content  string
	Date     string
	Likes    *int64
	Comments *int64
}

func (p Post) record(url string) metrics.MetricRecord {
	rec := metrics.MetricRecord{
		Url:      url,
		Platform: metrics.PlatformStockbit,
		Likes:    p.Likes,
		Comments: p.Comments,
	}
	if p.Author != "" {
		rec.Author = metrics.String(p.Author)
	}
	if p.Content != "" {
		rec.Content = metrics.String(p.Content)
	}
	if p.Date != "" {
		rec.Date = metrics.String(p.Date)
	}
	return rec
}

var titleAuthorRegex = regexp.MustCompile(`([^()]+?)\s*\(([^()]+)\)\s*on\s*Stockbit`)

// ParsePost extracts the post fields from rendered guest-view HTML.
func ParsePost(html []byte) (Post, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(html))
	if err != nil {
		return Post{}, err
	}

	var post Post

	footer := doc.Find(`div[data-cy="post-guest-footer"]`)
	footer.Find("a").Each(func(_ int, a *goquery.Selection) {
		class := a.AttrOr("class", "")
		switch {
		case strings.Contains(class, "post-guest-footer-likes"):
			if count, ok := textutil.FirstApproxCount(a.Text()); ok {
				post.Likes = &count
			}
		case strings.Contains(class, "post-guest-footer-replies"):
			if count, ok := textutil.FirstApproxCount(a.Text()); ok {
				post.Comments = &count
			}
		}
	})

	title := doc.Find("title").Text()
	if groups := titleAuthorRegex.FindStringSubmatch(title); len(groups) == 3 {
		post.Author = strings.TrimSpace(groups[2])
	}

	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		post.Content = textutil.CollapseWhitespace(desc)
	}

	timeElem := doc.Find("time").First()
	if datetime, ok := timeElem.Attr("datetime"); ok {
		post.Date = datetime
	} else {
		post.Date = strings.TrimSpace(timeElem.Text())
	}

	if post.Author == "" && post.Content == "" && post.Likes == nil {
		return Post{}, fmt.Errorf("page carried no recognizable post markup")
	}
	return post, nil
}

var followerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)([\d][\d,.]*\s*[KMB]?)\s*Followers`),
	regexp.MustCompile(`(?i)Followers\s*([\d][\d,.]*\s*[KMB]?)`),
	regexp.MustCompile(`(?i)([\d][\d,.]*\s*[KMB]?)\s*Pengikut`),
	regexp.MustCompile(`(?i)Pengikut\s*([\d][\d,.]*\s*[KMB]?)`),
}

// ParseProfileFollowers digs the follower count out of a rendered
// profile page, tolerating both the English and Indonesian labels.
func ParseProfileFollowers(html []byte) (int64, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(html))
	if err != nil {
		return 0, false
	}
	text := doc.Text()

	for _, pattern := range followerPatterns {
		groups := pattern.FindStringSubmatch(text)
		if len(groups) < 2 {
			continue
		}
		if count, ok := textutil.ParseApproxCount(groups[1]); ok {
			return count, true
		}
	}
	return 0, false
}
