package metrics

import "strings"

// Platform identifies the social network a post URL belongs to.
type Platform string

const (
	PlatformX         Platform = "x"
	PlatformYouTube   Platform = "youtube"
	PlatformTikTok    Platform = "tiktok"
	PlatformStockbit  Platform = "stockbit"
	PlatformInstagram Platform = "instagram"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformUnknown   Platform = "unknown"
)

// Platforms lists every supported platform, i.e. every platform except
// PlatformUnknown. The order here is the order used for display surfaces.
var Platforms = []Platform{
	PlatformX,
	PlatformYouTube,
	PlatformTikTok,
	PlatformStockbit,
	PlatformInstagram,
	PlatformLinkedIn,
}

var domainFragments = []struct {
	fragment string
	platform Platform
}{
	{"twitter.com", PlatformX},
	{"x.com", PlatformX},
	{"youtube.com", PlatformYouTube},
	{"youtu.be", PlatformYouTube},
	{"tiktok.com", PlatformTikTok},
	{"stockbit.com", PlatformStockbit},
	{"instagram.com", PlatformInstagram},
	{"linkedin.com", PlatformLinkedIn},
}

// Classify maps a post URL to its platform. It is total: anything that
// doesn't contain a known domain fragment comes back as PlatformUnknown.
// Matching is case-insensitive, first fragment wins.
func Classify(url string) Platform {
	lower := strings.ToLower(url)
	for _, d := range domainFragments {
		if strings.Contains(lower, d.fragment) {
			return d.platform
		}
	}
	return PlatformUnknown
}

// MetricRecord is the canonical engagement record every platform fetch is
// normalized into. Url and Platform are always set; everything else is
// nullable and serializes as null when absent so the JSON shape is stable
// for downstream consumers.
type MetricRecord struct {
	Date      *string  `json:"date"`
	Url       string   `json:"url"`
	Author    *string  `json:"author"`
	Content   *string  `json:"content"`
	Followers *int64   `json:"followers"`
	Views     *int64   `json:"views"`
	Likes     *int64   `json:"likes"`
	Comments  *int64   `json:"comments"`
	Saves     *int64   `json:"saves"`
	Shares    *int64   `json:"shares"`
	Reposts   *int64   `json:"reposts"`
	Platform  Platform `json:"platform"`
	Error     *string  `json:"error"`
}

// Failed reports whether the record carries an error instead of metrics.
func (r MetricRecord) Failed() bool {
	return r.Error != nil
}

// Errored builds a record carrying only an error message, with every
// metric field null.
func Errored(url string, platform Platform, message string) MetricRecord {
	return MetricRecord{
		Url:      url,
		Platform: platform,
		Error:    &message,
	}
}

// String returns a pointer to s, for filling nullable record fields.
func String(s string) *string {
	return &s
}

// Int64 returns a pointer to v, for filling nullable record fields.
func Int64(v int64) *int64 {
	return &v
}
