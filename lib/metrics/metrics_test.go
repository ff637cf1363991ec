package metrics

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		url      string
		expected Platform
	}{
		{"https://x.com/someone/status/123456", PlatformX},
		{"https://twitter.com/someone/status/123456", PlatformX},
		{"https://X.COM/SOMEONE/status/1", PlatformX},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", PlatformYouTube},
		{"https://youtu.be/dQw4w9WgXcQ", PlatformYouTube},
		{"https://www.tiktok.com/@user/video/7576601683778702613", PlatformTikTok},
		{"https://stockbit.com/post/12345", PlatformStockbit},
		{"https://www.instagram.com/p/Cxyz123/", PlatformInstagram},
		{"https://www.linkedin.com/posts/someone_activity-123", PlatformLinkedIn},
		{"https://unknown.example/1", PlatformUnknown},
		{"not even a url", PlatformUnknown},
		{"", PlatformUnknown},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, Classify(test.url), "url: %s", test.url)
	}
}

func TestRecordJsonShape(t *testing.T) {
	rec := Errored("https://unknown.example/1", PlatformUnknown, "Unsupported platform")

	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	var decoded map[string]any
	err = json.Unmarshal(raw, &decoded)
	require.NoError(t, err)

	// every canonical field must be present, absent ones as explicit nulls
	for _, field := range []string{
		"date", "url", "author", "content", "followers", "views",
		"likes", "comments", "saves", "shares", "reposts", "platform", "error",
	} {
		require.Contains(t, decoded, field)
	}
	require.Nil(t, decoded["likes"])
	require.Equal(t, "unknown", decoded["platform"])
	require.Equal(t, "Unsupported platform", decoded["error"])
}

func TestIsQuota(t *testing.T) {
	require.True(t, IsQuota(Quotaf("throttled by upstream")))
	require.True(t, IsQuota(fmt.Errorf("wrapped: %w", Quotaf("slow down"))))

	require.True(t, IsQuota(fmt.Errorf("HTTP 429 Too Many Requests")))
	require.True(t, IsQuota(fmt.Errorf("Rate Limit reached for resource")))
	require.True(t, IsQuota(fmt.Errorf("daily quota exhausted")))
	require.True(t, IsQuota(fmt.Errorf("request limit exceeded")))

	require.False(t, IsQuota(nil))
	require.False(t, IsQuota(fmt.Errorf("video not found")))
	require.False(t, IsQuota(fmt.Errorf("parse failure")))
}
