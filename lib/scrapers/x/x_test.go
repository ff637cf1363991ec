package x

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractTweetId(t *testing.T) {
	testCases := []struct {
		url      string
		expected string
		ok       bool
	}{
		{"https://x.com/someuser/status/1234567890", "1234567890", true},
		{"https://twitter.com/someuser/status/987", "987", true},
		{"https://twitter.com/someuser/statuses/55", "55", true},
		{"https://x.com/someuser/status/123?s=20", "123", true},
		{"https://x.com/someuser", "", false},
		{"https://example.com/status/123", "", false},
	}

	for _, test := range testCases {
		id, err := ExtractTweetId(test.url)
		if !test.ok {
			require.Error(t, err, test.url)
			continue
		}
		require.NoError(t, err, test.url)
		require.Equal(t, test.expected, id)
	}
}

func TestSyndicationToken(t *testing.T) {
	token := syndicationToken("1790555395041472544")
	require.NotEmpty(t, token)
	require.NotContains(t, token, "0")
	require.NotContains(t, token, ".")

	require.Empty(t, syndicationToken("not-a-number"))
}

func TestNormalizeTweet(t *testing.T) {
	likes := int64(120)
	replies := int64(14)
	retweets := int64(30)
	quotes := int64(5)
	followers := int64(9000)

	tweet := tweetResult{
		CreatedAt:     "2024-05-14T18:04:00.000Z",
		Text:          "hello\nworld",
		FavoriteCount: &likes,
		ReplyCount:    &replies,
		RetweetCount:  &retweets,
		QuoteCount:    &quotes,
	}
	tweet.User.ScreenName = "someuser"
	tweet.User.Followers = &followers

	rec := normalizeTweet("https://x.com/someuser/status/1", tweet)
	require.Equal(t, "someuser", *rec.Author)
	require.Equal(t, "hello world", *rec.Content)
	require.Equal(t, "May 14, 2024", *rec.Date)
	require.Equal(t, int64(120), *rec.Likes)
	require.Equal(t, int64(14), *rec.Comments)
	require.Equal(t, int64(35), *rec.Reposts)
	require.Equal(t, int64(9000), *rec.Followers)
	require.Nil(t, rec.Shares)
	require.Nil(t, rec.Error)
}

func TestNormalizeTweetNoRepostCounts(t *testing.T) {
	rec := normalizeTweet("https://x.com/u/status/1", tweetResult{})
	require.Nil(t, rec.Reposts)
	require.Nil(t, rec.Author)
	require.Nil(t, rec.Date)
}
