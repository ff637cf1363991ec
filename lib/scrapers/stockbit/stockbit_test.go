package stockbit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const postHtml = `<html>
<head>
	<title>Budi Santoso (budisantoso) on Stockbit</title>
	<meta name="description" content="  $BBCA looks strong this
quarter, accumulating  ">
</head>
<body>
	<time datetime="2024-05-14T10:00:00Z">2 days ago</time>
	<div data-cy="post-guest-footer">
		<a class="post-guest-footer-likes-abc">12 Likes</a>
		<a class="post-guest-footer-replies-xyz">3 Replies</a>
	</div>
</body>
</html>`

func TestParsePost(t *testing.T) {
	post, err := ParsePost([]byte(postHtml))
	require.NoError(t, err)

	require.Equal(t, "budisantoso", post.Author)
	require.Equal(t, "$BBCA looks strong this quarter, accumulating", post.Content)
	require.Equal(t, "2024-05-14T10:00:00Z", post.Date)
	require.Equal(t, int64(12), *post.Likes)
	require.Equal(t, int64(3), *post.Comments)
}

func TestParsePostDateFallsBackToText(t *testing.T) {
	html := `<html><head><title>A (b) on Stockbit</title></head>
<body><time>14 May 2024</time></body></html>`
	post, err := ParsePost([]byte(html))
	require.NoError(t, err)
	require.Equal(t, "14 May 2024", post.Date)
}

func TestParsePostUnrecognizedPage(t *testing.T) {
	_, err := ParsePost([]byte(`<html><body><h1>404</h1></body></html>`))
	require.Error(t, err)
}

func TestParseProfileFollowers(t *testing.T) {
	testCases := []struct {
		html     string
		expected int64
		ok       bool
	}{
		{`<html><body><span>2,799 Followers</span></body></html>`, 2799, true},
		{`<html><body><span>Followers 120</span></body></html>`, 120, true},
		{`<html><body><span>1.5K Pengikut</span></body></html>`, 1500, true},
		{`<html><body><span>Pengikut 42</span></body></html>`, 42, true},
		{`<html><body><span>no counts here</span></body></html>`, 0, false},
	}

	for _, test := range testCases {
		count, ok := ParseProfileFollowers([]byte(test.html))
		require.Equal(t, test.ok, ok, test.html)
		if test.ok {
			require.Equal(t, test.expected, count, test.html)
		}
	}
}
