package linkedin

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const postHtml = `<html><body>
	<a class="text-sm link-styled" href="/in/jane-doe">Jane Doe</a>
	<p>Acme Corp &middot; 2,799 followers</p>
	<a data-test-id="social-actions__reactions" data-num-reactions="120">120</a>
	<a data-test-id="social-actions__comments" data-num-comments="14">14</a>
	<p data-test-id="main-feed-activity-card__commentary">
		Thrilled to   announce
		our new product!
	</p>
</body></html>`

func TestParsePost(t *testing.T) {
	post, err := ParsePost([]byte(postHtml))
	require.NoError(t, err)

	require.Equal(t, "Jane Doe", post.Author)
	require.Equal(t, "https://www.linkedin.com/in/jane-doe", post.AuthorProfileUrl)
	require.Equal(t, "Thrilled to announce our new product!", post.Content)
	require.Equal(t, int64(120), *post.Likes)
	require.Equal(t, int64(14), *post.Comments)
	require.Equal(t, int64(2799), *post.Followers)
}

func TestParsePostMissingCounts(t *testing.T) {
	// author and commentary present, counts absent: still a post
	html := `<html><body>
		<a class="text-sm link-styled" href="/in/jane-doe">Jane Doe</a>
		<p data-test-id="main-feed-activity-card__commentary">Short update</p>
	</body></html>`
	post, err := ParsePost([]byte(html))
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", post.Author)
	require.Nil(t, post.Likes)
	require.Nil(t, post.Comments)
	require.Nil(t, post.Followers)
}

func TestParsePostUnrecognizedPage(t *testing.T) {
	// login walls and removed posts render without any activity card
	// markup and must not pass as a post with empty fields
	_, err := ParsePost([]byte(`<html><body><p>Sign in to continue</p></body></html>`))
	require.Error(t, err)
}

func TestParseProfileFollowers(t *testing.T) {
	html := `<html><body><span>22K followers</span></body></html>`
	count, ok := ParseProfileFollowers([]byte(html))
	require.True(t, ok)
	require.Equal(t, int64(22000), count)

	_, ok = ParseProfileFollowers([]byte(`<html><body><span>hello</span></body></html>`))
	require.False(t, ok)
}

func TestParseFollowerText(t *testing.T) {
	testCases := []struct {
		text     string
		expected int64
		ok       bool
	}{
		{"2,799 followers", 2799, true},
		{"22K followers", 22000, true},
		{"1.3M followers", 1300000, true},
		{"followers", 0, false},
	}
	for _, test := range testCases {
		count, ok := parseFollowerText(test.text)
		require.Equal(t, test.ok, ok, test.text)
		if test.ok {
			require.Equal(t, test.expected, count, test.text)
		}
	}
}
