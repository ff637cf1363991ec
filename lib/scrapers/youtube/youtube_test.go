package youtube

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractVideoId(t *testing.T) {
	testCases := []struct {
		url      string
		expected string
		ok       bool
	}{
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=10s", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/shorts/abc123def45", "abc123def45", true},
		{"https://www.youtube.com/embed/abc123def45", "abc123def45", true},
		{"https://www.youtube.com/v/abc123def45", "abc123def45", true},
		{"", "", false},
		{"https://www.youtube.com/", "", false},
		{"https://www.youtube.com/watch", "", false},
	}

	for _, test := range testCases {
		id, err := ExtractVideoId(test.url)
		if !test.ok {
			require.Error(t, err, test.url)
			continue
		}
		require.NoError(t, err, test.url)
		require.Equal(t, test.expected, id, test.url)
	}
}

func TestParseCount(t *testing.T) {
	require.Nil(t, parseCount(""))
	require.Nil(t, parseCount("not a number"))
	require.Equal(t, int64(123456), *parseCount("123456"))
}
