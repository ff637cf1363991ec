package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCollapseWhitespace(t *testing.T) {
	require.Equal(t, "a b c", CollapseWhitespace("  a\n\tb   c "))
	require.Equal(t, "", CollapseWhitespace("   \n "))
}

func TestParseApproxCount(t *testing.T) {
	testCases := []struct {
		in       string
		expected int64
		ok       bool
	}{
		{"2,799", 2799, true},
		{"22K", 22000, true},
		{"22k", 22000, true},
		{"1.3M", 1300000, true},
		{"2 B", 2000000000, true},
		{"0", 0, true},
		{"", 0, false},
		{"followers", 0, false},
	}

	for _, test := range testCases {
		got, ok := ParseApproxCount(test.in)
		require.Equal(t, test.ok, ok, "input: %q", test.in)
		require.Equal(t, test.expected, got, "input: %q", test.in)
	}
}

func TestFirstApproxCount(t *testing.T) {
	got, ok := FirstApproxCount("1.2K Likes, 87 Comments")
	require.True(t, ok)
	require.Equal(t, int64(1200), got)

	got, ok = FirstApproxCount("2,799 followers")
	require.True(t, ok)
	require.Equal(t, int64(2799), got)

	_, ok = FirstApproxCount("no numbers here")
	require.False(t, ok)
}

func TestExtractHashtags(t *testing.T) {
	tags := ExtractHashtags("new drop #Sale #sale #summer_2025 check it out #Sale")
	require.Equal(t, []string{"#Sale", "#summer_2025"}, tags)

	require.Empty(t, ExtractHashtags("no tags"))
}
