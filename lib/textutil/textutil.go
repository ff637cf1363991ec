package textutil

import (
	"regexp"
	"strconv"
	"strings"
)

// CollapseWhitespace flattens any run of whitespace (including newlines)
// into a single space and trims the ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ParseApproxCount parses engagement counts the way platforms render them:
// "2,799", "22K", "1.3M", "2 B". Returns false when the text holds no
// parseable number.
func ParseApproxCount(s string) (int64, bool) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" {
		return 0, false
	}

	multiplier := 1.0
	switch {
	case strings.HasSuffix(s, "K"):
		multiplier = 1_000
		s = strings.TrimSuffix(s, "K")
	case strings.HasSuffix(s, "M"):
		multiplier = 1_000_000
		s = strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "B"):
		multiplier = 1_000_000_000
		s = strings.TrimSuffix(s, "B")
	}

	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int64(val * multiplier), true
}

var firstNumberRegex = regexp.MustCompile(`[\d][\d,.]*\s*[KMB]?`)

// FirstApproxCount finds and parses the first count-looking token in
// free text, e.g. "1.2K Likes, 87 Comments" -> 1200.
func FirstApproxCount(s string) (int64, bool) {
	match := firstNumberRegex.FindString(strings.ToUpper(s))
	if match == "" {
		return 0, false
	}
	return ParseApproxCount(match)
}

var hashtagRegex = regexp.MustCompile(`#[\p{L}\p{N}_]+`)

// ExtractHashtags pulls unique hashtags out of a caption, preserving
// first-seen order and original casing.
func ExtractHashtags(caption string) []string {
	seen := map[string]bool{}
	var out []string
	for _, tag := range hashtagRegex.FindAllString(caption, -1) {
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tag)
	}
	return out
}
