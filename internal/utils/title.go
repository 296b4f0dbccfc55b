package utils

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	cjkEpisodeRegex = regexp.MustCompile(`第(\d+)集`)
	epPrefixRegex   = regexp.MustCompile(`[Ee][Pp]?(\d+)`)
	bareNumberRegex = regexp.MustCompile(`(?:^|\s)(\d+)(?:\s|$)`)
	yearRegex       = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
)

// ExtractEpisodeNumber derives the 1-based episode number from an episode
// display title. Movies always count as episode 1. Returns 0 when no
// number can be derived; callers fall back to index+1.
func ExtractEpisodeNumber(episodeTitle string, isMovie bool) int {
	if isMovie {
		return 1
	}

	// Formats like 第1集, 第01集, 第10集
	if matches := cjkEpisodeRegex.FindStringSubmatch(episodeTitle); len(matches) > 1 {
		if n, err := strconv.Atoi(matches[1]); err == nil {
			return n
		}
	}

	// Formats like EP01, EP1, E01, E1
	if matches := epPrefixRegex.FindStringSubmatch(episodeTitle); len(matches) > 1 {
		if n, err := strconv.Atoi(matches[1]); err == nil {
			return n
		}
	}

	// Bare numbers at word boundaries, like "01" or "1"
	if matches := bareNumberRegex.FindStringSubmatch(episodeTitle); len(matches) > 1 {
		if n, err := strconv.Atoi(matches[1]); err == nil {
			return n
		}
	}

	return 0
}

// ExtractYear extracts a 4-digit year from a title or year string.
// Returns 0 if no year is found.
func ExtractYear(s string) int {
	matches := yearRegex.FindStringSubmatch(s)
	if len(matches) > 1 {
		year, err := strconv.Atoi(matches[1])
		if err == nil {
			return year
		}
	}
	return 0
}

// FormatTime renders seconds as m:ss for notices and logs
func FormatTime(seconds float64) string {
	if seconds < 0 {
		seconds = -seconds
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
