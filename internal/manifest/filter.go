// Package manifest rewrites fetched stream manifests before they are
// handed to the decoder.
package manifest

import "strings"

// adMarker tags the boundary of spliced-in ad segments. Removing the
// boundary lines makes the decoder treat the playlist as one continuous
// stream and drop the spliced content.
const adMarker = "#EXT-X-DISCONTINUITY"

// FilterAds removes every line containing the ad boundary marker from a
// playlist document. All other lines, including blank ones, are kept in
// their original order. Never fails; empty input returns "".
func FilterAds(playlist string) string {
	if playlist == "" {
		return ""
	}

	lines := strings.Split(playlist, "\n")
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.Contains(line, adMarker) {
			continue
		}
		filtered = append(filtered, line)
	}

	return strings.Join(filtered, "\n")
}
