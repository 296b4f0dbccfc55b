package catalog

import (
	"fmt"
	"strings"

	"github.com/streambox/streambox/internal/models"
)

// ParsePlayURL expands the catalog's packed play-url field into ordered
// episodes. The field packs play-from groups with "$$$", episodes within
// a group with "#", and "title$url" pairs with "$". The first group
// carrying playlist URLs wins; otherwise the first group is used.
func ParsePlayURL(playURL string) []models.Episode {
	if playURL == "" {
		return nil
	}

	groups := strings.Split(playURL, "$$$")
	chosen := groups[0]
	for _, group := range groups {
		if strings.Contains(group, ".m3u8") {
			chosen = group
			break
		}
	}

	var episodes []models.Episode
	for _, entry := range strings.Split(chosen, "#") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		title := ""
		streamURL := entry
		if idx := strings.Index(entry, "$"); idx >= 0 {
			title = entry[:idx]
			streamURL = entry[idx+1:]
		}
		if !strings.HasPrefix(streamURL, "http") {
			continue
		}
		if title == "" {
			title = fmt.Sprintf("第%d集", len(episodes)+1)
		}

		episodes = append(episodes, models.Episode{
			Index: len(episodes),
			URL:   streamURL,
			Title: title,
		})
	}

	return episodes
}
