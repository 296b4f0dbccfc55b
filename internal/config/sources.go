package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/streambox/streambox/internal/models"
)

// Sources holds the configured catalog and caption sources
type Sources struct {
	VideoSources   []models.SourceConfig  `json:"video_sources"`
	CaptionSources []models.CaptionSource `json:"caption_sources"`
}

// FindVideoSource resolves a catalog source by its key
func (s *Sources) FindVideoSource(key string) (models.SourceConfig, bool) {
	for _, source := range s.VideoSources {
		if source.Key == key {
			return source, true
		}
	}
	return models.SourceConfig{}, false
}

// LoadSources reads the sources file. A missing file yields the built-in
// defaults; a malformed file is an error rather than silently ignored.
func LoadSources(path string) (*Sources, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return defaultSources(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	var sources Sources
	if err := json.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("failed to parse sources file: %w", err)
	}

	if len(sources.VideoSources) == 0 {
		sources.VideoSources = defaultSources().VideoSources
	}

	return &sources, nil
}

func defaultSources() *Sources {
	return &Sources{
		VideoSources: []models.SourceConfig{
			{
				ID:      "1",
				Key:     "ruyi",
				Name:    "Ruyi",
				URL:     "https://cj.rycjapi.com/api.php/provide/vod",
				Enabled: true,
			},
			{
				ID:      "2",
				Key:     "liangzi",
				Name:    "Liangzi",
				URL:     "https://cj.lzcaiji.com/api.php/provide/vod",
				Enabled: true,
			},
		},
		CaptionSources: []models.CaptionSource{},
	}
}
