package caption

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"github.com/streambox/streambox/internal/models"
	"github.com/streambox/streambox/internal/utils"
)

// maxTextLen drops cues too long to render in the overlay
const maxTextLen = 50

// Querier fetches one episode's caption track from a single endpoint
type Querier interface {
	Query(ctx context.Context, endpoint, externalID string, episodeNumber int) ([]models.CaptionCue, error)
}

// Fetcher queries ranked caption sources for one episode, returning the
// first non-empty result. Source priority is positional: the query for
// source N+1 never starts before source N's attempt resolves.
type Fetcher struct {
	sources   []models.CaptionSource
	querier   Querier
	blocklist *utils.Blocklist
	cache     *gocache.Cache
	logger    *logrus.Logger
}

// NewFetcher creates a new fallback fetcher over the ranked source list
func NewFetcher(sources []models.CaptionSource, querier Querier, blocklist *utils.Blocklist, logger *logrus.Logger) *Fetcher {
	return &Fetcher{
		sources:   sources,
		querier:   querier,
		blocklist: blocklist,
		cache:     gocache.New(10*time.Minute, 30*time.Minute),
		logger:    logger,
	}
}

// HasEnabledSources reports whether at least one caption source is enabled
func (f *Fetcher) HasEnabledSources() bool {
	for _, source := range f.sources {
		if source.Enabled {
			return true
		}
	}
	return false
}

// FetchForEpisode resolves the episode number from the episode's display
// title and fetches its caption track. Always degrades to an empty slice,
// never fails the caller.
func (f *Fetcher) FetchForEpisode(ctx context.Context, title *models.TitleDetail, episodeIndex int) []models.CaptionCue {
	if title == nil || title.ExternalID == "" {
		f.logger.Debug("No external catalog id, skipping caption fetch")
		return nil
	}

	episodeNumber := utils.ExtractEpisodeNumber(title.EpisodeTitle(episodeIndex), title.IsMovie())
	if episodeNumber == 0 {
		episodeNumber = episodeIndex + 1
	}

	return f.Fetch(ctx, title.ExternalID, episodeNumber)
}

// Fetch queries enabled sources in list order, sequentially, returning
// the first source's non-empty result. A source that errors or returns
// zero cues is skipped without aborting the overall fetch.
func (f *Fetcher) Fetch(ctx context.Context, externalID string, episodeNumber int) []models.CaptionCue {
	if externalID == "" {
		return nil
	}

	cacheKey := fmt.Sprintf("%s:%d", externalID, episodeNumber)
	if cached, found := f.cache.Get(cacheKey); found {
		cues := cached.([]models.CaptionCue)
		f.logger.WithFields(logrus.Fields{
			"external_id": externalID,
			"episode":     episodeNumber,
			"count":       len(cues),
		}).Debug("Caption track served from cache")
		return cues
	}

	for _, source := range f.sources {
		if !source.Enabled {
			continue
		}

		cues, err := f.querier.Query(ctx, source.URL, externalID, episodeNumber)
		if err != nil {
			f.logger.WithError(err).WithField("source", source.Name).Warn("Caption source failed, trying next")
			continue
		}
		if len(cues) == 0 {
			continue
		}

		cues = f.filterCues(cues)
		f.logger.WithFields(logrus.Fields{
			"source":  source.Name,
			"episode": episodeNumber,
			"count":   len(cues),
		}).Info("Caption track loaded")

		f.cache.Set(cacheKey, cues, gocache.DefaultExpiration)
		return cues
	}

	f.logger.WithFields(logrus.Fields{
		"external_id": externalID,
		"episode":     episodeNumber,
	}).Debug("No caption source returned cues")
	return nil
}

// filterCues drops cues that are overlong or match the blocklist
func (f *Fetcher) filterCues(cues []models.CaptionCue) []models.CaptionCue {
	filtered := make([]models.CaptionCue, 0, len(cues))
	for _, cue := range cues {
		if len([]rune(cue.Text)) > maxTextLen {
			continue
		}
		if f.blocklist != nil {
			if matched, term := f.blocklist.Matches(cue.Text); matched {
				f.logger.WithField("term", term).Debug("Caption cue blocked")
				continue
			}
		}
		filtered = append(filtered, cue)
	}
	return filtered
}
