package session

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/streambox/streambox/internal/config"
	"github.com/streambox/streambox/internal/models"
	"github.com/webtor-io/lazymap"
)

// resumeFloor is the minimum checkpointed elapsed time worth resuming
// to, in seconds. Below it playback starts from the beginning.
const resumeFloor = 5.0

// SessionData is everything a session needs before its first frame:
// the title aggregate, the resume point and the opening episode's
// caption track and cast list
type SessionData struct {
	Detail          *models.TitleDetail `json:"detail"`
	InitialCaptions []models.CaptionCue `json:"initial_captions,omitempty"`
	Cast            []models.Actor      `json:"cast,omitempty"`
	ResumeEpisode   int                 `json:"resume_episode"`
	ResumeTime      float64             `json:"resume_time"`
}

// CatalogClient loads the title aggregate from a catalog source
type CatalogClient interface {
	FetchTitleDetail(ctx context.Context, id, sourceName, sourceURL string) (*models.TitleDetail, error)
}

// CaptionFetcher loads the caption track for one episode
type CaptionFetcher interface {
	FetchForEpisode(ctx context.Context, title *models.TitleDetail, episodeIndex int) []models.CaptionCue
}

// CastFetcher loads the enriched cast list for an external-catalog id
type CastFetcher interface {
	Enabled() bool
	FetchCast(ctx context.Context, externalID string) ([]models.Actor, error)
}

// CheckpointReader reads durable playback checkpoints
type CheckpointReader interface {
	GetPlayRecord(source, id string) (*models.PlayRecord, error)
}

// Loader assembles SessionData for a (source, id) pair. Concurrent loads
// of the same pair share a single in-flight fetch and its result; the
// title aggregate is immutable once loaded, so results are never evicted
// for the process lifetime.
type Loader struct {
	sources     *config.Sources
	catalog     CatalogClient
	captions    CaptionFetcher
	cast        CastFetcher
	checkpoints CheckpointReader
	cache       lazymap.LazyMap[*SessionData]
	logger      *logrus.Logger
}

// NewLoader creates a session data loader
func NewLoader(sources *config.Sources, catalog CatalogClient, captions CaptionFetcher, cast CastFetcher, checkpoints CheckpointReader, logger *logrus.Logger) *Loader {
	return &Loader{
		sources:     sources,
		catalog:     catalog,
		captions:    captions,
		cast:        cast,
		checkpoints: checkpoints,
		cache:       lazymap.New[*SessionData](&lazymap.Config{}),
		logger:      logger,
	}
}

// Load returns the session data for a (source, id) pair, fetching it at
// most once per pair
func (l *Loader) Load(ctx context.Context, sourceKey, id string) (*SessionData, error) {
	return l.cache.Get(models.RecordKey(sourceKey, id), func() (*SessionData, error) {
		return l.fetch(ctx, sourceKey, id)
	})
}

func (l *Loader) fetch(ctx context.Context, sourceKey, id string) (*SessionData, error) {
	source, found := l.sources.FindVideoSource(sourceKey)
	if !found {
		return nil, models.ErrUnknownSource
	}

	detail, err := l.catalog.FetchTitleDetail(ctx, id, source.Name, source.URL)
	if err != nil {
		return nil, err
	}

	data := &SessionData{Detail: detail}

	record, err := l.checkpoints.GetPlayRecord(sourceKey, id)
	if err != nil {
		l.logger.WithError(err).Warn("Failed to read checkpoint, starting from the beginning")
	}
	if record != nil && record.EpisodeIndex >= 0 && record.EpisodeIndex < len(detail.Episodes) {
		data.ResumeEpisode = record.EpisodeIndex
		if record.CurrentTime > resumeFloor {
			data.ResumeTime = record.CurrentTime
		}
	}

	// The caption track and cast list load in parallel; either failing
	// leaves its field empty without failing the session.
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		data.InitialCaptions = l.captions.FetchForEpisode(ctx, detail, data.ResumeEpisode)
	}()

	if l.cast.Enabled() && detail.ExternalID != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			actors, err := l.cast.FetchCast(ctx, detail.ExternalID)
			if err != nil {
				l.logger.WithError(err).Debug("Cast enrichment failed")
				return
			}
			data.Cast = actors
		}()
	}

	wg.Wait()

	l.logger.WithFields(logrus.Fields{
		"source":   sourceKey,
		"id":       id,
		"title":    detail.Title,
		"episodes": len(detail.Episodes),
		"resume":   data.ResumeTime,
	}).Info("Session data loaded")

	return data, nil
}
