// Package scheduler runs the periodic maintenance jobs.
package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/streambox/streambox/internal/models"
)

// Scheduler manages scheduled tasks
type Scheduler struct {
	cron          *cron.Cron
	db            *models.Database
	retentionDays int
	logger        *logrus.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(db *models.Database, retentionDays int, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:          cron.New(),
		db:            db,
		retentionDays: retentionDays,
		logger:        logger,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.logger.Info("Starting scheduler")

	// Every hour: sweep play records past the retention window
	_, err := s.cron.AddFunc("0 * * * *", func() {
		s.runRetentionSweep()
	})
	if err != nil {
		return fmt.Errorf("failed to add retention job: %w", err)
	}

	// Daily: report favorites whose play record is gone
	_, err = s.cron.AddFunc("0 3 * * *", func() {
		s.runFavoritesAudit()
	})
	if err != nil {
		return fmt.Errorf("failed to add favorites audit job: %w", err)
	}

	s.cron.Start()

	// Run the sweep once at startup so a long-stopped instance catches up
	go s.runRetentionSweep()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cron.Stop()
}

// runRetentionSweep deletes checkpoints not touched within the window
func (s *Scheduler) runRetentionSweep() {
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)

	deleted, err := s.db.DeletePlayRecordsBefore(cutoff)
	if err != nil {
		s.logger.WithError(err).Error("Retention sweep failed")
		return
	}

	if deleted > 0 {
		s.logger.WithFields(logrus.Fields{
			"deleted": deleted,
			"cutoff":  cutoff.Format(time.RFC3339),
		}).Info("Swept stale play records")
	}
}

// runFavoritesAudit logs bookmarks whose checkpoint the retention sweep
// removed. They stay bookmarked, the log is for visibility.
func (s *Scheduler) runFavoritesAudit() {
	favorites, err := s.db.GetAllFavorites()
	if err != nil {
		s.logger.WithError(err).Error("Favorites audit failed")
		return
	}

	orphans := 0
	for _, favorite := range favorites {
		record, err := s.db.GetPlayRecord(favorite.Source, favorite.ID)
		if err != nil {
			s.logger.WithError(err).Error("Favorites audit failed")
			return
		}
		if record == nil {
			orphans++
		}
	}

	s.logger.WithFields(logrus.Fields{
		"favorites": len(favorites),
		"unwatched": orphans,
	}).Debug("Favorites audit complete")
}
