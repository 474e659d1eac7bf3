package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/catops/cat-content-bot/internal/config"
	"github.com/catops/cat-content-bot/internal/models"
	"github.com/catops/cat-content-bot/internal/posting"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// dueLookahead is how far ahead of their scheduled time posts are picked
// up, so a post scheduled between two scans never waits a full cycle.
const dueLookahead = time.Hour

// Store is the subset of the analysis store the scheduler needs
type Store interface {
	DueScheduledPosts(ctx context.Context, now time.Time, lookahead time.Duration) ([]models.ScheduledPost, error)
	UpdatePostingStatus(ctx context.Context, recordID int64, status models.PostingStatus, errMsg string) error
	ScheduledFilePaths(ctx context.Context) (map[string]bool, error)
	HistorySince(ctx context.Context, since time.Time) ([]models.PostingRecord, error)
	Backup(ctx context.Context, destPath string) error
}

// Poster dispatches one analysis to one platform
type Poster interface {
	Dispatch(ctx context.Context, a *models.Analysis, platform string) error
}

// Notifier delivers posting summary reports
type Notifier interface {
	SendPostingReport(report *models.PostingReport) error
}

// Archive is an optional offsite copy of database backups
type Archive interface {
	Store(name string, data []byte) error
	List(prefix string) ([]string, error)
	Delete(name string) error
}

// Service drives the background work: promoting due scheduled posts to the
// orchestrator, and the housekeeping tasks (temp media cleanup, database
// backups, daily report). Housekeeping failures are logged and never
// interrupt the posting scan.
type Service struct {
	config   *config.Config
	store    Store
	poster   Poster
	notifier Notifier
	archive  Archive
	cron     *cron.Cron
}

// NewService creates a new scheduler service. notifier and archive may be
// nil when those channels are not configured.
func NewService(cfg *config.Config, store Store, poster Poster, notifier Notifier, archive Archive) *Service {
	return &Service{
		config:   cfg,
		store:    store,
		poster:   poster,
		notifier: notifier,
		archive:  archive,
		cron:     cron.New(cron.WithSeconds()),
	}
}

// Start begins the scheduled work
func (s *Service) Start() error {
	// Check for due posts every 5 minutes
	_, err := s.cron.AddFunc("0 */5 * * * *", func() {
		if err := s.ProcessDuePosts(context.Background()); err != nil {
			logrus.Errorf("Due post scan failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	// Clean up old temp media daily at 3 AM
	_, err = s.cron.AddFunc("0 0 3 * * *", func() {
		s.CleanupTempMedia(context.Background())
	})
	if err != nil {
		return err
	}

	// Back up the database daily at 2 AM
	_, err = s.cron.AddFunc("0 0 2 * * *", func() {
		s.BackupDatabase(context.Background())
	})
	if err != nil {
		return err
	}

	if s.notifier != nil {
		// Send the posting summary daily at 9 AM
		_, err = s.cron.AddFunc("0 0 9 * * *", func() {
			if err := s.SendDailyReport(context.Background()); err != nil {
				logrus.Errorf("Daily report failed: %v", err)
			}
		})
		if err != nil {
			return err
		}
	}

	s.cron.Start()
	logrus.Info("Scheduler started (due-post scan every 5 minutes)")
	return nil
}

// Stop stops the scheduler
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		logrus.Info("Scheduler stopped")
	}
}

// ProcessDuePosts promotes every due scheduled post to the orchestrator
// and transitions its row to a terminal status. Each (analysis, platform)
// pair resolves independently.
func (s *Service) ProcessDuePosts(ctx context.Context) error {
	due, err := s.store.DueScheduledPosts(ctx, time.Now().UTC(), dueLookahead)
	if err != nil {
		return fmt.Errorf("failed to load due posts: %w", err)
	}

	if len(due) == 0 {
		return nil
	}

	logrus.Infof("Processing %d due scheduled posts", len(due))

	for _, post := range due {
		s.dispatchScheduled(ctx, post)
	}

	return nil
}

func (s *Service) dispatchScheduled(ctx context.Context, post models.ScheduledPost) {
	if _, err := os.Stat(post.FilePath); err != nil {
		msg := fmt.Sprintf("media file not found: %s", post.FilePath)
		logrus.Errorf("Scheduled post %d: %s", post.RecordID, msg)
		s.updateStatus(ctx, post.RecordID, models.StatusFailed, msg)
		return
	}

	analysis := &models.Analysis{
		ID:               post.AnalysisID,
		FilePath:         post.FilePath,
		OriginalFilename: post.FilePath,
		MediaType:        post.MediaType,
		Caption:          post.Caption,
		Hashtags:         post.Hashtags,
	}

	err := s.poster.Dispatch(ctx, analysis, post.Platform)
	if err != nil {
		logrus.Errorf("Scheduled post %d to %s failed (%s): %v",
			post.RecordID, post.Platform, posting.Classify(err), err)
		s.updateStatus(ctx, post.RecordID, models.StatusFailed, err.Error())
		return
	}

	logrus.Infof("Scheduled post %d published to %s", post.RecordID, post.Platform)
	s.updateStatus(ctx, post.RecordID, models.StatusSuccess, "")
}

func (s *Service) updateStatus(ctx context.Context, recordID int64, status models.PostingStatus, errMsg string) {
	if err := s.store.UpdatePostingStatus(ctx, recordID, status, errMsg); err != nil {
		logrus.Errorf("Failed to update posting record %d: %v", recordID, err)
	}
}

// SendDailyReport summarizes the last 24 hours of posting history through
// the notifier.
func (s *Service) SendDailyReport(ctx context.Context) error {
	records, err := s.store.HistorySince(ctx, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		return fmt.Errorf("failed to load history for report: %w", err)
	}

	report := BuildReport(records, "daily")
	return s.notifier.SendPostingReport(report)
}

// BuildReport aggregates posting records into a summary report
func BuildReport(records []models.PostingRecord, period string) *models.PostingReport {
	report := &models.PostingReport{
		GeneratedAt: time.Now().UTC(),
		Period:      period,
		Total:       len(records),
		Records:     records,
	}

	for _, r := range records {
		switch r.Status {
		case models.StatusSuccess:
			report.Succeeded++
		case models.StatusFailed:
			report.Failed++
		case models.StatusScheduled:
			report.Pending++
		}
	}

	return report
}
