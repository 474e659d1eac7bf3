package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const backupPrefix = "cat_content_backup_"

// CleanupTempMedia purges temporary media files older than the retention
// window. Files still referenced by pending scheduled posts are kept
// regardless of age. Failures are logged per file and never escalate.
func (s *Service) CleanupTempMedia(ctx context.Context) {
	entries, err := os.ReadDir(s.config.TempDir)
	if err != nil {
		if !os.IsNotExist(err) {
			logrus.Errorf("Temp media cleanup failed to read %s: %v", s.config.TempDir, err)
		}
		return
	}

	pending, err := s.store.ScheduledFilePaths(ctx)
	if err != nil {
		logrus.Errorf("Temp media cleanup failed to load pending paths: %v", err)
		return
	}

	cutoff := time.Now().Add(-time.Duration(s.config.MediaRetentionDays) * 24 * time.Hour)
	removed := 0

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "temp_") {
			continue
		}

		path := filepath.Join(s.config.TempDir, entry.Name())
		if pending[path] {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			logrus.Errorf("Temp media cleanup failed to stat %s: %v", path, err)
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		if err := os.Remove(path); err != nil {
			logrus.Errorf("Failed to remove old media file %s: %v", path, err)
			continue
		}
		removed++
		logrus.Debugf("Removed old media file %s", path)
	}

	if removed > 0 {
		logrus.Infof("Temp media cleanup removed %d files older than %d days", removed, s.config.MediaRetentionDays)
	}
}

// BackupDatabase writes a timestamped backup, prunes local copies beyond
// the retention count, and mirrors the backup to the offsite archive when
// one is configured. Failures are logged and isolated per step.
func (s *Service) BackupDatabase(ctx context.Context) {
	name := fmt.Sprintf("%s%s.db", backupPrefix, time.Now().UTC().Format("20060102_150405"))
	path := filepath.Join(s.config.BackupDir, name)

	if err := s.store.Backup(ctx, path); err != nil {
		logrus.Errorf("Database backup failed: %v", err)
		return
	}
	logrus.Infof("Database backup created: %s", path)

	s.pruneLocalBackups()

	if s.archive != nil {
		s.archiveBackup(name, path)
	}
}

func (s *Service) pruneLocalBackups() {
	matches, err := filepath.Glob(filepath.Join(s.config.BackupDir, backupPrefix+"*.db"))
	if err != nil {
		logrus.Errorf("Backup pruning failed: %v", err)
		return
	}

	// Timestamped names sort chronologically
	sort.Strings(matches)

	for len(matches) > s.config.BackupRetention {
		old := matches[0]
		matches = matches[1:]
		if err := os.Remove(old); err != nil {
			logrus.Errorf("Failed to remove old backup %s: %v", old, err)
			continue
		}
		logrus.Debugf("Removed old backup %s", old)
	}
}

func (s *Service) archiveBackup(name, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Errorf("Failed to read backup %s for archiving: %v", path, err)
		return
	}

	if err := s.archive.Store(name, data); err != nil {
		logrus.Errorf("Failed to archive backup %s: %v", name, err)
		return
	}

	names, err := s.archive.List(backupPrefix)
	if err != nil {
		logrus.Errorf("Failed to list archived backups: %v", err)
		return
	}

	sort.Strings(names)
	for len(names) > s.config.BackupRetention {
		old := names[0]
		names = names[1:]
		if err := s.archive.Delete(old); err != nil {
			logrus.Errorf("Failed to delete archived backup %s: %v", old, err)
		}
	}
}
