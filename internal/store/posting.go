package store

import (
	"context"
	"time"

	"github.com/catops/cat-content-bot/internal/models"
)

// RecordPostingAttempt appends one posting history row for a completed
// dispatch attempt. Rows are never deleted.
func (s *Store) RecordPostingAttempt(ctx context.Context, analysisID int64, platform string, status models.PostingStatus, errMsg string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO posting_history (analysis_id, platform, status, posted_at, error_message, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, analysisID, platform, string(status), time.Now().UTC(), errMsg, time.Now().UTC())
	return err
}

// SchedulePost inserts a scheduled posting row for one platform and
// returns its record id. Scheduling the same (analysis, platform) pair
// again produces an independent row with its own lifecycle.
func (s *Store) SchedulePost(ctx context.Context, analysisID int64, platform string, at time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO posting_history (analysis_id, platform, status, posted_at, error_message, updated_at)
		VALUES (?, ?, ?, ?, '', ?)
	`, analysisID, platform, string(models.StatusScheduled), at.UTC(), time.Now().UTC())
	if err != nil {
		return 0, &PersistenceError{Op: "schedule post", Err: err}
	}
	return res.LastInsertId()
}

// UpdatePostingStatus transitions a posting row to a terminal status.
// Terminal rows are never revisited by the scheduler.
func (s *Store) UpdatePostingStatus(ctx context.Context, recordID int64, status models.PostingStatus, errMsg string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE posting_history
		SET status = ?, error_message = ?, updated_at = ?
		WHERE id = ?
	`, string(status), errMsg, time.Now().UTC(), recordID)
	return err
}

// DueScheduledPosts returns scheduled posts whose time has arrived, or
// will within the look-ahead window, oldest first.
func (s *Store) DueScheduledPosts(ctx context.Context, now time.Time, lookahead time.Duration) ([]models.ScheduledPost, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ph.id, ca.id, ca.file_path, ca.caption, ca.hashtags,
			ph.platform, ca.media_type, ph.posted_at
		FROM posting_history ph
		JOIN content_analysis ca ON ph.analysis_id = ca.id
		WHERE ph.status = ? AND ph.posted_at <= ?
		ORDER BY ph.posted_at ASC
	`, string(models.StatusScheduled), now.Add(lookahead).UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []models.ScheduledPost
	for rows.Next() {
		var p models.ScheduledPost
		var mediaType string
		err := rows.Scan(&p.RecordID, &p.AnalysisID, &p.FilePath, &p.Caption,
			&p.Hashtags, &p.Platform, &mediaType, &p.ScheduledAt)
		if err != nil {
			return nil, err
		}
		p.MediaType = models.MediaType(mediaType)
		posts = append(posts, p)
	}

	return posts, rows.Err()
}

// History returns posting records most-recent-first, joined with the
// original filename. A zero analysisID returns the full history.
func (s *Store) History(ctx context.Context, analysisID int64) ([]models.PostingRecord, error) {
	query := `
		SELECT ph.id, ph.analysis_id, ca.original_filename, ph.platform,
			ph.status, ph.posted_at, ph.error_message
		FROM posting_history ph
		JOIN content_analysis ca ON ph.analysis_id = ca.id
	`
	args := []interface{}{}
	if analysisID != 0 {
		query += ` WHERE ph.analysis_id = ?`
		args = append(args, analysisID)
	}
	query += ` ORDER BY ph.posted_at DESC`

	return s.queryRecords(ctx, query, args...)
}

// HistorySince returns posting records created or scheduled after the
// given time, most-recent-first.
func (s *Store) HistorySince(ctx context.Context, since time.Time) ([]models.PostingRecord, error) {
	return s.queryRecords(ctx, `
		SELECT ph.id, ph.analysis_id, ca.original_filename, ph.platform,
			ph.status, ph.posted_at, ph.error_message
		FROM posting_history ph
		JOIN content_analysis ca ON ph.analysis_id = ca.id
		WHERE ph.posted_at >= ?
		ORDER BY ph.posted_at DESC
	`, since.UTC())
}

// ScheduledFilePaths returns the file paths referenced by pending
// scheduled posts, so housekeeping never purges media that is still
// waiting to go out.
func (s *Store) ScheduledFilePaths(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT ca.file_path
		FROM posting_history ph
		JOIN content_analysis ca ON ph.analysis_id = ca.id
		WHERE ph.status = ?
	`, string(models.StatusScheduled))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	paths := make(map[string]bool)
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		paths[path] = true
	}

	return paths, rows.Err()
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...interface{}) ([]models.PostingRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.PostingRecord
	for rows.Next() {
		var r models.PostingRecord
		var status string
		err := rows.Scan(&r.ID, &r.AnalysisID, &r.OriginalFilename,
			&r.Platform, &status, &r.PostedAt, &r.ErrorMessage)
		if err != nil {
			return nil, err
		}
		r.Status = models.PostingStatus(status)
		records = append(records, r)
	}

	return records, rows.Err()
}
