package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/catops/cat-content-bot/internal/models"
)

// SaveAnalysis persists an analysis together with its category scores as a
// single transaction and assigns the new ID to the record. A failure in
// any row rolls back the whole write.
func (s *Store) SaveAnalysis(ctx context.Context, a *models.Analysis) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, &PersistenceError{Op: "save analysis", Err: err}
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO content_analysis (
			file_path, original_filename, media_type, total_score,
			caption, hashtags, engagement_tips, key_strengths,
			improvement_suggestions, content_hash, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.FilePath, a.OriginalFilename, string(a.MediaType), a.TotalScore,
		a.Caption, a.Hashtags, a.EngagementTips, a.KeyStrengths,
		a.ImprovementSuggestions, a.ContentHash, a.Timestamp)
	if err != nil {
		return 0, &PersistenceError{Op: "save analysis", Err: err}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, &PersistenceError{Op: "save analysis", Err: err}
	}

	for category, score := range a.Scores {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO category_scores (analysis_id, category, score)
			VALUES (?, ?, ?)
		`, id, category, score)
		if err != nil {
			return 0, &PersistenceError{Op: "save category scores", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, &PersistenceError{Op: "save analysis", Err: err}
	}

	a.ID = id
	return id, nil
}

// FindByFilenameOrHash returns a previously saved analysis matching either
// the content hash or the original filename, or nil when none matches.
// The content hash takes precedence: a file with known bytes is the same
// content whatever it is called, while a reused filename with different
// bytes is new content.
func (s *Store) FindByFilenameOrHash(ctx context.Context, filename, contentHash string) (*models.Analysis, error) {
	if contentHash != "" {
		a, err := s.findOne(ctx, `content_hash = ?`, contentHash)
		if err != nil || a != nil {
			return a, err
		}
	}

	if filename != "" {
		return s.findOne(ctx, `original_filename = ?`, filename)
	}

	return nil, nil
}

// LoadAnalysis returns the analysis with the given id, or nil when absent
func (s *Store) LoadAnalysis(ctx context.Context, id int64) (*models.Analysis, error) {
	return s.findOne(ctx, `id = ?`, id)
}

func (s *Store) findOne(ctx context.Context, where string, arg interface{}) (*models.Analysis, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, file_path, original_filename, media_type, total_score,
			caption, hashtags, engagement_tips, key_strengths,
			improvement_suggestions, content_hash, timestamp
		FROM content_analysis
		WHERE `+where+`
		ORDER BY id DESC
		LIMIT 1
	`, arg)

	var a models.Analysis
	var mediaType string
	err := row.Scan(
		&a.ID, &a.FilePath, &a.OriginalFilename, &mediaType, &a.TotalScore,
		&a.Caption, &a.Hashtags, &a.EngagementTips, &a.KeyStrengths,
		&a.ImprovementSuggestions, &a.ContentHash, &a.Timestamp,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.MediaType = models.MediaType(mediaType)

	scores, err := s.loadScores(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	a.Scores = scores

	return &a, nil
}

func (s *Store) loadScores(ctx context.Context, analysisID int64) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, score FROM category_scores WHERE analysis_id = ?
	`, analysisID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := make(map[string]int)
	for rows.Next() {
		var category string
		var score int
		if err := rows.Scan(&category, &score); err != nil {
			return nil, err
		}
		scores[category] = score
	}

	return scores, rows.Err()
}
