package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/catops/cat-content-bot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func sampleAnalysis(filename, hash string) *models.Analysis {
	return &models.Analysis{
		FilePath:         filepath.Join("temp", "temp_"+filename),
		OriginalFilename: filename,
		MediaType:        models.MediaImage,
		Scores: map[string]int{
			"Cuteness Factor":            8,
			"Action/Entertainment Value": 6,
			"Uniqueness":                 7,
			"Image/Video Quality":        9,
			"Trend Alignment":            5,
		},
		TotalScore:             35,
		Caption:                "Look at this cat!",
		Hashtags:               "#cat #cute",
		EngagementTips:         "post in the evening",
		KeyStrengths:           "adorable expression",
		ImprovementSuggestions: "better lighting",
		ContentHash:            hash,
		Timestamp:              time.Now().UTC(),
	}
}

func TestSaveAndLoadAnalysis(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := sampleAnalysis("cat.jpg", "hash-1")
	id, err := s.SaveAnalysis(ctx, a)
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))
	assert.Equal(t, id, a.ID)

	loaded, err := s.LoadAnalysis(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, a.OriginalFilename, loaded.OriginalFilename)
	assert.Equal(t, a.Caption, loaded.Caption)
	assert.Equal(t, a.Hashtags, loaded.Hashtags)
	assert.Equal(t, a.ContentHash, loaded.ContentHash)
	assert.Equal(t, models.MediaImage, loaded.MediaType)
	assert.Equal(t, a.Scores, loaded.Scores)
	assert.Equal(t, 35, loaded.TotalScore)
}

func TestLoadAnalysis_Missing(t *testing.T) {
	s := newTestStore(t)

	loaded, err := s.LoadAnalysis(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestFindByFilenameOrHash_HashWins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := sampleAnalysis("cat.jpg", "hash-1")
	_, err := s.SaveAnalysis(ctx, first)
	require.NoError(t, err)

	second := sampleAnalysis("other.jpg", "hash-2")
	_, err = s.SaveAnalysis(ctx, second)
	require.NoError(t, err)

	// Filename matches the first record, hash the second: hash wins
	found, err := s.FindByFilenameOrHash(ctx, "cat.jpg", "hash-2")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, second.ID, found.ID)

	// Unknown hash falls back to the filename match
	found, err = s.FindByFilenameOrHash(ctx, "cat.jpg", "hash-unknown")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, first.ID, found.ID)

	// No match at all
	found, err = s.FindByFilenameOrHash(ctx, "nothing.jpg", "hash-unknown")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestSchedulePost_IndependentRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := sampleAnalysis("cat.jpg", "hash-1")
	_, err := s.SaveAnalysis(ctx, a)
	require.NoError(t, err)

	at := time.Now().UTC().Add(time.Hour)
	firstID, err := s.SchedulePost(ctx, a.ID, "twitter", at)
	require.NoError(t, err)
	secondID, err := s.SchedulePost(ctx, a.ID, "twitter", at.Add(time.Hour))
	require.NoError(t, err)
	assert.NotEqual(t, firstID, secondID)

	// Each row transitions on its own
	require.NoError(t, s.UpdatePostingStatus(ctx, firstID, models.StatusFailed, "timeout"))
	require.NoError(t, s.UpdatePostingStatus(ctx, secondID, models.StatusSuccess, ""))

	records, err := s.History(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)

	byID := make(map[int64]models.PostingRecord)
	for _, r := range records {
		byID[r.ID] = r
	}
	assert.Equal(t, models.StatusFailed, byID[firstID].Status)
	assert.Equal(t, "timeout", byID[firstID].ErrorMessage)
	assert.Equal(t, models.StatusSuccess, byID[secondID].Status)
	assert.Empty(t, byID[secondID].ErrorMessage)
}

func TestDueScheduledPosts_Lookahead(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := sampleAnalysis("cat.jpg", "hash-1")
	_, err := s.SaveAnalysis(ctx, a)
	require.NoError(t, err)

	now := time.Now().UTC()
	overdueID, err := s.SchedulePost(ctx, a.ID, "twitter", now.Add(-10*time.Minute))
	require.NoError(t, err)
	soonID, err := s.SchedulePost(ctx, a.ID, "instagram", now.Add(30*time.Minute))
	require.NoError(t, err)
	_, err = s.SchedulePost(ctx, a.ID, "facebook", now.Add(3*time.Hour))
	require.NoError(t, err)

	due, err := s.DueScheduledPosts(ctx, now, time.Hour)
	require.NoError(t, err)
	require.Len(t, due, 2)

	// Oldest first
	assert.Equal(t, overdueID, due[0].RecordID)
	assert.Equal(t, soonID, due[1].RecordID)

	// Joined analysis fields come along
	assert.Equal(t, a.FilePath, due[0].FilePath)
	assert.Equal(t, a.Caption, due[0].Caption)
	assert.Equal(t, a.Hashtags, due[0].Hashtags)
	assert.Equal(t, models.MediaImage, due[0].MediaType)

	// Terminal rows drop out of the scan
	require.NoError(t, s.UpdatePostingStatus(ctx, overdueID, models.StatusSuccess, ""))
	due, err = s.DueScheduledPosts(ctx, now, time.Hour)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, soonID, due[0].RecordID)
}

func TestRecordPostingAttempt_AppendsHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := sampleAnalysis("cat.jpg", "hash-1")
	_, err := s.SaveAnalysis(ctx, a)
	require.NoError(t, err)

	other := sampleAnalysis("other.jpg", "hash-2")
	_, err = s.SaveAnalysis(ctx, other)
	require.NoError(t, err)

	require.NoError(t, s.RecordPostingAttempt(ctx, a.ID, "twitter", models.StatusSuccess, ""))
	require.NoError(t, s.RecordPostingAttempt(ctx, a.ID, "tiktok", models.StatusFailed, "tiktok rejected media: image media not supported"))
	require.NoError(t, s.RecordPostingAttempt(ctx, other.ID, "twitter", models.StatusSuccess, ""))

	all, err := s.History(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	filtered, err := s.History(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, filtered, 2)
	for _, r := range filtered {
		assert.Equal(t, a.ID, r.AnalysisID)
		assert.Equal(t, "cat.jpg", r.OriginalFilename)
	}
}

func TestHistorySince(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := sampleAnalysis("cat.jpg", "hash-1")
	_, err := s.SaveAnalysis(ctx, a)
	require.NoError(t, err)

	now := time.Now().UTC()
	_, err = s.SchedulePost(ctx, a.ID, "twitter", now.Add(-48*time.Hour))
	require.NoError(t, err)
	recentID, err := s.SchedulePost(ctx, a.ID, "instagram", now.Add(-2*time.Hour))
	require.NoError(t, err)

	records, err := s.HistorySince(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, recentID, records[0].ID)
}

func TestScheduledFilePaths(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := sampleAnalysis("cat.jpg", "hash-1")
	_, err := s.SaveAnalysis(ctx, a)
	require.NoError(t, err)

	recordID, err := s.SchedulePost(ctx, a.ID, "twitter", time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)

	paths, err := s.ScheduledFilePaths(ctx)
	require.NoError(t, err)
	assert.True(t, paths[a.FilePath])

	// Once the post resolves its media is no longer protected
	require.NoError(t, s.UpdatePostingStatus(ctx, recordID, models.StatusSuccess, ""))
	paths, err = s.ScheduledFilePaths(ctx)
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestBackup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := sampleAnalysis("cat.jpg", "hash-1")
	_, err := s.SaveAnalysis(ctx, a)
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "backups", "backup.db")
	require.NoError(t, s.Backup(ctx, dest))

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	// The backup is a working database
	restored, err := New(dest)
	require.NoError(t, err)
	defer restored.Close()

	loaded, err := restored.LoadAnalysis(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, a.OriginalFilename, loaded.OriginalFilename)
}
