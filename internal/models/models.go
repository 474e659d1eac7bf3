package models

import (
	"path/filepath"
	"strings"
	"time"
)

// MediaType identifies the kind of media behind an analysis
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// MediaTypeFromPath derives the media type from a file extension
func MediaTypeFromPath(path string) MediaType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".mov", ".avi":
		return MediaVideo
	default:
		return MediaImage
	}
}

// Analysis represents the structured scoring and caption record derived
// from one media item. Immutable after creation except for the ID assigned
// by the store on first save.
type Analysis struct {
	ID                     int64          `json:"id"`
	FilePath               string         `json:"file_path"`
	OriginalFilename       string         `json:"original_filename"`
	MediaType              MediaType      `json:"media_type"`
	Scores                 map[string]int `json:"scores"`
	TotalScore             int            `json:"total_score"`
	Caption                string         `json:"caption"`
	Hashtags               string         `json:"hashtags"`
	EngagementTips         string         `json:"engagement_tips"`
	KeyStrengths           string         `json:"key_strengths"`
	ImprovementSuggestions string         `json:"improvement_suggestions"`
	ContentHash            string         `json:"content_hash"`
	Timestamp              time.Time      `json:"timestamp"`
}

// PostingStatus is the lifecycle state of one posting attempt
type PostingStatus string

const (
	StatusScheduled PostingStatus = "scheduled"
	StatusSuccess   PostingStatus = "success"
	StatusFailed    PostingStatus = "failed"
)

// PostingRecord is one logged attempt (or schedule) to publish an
// analysis to one platform. Rows are appended and updated, never deleted.
type PostingRecord struct {
	ID               int64         `json:"id"`
	AnalysisID       int64         `json:"analysis_id"`
	OriginalFilename string        `json:"original_filename,omitempty"`
	Platform         string        `json:"platform"`
	Status           PostingStatus `json:"status"`
	PostedAt         time.Time     `json:"posted_at"`
	ErrorMessage     string        `json:"error_message,omitempty"`
}

// ScheduledPost is the due-scan view of a scheduled posting record joined
// with the analysis it belongs to.
type ScheduledPost struct {
	RecordID    int64     `json:"record_id"`
	AnalysisID  int64     `json:"analysis_id"`
	FilePath    string    `json:"file_path"`
	Caption     string    `json:"caption"`
	Hashtags    string    `json:"hashtags"`
	Platform    string    `json:"platform"`
	MediaType   MediaType `json:"media_type"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// PostingReport summarizes posting outcomes over a period
type PostingReport struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Period      string          `json:"period"`
	Total       int             `json:"total"`
	Succeeded   int             `json:"succeeded"`
	Failed      int             `json:"failed"`
	Pending     int             `json:"pending"`
	Records     []PostingRecord `json:"records"`
}
