package notifications

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/catops/cat-content-bot/internal/config"
	"github.com/catops/cat-content-bot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *models.PostingReport {
	return &models.PostingReport{
		GeneratedAt: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		Period:      "daily",
		Total:       3,
		Succeeded:   1,
		Failed:      1,
		Pending:     1,
		Records: []models.PostingRecord{
			{
				OriginalFilename: "cat.jpg",
				Platform:         "twitter",
				Status:           models.StatusSuccess,
				PostedAt:         time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
			},
			{
				OriginalFilename: "cat.jpg",
				Platform:         "tiktok",
				Status:           models.StatusFailed,
				PostedAt:         time.Date(2024, 6, 1, 8, 5, 0, 0, time.UTC),
				ErrorMessage:     "tiktok rejected media: image media not supported",
			},
		},
	}
}

func TestIsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *config.Config
		expected bool
	}{
		{
			name:     "nothing configured",
			cfg:      &config.Config{},
			expected: false,
		},
		{
			name:     "webhook only",
			cfg:      &config.Config{ReportWebhookURL: "https://hooks.example.com/cats"},
			expected: true,
		},
		{
			name:     "email only",
			cfg:      &config.Config{NotificationEmail: "ops@example.com"},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewService(tt.cfg).IsConfigured())
		})
	}
}

func TestSendPostingReport_Webhook(t *testing.T) {
	var received *models.PostingReport
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	service := NewService(&config.Config{ReportWebhookURL: server.URL})
	require.NoError(t, service.SendPostingReport(sampleReport()))

	require.NotNil(t, received)
	assert.Equal(t, "daily", received.Period)
	assert.Equal(t, 3, received.Total)
	assert.Len(t, received.Records, 2)
}

func TestSendPostingReport_WebhookFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	service := NewService(&config.Config{ReportWebhookURL: server.URL})
	err := service.SendPostingReport(sampleReport())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "webhook")
}

func TestBuildReportText(t *testing.T) {
	text := BuildReportText(sampleReport())

	assert.Contains(t, text, "Cat Content Posting Report - daily")
	assert.Contains(t, text, "Total Attempts: 3")
	assert.Contains(t, text, "Succeeded: 1")
	assert.Contains(t, text, "Failed: 1")
	assert.Contains(t, text, "Still Scheduled: 1")
	assert.Contains(t, text, "cat.jpg -> twitter: success")
	assert.Contains(t, text, "cat.jpg -> tiktok: failed")
	assert.Contains(t, text, "Error: tiktok rejected media")
}
