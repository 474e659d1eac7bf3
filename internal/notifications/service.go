package notifications

import (
	"fmt"
	"strings"
	"time"

	"github.com/catops/cat-content-bot/internal/config"
	"github.com/catops/cat-content-bot/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Service delivers posting summary reports via the configured channels.
// Scheduled posting failures only ever surface through these reports and
// the history endpoint, never synchronously.
type Service struct {
	config *config.Config
	client *resty.Client
}

// NewService creates a new notification service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		client: resty.New().SetTimeout(30 * time.Second),
	}
}

// IsConfigured reports whether at least one delivery channel is set up
func (s *Service) IsConfigured() bool {
	return s.config.ReportWebhookURL != "" || s.config.NotificationEmail != ""
}

// SendPostingReport sends the report via every configured channel
func (s *Service) SendPostingReport(report *models.PostingReport) error {
	var errors []string

	if s.config.ReportWebhookURL != "" {
		if err := s.sendToWebhook(report); err != nil {
			logrus.Errorf("Failed to send webhook report: %v", err)
			errors = append(errors, fmt.Sprintf("webhook: %v", err))
		} else {
			logrus.Info("Successfully sent posting report to webhook")
		}
	}

	if s.config.NotificationEmail != "" {
		if err := s.sendEmail(report); err != nil {
			logrus.Errorf("Failed to send email report: %v", err)
			errors = append(errors, fmt.Sprintf("email: %v", err))
		} else {
			logrus.Info("Successfully sent posting report via email")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("report delivery errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

func (s *Service) sendToWebhook(report *models.PostingReport) error {
	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(report).
		Post(s.config.ReportWebhookURL)

	if err != nil {
		return fmt.Errorf("failed to send webhook message: %w", err)
	}

	if resp.StatusCode() != 200 && resp.StatusCode() != 204 {
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

func (s *Service) sendEmail(report *models.PostingReport) error {
	subject := fmt.Sprintf("Cat Content Posting Report - %s (%d posts, %d failed)",
		report.Period, report.Total, report.Failed)

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.NotificationEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", BuildReportText(report))

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// BuildReportText renders the plain-text report body
func BuildReportText(report *models.PostingReport) string {
	var text strings.Builder

	text.WriteString(fmt.Sprintf("Cat Content Posting Report - %s\n", report.Period))
	text.WriteString(fmt.Sprintf("Generated: %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05 UTC")))

	text.WriteString("SUMMARY\n")
	text.WriteString("=======\n")
	text.WriteString(fmt.Sprintf("Total Attempts: %d\n", report.Total))
	text.WriteString(fmt.Sprintf("Succeeded: %d\n", report.Succeeded))
	text.WriteString(fmt.Sprintf("Failed: %d\n", report.Failed))
	text.WriteString(fmt.Sprintf("Still Scheduled: %d\n", report.Pending))

	if len(report.Records) > 0 {
		text.WriteString("\nRECENT ATTEMPTS\n")
		text.WriteString("===============\n")

		limit := 20
		if len(report.Records) < limit {
			limit = len(report.Records)
		}

		for i := 0; i < limit; i++ {
			r := report.Records[i]
			text.WriteString(fmt.Sprintf("\n%d. %s -> %s: %s\n", i+1, r.OriginalFilename, r.Platform, r.Status))
			text.WriteString(fmt.Sprintf("   At: %s\n", r.PostedAt.Format("Jan 2, 2006 15:04 UTC")))
			if r.ErrorMessage != "" {
				text.WriteString(fmt.Sprintf("   Error: %s\n", r.ErrorMessage))
			}
		}
	}

	text.WriteString("\n---\nThis report was generated automatically by the Cat Content Bot.\n")

	return text.String()
}
