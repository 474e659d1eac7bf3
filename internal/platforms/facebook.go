package platforms

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/catops/cat-content-bot/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const (
	facebookGraphURL      = "https://graph.facebook.com/v19.0"
	facebookGraphVideoURL = "https://graph-video.facebook.com/v19.0"
)

// FacebookPublisher posts media to a Facebook page via the Graph API
type FacebookPublisher struct {
	accessToken string
	pageID      string
	client      *resty.Client
}

// NewFacebookPublisher creates a new Facebook publisher
func NewFacebookPublisher(accessToken, pageID string) *FacebookPublisher {
	return &FacebookPublisher{
		accessToken: accessToken,
		pageID:      pageID,
		client: resty.New().
			SetTimeout(120 * time.Second).
			SetHeader("User-Agent", "Cat-Content-Bot/1.0"),
	}
}

func (p *FacebookPublisher) Name() string {
	return "facebook"
}

func (p *FacebookPublisher) IsConfigured() bool {
	return p.accessToken != "" && p.pageID != ""
}

func (p *FacebookPublisher) AcceptsMedia(mediaType models.MediaType) bool {
	return true
}

// Publish uploads a photo or video post to the configured page
func (p *FacebookPublisher) Publish(ctx context.Context, mediaPath, caption, hashtags string) error {
	if !p.IsConfigured() {
		return fmt.Errorf("facebook credentials missing: %w", ErrNotConfigured)
	}

	f, err := os.Open(mediaPath)
	if err != nil {
		return &MediaRejectedError{Platform: p.Name(), Reason: fmt.Sprintf("media not readable: %v", err)}
	}
	defer f.Close()

	message := fmt.Sprintf("%s\n\n%s", caption, hashtags)

	endpoint := fmt.Sprintf("%s/%s/photos", facebookGraphURL, p.pageID)
	messageField := "message"
	if models.MediaTypeFromPath(mediaPath) == models.MediaVideo {
		endpoint = fmt.Sprintf("%s/%s/videos", facebookGraphVideoURL, p.pageID)
		messageField = "description"
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetFileReader("source", filepath.Base(mediaPath), f).
		SetFormData(map[string]string{
			messageField:   message,
			"access_token": p.accessToken,
		}).
		Post(endpoint)
	if err != nil {
		return &TransportError{Platform: p.Name(), Err: err}
	}

	if resp.StatusCode() == 401 || resp.StatusCode() == 403 {
		return fmt.Errorf("facebook token rejected (status %d): %w", resp.StatusCode(), ErrNotConfigured)
	}
	if resp.StatusCode() != 200 {
		return &TransportError{Platform: p.Name(), Err: fmt.Errorf("graph API returned status %d: %s", resp.StatusCode(), string(resp.Body()))}
	}

	logrus.Infof("Posted %s to Facebook page %s", mediaPath, p.pageID)
	return nil
}
