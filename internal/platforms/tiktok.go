package platforms

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/catops/cat-content-bot/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const tiktokInitURL = "https://open.tiktokapis.com/v2/post/publish/video/init/"

// TikTokPublisher posts videos through the TikTok Content Posting API.
// TikTok only accepts video; images are rejected before any network call.
type TikTokPublisher struct {
	accessToken string
	client      *resty.Client
}

// NewTikTokPublisher creates a new TikTok publisher
func NewTikTokPublisher(accessToken string) *TikTokPublisher {
	return &TikTokPublisher{
		accessToken: accessToken,
		client: resty.New().
			SetTimeout(120 * time.Second).
			SetHeader("User-Agent", "Cat-Content-Bot/1.0"),
	}
}

func (p *TikTokPublisher) Name() string {
	return "tiktok"
}

func (p *TikTokPublisher) IsConfigured() bool {
	return p.accessToken != ""
}

func (p *TikTokPublisher) AcceptsMedia(mediaType models.MediaType) bool {
	return mediaType == models.MediaVideo
}

// Publish initializes a video post and uploads the file to the returned
// upload URL in a single chunk.
func (p *TikTokPublisher) Publish(ctx context.Context, mediaPath, caption, hashtags string) error {
	if !p.IsConfigured() {
		return fmt.Errorf("tiktok access token missing: %w", ErrNotConfigured)
	}

	if models.MediaTypeFromPath(mediaPath) != models.MediaVideo {
		return &MediaRejectedError{Platform: p.Name(), Reason: "tiktok only accepts video"}
	}

	data, err := os.ReadFile(mediaPath)
	if err != nil {
		return &MediaRejectedError{Platform: p.Name(), Reason: fmt.Sprintf("media not readable: %v", err)}
	}

	initBody := map[string]interface{}{
		"post_info": map[string]interface{}{
			"title": fmt.Sprintf("%s\n%s", caption, hashtags),
		},
		"source_info": map[string]interface{}{
			"source":            "FILE_UPLOAD",
			"video_size":        len(data),
			"chunk_size":        len(data),
			"total_chunk_count": 1,
		},
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+p.accessToken).
		SetHeader("Content-Type", "application/json").
		SetBody(initBody).
		Post(tiktokInitURL)
	if err != nil {
		return &TransportError{Platform: p.Name(), Err: err}
	}

	if resp.StatusCode() == 401 {
		return fmt.Errorf("tiktok access token rejected: %w", ErrNotConfigured)
	}
	if resp.StatusCode() != 200 {
		return &TransportError{Platform: p.Name(), Err: fmt.Errorf("post init returned status %d: %s", resp.StatusCode(), string(resp.Body()))}
	}

	var initResp struct {
		Data struct {
			PublishID string `json:"publish_id"`
			UploadURL string `json:"upload_url"`
		} `json:"data"`
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body(), &initResp); err != nil {
		return &TransportError{Platform: p.Name(), Err: fmt.Errorf("failed to parse init response: %w", err)}
	}
	if initResp.Error.Code != "" && initResp.Error.Code != "ok" {
		return &TransportError{Platform: p.Name(), Err: fmt.Errorf("post init error %s: %s", initResp.Error.Code, initResp.Error.Message)}
	}

	resp, err = p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "video/mp4").
		SetHeader("Content-Range", fmt.Sprintf("bytes 0-%d/%d", len(data)-1, len(data))).
		SetBody(data).
		Put(initResp.Data.UploadURL)
	if err != nil {
		return &TransportError{Platform: p.Name(), Err: err}
	}
	if resp.StatusCode() != 201 && resp.StatusCode() != 200 {
		return &TransportError{Platform: p.Name(), Err: fmt.Errorf("video upload returned status %d: %s", resp.StatusCode(), string(resp.Body()))}
	}

	logrus.Infof("Posted %s to TikTok (publish id %s)", mediaPath, initResp.Data.PublishID)
	return nil
}
