package platforms

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/catops/cat-content-bot/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const instagramBaseURL = "https://www.instagram.com"

// InstagramPublisher posts media through Instagram's web API using a
// username/password session.
type InstagramPublisher struct {
	username string
	password string
	client   *resty.Client

	mu        sync.Mutex
	csrfToken string
	loggedIn  bool
}

// NewInstagramPublisher creates a new Instagram publisher. No network call
// is made until the first publish; login failures surface as
// ErrNotConfigured at publish time.
func NewInstagramPublisher(username, password string) *InstagramPublisher {
	return &InstagramPublisher{
		username: username,
		password: password,
		client: resty.New().
			SetTimeout(60 * time.Second).
			SetHeader("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)").
			SetHeader("X-IG-App-ID", "936619743392459"),
	}
}

func (p *InstagramPublisher) Name() string {
	return "instagram"
}

func (p *InstagramPublisher) IsConfigured() bool {
	return p.username != "" && p.password != ""
}

func (p *InstagramPublisher) AcceptsMedia(mediaType models.MediaType) bool {
	return true
}

// Publish uploads the media and configures it as a feed post. The caption
// and hashtags are joined with the dot-spacer Instagram convention so the
// hashtag block sits below the fold.
func (p *InstagramPublisher) Publish(ctx context.Context, mediaPath, caption, hashtags string) error {
	if !p.IsConfigured() {
		return fmt.Errorf("instagram credentials missing: %w", ErrNotConfigured)
	}

	if err := p.ensureSession(ctx); err != nil {
		return err
	}

	data, err := os.ReadFile(mediaPath)
	if err != nil {
		return &MediaRejectedError{Platform: p.Name(), Reason: fmt.Sprintf("media not readable: %v", err)}
	}

	fullCaption := fmt.Sprintf("%s\n.\n.\n.\n%s", caption, hashtags)
	uploadID := fmt.Sprintf("%d", time.Now().UnixMilli())

	endpoint := "/rupload_igphoto/"
	if models.MediaTypeFromPath(mediaPath) == models.MediaVideo {
		endpoint = "/rupload_igvideo/"
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("X-CSRFToken", p.csrfToken).
		SetHeader("X-Entity-Name", fmt.Sprintf("fb_uploader_%s", uploadID)).
		SetHeader("X-Entity-Length", fmt.Sprintf("%d", len(data))).
		SetHeader("Offset", "0").
		SetHeader("X-Instagram-Rupload-Params", fmt.Sprintf(`{"media_type":1,"upload_id":"%s"}`, uploadID)).
		SetBody(data).
		Post(instagramBaseURL + endpoint + uploadID)
	if err != nil {
		return &TransportError{Platform: p.Name(), Err: err}
	}
	if resp.StatusCode() != 200 {
		return &TransportError{Platform: p.Name(), Err: fmt.Errorf("upload returned status %d: %s", resp.StatusCode(), string(resp.Body()))}
	}

	resp, err = p.client.R().
		SetContext(ctx).
		SetHeader("X-CSRFToken", p.csrfToken).
		SetFormData(map[string]string{
			"upload_id": uploadID,
			"caption":   fullCaption,
		}).
		Post(instagramBaseURL + "/api/v1/media/configure/")
	if err != nil {
		return &TransportError{Platform: p.Name(), Err: err}
	}
	if resp.StatusCode() != 200 {
		return &TransportError{Platform: p.Name(), Err: fmt.Errorf("configure returned status %d: %s", resp.StatusCode(), string(resp.Body()))}
	}

	logrus.Infof("Posted %s to Instagram", mediaPath)
	return nil
}

// ensureSession logs in on first use and keeps the session for subsequent
// publishes. Instagram invalidating the session mid-run surfaces on the
// next request as a transport failure and a fresh login happens next call.
func (p *InstagramPublisher) ensureSession(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loggedIn {
		return nil
	}

	resp, err := p.client.R().
		SetContext(ctx).
		Get(instagramBaseURL + "/accounts/login/")
	if err != nil {
		return &TransportError{Platform: p.Name(), Err: err}
	}

	for _, cookie := range resp.Cookies() {
		if cookie.Name == "csrftoken" {
			p.csrfToken = cookie.Value
		}
	}
	if p.csrfToken == "" {
		return &TransportError{Platform: p.Name(), Err: fmt.Errorf("no csrf token in login page response")}
	}

	encPassword := fmt.Sprintf("#PWD_INSTAGRAM_BROWSER:0:%d:%s", time.Now().Unix(), p.password)

	resp, err = p.client.R().
		SetContext(ctx).
		SetHeader("X-CSRFToken", p.csrfToken).
		SetFormData(map[string]string{
			"username":     p.username,
			"enc_password": encPassword,
		}).
		Post(instagramBaseURL + "/accounts/login/ajax/")
	if err != nil {
		return &TransportError{Platform: p.Name(), Err: err}
	}

	var loginResp struct {
		Authenticated bool `json:"authenticated"`
	}
	if err := json.Unmarshal(resp.Body(), &loginResp); err != nil || !loginResp.Authenticated {
		return fmt.Errorf("instagram login rejected for %s: %w", p.username, ErrNotConfigured)
	}

	p.loggedIn = true
	logrus.Info("Instagram session established")
	return nil
}
