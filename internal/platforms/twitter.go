package platforms

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/catops/cat-content-bot/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const (
	twitterUploadURL = "https://upload.twitter.com/1.1/media/upload.json"
	twitterTweetURL  = "https://api.twitter.com/2/tweets"

	tweetMaxLength = 280
	truncatedTags  = 5
)

// TwitterPublisher posts media tweets: media upload through the v1.1
// endpoint, tweet creation through v2. Both require OAuth 1.0a user
// context, signed per request.
type TwitterPublisher struct {
	apiKey       string
	apiSecret    string
	accessToken  string
	accessSecret string
	client       *resty.Client
}

// NewTwitterPublisher creates a new Twitter publisher
func NewTwitterPublisher(apiKey, apiSecret, accessToken, accessSecret string) *TwitterPublisher {
	return &TwitterPublisher{
		apiKey:       apiKey,
		apiSecret:    apiSecret,
		accessToken:  accessToken,
		accessSecret: accessSecret,
		client: resty.New().
			SetTimeout(60 * time.Second).
			SetHeader("User-Agent", "Cat-Content-Bot/1.0"),
	}
}

func (p *TwitterPublisher) Name() string {
	return "twitter"
}

func (p *TwitterPublisher) IsConfigured() bool {
	return p.apiKey != "" && p.apiSecret != "" && p.accessToken != "" && p.accessSecret != ""
}

func (p *TwitterPublisher) AcceptsMedia(mediaType models.MediaType) bool {
	return true
}

// Publish uploads the media then creates the tweet. Captions that would
// exceed the 280-character limit keep only the first five hashtags.
func (p *TwitterPublisher) Publish(ctx context.Context, mediaPath, caption, hashtags string) error {
	if !p.IsConfigured() {
		return fmt.Errorf("twitter credentials missing: %w", ErrNotConfigured)
	}

	if len(caption)+len(hashtags)+3 > tweetMaxLength {
		tags := strings.Fields(hashtags)
		if len(tags) > truncatedTags {
			tags = tags[:truncatedTags]
		}
		hashtags = strings.Join(tags, " ")
	}

	mediaID, err := p.uploadMedia(ctx, mediaPath)
	if err != nil {
		return err
	}

	body := map[string]interface{}{
		"text": fmt.Sprintf("%s\n%s", caption, hashtags),
		"media": map[string]interface{}{
			"media_ids": []string{mediaID},
		},
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Authorization", p.authorizationHeader("POST", twitterTweetURL)).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(twitterTweetURL)
	if err != nil {
		return &TransportError{Platform: p.Name(), Err: err}
	}
	if resp.StatusCode() != 201 {
		return &TransportError{Platform: p.Name(), Err: fmt.Errorf("tweet creation returned status %d: %s", resp.StatusCode(), string(resp.Body()))}
	}

	logrus.Infof("Posted %s to Twitter", mediaPath)
	return nil
}

func (p *TwitterPublisher) uploadMedia(ctx context.Context, mediaPath string) (string, error) {
	f, err := os.Open(mediaPath)
	if err != nil {
		return "", &MediaRejectedError{Platform: p.Name(), Reason: fmt.Sprintf("media not readable: %v", err)}
	}
	defer f.Close()

	req := p.client.R().
		SetContext(ctx).
		SetHeader("Authorization", p.authorizationHeader("POST", twitterUploadURL)).
		SetFileReader("media", filepath.Base(mediaPath), f)

	if models.MediaTypeFromPath(mediaPath) == models.MediaVideo {
		req.SetFormData(map[string]string{"media_category": "tweet_video"})
	}

	resp, err := req.Post(twitterUploadURL)
	if err != nil {
		return "", &TransportError{Platform: p.Name(), Err: err}
	}
	if resp.StatusCode() != 200 {
		return "", &TransportError{Platform: p.Name(), Err: fmt.Errorf("media upload returned status %d: %s", resp.StatusCode(), string(resp.Body()))}
	}

	var uploadResp struct {
		MediaIDString string `json:"media_id_string"`
	}
	if err := json.Unmarshal(resp.Body(), &uploadResp); err != nil {
		return "", &TransportError{Platform: p.Name(), Err: fmt.Errorf("failed to parse upload response: %w", err)}
	}

	return uploadResp.MediaIDString, nil
}

// authorizationHeader builds an OAuth 1.0a HMAC-SHA1 signed header. Only
// oauth parameters enter the signature base: both calls here send their
// payload as multipart or JSON bodies, which the OAuth spec excludes.
func (p *TwitterPublisher) authorizationHeader(method, rawURL string) string {
	nonceBytes := make([]byte, 16)
	rand.Read(nonceBytes)

	params := map[string]string{
		"oauth_consumer_key":     p.apiKey,
		"oauth_nonce":            hex.EncodeToString(nonceBytes),
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        fmt.Sprintf("%d", time.Now().Unix()),
		"oauth_token":            p.accessToken,
		"oauth_version":          "1.0",
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var paramPairs []string
	for _, k := range keys {
		paramPairs = append(paramPairs, percentEncode(k)+"="+percentEncode(params[k]))
	}

	base := strings.Join([]string{
		method,
		percentEncode(rawURL),
		percentEncode(strings.Join(paramPairs, "&")),
	}, "&")

	signingKey := percentEncode(p.apiSecret) + "&" + percentEncode(p.accessSecret)
	mac := hmac.New(sha1.New, []byte(signingKey))
	mac.Write([]byte(base))
	params["oauth_signature"] = base64.StdEncoding.EncodeToString(mac.Sum(nil))

	var headerPairs []string
	for _, k := range append(keys, "oauth_signature") {
		headerPairs = append(headerPairs, fmt.Sprintf(`%s="%s"`, percentEncode(k), percentEncode(params[k])))
	}

	return "OAuth " + strings.Join(headerPairs, ", ")
}

// percentEncode applies RFC 3986 encoding as OAuth 1.0a requires
func percentEncode(s string) string {
	encoded := url.QueryEscape(s)
	encoded = strings.ReplaceAll(encoded, "+", "%20")
	return encoded
}
