package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const baseURL = "https://generativelanguage.googleapis.com/v1beta"

// ModelError indicates the generative model call failed (network, quota,
// invalid media). The item cannot be analyzed; there is no partial result.
type ModelError struct {
	Err error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model call failed: %v", e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// Client talks to the Gemini generateContent REST API
type Client struct {
	apiKey string
	model  string
	client *resty.Client
}

// NewClient creates a new Gemini client
func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey: apiKey,
		model:  model,
		client: resty.New().
			SetTimeout(120 * time.Second).
			SetHeader("User-Agent", "Cat-Content-Bot/1.0"),
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateContent sends the prompt together with the media file inlined as
// base64 and returns the model's text response.
func (c *Client) GenerateContent(ctx context.Context, prompt, mediaPath string) (string, error) {
	data, err := os.ReadFile(mediaPath)
	if err != nil {
		return "", &ModelError{Err: fmt.Errorf("read media file: %w", err)}
	}

	body := generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: prompt},
				{InlineData: &inlineData{
					MimeType: mimeTypeForPath(mediaPath),
					Data:     base64.StdEncoding.EncodeToString(data),
				}},
			},
		}},
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", baseURL, c.model)

	logrus.Debugf("Sending %d media bytes to Gemini model %s", len(data), c.model)

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("key", c.apiKey).
		SetBody(body).
		Post(url)

	if err != nil {
		return "", &ModelError{Err: err}
	}

	if resp.StatusCode() != 200 {
		return "", &ModelError{Err: fmt.Errorf("gemini API returned status %d: %s", resp.StatusCode(), string(resp.Body()))}
	}

	var genResp generateResponse
	if err := json.Unmarshal(resp.Body(), &genResp); err != nil {
		return "", &ModelError{Err: fmt.Errorf("failed to parse gemini response: %w", err)}
	}

	if genResp.Error != nil {
		return "", &ModelError{Err: fmt.Errorf("gemini API error %d: %s", genResp.Error.Code, genResp.Error.Message)}
	}

	if len(genResp.Candidates) == 0 {
		return "", &ModelError{Err: fmt.Errorf("gemini returned no candidates")}
	}

	var text strings.Builder
	for _, p := range genResp.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}

	return text.String(), nil
}

func mimeTypeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".avi":
		return "video/x-msvideo"
	default:
		return "image/jpeg"
	}
}
