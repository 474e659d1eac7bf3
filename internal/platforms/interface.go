package platforms

import (
	"context"
	"errors"
	"fmt"

	"github.com/catops/cat-content-bot/internal/models"
)

// Publisher is the single capability each social platform exposes: publish
// one media file with a caption and hashtags.
type Publisher interface {
	Name() string
	// IsConfigured reports whether the credentials this platform needs
	// are present. Unconfigured publishers fail with ErrNotConfigured
	// instead of crashing at construction.
	IsConfigured() bool
	// AcceptsMedia reports whether the platform can take this media type
	// at all; callers check it before going to the network.
	AcceptsMedia(mediaType models.MediaType) bool
	Publish(ctx context.Context, mediaPath, caption, hashtags string) error
}

// ErrNotConfigured indicates missing credentials or an invalid session
var ErrNotConfigured = errors.New("platform not configured")

// MediaRejectedError indicates the platform cannot accept this media
// (wrong type, format or size). No network call was or will be made for
// type mismatches.
type MediaRejectedError struct {
	Platform string
	Reason   string
}

func (e *MediaRejectedError) Error() string {
	return fmt.Sprintf("%s rejected media: %s", e.Platform, e.Reason)
}

// TransportError indicates a network or API failure while publishing,
// including capability timeouts.
type TransportError struct {
	Platform string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s publish failed: %v", e.Platform, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
