package posting

import (
	"context"
	"errors"
	"fmt"

	"github.com/catops/cat-content-bot/internal/models"
	"github.com/catops/cat-content-bot/internal/platforms"
	"github.com/sirupsen/logrus"
)

// HistoryStore records posting attempts. Recording is bookkeeping only and
// must never abort an in-progress post.
type HistoryStore interface {
	RecordPostingAttempt(ctx context.Context, analysisID int64, platform string, status models.PostingStatus, errMsg string) error
}

// Orchestrator dispatches an analysis to a set of platforms, collecting
// per-platform outcomes. Platforms are independent: one failing never
// prevents attempting the others.
type Orchestrator struct {
	store      HistoryStore
	publishers map[string]platforms.Publisher
}

// NewOrchestrator creates a new orchestrator over the given publishers
func NewOrchestrator(store HistoryStore, pubs ...platforms.Publisher) *Orchestrator {
	byName := make(map[string]platforms.Publisher, len(pubs))
	for _, pub := range pubs {
		byName[pub.Name()] = pub
	}
	return &Orchestrator{
		store:      store,
		publishers: byName,
	}
}

// Platforms returns the names of all registered publishers
func (o *Orchestrator) Platforms() []string {
	names := make([]string, 0, len(o.publishers))
	for name := range o.publishers {
		names = append(names, name)
	}
	return names
}

// Post publishes the analysis to every requested platform and returns an
// outcome for each one; the result map always covers the full requested
// set. Every attempt is recorded in the posting history when the analysis
// has a persisted id. There are no automatic retries; that is the
// caller's or the scheduler's decision.
func (o *Orchestrator) Post(ctx context.Context, a *models.Analysis, requested []string) map[string]bool {
	results := make(map[string]bool, len(requested))

	for _, platform := range requested {
		err := o.Dispatch(ctx, a, platform)
		results[platform] = err == nil

		status := models.StatusSuccess
		errMsg := ""
		if err != nil {
			status = models.StatusFailed
			errMsg = err.Error()
			logrus.Errorf("Posting %s to %s failed: %v", a.OriginalFilename, platform, err)
		} else {
			logrus.Infof("Posted %s to %s", a.OriginalFilename, platform)
		}

		o.recordAttempt(ctx, a, platform, status, errMsg)
	}

	return results
}

// Dispatch publishes to a single platform and returns the classified
// error, nil on success. Video-only platforms reject unsupported media
// locally, without touching the network. Dispatch does not write history;
// Post and the scheduler each own their bookkeeping.
func (o *Orchestrator) Dispatch(ctx context.Context, a *models.Analysis, platform string) error {
	pub, ok := o.publishers[platform]
	if !ok {
		return fmt.Errorf("unknown platform %q: %w", platform, platforms.ErrNotConfigured)
	}

	if !pub.AcceptsMedia(a.MediaType) {
		return &platforms.MediaRejectedError{
			Platform: platform,
			Reason:   fmt.Sprintf("%s media not supported", a.MediaType),
		}
	}

	if !pub.IsConfigured() {
		return fmt.Errorf("%s: %w", platform, platforms.ErrNotConfigured)
	}

	return pub.Publish(ctx, a.FilePath, a.Caption, a.Hashtags)
}

// recordAttempt writes the history row for one attempt. Analyses that were
// never persisted have no id to key history on, so recording is skipped;
// store failures are logged and swallowed so bookkeeping cannot mask the
// posting outcome.
func (o *Orchestrator) recordAttempt(ctx context.Context, a *models.Analysis, platform string, status models.PostingStatus, errMsg string) {
	if a.ID == 0 {
		return
	}

	if err := o.store.RecordPostingAttempt(ctx, a.ID, platform, status, errMsg); err != nil {
		logrus.Errorf("Failed to record posting attempt for analysis %d on %s: %v", a.ID, platform, err)
	}
}

// Classify maps a dispatch error onto the posting failure taxonomy for
// logging and reporting.
func Classify(err error) string {
	var mediaErr *platforms.MediaRejectedError
	var transportErr *platforms.TransportError

	switch {
	case err == nil:
		return ""
	case errors.Is(err, platforms.ErrNotConfigured):
		return "platform_not_configured"
	case errors.As(err, &mediaErr):
		return "media_rejected"
	case errors.As(err, &transportErr):
		return "transport_error"
	default:
		return "transport_error"
	}
}
