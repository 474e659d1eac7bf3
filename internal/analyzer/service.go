package analyzer

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/catops/cat-content-bot/internal/models"
	"github.com/sirupsen/logrus"
)

// ContentModel is the generative model collaborator: media plus prompt in,
// free text out.
type ContentModel interface {
	GenerateContent(ctx context.Context, prompt, mediaPath string) (string, error)
}

// Store is the subset of the analysis store the analyzer needs
type Store interface {
	SaveAnalysis(ctx context.Context, a *models.Analysis) (int64, error)
	FindByFilenameOrHash(ctx context.Context, filename, contentHash string) (*models.Analysis, error)
}

// Service runs the analysis pipeline: duplicate check, model call, parse,
// save.
type Service struct {
	model    ContentModel
	store    Store
	fallback []string
}

// NewService creates a new analyzer service. An empty fallback pool means
// the built-in hashtag pool.
func NewService(model ContentModel, store Store, fallback []string) *Service {
	return &Service{
		model:    model,
		store:    store,
		fallback: fallback,
	}
}

// AnalyzeMedia analyzes a single media file. Previously analyzed media
// (matched by content hash first, filename second) is returned from the
// store without invoking the model again.
func (s *Service) AnalyzeMedia(ctx context.Context, mediaPath, originalFilename string) (*models.Analysis, error) {
	if originalFilename == "" {
		originalFilename = filepath.Base(mediaPath)
	}

	hash, err := hashFile(mediaPath)
	if err != nil {
		return nil, fmt.Errorf("media file not readable: %w", err)
	}

	existing, err := s.store.FindByFilenameOrHash(ctx, originalFilename, hash)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		logrus.Infof("Media %s already analyzed (analysis %d), skipping model call", originalFilename, existing.ID)
		return existing, nil
	}

	mediaType := models.MediaTypeFromPath(mediaPath)

	logrus.Infof("Analyzing %s (%s)", originalFilename, mediaType)

	rawText, err := s.model.GenerateContent(ctx, BuildPrompt(mediaType), mediaPath)
	if err != nil {
		return nil, err
	}

	pool := s.fallback
	if len(pool) == 0 {
		pool = DefaultHashtagPool
	}

	analysis, err := ParseWithPool(rawText, mediaType, pool)
	if err != nil {
		return nil, err
	}

	analysis.FilePath = mediaPath
	analysis.OriginalFilename = originalFilename
	analysis.ContentHash = hash

	if _, err := s.store.SaveAnalysis(ctx, analysis); err != nil {
		return nil, err
	}

	logrus.Infof("Analysis %d saved for %s: total score %d/50", analysis.ID, originalFilename, analysis.TotalScore)
	return analysis, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
