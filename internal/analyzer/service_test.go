package analyzer

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/catops/cat-content-bot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockModel is a mock implementation of the content model
type MockModel struct {
	mock.Mock
}

func (m *MockModel) GenerateContent(ctx context.Context, prompt, mediaPath string) (string, error) {
	args := m.Called(prompt, mediaPath)
	return args.String(0), args.Error(1)
}

// MockStore is a mock implementation of the analysis store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveAnalysis(ctx context.Context, a *models.Analysis) (int64, error) {
	args := m.Called(a)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) FindByFilenameOrHash(ctx context.Context, filename, contentHash string) (*models.Analysis, error) {
	args := m.Called(filename, contentHash)
	if a, ok := args.Get(0).(*models.Analysis); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func writeTestMedia(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func TestAnalyzeMedia_FreshFile(t *testing.T) {
	content := []byte("fake jpeg bytes")
	path := writeTestMedia(t, "cat.jpg", content)
	sum := md5.Sum(content)
	wantHash := hex.EncodeToString(sum[:])

	mockModel := &MockModel{}
	mockStore := &MockStore{}
	service := NewService(mockModel, mockStore, nil)

	mockStore.On("FindByFilenameOrHash", "cat.jpg", wantHash).Return(nil, nil)
	mockModel.On("GenerateContent", mock.Anything, path).Return(sampleResponse, nil)
	mockStore.On("SaveAnalysis", mock.Anything).Return(int64(1), nil)

	analysis, err := service.AnalyzeMedia(context.Background(), path, "")
	require.NoError(t, err)

	assert.Equal(t, path, analysis.FilePath)
	assert.Equal(t, "cat.jpg", analysis.OriginalFilename)
	assert.Equal(t, wantHash, analysis.ContentHash)
	assert.Equal(t, models.MediaImage, analysis.MediaType)
	assert.Equal(t, 35, analysis.TotalScore)

	mockModel.AssertExpectations(t)
	mockStore.AssertExpectations(t)
}

func TestAnalyzeMedia_DuplicateSkipsModelCall(t *testing.T) {
	path := writeTestMedia(t, "cat.jpg", []byte("fake jpeg bytes"))

	existing := &models.Analysis{ID: 42, OriginalFilename: "cat.jpg", TotalScore: 35}

	mockModel := &MockModel{}
	mockStore := &MockStore{}
	service := NewService(mockModel, mockStore, nil)

	mockStore.On("FindByFilenameOrHash", "cat.jpg", mock.Anything).Return(existing, nil)

	analysis, err := service.AnalyzeMedia(context.Background(), path, "cat.jpg")
	require.NoError(t, err)

	assert.Equal(t, existing, analysis)
	mockModel.AssertNotCalled(t, "GenerateContent", mock.Anything, mock.Anything)
	mockStore.AssertNotCalled(t, "SaveAnalysis", mock.Anything)
}

func TestAnalyzeMedia_ModelErrorPropagates(t *testing.T) {
	path := writeTestMedia(t, "cat.mp4", []byte("fake video bytes"))

	modelErr := errors.New("model unavailable")

	mockModel := &MockModel{}
	mockStore := &MockStore{}
	service := NewService(mockModel, mockStore, nil)

	mockStore.On("FindByFilenameOrHash", "cat.mp4", mock.Anything).Return(nil, nil)
	mockModel.On("GenerateContent", mock.Anything, path).Return("", modelErr)

	_, err := service.AnalyzeMedia(context.Background(), path, "")
	assert.ErrorIs(t, err, modelErr)
	mockStore.AssertNotCalled(t, "SaveAnalysis", mock.Anything)
}

func TestAnalyzeMedia_UnreadableFile(t *testing.T) {
	mockModel := &MockModel{}
	mockStore := &MockStore{}
	service := NewService(mockModel, mockStore, nil)

	_, err := service.AnalyzeMedia(context.Background(), "/nonexistent/cat.jpg", "")
	assert.Error(t, err)
	mockStore.AssertNotCalled(t, "FindByFilenameOrHash", mock.Anything, mock.Anything)
}

func TestAnalyzeMedia_CustomFallbackPool(t *testing.T) {
	path := writeTestMedia(t, "kitten.jpg", []byte("other jpeg bytes"))

	mockModel := &MockModel{}
	mockStore := &MockStore{}
	service := NewService(mockModel, mockStore, []string{"#mycat", "#myhouse"})

	mockStore.On("FindByFilenameOrHash", "kitten.jpg", mock.Anything).Return(nil, nil)
	mockModel.On("GenerateContent", mock.Anything, path).Return("Caption: hi\n\nHashtags: #cat", nil)
	mockStore.On("SaveAnalysis", mock.Anything).Return(int64(2), nil)

	analysis, err := service.AnalyzeMedia(context.Background(), path, "")
	require.NoError(t, err)

	assert.Equal(t, "#cat #mycat #myhouse", analysis.Hashtags)
}
