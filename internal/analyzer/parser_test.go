package analyzer

import (
	"errors"
	"strings"
	"testing"

	"github.com/catops/cat-content-bot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `Cuteness Factor: 8/10
Action/Entertainment Value: 6/10
Uniqueness: 7/10
Image/Video Quality: 9/10
Trend Alignment: 5/10

Caption: Look at this cat! 😺

Hashtags: #cat #cute #fluffy

Engagement Optimization: post in the evening

Key Strengths: adorable expression

Improvements: better lighting`

func TestParse_WellFormedResponse(t *testing.T) {
	analysis, err := Parse(sampleResponse, models.MediaImage)
	require.NoError(t, err)

	assert.Equal(t, 8, analysis.Scores["Cuteness Factor"])
	assert.Equal(t, 6, analysis.Scores["Action/Entertainment Value"])
	assert.Equal(t, 7, analysis.Scores["Uniqueness"])
	assert.Equal(t, 9, analysis.Scores["Image/Video Quality"])
	assert.Equal(t, 5, analysis.Scores["Trend Alignment"])
	assert.Equal(t, 35, analysis.TotalScore)

	assert.Contains(t, analysis.Caption, "Look at this cat")
	assert.True(t, strings.HasPrefix(analysis.Hashtags, "#cat #cute #fluffy"))

	assert.Equal(t, "post in the evening", analysis.EngagementTips)
	assert.Equal(t, "adorable expression", analysis.KeyStrengths)
	assert.Equal(t, "better lighting", analysis.ImprovementSuggestions)
	assert.Equal(t, models.MediaImage, analysis.MediaType)
}

func TestParse_TotalScoreIsSumOfCategories(t *testing.T) {
	analysis, err := Parse(sampleResponse, models.MediaVideo)
	require.NoError(t, err)

	sum := 0
	for _, category := range Categories {
		score := analysis.Scores[category]
		assert.GreaterOrEqual(t, score, 1)
		assert.LessOrEqual(t, score, 10)
		sum += score
	}
	assert.Equal(t, sum, analysis.TotalScore)
}

func TestParse_MissingCategoriesDefaultToFive(t *testing.T) {
	analysis, err := Parse("The model rambled and scored nothing.", models.MediaImage)
	require.NoError(t, err)

	for _, category := range Categories {
		assert.Equal(t, 5, analysis.Scores[category], category)
	}
	assert.Equal(t, 25, analysis.TotalScore)
}

func TestParse_ScoreOutsideWindowDefaultsToFive(t *testing.T) {
	// The score sits past the 100-character search window
	text := "Uniqueness" + strings.Repeat("x", scoreWindow+20) + " 9/10"

	analysis, err := Parse(text, models.MediaImage)
	require.NoError(t, err)

	assert.Equal(t, 5, analysis.Scores["Uniqueness"])
}

func TestParse_EmptyResponse(t *testing.T) {
	for _, raw := range []string{"", "   \n\t  "} {
		_, err := Parse(raw, models.MediaImage)
		require.Error(t, err)

		var parseErr *ParseError
		assert.True(t, errors.As(err, &parseErr))
	}
}

func TestParse_PadsHashtagsToLimit(t *testing.T) {
	analysis, err := Parse(sampleResponse, models.MediaImage)
	require.NoError(t, err)

	tags := strings.Fields(analysis.Hashtags)
	assert.Len(t, tags, MaxHashtags)
	// Extracted tags come first, pool padding after, no duplicates
	assert.Equal(t, "#cat", tags[0])
	assert.Equal(t, "#catsofinstagram", tags[3])

	seen := make(map[string]bool)
	for _, tag := range tags {
		assert.False(t, seen[tag], "duplicate hashtag %s", tag)
		seen[tag] = true
	}
}

func TestExtractScore_PlainNumberWithoutSuffix(t *testing.T) {
	analysis, err := Parse("Cuteness Factor: 9", models.MediaImage)
	require.NoError(t, err)

	assert.Equal(t, 9, analysis.Scores["Cuteness Factor"])
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "strips markdown emphasis",
			input:    "**Bold** and *italic* and `code`",
			expected: "Bold and italic and code",
		},
		{
			name:     "strips list markers",
			input:    "- first tip\n- second tip",
			expected: "first tip second tip",
		},
		{
			name:     "strips bracketed asides",
			input:    "keep this [not this] and (not this either) too",
			expected: "keep this and too",
		},
		{
			name:     "strips section header echo",
			input:    "Key Strengths: adorable expression",
			expected: "adorable expression",
		},
		{
			name:     "collapses whitespace",
			input:    "too   many\n\n  spaces",
			expected: "too many spaces",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cleanText(tt.input))
		})
	}
}
