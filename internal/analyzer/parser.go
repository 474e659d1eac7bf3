package analyzer

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/catops/cat-content-bot/internal/models"
)

// Categories is the fixed set of scoring categories the model is asked to
// rate. Order matters for prompt construction and report display.
var Categories = []string{
	"Cuteness Factor",
	"Action/Entertainment Value",
	"Uniqueness",
	"Image/Video Quality",
	"Trend Alignment",
}

// scoreWindow bounds how far past a category name we look for its score.
const scoreWindow = 100

const defaultScore = 5

// ParseError indicates the model response could not be turned into an
// analysis. It carries the original text so the caller can retry the model
// call or surface the raw output.
type ParseError struct {
	RawText string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse analysis response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var scoreRe = regexp.MustCompile(`(\d+)(?:/10)?`)

// Parse converts raw model output into a structured analysis, padding
// hashtags from the built-in pool.
func Parse(rawText string, mediaType models.MediaType) (*models.Analysis, error) {
	return ParseWithPool(rawText, mediaType, DefaultHashtagPool)
}

// ParseWithPool is Parse with an explicit hashtag fallback pool. This is
// best-effort NLP extraction over free-form text: scores are found by
// scanning a bounded window after each category name, and sections are
// located by their header markers. If the model's wording drifts from the
// prompted format the extracted fields degrade to defaults rather than
// erroring. FilePath, OriginalFilename, ContentHash and ID are filled by
// the caller.
func ParseWithPool(rawText string, mediaType models.MediaType, pool []string) (*models.Analysis, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, &ParseError{RawText: rawText, Err: errors.New("empty model response")}
	}

	scores := make(map[string]int, len(Categories))
	total := 0
	for _, category := range Categories {
		score := extractScore(rawText, category)
		scores[category] = score
		total += score
	}

	lower := strings.ToLower(rawText)
	captionStart := strings.Index(lower, "caption")
	hashtagsStart := strings.Index(rawText, "#")
	engagementStart := strings.Index(lower, "engagement optimization")
	strengthsStart := strings.Index(lower, "key strengths")
	improvementsStart := strings.Index(lower, "improvements")

	caption := sectionSpan(rawText, captionStart, hashtagsStart, engagementStart, strengthsStart, improvementsStart)

	hashtagsText := ""
	if hashtagsStart != -1 {
		hashtagsText = rawText[hashtagsStart:]
	}

	engagement := sectionSpan(rawText, engagementStart, strengthsStart, improvementsStart)
	strengths := sectionSpan(rawText, strengthsStart, improvementsStart)
	improvements := sectionSpan(rawText, improvementsStart)

	return &models.Analysis{
		MediaType:              mediaType,
		Scores:                 scores,
		TotalScore:             total,
		Caption:                cleanText(caption),
		Hashtags:               ExtractHashtags(hashtagsText, pool),
		EngagementTips:         cleanText(engagement),
		KeyStrengths:           cleanText(strengths),
		ImprovementSuggestions: cleanText(improvements),
		Timestamp:              time.Now().UTC(),
	}, nil
}

// extractScore finds the first integer (optionally written as n/10) within
// scoreWindow characters after the category name. Missing category or
// missing number both default to 5.
func extractScore(text, category string) int {
	idx := strings.Index(text, category)
	if idx == -1 {
		return defaultScore
	}

	end := idx + scoreWindow
	if end > len(text) {
		end = len(text)
	}

	match := scoreRe.FindStringSubmatch(text[idx:end])
	if match == nil {
		return defaultScore
	}

	score, err := strconv.Atoi(match[1])
	if err != nil {
		return defaultScore
	}
	return score
}

// sectionSpan returns the text from start up to the nearest following
// marker, or end of text when none follows. A start of -1 yields "".
func sectionSpan(text string, start int, followers ...int) string {
	if start == -1 {
		return ""
	}

	end := len(text)
	for _, f := range followers {
		if f > start && f < end {
			end = f
		}
	}

	return strings.TrimSpace(text[start:end])
}

var (
	listMarkerRe = regexp.MustCompile(`(?m)^\s*(?:[-*•]+|\d+\.)\s+`)
	asideRe      = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)`)
	headerEchoRe = regexp.MustCompile(`(?i)^(?:engaging\s+|instagram-specific\s+)?(?:caption|hashtags|engagement optimization|key strengths|improvements)\s*:\s*`)

	emphasisReplacer = strings.NewReplacer("**", "", "*", "", "__", "", "`", "")
)

// cleanText strips markdown emphasis, bracketed asides, list markers and a
// leading section-header echo, then collapses whitespace.
func cleanText(text string) string {
	if text == "" {
		return ""
	}

	text = listMarkerRe.ReplaceAllString(text, "")
	text = asideRe.ReplaceAllString(text, "")
	text = emphasisReplacer.Replace(text)
	text = strings.Join(strings.Fields(text), " ")
	text = headerEchoRe.ReplaceAllString(text, "")

	return strings.TrimSpace(text)
}
