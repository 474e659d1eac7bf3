package analyzer

import (
	"fmt"

	"github.com/catops/cat-content-bot/internal/models"
)

// BuildPrompt returns the Instagram-focused analysis prompt for one media
// item. The section headers here are load-bearing: Parse locates its
// sections by these exact markers.
func BuildPrompt(mediaType models.MediaType) string {
	kind := "image"
	if mediaType == models.MediaVideo {
		kind = "video"
	}

	return fmt.Sprintf(`Analyze this %s of a cat for Instagram virality potential, focusing on Instagram's specific engagement patterns and algorithm preferences.

Score each category from 1-10 and provide detailed reasoning with Instagram-specific insights:
1. Cuteness Factor (Instagram users' emotional response potential)
2. Action/Entertainment Value (Instagram engagement and save/share potential)
3. Uniqueness (Standing out in Instagram cat content)
4. Image/Video Quality (Instagram's visual quality standards)
5. Trend Alignment (Current Instagram cat content trends)

For Instagram optimization, provide:
1. Engaging Caption:
   - Write a caption that encourages interaction
   - Include a call-to-action
   - Use emojis strategically
   - Keep it under 125 characters for optimal display

2. Hashtag Strategy:
   - Mix popular and niche cat hashtags (max 15)
   - Include trending hashtags if relevant
   - Order from most to least relevant

3. Engagement Optimization:
   - Suggestions for Instagram Stories/Reels potential
   - Ideas for carousel posts if applicable
   - Poll/Quiz suggestions for Stories

4. Key Strengths for Instagram:
   - What makes this content save-worthy
   - Share potential
   - Viral trigger elements

5. Instagram-Specific Improvements:
   - How to optimize for the Instagram algorithm
   - Format/crop suggestions
   - Enhancement ideas for better engagement`, kind)
}
