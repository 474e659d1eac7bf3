package analyzer

import "strings"

// MaxHashtags is Instagram's per-post hashtag limit, used as the cap for
// every platform since it is the strictest.
const MaxHashtags = 30

// DefaultHashtagPool is the ordered fallback pool used to pad extracted
// hashtags up to the platform limit.
var DefaultHashtagPool = []string{
	"#catsofinstagram", "#catstagram", "#cats", "#cat", "#kitty",
	"#meow", "#catlife", "#instacat", "#catlovers", "#catlover",
	"#catoftheday", "#catlove", "#kitten", "#pets", "#catworld",
	"#kittensofinstagram", "#catphoto", "#catsagram", "#ilovemycat", "#catloversclub",
	"#gato", "#catsofig", "#kittens", "#petsofinstagram", "#catmom",
	"#adoptdontshop", "#meowed", "#catloversworld", "#cutecat", "#catvideo",
}

const trailingPunctuation = ".,!?:;()[]{}"

// ExtractHashtags pulls hashtag tokens out of free text and pads the result
// from the fallback pool. Tokens are kept in document order, then pool
// order; the result never exceeds MaxHashtags tokens.
func ExtractHashtags(text string, fallback []string) string {
	var tags []string
	seen := make(map[string]bool)

	for _, token := range strings.Fields(text) {
		if !strings.HasPrefix(token, "#") {
			continue
		}
		token = strings.TrimRight(token, trailingPunctuation)
		if token == "#" {
			continue
		}
		if seen[token] {
			continue
		}
		seen[token] = true
		tags = append(tags, token)
		if len(tags) == MaxHashtags {
			return strings.Join(tags, " ")
		}
	}

	for _, tag := range fallback {
		if len(tags) == MaxHashtags {
			break
		}
		if seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}

	return strings.Join(tags, " ")
}
