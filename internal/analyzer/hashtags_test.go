package analyzer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractHashtags_PadsFromPool(t *testing.T) {
	result := ExtractHashtags("#one #two", []string{"#two", "#three", "#four"})
	assert.Equal(t, "#one #two #three #four", result)
}

func TestExtractHashtags_EmptyTextUsesPool(t *testing.T) {
	result := ExtractHashtags("", DefaultHashtagPool)

	tags := strings.Fields(result)
	assert.Len(t, tags, MaxHashtags)
	assert.Equal(t, DefaultHashtagPool, tags)
}

func TestExtractHashtags_CapsAtLimit(t *testing.T) {
	var b strings.Builder
	for i := 0; i < MaxHashtags+10; i++ {
		fmt.Fprintf(&b, "#tag%d ", i)
	}

	tags := strings.Fields(ExtractHashtags(b.String(), DefaultHashtagPool))
	assert.Len(t, tags, MaxHashtags)
	assert.Equal(t, "#tag0", tags[0])
	assert.Equal(t, "#tag29", tags[MaxHashtags-1])
}

func TestExtractHashtags_StripsTrailingPunctuation(t *testing.T) {
	result := ExtractHashtags("#cat, #cute! #fluffy.", nil)
	assert.Equal(t, "#cat #cute #fluffy", result)
}

func TestExtractHashtags_DropsBareHashAndDuplicates(t *testing.T) {
	result := ExtractHashtags("# #cat some words #cat #cute", nil)
	assert.Equal(t, "#cat #cute", result)
}

func TestExtractHashtags_WellFormedInputUnchanged(t *testing.T) {
	input := "#cat #cute #fluffy"
	assert.Equal(t, input, ExtractHashtags(input, nil))
}
