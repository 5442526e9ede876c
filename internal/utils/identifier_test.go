package utils

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var identifierPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Jane Doe":               "jane-doe",
		"  José   Álvarez  ":     "jose-alvarez",
		"Hello, World!!":         "hello-world",
		"already-slugged":        "already-slugged",
		"Ünïcödé & Friends 2024": "unicode-friends-2024",
		"":                       "portfolio",
		"!!!":                    "portfolio",
		"日本語":                    "portfolio",
	}

	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "input %q", in)
	}
}

func TestSlugify_TruncatesLongNames(t *testing.T) {
	slug := Slugify(strings.Repeat("abcde ", 20))

	assert.LessOrEqual(t, len(slug), maxSlugLength)
	assert.False(t, strings.HasSuffix(slug, "-"))
}

func TestGenerateUniqueIdentifier(t *testing.T) {
	id, err := GenerateUniqueIdentifier("Jane Doe", 42)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(id, "jane-doe-16-"), id)
	assert.Regexp(t, identifierPattern, id)
	assert.Len(t, strings.TrimPrefix(id, "jane-doe-16-"), 8)
}

func TestGenerateUniqueIdentifier_Distinct(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 500; i++ {
		id, err := GenerateUniqueIdentifier("Same Name", 7)
		require.NoError(t, err)
		_, dup := seen[id]
		require.False(t, dup, "duplicate identifier %s", id)
		seen[id] = struct{}{}
	}
}
