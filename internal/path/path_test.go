package path

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitRoot(t *testing.T) {
	assert.Equal(t, []string{""}, Split("/"))
}

func TestSplitTrailingSlashIgnored(t *testing.T) {
	assert.Equal(t, Split("/a/b"), Split("/a/b/"))
}

func TestSplitMultipleComponents(t *testing.T) {
	assert.Equal(t, []string{"users", "42", "posts"}, Split("/users/42/posts"))
}

func TestMatchLiteral(t *testing.T) {
	p := NewPattern("/users/42")
	ok, _ := Match(p, Split("/users/42"))
	assert.True(t, ok)

	ok, _ = Match(p, Split("/users/43"))
	assert.False(t, ok)
}

func TestMatchSingleWildcard(t *testing.T) {
	p := NewPattern("/users/*")
	ok, caps := Match(p, Split("/users/42"))
	assert.True(t, ok)
	assert.Equal(t, [][]string{{"42"}}, caps)
}

func TestMatchMultiSegmentWildcard(t *testing.T) {
	p := NewPattern("/static/*")
	ok, caps := Match(p, Split("/static/css/site.css"))
	assert.True(t, ok)
	assert.Equal(t, [][]string{{"css", "site.css"}}, caps)
}

func TestMatchMultipleWildcards(t *testing.T) {
	p := NewPattern("/users/*/posts/*")
	ok, caps := Match(p, Split("/users/42/posts/7"))
	assert.True(t, ok)
	assert.Equal(t, [][]string{{"42"}, {"7"}}, caps)
}

func TestMatchPatternsPrefersMoreComponents(t *testing.T) {
	patterns := []Pattern{NewPattern("/users/*"), NewPattern("/users/*/posts")}
	idx, _ := MatchPatterns(patterns, Split("/users/42/posts"))
	assert.Equal(t, 1, idx)
}

func TestMatchPatternsPrefersFewerWildcardsOnTie(t *testing.T) {
	patterns := []Pattern{NewPattern("/users/*"), NewPattern("/users/42")}
	idx, _ := MatchPatterns(patterns, Split("/users/42"))
	assert.Equal(t, 1, idx)
}

func TestMatchPatternsNoMatch(t *testing.T) {
	patterns := []Pattern{NewPattern("/users/*")}
	idx, caps := MatchPatterns(patterns, Split("/posts/1"))
	assert.Equal(t, -1, idx)
	assert.Nil(t, caps)
}

func TestMatchPatternsFirstRegisteredWinsTie(t *testing.T) {
	patterns := []Pattern{NewPattern("/a/*"), NewPattern("/*/b")}
	idx, _ := MatchPatterns(patterns, Split("/a/b"))
	assert.Equal(t, 0, idx)
}
