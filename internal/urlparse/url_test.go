package urlparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAbsoluteURI(t *testing.T) {
	u, err := Parse("http://user@example.com:8080/a/b?q=1#frag")
	require.NoError(t, err)
	assert.Equal(t, "http", u.Scheme)
	assert.Equal(t, "user", u.Userinfo)
	assert.Equal(t, "example.com", u.Host)
	assert.Equal(t, "8080", u.Port)
	assert.Equal(t, "/a/b", u.Path)
	assert.Equal(t, "q=1", u.Query)
	assert.Equal(t, "frag", u.Fragment)
}

func TestParseOriginForm(t *testing.T) {
	u, err := Parse("/foo/bar?x=y")
	require.NoError(t, err)
	assert.Empty(t, u.Scheme)
	assert.Empty(t, u.Host)
	assert.Equal(t, "/foo/bar", u.Path)
	assert.Equal(t, "x=y", u.Query)
}

func TestParseEmptyAuthority(t *testing.T) {
	u, err := Parse("http://")
	require.NoError(t, err)
	assert.Equal(t, "http", u.Scheme)
	assert.Empty(t, u.Host)
	assert.Empty(t, u.Path)
}

func TestParseIPv4Host(t *testing.T) {
	u, err := Parse("http://127.0.0.1:42069/")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", u.Host)
	assert.Equal(t, "42069", u.Port)
	assert.Equal(t, "/", u.Path)
}

func TestParseIPv6Host(t *testing.T) {
	u, err := Parse("http://[::1]:8080/")
	require.NoError(t, err)
	assert.Equal(t, "::1", u.Host)
	assert.Equal(t, "8080", u.Port)
}

func TestParseMalformedIPv6Fails(t *testing.T) {
	_, err := Parse("http://[not-an-addr]/")
	require.Error(t, err)
}

func TestParseRootOnly(t *testing.T) {
	u, err := Parse("/")
	require.NoError(t, err)
	assert.Equal(t, "/", u.Path)
	assert.Empty(t, u.Query)
	assert.Empty(t, u.Fragment)
}

func TestParseNoSchemeAuthority(t *testing.T) {
	u, err := Parse("//example.com/path")
	require.NoError(t, err)
	assert.Equal(t, "example.com", u.Host)
	assert.Equal(t, "/path", u.Path)
}

func TestParseFragmentOnly(t *testing.T) {
	u, err := Parse("/a#section-2")
	require.NoError(t, err)
	assert.Equal(t, "/a", u.Path)
	assert.Equal(t, "section-2", u.Fragment)
}
