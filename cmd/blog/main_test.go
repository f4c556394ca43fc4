package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnines/blogql/pkg/blog"
	"github.com/saturnines/blogql/pkg/core"
	"github.com/saturnines/blogql/pkg/errors"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("BLOG_ENV", "development")
	t.Setenv("BLOG_USE_MOCK", "true")

	envFile := filepath.Join(t.TempDir(), "missing.env")
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--env-file", envFile}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPostsFromMockData(t *testing.T) {
	out, err := runCLI(t, "posts", "--json")
	require.NoError(t, err)

	var posts []blog.Post
	require.NoError(t, json.Unmarshal([]byte(out), &posts))
	require.NotEmpty(t, posts)
	for i := 1; i < len(posts); i++ {
		assert.False(t, posts[i].Published().After(posts[i-1].Published()))
	}
}

func TestPostNotFound(t *testing.T) {
	_, err := runCLI(t, "post", "does-not-exist")
	require.Error(t, err)
	assert.Equal(t, "The requested post was not found.", errors.Summary(err))
}

func TestCreateResolvesAuthor(t *testing.T) {
	out, err := runCLI(t, "create", "--json",
		"--title", "Hello", "--body", "First post", "--author", "佐藤太郎", "--tags", "go, graphql")
	require.NoError(t, err)

	var post blog.Post
	require.NoError(t, json.Unmarshal([]byte(out), &post))
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, []string{"go", "graphql"}, post.Tags)
}

func TestCreateRejectsUnknownAuthor(t *testing.T) {
	_, err := runCLI(t, "create", "--title", "Hello", "--body", "x", "--author", "nobody")
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindValidation))
}

func TestCreateValidates(t *testing.T) {
	_, err := runCLI(t, "create", "--body", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title is required")
}

func TestPingMock(t *testing.T) {
	out, err := runCLI(t, "ping", "--json")
	require.NoError(t, err)

	var result core.PingResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Success)
	assert.Contains(t, result.Message, "mock data")
}

func TestPreviewTruncates(t *testing.T) {
	long := bytes.Repeat([]byte("あ"), previewLength+10)
	got := preview(string(long))
	assert.Equal(t, previewLength+1, len([]rune(got)))
	assert.Equal(t, "a b", preview("a\n\n b"))
}
