package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnines/blogql/pkg/blog"
	"github.com/saturnines/blogql/pkg/errors"
	"github.com/saturnines/blogql/pkg/transport/graphql"
)

var fixedNow = time.Date(2025, 3, 20, 9, 0, 0, 0, time.UTC)

func newTestProvider(opts ...Option) *Provider {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewProvider(NewSeededStore(fixedNow), opts...)
}

func resolve[T any](t *testing.T, p *Provider, query string, vars map[string]any) T {
	t.Helper()
	data, err := p.Resolve(context.Background(), query, vars)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

type postsResult struct {
	Posts []blog.Post `json:"posts"`
}

type postResult struct {
	Post *blog.Post `json:"post"`
}

type createResult struct {
	CreatePost blog.Post `json:"createPost"`
}

func TestProvider_ListsSeedNewestFirst(t *testing.T) {
	p := newTestProvider()

	got := resolve[postsResult](t, p, "query GetPosts { posts { id } }", nil)

	require.Len(t, got.Posts, 5)
	ids := make([]string, len(got.Posts))
	for i, post := range got.Posts {
		ids[i] = post.ID
	}
	assert.Equal(t, []string{"post-1", "post-2", "post-3", "post-4", "post-5"}, ids)
	assert.Equal(t, fixedNow.Add(-2*day).Format(TimeFormat), got.Posts[0].PublishedAt)
	assert.Equal(t, fixedNow.Add(-14*day).Format(TimeFormat), got.Posts[4].PublishedAt)
	assert.Equal(t, "髙橋慶祐", got.Posts[0].Author.Name)
}

func TestProvider_GetPost(t *testing.T) {
	p := newTestProvider()
	const q = "query GetPost($id: ID!){ post(id:$id){id} }"

	first := resolve[postResult](t, p, q, map[string]any{"id": "post-3"})
	second := resolve[postResult](t, p, q, map[string]any{"id": "post-3"})
	require.NotNil(t, first.Post)
	assert.Equal(t, first, second)
	assert.Equal(t, "鈴木花子", first.Post.Author.Name)
	assert.Equal(t, 5, p.Store().Len())

	_, err := p.Resolve(context.Background(), q, map[string]any{"id": "post-999"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestProvider_CreatePost(t *testing.T) {
	p := newTestProvider()

	got := resolve[createResult](t, p, "mutation CreatePost($input: CreatePostInput!) { createPost(input: $input) { id } }",
		map[string]any{"input": map[string]any{"title": "T", "body": "B", "authorId": "user-2"}})

	created := got.CreatePost
	assert.Equal(t, "佐藤太郎", created.Author.Name)
	assert.Equal(t, "user-2", created.Author.ID)
	assert.Equal(t, []string{}, created.Tags)
	assert.Equal(t, "T", created.Title)
	assert.Equal(t, "B", created.Body)
	assert.Regexp(t, `^post-[0-9a-f-]{36}$`, created.ID)
	assert.Equal(t, fixedNow.Format(TimeFormat), created.PublishedAt)
	for _, seed := range SeedPosts(fixedNow) {
		assert.NotEqual(t, seed.ID, created.ID)
	}

	fetched := resolve[postResult](t, p, "query GetPost($id: ID!) { post(id: $id) { id } }", map[string]any{"id": created.ID})
	require.NotNil(t, fetched.Post)
	assert.Equal(t, created, *fetched.Post)
	assert.Equal(t, 6, p.Store().Len())
}

func TestProvider_CreatePostDefaultsAndStructInput(t *testing.T) {
	p := newTestProvider(WithIDGenerator(func() string { return "post-fixed" }))

	got := resolve[createResult](t, p, blog.CreatePostMutation, map[string]any{
		"input": blog.CreatePostInput{Title: "T", Body: "B", AuthorID: "user-42", Tags: []string{"go"}},
	})

	assert.Equal(t, "post-fixed", got.CreatePost.ID)
	assert.Equal(t, blog.DefaultUser(), got.CreatePost.Author)
	assert.Equal(t, []string{"go"}, got.CreatePost.Tags)
}

func TestProvider_UnknownAndUser(t *testing.T) {
	p := newTestProvider()

	data, err := p.Resolve(context.Background(), "query { __typename }", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))

	// Get without an id variable is not a get.
	data, err = p.Resolve(context.Background(), "query GetPost { post(id: \"post-1\") { id } }", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))

	data, err = p.Resolve(context.Background(), blog.GetUserQuery, map[string]any{"id": "user-4"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"user":{"id":"user-4","name":"松本次郎","avatarUrl":"https://avatars.githubusercontent.com/u/4?v=4"}}`, string(data))

	data, err = p.Resolve(context.Background(), blog.GetUserQuery, map[string]any{"id": "user-9"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"user":null}`, string(data))
}

func TestProvider_ImplementsTransport(t *testing.T) {
	var tr graphql.Transport = newTestProvider()
	data, err := tr.Execute(context.Background(), graphql.Operation{Query: blog.ListPostsQuery})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"post-5"`)
}

func TestProvider_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestProvider().Resolve(ctx, blog.ListPostsQuery, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore_ConcurrentCreateAndList(t *testing.T) {
	p := NewProvider(NewSeededStore(fixedNow))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, err := p.Resolve(context.Background(), blog.CreatePostMutation, map[string]any{
				"input": map[string]any{"title": fmt.Sprintf("t%d", i), "body": "b", "authorId": "user-3"},
			})
			assert.NoError(t, err)
		}(i)
		go func() {
			defer wg.Done()
			_, err := p.Resolve(context.Background(), blog.ListPostsQuery, nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 25, p.Store().Len())
}

func TestStore_ListIsStableAndCopied(t *testing.T) {
	ts := fixedNow.Format(TimeFormat)
	s := NewStore(
		blog.Post{ID: "a", PublishedAt: ts, Tags: []string{"x"}},
		blog.Post{ID: "b", PublishedAt: fixedNow.Add(time.Hour).Format(TimeFormat)},
		blog.Post{ID: "c", PublishedAt: ts},
	)

	list := s.List()
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, "a", list[1].ID)
	assert.Equal(t, "c", list[2].ID)

	list[1].Tags[0] = "mutated"
	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, []string{"x"}, got.Tags)
}
