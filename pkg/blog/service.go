package blog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/saturnines/blogql/pkg/errors"
)

// sharedReadTimeout bounds a deduplicated read, retries included.
const sharedReadTimeout = 2 * time.Minute

// Requester runs one GraphQL operation and returns its data object.
// *core.Client satisfies it.
type Requester interface {
	Request(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error)
}

// Service exposes the blog operations used by the UI. Concurrent identical
// reads share one request.
type Service struct {
	requester Requester
	logger    *slog.Logger
	reads     singleflight.Group
}

// NewService creates a Service. A nil logger discards output.
func NewService(r Requester, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{requester: r, logger: logger}
}

// ListPosts returns all posts, newest first.
func (s *Service) ListPosts(ctx context.Context) ([]Post, error) {
	v, shared, err := s.shared(ctx, "posts", func(ctx context.Context) (any, error) {
		var result struct {
			Posts []Post `json:"posts"`
		}
		if err := s.request(ctx, ListPostsQuery, nil, &result); err != nil {
			return nil, err
		}
		return result.Posts, nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("listed posts", slog.Bool("shared", shared))

	// Each caller sorts its own copy.
	src := v.([]Post)
	posts := make([]Post, len(src))
	for i, p := range src {
		posts[i] = p.clone()
	}
	SortNewestFirst(posts)
	return posts, nil
}

// GetPost returns the post with id, or a not-found error.
func (s *Service) GetPost(ctx context.Context, id string) (*Post, error) {
	if id == "" {
		return nil, errors.New(errors.KindValidation, "post id is required")
	}
	v, _, err := s.shared(ctx, "post:"+id, func(ctx context.Context) (any, error) {
		var result struct {
			Post *Post `json:"post"`
		}
		if err := s.request(ctx, GetPostQuery, map[string]any{"id": id}, &result); err != nil {
			return nil, err
		}
		return result.Post, nil
	})
	if err != nil {
		if isNotFound(err) {
			return nil, errors.Wrap(errors.KindNotFound, err, fmt.Sprintf("post %s not found", id))
		}
		return nil, err
	}
	post := v.(*Post)
	if post == nil {
		return nil, errors.NotFound("post " + id)
	}
	cp := post.clone()
	return &cp, nil
}

// shared runs fn once for all concurrent callers of key. fn runs detached
// from the first caller's cancellation, bounded by sharedReadTimeout; each
// caller stops waiting when its own context ends.
func (s *Service) shared(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, bool, error) {
	ch := s.reads.DoChan(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedReadTimeout)
		defer cancel()
		return fn(callCtx)
	})
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		return res.Val, res.Shared, res.Err
	}
}

// GetUser returns the user with id, or nil when the server knows none.
func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	if id == "" {
		return nil, errors.New(errors.KindValidation, "user id is required")
	}
	var result struct {
		User *User `json:"user"`
	}
	if err := s.request(ctx, GetUserQuery, map[string]any{"id": id}, &result); err != nil {
		return nil, err
	}
	return result.User, nil
}

// CreatePost validates in and creates the post.
func (s *Service) CreatePost(ctx context.Context, in CreatePostInput) (*Post, error) {
	in.Tags = NormalizeTags(in.Tags)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var result struct {
		CreatePost *Post `json:"createPost"`
	}
	if err := s.request(ctx, CreatePostMutation, map[string]any{"input": in}, &result); err != nil {
		return nil, err
	}
	if result.CreatePost == nil {
		return nil, errors.New(errors.KindAPI, "createPost returned no post")
	}
	s.logger.Info("created post", slog.String("id", result.CreatePost.ID))
	return result.CreatePost, nil
}

// ResolveAuthor maps an author display name to its user id.
func (s *Service) ResolveAuthor(name string) (string, error) {
	id, ok := UserIDByName(strings.TrimSpace(name))
	if !ok {
		return "", errors.Newf(errors.KindValidation, "unknown author: %s", name)
	}
	return id, nil
}

func (s *Service) request(ctx context.Context, query string, vars map[string]any, out any) error {
	data, err := s.requester.Request(ctx, query, vars)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(errors.KindAPI, err, "decode response: "+err.Error())
	}
	return nil
}

// isNotFound reports whether err means the post does not exist.
func isNotFound(err error) bool {
	if errors.IsKind(err, errors.KindNotFound) {
		return true
	}
	return errors.IsKind(err, errors.KindGraphQL) && strings.Contains(err.Error(), "not found")
}
