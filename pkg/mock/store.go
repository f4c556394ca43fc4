// Package mock serves GraphQL operations from an in-memory post store when
// the live server is disabled or unreachable.
package mock

import (
	"slices"
	"sync"

	"github.com/saturnines/blogql/pkg/blog"
)

// Store is an in-memory set of posts. It is safe for concurrent use;
// callers always receive copies.
type Store struct {
	mu    sync.RWMutex
	posts []blog.Post
}

// NewStore creates a store holding posts in insertion order.
func NewStore(posts ...blog.Post) *Store {
	s := &Store{posts: make([]blog.Post, 0, len(posts))}
	for _, p := range posts {
		s.posts = append(s.posts, clonePost(p))
	}
	return s
}

// List returns every post, newest first.
func (s *Store) List() []blog.Post {
	s.mu.RLock()
	out := make([]blog.Post, len(s.posts))
	for i, p := range s.posts {
		out[i] = clonePost(p)
	}
	s.mu.RUnlock()

	blog.SortNewestFirst(out)
	return out
}

// Get returns the post with id.
func (s *Store) Get(id string) (blog.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.posts {
		if p.ID == id {
			return clonePost(p), true
		}
	}
	return blog.Post{}, false
}

// Add appends a post.
func (s *Store) Add(p blog.Post) {
	s.mu.Lock()
	s.posts = append(s.posts, clonePost(p))
	s.mu.Unlock()
}

// Len returns the number of stored posts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posts)
}

func clonePost(p blog.Post) blog.Post {
	p.Tags = slices.Clone(p.Tags)
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p
}
