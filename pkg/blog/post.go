// Package blog holds the blog's data model and the operations the UI layer
// performs against the GraphQL pipeline.
package blog

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/saturnines/blogql/pkg/errors"
)

// User is a post author.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// Post is a published blog entry. PublishedAt is RFC 3339.
type Post struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Body        string   `json:"body"`
	Author      User     `json:"author"`
	Tags        []string `json:"tags"`
	PublishedAt string   `json:"publishedAt"`
}

// Published returns the parsed publication time, or the zero time when the
// field is malformed.
func (p Post) Published() time.Time {
	t, err := time.Parse(time.RFC3339Nano, p.PublishedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (p Post) clone() Post {
	p.Tags = slices.Clone(p.Tags)
	return p
}

// SortNewestFirst orders posts by publication time, newest first. Posts
// with equal timestamps keep their relative order.
func SortNewestFirst(posts []Post) {
	slices.SortStableFunc(posts, func(a, b Post) int {
		return b.Published().Compare(a.Published())
	})
}

const (
	MaxTitleLength = 100
	MaxBodyLength  = 5000
)

// CreatePostInput is the payload of the CreatePost mutation.
type CreatePostInput struct {
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Tags     []string `json:"tags,omitempty"`
	AuthorID string   `json:"authorId"`
}

// Validate checks the fields the post form requires.
func (in CreatePostInput) Validate() error {
	var problems []string
	switch n := utf8.RuneCountInString(strings.TrimSpace(in.Title)); {
	case n == 0:
		problems = append(problems, "title is required")
	case n > MaxTitleLength:
		problems = append(problems, fmt.Sprintf("title must be at most %d characters", MaxTitleLength))
	}
	switch n := utf8.RuneCountInString(strings.TrimSpace(in.Body)); {
	case n == 0:
		problems = append(problems, "body is required")
	case n > MaxBodyLength:
		problems = append(problems, fmt.Sprintf("body must be at most %d characters", MaxBodyLength))
	}
	if strings.TrimSpace(in.AuthorID) == "" {
		problems = append(problems, "author is required")
	}
	if len(problems) > 0 {
		return errors.New(errors.KindValidation, strings.Join(problems, "; "))
	}
	return nil
}

// NormalizeTags trims tags and drops empty and duplicate entries.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// ParseTags splits a comma separated tag list.
func ParseTags(s string) []string {
	return NormalizeTags(strings.Split(s, ","))
}
