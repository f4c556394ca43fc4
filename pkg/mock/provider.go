package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/saturnines/blogql/pkg/blog"
	"github.com/saturnines/blogql/pkg/errors"
	"github.com/saturnines/blogql/pkg/transport/graphql"
)

// Provider resolves operations against a Store.
type Provider struct {
	store      *Store
	classifier Classifier
	now        func() time.Time
	newID      func() string
	logger     *slog.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithClassifier replaces the default SubstringClassifier.
func WithClassifier(c Classifier) Option {
	return func(p *Provider) {
		if c != nil {
			p.classifier = c
		}
	}
}

// WithClock sets the time source for created posts.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) {
		if now != nil {
			p.now = now
		}
	}
}

// WithIDGenerator sets the id source for created posts.
func WithIDGenerator(newID func() string) Option {
	return func(p *Provider) {
		if newID != nil {
			p.newID = newID
		}
	}
}

// WithLogger sets the logger. Nil keeps logging disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewProvider returns a Provider over store. A nil store is replaced by a
// freshly seeded one.
func NewProvider(store *Store, opts ...Option) *Provider {
	p := &Provider{
		store:      store,
		classifier: SubstringClassifier{},
		now:        time.Now,
		newID:      func() string { return "post-" + uuid.NewString() },
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.store == nil {
		p.store = NewSeededStore(p.now())
	}
	return p
}

// Store returns the backing store.
func (p *Provider) Store() *Store {
	return p.store
}

// Execute lets the provider stand in for a transport.
func (p *Provider) Execute(ctx context.Context, op graphql.Operation) (json.RawMessage, error) {
	return p.Resolve(ctx, op.Query, op.Variables)
}

// Resolve answers query from the store. Unrecognized operations yield an
// empty object; the only error is a missing post.
func (p *Provider) Resolve(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kind := p.classifier.Classify(query, variables)
	p.logger.Debug("mock resolve", slog.String("operation", kind.String()))

	switch kind {
	case OpListPosts:
		return marshal(map[string]any{"posts": p.store.List()})

	case OpGetPost:
		id := fmt.Sprint(variables["id"])
		post, ok := p.store.Get(id)
		if !ok {
			return nil, errors.NotFound("post " + id)
		}
		return marshal(map[string]any{"post": post})

	case OpCreatePost:
		in, err := decodeInput(variables["input"])
		if err != nil {
			return nil, err
		}
		post := p.create(in)
		return marshal(map[string]any{"createPost": post})

	case OpGetUser:
		id := fmt.Sprint(variables["id"])
		if u, ok := blog.UserByID(id); ok {
			return marshal(map[string]any{"user": u})
		}
		return marshal(map[string]any{"user": nil})
	}

	return json.RawMessage(`{}`), nil
}

func (p *Provider) create(in blog.CreatePostInput) blog.Post {
	author, ok := blog.UserByID(in.AuthorID)
	if !ok {
		author = blog.DefaultUser()
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	post := blog.Post{
		ID:          p.newID(),
		Title:       in.Title,
		Body:        in.Body,
		Author:      author,
		Tags:        tags,
		PublishedAt: p.now().UTC().Format(TimeFormat),
	}
	p.store.Add(post)
	p.logger.Info("mock post created", slog.String("id", post.ID), slog.String("author", author.ID))
	return post
}

// decodeInput accepts the input variable as a map or any JSON-encodable
// value such as blog.CreatePostInput.
func decodeInput(v any) (blog.CreatePostInput, error) {
	var in blog.CreatePostInput
	raw, err := json.Marshal(v)
	if err != nil {
		return in, errors.Wrap(errors.KindValidation, err, "invalid createPost input")
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		return in, errors.Wrap(errors.KindValidation, err, "invalid createPost input")
	}
	return in, nil
}

func marshal(v any) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}
