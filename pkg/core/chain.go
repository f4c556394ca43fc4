package core

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/saturnines/blogql/pkg/errors"
	"github.com/saturnines/blogql/pkg/transport/graphql"
)

// chainState is shared by the strategies of one request.
type chainState struct {
	op      graphql.Operation
	retries int
	last    error
	tried   []string
	// stop ends the chain and raises last as is.
	stop bool
}

func (s *chainState) triedRelay() bool {
	for _, name := range s.tried {
		if name == "relay" {
			return true
		}
	}
	return false
}

// strategy is one step of the degrade chain.
type strategy struct {
	name    string
	applies func(*chainState) bool
	run     func(context.Context, *chainState) (json.RawMessage, error)
}

func (c *Client) strategies() []strategy {
	return []strategy{
		{name: "direct", applies: func(*chainState) bool { return true }, run: c.runDirect},
		{name: "relay", applies: c.relayApplies, run: c.runRelay},
		{name: "mock", applies: c.mockApplies, run: c.runMock},
	}
}

// runDirect makes up to retries+1 attempts against the external endpoint.
func (c *Client) runDirect(ctx context.Context, st *chainState) (json.RawMessage, error) {
	b := c.policy.newBackOff()
	var lastErr error
	for attempt := 0; attempt <= st.retries; attempt++ {
		data, err := c.attempt(ctx, st.op, attempt)
		if err == nil {
			if attempt > 0 {
				c.logger.Info("graphql request succeeded after retry", slog.Int("attempt", attempt+1))
			}
			return data, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			st.stop = true
			return nil, err
		}
		if !Retryable(err) {
			// Authentication failures may still be served by the mock.
			st.stop = !errors.IsKind(err, errors.KindAuthentication)
			return nil, err
		}
		if attempt == st.retries {
			break
		}

		delay := c.policy.next(b)
		c.logger.Warn("graphql request failed, retrying",
			slog.Int("attempt", attempt+1),
			slog.Int("of", st.retries+1),
			slog.Duration("delay", delay),
			slog.String("kind", errors.KindOf(err).String()),
			slog.Any("error", err),
		)
		if err := c.sleep(ctx, delay); err != nil {
			st.stop = true
			return nil, err
		}
	}
	return nil, lastErr
}

// attempt runs one direct try. The first try uses the structured client
// unless fetch is preferred, falling back to fetch within the same try;
// later tries always use fetch.
func (c *Client) attempt(ctx context.Context, op graphql.Operation, attempt int) (json.RawMessage, error) {
	if attempt == 0 && !c.fetchDirectly && c.library != nil {
		data, err := c.library.Execute(ctx, op)
		if err == nil {
			return data, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		c.logger.Warn("library transport failed, falling back to fetch", slog.Any("error", err))
	}
	return c.fetch.Execute(ctx, op)
}

func (c *Client) relayApplies(st *chainState) bool {
	return c.relay != nil && NetworkShaped(st.last)
}

func (c *Client) runRelay(ctx context.Context, st *chainState) (json.RawMessage, error) {
	c.logger.Info("network failure, retrying through the relay", slog.Any("error", st.last))
	data, err := c.relay.Execute(ctx, st.op)
	if err != nil {
		if ctx.Err() != nil {
			st.stop = true
		}
		return nil, err
	}
	return data, nil
}

func (c *Client) mockApplies(st *chainState) bool {
	if !c.mockFallback {
		return false
	}
	return st.triedRelay() || errors.IsKind(st.last, errors.KindAuthentication)
}

func (c *Client) runMock(ctx context.Context, st *chainState) (json.RawMessage, error) {
	c.logger.Info("serving mock data",
		slog.String("after", st.tried[len(st.tried)-1]),
		slog.String("kind", errors.KindOf(st.last).String()),
	)
	data, err := c.mock.Execute(ctx, st.op)
	if err != nil {
		st.stop = true
	}
	return data, err
}

// finalError shapes the error raised when the chain is exhausted.
func (c *Client) finalError(st *chainState) error {
	err := st.last
	switch {
	case err == nil:
		return errors.New(errors.KindUnknown, "request failed")
	case st.stop || st.triedRelay():
		return err
	case errors.IsKind(err, errors.KindAuthentication):
		return errors.Authentication("")
	case NetworkShaped(err) && !errors.IsKind(err, errors.KindNetwork):
		return errors.Network(c.endpoint, err)
	}
	return err
}
