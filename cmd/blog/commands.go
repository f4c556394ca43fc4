package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saturnines/blogql/pkg/auth"
	"github.com/saturnines/blogql/pkg/blog"
	"github.com/saturnines/blogql/pkg/proxy"
)

func postsCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "posts",
		Short: "List posts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			posts, err := a.service.ListPosts(cmd.Context())
			if err != nil {
				return err
			}
			if opts.JSON {
				return writeJSON(cmd.OutOrStdout(), posts)
			}
			renderPostList(cmd.OutOrStdout(), posts, a.client.MockMode())
			return nil
		},
	}
}

func postCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "post <id>",
		Short: "Show one post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			post, err := a.service.GetPost(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if opts.JSON {
				return writeJSON(cmd.OutOrStdout(), post)
			}
			renderPost(cmd.OutOrStdout(), post)
			return nil
		},
	}
}

func userCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "user <id>",
		Short: "Show one author",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			user, err := a.service.GetUser(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if user == nil {
				return fmt.Errorf("user %s not found", args[0])
			}
			if opts.JSON {
				return writeJSON(cmd.OutOrStdout(), user)
			}
			renderUser(cmd.OutOrStdout(), user)
			return nil
		},
	}
}

func createCmd(opts *Options) *cobra.Command {
	var (
		title    string
		body     string
		author   string
		authorID string
		tags     string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			if authorID == "" {
				if authorID, err = a.service.ResolveAuthor(author); err != nil {
					return err
				}
			}
			post, err := a.service.CreatePost(cmd.Context(), blog.CreatePostInput{
				Title:    strings.TrimSpace(title),
				Body:     strings.TrimSpace(body),
				Tags:     blog.ParseTags(tags),
				AuthorID: authorID,
			})
			if err != nil {
				return err
			}
			if opts.JSON {
				return writeJSON(cmd.OutOrStdout(), post)
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("created post "+post.ID))
			renderPost(cmd.OutOrStdout(), post)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Post title")
	cmd.Flags().StringVarP(&body, "body", "b", "", "Post body")
	cmd.Flags().StringVarP(&author, "author", "a", blog.DefaultUser().Name, "Author display name")
	cmd.Flags().StringVar(&authorID, "author-id", "", "Author id, overrides --author")
	cmd.Flags().StringVar(&tags, "tags", "", "Comma-separated tags")
	return cmd
}

func authorsCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "authors",
		Short: "List selectable authors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.JSON {
				return writeJSON(cmd.OutOrStdout(), blog.Users)
			}
			for _, u := range blog.Users {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", dimStyle.Render(u.ID), u.Name)
			}
			return nil
		},
	}
}

func pingCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check the connection to the GraphQL server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			result := a.client.Ping(cmd.Context())
			if opts.JSON {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			if !result.Success {
				fmt.Fprintln(cmd.OutOrStdout(), errorStyle.Render(result.Message))
				return fmt.Errorf("ping failed")
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(result.Message))
			return nil
		},
	}
}

func proxyCmd(opts *Options) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "proxy",
		Short: "Run the same-origin GraphQL relay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			logger := newLogger(opts.Debug)
			if addr == "" {
				addr = cfg.Proxy.Addr
			}

			handler, err := auth.NewAuthRegistry().Create(cfg.Auth)
			if err != nil {
				return err
			}
			relay := proxy.NewRelay(cfg.Endpoint,
				proxy.WithHTTPDoer(&http.Client{}),
				proxy.WithAuthHandler(handler),
				proxy.WithHeaders(cfg.Headers),
				proxy.WithTimeout(cfg.RequestTimeout()),
				proxy.WithLogger(logger),
			)
			fmt.Fprintf(cmd.ErrOrStderr(), "relaying %s%s -> %s\n", addr, cfg.Proxy.Path, cfg.Endpoint)
			return proxy.NewServer(addr, cfg.Proxy.Path, relay, logger).Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}
