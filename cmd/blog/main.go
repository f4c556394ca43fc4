package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/saturnines/blogql/pkg/blog"
	"github.com/saturnines/blogql/pkg/config"
	"github.com/saturnines/blogql/pkg/core"
	"github.com/saturnines/blogql/pkg/errors"
)

var version = "dev"

// Options holds the global flags.
type Options struct {
	ConfigPath string
	EnvFile    string
	Debug      bool
	JSON       bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(ctx, newRootCmd(),
		fang.WithVersion(version),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			_, _ = fmt.Fprintln(w, errorStyle.Render(errors.Summary(err)))
		}),
	); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts Options

	rootCmd := &cobra.Command{
		Use:   "blog",
		Short: "Blog client for the post GraphQL server",
		Long: `blog reads and creates posts on a GraphQL blog server.
In development it serves mock data unless told otherwise, and it can run
the same-origin relay that browsers use to reach the server.`,
		Example: `  # List posts from mock data
  blog posts

  # Talk to the real server
  BLOG_USE_MOCK=false blog posts

  # Create a post
  blog create --title "Hello" --body "First post" --author 佐藤太郎 --tags go,graphql

  # Run the relay on :3000
  blog proxy`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "Dotenv file loaded before the environment is read")
	rootCmd.PersistentFlags().BoolVarP(&opts.Debug, "debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&opts.JSON, "json", false, "Print results as JSON")

	rootCmd.AddCommand(
		postsCmd(&opts),
		postCmd(&opts),
		userCmd(&opts),
		createCmd(&opts),
		authorsCmd(&opts),
		pingCmd(&opts),
		proxyCmd(&opts),
	)
	return rootCmd
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadConfig(opts *Options) (*config.Config, error) {
	if err := config.LoadDotEnv(opts.EnvFile); err != nil {
		return nil, err
	}
	cfg, err := config.NewDefaultLoader().Load(opts.ConfigPath)
	if err != nil {
		return nil, errors.Wrap(errors.KindConfiguration, err, err.Error())
	}
	return cfg, nil
}

// app bundles what a command needs to talk to the server.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	client  *core.Client
	service *blog.Service
}

func newApp(opts *Options) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	logger := newLogger(opts.Debug)
	client, err := core.NewClient(cfg, core.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:     cfg,
		logger:  logger,
		client:  client,
		service: blog.NewService(client, logger),
	}, nil
}
