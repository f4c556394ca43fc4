package main

import (
	"context"
	"fmt"
	"log"

	"github.com/saturnines/blogql/pkg/blog"
	"github.com/saturnines/blogql/pkg/config"
	"github.com/saturnines/blogql/pkg/core"
)

func main() {
	if err := config.LoadDotEnv("demo/blog/.env"); err != nil {
		log.Fatal(err)
	}

	// Load the YAML config
	cfg, err := config.NewDefaultLoader().Load("demo/blog/blog.yaml")
	if err != nil {
		log.Fatal(err)
	}

	client, err := core.NewClient(cfg)
	if err != nil {
		log.Fatal(err)
	}
	service := blog.NewService(client, nil)

	ctx := context.Background()
	posts, err := service.ListPosts(ctx)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Fetched %d posts (mock=%v)\n", len(posts), client.MockMode())
	for _, p := range posts {
		fmt.Printf("%s: %s by %s %v\n", p.ID, p.Title, p.Author.Name, p.Tags)
	}

	if len(posts) == 0 {
		return
	}
	post, err := service.GetPost(ctx, posts[0].ID)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("\n%s\n\n%s\n", post.Title, post.Body)
}
