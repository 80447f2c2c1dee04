package inkwell_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/tmorell/inkwell"
	"github.com/tmorell/inkwell/pkg/core"
)

// Example_basic shows how to open a vault, save a post, and read it back.
func Example_basic() {
	tmpDir, err := os.MkdirTemp("", "inkwell-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	vault, err := inkwell.New(tmpDir, inkwell.WithAutoInit(true), inkwell.WithVersioning(false))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	date, err := core.ParseDate("2024-06-15")
	if err != nil {
		log.Fatal(err)
	}
	err = vault.SavePost(ctx, core.Post{
		ID:   "hello-world",
		Body: "My first post.",
		Matter: core.FrontMatter{
			Title:  "Hello World",
			Date:   date,
			Tags:   []string{"meta"},
			Layout: "PostLayout",
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	post, err := vault.GetPost(ctx, "hello-world")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Found post: %s (%s)\n", post.ID, post.Matter.Title)
	// Output:
	// Found post: hello-world (Hello World)
}

// ExampleNewTyped shows the generic wrapper for custom frontmatter schemas.
func ExampleNewTyped() {
	tmpDir, err := os.MkdirTemp("", "inkwell-typed-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	repo, err := inkwell.Init(filepath.Join(tmpDir, "vault"),
		inkwell.WithAutoInit(true), inkwell.WithVersioning(false))
	if err != nil {
		log.Fatal(err)
	}

	type Article struct {
		Title  string `json:"title"`
		Series string `json:"series"`
	}

	articles := inkwell.NewTyped[Article](repo)
	ctx := context.Background()

	err = articles.Save(ctx, &inkwell.DocumentModel[Article]{
		ID:      "solid/srp",
		Content: "One reason to change.",
		Data: Article{
			Title:  "The Single Responsibility Principle",
			Series: "solid",
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	doc, err := articles.Get(ctx, "solid/srp")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Series: %s\n", doc.Data.Series)
	// Output:
	// Series: solid
}
