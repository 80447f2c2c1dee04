// Command bench measures listing performance of the filesystem adapter:
// a cold run that parses every post, then a warm run served from the
// persistent metadata index.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/tmorell/inkwell"
)

func main() {
	count := flag.Int("count", 1000, "Number of posts to generate")
	keep := flag.Bool("keep", false, "Keep the benchmark vault after running")
	flag.Parse()

	benchDir, err := os.MkdirTemp("", "inkwell_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	fmt.Printf("Generating %d posts in %s...\n", *count, benchDir)
	startGen := time.Now()

	// Direct file writes to simulate an existing vault.
	date := time.Now().Format("2006-01-02")
	for i := 0; i < *count; i++ {
		content := fmt.Sprintf("---\ntitle: Post %d\ndate: %s\ntags: [benchmark]\nlayout: PostLayout\n---\n# Post %d\nBody text.\n", i, date, i)
		filename := filepath.Join(benchDir, fmt.Sprintf("post_%d.md", i))
		if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
			panic(err)
		}
	}
	fmt.Printf("Generation took: %v\n", time.Since(startGen))

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	// Gitless to measure parsing/IO without git overhead.
	service, err := inkwell.New(benchDir,
		inkwell.WithLogger(logger),
		inkwell.WithAutoInit(true),
		inkwell.WithVersioning(false),
	)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()

	fmt.Println("Running List (Run 1 - Cold)...")
	startList := time.Now()
	posts, err := service.ListPosts(ctx)
	if err != nil {
		panic(err)
	}
	cold := time.Since(startList)
	fmt.Printf("Run 1 Result: %v (Items: %d)\n", cold, len(posts))

	// Re-instantiate to simulate a fresh CLI run hitting the on-disk index.
	service2, err := inkwell.New(benchDir,
		inkwell.WithLogger(logger),
		inkwell.WithAutoInit(true),
		inkwell.WithVersioning(false),
	)
	if err != nil {
		panic(err)
	}

	fmt.Println("Running List (Run 2 - Warm)...")
	startList2 := time.Now()
	posts2, err := service2.ListPosts(ctx)
	if err != nil {
		panic(err)
	}
	warm := time.Since(startList2)
	fmt.Printf("Run 2 Result: %v (Items: %d)\n", warm, len(posts2))

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark Result (%d posts):\n", *count)
	fmt.Printf("  Cold: %v\n", cold)
	fmt.Printf("  Warm: %v\n", warm)
	fmt.Printf("--------------------------------------------------\n")
}
