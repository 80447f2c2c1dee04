package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/tmorell/inkwell"
	"github.com/tmorell/inkwell/pkg/site"
)

var (
	buildOutput string
	buildDrafts bool
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the static site",
	Long: `Render every published post through its layout into the output
directory, along with the home page and tag pages. Drafts are skipped;
a post with invalid frontmatter fails the build.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		vault := resolveVault()

		cfg, err := site.LoadConfig(vault)
		if err != nil {
			fatal("Failed to load site config", err)
		}
		if buildOutput != "" {
			cfg.Output = buildOutput
		}

		service, err := inkwell.New(vault, vaultOptions(inkwell.WithMustExist(true))...)
		if err != nil {
			fatal("Failed to open vault", err)
		}

		builder := site.NewBuilder(service, cfg, vault, slog.Default())
		builder.IncludeDrafts = buildDrafts
		report, err := builder.Build(context.Background())
		if err != nil {
			fatal("Build failed", err)
		}

		verb := "skipped"
		if buildDrafts {
			verb = "included"
		}
		fmt.Printf("Built %d pages (%d posts, %d drafts %s) into %s in %s.\n",
			report.Pages, report.Posts, report.Drafts, verb, report.Output, report.Duration.Round(time.Millisecond))
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "Output directory (overrides site.yaml)")
	buildCmd.Flags().BoolVar(&buildDrafts, "drafts", false, "Render draft posts too (kept out of listings)")
}
