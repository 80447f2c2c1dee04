package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/tmorell/inkwell"
)

var (
	verbose   bool
	gitless   bool
	vaultFlag string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "inkwell",
	Short: "A blog engine for Markdown/MDX posts backed by Git",
	Long: `Inkwell treats a directory of Markdown and MDX posts as a database.
Frontmatter is validated against the blog schema, changes are committed to
Git, and a static site is rendered from the published posts.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&gitless, "gitless", false, "Operate without Git versioning")
	rootCmd.PersistentFlags().StringVar(&vaultFlag, "vault", "", "Vault path (default: nearest vault root above the working directory)")
}

// resolveVault picks the vault directory: the --vault flag when given,
// otherwise the nearest root indicator above the working directory,
// otherwise the working directory itself.
func resolveVault() string {
	if vaultFlag != "" {
		return vaultFlag
	}
	wd, err := os.Getwd()
	if err != nil {
		fatal("Failed to get working directory", err)
	}
	if root, err := inkwell.FindVaultRoot(wd); err == nil {
		return root
	}
	return wd
}

// vaultOptions assembles the common open options from the global flags.
func vaultOptions(extra ...inkwell.Option) []inkwell.Option {
	opts := []inkwell.Option{
		inkwell.WithLogger(slog.Default()),
	}
	if gitless {
		opts = append(opts, inkwell.WithVersioning(false))
	}
	return append(opts, extra...)
}
