package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tmorell/inkwell"
	"github.com/tmorell/inkwell/pkg/site"
)

var initTitle string

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize an inkwell vault",
	Long: `Initialize a new vault in the current directory (or --vault):
creates the directory, a git repository unless --gitless, and a starter
site.yaml manifest.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		path := vaultFlag
		if path == "" {
			wd, err := os.Getwd()
			if err != nil {
				fatal("Failed to get working directory", err)
			}
			path = wd
		}

		if _, err := inkwell.Init(path, vaultOptions(inkwell.WithAutoInit(true))...); err != nil {
			fatal("Failed to initialize vault", err)
		}

		manifest := filepath.Join(path, site.ConfigFile)
		if _, err := os.Stat(manifest); os.IsNotExist(err) {
			content := fmt.Sprintf("title: %s\noutput: public\n", initTitle)
			if err := os.WriteFile(manifest, []byte(content), 0o644); err != nil {
				fatal("Failed to write site manifest", err)
			}
		}

		fmt.Println("Initialized inkwell vault in", path)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initTitle, "title", "My Blog", "Site title written to site.yaml")
}
