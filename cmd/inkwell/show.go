package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tmorell/inkwell"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a post",
	Long:  `Print a post's body by its ID, or the full post as JSON with --json.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := args[0]

		service, err := inkwell.New(resolveVault(), vaultOptions(inkwell.WithMustExist(true))...)
		if err != nil {
			fatal("Failed to open vault", err)
		}

		post, err := service.GetPost(context.Background(), id)
		if err != nil {
			fatal("Failed to read post", err)
		}

		if showJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(post); err != nil {
				fatal("Failed to encode JSON", err)
			}
			return
		}

		fmt.Print(post.Body)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output in JSON format")
}
