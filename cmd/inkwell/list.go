package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tmorell/inkwell"
	"github.com/tmorell/inkwell/pkg/core"
)

var (
	listJSON   bool
	listTag    string
	listDrafts bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List posts in the vault",
	Long: `List published posts, newest first. Drafts are hidden unless
--drafts is given.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		service, err := inkwell.New(resolveVault(), vaultOptions(inkwell.WithMustExist(true))...)
		if err != nil {
			fatal("Failed to open vault", err)
		}

		ctx := context.Background()
		var posts []core.Post
		switch {
		case listTag != "":
			posts, err = service.ListByTag(ctx, listTag)
		case listDrafts:
			posts, err = service.ListPosts(ctx)
		default:
			posts, err = service.ListPublished(ctx)
		}
		if err != nil {
			fatal("Failed to list posts", err)
		}

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(posts); err != nil {
				fatal("Failed to encode JSON", err)
			}
			return
		}

		for _, post := range posts {
			marker := " "
			if !post.Published() {
				marker = "d"
			}
			fmt.Printf("%s %s  %s  %s\n", marker, post.Matter.Date, post.ID, post.Matter.Title)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVar(&listTag, "tag", "", "Filter posts by tag")
	listCmd.Flags().BoolVar(&listDrafts, "drafts", false, "Include drafts")
}
