package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/tmorell/inkwell"
	"github.com/tmorell/inkwell/pkg/core"
	"github.com/tmorell/inkwell/pkg/render"
)

var (
	newTitle   string
	newTags    []string
	newSummary string
	newLayout  string
	newDraft   bool
)

// newCmd represents the new command
var newCmd = &cobra.Command{
	Use:   "new [id]",
	Short: "Create a new post",
	Long: `Create a post with the given ID (the filename without extension).
The post is dated today and committed to the vault history.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := args[0]
		title := newTitle
		if title == "" {
			title = id
		}

		service, err := inkwell.New(resolveVault(), vaultOptions(inkwell.WithMustExist(true))...)
		if err != nil {
			fatal("Failed to open vault", err)
		}

		now := time.Now()
		post := core.Post{
			ID:   id,
			Body: "",
			Matter: core.FrontMatter{
				Title:   title,
				Date:    core.Date{Time: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)},
				Tags:    newTags,
				Draft:   newDraft,
				Summary: newSummary,
				Layout:  newLayout,
			},
		}

		msg := inkwell.FormatChangeReason(inkwell.CommitTypeDocs, "posts", "add "+id, "")
		ctx := context.WithValue(context.Background(), core.ChangeReasonKey, msg)

		if err := service.SavePost(ctx, post); err != nil {
			fatal("Failed to create post", err)
		}

		fmt.Printf("Created post '%s'.\n", id)
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().StringVar(&newTitle, "title", "", "Post title (defaults to the ID)")
	newCmd.Flags().StringSliceVar(&newTags, "tags", nil, "Post tags")
	newCmd.Flags().StringVar(&newSummary, "summary", "", "Post summary")
	newCmd.Flags().StringVar(&newLayout, "layout", render.PostLayout, "Layout name")
	newCmd.Flags().BoolVar(&newDraft, "draft", false, "Mark the post as a draft")
}
