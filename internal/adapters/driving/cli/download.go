package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	downloadPreview bool
	downloadLimit   int
)

var downloadCmd = &cobra.Command{
	Use:   "download <url|id>",
	Short: "Download a single post, or preview a creator's feed",
	Long: `Downloads one post by URL or numeric id, normalizing it into the local
archive and transferring its assets.

Given a fanclub URL instead, lists the creator's recent posts in preview
mode: thumbnails only, nothing added to any subscription feed.`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().BoolVar(&downloadPreview, "preview", false, "transfer thumbnails only")
	downloadCmd.Flags().IntVar(&downloadLimit, "limit", 10, "record limit for creator previews")
	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	if sourceService == nil || syncService == nil {
		return errors.New("services not configured")
	}

	ctx := context.Background()
	input := args[0]

	res, err := sourceService.Resolve(input)
	if err != nil {
		return err
	}

	if res.PostID == 0 && res.CreatorID != 0 {
		posts, err := syncService.Search(ctx, res.CreatorID, downloadLimit)
		if err != nil {
			return fmt.Errorf("previewing creator %d: %w", res.CreatorID, err)
		}
		for _, post := range posts {
			cmd.Printf("%s  %s\n", post.OriginalID, post.Title)
		}
		cmd.Printf("%d posts\n", len(posts))
		return nil
	}

	post, err := sourceService.Download(ctx, input, downloadPreview)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", input, err)
	}
	if post == nil {
		cmd.Println("Nothing to download.")
		return nil
	}

	cmd.Printf("Downloaded %s: %s\n", post.OriginalID, post.Title)
	return nil
}
