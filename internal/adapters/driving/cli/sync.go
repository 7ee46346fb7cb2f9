package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kitsumori/fanvault/internal/core/domain"
)

var syncCmd = &cobra.Command{
	Use:   "sync <name>",
	Short: "Fetch new posts for a subscription",
	Long: `Walks the subscription's feed toward newer posts until it is caught up,
normalizing each record and downloading its assets. A subscription that
has never fetched anything starts by walking backward from the most
recent post instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runSyncCmd,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSyncCmd(cmd *cobra.Command, args []string) error {
	if syncService == nil {
		return errors.New("sync service not configured")
	}

	name := args[0]
	cmd.Printf("Synchronising %q...\n", name)

	posts, err := syncService.Fetch(context.Background(), name, domain.DirectionNewer, 0)
	if err != nil {
		return fmt.Errorf("sync failed after %d posts: %w", len(posts), err)
	}

	cmd.Printf("Synchronised %q: %d posts.\n", name, len(posts))
	return nil
}
