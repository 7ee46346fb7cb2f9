package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kitsumori/fanvault/internal/core/domain"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <name> <n>",
	Short: "Backfill older posts for a subscription",
	Long: `Walks the subscription's feed toward older posts, fetching up to n
records. Progress is committed after every record, so an interrupted
backfill resumes where it stopped.`,
	Args: cobra.ExactArgs(2),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	if syncService == nil {
		return errors.New("sync service not configured")
	}

	name := args[0]
	limit, err := strconv.Atoi(args[1])
	if err != nil || limit < 1 {
		return fmt.Errorf("invalid record count %q", args[1])
	}

	cmd.Printf("Backfilling %q, up to %d records...\n", name, limit)

	posts, err := syncService.Fetch(context.Background(), name, domain.DirectionOlder, limit)
	if err != nil {
		return fmt.Errorf("backfill failed after %d posts: %w", len(posts), err)
	}

	cmd.Printf("Backfilled %q: %d posts.\n", name, len(posts))
	return nil
}
