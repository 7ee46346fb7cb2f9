package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var subCmd = &cobra.Command{
	Use:   "sub",
	Short: "Manage creator subscriptions",
}

var subAddCmd = &cobra.Command{
	Use:   "add <name> <fanclub-url>",
	Short: "Subscribe to a creator",
	Args:  cobra.ExactArgs(2),
	RunE:  runSubAdd,
}

var subListCmd = &cobra.Command{
	Use:   "list",
	Short: "List subscriptions",
	Args:  cobra.NoArgs,
	RunE:  runSubList,
}

func init() {
	subCmd.AddCommand(subAddCmd)
	subCmd.AddCommand(subListCmd)
	rootCmd.AddCommand(subCmd)
}

func runSubAdd(cmd *cobra.Command, args []string) error {
	if syncService == nil {
		return errors.New("sync service not configured")
	}

	name, input := args[0], args[1]
	sub, err := syncService.Subscribe(context.Background(), name, input)
	if err != nil {
		return fmt.Errorf("subscribing: %w", err)
	}

	cmd.Printf("Subscribed %q to creator %d.\n", sub.Name, sub.Options.CreatorID)
	return nil
}

func runSubList(cmd *cobra.Command, _ []string) error {
	if syncService == nil {
		return errors.New("sync service not configured")
	}

	subs, err := syncService.List(context.Background())
	if err != nil {
		return fmt.Errorf("listing subscriptions: %w", err)
	}

	if len(subs) == 0 {
		cmd.Println("No subscriptions.")
		return nil
	}

	for _, sub := range subs {
		cmd.Printf("%-20s creator %d\n", sub.Name, sub.Options.CreatorID)
	}
	return nil
}
