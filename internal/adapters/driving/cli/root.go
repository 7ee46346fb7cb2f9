// Package cli implements the command-line interface.
//
// Commands receive their services through SetServices before Execute
// runs; the composition root in main wires concrete adapters in.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/kitsumori/fanvault/internal/core/services"
	"github.com/kitsumori/fanvault/internal/logger"
)

// version is the build version, overridden at link time.
var version = "dev"

// Services injected by the composition root.
var (
	syncService   *services.SyncService
	sourceService *services.SourceService
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "fanvault",
	Short: "Incremental creator content archiver",
	Long: `fanvault synchronises paginated post feeds from creator fanclubs
into a local normalized archive, downloading each binary asset at most once.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetServices injects the application services used by the commands.
func SetServices(sync *services.SyncService, source *services.SourceService) {
	syncService = sync
	sourceService = source
}

// SetVersion sets the version string printed by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
