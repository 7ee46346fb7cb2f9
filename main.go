// fanvault is an incremental archiver for creator-support feeds: it
// walks paginated post listings per creator, normalizes every record
// into a local store and downloads each binary asset at most once.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	configfile "github.com/kitsumori/fanvault/internal/adapters/driven/config/file"
	"github.com/kitsumori/fanvault/internal/adapters/driven/files"
	"github.com/kitsumori/fanvault/internal/adapters/driven/storage/sqlite"
	"github.com/kitsumori/fanvault/internal/adapters/driving/cli"
	"github.com/kitsumori/fanvault/internal/connectors/fantia"
	"github.com/kitsumori/fanvault/internal/core/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := configfile.Load("")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		dir, err := configfile.DefaultDir()
		if err != nil {
			return err
		}
		dataDir = filepath.Join(dir, "data")
	}

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	var clientOpts []fantia.ClientOption
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, fantia.WithBaseURL(cfg.BaseURL))
	}
	if cfg.UserAgent != "" {
		clientOpts = append(clientOpts, fantia.WithUserAgent(cfg.UserAgent))
	}
	client := fantia.NewClient(cfg.SessionID, clientOpts...)

	importer := files.NewImporter(dataDir, store.FileStore())
	normaliser := fantia.NewNormaliser(client,
		store.PostStore(), store.TagStore(), store.FileStore(), importer)
	connector := fantia.NewConnector(client, normaliser)

	cli.SetServices(
		services.NewSyncService(store.SubscriptionStore(), connector),
		services.NewSourceService(connector),
	)

	return cli.Execute()
}
