// Package cli implements the materialvault command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/materialvault/materialvault/internal/config"
	"github.com/materialvault/materialvault/internal/logging"
	"github.com/materialvault/materialvault/internal/manager"
	"github.com/materialvault/materialvault/internal/metastore"
	"github.com/materialvault/materialvault/internal/registry"
)

// cmdContext holds common resources for CLI commands
type cmdContext struct {
	Config  *config.Config
	Scanner *registry.Scanner
	Manager *manager.Manager
}

// Close tears the browser core down.
func (c *cmdContext) Close() {
	if c.Manager != nil {
		c.Manager.Deinitialize()
	}
	if c.Scanner != nil {
		c.Scanner.Stop()
	}
	logging.Sync()
}

// initContext loads config, starts the content scanner, and initializes the
// manager over it.
func initContext(ctx context.Context) *cmdContext {
	cfg, err := config.Load()
	if err != nil {
		exitError("%v", err)
	}

	if err := logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}); err != nil {
		exitError("failed to init logging: %v", err)
	}

	store, err := metastore.New(cfg.MetadataDir)
	if err != nil {
		exitError("failed to open metadata store: %v", err)
	}

	scanner := registry.NewScanner(cfg.ContentDir, cfg.ScanInterval)

	mgr := manager.New(manager.Options{
		Source:        scanner,
		Store:         store,
		Resolver:      scanner.Resolver(),
		SettingsFile:  cfg.SettingsFile,
		ThumbCacheMax: cfg.ThumbCacheMax,
		ThumbWorkers:  cfg.ThumbWorkers,
	})

	if err := scanner.Start(ctx); err != nil {
		exitError("failed to scan content dir: %v", err)
	}
	if err := mgr.Initialize(ctx); err != nil {
		scanner.Stop()
		exitError("failed to initialize: %v", err)
	}

	return &cmdContext{Config: cfg, Scanner: scanner, Manager: mgr}
}

var rootCmd = &cobra.Command{
	Use:   "materialvault",
	Short: "Material asset browser",
	Long: `materialvault indexes material assets under a content directory and
provides folder, category, and tag views over them, with per-asset
metadata sidecars and a thumbnail cache.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(metaCmd)
	rootCmd.AddCommand(watchCmd)
}

// exitError prints an error and exits
func exitError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}
