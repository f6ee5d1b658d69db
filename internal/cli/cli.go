// Package cli implements the irvaudit command-line interface.
//
// This package provides commands for generating risk-limiting-audit
// assertions from ballot files, visualizing the pruning trees behind an
// assertion set, browsing solutions interactively, managing the solve cache
// and record archive, and running the HTTP solve service. The CLI is built
// using cobra and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - solve: Generate assertions for a contest from a problem JSON file
//   - tree: Render the pruning trees of a solved contest as DOT or SVG
//   - browse: Interactively page through a solution's assertions
//   - store: Inspect and export the archive of past solves
//   - cache: Manage the solve result cache
//   - serve: Run the HTTP solve service
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/irvaudit/pkg/buildinfo"
	"github.com/matzehuels/irvaudit/pkg/cache"
	"github.com/matzehuels/irvaudit/pkg/pipeline"
	"github.com/matzehuels/irvaudit/pkg/store"
)

// appName is the application name used for directories and display.
const appName = "irvaudit"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "irvaudit generates risk-limiting-audit assertions for IRV contests",
		Long:         `irvaudit takes the ranked ballots of an instant-runoff contest and produces a set of pairwise assertions that, once audited, confirm the reported winner without a full hand count.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.solveCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.submitCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) *pipeline.Runner {
	return pipeline.NewRunner(newCache(noCache), nil, c.Logger)
}

func newCache(noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return cache.NewNullCache()
	}
	return fc
}

// newFileStore opens the record archive, defaulting to the standard
// directory when dir is empty.
func newFileStore(dir string) (*store.FileStore, error) {
	return store.NewFileStore(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/irvaudit/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
