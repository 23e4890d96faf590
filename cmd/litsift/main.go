// Package main provides the litsift CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/litsift/litsift/internal/config"
	"github.com/litsift/litsift/internal/logging"
	"github.com/litsift/litsift/internal/record"
	"github.com/litsift/litsift/internal/storage"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// logLevel is the --log-level flag value
var logLevel string

// logger is the process logger, set up before any command runs
var logger = zerolog.Nop()

func main() {
	if err := rootCmd.Execute(); err != nil {
		if silent, ok := err.(silentExitError); ok {
			os.Exit(silent.code)
		}
		// Print the error since we have SilenceErrors: true
		// This ensures Cobra errors (like missing required flags) are visible
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "litsift",
	Short: "Literature screening pipeline CLI",
	Long: `litsift ingests literature-search exports, deduplicates them, applies
screening rules, and reports PRISMA-style selection counts.

Core features:
  - CSV/JSONL harvest import with field normalization
  - Exact (DOI/PMID) and fuzzy (title) deduplication
  - Rule-based screening with per-rule exclusion counts
  - Full-text search over the corpus
  - PDF linking and opening

Data is stored in git-versionable JSONL with ephemeral SQLite for queries.
All commands output JSON by default for scripting and agent integration.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cwd, err := os.Getwd(); err == nil {
			if err := config.LoadDotEnv(cwd); err != nil {
				return err
			}
		}

		level := logLevel
		if level == "" {
			env, err := config.LoadEnv()
			if err != nil {
				return err
			}
			level = env.LogLevel
		}

		lg, err := logging.New(level, humanOutput)
		if err != nil {
			return err
		}
		logger = lg
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.Version = Version
}

// mustFindWorkspace finds and validates the workspace, exits on error.
// Walks up from the working directory first, then falls back to the
// workspace_path in the global config. Returns the workspace root path.
func mustFindWorkspace() string {
	cwd, err := os.Getwd()
	if err != nil {
		os.Exit(outputError(ExitError, "getting current directory: %v", err))
	}

	if root, err := config.FindWorkspace(cwd); err == nil {
		return root
	}

	root, err := config.ValidateWorkspacePath()
	if err != nil {
		fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
		os.Exit(ExitConfigError)
	}
	return root
}

// mustOpenDatabase opens the SQLite cache, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase(workspaceRoot string) *storage.DB {
	dbPath := config.DBPath(workspaceRoot)
	db, err := storage.OpenDB(dbPath)
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}

// mustLoadConfig loads the effective configuration (file plus environment
// overrides), exits on error.
func mustLoadConfig(workspaceRoot string) *config.Config {
	cfg, err := config.Effective(workspaceRoot)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "invalid config: %v", err)
	}
	return cfg
}

// mustReadRecords loads the canonical corpus, exits on error.
func mustReadRecords(workspaceRoot string) []record.Record {
	records, err := storage.ReadAll(config.RecordsPath(workspaceRoot))
	if err != nil {
		exitWithError(ExitDataError, "reading records: %v", err)
	}
	return records
}
