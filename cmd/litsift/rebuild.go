package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/litsift/litsift/internal/config"
)

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the query layer from source data",
	Long: `Rebuild the SQLite query database from the JSONL records file.

Use this after import, dedupe, or filter runs, after pulling changes from
git, or if the database becomes corrupted.`,
	RunE: runRebuild,
}

// RebuildResult is the response for the rebuild command.
type RebuildResult struct {
	Status  string `json:"status"`
	Records int    `json:"records"`
}

func runRebuild(cmd *cobra.Command, args []string) error {
	workspaceRoot := mustFindWorkspace()

	// Ensure cache directory exists
	cacheDir := config.CachePath(workspaceRoot)
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}

	db := mustOpenDatabase(workspaceRoot)
	defer db.Close()

	recordsPath := config.RecordsPath(workspaceRoot)
	count, err := db.RebuildFromJSONL(recordsPath)
	if err != nil {
		exitWithError(ExitDataError, "rebuilding records database: %v", err)
	}

	if humanOutput {
		fmt.Printf("Rebuilt query database with %d records\n", count)
	} else {
		outputJSON(RebuildResult{
			Status:  "rebuilt",
			Records: count,
		})
	}

	return nil
}
