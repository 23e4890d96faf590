package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/litsift/litsift/internal/config"
	"github.com/litsift/litsift/internal/record"
	"github.com/litsift/litsift/internal/storage"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Initialize a litsift workspace",
	Long: `Initialize a litsift workspace in the given directory (default: current).

Creates .litsift/ with a default config, an empty records file, and the
cache directory.

Example:
  litsift init
  litsift init ~/reviews/asd-screening`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

// InitResult is the response for the init command.
type InitResult struct {
	Status      string `json:"status"`
	Root        string `json:"root"`
	ConfigPath  string `json:"config_path"`
	RecordsPath string `json:"records_path"`
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = config.ExpandPath(args[0])
	}

	root, err := filepath.Abs(dir)
	if err != nil {
		exitWithError(ExitError, "resolving path: %v", err)
	}

	if config.IsWorkspace(root) {
		exitWithError(ExitError, "%s is already a litsift workspace", root)
	}

	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		exitWithError(ExitError, "creating workspace directories: %v", err)
	}

	cfg := config.Default()
	if err := cfg.Save(root); err != nil {
		exitWithError(ExitError, "writing config: %v", err)
	}

	recordsPath := config.RecordsPath(root)
	if err := storage.WriteAll(recordsPath, []record.Record{}); err != nil {
		exitWithError(ExitError, "creating records file: %v", err)
	}

	result := InitResult{
		Status:      "initialized",
		Root:        root,
		ConfigPath:  config.ConfigPath(root),
		RecordsPath: recordsPath,
	}

	if humanOutput {
		fmt.Printf("Initialized litsift workspace in %s\n", root)
		fmt.Printf("  Config:  %s\n", result.ConfigPath)
		fmt.Printf("  Records: %s\n", result.RecordsPath)
	} else {
		outputJSON(result)
	}

	return nil
}
