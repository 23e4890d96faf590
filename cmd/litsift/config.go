package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/litsift/litsift/internal/config"
	"github.com/litsift/litsift/internal/dedupe"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set configuration values.

Usage:
  litsift config                      # Show all config
  litsift config threshold            # Get specific value
  litsift config threshold 0.9        # Set value
  litsift config pdf-reader zathura   # Set PDF reader

Keys:
  threshold       Minimum title similarity for a fuzzy merge (0 < t < 1)
  year-tolerance  Maximum year distance for a fuzzy merge
  keys            Exact-match identifier kinds (comma-separated: doi,pmid)
  workers         Similarity-scoring parallelism (0 = all CPUs)
  default-source  Source tag for imports that carry none
  pdf-reader      PDF reader preference (system, skim, zathura, evince, okular)`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	workspaceRoot := mustFindWorkspace()
	cfg, err := config.Load(workspaceRoot)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	// No args: show all config
	if len(args) == 0 {
		if humanOutput {
			fmt.Printf("threshold:       %g\n", cfg.Threshold)
			fmt.Printf("year-tolerance:  %d\n", cfg.YearTolerance)
			fmt.Printf("keys:            %s\n", strings.Join(cfg.Keys, ","))
			fmt.Printf("workers:         %d\n", cfg.Workers)
			fmt.Printf("default-source:  %s\n", cfg.DefaultSource)
			fmt.Printf("pdf-reader:      %s\n", cfg.PDFReader)
		} else {
			outputJSON(cfg)
		}
		return nil
	}

	// Convert key format (year_tolerance -> year-tolerance)
	key := args[0]
	normalizedKey := normalizeKey(key)

	// One arg: get specific value
	if len(args) == 1 {
		switch normalizedKey {
		case "threshold":
			printConfigValue("threshold", fmt.Sprintf("%g", cfg.Threshold))
		case "year-tolerance":
			printConfigValue("year_tolerance", strconv.Itoa(cfg.YearTolerance))
		case "keys":
			printConfigValue("keys", strings.Join(cfg.Keys, ","))
		case "workers":
			printConfigValue("workers", strconv.Itoa(cfg.Workers))
		case "default-source":
			printConfigValue("default_source", cfg.DefaultSource)
		case "pdf-reader":
			printConfigValue("pdf_reader", cfg.PDFReader)
		default:
			exitWithError(ExitError, "unknown configuration key: %s", key)
		}
		return nil
	}

	// Two args: set value
	value := args[1]

	switch normalizedKey {
	case "threshold":
		t, err := strconv.ParseFloat(value, 64)
		if err != nil {
			exitWithError(ExitError, "invalid threshold %q: %v", value, err)
		}
		cfg.Threshold = t

	case "year-tolerance":
		n, err := strconv.Atoi(value)
		if err != nil {
			exitWithError(ExitError, "invalid year tolerance %q: %v", value, err)
		}
		cfg.YearTolerance = n

	case "keys":
		cfg.Keys = splitCommaList(value)
		if len(cfg.Keys) == 0 {
			cfg.Keys = dedupe.DefaultKeys()
		}

	case "workers":
		n, err := strconv.Atoi(value)
		if err != nil {
			exitWithError(ExitError, "invalid workers %q: %v", value, err)
		}
		cfg.Workers = n

	case "default-source":
		cfg.DefaultSource = value

	case "pdf-reader":
		if err := config.ValidatePDFReader(value); err != nil {
			exitWithError(ExitError, "%v", err)
		}
		cfg.PDFReader = value

	default:
		exitWithError(ExitError, "unknown configuration key: %s", key)
	}

	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	// Save config
	if err := cfg.Save(workspaceRoot); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	// Output success
	if humanOutput {
		fmt.Printf("Updated %s to %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{
			Status: "updated",
			Key:    normalizedKey,
			Value:  value,
		})
	}

	return nil
}

// printConfigValue outputs a single config value.
func printConfigValue(jsonKey, value string) {
	if humanOutput {
		fmt.Println(value)
	} else {
		outputJSON(map[string]string{jsonKey: value})
	}
}

// normalizeKey converts key formats (year_tolerance, YearTolerance) to a
// consistent dashed form.
func normalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "-")
	return key
}

// splitCommaList splits a comma-separated flag value, dropping empties.
func splitCommaList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
