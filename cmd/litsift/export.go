package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/litsift/litsift/internal/export"
	"github.com/litsift/litsift/internal/record"
	"github.com/litsift/litsift/internal/storage"
)

var (
	exportFormat string
	exportIDs    string
	exportAppend bool
)

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "Export format (csv, jsonl, ris, bibtex)")
	exportCmd.Flags().StringVar(&exportIDs, "ids", "", "Export only specified record IDs (comma-separated)")
	exportCmd.Flags().BoolVar(&exportAppend, "append", false, "Append only entries the .bib file doesn't already have (bibtex only)")
	exportCmd.MarkFlagRequired("format")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export the corpus to CSV, JSONL, RIS, or BibTeX",
	Long: `Export the corpus to an interchange format.

Reads the canonical records file directly, so the export always reflects
the corpus even before a rebuild. Use "-" as the file to write to stdout.

With --append the bibtex export grows an existing .bib file instead of
overwriting it: entries already present (matched by DOI, then citation
key) are skipped.

Examples:
  litsift export --format ris included.ris
  litsift export --format csv final.csv
  litsift export --format jsonl --ids W1,W2 subset.jsonl
  litsift export --format bibtex --append thesis/references.bib
  litsift export --format ris - > included.ris`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

// ExportResult is the response for the export command.
type ExportResult struct {
	Status  string `json:"status"`
	Format  string `json:"format"`
	Records int    `json:"records"`
	Skipped int    `json:"skipped,omitempty"`
	Path    string `json:"path,omitempty"`
}

func runExport(cmd *cobra.Command, args []string) error {
	workspaceRoot := mustFindWorkspace()
	records := mustReadRecords(workspaceRoot)

	if exportIDs != "" {
		var subset []record.Record
		for _, id := range splitCommaList(exportIDs) {
			idx, found := storage.FindByID(records, id)
			if !found {
				exitWithError(ExitError, "unknown record ID: %s", id)
			}
			subset = append(subset, records[idx])
		}
		records = subset
	}

	if exportAppend {
		if exportFormat != "bibtex" {
			exitWithError(ExitError, "--append is only supported for the bibtex format")
		}
		if args[0] == "-" {
			exitWithError(ExitError, "--append needs a file to append to")
		}
		appendBibTeX(args[0], records)
		return nil
	}

	out := os.Stdout
	toStdout := args[0] == "-"
	if !toStdout {
		f, err := os.Create(args[0])
		if err != nil {
			exitWithError(ExitError, "creating output file: %v", err)
		}
		defer f.Close()
		out = f
	}

	switch exportFormat {
	case "csv":
		if err := storage.WriteCSV(out, records); err != nil {
			exitWithError(ExitError, "writing CSV: %v", err)
		}
	case "jsonl":
		enc := json.NewEncoder(out)
		for _, r := range records {
			if err := enc.Encode(r); err != nil {
				exitWithError(ExitError, "writing JSONL: %v", err)
			}
		}
	case "ris":
		if _, err := fmt.Fprintln(out, export.ToRISList(records)); err != nil {
			exitWithError(ExitError, "writing RIS: %v", err)
		}
	case "bibtex":
		if _, err := fmt.Fprintln(out, export.ToBibTeXList(records)); err != nil {
			exitWithError(ExitError, "writing BibTeX: %v", err)
		}
	default:
		exitWithError(ExitError, "unknown format: %s", exportFormat)
	}

	// When writing to stdout the export itself is the output
	if toStdout {
		return nil
	}

	result := ExportResult{
		Status:  "exported",
		Format:  exportFormat,
		Records: len(records),
		Path:    args[0],
	}

	if humanOutput {
		fmt.Printf("Exported %d records to %s (%s)\n", result.Records, result.Path, result.Format)
	} else {
		outputJSON(result)
	}

	return nil
}

// appendBibTeX grows an existing .bib file with the records it doesn't
// already carry, matched by DOI first and citation key second.
func appendBibTeX(path string, records []record.Record) {
	idx, err := export.ParseBibTeXFile(path)
	if err != nil {
		exitWithError(ExitError, "reading existing bib file: %v", err)
	}

	var fresh []record.Record
	for _, r := range records {
		if !idx.HasRecord(r) {
			fresh = append(fresh, r)
		}
	}
	skipped := len(records) - len(fresh)

	if len(fresh) > 0 {
		if err := export.AppendToBibFile(path, export.ToBibTeXList(fresh)); err != nil {
			exitWithError(ExitError, "appending to bib file: %v", err)
		}
	}

	logger.Info().
		Int("appended", len(fresh)).
		Int("skipped", skipped).
		Str("path", path).
		Msg("bibtex append")

	if humanOutput {
		fmt.Printf("Appended %d entries to %s (%d already present)\n", len(fresh), path, skipped)
	} else {
		outputJSON(ExportResult{
			Status:  "appended",
			Format:  "bibtex",
			Records: len(fresh),
			Skipped: skipped,
			Path:    path,
		})
	}
}
