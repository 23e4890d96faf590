package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/litsift/litsift/internal/config"
	"github.com/litsift/litsift/internal/pdf"
	"github.com/litsift/litsift/internal/storage"
)

func init() {
	rootCmd.AddCommand(openCmd)
}

var openCmd = &cobra.Command{
	Use:   "open <id>...",
	Short: "Open records' linked PDFs in the configured viewer",
	Long: `Open records' linked PDFs in the configured viewer.

The viewer comes from the pdf_reader config key (workspace config first,
then global config), defaulting to the system opener.

Examples:
  litsift open doi:10.1234/example
  litsift open W123 W456`,
	Args: cobra.MinimumNArgs(1),
	RunE: runOpen,
}

// OpenedPDF describes one opened file.
type OpenedPDF struct {
	ID   string `json:"id"`
	Path string `json:"path"`
}

// OpenError describes one record that could not be opened.
type OpenError struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// OpenResult represents the result of an open operation.
type OpenResult struct {
	Opened []OpenedPDF `json:"opened"`
	Errors []OpenError `json:"errors,omitempty"`
}

func runOpen(cmd *cobra.Command, args []string) error {
	workspaceRoot := mustFindWorkspace()
	cfg := mustLoadConfig(workspaceRoot)

	reader := cfg.PDFReader
	if reader == "" {
		reader = config.GetGlobalPDFReader()
	}

	records := mustReadRecords(workspaceRoot)

	var opened []OpenedPDF
	var openErrors []OpenError

	for _, id := range args {
		idx, found := storage.FindByID(records, id)
		if !found {
			openErrors = append(openErrors, OpenError{ID: id, Error: "record not found"})
			continue
		}

		fullPath, err := pdf.ResolveLinked(workspaceRoot, records[idx].PDFPath)
		if err != nil {
			openErrors = append(openErrors, OpenError{ID: id, Error: err.Error()})
			continue
		}

		if err := pdf.Open(fullPath, reader); err != nil {
			openErrors = append(openErrors, OpenError{ID: id, Error: fmt.Sprintf("opening PDF: %v", err)})
			continue
		}

		opened = append(opened, OpenedPDF{ID: id, Path: fullPath})
	}

	// Check if at least one record was opened
	if len(opened) == 0 {
		if humanOutput {
			fmt.Fprintf(cmd.ErrOrStderr(), "Failed to open any PDFs:\n")
			for _, e := range openErrors {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", e.ID, e.Error)
			}
		} else {
			outputJSON(OpenResult{Errors: openErrors})
		}
		return exitErrorSilent(ExitError)
	}

	if humanOutput {
		fmt.Printf("Opening %d PDF(s):\n", len(opened))
		for _, o := range opened {
			fmt.Printf("  ✓ %s: %s\n", o.ID, o.Path)
		}
		for _, e := range openErrors {
			fmt.Printf("  ✗ %s: %s\n", e.ID, e.Error)
		}
	} else {
		outputJSON(OpenResult{
			Opened: opened,
			Errors: openErrors,
		})
	}

	return nil
}
