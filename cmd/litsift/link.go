package main

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/litsift/litsift/internal/config"
	"github.com/litsift/litsift/internal/dedupe"
	"github.com/litsift/litsift/internal/normalize"
	"github.com/litsift/litsift/internal/pdf"
	"github.com/litsift/litsift/internal/record"
	"github.com/litsift/litsift/internal/storage"
)

// linkTitleThreshold is the minimum title similarity for a PDF-to-record
// match. Stricter than the dedupe default because a first PDF page yields
// a noisier title than a harvest export.
const linkTitleThreshold = 0.90

var (
	linkThreshold float64
	linkDryRun    bool
)

func init() {
	linkCmd.Flags().Float64Var(&linkThreshold, "threshold", linkTitleThreshold, "Minimum title similarity for a match")
	linkCmd.Flags().BoolVar(&linkDryRun, "dry-run", false, "Show matches without writing")
	rootCmd.AddCommand(linkCmd)
}

var linkCmd = &cobra.Command{
	Use:   "link <dir>",
	Short: "Attach local PDFs to corpus records",
	Long: `Attach local PDFs to corpus records.

Walks the directory for PDF files. Each file is matched by the DOI printed
in its first pages, falling back to comparing its title line against
record titles. Matches set the record's pdf_path; paths inside the
workspace are stored relative to the workspace root.

Run 'litsift rebuild' afterwards to refresh the search cache.

Examples:
  litsift link ~/Downloads/papers
  litsift link ./pdfs --dry-run
  litsift link ./pdfs --threshold 0.95`,
	Args: cobra.ExactArgs(1),
	RunE: runLink,
}

// LinkedPDF describes one matched file.
type LinkedPDF struct {
	File   string `json:"file"`
	ID     string `json:"id"`
	Method string `json:"method"` // doi, title
}

// LinkResult represents the result of a link operation.
type LinkResult struct {
	DryRun    bool        `json:"dry_run"`
	Linked    []LinkedPDF `json:"linked"`
	Unmatched []string    `json:"unmatched"`
}

func runLink(cmd *cobra.Command, args []string) error {
	workspaceRoot := mustFindWorkspace()

	dir := config.ExpandPath(args[0])
	records := mustReadRecords(workspaceRoot)

	// Titles are matched against the normalized form
	normalize.TitleKeys(records)

	pdfFiles, err := collectPDFs(dir)
	if err != nil {
		exitWithError(ExitError, "scanning %s: %v", dir, err)
	}
	if len(pdfFiles) == 0 {
		exitWithError(ExitError, "no PDF files found in %s", dir)
	}

	result := LinkResult{DryRun: linkDryRun, Linked: []LinkedPDF{}, Unmatched: []string{}}

	for _, file := range pdfFiles {
		idx, method := matchPDF(file, records, linkThreshold)
		if idx < 0 {
			result.Unmatched = append(result.Unmatched, file)
			continue
		}

		records[idx].PDFPath = workspaceRelative(workspaceRoot, file)
		result.Linked = append(result.Linked, LinkedPDF{
			File:   file,
			ID:     records[idx].ID,
			Method: method,
		})
		logger.Debug().Str("file", file).Str("id", records[idx].ID).Str("method", method).Msg("pdf matched")
	}

	if !linkDryRun && len(result.Linked) > 0 {
		if err := storage.WriteAll(config.RecordsPath(workspaceRoot), records); err != nil {
			exitWithError(ExitError, "writing records: %v", err)
		}
	}

	if humanOutput {
		fmt.Printf("Matched %d of %d PDFs:\n", len(result.Linked), len(pdfFiles))
		for _, l := range result.Linked {
			fmt.Printf("  %s -> %s (%s)\n", filepath.Base(l.File), l.ID, l.Method)
		}
		if len(result.Unmatched) > 0 {
			fmt.Println("\nUnmatched:")
			for _, f := range result.Unmatched {
				fmt.Printf("  %s\n", filepath.Base(f))
			}
		}
	} else {
		outputJSON(result)
	}

	return nil
}

// collectPDFs walks a directory for .pdf files.
func collectPDFs(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".pdf") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// matchPDF finds the record a PDF belongs to. DOI match wins; otherwise
// the best title-similarity match at or above the threshold.
func matchPDF(file string, records []record.Record, threshold float64) (int, string) {
	if rawDOI, err := pdf.ExtractDOI(file); err == nil {
		doi := normalize.CleanDOI(rawDOI)
		if idx, found := storage.FindByDOI(records, doi); found {
			return idx, "doi"
		}
	}

	candidate, err := pdf.ExtractTitleCandidate(file)
	if err != nil {
		return -1, ""
	}
	return matchByTitle(normalize.TitleKey(candidate), records, threshold)
}

// matchByTitle returns the best-scoring record for a normalized title
// candidate, or -1 when nothing reaches the threshold.
func matchByTitle(titleNorm string, records []record.Record, threshold float64) (int, string) {
	if titleNorm == "" {
		return -1, ""
	}

	bestIdx := -1
	bestScore := 0.0
	for i := range records {
		if records[i].TitleNorm == "" {
			continue
		}
		score := dedupe.Similarity(titleNorm, records[i].TitleNorm)
		if score >= threshold && score > bestScore {
			bestIdx = i
			bestScore = score
		}
	}
	if bestIdx < 0 {
		return -1, ""
	}
	return bestIdx, "title"
}

// workspaceRelative stores paths inside the workspace relative to its
// root so the corpus stays portable across machines.
func workspaceRelative(workspaceRoot, path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(workspaceRoot, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return abs
	}
	return rel
}
