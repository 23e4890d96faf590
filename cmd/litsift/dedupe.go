package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/litsift/litsift/internal/config"
	"github.com/litsift/litsift/internal/dedupe"
	"github.com/litsift/litsift/internal/normalize"
	"github.com/litsift/litsift/internal/prisma"
	"github.com/litsift/litsift/internal/storage"
)

var (
	dedupeThreshold     float64
	dedupeYearTolerance int
	dedupeKeys          string
	dedupeWorkers       int
	dedupeDryRun        bool
)

func init() {
	dedupeCmd.Flags().Float64Var(&dedupeThreshold, "threshold", dedupe.DefaultThreshold, "Minimum title similarity for a fuzzy merge (overrides config)")
	dedupeCmd.Flags().IntVar(&dedupeYearTolerance, "year-tolerance", dedupe.DefaultYearTolerance, "Maximum year distance for a fuzzy merge (overrides config)")
	dedupeCmd.Flags().StringVar(&dedupeKeys, "keys", "", "Exact-match identifier kinds, comma-separated (overrides config)")
	dedupeCmd.Flags().IntVar(&dedupeWorkers, "workers", 0, "Similarity-scoring parallelism (0 = all CPUs)")
	dedupeCmd.Flags().BoolVar(&dedupeDryRun, "dry-run", false, "Show duplicate groups without making changes")
	rootCmd.AddCommand(dedupeCmd)
}

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Find and remove duplicate records",
	Long: `Find and remove duplicate records from the corpus.

Runs the exact pass (shared DOI or PMID) and then the fuzzy pass
(normalized-title similarity within the year tolerance) over its
survivors. Each group keeps its most complete record.

Run 'litsift rebuild' afterwards to refresh the search cache.

Examples:
  litsift dedupe --dry-run
  litsift dedupe
  litsift dedupe --threshold 0.92 --year-tolerance 0
  litsift dedupe --keys doi`,
	RunE: runDedupe,
}

// DedupeRunResult represents the result of a dedupe operation.
type DedupeRunResult struct {
	DryRun  bool           `json:"dry_run"`
	Summary dedupe.Summary `json:"summary"`
	Groups  []dedupe.Group `json:"groups"`
}

func runDedupe(cmd *cobra.Command, args []string) error {
	workspaceRoot := mustFindWorkspace()
	cfg := mustLoadConfig(workspaceRoot)

	opts := dedupeOptions(cmd, cfg)
	if err := opts.Validate(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	records := mustReadRecords(workspaceRoot)

	// TitleNorm is never persisted, so refresh it before matching
	normalize.TitleKeys(records)

	result, err := dedupe.Deduplicate(records, opts)
	if err != nil {
		exitWithError(ExitError, "deduplicating: %v", err)
	}

	logger.Info().
		Int("input", result.Summary.Input).
		Int("exact_removed", result.Summary.ExactRemoved).
		Int("fuzzy_removed", result.Summary.FuzzyRemoved).
		Int("final", result.Summary.Final).
		Msg("dedupe complete")

	if result.Groups == nil {
		result.Groups = []dedupe.Group{}
	}

	if dedupeDryRun {
		reportDedupe(DedupeRunResult{DryRun: true, Summary: result.Summary, Groups: result.Groups})
		return nil
	}

	if err := storage.WriteAll(config.RecordsPath(workspaceRoot), result.Records); err != nil {
		exitWithError(ExitError, "writing records: %v", err)
	}
	recordDedupeMetrics(workspaceRoot, result.Summary)

	reportDedupe(DedupeRunResult{DryRun: false, Summary: result.Summary, Groups: result.Groups})
	return nil
}

// dedupeOptions merges config settings with any flags the user set.
func dedupeOptions(cmd *cobra.Command, cfg *config.Config) dedupe.Options {
	opts := cfg.DedupeOptions()
	if cmd.Flags().Changed("threshold") {
		opts.Threshold = dedupeThreshold
	}
	if cmd.Flags().Changed("year-tolerance") {
		opts.YearTolerance = dedupeYearTolerance
	}
	if cmd.Flags().Changed("keys") {
		opts.Keys = splitCommaList(dedupeKeys)
	}
	if cmd.Flags().Changed("workers") {
		opts.Workers = dedupeWorkers
	}
	return opts
}

// recordDedupeMetrics folds a standalone dedupe run into the workspace
// metrics so the prisma report stays current.
func recordDedupeMetrics(workspaceRoot string, summary dedupe.Summary) {
	path := config.MetricsPath(workspaceRoot)
	m, err := prisma.LoadMetrics(path)
	if err != nil {
		m = prisma.NewRunMetrics()
	}
	m.Dedupe = summary
	if m.Filter.Final == 0 {
		m.Final = summary.Final
	}
	m.Finish()
	if err := m.Save(path); err != nil {
		logger.Warn().Err(err).Msg("saving metrics")
	}
}

// reportDedupe outputs the dedupe result.
func reportDedupe(result DedupeRunResult) {
	if !humanOutput {
		outputJSON(result)
		return
	}

	s := result.Summary
	if s.TotalRemoved() == 0 {
		fmt.Println("No duplicates found.")
		return
	}

	verb := "Removed"
	if result.DryRun {
		verb = "Would remove"
	}
	fmt.Printf("%s %d duplicates (%d exact, %d fuzzy) from %d records, %d remain.\n\n",
		verb, s.TotalRemoved(), s.ExactRemoved, s.FuzzyRemoved, s.Input, s.Final)

	for _, g := range result.Groups {
		fmt.Printf("[%s] %s\n", g.Kind, g.Key)
		fmt.Printf("  Keep:   %s\n", g.Survivor)
		fmt.Printf("  Remove: %s\n\n", strings.Join(g.Removed, ", "))
	}
}
