package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/litsift/litsift/internal/config"
	"github.com/litsift/litsift/internal/filter"
	"github.com/litsift/litsift/internal/prisma"
	"github.com/litsift/litsift/internal/storage"
)

var (
	filterLangs            string
	filterTypes            string
	filterExcludeTypes     string
	filterYearFrom         int
	filterYearTo           int
	filterDropPreprints    bool
	filterRequireEssential bool
	filterMinCitations     int
	filterExcludeJournals  string
	filterDryRun           bool
)

func init() {
	filterCmd.Flags().StringVar(&filterLangs, "langs", "", "Keep only these languages, comma-separated (overrides config)")
	filterCmd.Flags().StringVar(&filterTypes, "types", "", "Keep only these document types, comma-separated (overrides config)")
	filterCmd.Flags().StringVar(&filterExcludeTypes, "exclude-types", "", "Drop these document types, comma-separated (overrides config)")
	filterCmd.Flags().IntVar(&filterYearFrom, "year-from", 0, "Earliest publication year to keep (overrides config)")
	filterCmd.Flags().IntVar(&filterYearTo, "year-to", 0, "Latest publication year to keep (overrides config)")
	filterCmd.Flags().BoolVar(&filterDropPreprints, "drop-preprints", false, "Drop preprints and posted content (overrides config)")
	filterCmd.Flags().BoolVar(&filterRequireEssential, "require-essential", false, "Require a title plus an abstract, DOI, or PMID (overrides config)")
	filterCmd.Flags().IntVar(&filterMinCitations, "min-citations", 0, "Drop records cited fewer than n times (overrides config)")
	filterCmd.Flags().StringVar(&filterExcludeJournals, "exclude-journals", "", "Drop these journals, comma-separated (overrides config)")
	filterCmd.Flags().BoolVar(&filterDryRun, "dry-run", false, "Show what the rules would exclude without making changes")
	rootCmd.AddCommand(filterCmd)
}

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Apply screening rules to the corpus",
	Long: `Apply screening rules to the corpus and report what each rule excluded.

Rules come from the workspace config; flags override individual rules for
this run. A record is charged to the first rule that excludes it.

Run 'litsift rebuild' afterwards to refresh the search cache.

Examples:
  litsift filter --dry-run
  litsift filter --langs en --year-from 2010
  litsift filter --types journal-article --drop-preprints
  litsift filter --min-citations 5 --exclude-journals "Predatory Weekly"`,
	RunE: runFilter,
}

// FilterRunResult represents the result of a filter operation.
type FilterRunResult struct {
	DryRun bool          `json:"dry_run"`
	Report filter.Report `json:"report"`
}

func runFilter(cmd *cobra.Command, args []string) error {
	workspaceRoot := mustFindWorkspace()
	cfg := mustLoadConfig(workspaceRoot)

	rules := filterRules(cmd, cfg)
	records := mustReadRecords(workspaceRoot)

	kept, report := filter.Apply(records, rules)

	logger.Info().
		Int("input", report.Input).
		Int("excluded", report.TotalExcluded()).
		Int("final", report.Final).
		Msg("filter complete")

	if filterDryRun {
		reportFilter(FilterRunResult{DryRun: true, Report: report})
		return nil
	}

	if err := storage.WriteAll(config.RecordsPath(workspaceRoot), kept); err != nil {
		exitWithError(ExitError, "writing records: %v", err)
	}
	recordFilterMetrics(workspaceRoot, report)

	reportFilter(FilterRunResult{DryRun: false, Report: report})
	return nil
}

// filterRules merges config rules with any flags the user set.
func filterRules(cmd *cobra.Command, cfg *config.Config) filter.Rules {
	rules := cfg.Filter
	if cmd.Flags().Changed("langs") {
		rules.Langs = splitCommaList(filterLangs)
	}
	if cmd.Flags().Changed("types") {
		rules.Types = splitCommaList(filterTypes)
	}
	if cmd.Flags().Changed("exclude-types") {
		rules.ExcludeTypes = splitCommaList(filterExcludeTypes)
	}
	if cmd.Flags().Changed("year-from") {
		rules.YearFrom = filterYearFrom
	}
	if cmd.Flags().Changed("year-to") {
		rules.YearTo = filterYearTo
	}
	if cmd.Flags().Changed("drop-preprints") {
		rules.DropPreprints = filterDropPreprints
	}
	if cmd.Flags().Changed("require-essential") {
		rules.RequireEssential = filterRequireEssential
	}
	if cmd.Flags().Changed("min-citations") {
		rules.MinCitations = filterMinCitations
	}
	if cmd.Flags().Changed("exclude-journals") {
		rules.ExcludedJournals = splitCommaList(filterExcludeJournals)
	}
	return rules
}

// recordFilterMetrics folds a standalone filter run into the workspace
// metrics so the prisma report stays current.
func recordFilterMetrics(workspaceRoot string, report filter.Report) {
	path := config.MetricsPath(workspaceRoot)
	m, err := prisma.LoadMetrics(path)
	if err != nil {
		m = prisma.NewRunMetrics()
	}
	m.Filter = report
	m.Final = report.Final
	m.Finish()
	if err := m.Save(path); err != nil {
		logger.Warn().Err(err).Msg("saving metrics")
	}
}

// reportFilter outputs the filter result.
func reportFilter(result FilterRunResult) {
	if !humanOutput {
		outputJSON(result)
		return
	}

	if result.DryRun {
		fmt.Println("Dry run - no records removed.")
		fmt.Println()
	}
	fmt.Print(result.Report.Text())
}
