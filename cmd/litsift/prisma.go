package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/litsift/litsift/internal/config"
	"github.com/litsift/litsift/internal/prisma"
)

func init() {
	rootCmd.AddCommand(prismaCmd)
}

var prismaCmd = &cobra.Command{
	Use:   "prisma",
	Short: "Report PRISMA-style selection counts",
	Long: `Report PRISMA-style selection counts from the last pipeline run.

Reads .litsift/metrics.json (written by 'litsift process' and updated by
standalone dedupe and filter runs) and derives the flow: identified per
source, after merge, after deduplication, after screening, final included.

Examples:
  litsift prisma
  litsift prisma --human`,
	RunE: runPrisma,
}

func runPrisma(cmd *cobra.Command, args []string) error {
	workspaceRoot := mustFindWorkspace()

	metrics, err := prisma.LoadMetrics(config.MetricsPath(workspaceRoot))
	if err != nil {
		exitWithError(ExitDataError, "no pipeline metrics found, run 'litsift process' first: %v", err)
	}

	flow := prisma.FromMetrics(metrics)

	if humanOutput {
		fmt.Print(flow.Text())
	} else {
		outputJSON(flow)
	}

	return nil
}
