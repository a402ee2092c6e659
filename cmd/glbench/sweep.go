package main

import (
	"log/slog"

	"glbench/internal/bench"
	"glbench/internal/config"

	"github.com/spf13/cobra"
)

var (
	sweepFrom int
	sweepTo   int
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run a range of workloads",
	Long: `Runs each workload from --from to --to on a fresh surface and renderer,
showing how frame time scales with draw-call count.`,
	RunE: runSweep,
}

func init() {
	sweepCmd.Flags().IntVar(&sweepFrom, "from", 1, "First workload")
	sweepCmd.Flags().IntVar(&sweepTo, "to", 6, "Last workload")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadProfile(cmd)
	if err != nil {
		return err
	}
	activeReport.SetPath(cfg.Report)

	from := config.ClampWorkload(sweepFrom)
	to := config.ClampWorkload(sweepTo)
	slog.Info("starting sweep", "from", from, "to", to, "frames", cfg.Frames)

	results, err := bench.Sweep(cmd.Context(), from, to, func(w int) bench.Target {
		return newRenderer(cfg, w)
	}, benchOptions(cfg))
	for _, r := range results {
		activeReport.Add(r)
	}
	printResults(cmd.OutOrStdout(), results)
	if ferr := activeReport.Flush(); ferr != nil {
		slog.Error("failed to write report", "err", ferr)
	}
	return err
}
