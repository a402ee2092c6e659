package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"glbench/internal/bench"
	"glbench/internal/config"
	"glbench/internal/renderer"
	"glbench/internal/snapshot"
	"glbench/internal/surface"

	"github.com/spf13/cobra"
)

var noProgress bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one workload",
	Long:  `Sets up the renderer, draws warmup and timed frames, and prints frame-time statistics.`,
	RunE:  runBenchmark,
}

func init() {
	runCmd.Flags().Int("workload", 0, "Workload w; the grid is 2^(w-1) cells per side")
	runCmd.Flags().String("snapshot", "", "Write the last offscreen frame to this BMP path")
	runCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Hide the progress bar")
	rootCmd.AddCommand(runCmd)
}

func newRenderer(cfg config.Benchmark, workload int) *renderer.Renderer {
	s := surface.New(surface.Options{
		Width:   cfg.Width,
		Height:  cfg.Height,
		Title:   fmt.Sprintf("glbench w=%d", workload),
		VSync:   cfg.VSync,
		Visible: !cfg.Offscreen,
		Logger:  logger,
	})
	return renderer.New(s, workload,
		renderer.WithLogger(logger.With("workload", workload)),
		renderer.WithTextureSeed(cfg.Seed))
}

func benchOptions(cfg config.Benchmark) bench.Options {
	opts := bench.Options{
		Frames:      cfg.Frames,
		Warmup:      cfg.Warmup,
		Offscreen:   cfg.Offscreen,
		MaxFailures: cfg.MaxFailures,
		Logger:      logger,
	}
	if !noProgress {
		opts.Progress = os.Stderr
	}
	return opts
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	cfg, err := loadProfile(cmd)
	if err != nil {
		return err
	}
	activeReport.SetPath(cfg.Report)

	r := newRenderer(cfg, cfg.Workload)
	opts := benchOptions(cfg)
	if cfg.Snapshot != "" {
		if !cfg.Offscreen {
			slog.Warn("snapshot needs an offscreen run; skipping", "path", cfg.Snapshot)
		} else {
			opts.BeforeTearDown = func() error {
				img, err := r.Capture()
				if err != nil {
					return err
				}
				if err := snapshot.Save(cfg.Snapshot, img); err != nil {
					return err
				}
				slog.Info("snapshot written", "path", cfg.Snapshot)
				return nil
			}
		}
	}

	slog.Info("starting benchmark",
		"workload", cfg.Workload,
		"draw_calls", renderer.DrawCalls(cfg.Workload),
		"frames", cfg.Frames,
		"offscreen", cfg.Offscreen)

	res, err := bench.Run(cmd.Context(), r, opts)
	activeReport.Add(res)
	if res != nil {
		printResults(cmd.OutOrStdout(), []*bench.Result{res})
	}
	if ferr := activeReport.Flush(); ferr != nil {
		slog.Error("failed to write report", "err", ferr)
	}
	return err
}

func printResults(w io.Writer, results []*bench.Result) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "workload\tdraws\tframes\tfailed\tmean\tp50\tp95\tfps\tdraws/s\t")
	for _, r := range results {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%v\t%v\t%v\t%.1f\t%.0f\t\n",
			r.Workload, r.DrawCalls, r.Frames, r.Failed,
			r.FrameTime.Mean, r.FrameTime.P50, r.FrameTime.P95,
			r.FPS, r.DrawCallsPerSecond)
	}
	tw.Flush()
}
