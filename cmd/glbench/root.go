package main

import (
	"fmt"
	"log/slog"
	"os"

	"glbench/internal/config"

	"github.com/spf13/cobra"
)

var (
	logLevel   string
	logFormat  string
	configPath string
	logger     *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "glbench",
	Short: "Full-pipeline GPU rendering benchmark",
	Long: `glbench draws a 2^(w-1) x 2^(w-1) grid of lit, textured quads and
reports frame times, isolating per-draw-call pipeline cost from vertex work.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var level slog.Level
		switch logLevel {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			return fmt.Errorf("unknown log level: %s", logLevel)
		}

		opts := &slog.HandlerOptions{Level: level}
		var handler slog.Handler
		switch logFormat {
		case "text":
			handler = slog.NewTextHandler(os.Stderr, opts)
		case "json":
			handler = slog.NewJSONHandler(os.Stderr, opts)
		default:
			return fmt.Errorf("unknown log format: %s", logFormat)
		}
		logger = slog.New(handler)
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML benchmark profile")

	flags := rootCmd.PersistentFlags()
	flags.Int("frames", 0, "Timed frames per run")
	flags.Int("warmup", 0, "Untimed frames before timing")
	flags.Bool("offscreen", true, "Render to the offscreen framebuffer and wait for completion")
	flags.Int("width", 0, "Surface width in pixels")
	flags.Int("height", 0, "Surface height in pixels")
	flags.Bool("vsync", false, "Sync onscreen frames to the display refresh")
	flags.Uint64("seed", 0, "Noise texture seed")
	flags.Int("max-failures", 0, "Abort after this many consecutive failed frames (0 = never)")
	flags.String("report", "", "Write a YAML report to this path")
}

// loadProfile reads --config (or the defaults) and applies any flags the
// user set explicitly.
func loadProfile(cmd *cobra.Command) (config.Benchmark, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	var err error
	set := func(name string, apply func() error) {
		if err == nil && flags.Changed(name) {
			err = apply()
		}
	}
	set("workload", func() (e error) { cfg.Workload, e = flags.GetInt("workload"); return })
	set("frames", func() (e error) { cfg.Frames, e = flags.GetInt("frames"); return })
	set("warmup", func() (e error) { cfg.Warmup, e = flags.GetInt("warmup"); return })
	set("offscreen", func() (e error) { cfg.Offscreen, e = flags.GetBool("offscreen"); return })
	set("width", func() (e error) { cfg.Width, e = flags.GetInt("width"); return })
	set("height", func() (e error) { cfg.Height, e = flags.GetInt("height"); return })
	set("vsync", func() (e error) { cfg.VSync, e = flags.GetBool("vsync"); return })
	set("seed", func() (e error) { cfg.Seed, e = flags.GetUint64("seed"); return })
	set("max-failures", func() (e error) { cfg.MaxFailures, e = flags.GetInt("max-failures"); return })
	set("snapshot", func() (e error) { cfg.Snapshot, e = flags.GetString("snapshot"); return })
	set("report", func() (e error) { cfg.Report, e = flags.GetString("report"); return })
	if err != nil {
		return cfg, err
	}
	cfg.Normalize()
	return cfg, nil
}
