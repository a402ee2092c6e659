// Package bench drives a renderer through a timed frame loop and reports
// frame-time statistics.
package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"glbench/internal/profiling"
	"glbench/internal/renderer"

	"github.com/schollz/progressbar/v3"
)

// ErrTooManyFailures aborts a run after MaxFailures consecutive bad frames.
var ErrTooManyFailures = errors.New("too many consecutive frame failures")

// Target is what the runner drives. *renderer.Renderer implements it.
type Target interface {
	SetUp() error
	Draw(offscreen bool) error
	TearDown() error
	Stats() renderer.Stats
}

// Options controls one run.
type Options struct {
	Frames      int
	Warmup      int
	Offscreen   bool
	MaxFailures int
	// Progress receives a progress bar when non-nil.
	Progress io.Writer
	Logger   *slog.Logger
	// BeforeTearDown runs after the last frame while the target is still
	// set up, for example to capture a snapshot.
	BeforeTearDown func() error
}

// Result is the outcome of one run.
type Result struct {
	Workload           int               `yaml:"workload"`
	DrawCalls          int               `yaml:"draw_calls"`
	Offscreen          bool              `yaml:"offscreen"`
	Frames             int               `yaml:"frames"`
	Failed             int               `yaml:"failed"`
	WarmupFailed       int               `yaml:"warmup_failed"`
	Aborted            bool              `yaml:"aborted"`
	Elapsed            time.Duration     `yaml:"elapsed"`
	FrameTime          Summary           `yaml:"frame_time"`
	FPS                float64           `yaml:"fps"`
	DrawCallsPerSecond float64           `yaml:"draw_calls_per_second"`
	Phases             []profiling.Phase `yaml:"phases"`
}

func (o *Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// Run sets the target up, draws Warmup untimed frames and Frames timed
// frames, then tears it down. TearDown always runs once SetUp has been
// attempted. A cancelled context stops the run between frames and returns
// the partial result with the context error.
func Run(ctx context.Context, target Target, opts Options) (res *Result, err error) {
	log := opts.logger()
	profiling.Reset()

	if err := target.SetUp(); err != nil {
		if terr := target.TearDown(); terr != nil {
			log.Warn("tear down after failed set up", "err", terr)
		}
		return nil, fmt.Errorf("set up: %w", err)
	}
	defer func() {
		if terr := target.TearDown(); terr != nil {
			log.Warn("tear down failed", "err", terr)
			if err == nil {
				err = fmt.Errorf("tear down: %w", terr)
			}
		}
		if res != nil {
			res.Phases = profiling.Snapshot()
		}
	}()

	res = &Result{Workload: target.Stats().Workload, Offscreen: opts.Offscreen}
	consecutive := 0
	fail := func(counter *int, frame int, ferr error) error {
		*counter++
		consecutive++
		log.Debug("frame failed", "frame", frame, "err", ferr)
		if opts.MaxFailures > 0 && consecutive >= opts.MaxFailures {
			res.Aborted = true
			return fmt.Errorf("%w: %d (last: %w)", ErrTooManyFailures, consecutive, ferr)
		}
		return nil
	}

	// Warmup failures go to WarmupFailed; Failed only counts timed frames.
	for i := 0; i < opts.Warmup; i++ {
		if err := ctx.Err(); err != nil {
			res.Aborted = true
			res.finish(nil, 0, target.Stats())
			return res, err
		}
		if derr := target.Draw(opts.Offscreen); derr != nil {
			if aerr := fail(&res.WarmupFailed, i, derr); aerr != nil {
				res.finish(nil, 0, target.Stats())
				return res, aerr
			}
			continue
		}
		consecutive = 0
	}
	consecutive = 0

	var bar *progressbar.ProgressBar
	if opts.Progress != nil {
		bar = progressbar.NewOptions(opts.Frames,
			progressbar.OptionSetWriter(opts.Progress),
			progressbar.OptionSetDescription(fmt.Sprintf("workload %d", res.Workload)),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Close()
	}

	times := make([]time.Duration, 0, opts.Frames)
	start := time.Now()
	for i := 0; i < opts.Frames; i++ {
		if err := ctx.Err(); err != nil {
			res.Aborted = true
			res.finish(times, time.Since(start), target.Stats())
			return res, err
		}
		t0 := time.Now()
		derr := target.Draw(opts.Offscreen)
		d := time.Since(t0)
		if bar != nil {
			bar.Add(1)
		}
		if derr != nil {
			if aerr := fail(&res.Failed, i, derr); aerr != nil {
				res.finish(times, time.Since(start), target.Stats())
				return res, aerr
			}
			continue
		}
		consecutive = 0
		times = append(times, d)
	}
	res.finish(times, time.Since(start), target.Stats())

	if opts.BeforeTearDown != nil {
		if herr := opts.BeforeTearDown(); herr != nil {
			return res, herr
		}
	}

	log.Info("run complete",
		"workload", res.Workload,
		"frames", res.Frames,
		"failed", res.Failed,
		"fps", fmt.Sprintf("%.1f", res.FPS),
		"p95", res.FrameTime.P95,
		"top", profiling.TopN(3))
	return res, nil
}

func (r *Result) finish(times []time.Duration, elapsed time.Duration, st renderer.Stats) {
	r.Frames = len(times)
	r.Elapsed = elapsed
	r.DrawCalls = renderer.DrawCalls(st.Workload)
	r.FrameTime = Summarize(times)
	if r.FrameTime.Sum > 0 {
		r.FPS = float64(r.Frames) / r.FrameTime.Sum.Seconds()
		r.DrawCallsPerSecond = r.FPS * float64(r.DrawCalls)
	}
}

// Sweep runs workloads lo through hi in order, building each target with
// newTarget. It stops at the first error and returns the results so far.
func Sweep(ctx context.Context, lo, hi int, newTarget func(workload int) Target, opts Options) ([]*Result, error) {
	if lo < 1 || hi < lo {
		return nil, fmt.Errorf("invalid sweep range [%d, %d]", lo, hi)
	}
	results := make([]*Result, 0, hi-lo+1)
	for w := lo; w <= hi; w++ {
		res, err := Run(ctx, newTarget(w), opts)
		if res != nil {
			results = append(results, res)
		}
		if err != nil {
			return results, fmt.Errorf("workload %d: %w", w, err)
		}
	}
	return results, nil
}
