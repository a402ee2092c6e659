// Command glbench measures GPU graphics throughput by drawing a grid of
// lit, textured quads whose draw-call count grows with the workload.
package main

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"glbench/internal/bench"

	"github.com/xlab/closer"
)

// GL contexts are bound to the OS thread that made them current.
func init() {
	runtime.LockOSThread()
}

// activeReport collects every finished or interrupted run and is flushed
// on exit, including on SIGINT/SIGTERM.
var activeReport = bench.NewReport("")

// shutdownGrace bounds how long a signal waits for the current frame loop.
const shutdownGrace = 5 * time.Second

// shutdown stops the running command when the process is asked to exit.
// The frame loop sees the cancelled context between frames, tears the
// renderer down and adds its partial result to the report before the
// report is written.
type shutdown struct {
	cancel  context.CancelFunc
	done    chan struct{}
	timeout time.Duration
	report  *bench.Report
}

func (s *shutdown) hook() {
	s.cancel()
	select {
	case <-s.done:
	case <-time.After(s.timeout):
		slog.Warn("run did not stop in time; writing report without it", "timeout", s.timeout)
	}
	if err := s.report.Flush(); err != nil {
		slog.Error("failed to write report", "err", err)
	}
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	sd := &shutdown{
		cancel:  cancel,
		done:    make(chan struct{}),
		timeout: shutdownGrace,
		report:  activeReport,
	}
	closer.Bind(sd.hook)
	closer.Checked(func() error {
		defer close(sd.done)
		return rootCmd.ExecuteContext(ctx)
	}, true)
}
