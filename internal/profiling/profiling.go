// Package profiling accumulates CPU time per named phase (set up, draw,
// finish, tear down) across a benchmark run.
package profiling

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	mu     sync.Mutex
	totals = make(map[string]time.Duration)
	counts = make(map[string]int)
)

// Track returns a stop function that records the elapsed time under name.
// Usage: defer profiling.Track("renderer.Draw")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		totals[name] += d
		counts[name]++
		mu.Unlock()
	}
}

// Reset clears all totals. Call at the start of each run.
func Reset() {
	mu.Lock()
	clear(totals)
	clear(counts)
	mu.Unlock()
}

// Phase is the accumulated time for one name.
type Phase struct {
	Name  string        `yaml:"name"`
	Total time.Duration `yaml:"total"`
	Calls int           `yaml:"calls"`
}

// Mean returns the average time per call.
func (p Phase) Mean() time.Duration {
	if p.Calls == 0 {
		return 0
	}
	return p.Total / time.Duration(p.Calls)
}

// Snapshot returns all phases sorted by descending total time.
func Snapshot() []Phase {
	mu.Lock()
	out := make([]Phase, 0, len(totals))
	for k, v := range totals {
		out = append(out, Phase{Name: k, Total: v, Calls: counts[k]})
	}
	mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total == out[j].Total {
			return out[i].Name < out[j].Name
		}
		return out[i].Total > out[j].Total
	})
	return out
}

// TopN formats the n most expensive phases.
// Example: "renderer.Draw:412.3ms, renderer.Finish:380.1ms"
func TopN(n int) string {
	ps := Snapshot()
	n = max(0, min(n, len(ps)))
	parts := make([]string, 0, n)
	for _, p := range ps[:n] {
		ms := float64(p.Total.Microseconds()) / 1000.0
		parts = append(parts, fmt.Sprintf("%s:%.1fms", p.Name, ms))
	}
	return strings.Join(parts, ", ")
}
