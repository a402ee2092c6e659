package bench

import (
	"sort"
	"time"
)

// Summary describes a set of frame times.
type Summary struct {
	Mean time.Duration `yaml:"mean"`
	Min  time.Duration `yaml:"min"`
	Max  time.Duration `yaml:"max"`
	P50  time.Duration `yaml:"p50"`
	P95  time.Duration `yaml:"p95"`
	Sum  time.Duration `yaml:"sum"`
}

// Summarize computes frame-time statistics. The input is not modified.
func Summarize(frames []time.Duration) Summary {
	if len(frames) == 0 {
		return Summary{}
	}
	sorted := make([]time.Duration, len(frames))
	copy(sorted, frames)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}
	return Summary{
		Mean: sum / time.Duration(len(sorted)),
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		P50:  percentile(sorted, 50),
		P95:  percentile(sorted, 95),
		Sum:  sum,
	}
}

// percentile uses the nearest-rank method on sorted input.
func percentile(sorted []time.Duration, p int) time.Duration {
	rank := (p*len(sorted) + 99) / 100
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}
