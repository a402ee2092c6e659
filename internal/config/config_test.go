package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseOverridesDefaults(t *testing.T) {
	b, err := Parse(strings.NewReader(`
workload: 3
frames: 50
offscreen: false
snapshot: out.bmp
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if b.Workload != 3 || b.Frames != 50 || b.Offscreen || b.Snapshot != "out.bmp" {
		t.Fatalf("unexpected profile %+v", b)
	}
	if b.Width != defaultWidth || b.Warmup != defaultWarmup {
		t.Fatalf("defaults lost: %+v", b)
	}
}

func TestParseEmpty(t *testing.T) {
	b, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if b != Default() {
		t.Fatalf("empty profile = %+v, want defaults", b)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	if _, err := Parse(strings.NewReader("workloads: 3\n")); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestNormalizeClamps(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-3, MinWorkload},
		{0, MinWorkload},
		{5, 5},
		{99, MaxWorkload},
	}
	for _, tt := range tests {
		if got := ClampWorkload(tt.in); got != tt.want {
			t.Errorf("ClampWorkload(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}

	b := Benchmark{Frames: 0, Warmup: -1, MaxFailures: -2}
	b.Normalize()
	if b.Frames != 1 || b.Warmup != 0 || b.Width != defaultWidth || b.Height != defaultHeight || b.MaxFailures != 0 {
		t.Fatalf("Normalize = %+v", b)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.yaml")
	if err := os.WriteFile(path, []byte("workload: 12\nwidth: 320\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	b, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if b.Workload != MaxWorkload || b.Width != 320 {
		t.Fatalf("Load = %+v", b)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
