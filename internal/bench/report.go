package bench

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Report collects results and writes them as YAML. It is safe to Flush
// from a signal handler while the main thread is still adding results.
type Report struct {
	mu      sync.Mutex
	path    string
	Started time.Time `yaml:"started"`
	Device  string    `yaml:"device,omitempty"`
	Results []*Result `yaml:"results"`
}

// NewReport returns a report that Flush writes to path. An empty path
// makes Flush a no-op.
func NewReport(path string) *Report {
	return &Report{path: path, Started: time.Now()}
}

// Add appends a result.
func (r *Report) Add(res *Result) {
	if res == nil {
		return
	}
	r.mu.Lock()
	r.Results = append(r.Results, res)
	r.mu.Unlock()
}

// SetPath changes where Flush writes.
func (r *Report) SetPath(path string) {
	r.mu.Lock()
	r.path = path
	r.mu.Unlock()
}

// Encode writes the report as YAML to w.
func (r *Report) Encode(w io.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return enc.Close()
}

// Flush writes the report to its path via a temporary file and rename.
func (r *Report) Flush() error {
	r.mu.Lock()
	path := r.path
	r.mu.Unlock()
	if path == "" {
		return nil
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".report-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	if err := r.Encode(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
