package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/fluidsand/config"
)

// OutputManager writes run output: telemetry.csv, perf.csv and the effective config.
type OutputManager struct {
	dir       string
	telemetry csvSink
	perf      csvSink
}

// csvSink appends gocsv rows to a file, writing the header with the first row only.
type csvSink struct {
	f             *os.File
	headerWritten bool
}

func (s *csvSink) write(rows any) error {
	if s.headerWritten {
		return gocsv.MarshalWithoutHeaders(rows, s.f)
	}
	if err := gocsv.Marshal(rows, s.f); err != nil {
		return err
	}
	s.headerWritten = true
	return nil
}

// NewOutputManager creates dir and opens the CSV files in it.
// Returns nil if dir is empty (output disabled). A nil manager ignores every write.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	tf, err := os.Create(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating telemetry.csv: %w", err)
	}
	pf, err := os.Create(filepath.Join(dir, "perf.csv"))
	if err != nil {
		tf.Close()
		return nil, fmt.Errorf("creating perf.csv: %w", err)
	}

	return &OutputManager{
		dir:       dir,
		telemetry: csvSink{f: tf},
		perf:      csvSink{f: pf},
	}, nil
}

// WriteConfig saves the effective configuration as config.yaml.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTelemetry appends a window to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	if err := om.telemetry.write([]WindowStats{stats}); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

// WritePerf appends a perf row to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, tick int64) error {
	if om == nil {
		return nil
	}
	if err := om.perf.write([]PerfStatsCSV{stats.ToCSV(tick)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes both CSV files and returns the first error.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var firstErr error
	for _, s := range []*csvSink{&om.telemetry, &om.perf} {
		if s.f == nil {
			continue
		}
		if err := s.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
