package telemetry

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/meadow/config"
)

// OutputManager handles run output: the per-generation log, summaries, perf samples and
// a text event log. It implements LogSink.
type OutputManager struct {
	dir            string
	species        int
	generationFile *os.File
	generationCSV  *csv.Writer
	statsFile      *os.File
	perfFile       *os.File
	eventFile      *os.File

	// Track if headers have been written
	generationHeaderWritten bool
	statsHeaderWritten      bool
	perfHeaderWritten       bool
}

// NewOutputManager creates a new output manager and initializes the output directory.
// species is S, the number of count columns in generations.csv.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string, species int) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir, species: species}
	files := []struct {
		name string
		dst  **os.File
	}{
		{"generations.csv", &om.generationFile},
		{"stats.csv", &om.statsFile},
		{"perf.csv", &om.perfFile},
		{"events.log", &om.eventFile},
	}
	for _, f := range files {
		file, err := os.Create(filepath.Join(dir, f.name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", f.name, err)
		}
		*f.dst = file
	}
	om.generationCSV = csv.NewWriter(om.generationFile)

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	configPath := filepath.Join(om.dir, "config.yaml")
	return cfg.WriteYAML(configPath)
}

// SetSpecies changes the number of count columns. A changed count makes the next
// line start with a fresh header.
func (om *OutputManager) SetSpecies(species int) {
	if om == nil {
		return
	}
	if species != om.species {
		om.generationHeaderWritten = false
	}
	om.species = species
}

// AppendLogLine writes one row to generations.csv.
func (om *OutputManager) AppendLogLine(row []string) error {
	if om == nil {
		return nil
	}

	if !om.generationHeaderWritten {
		header := make([]string, 0, om.species+1)
		header = append(header, "generation")
		for k := 1; k <= om.species; k++ {
			header = append(header, "count_species_"+strconv.Itoa(k))
		}
		if err := om.generationCSV.Write(header); err != nil {
			return fmt.Errorf("writing generations header: %w", err)
		}
		om.generationHeaderWritten = true
	}
	if err := om.generationCSV.Write(row); err != nil {
		return fmt.Errorf("writing generation: %w", err)
	}
	om.generationCSV.Flush()
	return om.generationCSV.Error()
}

// WriteStats writes a summary record to stats.csv.
func (om *OutputManager) WriteStats(sum GenerationSummary) error {
	if om == nil {
		return nil
	}

	records := []GenerationSummary{sum}

	if !om.statsHeaderWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, om.statsFile); err != nil {
			return fmt.Errorf("writing stats: %w", err)
		}
		om.statsHeaderWritten = true
	} else {
		// Subsequent writes skip headers
		if err := gocsv.MarshalWithoutHeaders(records, om.statsFile); err != nil {
			return fmt.Errorf("writing stats: %w", err)
		}
	}

	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats StepStats, generation int) error {
	if om == nil {
		return nil
	}

	records := []StepStatsCSV{stats.ToCSV(generation)}

	if !om.perfHeaderWritten {
		if err := gocsv.Marshal(records, om.perfFile); err != nil {
			return fmt.Errorf("writing perf: %w", err)
		}
		om.perfHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.perfFile); err != nil {
			return fmt.Errorf("writing perf: %w", err)
		}
	}

	return nil
}

// Log appends a timestamped line to events.log.
func (om *OutputManager) Log(text string) {
	if om == nil {
		return
	}
	fmt.Fprintf(om.eventFile, "%s %s\n", time.Now().Format(time.RFC3339), text)
}

// ClearLog truncates generations.csv and stats.csv so a new run starts from an empty log.
func (om *OutputManager) ClearLog() error {
	if om == nil {
		return nil
	}
	for _, f := range []*os.File{om.generationFile, om.statsFile} {
		if err := f.Truncate(0); err != nil {
			return fmt.Errorf("truncating %s: %w", f.Name(), err)
		}
		if _, err := f.Seek(0, 0); err != nil {
			return fmt.Errorf("rewinding %s: %w", f.Name(), err)
		}
	}
	om.generationCSV = csv.NewWriter(om.generationFile)
	om.generationHeaderWritten = false
	om.statsHeaderWritten = false
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	if om.generationCSV != nil {
		om.generationCSV.Flush()
	}

	var firstErr error
	for _, f := range []*os.File{om.generationFile, om.statsFile, om.perfFile, om.eventFile} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
