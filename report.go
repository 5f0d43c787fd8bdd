package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/Feresey/dumptrim/filter"
)

// Report is the machine readable account of one transform pass.
type Report struct {
	RunID      string    `json:"run_id"`
	Input      string    `json:"input"`
	Output     string    `json:"output,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	TablesIncluded int `json:"tables_included"`
	TablesSkipped  int `json:"tables_skipped"`
	BlocksSkipped  int `json:"blocks_skipped"`
	LinesDropped   int `json:"lines_dropped"`

	Tables []filter.Decision `json:"tables"`
}

func newReport(input, output string, started time.Time, stats *filter.Stats) Report {
	return Report{
		RunID:      uuid.NewString(),
		Input:      input,
		Output:     output,
		StartedAt:  started,
		FinishedAt: time.Now(),

		TablesIncluded: stats.TablesIncluded,
		TablesSkipped:  stats.TablesSkipped,
		BlocksSkipped:  stats.BlocksSkipped,
		LinesDropped:   stats.LinesDropped,

		Tables: stats.Decisions,
	}
}

func writeReport(path string, report Report) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer func() {
		err = errors.Join(err, file.Close())
	}()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
