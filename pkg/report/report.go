// Package report renders optimization results to the console and persists
// run snapshots as JSON documents.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/OpenLoopHealth/healthie-dev-tools/pkg/optimizer"
)

// RunConfig captures the inputs of a run for the snapshot document.
type RunConfig struct {
	Endpoint   string `json:"endpoint"`
	ProviderID string `json:"providerId"`
	ApptTypeID string `json:"apptTypeId"`
	State      string `json:"state"`
	Timezone   string `json:"timezone"`
	DaysAhead  int    `json:"daysAhead"`
	Iterations int    `json:"iterations"`
	Quick      bool   `json:"quick"`
}

// Snapshot is the persisted document for one optimization run.
type Snapshot struct {
	Timestamp      time.Time                  `json:"timestamp"`
	Config         RunConfig                  `json:"config"`
	Results        []optimizer.StrategyResult `json:"results"`
	Recommendation optimizer.StrategyResult   `json:"recommendation"`
}

// NewSnapshot builds a snapshot from a run's inputs and outputs.
func NewSnapshot(cfg RunConfig, res *optimizer.RunResult) Snapshot {
	return Snapshot{
		Timestamp:      time.Now(),
		Config:         cfg,
		Results:        res.Results,
		Recommendation: res.Recommendation,
	}
}

// Save writes the snapshot as an indented JSON document named after the
// snapshot's timestamp, creating dir if needed. Returns the written path.
func Save(dir string, snap Snapshot) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("optimization-%s.json",
		snap.Timestamp.Format("20060102-150405")))

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// PrintTable renders the ranked results and the recommendation.
func PrintTable(w io.Writer, res *optimizer.RunResult) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{
		"Rank", "Strategy", "Chunks", "P50 (ms)", "P90 (ms)", "P99 (ms)",
		"Mean (ms)", "StdDev (ms)", "Errors",
	})
	table.SetBorder(false)
	table.SetAutoFormatHeaders(false)

	for i, r := range res.Results {
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			r.Strategy.Name,
			fmt.Sprintf("%d", r.Strategy.ChunkCount(res.TotalDays)),
			formatMs(r.Metrics.P50),
			formatMs(r.Metrics.P90),
			formatMs(r.Metrics.P99),
			formatMs(r.Metrics.Mean),
			formatMs(r.Metrics.StdDev),
			fmt.Sprintf("%d", r.TotalErrors),
		})
	}
	table.Render()

	rec := res.Recommendation
	fmt.Fprintf(w, "\nRecommended: %s (p50 %s, %d errors over %d iterations)\n",
		rec.Strategy.Name, formatMs(rec.Metrics.P50), rec.TotalErrors, res.Iterations)
}

// formatMs renders a millisecond value, with a dash for NaN (strategies
// whose every trial errored).
func formatMs(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.1f", v)
}
