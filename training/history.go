package training

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/tsawler/go-trainloop/callbacks"
)

// EpochRecord pairs an epoch number with the metrics it produced.
type EpochRecord struct {
	Epoch int
	Logs  callbacks.Logs
}

// History accumulates per-epoch metrics over a training run.
type History struct {
	records []EpochRecord
}

// NewHistory creates an empty history
func NewHistory() *History {
	return &History{}
}

// Append records the metrics for one epoch. The logs are copied so later
// mutation by the caller cannot corrupt the record.
func (h *History) Append(epoch int, logs callbacks.Logs) {
	copied := make(callbacks.Logs, len(logs))
	for name, value := range logs {
		copied[name] = value
	}
	h.records = append(h.records, EpochRecord{Epoch: epoch, Logs: copied})
}

// Len returns the number of recorded epochs
func (h *History) Len() int {
	return len(h.records)
}

// Records returns all recorded epochs in order
func (h *History) Records() []EpochRecord {
	return h.records
}

// Metric returns the series of values recorded for one metric, skipping
// epochs where it was absent.
func (h *History) Metric(name string) []float64 {
	var series []float64
	for _, record := range h.records {
		if value, ok := record.Logs[name]; ok {
			series = append(series, value)
		}
	}
	return series
}

// MetricSummary describes one metric across a run
type MetricSummary struct {
	Count int
	Mean  float64
	Std   float64
	Min   float64
	Max   float64
}

// Summarize computes summary statistics for one metric across the run.
func (h *History) Summarize(name string) (MetricSummary, error) {
	series := h.Metric(name)
	if len(series) == 0 {
		return MetricSummary{}, fmt.Errorf("no values recorded for metric %q", name)
	}

	return MetricSummary{
		Count: len(series),
		Mean:  stat.Mean(series, nil),
		Std:   stat.StdDev(series, nil),
		Min:   floats.Min(series),
		Max:   floats.Max(series),
	}, nil
}
