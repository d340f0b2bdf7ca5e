package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/navtrace/internal/analysis"
	"github.com/san-kum/navtrace/internal/trace"
)

type StatsExport struct {
	Name      string           `json:"name"`
	Kind      string           `json:"kind"`
	Summary   analysis.Summary `json:"summary"`
	Occupancy []float64        `json:"occupancy"`
	Presence  []float64        `json:"presence"`
	Warnings  []trace.Warning  `json:"warnings"`
}

// ExportStats writes the analysis of tr as indented JSON.
func ExportStats(w io.Writer, name string, tr *trace.Trace) error {
	data := StatsExport{
		Name:      name,
		Kind:      tr.Kind().String(),
		Summary:   analysis.Summarize(tr),
		Occupancy: analysis.OccupancySeries(tr),
		Presence:  analysis.PresenceSeries(tr),
		Warnings:  tr.Warnings(),
	}
	if data.Warnings == nil {
		data.Warnings = []trace.Warning{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
