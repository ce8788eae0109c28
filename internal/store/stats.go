package store

import "fmt"

// Stats holds per-table row counts for a project database.
type Stats struct {
	ElementCount        int `json:"element_count"`
	NodeCount           int `json:"node_count"`
	EdgeCount           int `json:"edge_count"`
	SymbolCount         int `json:"symbol_count"`
	FileCount           int `json:"file_count"`
	LocalSymbolCount    int `json:"local_symbol_count"`
	SourceLocationCount int `json:"source_location_count"`
	OccurrenceCount     int `json:"occurrence_count"`
	ErrorCount          int `json:"error_count"`
}

// GetStats counts the rows of every table that carries recorded data.
func (d *Database) GetStats() (*Stats, error) {
	stats := &Stats{}

	rows := []struct {
		table string
		dest  *int
	}{
		{"element", &stats.ElementCount},
		{"node", &stats.NodeCount},
		{"edge", &stats.EdgeCount},
		{"symbol", &stats.SymbolCount},
		{"file", &stats.FileCount},
		{"local_symbol", &stats.LocalSymbolCount},
		{"source_location", &stats.SourceLocationCount},
		{"occurrence", &stats.OccurrenceCount},
		{"error", &stats.ErrorCount},
	}

	for _, r := range rows {
		row, err := d.queryRow("SELECT COUNT(*) FROM " + r.table)
		if err != nil {
			return nil, err
		}
		if err := row.Scan(r.dest); err != nil {
			return nil, fmt.Errorf("counting %s: %w", r.table, err)
		}
	}

	return stats, nil
}
