package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// NewSourceLocation records a range inside a file node. Source locations
// are plain rowids, not elements; they are tied to the graph through
// occurrence rows and through the file node cascade.
func (d *Database) NewSourceLocation(fileNodeID ElementID, startLine, startColumn, endLine, endColumn int, kind LocationKind) (SourceLocation, error) {
	res, err := d.exec(
		"INSERT INTO source_location (id, file_node_id, start_line, start_column, end_line, end_column, type) VALUES (NULL, ?, ?, ?, ?, ?, ?)",
		fileNodeID, startLine, startColumn, endLine, endColumn, kind,
	)
	if err != nil {
		return SourceLocation{}, fmt.Errorf("inserting source location: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return SourceLocation{}, fmt.Errorf("reading source location id: %w", err)
	}
	return SourceLocation{
		ID:          ElementID(id),
		FileNodeID:  fileNodeID,
		StartLine:   startLine,
		StartColumn: startColumn,
		EndLine:     endLine,
		EndColumn:   endColumn,
		Kind:        kind,
	}, nil
}

// GetSourceLocation returns the location with the given id.
func (d *Database) GetSourceLocation(id ElementID) (SourceLocation, error) {
	row, err := d.queryRow(
		"SELECT id, file_node_id, start_line, start_column, end_line, end_column, type FROM source_location WHERE id = ?",
		id,
	)
	if err != nil {
		return SourceLocation{}, err
	}
	var loc SourceLocation
	err = row.Scan(&loc.ID, &loc.FileNodeID, &loc.StartLine, &loc.StartColumn, &loc.EndLine, &loc.EndColumn, &loc.Kind)
	if errors.Is(err, sql.ErrNoRows) {
		return SourceLocation{}, fmt.Errorf("source location %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return SourceLocation{}, fmt.Errorf("scanning source location %d: %w", id, err)
	}
	return loc, nil
}

// ListSourceLocations returns every location recorded for a file node.
func (d *Database) ListSourceLocations(fileNodeID ElementID) ([]SourceLocation, error) {
	rows, err := d.query(
		"SELECT id, file_node_id, start_line, start_column, end_line, end_column, type FROM source_location WHERE file_node_id = ?",
		fileNodeID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing source locations of file %d: %w", fileNodeID, err)
	}
	defer rows.Close()

	var locs []SourceLocation
	for rows.Next() {
		var loc SourceLocation
		if err := rows.Scan(&loc.ID, &loc.FileNodeID, &loc.StartLine, &loc.StartColumn, &loc.EndLine, &loc.EndColumn, &loc.Kind); err != nil {
			return nil, fmt.Errorf("scanning source location: %w", err)
		}
		locs = append(locs, loc)
	}
	return locs, rows.Err()
}

// DeleteSourceLocation removes the location row. Occurrence rows pointing
// at it cascade away.
func (d *Database) DeleteSourceLocation(id ElementID) error {
	if _, err := d.exec("DELETE FROM source_location WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting source location %d: %w", id, err)
	}
	return nil
}

// NewOccurrence joins an element to a source location.
func (d *Database) NewOccurrence(elementID, sourceLocationID ElementID) (Occurrence, error) {
	_, err := d.exec(
		"INSERT INTO occurrence (element_id, source_location_id) VALUES (?, ?)",
		elementID, sourceLocationID,
	)
	if err != nil {
		return Occurrence{}, fmt.Errorf("inserting occurrence: %w", err)
	}
	return Occurrence{ElementID: elementID, SourceLocationID: sourceLocationID}, nil
}

// ListOccurrences returns every occurrence of an element.
func (d *Database) ListOccurrences(elementID ElementID) ([]Occurrence, error) {
	rows, err := d.query(
		"SELECT element_id, source_location_id FROM occurrence WHERE element_id = ?",
		elementID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing occurrences of element %d: %w", elementID, err)
	}
	defer rows.Close()

	var occs []Occurrence
	for rows.Next() {
		var o Occurrence
		if err := rows.Scan(&o.ElementID, &o.SourceLocationID); err != nil {
			return nil, fmt.Errorf("scanning occurrence: %w", err)
		}
		occs = append(occs, o)
	}
	return occs, rows.Err()
}

// DeleteOccurrence removes the join row. With cascade it also deletes the
// referenced element and the source location.
func (d *Database) DeleteOccurrence(o Occurrence, cascade bool) error {
	if _, err := d.exec(
		"DELETE FROM occurrence WHERE element_id = ? AND source_location_id = ?",
		o.ElementID, o.SourceLocationID,
	); err != nil {
		return fmt.Errorf("deleting occurrence (%d, %d): %w", o.ElementID, o.SourceLocationID, err)
	}
	if !cascade {
		return nil
	}
	if err := d.DeleteElement(o.ElementID); err != nil {
		return err
	}
	return d.DeleteSourceLocation(o.SourceLocationID)
}
