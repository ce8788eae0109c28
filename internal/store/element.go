package store

import (
	"fmt"

	"go.uber.org/zap"
)

// NewElement allocates a fresh element id. Ids are sqlite rowids: non-zero,
// unique, and monotonically increasing within a session.
func (d *Database) NewElement() (Element, error) {
	res, err := d.exec("INSERT INTO element (id) VALUES (NULL)")
	if err != nil {
		return Element{}, fmt.Errorf("inserting element: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Element{}, fmt.Errorf("reading element id: %w", err)
	}
	d.logger.Debug("element allocated", zap.Int64("id", id))
	return Element{ID: ElementID(id)}, nil
}

// GetElement returns the element row with the given id. ErrNotFound when no
// row matches, ErrAmbiguous when more than one does.
func (d *Database) GetElement(id ElementID) (Element, error) {
	rows, err := d.query("SELECT id FROM element WHERE id = ?", id)
	if err != nil {
		return Element{}, fmt.Errorf("querying element %d: %w", id, err)
	}
	defer rows.Close()

	var elems []Element
	for rows.Next() {
		var e Element
		if err := rows.Scan(&e.ID); err != nil {
			return Element{}, fmt.Errorf("scanning element: %w", err)
		}
		elems = append(elems, e)
	}
	if err := rows.Err(); err != nil {
		return Element{}, err
	}
	switch len(elems) {
	case 0:
		return Element{}, fmt.Errorf("element %d: %w", id, ErrNotFound)
	case 1:
		return elems[0], nil
	default:
		return Element{}, fmt.Errorf("element %d: %w", id, ErrAmbiguous)
	}
}

// UpdateElement is a no-op. An element row carries nothing but its id, so
// there is nothing to update; the method exists for interface symmetry with
// the typed tables.
func (d *Database) UpdateElement(e Element) error {
	return nil
}

// DeleteElement removes the element row. Foreign keys cascade, so every
// typed row extending or referencing the element goes with it.
func (d *Database) DeleteElement(id ElementID) error {
	if _, err := d.exec("DELETE FROM element WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting element %d: %w", id, err)
	}
	return nil
}
