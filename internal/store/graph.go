package store

import (
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// The typed tables below all follow the same shape: each row extends an
// element (or references one), and each table offers New, Get, Update,
// Delete, List, and Find. Find lists the table and filters in memory; the
// tables are small enough that pushing predicates into SQL buys nothing.
//
// Delete takes a cascade flag. With cascade the whole element is removed
// and every facet goes with it; without it only the typed row is deleted
// and the bare element row stays behind.

// ---- node ----

// NewNode allocates an element and inserts a node row for it.
func (d *Database) NewNode(kind NodeKind, serializedName string) (Node, error) {
	elem, err := d.NewElement()
	if err != nil {
		return Node{}, err
	}
	_, err = d.exec(
		"INSERT INTO node (id, type, serialized_name, color, hover_display) VALUES (?, ?, ?, NULL, NULL)",
		elem.ID, kind, serializedName,
	)
	if err != nil {
		return Node{}, fmt.Errorf("inserting node: %w", err)
	}
	d.logger.Debug("node created",
		zap.Int64("id", int64(elem.ID)),
		zap.Int("kind", int(kind)),
		zap.String("name", serializedName))
	return Node{ID: elem.ID, Kind: kind, SerializedName: serializedName}, nil
}

// GetNode returns the node with the given id.
func (d *Database) GetNode(id ElementID) (Node, error) {
	row, err := d.queryRow(
		"SELECT id, type, serialized_name, COALESCE(color, ''), COALESCE(hover_display, '') FROM node WHERE id = ?",
		id,
	)
	if err != nil {
		return Node{}, err
	}
	return scanNodeRow(row, fmt.Sprintf("node %d", id))
}

// GetNodeBySerializedName returns the node carrying exactly this
// serialized name. Used for dedup lookups before creating a node.
func (d *Database) GetNodeBySerializedName(serializedName string) (Node, error) {
	row, err := d.queryRow(
		"SELECT id, type, serialized_name, COALESCE(color, ''), COALESCE(hover_display, '') FROM node WHERE serialized_name = ?",
		serializedName,
	)
	if err != nil {
		return Node{}, err
	}
	return scanNodeRow(row, fmt.Sprintf("node %q", serializedName))
}

// UpdateNode rewrites the typed columns of the node row.
func (d *Database) UpdateNode(n Node) error {
	_, err := d.exec(
		"UPDATE node SET type = ?, serialized_name = ?, color = ?, hover_display = ? WHERE id = ?",
		n.Kind, n.SerializedName, nullable(n.Color), nullable(n.HoverDisplay), n.ID,
	)
	if err != nil {
		return fmt.Errorf("updating node %d: %w", n.ID, err)
	}
	return nil
}

// DeleteNode removes the node row; with cascade it removes the element and
// everything hanging off it (edges, symbol, file rows, occurrences).
func (d *Database) DeleteNode(id ElementID, cascade bool) error {
	if cascade {
		return d.DeleteElement(id)
	}
	if _, err := d.exec("DELETE FROM node WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting node %d: %w", id, err)
	}
	return nil
}

// ListNodes returns every node row.
func (d *Database) ListNodes() ([]Node, error) {
	rows, err := d.query(
		"SELECT id, type, serialized_name, COALESCE(color, ''), COALESCE(hover_display, '') FROM node")
	if err != nil {
		return nil, fmt.Errorf("listing nodes: %w", err)
	}
	defer rows.Close()

	var nodes []Node
	for rows.Next() {
		var n Node
		if err := rows.Scan(&n.ID, &n.Kind, &n.SerializedName, &n.Color, &n.HoverDisplay); err != nil {
			return nil, fmt.Errorf("scanning node: %w", err)
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// FindNodes returns the nodes matching the predicate.
func (d *Database) FindNodes(pred func(Node) bool) ([]Node, error) {
	nodes, err := d.ListNodes()
	if err != nil {
		return nil, err
	}
	var out []Node
	for _, n := range nodes {
		if pred(n) {
			out = append(out, n)
		}
	}
	return out, nil
}

func scanNodeRow(row *sql.Row, what string) (Node, error) {
	var n Node
	err := row.Scan(&n.ID, &n.Kind, &n.SerializedName, &n.Color, &n.HoverDisplay)
	if errors.Is(err, sql.ErrNoRows) {
		return Node{}, fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	if err != nil {
		return Node{}, fmt.Errorf("scanning %s: %w", what, err)
	}
	return n, nil
}

// ---- edge ----

// NewEdge allocates an element of its own for the edge, independent of
// both endpoints, and inserts the edge row.
func (d *Database) NewEdge(kind EdgeKind, source, target ElementID) (Edge, error) {
	elem, err := d.NewElement()
	if err != nil {
		return Edge{}, err
	}
	_, err = d.exec(
		"INSERT INTO edge (id, type, source_node_id, target_node_id, color, hover_display) VALUES (?, ?, ?, ?, NULL, NULL)",
		elem.ID, kind, source, target,
	)
	if err != nil {
		return Edge{}, fmt.Errorf("inserting edge: %w", err)
	}
	d.logger.Debug("edge created",
		zap.Int64("id", int64(elem.ID)),
		zap.Int("kind", int(kind)),
		zap.Int64("source", int64(source)),
		zap.Int64("target", int64(target)))
	return Edge{ID: elem.ID, Kind: kind, SourceNodeID: source, TargetNodeID: target}, nil
}

// GetEdge returns the edge with the given id.
func (d *Database) GetEdge(id ElementID) (Edge, error) {
	row, err := d.queryRow(
		"SELECT id, type, source_node_id, target_node_id, COALESCE(color, ''), COALESCE(hover_display, '') FROM edge WHERE id = ?",
		id,
	)
	if err != nil {
		return Edge{}, err
	}
	var e Edge
	err = row.Scan(&e.ID, &e.Kind, &e.SourceNodeID, &e.TargetNodeID, &e.Color, &e.HoverDisplay)
	if errors.Is(err, sql.ErrNoRows) {
		return Edge{}, fmt.Errorf("edge %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Edge{}, fmt.Errorf("scanning edge %d: %w", id, err)
	}
	return e, nil
}

// UpdateEdge rewrites the typed columns of the edge row.
func (d *Database) UpdateEdge(e Edge) error {
	_, err := d.exec(
		"UPDATE edge SET type = ?, source_node_id = ?, target_node_id = ?, color = ?, hover_display = ? WHERE id = ?",
		e.Kind, e.SourceNodeID, e.TargetNodeID, nullable(e.Color), nullable(e.HoverDisplay), e.ID,
	)
	if err != nil {
		return fmt.Errorf("updating edge %d: %w", e.ID, err)
	}
	return nil
}

// DeleteEdge removes the edge row, or the whole element with cascade.
func (d *Database) DeleteEdge(id ElementID, cascade bool) error {
	if cascade {
		return d.DeleteElement(id)
	}
	if _, err := d.exec("DELETE FROM edge WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting edge %d: %w", id, err)
	}
	return nil
}

// ListEdges returns every edge row.
func (d *Database) ListEdges() ([]Edge, error) {
	rows, err := d.query(
		"SELECT id, type, source_node_id, target_node_id, COALESCE(color, ''), COALESCE(hover_display, '') FROM edge")
	if err != nil {
		return nil, fmt.Errorf("listing edges: %w", err)
	}
	defer rows.Close()

	var edges []Edge
	for rows.Next() {
		var e Edge
		if err := rows.Scan(&e.ID, &e.Kind, &e.SourceNodeID, &e.TargetNodeID, &e.Color, &e.HoverDisplay); err != nil {
			return nil, fmt.Errorf("scanning edge: %w", err)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// FindEdges returns the edges matching the predicate.
func (d *Database) FindEdges(pred func(Edge) bool) ([]Edge, error) {
	edges, err := d.ListEdges()
	if err != nil {
		return nil, err
	}
	var out []Edge
	for _, e := range edges {
		if pred(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// ---- symbol ----

// NewSymbol marks the node as a definition. A node carries at most one
// symbol row; a second insert returns ErrDuplicateSymbol.
func (d *Database) NewSymbol(kind DefinitionKind, nodeID ElementID) (Symbol, error) {
	if _, err := d.GetSymbol(nodeID); err == nil {
		return Symbol{}, fmt.Errorf("node %d: %w", nodeID, ErrDuplicateSymbol)
	} else if !errors.Is(err, ErrNotFound) {
		return Symbol{}, err
	}
	_, err := d.exec("INSERT INTO symbol (id, definition_kind) VALUES (?, ?)", nodeID, kind)
	if err != nil {
		return Symbol{}, fmt.Errorf("inserting symbol for node %d: %w", nodeID, err)
	}
	return Symbol{ID: nodeID, DefinitionKind: kind}, nil
}

// GetSymbol returns the symbol row attached to the node.
func (d *Database) GetSymbol(nodeID ElementID) (Symbol, error) {
	row, err := d.queryRow("SELECT id, definition_kind FROM symbol WHERE id = ?", nodeID)
	if err != nil {
		return Symbol{}, err
	}
	var s Symbol
	err = row.Scan(&s.ID, &s.DefinitionKind)
	if errors.Is(err, sql.ErrNoRows) {
		return Symbol{}, fmt.Errorf("symbol %d: %w", nodeID, ErrNotFound)
	}
	if err != nil {
		return Symbol{}, fmt.Errorf("scanning symbol %d: %w", nodeID, err)
	}
	return s, nil
}

// UpdateSymbol rewrites the definition kind.
func (d *Database) UpdateSymbol(s Symbol) error {
	_, err := d.exec("UPDATE symbol SET definition_kind = ? WHERE id = ?", s.DefinitionKind, s.ID)
	if err != nil {
		return fmt.Errorf("updating symbol %d: %w", s.ID, err)
	}
	return nil
}

// DeleteSymbol removes the symbol row, or the whole element with cascade.
func (d *Database) DeleteSymbol(nodeID ElementID, cascade bool) error {
	if cascade {
		return d.DeleteElement(nodeID)
	}
	if _, err := d.exec("DELETE FROM symbol WHERE id = ?", nodeID); err != nil {
		return fmt.Errorf("deleting symbol %d: %w", nodeID, err)
	}
	return nil
}

// ListSymbols returns every symbol row.
func (d *Database) ListSymbols() ([]Symbol, error) {
	rows, err := d.query("SELECT id, definition_kind FROM symbol")
	if err != nil {
		return nil, fmt.Errorf("listing symbols: %w", err)
	}
	defer rows.Close()

	var symbols []Symbol
	for rows.Next() {
		var s Symbol
		if err := rows.Scan(&s.ID, &s.DefinitionKind); err != nil {
			return nil, fmt.Errorf("scanning symbol: %w", err)
		}
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}

// FindSymbols returns the symbols matching the predicate.
func (d *Database) FindSymbols(pred func(Symbol) bool) ([]Symbol, error) {
	symbols, err := d.ListSymbols()
	if err != nil {
		return nil, err
	}
	var out []Symbol
	for _, s := range symbols {
		if pred(s) {
			out = append(out, s)
		}
	}
	return out, nil
}

// ---- element_component ----

// NewElementComponent attaches component data to an element. The row gets
// a rowid of its own; it is not an element.
func (d *Database) NewElementComponent(elementID ElementID, kind ComponentKind, data string) (ElementComponent, error) {
	res, err := d.exec(
		"INSERT INTO element_component (id, element_id, type, data) VALUES (NULL, ?, ?, ?)",
		elementID, kind, data,
	)
	if err != nil {
		return ElementComponent{}, fmt.Errorf("inserting element component: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return ElementComponent{}, fmt.Errorf("reading element component id: %w", err)
	}
	return ElementComponent{ID: ElementID(id), ElementID: elementID, Kind: kind, Data: data}, nil
}

// GetElementComponents returns the components attached to an element.
func (d *Database) GetElementComponents(elementID ElementID) ([]ElementComponent, error) {
	rows, err := d.query(
		"SELECT id, element_id, type, COALESCE(data, '') FROM element_component WHERE element_id = ?",
		elementID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying components of element %d: %w", elementID, err)
	}
	defer rows.Close()

	var comps []ElementComponent
	for rows.Next() {
		var c ElementComponent
		if err := rows.Scan(&c.ID, &c.ElementID, &c.Kind, &c.Data); err != nil {
			return nil, fmt.Errorf("scanning element component: %w", err)
		}
		comps = append(comps, c)
	}
	return comps, rows.Err()
}

// DeleteElementComponent removes one component row by its own id.
func (d *Database) DeleteElementComponent(id ElementID) error {
	if _, err := d.exec("DELETE FROM element_component WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting element component %d: %w", id, err)
	}
	return nil
}

// ---- file ----

// NewFile extends a node of kind NodeKindFile with file metadata. The id
// must be an existing node id.
func (d *Database) NewFile(f File) error {
	_, err := d.exec(
		"INSERT INTO file (id, path, language, modification_time, indexed, complete, line_count) VALUES (?, ?, ?, ?, ?, ?, ?)",
		f.ID, f.Path, f.Language, f.ModificationTime, f.Indexed, f.Complete, f.LineCount,
	)
	if err != nil {
		return fmt.Errorf("inserting file %q: %w", f.Path, err)
	}
	return nil
}

// GetFile returns the file row extending the given node.
func (d *Database) GetFile(id ElementID) (File, error) {
	row, err := d.queryRow(
		"SELECT id, path, COALESCE(language, ''), modification_time, indexed, complete, line_count FROM file WHERE id = ?",
		id,
	)
	if err != nil {
		return File{}, err
	}
	var f File
	err = row.Scan(&f.ID, &f.Path, &f.Language, &f.ModificationTime, &f.Indexed, &f.Complete, &f.LineCount)
	if errors.Is(err, sql.ErrNoRows) {
		return File{}, fmt.Errorf("file %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return File{}, fmt.Errorf("scanning file %d: %w", id, err)
	}
	return f, nil
}

// UpdateFile rewrites the file metadata columns.
func (d *Database) UpdateFile(f File) error {
	_, err := d.exec(
		"UPDATE file SET path = ?, language = ?, modification_time = ?, indexed = ?, complete = ?, line_count = ? WHERE id = ?",
		f.Path, f.Language, f.ModificationTime, f.Indexed, f.Complete, f.LineCount, f.ID,
	)
	if err != nil {
		return fmt.Errorf("updating file %d: %w", f.ID, err)
	}
	return nil
}

// DeleteFile removes the file row, or the whole element with cascade.
func (d *Database) DeleteFile(id ElementID, cascade bool) error {
	if cascade {
		return d.DeleteElement(id)
	}
	if _, err := d.exec("DELETE FROM file WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting file %d: %w", id, err)
	}
	return nil
}

// ListFiles returns every file row.
func (d *Database) ListFiles() ([]File, error) {
	rows, err := d.query(
		"SELECT id, path, COALESCE(language, ''), modification_time, indexed, complete, line_count FROM file")
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}
	defer rows.Close()

	var files []File
	for rows.Next() {
		var f File
		if err := rows.Scan(&f.ID, &f.Path, &f.Language, &f.ModificationTime, &f.Indexed, &f.Complete, &f.LineCount); err != nil {
			return nil, fmt.Errorf("scanning file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// FindFiles returns the files matching the predicate.
func (d *Database) FindFiles(pred func(File) bool) ([]File, error) {
	files, err := d.ListFiles()
	if err != nil {
		return nil, err
	}
	var out []File
	for _, f := range files {
		if pred(f) {
			out = append(out, f)
		}
	}
	return out, nil
}

// ---- filecontent ----

// NewFileContent stores the full text of a file, keyed by the file id.
func (d *Database) NewFileContent(id ElementID, content string) error {
	if _, err := d.exec("INSERT INTO filecontent (id, content) VALUES (?, ?)", id, content); err != nil {
		return fmt.Errorf("inserting filecontent %d: %w", id, err)
	}
	return nil
}

// GetFileContent returns the stored text of a file.
func (d *Database) GetFileContent(id ElementID) (FileContent, error) {
	row, err := d.queryRow("SELECT id, content FROM filecontent WHERE id = ?", id)
	if err != nil {
		return FileContent{}, err
	}
	var fc FileContent
	err = row.Scan(&fc.ID, &fc.Content)
	if errors.Is(err, sql.ErrNoRows) {
		return FileContent{}, fmt.Errorf("filecontent %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return FileContent{}, fmt.Errorf("scanning filecontent %d: %w", id, err)
	}
	return fc, nil
}

// UpdateFileContent replaces the stored text of a file.
func (d *Database) UpdateFileContent(fc FileContent) error {
	_, err := d.exec("UPDATE filecontent SET content = ? WHERE id = ?", fc.Content, fc.ID)
	if err != nil {
		return fmt.Errorf("updating filecontent %d: %w", fc.ID, err)
	}
	return nil
}

// DeleteFileContent removes the stored text of a file.
func (d *Database) DeleteFileContent(id ElementID) error {
	if _, err := d.exec("DELETE FROM filecontent WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting filecontent %d: %w", id, err)
	}
	return nil
}

// ---- local_symbol ----

// NewLocalSymbol allocates an element for a scope-local name.
func (d *Database) NewLocalSymbol(name string) (LocalSymbol, error) {
	elem, err := d.NewElement()
	if err != nil {
		return LocalSymbol{}, err
	}
	if _, err := d.exec("INSERT INTO local_symbol (id, name) VALUES (?, ?)", elem.ID, name); err != nil {
		return LocalSymbol{}, fmt.Errorf("inserting local symbol: %w", err)
	}
	return LocalSymbol{ID: elem.ID, Name: name}, nil
}

// GetLocalSymbol returns the local symbol with the given id.
func (d *Database) GetLocalSymbol(id ElementID) (LocalSymbol, error) {
	row, err := d.queryRow("SELECT id, name FROM local_symbol WHERE id = ?", id)
	if err != nil {
		return LocalSymbol{}, err
	}
	var ls LocalSymbol
	err = row.Scan(&ls.ID, &ls.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return LocalSymbol{}, fmt.Errorf("local symbol %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return LocalSymbol{}, fmt.Errorf("scanning local symbol %d: %w", id, err)
	}
	return ls, nil
}

// GetLocalSymbolByName returns the local symbol with exactly this name.
// Used for dedup before allocating a new one.
func (d *Database) GetLocalSymbolByName(name string) (LocalSymbol, error) {
	row, err := d.queryRow("SELECT id, name FROM local_symbol WHERE name = ?", name)
	if err != nil {
		return LocalSymbol{}, err
	}
	var ls LocalSymbol
	err = row.Scan(&ls.ID, &ls.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return LocalSymbol{}, fmt.Errorf("local symbol %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return LocalSymbol{}, fmt.Errorf("scanning local symbol %q: %w", name, err)
	}
	return ls, nil
}

// DeleteLocalSymbol removes the local symbol row, or the whole element
// with cascade.
func (d *Database) DeleteLocalSymbol(id ElementID, cascade bool) error {
	if cascade {
		return d.DeleteElement(id)
	}
	if _, err := d.exec("DELETE FROM local_symbol WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting local symbol %d: %w", id, err)
	}
	return nil
}

// ---- component_access ----

// NewComponentAccess records the visibility of a node.
func (d *Database) NewComponentAccess(nodeID ElementID, kind AccessKind) error {
	if _, err := d.exec("INSERT INTO component_access (node_id, type) VALUES (?, ?)", nodeID, kind); err != nil {
		return fmt.Errorf("inserting component access for node %d: %w", nodeID, err)
	}
	return nil
}

// GetComponentAccess returns the visibility recorded for a node.
func (d *Database) GetComponentAccess(nodeID ElementID) (ComponentAccess, error) {
	row, err := d.queryRow("SELECT node_id, type FROM component_access WHERE node_id = ?", nodeID)
	if err != nil {
		return ComponentAccess{}, err
	}
	var ca ComponentAccess
	err = row.Scan(&ca.NodeID, &ca.Kind)
	if errors.Is(err, sql.ErrNoRows) {
		return ComponentAccess{}, fmt.Errorf("component access %d: %w", nodeID, ErrNotFound)
	}
	if err != nil {
		return ComponentAccess{}, fmt.Errorf("scanning component access %d: %w", nodeID, err)
	}
	return ca, nil
}

// UpdateComponentAccess rewrites the visibility of a node.
func (d *Database) UpdateComponentAccess(ca ComponentAccess) error {
	_, err := d.exec("UPDATE component_access SET type = ? WHERE node_id = ?", ca.Kind, ca.NodeID)
	if err != nil {
		return fmt.Errorf("updating component access %d: %w", ca.NodeID, err)
	}
	return nil
}

// DeleteComponentAccess removes the visibility row of a node.
func (d *Database) DeleteComponentAccess(nodeID ElementID) error {
	if _, err := d.exec("DELETE FROM component_access WHERE node_id = ?", nodeID); err != nil {
		return fmt.Errorf("deleting component access %d: %w", nodeID, err)
	}
	return nil
}

// ---- error ----

// NewError allocates an element for an indexer diagnostic.
func (d *Database) NewError(message string, fatal, indexed bool, translationUnit string) (Error, error) {
	elem, err := d.NewElement()
	if err != nil {
		return Error{}, err
	}
	_, err = d.exec(
		"INSERT INTO error (id, message, fatal, indexed, translation_unit) VALUES (?, ?, ?, ?, ?)",
		elem.ID, message, fatal, indexed, translationUnit,
	)
	if err != nil {
		return Error{}, fmt.Errorf("inserting error: %w", err)
	}
	return Error{ID: elem.ID, Message: message, Fatal: fatal, Indexed: indexed, TranslationUnit: translationUnit}, nil
}

// GetError returns the diagnostic with the given id.
func (d *Database) GetError(id ElementID) (Error, error) {
	row, err := d.queryRow(
		"SELECT id, message, fatal, indexed, COALESCE(translation_unit, '') FROM error WHERE id = ?",
		id,
	)
	if err != nil {
		return Error{}, err
	}
	var e Error
	err = row.Scan(&e.ID, &e.Message, &e.Fatal, &e.Indexed, &e.TranslationUnit)
	if errors.Is(err, sql.ErrNoRows) {
		return Error{}, fmt.Errorf("error %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Error{}, fmt.Errorf("scanning error %d: %w", id, err)
	}
	return e, nil
}

// ListErrors returns every recorded diagnostic.
func (d *Database) ListErrors() ([]Error, error) {
	rows, err := d.query("SELECT id, message, fatal, indexed, COALESCE(translation_unit, '') FROM error")
	if err != nil {
		return nil, fmt.Errorf("listing errors: %w", err)
	}
	defer rows.Close()

	var errs []Error
	for rows.Next() {
		var e Error
		if err := rows.Scan(&e.ID, &e.Message, &e.Fatal, &e.Indexed, &e.TranslationUnit); err != nil {
			return nil, fmt.Errorf("scanning error: %w", err)
		}
		errs = append(errs, e)
	}
	return errs, rows.Err()
}

// DeleteError removes the diagnostic row, or the whole element with
// cascade.
func (d *Database) DeleteError(id ElementID, cascade bool) error {
	if cascade {
		return d.DeleteElement(id)
	}
	if _, err := d.exec("DELETE FROM error WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting error %d: %w", id, err)
	}
	return nil
}
