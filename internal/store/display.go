package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// defaultNodeDisplays are the node_type rows written at creation time: the
// labels the viewer uses for each node kind. Kinds with an empty graph
// display are never bundled in the overview graph.
var defaultNodeDisplays = []NodeDisplay{
	{NodeKindSymbol, "Symbols", "symbol"},
	{NodeKindType, "Types", "type"},
	{NodeKindBuiltinType, "", "built-in type"},
	{NodeKindModule, "Modules", "module"},
	{NodeKindNamespace, "Namespaces", "namespace"},
	{NodeKindPackage, "Packages", "package"},
	{NodeKindStruct, "Structs", "struct"},
	{NodeKindClass, "Classes", "class"},
	{NodeKindInterface, "Interfaces", "interface"},
	{NodeKindAnnotation, "Annotations", "annotation"},
	{NodeKindGlobalVariable, "Global variables", "global variable"},
	{NodeKindField, "", "field"},
	{NodeKindFunction, "Functions", "function"},
	{NodeKindMethod, "", "method"},
	{NodeKindEnum, "Enums", "enum"},
	{NodeKindEnumConstant, "", "enum constant"},
	{NodeKindTypedef, "Typedefs", "typedef"},
	{NodeKindTypeParameter, "Type parameters", "type parameter"},
	{NodeKindFile, "Files", "file"},
	{NodeKindMacro, "Macros", "macro"},
	{NodeKindUnion, "Unions", "union"},
}

// GetNodeDisplay returns the display labels for a node kind.
func (d *Database) GetNodeDisplay(kind NodeKind) (NodeDisplay, error) {
	row, err := d.queryRow(
		"SELECT id, COALESCE(graph_display, ''), COALESCE(hover_display, '') FROM node_type WHERE id = ?",
		kind,
	)
	if err != nil {
		return NodeDisplay{}, err
	}
	var nd NodeDisplay
	err = row.Scan(&nd.ID, &nd.GraphDisplay, &nd.HoverDisplay)
	if errors.Is(err, sql.ErrNoRows) {
		return NodeDisplay{}, fmt.Errorf("node_type %d: %w", kind, ErrNotFound)
	}
	if err != nil {
		return NodeDisplay{}, fmt.Errorf("scanning node_type %d: %w", kind, err)
	}
	return nd, nil
}

// ListNodeDisplays returns every node_type row.
func (d *Database) ListNodeDisplays() ([]NodeDisplay, error) {
	rows, err := d.query(
		"SELECT id, COALESCE(graph_display, ''), COALESCE(hover_display, '') FROM node_type ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing node_type: %w", err)
	}
	defer rows.Close()

	var displays []NodeDisplay
	for rows.Next() {
		var nd NodeDisplay
		if err := rows.Scan(&nd.ID, &nd.GraphDisplay, &nd.HoverDisplay); err != nil {
			return nil, fmt.Errorf("scanning node_type: %w", err)
		}
		displays = append(displays, nd)
	}
	return displays, rows.Err()
}

// UpdateNodeDisplay rewrites the labels for a node kind.
func (d *Database) UpdateNodeDisplay(nd NodeDisplay) error {
	_, err := d.exec(
		"UPDATE node_type SET graph_display = ?, hover_display = ? WHERE id = ?",
		nd.GraphDisplay, nd.HoverDisplay, nd.ID,
	)
	if err != nil {
		return fmt.Errorf("updating node_type %d: %w", nd.ID, err)
	}
	return nil
}

// ResetNodeDisplays restores the default labels for every node kind.
func (d *Database) ResetNodeDisplays() error {
	if _, err := d.exec("DELETE FROM node_type"); err != nil {
		return fmt.Errorf("clearing node_type: %w", err)
	}
	for _, nd := range defaultNodeDisplays {
		_, err := d.exec(
			"INSERT INTO node_type (id, graph_display, hover_display) VALUES (?, ?, ?)",
			nd.ID, nd.GraphDisplay, nd.HoverDisplay,
		)
		if err != nil {
			return fmt.Errorf("restoring node_type %d: %w", nd.ID, err)
		}
	}
	return nil
}
