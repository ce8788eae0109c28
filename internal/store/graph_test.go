package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeRoundTrip(t *testing.T) {
	d := newTestDB(t)

	n, err := d.NewNode(NodeKindClass, "::\tmWidget\ts\tp")
	require.NoError(t, err)
	require.NotZero(t, n.ID)

	got, err := d.GetNode(n.ID)
	require.NoError(t, err)
	assert.Equal(t, n, got)

	byName, err := d.GetNodeBySerializedName("::\tmWidget\ts\tp")
	require.NoError(t, err)
	assert.Equal(t, n.ID, byName.ID)

	_, err = d.GetNodeBySerializedName("::\tmNoSuch\ts\tp")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateNode(t *testing.T) {
	d := newTestDB(t)

	n, err := d.NewNode(NodeKindStruct, "before")
	require.NoError(t, err)

	n.Kind = NodeKindClass
	n.SerializedName = "after"
	n.HoverDisplay = "a class"
	require.NoError(t, d.UpdateNode(n))

	got, err := d.GetNode(n.ID)
	require.NoError(t, err)
	assert.Equal(t, NodeKindClass, got.Kind)
	assert.Equal(t, "after", got.SerializedName)
	assert.Equal(t, "a class", got.HoverDisplay)
}

func TestDeleteNodeWithoutCascadeLeavesElement(t *testing.T) {
	d := newTestDB(t)

	n, err := d.NewNode(NodeKindClass, "orphaning")
	require.NoError(t, err)

	require.NoError(t, d.DeleteNode(n.ID, false))

	_, err = d.GetNode(n.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// The bare element row stays behind.
	_, err = d.GetElement(n.ID)
	assert.NoError(t, err)
}

func TestDeleteNodeCascadeRemovesIncidentEdges(t *testing.T) {
	d := newTestDB(t)

	a, err := d.NewNode(NodeKindNamespace, "a")
	require.NoError(t, err)
	b, err := d.NewNode(NodeKindClass, "b")
	require.NoError(t, err)
	e, err := d.NewEdge(EdgeKindMember, a.ID, b.ID)
	require.NoError(t, err)

	require.NoError(t, d.DeleteNode(b.ID, true))

	_, err = d.GetEdge(e.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = d.GetNode(a.ID)
	assert.NoError(t, err)
}

func TestNewEdgeAllocatesOwnElement(t *testing.T) {
	d := newTestDB(t)

	a, err := d.NewNode(NodeKindNamespace, "src")
	require.NoError(t, err)
	b, err := d.NewNode(NodeKindClass, "dst")
	require.NoError(t, err)

	e, err := d.NewEdge(EdgeKindMember, a.ID, b.ID)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, e.ID)
	assert.NotEqual(t, b.ID, e.ID)

	got, err := d.GetEdge(e.ID)
	require.NoError(t, err)
	assert.Equal(t, EdgeKindMember, got.Kind)
	assert.Equal(t, a.ID, got.SourceNodeID)
	assert.Equal(t, b.ID, got.TargetNodeID)
}

func TestFindEdges(t *testing.T) {
	d := newTestDB(t)

	a, _ := d.NewNode(NodeKindNamespace, "ns")
	b, _ := d.NewNode(NodeKindClass, "cls")
	c, _ := d.NewNode(NodeKindFunction, "fn")

	_, err := d.NewEdge(EdgeKindMember, a.ID, b.ID)
	require.NoError(t, err)
	_, err = d.NewEdge(EdgeKindCall, b.ID, c.ID)
	require.NoError(t, err)

	members, err := d.FindEdges(func(e Edge) bool { return e.Kind == EdgeKindMember })
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, a.ID, members[0].SourceNodeID)
}

func TestNewSymbolRejectsDuplicate(t *testing.T) {
	d := newTestDB(t)

	n, err := d.NewNode(NodeKindFunction, "f")
	require.NoError(t, err)

	s, err := d.NewSymbol(DefinitionExplicit, n.ID)
	require.NoError(t, err)
	assert.Equal(t, n.ID, s.ID)

	_, err = d.NewSymbol(DefinitionImplicit, n.ID)
	assert.ErrorIs(t, err, ErrDuplicateSymbol)

	s.DefinitionKind = DefinitionImplicit
	require.NoError(t, d.UpdateSymbol(s))

	got, err := d.GetSymbol(n.ID)
	require.NoError(t, err)
	assert.Equal(t, DefinitionImplicit, got.DefinitionKind)
}

func TestElementComponents(t *testing.T) {
	d := newTestDB(t)

	n, err := d.NewNode(NodeKindClass, "ambiguous")
	require.NoError(t, err)

	c, err := d.NewElementComponent(n.ID, ComponentIsAmbiguous, "")
	require.NoError(t, err)
	assert.NotZero(t, c.ID)

	comps, err := d.GetElementComponents(n.ID)
	require.NoError(t, err)
	require.Len(t, comps, 1)
	assert.Equal(t, ComponentIsAmbiguous, comps[0].Kind)

	// Components cascade away with the element they annotate.
	require.NoError(t, d.DeleteElement(n.ID))
	comps, err = d.GetElementComponents(n.ID)
	require.NoError(t, err)
	assert.Empty(t, comps)
}

func TestFileRows(t *testing.T) {
	d := newTestDB(t)

	n, err := d.NewNode(NodeKindFile, "/\tm/src/main.go\ts\tp")
	require.NoError(t, err)

	f := File{
		ID:               n.ID,
		Path:             "/src/main.go",
		Language:         "go",
		ModificationTime: "2026-01-02 15:04:05",
		Indexed:          true,
		Complete:         true,
		LineCount:        120,
	}
	require.NoError(t, d.NewFile(f))
	require.NoError(t, d.NewFileContent(n.ID, "package main\n"))

	got, err := d.GetFile(n.ID)
	require.NoError(t, err)
	assert.Equal(t, f, got)

	fc, err := d.GetFileContent(n.ID)
	require.NoError(t, err)
	assert.Equal(t, "package main\n", fc.Content)

	f.Language = "golang"
	require.NoError(t, d.UpdateFile(f))
	got, err = d.GetFile(n.ID)
	require.NoError(t, err)
	assert.Equal(t, "golang", got.Language)

	// filecontent hangs off the file row.
	require.NoError(t, d.DeleteFile(n.ID, false))
	_, err = d.GetFileContent(n.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalSymbolLookupByName(t *testing.T) {
	d := newTestDB(t)

	ls, err := d.NewLocalSymbol("x")
	require.NoError(t, err)
	assert.NotZero(t, ls.ID)

	got, err := d.GetLocalSymbolByName("x")
	require.NoError(t, err)
	assert.Equal(t, ls, got)

	_, err = d.GetLocalSymbolByName("y")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestComponentAccess(t *testing.T) {
	d := newTestDB(t)

	n, err := d.NewNode(NodeKindMethod, "m")
	require.NoError(t, err)

	require.NoError(t, d.NewComponentAccess(n.ID, AccessPrivate))

	ca, err := d.GetComponentAccess(n.ID)
	require.NoError(t, err)
	assert.Equal(t, AccessPrivate, ca.Kind)

	ca.Kind = AccessPublic
	require.NoError(t, d.UpdateComponentAccess(ca))

	ca, err = d.GetComponentAccess(n.ID)
	require.NoError(t, err)
	assert.Equal(t, AccessPublic, ca.Kind)
}

func TestErrorRows(t *testing.T) {
	d := newTestDB(t)

	e, err := d.NewError("unexpected token", true, true, "main.go")
	require.NoError(t, err)
	assert.NotZero(t, e.ID)

	got, err := d.GetError(e.ID)
	require.NoError(t, err)
	assert.Equal(t, e, got)

	errs, err := d.ListErrors()
	require.NoError(t, err)
	assert.Len(t, errs, 1)
}
