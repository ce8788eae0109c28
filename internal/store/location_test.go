package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileNode(t *testing.T, d *Database) Node {
	t.Helper()
	n, err := d.NewNode(NodeKindFile, "/\tm/src/lib.go\ts\tp")
	require.NoError(t, err)
	return n
}

func TestSourceLocationRoundTrip(t *testing.T) {
	d := newTestDB(t)
	file := newTestFileNode(t, d)

	loc, err := d.NewSourceLocation(file.ID, 3, 1, 3, 12, LocationToken)
	require.NoError(t, err)
	require.NotZero(t, loc.ID)

	got, err := d.GetSourceLocation(loc.ID)
	require.NoError(t, err)
	assert.Equal(t, loc, got)

	locs, err := d.ListSourceLocations(file.ID)
	require.NoError(t, err)
	assert.Len(t, locs, 1)
}

func TestOccurrenceJoinsElementToLocation(t *testing.T) {
	d := newTestDB(t)
	file := newTestFileNode(t, d)

	n, err := d.NewNode(NodeKindFunction, "f")
	require.NoError(t, err)
	loc, err := d.NewSourceLocation(file.ID, 10, 1, 10, 5, LocationToken)
	require.NoError(t, err)

	_, err = d.NewOccurrence(n.ID, loc.ID)
	require.NoError(t, err)

	occs, err := d.ListOccurrences(n.ID)
	require.NoError(t, err)
	require.Len(t, occs, 1)
	assert.Equal(t, loc.ID, occs[0].SourceLocationID)
}

func TestDeleteOccurrence(t *testing.T) {
	d := newTestDB(t)
	file := newTestFileNode(t, d)

	n, err := d.NewNode(NodeKindFunction, "f")
	require.NoError(t, err)
	loc, err := d.NewSourceLocation(file.ID, 10, 1, 10, 5, LocationToken)
	require.NoError(t, err)
	o, err := d.NewOccurrence(n.ID, loc.ID)
	require.NoError(t, err)

	require.NoError(t, d.DeleteOccurrence(o, false))

	// Without cascade the element and the location both survive.
	_, err = d.GetNode(n.ID)
	assert.NoError(t, err)
	_, err = d.GetSourceLocation(loc.ID)
	assert.NoError(t, err)

	o, err = d.NewOccurrence(n.ID, loc.ID)
	require.NoError(t, err)
	require.NoError(t, d.DeleteOccurrence(o, true))

	_, err = d.GetNode(n.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = d.GetSourceLocation(loc.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeletingFileNodeCascadesLocations(t *testing.T) {
	d := newTestDB(t)
	file := newTestFileNode(t, d)

	n, err := d.NewNode(NodeKindFunction, "f")
	require.NoError(t, err)
	loc, err := d.NewSourceLocation(file.ID, 1, 1, 1, 2, LocationToken)
	require.NoError(t, err)
	_, err = d.NewOccurrence(n.ID, loc.ID)
	require.NoError(t, err)

	require.NoError(t, d.DeleteElement(file.ID))

	_, err = d.GetSourceLocation(loc.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	occs, err := d.ListOccurrences(n.ID)
	require.NoError(t, err)
	assert.Empty(t, occs)
}
