package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewElementAllocatesIncreasingIDs(t *testing.T) {
	d := newTestDB(t)

	var prev ElementID
	for i := 0; i < 5; i++ {
		e, err := d.NewElement()
		require.NoError(t, err)
		assert.NotZero(t, e.ID)
		assert.Greater(t, e.ID, prev)
		prev = e.ID
	}
}

func TestGetElement(t *testing.T) {
	d := newTestDB(t)

	e, err := d.NewElement()
	require.NoError(t, err)

	got, err := d.GetElement(e.ID)
	require.NoError(t, err)
	assert.Equal(t, e, got)

	_, err = d.GetElement(e.ID + 1000)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateElementIsNoOp(t *testing.T) {
	d := newTestDB(t)

	e, err := d.NewElement()
	require.NoError(t, err)

	require.NoError(t, d.UpdateElement(Element{ID: e.ID}))

	_, err = d.GetElement(e.ID)
	assert.NoError(t, err)
}

func TestDeleteElementCascades(t *testing.T) {
	d := newTestDB(t)

	n, err := d.NewNode(NodeKindClass, "doomed")
	require.NoError(t, err)
	_, err = d.NewSymbol(DefinitionExplicit, n.ID)
	require.NoError(t, err)

	require.NoError(t, d.DeleteElement(n.ID))

	_, err = d.GetElement(n.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = d.GetNode(n.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = d.GetSymbol(n.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
