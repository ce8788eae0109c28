package codec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeSingleElement(t *testing.T) {
	h := NewNameHierarchy(DelimiterJava, NameElement{Name: "MyClass"})

	got, err := h.SerializeName()
	require.NoError(t, err)
	assert.Equal(t, ".\tmMyClass\ts\tp", got)
}

func TestSerializeMemberEmbedsParent(t *testing.T) {
	h := NewNameHierarchy(DelimiterJava,
		NameElement{Name: "A"},
		NameElement{Name: "b"},
	)

	got, err := h.SerializeName()
	require.NoError(t, err)
	assert.Equal(t, ".\tmA\ts\tp\tnb\ts\tp", got)

	parent, err := h.SerializeRange(0, 1)
	require.NoError(t, err)
	assert.Equal(t, ".\tmA\ts\tp", parent)
}

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		h    NameHierarchy
	}{
		{
			name: "single plain",
			h:    NewNameHierarchy(DelimiterCXX, NameElement{Name: "foo"}),
		},
		{
			name: "prefix and postfix",
			h: NewNameHierarchy(DelimiterCXX,
				NameElement{Prefix: "void", Name: "bar", Postfix: "(int)"},
			),
		},
		{
			name: "nested three deep",
			h: NewNameHierarchy(DelimiterCXX,
				NameElement{Name: "ns"},
				NameElement{Name: "Widget"},
				NameElement{Prefix: "int", Name: "resize", Postfix: "(int, int)"},
			),
		},
		{
			name: "file path",
			h:    NewNameHierarchy(DelimiterFile, NameElement{Name: "/src/main.c"}),
		},
		{
			name: "unknown delimiter",
			h:    NewNameHierarchy(DelimiterUnknown, NameElement{Name: "unsolved symbol"}),
		},
		{
			name: "empty component strings",
			h: NewNameHierarchy(DelimiterJava,
				NameElement{Name: "Outer"},
				NameElement{},
			),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			serialized, err := tc.h.SerializeName()
			require.NoError(t, err)
			require.NotEmpty(t, serialized)

			got, err := Deserialize(serialized)
			require.NoError(t, err)
			assert.Equal(t, tc.h, got)
		})
	}
}

func TestSerializeEmptyHierarchy(t *testing.T) {
	h := NewNameHierarchy(DelimiterJava)

	_, err := h.SerializeName()
	assert.ErrorIs(t, err, ErrEmptySerialize)

	_, err = h.SerializeRange(0, 0)
	assert.ErrorIs(t, err, ErrEmptySerialize)
}

func TestSerializeRangeBounds(t *testing.T) {
	h := NewNameHierarchy(DelimiterJava, NameElement{Name: "A"}, NameElement{Name: "b"})

	_, err := h.SerializeRange(1, 1)
	assert.Error(t, err)

	_, err = h.SerializeRange(0, 3)
	assert.Error(t, err)

	got, err := h.SerializeRange(1, 2)
	require.NoError(t, err)
	assert.Equal(t, ".\tmb\ts\tp", got)
}

func TestDeserializeMissingTokens(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"no meta token", "plain text"},
		{"missing part token", ".\tmMyClass"},
		{"missing signature token", ".\tmMyClass\ts"},
		{"missing part token after name token", ".\tmA\ts\tp\tnb"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Deserialize(tc.input)
			require.Error(t, err)

			var fe *FormatError
			assert.True(t, errors.As(err, &fe), "want *FormatError, got %T", err)
		})
	}
}

func TestDeserializeFinalPostfixRunsToEnd(t *testing.T) {
	h, err := Deserialize("::\tmf\ts\tp(int) const")
	require.NoError(t, err)

	require.Equal(t, 1, h.Size())
	assert.Equal(t, DelimiterCXX, h.Delimiter)
	assert.Equal(t, "(int) const", h.Last().Postfix)
}

func TestExtendAndLast(t *testing.T) {
	h := NewNameHierarchy(DelimiterJava, NameElement{Name: "Outer"})
	h.Extend(NameElement{Name: "inner"})

	assert.Equal(t, 2, h.Size())
	assert.Equal(t, "inner", h.Last().Name)
	assert.Equal(t, NameElement{}, NameHierarchy{}.Last())
}
