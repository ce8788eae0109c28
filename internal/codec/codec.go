// Package codec implements the serialized name format used by the node
// table. A node's fully qualified name is a NameHierarchy: an ordered list
// of (prefix, name, postfix) elements packed into a single string with
// tab-prefixed markers, so that a child's serialized name embeds its
// parent's.
package codec

import (
	"errors"
	"fmt"
	"strings"
)

// Delimiter is the namespace separator recorded at the start of a
// serialized name. It tells the viewer how to render qualified names.
type Delimiter string

const (
	DelimiterFile    Delimiter = "/"
	DelimiterCXX     Delimiter = "::"
	DelimiterJava    Delimiter = "."
	DelimiterUnknown Delimiter = "@"
)

// Reserved token byte sequences. Component strings must not contain these.
const (
	metaToken      = "\tm"
	nameToken      = "\tn"
	partToken      = "\ts"
	signatureToken = "\tp"
)

// ErrEmptySerialize is returned when serializing a hierarchy with no
// elements. An empty-string serialized name is never produced.
var ErrEmptySerialize = errors.New("codec: cannot serialize an empty name hierarchy")

// FormatError reports a serialized name that is missing a required token.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("codec: malformed serialized name %q: %s", e.Input, e.Reason)
}

// NameElement is one level of a NameHierarchy.
type NameElement struct {
	Prefix  string
	Name    string
	Postfix string
}

// NameHierarchy is the nested naming of a node, outermost element first.
type NameHierarchy struct {
	Delimiter Delimiter
	Elements  []NameElement
}

// NewNameHierarchy builds a hierarchy from the given elements.
func NewNameHierarchy(delimiter Delimiter, elements ...NameElement) NameHierarchy {
	return NameHierarchy{Delimiter: delimiter, Elements: elements}
}

// Size returns the number of elements in the hierarchy.
func (h NameHierarchy) Size() int {
	return len(h.Elements)
}

// Extend appends an element to the hierarchy.
func (h *NameHierarchy) Extend(e NameElement) {
	h.Elements = append(h.Elements, e)
}

// Last returns the innermost element. The zero NameElement if empty.
func (h NameHierarchy) Last() NameElement {
	if len(h.Elements) == 0 {
		return NameElement{}
	}
	return h.Elements[len(h.Elements)-1]
}

// SerializeName serializes the full hierarchy.
func (h NameHierarchy) SerializeName() (string, error) {
	return h.SerializeRange(0, len(h.Elements))
}

// SerializeRange serializes the elements in [start, end). The layout is
//
//	<delimiter>\tm<name>\ts<prefix>\tp<postfix>[\tn<name>\ts<prefix>\tp<postfix>]...
//
// The final postfix carries no trailing marker; it runs to the end of the
// string by construction.
func (h NameHierarchy) SerializeRange(start, end int) (string, error) {
	if len(h.Elements) == 0 {
		return "", ErrEmptySerialize
	}
	if start < 0 || end > len(h.Elements) || start >= end {
		return "", fmt.Errorf("codec: invalid serialize range [%d, %d) over %d elements", start, end, len(h.Elements))
	}

	var b strings.Builder
	b.WriteString(string(h.Delimiter))
	b.WriteString(metaToken)
	for i, elem := range h.Elements[start:end] {
		if i > 0 {
			b.WriteString(nameToken)
		}
		b.WriteString(elem.Name)
		b.WriteString(partToken)
		b.WriteString(elem.Prefix)
		b.WriteString(signatureToken)
		b.WriteString(elem.Postfix)
	}
	return b.String(), nil
}

// Deserialize parses a serialized name back into its hierarchy. The
// delimiter is whatever precedes the meta token; elements are scanned by
// locating the part token, the signature token, then the next name token or
// the end of the string.
func Deserialize(serialized string) (NameHierarchy, error) {
	idx := strings.Index(serialized, metaToken)
	if idx == -1 {
		return NameHierarchy{}, &FormatError{Input: serialized, Reason: "missing meta token"}
	}

	h := NameHierarchy{Delimiter: Delimiter(serialized[:idx])}
	idx += len(metaToken)

	for idx < len(serialized) {
		spos := strings.Index(serialized[idx:], partToken)
		if spos == -1 {
			return NameHierarchy{}, &FormatError{Input: serialized, Reason: "missing part token"}
		}
		spos += idx
		name := serialized[idx:spos]
		spos += len(partToken)

		ppos := strings.Index(serialized[spos:], signatureToken)
		if ppos == -1 {
			return NameHierarchy{}, &FormatError{Input: serialized, Reason: "missing signature token"}
		}
		ppos += spos
		prefix := serialized[spos:ppos]
		ppos += len(signatureToken)

		var postfix string
		npos := strings.Index(serialized[ppos:], nameToken)
		if npos == -1 {
			postfix = serialized[ppos:]
			idx = len(serialized)
		} else {
			npos += ppos
			postfix = serialized[ppos:npos]
			idx = npos + len(nameToken)
		}

		h.Elements = append(h.Elements, NameElement{Prefix: prefix, Name: name, Postfix: postfix})
	}
	return h, nil
}
