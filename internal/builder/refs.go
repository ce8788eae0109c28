package builder

import (
	"errors"
	"fmt"

	"trailhead/internal/codec"
	"trailhead/internal/store"
)

// References are plain typed edges between two recorded symbols. Unlike
// member edges they are not deduplicated: the same call recorded from two
// sites is two edges, each with its own occurrences.

func (b *Builder) RecordRefMember(source, target store.ElementID) (store.ElementID, error) {
	return b.recordReference(store.EdgeKindMember, source, target)
}

func (b *Builder) RecordRefTypeUsage(source, target store.ElementID) (store.ElementID, error) {
	return b.recordReference(store.EdgeKindTypeUsage, source, target)
}

func (b *Builder) RecordRefUsage(source, target store.ElementID) (store.ElementID, error) {
	return b.recordReference(store.EdgeKindUsage, source, target)
}

func (b *Builder) RecordRefCall(source, target store.ElementID) (store.ElementID, error) {
	return b.recordReference(store.EdgeKindCall, source, target)
}

func (b *Builder) RecordRefInheritance(source, target store.ElementID) (store.ElementID, error) {
	return b.recordReference(store.EdgeKindInheritance, source, target)
}

func (b *Builder) RecordRefOverride(source, target store.ElementID) (store.ElementID, error) {
	return b.recordReference(store.EdgeKindOverride, source, target)
}

func (b *Builder) RecordRefTypeArgument(source, target store.ElementID) (store.ElementID, error) {
	return b.recordReference(store.EdgeKindTypeArgument, source, target)
}

func (b *Builder) RecordRefTemplateSpecialization(source, target store.ElementID) (store.ElementID, error) {
	return b.recordReference(store.EdgeKindTemplateSpecialization, source, target)
}

func (b *Builder) RecordRefInclude(source, target store.ElementID) (store.ElementID, error) {
	return b.recordReference(store.EdgeKindInclude, source, target)
}

func (b *Builder) RecordRefImport(source, target store.ElementID) (store.ElementID, error) {
	return b.recordReference(store.EdgeKindImport, source, target)
}

func (b *Builder) RecordRefBundledEdges(source, target store.ElementID) (store.ElementID, error) {
	return b.recordReference(store.EdgeKindBundledEdges, source, target)
}

func (b *Builder) RecordRefMacroUsage(source, target store.ElementID) (store.ElementID, error) {
	return b.recordReference(store.EdgeKindMacroUsage, source, target)
}

func (b *Builder) RecordRefAnnotationUsage(source, target store.ElementID) (store.ElementID, error) {
	return b.recordReference(store.EdgeKindAnnotationUsage, source, target)
}

func (b *Builder) recordReference(kind store.EdgeKind, source, target store.ElementID) (store.ElementID, error) {
	edge, err := b.db.NewEdge(kind, source, target)
	if err != nil {
		return 0, fmt.Errorf("recording reference: %w", err)
	}
	return edge.ID, nil
}

// RecordReferenceToUnsolvedSymbol records a reference whose target the
// indexer could not resolve: a shared "unsolved symbol" node with the
// unknown delimiter, an edge to it, and an unsolved location marking the
// reference site. Returns the edge id.
func (b *Builder) RecordReferenceToUnsolvedSymbol(symbolID store.ElementID, kind store.EdgeKind, fileID store.ElementID, startLine, startColumn, endLine, endColumn int) (store.ElementID, error) {
	hierarchy := codec.NewNameHierarchy(codec.DelimiterUnknown, codec.NameElement{Name: "unsolved symbol"})
	serialized, err := hierarchy.SerializeName()
	if err != nil {
		return 0, err
	}

	var edgeID store.ElementID
	err = b.db.Savepoint("record_unsolved", func() error {
		unsolvedID, err := b.nodeIfAbsent(serialized, store.NodeKindSymbol)
		if err != nil {
			return err
		}
		edge, err := b.db.NewEdge(kind, symbolID, unsolvedID)
		if err != nil {
			return err
		}
		edgeID = edge.ID
		loc, err := b.db.NewSourceLocation(fileID, startLine, startColumn, endLine, endColumn, store.LocationUnsolved)
		if err != nil {
			return err
		}
		_, err = b.db.NewOccurrence(edge.ID, loc.ID)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("recording unsolved reference: %w", err)
	}
	return edgeID, nil
}

// RecordReferenceIsAmbiguous marks a previously recorded reference as
// ambiguous.
func (b *Builder) RecordReferenceIsAmbiguous(referenceID store.ElementID) error {
	_, err := b.db.NewElementComponent(referenceID, store.ComponentIsAmbiguous, "")
	if err != nil {
		return fmt.Errorf("marking reference %d ambiguous: %w", referenceID, err)
	}
	return nil
}

// RecordAccess records the visibility of a node, replacing any previously
// recorded one.
func (b *Builder) RecordAccess(nodeID store.ElementID, kind store.AccessKind) error {
	_, err := b.db.GetComponentAccess(nodeID)
	if errors.Is(err, store.ErrNotFound) {
		return b.db.NewComponentAccess(nodeID, kind)
	}
	if err != nil {
		return err
	}
	return b.db.UpdateComponentAccess(store.ComponentAccess{NodeID: nodeID, Kind: kind})
}
