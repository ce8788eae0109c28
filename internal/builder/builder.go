// Package builder is the recording API on top of the store: it turns
// hierarchical symbol names into graph rows, deduplicates nodes by
// serialized name, and maintains the member edges that tie a hierarchy
// together.
package builder

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"trailhead/internal/codec"
	"trailhead/internal/store"
)

// Builder records symbols, references, files and locations into one
// project database. Not safe for concurrent use; the store runs a single
// write transaction anyway.
type Builder struct {
	db     *store.Database
	logger *zap.Logger

	// Dedup caches, keyed by serialized name / local symbol name / edge
	// identity. The database stays authoritative; the caches only avoid
	// repeated lookups within one session.
	nodes  map[string]store.ElementID
	locals map[string]store.ElementID
	edges  map[edgeKey]store.ElementID
}

type edgeKey struct {
	kind   store.EdgeKind
	source store.ElementID
	target store.ElementID
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger. The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// New returns a Builder recording into db.
func New(db *store.Database, opts ...Option) *Builder {
	b := &Builder{
		db:     db,
		logger: zap.NewNop(),
		nodes:  make(map[string]store.ElementID),
		locals: make(map[string]store.ElementID),
		edges:  make(map[edgeKey]store.ElementID),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SymbolOptions names one symbol to record. Parent, when set, must be a
// previously recorded node; the new symbol extends the parent's hierarchy
// and Delimiter is ignored in favor of the parent's. Indexed symbols get a
// definition marker; non-indexed ones stay plain nodes.
type SymbolOptions struct {
	Name      string
	Prefix    string
	Postfix   string
	Delimiter codec.Delimiter
	Parent    store.ElementID
	Indexed   bool
}

// The Record methods below are one per node kind. They share the same
// recording algorithm and differ only in the kind stamped on the node.

func (b *Builder) RecordSymbolNode(opts SymbolOptions) (store.ElementID, error) {
	return b.recordSymbol(store.NodeKindSymbol, opts)
}

func (b *Builder) RecordType(opts SymbolOptions) (store.ElementID, error) {
	return b.recordSymbol(store.NodeKindType, opts)
}

func (b *Builder) RecordBuiltinType(opts SymbolOptions) (store.ElementID, error) {
	return b.recordSymbol(store.NodeKindBuiltinType, opts)
}

func (b *Builder) RecordModule(opts SymbolOptions) (store.ElementID, error) {
	return b.recordSymbol(store.NodeKindModule, opts)
}

func (b *Builder) RecordNamespace(opts SymbolOptions) (store.ElementID, error) {
	return b.recordSymbol(store.NodeKindNamespace, opts)
}

func (b *Builder) RecordPackage(opts SymbolOptions) (store.ElementID, error) {
	return b.recordSymbol(store.NodeKindPackage, opts)
}

func (b *Builder) RecordStruct(opts SymbolOptions) (store.ElementID, error) {
	return b.recordSymbol(store.NodeKindStruct, opts)
}

func (b *Builder) RecordClass(opts SymbolOptions) (store.ElementID, error) {
	return b.recordSymbol(store.NodeKindClass, opts)
}

func (b *Builder) RecordInterface(opts SymbolOptions) (store.ElementID, error) {
	return b.recordSymbol(store.NodeKindInterface, opts)
}

func (b *Builder) RecordAnnotation(opts SymbolOptions) (store.ElementID, error) {
	return b.recordSymbol(store.NodeKindAnnotation, opts)
}

func (b *Builder) RecordGlobalVariable(opts SymbolOptions) (store.ElementID, error) {
	return b.recordSymbol(store.NodeKindGlobalVariable, opts)
}

func (b *Builder) RecordField(opts SymbolOptions) (store.ElementID, error) {
	return b.recordSymbol(store.NodeKindField, opts)
}

func (b *Builder) RecordFunction(opts SymbolOptions) (store.ElementID, error) {
	return b.recordSymbol(store.NodeKindFunction, opts)
}

func (b *Builder) RecordMethod(opts SymbolOptions) (store.ElementID, error) {
	return b.recordSymbol(store.NodeKindMethod, opts)
}

func (b *Builder) RecordEnum(opts SymbolOptions) (store.ElementID, error) {
	return b.recordSymbol(store.NodeKindEnum, opts)
}

func (b *Builder) RecordEnumConstant(opts SymbolOptions) (store.ElementID, error) {
	return b.recordSymbol(store.NodeKindEnumConstant, opts)
}

func (b *Builder) RecordTypedef(opts SymbolOptions) (store.ElementID, error) {
	return b.recordSymbol(store.NodeKindTypedef, opts)
}

func (b *Builder) RecordTypeParameter(opts SymbolOptions) (store.ElementID, error) {
	return b.recordSymbol(store.NodeKindTypeParameter, opts)
}

func (b *Builder) RecordMacro(opts SymbolOptions) (store.ElementID, error) {
	return b.recordSymbol(store.NodeKindMacro, opts)
}

func (b *Builder) RecordUnion(opts SymbolOptions) (store.ElementID, error) {
	return b.recordSymbol(store.NodeKindUnion, opts)
}

// recordSymbol resolves the full hierarchy for the symbol, creates every
// missing ancestor node and the member edges between consecutive levels,
// stamps the innermost node with the requested kind, and attaches a
// definition marker when indexed. Recording the same symbol twice resolves
// to the existing node. The whole operation runs in a savepoint.
func (b *Builder) recordSymbol(kind store.NodeKind, opts SymbolOptions) (store.ElementID, error) {
	hierarchy, err := b.resolveHierarchy(opts)
	if err != nil {
		return 0, err
	}

	var nodeID store.ElementID
	err = b.db.Savepoint("record_symbol", func() error {
		ids := make([]store.ElementID, 0, hierarchy.Size())
		for i := 0; i < hierarchy.Size(); i++ {
			serialized, err := hierarchy.SerializeRange(0, i+1)
			if err != nil {
				return err
			}
			id, err := b.nodeIfAbsent(serialized, store.NodeKindSymbol)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		for i := 0; i+1 < len(ids); i++ {
			if _, err := b.edgeIfAbsent(store.EdgeKindMember, ids[i], ids[i+1]); err != nil {
				return err
			}
		}

		nodeID = ids[len(ids)-1]
		node, err := b.db.GetNode(nodeID)
		if err != nil {
			return err
		}
		if node.Kind != kind {
			node.Kind = kind
			if err := b.db.UpdateNode(node); err != nil {
				return err
			}
		}

		if opts.Indexed {
			return b.markExplicit(nodeID)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	b.logger.Debug("symbol recorded",
		zap.Int64("id", int64(nodeID)),
		zap.Int("kind", int(kind)),
		zap.String("name", opts.Name))
	return nodeID, nil
}

// resolveHierarchy builds the full name hierarchy for the options: the
// parent's deserialized hierarchy extended by one element, or a fresh
// one-element hierarchy for roots.
func (b *Builder) resolveHierarchy(opts SymbolOptions) (codec.NameHierarchy, error) {
	elem := codec.NameElement{Prefix: opts.Prefix, Name: opts.Name, Postfix: opts.Postfix}

	if opts.Parent == 0 {
		delimiter := opts.Delimiter
		if delimiter == "" {
			delimiter = codec.DelimiterCXX
		}
		return codec.NewNameHierarchy(delimiter, elem), nil
	}

	parent, err := b.db.GetNode(opts.Parent)
	if err != nil {
		return codec.NameHierarchy{}, fmt.Errorf("resolving parent %d: %w", opts.Parent, err)
	}
	hierarchy, err := codec.Deserialize(parent.SerializedName)
	if err != nil {
		return codec.NameHierarchy{}, fmt.Errorf("resolving parent %d: %w", opts.Parent, err)
	}
	hierarchy.Extend(elem)
	return hierarchy, nil
}

// nodeIfAbsent returns the node carrying the serialized name, creating it
// with the given kind when absent.
func (b *Builder) nodeIfAbsent(serialized string, kind store.NodeKind) (store.ElementID, error) {
	if id, ok := b.nodes[serialized]; ok {
		return id, nil
	}
	node, err := b.db.GetNodeBySerializedName(serialized)
	if err == nil {
		b.nodes[serialized] = node.ID
		return node.ID, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return 0, err
	}
	node, err = b.db.NewNode(kind, serialized)
	if err != nil {
		return 0, err
	}
	b.nodes[serialized] = node.ID
	return node.ID, nil
}

// edgeIfAbsent returns the edge with this identity, creating it when
// absent.
func (b *Builder) edgeIfAbsent(kind store.EdgeKind, source, target store.ElementID) (store.ElementID, error) {
	key := edgeKey{kind: kind, source: source, target: target}
	if id, ok := b.edges[key]; ok {
		return id, nil
	}
	existing, err := b.db.FindEdges(func(e store.Edge) bool {
		return e.Kind == kind && e.SourceNodeID == source && e.TargetNodeID == target
	})
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		b.edges[key] = existing[0].ID
		return existing[0].ID, nil
	}
	edge, err := b.db.NewEdge(kind, source, target)
	if err != nil {
		return 0, err
	}
	b.edges[key] = edge.ID
	return edge.ID, nil
}

// markExplicit attaches an explicit definition marker, upgrading an
// existing marker in place.
func (b *Builder) markExplicit(nodeID store.ElementID) error {
	_, err := b.db.NewSymbol(store.DefinitionExplicit, nodeID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrDuplicateSymbol) {
		return err
	}
	return b.db.UpdateSymbol(store.Symbol{ID: nodeID, DefinitionKind: store.DefinitionExplicit})
}

// Parent returns the node on the source side of the member edge pointing
// at nodeID, or ErrNotFound for roots. Resolved by scanning edges; the
// builder keeps no containment pointers.
func (b *Builder) Parent(nodeID store.ElementID) (store.Node, error) {
	edges, err := b.db.FindEdges(func(e store.Edge) bool {
		return e.Kind == store.EdgeKindMember && e.TargetNodeID == nodeID
	})
	if err != nil {
		return store.Node{}, err
	}
	if len(edges) == 0 {
		return store.Node{}, fmt.Errorf("parent of node %d: %w", nodeID, store.ErrNotFound)
	}
	return b.db.GetNode(edges[0].SourceNodeID)
}

// Children returns the nodes on the target side of member edges leaving
// nodeID.
func (b *Builder) Children(nodeID store.ElementID) ([]store.Node, error) {
	edges, err := b.db.FindEdges(func(e store.Edge) bool {
		return e.Kind == store.EdgeKindMember && e.SourceNodeID == nodeID
	})
	if err != nil {
		return nil, err
	}
	children := make([]store.Node, 0, len(edges))
	for _, e := range edges {
		child, err := b.db.GetNode(e.TargetNodeID)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

// Rename replaces the innermost name element of the node and rewrites the
// serialized name of every descendant, since a child's serialized name
// embeds its parent's.
func (b *Builder) Rename(nodeID store.ElementID, name, prefix, postfix string) error {
	node, err := b.db.GetNode(nodeID)
	if err != nil {
		return err
	}
	hierarchy, err := codec.Deserialize(node.SerializedName)
	if err != nil {
		return fmt.Errorf("renaming node %d: %w", nodeID, err)
	}
	hierarchy.Elements[hierarchy.Size()-1] = codec.NameElement{
		Prefix:  prefix,
		Name:    name,
		Postfix: postfix,
	}
	renamed, err := hierarchy.SerializeName()
	if err != nil {
		return fmt.Errorf("renaming node %d: %w", nodeID, err)
	}

	oldName := node.SerializedName
	return b.db.Savepoint("rename", func() error {
		node.SerializedName = renamed
		if err := b.db.UpdateNode(node); err != nil {
			return err
		}
		delete(b.nodes, oldName)
		b.nodes[renamed] = node.ID

		// A descendant's name continues the ancestor's with a name token.
		oldPrefix := oldName + "\tn"
		descendants, err := b.db.FindNodes(func(n store.Node) bool {
			return strings.HasPrefix(n.SerializedName, oldPrefix)
		})
		if err != nil {
			return err
		}
		for _, desc := range descendants {
			was := desc.SerializedName
			desc.SerializedName = renamed + "\tn" + strings.TrimPrefix(was, oldPrefix)
			if err := b.db.UpdateNode(desc); err != nil {
				return err
			}
			delete(b.nodes, was)
			b.nodes[desc.SerializedName] = desc.ID
		}
		b.logger.Debug("node renamed",
			zap.Int64("id", int64(nodeID)),
			zap.Int("descendants", len(descendants)))
		return nil
	})
}
