package store

// ElementID is a type-safe identifier for rows of the element table. Every
// other table's identity either equals an element id or references one.
type ElementID int64

// NodeKind tags the kind of a node. The values are bit flags carried over
// from the target file format and must not be renumbered.
type NodeKind int

const (
	NodeKindSymbol         NodeKind = 1 << 0
	NodeKindType           NodeKind = 1 << 1
	NodeKindBuiltinType    NodeKind = 1 << 2
	NodeKindModule         NodeKind = 1 << 3
	NodeKindNamespace      NodeKind = 1 << 4
	NodeKindPackage        NodeKind = 1 << 5
	NodeKindStruct         NodeKind = 1 << 6
	NodeKindClass          NodeKind = 1 << 7
	NodeKindInterface      NodeKind = 1 << 8
	NodeKindAnnotation     NodeKind = 1 << 9
	NodeKindGlobalVariable NodeKind = 1 << 10
	NodeKindField          NodeKind = 1 << 11
	NodeKindFunction       NodeKind = 1 << 12
	NodeKindMethod         NodeKind = 1 << 13
	NodeKindEnum           NodeKind = 1 << 14
	NodeKindEnumConstant   NodeKind = 1 << 15
	NodeKindTypedef        NodeKind = 1 << 16
	NodeKindTypeParameter  NodeKind = 1 << 17
	NodeKindFile           NodeKind = 1 << 18
	NodeKindMacro          NodeKind = 1 << 19
	NodeKindUnion          NodeKind = 1 << 20
)

// EdgeKind tags the relation an edge expresses between two nodes. Bit
// flags from the target format.
type EdgeKind int

const (
	EdgeKindUndefined              EdgeKind = 0
	EdgeKindMember                 EdgeKind = 1 << 0
	EdgeKindTypeUsage              EdgeKind = 1 << 1
	EdgeKindUsage                  EdgeKind = 1 << 2
	EdgeKindCall                   EdgeKind = 1 << 3
	EdgeKindInheritance            EdgeKind = 1 << 4
	EdgeKindOverride               EdgeKind = 1 << 5
	EdgeKindTypeArgument           EdgeKind = 1 << 6
	EdgeKindTemplateSpecialization EdgeKind = 1 << 7
	EdgeKindInclude                EdgeKind = 1 << 8
	EdgeKindImport                 EdgeKind = 1 << 9
	EdgeKindBundledEdges           EdgeKind = 1 << 10
	EdgeKindMacroUsage             EdgeKind = 1 << 11
	EdgeKindAnnotationUsage        EdgeKind = 1 << 12
)

// DefinitionKind records whether and how a symbol was defined.
type DefinitionKind int

const (
	DefinitionNone     DefinitionKind = 0
	DefinitionImplicit DefinitionKind = 1
	DefinitionExplicit DefinitionKind = 2
)

// ComponentKind marks an element_component row. Only ambiguity markers are
// used by the format today.
type ComponentKind int

const (
	ComponentNone        ComponentKind = 0
	ComponentIsAmbiguous ComponentKind = 1
)

// AccessKind is the visibility recorded in component_access.
type AccessKind int

const (
	AccessNone              AccessKind = 0
	AccessPublic            AccessKind = 1
	AccessProtected         AccessKind = 2
	AccessPrivate           AccessKind = 3
	AccessDefault           AccessKind = 4
	AccessTemplateParameter AccessKind = 5
	AccessTypeParameter     AccessKind = 6
)

// LocationKind is the type column of source_location.
type LocationKind int

const (
	LocationToken          LocationKind = 0
	LocationScope          LocationKind = 1
	LocationQualifier      LocationKind = 2
	LocationLocalSymbol    LocationKind = 3
	LocationSignature      LocationKind = 4
	LocationAtomicRange    LocationKind = 5
	LocationIndexerError   LocationKind = 6
	LocationFulltextSearch LocationKind = 7
	LocationScreenSearch   LocationKind = 8
	LocationUnsolved       LocationKind = 9
)

// Element is the root identity row. It carries nothing but its id; every
// typed row extends or references it so any part of the graph can be
// removed by deleting element rows.
type Element struct {
	ID ElementID
}

// Node is a typed, named vertex of the symbol graph. SerializedName holds
// the codec output for the node's NameHierarchy. Color and HoverDisplay are
// nullable display hints for the viewer; this tool leaves them empty.
type Node struct {
	ID             ElementID
	Kind           NodeKind
	SerializedName string
	Color          string
	HoverDisplay   string
}

// Edge is a typed, directed relation between two nodes. Its id is an
// element of its own, independent of both endpoints.
type Edge struct {
	ID           ElementID
	Kind         EdgeKind
	SourceNodeID ElementID
	TargetNodeID ElementID
	Color        string
	HoverDisplay string
}

// Symbol marks a node as a definition. At most one per node.
type Symbol struct {
	ID             ElementID
	DefinitionKind DefinitionKind
}

// ElementComponent attaches extra data (ambiguity) to another element.
type ElementComponent struct {
	ID        ElementID
	ElementID ElementID
	Kind      ComponentKind
	Data      string
}

// File extends a node of kind NodeKindFile with source file metadata.
type File struct {
	ID               ElementID
	Path             string
	Language         string
	ModificationTime string
	Indexed          bool
	Complete         bool
	LineCount        int
}

// FileContent holds the full text of an indexed file, keyed by the file id.
type FileContent struct {
	ID      ElementID
	Content string
}

// LocalSymbol names an element that exists only in a local scope.
type LocalSymbol struct {
	ID   ElementID
	Name string
}

// SourceLocation is a range inside a file node. Its id is a plain rowid,
// not an element.
type SourceLocation struct {
	ID          ElementID
	FileNodeID  ElementID
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int
	Kind        LocationKind
}

// Occurrence joins an element to a source location. Composite key, no id of
// its own.
type Occurrence struct {
	ElementID        ElementID
	SourceLocationID ElementID
}

// ComponentAccess records the visibility of a node.
type ComponentAccess struct {
	NodeID ElementID
	Kind   AccessKind
}

// Error is an indexer diagnostic shown by the viewer.
type Error struct {
	ID              ElementID
	Message         string
	Fatal           bool
	Indexed         bool
	TranslationUnit string
}

// NodeDisplay is a row of the node_type table: how a node kind is labelled
// in the graph and on hover.
type NodeDisplay struct {
	ID           NodeKind
	GraphDisplay string
	HoverDisplay string
}
