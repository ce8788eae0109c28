package index

import (
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"strconv"

	"go.uber.org/zap"

	"trailhead/internal/builder"
	"trailhead/internal/codec"
	"trailhead/internal/config"
	"trailhead/internal/store"
)

// goDelimiter is the name delimiter used for Go symbols.
const goDelimiter = codec.DelimiterJava

// extractor parses source files and records what it finds. Call edges are
// collected while walking and resolved once every file has been seen, so
// calls to functions defined later still connect.
type extractor struct {
	b      *builder.Builder
	cfg    *config.Config
	logger *zap.Logger
	fset   *token.FileSet

	// funcs maps package-qualified function names to their node ids.
	funcs map[string]store.ElementID
	// typeNodes maps declared type names (per parent package node) to their
	// node ids, so method receivers resolve without re-recording the type.
	typeNodes map[typeKey]store.ElementID
	calls     []pendingCall
}

type typeKey struct {
	parent store.ElementID
	name   string
}

type pendingCall struct {
	caller store.ElementID
	callee string
	fileID store.ElementID
	site   ast.Node
}

func newExtractor(b *builder.Builder, cfg *config.Config, logger *zap.Logger) *extractor {
	return &extractor{
		b:         b,
		cfg:       cfg,
		logger:    logger,
		fset:      token.NewFileSet(),
		funcs:     make(map[string]store.ElementID),
		typeNodes: make(map[typeKey]store.ElementID),
	}
}

// indexFile records one source file: the file node itself, the package,
// imports, declarations and their locations. Parse failures become error
// rows instead of aborting the run.
func (ex *extractor) indexFile(path string) error {
	fileID, err := ex.b.RecordFile(path, true)
	if err != nil {
		return err
	}
	if lang := ex.cfg.LanguageForFile(path); lang != "" {
		if err := ex.b.RecordFileLanguage(fileID, lang); err != nil {
			return err
		}
	}

	f, err := parser.ParseFile(ex.fset, path, nil, parser.SkipObjectResolution)
	if err != nil {
		return ex.recordParseErrors(fileID, err)
	}

	pkgID, err := ex.b.RecordPackage(builder.SymbolOptions{
		Name:      f.Name.Name,
		Delimiter: goDelimiter,
		Indexed:   true,
	})
	if err != nil {
		return err
	}
	if err := ex.recordLocation(ex.b.RecordSymbolLocation, pkgID, fileID, f.Name); err != nil {
		return err
	}

	for _, imp := range f.Imports {
		if err := ex.recordImport(pkgID, fileID, imp); err != nil {
			return err
		}
	}

	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if err := ex.recordFunc(pkgID, fileID, f.Name.Name, d); err != nil {
				return err
			}
		case *ast.GenDecl:
			if err := ex.recordGenDecl(pkgID, fileID, d); err != nil {
				return err
			}
		}
	}
	return nil
}

func (ex *extractor) recordParseErrors(fileID store.ElementID, err error) error {
	list, ok := err.(scanner.ErrorList)
	if !ok {
		_, rerr := ex.b.RecordError(err.Error(), true, fileID, 1, 1, 1, 1)
		return rerr
	}
	for _, e := range list {
		_, rerr := ex.b.RecordError(e.Msg, true, fileID,
			e.Pos.Line, e.Pos.Column, e.Pos.Line, e.Pos.Column)
		if rerr != nil {
			return rerr
		}
	}
	ex.logger.Warn("file has parse errors", zap.Int("count", len(list)))
	return nil
}

func (ex *extractor) recordImport(pkgID, fileID store.ElementID, imp *ast.ImportSpec) error {
	path, err := strconv.Unquote(imp.Path.Value)
	if err != nil {
		path = imp.Path.Value
	}
	// Imported packages are referenced, not defined here.
	impID, err := ex.b.RecordPackage(builder.SymbolOptions{
		Name:      path,
		Delimiter: goDelimiter,
	})
	if err != nil {
		return err
	}
	refID, err := ex.b.RecordRefImport(pkgID, impID)
	if err != nil {
		return err
	}
	return ex.recordLocation(ex.b.RecordReferenceLocation, refID, fileID, imp.Path)
}

func (ex *extractor) recordFunc(pkgID, fileID store.ElementID, pkgName string, d *ast.FuncDecl) error {
	var id store.ElementID
	var err error

	if d.Recv == nil || len(d.Recv.List) == 0 {
		id, err = ex.b.RecordFunction(builder.SymbolOptions{
			Name:    d.Name.Name,
			Parent:  pkgID,
			Indexed: true,
		})
		if err != nil {
			return err
		}
		ex.funcs[pkgName+"."+d.Name.Name] = id
	} else {
		recvName := receiverTypeName(d.Recv.List[0].Type)
		typeID, err := ex.resolveReceiver(pkgID, recvName)
		if err != nil {
			return err
		}
		id, err = ex.b.RecordMethod(builder.SymbolOptions{
			Name:    d.Name.Name,
			Parent:  typeID,
			Indexed: true,
		})
		if err != nil {
			return err
		}
		ex.funcs[pkgName+"."+recvName+"."+d.Name.Name] = id
	}

	if err := ex.recordLocation(ex.b.RecordSymbolLocation, id, fileID, d.Name); err != nil {
		return err
	}
	if err := ex.recordLocation(ex.b.RecordSymbolScopeLocation, id, fileID, d); err != nil {
		return err
	}

	if d.Body != nil {
		ex.collectCalls(id, fileID, pkgName, d.Body)
	}
	return nil
}

// resolveReceiver returns the node for a method receiver's type. A type
// already recorded keeps the kind its declaration stamped; only receivers
// of still-undeclared types get a placeholder node, which the declaration
// upgrades when it is reached.
func (ex *extractor) resolveReceiver(pkgID store.ElementID, name string) (store.ElementID, error) {
	key := typeKey{parent: pkgID, name: name}
	if id, ok := ex.typeNodes[key]; ok {
		return id, nil
	}
	id, err := ex.b.RecordType(builder.SymbolOptions{
		Name:   name,
		Parent: pkgID,
	})
	if err != nil {
		return 0, err
	}
	ex.typeNodes[key] = id
	return id, nil
}

// collectCalls gathers plain identifier calls for later resolution.
// Selector calls need type information to resolve and are left out.
func (ex *extractor) collectCalls(caller, fileID store.ElementID, pkgName string, body *ast.BlockStmt) {
	ast.Inspect(body, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		if ident, ok := call.Fun.(*ast.Ident); ok {
			ex.calls = append(ex.calls, pendingCall{
				caller: caller,
				callee: pkgName + "." + ident.Name,
				fileID: fileID,
				site:   call.Fun,
			})
		}
		return true
	})
}

// resolveCalls records a call reference for every collected call site
// whose target was indexed.
func (ex *extractor) resolveCalls() {
	for _, pc := range ex.calls {
		calleeID, ok := ex.funcs[pc.callee]
		if !ok {
			continue
		}
		refID, err := ex.b.RecordRefCall(pc.caller, calleeID)
		if err != nil {
			ex.logger.Warn("recording call failed", zap.Error(err))
			continue
		}
		if err := ex.recordLocation(ex.b.RecordReferenceLocation, refID, pc.fileID, pc.site); err != nil {
			ex.logger.Warn("recording call site failed", zap.Error(err))
		}
	}
	ex.calls = nil
}

func (ex *extractor) recordGenDecl(pkgID, fileID store.ElementID, d *ast.GenDecl) error {
	for _, spec := range d.Specs {
		switch s := spec.(type) {
		case *ast.TypeSpec:
			if err := ex.recordTypeSpec(pkgID, fileID, s); err != nil {
				return err
			}
		case *ast.ValueSpec:
			for _, name := range s.Names {
				if name.Name == "_" {
					continue
				}
				id, err := ex.b.RecordGlobalVariable(builder.SymbolOptions{
					Name:    name.Name,
					Parent:  pkgID,
					Indexed: true,
				})
				if err != nil {
					return err
				}
				if err := ex.recordLocation(ex.b.RecordSymbolLocation, id, fileID, name); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (ex *extractor) recordTypeSpec(pkgID, fileID store.ElementID, s *ast.TypeSpec) error {
	opts := builder.SymbolOptions{Name: s.Name.Name, Parent: pkgID, Indexed: true}

	var id store.ElementID
	var err error
	switch t := s.Type.(type) {
	case *ast.StructType:
		id, err = ex.b.RecordStruct(opts)
		if err != nil {
			return err
		}
		if err := ex.recordFields(id, fileID, t.Fields); err != nil {
			return err
		}
	case *ast.InterfaceType:
		id, err = ex.b.RecordInterface(opts)
		if err != nil {
			return err
		}
		if err := ex.recordInterfaceMethods(id, fileID, t.Methods); err != nil {
			return err
		}
	default:
		if s.Assign.IsValid() {
			id, err = ex.b.RecordTypedef(opts)
		} else {
			id, err = ex.b.RecordType(opts)
		}
		if err != nil {
			return err
		}
	}
	ex.typeNodes[typeKey{parent: pkgID, name: s.Name.Name}] = id
	return ex.recordLocation(ex.b.RecordSymbolLocation, id, fileID, s.Name)
}

func (ex *extractor) recordFields(structID, fileID store.ElementID, fields *ast.FieldList) error {
	if fields == nil {
		return nil
	}
	for _, field := range fields.List {
		for _, name := range field.Names {
			id, err := ex.b.RecordField(builder.SymbolOptions{
				Name:    name.Name,
				Parent:  structID,
				Indexed: true,
			})
			if err != nil {
				return err
			}
			if err := ex.recordLocation(ex.b.RecordSymbolLocation, id, fileID, name); err != nil {
				return err
			}
		}
	}
	return nil
}

func (ex *extractor) recordInterfaceMethods(ifaceID, fileID store.ElementID, methods *ast.FieldList) error {
	if methods == nil {
		return nil
	}
	for _, m := range methods.List {
		for _, name := range m.Names {
			id, err := ex.b.RecordMethod(builder.SymbolOptions{
				Name:    name.Name,
				Parent:  ifaceID,
				Indexed: true,
			})
			if err != nil {
				return err
			}
			if err := ex.recordLocation(ex.b.RecordSymbolLocation, id, fileID, name); err != nil {
				return err
			}
		}
	}
	return nil
}

type locationRecorder func(elementID, fileID store.ElementID, startLine, startColumn, endLine, endColumn int) error

func (ex *extractor) recordLocation(record locationRecorder, elementID, fileID store.ElementID, n ast.Node) error {
	start := ex.fset.Position(n.Pos())
	end := ex.fset.Position(n.End())
	// End positions point one past the node's last character.
	return record(elementID, fileID, start.Line, start.Column, end.Line, end.Column-1)
}

// receiverTypeName returns the base type name of a method receiver.
func receiverTypeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return receiverTypeName(t.X)
	case *ast.IndexExpr:
		return receiverTypeName(t.X)
	case *ast.IndexListExpr:
		return receiverTypeName(t.X)
	default:
		return ""
	}
}
