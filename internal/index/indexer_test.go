package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trailhead/internal/config"
	"trailhead/internal/store"
)

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func openResult(t *testing.T, res *Result) *store.Database {
	t.Helper()
	d := store.New()
	require.NoError(t, d.Open(res.DBPath))
	t.Cleanup(func() { d.Close() })
	return d
}

func TestRunRecordsSymbols(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"main.go": `package main

import "fmt"

type Greeter struct {
	Name string
}

func (g *Greeter) Greet() {
	fmt.Println(g.Name)
}

func helper() {}

func main() {
	helper()
}
`,
	})

	res, err := NewIndexer(config.Default(), dir).Run()
	require.NoError(t, err)
	assert.Equal(t, 1, res.FileCount)
	assert.Zero(t, res.ErrorCount)
	assert.Positive(t, res.SymbolCount)

	d := openResult(t, res)

	pkg, err := d.GetNodeBySerializedName(".\tmmain\ts\tp")
	require.NoError(t, err)
	assert.Equal(t, store.NodeKindPackage, pkg.Kind)

	greeter, err := d.GetNodeBySerializedName(".\tmmain\ts\tp\tnGreeter\ts\tp")
	require.NoError(t, err)
	assert.Equal(t, store.NodeKindStruct, greeter.Kind)

	field, err := d.GetNodeBySerializedName(".\tmmain\ts\tp\tnGreeter\ts\tp\tnName\ts\tp")
	require.NoError(t, err)
	assert.Equal(t, store.NodeKindField, field.Kind)

	method, err := d.GetNodeBySerializedName(".\tmmain\ts\tp\tnGreeter\ts\tp\tnGreet\ts\tp")
	require.NoError(t, err)
	assert.Equal(t, store.NodeKindMethod, method.Kind)

	mainFn, err := d.GetNodeBySerializedName(".\tmmain\ts\tp\tnmain\ts\tp")
	require.NoError(t, err)
	helperFn, err := d.GetNodeBySerializedName(".\tmmain\ts\tp\tnhelper\ts\tp")
	require.NoError(t, err)

	calls, err := d.FindEdges(func(e store.Edge) bool {
		return e.Kind == store.EdgeKindCall && e.SourceNodeID == mainFn.ID && e.TargetNodeID == helperFn.ID
	})
	require.NoError(t, err)
	assert.Len(t, calls, 1)

	fmtPkg, err := d.GetNodeBySerializedName(".\tmfmt\ts\tp")
	require.NoError(t, err)
	imports, err := d.FindEdges(func(e store.Edge) bool {
		return e.Kind == store.EdgeKindImport && e.TargetNodeID == fmtPkg.ID
	})
	require.NoError(t, err)
	assert.Len(t, imports, 1)

	// The imported package was referenced, not defined.
	_, err = d.GetSymbol(fmtPkg.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	files, err := d.ListFiles()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "go", files[0].Language)
	assert.True(t, files[0].Indexed)
}

func TestReceiverKindSurvivesDeclarationOrder(t *testing.T) {
	dir := writeProject(t, map[string]string{
		// Methods in a file walked before the type's declaration.
		"a_methods.go": `package lib

func (g *Gadget) Spin() {}
`,
		"b_types.go": `package lib

type Gadget struct{}

func (r *counter) Inc() {}

type counter struct {
	n int
}
`,
	})

	res, err := NewIndexer(config.Default(), dir).Run()
	require.NoError(t, err)

	d := openResult(t, res)

	// Declared across files, method seen first.
	gadget, err := d.GetNodeBySerializedName(".\tmlib\ts\tp\tnGadget\ts\tp")
	require.NoError(t, err)
	assert.Equal(t, store.NodeKindStruct, gadget.Kind)

	// Declared in the same file, method above the declaration.
	counter, err := d.GetNodeBySerializedName(".\tmlib\ts\tp\tncounter\ts\tp")
	require.NoError(t, err)
	assert.Equal(t, store.NodeKindStruct, counter.Kind)

	spin, err := d.GetNodeBySerializedName(".\tmlib\ts\tp\tnGadget\ts\tp\tnSpin\ts\tp")
	require.NoError(t, err)
	assert.Equal(t, store.NodeKindMethod, spin.Kind)
}

func TestRunSkipsExcludedAndTestFiles(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"lib.go":              "package lib\n\nfunc Keep() {}\n",
		"lib_test.go":         "package lib\n\nfunc TestKeep() {}\n",
		"types_gen.go":        "package lib\n\nfunc Generated() {}\n",
		"vendor/dep/dep.go":   "package dep\n\nfunc Vendored() {}\n",
		"README.md":           "not source\n",
		"testdata/fixture.go": "package fixture\n",
	})

	res, err := NewIndexer(config.Default(), dir).Run()
	require.NoError(t, err)
	assert.Equal(t, 1, res.FileCount)

	d := openResult(t, res)

	_, err = d.GetNodeBySerializedName(".\tmlib\ts\tp\tnKeep\ts\tp")
	assert.NoError(t, err)
	_, err = d.GetNodeBySerializedName(".\tmlib\ts\tp\tnGenerated\ts\tp")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = d.GetNodeBySerializedName(".\tmdep\ts\tp")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRunRecordsParseErrors(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"broken.go": "package broken\n\nfunc {\n",
	})

	res, err := NewIndexer(config.Default(), dir).Run()
	require.NoError(t, err)
	assert.Positive(t, res.ErrorCount)

	d := openResult(t, res)
	errs, err := d.ListErrors()
	require.NoError(t, err)
	assert.NotEmpty(t, errs)
}

func TestReindexWithClear(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"lib.go": "package lib\n\nfunc F() {}\n",
	})

	cfg := config.Default()
	res1, err := NewIndexer(cfg, dir).Run()
	require.NoError(t, err)

	res2, err := NewIndexer(cfg, dir).Run()
	require.NoError(t, err)
	assert.Equal(t, res1.SymbolCount, res2.SymbolCount)

	d := openResult(t, res2)
	nodes, err := d.FindNodes(func(n store.Node) bool {
		return n.SerializedName == ".\tmlib\ts\tp\tnF\ts\tp"
	})
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
}
