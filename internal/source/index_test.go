package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/goattr/internal/logging"
	"github.com/dshills/goattr/pkg/types"
)

const (
	tagType    = "example.com/app/attrs.Tag"
	tableType  = "example.com/app/attrs.Table"
	routeType  = "example.com/app/attrs.Route"
	markerType = "example.com/app/attrs.Marker"
	plainType  = "example.com/app/attrs.Plain"

	baseClass  = "example.com/app/models.Base"
	userClass  = "example.com/app/models.User"
	adminClass = "example.com/app/admin.Admin"
)

var fixtureTree = map[string]string{
	"go.mod": "module example.com/app\n\ngo 1.25\n",

	"attrs/attrs.go": `package attrs

//@Descriptor{Targets: "class", Repeatable: true}
type Tag struct {
	Name string
}

//@Descriptor{Targets: "class"}
type Table struct {
	Name   string
	Schema string
}

//@Descriptor{Targets: {"method"}, Repeatable: true}
type Route struct {
	Path   string
	Method string
}

//@Descriptor
type Marker struct{}

// Plain is not a descriptor type
type Plain struct{}
`,

	"models/models.go": `package models

import "example.com/app/attrs"

//@attrs.Table{"base"}
//@attrs.Tag{Name: "base"}
type Base struct {
	ID int
}

//@attrs.Route{"/save", "POST"}
func (b *Base) Save() {}

//@attrs.Tag{Name: "user"}
//@attrs.Tag{Name: "user"}
type User struct {
	Base
	Name string
}

//@attrs.Route{Path: "/users"}
//@attrs.Route{Path: "/users/all"}
func (u User) List() {}

func (u *User) helper() {}

type Repo interface {
	Find()
}
`,

	"admin/admin.go": `package admin

import (
	a "example.com/app/attrs"
	"example.com/app/models"
)

//@a.Marker
//@a.Tag{Name: "admin"}
type Admin struct {
	models.User
}

//@a.Route{"/admin", "GET", "extra"}
func (x *Admin) Dashboard() {}
`,

	"admin/admin_test.go": `package admin

//@Tag{Name: "test"}
type Fixture struct{}
`,

	"testdata/ignored.go": "package ignored\n\ntype Ignored struct{}\n",
	"_scratch/ignored.go": "package scratch\n\ntype Ignored struct{}\n",
	".hidden/ignored.go":  "package hidden\n\ntype Ignored struct{}\n",
	"vendor/v/v.go":       "package v\n\ntype Vendored struct{}\n",
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func scanned(t *testing.T) (*Index, string) {
	t.Helper()

	root := t.TempDir()
	writeTree(t, root, fixtureTree)

	idx := New(Config{Workers: 2}, logging.Discard())
	_, err := idx.Scan(context.Background(), root)
	require.NoError(t, err)
	return idx, root
}

func desc(descriptorType string, fields map[string]any) types.Descriptor {
	return types.NewDescriptor(descriptorType, fields)
}

func TestScan_Statistics(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, fixtureTree)

	idx := New(Config{}, logging.Discard())
	stats, err := idx.Scan(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.FilesParsed)
	assert.Equal(t, 0, stats.FilesUnchanged)
	assert.Equal(t, 0, stats.FilesFailed)
	assert.Empty(t, stats.ErrorMessages)
	assert.Equal(t, 3, idx.FileCount())
	assert.Equal(t, []string{
		adminClass,
		markerType,
		plainType,
		routeType,
		tableType,
		tagType,
		baseClass,
		userClass,
	}, idx.Classes())
	assert.Equal(t, map[string]string{"example.com/app": root}, idx.Modules())
}

func TestScan_IncludeTestsAndVendor(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, fixtureTree)

	idx := New(Config{IncludeTests: true, IncludeVendor: true}, logging.Discard())
	_, err := idx.Scan(context.Background(), root)
	require.NoError(t, err)

	classes := idx.Classes()
	assert.Contains(t, classes, "example.com/app/admin.Fixture")
	assert.Contains(t, classes, "example.com/app/vendor/v.Vendored")
	assert.NotContains(t, classes, "example.com/app/testdata.Ignored")
}

func TestScan_Rescan(t *testing.T) {
	idx, root := scanned(t)

	stats, err := idx.Scan(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.FilesParsed)
	assert.Equal(t, 3, stats.FilesUnchanged)

	writeTree(t, root, map[string]string{
		"admin/admin.go": "package admin\n\ntype Admin struct{}\n\ntype Extra struct{}\n",
	})
	require.NoError(t, os.Remove(filepath.Join(root, "models", "models.go")))

	stats, err = idx.Scan(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesParsed)
	assert.Equal(t, 1, stats.FilesUnchanged)
	assert.Equal(t, 1, stats.FilesRemoved)
	assert.NotContains(t, idx.Classes(), userClass)
	assert.Contains(t, idx.Classes(), "example.com/app/admin.Extra")
}

func TestScan_ModulePathChange(t *testing.T) {
	idx, root := scanned(t)

	writeTree(t, root, map[string]string{
		"go.mod": "module example.com/renamed\n\ngo 1.25\n",
	})

	stats, err := idx.Scan(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.FilesParsed)
	assert.Equal(t, 0, stats.FilesUnchanged)
	assert.NotContains(t, idx.Classes(), userClass)
	assert.Contains(t, idx.Classes(), "example.com/renamed/models.User")

	_, err = idx.ClassesInNamespace(context.Background(), "example.com/app/models")
	assert.ErrorIs(t, err, ErrNoModule)
	classes, err := idx.ClassesInNamespace(context.Background(), "example.com/renamed/models")
	require.NoError(t, err)
	assert.Contains(t, classes, "example.com/renamed/models.User")
}

func TestScan_SubdirectoryKeepsOtherFiles(t *testing.T) {
	idx, root := scanned(t)

	stats, err := idx.Scan(context.Background(), filepath.Join(root, "models"))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesUnchanged)
	assert.Equal(t, 0, stats.FilesRemoved)
	assert.Equal(t, 3, idx.FileCount())
}

func TestScan_RecordsDirectiveErrors(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"go.mod": "module example.com/broken\n",
		"b.go":   "package broken\n\n//@Tag{Name: }\n//@Tag{Name: \"ok\"}\ntype B struct{}\n",
	})

	idx := New(Config{}, logging.Discard())
	stats, err := idx.Scan(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, stats.ErrorMessages, 1)
	assert.Contains(t, stats.ErrorMessages[0], "b.go:3")

	found, err := idx.DescriptorsOn(types.Target{Class: "example.com/broken.B"}, "example.com/broken.Tag")
	require.NoError(t, err)
	assert.Equal(t, []types.Descriptor{desc("example.com/broken.Tag", map[string]any{"Name": "ok"})}, found)
}

func TestScan_Errors(t *testing.T) {
	idx := New(Config{}, logging.Discard())

	_, err := idx.Scan(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "f.go")
	require.NoError(t, os.WriteFile(file, []byte("package f\n"), 0o644))
	_, err = idx.Scan(context.Background(), file)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	root := t.TempDir()
	writeTree(t, root, fixtureTree)
	_, err = idx.Scan(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScan_NoModule(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.go": "package a\n\ntype A struct{}\n"})

	idx := New(Config{}, logging.Discard())
	_, err := idx.Scan(context.Background(), root)
	if err == nil {
		t.Skip("temp dir is governed by a go.mod above it")
	}
	assert.ErrorIs(t, err, ErrNoModule)
	assert.Equal(t, 0, idx.FileCount())
}

func TestResolveMeta(t *testing.T) {
	idx, _ := scanned(t)

	meta, err := idx.ResolveMeta(tagType)
	require.NoError(t, err)
	assert.Equal(t, types.DescriptorMeta{OnClass: true, Repeatable: true}, meta)

	meta, err = idx.ResolveMeta(routeType)
	require.NoError(t, err)
	assert.Equal(t, types.DescriptorMeta{OnMethod: true, Repeatable: true}, meta)

	meta, err = idx.ResolveMeta(markerType)
	require.NoError(t, err)
	assert.True(t, meta.OnClass)
	assert.True(t, meta.OnMethod)
	assert.False(t, meta.Repeatable)

	_, err = idx.ResolveMeta(plainType)
	assert.ErrorIs(t, err, types.ErrNotADescriptorType)

	_, err = idx.ResolveMeta("example.com/app/attrs.Missing")
	assert.ErrorIs(t, err, types.ErrUnknownDescriptorType)
}

func TestResolveMeta_InvalidMarker(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"go.mod": "module example.com/m\n",
		"m.go": `package m

//@Descriptor{Targets: "everywhere"}
type A struct{}

//@Descriptor{"class", "yes"}
type B struct{}

//@Descriptor{"class", true}
type C struct{}
`,
	})
	idx := New(Config{}, logging.Discard())
	_, err := idx.Scan(context.Background(), root)
	require.NoError(t, err)

	_, err = idx.ResolveMeta("example.com/m.A")
	assert.ErrorIs(t, err, types.ErrInvalidDirective)
	_, err = idx.ResolveMeta("example.com/m.B")
	assert.ErrorIs(t, err, types.ErrInvalidDirective)

	meta, err := idx.ResolveMeta("example.com/m.C")
	require.NoError(t, err)
	assert.Equal(t, types.DescriptorMeta{OnClass: true, Repeatable: true}, meta)
}

func TestDescriptorsOn_Class(t *testing.T) {
	idx, _ := scanned(t)

	found, err := idx.DescriptorsOn(types.Target{Class: baseClass}, tableType)
	require.NoError(t, err)
	assert.Equal(t, []types.Descriptor{desc(tableType, map[string]any{"Name": "base"})}, found)

	found, err = idx.DescriptorsOn(types.Target{Class: userClass}, tagType)
	require.NoError(t, err)
	assert.Len(t, found, 2, "duplicates are kept at this level")

	found, err = idx.DescriptorsOn(types.Target{Class: adminClass}, markerType)
	require.NoError(t, err)
	assert.Equal(t, []types.Descriptor{desc(markerType, nil)}, found)

	found, err = idx.DescriptorsOn(types.Target{Class: userClass}, tableType)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestDescriptorsOn_Methods(t *testing.T) {
	idx, _ := scanned(t)

	found, err := idx.DescriptorsOn(types.Target{Class: userClass, Method: "List"}, routeType)
	require.NoError(t, err)
	assert.Equal(t, []types.Descriptor{
		desc(routeType, map[string]any{"Path": "/users"}),
		desc(routeType, map[string]any{"Path": "/users/all"}),
	}, found)

	found, err = idx.DescriptorsOn(types.Target{Class: userClass, Method: "Save"}, routeType)
	require.NoError(t, err)
	assert.Equal(t, []types.Descriptor{
		desc(routeType, map[string]any{"Path": "/save", "Method": "POST"}),
	}, found, "promoted methods read the declaring type")

	found, err = idx.DescriptorsOn(types.Target{Class: adminClass, Method: "Dashboard"}, routeType)
	require.NoError(t, err)
	assert.Equal(t, []types.Descriptor{
		desc(routeType, map[string]any{"Path": "/admin", "Method": "GET", "2": "extra"}),
	}, found)

	_, err = idx.DescriptorsOn(types.Target{Class: userClass, Method: "Missing"}, routeType)
	assert.ErrorIs(t, err, types.ErrUnknownMethod)
}

func TestDescriptorsOn_UnknownClass(t *testing.T) {
	idx, _ := scanned(t)

	_, err := idx.DescriptorsOn(types.Target{Class: "example.com/app/models.Nope"}, tagType)
	assert.ErrorIs(t, err, types.ErrUnknownClass)

	_, err = idx.DescriptorsOn(types.Target{Class: "example.com/app/models.Repo"}, tagType)
	assert.ErrorIs(t, err, types.ErrUnknownClass, "interfaces are not classes")
}

func TestParentOf(t *testing.T) {
	idx, _ := scanned(t)

	parent, ok, err := idx.ParentOf(userClass)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, baseClass, parent)

	parent, ok, err = idx.ParentOf(adminClass)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, userClass, parent)

	_, ok, err = idx.ParentOf(baseClass)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = idx.ParentOf("example.com/app/models.Nope")
	assert.ErrorIs(t, err, types.ErrUnknownClass)
}

func TestMethodsOf(t *testing.T) {
	idx, _ := scanned(t)

	methods, err := idx.MethodsOf(userClass)
	require.NoError(t, err)
	assert.Equal(t, []string{"List", "helper", "Save"}, methods)

	methods, err = idx.MethodsOf(adminClass)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dashboard", "List", "helper", "Save"}, methods)

	_, err = idx.MethodsOf("example.com/app/models.Nope")
	assert.ErrorIs(t, err, types.ErrUnknownClass)
}

func TestParentCycleTerminates(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"go.mod": "module example.com/cycle\n",
		"c.go": `package cycle

type A struct{ *B }

func (A) One() {}

type B struct{ *A }

func (B) Two() {}
`,
	})
	idx := New(Config{}, logging.Discard())
	_, err := idx.Scan(context.Background(), root)
	require.NoError(t, err)

	methods, err := idx.MethodsOf("example.com/cycle.A")
	require.NoError(t, err)
	assert.Equal(t, []string{"One", "Two"}, methods)

	_, err = idx.DescriptorsOn(types.Target{Class: "example.com/cycle.A", Method: "Three"}, "x.Y")
	assert.ErrorIs(t, err, types.ErrUnknownMethod)
}

func TestClassesUnder(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, fixtureTree)
	idx := New(Config{}, logging.Discard())

	classes, err := idx.ClassesUnder(context.Background(), []string{filepath.Join(root, "models")})
	require.NoError(t, err)
	assert.Equal(t, []string{baseClass, userClass}, classes)

	classes, err = idx.ClassesUnder(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{baseClass, userClass}, classes, "no roots lists what is indexed")

	classes, err = idx.ClassesUnder(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Len(t, classes, 8)
}

func TestClassesInNamespace(t *testing.T) {
	idx, root := scanned(t)

	classes, err := idx.ClassesInNamespace(context.Background(), "example.com/app/models")
	require.NoError(t, err)
	assert.Equal(t, []string{baseClass, userClass}, classes)

	writeTree(t, root, map[string]string{
		"models/more/more.go": "package more\n\ntype More struct{}\n",
	})
	classes, err = idx.ClassesInNamespace(context.Background(), "example.com/app/models/")
	require.NoError(t, err)
	assert.Equal(t, []string{baseClass, userClass, "example.com/app/models/more.More"}, classes)

	classes, err = idx.ClassesInNamespace(context.Background(), "example.com/app/missing")
	require.NoError(t, err)
	assert.Empty(t, classes)

	classes, err = idx.ClassesInNamespace(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Contains(t, classes, baseClass)

	_, err = idx.ClassesInNamespace(context.Background(), "example.com/elsewhere")
	assert.ErrorIs(t, err, ErrNoModule)

	fresh := New(Config{}, logging.Discard())
	_, err = fresh.ClassesInNamespace(context.Background(), "example.com/app/models")
	assert.ErrorIs(t, err, ErrNoModule)
}

func TestReset(t *testing.T) {
	idx, _ := scanned(t)
	idx.Reset()

	assert.Empty(t, idx.Classes())
	assert.Empty(t, idx.Modules())
	assert.Equal(t, 0, idx.FileCount())
}

func TestScanLock(t *testing.T) {
	var lock ScanLock
	assert.True(t, lock.TryAcquire())
	assert.False(t, lock.TryAcquire())
	lock.Release()
	assert.True(t, lock.TryAcquire())
}
