package discover

import (
	"errors"
	"testing"

	"github.com/dshills/goattr/internal/registry"
	"github.com/dshills/goattr/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	repeatableD = "app/attrs.D"
	singleS     = "app/attrs.S"
	routeR      = "app/attrs.R"
)

func d(fields map[string]any) types.Descriptor {
	return types.NewDescriptor(repeatableD, fields)
}

func s(name string) types.Descriptor {
	return types.NewDescriptor(singleS, map[string]any{"name": name})
}

func r(path string) types.Descriptor {
	return types.NewDescriptor(routeR, map[string]any{"path": path})
}

// hierarchy builds C extends B extends A
func hierarchy(t *testing.T) *registry.Registry {
	t.Helper()

	reg := registry.New()
	require.NoError(t, reg.DefineDescriptor(repeatableD, types.DescriptorMeta{OnClass: true, Repeatable: true}))
	require.NoError(t, reg.DefineDescriptor(singleS, types.DescriptorMeta{OnClass: true}))
	require.NoError(t, reg.DefineDescriptor(routeR, types.DescriptorMeta{OnMethod: true, Repeatable: true}))

	require.NoError(t, reg.DefineClass("app.A", ""))
	require.NoError(t, reg.DefineClass("app.B", "app.A"))
	require.NoError(t, reg.DefineClass("app.C", "app.B"))

	require.NoError(t, reg.AnnotateClass("app.A", d(map[string]any{"x": 1}), s("a")))
	require.NoError(t, reg.AnnotateClass("app.B", d(map[string]any{"y": 2})))
	return reg
}

func TestOnClass_RepeatableAscendUnion(t *testing.T) {
	reg := hierarchy(t)

	result := OnClass(reg, repeatableD, "app.B", true, true)
	require.NotNil(t, result)
	assert.Equal(t, "app.B", result.Target)
	assert.Equal(t, []types.Descriptor{d(map[string]any{"y": 2}), d(map[string]any{"x": 1})}, result.Descriptors)
	assert.Empty(t, result.Methods)
}

func TestOnClass_WithoutAscendStaysOnTarget(t *testing.T) {
	reg := hierarchy(t)

	result := OnClass(reg, repeatableD, "app.B", false, true)
	require.NotNil(t, result)
	assert.Equal(t, []types.Descriptor{d(map[string]any{"y": 2})}, result.Descriptors)

	assert.Nil(t, OnClass(reg, singleS, "app.C", false, false))
}

func TestOnClass_NonRepeatableStopsAtNearestLevel(t *testing.T) {
	reg := hierarchy(t)
	require.NoError(t, reg.AnnotateClass("app.B", s("b1"), s("b2")))

	result := OnClass(reg, singleS, "app.C", true, false)
	require.NotNil(t, result)
	assert.Equal(t, "app.C", result.Target)
	// B's instances only, never merged with A's
	assert.Equal(t, []types.Descriptor{s("b1"), s("b2")}, result.Descriptors)
}

func TestOnClass_NonRepeatableReachesRoot(t *testing.T) {
	reg := hierarchy(t)

	result := OnClass(reg, singleS, "app.C", true, false)
	require.NotNil(t, result)
	assert.Equal(t, []types.Descriptor{s("a")}, result.Descriptors)
}

func TestOnClass_NothingFound(t *testing.T) {
	reg := hierarchy(t)

	assert.Nil(t, OnClass(reg, "app/attrs.Missing", "app.C", true, true))
	assert.Nil(t, OnClass(reg, repeatableD, "app.Unknown", true, true), "unknown classes yield nil")
}

func TestOnClass_ParentCycleTerminates(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.DefineClass("app.X", "app.Y"))
	require.NoError(t, reg.DefineClass("app.Y", "app.X"))
	require.NoError(t, reg.AnnotateClass("app.Y", d(map[string]any{"v": 1})))

	result := OnClass(reg, repeatableD, "app.X", true, true)
	require.NotNil(t, result)
	assert.Equal(t, []types.Descriptor{d(map[string]any{"v": 1})}, result.Descriptors)
}

func TestOnClass_DeduplicatesAcrossLevels(t *testing.T) {
	reg := hierarchy(t)
	require.NoError(t, reg.AnnotateClass("app.C", d(map[string]any{"x": 1})))

	result := OnClass(reg, repeatableD, "app.C", true, true)
	require.NotNil(t, result)
	assert.Equal(t, []types.Descriptor{d(map[string]any{"x": 1}), d(map[string]any{"y": 2})}, result.Descriptors)
}

func TestInMethods_DedupesPerMethod(t *testing.T) {
	reg := hierarchy(t)
	require.NoError(t, reg.AnnotateMethod("app.B", "m", r("/a"), r("/a"), r("/b")))
	require.NoError(t, reg.AddMethod("app.B", "plain"))
	require.NoError(t, reg.AnnotateMethod("app.B", "other", r("/a")))

	result := InMethods(reg, routeR, "app.B")
	require.NotNil(t, result)
	assert.Equal(t, "app.B", result.Target)
	assert.Empty(t, result.Descriptors)
	require.Len(t, result.Methods, 2)

	assert.Equal(t, "m", result.Methods[0].Method)
	assert.Equal(t, []types.Descriptor{r("/a"), r("/b")}, result.Methods[0].Descriptors)
	assert.Equal(t, "other", result.Methods[1].Method)
	assert.Equal(t, []types.Descriptor{r("/a")}, result.Methods[1].Descriptors)
}

func TestInMethods_InheritedMethodsExposedByIntrospector(t *testing.T) {
	reg := hierarchy(t)
	require.NoError(t, reg.AnnotateMethod("app.A", "index", r("/index")))

	result := InMethods(reg, routeR, "app.C")
	require.NotNil(t, result)
	got, ok := result.Method("index")
	require.True(t, ok)
	assert.Equal(t, []types.Descriptor{r("/index")}, got)
}

func TestInMethods_NothingFound(t *testing.T) {
	reg := hierarchy(t)
	require.NoError(t, reg.AddMethod("app.B", "plain"))

	assert.Nil(t, InMethods(reg, routeR, "app.B"))
	assert.Nil(t, InMethods(reg, routeR, "app.Unknown"))
}

// failing reports errors for selected operations
type failing struct {
	Introspector
	descriptors bool
	parent      bool
	methods     bool
}

var errBroken = errors.New("broken")

func (f failing) DescriptorsOn(target types.Target, descriptorType string) ([]types.Descriptor, error) {
	if f.descriptors {
		return nil, errBroken
	}
	return f.Introspector.DescriptorsOn(target, descriptorType)
}

func (f failing) ParentOf(class string) (string, bool, error) {
	if f.parent {
		return "", false, errBroken
	}
	return f.Introspector.ParentOf(class)
}

func (f failing) MethodsOf(class string) ([]string, error) {
	if f.methods {
		return nil, errBroken
	}
	return f.Introspector.MethodsOf(class)
}

func TestDiscoverers_SwallowIntrospectionErrors(t *testing.T) {
	reg := hierarchy(t)
	require.NoError(t, reg.AnnotateMethod("app.B", "m", r("/a")))

	assert.Nil(t, OnClass(failing{Introspector: reg, descriptors: true}, repeatableD, "app.B", true, true))
	assert.Nil(t, OnClass(failing{Introspector: reg, parent: true}, repeatableD, "app.B", true, true))
	assert.Nil(t, InMethods(failing{Introspector: reg, methods: true}, routeR, "app.B"))
	assert.Nil(t, InMethods(failing{Introspector: reg, descriptors: true}, routeR, "app.B"))

	// A non-repeatable hit returns before the parent lookup fails
	assert.NotNil(t, OnClass(failing{Introspector: reg, parent: true}, repeatableD, "app.B", true, false))
}
