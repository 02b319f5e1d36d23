package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/idlbind/idl"
	"github.com/teranos/idlbind/model"
	"github.com/teranos/idlbind/registry"
	"github.com/teranos/idlbind/source"
)

func resolve(t *testing.T, texts ...string) *registry.Registry {
	t.Helper()
	docs := make([]source.Document, len(texts))
	for i, text := range texts {
		docs[i] = source.Document{Path: "test.idl", Text: text, ImplDir: "impl"}
	}
	reg, err := model.NewBuilder(idl.NewParser(), model.Options{}).BuildRegistry(docs)
	require.NoError(t, err)
	return reg
}

func TestEntriesListsInterfacesThenDictionaries(t *testing.T) {
	reg := resolve(t, `
		dictionary Opts { };
		interface Zed { };
		interface Alpha { };
	`)
	entries := Entries(reg)
	require.Len(t, entries, 3)
	assert.Equal(t, "Alpha", entries[0].Name())
	assert.Equal(t, "Zed", entries[1].Name())
	assert.Equal(t, "Opts", entries[2].Name())
	assert.Equal(t, registry.KindDictionary, entries[2].Kind)
}

func TestEntryMetadata(t *testing.T) {
	reg := resolve(t, `interface Node { }; dictionary Opts { };`)
	entries := Entries(reg)

	iface := entries[0]
	assert.Equal(t, "impl", iface.ImplDir())
	assert.False(t, iface.Imported())

	dict := entries[1]
	assert.Equal(t, "", dict.ImplDir(), "dictionaries have no implementation binding")
}

func TestRenderInterfaceAccessors(t *testing.T) {
	reg := resolve(t, `
		interface Counter {
			readonly attribute unsigned long count;
			attribute DOMString label;
			void increment(long amount);
		};
	`)
	iface, _ := reg.Interface("Counter")
	out, err := renderInterface(iface, reg)
	require.NoError(t, err)

	assert.Contains(t, out, "class Counter")
	assert.Contains(t, out, "get count()")
	assert.NotContains(t, out, "set count(", "readonly attribute must not get a setter")
	assert.Contains(t, out, "set label(value)")
	assert.Contains(t, out, `conversions["DOMString"](value)`)
	assert.Contains(t, out, "increment(amount)")
	assert.Contains(t, out, `conversions["long"](amount)`)
}

func TestRenderInterfaceMixinMembers(t *testing.T) {
	reg := resolve(t, `
		interface Bar { };
		interface Foo { void help(); };
		Bar implements Foo;
	`)
	bar, _ := reg.Interface("Bar")
	out, err := renderInterface(bar, reg)
	require.NoError(t, err)

	assert.Contains(t, out, "// via Foo")
	assert.Contains(t, out, "help()")
}

func TestRenderInterfaceUnknownMixinIsError(t *testing.T) {
	// Reachable only with a relaxed-mode registry, where the implements
	// target resolved but the mixin source never appeared.
	b := registry.NewBuilder()
	require.NoError(t, b.AddInterface(&registry.Interface{Name: "Foo", Mixins: []string{"Ghost"}}))
	reg := b.Build()

	foo, _ := reg.Interface("Foo")
	_, err := renderInterface(foo, reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Ghost"`)
}

func TestRenderInterfaceInheritance(t *testing.T) {
	reg := resolve(t, `interface Node { }; interface Element : Node { };`)
	elem, _ := reg.Interface("Element")
	out, err := renderInterface(elem, reg)
	require.NoError(t, err)
	assert.Contains(t, out, `extends utils.parentClass("Node")`)
}

func TestRenderDictionary(t *testing.T) {
	reg := resolve(t, `
		dictionary EventInit {
			required DOMString type;
			boolean bubbles = false;
			long detail;
		};
	`)
	dict, _ := reg.Dictionary("EventInit")
	out, err := renderDictionary(dict, reg)
	require.NoError(t, err)

	assert.Contains(t, out, "exports.convert = function convert(value)")
	assert.Contains(t, out, "type is required in EventInit")
	assert.Contains(t, out, "result.bubbles = false;")
	assert.Contains(t, out, `conversions["long"](value.detail)`)
}

func TestRenderDictionaryStringDefault(t *testing.T) {
	reg := resolve(t, `dictionary Opts { DOMString mode = "open"; };`)
	dict, _ := reg.Dictionary("Opts")
	out, err := renderDictionary(dict, reg)
	require.NoError(t, err)
	assert.Contains(t, out, `result.mode = "open";`, "string defaults must stay quoted literals")
}

func TestConverterExprResolvesTypes(t *testing.T) {
	reg := resolve(t, `
		typedef unsigned long Handle;
		interface Node { };
		dictionary Opts { };
	`)
	tests := []struct {
		idlType string
		want    string
	}{
		{"long", `conversions["long"](v)`},
		{"DOMString?", `conversions["DOMString"](v)`},
		{"Handle", `conversions["unsigned long"](v)`},
		{"Node", `utils.implForWrapper("Node", v)`},
		{"Opts", `utils.convertDictionary("Opts", v)`},
		{"any", "v"},
		{"MysteryType", "v"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, converterExpr(tt.idlType, "v", reg), "type %s", tt.idlType)
	}
}

func TestRenderDispatchesOnKind(t *testing.T) {
	reg := resolve(t, `interface A { }; dictionary B { };`)
	for _, entry := range Entries(reg) {
		out, err := entry.Render(reg)
		require.NoError(t, err)
		assert.NotEmpty(t, out)
	}

	_, err := Entry{Kind: registry.KindTypedef}.Render(reg)
	require.Error(t, err)
}

func TestUtilsModuleShape(t *testing.T) {
	assert.Contains(t, UtilsModule, "exports.implSymbol")
	assert.Contains(t, UtilsModule, "exports.registerBinding")
	assert.Contains(t, UtilsModule, "exports.convertDictionary")
}
