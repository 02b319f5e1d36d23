package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/idlbind/source"
)

func writeFile(t *testing.T, path, text string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
}

func TestResolveSpecModuleFlag(t *testing.T) {
	genModules = []string{"dom=pkg/package.json"}
	defer func() { genModules = nil }()

	spec, err := resolveSpec(nil)
	require.NoError(t, err)
	require.Len(t, spec.Modules, 1)
	assert.Equal(t, "dom", spec.Modules[0].Name)
	assert.Equal(t, "pkg/package.json", spec.Modules[0].DescriptorPath)
}

func TestResolveSpecRejectsMalformedModuleFlag(t *testing.T) {
	genModules = []string{"missing-equals"}
	defer func() { genModules = nil }()

	_, err := resolveSpec(nil)
	require.Error(t, err)
}

func TestApplyConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := filepath.Join(tmpDir, "idlbind.toml")
	writeFile(t, cfg, `
out = "build/bindings"
relaxed = true

[[sources]]
idl = "idl/core.idl"
impl = "impl"

[[sources]]
idl = "idl/extra"

[[modules]]
name = "dom"
descriptor = "vendor/dom/package.json"
`)

	genConfig = cfg
	defer func() { genConfig = "" }()

	spec := buildSpec{Out: "generated"}
	require.NoError(t, applyConfigFile(&spec))

	assert.Equal(t, "build/bindings", spec.Out)
	assert.True(t, spec.Relaxed)
	require.Len(t, spec.Sources, 2)
	assert.Equal(t, "impl", spec.Sources[0].ImplDir)
	assert.Equal(t, "idl/extra", spec.Sources[1].ImplDir, "directory inputs default impl to themselves")
	require.Len(t, spec.Modules, 1)
	assert.Equal(t, "dom", spec.Modules[0].Name)
}

func TestRunBuildEndToEnd(t *testing.T) {
	tmpDir := t.TempDir()
	idlDir := filepath.Join(tmpDir, "idl")
	outDir := filepath.Join(tmpDir, "generated")

	writeFile(t, filepath.Join(idlDir, "node.idl"), `
interface Node {
  readonly attribute unsigned short nodeType;
  Node cloneNode(optional boolean deep);
};

dictionary CloneOptions {
  boolean deep = false;
};
`)
	writeFile(t, filepath.Join(idlDir, "partials.idl"), `
partial interface Node {
  attribute DOMString nodeName;
};
`)

	spec := buildSpec{
		Sources: []source.Declaration{{IDLPath: idlDir, ImplDir: filepath.Join(tmpDir, "impl")}},
		Out:     outDir,
	}

	require.NoError(t, runBuild(context.Background(), spec))

	node, err := os.ReadFile(filepath.Join(outDir, "Node.js"))
	require.NoError(t, err)
	assert.Contains(t, string(node), "class Node")
	assert.Contains(t, string(node), "nodeName", "partial members merge before emission")

	_, err = os.Stat(filepath.Join(outDir, "CloneOptions.js"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(outDir, "utils.js"))
	require.NoError(t, err)
}

func TestRunBuildSkipsModuleOwnedTypes(t *testing.T) {
	tmpDir := t.TempDir()
	outDir := filepath.Join(tmpDir, "generated")

	writeFile(t, filepath.Join(tmpDir, "own.idl"), `interface Mine { attribute External ref; };`)

	modDir := filepath.Join(tmpDir, "mod")
	writeFile(t, filepath.Join(modDir, "types.idl"), `interface External { };`)
	writeFile(t, filepath.Join(modDir, "package.json"), `{
  "idlbind": {
    "output_subpath": "generated/bindings",
    "sources": ["types.idl"]
  }
}`)

	spec := buildSpec{
		Sources: []source.Declaration{{IDLPath: filepath.Join(tmpDir, "own.idl"), ImplDir: tmpDir}},
		Modules: []source.ModuleContribution{{Name: "ext", DescriptorPath: filepath.Join(modDir, "package.json")}},
		Out:     outDir,
	}

	require.NoError(t, runBuild(context.Background(), spec))

	_, err := os.Stat(filepath.Join(outDir, "Mine.js"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(outDir, "External.js"))
	assert.True(t, os.IsNotExist(err), "module-owned types are resolvable but not emitted")
}

func TestImplDirFor(t *testing.T) {
	tmpDir := t.TempDir()
	assert.Equal(t, tmpDir, implDirFor(tmpDir))

	file := filepath.Join(tmpDir, "a.idl")
	writeFile(t, file, "")
	assert.Equal(t, tmpDir, implDirFor(file))
}
