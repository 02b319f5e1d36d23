package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCollectSingleFileNoExtensionCheck(t *testing.T) {
	tmpDir := t.TempDir()
	// Deliberately not .idl: explicit files are taken unconditionally
	path := writeFile(t, tmpDir, "node.webidl", "interface Node {};")

	c := NewCollector()
	require.NoError(t, c.AddSource(Declaration{IDLPath: path, ImplDir: "impl"}))

	entries, err := c.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, FileEntry{IDLPath: path, ImplDir: "impl"}, entries[0])
	assert.False(t, entries[0].FromModule())
}

func TestCollectDirectoryFiltersByExtension(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "a.idl", "interface A {};")
	writeFile(t, tmpDir, "b.idl", "interface B {};")
	writeFile(t, tmpDir, "notes.txt", "not idl")
	writeFile(t, tmpDir, "c.idl.bak", "interface C {};")
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "nested"), 0755))
	writeFile(t, filepath.Join(tmpDir, "nested"), "d.idl", "interface D {};")

	c := NewCollector()
	require.NoError(t, c.AddSource(Declaration{IDLPath: tmpDir, ImplDir: "impl"}))

	entries, err := c.Collect(context.Background())
	require.NoError(t, err)

	// Only the directly-contained matching files, no recursion
	require.Len(t, entries, 2)
	paths := []string{entries[0].IDLPath, entries[1].IDLPath}
	assert.Contains(t, paths, filepath.Join(tmpDir, "a.idl"))
	assert.Contains(t, paths, filepath.Join(tmpDir, "b.idl"))
}

func TestCollectMissingPathIsFatal(t *testing.T) {
	c := NewCollector()
	require.NoError(t, c.AddSource(Declaration{IDLPath: "/does/not/exist.idl"}))

	entries, err := c.Collect(context.Background())
	require.Error(t, err)
	assert.Nil(t, entries, "no partial results on failure")
}

func TestCollectPreservesRegistrationOrder(t *testing.T) {
	tmpDir := t.TempDir()
	first := writeFile(t, tmpDir, "first.idl", "interface First {};")
	second := writeFile(t, tmpDir, "second.idl", "interface Second {};")

	c := NewCollector()
	require.NoError(t, c.AddSource(Declaration{IDLPath: second}))
	require.NoError(t, c.AddSource(Declaration{IDLPath: first}))

	entries, err := c.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, second, entries[0].IDLPath)
	assert.Equal(t, first, entries[1].IDLPath)
}

func TestAddSourceValidation(t *testing.T) {
	c := NewCollector()
	err := c.AddSource(Declaration{})
	require.Error(t, err)

	err = c.AddModule(ModuleContribution{Name: "mod"})
	require.Error(t, err)

	err = c.AddModule(ModuleContribution{DescriptorPath: "pkg.json"})
	require.Error(t, err)
}

func TestCollectModuleContribution(t *testing.T) {
	modDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(modDir, "idl"), 0755))
	writeFile(t, filepath.Join(modDir, "idl"), "shared.idl", "interface Shared {};")
	descriptor := writeFile(t, modDir, "module.json", `{
		"name": "shared-types",
		"idlbind": {
			"output_subpath": "generated/shared",
			"sources": ["idl/shared.idl"]
		}
	}`)

	c := NewCollector()
	require.NoError(t, c.AddModule(ModuleContribution{Name: "shared-types", DescriptorPath: descriptor}))

	entries, err := c.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Join(modDir, "idl", "shared.idl"), entries[0].IDLPath)
	assert.Equal(t, "generated/shared", entries[0].OutputSubpath)
	assert.True(t, entries[0].FromModule())
}

func TestCollectModuleWithoutSectionIsSkipped(t *testing.T) {
	modDir := t.TempDir()
	descriptor := writeFile(t, modDir, "module.json", `{"name": "plain-module"}`)

	c := NewCollector()
	require.NoError(t, c.AddModule(ModuleContribution{Name: "plain-module", DescriptorPath: descriptor}))

	entries, err := c.Collect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCollectModuleUnreadableDescriptorIsFatal(t *testing.T) {
	c := NewCollector()
	require.NoError(t, c.AddModule(ModuleContribution{
		Name:           "ghost",
		DescriptorPath: "/does/not/exist/module.json",
	}))

	_, err := c.Collect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}
