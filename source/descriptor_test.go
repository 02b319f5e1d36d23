package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadDescriptorJSON(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeFile(t, tmpDir, "module.json", `{
		"name": "dom-core",
		"version": "1.2.0",
		"idlbind": {
			"output_subpath": "generated/dom",
			"sources": ["idl/node.idl", "idl/element.idl"]
		}
	}`)

	desc, ok, err := ReadDescriptor(path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "generated/dom", desc.OutputSubpath)
	assert.Equal(t, []string{"idl/node.idl", "idl/element.idl"}, desc.Sources)
}

func TestReadDescriptorTOML(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeFile(t, tmpDir, "module.toml", `
name = "dom-core"

[idlbind]
output_subpath = "generated/dom"
sources = ["idl/node.idl"]
`)

	desc, ok, err := ReadDescriptor(path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "generated/dom", desc.OutputSubpath)
	assert.Equal(t, []string{"idl/node.idl"}, desc.Sources)
}

func TestReadDescriptorNoSection(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeFile(t, tmpDir, "module.json", `{"name": "unrelated", "main": "index.js"}`)

	_, ok, err := ReadDescriptor(path)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReadDescriptorMalformed(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeFile(t, tmpDir, "module.json", `{"name": `)

	_, _, err := ReadDescriptor(path)
	require.Error(t, err)
}

func TestReadDescriptorMissing(t *testing.T) {
	_, _, err := ReadDescriptor("/does/not/exist/module.json")
	require.Error(t, err)
}
