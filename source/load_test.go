package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDocumentsStableZip(t *testing.T) {
	tmpDir := t.TempDir()
	a := writeFile(t, tmpDir, "a.idl", "interface A {};")
	b := writeFile(t, tmpDir, "b.idl", "interface B {};")

	entries := []FileEntry{
		{IDLPath: b, ImplDir: "impl/b"},
		{IDLPath: a, OutputSubpath: "generated/a"},
	}

	docs, err := LoadDocuments(context.Background(), entries)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	// Output ordering matches input ordering, metadata travels with content
	assert.Equal(t, "interface B {};", docs[0].Text)
	assert.Equal(t, "impl/b", docs[0].ImplDir)
	assert.False(t, docs[0].FromModule())

	assert.Equal(t, "interface A {};", docs[1].Text)
	assert.Equal(t, "generated/a", docs[1].OutputSubpath)
	assert.True(t, docs[1].FromModule())
}

func TestLoadDocumentsReadFailureIsFatal(t *testing.T) {
	tmpDir := t.TempDir()
	a := writeFile(t, tmpDir, "a.idl", "interface A {};")

	entries := []FileEntry{
		{IDLPath: a},
		{IDLPath: "/does/not/exist.idl"},
	}

	docs, err := LoadDocuments(context.Background(), entries)
	require.Error(t, err)
	assert.Nil(t, docs)
}

func TestLoadDocumentsEmpty(t *testing.T) {
	docs, err := LoadDocuments(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, docs)
}
