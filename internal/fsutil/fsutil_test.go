package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteIfChanged(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "dir", "out.txt")

	wrote, err := WriteIfChanged(p, []byte("one"))
	require.NoError(t, err)
	assert.True(t, wrote)

	wrote, err = WriteIfChanged(p, []byte("one"))
	require.NoError(t, err)
	assert.False(t, wrote)

	wrote, err = WriteIfChanged(p, []byte("two"))
	require.NoError(t, err)
	assert.True(t, wrote)

	got, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))

	entries, err := os.ReadDir(filepath.Dir(p))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestUnchanged_MissingFile(t *testing.T) {
	assert.False(t, Unchanged(filepath.Join(t.TempDir(), "missing"), nil))
}
