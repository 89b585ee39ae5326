package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckBookFiles(t *testing.T) {
	dir := t.TempDir()
	book := filepath.Join(dir, "ventas_cbte.txt")
	require.NoError(t, os.WriteFile(book, []byte("x\n"), 0644))

	assert.NoError(t, checkBookFiles(map[string]string{"--book1": book, "--book2": book}))

	err := checkBookFiles(map[string]string{"--book1": book, "--book2": filepath.Join(dir, "missing.txt")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--book2")
	assert.Contains(t, err.Error(), "missing.txt")

	err = checkBookFiles(map[string]string{"--book1": dir, "--book2": book})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--book1")
}
