package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTypesFromDirectory(t *testing.T) {
	result, err := LoadTypes(filepath.Join("testdata", "types"))
	require.NoError(t, err)

	assert.Equal(t, 1, result.FileCount)
	require.Len(t, result.Defs, 2)
	// Parents come first so registration succeeds in order.
	assert.Equal(t, "counter", result.Defs[0].Name)
	assert.Equal(t, "limited", result.Defs[1].Name)
	assert.Equal(t, "counter", result.Defs[1].Parent)
}

func TestLoadTypesMissingDirectory(t *testing.T) {
	_, err := LoadTypes("/nonexistent/path")
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
}

func TestLoadTypesNotADirectory(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "file.cue")
	require.NoError(t, os.WriteFile(tmpFile, []byte("types: {}"), 0o644))

	_, err := LoadTypes(tmpFile)
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
}

func TestLoadTypesEmptyDirectory(t *testing.T) {
	_, err := LoadTypes(t.TempDir())
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeNoFiles, loadErr.Code)
}

func TestFindCUEFilesRecursive(t *testing.T) {
	tmpDir := t.TempDir()
	sub := filepath.Join(tmpDir, "nested")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "a.cue"), []byte("types: {}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "b.cue"), []byte("types: {}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "ignore.txt"), []byte("x"), 0o644))

	files, err := FindCUEFiles(tmpDir)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestLoadErrorFormatting(t *testing.T) {
	err := &LoadError{Code: ErrCodeGeneric, Message: "something broke"}
	assert.Equal(t, "E001: something broke", err.Error())
}
