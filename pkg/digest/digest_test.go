package digest

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glorpus-work/modlist/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sha256("test content")
const testContentHash = "6ae8a75555209fd6c44157c0aed8016e763ff435a19cf186f76863140143ff72"

func writeFile(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.7z")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestFile(t *testing.T) {
	path := writeFile(t, []byte("test content"))

	got, err := File(path)
	require.NoError(t, err)
	assert.Equal(t, testContentHash, got)
	assert.Equal(t, strings.ToLower(got), got)
}

func TestFile_Deterministic(t *testing.T) {
	content := []byte(strings.Repeat("modlist", 10000))
	first, err := File(writeFile(t, content))
	require.NoError(t, err)
	second, err := File(writeFile(t, content))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// A single flipped byte changes the digest
	mutated := append([]byte(nil), content...)
	mutated[len(mutated)/2] ^= 0x01
	third, err := File(writeFile(t, mutated))
	require.NoError(t, err)
	assert.NotEqual(t, first, third)
}

func TestFile_Empty(t *testing.T) {
	got, err := File(writeFile(t, nil))
	require.NoError(t, err)
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", got)
}

func TestFile_Missing(t *testing.T) {
	_, err := File(filepath.Join(t.TempDir(), "missing.7z"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrIO)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestSHA256_Digest(t *testing.T) {
	got, err := SHA256{}.Digest(writeFile(t, []byte("test content")))
	require.NoError(t, err)
	assert.Equal(t, testContentHash, got)
}
