package testutils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// CreateTree creates files and directories under root. Keys are slash
// separated relative paths; a key ending in "/" creates a directory and its
// value is ignored.
func CreateTree(t *testing.T, root string, entries map[string]string) {
	t.Helper()
	for rel, content := range entries {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			require.NoError(t, os.MkdirAll(path, 0755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// CreateSizedFile writes a file of exactly size bytes
func CreateSizedFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0644))
}

// SetAge backdates the modification time of path by age
func SetAge(t *testing.T, path string, age time.Duration) {
	t.Helper()
	mtime := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

// CountFiles returns the number of regular files below root
func CountFiles(t *testing.T, root string) int {
	t.Helper()
	count := 0
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			count++
		}
		return nil
	})
	require.NoError(t, err)
	return count
}

// AssertExists fails the test when path does not exist
func AssertExists(t *testing.T, path string) {
	t.Helper()
	_, err := os.Lstat(path)
	assert.NoError(t, err, "expected %s to exist", path)
}

// AssertNotExists fails the test when path exists
func AssertNotExists(t *testing.T, path string) {
	t.Helper()
	_, err := os.Lstat(path)
	assert.ErrorIs(t, err, os.ErrNotExist, "expected %s to be gone", path)
}

// StripANSI removes ANSI escape sequences from a string
func StripANSI(str string) string {
	var result []rune
	inEscape := false
	for _, r := range str {
		if r == '\x1b' {
			inEscape = true
			continue
		}
		if inEscape {
			if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
				inEscape = false
			}
			continue
		}
		result = append(result, r)
	}
	return string(result)
}
