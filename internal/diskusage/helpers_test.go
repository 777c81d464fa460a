package diskusage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeTree creates files under root. Keys are slash-separated relative paths,
// values are file sizes in bytes. A key ending in "/" creates an empty directory.
func writeTree(t *testing.T, root string, files map[string]int) {
	t.Helper()

	for rel, size := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))

		if strings.HasSuffix(rel, "/") {
			require.NoError(t, os.MkdirAll(path, 0o755))

			continue
		}

		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
	}
}

// names returns the entry names in order.
func names(entries []DirEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}

	return out
}

// sizes returns the entry sizes in order.
func sizes(entries []DirEntry) []uint64 {
	out := make([]uint64, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Size)
	}

	return out
}

// find returns the entry with the given name.
func find(t *testing.T, entries []DirEntry, name string) DirEntry {
	t.Helper()

	for _, e := range entries {
		if e.Name == name {
			return e
		}
	}

	require.Failf(t, "entry not found", "no entry named %q in %v", name, names(entries))

	return DirEntry{}
}

// setHook installs fn as a test hook for the duration of the test.
func setHook(t *testing.T, hook *func(string), fn func(string)) {
	t.Helper()

	*hook = fn

	t.Cleanup(func() { *hook = nil })
}
