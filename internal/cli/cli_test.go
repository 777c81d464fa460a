package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/dirsize/internal/diskusage"
)

// run executes the command with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	t.Setenv("HOME", t.TempDir())

	var stdout, stderr bytes.Buffer

	cmd := New("test").Command()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()

	return stdout.String(), err
}

func fixture(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), make([]byte, 10), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), make([]byte, 20), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "c.txt"), make([]byte, 5), 0o644))

	return root
}

func TestCommandJSON(t *testing.T) {
	root := fixture(t)

	out, err := run(t, "-o", "json", root)
	require.NoError(t, err)

	var report struct {
		Path    string `json:"path"`
		Entries []struct {
			Name        string `json:"name"`
			Size        uint64 `json:"size"`
			IsDirectory bool   `json:"is_directory"`
		} `json:"entries"`
		Summary diskusage.Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))

	assert.Equal(t, root, report.Path)
	require.Len(t, report.Entries, 3)
	assert.Equal(t, "b.txt", report.Entries[0].Name)
	assert.Equal(t, "a.txt", report.Entries[1].Name)
	assert.Equal(t, "sub", report.Entries[2].Name)
	assert.True(t, report.Entries[2].IsDirectory)
	assert.Equal(t, uint64(35), report.Summary.TotalBytes)
}

func TestCommandTableTop(t *testing.T) {
	root := fixture(t)

	out, err := run(t, "--top", "1", root)
	require.NoError(t, err)

	assert.Contains(t, out, "1) b.txt")
	assert.NotContains(t, out, "a.txt")
	assert.Contains(t, out, "... 2 more")
	assert.Contains(t, out, "Total size:")
	assert.Contains(t, out, "(35 bytes)")
}

func TestCommandMissingDirectory(t *testing.T) {
	_, err := run(t, filepath.Join(t.TempDir(), "missing"))

	var scanErr *diskusage.ScanError
	require.ErrorAs(t, err, &scanErr)
}

func TestCommandRejectsInvalidFlags(t *testing.T) {
	root := fixture(t)

	_, err := run(t, "-o", "xml", root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")

	_, err = run(t, "--top", "-1", root)
	require.Error(t, err)

	_, err = run(t, "-e", "(", root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compiling exclusion pattern")
}

func TestCommandConfigFile(t *testing.T) {
	root := fixture(t)

	cfgFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("output:\n  format: json\n"), 0o644))

	out, err := run(t, "--config", cfgFile, root)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "{"))

	_, err = run(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), root)
	require.Error(t, err)
}

func TestPrintTableMarksErrors(t *testing.T) {
	entries := []diskusage.DirEntry{
		{Name: "data", IsDirectory: true, Size: 2048},
		{
			Name:        "locked",
			IsDirectory: true,
			AccessError: &diskusage.AccessError{Path: "/x/locked", Kind: diskusage.AccessDenied},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, PrintTable(newReport("/x", entries, 0, time.Second), &buf))

	out := buf.String()
	assert.Contains(t, out, "data/")
	assert.Contains(t, out, "2.0 KiB (100.0%)")
	assert.Contains(t, out, "! access denied")
	assert.Contains(t, out, "Inaccessible:")
	assert.Contains(t, out, "Other:")
}

func TestNewReportTop(t *testing.T) {
	entries := []diskusage.DirEntry{{Name: "a", Size: 3}, {Name: "b", Size: 2}, {Name: "c", Size: 1}}

	report := newReport("/r", entries, 2, 0)
	assert.Len(t, report.Entries, 2)
	assert.Equal(t, uint64(6), report.Summary.TotalBytes)
	assert.Equal(t, 3, report.Summary.Entries)

	assert.Len(t, newReport("/r", entries, 0, 0).Entries, 3)
}
