package diskusage

import (
	"io/fs"
)

// EntryType is the kind of filesystem object an entry represents.
type EntryType int

const (
	// File is a regular file.
	File EntryType = iota
	// Directory is a directory.
	Directory
	// Symlink is a symbolic link that was not followed.
	Symlink
	// Other is a device, socket, pipe or similar.
	Other
)

func (t EntryType) String() string {
	switch t {
	case Directory:
		return "dir"
	case Symlink:
		return "symlink"
	case Other:
		return "other"
	default:
		return "file"
	}
}

// MarshalText renders the type by name, for JSON output.
func (t EntryType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// typeOf maps a file mode to an EntryType.
func typeOf(mode fs.FileMode) EntryType {
	switch {
	case mode.IsDir():
		return Directory
	case mode&fs.ModeSymlink != 0:
		return Symlink
	case mode.IsRegular():
		return File
	default:
		return Other
	}
}

// DirEntry is one immediate child of an analyzed directory.
// Entries are built once per analysis and never modified afterwards.
type DirEntry struct {
	// Name is the final path segment.
	Name string `json:"name"`
	// Path is the analyzed directory joined with Name.
	Path string `json:"path"`
	// Type is the kind of object, after symlink resolution when following links.
	Type EntryType `json:"type"`
	// IsDirectory reports whether the entry was measured as a directory.
	IsDirectory bool `json:"is_directory"`
	// Size is the apparent size in bytes. For directories it is the sum of all
	// regular files beneath it that could be read.
	Size uint64 `json:"size"`
	// AccessError is set when some or all size information could not be obtained.
	AccessError *AccessError `json:"access_error,omitempty"`
}

// Summary aggregates the entries of one analysis.
type Summary struct {
	// TotalBytes is the sum of all entry sizes.
	TotalBytes uint64 `json:"total_bytes"`
	// Entries is the number of entries.
	Entries int `json:"entries"`
	// Directories is the number of directory entries.
	Directories int `json:"directories"`
	// Files is the number of regular file entries.
	Files int `json:"files"`
	// Other is the number of unfollowed symlinks and special files.
	Other int `json:"other"`
	// Errors is the number of entries with an access error.
	Errors int `json:"errors"`
}

// Summarize totals a list of entries.
func Summarize(entries []DirEntry) Summary {
	var sum Summary

	for _, e := range entries {
		sum.TotalBytes = addSaturating(sum.TotalBytes, e.Size)
		sum.Entries++

		switch {
		case e.IsDirectory:
			sum.Directories++
		case e.Type == File:
			sum.Files++
		default:
			sum.Other++
		}

		if e.AccessError != nil {
			sum.Errors++
		}
	}

	return sum
}
