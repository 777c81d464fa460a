package diskusage

import (
	"context"
	"io/fs"
	"path/filepath"
	"regexp"

	"github.com/charlievieth/fastwalk"
	"github.com/sirupsen/logrus"
)

// Usage is the measured size of one subtree.
type Usage struct {
	// Size is the apparent size of all regular files that could be read.
	Size uint64
	// Incomplete is set when any failure was absorbed, so Size may be an undercount.
	Incomplete bool
	// Unreadable is set when the directory itself could not be listed. Size is 0.
	Unreadable bool
	// Cause is the first absorbed failure.
	Cause error
}

// Aggregator sums the apparent size of directory trees.
// It is safe for concurrent use; every call rescans the filesystem.
type Aggregator struct {
	conf     fastwalk.Config
	follow   bool
	excludes []*regexp.Regexp
	log      logrus.FieldLogger
	counters *counters
}

// Test hooks, nil outside tests.
var (
	testHookVisit   func(path string) // called for every walked path
	testHookMeasure func(path string) // called before a top-level child is measured
)

// NewAggregator creates an Aggregator from opts.
// Only the walk-related fields of opts are used.
func NewAggregator(opts Options) (*Aggregator, error) {
	excludes, err := compileExcludes(opts.Excludes)
	if err != nil {
		return nil, err
	}

	return newAggregator(opts, excludes, &counters{}), nil
}

func newAggregator(opts Options, excludes []*regexp.Regexp, c *counters) *Aggregator {
	return &Aggregator{
		conf: fastwalk.Config{
			Follow:     opts.FollowSymlinks,
			NumWorkers: opts.walkWorkers(),
		},
		follow:   opts.FollowSymlinks,
		excludes: excludes,
		log:      opts.logger(),
		counters: c,
	}
}

// SizeOf returns the recursive apparent size of the directory at path.
//
// Failures to read entries or to list subdirectories are absorbed: the
// affected part contributes nothing and the result is marked Incomplete, while
// siblings are still measured. If path itself cannot be listed the result is
// an Unreadable, zero-size Usage. The only returned error is [ErrCancelled].
//
//nolint:gocognit // Single walk callback keeps the traversal rules in one place.
func (a *Aggregator) SizeOf(ctx context.Context, path string) (Usage, error) {
	if ctx.Err() != nil {
		return Usage{}, cancelled(ctx)
	}

	var (
		t          tally
		unreadable bool
	)

	root := filepath.Clean(path)

	absorb := func(p string, err error) {
		a.log.WithField("path", p).WithError(err).Debug("skipping unreadable entry")
		a.counters.errs.Add(1)
		t.fail(err)
	}

	//nolint:varnamelen // d is standard for DirEntry
	walkErr := fastwalk.Walk(&a.conf, root, func(p string, d fs.DirEntry, err error) error {
		// Check cancellation before anything else, including before each listing
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if testHookVisit != nil {
			testHookVisit(p)
		}

		if err != nil {
			if p == root {
				unreadable = true
			}

			absorb(p, err)

			return nil
		}

		if p != root {
			if re := excludedBy(p, a.excludes); re != nil {
				a.log.WithFields(logrus.Fields{"path": p, "pattern": re.String()}).Debug("excluding path")

				// SkipDir also stops fastwalk from following an excluded link
				if d.IsDir() || d.Type()&fs.ModeSymlink != 0 {
					return filepath.SkipDir
				}

				return nil
			}
		}

		typ := d.Type()

		switch {
		case typ.IsDir():
			a.counters.dirs.Add(1)
		case typ&fs.ModeSymlink != 0:
			if !a.follow {
				return nil
			}

			// Linked directories are traversed by fastwalk itself, with loop detection
			info, err := fastwalk.StatDirEntry(p, d)
			if err != nil {
				absorb(p, err)

				return nil
			}

			switch {
			case info.Mode().IsRegular():
				a.addFile(&t, info)
			case info.IsDir():
				// fastwalk lists a followed link without calling back first
				if ctx.Err() != nil {
					return ctx.Err()
				}
			}
		case typ.IsRegular():
			info, err := d.Info()
			if err != nil {
				absorb(p, err)

				return nil
			}

			a.addFile(&t, info)
		}

		return nil
	})

	if walkErr != nil {
		if ctx.Err() != nil {
			return Usage{}, cancelled(ctx)
		}

		// Walk only fails on its own when path cannot be stat'ed
		absorb(root, walkErr)

		unreadable = true
	}

	usage := t.usage()
	usage.Unreadable = unreadable

	return usage, nil
}

// addFile adds the apparent size of a regular file.
func (a *Aggregator) addFile(t *tally, info fs.FileInfo) {
	size := apparentSize(info)

	t.add(size)
	a.counters.files.Add(1)
	addAtomic(&a.counters.bytes, size)
}

// apparentSize returns the logical length of a file, never negative.
func apparentSize(info fs.FileInfo) uint64 {
	if info.Size() < 0 {
		return 0
	}

	return uint64(info.Size()) //nolint:gosec // Checked non-negative above
}
