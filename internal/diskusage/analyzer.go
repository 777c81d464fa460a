package diskusage

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Analyzer measures the immediate children of a directory.
// It holds no state between calls; every call produces an independent snapshot.
type Analyzer struct {
	opts     Options
	excludes []*regexp.Regexp
	log      logrus.FieldLogger
}

// NewAnalyzer creates an Analyzer from opts.
func NewAnalyzer(opts Options) (*Analyzer, error) {
	excludes, err := compileExcludes(opts.Excludes)
	if err != nil {
		return nil, err
	}

	return &Analyzer{
		opts:     opts,
		excludes: excludes,
		log:      opts.logger(),
	}, nil
}

// Analyze is a shorthand for NewAnalyzer followed by [Analyzer.Analyze].
func Analyze(ctx context.Context, path string, opts Options) ([]DirEntry, error) {
	analyzer, err := NewAnalyzer(opts)
	if err != nil {
		return nil, err
	}

	return analyzer.Analyze(ctx, path)
}

// Analyze lists the immediate children of the directory at path and returns
// them ordered by descending size. Entries with an access error sort as size 0.
// Entries of equal size keep their listing (name) order.
//
// path is used as given; validating or normalizing it is up to the caller.
// Children that cannot be fully measured are still returned, with AccessError
// set. If path itself cannot be listed Analyze returns a [*ScanError]. If ctx
// is cancelled or the configured timeout elapses, the partial result is
// discarded and an error matching [ErrCancelled] is returned.
func (a *Analyzer) Analyze(ctx context.Context, path string) ([]DirEntry, error) {
	if a.opts.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, a.opts.Timeout)
		defer cancel()
	}

	if ctx.Err() != nil {
		return nil, cancelled(ctx)
	}

	log := a.log.WithField("path", path)
	start := time.Now()

	children, err := os.ReadDir(path)
	if err != nil {
		return nil, &ScanError{Path: path, Err: err}
	}

	var progress counters

	stop := startProgressReporter(ctx, &progress, a.opts.Progress, a.opts.ProgressInterval)
	defer stop()

	aggregator := newAggregator(a.opts, a.excludes, &progress)

	jobs := make([]fs.DirEntry, 0, len(children))

	for _, child := range children {
		if re := excludedBy(filepath.Join(path, child.Name()), a.excludes); re != nil {
			log.WithFields(logrus.Fields{"name": child.Name(), "pattern": re.String()}).Debug("excluding entry")

			continue
		}

		jobs = append(jobs, child)
	}

	// One slot per job; each worker writes only its own index
	results := make([]DirEntry, len(jobs))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(a.opts.workers())

	for i, child := range jobs {
		if gctx.Err() != nil {
			break
		}

		group.Go(func() error {
			entry, err := a.measure(gctx, aggregator, path, child)
			if err != nil {
				return err
			}

			results[i] = entry

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	// A cancel may land after the last job was skipped by the loop above
	if ctx.Err() != nil {
		return nil, cancelled(ctx)
	}

	sortBySize(results)

	log.WithFields(logrus.Fields{
		"entries": len(results),
		"elapsed": time.Since(start),
	}).Debug("analysis complete")

	return results, nil
}

// measure builds the entry for one child of dir.
func (a *Analyzer) measure(ctx context.Context, aggregator *Aggregator, dir string, child fs.DirEntry) (DirEntry, error) {
	if ctx.Err() != nil {
		return DirEntry{}, cancelled(ctx)
	}

	path := filepath.Join(dir, child.Name())

	if testHookMeasure != nil {
		testHookMeasure(path)
	}

	entry := DirEntry{
		Name: child.Name(),
		Path: path,
		Type: typeOf(child.Type()),
	}

	fail := func(err error) (DirEntry, error) {
		a.log.WithField("path", path).WithError(err).Debug("entry not accessible")
		aggregator.counters.errs.Add(1)

		entry.Size = 0
		entry.AccessError = newAccessError(path, err)

		return entry, nil
	}

	var info fs.FileInfo

	if entry.Type == Symlink && a.opts.FollowSymlinks {
		resolved, err := os.Stat(path)
		if err != nil {
			return fail(err)
		}

		info = resolved
		entry.Type = typeOf(resolved.Mode())
	}

	switch entry.Type {
	case Directory:
		entry.IsDirectory = true

		usage, err := aggregator.SizeOf(ctx, path)
		if err != nil {
			return DirEntry{}, err
		}

		entry.Size = usage.Size

		switch {
		case usage.Unreadable:
			entry.AccessError = newAccessError(path, usage.Cause)
		case usage.Incomplete:
			entry.AccessError = &AccessError{Path: path, Kind: Incomplete, Err: usage.Cause}
		}
	case File:
		if info == nil {
			lstat, err := child.Info()
			if err != nil {
				return fail(err)
			}

			info = lstat
		}

		size := apparentSize(info)

		entry.Size = size
		aggregator.counters.files.Add(1)
		addAtomic(&aggregator.counters.bytes, size)
	case Symlink, Other:
		// Unfollowed links and special files occupy no apparent size
	}

	return entry, nil
}

// sortBySize orders entries by descending size, keeping the listing order for ties.
// Entries with an access error sort as size 0, even when a partial size is kept.
func sortBySize(entries []DirEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return sortKey(entries[i]) > sortKey(entries[j])
	})
}

func sortKey(e DirEntry) uint64 {
	if e.AccessError != nil {
		return 0
	}

	return e.Size
}
