package diskusage

import (
	"io"
	"runtime"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/sirupsen/logrus"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 500 * time.Millisecond

// Options configures an analysis.
type Options struct {
	// Workers is the number of top-level children measured concurrently (0 = GOMAXPROCS).
	Workers int
	// WalkWorkers is the number of goroutines walking a single subtree (0 = fastwalk default).
	WalkWorkers int
	// FollowSymlinks resolves symbolic links instead of reporting them as zero-size links.
	FollowSymlinks bool
	// Excludes contains regex patterns of paths to skip.
	Excludes []string
	// Timeout bounds the whole analysis (0 = no timeout).
	Timeout time.Duration
	// Progress is called periodically with running totals, if set.
	Progress func(Progress)
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
	// Logger receives debug output about absorbed failures. Nil discards it.
	Logger logrus.FieldLogger
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}

	return runtime.GOMAXPROCS(0)
}

func (o Options) walkWorkers() int {
	if o.WalkWorkers > 0 {
		return o.WalkWorkers
	}

	return fastwalk.DefaultNumWorkers()
}

func (o Options) logger() logrus.FieldLogger {
	if o.Logger != nil {
		return o.Logger
	}

	discard := logrus.New()
	discard.SetOutput(io.Discard)

	return discard
}
