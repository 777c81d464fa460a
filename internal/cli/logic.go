package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"

	"github.com/idelchi/dirsize/internal/config"
	"github.com/idelchi/dirsize/internal/diskusage"
)

// Report is the rendered result of one analysis.
type Report struct {
	// Path is the analyzed directory.
	Path string `json:"path"`
	// Entries are the displayed entries, largest first.
	Entries []diskusage.DirEntry `json:"entries"`
	// Summary totals all entries, including those cut by --top.
	Summary diskusage.Summary `json:"summary"`
	// Elapsed is the duration of the analysis.
	Elapsed time.Duration `json:"elapsed"`
}

func logic(ctx context.Context, cfg *config.Config, path string, stdout, stderr io.Writer) error {
	logger := cfg.NewLogger()
	logger.SetOutput(stderr)

	enableProgress := cfg.Output.Progress &&
		cfg.Output.Format != "json" &&
		!logger.IsLevelEnabled(logrus.DebugLevel) &&
		isTerminal(stderr)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	opts := cfg.Options(logger)

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(stderr, "\033[?25l")
		defer fmt.Fprint(stderr, "\033[?25h")

		opts.Progress = func(p diskusage.Progress) {
			msg := fmt.Sprintf("Scanning… %d files, %d dirs, %s",
				p.Files, p.Directories, humanize.IBytes(p.Bytes))
			fmt.Fprintf(stderr, "\r\033[2K%s\r", msg)
		}
	}

	start := time.Now()

	entries, err := diskusage.Analyze(ctx, path, opts)

	// Clear the status line
	if enableProgress {
		fmt.Fprint(stderr, "\r\033[2K\r")
	}

	if err != nil {
		return err
	}

	report := newReport(path, entries, cfg.Output.Top, time.Since(start))

	switch cfg.Output.Format {
	case "json":
		return PrintJSON(report, stdout)
	case "table":
		return PrintTable(report, stdout)
	default:
		return fmt.Errorf("unknown output format: %s", cfg.Output.Format)
	}
}

// newReport builds a report, keeping at most top entries (0 = all).
func newReport(path string, entries []diskusage.DirEntry, top int, elapsed time.Duration) Report {
	report := Report{
		Path:    path,
		Entries: entries,
		Summary: diskusage.Summarize(entries),
		Elapsed: elapsed,
	}

	if top > 0 && len(report.Entries) > top {
		report.Entries = report.Entries[:top]
	}

	return report
}

// isTerminal reports whether w is a terminal file.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
