package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
)

// PrintJSON outputs the report in JSON format.
func PrintJSON(report Report, writer io.Writer) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintTable outputs the report in human-readable table format.
//
//nolint:forbidigo // This function prints output to the console.
func PrintTable(report Report, writer io.Writer) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	fmt.Fprintf(w, "\n%s:\t\t\t\n", report.Path)

	for i, e := range report.Entries {
		pct := 0.0
		if report.Summary.TotalBytes > 0 {
			pct = 100.0 * float64(e.Size) / float64(report.Summary.TotalBytes)
		}

		name := e.Name
		if e.IsDirectory {
			name += "/"
		}

		status := ""
		if e.AccessError != nil {
			status = "! " + e.AccessError.Kind.String()
		}

		fmt.Fprintf(w, "  %d) %s\t%s (%.1f%%)\t%s\n",
			i+1, name, humanize.IBytes(e.Size), pct, status)
	}

	if hidden := report.Summary.Entries - len(report.Entries); hidden > 0 {
		fmt.Fprintf(w, "  ... %d more\t\t\n", hidden)
	}

	// Stats summary
	fmt.Fprintln(w, "\nStats:\t\t\t")
	fmt.Fprintf(w, "Directories:\t%d\t\t\n", report.Summary.Directories)
	fmt.Fprintf(w, "Files:\t%d\t\t\n", report.Summary.Files)
	fmt.Fprintf(w, "Other:\t%d\t\t\n", report.Summary.Other)
	fmt.Fprintf(w, "Inaccessible:\t%d\t\t\n", report.Summary.Errors)
	fmt.Fprintf(w, "Total size:\t%s (%d bytes)\t\t\n",
		humanize.IBytes(report.Summary.TotalBytes), report.Summary.TotalBytes)

	fmt.Fprintf(w, "\nElapsed:\t%v\t\t\n", report.Elapsed)

	return w.Flush()
}
