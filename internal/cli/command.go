// Package cli implements the dirsize command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idelchi/dirsize/internal/config"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

// Execute runs the CLI with the process arguments.
func (c CLI) Execute() error {
	return c.Command().Execute()
}

// Command builds the root command. Each call uses its own viper instance.
func (c CLI) Command() *cobra.Command {
	var cfgFile string

	v := viper.New()

	cmd := &cobra.Command{
		Use:   "dirsize [flags] [path]",
		Short: "Report disk usage of the immediate children of a directory",
		Long: heredoc.Doc(`
			dirsize measures every immediate child of a directory, recursively for
			subdirectories, and lists them by descending size.

			Sizes are apparent sizes (the byte length reported by file metadata),
			not the blocks allocated on disk. Entries that could not be fully
			measured are listed with an error marker instead of being dropped.

			Settings can also be given in a YAML file (--config, or .dirsize.yaml in
			the home or current directory) and as DIRSIZE_-prefixed environment
			variables, e.g. DIRSIZE_SCAN_WORKERS=4.
		`),
		Version:       c.version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := readConfig(v, cfgFile); err != nil {
				return err
			}

			cfg, err := config.Load(v)
			if err != nil {
				return err
			}

			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			return logic(cmd.Context(), cfg, path, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.SortFlags = false

	flags.StringVar(&cfgFile, "config", "", "Config file (default is $HOME/.dirsize.yaml or ./.dirsize.yaml)")
	flags.IntP("workers", "w", 0, "Children measured concurrently (0=number of CPUs)")
	flags.Int("walk-workers", 0, "Goroutines walking each subtree (0=default)")
	flags.BoolP("follow", "L", false, "Follow symbolic links")
	flags.StringSliceP("exclude", "e", []string{}, "Regex patterns of paths to exclude")
	flags.Duration("timeout", 0, "Abort the scan after this duration (0=no timeout)")
	flags.IntP("top", "t", 0, "Number of entries to display (0=all)")
	flags.StringP("output", "o", "table", "Output format: json or table")
	flags.Bool("progress", true, "Show a progress line on interactive terminals")
	flags.String("log-level", "warn", "Log level (debug, info, warn, error)")
	flags.Bool("log-json", false, "Output logs in JSON format")

	bindings := map[string]string{
		"scan.workers":         "workers",
		"scan.walk_workers":    "walk-workers",
		"scan.follow_symlinks": "follow",
		"scan.excludes":        "exclude",
		"scan.timeout":         "timeout",
		"output.top":           "top",
		"output.format":        "output",
		"output.progress":      "progress",
		"log.level":            "log-level",
		"log.json":             "log-json",
	}

	for key, flag := range bindings {
		cobra.CheckErr(v.BindPFlag(key, flags.Lookup(flag)))
	}

	config.SetDefaults(v)
	config.BindEnv(v)

	return cmd
}

// readConfig reads the explicit config file, or searches the default locations.
func readConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)

		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %q: %w", cfgFile, err)
		}

		return nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}

	v.AddConfigPath(".")
	v.SetConfigType("yaml")
	v.SetConfigName(".dirsize")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	return nil
}
