// Package cli implements the mix-models command-line interface.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/OFR-IIASA/message-ix-models/internal/logutil"
	"github.com/OFR-IIASA/message-ix-models/internal/platform"
)

// DefaultPlatform is the platform name used when --platform is not given.
const DefaultPlatform = "default"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Platform string // registered platform name
	URL      string // ad-hoc SQLite URL overriding the registry
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the mix-models CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "mix-models",
		Short: "Tools for the MESSAGEix-GLOBIOM family of models",
		Long:  "Command-line tools for building and maintaining MESSAGEix-GLOBIOM scenarios.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}

			// Adjust global logging. The test runner restores this state
			// after every invocation.
			if opts.Verbose {
				logutil.Level.Set(slog.LevelDebug)
			}
			slog.SetDefault(slog.New(logutil.NewHandler()))
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Platform, "platform", DefaultPlatform, "platform name")
	cmd.PersistentFlags().StringVar(&opts.URL, "url", "", "ad-hoc SQLite database URL (overrides --platform)")

	// Add subcommands
	cmd.AddCommand(NewPlatformCommand(opts))
	cmd.AddCommand(NewResCommand(opts))
	cmd.AddCommand(NewExportTestDataCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// openPlatform connects using the global flags: --url when given, the
// registered --platform name otherwise.
func openPlatform(opts *RootOptions) (*platform.Platform, error) {
	if opts.URL != "" {
		return platform.OpenConfig(opts.Platform, platform.Config{
			Class:  "sql",
			Driver: "sqlite",
			URL:    opts.URL,
		})
	}
	return platform.Open(opts.Platform)
}
