package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OFR-IIASA/message-ix-models/internal/platform"
)

// PlatformOptions holds flags for the platform subcommands.
type PlatformOptions struct {
	*RootOptions
	Class  string
	Driver string
	DBURL  string
}

// NewPlatformCommand creates the platform command group.
func NewPlatformCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlatformOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "platform",
		Short: "Manage platform registrations",
	}

	list := &cobra.Command{
		Use:           "list",
		Short:         "List registered platforms",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listPlatforms(opts, cmd)
		},
	}

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Register a platform",
		Long: `Register a named platform configuration.

Example:
  mix-models platform add local --driver sqlite --db-url ./scenarios.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return addPlatform(opts, args[0], cmd)
		},
	}
	add.Flags().StringVar(&opts.Class, "class", "sql", "backend class")
	add.Flags().StringVar(&opts.Driver, "driver", "sqlite", "database driver (sqlite|postgres)")
	add.Flags().StringVar(&opts.DBURL, "db-url", "", "database connection URL (required)")
	_ = add.MarkFlagRequired("db-url")

	remove := &cobra.Command{
		Use:           "remove <name>",
		Short:         "Remove a platform registration",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return removePlatform(opts, args[0], cmd)
		},
	}

	cmd.AddCommand(list, add, remove)
	return cmd
}

func listPlatforms(opts *PlatformOptions, cmd *cobra.Command) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	names := platform.Names()
	if opts.Format == "json" {
		return out.Success(names)
	}
	if len(names) == 0 {
		return out.Success("no platforms registered")
	}
	return out.Success(strings.Join(names, "\n"))
}

func addPlatform(opts *PlatformOptions, name string, cmd *cobra.Command) error {
	cfg := platform.Config{Class: opts.Class, Driver: opts.Driver, URL: opts.DBURL}
	if err := platform.Register(name, cfg); err != nil {
		return WrapExitError(ExitCommandError, "failed to register platform", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	return out.Success(fmt.Sprintf("registered platform %q (%s)", name, opts.Driver))
}

func removePlatform(opts *PlatformOptions, name string, cmd *cobra.Command) error {
	if err := platform.Remove(name); err != nil {
		return WrapExitError(ExitCommandError, "failed to remove platform", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	return out.Success(fmt.Sprintf("removed platform %q", name))
}
