package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OFR-IIASA/message-ix-models/internal/config"
	"github.com/OFR-IIASA/message-ix-models/internal/model/bare"
)

// ResOptions holds flags for the res subcommands.
type ResOptions struct {
	*RootOptions
	Regions        string
	PeriodStart    int
	PeriodDuration int
	PeriodEnd      int
	Dummies        bool
	Scenario       string
}

// NewResCommand creates the res command group.
func NewResCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "res",
		Short: "Work with the bare reference energy system",
	}

	name := &cobra.Command{
		Use:           "name",
		Short:         "Show the model name derived from the region and period settings",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return resName(opts, cmd)
		},
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Create the bare RES on a platform",
		Long: `Create the bare reference energy system scenario on a platform.

Example:
  mix-models --platform local res create --regions R14`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return resCreate(opts, cmd)
		},
	}

	for _, c := range []*cobra.Command{name, create} {
		c.Flags().StringVar(&opts.Regions, "regions", "R14", "region code list")
		c.Flags().IntVar(&opts.PeriodStart, "period-start", 2020, "first model period")
		c.Flags().IntVar(&opts.PeriodDuration, "period-duration", 10, "period length in years")
		c.Flags().IntVar(&opts.PeriodEnd, "period-end", 2110, "last model period")
	}
	create.Flags().BoolVar(&opts.Dummies, "dummies", false, "include dummy supply and demand technologies")
	create.Flags().StringVar(&opts.Scenario, "scenario", "baseline", "scenario name")

	cmd.AddCommand(name, create)
	return cmd
}

// resContext builds a Context from the res flags.
func resContext(opts *ResOptions) *config.Context {
	c := config.New()
	c.Set("regions", opts.Regions)
	c.Set("period_start", opts.PeriodStart)
	c.Set("period_duration", opts.PeriodDuration)
	c.Set("period_end", opts.PeriodEnd)
	c.Set("res_with_dummies", opts.Dummies)
	c.UseDefaults(bare.Settings())
	return c
}

func resName(opts *ResOptions, cmd *cobra.Command) error {
	c := resContext(opts)

	name, err := bare.Name(c)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to derive model name", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	return out.Success(name)
}

func resCreate(opts *ResOptions, cmd *cobra.Command) error {
	c := resContext(opts)
	c.ScenarioInfo["scenario"] = opts.Scenario

	mp, err := openPlatform(opts.RootOptions)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open platform", err)
	}
	defer mp.Close()
	c.SetPlatform(mp)

	s, err := bare.CreateRes(cmd.Context(), c)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to create RES", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return out.Success(map[string]any{
			"model":    s.Model,
			"scenario": s.Scenario,
			"version":  s.Version,
		})
	}
	return out.Success(fmt.Sprintf("created %s/%s version %d", s.Model, s.Scenario, s.Version))
}
