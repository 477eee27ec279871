package cli

import (
	"github.com/spf13/cobra"

	"github.com/OFR-IIASA/message-ix-models/internal/config"
	"github.com/OFR-IIASA/message-ix-models/internal/export"
)

// ExportOptions holds flags for the export-test-data command.
type ExportOptions struct {
	*RootOptions
	LocalData string
}

// NewExportTestDataCommand creates the export-test-data command.
func NewExportTestDataCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export-test-data",
		Short: "Export a subset of scenario data for testing",
		Long: `Export a filtered subset of the ENGAGE_SSP2_v4.1.7/baseline scenario
to an xlsx file, keeping only the coal_ppl technology in the R11_AFR and
R11_CPA regions.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return exportTestData(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.LocalData, "local-data", ".", "directory for the exported file")

	return cmd
}

func exportTestData(opts *ExportOptions, cmd *cobra.Command) error {
	mp, err := openPlatform(opts.RootOptions)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open platform", err)
	}
	defer mp.Close()

	c := config.New()
	c.LocalData = opts.LocalData
	c.SetPlatform(mp)

	path, err := export.TestData(cmd.Context(), c)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to export test data", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	return out.Success(path)
}
