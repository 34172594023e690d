package main

import (
	"context"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/config"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/export"
)

var (
	runYears   []int
	runFormats []string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the whole analysis and export every table",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(runFormats) > 0 {
			cfg.Output.Formats = runFormats
		}
		return runAnalysis(cmd.Context(), cfg, runYears, cmd.OutOrStdout())
	},
}

// runAnalysis runs the pipeline and feeds the result to the configured sinks.
func runAnalysis(ctx context.Context, c *config.Config, years []int, out io.Writer) error {
	sinks, err := export.New(c.Output.Formats, c.Output.Dir, out)
	if err != nil {
		return err
	}
	p, err := initPipeline(c, years)
	if err != nil {
		return err
	}

	res, err := p.Run(ctx)
	if err != nil {
		return eris.Wrap(err, "run analysis")
	}
	if err := export.EmitAll(ctx, sinks, res); err != nil {
		return err
	}

	zap.L().Info("analysis complete",
		zap.String("run_id", res.RunID),
		zap.Ints("years", res.LoadedYears()),
		zap.Int("reference_year", res.ReferenceYear),
		zap.String("output", c.Output.Dir),
	)
	return nil
}

func init() {
	runCmd.Flags().IntSliceVar(&runYears, "years", nil, "restrict the analysis to these years (default: every discovered year)")
	runCmd.Flags().StringSliceVar(&runFormats, "format", nil, "output formats: csv, xlsx, charts, console (overrides output.formats)")
	rootCmd.AddCommand(runCmd)
}
