package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/config"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/export"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/pipeline"
)

var yearsCmd = &cobra.Command{
	Use:   "years",
	Short: "List the discovered years and how each one loads",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listYears(cmd.Context(), cfg, cmd.OutOrStdout())
	},
}

func listYears(ctx context.Context, c *config.Config, out io.Writer) error {
	p, err := initPipeline(c, nil)
	if err != nil {
		return err
	}
	results, err := p.Load(ctx)
	if err != nil {
		return err
	}
	export.WriteYears(out, pipeline.Summaries(results))
	return nil
}

func init() {
	rootCmd.AddCommand(yearsCmd)
}
