package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/config"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/export"
)

var clusterYear int

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Cluster the municipalities of one year and print the assignments",
	RunE: func(cmd *cobra.Command, args []string) error {
		return clusterOneYear(cmd.Context(), cfg, clusterYear, cmd.OutOrStdout())
	},
}

func clusterOneYear(ctx context.Context, c *config.Config, year int, out io.Writer) error {
	yc := *c
	yc.Analysis.ReferenceYear = year
	p, err := initPipeline(&yc, []int{year})
	if err != nil {
		return err
	}
	res, err := p.Run(ctx)
	if err != nil {
		return eris.Wrapf(err, "cluster year %d", year)
	}

	ref := res.Reference
	if ref == nil || ref.Skipped {
		fmt.Fprintf(out, "%d: menos municípios que k=%d, nada a agrupar\n", year, c.Cluster.K)
		return nil
	}
	fmt.Fprintf(out, "%d: %d municípios, limiar de volume %.1f, silhueta %s\n\n",
		year, len(ref.Assignments), ref.VolumeThreshold, ref.Silhouette)
	export.WriteProfiles(out, *ref)
	fmt.Fprintln(out)
	export.WriteAssignments(out, ref.Assignments)
	return nil
}

func init() {
	clusterCmd.Flags().IntVar(&clusterYear, "year", 0, "year to cluster (required)")
	_ = clusterCmd.MarkFlagRequired("year")
	rootCmd.AddCommand(clusterCmd)
}
