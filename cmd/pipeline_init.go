package main

import (
	"github.com/rotisserie/eris"

	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/cluster"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/config"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/microdata"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/pipeline"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/taxonomy"
)

// initPipeline builds the source, taxonomy, clustering engine and Pipeline
// from the configuration. years restricts loading when non-empty.
func initPipeline(c *config.Config, years []int) (*pipeline.Pipeline, error) {
	tax := taxonomy.Default()
	if c.Input.TaxonomyFile != "" {
		t, err := taxonomy.Load(c.Input.TaxonomyFile)
		if err != nil {
			return nil, eris.Wrap(err, "load taxonomy")
		}
		tax = t
	}

	if _, err := microdata.Decoder(c.Input.Encoding); err != nil {
		return nil, err
	}
	src := microdata.NewFileSource(c.Input.Dir, microdata.CSVOptions{
		Delimiter: []rune(c.Input.Delimiter)[0],
		Encoding:  c.Input.Encoding,
	})

	engine, err := initEngine(c.Cluster)
	if err != nil {
		return nil, err
	}

	return pipeline.New(src, tax, engine, pipeline.Options{
		Regions:       c.Analysis.Regions,
		Years:         years,
		ReferenceYear: c.Analysis.ReferenceYear,
		RankingSize:   c.Analysis.RankingSize,
		LowestSize:    c.Analysis.LowestSize,
		Concurrency:   c.Pipeline.Concurrency,
	}), nil
}

func initEngine(c config.ClusterConfig) (*cluster.Engine, error) {
	prec, err := cluster.ParsePrecedence(c.Precedence)
	if err != nil {
		return nil, err
	}
	km := cluster.KMeans{
		Restarts:  c.Restarts,
		Seed:      c.Seed,
		MaxIter:   c.MaxIter,
		Tolerance: c.Tolerance,
	}
	return cluster.NewEngine(cluster.Config{
		K:              c.K,
		VolumeQuantile: c.VolumeQuantile,
		Precedence:     prec,
	}, km), nil
}
