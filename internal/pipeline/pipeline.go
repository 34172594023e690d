// Package pipeline runs the whole analysis: per-year normalization and
// classification, the multi-level aggregates, and per-year clustering.
package pipeline

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/aggregate"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/classify"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/cluster"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/geo"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/microdata"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/model"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/normalize"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/taxonomy"
)

// ErrNoYears is returned when the source has no course files.
var ErrNoYears = eris.New("pipeline: no course files discovered")

// ErrNoRecords is returned when every year is unavailable or empty.
var ErrNoRecords = eris.New("pipeline: no in-scope records in any year")

// Options tunes a run.
type Options struct {
	Regions       []string // scope; empty: normalize.DefaultScope
	Years         []int    // restrict loading to these years; empty: all discovered
	ReferenceYear int      // 0: latest year with municipality rows
	RankingSize   int
	LowestSize    int
	Concurrency   int
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		Regions:     normalize.DefaultScope,
		RankingSize: 15,
		LowestSize:  10,
		Concurrency: 1,
	}
}

// Pipeline wires the stages over one source.
type Pipeline struct {
	src        microdata.Source
	normalizer *normalize.Normalizer
	classifier *classify.Classifier
	engine     *cluster.Engine
	opts       Options
}

// New creates a Pipeline. A nil engine clusters with the default settings.
func New(src microdata.Source, tax taxonomy.Taxonomy, engine *cluster.Engine, opts Options) *Pipeline {
	if engine == nil {
		engine = cluster.NewEngine(cluster.DefaultConfig(), nil)
	}
	if len(opts.Regions) == 0 {
		opts.Regions = normalize.DefaultScope
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Pipeline{
		src: src,
		normalizer: normalize.New(src,
			geo.NewResolver(tax.Regions, geo.CourseColumns),
			geo.NewInstitutionJoiner(src, tax.Regions),
			opts.Regions,
		),
		classifier: classify.FromTaxonomy(tax),
		engine:     engine,
		opts:       opts,
	}
}

// Load discovers the years and normalizes each one. The returned slice has one
// result per year, in ascending order, whatever its status.
func (p *Pipeline) Load(ctx context.Context) ([]normalize.YearResult, error) {
	years, err := p.src.Years(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: discover years")
	}
	if len(p.opts.Years) > 0 {
		years = slices.DeleteFunc(years, func(y int) bool { return !slices.Contains(p.opts.Years, y) })
	}
	if len(years) == 0 {
		return nil, ErrNoYears
	}

	results := make([]normalize.YearResult, len(years))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)
	for i, year := range years {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.normalizer.Normalize(gctx, year)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "pipeline: load years")
	}
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "pipeline: load years")
	}
	return results, nil
}

// Run executes the whole analysis.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	runID := uuid.New().String()
	log := zap.L().With(zap.String("component", "pipeline"), zap.String("run_id", runID))
	log.Info("pipeline: starting run", zap.Strings("regions", p.opts.Regions), zap.Int("concurrency", p.opts.Concurrency))

	loaded, err := p.Load(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{RunID: runID}
	var records []model.CourseRecord
	for _, yr := range loaded {
		res.Years = append(res.Years, summarize(yr))
		records = append(records, yr.Records...)
	}
	if len(records) == 0 {
		return res, ErrNoRecords
	}

	records = p.classifier.Classify(records)
	res.Records = len(records)
	for _, r := range records {
		if r.STEM {
			res.STEMRecords++
		}
	}

	p.aggregate(res, records)

	clusters, err := p.engine.RunPerYear(res.Municipal)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: cluster")
	}
	res.Clusters = clusters

	if err := p.reference(res); err != nil {
		return nil, err
	}

	log.Info("pipeline: run complete",
		zap.Int("years", len(res.Years)),
		zap.Int("records", res.Records),
		zap.Int("stem_records", res.STEMRecords),
		zap.Int("municipalities", len(res.Municipal)),
		zap.Int("reference_year", res.ReferenceYear),
	)
	return res, nil
}

func (p *Pipeline) aggregate(res *Result, records []model.CourseRecord) {
	res.Municipal = aggregate.Indicators(records, model.LevelMunicipality)
	res.MunicipalByType = aggregate.ByType(records, model.LevelMunicipality)
	res.MicroRegion = aggregate.Indicators(records, model.LevelMicroRegion)
	res.MicroRegionByType = aggregate.ByType(records, model.LevelMicroRegion)
	res.Regions = aggregate.Regions(records)
	res.RegionsByType = aggregate.RegionsByType(records)
	res.Scope = aggregate.Scope(records)

	res.Comparison = aggregate.CompareLevels(res.Municipal, res.MicroRegion, 0)
	for _, y := range aggregate.Years(res.Municipal) {
		res.Comparison = append(res.Comparison, aggregate.CompareLevels(res.Municipal, res.MicroRegion, y)...)
	}
}

// reference picks the reference year and derives its single-year tables.
func (p *Pipeline) reference(res *Result) error {
	years := aggregate.Years(res.Municipal)
	if len(years) == 0 {
		years = aggregate.Years(res.Regions)
	}
	switch {
	case p.opts.ReferenceYear != 0:
		if !slices.Contains(years, p.opts.ReferenceYear) {
			return eris.Errorf("pipeline: reference year %d has no data (years: %v)", p.opts.ReferenceYear, years)
		}
		res.ReferenceYear = p.opts.ReferenceYear
	case len(years) > 0:
		res.ReferenceYear = years[len(years)-1]
	}

	for i := range res.Clusters {
		if res.Clusters[i].Year == res.ReferenceYear {
			res.Reference = &res.Clusters[i]
		}
	}
	if res.Reference != nil {
		res.Lowest = cluster.LowestFemaleShare(*res.Reference, p.opts.LowestSize)
		res.Distribution = cluster.Distribution(*res.Reference)
	}

	micro := aggregate.ForYear(res.MicroRegion, res.ReferenceYear)
	microByType := aggregate.ForYear(res.MicroRegionByType, res.ReferenceYear)
	for _, region := range p.opts.Regions {
		res.Rankings = append(res.Rankings, aggregate.RankByName(micro, region, p.opts.RankingSize)...)
	}
	for _, region := range p.opts.Regions {
		for _, typ := range []model.InstitutionType{model.Public, model.Private} {
			ranked := aggregate.RankByName(aggregate.ForType(microByType, typ), region, p.opts.RankingSize)
			res.Rankings = append(res.Rankings, ranked...)
		}
	}
	return nil
}
