package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/microdata"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/model"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/normalize"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/taxonomy"
)

var courseHeader = []string{
	"SG_UF", "NO_MUNICIPIO", "CO_MUNICIPIO", "TP_CATEGORIA_ADMINISTRATIVA",
	"NO_CINE_AREA_GERAL", "CO_CINE_AREA_GERAL", "QT_MAT", "QT_MAT_FEM", "CO_IES",
}

func fixtureSource() *microdata.MemorySource {
	return microdata.NewMemorySource().
		Put(microdata.Courses, 2021, courseHeader,
			[]string{"CE", "Fortaleza", "2304400", "1", "Ciências naturais", "05", "10", "5", "10"},
		).
		Fail(microdata.Courses, 2022, &microdata.SourceError{Kind: microdata.MalformedFile, Year: 2022, Err: errors.New("bare quote")}).
		Put(microdata.Courses, 2023, courseHeader,
			[]string{"CE", "Fortaleza", "2304400", "1", "Engenharia", "07", "60", "20", "10"},
			[]string{"CE", "Fortaleza", "2304400", "4", "Engenharia", "07", "40", "10", "30"},
			[]string{"SP", "Campinas", "3509502", "4", "Computação e TIC", "06", "50", "10", "20"},
			[]string{"PE", "Recife", "2611606", "1", "Engenharia", "", "30", "15", "40"},
			[]string{"CE", "Sobral", "2312908", "1", "Saúde", "09", "100", "80", "10"},
			[]string{"RS", "Porto Alegre", "4314902", "1", "Engenharia", "07", "999", "1", "10"},
		).
		Put(microdata.InstitutionsCadastro, 2023,
			[]string{"CO_IES", "NO_MICRORREGIAO_IES", "CO_MICRORREGIAO_IES"},
			[]string{"10", "Fortaleza", "23016"},
			[]string{"20", "Campinas", "35032"},
		)
}

func newPipeline(src microdata.Source, opts Options) *Pipeline {
	return New(src, taxonomy.Default(), nil, opts)
}

func TestRun_EndToEnd(t *testing.T) {
	res, err := newPipeline(fixtureSource(), DefaultOptions()).Run(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, res.RunID)

	require.Len(t, res.Years, 3)
	assert.Equal(t, YearSummary{Year: 2021, Status: normalize.StatusLoaded, Records: 1}, res.Years[0])
	assert.Equal(t, normalize.StatusUnavailable, res.Years[1].Status)
	assert.Equal(t, microdata.MalformedFile, res.Years[1].Kind)
	assert.Contains(t, res.Years[1].Reason, "bare quote")
	assert.Equal(t, 5, res.Years[2].Records, "Sul filtered out")
	assert.Equal(t, []int{2021, 2023}, res.LoadedYears())

	assert.Equal(t, 6, res.Records)
	assert.Equal(t, 5, res.STEMRecords)

	require.Len(t, res.Municipal, 4)
	names := make([]string, 0, 3)
	for _, r := range res.Municipal[1:] {
		names = append(names, r.Key.Name)
	}
	assert.Equal(t, []string{"Fortaleza", "Recife", "Campinas"}, names)
	fort := res.Municipal[1]
	assert.Equal(t, int64(100), fort.Enrolled)
	assert.Equal(t, int64(60), fort.EnrolledPublic)
	assert.Equal(t, model.Float(0.3), fort.FemaleShare)

	require.Len(t, res.MicroRegion, 2, "only institutions with a micro-region")
	assert.Equal(t, "23016", res.MicroRegion[0].Key.Code)
	assert.Equal(t, int64(60), res.MicroRegion[0].Enrolled)

	assert.Len(t, res.Regions, 3)
	assert.Len(t, res.Scope, 2)
	assert.Len(t, res.Comparison, 5)

	assert.Equal(t, 2023, res.ReferenceYear)
	require.Len(t, res.Clusters, 2)
	assert.True(t, res.Clusters[0].Skipped, "2021 has one municipality")
	require.NotNil(t, res.Reference)
	assert.Equal(t, 2023, res.Reference.Year)
	assert.Len(t, res.Reference.Assignments, 3)
	assert.Len(t, res.Lowest, 3)
	assert.Equal(t, "Campinas", res.Lowest[0].Key.Name)
	assert.NotEmpty(t, res.Distribution)

	require.Len(t, res.Rankings, 4)
	assert.Equal(t, "Fortaleza", res.Rankings[0].Name)
	assert.Equal(t, "Campinas", res.Rankings[1].Name)
	assert.Equal(t, model.Public, res.Rankings[2].InstitutionType)
	assert.Equal(t, model.Private, res.Rankings[3].InstitutionType)
}

func TestRun_ConcurrencyDoesNotChangeResults(t *testing.T) {
	seq, err := newPipeline(fixtureSource(), DefaultOptions()).Run(context.Background())
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.Concurrency = 4
	par, err := newPipeline(fixtureSource(), opts).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, seq.Years, par.Years)
	assert.Equal(t, seq.Municipal, par.Municipal)
	assert.Equal(t, seq.MicroRegion, par.MicroRegion)
	assert.Equal(t, seq.Reference.Assignments, par.Reference.Assignments)
}

func TestRun_NoYears(t *testing.T) {
	_, err := newPipeline(microdata.NewMemorySource(), DefaultOptions()).Run(context.Background())
	assert.ErrorIs(t, err, ErrNoYears)
}

func TestRun_NoRecords(t *testing.T) {
	src := microdata.NewMemorySource().
		Put(microdata.Courses, 2020, []string{"QT_MAT"}, []string{"1"}).
		Fail(microdata.Courses, 2021, errors.New("io"))

	res, err := newPipeline(src, DefaultOptions()).Run(context.Background())
	assert.ErrorIs(t, err, ErrNoRecords)
	require.NotNil(t, res)
	require.Len(t, res.Years, 2)
	assert.Equal(t, microdata.SchemaMismatch, res.Years[0].Kind)
}

func TestRun_ReferenceYear(t *testing.T) {
	opts := DefaultOptions()
	opts.ReferenceYear = 2021
	res, err := newPipeline(fixtureSource(), opts).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2021, res.ReferenceYear)
	require.NotNil(t, res.Reference)
	assert.True(t, res.Reference.Skipped)
	assert.Empty(t, res.Lowest)

	opts.ReferenceYear = 2022
	_, err = newPipeline(fixtureSource(), opts).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reference year 2022")
}

func TestLoad_YearFilter(t *testing.T) {
	opts := DefaultOptions()
	opts.Years = []int{2023}
	results, err := newPipeline(fixtureSource(), opts).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 2023, results[0].Year)

	opts.Years = []int{1999}
	_, err = newPipeline(fixtureSource(), opts).Load(context.Background())
	assert.ErrorIs(t, err, ErrNoYears)
}

func TestLoad_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newPipeline(fixtureSource(), DefaultOptions()).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSummaries(t *testing.T) {
	got := Summaries([]normalize.YearResult{
		{Year: 2020, Status: normalize.StatusEmpty},
		{Year: 2021, Status: normalize.StatusUnavailable, Err: &microdata.SourceError{Kind: microdata.MissingSourceFile}},
	})
	require.Len(t, got, 2)
	assert.Empty(t, got[0].Reason)
	assert.Equal(t, microdata.MissingSourceFile, got[1].Kind)
}
