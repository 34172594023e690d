package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/cluster"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/model"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/normalize"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/pipeline"
)

func row(year int, level model.GeoLevel, key model.GeoKey, typ model.InstitutionType, total, fem, pub int64) model.AggregateRow {
	r := model.AggregateRow{
		Year: year, Level: level, Key: key, InstitutionType: typ,
		Enrolled: total, EnrolledFemale: fem, EnrolledPublic: pub, EnrolledPrivate: total - pub,
	}
	r.Derive()
	return r
}

func fixtureResult() *pipeline.Result {
	fortaleza := model.GeoKey{Region: "Nordeste", State: "CE", Name: "Fortaleza", Code: "2304400"}
	sobral := model.GeoKey{Region: "Nordeste", State: "CE", Name: "Sobral", Code: "2312908"}
	campinas := model.GeoKey{Region: "Sudeste", State: "SP", Name: "Campinas", Code: "3509502"}
	micro := model.GeoKey{Region: "Nordeste", State: "CE", Name: "Fortaleza", Code: "23016"}

	municipal := []model.AggregateRow{
		row(2022, model.LevelMunicipality, fortaleza, "", 80, 20, 40),
		row(2023, model.LevelMunicipality, fortaleza, "", 100, 25, 60),
		row(2023, model.LevelMunicipality, sobral, "", 0, 0, 0),
		row(2023, model.LevelMunicipality, campinas, "", 50, 25, 0),
	}
	flow := row(2023, model.LevelMunicipality, campinas, "", 50, 25, 0)
	flow.HasFlow, flow.Intake, flow.Completed = true, 20, 5
	flow.Derive()
	municipal[3] = flow

	assign := func(r model.AggregateRow, c int, l model.Label) model.ClusterAssignment {
		return model.ClusterAssignment{Year: r.Year, Key: r.Key, Cluster: c, Label: l, Features: model.FeaturesOf(r), Indicator: r}
	}
	ref := cluster.Result{
		Year: 2023,
		Assignments: []model.ClusterAssignment{
			assign(municipal[1], 0, model.LabelPriority),
			assign(municipal[2], 1, model.LabelDisparity),
			assign(municipal[3], 2, model.LabelBaseline),
		},
		Profiles: []cluster.Profile{
			{Cluster: 0, Size: 1, FemaleShare: model.Float(0.25), Volume: 100, PrivateShare: model.Float(0.4), PublicShare: model.Float(0.6), Label: model.LabelPriority},
			{Cluster: 1, Size: 1, Volume: 0, Label: model.LabelDisparity},
			{Cluster: 2, Size: 1, FemaleShare: model.Float(0.5), Volume: 50, PrivateShare: model.Float(1), PublicShare: model.Float(0), Label: model.LabelBaseline},
		},
		VolumeThreshold: 75,
		Silhouette:      model.NullFloat{},
	}

	res := &pipeline.Result{
		RunID: "run-1",
		Years: []pipeline.YearSummary{
			{Year: 2022, Status: normalize.StatusLoaded, Records: 1},
			{Year: 2023, Status: normalize.StatusLoaded, Records: 3},
		},
		Records:     4,
		STEMRecords: 4,
		Municipal:   municipal,
		MicroRegion: []model.AggregateRow{row(2023, model.LevelMicroRegion, micro, "", 100, 25, 60)},
		Regions: []model.AggregateRow{
			row(2022, model.LevelRegion, model.GeoKey{Region: "Nordeste"}, "", 80, 20, 40),
			row(2023, model.LevelRegion, model.GeoKey{Region: "Nordeste"}, "", 100, 25, 60),
			row(2023, model.LevelRegion, model.GeoKey{Region: "Sudeste"}, "", 50, 25, 0),
		},
		RegionsByType: []model.AggregateRow{
			row(2023, model.LevelRegion, model.GeoKey{Region: "Nordeste"}, model.Public, 60, 15, 60),
			row(2023, model.LevelRegion, model.GeoKey{Region: "Nordeste"}, model.Private, 40, 10, 0),
			row(2023, model.LevelRegion, model.GeoKey{Region: "Sudeste"}, model.Private, 50, 25, 0),
		},
		Scope: []model.AggregateRow{
			row(2022, model.LevelScope, model.GeoKey{}, "", 80, 20, 40),
			row(2023, model.LevelScope, model.GeoKey{}, "", 150, 50, 60),
		},
		Comparison: []model.LevelComparison{
			{Year: 0, Region: "Nordeste", Municipality: model.Float(0.25), MicroRegion: model.Float(0.25)},
			{Year: 2023, Region: "Nordeste", Municipality: model.Float(0.25), MicroRegion: model.Float(0.25)},
			{Year: 2023, Region: "Sudeste", Municipality: model.Float(0.5)},
		},
		Clusters:      []cluster.Result{{Year: 2022, Skipped: true}, ref},
		ReferenceYear: 2023,
		Rankings: []model.RankedUnit{
			{Year: 2023, Region: "Nordeste", Rank: 1, Name: "Fortaleza", FemaleShare: model.Float(0.25)},
			{Year: 2023, Region: "Nordeste", InstitutionType: model.Public, Rank: 1, Name: "Fortaleza", FemaleShare: model.Float(0.25)},
		},
		Distribution: []model.LabelCount{
			{Year: 2023, Region: "Nordeste", Label: model.LabelPriority, Count: 1},
			{Year: 2023, Region: "Nordeste", Label: model.LabelDisparity, Count: 1},
			{Year: 2023, Region: "Sudeste", Label: model.LabelBaseline, Count: 1},
		},
	}
	res.Reference = &res.Clusters[1]
	res.Lowest = cluster.LowestFemaleShare(*res.Reference, 10)
	return res
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func column(t *testing.T, header []string, name string) int {
	t.Helper()
	for i, h := range header {
		if h == name {
			return i
		}
	}
	t.Fatalf("column %s not in %v", name, header)
	return -1
}

func TestTables_NamesAndSheets(t *testing.T) {
	tables, err := Tables(fixtureResult())
	require.NoError(t, err)

	var names []string
	sheets := make(map[string]bool)
	for _, tb := range tables {
		names = append(names, tb.Name)
		assert.LessOrEqual(t, len(tb.Sheet), 31, tb.Sheet)
		assert.False(t, sheets[tb.Sheet], "duplicate sheet %s", tb.Sheet)
		sheets[tb.Sheet] = true
	}
	assert.Equal(t, []string{
		"indicadores_stem_municipio",
		"indicadores_stem_microrregiao",
		"resumo_anual_regiao",
		"resumo_tipo_ies",
		"resumo_anual_total",
		"comparacao_municipio_microrregiao",
		"indicadores_stem_municipio_2022",
		"indicadores_stem_municipio_2023",
		"indicadores_stem_microrregiao_2023",
		"clusters_stem_municipio_2023",
		"perfil_clusters_2023",
		"ranking_microrregiao_2023",
		"distribuicao_clusters_2023",
		"menor_pct_fem_municipio_2023",
	}, names)
}

func TestTables_EmptyTablesKeepHeader(t *testing.T) {
	tables, err := Tables(&pipeline.Result{})
	require.NoError(t, err)
	require.Len(t, tables, 6)
	for _, tb := range tables {
		assert.NotEmpty(t, tb.Header, tb.Name)
		assert.Empty(t, tb.Rows, tb.Name)
	}
}

func TestCSVSink_UndefinedValuesAreEmptyCells(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, (&CSVSink{Dir: dir}).Emit(context.Background(), fixtureResult()))

	records := readCSV(t, filepath.Join(dir, "indicadores_stem_municipio_2023.csv"))
	require.Len(t, records, 4)
	header := records[0]
	assert.Equal(t, []string{"ANO", "NO_REGIAO", "SG_UF", "NO_MUNICIPIO", "CO_MUNICIPIO", "QT_MAT"}, header[:6])

	fem := column(t, header, "PCT_FEM_STEM")
	ing := column(t, header, "QT_ING")
	taxa := column(t, header, "TAXA_SUCESSO")

	fortaleza, sobral, campinas := records[1], records[2], records[3]
	assert.Equal(t, "Fortaleza", fortaleza[3])
	assert.Equal(t, "0.25", fortaleza[fem])
	assert.Equal(t, "", fortaleza[ing], "no flow columns that year")
	assert.Equal(t, "", fortaleza[taxa])

	assert.Equal(t, "Sobral", sobral[3])
	assert.Equal(t, "0", sobral[column(t, header, "QT_MAT")])
	assert.Equal(t, "", sobral[fem], "zero denominator")
	assert.Equal(t, "", sobral[column(t, header, "IPG")])

	assert.Equal(t, "20", campinas[ing])
	assert.Equal(t, "0.25", campinas[taxa])
	assert.Equal(t, "1", campinas[column(t, header, "IPG")])
}

func TestCSVSink_SharesAreFractions(t *testing.T) {
	key := model.GeoKey{Region: "Nordeste", State: "CE", Name: "X", Code: "1"}
	res := &pipeline.Result{Municipal: []model.AggregateRow{
		row(2023, model.LevelMunicipality, key, "", 10, 12, 10),
	}}
	dir := t.TempDir()
	require.NoError(t, (&CSVSink{Dir: dir}).Emit(context.Background(), res))

	records := readCSV(t, filepath.Join(dir, "indicadores_stem_municipio_2023.csv"))
	require.Len(t, records, 2)
	header := records[0]
	assert.Equal(t, "1.2", records[1][column(t, header, "PCT_FEM_STEM")])
	assert.Equal(t, "1", records[1][column(t, header, "PCT_PUBLICA")])
	assert.Equal(t, "0", records[1][column(t, header, "PCT_PRIVADA")])
}

func TestCSVSink_ClusterAndComparisonFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, (&CSVSink{Dir: dir}).Emit(context.Background(), fixtureResult()))

	clusters := readCSV(t, filepath.Join(dir, "clusters_stem_municipio_2023.csv"))
	require.Len(t, clusters, 4)
	label := column(t, clusters[0], "LABEL")
	assert.Equal(t, "A", clusters[1][label])
	assert.Equal(t, "C", clusters[2][label])

	cmp := readCSV(t, filepath.Join(dir, "comparacao_municipio_microrregiao.csv"))
	require.Len(t, cmp, 4)
	assert.Equal(t, "TODOS", cmp[1][0])
	assert.Equal(t, "", cmp[3][column(t, cmp[0], "PCT_FEM_MICRORREGIAO")])

	lowest := readCSV(t, filepath.Join(dir, "menor_pct_fem_municipio_2023.csv"))
	require.Len(t, lowest, 4)
	assert.Equal(t, "Fortaleza", lowest[1][3], "undefined share ranks last")
	assert.Equal(t, "Sobral", lowest[3][3])

	_, err := os.Stat(filepath.Join(dir, "clusters_stem_municipio_2022.csv"))
	assert.True(t, os.IsNotExist(err), "skipped years have no cluster file")
}

func TestXLSXSink(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, (&XLSXSink{Dir: dir}).Emit(context.Background(), fixtureResult()))

	f, err := xlsx.OpenFile(filepath.Join(dir, WorkbookName))
	require.NoError(t, err)
	assert.Len(t, f.Sheets, 14)

	sheet, ok := f.Sheet["municipio_2023"]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 4)
	assert.Equal(t, "ANO", sheet.Rows[0].Cells[0].Value)
	assert.Equal(t, "Fortaleza", sheet.Rows[1].Cells[3].Value)
	assert.Equal(t, "2304400", sheet.Rows[1].Cells[4].Value)
	assert.Equal(t, xlsx.CellTypeString, sheet.Rows[1].Cells[4].Type())
}

func TestChartSink(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, (&ChartSink{Dir: dir}).Emit(context.Background(), fixtureResult()))

	for _, name := range []string{
		"evolucao_pct_fem_regiao.png",
		"publica_privada_regiao_2023.png",
		"comparacao_niveis_2023.png",
		"ranking_nordeste_2023.png",
		"ranking_nordeste_publica_2023.png",
		"distribuicao_clusters_2023.png",
	} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size(), name)
	}
}

func TestChartSink_EmptyResultDrawsNothing(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, (&ChartSink{Dir: dir}).Emit(context.Background(), &pipeline.Result{}))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestConsoleSink(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&ConsoleSink{Out: &buf}).Emit(context.Background(), fixtureResult()))

	out := buf.String()
	assert.Contains(t, out, "Execução run-1: 4 registros, 4 STEM")
	assert.Contains(t, out, "Nordeste")
	assert.Contains(t, out, "Clusters 2023 (silhueta -)")
	assert.Contains(t, out, "Menor participação feminina, 2023")
	assert.Contains(t, out, "Fortaleza")
	assert.Contains(t, out, "25.0")
	assert.Contains(t, out, "REGIÃO")
	assert.Contains(t, out, "MUNICÍPIO")
	assert.NotContains(t, out, "FEMALE")
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	sinks, err := New([]string{"csv", " XLSX ", "csv", "charts", "console"}, "out", &buf)
	require.NoError(t, err)
	var names []string
	for _, s := range sinks {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"csv", "xlsx", "charts", "console"}, names)

	_, err = New([]string{"parquet"}, "out", &buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown format "parquet"`)
}

func TestEmitAll(t *testing.T) {
	var buf bytes.Buffer
	dir := t.TempDir()
	sinks, err := New([]string{"csv", "console"}, dir, &buf)
	require.NoError(t, err)
	require.NoError(t, EmitAll(context.Background(), sinks, fixtureResult()))
	assert.FileExists(t, filepath.Join(dir, "resumo_anual_total.csv"))
	assert.NotEmpty(t, buf.String())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, EmitAll(ctx, sinks, fixtureResult()), context.Canceled)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "publica", slug("Pública"))
	assert.Equal(t, "centro-oeste", slug("Centro-Oeste"))
	assert.Equal(t, "sao_paulo", slug("São Paulo"))
}
