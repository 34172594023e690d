package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/config"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/pipeline"
)

const coursesHeader = "NO_REGIAO;SG_UF;NO_MUNICIPIO;CO_MUNICIPIO;TP_CATEGORIA_ADMINISTRATIVA;NO_CINE_AREA_GERAL;CO_CINE_AREA_GERAL;QT_MAT;QT_MAT_FEM;CO_IES"

func writeLatin1(t *testing.T, path string, lines ...string) {
	t.Helper()
	data, err := charmap.ISO8859_1.NewEncoder().String(strings.Join(lines, "\n") + "\n")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

// writeFixture writes a 2022 file with three in-scope municipalities and an
// empty 2023 file.
func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeLatin1(t, filepath.Join(dir, "MICRODADOS_CADASTRO_CURSOS_2022.CSV"),
		coursesHeader,
		"Nordeste;CE;Fortaleza;2304400;1;Engenharia, produção e construção;07;60;20;10",
		"Nordeste;CE;Fortaleza;2304400;4;Computação e Tecnologias da Informação e Comunicação (TIC);06;40;10;10",
		"Nordeste;PE;Recife;2611606;1;Engenharia, produção e construção;07;30;15;10",
		"Sudeste;SP;São Paulo;3550308;4;Ciências naturais, matemática e estatística;05;500;100;20",
		"Sudeste;SP;São Paulo;3550308;1;Saúde e bem-estar;09;300;250;10",
		"Sul;RS;Porto Alegre;4314902;1;Engenharia, produção e construção;07;80;20;10",
	)
	writeLatin1(t, filepath.Join(dir, "MICRODADOS_CADASTRO_IES_2022.CSV"),
		"CO_IES;NO_MICRORREGIAO_IES;CO_MICRORREGIAO_IES",
		"10;Fortaleza;23016",
		"20;São Paulo;35061",
	)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "MICRODADOS_CADASTRO_CURSOS_2023.CSV"), nil, 0o644))
	return dir
}

func testConfig(in, out string) *config.Config {
	c := &config.Config{}
	c.Input.Dir = in
	c.Input.Encoding = "latin1"
	c.Input.Delimiter = ";"
	c.Output.Dir = out
	c.Output.Formats = []string{"csv"}
	c.Analysis.Regions = []string{"Nordeste", "Sudeste"}
	c.Analysis.RankingSize = 15
	c.Analysis.LowestSize = 10
	c.Cluster.K = 3
	c.Cluster.Restarts = 10
	c.Cluster.Seed = 42
	c.Cluster.MaxIter = 300
	c.Cluster.Tolerance = 1e-4
	c.Cluster.VolumeQuantile = 0.75
	c.Cluster.Precedence = "disparity"
	c.Pipeline.Concurrency = 2
	c.Log.Level = "info"
	c.Log.Format = "console"
	return c
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"run", "years", "cluster"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "desigualdade", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("input"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("output"))
}

func TestCommandFlags(t *testing.T) {
	require.NotNil(t, runCmd.Flags().Lookup("years"))
	require.NotNil(t, runCmd.Flags().Lookup("format"))
	flag := clusterCmd.Flags().Lookup("year")
	require.NotNil(t, flag)
	assert.Equal(t, "0", flag.DefValue)
}

func TestRunAnalysis_WritesCSV(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	c := testConfig(writeFixture(t), out)

	var buf bytes.Buffer
	require.NoError(t, runAnalysis(context.Background(), c, nil, &buf))

	for _, name := range []string{
		"indicadores_stem_municipio.csv",
		"indicadores_stem_municipio_2022.csv",
		"indicadores_stem_microrregiao_2022.csv",
		"clusters_stem_municipio_2022.csv",
		"resumo_anual_regiao.csv",
		"resumo_tipo_ies.csv",
		"resumo_anual_total.csv",
		"comparacao_municipio_microrregiao.csv",
		"ranking_microrregiao_2022.csv",
		"distribuicao_clusters_2022.csv",
	} {
		assert.FileExists(t, filepath.Join(out, name))
	}

	data, err := os.ReadFile(filepath.Join(out, "indicadores_stem_municipio_2022.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "São Paulo", "exported as UTF-8")
	assert.NotContains(t, string(data), "Porto Alegre")
}

func TestRunAnalysis_Console(t *testing.T) {
	c := testConfig(writeFixture(t), t.TempDir())
	c.Output.Formats = []string{"console"}

	var buf bytes.Buffer
	require.NoError(t, runAnalysis(context.Background(), c, []int{2022}, &buf))
	assert.Contains(t, buf.String(), "Clusters 2022")
	assert.Contains(t, buf.String(), "Recife")
}

func TestRunAnalysis_Errors(t *testing.T) {
	c := testConfig(t.TempDir(), t.TempDir())
	err := runAnalysis(context.Background(), c, nil, &bytes.Buffer{})
	assert.ErrorIs(t, err, pipeline.ErrNoYears)

	c = testConfig(writeFixture(t), t.TempDir())
	err = runAnalysis(context.Background(), c, []int{2023}, &bytes.Buffer{})
	assert.ErrorIs(t, err, pipeline.ErrNoRecords)

	c.Output.Formats = []string{"pdf"}
	assert.Error(t, runAnalysis(context.Background(), c, nil, &bytes.Buffer{}))

	c = testConfig(writeFixture(t), t.TempDir())
	c.Input.TaxonomyFile = filepath.Join(t.TempDir(), "missing.yaml")
	assert.Error(t, runAnalysis(context.Background(), c, nil, &bytes.Buffer{}))
}

func TestListYears(t *testing.T) {
	c := testConfig(writeFixture(t), t.TempDir())

	var buf bytes.Buffer
	require.NoError(t, listYears(context.Background(), c, &buf))
	out := buf.String()
	assert.Contains(t, out, "2022")
	assert.Contains(t, out, "loaded")
	assert.Contains(t, out, "2023")
	assert.Contains(t, out, "unavailable")
	assert.Contains(t, out, "malformed")
}

func TestClusterOneYear(t *testing.T) {
	c := testConfig(writeFixture(t), t.TempDir())

	var buf bytes.Buffer
	require.NoError(t, clusterOneYear(context.Background(), c, 2022, &buf))
	out := buf.String()
	assert.Contains(t, out, "2022: 3 municípios")
	assert.Contains(t, out, "Fortaleza")
	assert.Contains(t, out, "São Paulo")

	c.Cluster.K = 5
	buf.Reset()
	require.NoError(t, clusterOneYear(context.Background(), c, 2022, &buf))
	assert.Contains(t, buf.String(), "nada a agrupar")
}

func TestInitEngine_InvalidPrecedence(t *testing.T) {
	c := testConfig(t.TempDir(), t.TempDir())
	c.Cluster.Precedence = "random"
	_, err := initEngine(c.Cluster)
	assert.Error(t, err)
}
