package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/gocarina/gocsv"
	"github.com/rotisserie/eris"

	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/aggregate"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/pipeline"
)

// Table is one rendered output table.
type Table struct {
	Name   string // file stem
	Sheet  string // workbook sheet name, at most 31 characters
	Header []string
	Rows   [][]string
}

// render marshals a slice of tagged rows into a Table.
func render(name, sheet string, rows any) (Table, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := gocsv.MarshalCSV(rows, w); err != nil {
		return Table{}, eris.Wrapf(err, "export: marshal %s", name)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return Table{}, eris.Wrapf(err, "export: marshal %s", name)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		return Table{}, eris.Wrapf(err, "export: reparse %s", name)
	}
	t := Table{Name: name, Sheet: sheet}
	if len(records) > 0 {
		t.Header = records[0]
		t.Rows = records[1:]
	}
	return t, nil
}

// Tables renders every table of a run, in a fixed order.
func Tables(res *pipeline.Result) ([]Table, error) {
	type entry struct {
		name, sheet string
		rows        any
	}
	entries := []entry{
		{"indicadores_stem_municipio", "municipio", municipalRows(res.Municipal)},
		{"indicadores_stem_microrregiao", "microrregiao", microRegionRows(res.MicroRegion)},
		{"resumo_anual_regiao", "regiao", regionRows(res.Regions)},
		{"resumo_tipo_ies", "tipo_ies", regionRows(res.RegionsByType)},
		{"resumo_anual_total", "total", regionRows(res.Scope)},
		{"comparacao_municipio_microrregiao", "comparacao", comparisonRows(res.Comparison)},
	}
	for _, year := range aggregate.Years(res.Municipal) {
		entries = append(entries, entry{
			fmt.Sprintf("indicadores_stem_municipio_%d", year),
			fmt.Sprintf("municipio_%d", year),
			municipalRows(aggregate.ForYear(res.Municipal, year)),
		})
	}
	for _, year := range aggregate.Years(res.MicroRegion) {
		entries = append(entries, entry{
			fmt.Sprintf("indicadores_stem_microrregiao_%d", year),
			fmt.Sprintf("microrregiao_%d", year),
			microRegionRows(aggregate.ForYear(res.MicroRegion, year)),
		})
	}
	for _, c := range res.Clusters {
		if c.Skipped {
			continue
		}
		entries = append(entries,
			entry{fmt.Sprintf("clusters_stem_municipio_%d", c.Year), fmt.Sprintf("clusters_%d", c.Year), clusterRows(c.Assignments)},
			entry{fmt.Sprintf("perfil_clusters_%d", c.Year), fmt.Sprintf("perfil_%d", c.Year), profileRows(c)},
		)
	}
	if res.ReferenceYear != 0 {
		y := res.ReferenceYear
		entries = append(entries,
			entry{fmt.Sprintf("ranking_microrregiao_%d", y), fmt.Sprintf("ranking_%d", y), rankingRows(res.Rankings)},
			entry{fmt.Sprintf("distribuicao_clusters_%d", y), fmt.Sprintf("distribuicao_%d", y), distributionRows(res.Distribution)},
			entry{fmt.Sprintf("menor_pct_fem_municipio_%d", y), fmt.Sprintf("menor_pct_fem_%d", y), clusterRows(res.Lowest)},
		)
	}

	tables := make([]Table, 0, len(entries))
	for _, s := range entries {
		t, err := render(s.name, s.sheet, s.rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}
