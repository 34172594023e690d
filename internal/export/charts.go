package export

import (
	"context"
	"fmt"
	"image/color"
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/aggregate"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/model"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/pipeline"
)

var palette = []color.Color{
	color.RGBA{R: 70, G: 130, B: 180, A: 255},
	color.RGBA{R: 220, G: 20, B: 60, A: 255},
	color.RGBA{R: 34, G: 139, B: 34, A: 255},
	color.RGBA{R: 255, G: 165, B: 0, A: 255},
	color.RGBA{R: 106, G: 90, B: 205, A: 255},
}

func paint(i int) color.Color { return palette[i%len(palette)] }

// ChartSink renders the PNG charts of a run.
type ChartSink struct {
	Dir string
}

func (s *ChartSink) Name() string { return "charts" }

// series is one named set of bar values, aligned with the chart categories.
type series struct {
	name   string
	values plotter.Values
}

func (s *ChartSink) Emit(ctx context.Context, res *pipeline.Result) error {
	if err := ensureDir(s.Dir); err != nil {
		return err
	}
	steps := []func() error{
		func() error { return s.evolution(res.Regions) },
		func() error { return s.publicPrivate(res.RegionsByType, res.ReferenceYear) },
		func() error { return s.comparison(res.Comparison) },
		func() error { return s.rankings(res.Rankings) },
		func() error { return s.distribution(res.Distribution, res.ReferenceYear) },
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return eris.Wrap(err, "export: charts cancelled")
		}
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// evolution draws the female share of each region over the years.
func (s *ChartSink) evolution(rows []model.AggregateRow) error {
	p := plot.New()
	p.Title.Text = "Participação feminina em STEM por região"
	p.X.Label.Text = "Ano"
	p.Y.Label.Text = "% feminino"
	p.Add(plotter.NewGrid())

	drawn := 0
	for i, region := range aggregate.RegionNames(rows) {
		var xys plotter.XYs
		for _, r := range rows {
			if r.Key.Region == region && r.FemaleShare.Valid {
				xys = append(xys, plotter.XY{X: float64(r.Year), Y: r.FemaleShare.Percent().Value})
			}
		}
		if len(xys) == 0 {
			continue
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return eris.Wrapf(err, "export: line for %s", region)
		}
		line.Color = paint(i)
		line.Width = vg.Points(2)
		p.Add(line)
		p.Legend.Add(region, line)
		drawn++
	}
	if drawn == 0 {
		return nil
	}
	p.Legend.Top = true
	return s.save(p, "evolucao_pct_fem_regiao")
}

// publicPrivate compares the female share in public and private institutions
// per region for one year.
func (s *ChartSink) publicPrivate(rows []model.AggregateRow, year int) error {
	rows = aggregate.ForYear(rows, year)
	regions := aggregate.RegionNames(rows)
	set := make([]series, 0, 2)
	for _, typ := range []model.InstitutionType{model.Public, model.Private} {
		sr := series{name: string(typ), values: make(plotter.Values, len(regions))}
		for _, r := range aggregate.ForType(rows, typ) {
			sr.values[slices.Index(regions, r.Key.Region)] = r.FemaleShare.Percent().Or(0)
		}
		set = append(set, sr)
	}
	title := fmt.Sprintf("Participação feminina em STEM por rede, %d", year)
	return s.bars(title, "% feminino", regions, set, fmt.Sprintf("publica_privada_regiao_%d", year))
}

// comparison draws, per year, the municipality and micro-region means of each
// region side by side.
func (s *ChartSink) comparison(rows []model.LevelComparison) error {
	byYear := make(map[int][]model.LevelComparison)
	var years []int
	for _, r := range rows {
		if r.Year == 0 {
			continue
		}
		if _, ok := byYear[r.Year]; !ok {
			years = append(years, r.Year)
		}
		byYear[r.Year] = append(byYear[r.Year], r)
	}
	for _, y := range years {
		group := byYear[y]
		regions := make([]string, len(group))
		mun := series{name: "Município", values: make(plotter.Values, len(group))}
		micro := series{name: "Microrregião", values: make(plotter.Values, len(group))}
		for i, r := range group {
			regions[i] = r.Region
			mun.values[i] = r.Municipality.Percent().Or(0)
			micro.values[i] = r.MicroRegion.Percent().Or(0)
		}
		title := fmt.Sprintf("Município vs microrregião, %d", y)
		if err := s.bars(title, "% feminino (média)", regions, []series{mun, micro}, fmt.Sprintf("comparacao_niveis_%d", y)); err != nil {
			return err
		}
	}
	return nil
}

// rankings draws one horizontal bar chart per ranking group.
func (s *ChartSink) rankings(rows []model.RankedUnit) error {
	for start := 0; start < len(rows); {
		end := start + 1
		for end < len(rows) && rows[end].Region == rows[start].Region && rows[end].InstitutionType == rows[start].InstitutionType {
			end++
		}
		if err := s.ranking(rows[start:end]); err != nil {
			return err
		}
		start = end
	}
	return nil
}

func (s *ChartSink) ranking(group []model.RankedUnit) error {
	first := group[0]
	n := len(group)
	names := make([]string, n)
	values := make(plotter.Values, n)
	// Rank 1 at the top.
	for i, u := range group {
		names[n-1-i] = u.Name
		values[n-1-i] = u.FemaleShare.Percent().Or(0)
	}

	p := plot.New()
	title := "Microrregiões com maior participação feminina em STEM, " + first.Region
	name := "ranking_" + slug(first.Region)
	if first.InstitutionType != "" {
		title += " (" + string(first.InstitutionType) + ")"
		name += "_" + slug(string(first.InstitutionType))
	}
	p.Title.Text = fmt.Sprintf("%s, %d", title, first.Year)
	p.X.Label.Text = "% feminino"

	bars, err := plotter.NewBarChart(values, vg.Points(14))
	if err != nil {
		return eris.Wrapf(err, "export: bars for %s", name)
	}
	bars.Horizontal = true
	bars.Color = paint(0)
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalY(names...)
	return s.save(p, fmt.Sprintf("%s_%d", name, first.Year))
}

// distribution draws the cluster label counts per region.
func (s *ChartSink) distribution(counts []model.LabelCount, year int) error {
	var regions []string
	var labels []model.Label
	for _, c := range counts {
		if slices.Index(regions, c.Region) < 0 {
			regions = append(regions, c.Region)
		}
		if !slices.Contains(labels, c.Label) {
			labels = append(labels, c.Label)
		}
	}
	set := make([]series, len(labels))
	for i, l := range labels {
		set[i] = series{name: "Cluster " + string(l), values: make(plotter.Values, len(regions))}
	}
	for _, c := range counts {
		for i, l := range labels {
			if l == c.Label {
				set[i].values[slices.Index(regions, c.Region)] = float64(c.Count)
			}
		}
	}
	title := fmt.Sprintf("Distribuição dos clusters por região, %d", year)
	return s.bars(title, "Municípios", regions, set, fmt.Sprintf("distribuicao_clusters_%d", year))
}

// bars draws grouped vertical bars, one group per category.
func (s *ChartSink) bars(title, ylabel string, categories []string, set []series, name string) error {
	if len(categories) == 0 || len(set) == 0 {
		return nil
	}
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())

	w := vg.Points(18)
	for i, sr := range set {
		b, err := plotter.NewBarChart(sr.values, w)
		if err != nil {
			return eris.Wrapf(err, "export: bars for %s", name)
		}
		b.Color = paint(i)
		b.LineStyle.Width = vg.Length(0)
		b.Offset = w * vg.Length(float64(i)-float64(len(set)-1)/2)
		p.Add(b)
		p.Legend.Add(sr.name, b)
	}
	p.Legend.Top = true
	p.NominalX(categories...)
	return s.save(p, name)
}

func (s *ChartSink) save(p *plot.Plot, name string) error {
	path := filepath.Join(s.Dir, name+".png")
	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}

// slug folds a display name into a file-name fragment: "Pública" -> "publica".
func slug(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ReplaceAll(strings.ToLower(folded), " ", "_")
}
