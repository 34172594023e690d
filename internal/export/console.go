package export

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/cluster"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/model"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/pipeline"
)

// ConsoleSink prints a short report of a run.
type ConsoleSink struct {
	Out io.Writer
}

func (s *ConsoleSink) Name() string { return "console" }

func (s *ConsoleSink) Emit(_ context.Context, res *pipeline.Result) error {
	fmt.Fprintf(s.Out, "Execução %s: %d registros, %d STEM\n\n", res.RunID, res.Records, res.STEMRecords)
	WriteYears(s.Out, res.Years)

	fmt.Fprintln(s.Out, "\nParticipação feminina em STEM por região")
	WriteRegions(s.Out, res.Regions)

	if res.Reference != nil && !res.Reference.Skipped {
		fmt.Fprintf(s.Out, "\nClusters %d (silhueta %s)\n", res.ReferenceYear, number(res.Reference.Silhouette))
		WriteProfiles(s.Out, *res.Reference)
		fmt.Fprintf(s.Out, "\nMenor participação feminina, %d\n", res.ReferenceYear)
		WriteAssignments(s.Out, res.Lowest)
	}
	return nil
}

// WriteYears prints the load status of every discovered year.
func WriteYears(w io.Writer, years []pipeline.YearSummary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Ano", "Situação", "Registros", "Tipo", "Motivo"})
	for _, y := range years {
		table.Append([]string{
			strconv.Itoa(y.Year),
			string(y.Status),
			strconv.Itoa(y.Records),
			string(y.Kind),
			y.Reason,
		})
	}
	table.Render()
}

// WriteRegions prints a region series.
func WriteRegions(w io.Writer, rows []model.AggregateRow) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Ano", "Região", "Matrículas", "Feminino", "% Fem", "IPG"})
	for _, r := range rows {
		table.Append([]string{
			strconv.Itoa(r.Year),
			r.Key.Region,
			strconv.FormatInt(r.Enrolled, 10),
			strconv.FormatInt(r.EnrolledFemale, 10),
			pct(r.FemaleShare, 100),
			number(r.ParityIndex),
		})
	}
	table.Render()
}

// WriteProfiles prints the cluster profiles of one run.
func WriteProfiles(w io.Writer, res cluster.Result) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Cluster", "Rótulo", "Municípios", "% Fem", "Volume", "% Privada"})
	for _, p := range res.Profiles {
		table.Append([]string{
			strconv.Itoa(p.Cluster),
			string(p.Label),
			strconv.Itoa(p.Size),
			pct(p.FemaleShare, 100),
			strconv.FormatFloat(p.Volume, 'f', 1, 64),
			pct(p.PrivateShare, 100),
		})
	}
	table.Render()
}

// WriteAssignments prints clustered municipalities.
func WriteAssignments(w io.Writer, assignments []model.ClusterAssignment) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Município", "UF", "Região", "Rótulo", "% Fem", "Volume", "% Pública"})
	for _, a := range assignments {
		table.Append([]string{
			a.Key.Name,
			a.Key.State,
			a.Key.Region,
			string(a.Label),
			pct(a.Indicator.FemaleShare, 100),
			strconv.FormatInt(a.Indicator.Volume(), 10),
			pct(a.Indicator.PublicShare, 100),
		})
	}
	table.Render()
}

// pct formats v*scale with one decimal, "-" when undefined.
func pct(v model.NullFloat, scale float64) string {
	if !v.Valid {
		return "-"
	}
	return strconv.FormatFloat(v.Value*scale, 'f', 1, 64)
}

func number(v model.NullFloat) string {
	if !v.Valid {
		return "-"
	}
	return strconv.FormatFloat(v.Value, 'f', 3, 64)
}
