package export

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/pipeline"
)

// CSVSink writes one comma-separated UTF-8 file per table.
type CSVSink struct {
	Dir string
}

func (s *CSVSink) Name() string { return "csv" }

func (s *CSVSink) Emit(ctx context.Context, res *pipeline.Result) error {
	tables, err := Tables(res)
	if err != nil {
		return err
	}
	if err := ensureDir(s.Dir); err != nil {
		return err
	}
	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return eris.Wrap(err, "export: csv cancelled")
		}
		if err := writeCSV(filepath.Join(s.Dir, t.Name+".csv"), t); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(path string, t Table) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Header); err != nil {
		return eris.Wrapf(err, "export: write %s", path)
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return eris.Wrapf(err, "export: write %s", path)
	}
	return f.Close()
}
