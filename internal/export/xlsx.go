package export

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/pipeline"
)

// WorkbookName is the file written by XLSXSink.
const WorkbookName = "indicadores_stem.xlsx"

// textPrefixes mark columns kept as text even when the value looks numeric,
// so codes keep their leading zeros.
var textPrefixes = []string{"CO_", "NO_", "SG_", "TP_", "LABEL"}

// XLSXSink writes every table as a sheet of one workbook.
type XLSXSink struct {
	Dir string
}

func (s *XLSXSink) Name() string { return "xlsx" }

func (s *XLSXSink) Emit(ctx context.Context, res *pipeline.Result) error {
	tables, err := Tables(res)
	if err != nil {
		return err
	}
	if err := ensureDir(s.Dir); err != nil {
		return err
	}

	f := xlsx.NewFile()
	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return eris.Wrap(err, "export: xlsx cancelled")
		}
		if err := addSheet(f, t); err != nil {
			return err
		}
	}
	path := filepath.Join(s.Dir, WorkbookName)
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}

func addSheet(f *xlsx.File, t Table) error {
	sheet, err := f.AddSheet(t.Sheet)
	if err != nil {
		return eris.Wrapf(err, "export: add sheet %s", t.Sheet)
	}

	header := sheet.AddRow()
	text := make([]bool, len(t.Header))
	for i, h := range t.Header {
		header.AddCell().SetString(h)
		text[i] = isText(h)
	}
	for _, r := range t.Rows {
		row := sheet.AddRow()
		for i, v := range r {
			cell := row.AddCell()
			if v == "" || text[i] {
				cell.SetString(v)
				continue
			}
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				cell.SetFloat(n)
			} else {
				cell.SetString(v)
			}
		}
	}
	return nil
}

func isText(column string) bool {
	for _, p := range textPrefixes {
		if strings.HasPrefix(column, p) {
			return true
		}
	}
	return false
}
