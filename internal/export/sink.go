// Package export writes the tables of a pipeline run to flat files, charts
// and the console.
package export

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/pipeline"
)

// Sink consumes the result of a run.
type Sink interface {
	Name() string
	Emit(ctx context.Context, res *pipeline.Result) error
}

// Formats lists the accepted output.formats values.
var Formats = []string{"csv", "xlsx", "charts", "console"}

// New builds one sink per format. Files go under dir; the console sink writes
// to out.
func New(formats []string, dir string, out io.Writer) ([]Sink, error) {
	sinks := make([]Sink, 0, len(formats))
	seen := make(map[string]bool, len(formats))
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if seen[f] {
			continue
		}
		seen[f] = true
		switch f {
		case "csv":
			sinks = append(sinks, &CSVSink{Dir: dir})
		case "xlsx":
			sinks = append(sinks, &XLSXSink{Dir: dir})
		case "charts":
			sinks = append(sinks, &ChartSink{Dir: dir})
		case "console":
			sinks = append(sinks, &ConsoleSink{Out: out})
		default:
			return nil, eris.Errorf("export: unknown format %q (known: %s)", f, strings.Join(Formats, ", "))
		}
	}
	return sinks, nil
}

// EmitAll runs the sinks in order and stops at the first failure.
func EmitAll(ctx context.Context, sinks []Sink, res *pipeline.Result) error {
	log := zap.L().With(zap.String("component", "export"), zap.String("run_id", res.RunID))
	for _, s := range sinks {
		if err := ctx.Err(); err != nil {
			return eris.Wrap(err, "export: cancelled")
		}
		if err := s.Emit(ctx, res); err != nil {
			return eris.Wrapf(err, "export: %s sink", s.Name())
		}
		log.Info("export: sink done", zap.String("sink", s.Name()))
	}
	return nil
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "export: create %s", dir)
	}
	return nil
}
