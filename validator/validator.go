package validator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/geoknoesis/shacl-go/metric"
	"github.com/geoknoesis/shacl-go/rdf"
	"github.com/geoknoesis/shacl-go/shacl"
)

// GraphIO loads, parses and writes RDF graphs. rdf.Codec implements it.
type GraphIO interface {
	Load(ctx context.Context, locator string, format rdf.Format) (*rdf.Graph, error)
	Parse(ctx context.Context, text string, format rdf.Format) (*rdf.Graph, error)
	Write(w io.Writer, g *rdf.Graph, format rdf.Format) error
}

// Engine compiles shapes graphs and validates data graphs. shacl.Engine
// implements it.
type Engine interface {
	CompileShapes(g *rdf.Graph) (*shacl.Shapes, error)
	Validate(ctx context.Context, shapes *shacl.Shapes, data *rdf.Graph) (*shacl.Report, error)
}

// Validator validates data payloads against a compiled shapes graph. It is
// immutable once New returns and safe for concurrent use.
type Validator struct {
	shapes       *shacl.Shapes
	shapeSource  Source
	shapeFormat  rdf.Format
	dataFormat   rdf.Format
	outputFormat rdf.Format

	resolver    *SourceResolver
	graphs      GraphIO
	engine      Engine
	logger      *zap.Logger
	metrics     *metric.Metrics
	concurrency int
}

// New runs the configuration phase: it resolves the three formats, loads or
// parses the shapes graph and compiles it. On failure it returns a nil
// Validator and one of *ConfigurationError, *UnsupportedFormatError,
// *ParseError, or the loader's own error for a shape reference.
func New(ctx context.Context, cfg Configuration, opts ...Option) (*Validator, error) {
	o := buildOptions(opts)
	start := time.Now()
	v, err := compile(ctx, cfg, o)
	o.metrics.RecordConfigure(outcome(err))
	if err != nil {
		o.logger.Warn("configuration failed", zap.Error(err))
		return nil, err
	}
	o.logger.Info("validator configured",
		zap.Stringer("shape_source", v.shapeSource.Kind),
		zap.Int("shapes", v.shapes.Len()),
		zap.Int("shape_triples", v.shapes.Graph().Len()),
		zap.Stringer("data_format", v.dataFormat),
		zap.Stringer("output_format", v.outputFormat),
		zap.Duration("duration", time.Since(start)))
	return v, nil
}

func (v *Validator) configured() bool { return v != nil && v.shapes != nil }

// Shapes returns the compiled shapes.
func (v *Validator) Shapes() *shacl.Shapes {
	if v == nil {
		return nil
	}
	return v.shapes
}

// ShapeSource returns how the shape value was classified.
func (v *Validator) ShapeSource() Source {
	if v == nil {
		return Source{}
	}
	return v.shapeSource
}

// ShapeFormat returns the format the shapes graph was read in.
func (v *Validator) ShapeFormat() rdf.Format {
	if v == nil {
		return ""
	}
	return v.shapeFormat
}

// DataFormat returns the format data payloads are read in.
func (v *Validator) DataFormat() rdf.Format {
	if v == nil {
		return ""
	}
	return v.dataFormat
}

// OutputFormat returns the format reports are written in.
func (v *Validator) OutputFormat() rdf.Format {
	if v == nil {
		return ""
	}
	return v.outputFormat
}

// Run validates one payload, a locator or inline RDF in the data format,
// and returns the report serialized in the output format.
func (v *Validator) Run(ctx context.Context, data string) (string, error) {
	if !v.configured() {
		return "", &NotConfiguredError{Op: "Run"}
	}
	start := time.Now()
	log := v.logger.With(zap.String("run_id", uuid.NewString()))
	report, err := v.validate(ctx, log, data)
	var text string
	if err == nil {
		text, err = v.Serialize(report)
	}
	v.observe(log, start, report, err)
	return text, err
}

// Serialize writes report in the configured output format.
func (v *Validator) Serialize(report *shacl.Report) (string, error) {
	if !v.configured() {
		return "", &NotConfiguredError{Op: "Serialize"}
	}
	return SerializeReport(v.graphs, report, v.outputFormat)
}

// RunReport validates one payload and returns the report model without
// serializing it.
func (v *Validator) RunReport(ctx context.Context, data string) (*shacl.Report, error) {
	if !v.configured() {
		return nil, &NotConfiguredError{Op: "RunReport"}
	}
	start := time.Now()
	log := v.logger.With(zap.String("run_id", uuid.NewString()))
	report, err := v.validate(ctx, log, data)
	v.observe(log, start, report, err)
	if err != nil {
		return nil, err
	}
	return report, nil
}

// RunBatch runs every input concurrently, at most WithConcurrency at a time,
// and returns the serialized reports in input order. The first failure
// cancels the remaining runs and is returned.
func (v *Validator) RunBatch(ctx context.Context, inputs []string) ([]string, error) {
	if !v.configured() {
		return nil, &NotConfiguredError{Op: "RunBatch"}
	}
	return batch(ctx, v.concurrency, inputs, v.Run)
}

// RunBatchReports is RunBatch without serialization.
func (v *Validator) RunBatchReports(ctx context.Context, inputs []string) ([]*shacl.Report, error) {
	if !v.configured() {
		return nil, &NotConfiguredError{Op: "RunBatchReports"}
	}
	return batch(ctx, v.concurrency, inputs, v.RunReport)
}

func batch[T any](ctx context.Context, limit int, inputs []string, run func(context.Context, string) (T, error)) ([]T, error) {
	out := make([]T, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, input := range inputs {
		g.Go(func() error {
			result, err := run(gctx, input)
			if err != nil {
				return fmt.Errorf("input %d: %w", i, err)
			}
			out[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (v *Validator) validate(ctx context.Context, log *zap.Logger, data string) (*shacl.Report, error) {
	graph, err := v.resolver.Resolve(ctx, StageData, data, v.dataFormat)
	if err != nil {
		return nil, err
	}
	log.Debug("data graph ready", zap.Int("triples", graph.Len()))
	return v.engine.Validate(ctx, v.shapes, graph)
}

func (v *Validator) observe(log *zap.Logger, start time.Time, report *shacl.Report, err error) {
	elapsed := time.Since(start)
	if err != nil {
		v.metrics.RecordRun(outcome(err), elapsed)
		log.Warn("validation failed", zap.Error(err), zap.Duration("duration", elapsed))
		return
	}
	v.metrics.RecordRun(outcome(nil), elapsed)
	v.metrics.RecordReport(report.Conforms)
	log.Debug("validation finished",
		zap.Bool("conforms", report.Conforms),
		zap.Int("results", len(report.Results)),
		zap.Duration("duration", elapsed))
}

// outcome classifies an error for metric labels.
func outcome(err error) string {
	var fetchErr *rdf.FetchError
	var rdfParseErr *rdf.ParseError
	switch {
	case err == nil:
		return metric.OutcomeOK
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, ErrConfiguration):
		return "configuration_error"
	case errors.Is(err, ErrParse), errors.As(err, &rdfParseErr):
		return "parse_error"
	case errors.As(err, &fetchErr):
		return "fetch_error"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
