package validator

import (
	"context"

	"go.uber.org/zap"

	"github.com/geoknoesis/shacl-go/rdf"
)

// settings are the validated configuration values.
type settings struct {
	shape        string
	shapeFormat  rdf.Format
	dataFormat   rdf.Format
	outputFormat rdf.Format
}

// readSettings checks the configuration without touching the shape source.
func readSettings(cfg Configuration) (settings, error) {
	if cfg == nil {
		return settings{}, &ConfigurationError{Reason: "no configuration given, a \"shape\" key with a locator or inline SHACL shapes is required"}
	}
	shape, ok, err := cfg.String(KeyShape)
	if err != nil {
		return settings{}, err
	}
	if !ok {
		return settings{}, &ConfigurationError{Key: KeyShape, Reason: "missing, provide a locator of a SHACL shapes graph or the shapes as inline RDF"}
	}

	s := settings{shape: shape}
	for _, axis := range []struct {
		key    string
		target *rdf.Format
	}{
		{KeyShapeFormat, &s.shapeFormat},
		{KeyDataFormat, &s.dataFormat},
		{KeyOutputFormat, &s.outputFormat},
	} {
		token, ok, err := cfg.String(axis.key)
		if err != nil {
			return settings{}, err
		}
		if !ok {
			*axis.target = DefaultFormat
			continue
		}
		f, err := ResolveFormat(token)
		if err != nil {
			err.(*UnsupportedFormatError).Key = axis.key
			return settings{}, err
		}
		*axis.target = f
	}
	return s, nil
}

// compile runs the configuration phase: settings, shape source, shape
// compilation. It returns a fully built Validator or an error and nothing
// else.
func compile(ctx context.Context, cfg Configuration, o *options) (*Validator, error) {
	s, err := readSettings(cfg)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("formats resolved",
		zap.Stringer("shape_format", s.shapeFormat),
		zap.Stringer("data_format", s.dataFormat),
		zap.Stringer("output_format", s.outputFormat))

	resolver := NewSourceResolver(o.graphs, o.logger)
	graph, err := resolver.Resolve(ctx, StageShape, s.shape, s.shapeFormat)
	if err != nil {
		return nil, err
	}
	shapes, err := o.engine.CompileShapes(graph)
	if err != nil {
		return nil, &ConfigurationError{Key: KeyShape, Reason: "shapes graph cannot be compiled", Err: err}
	}

	return &Validator{
		shapes:       shapes,
		shapeSource:  Classify(s.shape),
		shapeFormat:  s.shapeFormat,
		dataFormat:   s.dataFormat,
		outputFormat: s.outputFormat,
		resolver:     resolver,
		graphs:       o.graphs,
		engine:       o.engine,
		logger:       o.logger,
		metrics:      o.metrics,
		concurrency:  o.concurrency,
	}, nil
}
