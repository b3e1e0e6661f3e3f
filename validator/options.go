package validator

import (
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/geoknoesis/shacl-go/metric"
	"github.com/geoknoesis/shacl-go/rdf"
	"github.com/geoknoesis/shacl-go/shacl"
)

type options struct {
	logger         *zap.Logger
	graphs         GraphIO
	engine         Engine
	metrics        *metric.Metrics
	concurrency    int
	patternTimeout time.Duration
}

// Option configures New.
type Option func(*options)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithGraphIO replaces the default rdf.Codec.
func WithGraphIO(graphs GraphIO) Option {
	return func(o *options) { o.graphs = graphs }
}

// WithEngine replaces the default shacl.Engine.
func WithEngine(engine Engine) Option {
	return func(o *options) { o.engine = engine }
}

// WithPatternTimeout bounds a single sh:pattern match of the default engine.
// A match that runs out of time fails the run. Zero keeps
// shacl.DefaultPatternTimeout; a negative value removes the bound. It has no
// effect together with WithEngine.
func WithPatternTimeout(d time.Duration) Option {
	return func(o *options) { o.patternTimeout = d }
}

// WithMetrics records configure and run outcomes in m.
func WithMetrics(m *metric.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithConcurrency bounds the number of payloads RunBatch validates at once.
// Values below one mean GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(o *options) { o.concurrency = n }
}

func buildOptions(opts []Option) *options {
	o := &options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	if o.graphs == nil {
		o.graphs = rdf.NewCodec(nil)
	}
	if o.engine == nil {
		var engineOpts []shacl.EngineOption
		if o.patternTimeout != 0 {
			engineOpts = append(engineOpts, shacl.WithPatternTimeout(o.patternTimeout))
		}
		o.engine = shacl.NewEngine(engineOpts...)
	}
	if o.concurrency < 1 {
		o.concurrency = runtime.GOMAXPROCS(0)
	}
	return o
}
